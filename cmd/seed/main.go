package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"supperclub/internal/database"
	"supperclub/internal/domain"
)

// Seeds a development database with an admin, a host with two upcoming
// events, and a pair of guests. Idempotent on email.
func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = "supperclub.db"
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	users := []struct {
		email string
		name  string
		role  domain.UserRole
	}{
		{"admin@supperclub.local", "Admin", domain.RoleAdmin},
		{"priya@supperclub.local", "Priya", domain.RoleHost},
		{"asha@supperclub.local", "Asha", domain.RoleGuest},
		{"ravi@supperclub.local", "Ravi", domain.RoleGuest},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}

	byEmail := map[string]*domain.User{}
	for _, u := range users {
		user := &domain.User{
			Email:        u.email,
			PasswordHash: string(hash),
			Name:         u.name,
			Role:         u.role,
		}
		err := db.Where("email = ?", u.email).FirstOrCreate(user).Error
		if err != nil {
			log.Fatalf("seed user %s failed: %v", u.email, err)
		}
		byEmail[u.email] = user
	}

	host := byEmail["priya@supperclub.local"]
	slots := []domain.EventSlot{
		{
			HostID:         host.ID,
			Title:          "Keralan seafood night",
			Description:    "Six courses around the day's catch",
			PricePerSeat:   250000,
			MaxGuests:      8,
			SeatsRemaining: 8,
			Status:         domain.SlotOpen,
			StartAt:        time.Now().Add(72 * time.Hour),
			EndAt:          time.Now().Add(75 * time.Hour),
		},
		{
			HostID:         host.ID,
			Title:          "Sunday thali table",
			Description:    "Family style, vegetarian",
			PricePerSeat:   120000,
			MaxGuests:      6,
			SeatsRemaining: 6,
			Status:         domain.SlotOpen,
			StartAt:        time.Now().Add(120 * time.Hour),
			EndAt:          time.Now().Add(123 * time.Hour),
		},
	}
	for i := range slots {
		err := db.Where("host_id = ? AND title = ?", host.ID, slots[i].Title).
			FirstOrCreate(&slots[i]).Error
		if err != nil {
			log.Fatalf("seed slot %q failed: %v", slots[i].Title, err)
		}
	}

	log.Printf("seed completed: users=%d slots=%d", len(users), len(slots))
}
