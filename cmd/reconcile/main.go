package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"supperclub/internal/database"
	"supperclub/internal/modules/reconcile"
)

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	report, err := reconcile.NewService(db).Run(context.Background())
	if err != nil {
		log.Fatalf("reconcile failed: %v", err)
	}

	log.Printf("reconcile completed: slots=%d seat_drifts=%d wallets=%d wallet_drifts=%d",
		report.SlotsChecked, len(report.SeatDrifts), report.WalletsChecked, len(report.WalletDrifts))

	if !report.Clean() {
		os.Exit(1)
	}
}
