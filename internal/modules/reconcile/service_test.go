package reconcile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"supperclub/internal/domain"
	"supperclub/internal/modules/booking"
	"supperclub/internal/modules/slot"
	"supperclub/internal/modules/wallet"
)

func setupEnv(t *testing.T) (*gorm.DB, *Service) {
	t.Helper()
	dsn := fmt.Sprintf("file:reconcile_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.EventSlot{},
		&domain.Booking{},
		&domain.BookingGuest{},
		&domain.Wallet{},
		&domain.WalletHistory{},
	))
	return db, NewService(db)
}

// A healthy system, including one full booking-and-cancel cycle, must
// reconcile clean.
func TestCleanAfterNormalFlow(t *testing.T) {
	db, svc := setupEnv(t)
	ctx := context.Background()

	slots := slot.NewService(db)
	wallets := wallet.NewService(db)
	bookings := booking.NewService(db, slots, wallets, nil, 2*time.Hour)

	s, err := slots.Create(ctx, 1, slot.CreateSlotRequest{
		Title:        "Tasting menu",
		PricePerSeat: 5000,
		MaxGuests:    4,
		StartAt:      time.Now().Add(48 * time.Hour),
		EndAt:        time.Now().Add(51 * time.Hour),
	})
	require.NoError(t, err)

	b1, err := bookings.Create(ctx, 10, booking.CreateBookingRequest{
		EventSlotID: s.ID, Seats: 2,
		Roster: []booking.RosterEntry{{Name: "Asha"}, {Name: "Ravi"}},
	})
	require.NoError(t, err)

	_, err = bookings.Create(ctx, 11, booking.CreateBookingRequest{
		EventSlotID: s.ID, Seats: 1,
		Roster: []booking.RosterEntry{{Name: "Meera"}},
	})
	require.NoError(t, err)

	_, err = bookings.Cancel(ctx, 10, b1.ID, "plans changed")
	require.NoError(t, err)

	report, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, 1, report.SlotsChecked)
	assert.GreaterOrEqual(t, report.WalletsChecked, 1)
}

func TestDetectsSeatDrift(t *testing.T) {
	db, svc := setupEnv(t)
	ctx := context.Background()

	s := &domain.EventSlot{
		HostID:         1,
		Title:          "Tasting menu",
		PricePerSeat:   5000,
		MaxGuests:      4,
		SeatsRemaining: 4,
		Status:         domain.SlotOpen,
		StartAt:        time.Now().Add(48 * time.Hour),
		EndAt:          time.Now().Add(51 * time.Hour),
	}
	require.NoError(t, db.Create(s).Error)
	require.NoError(t, db.Create(&domain.Booking{
		EventSlotID: s.ID, GuestID: 10, HostID: 1,
		Seats: 2, AmountTotal: 10000,
		Status: domain.BookingConfirmed,
	}).Error)

	// seats_remaining was never decremented for the booking above
	report, err := svc.Run(ctx)
	require.NoError(t, err)
	require.Len(t, report.SeatDrifts, 1)
	assert.Equal(t, s.ID, report.SeatDrifts[0].SlotID)
	assert.Equal(t, 2, report.SeatDrifts[0].Expected)
	assert.Equal(t, 4, report.SeatDrifts[0].Actual)
	assert.False(t, report.Clean())
}

func TestSkipsCancelledSlots(t *testing.T) {
	db, svc := setupEnv(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&domain.EventSlot{
		HostID:         1,
		Title:          "Cancelled dinner",
		PricePerSeat:   5000,
		MaxGuests:      4,
		SeatsRemaining: 4,
		Status:         domain.SlotCancelled,
		StartAt:        time.Now().Add(48 * time.Hour),
		EndAt:          time.Now().Add(51 * time.Hour),
	}).Error)

	report, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.SlotsChecked)
	assert.True(t, report.Clean())
}

func TestDetectsWalletDrift(t *testing.T) {
	db, svc := setupEnv(t)
	ctx := context.Background()

	wallets := wallet.NewService(db)
	_, err := wallets.Credit(ctx, 7, 10000, domain.TxnHostEarning, "booking", "1")
	require.NoError(t, err)

	// balance mutated without a history row
	require.NoError(t, db.Model(&domain.Wallet{}).
		Where("user_id = ?", 7).
		Update("balance", gorm.Expr("balance + ?", 500)).Error)

	report, err := svc.Run(ctx)
	require.NoError(t, err)
	require.Len(t, report.WalletDrifts, 1)
	assert.Equal(t, int64(7), report.WalletDrifts[0].UserID)
	assert.Equal(t, int64(10500), report.WalletDrifts[0].Balance)
	assert.Equal(t, int64(10000), report.WalletDrifts[0].Replayed)
}
