package dispute

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

type testEnv struct {
	db       *gorm.DB
	slots    *slot.Service
	wallets  *wallet.Service
	bookings *booking.Service
	svc      *Service
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:dispute_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.EventSlot{},
		&domain.Booking{},
		&domain.BookingGuest{},
		&domain.Wallet{},
		&domain.WalletHistory{},
		&domain.Dispute{},
		&domain.AdminAction{},
	))

	slots := slot.NewService(db)
	wallets := wallet.NewService(db)
	bookings := booking.NewService(db, slots, wallets, nil, 2*time.Hour)
	return &testEnv{
		db:       db,
		slots:    slots,
		wallets:  wallets,
		bookings: bookings,
		svc:      NewService(db, bookings, wallets, nil),
	}
}

// confirmedBooking books two seats for guest 10 against a fresh slot hosted
// by user 1 and confirms it.
func confirmedBooking(t *testing.T, env *testEnv) (*domain.EventSlot, *domain.Booking) {
	t.Helper()
	ctx := context.Background()
	s, err := env.slots.Create(ctx, 1, slot.CreateSlotRequest{
		Title:        "Sunday thali",
		PricePerSeat: 5000,
		MaxGuests:    2,
		StartAt:      time.Now().Add(48 * time.Hour),
		EndAt:        time.Now().Add(51 * time.Hour),
	})
	require.NoError(t, err)

	b, err := env.bookings.Create(ctx, 10, booking.CreateBookingRequest{
		EventSlotID: s.ID,
		Seats:       2,
		Roster:      []booking.RosterEntry{{Name: "Asha"}, {Name: "Ravi"}},
	})
	require.NoError(t, err)
	b, err = env.bookings.Confirm(ctx, 10, b.ID)
	require.NoError(t, err)
	return s, b
}

func TestOpenDispute(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	_, b := confirmedBooking(t, env)

	d, err := env.svc.Open(ctx, 10, OpenDisputeRequest{BookingID: b.ID, Reason: "host never showed up"})
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeOpen, d.Status)
	assert.Equal(t, int64(1), d.HostID)

	_, err = env.svc.Open(ctx, 10, OpenDisputeRequest{BookingID: b.ID, Reason: "host never showed up"})
	assert.ErrorIs(t, err, ErrAlreadyDisputed)

	_, err = env.svc.Open(ctx, 42, OpenDisputeRequest{BookingID: b.ID, Reason: "host never showed up"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.Open(ctx, 10, OpenDisputeRequest{BookingID: 9999, Reason: "host never showed up"})
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
}

func TestOpenRequiresConfirmedBooking(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	s, err := env.slots.Create(ctx, 1, slot.CreateSlotRequest{
		Title:        "Sunday thali",
		PricePerSeat: 5000,
		MaxGuests:    2,
		StartAt:      time.Now().Add(48 * time.Hour),
		EndAt:        time.Now().Add(51 * time.Hour),
	})
	require.NoError(t, err)

	b, err := env.bookings.Create(ctx, 10, booking.CreateBookingRequest{
		EventSlotID: s.ID,
		Seats:       1,
		Roster:      []booking.RosterEntry{{Name: "Asha"}},
	})
	require.NoError(t, err)

	_, err = env.svc.Open(ctx, 10, OpenDisputeRequest{BookingID: b.ID, Reason: "host never showed up"})
	assert.ErrorIs(t, err, ErrNotDisputable)
}

func TestResolveWithRefund(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	s, b := confirmedBooking(t, env)

	d, err := env.svc.Open(ctx, 10, OpenDisputeRequest{BookingID: b.ID, Reason: "half the menu was missing"})
	require.NoError(t, err)

	d, err = env.svc.Resolve(ctx, 1, d.ID, ResolveRequest{RefundAmount: 4000, Resolution: "partial refund granted"})
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeResolved, d.Status)
	assert.Equal(t, int64(4000), d.ResolvedRefund)
	require.NotNil(t, d.ResolvedBy)
	assert.Equal(t, int64(1), *d.ResolvedBy)

	w, err := env.wallets.GetOrCreate(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), w.Balance)

	rows, err := env.wallets.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.TxnDisputeCredit, rows[0].Type)

	got, err := env.bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.Status)
	assert.Equal(t, int64(4000), got.RefundAmount)

	slotRow, err := env.slots.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, slotRow.SeatsRemaining)

	var audits int64
	require.NoError(t, env.db.Model(&domain.AdminAction{}).
		Where("target_type = ? AND target_id = ?", "dispute", d.ID).Count(&audits).Error)
	assert.Equal(t, int64(1), audits)

	// already resolved
	_, err = env.svc.Resolve(ctx, 1, d.ID, ResolveRequest{RefundAmount: 0, Resolution: "again"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestResolveWithoutRefund(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	_, b := confirmedBooking(t, env)

	d, err := env.svc.Open(ctx, 10, OpenDisputeRequest{BookingID: b.ID, Reason: "food arrived slightly late"})
	require.NoError(t, err)

	d, err = env.svc.Resolve(ctx, 1, d.ID, ResolveRequest{RefundAmount: 0, Resolution: "within tolerance, no refund"})
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeResolved, d.Status)

	got, err := env.bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, got.Status, "zero-refund ruling leaves the booking alone")

	rows, err := env.wallets.History(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestResolveRefundCap(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	_, b := confirmedBooking(t, env)

	d, err := env.svc.Open(ctx, 10, OpenDisputeRequest{BookingID: b.ID, Reason: "half the menu was missing"})
	require.NoError(t, err)

	_, err = env.svc.Resolve(ctx, 1, d.ID, ResolveRequest{RefundAmount: 99999, Resolution: "too generous"})
	assert.ErrorIs(t, err, ErrRefundTooLarge)

	d, err = env.svc.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeOpen, d.Status)
}

func TestEscalateAndClose(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	_, b := confirmedBooking(t, env)

	d, err := env.svc.Open(ctx, 10, OpenDisputeRequest{BookingID: b.ID, Reason: "host was rude to guests"})
	require.NoError(t, err)

	d, err = env.svc.Escalate(ctx, 1, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeEscalated, d.Status)

	_, err = env.svc.Escalate(ctx, 1, d.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	d, err = env.svc.Close(ctx, 1, d.ID, "could not substantiate the claim")
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeClosed, d.Status)
	assert.Equal(t, "could not substantiate the claim", d.Resolution)

	_, err = env.svc.Resolve(ctx, 1, d.ID, ResolveRequest{RefundAmount: 1000, Resolution: "late ruling"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
