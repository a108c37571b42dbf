package reconcile

import (
	"context"
	"log"

	"gorm.io/gorm"

	"supperclub/internal/domain"
)

// SeatDrift is a slot whose stored seats_remaining disagrees with the seats
// still held by its live bookings.
type SeatDrift struct {
	SlotID   int64 `json:"slot_id"`
	Expected int   `json:"expected"`
	Actual   int   `json:"actual"`
}

// WalletDrift is a wallet whose balance disagrees with the sum of its signed
// history amounts.
type WalletDrift struct {
	UserID   int64 `json:"user_id"`
	Balance  int64 `json:"balance"`
	Replayed int64 `json:"replayed"`
}

type Report struct {
	SlotsChecked   int           `json:"slots_checked"`
	SeatDrifts     []SeatDrift   `json:"seat_drifts"`
	WalletsChecked int           `json:"wallets_checked"`
	WalletDrifts   []WalletDrift `json:"wallet_drifts"`
}

func (r *Report) Clean() bool {
	return len(r.SeatDrifts) == 0 && len(r.WalletDrifts) == 0
}

// Service verifies the two at-rest invariants: every non-cancelled slot's
// seats_remaining plus the seats held by its live bookings equals max_guests,
// and every wallet balance replays from its history. It only reports; it
// never repairs.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	if err := s.checkSeats(ctx, report); err != nil {
		return nil, err
	}
	if err := s.checkWallets(ctx, report); err != nil {
		return nil, err
	}

	for _, d := range report.SeatDrifts {
		log.Printf("level=error msg=seat drift reconcile=true slot_id=%d expected=%d actual=%d", d.SlotID, d.Expected, d.Actual)
	}
	for _, d := range report.WalletDrifts {
		log.Printf("level=error msg=wallet drift reconcile=true user_id=%d balance=%d replayed=%d", d.UserID, d.Balance, d.Replayed)
	}
	return report, nil
}

func (s *Service) checkSeats(ctx context.Context, report *Report) error {
	var slots []domain.EventSlot
	err := s.db.WithContext(ctx).
		Where("status <> ?", domain.SlotCancelled).
		Find(&slots).Error
	if err != nil {
		return err
	}

	holding := []domain.BookingStatus{
		domain.BookingPaymentPending,
		domain.BookingConfirmed,
		domain.BookingCompleted,
	}
	for _, sl := range slots {
		var held int64
		err := s.db.WithContext(ctx).Model(&domain.Booking{}).
			Where("event_slot_id = ? AND status IN ?", sl.ID, holding).
			Select("COALESCE(SUM(seats), 0)").
			Scan(&held).Error
		if err != nil {
			return err
		}
		expected := sl.MaxGuests - int(held)
		if sl.SeatsRemaining != expected {
			report.SeatDrifts = append(report.SeatDrifts, SeatDrift{
				SlotID:   sl.ID,
				Expected: expected,
				Actual:   sl.SeatsRemaining,
			})
		}
	}
	report.SlotsChecked = len(slots)
	return nil
}

func (s *Service) checkWallets(ctx context.Context, report *Report) error {
	var wallets []domain.Wallet
	if err := s.db.WithContext(ctx).Find(&wallets).Error; err != nil {
		return err
	}

	for _, w := range wallets {
		var replayed int64
		err := s.db.WithContext(ctx).Model(&domain.WalletHistory{}).
			Where("user_id = ?", w.UserID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&replayed).Error
		if err != nil {
			return err
		}
		if replayed != w.Balance {
			report.WalletDrifts = append(report.WalletDrifts, WalletDrift{
				UserID:   w.UserID,
				Balance:  w.Balance,
				Replayed: replayed,
			})
		}
	}
	report.WalletsChecked = len(wallets)
	return nil
}
