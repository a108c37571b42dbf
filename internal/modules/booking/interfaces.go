package booking

import (
	"context"

	"supperclub/internal/domain"
)

// SeatInventory is the capacity side of the booking saga. Reserve must be an
// atomic conditional claim; Release its unconditional inverse. Cancel retires
// the slot itself, used by the host-cancellation cascade.
type SeatInventory interface {
	Reserve(ctx context.Context, slotID int64, n int) error
	Release(ctx context.Context, slotID int64, n int) error
	Cancel(ctx context.Context, slotID, hostID int64) error
}

// WalletLedger credits refunds and host earnings.
type WalletLedger interface {
	Credit(ctx context.Context, userID, amount int64, txnType domain.WalletTransactionType, refType, refID string) (*domain.Wallet, error)
}

// NotificationSender is fire-and-forget: failures never affect booking or
// ledger outcomes.
type NotificationSender interface {
	NotifyBookingCreated(ctx context.Context, hostID, bookingID, slotID int64) error
	NotifyBookingCancelled(ctx context.Context, hostID, bookingID, slotID int64, reason string) error
	NotifyBookingCheckedIn(ctx context.Context, guestID, bookingID int64) error
}
