package domain

import "time"

type WalletTransactionType string

const (
	TxnRefundCredit       WalletTransactionType = "REFUND_CREDIT"
	TxnDisputeCredit      WalletTransactionType = "DISPUTE_CREDIT"
	TxnHostEarning        WalletTransactionType = "HOST_EARNING"
	TxnBookingDebit       WalletTransactionType = "BOOKING_DEBIT"
	TxnWithdrawalApproved WalletTransactionType = "WITHDRAWAL_APPROVED"
	TxnWithdrawalPaid     WalletTransactionType = "WITHDRAWAL_PAID"
)

// Wallet holds one user's monetary balances in minor currency units.
// Created lazily on first credit; never deleted.
type Wallet struct {
	ID             int64 `json:"id" gorm:"primaryKey"`
	UserID         int64 `json:"user_id" gorm:"not null;uniqueIndex"`
	Balance        int64 `json:"balance" gorm:"not null;default:0"`
	PendingBalance int64 `json:"pending_balance" gorm:"not null;default:0"`
	TotalEarned    int64 `json:"total_earned" gorm:"not null;default:0"`
	TotalWithdrawn int64 `json:"total_withdrawn" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// WalletHistory is the append-only audit trail. Amount is the signed change
// to the spendable balance (credits positive, debits negative, settlement
// rows zero); BalanceBefore/BalanceAfter bracket that change so wallet state
// can be reconstructed by replay.
type WalletHistory struct {
	ID            int64                 `json:"id" gorm:"primaryKey"`
	WalletID      int64                 `json:"wallet_id" gorm:"not null;index"`
	UserID        int64                 `json:"user_id" gorm:"not null;index"`
	Type          WalletTransactionType `json:"type" gorm:"type:varchar(32);not null;index"`
	Amount        int64                 `json:"amount" gorm:"not null"`
	BalanceBefore int64                 `json:"balance_before" gorm:"not null"`
	BalanceAfter  int64                 `json:"balance_after" gorm:"not null"`
	ReferenceType string                `json:"reference_type,omitempty" gorm:"type:varchar(24)"`
	ReferenceID   string                `json:"reference_id,omitempty" gorm:"type:varchar(64)"`

	CreatedAt time.Time `json:"created_at"`
}

func (WalletHistory) TableName() string {
	return "wallet_history"
}
