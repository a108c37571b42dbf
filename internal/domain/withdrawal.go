package domain

import "time"

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "PENDING"
	WithdrawalApproved WithdrawalStatus = "APPROVED"
	WithdrawalRejected WithdrawalStatus = "REJECTED"
	WithdrawalPaid     WithdrawalStatus = "PAID"
)

// Withdrawal is a payout request. Transitions are one-directional:
// PENDING -> APPROVED -> PAID, or PENDING -> REJECTED.
type Withdrawal struct {
	ID     int64            `json:"id" gorm:"primaryKey"`
	UserID int64            `json:"user_id" gorm:"not null;index"`
	Amount int64            `json:"amount" gorm:"not null"` // minor currency units
	Status WithdrawalStatus `json:"status" gorm:"type:varchar(16);not null;default:'PENDING';index"`

	RejectionReason  string `json:"rejection_reason,omitempty" gorm:"type:text"`
	PaymentReference string `json:"payment_reference,omitempty"`

	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	ApprovedBy *int64     `json:"approved_by,omitempty"`
	RejectedAt *time.Time `json:"rejected_at,omitempty"`
	RejectedBy *int64     `json:"rejected_by,omitempty"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	PaidBy     *int64     `json:"paid_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
