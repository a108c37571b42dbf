package domain

import "time"

type NotificationType string

const (
	NotifyBookingCreated   NotificationType = "booking_created"
	NotifyBookingCancelled NotificationType = "booking_cancelled"
	NotifyBookingCheckedIn NotificationType = "booking_checked_in"
	NotifyDisputeResolved  NotificationType = "dispute_resolved"
	NotifyWithdrawalUpdate NotificationType = "withdrawal_update"
)

type Notification struct {
	ID     int64            `json:"id" gorm:"primaryKey"`
	UserID int64            `json:"user_id" gorm:"not null;index"`
	Type   NotificationType `json:"type" gorm:"type:varchar(32);not null"`
	Title  string           `json:"title" gorm:"not null"`
	Body   string           `json:"body,omitempty" gorm:"type:text"`
	IsRead bool             `json:"is_read" gorm:"not null;default:false;index"`
	ReadAt *time.Time       `json:"read_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
