package domain

import "time"

type DisputeStatus string

const (
	DisputeOpen      DisputeStatus = "OPEN"
	DisputeEscalated DisputeStatus = "ESCALATED"
	DisputeResolved  DisputeStatus = "RESOLVED"
	DisputeClosed    DisputeStatus = "CLOSED"
)

type Dispute struct {
	ID        int64         `json:"id" gorm:"primaryKey"`
	BookingID int64         `json:"booking_id" gorm:"not null;index"`
	GuestID   int64         `json:"guest_id" gorm:"not null;index"`
	HostID    int64         `json:"host_id" gorm:"not null;index"`
	Reason    string        `json:"reason" gorm:"type:text;not null"`
	Status    DisputeStatus `json:"status" gorm:"type:varchar(16);not null;default:'OPEN';index"`

	ResolvedRefund int64      `json:"resolved_refund"`
	Resolution     string     `json:"resolution,omitempty" gorm:"type:text"`
	ResolvedBy     *int64     `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Booking *Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
}
