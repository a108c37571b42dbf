package domain

import "time"

type BookingStatus string

const (
	BookingPaymentPending BookingStatus = "PAYMENT_PENDING"
	BookingConfirmed      BookingStatus = "CONFIRMED"
	BookingCancelled      BookingStatus = "CANCELLED"
	BookingCompleted      BookingStatus = "COMPLETED"
)

// MaxSeatsPerBooking is the platform-wide cap on seats held by one booking.
const MaxSeatsPerBooking = 2

// Booking is the financial/audit record of a reservation. It is never
// physically deleted; CANCELLED and COMPLETED are terminal.
type Booking struct {
	ID          int64         `json:"id" gorm:"primaryKey"`
	EventSlotID int64         `json:"event_slot_id" gorm:"not null;index"`
	GuestID     int64         `json:"guest_id" gorm:"not null;index"`
	HostID      int64         `json:"host_id" gorm:"not null;index"`
	Seats       int           `json:"seats" gorm:"not null"`
	AmountTotal int64         `json:"amount_total" gorm:"not null"` // minor currency units
	Status      BookingStatus `json:"status" gorm:"type:varchar(24);not null;default:'PAYMENT_PENDING';index"`

	RefundAmount       int64      `json:"refund_amount"`
	RefundPercentage   int        `json:"refund_percentage"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty" gorm:"type:text"`
	CheckedInAt        *time.Time `json:"checked_in_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventSlot *EventSlot     `json:"event_slot,omitempty" gorm:"foreignKey:EventSlotID"`
	Guest     *User          `json:"guest,omitempty" gorm:"foreignKey:GuestID"`
	Roster    []BookingGuest `json:"roster,omitempty" gorm:"foreignKey:BookingID"`
}

// BookingGuest is one attendee on a booking's roster. The primary entry is
// the booking guest themselves.
type BookingGuest struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	BookingID int64  `json:"booking_id" gorm:"not null;index"`
	Name      string `json:"name" gorm:"not null" validate:"required"`
	Phone     string `json:"phone,omitempty"`
	Age       int    `json:"age,omitempty" validate:"omitempty,gte=0,lte=120"`
	Gender    string `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	IsPrimary bool   `json:"is_primary"`

	CreatedAt time.Time `json:"created_at"`
}

func (BookingGuest) TableName() string {
	return "booking_guests"
}
