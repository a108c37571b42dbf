package domain

import "time"

type SlotStatus string

const (
	SlotOpen      SlotStatus = "OPEN"
	SlotFull      SlotStatus = "FULL"
	SlotCancelled SlotStatus = "CANCELLED"
)

// EventSlot is a single bookable instance of a hosted dining event.
// SeatsRemaining is only ever mutated through the slot service's guarded
// updates; MaxGuests is immutable once the first booking exists.
type EventSlot struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	HostID         int64      `json:"host_id" gorm:"not null;index"`
	Title          string     `json:"title" gorm:"not null"`
	Description    string     `json:"description,omitempty" gorm:"type:text"`
	PricePerSeat   int64      `json:"price_per_seat" gorm:"not null"` // minor currency units (paise)
	MaxGuests      int        `json:"max_guests" gorm:"not null"`
	SeatsRemaining int        `json:"seats_remaining" gorm:"not null"`
	Status         SlotStatus `json:"status" gorm:"type:varchar(16);not null;default:'OPEN';index"`
	StartAt        time.Time  `json:"start_at" gorm:"not null;index"`
	EndAt          time.Time  `json:"end_at" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Host *User `json:"host,omitempty" gorm:"foreignKey:HostID"`
}

func (EventSlot) TableName() string {
	return "event_slots"
}
