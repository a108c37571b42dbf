package slot

import "time"

type CreateSlotRequest struct {
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description"`
	PricePerSeat int64     `json:"price_per_seat" binding:"required,gte=0"`
	MaxGuests    int       `json:"max_guests" binding:"required,gte=1"`
	StartAt      time.Time `json:"start_at" binding:"required"`
	EndAt        time.Time `json:"end_at" binding:"required"`
}
