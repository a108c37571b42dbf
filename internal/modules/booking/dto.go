package booking

type RosterEntry struct {
	Name   string `json:"name" binding:"required" validate:"required"`
	Phone  string `json:"phone" validate:"omitempty,min=7,max=20"`
	Age    int    `json:"age" validate:"omitempty,gte=0,lte=120"`
	Gender string `json:"gender" validate:"omitempty,oneof=male female other"`
}

type CreateBookingRequest struct {
	EventSlotID int64         `json:"event_slot_id" binding:"required"`
	Seats       int           `json:"seats" binding:"required,gte=1"`
	Roster      []RosterEntry `json:"roster" binding:"required"`
}

type AddGuestsRequest struct {
	Seats  int           `json:"seats" binding:"required,gte=1"`
	Roster []RosterEntry `json:"roster" binding:"required"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

// CancelPreview is the read-only view of what a cancellation would refund
// right now. It is computed by the same policy function that executes the
// refund.
type CancelPreview struct {
	CanCancel        bool    `json:"can_cancel"`
	HoursUntilEvent  float64 `json:"hours_until_event"`
	RefundAmount     int64   `json:"refund_amount"`
	RefundPercentage int     `json:"refund_percentage"`
}
