package dispute

type OpenDisputeRequest struct {
	BookingID int64  `json:"booking_id" validate:"required,gt=0"`
	Reason    string `json:"reason" validate:"required,min=10,max=2000"`
}

type ResolveRequest struct {
	RefundAmount int64  `json:"refund_amount" validate:"gte=0"`
	Resolution   string `json:"resolution" validate:"required,min=3,max=2000"`
}

type CloseRequest struct {
	Resolution string `json:"resolution" validate:"required,min=3,max=2000"`
}
