package withdrawal

type RequestWithdrawalRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type MarkPaidRequest struct {
	PaymentReference string `json:"payment_reference" validate:"required,min=3,max=64"`
}
