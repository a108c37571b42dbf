package refund

import (
	"errors"
	"time"
)

// ErrEventStarted is returned once the event has begun; cancellation (and
// therefore any refund) is no longer possible.
var ErrEventStarted = errors.New("event already started")

// FullRefundWindow is the cutoff before the event start: cancelling at or
// beyond it refunds everything, inside it refunds nothing.
const FullRefundWindow = 24 * time.Hour

// For maps a booking amount and the time left until the event to the refund
// owed. It is a pure function: the cancel-preview endpoint and the executed
// cancellation both go through it so the two can never drift.
func For(amountTotal int64, hoursUntilEvent float64) (refundAmount int64, refundPercentage int, err error) {
	if hoursUntilEvent <= 0 {
		return 0, 0, ErrEventStarted
	}
	if hoursUntilEvent >= FullRefundWindow.Hours() {
		return amountTotal, 100, nil
	}
	return 0, 0, nil
}

// HoursUntil returns the fractional hours from now until startAt.
func HoursUntil(startAt, now time.Time) float64 {
	return startAt.Sub(now).Hours()
}
