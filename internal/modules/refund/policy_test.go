package refund

import (
	"errors"
	"testing"
)

func TestFullRefundAtOrBeyondCutoff(t *testing.T) {
	amount, pct, err := For(10000, 48)
	if err != nil {
		t.Fatalf("For returned error: %v", err)
	}
	if amount != 10000 || pct != 100 {
		t.Fatalf("expected full refund, got amount=%d pct=%d", amount, pct)
	}

	amount, pct, err = For(10000, 24)
	if err != nil {
		t.Fatalf("For returned error: %v", err)
	}
	if amount != 10000 || pct != 100 {
		t.Fatalf("expected full refund exactly at cutoff, got amount=%d pct=%d", amount, pct)
	}
}

func TestNoRefundInsideCutoff(t *testing.T) {
	amount, pct, err := For(10000, 23)
	if err != nil {
		t.Fatalf("For returned error: %v", err)
	}
	if amount != 0 || pct != 0 {
		t.Fatalf("expected zero refund, got amount=%d pct=%d", amount, pct)
	}
}

func TestCancellationRejectedOnceStarted(t *testing.T) {
	for _, hours := range []float64{0, -1, -48} {
		_, _, err := For(10000, hours)
		if !errors.Is(err, ErrEventStarted) {
			t.Fatalf("hours=%v: expected ErrEventStarted, got %v", hours, err)
		}
	}
}
