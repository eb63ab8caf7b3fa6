package domain

import "fmt"

// Attribution is the share of a single payment assigned to each bucket.
type Attribution struct {
	ToLab   int64
	ToA     int64
	ToB     int64
	Surplus int64
}

// WaterfallReplay is the per-payment attribution of an ordered payment history.
type WaterfallReplay struct {
	ByPayment map[string]Attribution
	// Order lists the payment IDs in replay order.
	Order   []string
	Covered Buckets
	Surplus int64
}

// Get returns the attribution of paymentID.
func (r *WaterfallReplay) Get(paymentID string) (Attribution, bool) {
	a, ok := r.ByPayment[paymentID]
	return a, ok
}

// ReplayWaterfall attributes each payment to lab, A, B and surplus in order.
//
// payments must be ordered ascending by date (see SortPaymentsByDate) and must
// be the full history up to the point of interest: the bucket each payment
// fills depends on every payment before it, so replaying a subset and
// filtering the full replay give different answers.
func ReplayWaterfall(payments []*Payment, targets Targets) (*WaterfallReplay, error) {
	replay := &WaterfallReplay{
		ByPayment: make(map[string]Attribution, len(payments)),
		Order:     make([]string, 0, len(payments)),
	}

	for i, p := range payments {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("payment %s: %w", p.ID, err)
		}
		if i > 0 && p.Date.Before(payments[i-1].Date) {
			return nil, fmt.Errorf("%w: payment %s precedes %s", ErrUnsortedPayments, p.ID, payments[i-1].ID)
		}
		if _, dup := replay.ByPayment[p.ID]; dup {
			return nil, fmt.Errorf("payment %s: %w", p.ID, NewValidationError("id", "appears twice"))
		}

		part, surplus := applyWaterfall(p.Amount, targets, replay.Covered)
		replay.Covered.Lab += part.Lab
		replay.Covered.A += part.A
		replay.Covered.B += part.B
		replay.Surplus += surplus

		replay.ByPayment[p.ID] = Attribution{
			ToLab:   part.Lab,
			ToA:     part.A,
			ToB:     part.B,
			Surplus: surplus,
		}
		replay.Order = append(replay.Order, p.ID)
	}

	return replay, nil
}

// VerifyReplay checks that a full-history replay reproduces the engine's
// covered totals for the same payment set.
func VerifyReplay(alloc *Allocation, replay *WaterfallReplay) error {
	if alloc.Covered != replay.Covered {
		return fmt.Errorf(
			"%w: case %s engine lab=%d a=%d b=%d replay lab=%d a=%d b=%d",
			ErrInconsistentAllocation, alloc.CaseID,
			alloc.Covered.Lab, alloc.Covered.A, alloc.Covered.B,
			replay.Covered.Lab, replay.Covered.A, replay.Covered.B,
		)
	}
	if got := replay.Covered.Total() + replay.Surplus; got != alloc.TotalCollected {
		return fmt.Errorf("%w: case %s replayed %d of %d collected",
			ErrInconsistentAllocation, alloc.CaseID, got, alloc.TotalCollected)
	}
	return nil
}
