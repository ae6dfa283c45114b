package account

import "time"

// Status is the point-in-time risk snapshot derived from a ledger.
// It is replaced wholesale on every recompute and never patched.
type Status struct {
	CurrentEquity             float64
	HighWaterMark             float64
	DaysTraded                DaySet
	DistanceToDailyDrawdown   float64
	DistanceToOverallDrawdown float64
	IsDailyDrawdownViolated   bool
	IsOverallDrawdownViolated bool
	IsPassed                  bool

	// AsOf is the reference time the status was computed for.
	AsOf time.Time
}

// InitialStatus is the status of an account with an empty ledger:
// full headroom, no violations, not passed.
func InitialStatus(r Rules, asOf time.Time) Status {
	return Status{
		CurrentEquity:             r.AccountSize,
		HighWaterMark:             r.AccountSize,
		DaysTraded:                DaySet{},
		DistanceToDailyDrawdown:   r.DailyLossAllowance(),
		DistanceToOverallDrawdown: r.OverallLossAllowance(r.AccountSize),
		AsOf:                      asOf,
	}
}

// Clone returns a deep copy.
func (s Status) Clone() Status {
	c := s
	c.DaysTraded = s.DaysTraded.Clone()
	return c
}

// PnL is the cumulative profit or loss relative to size.
func (s Status) PnL(size float64) float64 {
	return s.CurrentEquity - size
}
