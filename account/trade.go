package account

import (
	"math"
	"time"
)

// Trade is a single closed trade in an account ledger. Date is kept as
// recorded; a trade whose Date does not parse or whose PnL is not finite
// is excluded from every computation.
type Trade struct {
	ID         string  `json:"id"`
	Date       string  `json:"date"`
	PnL        float64 `json:"pnl"` // net of commission
	Instrument string  `json:"instrument,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

// Valid reports whether the trade takes part in computations.
func (t Trade) Valid() bool {
	if math.IsNaN(t.PnL) || math.IsInf(t.PnL, 0) {
		return false
	}
	_, err := ParseDate(t.Date)
	return err == nil
}

// Time returns the parsed trade date.
func (t Trade) Time() (time.Time, error) {
	return ParseDate(t.Date)
}
