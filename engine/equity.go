package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/proptrack/account"
	"github.com/shopspring/decimal"
)

// Equity is the outcome of replaying a ledger from the starting size.
type Equity struct {
	Current       float64
	HighWaterMark float64
}

func sum(trades []account.Trade) decimal.Decimal {
	total := decimal.Zero
	for _, t := range trades {
		total = total.Add(decimal.NewFromFloat(t.PnL))
	}
	return total
}

// CurrentEquity is size plus the sum of all P&L; order does not matter.
func CurrentEquity(size float64, trades []account.Trade) float64 {
	return decimal.NewFromFloat(size).Add(sum(trades)).InexactFloat64()
}

// HighWaterMark replays trades in date order and returns the peak balance
// seen at any prefix, starting from size.
func HighWaterMark(size float64, trades []account.Trade) (float64, error) {
	type entry struct {
		at  time.Time
		pnl decimal.Decimal
	}
	entries := make([]entry, 0, len(trades))
	for _, t := range trades {
		at, err := t.Time()
		if err != nil {
			return 0, fmt.Errorf("trade %s: %w", t.ID, err)
		}
		entries = append(entries, entry{at: at, pnl: decimal.NewFromFloat(t.PnL)})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].at.Before(entries[j].at)
	})

	balance := decimal.NewFromFloat(size)
	peak := balance
	for _, e := range entries {
		balance = balance.Add(e.pnl)
		if balance.GreaterThan(peak) {
			peak = balance
		}
	}
	return peak.InexactFloat64(), nil
}

// Replay computes current equity and the high-water mark. If the
// chronological replay fails the watermark degrades to
// max(size, current) and the error is returned alongside.
func Replay(size float64, trades []account.Trade) (Equity, error) {
	eq := Equity{Current: CurrentEquity(size, trades)}
	hwm, err := HighWaterMark(size, trades)
	if err != nil {
		eq.HighWaterMark = max(size, eq.Current)
		return eq, err
	}
	eq.HighWaterMark = hwm
	return eq, nil
}
