package engine

import "github.com/rustyeddy/proptrack/account"

// Ledger is the validated view of a raw trade list.
type Ledger struct {
	Valid   []account.Trade
	ByDay   map[string][]account.Trade
	Dropped int
}

// Bucketize drops malformed trades and groups the rest by calendar day.
// Bad records are counted, never defaulted.
func Bucketize(trades []account.Trade) Ledger {
	l := Ledger{
		Valid: make([]account.Trade, 0, len(trades)),
		ByDay: make(map[string][]account.Trade),
	}
	for _, t := range trades {
		if !t.Valid() {
			l.Dropped++
			continue
		}
		key, _ := account.DayKey(t.Date)
		l.Valid = append(l.Valid, t)
		l.ByDay[key] = append(l.ByDay[key], t)
	}
	return l
}

// DaysTraded returns the distinct day keys.
func (l Ledger) DaysTraded() account.DaySet {
	s := make(account.DaySet, len(l.ByDay))
	for k := range l.ByDay {
		s.Add(k)
	}
	return s
}

// DayPnL sums the P&L booked on day.
func (l Ledger) DayPnL(day string) float64 {
	return sum(l.ByDay[day]).InexactFloat64()
}
