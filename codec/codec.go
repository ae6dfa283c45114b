// Package codec converts accounts and statuses between their in-memory
// shape and a storage-safe shape: times become RFC 3339 strings carrying
// their own offset and the day set becomes a sorted array.
//
// Hydrate is defensive. Missing trades become an empty ledger, a missing
// or malformed day set becomes an empty set and a missing date becomes the
// codec's current time. Only a nil top-level record is an error.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/proptrack/account"
)

var ErrNilRecord = errors.New("codec: nil record")

// PlainStatus is the storage-safe form of account.Status.
type PlainStatus struct {
	CurrentEquity             float64 `json:"current_equity"`
	HighWaterMark             float64 `json:"high_water_mark"`
	DaysTraded                any     `json:"days_traded"`
	DistanceToDailyDrawdown   float64 `json:"distance_to_daily_drawdown"`
	DistanceToOverallDrawdown float64 `json:"distance_to_overall_drawdown"`
	IsDailyDrawdownViolated   bool    `json:"is_daily_drawdown_violated"`
	IsOverallDrawdownViolated bool    `json:"is_overall_drawdown_violated"`
	IsPassed                  bool    `json:"is_passed"`
	AsOf                      string  `json:"as_of,omitempty"`
}

// PlainTrade keeps PnL untyped so a non-numeric stored value survives
// decoding and is excluded later rather than read as zero.
type PlainTrade struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	PnL        any    `json:"pnl"`
	Instrument string `json:"instrument,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type PlainAccount struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Kind      string         `json:"kind"`
	Rules     *account.Rules `json:"rules,omitempty"`
	CreatedAt string         `json:"created_at,omitempty"`
	Trades    []PlainTrade   `json:"trades"`
	Status    *PlainStatus   `json:"status,omitempty"`
}

type Codec struct {
	now func() time.Time
}

// New returns a codec using now for missing dates. A nil now uses time.Now.
func New(now func() time.Time) *Codec {
	if now == nil {
		now = time.Now
	}
	return &Codec{now: now}
}

var Default = New(nil)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func (c *Codec) parseTime(s string) time.Time {
	if s != "" {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
	}
	return c.now()
}

func (c *Codec) DehydrateStatus(st account.Status) PlainStatus {
	return PlainStatus{
		CurrentEquity:             st.CurrentEquity,
		HighWaterMark:             st.HighWaterMark,
		DaysTraded:                st.DaysTraded.Sorted(),
		DistanceToDailyDrawdown:   st.DistanceToDailyDrawdown,
		DistanceToOverallDrawdown: st.DistanceToOverallDrawdown,
		IsDailyDrawdownViolated:   st.IsDailyDrawdownViolated,
		IsOverallDrawdownViolated: st.IsOverallDrawdownViolated,
		IsPassed:                  st.IsPassed,
		AsOf:                      formatTime(st.AsOf),
	}
}

func (c *Codec) HydrateStatus(p *PlainStatus) (account.Status, error) {
	if p == nil {
		return account.Status{}, ErrNilRecord
	}
	return account.Status{
		CurrentEquity:             p.CurrentEquity,
		HighWaterMark:             p.HighWaterMark,
		DaysTraded:                hydrateDays(p.DaysTraded),
		DistanceToDailyDrawdown:   p.DistanceToDailyDrawdown,
		DistanceToOverallDrawdown: p.DistanceToOverallDrawdown,
		IsDailyDrawdownViolated:   p.IsDailyDrawdownViolated,
		IsOverallDrawdownViolated: p.IsOverallDrawdownViolated,
		IsPassed:                  p.IsPassed,
		AsOf:                      c.parseTime(p.AsOf),
	}, nil
}

// hydrateDays accepts []string or a decoded JSON array; any other shape,
// or any non-string element, yields an empty set.
func hydrateDays(v any) account.DaySet {
	switch days := v.(type) {
	case []string:
		return account.NewDaySet(days...)
	case []any:
		s := make(account.DaySet, len(days))
		for _, d := range days {
			key, ok := d.(string)
			if !ok {
				return account.DaySet{}
			}
			s.Add(key)
		}
		return s
	}
	return account.DaySet{}
}

func (c *Codec) DehydrateTrade(t account.Trade) PlainTrade {
	p := PlainTrade{ID: t.ID, Date: t.Date, Instrument: t.Instrument, Notes: t.Notes}
	// JSON has no NaN or Inf; null keeps the trade excluded on the way back.
	if !math.IsNaN(t.PnL) && !math.IsInf(t.PnL, 0) {
		p.PnL = t.PnL
	}
	return p
}

func (c *Codec) HydrateTrade(p PlainTrade) account.Trade {
	return account.Trade{
		ID:         p.ID,
		Date:       p.Date,
		PnL:        hydratePnL(p.PnL),
		Instrument: p.Instrument,
		Notes:      p.Notes,
	}
}

// hydratePnL returns NaN for anything that is not a number.
func hydratePnL(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return math.NaN()
}

func (c *Codec) DehydrateAccount(a account.Account) PlainAccount {
	p := PlainAccount{
		ID:        a.ID,
		Name:      a.Name,
		Kind:      string(a.Kind),
		CreatedAt: formatTime(a.CreatedAt),
		Trades:    make([]PlainTrade, 0, len(a.Trades)),
	}
	if a.Rules != nil {
		r := *a.Rules
		p.Rules = &r
	}
	for _, t := range a.Trades {
		p.Trades = append(p.Trades, c.DehydrateTrade(t))
	}
	st := c.DehydrateStatus(a.Status)
	p.Status = &st
	return p
}

func (c *Codec) HydrateAccount(p *PlainAccount) (account.Account, error) {
	if p == nil {
		return account.Account{}, ErrNilRecord
	}
	a := account.Account{
		ID:        p.ID,
		Name:      p.Name,
		Kind:      account.Kind(p.Kind),
		CreatedAt: c.parseTime(p.CreatedAt),
		Trades:    make([]account.Trade, 0, len(p.Trades)),
	}
	if p.Rules != nil {
		r := *p.Rules
		a.Rules = &r
	}
	if a.Kind == "" {
		a.Kind = account.Personal
		if a.Rules != nil {
			a.Kind = account.Challenge
		}
	}
	for _, t := range p.Trades {
		a.Trades = append(a.Trades, c.HydrateTrade(t))
	}
	if p.Status != nil {
		st, err := c.HydrateStatus(p.Status)
		if err != nil {
			return account.Account{}, err
		}
		a.Status = st
	} else {
		a.Status = account.InitialStatus(a.EffectiveRules(0), a.CreatedAt)
	}
	return a, nil
}

// EncodeAccount dehydrates a and marshals it to JSON.
func (c *Codec) EncodeAccount(a account.Account) ([]byte, error) {
	data, err := json.Marshal(c.DehydrateAccount(a))
	if err != nil {
		return nil, fmt.Errorf("encode account %s: %w", a.ID, err)
	}
	return data, nil
}

// DecodeAccount unmarshals JSON and hydrates it. A JSON null is ErrNilRecord.
func (c *Codec) DecodeAccount(data []byte) (account.Account, error) {
	var p *PlainAccount
	if err := json.Unmarshal(data, &p); err != nil {
		return account.Account{}, fmt.Errorf("decode account: %w", err)
	}
	return c.HydrateAccount(p)
}

// Dehydrate uses the default codec.
func Dehydrate(a account.Account) PlainAccount { return Default.DehydrateAccount(a) }
