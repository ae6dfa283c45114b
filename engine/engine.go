// Package engine turns a raw trade ledger into an account status snapshot.
//
// Compute runs validation, equity replay, drawdown evaluation and the pass
// verdict in that order. It never returns an error: failures are contained
// and reported through Result.Fresh and Result.Reason, with the previous
// status (or the account default) substituted.
package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/proptrack/account"
	"github.com/rustyeddy/proptrack/risk"
)

// Observer receives every computation result. metrics.Metrics implements it.
type Observer interface {
	ObserveStatus(accountID string, r Result)
}

// Input is everything a computation depends on.
type Input struct {
	AccountID string
	Kind      account.Kind
	Rules     account.Rules
	Trades    []account.Trade
	Today     time.Time

	// Previous is returned unchanged if the computation fails.
	Previous *account.Status
}

// Result tells the caller whether Status reflects the ledger it passed in.
type Result struct {
	Status     account.Status
	Fresh      bool
	Reason     string
	Violations []risk.Violation
	Dropped    int
}

type Engine struct {
	log      zerolog.Logger
	loc      *time.Location
	observer Observer

	beforeVerdict func()
}

type Option func(*Engine)

func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.log = l } }

// WithLocation converts "today" into loc before taking its day key. Without
// it today is keyed in its own zone. Trade day keys always come from the
// trade's own date.
func WithLocation(loc *time.Location) Option { return func(e *Engine) { e.loc = loc } }

func WithObserver(o Observer) Option { return func(e *Engine) { e.observer = o } }

func New(opts ...Option) *Engine {
	e := &Engine{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute assembles a fresh status or, on failure, the fallback.
func (e *Engine) Compute(in Input) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = e.fallback(in, fmt.Sprintf("panic: %v", r))
		}
		if e.observer != nil {
			e.observer.ObserveStatus(in.AccountID, res)
		}
	}()

	if err := in.Rules.Validate(); err != nil {
		return e.fallback(in, err.Error())
	}

	ledger := Bucketize(in.Trades)

	eq, err := Replay(in.Rules.AccountSize, ledger.Valid)
	if err != nil {
		e.log.Warn().Err(err).Str("account", in.AccountID).Msg("chronological replay failed, using max(size, equity) as high-water mark")
	}

	today := account.DayKeyOf(in.Today, e.loc)
	dd := risk.Evaluate(in.Rules, eq.Current, eq.HighWaterMark, ledger.DayPnL(today))

	st := account.Status{
		CurrentEquity:             eq.Current,
		HighWaterMark:             eq.HighWaterMark,
		DaysTraded:                ledger.DaysTraded(),
		DistanceToDailyDrawdown:   dd.ClampedDaily(),
		DistanceToOverallDrawdown: dd.ClampedOverall(),
		IsDailyDrawdownViolated:   dd.DailyViolated(),
		IsOverallDrawdownViolated: dd.OverallViolated(),
		AsOf:                      in.Today,
	}
	if e.beforeVerdict != nil {
		e.beforeVerdict()
	}
	st.IsPassed = Passed(in.Kind, in.Rules, st)

	return Result{
		Status:     st,
		Fresh:      true,
		Violations: dd.Violations,
		Dropped:    ledger.Dropped,
	}
}

func (e *Engine) fallback(in Input, reason string) Result {
	e.log.Warn().Str("account", in.AccountID).Str("reason", reason).Msg("status computation failed, keeping last known status")

	var st account.Status
	if in.Previous != nil {
		st = in.Previous.Clone()
	} else {
		st = account.InitialStatus(in.Rules, in.Today)
	}
	return Result{Status: st, Reason: reason}
}

var defaultEngine = New()

// ComputeStatus evaluates a challenge ledger against rules as of today.
func ComputeStatus(r account.Rules, trades []account.Trade, today time.Time) account.Status {
	return defaultEngine.Compute(Input{
		Kind:   account.Challenge,
		Rules:  r,
		Trades: trades,
		Today:  today,
	}).Status
}
