// Package tracker holds accounts in memory, recomputes their status after
// every ledger mutation and persists them through a Repository.
//
// Each account's entry is replaced wholesale under the tracker lock: readers
// get clones and never observe a half-applied mutation.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/proptrack/account"
	"github.com/rustyeddy/proptrack/advisory"
	"github.com/rustyeddy/proptrack/engine"
	"github.com/rustyeddy/proptrack/pkg/id"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrTradeNotFound   = errors.New("trade not found")
	ErrDuplicateTrade  = errors.New("duplicate trade id")
)

// Repository persists whole accounts. store.Bolt and journal.SQLite
// implement it.
type Repository interface {
	Save(ctx context.Context, a account.Account) error
	Load(ctx context.Context, id string) (account.Account, error)
	List(ctx context.Context) ([]account.Account, error)
	Delete(ctx context.Context, id string) error
}

// MutationObserver is told about every ledger operation.
type MutationObserver interface {
	ObserveMutation(op string)
}

type entry struct {
	acct   account.Account
	result engine.Result
}

type Tracker struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	engine   *engine.Engine
	repo     Repository
	now      func() time.Time
	ids      *id.Generator
	personal float64
	observer MutationObserver
	log      zerolog.Logger
}

type Option func(*Tracker)

func WithRepository(r Repository) Option { return func(t *Tracker) { t.repo = r } }

// WithClock injects the source of "today" and creation times.
func WithClock(now func() time.Time) Option { return func(t *Tracker) { t.now = now } }

func WithEngine(e *engine.Engine) Option { return func(t *Tracker) { t.engine = e } }

// WithPersonalSize sets the synthetic size of personal accounts.
func WithPersonalSize(size float64) Option { return func(t *Tracker) { t.personal = size } }

func WithMutationObserver(o MutationObserver) Option { return func(t *Tracker) { t.observer = o } }

func WithLogger(l zerolog.Logger) Option { return func(t *Tracker) { t.log = l } }

func New(opts ...Option) *Tracker {
	t := &Tracker{
		entries:  make(map[string]*entry),
		now:      time.Now,
		personal: account.DefaultPersonalSize,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.engine == nil {
		t.engine = engine.New(engine.WithLogger(t.log))
	}
	t.ids = id.NewGenerator(t.now)
	return t
}

// Load reads every account from the repository and recomputes its status
// as of now. Accounts already in memory are replaced.
func (t *Tracker) Load(ctx context.Context) error {
	if t.repo == nil {
		return nil
	}
	accts, err := t.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, a := range accts {
		if err := a.Validate(); err != nil {
			t.log.Warn().Err(err).Str("account", a.ID).Msg("skipping invalid stored account")
			continue
		}
		t.entries[a.ID] = t.evaluate(a)
	}
	t.log.Debug().Int("accounts", len(t.entries)).Msg("tracker loaded")
	return nil
}

func (t *Tracker) evaluate(a account.Account) *entry {
	prev := a.Status
	res := t.engine.Compute(engine.Input{
		AccountID: a.ID,
		Kind:      a.Kind,
		Rules:     a.EffectiveRules(t.personal),
		Trades:    a.Trades,
		Today:     t.now(),
		Previous:  &prev,
	})
	a.Status = res.Status
	return &entry{acct: a, result: res}
}

// commit persists next and swaps it in. Caller holds the write lock.
func (t *Tracker) commit(ctx context.Context, next *entry) error {
	if t.repo != nil {
		if err := t.repo.Save(ctx, next.acct); err != nil {
			return fmt.Errorf("save account %s: %w", next.acct.ID, err)
		}
	}
	t.entries[next.acct.ID] = next
	return nil
}

func (t *Tracker) observe(op string) {
	if t.observer != nil {
		t.observer.ObserveMutation(op)
	}
}

// CreateChallenge adds a challenge account with an empty ledger.
func (t *Tracker) CreateChallenge(ctx context.Context, name string, r account.Rules) (account.Account, error) {
	a, err := account.NewChallenge(t.ids.New(), name, r, t.now())
	if err != nil {
		return account.Account{}, err
	}
	return t.create(ctx, a)
}

// CreatePersonal adds a personal account.
func (t *Tracker) CreatePersonal(ctx context.Context, name string) (account.Account, error) {
	a, err := account.NewPersonal(t.ids.New(), name, t.personal, t.now())
	if err != nil {
		return account.Account{}, err
	}
	return t.create(ctx, a)
}

func (t *Tracker) create(ctx context.Context, a account.Account) (account.Account, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.evaluate(a)
	if err := t.commit(ctx, next); err != nil {
		return account.Account{}, err
	}
	t.log.Info().Str("account", a.ID).Str("kind", string(a.Kind)).Msg("account created")
	return next.acct.Clone(), nil
}

// Account returns a copy of the account with id.
func (t *Tracker) Account(id string) (account.Account, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[id]
	if !ok {
		return account.Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	return e.acct.Clone(), nil
}

// Result returns the latest computation result for id, including whether
// the status is fresh.
func (t *Tracker) Result(id string) (engine.Result, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[id]
	if !ok {
		return engine.Result{}, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	res := e.result
	res.Status = res.Status.Clone()
	return res, nil
}

// Accounts returns copies of all accounts ordered by id, which is creation
// order for generated ids.
func (t *Tracker) Accounts() []account.Account {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]account.Account, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e.acct.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DeleteAccount removes the account and its ledger.
func (t *Tracker) DeleteAccount(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	if t.repo != nil {
		if err := t.repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete account %s: %w", id, err)
		}
	}
	delete(t.entries, id)
	t.log.Info().Str("account", id).Msg("account deleted")
	return nil
}

// AddTrade appends a trade, assigning an id when it has none.
func (t *Tracker) AddTrade(ctx context.Context, accountID string, tr account.Trade) (account.Trade, engine.Result, error) {
	var added account.Trade
	res, err := t.mutate(ctx, accountID, "add", func(l *Ledger) error {
		var err error
		added, err = l.Add(tr)
		return err
	})
	return added, res, err
}

// UpdateTrade replaces the trade with the same id.
func (t *Tracker) UpdateTrade(ctx context.Context, accountID string, tr account.Trade) (engine.Result, error) {
	return t.mutate(ctx, accountID, "update", func(l *Ledger) error { return l.Update(tr) })
}

// DeleteTrade removes a trade by id.
func (t *Tracker) DeleteTrade(ctx context.Context, accountID, tradeID string) (engine.Result, error) {
	return t.mutate(ctx, accountID, "delete", func(l *Ledger) error { return l.Delete(tradeID) })
}

// Batch applies several ledger edits and recomputes the status once. If fn
// returns an error nothing is applied.
func (t *Tracker) Batch(ctx context.Context, accountID string, fn func(l *Ledger) error) (engine.Result, error) {
	return t.mutate(ctx, accountID, "batch", fn)
}

// Refresh recomputes the status as of now without touching the ledger;
// call it when the day rolls over.
func (t *Tracker) Refresh(ctx context.Context, accountID string) (engine.Result, error) {
	return t.mutate(ctx, accountID, "refresh", func(*Ledger) error { return nil })
}

func (t *Tracker) mutate(ctx context.Context, accountID, op string, fn func(l *Ledger) error) (engine.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.entries[accountID]
	if !ok {
		return engine.Result{}, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}

	next := cur.acct.Clone()
	l := &Ledger{trades: next.Trades, ids: t.ids}
	if err := fn(l); err != nil {
		return engine.Result{}, err
	}
	next.Trades = l.trades

	e := t.evaluate(next)
	if err := t.commit(ctx, e); err != nil {
		return engine.Result{}, err
	}
	t.observe(op)
	t.log.Debug().Str("account", accountID).Str("op", op).Int("trades", len(next.Trades)).
		Bool("fresh", e.result.Fresh).Msg("ledger updated")

	res := e.result
	res.Status = res.Status.Clone()
	return res, nil
}

// Advise runs the advisory generator against the latest status.
func (t *Tracker) Advise(accountID string) ([]advisory.Item, error) {
	a, err := t.Account(accountID)
	if err != nil {
		return nil, err
	}
	return advisory.Generate(a.Status, a.Rules, a.Trades), nil
}

// PersonalSize is the synthetic size personal accounts are evaluated with.
func (t *Tracker) PersonalSize() float64 { return t.personal }
