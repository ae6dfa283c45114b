package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rustyeddy/proptrack/account"
	"github.com/rustyeddy/proptrack/advisory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu      sync.Mutex
	data    map[string]account.Account
	saves   int
	failErr error
}

func newMemRepo() *memRepo { return &memRepo{data: map[string]account.Account{}} }

func (m *memRepo) Save(_ context.Context, a account.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.saves++
	m.data[a.ID] = a.Clone()
	return nil
}

func (m *memRepo) Load(_ context.Context, id string) (account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.data[id]
	if !ok {
		return account.Account{}, errors.New("missing")
	}
	return a.Clone(), nil
}

func (m *memRepo) List(_ context.Context) ([]account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []account.Account
	for _, a := range m.data {
		out = append(out, a.Clone())
	}
	return out, nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

type countingObserver struct{ ops []string }

func (c *countingObserver) ObserveMutation(op string) { c.ops = append(c.ops, op) }

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func rules() account.Rules {
	return account.Rules{
		AccountSize:           100000,
		ProfitTarget:          10000,
		MaxDailyDrawdownPct:   5,
		MaxOverallDrawdownPct: 10,
		DrawdownType:          account.Static,
		MinTradingDays:        2,
	}
}

func newTracker(t *testing.T) (*Tracker, *memRepo, *clock, *countingObserver) {
	t.Helper()
	repo := newMemRepo()
	clk := &clock{now: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	obs := &countingObserver{}
	return New(WithRepository(repo), WithClock(clk.Now), WithMutationObserver(obs)), repo, clk, obs
}

func TestCreateAndMutate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr, repo, _, obs := newTracker(t)

	a, err := tr.CreateChallenge(ctx, "FTMO", rules())
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	assert.Equal(t, 1, repo.saves)

	added, res, err := tr.AddTrade(ctx, a.ID, account.Trade{Date: "2024-05-09", PnL: 6000})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.True(t, res.Fresh)
	assert.Equal(t, 106000.0, res.Status.CurrentEquity)

	_, res, err = tr.AddTrade(ctx, a.ID, account.Trade{ID: "T2", Date: "2024-05-10", PnL: 4500})
	require.NoError(t, err)
	assert.True(t, res.Status.IsPassed)

	res, err = tr.UpdateTrade(ctx, a.ID, account.Trade{ID: "T2", Date: "2024-05-10", PnL: -5200})
	require.NoError(t, err)
	assert.True(t, res.Status.IsDailyDrawdownViolated)
	assert.False(t, res.Status.IsPassed)

	res, err = tr.DeleteTrade(ctx, a.ID, "T2")
	require.NoError(t, err)
	assert.Equal(t, 106000.0, res.Status.CurrentEquity)
	assert.Equal(t, 1, res.Status.DaysTraded.Len())

	got, err := tr.Account(a.ID)
	require.NoError(t, err)
	assert.Len(t, got.Trades, 1)
	assert.Equal(t, res.Status, got.Status)

	stored, err := repo.Load(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)

	assert.Equal(t, []string{"add", "add", "update", "delete"}, obs.ops)
}

func TestMutationErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr, _, _, _ := newTracker(t)
	a, err := tr.CreateChallenge(ctx, "c", rules())
	require.NoError(t, err)

	_, _, err = tr.AddTrade(ctx, "nope", account.Trade{Date: "2024-05-01", PnL: 1})
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = tr.UpdateTrade(ctx, a.ID, account.Trade{ID: "missing"})
	assert.ErrorIs(t, err, ErrTradeNotFound)

	_, err = tr.DeleteTrade(ctx, a.ID, "missing")
	assert.ErrorIs(t, err, ErrTradeNotFound)

	_, _, err = tr.AddTrade(ctx, a.ID, account.Trade{ID: "T1", Date: "2024-05-01", PnL: 1})
	require.NoError(t, err)
	_, _, err = tr.AddTrade(ctx, a.ID, account.Trade{ID: "T1", Date: "2024-05-02", PnL: 1})
	assert.ErrorIs(t, err, ErrDuplicateTrade)

	_, err = tr.CreateChallenge(ctx, "bad", account.Rules{})
	assert.ErrorIs(t, err, account.ErrInvalidRules)
}

func TestBatchRecomputesOnceAndIsAtomic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr, repo, _, obs := newTracker(t)
	a, err := tr.CreateChallenge(ctx, "c", rules())
	require.NoError(t, err)
	saves := repo.saves

	res, err := tr.Batch(ctx, a.ID, func(l *Ledger) error {
		for _, pnl := range []float64{1000, 2000, -500} {
			if _, err := l.Add(account.Trade{Date: "2024-05-08", PnL: pnl}); err != nil {
				return err
			}
		}
		assert.Len(t, l.Trades(), 3)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 102500.0, res.Status.CurrentEquity)
	assert.Equal(t, saves+1, repo.saves)
	assert.Equal(t, []string{"batch"}, obs.ops)

	boom := errors.New("boom")
	_, err = tr.Batch(ctx, a.ID, func(l *Ledger) error {
		_, _ = l.Add(account.Trade{Date: "2024-05-09", PnL: -90000})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := tr.Account(a.ID)
	require.NoError(t, err)
	assert.Len(t, got.Trades, 3)
	assert.Equal(t, 102500.0, got.Status.CurrentEquity)
}

func TestSaveFailureKeepsPreviousEntry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr, repo, _, _ := newTracker(t)
	a, err := tr.CreateChallenge(ctx, "c", rules())
	require.NoError(t, err)

	repo.failErr = errors.New("disk full")
	_, _, err = tr.AddTrade(ctx, a.ID, account.Trade{Date: "2024-05-09", PnL: 100})
	assert.ErrorContains(t, err, "disk full")

	got, err := tr.Account(a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Trades)
	assert.Equal(t, 100000.0, got.Status.CurrentEquity)
}

func TestRefreshFollowsClock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr, _, clk, _ := newTracker(t)
	a, err := tr.CreateChallenge(ctx, "c", rules())
	require.NoError(t, err)

	_, res, err := tr.AddTrade(ctx, a.ID, account.Trade{Date: "2024-05-10", PnL: -3000})
	require.NoError(t, err)
	assert.InDelta(t, 2000.0, res.Status.DistanceToDailyDrawdown, 1e-9)

	clk.Set(time.Date(2024, 5, 11, 9, 0, 0, 0, time.UTC))
	res, err = tr.Refresh(ctx, a.ID)
	require.NoError(t, err)
	assert.InDelta(t, 5000.0, res.Status.DistanceToDailyDrawdown, 1e-9)
	assert.Equal(t, clk.Now(), res.Status.AsOf)
}

func TestLoadRecomputesAndSkipsInvalid(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemRepo()

	a, err := account.NewChallenge("A1", "c", rules(), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	a.Trades = []account.Trade{{ID: "T1", Date: "2024-05-02", PnL: 2500}}
	// stored status is stale on purpose
	repo.data[a.ID] = a
	repo.data["broken"] = account.Account{ID: "broken", Kind: account.Challenge}

	tr := New(WithRepository(repo), WithClock(func() time.Time { return time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC) }))
	require.NoError(t, tr.Load(ctx))

	accts := tr.Accounts()
	require.Len(t, accts, 1)
	assert.Equal(t, 102500.0, accts[0].Status.CurrentEquity)

	res, err := tr.Result("A1")
	require.NoError(t, err)
	assert.True(t, res.Fresh)

	_, err = tr.Result("broken")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestPersonalAccountAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemRepo()
	tr := New(WithRepository(repo), WithPersonalSize(25000))

	p, err := tr.CreatePersonal(ctx, "swing")
	require.NoError(t, err)
	assert.Equal(t, 25000.0, p.Status.CurrentEquity)
	assert.Equal(t, 25000.0, tr.PersonalSize())

	_, res, err := tr.AddTrade(ctx, p.ID, account.Trade{Date: "2024-01-01", PnL: 30000})
	require.NoError(t, err)
	assert.False(t, res.Status.IsPassed)

	require.NoError(t, tr.DeleteAccount(ctx, p.ID))
	assert.Empty(t, tr.Accounts())
	assert.Empty(t, repo.data)
	assert.ErrorIs(t, tr.DeleteAccount(ctx, p.ID), ErrAccountNotFound)
}

func TestAccountsAreCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr := New()
	a, err := tr.CreateChallenge(ctx, "c", rules())
	require.NoError(t, err)
	_, _, err = tr.AddTrade(ctx, a.ID, account.Trade{ID: "T1", Date: "2024-05-01", PnL: 10})
	require.NoError(t, err)

	got, err := tr.Account(a.ID)
	require.NoError(t, err)
	got.Trades[0].PnL = 1e9
	got.Status.DaysTraded.Add("2099-01-01")

	again, err := tr.Account(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, again.Trades[0].PnL)
	assert.Equal(t, 1, again.Status.DaysTraded.Len())
}

func TestConcurrentReadersSeeWholeStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr := New()
	a, err := tr.CreateChallenge(ctx, "c", rules())
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, _, _ = tr.AddTrade(ctx, a.ID, account.Trade{Date: "2024-05-01", PnL: 1})
		}
	}()

	for i := 0; i < 200; i++ {
		got, err := tr.Account(a.ID)
		require.NoError(t, err)
		// equity always matches the ledger it was computed from
		assert.InDelta(t, 100000+float64(len(got.Trades)), got.Status.CurrentEquity, 1e-9)
	}
	wg.Wait()
}

func TestAdvise(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr := New()
	a, err := tr.CreateChallenge(ctx, "c", rules())
	require.NoError(t, err)

	items, err := tr.Advise(a.ID)
	require.NoError(t, err)
	require.NotEmpty(t, items)
	assert.Equal(t, advisory.Strategy, items[0].Kind)

	_, err = tr.Advise("nope")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
