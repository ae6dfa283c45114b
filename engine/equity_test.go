package engine

import (
	"testing"

	"github.com/rustyeddy/proptrack/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighWaterMarkIsPathDependent(t *testing.T) {
	t.Parallel()

	trades := []account.Trade{
		{ID: "c", Date: "2024-01-03", PnL: -4000},
		{ID: "a", Date: "2024-01-01", PnL: 3000},
		{ID: "b", Date: "2024-01-02", PnL: 2000},
	}

	hwm, err := HighWaterMark(10000, trades)
	require.NoError(t, err)
	assert.InDelta(t, 15000.0, hwm, 1e-9)
	assert.InDelta(t, 11000.0, CurrentEquity(10000, trades), 1e-9)
}

func TestHighWaterMarkIntraday(t *testing.T) {
	t.Parallel()

	trades := []account.Trade{
		{ID: "late", Date: "2024-01-01T16:00:00Z", PnL: -500},
		{ID: "early", Date: "2024-01-01T09:00:00Z", PnL: 800},
	}
	hwm, err := HighWaterMark(1000, trades)
	require.NoError(t, err)
	assert.InDelta(t, 1800.0, hwm, 1e-9)
}

func TestHighWaterMarkNeverBelowSize(t *testing.T) {
	t.Parallel()

	hwm, err := HighWaterMark(5000, []account.Trade{{Date: "2024-01-01", PnL: -100}})
	require.NoError(t, err)
	assert.Equal(t, 5000.0, hwm)
}

func TestReplayFallsBackOnUnparsableDate(t *testing.T) {
	t.Parallel()

	trades := []account.Trade{
		{ID: "a", Date: "2024-01-01", PnL: 300},
		{ID: "b", Date: "garbage", PnL: -100},
	}
	eq, err := Replay(1000, trades)
	assert.Error(t, err)
	assert.InDelta(t, 1200.0, eq.Current, 1e-9)
	assert.InDelta(t, 1200.0, eq.HighWaterMark, 1e-9)
}

func TestCurrentEquityIsExact(t *testing.T) {
	t.Parallel()

	trades := make([]account.Trade, 10)
	for i := range trades {
		trades[i] = account.Trade{Date: "2024-01-01", PnL: 0.1}
	}
	assert.Equal(t, 1.0, CurrentEquity(0, trades))
}

func TestBucketize(t *testing.T) {
	t.Parallel()

	l := Bucketize([]account.Trade{
		{ID: "1", Date: "2024-01-01", PnL: 10},
		{ID: "2", Date: "2024-01-01T18:00:00Z", PnL: -4},
		{ID: "3", Date: "2024-01-02", PnL: 7},
		{ID: "4", Date: "01/02/2024", PnL: 7},
	})

	assert.Len(t, l.Valid, 3)
	assert.Equal(t, 1, l.Dropped)
	assert.Len(t, l.ByDay["2024-01-01"], 2)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, l.DaysTraded().Sorted())
	assert.InDelta(t, 6.0, l.DayPnL("2024-01-01"), 1e-9)
	assert.Equal(t, 0.0, l.DayPnL("2024-01-05"))
}

func TestPassed(t *testing.T) {
	t.Parallel()

	r := testRules(account.Static)
	st := account.Status{CurrentEquity: 110000, DaysTraded: account.NewDaySet("a", "b", "c", "d")}

	assert.True(t, Passed(account.Challenge, r, st))
	assert.False(t, Passed(account.Personal, r, st))

	short := st
	short.CurrentEquity = 109999.99
	assert.False(t, Passed(account.Challenge, r, short))

	violated := st
	violated.IsOverallDrawdownViolated = true
	assert.False(t, Passed(account.Challenge, r, violated))

	daily := st
	daily.IsDailyDrawdownViolated = true
	assert.False(t, Passed(account.Challenge, r, daily))
}
