package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRules() Rules {
	return Rules{
		AccountSize:           100000,
		ProfitTarget:          10000,
		MaxDailyDrawdownPct:   5,
		MaxOverallDrawdownPct: 10,
		DrawdownType:          Static,
		MinTradingDays:        4,
	}
}

func TestRulesValidate(t *testing.T) {
	t.Parallel()

	pct := func(v float64) *float64 { return &v }

	tests := []struct {
		name   string
		mutate func(r *Rules)
		errMsg string
	}{
		{"valid", func(r *Rules) {}, ""},
		{"zero size", func(r *Rules) { r.AccountSize = 0 }, "account_size must be positive"},
		{"negative target", func(r *Rules) { r.ProfitTarget = -1 }, "profit_target"},
		{"daily over 100", func(r *Rules) { r.MaxDailyDrawdownPct = 101 }, "max_daily_drawdown_pct"},
		{"overall zero", func(r *Rules) { r.MaxOverallDrawdownPct = 0 }, "max_overall_drawdown_pct"},
		{"bad type", func(r *Rules) { r.DrawdownType = "relative" }, "drawdown_type"},
		{"negative days", func(r *Rules) { r.MinTradingDays = -2 }, "min_trading_days"},
		{"consistency zero", func(r *Rules) { r.ConsistencyRulePct = pct(0) }, "consistency_rule_pct"},
		{"consistency ok", func(r *Rules) { r.ConsistencyRulePct = pct(30) }, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := validRules()
			tt.mutate(&r)
			err := r.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRules)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestRulesAllowances(t *testing.T) {
	t.Parallel()

	r := validRules()
	assert.InDelta(t, 5000.0, r.DailyLossAllowance(), 1e-9)
	assert.InDelta(t, 10000.0, r.OverallLossAllowance(r.AccountSize), 1e-9)
	assert.InDelta(t, 12000.0, r.OverallLossAllowance(120000), 1e-9)
	assert.InDelta(t, 110000.0, r.TargetEquity(), 1e-9)
}

func TestParseDrawdownType(t *testing.T) {
	t.Parallel()

	dt, err := ParseDrawdownType("Trailing")
	require.NoError(t, err)
	assert.Equal(t, Trailing, dt)

	dt, err = ParseDrawdownType(" static ")
	require.NoError(t, err)
	assert.Equal(t, Static, dt)

	_, err = ParseDrawdownType("relative")
	assert.Error(t, err)
}

func TestNewChallenge(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	a, err := NewChallenge("A1", "FTMO 100k", validRules(), created)
	require.NoError(t, err)

	assert.Equal(t, Challenge, a.Kind)
	require.NotNil(t, a.Rules)
	assert.Empty(t, a.Trades)
	assert.Equal(t, 100000.0, a.Status.CurrentEquity)
	assert.Equal(t, 100000.0, a.Status.HighWaterMark)
	assert.Equal(t, 0, a.Status.DaysTraded.Len())
	assert.InDelta(t, 5000.0, a.Status.DistanceToDailyDrawdown, 1e-9)
	assert.InDelta(t, 10000.0, a.Status.DistanceToOverallDrawdown, 1e-9)
	assert.False(t, a.Status.IsPassed)

	bad := validRules()
	bad.AccountSize = -5
	_, err = NewChallenge("A2", "bad", bad, created)
	assert.ErrorIs(t, err, ErrInvalidRules)
}

func TestNewPersonal(t *testing.T) {
	t.Parallel()

	a, err := NewPersonal("P1", "swing", 0, time.Now())
	require.NoError(t, err)
	assert.Nil(t, a.Rules)
	assert.Equal(t, DefaultPersonalSize, a.Status.CurrentEquity)
	assert.Equal(t, DefaultPersonalSize, a.EffectiveRules(0).AccountSize)
	assert.Equal(t, 25000.0, a.EffectiveRules(25000).AccountSize)
}

func TestAccountValidateVariants(t *testing.T) {
	t.Parallel()

	r := validRules()

	assert.Error(t, Account{Kind: Challenge}.Validate(), "missing id")
	assert.ErrorIs(t, Account{ID: "x", Kind: Challenge}.Validate(), ErrInvalidAccount)
	assert.ErrorIs(t, Account{ID: "x", Kind: Personal, Rules: &r}.Validate(), ErrInvalidAccount)
	assert.ErrorIs(t, Account{ID: "x", Kind: "demo"}.Validate(), ErrInvalidAccount)
	assert.NoError(t, Account{ID: "x", Kind: Personal}.Validate())
}

func TestAccountCloneIsDeep(t *testing.T) {
	t.Parallel()

	pct := 40.0
	r := validRules()
	r.ConsistencyRulePct = &pct
	a, err := NewChallenge("A1", "c", r, time.Now())
	require.NoError(t, err)
	a.Trades = append(a.Trades, Trade{ID: "T1", Date: "2024-01-02", PnL: 10})
	a.Status.DaysTraded.Add("2024-01-02")

	c := a.Clone()
	c.Trades[0].PnL = 99
	c.Rules.AccountSize = 1
	*c.Rules.ConsistencyRulePct = 1
	c.Status.DaysTraded.Add("2024-01-03")

	assert.Equal(t, 10.0, a.Trades[0].PnL)
	assert.Equal(t, 100000.0, a.Rules.AccountSize)
	assert.Equal(t, 40.0, *a.Rules.ConsistencyRulePct)
	assert.Equal(t, 1, a.Status.DaysTraded.Len())
	assert.Equal(t, 0, a.FindTrade("T1"))
	assert.Equal(t, -1, a.FindTrade("nope"))
}
