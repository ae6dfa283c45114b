package journal

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/proptrack/account"
	"github.com/rustyeddy/proptrack/advisory"
	"github.com/rustyeddy/proptrack/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTradeOrg(t *testing.T) {
	t.Parallel()

	trade := account.Trade{
		ID:         "01HZX3Y4ABCDEF",
		Date:       "2024-03-15",
		PnL:        250,
		Instrument: "EUR_USD",
		Notes:      "trend-following",
	}

	result := FormatTradeOrg(trade)

	assert.Contains(t, result, "** Trade: 2024-03-15 EUR_USD (01HZX3Y4)")
	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":TRADE_ID: 01HZX3Y4ABCDEF")
	assert.Contains(t, result, ":DATE: 2024-03-15")
	assert.Contains(t, result, ":PNL: 250.00")
	assert.Contains(t, result, ":INSTRUMENT: EUR_USD")
	assert.Contains(t, result, ":END:")
	assert.Contains(t, result, "trend-following")
	assert.Contains(t, result, "*** Review")
}

func TestFormatTradeOrgExcluded(t *testing.T) {
	t.Parallel()

	result := FormatTradeOrg(account.Trade{ID: "short", Date: "2024-03-15", PnL: math.NaN()})
	assert.Contains(t, result, "** Trade: 2024-03-15 - (short)")
	assert.Contains(t, result, ":PNL: (excluded)")
}

func TestFormatTradesOrg(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", FormatTradesOrg(nil))

	out := FormatTradesOrg([]account.Trade{
		{ID: "A", Date: "2024-01-01", PnL: 1},
		{ID: "B", Date: "2024-01-02", PnL: 2},
	})
	assert.Equal(t, 2, strings.Count(out, "** Trade:"))
	assert.Contains(t, out, "\n\n\n** Trade: 2024-01-02")
}

func TestFormatStatusOrg(t *testing.T) {
	t.Parallel()

	a := testAccount(t, "A1")
	res := engine.New().Compute(engine.Input{
		AccountID: a.ID,
		Kind:      a.Kind,
		Rules:     *a.Rules,
		Trades:    append(a.Trades, account.Trade{ID: "bad", Date: "nope", PnL: 1}),
		Today:     fixedNow,
	})
	items := advisory.Generate(res.Status, a.Rules, a.Trades)

	out, err := FormatStatusOrg(Report{
		Account:    a,
		Rules:      *a.Rules,
		Result:     res,
		Advisories: items,
		Generated:  time.Date(2024, 5, 10, 18, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Contains(t, out, "* ACCOUNT: FTMO A1 (challenge)")
	assert.Contains(t, out, ":FRESH:       yes")
	assert.Contains(t, out, "| Profit target        | 10000.00 |")
	assert.Contains(t, out, "| Consistency rule     | 35.00% |")
	assert.Contains(t, out, "- Equity:             *100949.75*")
	assert.Contains(t, out, "- P/L:                *949.75*")
	assert.Contains(t, out, "- Days traded:        *2*")
	assert.Contains(t, out, "- Passed:             *no*")
	assert.Contains(t, out, "| 2 | 1 |")
	assert.Contains(t, out, "** Advisories")
	assert.Contains(t, out, "- STRATEGY: Risk at most 2000.00 per trade")
	assert.NotContains(t, out, "could not be recomputed")
}

func TestFormatStatusOrgPersonalFallback(t *testing.T) {
	t.Parallel()

	p, err := account.NewPersonal("P1", "swing", 0, fixedNow)
	require.NoError(t, err)

	out, err := FormatStatusOrg(Report{
		Account:   p,
		Rules:     p.EffectiveRules(0),
		Result:    engine.Result{Status: p.Status, Reason: "panic: boom"},
		Generated: fixedNow,
	})
	require.NoError(t, err)
	assert.Contains(t, out, ":FRESH:       no")
	assert.Contains(t, out, "Status could not be recomputed (panic: boom)")
	assert.NotContains(t, out, "Profit target")
	assert.NotContains(t, out, "Passed:")
	assert.NotContains(t, out, "** Advisories")
}
