// Package advisory turns an account status into ordered, human-readable
// recommendations. It is read-only and stateless.
package advisory

import (
	"fmt"
	"sort"

	"github.com/rustyeddy/proptrack/account"
	"github.com/rustyeddy/proptrack/engine"
	"github.com/rustyeddy/proptrack/risk"
)

type Kind string

const (
	Alert       Kind = "alert"
	Insight     Kind = "insight"
	Tip         Kind = "tip"
	Strategy    Kind = "strategy"
	Information Kind = "information"
)

type Item struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// dailyWarnFraction: alert once remaining daily room drops below this
// share of the allowance.
const dailyWarnFraction = 0.70

var progressTiers = []struct {
	at   float64
	text string
}{
	{0.75, "Over 75%% of the profit target reached (%.0f%%). Protect the gains and avoid oversized trades."},
	{0.50, "Halfway to the profit target (%.0f%%). Stay with the process that got you here."},
	{0.25, "A quarter of the profit target is done (%.0f%%). Keep risk per trade steady."},
}

type facts struct {
	st     account.Status
	rules  *account.Rules
	ledger engine.Ledger
	last   *account.Trade
	total  float64
}

type rule func(f facts) []Item

// rules are evaluated in order; their output order is the result order.
var rules = []rule{
	violations,
	lastTradeRisk,
	dailyRoom,
	riskCeiling,
	requiredDailyGain,
	progress,
	consistency,
	negativePnL,
	emptyLedger,
}

// Generate produces advisories for an account. rules is nil for personal
// accounts, which only receive the general messages.
func Generate(st account.Status, r *account.Rules, trades []account.Trade) []Item {
	f := facts{st: st, rules: r, ledger: engine.Bucketize(trades)}
	for _, t := range f.ledger.Valid {
		f.total += t.PnL
	}
	f.last = mostRecent(f.ledger.Valid)

	out := []Item{}
	for _, rl := range rules {
		out = append(out, rl(f)...)
	}
	return out
}

func mostRecent(trades []account.Trade) *account.Trade {
	if len(trades) == 0 {
		return nil
	}
	sorted := append([]account.Trade(nil), trades...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, _ := sorted[i].Time()
		tj, _ := sorted[j].Time()
		return ti.Before(tj)
	})
	return &sorted[len(sorted)-1]
}

func violations(f facts) []Item {
	var out []Item
	if f.st.IsOverallDrawdownViolated {
		out = append(out, Item{Alert, "Overall drawdown limit breached. The challenge is failed under these rules; stop trading this account."})
	}
	if f.st.IsDailyDrawdownViolated {
		out = append(out, Item{Alert, "Daily loss limit reached. No more trades today."})
	}
	return out
}

func lastTradeRisk(f facts) []Item {
	if f.rules == nil || f.last == nil || f.last.PnL >= 0 {
		return nil
	}
	ceiling := risk.TradeRiskCeiling(*f.rules)
	if -f.last.PnL <= ceiling {
		return nil
	}
	return []Item{{Alert, fmt.Sprintf(
		"Your last trade lost %.2f (%.1f%% of equity), more than the per-trade risk ceiling of %.2f. Cut position size on the next trade.",
		-f.last.PnL, 100*risk.RiskPct(-f.last.PnL, f.st.CurrentEquity), ceiling)}}
}

func dailyRoom(f facts) []Item {
	if f.rules == nil || f.st.IsDailyDrawdownViolated {
		return nil
	}
	allowance := f.rules.DailyLossAllowance()
	if f.st.DistanceToDailyDrawdown >= dailyWarnFraction*allowance {
		return nil
	}
	return []Item{{Alert, fmt.Sprintf(
		"You have used %.0f%% of today's loss allowance; %.2f of room remains.",
		100*risk.Used(allowance, f.st.DistanceToDailyDrawdown), f.st.DistanceToDailyDrawdown)}}
}

func riskCeiling(f facts) []Item {
	if f.rules == nil {
		return nil
	}
	return []Item{{Strategy, fmt.Sprintf(
		"Risk at most %.2f per trade: the lower of 2%% of the account and 40%% of the daily loss allowance.",
		risk.TradeRiskCeiling(*f.rules))}}
}

func requiredDailyGain(f facts) []Item {
	if f.rules == nil || f.st.IsOverallDrawdownViolated {
		return nil
	}
	remaining := f.rules.TargetEquity() - f.st.CurrentEquity
	if remaining <= 0 {
		return nil
	}
	days := f.rules.MinTradingDays - f.st.DaysTraded.Len()
	if days < 1 {
		days = 1
	}
	return []Item{{Insight, fmt.Sprintf(
		"%.2f left to the profit target: about %.2f per day over the next %d trading day(s).",
		remaining, remaining/float64(days), days)}}
}

func progress(f facts) []Item {
	if f.rules == nil || f.rules.ProfitTarget <= 0 {
		return nil
	}
	p := (f.st.CurrentEquity - f.rules.AccountSize) / f.rules.ProfitTarget
	if p >= 1 {
		if f.st.IsPassed {
			return []Item{{Information, "Challenge passed: target met, trading days complete and no limits breached."}}
		}
		if short := f.rules.MinTradingDays - f.st.DaysTraded.Len(); short > 0 {
			return []Item{{Information, fmt.Sprintf(
				"Profit target met. Trade %d more day(s) with minimal risk to satisfy the minimum trading days.", short)}}
		}
		return nil
	}
	for _, tier := range progressTiers {
		if p >= tier.at {
			return []Item{{Tip, fmt.Sprintf(tier.text, 100*p)}}
		}
	}
	return nil
}

func consistency(f facts) []Item {
	if f.rules == nil || f.rules.ConsistencyRulePct == nil || f.total <= 0 {
		return nil
	}
	best, bestDay := 0.0, ""
	for day := range f.ledger.ByDay {
		if p := f.ledger.DayPnL(day); p > best || (p == best && day < bestDay) {
			best, bestDay = p, day
		}
	}
	limit := *f.rules.ConsistencyRulePct
	share := 100 * best / f.total
	if share <= limit {
		return nil
	}
	return []Item{{Insight, fmt.Sprintf(
		"Best day %s made %.0f%% of total profit, above the %.0f%% consistency limit. Spread gains over more days.",
		bestDay, share, limit)}}
}

func negativePnL(f facts) []Item {
	if f.total >= 0 || len(f.ledger.Valid) == 0 {
		return nil
	}
	return []Item{{Tip, fmt.Sprintf(
		"Cumulative P/L is negative (%.2f). Review losing setups and trade smaller until it turns.", f.total)}}
}

func emptyLedger(f facts) []Item {
	if len(f.ledger.Valid) > 0 {
		return nil
	}
	return []Item{{Information, "No trades recorded yet."}}
}
