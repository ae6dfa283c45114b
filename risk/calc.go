package risk

import (
	"math"

	"github.com/rustyeddy/proptrack/account"
)

const (
	maxRiskOfAccount   = 0.02 // 2% of account size
	maxRiskOfDailyRoom = 0.40 // 40% of the daily loss allowance
)

// TradeRiskCeiling is the most a single trade should risk:
// min(2% of account size, 40% of the daily loss allowance).
func TradeRiskCeiling(r account.Rules) float64 {
	return math.Min(maxRiskOfAccount*r.AccountSize, maxRiskOfDailyRoom*r.DailyLossAllowance())
}

// RiskPct returns amount as a fraction of equity.
func RiskPct(amount, equity float64) float64 {
	if equity <= 0 {
		return math.Inf(1)
	}
	return amount / equity
}

// Used returns the fraction of an allowance already consumed given the
// remaining distance, clamped to [0,1].
func Used(allowance, distance float64) float64 {
	if allowance <= 0 {
		return 1
	}
	u := 1 - distance/allowance
	return math.Max(0, math.Min(1, u))
}
