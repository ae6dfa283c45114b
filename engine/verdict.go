package engine

import "github.com/rustyeddy/proptrack/account"

// Passed reports whether a challenge meets every pass condition. Personal
// accounts never pass. The verdict is not sticky.
func Passed(kind account.Kind, r account.Rules, st account.Status) bool {
	if kind != account.Challenge {
		return false
	}
	return st.CurrentEquity >= r.TargetEquity() &&
		st.DaysTraded.Len() >= r.MinTradingDays &&
		!st.IsOverallDrawdownViolated &&
		!st.IsDailyDrawdownViolated
}
