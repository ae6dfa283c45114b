package account

import (
	"errors"
	"fmt"
	"strings"
)

// Kind distinguishes funded-account challenges from personal accounts.
type Kind string

const (
	Challenge Kind = "challenge"
	Personal  Kind = "personal"
)

// DrawdownType selects the baseline the overall drawdown is measured from.
type DrawdownType string

const (
	Static   DrawdownType = "static"
	Trailing DrawdownType = "trailing"
)

// DefaultPersonalSize is the synthetic account size used for personal
// accounts when nothing else is configured.
const DefaultPersonalSize = 10000.0

var ErrInvalidRules = errors.New("invalid rules")

// Rules are the prop-firm parameters fixed at account creation.
type Rules struct {
	AccountSize           float64      `json:"account_size" yaml:"account_size"`
	ProfitTarget          float64      `json:"profit_target" yaml:"profit_target"` // absolute currency
	MaxDailyDrawdownPct   float64      `json:"max_daily_drawdown_pct" yaml:"max_daily_drawdown_pct"`
	MaxOverallDrawdownPct float64      `json:"max_overall_drawdown_pct" yaml:"max_overall_drawdown_pct"`
	DrawdownType          DrawdownType `json:"drawdown_type" yaml:"drawdown_type"`
	MinTradingDays        int          `json:"min_trading_days" yaml:"min_trading_days"`
	ConsistencyRulePct    *float64     `json:"consistency_rule_pct,omitempty" yaml:"consistency_rule_pct,omitempty"`
}

// PersonalRules returns the rule set personal accounts are evaluated with.
// Limits are wide open so only the equity figures carry meaning.
func PersonalRules(size float64) Rules {
	if size <= 0 {
		size = DefaultPersonalSize
	}
	return Rules{
		AccountSize:           size,
		MaxDailyDrawdownPct:   100,
		MaxOverallDrawdownPct: 100,
		DrawdownType:          Static,
	}
}

// DailyLossAllowance is the absolute daily loss permitted, always measured
// against the starting account size.
func (r Rules) DailyLossAllowance() float64 {
	return r.MaxDailyDrawdownPct / 100 * r.AccountSize
}

// OverallLossAllowance is the absolute overall loss permitted from baseline.
func (r Rules) OverallLossAllowance(baseline float64) float64 {
	return r.MaxOverallDrawdownPct / 100 * baseline
}

// TargetEquity is the equity at which the profit target is met.
func (r Rules) TargetEquity() float64 {
	return r.AccountSize + r.ProfitTarget
}

// Validate checks the rule ranges.
func (r Rules) Validate() error {
	if r.AccountSize <= 0 {
		return fmt.Errorf("%w: account_size must be positive", ErrInvalidRules)
	}
	if r.ProfitTarget < 0 {
		return fmt.Errorf("%w: profit_target must not be negative", ErrInvalidRules)
	}
	if r.MaxDailyDrawdownPct <= 0 || r.MaxDailyDrawdownPct > 100 {
		return fmt.Errorf("%w: max_daily_drawdown_pct must be in (0,100]", ErrInvalidRules)
	}
	if r.MaxOverallDrawdownPct <= 0 || r.MaxOverallDrawdownPct > 100 {
		return fmt.Errorf("%w: max_overall_drawdown_pct must be in (0,100]", ErrInvalidRules)
	}
	if r.DrawdownType != Static && r.DrawdownType != Trailing {
		return fmt.Errorf("%w: drawdown_type must be %q or %q", ErrInvalidRules, Static, Trailing)
	}
	if r.MinTradingDays < 0 {
		return fmt.Errorf("%w: min_trading_days must not be negative", ErrInvalidRules)
	}
	if c := r.ConsistencyRulePct; c != nil && (*c <= 0 || *c > 100) {
		return fmt.Errorf("%w: consistency_rule_pct must be in (0,100]", ErrInvalidRules)
	}
	return nil
}

// ParseDrawdownType accepts the names case-insensitively.
func ParseDrawdownType(s string) (DrawdownType, error) {
	switch DrawdownType(strings.ToLower(strings.TrimSpace(s))) {
	case Static:
		return Static, nil
	case Trailing:
		return Trailing, nil
	}
	return "", fmt.Errorf("unknown drawdown type %q", s)
}
