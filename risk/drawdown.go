package risk

import (
	"fmt"
	"math"

	"github.com/rustyeddy/proptrack/account"
)

// Violation codes.
const (
	CodeOverallDrawdown = "OVERALL_DRAWDOWN"
	CodeDailyDrawdown   = "DAILY_DRAWDOWN"
)

type Violation struct {
	Code string
	Msg  string
}

// Drawdown holds the distance-to-violation on both axes. Distances are
// kept unclamped here; Clamped* report them floored at zero.
type Drawdown struct {
	// Overall axis
	Baseline         float64 // account size (static) or high-water mark (trailing)
	OverallAllowance float64
	OverallFloor     float64
	OverallDistance  float64

	// Daily axis, always against the static account size
	DailyAllowance float64
	TodaysPnL      float64
	DailyDistance  float64

	Violations []Violation
}

func (d *Drawdown) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
}

func (d Drawdown) OverallViolated() bool { return d.OverallDistance <= 0 }
func (d Drawdown) DailyViolated() bool   { return d.DailyDistance <= 0 }

func (d Drawdown) ClampedOverall() float64 { return math.Max(0, d.OverallDistance) }
func (d Drawdown) ClampedDaily() float64   { return math.Max(0, d.DailyDistance) }

// Evaluate computes both drawdown axes for the given equity figures.
//
// Overall: floor = baseline - pct*baseline, distance = equity - floor.
// Daily: distance = pct*accountSize + today's P&L, capped at the allowance
// so a winning day never grants more room than the nominal limit.
func Evaluate(r account.Rules, equity, highWaterMark, todaysPnL float64) Drawdown {
	d := Drawdown{Baseline: r.AccountSize}
	if r.DrawdownType == account.Trailing {
		d.Baseline = highWaterMark
	}
	d.OverallAllowance = r.OverallLossAllowance(d.Baseline)
	d.OverallFloor = d.Baseline - d.OverallAllowance
	d.OverallDistance = equity - d.OverallFloor

	d.DailyAllowance = r.DailyLossAllowance()
	d.TodaysPnL = todaysPnL
	d.DailyDistance = math.Min(d.DailyAllowance, d.DailyAllowance+todaysPnL)

	if d.OverallViolated() {
		d.add(CodeOverallDrawdown,
			fmt.Sprintf("equity %.2f at or below %s floor %.2f", equity, r.DrawdownType, d.OverallFloor))
	}
	if d.DailyViolated() {
		d.add(CodeDailyDrawdown,
			fmt.Sprintf("today's P/L %.2f exhausts daily allowance %.2f", todaysPnL, d.DailyAllowance))
	}
	return d
}
