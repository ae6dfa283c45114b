package journal

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/rustyeddy/proptrack/account"
	"github.com/rustyeddy/proptrack/advisory"
	"github.com/rustyeddy/proptrack/engine"
)

// FormatTradeOrg renders a trade as an Org-mode block with its facts in a
// PROPERTIES drawer and a Review placeholder.
func FormatTradeOrg(t account.Trade) string {
	heading := fmt.Sprintf("** Trade: %s %s (%s)", t.Date, orDash(t.Instrument), shortID(t.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":TRADE_ID: %s\n", t.ID))
	b.WriteString(fmt.Sprintf(":DATE: %s\n", t.Date))
	if t.Valid() {
		b.WriteString(fmt.Sprintf(":PNL: %.2f\n", t.PnL))
	} else {
		b.WriteString(":PNL: (excluded)\n")
	}
	b.WriteString(fmt.Sprintf(":INSTRUMENT: %s\n", t.Instrument))
	b.WriteString(":END:\n")
	if t.Notes != "" {
		b.WriteString("\n")
		b.WriteString(t.Notes)
		b.WriteString("\n")
	}
	b.WriteString("\n*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []account.Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Report is the data behind an account status report.
type Report struct {
	Account    account.Account
	Rules      account.Rules
	Result     engine.Result
	Advisories []advisory.Item
	Generated  time.Time
}

var reportFuncs = template.FuncMap{
	"yesno": func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	},
	"pct": func(part, whole float64) float64 {
		if whole == 0 {
			return 0
		}
		return 100 * part / whole
	},
	"sub": func(a, b float64) float64 { return a - b },
	"deref": func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	},
	"upper": strings.ToUpper,
}

var reportTmpl = template.Must(template.New("report").Funcs(reportFuncs).Parse(ReportOrgTemplate))

// FormatStatusOrg renders an account report as Org-mode.
func FormatStatusOrg(r Report) (string, error) {
	buf := new(bytes.Buffer)
	if err := reportTmpl.Execute(buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const ReportOrgTemplate = `* ACCOUNT: {{.Account.Name}} ({{.Account.Kind}})
:PROPERTIES:
:ACCOUNT_ID:  {{.Account.ID}}
:KIND:        {{.Account.Kind}}
:CREATED:     [{{.Account.CreatedAt.Format "2006-01-02 Mon 15:04"}}]
:AS_OF:       [{{.Result.Status.AsOf.Format "2006-01-02 Mon 15:04"}}]
:GENERATED:   [{{.Generated.Format "2006-01-02 Mon 15:04"}}]
:FRESH:       {{yesno .Result.Fresh}}
:END:
{{- if not .Result.Fresh }}

Status could not be recomputed ({{.Result.Reason}}); showing the last known status.
{{- end }}

** Rules
| Parameter            | Value |
|----------------------+-------|
| Account size         | {{printf "%.2f" .Rules.AccountSize}} |
{{- if eq (print .Account.Kind) "challenge" }}
| Profit target        | {{printf "%.2f" .Rules.ProfitTarget}} |
| Max daily drawdown   | {{printf "%.2f" .Rules.MaxDailyDrawdownPct}}% |
| Max overall drawdown | {{printf "%.2f" .Rules.MaxOverallDrawdownPct}}% ({{.Rules.DrawdownType}}) |
| Min trading days     | {{.Rules.MinTradingDays}} |
{{- if .Rules.ConsistencyRulePct }}
| Consistency rule     | {{printf "%.2f" (deref .Rules.ConsistencyRulePct)}}% |
{{- end }}
{{- end }}

** Status
- Equity:             *{{printf "%.2f" .Result.Status.CurrentEquity}}*
- P/L:                *{{printf "%.2f" (sub .Result.Status.CurrentEquity .Rules.AccountSize)}}*
- High-water mark:    *{{printf "%.2f" .Result.Status.HighWaterMark}}*
- Days traded:        *{{.Result.Status.DaysTraded.Len}}*
- Daily room left:    *{{printf "%.2f" .Result.Status.DistanceToDailyDrawdown}}* (violated: {{yesno .Result.Status.IsDailyDrawdownViolated}})
- Overall room left:  *{{printf "%.2f" .Result.Status.DistanceToOverallDrawdown}}* (violated: {{yesno .Result.Status.IsOverallDrawdownViolated}})
{{- if eq (print .Account.Kind) "challenge" }}
- Target progress:    *{{printf "%.1f" (pct (sub .Result.Status.CurrentEquity .Rules.AccountSize) .Rules.ProfitTarget)}}%*
- Passed:             *{{yesno .Result.Status.IsPassed}}*
{{- end }}

** Trades
| Total | Excluded |
|-------+----------|
| {{len .Account.Trades}} | {{.Result.Dropped}} |

{{- if .Advisories }}

** Advisories
{{- range .Advisories }}
- {{upper (print .Kind)}}: {{.Text}}
{{- end }}
{{- end }}
`
