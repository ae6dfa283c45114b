package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rustyeddy/proptrack/account"
)

var tradeHeader = []string{"id", "date", "pnl", "instrument", "notes"}

// WriteTradesCSV writes trades with a header row. Non-finite P/L is
// written as an empty cell.
func WriteTradesCSV(w io.Writer, trades []account.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tradeHeader); err != nil {
		return err
	}
	for _, t := range trades {
		err := cw.Write([]string{t.ID, t.Date, f(t.PnL), t.Instrument, t.Notes})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTradesCSV reads trades from a CSV with a header row. Columns are
// matched by name; date and pnl are required, the rest optional. A pnl
// cell that does not parse is kept as NaN so the engine drops the trade.
func ReadTradesCSV(r io.Reader) ([]account.Trade, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv: missing header")
		}
		return nil, err
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, req := range []string{"date", "pnl"} {
		if _, ok := col[req]; !ok {
			return nil, fmt.Errorf("csv: missing %q column", req)
		}
	}

	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []account.Trade
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		pnl, err := strconv.ParseFloat(get(rec, "pnl"), 64)
		if err != nil {
			pnl = math.NaN()
		}
		out = append(out, account.Trade{
			ID:         get(rec, "id"),
			Date:       get(rec, "date"),
			PnL:        pnl,
			Instrument: get(rec, "instrument"),
			Notes:      get(rec, "notes"),
		})
	}
	return out, nil
}

func f(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return ""
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}
