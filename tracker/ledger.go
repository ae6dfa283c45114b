package tracker

import (
	"fmt"

	"github.com/rustyeddy/proptrack/account"
	"github.com/rustyeddy/proptrack/pkg/id"
)

// Ledger is the editable trade list handed to Batch. Edits apply to a
// private copy until the batch commits.
type Ledger struct {
	trades []account.Trade
	ids    *id.Generator
}

func (l *Ledger) index(tradeID string) int {
	for i, tr := range l.trades {
		if tr.ID == tradeID {
			return i
		}
	}
	return -1
}

// Add appends tr, generating an id if it has none.
func (l *Ledger) Add(tr account.Trade) (account.Trade, error) {
	if tr.ID == "" {
		tr.ID = l.ids.New()
	} else if l.index(tr.ID) >= 0 {
		return account.Trade{}, fmt.Errorf("%w: %s", ErrDuplicateTrade, tr.ID)
	}
	l.trades = append(l.trades, tr)
	return tr, nil
}

func (l *Ledger) Update(tr account.Trade) error {
	i := l.index(tr.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTradeNotFound, tr.ID)
	}
	l.trades[i] = tr
	return nil
}

func (l *Ledger) Delete(tradeID string) error {
	i := l.index(tradeID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTradeNotFound, tradeID)
	}
	l.trades = append(l.trades[:i], l.trades[i+1:]...)
	return nil
}

// Trades returns a copy of the pending trade list.
func (l *Ledger) Trades() []account.Trade {
	return append([]account.Trade(nil), l.trades...)
}
