package account

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidAccount = errors.New("invalid account")

// Account owns a ledger and the status derived from it. Challenge accounts
// carry Rules; personal accounts do not.
type Account struct {
	ID        string
	Name      string
	Kind      Kind
	Rules     *Rules
	CreatedAt time.Time
	Trades    []Trade
	Status    Status
}

// NewChallenge creates a challenge account with an empty ledger.
func NewChallenge(id, name string, r Rules, createdAt time.Time) (Account, error) {
	if err := r.Validate(); err != nil {
		return Account{}, err
	}
	rules := r
	a := Account{
		ID:        id,
		Name:      name,
		Kind:      Challenge,
		Rules:     &rules,
		CreatedAt: createdAt,
		Trades:    []Trade{},
		Status:    InitialStatus(r, createdAt),
	}
	return a, a.Validate()
}

// NewPersonal creates a personal account evaluated against a synthetic size.
func NewPersonal(id, name string, size float64, createdAt time.Time) (Account, error) {
	a := Account{
		ID:        id,
		Name:      name,
		Kind:      Personal,
		CreatedAt: createdAt,
		Trades:    []Trade{},
		Status:    InitialStatus(PersonalRules(size), createdAt),
	}
	return a, a.Validate()
}

// EffectiveRules returns the rules the engine evaluates the account with.
func (a Account) EffectiveRules(personalSize float64) Rules {
	if a.Kind == Challenge && a.Rules != nil {
		return *a.Rules
	}
	return PersonalRules(personalSize)
}

// Validate enforces the challenge/personal variant rules.
func (a Account) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidAccount)
	}
	switch a.Kind {
	case Challenge:
		if a.Rules == nil {
			return fmt.Errorf("%w: challenge account %s has no rules", ErrInvalidAccount, a.ID)
		}
		return a.Rules.Validate()
	case Personal:
		if a.Rules != nil {
			return fmt.Errorf("%w: personal account %s must not carry rules", ErrInvalidAccount, a.ID)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown kind %q", ErrInvalidAccount, a.Kind)
}

// FindTrade returns the index of the trade with id, or -1.
func (a Account) FindTrade(id string) int {
	for i, t := range a.Trades {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can mutate without affecting readers.
func (a Account) Clone() Account {
	c := a
	if a.Rules != nil {
		r := *a.Rules
		if a.Rules.ConsistencyRulePct != nil {
			p := *a.Rules.ConsistencyRulePct
			r.ConsistencyRulePct = &p
		}
		c.Rules = &r
	}
	c.Trades = append([]Trade(nil), a.Trades...)
	if c.Trades == nil {
		c.Trades = []Trade{}
	}
	c.Status = a.Status.Clone()
	return c
}
