package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rustyeddy/proptrack/account"
	"github.com/rustyeddy/proptrack/codec"
)

var ErrNotFound = errors.New("journal: account not found")

// SQLite is a tracker.Repository keeping accounts and their ledgers in
// two tables. Save replaces an account's trades wholesale.
type SQLite struct {
	db    *sql.DB
	codec *codec.Codec
	log   zerolog.Logger
}

type Option func(*SQLite)

// WithLogger receives warnings about stored values that cannot be decoded.
func WithLogger(l zerolog.Logger) Option { return func(j *SQLite) { j.log = l } }

func NewSQLite(path string, c *codec.Codec, opts ...Option) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if c == nil {
		c = codec.Default
	}
	j := &SQLite{db: db, codec: c, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (j *SQLite) Save(ctx context.Context, a account.Account) error {
	p := j.codec.DehydrateAccount(a)

	var rules sql.NullString
	if p.Rules != nil {
		data, err := json.Marshal(p.Rules)
		if err != nil {
			return fmt.Errorf("marshal rules: %w", err)
		}
		rules = sql.NullString{String: string(data), Valid: true}
	}
	days, err := json.Marshal(p.Status.DaysTraded)
	if err != nil {
		return fmt.Errorf("marshal days: %w", err)
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	st := p.Status
	_, err = tx.ExecContext(ctx, `
		INSERT INTO accounts
		(id, name, kind, rules, created_at, current_equity, high_water_mark, days_traded,
		 distance_daily, distance_overall, daily_violated, overall_violated, passed, as_of)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			rules = excluded.rules,
			created_at = excluded.created_at,
			current_equity = excluded.current_equity,
			high_water_mark = excluded.high_water_mark,
			days_traded = excluded.days_traded,
			distance_daily = excluded.distance_daily,
			distance_overall = excluded.distance_overall,
			daily_violated = excluded.daily_violated,
			overall_violated = excluded.overall_violated,
			passed = excluded.passed,
			as_of = excluded.as_of`,
		p.ID, p.Name, p.Kind, rules, p.CreatedAt,
		st.CurrentEquity, st.HighWaterMark, string(days),
		st.DistanceToDailyDrawdown, st.DistanceToOverallDrawdown,
		b2i(st.IsDailyDrawdownViolated), b2i(st.IsOverallDrawdownViolated), b2i(st.IsPassed),
		st.AsOf,
	)
	if err != nil {
		return fmt.Errorf("upsert account %s: %w", p.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM trades WHERE account_id = ?`, p.ID); err != nil {
		return fmt.Errorf("clear trades %s: %w", p.ID, err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades (account_id, trade_id, seq, date, pnl, instrument, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, t := range p.Trades {
		if _, err := stmt.ExecContext(ctx, p.ID, t.ID, i, t.Date, t.PnL, t.Instrument, t.Notes); err != nil {
			return fmt.Errorf("insert trade %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

const selectAccounts = `
	SELECT id, name, kind, rules, created_at, current_equity, high_water_mark, days_traded,
	       distance_daily, distance_overall, daily_violated, overall_violated, passed, as_of
	FROM accounts`

type scanner interface {
	Scan(dest ...any) error
}

func (j *SQLite) scanAccount(row scanner) (codec.PlainAccount, error) {
	var (
		p     codec.PlainAccount
		st    codec.PlainStatus
		rules sql.NullString
		days  string
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Kind, &rules, &p.CreatedAt,
		&st.CurrentEquity, &st.HighWaterMark, &days,
		&st.DistanceToDailyDrawdown, &st.DistanceToOverallDrawdown,
		&st.IsDailyDrawdownViolated, &st.IsOverallDrawdownViolated, &st.IsPassed,
		&st.AsOf,
	)
	if err != nil {
		return p, err
	}
	if rules.Valid {
		var r account.Rules
		if err := json.Unmarshal([]byte(rules.String), &r); err != nil {
			return p, fmt.Errorf("account %s rules: %w", p.ID, err)
		}
		p.Rules = &r
	}
	// a malformed day list hydrates to an empty set
	if err := json.Unmarshal([]byte(days), &st.DaysTraded); err != nil {
		j.log.Warn().Err(err).Str("account", p.ID).Msg("stored days_traded is not valid JSON; using an empty set")
	}
	p.Status = &st
	return p, nil
}

func (j *SQLite) loadTrades(ctx context.Context, p *codec.PlainAccount) error {
	rows, err := j.db.QueryContext(ctx, `
		SELECT trade_id, date, pnl, instrument, notes
		FROM trades
		WHERE account_id = ?
		ORDER BY seq ASC`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	p.Trades = []codec.PlainTrade{}
	for rows.Next() {
		var (
			t   codec.PlainTrade
			pnl sql.NullFloat64
		)
		if err := rows.Scan(&t.ID, &t.Date, &pnl, &t.Instrument, &t.Notes); err != nil {
			return err
		}
		if pnl.Valid {
			t.PnL = pnl.Float64
		}
		p.Trades = append(p.Trades, t)
	}
	return rows.Err()
}

func (j *SQLite) Load(ctx context.Context, id string) (account.Account, error) {
	p, err := j.scanAccount(j.db.QueryRowContext(ctx, selectAccounts+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return account.Account{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return account.Account{}, err
	}
	if err := j.loadTrades(ctx, &p); err != nil {
		return account.Account{}, err
	}
	return j.codec.HydrateAccount(&p)
}

func (j *SQLite) List(ctx context.Context) ([]account.Account, error) {
	rows, err := j.db.QueryContext(ctx, selectAccounts+` ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	var plains []codec.PlainAccount
	for rows.Next() {
		p, err := j.scanAccount(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		plains = append(plains, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	out := make([]account.Account, 0, len(plains))
	for i := range plains {
		if err := j.loadTrades(ctx, &plains[i]); err != nil {
			return nil, err
		}
		a, err := j.codec.HydrateAccount(&plains[i])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (j *SQLite) Delete(ctx context.Context, id string) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trades WHERE account_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}
