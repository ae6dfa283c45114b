package journal

const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	rules TEXT,
	created_at TEXT NOT NULL,
	current_equity REAL NOT NULL,
	high_water_mark REAL NOT NULL,
	days_traded TEXT NOT NULL,
	distance_daily REAL NOT NULL,
	distance_overall REAL NOT NULL,
	daily_violated INTEGER NOT NULL,
	overall_violated INTEGER NOT NULL,
	passed INTEGER NOT NULL,
	as_of TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	trade_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	date TEXT NOT NULL,
	pnl REAL,
	instrument TEXT NOT NULL,
	notes TEXT NOT NULL,
	PRIMARY KEY (account_id, trade_id)
);

CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account_id, seq);
`
