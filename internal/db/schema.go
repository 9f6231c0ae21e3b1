package db

import "database/sql"

func Migrate(db *sql.DB) {
	db.Exec(`
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE,
		balance REAL DEFAULT 0,
		total_won REAL DEFAULT 0,
		total_lost REAL DEFAULT 0,
		games_played INTEGER DEFAULT 0,
		turnover REAL DEFAULT 0,
		referral_code TEXT UNIQUE,
		referred_by INTEGER,
		referral_bonus_earned REAL DEFAULT 0,
		is_active INTEGER DEFAULT 1,
		created_at INTEGER
	);`)

	db.Exec(`
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		account_id INTEGER,
		kind TEXT,
		amount REAL,
		status TEXT DEFAULT 'completed',
		payment_ref TEXT,
		created_at INTEGER
	);`)

	db.Exec(`
	CREATE TABLE IF NOT EXISTS referrals (
		id TEXT PRIMARY KEY,
		referrer_id INTEGER,
		referred_id INTEGER UNIQUE,
		first_deposit REAL,
		required_turnover REAL,
		current_turnover REAL DEFAULT 0,
		bonus_amount REAL,
		paid INTEGER DEFAULT 0,
		created_at INTEGER,
		completed_at INTEGER
	);`)

	db.Exec(`
	CREATE TABLE IF NOT EXISTS rounds (
		id TEXT PRIMARY KEY,
		crash_point REAL,
		started_at INTEGER,
		ended_at INTEGER,
		total_staked REAL,
		players INTEGER
	);`)

	db.Exec(`
	CREATE TABLE IF NOT EXISTS audit_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uid INTEGER,
		action TEXT,
		metadata TEXT,
		created_at INTEGER
	);`)
}
