package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:neuropulse.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/neuropulse?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS mcq (
  mcq_num INTEGER PRIMARY KEY,
  mcq_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'published',
  is_latest INTEGER NOT NULL DEFAULT 1,
  payload_json TEXT NOT NULL,
  commit_hash TEXT,
  published_batch TEXT,
  updated_at INTEGER NOT NULL
);

-- Counter backing the MCQ id allocator (Postgres uses a real sequence).
CREATE TABLE IF NOT EXISTS mcq_seq (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  value INTEGER NOT NULL
);
INSERT OR IGNORE INTO mcq_seq (id, value) VALUES (1, 0);

CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  google_sub TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  picture TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL,
  last_login_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS user_mcq_answers (
  user_id INTEGER NOT NULL,
  mcq_id TEXT NOT NULL,
  last_answer TEXT,
  is_correct INTEGER,
  attempts INTEGER NOT NULL DEFAULT 1,
  last_seen_at INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  PRIMARY KEY (user_id, mcq_id)
);

CREATE TABLE IF NOT EXISTS user_state (
  user_id INTEGER PRIMARY KEY,
  last_mcq_id TEXT,
  last_page INTEGER NOT NULL DEFAULT 0,
  last_updated_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS mcq (
  mcq_num INTEGER PRIMARY KEY,
  mcq_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'published',
  is_latest BOOLEAN NOT NULL DEFAULT TRUE,
  payload_json TEXT NOT NULL,
  commit_hash TEXT,
  published_batch TEXT,
  updated_at BIGINT NOT NULL
);

CREATE SEQUENCE IF NOT EXISTS mcq_seq START 1;

CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  google_sub TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  picture TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL,
  last_login_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_mcq_answers (
  user_id BIGINT NOT NULL,
  mcq_id TEXT NOT NULL,
  last_answer TEXT,
  is_correct BOOLEAN,
  attempts INTEGER NOT NULL DEFAULT 1,
  last_seen_at BIGINT NOT NULL,
  created_at BIGINT NOT NULL,
  PRIMARY KEY (user_id, mcq_id)
);

CREATE TABLE IF NOT EXISTS user_state (
  user_id BIGINT PRIMARY KEY,
  last_mcq_id TEXT,
  last_page INTEGER NOT NULL DEFAULT 0,
  last_updated_at BIGINT NOT NULL
);
`
