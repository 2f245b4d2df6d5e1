package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection. Pragmas ride on the DSN so
// every pooled connection gets them.
func New(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &DB{db}, nil
}

// NewMemory opens a named in-memory database shared across the connection
// pool. Intended for tests where several connections must see the same data.
func NewMemory(name string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", name)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations applies the schema. The statements are idempotent so the
// server can run them on every start.
func (db *DB) RunMigrations() error {
	migration := `
-- Estates table
CREATE TABLE IF NOT EXISTS estates (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    address TEXT,
    owner_id TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_estates_owner ON estates(owner_id);

-- Estate memberships (collaborators)
CREATE TABLE IF NOT EXISTS estate_members (
    estate_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    role TEXT NOT NULL CHECK(role IN ('owner', 'collaborator')),
    added_at INTEGER NOT NULL,
    PRIMARY KEY (estate_id, user_id),
    FOREIGN KEY (estate_id) REFERENCES estates(id)
);
CREATE INDEX IF NOT EXISTS idx_members_user ON estate_members(user_id);

-- Activity log. Timestamps are unix microseconds; no foreign key to
-- estates, the log accepts events for estates it has never seen.
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    estate_id TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    action TEXT NOT NULL DEFAULT '',
    message TEXT NOT NULL DEFAULT '',
    subject_id TEXT,
    subject_type TEXT,
    detail TEXT,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_feed ON events(estate_id, created_at DESC, id DESC);

-- API keys for authentication
CREATE TABLE IF NOT EXISTS api_keys (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    name TEXT,
    key_hash TEXT NOT NULL UNIQUE,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_api_keys_user ON api_keys(user_id);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
