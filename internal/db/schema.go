package db

import (
	"database/sql"
	"fmt"
	"strconv"
)

const currentSchemaVersion = 2

// schemaDDL contains the CREATE TABLE statements for the current schema.
// Nested ticket collections without their own table are stored as JSON text.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT
);

CREATE TABLE IF NOT EXISTS customers (
	id            TEXT PRIMARY KEY,
	position      INTEGER NOT NULL,
	slug          TEXT NOT NULL,
	company_name  TEXT NOT NULL,
	contact_name  TEXT,
	contact_email TEXT,
	contact_phone TEXT,
	address       TEXT,
	city          TEXT,
	state         TEXT,
	zip           TEXT,
	notes         TEXT
);

CREATE TABLE IF NOT EXISTS tickets (
	id             TEXT PRIMARY KEY,
	position       INTEGER NOT NULL,
	rma_number     TEXT NOT NULL,
	customer_id    TEXT,
	item           TEXT NOT NULL,
	reason         TEXT NOT NULL,
	notes          TEXT,
	priority       TEXT,
	assigned_to    TEXT,
	status         TEXT NOT NULL,
	group_color    TEXT,
	status_history TEXT NOT NULL DEFAULT '[]',
	external_links TEXT NOT NULL DEFAULT '[]',
	custom_fields  TEXT NOT NULL DEFAULT '{}',
	attachments    TEXT NOT NULL DEFAULT '[]',
	group_colors   TEXT NOT NULL DEFAULT '[]',
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL,
	completed_at   TEXT
);

CREATE TABLE IF NOT EXISTS ticket_relations (
	ticket_id     TEXT NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
	target_id     TEXT NOT NULL,
	relation_type TEXT NOT NULL,
	note          TEXT,
	position      INTEGER NOT NULL,
	PRIMARY KEY (ticket_id, target_id)
);

CREATE TABLE IF NOT EXISTS ticket_activity (
	id         TEXT NOT NULL,
	ticket_id  TEXT NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	type       TEXT NOT NULL,
	author     TEXT,
	body       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (ticket_id, position)
);

CREATE TABLE IF NOT EXISTS board_columns (
	id                      TEXT PRIMARY KEY,
	position                INTEGER NOT NULL,
	name                    TEXT NOT NULL,
	wip_limit               INTEGER,
	default_for_new_tickets INTEGER NOT NULL DEFAULT 0,
	is_incoming             INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS board_column_tickets (
	column_id TEXT NOT NULL REFERENCES board_columns(id) ON DELETE CASCADE,
	ticket_id TEXT NOT NULL UNIQUE REFERENCES tickets(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	PRIMARY KEY (column_id, position)
);

CREATE INDEX IF NOT EXISTS idx_tickets_rma_number ON tickets(rma_number);
CREATE INDEX IF NOT EXISTS idx_tickets_customer_id ON tickets(customer_id);
CREATE INDEX IF NOT EXISTS idx_tickets_assigned_to ON tickets(assigned_to);
CREATE INDEX IF NOT EXISTS idx_customers_slug ON customers(slug);
CREATE INDEX IF NOT EXISTS idx_ticket_relations_target_id ON ticket_relations(target_id);
`

// Initialize creates all tables if they don't exist and sets the schema version.
func Initialize(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schemaDDL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	// Set schema version only if not already set.
	_, err = tx.Exec(
		`INSERT OR IGNORE INTO meta (key, value) VALUES ('schema_version', ?)`,
		strconv.Itoa(currentSchemaVersion),
	)
	if err != nil {
		return fmt.Errorf("setting schema version: %w", err)
	}

	return tx.Commit()
}

// LatestSchemaVersion is the schema version this build creates and migrates to.
func LatestSchemaVersion() int { return currentSchemaVersion }

// SchemaVersion returns the current schema version from the meta table.
func SchemaVersion(db *sql.DB) (int, error) {
	var val string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&val)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}

	v, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parsing schema version %q: %w", val, err)
	}

	return v, nil
}

// migrations is a list of migration functions keyed by the version they migrate TO.
// Version 1 boards predate the auto-managed Incoming column.
var migrations = map[int]func(tx *sql.Tx) error{
	2: func(tx *sql.Tx) error {
		_, err := tx.Exec(`
ALTER TABLE board_columns ADD COLUMN is_incoming INTEGER NOT NULL DEFAULT 0;
UPDATE board_columns SET is_incoming = 1 WHERE id = 'incoming';
`)
		return err
	},
}

// Migrate checks the current schema version and applies any pending migrations
// sequentially. It is a no-op when already at the latest version.
func Migrate(db *sql.DB) error {
	version, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		return nil
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	for v := version + 1; v <= currentSchemaVersion; v++ {
		migrateFn, ok := migrations[v]
		if !ok {
			return fmt.Errorf("missing migration for version %d", v)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %d transaction: %w", v, err)
		}

		if err := migrateFn(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", v, err)
		}

		if _, err := tx.Exec(
			`UPDATE meta SET value = ? WHERE key = 'schema_version'`,
			strconv.Itoa(v),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("updating schema version to %d: %w", v, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", v, err)
		}
	}

	return nil
}
