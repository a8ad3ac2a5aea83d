package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS admins (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    id                 INTEGER PRIMARY KEY,
    name               TEXT NOT NULL,
    description        TEXT,
    item_type          TEXT NOT NULL CHECK (item_type IN ('digital_book', 'laboratory_equipment', 'furniture', 'it_asset')),
    label_code         TEXT NOT NULL,
    label_key          TEXT NOT NULL UNIQUE,
    quantity_total     INTEGER NOT NULL CHECK (quantity_total >= 1),
    quantity_available INTEGER NOT NULL CHECK (quantity_available >= 0 AND quantity_available <= quantity_total),
    location           TEXT,
    purchase_date      DATETIME,
    purchase_price     TEXT,
    condition_notes    TEXT,
    image              BLOB,
    image_mime         TEXT,
    created_at         DATETIME NOT NULL,
    updated_at         DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    email      TEXT NOT NULL UNIQUE,
    role       TEXT NOT NULL CHECK (role IN ('admin', 'teacher', 'student')),
    student_id TEXT,
    department TEXT,
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS borrowing_records (
    id                INTEGER PRIMARY KEY,
    item_id           INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    user_id           INTEGER NOT NULL REFERENCES users(id),
    quantity_borrowed INTEGER NOT NULL CHECK (quantity_borrowed >= 1),
    borrowed_date     DATETIME NOT NULL,
    due_date          DATETIME NOT NULL,
    returned_date     DATETIME,
    status            TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'returned', 'overdue')),
    notes             TEXT,
    created_at        DATETIME NOT NULL,
    updated_at        DATETIME NOT NULL,
    CHECK ((status = 'returned') = (returned_date IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_borrowing_records_item_status
    ON borrowing_records(item_id, status);

CREATE INDEX IF NOT EXISTS idx_borrowing_records_status_due
    ON borrowing_records(status, due_date);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
