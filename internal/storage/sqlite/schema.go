// ABOUTME: SQLite database schema for price tracking storage
// ABOUTME: Creates items, price history, and alerts tables with cascading deletes
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Tracked products
CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    current_price REAL CHECK (current_price IS NULL OR current_price >= 0),
    target_price REAL CHECK (target_price IS NULL OR target_price >= 0),
    is_active INTEGER NOT NULL DEFAULT 1,
    embedding BLOB,
    embedding_key TEXT NOT NULL DEFAULT '',
    last_checked_at DATETIME,
    consecutive_failures INTEGER NOT NULL DEFAULT 0,
    last_error TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

-- Append-only price observations
CREATE TABLE IF NOT EXISTS price_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    price REAL NOT NULL CHECK (price >= 0),
    recorded_at DATETIME NOT NULL
);

-- User-facing notifications
CREATE TABLE IF NOT EXISTS alerts (
    id TEXT PRIMARY KEY,
    item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    alert_type TEXT NOT NULL CHECK (alert_type IN ('price_drop', 'similar_item')),
    message TEXT NOT NULL,
    price REAL,
    related_item_id TEXT REFERENCES items(id) ON DELETE SET NULL,
    sent_at DATETIME NOT NULL,
    is_read INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_items_active ON items(is_active);
CREATE INDEX IF NOT EXISTS idx_history_item ON price_history(item_id, recorded_at);
CREATE INDEX IF NOT EXISTS idx_alerts_item ON alerts(item_id, alert_type);
CREATE INDEX IF NOT EXISTS idx_alerts_unread ON alerts(is_read);
CREATE INDEX IF NOT EXISTS idx_alerts_related ON alerts(related_item_id);
`

// SchemaVersion is the current schema version, also stamped on exports
const SchemaVersion = 1
