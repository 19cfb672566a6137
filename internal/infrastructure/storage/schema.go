package storage

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		origin_id TEXT UNIQUE NOT NULL,
		title TEXT NOT NULL,
		source_name TEXT NOT NULL,
		description TEXT,
		published_at DATETIME,
		summary TEXT,
		category TEXT,
		fetched_at DATETIME NOT NULL,
		delivered INTEGER NOT NULL DEFAULT 0,
		CHECK (delivered IN (0, 1)),
		CHECK (length(origin_id) > 0),
		CHECK (category IS NULL OR category IN ('global', 'region_specific'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_delivered ON items(delivered)`,
	`CREATE INDEX IF NOT EXISTS idx_items_fetched_at ON items(fetched_at DESC)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id BIGSERIAL PRIMARY KEY,
		origin_id TEXT UNIQUE NOT NULL,
		title TEXT NOT NULL,
		source_name TEXT NOT NULL,
		description TEXT,
		published_at TIMESTAMPTZ,
		summary TEXT,
		category TEXT,
		fetched_at TIMESTAMPTZ NOT NULL,
		delivered BOOLEAN NOT NULL DEFAULT FALSE,
		CHECK (length(origin_id) > 0),
		CHECK (category IS NULL OR category IN ('global', 'region_specific'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_delivered ON items(delivered)`,
	`CREATE INDEX IF NOT EXISTS idx_items_fetched_at ON items(fetched_at DESC)`,
}
