package store

const schema = `
CREATE TABLE IF NOT EXISTS content (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	source_name        TEXT NOT NULL DEFAULT '',
	source_url         TEXT NOT NULL UNIQUE,
	content_type       TEXT NOT NULL,
	title              TEXT NOT NULL DEFAULT '',
	author             TEXT NOT NULL DEFAULT '',
	publish_date       TEXT NOT NULL,
	raw_content        TEXT NOT NULL DEFAULT '',
	transcript         TEXT NOT NULL DEFAULT '',
	duration_seconds   INTEGER NOT NULL DEFAULT 0,
	summary            TEXT NOT NULL DEFAULT '',
	categories         TEXT NOT NULL DEFAULT '[]',
	entities           TEXT NOT NULL DEFAULT '{}',
	relevance_score    INTEGER NOT NULL DEFAULT 0,
	rationale          TEXT NOT NULL DEFAULT '',
	processed          INTEGER NOT NULL DEFAULT 0,
	included_in_digest INTEGER NOT NULL DEFAULT 0,
	created_at         TEXT NOT NULL,
	updated_at         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_content_publish_date ON content(publish_date);
CREATE INDEX IF NOT EXISTS idx_content_processed ON content(processed);
CREATE INDEX IF NOT EXISTS idx_content_content_type ON content(content_type);

CREATE TABLE IF NOT EXISTS digests (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	date         TEXT NOT NULL UNIQUE,
	content_ids  TEXT NOT NULL DEFAULT '[]',
	top_signal   TEXT,
	html_content TEXT NOT NULL DEFAULT '',
	sent         INTEGER NOT NULL DEFAULT 0,
	sent_at      TEXT,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date   TEXT,
	location   TEXT NOT NULL DEFAULT '',
	website    TEXT NOT NULL DEFAULT '',
	quarter    TEXT NOT NULL,
	UNIQUE(name, quarter)
);

CREATE INDEX IF NOT EXISTS idx_events_start_date ON events(start_date);
`
