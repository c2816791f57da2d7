package index

const schemaVersion = 3

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
	id INTEGER PRIMARY KEY,
	path TEXT UNIQUE NOT NULL,
	uid TEXT NOT NULL,
	notebook TEXT NOT NULL DEFAULT '',
	hash TEXT,
	mtime_unix INTEGER,
	size INTEGER,
	has_summary INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS notes_by_uid ON notes(uid);
CREATE INDEX IF NOT EXISTS notes_by_summary ON notes(has_summary);

CREATE TABLE IF NOT EXISTS notebooks (
	id TEXT PRIMARY KEY,
	parent_id TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS todos (
	id INTEGER PRIMARY KEY,
	note_id INTEGER NOT NULL,
	line_no INTEGER NOT NULL,
	message TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '',
	completed INTEGER NOT NULL,
	due_date TEXT
);

CREATE INDEX IF NOT EXISTS todos_by_note ON todos(note_id);
CREATE INDEX IF NOT EXISTS todos_by_completed ON todos(completed);
`
