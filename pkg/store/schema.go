package store

import (
	"database/sql"
	"regexp"

	"github.com/mattn/go-sqlite3"
)

// driverName identifies the sqlite3 driver registration that carries
// the REGEXP function used by regex-mode search.
const driverName = "sqlite3_marque"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("regexp", regexMatch, true)
		},
	})
}

// regexMatch backs the REGEXP operator. Patterns are validated when the
// query plan is built, so a compile error here means the caller bypassed
// the builder.
func regexMatch(pattern, value string) (bool, error) {
	return regexp.MatchString(pattern, value)
}

// initSchema creates the bookmark and undo tables plus the FTS5 index.
// The update trigger re-inserts the FTS row instead of updating it in
// place so id reassignment during compaction keeps the index consistent.
func (s *Store) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS bookmarks (
			id INTEGER PRIMARY KEY,
			url TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT ',',
			desc TEXT NOT NULL DEFAULT '',
			flags INTEGER NOT NULL DEFAULT 0
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_bookmarks_url ON bookmarks(url);

		CREATE TABLE IF NOT EXISTS undo_log (
			sequence INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER NOT NULL,
			operation TEXT NOT NULL,
			bookmark_id INTEGER NOT NULL,
			batch_id TEXT,
			url TEXT,
			title TEXT,
			tags TEXT,
			desc TEXT,
			flags INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_undo_log_batch ON undo_log(batch_id);

		CREATE VIRTUAL TABLE IF NOT EXISTS bookmarks_fts USING fts5(
			url,
			title,
			tags,
			desc,
			tokenize='unicode61'
		);

		CREATE TRIGGER IF NOT EXISTS bookmarks_ai AFTER INSERT ON bookmarks BEGIN
			INSERT INTO bookmarks_fts (rowid, url, title, tags, desc)
			VALUES (new.id, new.url, new.title, new.tags, new.desc);
		END;
		CREATE TRIGGER IF NOT EXISTS bookmarks_au AFTER UPDATE ON bookmarks BEGIN
			DELETE FROM bookmarks_fts WHERE rowid = old.id;
			INSERT INTO bookmarks_fts (rowid, url, title, tags, desc)
			VALUES (new.id, new.url, new.title, new.tags, new.desc);
		END;
		CREATE TRIGGER IF NOT EXISTS bookmarks_ad AFTER DELETE ON bookmarks BEGIN
			DELETE FROM bookmarks_fts WHERE rowid = old.id;
		END;
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}
