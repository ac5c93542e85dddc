package search

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// schema drops and recreates all tables. The index is rebuilt from scratch
// on each generation run so there is no need for migrations.
const schema = `
DROP TRIGGER IF EXISTS keywords_au;
DROP TRIGGER IF EXISTS keywords_ad;
DROP TRIGGER IF EXISTS keywords_ai;
DROP TABLE IF EXISTS keywords_fts;
DROP TABLE IF EXISTS keywords;

CREATE TABLE keywords (
	path TEXT PRIMARY KEY,
	library TEXT NOT NULL,
	keyword TEXT NOT NULL,
	shortdoc TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL
);

CREATE VIRTUAL TABLE keywords_fts USING fts5(
	keyword, tags, content,
	content='keywords',
	content_rowid='rowid'
);

CREATE TRIGGER keywords_ai AFTER INSERT ON keywords BEGIN
	INSERT INTO keywords_fts(rowid, keyword, tags, content)
	VALUES (new.rowid, new.keyword, new.tags, new.content);
END;

CREATE TRIGGER keywords_ad AFTER DELETE ON keywords BEGIN
	INSERT INTO keywords_fts(keywords_fts, rowid, keyword, tags, content)
	VALUES ('delete', old.rowid, old.keyword, old.tags, old.content);
END;

CREATE TRIGGER keywords_au AFTER UPDATE ON keywords BEGIN
	INSERT INTO keywords_fts(keywords_fts, rowid, keyword, tags, content)
	VALUES ('delete', old.rowid, old.keyword, old.tags, old.content);
	INSERT INTO keywords_fts(rowid, keyword, tags, content)
	VALUES (new.rowid, new.keyword, new.tags, new.content);
END;
`

func openDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open search db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return db, nil
}
