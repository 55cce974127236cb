package cache

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/pro-prioritet/tracker/internal/logx"
)

// FileStore persists key/value pairs in a single-table SQLite database, the
// process-local equivalent of browser local storage. Read errors degrade to
// "no data"; write errors are surfaced to the Projects wrapper, which logs
// and swallows them.
type FileStore struct {
	db  *sql.DB
	log *logx.Logger
}

func OpenFileStore(path string) (*FileStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect cache db: %w", err)
	}
	const schema = `
    CREATE TABLE IF NOT EXISTS kv (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL
    );
    `
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &FileStore{db: db, log: logx.New("cache")}, nil
}

func (f *FileStore) Close() error {
	return f.db.Close()
}

func (f *FileStore) Get(key string) (string, bool) {
	var value string
	err := f.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		f.log.Error("get", err)
		return "", false
	}
	return value, true
}

func (f *FileStore) Set(key, value string) error {
	_, err := f.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
         ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (f *FileStore) Delete(key string) error {
	_, err := f.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

func (f *FileStore) Keys() []string {
	rows, err := f.db.Query(`SELECT key FROM kv ORDER BY rowid`)
	if err != nil {
		f.log.Error("keys", err)
		return nil
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			f.log.Error("keys", err)
			return keys
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		f.log.Error("keys", err)
	}
	return keys
}
