package db

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

const fileName = "taskdeck.db"

// DB is the local store. It only holds client settings such as the token.
type DB struct {
	*sql.DB
}

// New opens (or creates) the database in dataDir and applies the schema.
// An empty dataDir uses the XDG data directory.
func New(dataDir string) (*DB, error) {
	dbPath, err := Path(dataDir)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dbPath, err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema to %s: %w", dbPath, err)
	}
	return &DB{conn}, nil
}

// Path returns the database file inside dataDir, creating the directory
func Path(dataDir string) (string, error) {
	appDir, err := DataDir(dataDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}
	return filepath.Join(appDir, fileName), nil
}

// DataDir resolves the application directory: override when set, otherwise
// $XDG_DATA_HOME/taskdeck or ~/.local/share/taskdeck.
func DataDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locating home dir: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "taskdeck"), nil
}

// GetSetting returns the value stored under key, or "" when there is none
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("reading setting %q: %w", key, err)
	}
	return value, nil
}

// SetSetting stores value under key, replacing any previous value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("writing setting %q: %w", key, err)
	}
	return nil
}

func (db *DB) DeleteSetting(key string) error {
	if _, err := db.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting setting %q: %w", key, err)
	}
	return nil
}
