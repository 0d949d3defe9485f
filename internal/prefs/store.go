// Package prefs is the persisted client state: last-selected stations, the
// share message template, and settings flags. It fills the role browser local
// storage plays for the web client, backed by a small SQLite key/value table.
package prefs

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS prefs (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

const (
	keyOrigin      = "origin"
	keyDest        = "dest"
	keyDefaultDest = "default_dest"
	keyTemplate    = "template"
	keyAutoDetect  = "auto_detect_origin"
)

// DefaultTemplate is the share message used until the user customizes one.
const DefaultTemplate = "{adjusted_time}到{dest}"

// station ids are short alphanumeric codes; anything else is rejected on
// write and sanitized on read
var stationIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{0,10}$`)

// ValidStationID reports whether id is a plausible station identifier.
func ValidStationID(id string) bool {
	return stationIDPattern.MatchString(id)
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the preferences store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("prefs: failed to create data directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("prefs: failed to open store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("prefs: failed to ping store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("prefs: failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Origin() (string, error)      { return s.stationID(keyOrigin) }
func (s *Store) SetOrigin(id string) error    { return s.setStationID(keyOrigin, id) }
func (s *Store) Dest() (string, error)        { return s.stationID(keyDest) }
func (s *Store) SetDest(id string) error      { return s.setStationID(keyDest, id) }
func (s *Store) DefaultDest() (string, error) { return s.stationID(keyDefaultDest) }
func (s *Store) SetDefaultDest(id string) error {
	return s.setStationID(keyDefaultDest, id)
}

// Template returns the share message template, falling back to
// DefaultTemplate when none is stored.
func (s *Store) Template() (string, error) {
	v, err := s.get(keyTemplate)
	if err != nil {
		return "", err
	}
	if v == "" {
		return DefaultTemplate, nil
	}
	return v, nil
}

func (s *Store) SetTemplate(tpl string) error {
	return s.set(keyTemplate, tpl)
}

func (s *Store) ResetTemplate() error {
	return s.set(keyTemplate, DefaultTemplate)
}

func (s *Store) AutoDetectOrigin() (bool, error) {
	v, err := s.get(keyAutoDetect)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

func (s *Store) SetAutoDetectOrigin(on bool) error {
	v := "false"
	if on {
		v = "true"
	}
	return s.set(keyAutoDetect, v)
}

// stationID reads a station id key, returning "" for values that fail
// validation (an older build or a tampered file may have stored anything).
func (s *Store) stationID(key string) (string, error) {
	v, err := s.get(key)
	if err != nil {
		return "", err
	}
	if !ValidStationID(v) {
		return "", nil
	}
	return v, nil
}

func (s *Store) setStationID(key, id string) error {
	if !ValidStationID(id) {
		return fmt.Errorf("prefs: invalid station id %q", id)
	}
	return s.set(key, id)
}

func (s *Store) get(key string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("prefs: failed to read %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO prefs (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("prefs: failed to write %s: %w", key, err)
	}
	return nil
}
