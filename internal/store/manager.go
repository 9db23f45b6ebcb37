package store

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "remotune"
	dbFileName = "remotune.db"
)

// Manager is the sqlite-backed store.
type Manager struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at the default xdg data path.
func Open() (*Manager, error) {
	dbPath, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens the store at an explicit path.
func OpenPath(dbPath string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db}, nil
}

// Close closes the underlying database.
func (m *Manager) Close() error {
	return m.db.Close()
}

// GetPrefs returns the saved player preferences, with defaults when no
// state has been saved yet.
func (m *Manager) GetPrefs() (Prefs, error) {
	var p Prefs
	row := m.db.QueryRow(`SELECT volume, muted, repeat_mode, shuffle FROM player_state WHERE id = 1`)
	err := row.Scan(&p.Volume, &p.Muted, &p.RepeatMode, &p.Shuffle)
	if err == sql.ErrNoRows {
		return Prefs{Volume: 1.0}, nil
	}
	if err != nil {
		return Prefs{}, err
	}
	return p, nil
}

// SaveVolume persists the volume level and mute flag.
func (m *Manager) SaveVolume(volume float64, muted bool) error {
	_, err := m.db.Exec(`
		INSERT INTO player_state (id, volume, muted, repeat_mode, shuffle)
		VALUES (1, ?, ?, 0, 0)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			muted = excluded.muted
	`, volume, muted)
	return err
}

// SaveMode persists the repeat mode and shuffle flag.
func (m *Manager) SaveMode(repeatMode int, shuffle bool) error {
	_, err := m.db.Exec(`
		INSERT INTO player_state (id, volume, muted, repeat_mode, shuffle)
		VALUES (1, 1.0, 0, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			repeat_mode = excluded.repeat_mode,
			shuffle = excluded.shuffle
	`, repeatMode, shuffle)
	return err
}
