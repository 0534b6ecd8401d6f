// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/davrk/sharpen/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// userDataKey is the fixed key the serialized aggregate lives under.
const userDataKey = "user_data"

// Store wraps SQLite access for user data and session history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_data (
			key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			uid TEXT NOT NULL,
			game_id TEXT NOT NULL,
			date TEXT NOT NULL,
			accuracy INTEGER NOT NULL,
			avg_reaction_ms INTEGER NOT NULL,
			best_reaction_ms INTEGER NOT NULL,
			final_level INTEGER NOT NULL,
			duration_seconds INTEGER NOT NULL,
			trials TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_game_id ON sessions(game_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the persisted aggregate. ok is false when the row is missing or
// the payload does not decode; the caller substitutes a default in both cases.
func (s *Store) Load(ctx context.Context) (model.UserData, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM user_data WHERE key = ?`, userDataKey).Scan(&payload)
	if err == sql.ErrNoRows {
		return model.UserData{}, false, nil
	}
	if err != nil {
		return model.UserData{}, false, err
	}
	var data model.UserData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		// Corrupt payload is recovered by falling back to defaults.
		return model.UserData{}, false, nil
	}
	return data, true, nil
}

// Save writes the full aggregate snapshot under the fixed key.
func (s *Store) Save(ctx context.Context, data model.UserData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user_data (key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		userDataKey,
		string(payload),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// AppendSession stores one completed session, including its full trial
// sequence for audit and replay.
func (s *Store) AppendSession(ctx context.Context, result model.SessionResult) error {
	trials, err := json.Marshal(result.Trials)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (uid, game_id, date, accuracy, avg_reaction_ms, best_reaction_ms, final_level, duration_seconds, trials, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		string(result.GameID),
		result.Date,
		result.Accuracy,
		result.AverageReactionMs,
		result.BestReactionMs,
		result.FinalLevel,
		result.DurationSeconds,
		string(trials),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// ListSessions returns the most recent session records, newest first. A
// non-positive limit returns everything.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]model.SessionRecord, error) {
	query := `SELECT uid, game_id, date, accuracy, avg_reaction_ms, best_reaction_ms, final_level, duration_seconds,
		(SELECT COUNT(*) FROM json_each(trials)) AS trial_count
		FROM sessions
		ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.SessionRecord
	for rows.Next() {
		var record model.SessionRecord
		var gameID string
		if err := rows.Scan(&record.UID, &gameID, &record.Date, &record.Accuracy, &record.AverageReactionMs,
			&record.BestReactionMs, &record.FinalLevel, &record.DurationSeconds, &record.TrialCount); err != nil {
			return nil, err
		}
		record.GameID = model.GameID(gameID)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
