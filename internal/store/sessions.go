package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/airrunner/internal/gesture"
)

// DefaultRecent is how many sessions the history view shows.
const DefaultRecent = 7

// SessionRecord is one finished game session.
type SessionRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"date"`
	Mode      string    `json:"mode"`
	Duration  int       `json:"duration"` // seconds
	Jump      int       `json:"jump"`
	Duck      int       `json:"duck"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Total     int       `json:"total_actions"`
}

// NewSessionRecord builds a record from a session report.
func NewSessionRecord(mode string, r gesture.Report) *SessionRecord {
	return &SessionRecord{
		Mode:     mode,
		Duration: r.TotalTime,
		Jump:     r.Jump,
		Duck:     r.Duck,
		Left:     r.Left,
		Right:    r.Right,
		Total:    r.Total(),
	}
}

// SessionRepository stores session history.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts rec, assigning an ID and timestamp when unset.
func (r *SessionRepository) Create(rec *SessionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, created_at, mode, duration_s, jump, duck, left_count, right_count, total)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt, rec.Mode, rec.Duration, rec.Jump, rec.Duck, rec.Left, rec.Right, rec.Total,
	)
	return err
}

// GetByID returns one session or ErrNotFound.
func (r *SessionRepository) GetByID(id string) (*SessionRecord, error) {
	rec := &SessionRecord{}
	err := r.db.QueryRow(
		`SELECT id, created_at, mode, duration_s, jump, duck, left_count, right_count, total
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.Mode, &rec.Duration, &rec.Jump, &rec.Duck, &rec.Left, &rec.Right, &rec.Total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Recent returns up to limit sessions, newest first. A non-positive limit
// uses DefaultRecent.
func (r *SessionRepository) Recent(limit int) ([]*SessionRecord, error) {
	if limit <= 0 {
		limit = DefaultRecent
	}

	rows, err := r.db.Query(
		`SELECT id, created_at, mode, duration_s, jump, duck, left_count, right_count, total
		 FROM sessions ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*SessionRecord{}
	for rows.Next() {
		rec := &SessionRecord{}
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.Mode, &rec.Duration, &rec.Jump, &rec.Duck, &rec.Left, &rec.Right, &rec.Total); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
