package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/airrunner/internal/gesture"
)

// CalibrationRecord is one successful calibration and the sample counts
// it was derived from.
type CalibrationRecord struct {
	ID         string               `json:"id"`
	CreatedAt  time.Time            `json:"created_at"`
	Mode       string               `json:"mode"`
	Thresholds gesture.ThresholdSet `json:"thresholds"`
	Counts     map[string]int       `json:"counts"`
}

// CalibrationRepository stores calibration results.
type CalibrationRepository struct {
	db *sql.DB
}

// Calibrations returns the calibration repository for this store.
func (s *Store) Calibrations() *CalibrationRepository {
	return &CalibrationRepository{db: s.db}
}

// Create inserts rec, assigning an ID and timestamp when unset.
func (r *CalibrationRepository) Create(rec *CalibrationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	counts := rec.Counts
	if counts == nil {
		counts = map[string]int{}
	}
	data, err := json.Marshal(counts)
	if err != nil {
		return err
	}

	t := rec.Thresholds
	_, err = r.db.Exec(
		`INSERT INTO calibrations (id, created_at, mode, jump_thresh, duck_thresh, left_thresh, right_thresh, counts)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt, rec.Mode, t.Jump, t.Duck, t.Left, t.Right, string(data),
	)
	return err
}

// Latest returns the most recent calibration or ErrNotFound.
func (r *CalibrationRepository) Latest() (*CalibrationRecord, error) {
	recs, err := r.List(1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return recs[0], nil
}

// List returns up to limit calibrations, newest first.
func (r *CalibrationRepository) List(limit int) ([]*CalibrationRecord, error) {
	rows, err := r.db.Query(
		`SELECT id, created_at, mode, jump_thresh, duck_thresh, left_thresh, right_thresh, counts
		 FROM calibrations ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*CalibrationRecord{}
	for rows.Next() {
		rec := &CalibrationRecord{}
		var counts string
		err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.Mode,
			&rec.Thresholds.Jump, &rec.Thresholds.Duck, &rec.Thresholds.Left, &rec.Thresholds.Right, &counts)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(counts), &rec.Counts); err != nil {
			return nil, fmt.Errorf("decode calibration counts: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
