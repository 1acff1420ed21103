package store

// runMigrations creates the schema. Every statement is idempotent.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Key/value application settings, including the persisted thresholds.
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// One row per finished game session.
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			mode TEXT NOT NULL,
			duration_s INTEGER NOT NULL,
			jump INTEGER NOT NULL DEFAULT 0,
			duck INTEGER NOT NULL DEFAULT 0,
			left_count INTEGER NOT NULL DEFAULT 0,
			right_count INTEGER NOT NULL DEFAULT 0,
			total INTEGER NOT NULL DEFAULT 0
		)`,

		// One row per successful calibration.
		`CREATE TABLE IF NOT EXISTS calibrations (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			mode TEXT NOT NULL,
			jump_thresh REAL NOT NULL,
			duck_thresh REAL NOT NULL,
			left_thresh REAL NOT NULL,
			right_thresh REAL NOT NULL,
			counts TEXT NOT NULL DEFAULT '{}'
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_calibrations_created_at ON calibrations(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
