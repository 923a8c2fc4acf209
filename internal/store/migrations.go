package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Runs table - one row per camera start/stop cycle
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			camera_id INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			stopped_at DATETIME,
			stop_reason TEXT NOT NULL DEFAULT '',
			captures INTEGER NOT NULL DEFAULT 0
		)`,

		// Photos table - one row per fired capture, including failed writes
		`CREATE TABLE IF NOT EXISTS photos (
			id TEXT PRIMARY KEY,
			run_id TEXT REFERENCES runs(id) ON DELETE SET NULL,
			path TEXT NOT NULL,
			status TEXT NOT NULL CHECK(status IN ('saved', 'failed')),
			error TEXT NOT NULL DEFAULT '',
			taken_at DATETIME NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_photos_run_id ON photos(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_photos_taken_at ON photos(taken_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
