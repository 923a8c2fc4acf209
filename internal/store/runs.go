package store

import (
	"database/sql"
	"errors"
	"time"
)

// Run is one camera start/stop cycle.
type Run struct {
	ID         string     `json:"id"`
	CameraID   int        `json:"camera_id"`
	StartedAt  time.Time  `json:"started_at"`
	StoppedAt  *time.Time `json:"stopped_at,omitempty"`
	StopReason string     `json:"stop_reason,omitempty"`
	Captures   int        `json:"captures"`
}

// RunRepository provides access to camera runs.
type RunRepository struct {
	db *sql.DB
}

// Runs returns the run repository for this store.
func (s *Store) Runs() *RunRepository {
	return &RunRepository{db: s.db}
}

// Create inserts a new run.
func (r *RunRepository) Create(run *Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO runs (id, camera_id, started_at) VALUES (?, ?, ?)`,
		run.ID, run.CameraID, run.StartedAt,
	)
	return err
}

// Finish marks a run as stopped with the given reason.
func (r *RunRepository) Finish(id string, at time.Time, reason string) error {
	result, err := r.db.Exec(
		`UPDATE runs SET stopped_at = ?, stop_reason = ? WHERE id = ? AND stopped_at IS NULL`,
		at, reason, id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByID retrieves a run by its ID.
func (r *RunRepository) GetByID(id string) (*Run, error) {
	run := &Run{}
	var stoppedAt sql.NullTime

	err := r.db.QueryRow(
		`SELECT id, camera_id, started_at, stopped_at, stop_reason, captures
		 FROM runs WHERE id = ?`,
		id,
	).Scan(&run.ID, &run.CameraID, &run.StartedAt, &stoppedAt, &run.StopReason, &run.Captures)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if stoppedAt.Valid {
		t := stoppedAt.Time
		run.StoppedAt = &t
	}
	return run, nil
}
