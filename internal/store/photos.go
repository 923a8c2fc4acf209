package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// PhotoStatus records whether a fired capture reached the disk.
type PhotoStatus string

const (
	// PhotoSaved marks a capture whose file was written.
	PhotoSaved PhotoStatus = "saved"
	// PhotoFailed marks a capture whose write failed.
	PhotoFailed PhotoStatus = "failed"
)

// PhotoRecord is the index entry for one fired capture.
type PhotoRecord struct {
	ID      string      `json:"id"`
	RunID   string      `json:"run_id,omitempty"`
	Path    string      `json:"path"`
	Status  PhotoStatus `json:"status"`
	Error   string      `json:"error,omitempty"`
	TakenAt time.Time   `json:"taken_at"`
}

// PhotoRepository provides access to the photo index.
type PhotoRepository struct {
	db *sql.DB
}

// Photos returns the photo repository for this store.
func (s *Store) Photos() *PhotoRepository {
	return &PhotoRepository{db: s.db}
}

// Create inserts a photo record and bumps the capture count of its run.
func (r *PhotoRepository) Create(p *PhotoRecord) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var runID any
	if p.RunID != "" {
		runID = p.RunID
	}

	_, err = tx.Exec(
		`INSERT INTO photos (id, run_id, path, status, error, taken_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, runID, p.Path, string(p.Status), p.Error, p.TakenAt,
	)
	if err != nil {
		return err
	}

	if p.RunID != "" && p.Status == PhotoSaved {
		if _, err := tx.Exec(`UPDATE runs SET captures = captures + 1 WHERE id = ?`, p.RunID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a photo record by its ID.
func (r *PhotoRepository) GetByID(id string) (*PhotoRecord, error) {
	p := &PhotoRecord{}
	var runID sql.NullString
	var status string

	err := r.db.QueryRow(
		`SELECT id, run_id, path, status, error, taken_at
		 FROM photos WHERE id = ?`,
		id,
	).Scan(&p.ID, &runID, &p.Path, &status, &p.Error, &p.TakenAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	p.RunID = runID.String
	p.Status = PhotoStatus(status)
	return p, nil
}

// List returns the most recent photo records first. A limit of zero or less
// returns every record.
func (r *PhotoRepository) List(limit int) ([]*PhotoRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, run_id, path, status, error, taken_at
		 FROM photos ORDER BY taken_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []*PhotoRecord
	for rows.Next() {
		p := &PhotoRecord{}
		var runID sql.NullString
		var status string

		if err := rows.Scan(&p.ID, &runID, &p.Path, &status, &p.Error, &p.TakenAt); err != nil {
			return nil, err
		}

		p.RunID = runID.String
		p.Status = PhotoStatus(status)
		photos = append(photos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return photos, nil
}

// Count returns the number of photo records with the given status. An
// empty status counts every record.
func (r *PhotoRepository) Count(status PhotoStatus) (int, error) {
	var n int
	if status == "" {
		err := r.db.QueryRow(`SELECT COUNT(*) FROM photos`).Scan(&n)
		return n, err
	}
	err := r.db.QueryRow(`SELECT COUNT(*) FROM photos WHERE status = ?`, string(status)).Scan(&n)
	return n, err
}
