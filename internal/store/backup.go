package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/plateful/internal/model"
)

// BackupStore keeps the history of scheduled snapshots.
type BackupStore struct {
	db *sql.DB
}

func NewBackupStore(db *sql.DB) *BackupStore {
	return &BackupStore{db: db}
}

const backupCols = `id, filename, s3_key, size_bytes, status, error_message, started_at, completed_at, created_at`

func scanBackup(scanner interface{ Scan(...any) error }) (*model.Backup, error) {
	b := &model.Backup{}
	var errMsg sql.NullString
	var startedAt, completedAt sql.NullTime
	if err := scanner.Scan(&b.ID, &b.Filename, &b.S3Key, &b.SizeBytes, &b.Status, &errMsg, &startedAt, &completedAt, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.ErrorMessage = errMsg.String
	if startedAt.Valid {
		b.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		b.CompletedAt = &completedAt.Time
	}
	return b, nil
}

func (s *BackupStore) Create(filename, s3Key string) (*model.Backup, error) {
	now := time.Now().UTC()
	b := &model.Backup{
		ID:        uuid.NewString(),
		Filename:  filename,
		S3Key:     s3Key,
		Status:    model.BackupStatusPending,
		StartedAt: &now,
		CreatedAt: now,
	}
	_, err := s.db.Exec(
		`INSERT INTO backups (id, filename, s3_key, status, started_at, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.Filename, b.S3Key, b.Status, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create backup: %w", err)
	}
	return b, nil
}

func (s *BackupStore) GetByID(id string) (*model.Backup, error) {
	b, err := scanBackup(s.db.QueryRow(`SELECT `+backupCols+` FROM backups WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backup %s: %w", id, err)
	}
	return b, nil
}

// List returns the newest backups first.
func (s *BackupStore) List(limit int) ([]model.Backup, error) {
	rows, err := s.db.Query(`SELECT `+backupCols+` FROM backups ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	backups := []model.Backup{}
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		backups = append(backups, *b)
	}
	return backups, rows.Err()
}

func (s *BackupStore) UpdateStatus(id string, status model.BackupStatus, errorMsg string) error {
	var errPtr *string
	if errorMsg != "" {
		errPtr = &errorMsg
	}
	if _, err := s.db.Exec(`UPDATE backups SET status = ?, error_message = ? WHERE id = ?`, status, errPtr, id); err != nil {
		return fmt.Errorf("update backup status: %w", err)
	}
	return nil
}

func (s *BackupStore) UpdateCompleted(id string, sizeBytes int64) error {
	_, err := s.db.Exec(
		`UPDATE backups SET status = ?, size_bytes = ?, completed_at = ?, error_message = NULL WHERE id = ?`,
		model.BackupStatusCompleted, sizeBytes, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update backup completed: %w", err)
	}
	return nil
}

// Prune deletes every record but the newest keep and returns the deleted
// ones so their files can be removed.
func (s *BackupStore) Prune(keep int) ([]model.Backup, error) {
	if keep < 0 {
		keep = 0
	}
	rows, err := s.db.Query(
		`SELECT `+backupCols+` FROM backups ORDER BY created_at DESC, rowid DESC LIMIT -1 OFFSET ?`, keep,
	)
	if err != nil {
		return nil, fmt.Errorf("select old backups: %w", err)
	}
	var old []model.Backup
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		old = append(old, *b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, b := range old {
		if _, err := s.db.Exec(`DELETE FROM backups WHERE id = ?`, b.ID); err != nil {
			return nil, fmt.Errorf("delete backup %s: %w", b.ID, err)
		}
	}
	return old, nil
}

func (s *BackupStore) LatestCompleted() (*model.Backup, error) {
	b, err := scanBackup(s.db.QueryRow(
		`SELECT `+backupCols+` FROM backups WHERE status = ? ORDER BY completed_at DESC LIMIT 1`,
		model.BackupStatusCompleted,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest completed backup: %w", err)
	}
	return b, nil
}
