package model

import "time"

type BackupStatus string

const (
	BackupStatusPending   BackupStatus = "pending"
	BackupStatusUploading BackupStatus = "uploading"
	BackupStatusCompleted BackupStatus = "completed"
	BackupStatusFailed    BackupStatus = "failed"
)

// Backup records one scheduled encrypted snapshot.
type Backup struct {
	ID           string       `json:"id"`
	Filename     string       `json:"filename"`
	S3Key        string       `json:"s3Key,omitempty"`
	SizeBytes    int64        `json:"sizeBytes"`
	Status       BackupStatus `json:"status"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
	StartedAt    *time.Time   `json:"startedAt,omitempty"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}
