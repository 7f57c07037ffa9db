// Package backup exports the database as an encrypted snapshot, on demand and
// on a schedule, with optional upload to S3-compatible storage.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dukerupert/plateful/internal/model"
	"github.com/dukerupert/plateful/internal/store"
)

// ErrInvalidSnapshot means the backup decrypted but does not hold a snapshot
// this version can restore.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// s3Client is the subset of *s3.Client the manager uses.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func (c S3Config) enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

type Config struct {
	// Dir holds scheduled snapshots. Empty disables scheduling.
	Dir        string
	Passphrase string
	Interval   time.Duration
	// Keep is how many scheduled snapshots survive pruning.
	Keep int
	S3   S3Config
}

type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"lastBackup,omitempty"`
	Error      string     `json:"error,omitempty"`
	InProgress bool       `json:"inProgress"`
	Remote     bool       `json:"remote"`
}

// StatusCallback is called whenever the state changes.
type StatusCallback func(Status)

type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	status   Status
	callback StatusCallback

	snapshots *store.SnapshotStore
	backups   *store.BackupStore
	client    s3Client
	logger    *slog.Logger

	// run serializes scheduled and manual runs.
	run    sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(cfg Config, snapshots *store.SnapshotStore, backups *store.BackupStore, callback StatusCallback, logger *slog.Logger) *Manager {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.Keep <= 0 {
		cfg.Keep = 7
	}
	m := &Manager{
		cfg:       cfg,
		snapshots: snapshots,
		backups:   backups,
		callback:  callback,
		logger:    logger,
		status:    Status{State: StateDisabled},
	}
	if cfg.Dir != "" && cfg.Passphrase != "" {
		m.status.State = StateIdle
	}
	if cfg.S3.enabled() {
		m.client = newS3Client(cfg.S3)
		m.status.Remote = true
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Export seals the current database snapshot with passphrase.
func (m *Manager) Export(passphrase string) ([]byte, error) {
	snap, err := m.snapshots.Export()
	if err != nil {
		return nil, fmt.Errorf("export snapshot: %w", err)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return Seal(data, passphrase)
}

// Import opens sealed with passphrase and replaces the database contents.
func (m *Manager) Import(sealed []byte, passphrase string) (*model.Snapshot, error) {
	data, err := Open(sealed, passphrase)
	if err != nil {
		return nil, err
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if snap.Version > model.SnapshotVersion {
		return nil, fmt.Errorf("%w: version %d is newer than supported %d", ErrInvalidSnapshot, snap.Version, model.SnapshotVersion)
	}
	if err := m.snapshots.Import(&snap); err != nil {
		return nil, err
	}
	m.logger.Info("snapshot imported",
		"recipes", len(snap.Recipes), "meal_plans", len(snap.MealPlans), "grocery_lists", len(snap.GroceryLists))
	return &snap, nil
}

// Start runs a backup every Interval until Stop. It does nothing when
// scheduling is disabled.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.status.State == StateDisabled || m.cancel != nil {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	interval := m.cfg.Interval
	m.mu.Unlock()

	m.logger.Info("scheduled backups started", "dir", m.cfg.Dir, "interval", interval, "keep", m.cfg.Keep, "remote", m.client != nil)

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := m.RunNow(ctx); err != nil {
					m.logger.Error("scheduled backup failed", "error", err)
				}
			}
		}
	}()
}

// Stop ends the schedule and waits for a running backup to finish.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// History lists the newest scheduled backups.
func (m *Manager) History(limit int) ([]model.Backup, error) {
	return m.backups.List(limit)
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	s.Remote = m.client != nil
	if s.LastBackup == nil {
		s.LastBackup = m.status.LastBackup
	}
	m.status = s
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(s)
	}
}

// RunNow writes a sealed snapshot to Dir, uploads it when S3 is configured,
// then prunes old snapshots.
func (m *Manager) RunNow(ctx context.Context) (*model.Backup, error) {
	if m.Status().State == StateDisabled {
		return nil, errors.New("scheduled backups are not configured")
	}
	m.run.Lock()
	defer m.run.Unlock()

	m.setStatus(Status{State: StateRunning, InProgress: true})

	filename := fmt.Sprintf("plateful-%s.json.enc", time.Now().UTC().Format("20060102T150405.000Z"))
	var s3Key string
	if m.client != nil {
		s3Key = "backups/" + filename
	}

	record, err := m.backups.Create(filename, s3Key)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, err
	}

	fail := func(err error) (*model.Backup, error) {
		if uerr := m.backups.UpdateStatus(record.ID, model.BackupStatusFailed, err.Error()); uerr != nil {
			m.logger.Warn("record backup failure", "id", record.ID, "error", uerr)
		}
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, err
	}

	sealed, err := m.Export(m.cfg.Passphrase)
	if err != nil {
		return fail(err)
	}
	if err := os.MkdirAll(m.cfg.Dir, 0o700); err != nil {
		return fail(fmt.Errorf("create backup dir: %w", err))
	}
	if err := os.WriteFile(filepath.Join(m.cfg.Dir, filename), sealed, 0o600); err != nil {
		return fail(fmt.Errorf("write backup: %w", err))
	}

	if m.client != nil {
		m.backups.UpdateStatus(record.ID, model.BackupStatusUploading, "")
		_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(m.cfg.S3.Bucket),
			Key:           aws.String(s3Key),
			Body:          bytes.NewReader(sealed),
			ContentLength: aws.Int64(int64(len(sealed))),
		})
		if err != nil {
			return fail(fmt.Errorf("upload to s3: %w", err))
		}
	}

	if err := m.backups.UpdateCompleted(record.ID, int64(len(sealed))); err != nil {
		return fail(err)
	}
	record, err = m.backups.GetByID(record.ID)
	if err != nil {
		return fail(err)
	}

	now := time.Now().UTC()
	m.setStatus(Status{State: StateIdle, LastBackup: &now})
	m.logger.Info("backup completed", "file", filename, "bytes", len(sealed))

	if err := m.prune(ctx); err != nil {
		m.logger.Warn("prune backups", "error", err)
	}
	return record, nil
}

func (m *Manager) prune(ctx context.Context) error {
	old, err := m.backups.Prune(m.cfg.Keep)
	if err != nil {
		return err
	}
	for _, b := range old {
		if err := os.Remove(filepath.Join(m.cfg.Dir, b.Filename)); err != nil && !errors.Is(err, os.ErrNotExist) {
			m.logger.Warn("remove old backup", "file", b.Filename, "error", err)
		}
		if m.client != nil && b.S3Key != "" {
			if _, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(m.cfg.S3.Bucket),
				Key:    aws.String(b.S3Key),
			}); err != nil {
				m.logger.Warn("delete old s3 backup", "key", b.S3Key, "error", err)
			}
		}
	}
	return nil
}
