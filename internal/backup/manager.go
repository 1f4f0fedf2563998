package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dukerupert/habiti/internal/model"
	"github.com/dukerupert/habiti/internal/store"
)

// ErrNotConfigured is returned by remote operations when no bucket or
// credentials are set.
var ErrNotConfigured = errors.New("backup not configured: S3 credentials missing")

// ErrNotFound is returned when a backup id has no history row.
var ErrNotFound = errors.New("backup not found")

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Prefix    string
}

func (c S3Config) enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Config holds backup manager configuration.
type Config struct {
	S3 S3Config
	// Passphrase seals uploads when set.
	Passphrase string
	// Interval between scheduled uploads; zero disables the schedule.
	Interval time.Duration
	// RetentionDays bounds the history kept remotely; zero keeps everything.
	RetentionDays int
}

// Source produces the document to upload.
type Source interface {
	Export() Document
}

// State represents the backup manager state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	Error      string     `json:"error,omitempty"`
	InProgress bool       `json:"in_progress"`
}

// StatusCallback is called whenever the backup state changes.
type StatusCallback func(Status)

// Manager uploads exports to S3-compatible storage and keeps their history.
type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	status   Status
	callback StatusCallback

	store  *store.BackupStore
	source Source
	client s3Client
	logger *slog.Logger
	now    func() time.Time
}

// NewManager creates a new backup manager. Without S3 settings it stays
// disabled and remote operations return ErrNotConfigured.
func NewManager(cfg Config, bs *store.BackupStore, src Source, logger *slog.Logger, callback StatusCallback) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		cfg:      cfg,
		store:    bs,
		source:   src,
		callback: callback,
		logger:   logger.With("component", "backup"),
		now:      time.Now,
		status:   Status{State: StateDisabled},
	}
	if cfg.S3.enabled() {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(s)
	}
}

// Enabled reports whether uploads are possible.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

// Run uploads an export every Interval until ctx is done. It returns nil
// immediately when uploads or the schedule are disabled.
func (m *Manager) Run(ctx context.Context) error {
	if !m.Enabled() || m.cfg.Interval <= 0 {
		return nil
	}
	m.logger.Info("backup schedule started", "interval", m.cfg.Interval)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := m.RunNow(ctx); err != nil {
				m.logger.Error("scheduled backup failed", "error", err)
			}
			if err := m.Cleanup(ctx); err != nil {
				m.logger.Error("backup cleanup failed", "error", err)
			}
		}
	}
}

// RunNow exports the current state, seals it when a passphrase is
// configured, uploads it and records the attempt in the history table.
func (m *Manager) RunNow(ctx context.Context) (*model.Backup, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	prefix := m.cfg.S3.Prefix
	passphrase := m.cfg.Passphrase
	m.mu.RUnlock()

	if client == nil {
		return nil, ErrNotConfigured
	}

	m.setStatus(Status{State: StateRunning, InProgress: true})

	now := m.now().UTC()
	encrypted := passphrase != ""
	filename := fmt.Sprintf("habiti-backup-%s.json", now.Format("2006-01-02T150405Z"))
	if encrypted {
		filename += ".enc"
	}
	key := objectKey(prefix, filename)

	record, err := m.store.Create(ctx, filename, key, encrypted)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, fmt.Errorf("create backup record: %w", err)
	}
	fail := func(stage string, err error) (*model.Backup, error) {
		if uerr := m.store.UpdateStatus(ctx, record.ID, model.BackupStatusFailed, err.Error()); uerr != nil {
			m.logger.Error("record backup failure", "id", record.ID, "error", uerr)
		}
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, fmt.Errorf("%s: %w", stage, err)
	}

	if err := m.store.UpdateStatus(ctx, record.ID, model.BackupStatusUploading, ""); err != nil {
		return fail("mark uploading", err)
	}

	doc := m.source.Export()
	doc.ExportedAt = now
	data, err := Encode(doc)
	if err != nil {
		return fail("encode", err)
	}
	if encrypted {
		if data, err = Encrypt(data, passphrase); err != nil {
			return fail("encrypt", err)
		}
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fail("upload to s3", err)
	}

	if err := m.store.UpdateCompleted(ctx, record.ID, int64(len(data))); err != nil {
		return fail("mark completed", err)
	}
	m.setStatus(Status{State: StateIdle, LastBackup: &now})
	m.logger.Info("backup uploaded", "id", record.ID, "key", key, "bytes", len(data))

	return m.store.GetByID(ctx, record.ID)
}

// Fetch downloads a completed backup and decodes it, decrypting with the
// configured passphrase when the upload was sealed.
func (m *Manager) Fetch(ctx context.Context, id int64) (Decoded, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	passphrase := m.cfg.Passphrase
	m.mu.RUnlock()

	if client == nil {
		return Decoded{}, ErrNotConfigured
	}

	record, err := m.store.GetByID(ctx, id)
	if err != nil {
		return Decoded{}, fmt.Errorf("get backup: %w", err)
	}
	if record == nil || record.Status != model.BackupStatusCompleted {
		return Decoded{}, ErrNotFound
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(record.S3Key),
	})
	if err != nil {
		return Decoded{}, fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return Decoded{}, fmt.Errorf("read download: %w", err)
	}
	plain, err := Open(data, passphrase)
	if err != nil {
		return Decoded{}, err
	}
	return Decode(plain)
}

// History lists the most recent backup attempts.
func (m *Manager) History(ctx context.Context, limit int) ([]model.Backup, error) {
	return m.store.List(ctx, limit)
}

// Cleanup deletes backups older than the retention period, both the history
// rows and the remote objects.
func (m *Manager) Cleanup(ctx context.Context) error {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	retention := m.cfg.RetentionDays
	m.mu.RUnlock()

	if client == nil || retention <= 0 {
		return nil
	}

	before := m.now().UTC().AddDate(0, 0, -retention)
	keys, err := m.store.DeleteOlderThan(ctx, before)
	if err != nil {
		return fmt.Errorf("delete old backups: %w", err)
	}

	for _, key := range keys {
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}); err != nil {
			m.logger.Warn("delete s3 object", "key", key, "error", err)
		}
	}
	return nil
}

func objectKey(prefix, filename string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return filename
	}
	return prefix + "/" + filename
}
