package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/go-cmp/cmp"

	"github.com/dukerupert/habiti/internal/database"
	"github.com/dukerupert/habiti/internal/model"
	"github.com/dukerupert/habiti/internal/store"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type staticSource struct{ doc Document }

func (s staticSource) Export() Document { return s.doc }

func setupManager(t *testing.T, cfg Config) (*Manager, *mockS3Client) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg.S3 = S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret", Prefix: "exports/"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewManager(cfg, store.NewBackupStore(db), staticSource{sampleDocument()}, logger, nil)
	mock := newMockS3()
	m.client = mock
	m.now = func() time.Time { return exportTime }
	return m, mock
}

func TestManagerStateLifecycle(t *testing.T) {
	m := NewManager(Config{}, nil, nil, nil, nil)
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}
	if _, err := m.RunNow(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("RunNow err = %v, want ErrNotConfigured", err)
	}
	if err := m.Run(context.Background()); err != nil {
		t.Errorf("Run on disabled manager = %v", err)
	}

	m2 := NewManager(Config{S3: S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"}}, nil, nil, nil, nil)
	if m2.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", m2.Status().State, StateIdle)
	}
}

func TestRunNowAndFetch(t *testing.T) {
	for _, passphrase := range []string{"", "hunter2"} {
		t.Run("passphrase="+passphrase, func(t *testing.T) {
			ctx := context.Background()
			m, mock := setupManager(t, Config{Passphrase: passphrase})

			rec, err := m.RunNow(ctx)
			if err != nil {
				t.Fatalf("run now: %v", err)
			}
			if rec.Status != model.BackupStatusCompleted {
				t.Errorf("status = %q", rec.Status)
			}
			if rec.Encrypted != (passphrase != "") {
				t.Errorf("encrypted = %v", rec.Encrypted)
			}
			data, ok := mock.objects[rec.S3Key]
			if !ok {
				t.Fatalf("object %q not uploaded", rec.S3Key)
			}
			if IsSealed(data) != (passphrase != "") {
				t.Errorf("sealed = %v", IsSealed(data))
			}
			if rec.SizeBytes != int64(len(data)) {
				t.Errorf("size = %d, want %d", rec.SizeBytes, len(data))
			}
			if m.Status().State != StateIdle || m.Status().LastBackup == nil {
				t.Errorf("status = %+v", m.Status())
			}

			got, err := m.Fetch(ctx, rec.ID)
			if err != nil {
				t.Fatalf("fetch: %v", err)
			}
			if diff := cmp.Diff(sampleDocument(), got.Document); diff != "" {
				t.Errorf("fetched document mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunNowUploadFailure(t *testing.T) {
	ctx := context.Background()
	m, mock := setupManager(t, Config{})
	mock.putErr = errors.New("bucket on fire")

	if _, err := m.RunNow(ctx); err == nil {
		t.Fatal("expected error")
	}
	if m.Status().State != StateError {
		t.Errorf("state = %q, want %q", m.Status().State, StateError)
	}

	history, err := m.History(ctx, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Status != model.BackupStatusFailed {
		t.Fatalf("history = %+v", history)
	}
	if history[0].ErrorMessage != "bucket on fire" {
		t.Errorf("error message = %q", history[0].ErrorMessage)
	}
	if _, err := m.Fetch(ctx, history[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("fetch failed backup err = %v, want ErrNotFound", err)
	}
}

func TestCleanupRemovesOldObjects(t *testing.T) {
	ctx := context.Background()
	m, mock := setupManager(t, Config{RetentionDays: 7})

	rec, err := m.RunNow(ctx)
	if err != nil {
		t.Fatalf("run now: %v", err)
	}

	m.now = func() time.Time { return time.Now().AddDate(0, 0, 30) }
	if err := m.Cleanup(ctx); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, ok := mock.objects[rec.S3Key]; ok {
		t.Error("old object still in bucket")
	}
	history, _ := m.History(ctx, 10)
	if len(history) != 0 {
		t.Errorf("history = %d rows, want 0", len(history))
	}
}

func TestObjectKey(t *testing.T) {
	if got := objectKey("/exports/", "a.json"); got != "exports/a.json" {
		t.Errorf("objectKey = %q", got)
	}
	if got := objectKey("", "a.json"); got != "a.json" {
		t.Errorf("objectKey = %q", got)
	}
}
