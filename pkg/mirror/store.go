package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/natserract/sfrest/pkg/mirror/postgres"
)

// Job statuses.
const (
	JobRunning             = "running"
	JobCompleted           = "completed"
	JobCompletedWithErrors = "completed_with_errors"
	JobFailed              = "failed"
)

// Job tracks one mirror run.
type Job struct {
	ID             uuid.UUID
	Object         string
	SOQL           string
	Status         string
	TotalItems     int
	SucceededItems int
	FailedItems    int
	StartedAt      time.Time
	Duration       time.Duration
}

// StoredRecord is one mirrored record.
type StoredRecord struct {
	Object  string
	ID      string
	Payload map[string]interface{}
	JobID   uuid.UUID
}

// Store persists mirrored records and their jobs.
type Store interface {
	CreateJob(ctx context.Context, job *Job) error
	CompleteJob(ctx context.Context, job *Job) error
	UpsertRecord(ctx context.Context, rec StoredRecord) error
}

// PGStore is the Postgres Store.
type PGStore struct {
	db     *postgres.DB
	logger *zap.Logger
}

func NewPGStore(db *postgres.DB, logger *zap.Logger) *PGStore {
	return &PGStore{db: db, logger: logger}
}

func (s *PGStore) CreateJob(ctx context.Context, job *Job) error {
	const q = `
INSERT INTO sf_sync_jobs (id, object_name, soql, status, total_items, started_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.Pool().Exec(ctx, q, job.ID, job.Object, job.SOQL, job.Status, job.TotalItems, job.StartedAt)
	if err != nil {
		s.logPgError("Failed to create sync job", err, zap.String("job_id", job.ID.String()))
		return fmt.Errorf("failed to create sync job %s: %w", job.ID, err)
	}
	return nil
}

func (s *PGStore) CompleteJob(ctx context.Context, job *Job) error {
	const q = `
UPDATE sf_sync_jobs
SET status = $2, total_items = $3, succeeded_items = $4, failed_items = $5,
    completed_at = now(), duration_ms = $6
WHERE id = $1`

	duration := pgtype.Int8{Int64: job.Duration.Milliseconds(), Valid: true}
	tag, err := s.db.Pool().Exec(ctx, q, job.ID, job.Status, job.TotalItems, job.SucceededItems, job.FailedItems, duration)
	if err != nil {
		s.logPgError("Failed to complete sync job", err, zap.String("job_id", job.ID.String()))
		return fmt.Errorf("failed to complete sync job %s: %w", job.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sync job %s not found", job.ID)
	}
	return nil
}

// UpsertRecord inserts the record or replaces the stored payload.
func (s *PGStore) UpsertRecord(ctx context.Context, rec StoredRecord) error {
	const q = `
INSERT INTO sf_records (object_name, record_id, payload, sync_job_id, synced_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (object_name, record_id) DO UPDATE
SET payload = EXCLUDED.payload, sync_job_id = EXCLUDED.sync_job_id, synced_at = EXCLUDED.synced_at`

	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", rec.ID, err)
	}

	jobID := pgtype.UUID{Bytes: rec.JobID, Valid: rec.JobID != uuid.Nil}
	if _, err := s.db.Pool().Exec(ctx, q, rec.Object, rec.ID, payload, jobID); err != nil {
		s.logPgError("Failed to upsert record", err,
			zap.String("object", rec.Object),
			zap.String("record_id", rec.ID))
		return fmt.Errorf("failed to upsert record %s: %w", rec.ID, err)
	}

	s.logger.Debug("Upserted record", zap.String("object", rec.Object), zap.String("record_id", rec.ID))
	return nil
}

// logPgError adds the Postgres error code and constraint when available.
func (s *PGStore) logPgError(msg string, err error, fields ...zap.Field) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		fields = append(fields,
			zap.String("pg_code", pgErr.Code),
			zap.String("pg_constraint", pgErr.ConstraintName))
	}
	s.logger.Error(msg, append(fields, zap.Error(err))...)
}

var _ Store = (*PGStore)(nil)
