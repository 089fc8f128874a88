// Package mirror copies Salesforce query results into Postgres.
package mirror

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	sfrest "github.com/natserract/sfrest/pkg/salesforce/rest"
	"github.com/natserract/sfrest/pkg/task"
)

// Snapshot is a schemaless record as returned by a query.
type Snapshot struct {
	sfrest.BaseRecord
	Type   string
	Fields map[string]interface{}
}

func (s *Snapshot) ObjectName() string { return s.Type }

func (s *Snapshot) ToWire() (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(s.Fields))
	for k, v := range s.Fields {
		out[k] = v
	}
	return out, nil
}

// FromWire keeps every field except the "attributes" metadata, which only
// contributes the object type.
func (s *Snapshot) FromWire(m map[string]interface{}) error {
	s.Fields = make(map[string]interface{}, len(m))
	for k, v := range m {
		if k == "attributes" {
			if attrs, ok := v.(map[string]interface{}); ok {
				s.Type, _ = attrs["type"].(string)
			}
			continue
		}
		s.Fields[k] = v
	}
	if id, ok := m[sfrest.IDField].(string); ok {
		s.SetID(id)
	}
	return nil
}

// SyncMetrics tracks the outcome of a mirror run
type SyncMetrics struct {
	JobID     uuid.UUID
	Succeeded int
	Failed    int
	mu        sync.Mutex
}

func (m *SyncMetrics) AddSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Succeeded++
}

func (m *SyncMetrics) AddFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failed++
}

// Total returns the number of records processed.
func (m *SyncMetrics) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Succeeded + m.Failed
}

// SyncService mirrors query results into a Store with durable tracking via
// sync jobs
type SyncService struct {
	client         *sfrest.Client
	store          Store
	logger         *zap.Logger
	maxConcurrency int
}

// NewSyncService creates a new sync service
func NewSyncService(client *sfrest.Client, store Store, logger *zap.Logger) *SyncService {
	return &SyncService{
		client:         client,
		store:          store,
		logger:         logger,
		maxConcurrency: 10,
	}
}

// Mirror runs soql and upserts every returned record. Records without a type
// in their metadata are stored under object. A failed record is counted and
// logged; only query and job bookkeeping failures abort the run.
func (s *SyncService) Mirror(ctx context.Context, object, soql string) (*SyncMetrics, error) {
	startTime := time.Now()
	s.logger.Info("Starting mirror", zap.String("object", object), zap.String("soql", soql))

	records, err := task.Wait(ctx, sfrest.QueryRecords[Snapshot](ctx, s.client, soql))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", object, err)
	}

	s.logger.Info("Fetched records", zap.String("object", object), zap.Int("total_items", len(records)))

	job := &Job{
		ID:         uuid.New(),
		Object:     object,
		SOQL:       soql,
		Status:     JobRunning,
		TotalItems: len(records),
		StartedAt:  startTime,
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create sync job: %w", err)
	}

	metrics := &SyncMetrics{JobID: job.ID}
	p := pool.New().WithMaxGoroutines(s.maxConcurrency).WithErrors()
	for _, rec := range records {
		p.Go(func() error {
			if err := s.save(ctx, job.ID, object, rec); err != nil {
				metrics.AddFailure()
				s.logger.Error("Failed to mirror record",
					zap.String("job_id", job.ID.String()),
					zap.String("record_id", rec.ID()),
					zap.Error(err))
				return err
			}
			metrics.AddSuccess()
			return nil
		})
	}
	// Per-record failures are already counted.
	_ = p.Wait()

	job.SucceededItems = metrics.Succeeded
	job.FailedItems = metrics.Failed
	job.Duration = time.Since(startTime)
	job.Status = JobCompleted
	if metrics.Failed > 0 {
		job.Status = JobCompletedWithErrors
	}
	if err := s.store.CompleteJob(ctx, job); err != nil {
		return metrics, fmt.Errorf("failed to complete sync job: %w", err)
	}

	s.logger.Info("Completed mirror",
		zap.String("job_id", job.ID.String()),
		zap.String("object", object),
		zap.String("status", job.Status),
		zap.Duration("duration", job.Duration),
		zap.Int("succeeded", metrics.Succeeded),
		zap.Int("failed", metrics.Failed))

	return metrics, nil
}

func (s *SyncService) save(ctx context.Context, jobID uuid.UUID, object string, rec *Snapshot) error {
	if rec.ID() == "" {
		return fmt.Errorf("record has no %s field", sfrest.IDField)
	}
	name := rec.ObjectName()
	if name == "" {
		name = object
	}
	payload, err := rec.ToWire()
	if err != nil {
		return err
	}
	return s.store.UpsertRecord(ctx, StoredRecord{
		Object:  name,
		ID:      rec.ID(),
		Payload: payload,
		JobID:   jobID,
	})
}
