package mirror

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	sfrest "github.com/natserract/sfrest/pkg/salesforce/rest"
	"github.com/natserract/sfrest/pkg/task"
)

type memoryStore struct {
	mu        sync.Mutex
	jobs      map[uuid.UUID]Job
	records   map[string]StoredRecord
	failOn    string
	createErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{jobs: map[uuid.UUID]Job{}, records: map[string]StoredRecord{}}
}

func (m *memoryStore) CreateJob(_ context.Context, job *Job) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	return nil
}

func (m *memoryStore) CompleteJob(_ context.Context, job *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return errors.New("unknown job")
	}
	m.jobs[job.ID] = *job
	return nil
}

func (m *memoryStore) UpsertRecord(_ context.Context, rec StoredRecord) error {
	if rec.ID == m.failOn {
		return errors.New("constraint violation")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Object+"/"+rec.ID] = rec
	return nil
}

func newLoggedInClient(t *testing.T, queryBody string) *sfrest.Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /services/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"tok","instance_url":"http://`+r.Host+`"}`)
	})
	mux.HandleFunc("GET /services/data/v38.0/query", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, queryBody)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := sfrest.NewClientWithLogger(&sfrest.Config{
		OAuthEndpoint: server.URL + "/services/oauth2/token",
		ClientID:      "id",
		ClientSecret:  "secret",
	}, zap.NewNop())

	ctx := context.Background()
	_, err := task.Wait(ctx, client.Login(ctx, "user", "pass"))
	require.NoError(t, err)
	return client
}

const caseRecords = `{"totalSize":3,"done":true,"records":[
	{"attributes":{"type":"Case"},"Id":"1","Subject":"a","Status":"New"},
	{"attributes":{"type":"Case"},"Id":"2","Subject":"b","Status":"Closed"},
	{"Id":"3","Subject":"c","Status":"New"}
]}`

func TestMirror_StoresRecords(t *testing.T) {
	store := newMemoryStore()
	svc := NewSyncService(newLoggedInClient(t, caseRecords), store, zap.NewNop())

	metrics, err := svc.Mirror(context.Background(), "Case", "SELECT Id, Subject, Status FROM Case")
	require.NoError(t, err)

	assert.Equal(t, 3, metrics.Succeeded)
	assert.Zero(t, metrics.Failed)
	assert.Equal(t, 3, metrics.Total())
	require.Len(t, store.records, 3)

	rec := store.records["Case/2"]
	assert.Equal(t, "Closed", rec.Payload["Status"])
	assert.NotContains(t, rec.Payload, "attributes")
	assert.Equal(t, metrics.JobID, rec.JobID)
	assert.Contains(t, store.records, "Case/3")

	job := store.jobs[metrics.JobID]
	assert.Equal(t, JobCompleted, job.Status)
	assert.Equal(t, 3, job.TotalItems)
	assert.Equal(t, 3, job.SucceededItems)
}

func TestMirror_CountsFailures(t *testing.T) {
	store := newMemoryStore()
	store.failOn = "2"
	body := `{"done":true,"records":[{"Id":"1"},{"Id":"2"},{"Name":"no id"}]}`
	svc := NewSyncService(newLoggedInClient(t, body), store, zap.NewNop())

	metrics, err := svc.Mirror(context.Background(), "Account", "SELECT Id FROM Account")
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.Succeeded)
	assert.Equal(t, 2, metrics.Failed)
	assert.Contains(t, store.records, "Account/1")

	job := store.jobs[metrics.JobID]
	assert.Equal(t, JobCompletedWithErrors, job.Status)
	assert.Equal(t, 2, job.FailedItems)
}

func TestMirror_QueryFailure(t *testing.T) {
	store := newMemoryStore()
	svc := NewSyncService(newLoggedInClient(t, `not json`), store, zap.NewNop())

	_, err := svc.Mirror(context.Background(), "Case", "SELECT Id FROM Case")
	require.Error(t, err)
	assert.True(t, sfrest.IsAPIError(err))
	assert.Empty(t, store.jobs)
}

func TestMirror_JobCreationFailure(t *testing.T) {
	store := newMemoryStore()
	store.createErr = errors.New("database is read-only")
	svc := NewSyncService(newLoggedInClient(t, caseRecords), store, zap.NewNop())

	_, err := svc.Mirror(context.Background(), "Case", "SELECT Id FROM Case")
	assert.ErrorContains(t, err, "read-only")
	assert.Empty(t, store.records)
}

func TestSnapshot_FromWire(t *testing.T) {
	var s Snapshot
	require.NoError(t, s.FromWire(map[string]interface{}{
		"attributes": map[string]interface{}{"type": "Contact"},
		"Id":         "003xx",
		"LastName":   "Doe",
	}))

	assert.Equal(t, "Contact", s.ObjectName())
	assert.Equal(t, "003xx", s.ID())

	wire, err := s.ToWire()
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"Id": "003xx", "LastName": "Doe"}, wire)
}
