package sfrest

import (
	"context"

	"github.com/natserract/sfrest/pkg/task"
)

// SalesforceClient is the session surface used by callers that only need
// raw responses. Generic operations (QueryRecords, Insert) take a *Client.
type SalesforceClient interface {
	Login(ctx context.Context, username, password string) *task.Task[*Session]
	Logout()
	Session() *Session
	State() State
	IsLoggedIn() bool

	Query(ctx context.Context, soql string) *task.Task[string]
	Update(ctx context.Context, rec Record) *task.Task[string]
	Delete(ctx context.Context, rec Record) *task.Task[string]
	GetFeed(ctx context.Context, recordID string) *task.Task[string]
	PostToFeed(ctx context.Context, body interface{}) *task.Task[string]
	HandleApprovalProcess(ctx context.Context, body interface{}) *task.Task[string]
	RunCustomOperation(ctx context.Context, method, path string, body interface{}, rawQuery string) *task.Task[string]
}

var _ SalesforceClient = (*Client)(nil)
