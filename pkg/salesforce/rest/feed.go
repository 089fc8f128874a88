package sfrest

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	httpclient "github.com/natserract/sfrest/pkg/http"
	"github.com/natserract/sfrest/pkg/task"
)

// GetFeed returns the Chatter feed elements of the record with the given id.
func (c *Client) GetFeed(ctx context.Context, recordID string) *task.Task[string] {
	return start(c, "feed",
		func(s *Session) (httpclient.RequestOptions, error) {
			path := s.dataPath("/chatter/feeds/record/" + url.PathEscape(recordID) + "/feed-elements")
			return newRequest(ctx, s, http.MethodGet, path, "", nil), nil
		},
		rawBody)
}

// PostToFeed posts a feed element. body is sent as JSON unless it is
// already a string or []byte.
func (c *Client) PostToFeed(ctx context.Context, body interface{}) *task.Task[string] {
	return start(c, "feed",
		func(s *Session) (httpclient.RequestOptions, error) {
			return newRequest(ctx, s, http.MethodPost, s.dataPath("/chatter/feed-elements"), "", body), nil
		},
		rawBody)
}

// HandleApprovalProcess submits, approves or rejects approval requests.
func (c *Client) HandleApprovalProcess(ctx context.Context, body interface{}) *task.Task[string] {
	return start(c, "approval",
		func(s *Session) (httpclient.RequestOptions, error) {
			return newRequest(ctx, s, http.MethodPost, s.dataPath("/process/approvals"), "", body), nil
		},
		rawBody)
}

// RunCustomOperation calls an Apex REST endpoint under /services/apexrest.
// rawQuery is appended as-is when non-empty.
func (c *Client) RunCustomOperation(ctx context.Context, method, path string, body interface{}, rawQuery string) *task.Task[string] {
	return start(c, "custom operation",
		func(s *Session) (httpclient.RequestOptions, error) {
			target := "/services/apexrest/" + strings.TrimPrefix(path, "/")
			return newRequest(ctx, s, strings.ToUpper(method), target, strings.TrimPrefix(rawQuery, "?"), body), nil
		},
		rawBody)
}
