package sfrest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	httpclient "github.com/natserract/sfrest/pkg/http"
	"github.com/natserract/sfrest/pkg/task"
	"go.uber.org/zap"
)

// Query runs a SOQL statement and resolves to the raw JSON response.
func (c *Client) Query(ctx context.Context, soql string) *task.Task[string] {
	return start(c, "query",
		func(s *Session) (httpclient.RequestOptions, error) {
			return newRequest(ctx, s, http.MethodGet, s.dataPath("/query"), queryString("q", soql), nil), nil
		},
		rawBody)
}

// QueryRecords runs a SOQL statement and decodes every returned record into
// a new T. Result pages are followed through nextRecordsUrl, suspending once
// per page.
func QueryRecords[T any, PT interface {
	*T
	Record
}](ctx context.Context, c *Client, soql string) *task.Task[[]PT] {
	const label = "query"

	s := c.Session()
	if s == nil {
		c.logger.Error("Salesforce operation rejected", zap.String("operation", label), zap.Error(ErrNotLoggedIn))
		return task.FromOutcome(task.Failure[[]PT](newAPIError(ErrNotLoggedIn, "Cannot perform Salesforce %s: not logged in", label)))
	}

	first := newRequest(ctx, s, http.MethodGet, s.dataPath("/query"), queryString("q", soql), nil)
	return task.Start(func(yield func(task.Step[[]PT]) bool) {
		fail := func(err error) {
			yield(task.Fail[[]PT](newAPIError(err, "Salesforce %s error: %s", label, err.Error())))
		}

		records := make([]PT, 0)
		opts := first
		for page := 1; ; page++ {
			resp, err := roundTrip(c, yield, opts)
			if errors.Is(err, errStopped) {
				return
			}
			if err != nil {
				fail(err)
				return
			}

			var result QueryResponse[map[string]interface{}]
			if err := json.Unmarshal(resp.Body, &result); err != nil {
				fail(fmt.Errorf("failed to parse query response: %w", err))
				return
			}
			decoded, err := decodeRecords[T, PT](result.Records)
			if err != nil {
				fail(err)
				return
			}
			records = append(records, decoded...)

			c.logger.Debug("Fetched query page",
				zap.Int("page", page),
				zap.Int("records", len(decoded)),
				zap.Int("total_size", result.TotalSize))

			if result.Done || result.NextRecordsURL == "" {
				break
			}
			opts = newRequest(ctx, s, http.MethodGet, result.NextRecordsURL, "", nil)
		}

		yield(task.Succeed(records))
	}, stoppedAs(label))
}
