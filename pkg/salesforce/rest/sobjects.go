package sfrest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	httpclient "github.com/natserract/sfrest/pkg/http"
	"github.com/natserract/sfrest/pkg/task"
	"go.uber.org/zap"
)

func sobjectPath(s *Session, rec Record) string {
	return s.dataPath("/sobjects/" + url.PathEscape(rec.ObjectName()))
}

func recordPath(s *Session, rec Record) string {
	return sobjectPath(s, rec) + "/" + url.PathEscape(rec.ID())
}

// Insert creates rec and resolves to the same record with the identifier
// assigned by Salesforce.
func Insert[R Record](ctx context.Context, c *Client, rec R) *task.Task[R] {
	return start(c, "insert",
		func(s *Session) (httpclient.RequestOptions, error) {
			payload, err := rec.ToWire()
			if err != nil {
				return httpclient.RequestOptions{}, newAPIError(err, "Salesforce insert error: %s", err.Error())
			}
			return newRequest(ctx, s, http.MethodPost, sobjectPath(s, rec), "", payload), nil
		},
		func(_ *Session, resp *httpclient.Response) (R, error) {
			var result PostResponse
			if err := json.Unmarshal(resp.Body, &result); err != nil {
				return rec, fmt.Errorf("failed to parse insert response: %w", err)
			}
			if result.ID == "" {
				return rec, fmt.Errorf("insert response has no id: %s", string(resp.Body))
			}
			rec.SetID(result.ID)
			c.logger.Info("Inserted Salesforce record",
				zap.String("object", rec.ObjectName()),
				zap.String("id", result.ID))
			return rec, nil
		})
}

// Update writes every field of rec except its identifier. Salesforce
// answers with an empty body on success.
func (c *Client) Update(ctx context.Context, rec Record) *task.Task[string] {
	return start(c, "update",
		func(s *Session) (httpclient.RequestOptions, error) {
			if rec.ID() == "" {
				return httpclient.RequestOptions{}, newAPIError(nil, "Salesforce update error: %s record has no Id", rec.ObjectName())
			}
			payload, err := updatePayload(rec)
			if err != nil {
				return httpclient.RequestOptions{}, newAPIError(err, "Salesforce update error: %s", err.Error())
			}
			return newRequest(ctx, s, http.MethodPatch, recordPath(s, rec), "", payload), nil
		},
		rawBody)
}

// Delete removes rec. Salesforce answers with an empty body on success.
func (c *Client) Delete(ctx context.Context, rec Record) *task.Task[string] {
	return start(c, "delete",
		func(s *Session) (httpclient.RequestOptions, error) {
			if rec.ID() == "" {
				return httpclient.RequestOptions{}, newAPIError(nil, "Salesforce delete error: %s record has no Id", rec.ObjectName())
			}
			return newRequest(ctx, s, http.MethodDelete, recordPath(s, rec), "", nil), nil
		},
		rawBody)
}
