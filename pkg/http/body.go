package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const formContentType = "application/x-www-form-urlencoded"

// encodeBody turns a request body into a reader. A nil body yields a nil
// reader.
func encodeBody(body interface{}, contentType string) (io.Reader, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(v), nil
	case string:
		return strings.NewReader(v), nil
	}

	if strings.HasPrefix(strings.ToLower(contentType), formContentType) {
		form, err := formValues(body)
		if err != nil {
			return nil, err
		}
		return strings.NewReader(form.Encode()), nil
	}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return bytes.NewReader(b), nil
}

func formValues(body interface{}) (url.Values, error) {
	switch v := body.(type) {
	case url.Values:
		return v, nil
	case map[string]string:
		form := url.Values{}
		for k, val := range v {
			form.Set(k, val)
		}
		return form, nil
	default:
		return nil, fmt.Errorf("unsupported form body type %T", body)
	}
}

// header looks key up case-insensitively.
func header(headers map[string]string, key string) string {
	for k, v := range headers {
		if http.CanonicalHeaderKey(k) == http.CanonicalHeaderKey(key) {
			return v
		}
	}
	return ""
}
