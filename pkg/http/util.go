package http

import "strings"

// WithRawQuery attaches an already-encoded query string to rawURL.
func WithRawQuery(rawURL, rawQuery string) string {
	rawQuery = strings.TrimPrefix(rawQuery, "?")
	if rawQuery == "" {
		return rawURL
	}
	if strings.Contains(rawURL, "?") {
		return rawURL + "&" + rawQuery
	}
	return rawURL + "?" + rawQuery
}
