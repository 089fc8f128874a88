package sfrest

// AuthResponse represents the OAuth token response
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	InstanceURL string `json:"instance_url"`
	ID          string `json:"id"`
	TokenType   string `json:"token_type"`
	IssuedAt    string `json:"issued_at"`
	Signature   string `json:"signature"`
}

// AuthErrorResponse is the body of a rejected token request.
type AuthErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// QueryResponse wraps the records returned by a SOQL query.
type QueryResponse[E any] struct {
	TotalSize      int    `json:"totalSize"`
	Done           bool   `json:"done"`
	NextRecordsURL string `json:"nextRecordsUrl,omitempty"`
	Records        []E    `json:"records"`
}

// PostResponse is the response from Salesforce for a post/create request
type PostResponse struct {
	ID      string        `json:"id"`
	Success bool          `json:"success"`
	Errors  []interface{} `json:"errors"`
}

// DebugInfo describes one finished HTTP exchange.
type DebugInfo struct {
	Method string
	URL    string
	Status int
	Body   []byte
	Err    error
}

// DebugHook observes exchanges. It must not block.
type DebugHook func(DebugInfo)
