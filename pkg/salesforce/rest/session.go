package sfrest

// Session is the result of a successful login. It is immutable and safe to
// share between concurrent operations.
type Session struct {
	token       string
	instanceURL string
	apiVersion  string
}

func newSession(token, instanceURL, apiVersion string) *Session {
	return &Session{token: token, instanceURL: instanceURL, apiVersion: apiVersion}
}

func (s *Session) Token() string       { return s.token }
func (s *Session) InstanceURL() string { return s.instanceURL }
func (s *Session) APIVersion() string  { return s.apiVersion }

// dataPath prefixes path with the versioned REST data root.
func (s *Session) dataPath(path string) string {
	return "/services/data/" + s.apiVersion + path
}

// State is the authentication state of a Client.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}
