package http

// Exchange is a single in-flight request started by Client.Go.
type Exchange struct {
	method string
	url    string
	done   chan struct{}
	resp   *Response
	err    error
}

// Done is closed once the response (or transport error) is available.
func (e *Exchange) Done() <-chan struct{} {
	return e.done
}

// Result blocks until the exchange completes.
func (e *Exchange) Result() (*Response, error) {
	<-e.done
	return e.resp, e.err
}

func (e *Exchange) Method() string { return e.method }

func (e *Exchange) URL() string { return e.url }
