package request

import "net/http"

// Target describes one outgoing request.
type Target interface {
	Method() string
	// URL is the fully resolved address; an empty URL is never cached.
	URL() string
	Body() []byte
	Header() http.Header
	CachePolicy() CachePolicy
}

// Endpoint is a plain Target.
type Endpoint struct {
	Verb    string
	Address string
	Payload []byte
	Headers http.Header
	Policy  CachePolicy
}

func (e Endpoint) Method() string {
	if e.Verb == "" {
		return http.MethodGet
	}
	return e.Verb
}

func (e Endpoint) URL() string              { return e.Address }
func (e Endpoint) Body() []byte             { return e.Payload }
func (e Endpoint) Header() http.Header      { return e.Headers }
func (e Endpoint) CachePolicy() CachePolicy { return e.Policy }
