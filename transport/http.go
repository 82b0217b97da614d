// Package transport issues request targets over net/http.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Borislavv/go-ash-netcache/model"
	"github.com/Borislavv/go-ash-netcache/request"
)

// StatusError is returned for responses whose status is not accepted.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.StatusCode)
}

type HTTP struct {
	client *http.Client
	accept func(statusCode int) bool
}

// NewHTTP accepts 2xx and 3xx responses. A nil client means http.DefaultClient.
func NewHTTP(client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{client: client, accept: func(code int) bool { return code >= 200 && code < 400 }}
}

// WithAcceptedStatus replaces the status filter.
func (t *HTTP) WithAcceptedStatus(accept func(statusCode int) bool) *HTTP {
	if accept != nil {
		t.accept = accept
	}
	return t
}

func (t *HTTP) Do(ctx context.Context, target request.Target) (*model.Response, error) {
	var body io.Reader
	if payload := target.Body(); len(payload) > 0 {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, target.Method(), target.URL(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, values := range target.Header() {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if !t.accept(resp.StatusCode) {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: data}
	}

	return &model.Response{
		StatusCode:   resp.StatusCode,
		Body:         data,
		Header:       resp.Header.Clone(),
		Request:      req,
		HTTPResponse: resp,
	}, nil
}
