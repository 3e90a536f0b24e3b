package huaweicloud

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// Transport performs one HTTP exchange and returns the status code and body.
// A non-2xx status is not an error at this level.
type Transport interface {
	Send(ctx context.Context, method, url string, body []byte, headers map[string]string) (int, []byte, error)
}

// HTTPTransport sends requests with an *http.Client.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport wraps client. Proxy tunnelling, timeouts and TLS are the
// client's concern (see pkg/httputil).
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	return &HTTPTransport{client: client}
}

// Send implements Transport.
func (t *HTTPTransport) Send(ctx context.Context, method, url string, body []byte, headers map[string]string) (int, []byte, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, &TransportError{Method: method, URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}

	for k, v := range headers {
		switch http.CanonicalHeaderKey(k) {
		case "Host":
			req.Host = v
		default:
			req.Header.Set(k, v)
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &TransportError{Method: method, URL: url, Err: fmt.Errorf("reading response body: %w", err)}
	}

	return resp.StatusCode, respBody, nil
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, method, url string, body []byte, headers map[string]string) (int, []byte, error)

// Send implements Transport.
func (f TransportFunc) Send(ctx context.Context, method, url string, body []byte, headers map[string]string) (int, []byte, error) {
	return f(ctx, method, url, body, headers)
}
