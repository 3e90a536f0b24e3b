package httputil

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

func mustClient(t *testing.T, cfg *ClientConfig) *http.Client {
	t.Helper()
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() unexpected error: %v", err)
	}
	return client
}

func TestNewClient_Defaults(t *testing.T) {
	client := mustClient(t, nil)

	if client.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, client.Timeout)
	}

	uaTransport, ok := client.Transport.(*userAgentTransport)
	if !ok {
		t.Fatal("expected transport to be *userAgentTransport")
	}

	if uaTransport.userAgent != DefaultUserAgent {
		t.Errorf("expected userAgent %q, got %q", DefaultUserAgent, uaTransport.userAgent)
	}

	if uaTransport.base != http.DefaultTransport {
		t.Error("expected base transport to be http.DefaultTransport without proxy or TLS options")
	}
}

func TestNewClient_Timeouts(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{name: "custom", timeout: 60 * time.Second, want: 60 * time.Second},
		{name: "zero uses default", timeout: 0, want: DefaultTimeout},
		{name: "negative uses default", timeout: -time.Second, want: DefaultTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := mustClient(t, &ClientConfig{Timeout: tt.timeout})
			if client.Timeout != tt.want {
				t.Errorf("Timeout = %v, want %v", client.Timeout, tt.want)
			}
		})
	}
}

func TestNewClient_TLSSkipVerify(t *testing.T) {
	client := mustClient(t, &ClientConfig{TLSSkipVerify: true})

	uaTransport := client.Transport.(*userAgentTransport)
	transport, ok := uaTransport.base.(*http.Transport)
	if !ok {
		t.Fatal("expected base transport to be *http.Transport")
	}

	if transport.TLSClientConfig == nil || !transport.TLSClientConfig.InsecureSkipVerify {
		t.Error("expected InsecureSkipVerify to be true")
	}
}

func TestNewClient_Proxy(t *testing.T) {
	client := mustClient(t, &ClientConfig{Proxy: "proxy.internal:3128"})

	uaTransport := client.Transport.(*userAgentTransport)
	transport, ok := uaTransport.base.(*http.Transport)
	if !ok {
		t.Fatal("expected base transport to be *http.Transport")
	}
	if transport.Proxy == nil {
		t.Fatal("expected proxy function to be set")
	}

	req, _ := http.NewRequest(http.MethodGet, "https://dns.myhuaweicloud.com/v2/zones", nil)
	proxyURL, err := transport.Proxy(req)
	if err != nil {
		t.Fatalf("Proxy() unexpected error: %v", err)
	}
	if proxyURL.String() != "http://proxy.internal:3128" {
		t.Errorf("proxy URL = %q, want %q", proxyURL.String(), "http://proxy.internal:3128")
	}
}

func TestNewClient_InvalidProxy(t *testing.T) {
	if _, err := NewClient(&ClientConfig{Proxy: "http://"}); err == nil {
		t.Error("expected error for proxy without host")
	}
}

func TestParseProxy(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "127.0.0.1:8080", want: "http://127.0.0.1:8080"},
		{input: "http://proxy:3128", want: "http://proxy:3128"},
		{input: "socks5://proxy:1080", want: "socks5://proxy:1080"},
		{input: " proxy:3128 ", want: "http://proxy:3128"},
		{input: "http://", wantErr: true},
		{input: "ftp://proxy:21", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProxy(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseProxy(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseProxy(%q) unexpected error: %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseProxy(%q) = %q, want %q", tt.input, got.String(), tt.want)
			}
		})
	}
}

func TestNewClient_UserAgentAppliedToRequests(t *testing.T) {
	var receivedUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUserAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := mustClient(t, &ClientConfig{UserAgent: "test-hwddns/1.2.3"})

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if receivedUserAgent != "test-hwddns/1.2.3" {
		t.Errorf("expected User-Agent %q, got %q", "test-hwddns/1.2.3", receivedUserAgent)
	}
}

func TestNewClient_WithLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	client := mustClient(t, &ClientConfig{Logger: logger})

	uaTransport := client.Transport.(*userAgentTransport)
	if uaTransport.logger != logger {
		t.Error("expected logger to be set on transport")
	}
}

func TestDefaultClient(t *testing.T) {
	client := DefaultClient()

	if client == nil {
		t.Fatal("DefaultClient returned nil")
	}
	if client.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, client.Timeout)
	}
}

func TestNewClient_ProxyTunnelsHTTPS(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantTarget string
	}{
		{
			name:       "default endpoint",
			url:        "https://dns.myhuaweicloud.com/v2/zones?limit=500",
			wantTarget: "dns.myhuaweicloud.com:443",
		},
		{
			name:       "regional endpoint",
			url:        "https://dns.ap-southeast-1.myhuaweicloud.com/v2/zones",
			wantTarget: "dns.ap-southeast-1.myhuaweicloud.com:443",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				mu      sync.Mutex
				methods []string
				targets []string
			)
			proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				methods = append(methods, r.Method)
				targets = append(targets, r.Host)
				mu.Unlock()
				// Refuse the tunnel; only the request line matters here.
				w.WriteHeader(http.StatusForbidden)
			}))
			defer proxy.Close()

			client := mustClient(t, &ClientConfig{Proxy: strings.TrimPrefix(proxy.URL, "http://"), Timeout: 5 * time.Second})

			req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, tt.url, nil)
			if err != nil {
				t.Fatalf("creating request: %v", err)
			}
			resp, err := client.Do(req)
			if err == nil {
				resp.Body.Close()
				t.Fatal("expected error from refused tunnel")
			}

			mu.Lock()
			defer mu.Unlock()
			if len(methods) != 1 {
				t.Fatalf("proxy saw %d requests, want 1", len(methods))
			}
			if methods[0] != http.MethodConnect {
				t.Errorf("proxy method = %q, want CONNECT", methods[0])
			}
			if targets[0] != tt.wantTarget {
				t.Errorf("CONNECT target = %q, want %q", targets[0], tt.wantTarget)
			}
		})
	}
}
