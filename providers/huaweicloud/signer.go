package huaweicloud

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	// Algorithm is the signing scheme name carried in the Authorization header.
	Algorithm = "SDK-HMAC-SHA256"

	// DateFormat is the layout of the X-Sdk-Date header (basic ISO 8601, UTC).
	DateFormat = "20060102T150405Z"

	// HeaderDate is the request timestamp header covered by the signature.
	HeaderDate = "X-Sdk-Date"

	// HeaderAuthorization carries the computed signature.
	HeaderAuthorization = "Authorization"
)

// Credentials is an access key pair for the Huawei Cloud API.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// Request is the part of an HTTP request that the signature covers.
type Request struct {
	Method string
	// Path is the request path without query, e.g. "/v2/zones".
	Path  string
	Query url.Values
	// Headers are extra headers to sign on top of content-type, host and X-Sdk-Date.
	Headers map[string]string
	Body    []byte
}

// Signer computes SDK-HMAC-SHA256 Authorization headers.
type Signer struct {
	creds Credentials
	host  string
}

// NewSigner creates a signer for requests sent to host.
func NewSigner(creds Credentials, host string) *Signer {
	return &Signer{creds: creds, host: host}
}

// Sign returns the complete header set for req, Authorization included.
// The result is a pure function of req, the credentials, the host and t.
func (s *Signer) Sign(req *Request, t time.Time) (map[string]string, error) {
	if s.creds.AccessKey == "" {
		return nil, &SigningInputError{Field: "access_key", Reason: "must not be empty"}
	}
	if s.creds.SecretKey == "" {
		return nil, &SigningInputError{Field: "secret_key", Reason: "must not be empty"}
	}

	headers := s.baseHeaders(req, t)
	canonical, signedNames, err := canonicalRequest(req, headers)
	if err != nil {
		return nil, err
	}

	date := headers[HeaderDate]
	signature := hmacHex(s.creds.SecretKey, StringToSign(canonical, date))
	headers[HeaderAuthorization] = Algorithm + " Access=" + s.creds.AccessKey +
		", SignedHeaders=" + signedNames + ", Signature=" + signature

	return headers, nil
}

// CanonicalRequest returns the canonical request string that Sign would hash
// for req at time t.
func (s *Signer) CanonicalRequest(req *Request, t time.Time) (string, error) {
	canonical, _, err := canonicalRequest(req, s.baseHeaders(req, t))
	return canonical, err
}

func (s *Signer) baseHeaders(req *Request, t time.Time) map[string]string {
	headers := make(map[string]string, len(req.Headers)+4)
	for k, v := range req.Headers {
		switch strings.ToLower(k) {
		case "content-type", "host", "x-sdk-date", "authorization":
			// Owned by the signer.
			continue
		}
		headers[k] = v
	}
	headers["content-type"] = "application/json"
	headers[HeaderDate] = t.UTC().Format(DateFormat)
	headers["host"] = s.host
	return headers
}

// StringToSign builds the string covered by the HMAC.
func StringToSign(canonicalRequest, date string) string {
	return Algorithm + "\n" + date + "\n" + sha256Hex([]byte(canonicalRequest))
}

func canonicalRequest(req *Request, headers map[string]string) (string, string, error) {
	if req.Method == "" {
		return "", "", &SigningInputError{Field: "method", Reason: "must not be empty"}
	}
	if !strings.HasPrefix(req.Path, "/") {
		return "", "", &SigningInputError{Field: "path", Reason: "must start with /"}
	}

	block, names, err := CanonicalHeaders(headers)
	if err != nil {
		return "", "", err
	}
	signedNames := strings.Join(names, ";")

	return strings.Join([]string{
		strings.ToUpper(req.Method),
		SigningPath(req.Path),
		CanonicalQuery(req.Query),
		block,
		signedNames,
		sha256Hex(req.Body),
	}, "\n"), signedNames, nil
}

// SigningPath forces the trailing slash the provider expects in signatures.
// The path sent on the wire is left untouched.
func SigningPath(path string) string {
	if strings.HasSuffix(path, "/") {
		return path
	}
	return path + "/"
}

// CanonicalQuery encodes query sorted by key, then by value.
// The same string is used as the request's query on the wire.
func CanonicalQuery(query url.Values) string {
	if len(query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		values := append([]string(nil), query[k]...)
		sort.Strings(values)
		for _, v := range values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// CanonicalHeaders lower-cases and sorts header names and trims values.
// It returns the newline-terminated header block and the sorted names.
func CanonicalHeaders(headers map[string]string) (string, []string, error) {
	lowered := make(map[string]string, len(headers))
	for k, v := range headers {
		name := strings.ToLower(strings.TrimSpace(k))
		if name == "" {
			return "", nil, &SigningInputError{Field: "header", Reason: "empty header name"}
		}
		if name != strings.ToLower(k) || strings.ContainsAny(name, " \t:") {
			return "", nil, &SigningInputError{Field: "header " + k, Reason: "invalid header name"}
		}
		if strings.ContainsAny(v, "\r\n") {
			return "", nil, &SigningInputError{Field: "header " + k, Reason: "value contains a line break"}
		}
		if _, dup := lowered[name]; dup {
			return "", nil, &SigningInputError{Field: "header " + k, Reason: "duplicate header name"}
		}
		lowered[name] = strings.TrimSpace(v)
	}

	names := make([]string, 0, len(lowered))
	for name := range lowered {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(lowered[name])
		b.WriteByte('\n')
	}
	return b.String(), names, nil
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hmacHex(key, data string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
