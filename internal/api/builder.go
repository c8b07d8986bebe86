package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RequestTimeout is applied to every request. It is not configurable per call.
const RequestTimeout = 300 * time.Second

// TokenProvider supplies and stores the current bearer credential.
// Defined here, at the consumer, so any session store can satisfy it.
type TokenProvider interface {
	Token() string
	SetToken(token string)
}

// Call is everything needed to build one request.
type Call struct {
	Endpoint   Endpoint
	Method     string
	Params     Params
	PathSuffix string
	Headers    map[string]string
}

// BuiltRequest is a fully formed, single-use request. A retry builds a new one.
type BuiltRequest struct {
	Method  string
	URL     string
	Header  http.Header
	Body    []byte
	Timeout time.Duration
}

// HTTPRequest converts the built request into an *http.Request bound to ctx.
func (r *BuiltRequest) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, NewError(KindRequestBuildFailed, err.Error())
	}
	req.Header = r.Header.Clone()
	return req, nil
}

// RedactedHeader returns a copy of the headers safe to print.
func (r *BuiltRequest) RedactedHeader() http.Header {
	h := r.Header.Clone()
	if h.Get("Authorization") != "" {
		h.Set("Authorization", "Bearer ***")
	}
	for _, key := range []string{"secret_key", "publish_key"} {
		if h.Get(key) != "" {
			h.Set(key, "***")
		}
	}
	return h
}

// RequestBuilder turns a Call into a BuiltRequest.
type RequestBuilder interface {
	Build(call Call) (*BuiltRequest, error)
}

// Builder is the default RequestBuilder.
type Builder struct {
	BaseURL    string
	Language   string
	SecretKey  string
	PublishKey string
	Tokens     TokenProvider
	Encoder    MultipartEncoder
	Logger     *slog.Logger
}

var _ RequestBuilder = (*Builder)(nil)

// LanguageCode reduces a locale to the short code the API understands.
func LanguageCode(locale string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(locale)), "ar") {
		return "ar"
	}
	return "en"
}

// Build composes URL, headers and body for call.
//
// GET parameters go to the query string; other methods send them as a JSON
// object, or as multipart/form-data when the endpoint is multipart. A body
// serialization failure is not fatal: the request goes out without a body.
func (b *Builder) Build(call Call) (*BuiltRequest, error) {
	method := strings.ToUpper(strings.TrimSpace(call.Method))
	if method == "" {
		method = http.MethodGet
	}

	base := call.Endpoint.BaseURL
	if base == "" {
		base = b.BaseURL
	}
	raw := joinPath(base, call.Endpoint.Path)
	if call.PathSuffix != "" {
		raw += "/" + url.PathEscape(call.PathSuffix)
	}
	if method == http.MethodGet && len(call.Params) > 0 {
		raw += "?" + call.Params.Query()
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, NewError(KindInvalidURL, raw)
	}

	header := make(http.Header)
	header.Set("Accept", "application/json")
	header.Set("language_type", LanguageCode(b.Language))
	if call.Endpoint.Multipart {
		header.Set("Content-Type", MultipartContentType(Boundary))
	} else {
		header.Set("Content-Type", "application/json")
	}
	if b.SecretKey != "" {
		header.Set("secret_key", b.SecretKey)
	}
	if b.PublishKey != "" {
		header.Set("publish_key", b.PublishKey)
	}
	if b.Tokens != nil {
		if token := b.Tokens.Token(); token != "" {
			header.Set("Authorization", "Bearer "+token)
		}
	}
	for key, value := range call.Headers {
		header.Set(key, value)
	}

	var body []byte
	if method != http.MethodGet && call.Params != nil {
		if call.Endpoint.Multipart {
			body, err = b.encoder().Encode(call.Params, Boundary)
		} else {
			body, err = json.Marshal(call.Params)
		}
		if err != nil {
			b.logger().Warn("request body serialization failed, sending without body",
				"path", call.Endpoint.Path, "multipart", call.Endpoint.Multipart, "error", err)
			body = nil
		}
	}

	return &BuiltRequest{
		Method:  method,
		URL:     raw,
		Header:  header,
		Body:    body,
		Timeout: RequestTimeout,
	}, nil
}

func (b *Builder) encoder() MultipartEncoder {
	if b.Encoder == nil {
		return FormEncoder{}
	}
	return b.Encoder
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}

func joinPath(base, path string) string {
	if strings.HasSuffix(base, "/") && strings.HasPrefix(path, "/") {
		return base + strings.TrimPrefix(path, "/")
	}
	if base != "" && path != "" && !strings.HasSuffix(base, "/") && !strings.HasPrefix(path, "/") {
		return base + "/" + path
	}
	return base + path
}
