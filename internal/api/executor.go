package api

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"syscall"
	"time"
)

// RawResponse is what came back from the transport before classification.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// HTTPExecutor performs a single attempt of a built request.
// Retrying is the caller's decision, never the executor's.
type HTTPExecutor interface {
	Execute(ctx context.Context, req *BuiltRequest) (*RawResponse, error)
}

// Reachability reports whether the network is usable at all.
type Reachability interface {
	IsConnected(ctx context.Context) bool
}

// ReachabilityFunc adapts a function to Reachability.
type ReachabilityFunc func(ctx context.Context) bool

func (f ReachabilityFunc) IsConnected(ctx context.Context) bool { return f(ctx) }

// Transport is the default HTTPExecutor backed by net/http.
type Transport struct {
	HTTP         *http.Client
	Reachability Reachability
	Logger       *slog.Logger
}

var _ HTTPExecutor = (*Transport)(nil)

// NewTransport returns a Transport with TLS 1.2+ and no client-level timeout;
// each request carries its own deadline.
func NewTransport(reach Reachability, logger *slog.Logger) *Transport {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12

	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		HTTP:         &http.Client{Transport: transport},
		Reachability: reach,
		Logger:       logger,
	}
}

// Execute sends req once and reads the whole response body.
func (t *Transport) Execute(ctx context.Context, req *BuiltRequest) (*RawResponse, error) {
	if t.Reachability != nil && !t.Reachability.IsConnected(ctx) {
		return nil, NewError(KindNoInternetConnection, "device is offline")
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := req.HTTPRequest(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := t.client().Do(httpReq)
	if err != nil {
		t.logger().Debug("request failed", "method", req.Method, "url", req.URL, "error", err)
		return nil, transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(KindNoData, err.Error())
	}
	t.logger().Debug("request complete", "method", req.Method, "url", req.URL,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 100 || resp.StatusCode > 599 {
		return nil, NewError(KindInvalidResponse, resp.Status)
	}

	return &RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (t *Transport) client() *http.Client {
	if t.HTTP == nil {
		return http.DefaultClient
	}
	return t.HTTP
}

func (t *Transport) logger() *slog.Logger {
	if t.Logger == nil {
		return slog.Default()
	}
	return t.Logger
}

func transportError(err error) *Error {
	if errors.Is(err, syscall.ENETUNREACH) {
		return NewError(KindNoInternetConnection, err.Error())
	}
	return NetworkError(err.Error())
}
