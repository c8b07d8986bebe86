package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/arabah/arabah-cli/internal/debug"
	"github.com/arabah/arabah-cli/internal/dryrun"
)

// Options configures New.
type Options struct {
	BaseURL      string
	Language     string
	SecretKey    string
	PublishKey   string
	Tokens       TokenProvider
	Invalidator  SessionInvalidator
	Reachability Reachability
	HTTP         *http.Client
	Logger       *slog.Logger
}

// Client runs calls through build -> execute -> classify.
//
// Each stage is an interface so tests can substitute any of them. The client
// never retries on its own; retries belong to the operation that owns the call.
type Client struct {
	Builder    RequestBuilder
	Executor   HTTPExecutor
	Classifier ResponseClassifier
	Tokens     TokenProvider
	Logger     *slog.Logger

	// PreviewOut receives dry-run previews. Defaults to stderr.
	PreviewOut io.Writer
}

// New wires the default builder, transport and classifier.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	transport := NewTransport(opts.Reachability, logger)
	if opts.HTTP != nil {
		transport.HTTP = opts.HTTP
	}

	return &Client{
		Builder: &Builder{
			BaseURL:    opts.BaseURL,
			Language:   opts.Language,
			SecretKey:  opts.SecretKey,
			PublishKey: opts.PublishKey,
			Tokens:     opts.Tokens,
			Encoder:    FormEncoder{},
			Logger:     logger,
		},
		Executor: transport,
		Classifier: &StatusClassifier{
			Invalidator: opts.Invalidator,
			Logger:      logger,
		},
		Tokens: opts.Tokens,
		Logger: logger,
	}
}

// Do performs one attempt of call and decodes a successful body into out.
// Every returned error is an *Error.
func (c *Client) Do(ctx context.Context, call Call, out any) error {
	req, err := c.Builder.Build(call)
	if err != nil {
		return AsError(err)
	}

	if dryrun.IsEnabled(ctx) {
		c.preview(req)
		return nil
	}
	if debug.IsEnabled(ctx) {
		c.logger().Debug("sending request", "method", req.Method, "url", req.URL, "body_bytes", len(req.Body))
	}

	resp, err := c.Executor.Execute(ctx, req)
	if err != nil {
		return AsError(err)
	}
	return c.Classifier.Classify(resp, out)
}

// Send performs call and decodes the response as T.
func Send[T any](ctx context.Context, c *Client, call Call) (T, error) {
	var v T
	err := c.Do(ctx, call, &v)
	return v, err
}

// sendBody performs call and unwraps the server envelope.
func sendBody[T any](ctx context.Context, c *Client, call Call) (T, error) {
	env, err := Send[Envelope[T]](ctx, c, call)
	return env.Body, err
}

func (c *Client) preview(req *BuiltRequest) {
	w := c.PreviewOut
	if w == nil {
		w = os.Stderr
	}
	details := map[string]interface{}{
		"body_bytes": len(req.Body),
	}
	for key, values := range req.RedactedHeader() {
		if len(values) > 0 {
			details["header "+key] = values[0]
		}
	}
	dryrun.ForRequest(req.Method, req.URL, details).Write(w)
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
