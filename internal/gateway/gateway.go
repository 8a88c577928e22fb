package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxResponseBytes bounds how much of a backend response is read.
const maxResponseBytes = 10 << 20

// ErrMalformedResponse is wrapped by TransportError when the backend
// answers with something that is not JSON.
var ErrMalformedResponse = errors.New("malformed response")

type localeKey struct{}

// WithLocale returns a context whose backend calls are made in locale.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey{}, locale)
}

// LocaleFromContext returns the locale stored by WithLocale, or "".
func LocaleFromContext(ctx context.Context) string {
	locale, _ := ctx.Value(localeKey{}).(string)
	return locale
}

// Request describes a single backend call. An empty Locale falls back to
// the locale carried by the context.
type Request struct {
	Method string
	Token  string
	Locale string
	Query  url.Values
	Body   any
}

// Response is the normalised outcome of a backend call. Error is empty on
// success. Data holds the envelope's data field, or the whole body when the
// backend did not wrap it. Body is the raw response body.
type Response struct {
	Error  string
	Data   json.RawMessage
	Body   json.RawMessage
	Status int
}

// Failed reports whether the backend rejected the call.
func (r *Response) Failed() bool {
	return r.Error != ""
}

// Err returns the backend rejection as an APIError, or nil.
func (r *Response) Err() error {
	if !r.Failed() {
		return nil
	}
	return &model.APIError{Status: r.Status, Message: r.Error}
}

// envelope is the backend's response wrapper.
type envelope struct {
	Status   *bool           `json:"status"`
	ErrorNum *int            `json:"errorNum"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
}

// Client calls the external commerce backend. It attaches the bearer token,
// locale and base URL, and never retries.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates a backend client. A nil httpClient gets an instrumented
// client without a timeout.
func NewClient(baseURL string, httpClient *http.Client, logger zerolog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend base url %q must be absolute", baseURL)
	}

	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &Client{
		baseURL: u,
		http:    httpClient,
		logger:  logger.With().Str("component", "gateway").Logger(),
	}, nil
}

// Call performs one request against path and normalises the result.
// Backend rejections are reported through Response.Error; only network
// failures and non-JSON bodies return a *model.TransportError.
func (c *Client) Call(ctx context.Context, path string, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	op := method + " " + path
	if req.Locale == "" {
		req.Locale = LocaleFromContext(ctx)
	}

	httpReq, err := c.newRequest(ctx, method, path, req)
	if err != nil {
		return nil, &model.TransportError{Op: op, Err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("backend request failed")
		return nil, &model.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("failed to read backend response")
		return nil, &model.TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend call")

	out, err := normalise(resp.StatusCode, raw)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("malformed backend response")
		return nil, &model.TransportError{Op: op, Err: err}
	}

	if out.Failed() {
		c.logger.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", out.Status).
			Str("message", out.Error).
			Msg("backend rejected request")
	}

	return out, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, req Request) (*http.Request, error) {
	u := c.baseURL.JoinPath(path)

	q := u.Query()
	for key, values := range req.Query {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	if req.Locale != "" {
		q.Set("lang", req.Locale)
	}
	u.RawQuery = q.Encode()

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Locale != "" {
		httpReq.Header.Set("Accept-Language", req.Locale)
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	return httpReq, nil
}

// normalise maps a backend status and body to a Response.
func normalise(status int, raw []byte) (*Response, error) {
	ok := status >= 200 && status < 300
	trimmed := bytes.TrimSpace(raw)

	if len(trimmed) == 0 {
		if ok {
			return &Response{Status: status}, nil
		}
		return &Response{Error: model.GenericErrorMessage, Status: status}, nil
	}

	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: status %d", ErrMalformedResponse, status)
	}

	out := &Response{Status: status, Body: trimmed, Data: trimmed}

	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if env.Data != nil {
			out.Data = env.Data
		}
		if env.Status != nil && !*env.Status {
			ok = false
		}
		if !ok {
			out.Error = env.Message
		}
	}

	if !ok && out.Error == "" {
		out.Error = model.GenericErrorMessage
	}

	return out, nil
}

// Decode unmarshals the response data into T. Missing or null data yields nil.
func Decode[T any](resp *Response) (*T, error) {
	if resp == nil || len(resp.Data) == 0 || bytes.Equal(resp.Data, []byte("null")) {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(resp.Data, &v); err != nil {
		return nil, &model.TransportError{Op: "decode response", Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return &v, nil
}
