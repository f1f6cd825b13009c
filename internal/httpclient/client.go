// Package httpclient is the single outbound path to the practice backend.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spec-kit/medpractice-client/internal/observability"
	apperrors "github.com/spec-kit/medpractice-client/pkg/util"
)

const maxBodyBytes = 16 << 20

// TokenSource yields the bearer token to attach, "" for none.
type TokenSource interface {
	Token(ctx context.Context) string
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	RateLimitRPS float64
	RateBurst    int
	Tokens       TokenSource
	Logger       *zap.Logger
	Metrics      *observability.Metrics
	// HTTPClient overrides the transport; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client sends JSON, multipart and binary requests and classifies failures
// into apperrors.APIError kinds. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	limiter *rate.Limiter
	logger  *zap.Logger
	metrics *observability.Metrics
}

// New builds a Client.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if opts.RateLimitRPS > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    httpClient,
		tokens:  opts.Tokens,
		limiter: limiter,
		logger:  observability.OrNop(opts.Logger).Named("httpclient"),
		metrics: opts.Metrics,
	}
}

// Get decodes the JSON response of a GET into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post sends body as JSON.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Put sends body as JSON.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete issues a DELETE and discards any body.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Do performs a JSON request. A nil out discards the response body.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
		contentType = "application/json"
	}

	payload, status, err := c.send(ctx, method, path, query, reader, contentType)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &apperrors.APIError{
			Kind:       apperrors.KindUnknown,
			HTTPStatus: status,
			Err:        fmt.Errorf("decode %s %s response: %w", method, path, err),
		}
	}
	return nil
}

// Upload posts a single file as multipart/form-data under field.
func (c *Client) Upload(ctx context.Context, path, field, filename string, content io.Reader, out any) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("copy upload content: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("close multipart form: %w", err)
	}

	payload, status, err := c.send(ctx, http.MethodPost, path, nil, &buf, form.FormDataContentType())
	if err != nil {
		return err
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &apperrors.APIError{Kind: apperrors.KindUnknown, HTTPStatus: status, Err: fmt.Errorf("decode upload response: %w", err)}
	}
	return nil
}

// Download returns the raw response body of a GET.
func (c *Client) Download(ctx context.Context, path string, query url.Values) ([]byte, error) {
	payload, _, err := c.send(ctx, http.MethodGet, path, query, nil, "")
	return payload, err
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, int, error) {
	route := routeLabel(path)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, apperrors.NewNetworkError(fmt.Errorf("rate limiter: %w", err))
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordAPICall(method, route, 0, time.Since(start))
		c.logger.Debug("backend unreachable", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, 0, apperrors.NewNetworkError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	elapsed := time.Since(start)
	c.metrics.RecordAPICall(method, route, resp.StatusCode, elapsed)
	if err != nil {
		return nil, resp.StatusCode, apperrors.NewNetworkError(fmt.Errorf("read response: %w", err))
	}

	c.logger.Debug("backend call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, resp.StatusCode, classify(resp.StatusCode, payload)
	}
	return payload, resp.StatusCode, nil
}

// classify extracts the server message and per-field errors from an error body.
// Bodies that are not JSON simply yield no message.
func classify(status int, payload []byte) error {
	var (
		message string
		details map[string]string
	)
	if gjson.ValidBytes(payload) {
		message = gjson.GetBytes(payload, "message").String()
		if fields := gjson.GetBytes(payload, "errors"); fields.IsObject() {
			details = make(map[string]string)
			fields.ForEach(func(key, value gjson.Result) bool {
				details[key.String()] = value.String()
				return true
			})
		}
	}
	return apperrors.FromStatus(status, message, details)
}

// routeLabel collapses numeric path segments so metrics stay low-cardinality.
func routeLabel(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg != "" && strings.Trim(seg, "0123456789") == "" {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
