package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const maxErrorBody = 64 << 10

type requestOptions struct {
	method string
	body   interface{}
	header http.Header
}

// RequestOption configures an authenticated request
type RequestOption func(*requestOptions)

// WithMethod sets HTTP method, GET by default
func WithMethod(method string) RequestOption {
	return func(o *requestOptions) {
		o.method = method
	}
}

// WithBody sets a value sent JSON encoded
func WithBody(body interface{}) RequestOption {
	return func(o *requestOptions) {
		o.body = body
	}
}

// WithHeader adds a request header; Authorization cannot be overridden.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.header.Add(key, value)
	}
}

// Request calls path on the API with the stored bearer token and decodes the
// JSON response into out (if not nil). A 401 triggers one session refresh and
// one replay; see the transport package.
func (c *Client) Request(ctx context.Context, path string, out interface{}, options ...RequestOption) (err error) {
	opts := &requestOptions{method: http.MethodGet, header: http.Header{}}
	for _, opt := range options {
		opt(opts)
	}
	ctx, span := c.tracer.Start(ctx, "dashnex.auth.request")
	span.SetAttributes(attribute.String("http.method", opts.method), attribute.String("dashnex.path", path))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var body io.Reader
	if opts.body != nil {
		data, err := json.Marshal(opts.body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, opts.method, c.config.endpoint(path), body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, values := range opts.header {
		req.Header.Del(key)
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.api.Do(req)
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrRefreshFailed) || errors.Is(err, ErrRequestFailed) {
			return unwrapURLError(err)
		}
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newStatusError(ErrRequestFailed, resp, data)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err = json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", ErrRequestFailed, err)
	}
	return nil
}

// unwrapURLError strips the *url.Error added by http.Client around errors
// produced by the transport itself.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}
