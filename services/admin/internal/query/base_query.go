package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"blog-admin/services/admin/internal/apperr"
)

// FetchArgs describes one request relative to the base URL.
type FetchArgs struct {
	URL    string
	Method string
	// Body is sent as JSON unless it is already []byte, json.RawMessage or
	// an io.Reader, in which case ContentType should be set.
	Body        any
	ContentType string
}

// BaseQuery performs a request and returns the raw response body.
// Failures are *apperr.FetchError.
type BaseQuery func(ctx context.Context, args FetchArgs) ([]byte, error)

type fetchConfig struct {
	client         *http.Client
	prepareHeaders []func(h http.Header)
}

type FetchOption func(*fetchConfig)

func WithHTTPClient(client *http.Client) FetchOption {
	return func(c *fetchConfig) {
		c.client = client
	}
}

func WithBearerToken(token string) FetchOption {
	return func(c *fetchConfig) {
		if token == "" {
			return
		}
		c.prepareHeaders = append(c.prepareHeaders, func(h http.Header) {
			h.Set("Authorization", "Bearer "+token)
		})
	}
}

func WithHeaders(fn func(h http.Header)) FetchOption {
	return func(c *fetchConfig) {
		c.prepareHeaders = append(c.prepareHeaders, fn)
	}
}

func FetchBaseQuery(baseURL string, opts ...FetchOption) (BaseQuery, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	cfg := &fetchConfig{client: http.DefaultClient}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(ctx context.Context, args FetchArgs) ([]byte, error) {
		ref, err := url.Parse(strings.TrimPrefix(args.URL, "/"))
		if err != nil {
			return nil, &apperr.FetchError{Cause: fmt.Errorf("invalid url %q: %w", args.URL, err)}
		}
		target := base.ResolveReference(ref)

		method := args.Method
		if method == "" {
			method = http.MethodGet
		}

		body, contentType, err := encodeBody(args)
		if err != nil {
			return nil, &apperr.FetchError{Cause: err}
		}

		req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
		if err != nil {
			return nil, &apperr.FetchError{Cause: err}
		}
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		for _, prepare := range cfg.prepareHeaders {
			prepare(req.Header)
		}

		resp, err := cfg.client.Do(req)
		if err != nil {
			return nil, &apperr.FetchError{Cause: err}
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &apperr.FetchError{Status: resp.StatusCode, Cause: fmt.Errorf("read response: %w", err)}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &apperr.FetchError{
				Status: resp.StatusCode,
				Data:   decodeErrorBody(data),
				Cause:  fmt.Errorf("%s %s: %s", method, target.Path, resp.Status),
			}
		}

		return data, nil
	}, nil
}

func encodeBody(args FetchArgs) (io.Reader, string, error) {
	switch body := args.Body.(type) {
	case nil:
		return nil, args.ContentType, nil
	case json.RawMessage:
		return bytes.NewReader(body), "application/json", nil
	case []byte:
		return bytes.NewReader(body), args.ContentType, nil
	case io.Reader:
		return body, args.ContentType, nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("encode body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func decodeErrorBody(data []byte) any {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	return v
}
