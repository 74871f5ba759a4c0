// Package promproxy forwards capability calls to a Prometheus server's
// HTTP API and hands back the decoded response body unchanged.
package promproxy

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// backendUnavailableError reports that the Prometheus backend could not be
// reached or answered outside 2xx.
type backendUnavailableError struct{ msg string }

func (e backendUnavailableError) Error() string { return e.msg }

// ErrBackendUnavailable constructs a backendUnavailableError.
func ErrBackendUnavailable(msg string) error { return backendUnavailableError{msg: msg} }

// IsBackendUnavailable reports whether err indicates an unreachable backend.
func IsBackendUnavailable(err error) bool {
	_, ok := err.(backendUnavailableError)
	return ok
}

// Client proxies the Prometheus HTTP API under /api/v1.
type Client struct {
	http *resty.Client
}

// New builds a client for baseURL with a bounded per-call timeout. The
// timeout is the only retry/backoff policy this layer carries; a slow
// backend fails the one call, nothing more.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout),
	}
}

// get performs one API call and decodes the JSON response body.
func (c *Client) get(ctx context.Context, path string, params map[string]string, multi map[string][]string) (map[string]any, error) {
	var body map[string]any
	req := c.http.R().SetContext(ctx).SetResult(&body).SetError(&body)
	if params != nil {
		req.SetQueryParams(params)
	}
	for k, vs := range multi {
		for _, v := range vs {
			req.QueryParam.Add(k, v)
		}
	}
	resp, err := req.Get(path)
	if err != nil {
		return nil, ErrBackendUnavailable("prometheus unavailable: " + err.Error())
	}
	if resp.IsError() {
		return nil, ErrBackendUnavailable("prometheus error: " + resp.Status())
	}
	return body, nil
}

// Query runs an instant PromQL query; ts is an optional evaluation time.
func (c *Client) Query(ctx context.Context, query, ts string) (map[string]any, error) {
	params := map[string]string{"query": query}
	if ts != "" {
		params["time"] = ts
	}
	return c.get(ctx, "/api/v1/query", params, nil)
}

// QueryRange runs a ranged PromQL query.
func (c *Client) QueryRange(ctx context.Context, query, start, end, step string) (map[string]any, error) {
	return c.get(ctx, "/api/v1/query_range", map[string]string{
		"query": query, "start": start, "end": end, "step": step,
	}, nil)
}

// Series finds series matching the given selectors.
func (c *Client) Series(ctx context.Context, match []string, start, end string) (map[string]any, error) {
	params := map[string]string{}
	if start != "" {
		params["start"] = start
	}
	if end != "" {
		params["end"] = end
	}
	return c.get(ctx, "/api/v1/series", params, map[string][]string{"match[]": match})
}

// Labels returns all label names.
func (c *Client) Labels(ctx context.Context) (map[string]any, error) {
	return c.get(ctx, "/api/v1/labels", nil, nil)
}

// LabelValues returns the values recorded for one label.
func (c *Client) LabelValues(ctx context.Context, label string) (map[string]any, error) {
	return c.get(ctx, "/api/v1/label/"+label+"/values", nil, nil)
}

// Targets returns scrape target state.
func (c *Client) Targets(ctx context.Context) (map[string]any, error) {
	return c.get(ctx, "/api/v1/targets", nil, nil)
}

// Rules returns recording and alerting rules.
func (c *Client) Rules(ctx context.Context) (map[string]any, error) {
	return c.get(ctx, "/api/v1/rules", nil, nil)
}

// Alerts returns currently firing and pending alerts.
func (c *Client) Alerts(ctx context.Context) (map[string]any, error) {
	return c.get(ctx, "/api/v1/alerts", nil, nil)
}
