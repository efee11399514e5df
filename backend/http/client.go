// Package http implements the driver's Backend contract against a
// ClickHouse-compatible HTTP endpoint. Every Send is one POST: the
// statement travels in the request body, parameters and bookkeeping in the
// query string, and results come back as JSONCompact.
package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/TFMV/chdriver/driver"
	"github.com/TFMV/chdriver/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const summaryHeader = "X-Clickhouse-Summary"

// Options configures the HTTP backend
type Options struct {
	// Headers are added to every request
	Headers map[string]string

	// MaxConnsPerHost bounds the transport's connection reuse; this is
	// plumbing, not pooling - leasing stays with the framework
	MaxConnsPerHost int

	// Logger defaults to a nop logger
	Logger *zap.Logger
}

// SetDefaults sets default values for options
func (o *Options) SetDefaults() *Options {
	if o.MaxConnsPerHost == 0 {
		o.MaxConnsPerHost = 10
	}

	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	return o
}

// Client is a stateless HTTP backend. Safe for use by many connections at
// once: all per-connection data arrives in the Request.
type Client struct {
	opt    *Options
	client *http.Client
}

var _ driver.Backend = (*Client)(nil)

// NewClient creates a new HTTP backend
func NewClient(opt *Options) *Client {
	if opt == nil {
		opt = &Options{}
	}
	o := opt.SetDefaults()

	return &Client{
		opt: o,
		client: &http.Client{
			Transport: &http.Transport{MaxConnsPerHost: o.MaxConnsPerHost},
		},
	}
}

// Send executes one statement as a single blocking attempt bounded by
// req.Timeout. No retries; the driver's classifier decides recovery from
// the typed error kinds returned here.
func (c *Client) Send(ctx context.Context, query driver.Query, params driver.ExecutionParams, req driver.Request) (*driver.Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	queryID := uuid.NewString()

	httpReq, err := c.buildRequest(ctx, query, params, req, queryID)
	if err != nil {
		return nil, errors.Wrap(ErrRequestBuildFailed, err, "failed to build request")
	}

	c.opt.Logger.Debug("sending statement",
		zap.String("query_id", queryID),
		zap.String("base_url", req.BaseURL),
		zap.String("database", req.Database))

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(ErrUnreachable, err, "backend unreachable").
			AddContext("query_id", queryID)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errors.Wrap(ErrUnreachable, err, "failed to read response").
			AddContext("query_id", queryID)
	}

	switch {
	case httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden:
		return nil, errors.Newf(ErrAuthFailed, "authentication rejected: %s", strings.TrimSpace(string(body))).
			AddContext("query_id", queryID)
	case httpResp.StatusCode < 200 || httpResp.StatusCode >= 300:
		return nil, errors.Newf(ErrServerStatus, "server returned status %d: %s", httpResp.StatusCode, strings.TrimSpace(string(body))).
			AddContext("query_id", queryID)
	}

	if isEmptyBody(body) {
		resp := parseUpdated(httpResp.Header.Get(summaryHeader))
		c.opt.Logger.Debug("statement acknowledged",
			zap.String("query_id", queryID),
			zap.Int("written_rows", resp.Count))
		return resp, nil
	}

	resp, err := parseSelected(body)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedResponse, err, "failed to decode response").
			AddContext("query_id", queryID)
	}

	c.opt.Logger.Debug("result set received",
		zap.String("query_id", queryID),
		zap.Int("rows", len(resp.Rows)))
	return resp, nil
}

// buildRequest assembles the POST for one statement
func (c *Client) buildRequest(ctx context.Context, query driver.Query, params driver.ExecutionParams, req driver.Request, queryID string) (*http.Request, error) {
	u, err := url.Parse(req.BaseURL)
	if err != nil {
		return nil, err
	}

	values := u.Query()
	values.Set("database", req.Database)
	values.Set("query_id", queryID)
	for k, v := range params.QueryString {
		values.Set(k, v)
	}
	for k, v := range params.Body {
		values.Set("param_"+k, v)
	}
	u.RawQuery = values.Encode()

	statement := formatStatement(query.Statement)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(statement))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if req.Username != "" {
		httpReq.Header.Set("X-ClickHouse-User", req.Username)
		httpReq.Header.Set("X-ClickHouse-Key", req.Password)
	}
	for k, v := range c.opt.Headers {
		httpReq.Header.Set(k, v)
	}

	return httpReq, nil
}

// formatStatement appends the JSONCompact output format to reads so the
// response has a decodable shape. Writes and DDL go through untouched;
// their acknowledgment is an empty body.
func formatStatement(statement string) string {
	if !isReadStatement(statement) {
		return statement
	}

	if strings.Contains(strings.ToUpper(statement), " FORMAT ") {
		return statement
	}

	return statement + " FORMAT JSONCompact"
}

func isReadStatement(statement string) bool {
	s := strings.ToUpper(strings.TrimSpace(statement))
	for _, prefix := range []string{"SELECT", "SHOW", "DESCRIBE", "DESC", "EXISTS", "WITH"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
