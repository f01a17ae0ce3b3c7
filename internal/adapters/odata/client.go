// Package odata is a minimal OData v2 JSON client for the HR platform API.
package odata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/okian/sfscore/pkg/logger"
	"github.com/okian/sfscore/pkg/metrics"
)

// Defaults for the client.
const (
	DefaultPreviewLimit = 500

	// CompanyHeader carries the optional tenant identifier.
	CompanyHeader = "X-Company-ID"

	// MethodMerge is sent through X-HTTP-Method on a POST.
	MethodMerge = "MERGE"
)

// Upstream outcome labels.
const (
	outcomeOK        = "ok"
	outcomeFormat    = "format_error"
	outcomeStatus    = "status_error"
	outcomeTransport = "transport_error"
	outcomeDecode    = "decode_error"
)

// Query holds the optional system query options of a call.
type Query struct {
	Filter string
	Select []string
	Top    int
}

// Request describes one upstream call.
type Request struct {
	Method string
	// Entity is the entity set name; Key, when set, addresses one entity.
	Entity string
	Key    string
	Query  Query
	// Body is JSON-encoded when non-nil.
	Body any
	// Merge sends the request as POST with X-HTTP-Method: MERGE.
	Merge bool
	// Locale, when set, is sent as Accept-Language.
	Locale  string
	Timeout time.Duration
}

// Client calls an OData v2 service. It is safe for concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	token        string
	companyID    string
	previewLimit int
	logger       logger.Logger
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("odata: invalid base URL %q", baseURL)
	}

	c := &Client{
		baseURL:      u.String(),
		httpClient:   &http.Client{},
		previewLimit: DefaultPreviewLimit,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	// StaticTokenSource with an empty token would still send "Bearer ".
	if c.token != "" {
		hc := *c.httpClient
		hc.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token, TokenType: "Bearer"}),
			Base:   c.httpClient.Transport,
		}
		c.httpClient = &hc
	}
	return c, nil
}

// Response is a parsed successful upstream response.
type Response struct {
	Status int
	// D is the payload under the top-level "d" key, nil when absent.
	D json.RawMessage
}

// Results returns the records of a collection response, accepting both
// {d:{results:[...]}} and {d:[...]}.
func (r *Response) Results() ([]map[string]any, error) {
	if r == nil || len(r.D) == 0 {
		return nil, nil
	}
	trimmed := bytes.TrimSpace(r.D)
	payload := trimmed
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		payload = wrapped.Results
	}
	if len(payload) == 0 || string(payload) == "null" {
		return nil, nil
	}

	var out []map[string]any
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return out, nil
}

// Entity returns the single-entity payload, or nil when there is none.
func (r *Response) Entity() json.RawMessage {
	if r == nil || len(r.D) == 0 {
		return nil
	}
	return r.D
}

// Do issues req and classifies the outcome. The error is a *FormatError, a
// *StatusError, or a wrapped transport or decode failure.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	label := method
	if req.Merge {
		method = http.MethodPost
		label = MethodMerge
	}

	httpReq, err := c.newRequest(ctx, method, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(ctx, req.Entity, label, outcomeTransport, 0, start)
		return nil, fmt.Errorf("odata: %s %s: %w", label, req.Entity, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(ctx, req.Entity, label, outcomeTransport, resp.StatusCode, start)
		return nil, fmt.Errorf("odata: read %s %s: %w", label, req.Entity, err)
	}

	out, err := c.classify(resp.StatusCode, resp.Header.Get("Content-Type"), raw)
	c.observe(ctx, req.Entity, label, outcomeOf(err), resp.StatusCode, start)
	return out, err
}

func (c *Client) newRequest(ctx context.Context, method string, req Request) (*http.Request, error) {
	path := req.Entity
	if req.Key != "" {
		path = KeyPath(req.Entity, req.Key)
	}

	q := url.Values{}
	q.Set("$format", "json")
	if req.Query.Filter != "" {
		q.Set("$filter", req.Query.Filter)
	}
	if len(req.Query.Select) > 0 {
		q.Set("$select", strings.Join(req.Query.Select, ","))
	}
	if req.Query.Top > 0 {
		q.Set("$top", strconv.Itoa(req.Query.Top))
	}
	target := c.baseURL + "/" + path + "?" + strings.ReplaceAll(q.Encode(), "+", "%20")

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("odata: encode body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("odata: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.companyID != "" {
		httpReq.Header.Set(CompanyHeader, c.companyID)
	}
	if req.Locale != "" {
		httpReq.Header.Set("Accept-Language", req.Locale)
	}
	if req.Merge {
		httpReq.Header.Set("X-HTTP-Method", MethodMerge)
		httpReq.Header.Set("If-Match", "*")
	}
	return httpReq, nil
}

func (c *Client) classify(status int, contentType string, raw []byte) (*Response, error) {
	ok := status >= 200 && status < 300
	if ok && len(bytes.TrimSpace(raw)) == 0 {
		return &Response{Status: status}, nil
	}
	if !isJSON(contentType) {
		return nil, &FormatError{Status: status, ContentType: contentType, Preview: preview(raw, c.previewLimit)}
	}
	if !ok {
		return nil, &StatusError{Status: status, Body: raw}
	}

	var env struct {
		D json.RawMessage `json:"d"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if string(env.D) == "null" {
		env.D = nil
	}
	return &Response{Status: status, D: env.D}, nil
}

func (c *Client) observe(ctx context.Context, entity, method, outcome string, status int, start time.Time) {
	elapsed := time.Since(start)
	metrics.RecordUpstreamRequest(entity, method, outcome)
	metrics.RecordUpstreamLatency(entity, method, float64(elapsed.Milliseconds()))
	c.logger.Debug(ctx, "upstream call",
		logger.String("method", method),
		logger.String("entity", entity),
		logger.Int("status", status),
		logger.String("outcome", outcome),
		logger.Duration("duration", elapsed),
	)
}

func outcomeOf(err error) string {
	var fe *FormatError
	var se *StatusError
	switch {
	case err == nil:
		return outcomeOK
	case errors.As(err, &fe):
		return outcomeFormat
	case errors.As(err, &se):
		return outcomeStatus
	default:
		return outcomeDecode
	}
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func preview(raw []byte, limit int) string {
	s := string(raw)
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
