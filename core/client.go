package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messaging/casing"
)

const (
	KindREST      = "rest"
	KindJSON      = "json"
	KindForm      = "form"
	KindBinary    = "binary"
	KindMultipart = "multipart"
)

// ProviderFailure is what an ErrorDecoder extracts from a failed response.
type ProviderFailure struct {
	Message      string
	Code         string
	Subcode      string
	RetryAfter   time.Duration
	TokenExpired bool
	Category     goerrors.Category
	Details      map[string]any
}

// ErrorDecoder reports whether a response is a provider failure. Some
// providers answer 200 with an error payload, so it sees every response.
type ErrorDecoder func(status int, headers map[string]string, body []byte) (ProviderFailure, bool)

// DefaultErrorDecoder treats any status >= 400 as a failure.
func DefaultErrorDecoder(status int, _ map[string]string, _ []byte) (ProviderFailure, bool) {
	if status >= http.StatusBadRequest {
		return ProviderFailure{}, true
	}
	return ProviderFailure{}, false
}

type ClientConfig struct {
	ProviderID string
	Origin     string
	Headers    map[string]string
	Query      map[string]string
	// RequestCase rewrites outgoing JSON keys; ResponseCase rewrites
	// incoming keys before decoding.
	RequestCase  casing.Case
	ResponseCase casing.Case
	TokenSource  TokenSource
	TokenHeader  string
	TokenPrefix  string
	TokenQuery   string
	ErrorDecoder ErrorDecoder
	// Decorate runs after credentials are applied.
	Decorate func(ctx context.Context, req *TransportRequest) error
}

type Request struct {
	Operation    string
	Method       string
	Origin       string
	Path         string
	Kind         string
	Query        map[string]string
	Headers      map[string]string
	Body         any
	RawBody      []byte
	ContentType  string
	Values       url.Values
	Form         *MultipartForm
	PreserveKeys bool
	StopPaths    []string
	SkipAuth     bool
	Timeout      time.Duration
	BucketKey    string
}

type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte

	responseCase casing.Case
}

// Decode unmarshals the body into out after rewriting keys to the client's
// response case.
func (r *Response) Decode(out any) error {
	if r == nil || out == nil {
		return nil
	}
	body := bytes.TrimSpace(r.Body)
	if len(body) == 0 {
		return nil
	}
	if r.responseCase != casing.None {
		converted, err := casing.TransformJSON(body, r.responseCase)
		if err != nil {
			return WrapError(err, goerrors.CategoryExternal, "decode provider response", nil)
		}
		body = converted
	}
	if err := json.Unmarshal(body, out); err != nil {
		return WrapError(err, goerrors.CategoryExternal, "decode provider response", nil)
	}
	return nil
}

func (r *Response) Header(key string) string {
	if r == nil {
		return ""
	}
	for existing, value := range r.Headers {
		if strings.EqualFold(existing, key) {
			return value
		}
	}
	return ""
}

// Client is the shared HTTP core behind every provider client.
type Client struct {
	config     ClientConfig
	logger     Logger
	metrics    MetricsRecorder
	transports TransportResolver
	limiter    RateLimitPolicy
	onRequest  func(RequestInfo)
	timeout    time.Duration
	maxBody    int64
	now        func() time.Time
}

func NewClient(cfg ClientConfig, settings ClientSettings) (*Client, error) {
	cfg.ProviderID = strings.TrimSpace(cfg.ProviderID)
	if cfg.ProviderID == "" {
		return nil, BadInput("messaging: provider id is required", nil)
	}
	cfg.Origin = strings.TrimRight(strings.TrimSpace(cfg.Origin), "/")
	if cfg.Origin == "" {
		return nil, BadInput("messaging: origin is required", map[string]any{"provider_id": cfg.ProviderID})
	}
	if settings.Transports == nil {
		return nil, Internal("messaging: transport resolver is required", map[string]any{"provider_id": cfg.ProviderID})
	}
	if cfg.ErrorDecoder == nil {
		cfg.ErrorDecoder = DefaultErrorDecoder
	}
	if strings.TrimSpace(cfg.TokenHeader) == "" {
		cfg.TokenHeader = "Authorization"
		if cfg.TokenPrefix == "" {
			cfg.TokenPrefix = "Bearer "
		}
	}
	if settings.Logger == nil || settings.MetricsRecorder == nil || settings.Now == nil {
		settings = ResolveClientSettings(cfg.ProviderID, func(s *ClientSettings) { *s = settings })
	}
	return &Client{
		config:     cfg,
		logger:     settings.Logger,
		metrics:    settings.MetricsRecorder,
		transports: settings.Transports,
		limiter:    settings.RateLimitPolicy,
		onRequest:  settings.OnRequest,
		timeout:    settings.Timeout(),
		maxBody:    settings.HTTP.MaxResponseBodyBytes,
		now:        settings.Now,
	}, nil
}

func (c *Client) ProviderID() string {
	if c == nil {
		return ""
	}
	return c.config.ProviderID
}

func (c *Client) Origin() string {
	if c == nil {
		return ""
	}
	return c.config.Origin
}

func (c *Client) Logger() Logger {
	if c == nil {
		return nil
	}
	return c.logger
}

// Do sends req and returns the raw response. Failed provider responses come
// back as *APIError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c == nil {
		return nil, Internal("messaging: client is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := c.now()
	operation := resolveOperation(req)
	res, err := c.send(ctx, req, operation, true)
	c.observeOperation(ctx, startedAt, operation, err, map[string]any{
		"provider_id": c.config.ProviderID,
		"method":      resolveMethod(req),
		"path":        req.Path,
	})
	return res, err
}

// DoJSON sends req and decodes the response body into out.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	res, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return res.Decode(out)
}

func (c *Client) Get(ctx context.Context, path string, query map[string]string, out any) error {
	return c.DoJSON(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.DoJSON(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.DoJSON(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

func (c *Client) send(ctx context.Context, req Request, operation string, allowRetry bool) (*Response, error) {
	transportReq, err := c.buildTransportRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	kind := resolveKind(req)
	adapter, err := c.transports.Build(kind, nil)
	if err != nil {
		return nil, WrapError(err, goerrors.CategoryInternal, "messaging: resolve transport", map[string]any{
			"provider_id": c.config.ProviderID,
			"kind":        kind,
		})
	}

	key := RateLimitKey{ProviderID: c.config.ProviderID, BucketKey: firstNonEmpty(req.BucketKey, operation)}
	if c.limiter != nil {
		if err := c.limiter.BeforeCall(ctx, key); err != nil {
			return nil, err
		}
	}

	c.emitRequest(ctx, operation, transportReq)
	transportRes, err := adapter.Do(ctx, transportReq)
	if err != nil {
		return nil, &APIError{
			ProviderID:     c.config.ProviderID,
			Operation:      operation,
			Method:         transportReq.Method,
			URL:            RedactURL(transportReq.URL),
			RequestHeaders: RedactHeaders(transportReq.Headers),
			RequestBody:    RedactBody(transportReq.Body, headerValue(transportReq.Headers, "Content-Type")),
			Category:       goerrors.CategoryExternal,
			Cause:          err,
		}
	}

	failure, failed := c.config.ErrorDecoder(transportRes.StatusCode, transportRes.Headers, transportRes.Body)
	if !failed && transportRes.StatusCode >= http.StatusBadRequest {
		failed = true
	}
	c.afterCall(ctx, key, transportRes, failure, failed)

	if failed {
		if failure.TokenExpired && allowRetry && !req.SkipAuth && req.Form == nil && c.config.TokenSource != nil {
			if err := c.config.TokenSource.Invalidate(ctx); err == nil {
				c.logDebug(ctx, "access token rejected, retrying with a fresh token", map[string]any{
					"provider_id": c.config.ProviderID,
					"operation":   operation,
				})
				return c.send(ctx, req, operation, false)
			}
		}
		return nil, c.apiError(operation, transportReq, transportRes, failure)
	}

	return &Response{
		StatusCode:   transportRes.StatusCode,
		Headers:      transportRes.Headers,
		Body:         transportRes.Body,
		responseCase: c.config.ResponseCase,
	}, nil
}

func (c *Client) buildTransportRequest(ctx context.Context, req Request) (TransportRequest, error) {
	target, err := c.resolveURL(req)
	if err != nil {
		return TransportRequest{}, err
	}
	body, contentType, err := c.encodeBody(req)
	if err != nil {
		return TransportRequest{}, err
	}

	headers := make(map[string]string, len(c.config.Headers)+len(req.Headers)+1)
	for key, value := range c.config.Headers {
		headers[key] = value
	}
	for key, value := range req.Headers {
		headers[key] = value
	}
	if contentType != "" {
		headers["Content-Type"] = contentType
	}
	query := make(map[string]string, len(c.config.Query)+len(req.Query)+1)
	for key, value := range c.config.Query {
		query[key] = value
	}
	for key, value := range req.Query {
		query[key] = value
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	transportReq := TransportRequest{
		Method:               resolveMethod(req),
		URL:                  target,
		Headers:              headers,
		Query:                query,
		Body:                 body,
		Form:                 req.Form,
		Timeout:              timeout,
		MaxResponseBodyBytes: c.maxBody,
		Metadata: map[string]any{
			"provider_id": c.config.ProviderID,
			"operation":   resolveOperation(req),
		},
	}

	if !req.SkipAuth && c.config.TokenSource != nil {
		token, err := c.config.TokenSource.Token(ctx)
		if err != nil {
			return TransportRequest{}, WrapError(err, goerrors.CategoryAuth, "messaging: resolve access token", map[string]any{
				"provider_id": c.config.ProviderID,
			})
		}
		if c.config.TokenQuery != "" {
			transportReq.Query[c.config.TokenQuery] = token
		} else {
			transportReq.Headers[c.config.TokenHeader] = c.config.TokenPrefix + token
		}
	}
	if c.config.Decorate != nil {
		if err := c.config.Decorate(ctx, &transportReq); err != nil {
			return TransportRequest{}, err
		}
	}
	return transportReq, nil
}

func (c *Client) resolveURL(req Request) (string, error) {
	path := strings.TrimSpace(req.Path)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}
	origin := strings.TrimRight(strings.TrimSpace(req.Origin), "/")
	if origin == "" {
		origin = c.config.Origin
	}
	if path == "" {
		return origin, nil
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := origin + path
	if _, err := url.Parse(target); err != nil {
		return "", BadInput(fmt.Sprintf("messaging: invalid request url %q", RedactURL(target)), map[string]any{
			"provider_id": c.config.ProviderID,
		})
	}
	return target, nil
}

func (c *Client) encodeBody(req Request) ([]byte, string, error) {
	switch {
	case req.Form != nil:
		return nil, "", nil
	case req.RawBody != nil:
		return req.RawBody, strings.TrimSpace(req.ContentType), nil
	case req.Values != nil:
		return []byte(req.Values.Encode()), firstNonEmpty(req.ContentType, "application/x-www-form-urlencoded"), nil
	case req.Body == nil:
		return nil, strings.TrimSpace(req.ContentType), nil
	}
	encoded, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", BadInput("messaging: encode request body: "+err.Error(), map[string]any{
			"provider_id": c.config.ProviderID,
		})
	}
	if !req.PreserveKeys && c.config.RequestCase != casing.None {
		encoded, err = casing.TransformJSON(encoded, c.config.RequestCase, casing.WithStopPaths(req.StopPaths...))
		if err != nil {
			return nil, "", Internal("messaging: rewrite request keys: "+err.Error(), map[string]any{
				"provider_id": c.config.ProviderID,
			})
		}
	}
	return encoded, firstNonEmpty(req.ContentType, "application/json"), nil
}

func (c *Client) afterCall(ctx context.Context, key RateLimitKey, res TransportResponse, failure ProviderFailure, failed bool) {
	if c.limiter == nil {
		return
	}
	meta := ProviderResponseMeta{
		StatusCode: res.StatusCode,
		Headers:    res.Headers,
		Metadata:   map[string]any{"provider_id": c.config.ProviderID},
	}
	if failed && failure.Category == goerrors.CategoryRateLimit {
		meta.StatusCode = http.StatusTooManyRequests
	}
	if failed && failure.RetryAfter > 0 {
		retryAfter := failure.RetryAfter
		meta.RetryAfter = &retryAfter
	}
	if err := c.limiter.AfterCall(ctx, key, meta); err != nil {
		c.logDebug(ctx, "rate limit state update failed", map[string]any{
			"provider_id": c.config.ProviderID,
			"bucket_key":  key.BucketKey,
			"error":       err.Error(),
		})
	}
}

func (c *Client) apiError(operation string, req TransportRequest, res TransportResponse, failure ProviderFailure) *APIError {
	category := failure.Category
	if category == "" {
		category = CategoryForStatus(res.StatusCode)
		if res.StatusCode < http.StatusBadRequest {
			category = goerrors.CategoryOperation
		}
	}
	return &APIError{
		ProviderID:      c.config.ProviderID,
		Operation:       operation,
		Message:         failure.Message,
		ProviderCode:    failure.Code,
		ProviderSubcode: failure.Subcode,
		Status:          res.StatusCode,
		Method:          req.Method,
		URL:             RedactURL(req.URL),
		RequestHeaders:  RedactHeaders(req.Headers),
		RequestBody:     RedactBody(req.Body, headerValue(req.Headers, "Content-Type")),
		ResponseBody:    res.Body,
		RetryAfter:      failure.RetryAfter,
		Category:        category,
		Metadata:        failure.Details,
	}
}

func (c *Client) emitRequest(ctx context.Context, operation string, req TransportRequest) {
	fullURL := withQuery(req.URL, req.Query)
	if c.onRequest != nil {
		c.onRequest(RequestInfo{
			ProviderID: c.config.ProviderID,
			Operation:  operation,
			Method:     req.Method,
			URL:        fullURL,
			Headers:    cloneStringMap(req.Headers),
			Body:       req.Body,
		})
	}
	c.logDebug(ctx, "sending provider request", map[string]any{
		"provider_id": c.config.ProviderID,
		"operation":   operation,
		"method":      req.Method,
		"url":         RedactURL(fullURL),
		"headers":     RedactHeaders(req.Headers),
	})
}

func withQuery(raw string, query map[string]string) string {
	if len(query) == 0 {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	values := parsed.Query()
	for key, value := range query {
		values.Set(key, value)
	}
	parsed.RawQuery = values.Encode()
	return parsed.String()
}

func resolveMethod(req Request) string {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method != "" {
		return method
	}
	if req.Body != nil || req.RawBody != nil || req.Values != nil || req.Form != nil {
		return http.MethodPost
	}
	return http.MethodGet
}

func resolveKind(req Request) string {
	if kind := strings.TrimSpace(req.Kind); kind != "" {
		return strings.ToLower(kind)
	}
	switch {
	case req.Form != nil:
		return KindMultipart
	case req.RawBody != nil:
		return KindBinary
	case req.Values != nil:
		return KindForm
	default:
		return KindJSON
	}
}

func resolveOperation(req Request) string {
	if operation := normalizeOperation(req.Operation); operation != "" {
		return operation
	}
	path := strings.Trim(strings.TrimSpace(req.Path), "/")
	if path == "" {
		return "request"
	}
	return normalizeOperation(strings.ReplaceAll(path, "/", "."))
}

func cloneStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

type staticTokenSource struct {
	token string
}

// StaticToken wraps a long-lived access token. Invalidate is a no-op that
// reports failure so the client never retries with the same token.
func StaticToken(token string) TokenSource {
	return staticTokenSource{token: strings.TrimSpace(token)}
}

func (s staticTokenSource) Token(context.Context) (string, error) {
	if s.token == "" {
		return "", fmt.Errorf("messaging: access token is required")
	}
	return s.token, nil
}

func (staticTokenSource) Invalidate(context.Context) error {
	return fmt.Errorf("messaging: static access token cannot be refreshed")
}

func headerValue(headers map[string]string, key string) string {
	if value, ok := headers[key]; ok {
		return value
	}
	for candidate, value := range headers {
		if strings.EqualFold(candidate, key) {
			return value
		}
	}
	return ""
}
