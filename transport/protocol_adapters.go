package transport

import (
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messaging/core"
)

const (
	KindJSON   = "json"
	KindForm   = "form"
	KindBinary = "binary"
)

// ProtocolHTTPAdapter is a RESTAdapter with a default method and default
// headers for one payload flavour.
type ProtocolHTTPAdapter struct {
	kind          string
	defaultMethod string
	defaultHeader map[string]string
	rest          *RESTAdapter
}

func NewJSONAdapter(client HTTPDoer) *ProtocolHTTPAdapter {
	return newProtocolHTTPAdapter(KindJSON, client, http.MethodPost, map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	})
}

func NewFormAdapter(client HTTPDoer) *ProtocolHTTPAdapter {
	return newProtocolHTTPAdapter(KindForm, client, http.MethodPost, map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
		"Accept":       "application/json",
	})
}

// NewBinaryAdapter sends raw bytes; callers override Content-Type per request.
func NewBinaryAdapter(client HTTPDoer) *ProtocolHTTPAdapter {
	return newProtocolHTTPAdapter(KindBinary, client, http.MethodPost, map[string]string{
		"Content-Type": "application/octet-stream",
	})
}

func newProtocolHTTPAdapter(kind string, client HTTPDoer, defaultMethod string, defaultHeaders map[string]string) *ProtocolHTTPAdapter {
	return &ProtocolHTTPAdapter{
		kind:          strings.TrimSpace(strings.ToLower(kind)),
		defaultMethod: strings.TrimSpace(strings.ToUpper(defaultMethod)),
		defaultHeader: cloneHeaders(defaultHeaders),
		rest:          NewRESTAdapter(client),
	}
}

func (a *ProtocolHTTPAdapter) Kind() string {
	if a == nil {
		return ""
	}
	return a.kind
}

func (a *ProtocolHTTPAdapter) Do(ctx context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil || a.rest == nil {
		return core.TransportResponse{}, transportError(
			"transport: protocol adapter is nil",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			nil,
		)
	}
	resolved := req
	if strings.TrimSpace(resolved.Method) == "" {
		resolved.Method = a.defaultMethod
	}
	headers := cloneHeaders(a.defaultHeader)
	for key, value := range req.Headers {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			continue
		}
		headers[http.CanonicalHeaderKey(trimmed)] = strings.TrimSpace(value)
	}
	if len(resolved.Body) == 0 && isBodyless(resolved.Method) {
		delete(headers, "Content-Type")
	}
	resolved.Headers = headers
	response, err := a.rest.Do(ctx, resolved)
	if err != nil {
		return core.TransportResponse{}, err
	}
	response.Metadata = cloneMetadata(response.Metadata)
	response.Metadata["kind"] = a.kind
	response.Metadata["protocol_adapter"] = a.kind
	return response, nil
}

func isBodyless(method string) bool {
	switch strings.ToUpper(strings.TrimSpace(method)) {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		return true
	default:
		return false
	}
}

func cloneHeaders(input map[string]string) map[string]string {
	if len(input) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			continue
		}
		out[http.CanonicalHeaderKey(trimmed)] = strings.TrimSpace(value)
	}
	return out
}

func cloneMetadata(input map[string]any) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}

var _ core.TransportAdapter = (*ProtocolHTTPAdapter)(nil)
