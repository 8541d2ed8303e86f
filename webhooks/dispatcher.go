package webhooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-messaging/core"
)

const defaultMaxBodyBytes int64 = 1 << 20

type route struct {
	template ProviderWebhookTemplate
	handler  core.InboundHandler
}

// Dispatcher verifies inbound webhook requests and routes them to the handler
// registered for their provider.
type Dispatcher struct {
	Burst        BurstController
	Logger       core.Logger
	MaxBodyBytes int64

	mu     sync.RWMutex
	routes map[string]route
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		Logger:       glog.Nop(),
		MaxBodyBytes: defaultMaxBodyBytes,
		routes:       map[string]route{},
	}
}

func (d *Dispatcher) Register(providerID string, template ProviderWebhookTemplate, handler core.InboundHandler) error {
	if d == nil {
		return webhookInternal("webhooks: dispatcher is nil", nil)
	}
	providerID = normalizeProviderID(firstNonEmpty(providerID, template.ProviderID))
	if providerID == "" {
		return webhookBadInput("webhooks: provider id is required", nil)
	}
	if handler == nil {
		return webhookBadInput("webhooks: handler is nil", map[string]any{"provider_id": providerID})
	}
	if template.Verifier == nil {
		return webhookBadInput("webhooks: verifier is required", map[string]any{"provider_id": providerID})
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.routes == nil {
		d.routes = map[string]route{}
	}
	if _, exists := d.routes[providerID]; exists {
		return webhookError(
			fmt.Sprintf("webhooks: handler already registered for provider %q", providerID),
			goerrors.CategoryConflict,
			http.StatusConflict,
			core.ErrorConflict,
			map[string]any{"provider_id": providerID},
		)
	}
	template.ProviderID = providerID
	d.routes[providerID] = route{template: template, handler: handler}
	return nil
}

// Providers lists the registered provider ids in sorted order.
func (d *Dispatcher) Providers() []string {
	if d == nil {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.routes))
	for providerID := range d.routes {
		out = append(out, providerID)
	}
	sort.Strings(out)
	return out
}

func (d *Dispatcher) Dispatch(ctx context.Context, req core.InboundRequest) (core.InboundResult, error) {
	if d == nil {
		return core.InboundResult{}, webhookInternal("webhooks: dispatcher is nil", nil)
	}
	req.ProviderID = normalizeProviderID(req.ProviderID)
	if req.ProviderID == "" {
		return core.InboundResult{}, webhookBadInput("webhooks: provider id is required", nil)
	}
	r, ok := d.routeFor(req.ProviderID)
	if !ok {
		return core.InboundResult{StatusCode: http.StatusNotFound}, webhookError(
			fmt.Sprintf("webhooks: provider %q is not registered", req.ProviderID),
			goerrors.CategoryNotFound,
			http.StatusNotFound,
			core.ErrorNotFound,
			map[string]any{"provider_id": req.ProviderID},
		)
	}
	fields := map[string]any{"provider_id": req.ProviderID}

	if r.template.Handshake != nil {
		body, handled, err := r.template.Handshake(req)
		if handled {
			if err != nil {
				return core.InboundResult{
						StatusCode: http.StatusForbidden,
						Metadata:   map[string]any{"provider_id": req.ProviderID, "handshake": true, "rejected": true},
					}, webhookWrapError(
						err,
						goerrors.CategoryAuthz,
						"webhooks: subscription handshake rejected",
						http.StatusForbidden,
						core.ErrorForbidden,
						fields,
					)
			}
			return core.InboundResult{
				Accepted:   true,
				StatusCode: http.StatusOK,
				Body:       body,
				Metadata:   map[string]any{"provider_id": req.ProviderID, "handshake": true},
			}, nil
		}
	}

	if err := r.template.Verifier.Verify(ctx, req); err != nil {
		return core.InboundResult{
				Accepted:   false,
				StatusCode: http.StatusUnauthorized,
				Metadata: map[string]any{
					"provider_id": req.ProviderID,
					"rejected":    true,
				},
			}, webhookWrapError(
				err,
				goerrors.CategoryAuth,
				"webhooks: request verification failed",
				http.StatusUnauthorized,
				core.ErrorSignatureInvalid,
				fields,
			)
	}

	if r.template.Extractor != nil {
		deliveryID, err := r.template.Extractor(req)
		if err != nil {
			return core.InboundResult{StatusCode: http.StatusBadRequest}, webhookWrapError(
				err,
				goerrors.CategoryBadInput,
				"webhooks: resolve delivery id",
				http.StatusBadRequest,
				core.ErrorBadInput,
				fields,
			)
		}
		req.Metadata = ensureMetadata(req.Metadata)
		req.Metadata["delivery_id"] = deliveryID
		fields["delivery_id"] = deliveryID
	}

	if d.Burst != nil {
		decision, err := d.Burst.Allow(ctx, req)
		if err != nil {
			return core.InboundResult{}, webhookWrapError(
				err,
				goerrors.CategoryInternal,
				"webhooks: burst control failed",
				http.StatusInternalServerError,
				core.ErrorInternal,
				fields,
			)
		}
		if !decision.Allow {
			metadata := ensureMetadata(decision.Metadata)
			metadata["provider_id"] = req.ProviderID
			metadata["deduped"] = true
			core.LogWithLevel(ctx, d.Logger, "debug", "webhook delivery suppressed", fields)
			return core.InboundResult{Accepted: true, StatusCode: http.StatusOK, Metadata: metadata}, nil
		}
	}

	result, err := r.handler.Handle(ctx, req)
	if err != nil {
		return core.InboundResult{}, webhookWrapError(
			err,
			goerrors.CategoryOperation,
			"webhooks: handler execution failed",
			http.StatusBadGateway,
			core.ErrorProviderFailure,
			fields,
		)
	}
	if result.StatusCode == 0 {
		result.StatusCode = http.StatusOK
	}
	result.Metadata = ensureMetadata(result.Metadata)
	for key, value := range fields {
		result.Metadata[key] = value
	}
	return result, nil
}

// HTTPHandler serves webhooks for providerID: GET handshakes are answered
// inline, every other request is read and dispatched.
func (d *Dispatcher) HTTPHandler(providerID string) http.Handler {
	providerID = normalizeProviderID(providerID)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		limit := d.MaxBodyBytes
		if limit <= 0 {
			limit = defaultMaxBodyBytes
		}
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
		if err != nil {
			var tooLarge *http.MaxBytesError
			status := http.StatusBadRequest
			if errors.As(err, &tooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			http.Error(w, http.StatusText(status), status)
			return
		}
		req := core.InboundRequest{
			ProviderID: providerID,
			Method:     r.Method,
			Headers:    flattenValues(r.Header),
			Query:      flattenValues(r.URL.Query()),
			Body:       body,
			Metadata:   map[string]any{"path": r.URL.Path},
		}

		result, err := d.Dispatch(ctx, req)
		if err != nil {
			mapped := core.MapError(err)
			status := result.StatusCode
			if status == 0 {
				status = mapped.Code
			}
			core.LogWithLevel(ctx, d.Logger, "warn", "webhook rejected", map[string]any{
				"provider_id":     providerID,
				"status_code":     status,
				"error_text_code": mapped.TextCode,
				"error":           err.Error(),
			})
			http.Error(w, http.StatusText(status), status)
			return
		}
		if len(result.Body) > 0 {
			if w.Header().Get("Content-Type") == "" {
				w.Header().Set("Content-Type", http.DetectContentType(result.Body))
			}
		}
		w.WriteHeader(result.StatusCode)
		if len(result.Body) > 0 {
			_, _ = w.Write(result.Body)
		}
	})
}

func (d *Dispatcher) routeFor(providerID string) (route, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.routes[providerID]
	return r, ok
}

func flattenValues(values map[string][]string) map[string]string {
	if len(values) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(values))
	for key, list := range values {
		if len(list) == 0 {
			continue
		}
		out[key] = list[0]
	}
	return out
}

func normalizeProviderID(providerID string) string {
	return strings.TrimSpace(strings.ToLower(providerID))
}

func ensureMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return map[string]any{}
	}
	return metadata
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
