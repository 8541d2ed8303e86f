package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-messaging/core"
)

type staticAdapter struct {
	kind string
}

func (a staticAdapter) Kind() string { return a.kind }

func (a staticAdapter) Do(context.Context, core.TransportRequest) (core.TransportResponse, error) {
	return core.TransportResponse{StatusCode: 200}, nil
}

func TestRegistry_RegisterGetAndListDeterministic(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(staticAdapter{kind: "graphql"}); err != nil {
		t.Fatalf("register graphql adapter: %v", err)
	}
	if err := registry.Register(staticAdapter{kind: "rest"}); err != nil {
		t.Fatalf("register rest adapter: %v", err)
	}

	if _, ok := registry.Get("rest"); !ok {
		t.Fatalf("expected rest adapter to be registered")
	}

	listed := registry.List()
	if len(listed) != 2 {
		t.Fatalf("expected 2 adapters, got %d", len(listed))
	}
	if listed[0].Kind() != "graphql" || listed[1].Kind() != "rest" {
		t.Fatalf("expected deterministic sorted order, got %q and %q", listed[0].Kind(), listed[1].Kind())
	}

	if err := registry.Register(staticAdapter{kind: "rest"}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestRegistry_RegisterFactoryBuildsCustomAdapter(t *testing.T) {
	registry := NewRegistry()
	if err := registry.RegisterFactory("custom", func(config map[string]any) (core.TransportAdapter, error) {
		kind := strings.TrimSpace(fmt.Sprint(config["kind"]))
		if kind == "" {
			kind = "custom"
		}
		return staticAdapter{kind: kind}, nil
	}); err != nil {
		t.Fatalf("register adapter factory: %v", err)
	}

	adapter, err := registry.Build("custom", map[string]any{"kind": "bulk"})
	if err != nil {
		t.Fatalf("build adapter from factory: %v", err)
	}
	if adapter.Kind() != "bulk" {
		t.Fatalf("expected bulk adapter from factory, got %q", adapter.Kind())
	}
}

func TestRESTAdapter_DoSendsMethodHeadersAndQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST method, got %s", r.Method)
		}
		if got := r.URL.Query().Get("q"); got != "search" {
			t.Fatalf("expected query value, got %q", got)
		}
		if got := r.Header.Get("X-Test"); got != "value" {
			t.Fatalf("expected header value, got %q", got)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		if string(body) != "payload" {
			t.Fatalf("expected request body payload")
		}
		w.Header().Set("X-Server", "ok")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("done"))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	result, err := adapter.Do(context.Background(), core.TransportRequest{
		Method: "POST",
		URL:    server.URL,
		Query:  map[string]string{"q": "search"},
		Headers: map[string]string{
			"X-Test": "value",
		},
		Body:    []byte("payload"),
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("perform rest request: %v", err)
	}
	if result.StatusCode != http.StatusAccepted {
		t.Fatalf("expected accepted status, got %d", result.StatusCode)
	}
	if string(result.Body) != "done" {
		t.Fatalf("unexpected response body: %q", string(result.Body))
	}
	if result.Headers["X-Server"] != "ok" {
		t.Fatalf("expected response header")
	}
}

func TestNewRESTAdapter_DefaultClientTimeout(t *testing.T) {
	adapter := NewRESTAdapter(nil)
	httpClient, ok := adapter.Client.(*http.Client)
	if !ok {
		t.Fatalf("expected default http client implementation")
	}
	if httpClient.Timeout != defaultRESTClientTimeout {
		t.Fatalf("expected default timeout %s, got %s", defaultRESTClientTimeout, httpClient.Timeout)
	}
	if adapter.MaxResponseBodyBytes != defaultRESTResponseBodyLimit {
		t.Fatalf("expected default response body limit %d, got %d", defaultRESTResponseBodyLimit, adapter.MaxResponseBodyBytes)
	}
}

func TestRESTAdapter_DoFailsOnResponseBodyOverLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("12345"))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	adapter.MaxResponseBodyBytes = 4

	_, err := adapter.Do(context.Background(), core.TransportRequest{
		Method: "GET",
		URL:    server.URL,
	})
	if err == nil {
		t.Fatalf("expected response body limit error")
	}
	if !strings.Contains(err.Error(), "response body exceeds limit") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRESTAdapter_RequestBodyLimitOverridesAdapterLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("12345"))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	adapter.MaxResponseBodyBytes = 1024

	_, err := adapter.Do(context.Background(), core.TransportRequest{
		Method:               "GET",
		URL:                  server.URL,
		MaxResponseBodyBytes: 4,
	})
	if err == nil {
		t.Fatalf("expected response body limit error")
	}
	if !strings.Contains(err.Error(), "response body exceeds limit of 4 bytes") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewDefaultRegistry_RegistersProviderKinds(t *testing.T) {
	registry := NewDefaultRegistry(nil)
	for _, kind := range []string{KindREST, KindJSON, KindForm, KindBinary, KindMultipart} {
		adapter, err := registry.Build(kind, nil)
		if err != nil {
			t.Fatalf("build %s adapter: %v", kind, err)
		}
		if adapter.Kind() != kind {
			t.Fatalf("expected kind %q, got %q", kind, adapter.Kind())
		}
	}
	if _, err := registry.Build("graphql", nil); err == nil {
		t.Fatalf("expected unregistered kind error")
	}
}

func TestJSONAdapter_AppliesDefaultsAndDropsContentTypeOnGet(t *testing.T) {
	var seen []*http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Clone(context.Background()))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	adapter := NewJSONAdapter(server.Client())
	result, err := adapter.Do(context.Background(), core.TransportRequest{
		URL:  server.URL,
		Body: []byte(`{"to":"U1"}`),
	})
	if err != nil {
		t.Fatalf("perform json request: %v", err)
	}
	if result.Metadata["kind"] != KindJSON {
		t.Fatalf("expected json metadata kind, got %v", result.Metadata["kind"])
	}
	if _, err := adapter.Do(context.Background(), core.TransportRequest{Method: http.MethodGet, URL: server.URL}); err != nil {
		t.Fatalf("perform json get: %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("expected two requests, got %d", len(seen))
	}
	if seen[0].Method != http.MethodPost {
		t.Fatalf("expected default POST method, got %s", seen[0].Method)
	}
	if got := seen[0].Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected json content type, got %q", got)
	}
	if got := seen[1].Header.Get("Content-Type"); got != "" {
		t.Fatalf("expected no content type on bodyless get, got %q", got)
	}
	if got := seen[1].Header.Get("Accept"); got != "application/json" {
		t.Fatalf("expected json accept header, got %q", got)
	}
}

func TestProtocolAdapter_RequestHeadersOverrideDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "image/png" {
			t.Fatalf("expected overridden content type, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	adapter := NewBinaryAdapter(server.Client())
	if _, err := adapter.Do(context.Background(), core.TransportRequest{
		URL:     server.URL,
		Headers: map[string]string{"content-type": "image/png"},
		Body:    []byte{0x89, 0x50},
	}); err != nil {
		t.Fatalf("perform binary request: %v", err)
	}
}

func TestMultipartAdapter_EncodesFieldsAndFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary=") {
			t.Fatalf("expected multipart content type, got %q", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart form: %v", err)
		}
		if got := r.FormValue("chat_id"); got != "42" {
			t.Fatalf("expected chat_id field, got %q", got)
		}
		file, header, err := r.FormFile("photo")
		if err != nil {
			t.Fatalf("read photo part: %v", err)
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		if string(content) != "png-bytes" {
			t.Fatalf("unexpected file content %q", string(content))
		}
		if header.Filename != "cat.png" {
			t.Fatalf("unexpected file name %q", header.Filename)
		}
		if got := header.Header.Get("Content-Type"); got != "image/png" {
			t.Fatalf("unexpected part content type %q", got)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	adapter := NewMultipartAdapter(server.Client())
	result, err := adapter.Do(context.Background(), core.TransportRequest{
		URL: server.URL,
		Form: &core.MultipartForm{
			Fields: map[string]string{"chat_id": "42"},
			Files: []core.MultipartFile{{
				Field:       "photo",
				Name:        "cat.png",
				ContentType: "image/png",
				Reader:      strings.NewReader("png-bytes"),
			}},
		},
	})
	if err != nil {
		t.Fatalf("perform multipart request: %v", err)
	}
	if result.Metadata["kind"] != KindMultipart {
		t.Fatalf("expected multipart metadata kind")
	}
}

func TestEncodeMultipart_RejectsFileWithoutReader(t *testing.T) {
	_, _, err := EncodeMultipart(&core.MultipartForm{
		Files: []core.MultipartFile{{Field: "document"}},
	})
	if err == nil {
		t.Fatalf("expected missing reader error")
	}
}
