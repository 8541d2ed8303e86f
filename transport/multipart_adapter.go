package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messaging/core"
)

const KindMultipart = "multipart"

// MultipartAdapter encodes TransportRequest.Form as multipart/form-data.
// Requests without a form fall through to the plain REST adapter.
type MultipartAdapter struct {
	rest *RESTAdapter
}

func NewMultipartAdapter(client HTTPDoer) *MultipartAdapter {
	return &MultipartAdapter{rest: NewRESTAdapter(client)}
}

func (*MultipartAdapter) Kind() string {
	return KindMultipart
}

func (a *MultipartAdapter) Do(ctx context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil || a.rest == nil {
		return core.TransportResponse{}, transportError(
			"transport: multipart adapter is nil",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			nil,
		)
	}
	resolved := req
	if strings.TrimSpace(resolved.Method) == "" {
		resolved.Method = http.MethodPost
	}
	headers := cloneHeaders(req.Headers)
	if req.Form != nil {
		body, contentType, err := EncodeMultipart(req.Form)
		if err != nil {
			return core.TransportResponse{}, transportWrapError(
				err,
				goerrors.CategoryBadInput,
				"transport: encode multipart form",
				http.StatusBadRequest,
				map[string]any{"adapter": KindMultipart},
			)
		}
		resolved.Body = body
		headers["Content-Type"] = contentType
	}
	resolved.Headers = headers

	response, err := a.rest.Do(ctx, resolved)
	if err != nil {
		return core.TransportResponse{}, err
	}
	response.Metadata = cloneMetadata(response.Metadata)
	response.Metadata["kind"] = KindMultipart
	return response, nil
}

// EncodeMultipart writes fields in sorted order followed by files in the
// order given.
func EncodeMultipart(form *core.MultipartForm) ([]byte, string, error) {
	if form == nil {
		return nil, "", fmt.Errorf("transport: multipart form is nil")
	}
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(form.Fields))
	for key := range form.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := writer.WriteField(key, form.Fields[key]); err != nil {
			return nil, "", err
		}
	}

	for _, file := range form.Files {
		field := strings.TrimSpace(file.Field)
		if field == "" {
			return nil, "", fmt.Errorf("transport: multipart file field is required")
		}
		if file.Reader == nil {
			return nil, "", fmt.Errorf("transport: multipart file %q has no content", field)
		}
		name := strings.TrimSpace(file.Name)
		if name == "" {
			name = field
		}
		contentType := strings.TrimSpace(file.ContentType)
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(field), escapeQuotes(name)))
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(value string) string {
	return quoteEscaper.Replace(value)
}

var _ core.TransportAdapter = (*MultipartAdapter)(nil)
