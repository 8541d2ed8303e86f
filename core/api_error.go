package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// APIError describes a failed provider call together with the request and
// response that produced it.
type APIError struct {
	ProviderID      string
	Operation       string
	Message         string
	ProviderCode    string
	ProviderSubcode string
	Status          int
	StatusText      string
	Method          string
	URL             string
	RequestHeaders  map[string]string
	RequestBody     []byte
	ResponseBody    []byte
	RetryAfter      time.Duration
	Category        goerrors.Category
	Metadata        map[string]any
	Cause           error
}

func (e *APIError) Error() string {
	if e == nil {
		return "messaging: <nil> api error"
	}
	provider := strings.TrimSpace(e.ProviderID)
	if provider == "" {
		provider = "messaging"
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		return fmt.Sprintf("%s: %s", provider, msg)
	}
	if e.Status == 0 && e.Cause != nil {
		return fmt.Sprintf("%s: request failed: %v", provider, e.Cause)
	}
	return fmt.Sprintf("%s: request failed with status code %d", provider, e.Status)
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Details renders the error in a multi-line inspection layout: message,
// request line and payload, response status and payload.
func (e *APIError) Details() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(e.Error())
	b.WriteString("\n\nError Message -\n  ")
	message := strings.TrimSpace(e.Message)
	if message == "" {
		message = e.Error()
	}
	b.WriteString(message)
	b.WriteString("\n")

	if method := strings.TrimSpace(e.Method); method != "" || strings.TrimSpace(e.URL) != "" {
		b.WriteString("\nRequest -\n  ")
		b.WriteString(strings.ToUpper(method))
		b.WriteString(" ")
		b.WriteString(RedactURL(e.URL))
		b.WriteString("\n")
		if len(bytes.TrimSpace(e.RequestBody)) > 0 {
			b.WriteString("\nRequest Data -\n  ")
			b.WriteString(indentPayload(e.RequestBody))
			b.WriteString("\n")
		}
	}

	if e.Status > 0 {
		statusText := strings.TrimSpace(e.StatusText)
		if statusText == "" {
			statusText = http.StatusText(e.Status)
		}
		b.WriteString("\nResponse -\n  ")
		b.WriteString(fmt.Sprintf("%d %s", e.Status, statusText))
		b.WriteString("\n")
		if len(bytes.TrimSpace(e.ResponseBody)) > 0 {
			b.WriteString("\nResponse Data -\n  ")
			b.WriteString(indentPayload(e.ResponseBody))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (e *APIError) ToServiceError() *goerrors.Error {
	if e == nil {
		return nil
	}
	category := e.Category
	if category == "" {
		category = CategoryForStatus(e.Status)
	}
	code := HTTPStatus(category)
	if e.Status >= http.StatusBadRequest {
		code = e.Status
	}

	metadata := map[string]any{
		"provider_id": strings.TrimSpace(e.ProviderID),
	}
	if e.Operation != "" {
		metadata["operation"] = e.Operation
	}
	if e.Status > 0 {
		metadata["status"] = e.Status
	}
	if e.Method != "" {
		metadata["method"] = strings.ToUpper(e.Method)
	}
	if e.URL != "" {
		metadata["url"] = RedactURL(e.URL)
	}
	if e.ProviderCode != "" {
		metadata["provider_code"] = e.ProviderCode
	}
	if e.ProviderSubcode != "" {
		metadata["provider_subcode"] = e.ProviderSubcode
	}
	if e.RetryAfter > 0 {
		metadata["retry_after_ms"] = e.RetryAfter.Milliseconds()
	}
	for key, value := range e.Metadata {
		if _, exists := metadata[key]; !exists {
			metadata[key] = value
		}
	}

	var err *goerrors.Error
	if e.Cause != nil {
		err = goerrors.Wrap(e.Cause, category, e.Error())
	} else {
		err = goerrors.New(e.Error(), category)
	}
	return err.
		WithCode(code).
		WithTextCode(TextCode(category)).
		WithMetadata(metadata)
}

// AsAPIError extracts an APIError from err or from its wrap chain.
func AsAPIError(err error) (*APIError, bool) {
	if err == nil {
		return nil, false
	}
	var apiErr *APIError
	if goerrors.As(err, &apiErr) && apiErr != nil {
		return apiErr, true
	}
	return nil, false
}

func indentPayload(payload []byte) string {
	trimmed := bytes.TrimSpace(payload)
	var out bytes.Buffer
	if json.Valid(trimmed) {
		if err := json.Indent(&out, trimmed, "  ", "  "); err == nil {
			return out.String()
		}
	}
	return strings.ReplaceAll(string(trimmed), "\n", "\n  ")
}
