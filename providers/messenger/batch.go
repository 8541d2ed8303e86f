package messenger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messaging/casing"
	"github.com/goliatone/go-messaging/core"
)

const maxBatchSize = 50

// BatchRequest is one call inside a Graph batch. Body keys follow the same
// camelCase to snake_case rewrite as direct calls.
type BatchRequest struct {
	Method                string
	RelativeURL           string
	Body                  map[string]any
	Name                  string
	DependsOn             string
	OmitResponseOnSuccess *bool
}

// SendMessageBatchRequest builds a /me/messages batch item.
func SendMessageBatchRequest(recipient Recipient, msg Message, opts SendOptions) BatchRequest {
	body := map[string]any{}
	_ = mergeStruct(body, sendRequest{
		Recipient:     recipient,
		Message:       &msg,
		MessagingType: resolveMessagingType(opts),
		Tag:           strings.TrimSpace(opts.Tag),
		PersonaID:     strings.TrimSpace(opts.PersonaID),
	})
	return BatchRequest{Method: http.MethodPost, RelativeURL: "me/messages", Body: body}
}

type BatchHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// BatchResponse is the result of one batch item. Body is the raw JSON
// string the Graph API returned for that call.
type BatchResponse struct {
	Code    int           `json:"code"`
	Headers []BatchHeader `json:"headers"`
	Body    string        `json:"body"`
}

// Decode unmarshals Body into out after rewriting keys to camelCase.
func (r BatchResponse) Decode(out any) error {
	body := strings.TrimSpace(r.Body)
	if body == "" || out == nil {
		return nil
	}
	converted, err := casing.TransformJSON([]byte(body), casing.Camel)
	if err != nil {
		return core.WrapError(err, goerrors.CategoryExternal, "providers/messenger: decode batch body", nil)
	}
	if err := json.Unmarshal(converted, out); err != nil {
		return core.WrapError(err, goerrors.CategoryExternal, "providers/messenger: decode batch body", nil)
	}
	return nil
}

// Succeeded reports a 2xx item status.
func (r BatchResponse) Succeeded() bool {
	return r.Code >= 200 && r.Code < 300
}

// SendBatch posts up to 50 requests through the Graph batch endpoint.
// Omitted items come back as nil entries.
func (c *Client) SendBatch(ctx context.Context, requests []BatchRequest) ([]*BatchResponse, error) {
	if len(requests) == 0 || len(requests) > maxBatchSize {
		return nil, core.BadInput("providers/messenger: batch takes one to fifty requests", map[string]any{"count": len(requests)})
	}
	items := make([]map[string]any, 0, len(requests))
	for i, req := range requests {
		item, err := encodeBatchItem(req)
		if err != nil {
			return nil, core.WrapError(err, goerrors.CategoryBadInput, "providers/messenger: encode batch item", map[string]any{"index": i})
		}
		items = append(items, item)
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return nil, core.BadInput("providers/messenger: encode batch: "+err.Error(), nil)
	}
	var out []*BatchResponse
	err = c.do(ctx, core.Request{
		Operation: "send_batch",
		Method:    http.MethodPost,
		Values:    url.Values{"batch": {string(encoded)}, "include_headers": {"true"}},
	}, &out)
	return out, err
}

func encodeBatchItem(req BatchRequest) (map[string]any, error) {
	relative := strings.TrimLeft(strings.TrimSpace(req.RelativeURL), "/")
	if relative == "" {
		return nil, core.BadInput("providers/messenger: batch relative url is required", nil)
	}
	item := map[string]any{
		"method":       strings.ToUpper(firstNonEmpty(req.Method, http.MethodGet)),
		"relative_url": relative,
	}
	if req.Name != "" {
		item["name"] = req.Name
	}
	if req.DependsOn != "" {
		item["depends_on"] = req.DependsOn
	}
	if req.OmitResponseOnSuccess != nil {
		item["omit_response_on_success"] = *req.OmitResponseOnSuccess
	}
	if len(req.Body) > 0 {
		values := url.Values{}
		for key, value := range req.Body {
			field := casing.Key(key, casing.Snake)
			if text, ok := value.(string); ok {
				values.Set(field, text)
				continue
			}
			raw, err := json.Marshal(value)
			if err == nil {
				raw, err = casing.TransformJSON(raw, casing.Snake)
			}
			if err != nil {
				return nil, err
			}
			values.Set(field, string(raw))
		}
		item["body"] = values.Encode()
	}
	return item, nil
}
