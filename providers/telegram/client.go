package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messaging/casing"
	"github.com/goliatone/go-messaging/core"
	"github.com/goliatone/go-messaging/providers/devkit"
)

type Config = core.TelegramConfig

// Options carries optional method parameters keyed in camelCase, e.g.
// Options{"parseMode": ParseModeHTML, "disableNotification": true}.
type Options map[string]any

type Client struct {
	api         *core.Client
	origin      string
	token       string
	secretToken string
	now         func() time.Time
}

func New(cfg Config, opts ...core.ClientOption) (*Client, error) {
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, core.BadInput("providers/telegram: bot token is required", nil)
	}
	origin := strings.TrimRight(firstNonEmpty(cfg.Origin, core.DefaultTelegramOrigin), "/")
	api, err := devkit.NewClient(core.ClientConfig{
		ProviderID:   core.ProviderTelegram,
		Origin:       origin + "/bot" + token,
		RequestCase:  casing.Snake,
		ResponseCase: casing.Camel,
		ErrorDecoder: decodeError,
	}, opts...)
	if err != nil {
		return nil, err
	}
	settings := core.ResolveClientSettings(core.ProviderTelegram, opts...)
	return &Client{
		api:         api,
		origin:      origin,
		token:       token,
		secretToken: strings.TrimSpace(cfg.SecretToken),
		now:         settings.Now,
	}, nil
}

func (c *Client) ProviderID() string {
	return core.ProviderTelegram
}

func (c *Client) API() *core.Client {
	return c.api
}

type errorEnvelope struct {
	OK          *bool  `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
	Parameters  struct {
		RetryAfter      int   `json:"retry_after"`
		MigrateToChatID int64 `json:"migrate_to_chat_id"`
	} `json:"parameters"`
}

func decodeError(status int, _ map[string]string, body []byte) (core.ProviderFailure, bool) {
	var payload errorEnvelope
	if err := json.Unmarshal(body, &payload); err != nil || payload.OK == nil {
		return core.ProviderFailure{}, status >= http.StatusBadRequest
	}
	if *payload.OK {
		return core.ProviderFailure{}, false
	}
	failure := core.ProviderFailure{
		Message: payload.Description,
		Details: map[string]any{},
	}
	if payload.ErrorCode != 0 {
		failure.Code = strconv.Itoa(payload.ErrorCode)
	}
	if payload.Parameters.RetryAfter > 0 {
		failure.RetryAfter = time.Duration(payload.Parameters.RetryAfter) * time.Second
		failure.Details["retry_after"] = payload.Parameters.RetryAfter
	}
	if payload.Parameters.MigrateToChatID != 0 {
		failure.Details["migrate_to_chat_id"] = payload.Parameters.MigrateToChatID
	}
	if payload.ErrorCode == http.StatusTooManyRequests || status == http.StatusTooManyRequests {
		failure.Category = goerrors.CategoryRateLimit
	}
	return failure, true
}

// call invokes method with params and decodes the result field into out.
// Params holding an uploaded InputFile are sent as multipart/form-data.
func (c *Client) call(ctx context.Context, method string, params map[string]any, out any) error {
	req := core.Request{
		Operation: method,
		Method:    http.MethodPost,
		Path:      "/" + method,
	}
	if hasUpload(params) {
		form, err := multipartParams(params)
		if err != nil {
			return err
		}
		req.Form = form
	} else if len(params) > 0 {
		req.Body = params
	}
	res, err := c.api.Do(ctx, req)
	if err != nil {
		return err
	}
	var envelope struct {
		OK     bool            `json:"ok"`
		Result json.RawMessage `json:"result"`
	}
	if err := res.Decode(&envelope); err != nil {
		return err
	}
	if out == nil || len(envelope.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return core.WrapError(err, goerrors.CategoryExternal, "providers/telegram: decode result", map[string]any{"method": method})
	}
	return nil
}

func hasUpload(params map[string]any) bool {
	for _, value := range params {
		switch typed := value.(type) {
		case InputFile:
			if typed.isUpload() {
				return true
			}
		case *InputFile:
			if typed != nil && typed.isUpload() {
				return true
			}
		case []uploadPart:
			if len(typed) > 0 {
				return true
			}
		}
	}
	return false
}

// uploadPart is an extra file part referenced from a JSON field through
// attach://<field>.
type uploadPart struct {
	field string
	file  InputFile
}

func multipartParams(params map[string]any) (*core.MultipartForm, error) {
	form := &core.MultipartForm{Fields: map[string]string{}}
	for key, value := range params {
		field := casing.Key(key, casing.Snake)
		switch typed := value.(type) {
		case nil:
			continue
		case InputFile:
			addFileField(form, field, typed)
		case *InputFile:
			if typed != nil {
				addFileField(form, field, *typed)
			}
		case []uploadPart:
			for _, part := range typed {
				form.Files = append(form.Files, core.MultipartFile{Field: part.field, Name: part.file.Name, Reader: part.file.Reader})
			}
		case string:
			form.Fields[field] = typed
		case bool, int, int64, float64:
			form.Fields[field] = fmt.Sprint(typed)
		default:
			raw, err := json.Marshal(typed)
			if err == nil {
				raw, err = casing.TransformJSON(raw, casing.Snake)
			}
			if err != nil {
				return nil, core.BadInput("providers/telegram: encode "+field+": "+err.Error(), nil)
			}
			form.Fields[field] = string(raw)
		}
	}
	return form, nil
}

func addFileField(form *core.MultipartForm, field string, file InputFile) {
	if file.isUpload() {
		form.Files = append(form.Files, core.MultipartFile{Field: field, Name: file.Name, Reader: file.Reader})
		return
	}
	form.Fields[field] = file.reference()
}

// params merges required values over opts. Required values win.
func params(opts Options, required map[string]any) map[string]any {
	out := make(map[string]any, len(opts)+len(required))
	for key, value := range opts {
		out[key] = value
	}
	for key, value := range required {
		out[key] = value
	}
	return out
}

func requireChat(chatID string) error {
	if strings.TrimSpace(chatID) == "" {
		return core.BadInput("providers/telegram: chat id is required", map[string]any{"field": "chat_id"})
	}
	return nil
}

// InputFile is a file id, a URL, or an upload. Exactly one of FileID, URL
// or Reader should be set.
type InputFile struct {
	FileID string
	URL    string
	Name   string
	Reader io.Reader

	attach string
}

func FileID(id string) InputFile {
	return InputFile{FileID: id}
}

func FileURL(url string) InputFile {
	return InputFile{URL: url}
}

func FileUpload(name string, reader io.Reader) InputFile {
	return InputFile{Name: name, Reader: reader}
}

func (f InputFile) isUpload() bool {
	return f.Reader != nil
}

func (f InputFile) reference() string {
	if f.attach != "" {
		return "attach://" + f.attach
	}
	return firstNonEmpty(f.FileID, f.URL)
}

func (f InputFile) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.reference())
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

var (
	_ core.TextSender    = (*Client)(nil)
	_ core.ProfileReader = (*Client)(nil)
)
