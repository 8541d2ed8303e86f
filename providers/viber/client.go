package viber

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messaging/casing"
	"github.com/goliatone/go-messaging/core"
	"github.com/goliatone/go-messaging/providers/devkit"
)

type Config = core.ViberConfig

const (
	AuthTokenHeader = "X-Viber-Auth-Token"

	maxBroadcastReceivers = 300
	maxOnlineStatusIDs    = 100
)

// Keyboards and rich media use Viber's PascalCase schema and are sent
// without key rewriting.
var verbatimPaths = []string{"keyboard", "richMedia"}

type Client struct {
	api       *core.Client
	authToken string
	sender    Sender
	now       func() time.Time
}

func New(cfg Config, opts ...core.ClientOption) (*Client, error) {
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, core.BadInput("providers/viber: auth token is required", nil)
	}
	api, err := devkit.NewClient(core.ClientConfig{
		ProviderID:   core.ProviderViber,
		Origin:       strings.TrimRight(firstNonEmpty(cfg.Origin, core.DefaultViberOrigin), "/"),
		RequestCase:  casing.Snake,
		ResponseCase: casing.Camel,
		TokenSource:  core.StaticToken(token),
		TokenHeader:  AuthTokenHeader,
		ErrorDecoder: decodeError,
	}, opts...)
	if err != nil {
		return nil, err
	}
	settings := core.ResolveClientSettings(core.ProviderViber, opts...)
	return &Client{
		api:       api,
		authToken: token,
		sender: Sender{
			Name:   strings.TrimSpace(cfg.SenderName),
			Avatar: strings.TrimSpace(cfg.SenderAvatar),
		},
		now: settings.Now,
	}, nil
}

func (c *Client) ProviderID() string {
	return core.ProviderViber
}

func (c *Client) API() *core.Client {
	return c.api
}

// statusNames are the symbolic names of Viber API status codes.
var statusNames = map[int]string{
	1:  "invalidUrl",
	2:  "invalidAuthToken",
	3:  "badData",
	4:  "missingData",
	5:  "receiverNotRegistered",
	6:  "receiverNotSubscribed",
	7:  "publicAccountBlocked",
	8:  "publicAccountNotFound",
	9:  "publicAccountSuspended",
	10: "webhookNotSet",
	11: "receiverNoSuitableDevice",
	12: "tooManyRequests",
	13: "apiVersionNotSupported",
	14: "incompatibleWithVersion",
	15: "publicAccountNotAuthorized",
	16: "inchatReplyMessageNotAllowed",
	17: "publicAccountIsNotInline",
	18: "noPublicChat",
	19: "cannotSendBroadcast",
	20: "broadcastNotAllowed",
	21: "unsupportedCountry",
	22: "paymentUnsupported",
	23: "freeMessagesExceeded",
	24: "noBalance",
}

// StatusName returns the symbolic name of a Viber status code.
func StatusName(status int) string {
	if status == 0 {
		return "ok"
	}
	if name, ok := statusNames[status]; ok {
		return name
	}
	return "generalError"
}

func statusCategory(status int) goerrors.Category {
	switch status {
	case 1, 3, 4, 13, 14:
		return goerrors.CategoryBadInput
	case 2:
		return goerrors.CategoryAuth
	case 5, 6, 8, 10:
		return goerrors.CategoryNotFound
	case 7, 9, 15, 19, 20, 21:
		return goerrors.CategoryAuthz
	case 12:
		return goerrors.CategoryRateLimit
	default:
		return goerrors.CategoryOperation
	}
}

func decodeError(status int, _ map[string]string, body []byte) (core.ProviderFailure, bool) {
	var payload struct {
		Status        *int   `json:"status"`
		StatusMessage string `json:"status_message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Status == nil {
		return core.ProviderFailure{}, status >= http.StatusBadRequest
	}
	if *payload.Status == 0 && status < http.StatusBadRequest {
		return core.ProviderFailure{}, false
	}
	name := StatusName(*payload.Status)
	return core.ProviderFailure{
		Message:  firstNonEmpty(payload.StatusMessage, name),
		Code:     strconv.Itoa(*payload.Status),
		Subcode:  name,
		Category: statusCategory(*payload.Status),
		Details:  map[string]any{"status_name": name},
	}, true
}

func (c *Client) post(ctx context.Context, operation string, path string, body any, out any) error {
	return c.api.DoJSON(ctx, core.Request{
		Operation: operation,
		Method:    http.MethodPost,
		Path:      path,
		Body:      body,
		StopPaths: verbatimPaths,
	}, out)
}

func requireID(name string, value string) error {
	if strings.TrimSpace(value) == "" {
		return core.BadInput(fmt.Sprintf("providers/viber: %s is required", name), map[string]any{"field": name})
	}
	return nil
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
