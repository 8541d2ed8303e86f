package messenger

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messaging/casing"
	"github.com/goliatone/go-messaging/core"
)

var defaultUserFields = []string{"first_name", "last_name", "profile_pic"}

// GetUserProfile reads a user by PSID. Fields default to first_name,
// last_name and profile_pic.
func (c *Client) GetUserProfile(ctx context.Context, psid string, fields ...string) (User, error) {
	id, err := requireID("psid", psid)
	if err != nil {
		return User{}, err
	}
	if len(fields) == 0 {
		fields = defaultUserFields
	}
	var out User
	err = c.do(ctx, core.Request{
		Operation: "get_user_profile",
		Method:    http.MethodGet,
		Path:      "/" + id,
		Query:     map[string]string{"fields": normalizeFields(fields)},
	}, &out)
	return out, err
}

func (c *Client) GetProfile(ctx context.Context, userID string) (core.UserProfile, error) {
	user, err := c.GetUserProfile(ctx, userID)
	if err != nil {
		return core.UserProfile{}, err
	}
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	return core.UserProfile{
		ProviderID:  core.ProviderMessenger,
		UserID:      firstNonEmpty(user.ID, userID),
		DisplayName: firstNonEmpty(user.Name, name),
		PictureURL:  user.ProfilePic,
		Language:    user.Locale,
	}, nil
}

func (c *Client) GetPageInfo(ctx context.Context, fields ...string) (Page, error) {
	query := map[string]string{}
	if joined := normalizeFields(fields); joined != "" {
		query["fields"] = joined
	}
	var out Page
	err := c.do(ctx, core.Request{
		Operation: "get_page_info",
		Method:    http.MethodGet,
		Path:      "/me",
		Query:     query,
	}, &out)
	return out, err
}

// MessengerProfile holds the page's messenger_profile settings keyed in
// camelCase, e.g. "getStarted" or "persistentMenu".
type MessengerProfile map[string]any

type GreetingText struct {
	Locale string `json:"locale"`
	Text   string `json:"text"`
}

type MenuItem struct {
	Type               string     `json:"type"`
	Title              string     `json:"title"`
	URL                string     `json:"url,omitempty"`
	Payload            string     `json:"payload,omitempty"`
	WebviewHeightRatio string     `json:"webviewHeightRatio,omitempty"`
	CallToActions      []MenuItem `json:"callToActions,omitempty"`
}

type PersistentMenu struct {
	Locale                string     `json:"locale"`
	ComposerInputDisabled bool       `json:"composerInputDisabled"`
	CallToActions         []MenuItem `json:"callToActions,omitempty"`
}

type IceBreaker struct {
	Question string `json:"question"`
	Payload  string `json:"payload"`
}

func (c *Client) GetMessengerProfile(ctx context.Context, fields ...string) (MessengerProfile, error) {
	joined := normalizeFields(fields)
	if joined == "" {
		return nil, core.BadInput("providers/messenger: at least one profile field is required", nil)
	}
	var out struct {
		Data []MessengerProfile `json:"data"`
	}
	if err := c.do(ctx, core.Request{
		Operation: "get_messenger_profile",
		Method:    http.MethodGet,
		Path:      "/me/messenger_profile",
		Query:     map[string]string{"fields": joined},
	}, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return MessengerProfile{}, nil
	}
	return out.Data[0], nil
}

func (c *Client) SetMessengerProfile(ctx context.Context, profile MessengerProfile) error {
	if len(profile) == 0 {
		return core.BadInput("providers/messenger: messenger profile is empty", nil)
	}
	return c.do(ctx, core.Request{
		Operation: "set_messenger_profile",
		Method:    http.MethodPost,
		Path:      "/me/messenger_profile",
		Body:      map[string]any(profile),
	}, nil)
}

func (c *Client) DeleteMessengerProfile(ctx context.Context, fields ...string) error {
	joined := normalizeFields(fields)
	if joined == "" {
		return core.BadInput("providers/messenger: at least one profile field is required", nil)
	}
	return c.do(ctx, core.Request{
		Operation: "delete_messenger_profile",
		Method:    http.MethodDelete,
		Path:      "/me/messenger_profile",
		Body:      map[string]any{"fields": strings.Split(joined, ",")},
	}, nil)
}

func (c *Client) GetGetStarted(ctx context.Context) (string, error) {
	profile, err := c.GetMessengerProfile(ctx, "get_started")
	if err != nil {
		return "", err
	}
	if started, ok := profile["getStarted"].(map[string]any); ok {
		payload, _ := started["payload"].(string)
		return payload, nil
	}
	return "", nil
}

func (c *Client) SetGetStarted(ctx context.Context, payload string) error {
	return c.SetMessengerProfile(ctx, MessengerProfile{"getStarted": map[string]any{"payload": payload}})
}

func (c *Client) DeleteGetStarted(ctx context.Context) error {
	return c.DeleteMessengerProfile(ctx, "get_started")
}

func (c *Client) GetGreeting(ctx context.Context) ([]GreetingText, error) {
	var out []GreetingText
	err := c.profileField(ctx, "greeting", &out)
	return out, err
}

func (c *Client) SetGreeting(ctx context.Context, greetings ...GreetingText) error {
	return c.SetMessengerProfile(ctx, MessengerProfile{"greeting": greetings})
}

func (c *Client) DeleteGreeting(ctx context.Context) error {
	return c.DeleteMessengerProfile(ctx, "greeting")
}

func (c *Client) GetPersistentMenu(ctx context.Context) ([]PersistentMenu, error) {
	var out []PersistentMenu
	err := c.profileField(ctx, "persistent_menu", &out)
	return out, err
}

func (c *Client) SetPersistentMenu(ctx context.Context, menus ...PersistentMenu) error {
	return c.SetMessengerProfile(ctx, MessengerProfile{"persistentMenu": menus})
}

func (c *Client) DeletePersistentMenu(ctx context.Context) error {
	return c.DeleteMessengerProfile(ctx, "persistent_menu")
}

func (c *Client) GetIceBreakers(ctx context.Context) ([]IceBreaker, error) {
	var out []IceBreaker
	err := c.profileField(ctx, "ice_breakers", &out)
	return out, err
}

func (c *Client) SetIceBreakers(ctx context.Context, iceBreakers ...IceBreaker) error {
	return c.SetMessengerProfile(ctx, MessengerProfile{"iceBreakers": iceBreakers})
}

func (c *Client) GetWhitelistedDomains(ctx context.Context) ([]string, error) {
	var out []string
	err := c.profileField(ctx, "whitelisted_domains", &out)
	return out, err
}

func (c *Client) SetWhitelistedDomains(ctx context.Context, domains ...string) error {
	return c.SetMessengerProfile(ctx, MessengerProfile{"whitelistedDomains": domains})
}

// profileField reads a single messenger_profile field and decodes it into out.
func (c *Client) profileField(ctx context.Context, field string, out any) error {
	profile, err := c.GetMessengerProfile(ctx, field)
	if err != nil {
		return err
	}
	value, ok := profile[casing.Key(field, casing.Camel)]
	if !ok {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return core.WrapError(err, goerrors.CategoryExternal, "providers/messenger: decode profile field", map[string]any{"field": field})
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return core.WrapError(err, goerrors.CategoryExternal, "providers/messenger: decode profile field", map[string]any{"field": field})
	}
	return nil
}
