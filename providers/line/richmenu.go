package line

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-messaging/core"
)

type RichMenuSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type RichMenuBounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type RichMenuArea struct {
	Bounds RichMenuBounds `json:"bounds"`
	Action Action         `json:"action"`
}

type RichMenu struct {
	RichMenuID  string         `json:"richMenuId,omitempty"`
	Size        RichMenuSize   `json:"size"`
	Selected    bool           `json:"selected"`
	Name        string         `json:"name"`
	ChatBarText string         `json:"chatBarText"`
	Areas       []RichMenuArea `json:"areas"`
}

type richMenuID struct {
	RichMenuID string `json:"richMenuId"`
}

func (c *Client) GetRichMenuList(ctx context.Context) ([]RichMenu, error) {
	var out struct {
		RichMenus []RichMenu `json:"richmenus"`
	}
	_, err := c.do(ctx, core.Request{Operation: "get_rich_menu_list", Method: http.MethodGet, Path: "/v2/bot/richmenu/list"}, &out)
	return out.RichMenus, err
}

func (c *Client) GetRichMenu(ctx context.Context, richMenuID string) (RichMenu, error) {
	id, err := requireID("rich menu id", richMenuID)
	if err != nil {
		return RichMenu{}, err
	}
	var out RichMenu
	_, err = c.do(ctx, core.Request{Operation: "get_rich_menu", Method: http.MethodGet, Path: "/v2/bot/richmenu/" + id}, &out)
	return out, err
}

// CreateRichMenu registers menu and returns its id.
func (c *Client) CreateRichMenu(ctx context.Context, menu RichMenu) (string, error) {
	menu.RichMenuID = ""
	var out richMenuID
	_, err := c.do(ctx, core.Request{Operation: "create_rich_menu", Method: http.MethodPost, Path: "/v2/bot/richmenu", Body: menu}, &out)
	return out.RichMenuID, err
}

func (c *Client) DeleteRichMenu(ctx context.Context, richMenuID string) error {
	id, err := requireID("rich menu id", richMenuID)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, core.Request{Operation: "delete_rich_menu", Method: http.MethodDelete, Path: "/v2/bot/richmenu/" + id}, nil)
	return err
}

func (c *Client) GetLinkedRichMenu(ctx context.Context, userID string) (string, error) {
	id, err := requireID("user id", userID)
	if err != nil {
		return "", err
	}
	var out richMenuID
	_, err = c.do(ctx, core.Request{Operation: "get_linked_rich_menu", Method: http.MethodGet, Path: "/v2/bot/user/" + id + "/richmenu"}, &out)
	return out.RichMenuID, err
}

func (c *Client) LinkRichMenu(ctx context.Context, userID string, richMenuID string) error {
	user, err := requireID("user id", userID)
	if err != nil {
		return err
	}
	menu, err := requireID("rich menu id", richMenuID)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, core.Request{Operation: "link_rich_menu", Method: http.MethodPost, Path: "/v2/bot/user/" + user + "/richmenu/" + menu}, nil)
	return err
}

func (c *Client) UnlinkRichMenu(ctx context.Context, userID string) error {
	id, err := requireID("user id", userID)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, core.Request{Operation: "unlink_rich_menu", Method: http.MethodDelete, Path: "/v2/bot/user/" + id + "/richmenu"}, nil)
	return err
}

func (c *Client) GetDefaultRichMenu(ctx context.Context) (string, error) {
	var out richMenuID
	_, err := c.do(ctx, core.Request{Operation: "get_default_rich_menu", Method: http.MethodGet, Path: "/v2/bot/user/all/richmenu"}, &out)
	return out.RichMenuID, err
}

func (c *Client) SetDefaultRichMenu(ctx context.Context, richMenuID string) error {
	id, err := requireID("rich menu id", richMenuID)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, core.Request{Operation: "set_default_rich_menu", Method: http.MethodPost, Path: "/v2/bot/user/all/richmenu/" + id}, nil)
	return err
}

func (c *Client) DeleteDefaultRichMenu(ctx context.Context) error {
	_, err := c.do(ctx, core.Request{Operation: "delete_default_rich_menu", Method: http.MethodDelete, Path: "/v2/bot/user/all/richmenu"}, nil)
	return err
}

// UploadRichMenuImage uploads a jpeg or png through the binary adapter.
func (c *Client) UploadRichMenuImage(ctx context.Context, richMenuID string, image []byte, contentType string) error {
	id, err := requireID("rich menu id", richMenuID)
	if err != nil {
		return err
	}
	if len(image) == 0 {
		return core.BadInput("providers/line: rich menu image is required", nil)
	}
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = http.DetectContentType(image)
	}
	if contentType != "image/png" && contentType != "image/jpeg" {
		return core.BadInput("providers/line: rich menu image must be image/png or image/jpeg", map[string]any{"content_type": contentType})
	}
	_, err = c.do(ctx, core.Request{
		Operation:   "upload_rich_menu_image",
		Method:      http.MethodPost,
		Origin:      c.dataOrigin,
		Path:        "/v2/bot/richmenu/" + id + "/content",
		RawBody:     image,
		ContentType: contentType,
	}, nil)
	return err
}

func (c *Client) DownloadRichMenuImage(ctx context.Context, richMenuID string) ([]byte, error) {
	id, err := requireID("rich menu id", richMenuID)
	if err != nil {
		return nil, err
	}
	res, err := c.do(ctx, core.Request{
		Operation: "download_rich_menu_image",
		Method:    http.MethodGet,
		Origin:    c.dataOrigin,
		Path:      "/v2/bot/richmenu/" + id + "/content",
	}, nil)
	if err != nil {
		return nil, err
	}
	return res.Body, nil
}
