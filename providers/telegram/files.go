package telegram

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messaging/core"
)

func (c *Client) GetUserProfilePhotos(ctx context.Context, userID int64, opts Options) (UserProfilePhotos, error) {
	var out UserProfilePhotos
	err := c.call(ctx, "getUserProfilePhotos", params(opts, map[string]any{"userId": userID}), &out)
	return out, err
}

func (c *Client) GetFile(ctx context.Context, fileID string) (File, error) {
	if strings.TrimSpace(fileID) == "" {
		return File{}, core.BadInput("providers/telegram: file id is required", nil)
	}
	var out File
	err := c.call(ctx, "getFile", map[string]any{"fileId": fileID}, &out)
	return out, err
}

// GetFileLink resolves fileID to a download URL. The URL embeds the bot
// token and stays valid for at least an hour.
func (c *Client) GetFileLink(ctx context.Context, fileID string) (string, error) {
	file, err := c.GetFile(ctx, fileID)
	if err != nil {
		return "", err
	}
	if file.FilePath == "" {
		return "", core.WrapError(nil, goerrors.CategoryOperation, "providers/telegram: file has no download path", map[string]any{"file_id": fileID})
	}
	return c.origin + "/file/bot" + c.token + "/" + strings.TrimLeft(file.FilePath, "/"), nil
}
