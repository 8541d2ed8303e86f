package wechat

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-messaging/core"
)

const (
	MediaImage = "image"
	MediaVoice = "voice"
	MediaVideo = "video"
	MediaThumb = "thumb"
)

type UploadedMedia struct {
	Type      string `json:"type"`
	MediaID   string `json:"mediaId"`
	CreatedAt int64  `json:"createdAt"`
}

// UploadMedia stores a temporary media file for three days.
func (c *Client) UploadMedia(ctx context.Context, mediaType string, name string, reader io.Reader) (UploadedMedia, error) {
	switch mediaType {
	case MediaImage, MediaVoice, MediaVideo, MediaThumb:
	default:
		return UploadedMedia{}, core.BadInput("providers/wechat: unsupported media type "+mediaType, nil)
	}
	if reader == nil {
		return UploadedMedia{}, core.BadInput("providers/wechat: media content is required", nil)
	}
	var out UploadedMedia
	err := c.do(ctx, core.Request{
		Operation: "upload_media",
		Method:    http.MethodPost,
		Path:      "/media/upload",
		Query:     map[string]string{"type": mediaType},
		Form: &core.MultipartForm{Files: []core.MultipartFile{{
			Field:  "media",
			Name:   name,
			Reader: reader,
		}}},
	}, &out)
	return out, err
}

// GetMedia downloads a temporary media file. Video media comes back as a
// JSON document holding its download URL.
func (c *Client) GetMedia(ctx context.Context, mediaID string) ([]byte, string, error) {
	if strings.TrimSpace(mediaID) == "" {
		return nil, "", core.BadInput("providers/wechat: media id is required", nil)
	}
	res, err := c.api.Do(ctx, core.Request{
		Operation: "get_media",
		Method:    http.MethodGet,
		Path:      "/media/get",
		Query:     map[string]string{"media_id": mediaID},
	})
	if err != nil {
		return nil, "", err
	}
	return res.Body, res.Header("Content-Type"), nil
}
