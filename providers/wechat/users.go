package wechat

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-messaging/core"
)

type UserInfo struct {
	Subscribe      int    `json:"subscribe"`
	OpenID         string `json:"openid"`
	Nickname       string `json:"nickname,omitempty"`
	Sex            int    `json:"sex,omitempty"`
	Language       string `json:"language,omitempty"`
	City           string `json:"city,omitempty"`
	Province       string `json:"province,omitempty"`
	Country        string `json:"country,omitempty"`
	HeadImgURL     string `json:"headimgurl,omitempty"`
	SubscribeTime  int64  `json:"subscribeTime,omitempty"`
	UnionID        string `json:"unionid,omitempty"`
	Remark         string `json:"remark,omitempty"`
	GroupID        int    `json:"groupid,omitempty"`
	TagIDList      []int  `json:"tagidList,omitempty"`
	SubscribeScene string `json:"subscribeScene,omitempty"`
}

// GetUserInfo reads a follower. lang defaults to zh_CN.
func (c *Client) GetUserInfo(ctx context.Context, openID string, lang string) (UserInfo, error) {
	if strings.TrimSpace(openID) == "" {
		return UserInfo{}, core.BadInput("providers/wechat: open id is required", map[string]any{"field": "openid"})
	}
	var out UserInfo
	err := c.do(ctx, core.Request{
		Operation: "get_user_info",
		Method:    http.MethodGet,
		Path:      "/user/info",
		Query: map[string]string{
			"openid": openID,
			"lang":   firstNonEmpty(lang, "zh_CN"),
		},
	}, &out)
	return out, err
}

type Followers struct {
	Total int `json:"total"`
	Count int `json:"count"`
	Data  struct {
		OpenID []string `json:"openid"`
	} `json:"data"`
	NextOpenID string `json:"nextOpenid"`
}

// GetFollowers lists up to 10000 open ids starting after nextOpenID.
func (c *Client) GetFollowers(ctx context.Context, nextOpenID string) (Followers, error) {
	query := map[string]string{}
	if next := strings.TrimSpace(nextOpenID); next != "" {
		query["next_openid"] = next
	}
	var out Followers
	err := c.do(ctx, core.Request{
		Operation: "get_followers",
		Method:    http.MethodGet,
		Path:      "/user/get",
		Query:     query,
	}, &out)
	return out, err
}

func (c *Client) GetProfile(ctx context.Context, userID string) (core.UserProfile, error) {
	user, err := c.GetUserInfo(ctx, userID, "")
	if err != nil {
		return core.UserProfile{}, err
	}
	return core.UserProfile{
		ProviderID:  core.ProviderWeChat,
		UserID:      firstNonEmpty(user.OpenID, userID),
		DisplayName: user.Nickname,
		PictureURL:  user.HeadImgURL,
		Language:    user.Language,
		Metadata: map[string]any{
			"subscribed": user.Subscribe == 1,
			"union_id":   user.UnionID,
		},
	}, nil
}
