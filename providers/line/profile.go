package line

import (
	"context"
	"net/http"

	"github.com/goliatone/go-messaging/core"
)

type Profile struct {
	DisplayName   string `json:"displayName"`
	UserID        string `json:"userId"`
	PictureURL    string `json:"pictureUrl,omitempty"`
	StatusMessage string `json:"statusMessage,omitempty"`
	Language      string `json:"language,omitempty"`
}

type GroupSummary struct {
	GroupID    string `json:"groupId"`
	GroupName  string `json:"groupName"`
	PictureURL string `json:"pictureUrl,omitempty"`
}

// MemberIDs is one page of member ids. Next is empty on the last page.
type MemberIDs struct {
	MemberIDs []string `json:"memberIds"`
	Next      string   `json:"next,omitempty"`
}

func (c *Client) GetUserProfile(ctx context.Context, userID string) (Profile, error) {
	id, err := requireID("user id", userID)
	if err != nil {
		return Profile{}, err
	}
	var out Profile
	_, err = c.do(ctx, core.Request{Operation: "get_user_profile", Method: http.MethodGet, Path: "/v2/bot/profile/" + id}, &out)
	return out, err
}

// GetProfile adapts GetUserProfile to core.ProfileReader.
func (c *Client) GetProfile(ctx context.Context, userID string) (core.UserProfile, error) {
	profile, err := c.GetUserProfile(ctx, userID)
	if err != nil {
		return core.UserProfile{}, err
	}
	return core.UserProfile{
		ProviderID:  core.ProviderLINE,
		UserID:      profile.UserID,
		DisplayName: profile.DisplayName,
		PictureURL:  profile.PictureURL,
		Language:    profile.Language,
		Metadata:    map[string]any{"status_message": profile.StatusMessage},
	}, nil
}

func (c *Client) GetGroupSummary(ctx context.Context, groupID string) (GroupSummary, error) {
	id, err := requireID("group id", groupID)
	if err != nil {
		return GroupSummary{}, err
	}
	var out GroupSummary
	_, err = c.do(ctx, core.Request{Operation: "get_group_summary", Method: http.MethodGet, Path: "/v2/bot/group/" + id + "/summary"}, &out)
	return out, err
}

func (c *Client) GetGroupMemberCount(ctx context.Context, groupID string) (int, error) {
	id, err := requireID("group id", groupID)
	if err != nil {
		return 0, err
	}
	var out struct {
		Count int `json:"count"`
	}
	_, err = c.do(ctx, core.Request{Operation: "get_group_member_count", Method: http.MethodGet, Path: "/v2/bot/group/" + id + "/members/count"}, &out)
	return out.Count, err
}

func (c *Client) GetGroupMemberProfile(ctx context.Context, groupID string, userID string) (Profile, error) {
	group, err := requireID("group id", groupID)
	if err != nil {
		return Profile{}, err
	}
	user, err := requireID("user id", userID)
	if err != nil {
		return Profile{}, err
	}
	var out Profile
	_, err = c.do(ctx, core.Request{
		Operation: "get_group_member_profile",
		Method:    http.MethodGet,
		Path:      "/v2/bot/group/" + group + "/member/" + user,
	}, &out)
	return out, err
}

// GetGroupMemberIDs returns one page of ids. Pass the previous page's Next
// as start to continue.
func (c *Client) GetGroupMemberIDs(ctx context.Context, groupID string, start string) (MemberIDs, error) {
	id, err := requireID("group id", groupID)
	if err != nil {
		return MemberIDs{}, err
	}
	return c.memberIDs(ctx, "get_group_member_ids", "/v2/bot/group/"+id+"/members/ids", start)
}

// GetAllGroupMemberIDs follows the next cursor until the last page.
func (c *Client) GetAllGroupMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	var (
		all   []string
		start string
	)
	for {
		page, err := c.GetGroupMemberIDs(ctx, groupID, start)
		if err != nil {
			return nil, err
		}
		all = append(all, page.MemberIDs...)
		if page.Next == "" {
			return all, nil
		}
		start = page.Next
	}
}

func (c *Client) LeaveGroup(ctx context.Context, groupID string) error {
	id, err := requireID("group id", groupID)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, core.Request{Operation: "leave_group", Method: http.MethodPost, Path: "/v2/bot/group/" + id + "/leave"}, nil)
	return err
}

func (c *Client) GetRoomMemberProfile(ctx context.Context, roomID string, userID string) (Profile, error) {
	room, err := requireID("room id", roomID)
	if err != nil {
		return Profile{}, err
	}
	user, err := requireID("user id", userID)
	if err != nil {
		return Profile{}, err
	}
	var out Profile
	_, err = c.do(ctx, core.Request{
		Operation: "get_room_member_profile",
		Method:    http.MethodGet,
		Path:      "/v2/bot/room/" + room + "/member/" + user,
	}, &out)
	return out, err
}

func (c *Client) GetRoomMemberIDs(ctx context.Context, roomID string, start string) (MemberIDs, error) {
	id, err := requireID("room id", roomID)
	if err != nil {
		return MemberIDs{}, err
	}
	return c.memberIDs(ctx, "get_room_member_ids", "/v2/bot/room/"+id+"/members/ids", start)
}

func (c *Client) LeaveRoom(ctx context.Context, roomID string) error {
	id, err := requireID("room id", roomID)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, core.Request{Operation: "leave_room", Method: http.MethodPost, Path: "/v2/bot/room/" + id + "/leave"}, nil)
	return err
}

func (c *Client) memberIDs(ctx context.Context, operation string, path string, start string) (MemberIDs, error) {
	req := core.Request{Operation: operation, Method: http.MethodGet, Path: path}
	if start != "" {
		req.Query = map[string]string{"start": start}
	}
	var out MemberIDs
	_, err := c.do(ctx, req, &out)
	return out, err
}
