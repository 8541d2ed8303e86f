package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-messaging/core"
)

var _ gocmd.Querier[GetProfileMessage, core.UserProfile] = (*GetProfileQuery)(nil)
