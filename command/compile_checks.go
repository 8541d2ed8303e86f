package command

import gocmd "github.com/goliatone/go-command"

var _ gocmd.Commander[SendTextMessage] = (*SendTextCommand)(nil)
