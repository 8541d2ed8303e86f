// Package telegram is a client for the Telegram Bot API.
//
// Every method is a POST to /bot<token>/<method>. Optional parameters are
// passed as Options with camelCase keys; the client rewrites them to the
// snake_case names the Bot API expects and rewrites results back.
package telegram
