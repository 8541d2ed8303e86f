// Package line is a client for the LINE Messaging API.
package line
