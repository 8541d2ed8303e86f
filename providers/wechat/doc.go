// Package wechat is a client for the WeChat Official Account API.
//
// The access_token query parameter is issued from /token with the app id
// and secret, cached, and re-issued when WeChat reports it expired.
// Passive webhook messages are XML; see ParseMessage and BuildReply.
package wechat
