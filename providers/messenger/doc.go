// Package messenger is a client for the Messenger Platform on the Facebook
// Graph API.
//
// Requests carry the page access token as the access_token query parameter
// and, when an app secret is configured, the matching appsecret_proof.
package messenger
