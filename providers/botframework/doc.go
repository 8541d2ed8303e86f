// Package botframework is a client for the Bot Framework Connector API.
//
// Calls go to the serviceUrl of the conversation, taken from the incoming
// activity, with a bearer token issued by the client credentials grant.
package botframework
