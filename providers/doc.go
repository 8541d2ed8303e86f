// Package providers groups the chat platform clients. Each subpackage wraps
// one provider's REST API over core.Client; devkit holds the shared client
// constructor and conformance helpers.
package providers
