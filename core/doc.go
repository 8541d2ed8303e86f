// Package core holds the contracts shared by every messaging provider: the
// base HTTP client, error envelopes, configuration and redaction helpers.
// Provider packages depend on core; core never depends on a provider or on a
// concrete transport.
package core
