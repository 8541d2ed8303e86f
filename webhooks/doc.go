// Package webhooks verifies and dispatches inbound provider webhooks.
//
// Each provider gets a ProviderWebhookTemplate pairing a Verifier with a
// DeliveryIDExtractor. A Dispatcher routes verified requests to the handler
// registered for the provider, and HTTPHandler answers the subscription
// handshakes Messenger and WeChat send before any event is delivered.
package webhooks
