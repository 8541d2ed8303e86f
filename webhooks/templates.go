package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"net/http"
	"sort"
	"strings"

	"github.com/goliatone/go-messaging/core"
)

const (
	EncodingHex    = "hex"
	EncodingBase64 = "base64"

	AlgorithmSHA256 = "sha256"
	AlgorithmSHA1   = "sha1"
)

type Verifier interface {
	Verify(ctx context.Context, req core.InboundRequest) error
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, req core.InboundRequest) error

func (f VerifierFunc) Verify(ctx context.Context, req core.InboundRequest) error {
	return f(ctx, req)
}

// Handshake answers a subscription challenge. ok is false when req is not a
// handshake for this provider.
type Handshake func(req core.InboundRequest) (body []byte, ok bool, err error)

type ProviderWebhookTemplate struct {
	ProviderID string
	Verifier   Verifier
	Extractor  DeliveryIDExtractor
	Handshake  Handshake
}

// VerifyBase64HMACSHA256 reports whether signature is the base64 encoded
// HMAC-SHA256 of body keyed by secret. An empty secret or an undecodable
// signature never verifies.
func VerifyBase64HMACSHA256(body []byte, secret string, signature string) bool {
	if secret == "" {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	return hmac.Equal(decoded, computeHMAC(sha256.New, secret, body))
}

// VerifyHexHMAC reports whether signature is the hex encoded HMAC of body
// keyed by secret, using algorithm sha256 (default) or sha1.
func VerifyHexHMAC(body []byte, secret string, signature string, algorithm string) bool {
	if secret == "" {
		return false
	}
	decoded, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	return hmac.Equal(decoded, computeHMAC(hashFor(algorithm), secret, body))
}

// SortedSHA1Signature is the hex sha1 of the lexically sorted concatenation
// of parts.
func SortedSHA1Signature(parts ...string) string {
	sorted := append([]string(nil), parts...)
	sort.Strings(sorted)
	sum := sha1.Sum([]byte(strings.Join(sorted, "")))
	return hex.EncodeToString(sum[:])
}

func computeHMAC(fn func() hash.Hash, secret string, body []byte) []byte {
	mac := hmac.New(fn, []byte(secret))
	_, _ = mac.Write(body)
	return mac.Sum(nil)
}

func hashFor(algorithm string) func() hash.Hash {
	if strings.EqualFold(strings.TrimSpace(algorithm), AlgorithmSHA1) {
		return sha1.New
	}
	return sha256.New
}

type HeaderHMACVerifier struct {
	Header    string
	Prefix    string
	Secret    string
	Encoding  string // hex | base64
	Algorithm string // sha256 | sha1
}

func (v HeaderHMACVerifier) Verify(_ context.Context, req core.InboundRequest) error {
	header := strings.TrimSpace(headerValue(req.Headers, v.Header))
	if header == "" {
		return fmt.Errorf("webhooks: %s signature header is required", strings.TrimSpace(v.Header))
	}
	secret := strings.TrimSpace(v.Secret)
	if secret == "" {
		return fmt.Errorf("webhooks: signature secret is required")
	}
	signature := strings.TrimPrefix(header, strings.TrimSpace(v.Prefix))
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return fmt.Errorf("webhooks: signature value is required")
	}

	var (
		decoded []byte
		err     error
	)
	encoding := strings.ToLower(strings.TrimSpace(v.Encoding))
	switch encoding {
	case EncodingBase64:
		decoded, err = base64.StdEncoding.DecodeString(signature)
	default:
		encoding = EncodingHex
		decoded, err = hex.DecodeString(signature)
	}
	if err != nil {
		return fmt.Errorf("webhooks: decode %s signature: %w", encoding, err)
	}
	ok := hmac.Equal(decoded, computeHMAC(hashFor(v.Algorithm), secret, req.Body))
	if !ok {
		return fmt.Errorf("webhooks: signature verification failed")
	}
	return nil
}

// FirstHeaderVerifier uses the first verifier whose header is present.
type FirstHeaderVerifier []HeaderHMACVerifier

func (v FirstHeaderVerifier) Verify(ctx context.Context, req core.InboundRequest) error {
	for _, candidate := range v {
		if strings.TrimSpace(headerValue(req.Headers, candidate.Header)) != "" {
			return candidate.Verify(ctx, req)
		}
	}
	names := make([]string, 0, len(v))
	for _, candidate := range v {
		names = append(names, candidate.Header)
	}
	return fmt.Errorf("webhooks: one of %s signature headers is required", strings.Join(names, ", "))
}

type HeaderTokenVerifier struct {
	Header string
	Token  string
}

func (v HeaderTokenVerifier) Verify(_ context.Context, req core.InboundRequest) error {
	expected := strings.TrimSpace(v.Token)
	if expected == "" {
		return fmt.Errorf("webhooks: verification token is required")
	}
	actual := strings.TrimSpace(headerValue(req.Headers, v.Header))
	if actual == "" {
		return fmt.Errorf("webhooks: %s verification header is required", strings.TrimSpace(v.Header))
	}
	if subtle.ConstantTimeCompare([]byte(actual), []byte(expected)) != 1 {
		return fmt.Errorf("webhooks: verification token mismatch")
	}
	return nil
}

// SortedSHA1Verifier checks the signature query parameter against the sha1
// of the sorted token, timestamp and nonce.
type SortedSHA1Verifier struct {
	Token string
}

func (v SortedSHA1Verifier) Verify(_ context.Context, req core.InboundRequest) error {
	token := strings.TrimSpace(v.Token)
	if token == "" {
		return fmt.Errorf("webhooks: verification token is required")
	}
	signature := strings.TrimSpace(req.Query["signature"])
	timestamp := strings.TrimSpace(req.Query["timestamp"])
	nonce := strings.TrimSpace(req.Query["nonce"])
	if signature == "" || timestamp == "" || nonce == "" {
		return fmt.Errorf("webhooks: signature, timestamp and nonce query parameters are required")
	}
	expected := SortedSHA1Signature(token, timestamp, nonce)
	if subtle.ConstantTimeCompare([]byte(strings.ToLower(signature)), []byte(expected)) != 1 {
		return fmt.Errorf("webhooks: signature verification failed")
	}
	return nil
}

func NewLINEWebhookTemplate(channelSecret string) ProviderWebhookTemplate {
	return ProviderWebhookTemplate{
		ProviderID: core.ProviderLINE,
		Verifier: HeaderHMACVerifier{
			Header:   "X-Line-Signature",
			Secret:   strings.TrimSpace(channelSecret),
			Encoding: EncodingBase64,
		},
		Extractor: ChainDeliveryIDExtractors(
			JSONFieldDeliveryIDExtractor("events", "0", "webhookEventId"),
			RandomDeliveryIDExtractor,
		),
	}
}

func NewMessengerWebhookTemplate(appSecret string, verifyToken string) ProviderWebhookTemplate {
	secret := strings.TrimSpace(appSecret)
	return ProviderWebhookTemplate{
		ProviderID: core.ProviderMessenger,
		Verifier: FirstHeaderVerifier{
			{Header: "X-Hub-Signature-256", Prefix: "sha256=", Secret: secret, Encoding: EncodingHex, Algorithm: AlgorithmSHA256},
			{Header: "X-Hub-Signature", Prefix: "sha1=", Secret: secret, Encoding: EncodingHex, Algorithm: AlgorithmSHA1},
		},
		Extractor: ChainDeliveryIDExtractors(
			JSONFieldDeliveryIDExtractor("entry", "0", "messaging", "0", "message", "mid"),
			RandomDeliveryIDExtractor,
		),
		Handshake: HubChallengeHandshake(verifyToken),
	}
}

func NewTelegramWebhookTemplate(secretToken string) ProviderWebhookTemplate {
	return ProviderWebhookTemplate{
		ProviderID: core.ProviderTelegram,
		Verifier: HeaderTokenVerifier{
			Header: "X-Telegram-Bot-Api-Secret-Token",
			Token:  strings.TrimSpace(secretToken),
		},
		Extractor: ChainDeliveryIDExtractors(
			JSONFieldDeliveryIDExtractor("update_id"),
			RandomDeliveryIDExtractor,
		),
	}
}

func NewViberWebhookTemplate(authToken string) ProviderWebhookTemplate {
	return ProviderWebhookTemplate{
		ProviderID: core.ProviderViber,
		Verifier: HeaderHMACVerifier{
			Header:   "X-Viber-Content-Signature",
			Secret:   strings.TrimSpace(authToken),
			Encoding: EncodingHex,
		},
		Extractor: ChainDeliveryIDExtractors(
			JSONFieldDeliveryIDExtractor("message_token"),
			RandomDeliveryIDExtractor,
		),
	}
}

func NewWeChatWebhookTemplate(token string) ProviderWebhookTemplate {
	verifier := SortedSHA1Verifier{Token: strings.TrimSpace(token)}
	return ProviderWebhookTemplate{
		ProviderID: core.ProviderWeChat,
		Verifier:   verifier,
		Extractor: ChainDeliveryIDExtractors(
			QueryDeliveryIDExtractor("nonce"),
			RandomDeliveryIDExtractor,
		),
		Handshake: EchoStrHandshake(verifier),
	}
}

// HubChallengeHandshake answers the Graph API subscription GET
// (hub.mode=subscribe) by echoing hub.challenge when hub.verify_token
// matches.
func HubChallengeHandshake(verifyToken string) Handshake {
	expected := strings.TrimSpace(verifyToken)
	return func(req core.InboundRequest) ([]byte, bool, error) {
		if !strings.EqualFold(req.Method, http.MethodGet) || req.Query["hub.mode"] == "" {
			return nil, false, nil
		}
		if req.Query["hub.mode"] != "subscribe" {
			return nil, true, fmt.Errorf("webhooks: unsupported hub.mode %q", req.Query["hub.mode"])
		}
		if expected == "" || subtle.ConstantTimeCompare([]byte(req.Query["hub.verify_token"]), []byte(expected)) != 1 {
			return nil, true, fmt.Errorf("webhooks: hub.verify_token mismatch")
		}
		return []byte(req.Query["hub.challenge"]), true, nil
	}
}

// EchoStrHandshake answers the WeChat server validation GET by echoing
// echostr once the query signature verifies.
func EchoStrHandshake(verifier Verifier) Handshake {
	return func(req core.InboundRequest) ([]byte, bool, error) {
		if !strings.EqualFold(req.Method, http.MethodGet) || req.Query["echostr"] == "" {
			return nil, false, nil
		}
		if verifier != nil {
			if err := verifier.Verify(context.Background(), req); err != nil {
				return nil, true, err
			}
		}
		return []byte(req.Query["echostr"]), true, nil
	}
}

func headerValue(headers map[string]string, key string) string {
	if len(headers) == 0 {
		return ""
	}
	key = strings.TrimSpace(key)
	if value, ok := headers[key]; ok {
		return value
	}
	for candidate, value := range headers {
		if strings.EqualFold(candidate, key) {
			return value
		}
	}
	return ""
}
