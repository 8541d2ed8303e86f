package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// AppSecretProof is the hex HMAC-SHA256 of accessToken keyed by appSecret,
// sent as appsecret_proof on Graph API calls.
func AppSecretProof(accessToken string, appSecret string) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write([]byte(accessToken))
	return hex.EncodeToString(mac.Sum(nil))
}
