package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVerifySignature_LINE(t *testing.T) {
	body := `{"destination":"U0","events":[]}`
	mac := hmac.New(sha256.New, []byte("channel-secret"))
	mac.Write([]byte(body))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	out, err := run(t, body, "verify-signature", "--provider", "line", "--secret", "channel-secret", "--signature", signature)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !strings.Contains(out, "signature is valid") {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := run(t, body+" ", "verify-signature", "--provider", "line", "--secret", "channel-secret", "--signature", signature); err == nil {
		t.Fatalf("expected tampered body to fail")
	}
}

func TestVerifySignature_MessengerAndViber(t *testing.T) {
	body := []byte(`{"object":"page"}`)
	mac := hmac.New(sha256.New, []byte("app-secret"))
	mac.Write(body)
	hexSig := hex.EncodeToString(mac.Sum(nil))

	ok, err := verifySignature("messenger", body, "app-secret", "sha256="+hexSig)
	if err != nil || !ok {
		t.Fatalf("expected messenger signature to verify, got %v %v", ok, err)
	}
	ok, err = verifySignature("viber", body, "app-secret", hexSig)
	if err != nil || !ok {
		t.Fatalf("expected viber signature to verify, got %v %v", ok, err)
	}
	ok, _ = verifySignature("telegram", body, "secret", "secret")
	if !ok {
		t.Fatalf("expected telegram secret token to match")
	}
	if _, err := verifySignature("slack", body, "s", "x"); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
}

func TestCaseCommand(t *testing.T) {
	out, err := run(t, `{"replyToken":"abc","messages":[{"quickReply":{"items":[]}}]}`, "case", "--to", "snake")
	if err != nil {
		t.Fatalf("case: %v", err)
	}
	if !strings.Contains(out, `"reply_token":"abc"`) || !strings.Contains(out, `"quick_reply"`) {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = run(t, `{"rich_media":{"ButtonsGroupColumns":6},"min_api_version":7}`, "case", "--to", "camel", "--stop", "rich_media")
	if err != nil {
		t.Fatalf("case camel: %v", err)
	}
	if !strings.Contains(out, `"richMedia":{"ButtonsGroupColumns":6}`) || !strings.Contains(out, `"minApiVersion":7`) {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := run(t, `{}`, "case", "--to", "kebab"); err == nil {
		t.Fatalf("expected unsupported case error")
	}
}

func TestLoadRawConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messaging.yaml")
	content := "service_name: cli\nline:\n  access_token: from-file\n  channel_secret: file-secret\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	raw, err := loadRawConfig(path, []string{
		"MESSAGING_LINE_ACCESS_TOKEN=from-env",
		"MESSAGING_TELEGRAM_SECRET_TOKEN=tg-secret",
		"MESSAGING_UNKNOWN_VALUE=ignored",
		"HOME=/root",
	})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	line := raw["line"].(map[string]any)
	if line["access_token"] != "from-env" || line["channel_secret"] != "file-secret" {
		t.Fatalf("unexpected line section %#v", line)
	}
	telegram := raw["telegram"].(map[string]any)
	if telegram["secret_token"] != "tg-secret" {
		t.Fatalf("unexpected telegram section %#v", telegram)
	}
	if _, ok := raw["unknown"]; ok {
		t.Fatalf("expected unknown sections to be ignored")
	}
}

func TestSendText_Telegram(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bot123:ABC/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":42,"date":1700000000,"chat":{"id":7,"type":"private"},"text":"hi"}}`))
	}))
	t.Cleanup(server.Close)

	path := filepath.Join(t.TempDir(), "messaging.yaml")
	content := "ratelimit:\n  disabled: true\ntelegram:\n  origin: " + server.URL + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MESSAGING_TELEGRAM_ACCESS_TOKEN", "123:ABC")

	out, err := run(t, "", "send-text", "--config", path, "--provider", "telegram", "--to", "7", "--text", "hi")
	if err != nil {
		t.Fatalf("send-text: %v", err)
	}
	if !strings.Contains(out, `"messageId": "42"`) || !strings.Contains(out, `"providerId": "telegram"`) {
		t.Fatalf("unexpected output %q", out)
	}
}
