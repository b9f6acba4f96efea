package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/gocontact/internal/pkg/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
app:
  tz: UTC
  server:
    max_goroutine: 16
    swagger: true
    http:
      address: 127.0.0.1:0
instrument:
  enabled: false
  service_name: gocontact-test
hash:
  algorithm: sha256
mail:
  driver: memory
  from: noreply@example.com
messaging:
  driver: memory
modules:
  otp:
    code_digits: 4
    store:
      driver: memory
  notification:
    enabled: true
    owner_email: owner@example.com
    consumer_names:
      - contact_message_submitted_notification
`

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func startApp(t *testing.T) (*App, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))
	t.Setenv("CONFIG_PATH", path)

	a := New()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	a.Serve(l)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.Stop(ctx)
	})

	return a, "http://" + l.Addr().String()
}

func doJSON(t *testing.T, method, url string, payload any) (int, envelope) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		require.NoError(t, json.NewEncoder(buf).Encode(payload))
		body = buf
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := (&http.Client{Timeout: 5 * time.Second}).Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

var codePattern = regexp.MustCompile(`\b\d{4}\b`)

func TestApp_OTPRoundTrip(t *testing.T) {
	// Arrange
	a, base := startApp(t)
	mailer, ok := a.mail.(*mail.Memory)
	require.True(t, ok)

	// Act
	sendStatus, sendEnv := doJSON(t, http.MethodPost, base+"/api/v1/otp/send", map[string]string{"email": "Jane@Example.com"})
	againStatus, againEnv := doJSON(t, http.MethodPost, base+"/api/v1/otp/send", map[string]string{"email": "jane@example.com"})

	// Assert
	require.Equal(t, http.StatusOK, sendStatus)
	assert.Equal(t, "OTP sent. Please check your inbox and spam folder.", sendEnv.Message)
	assert.Equal(t, http.StatusTooManyRequests, againStatus)
	assert.Equal(t, "Please wait before requesting another OTP.", againEnv.Message)

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"jane@example.com"}, sent[0].To)
	code := codePattern.FindString(sent[0].TextBody)
	require.NotEmpty(t, code, sent[0].TextBody)

	okStatus, okEnv := doJSON(t, http.MethodPost, base+"/api/v1/otp/verify", map[string]string{"email": "jane@example.com", "otp": code})
	assert.Equal(t, http.StatusOK, okStatus)
	assert.Equal(t, "OTP verified", okEnv.Message)

	replayStatus, replayEnv := doJSON(t, http.MethodPost, base+"/api/v1/otp/verify", map[string]string{"email": "jane@example.com", "otp": code})
	assert.Equal(t, http.StatusBadRequest, replayStatus)
	assert.Equal(t, "Invalid OTP", replayEnv.Message)
}

func TestApp_HealthAndDocs(t *testing.T) {
	_, base := startApp(t)

	status, env := doJSON(t, http.MethodGet, base+"/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	resp, err := http.Get(base + "/swagger/doc.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(raw), "/api/v1/otp/send"))

	status, env = doJSON(t, http.MethodGet, base+"/api/v1/otp/send", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "Method not allowed", env.Message)
}
