package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/shop-api/internal/config"
	"github.com/redmonkez12/shop-api/internal/logging"
)

func TestVerificationCode(t *testing.T) {
	msg, err := VerificationCode("ana@example.com", "123456", 5*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", msg.To)
	assert.Contains(t, msg.Text, "123456")
	assert.Contains(t, msg.Text, "5 minutes")
	assert.Contains(t, msg.HTML, `<p class="code">123456</p>`)
}

func TestSMTPSender_BuildsMultipartMessage(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", "587", "user", "pass", "shop@example.com")

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	s.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := s.Send(context.Background(), Message{To: "ana@example.com", Subject: "Hi", Text: "plain", HTML: "<b>html</b>"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "shop@example.com", gotFrom)
	assert.Equal(t, []string{"ana@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Hi\r\n")
	assert.Contains(t, string(gotMsg), "multipart/alternative")
	assert.Contains(t, string(gotMsg), "plain")
	assert.Contains(t, string(gotMsg), "<b>html</b>")
}

func TestSMTPSender_RejectsHeaderInjection(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", "587", "", "", "shop@example.com")
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("message must not be sent")
		return nil
	}

	err := s.Send(context.Background(), Message{To: "a@b.c\r\nBcc: x@y.z", Subject: "Hi"})
	assert.Error(t, err)
}

func TestSMTPSender_WrapsTransportError(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", "587", "", "", "shop@example.com")
	boom := errors.New("connection refused")
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	err := s.Send(context.Background(), Message{To: "a@b.c", Subject: "Hi"})
	assert.ErrorIs(t, err, boom)
}

func TestSendGridSender(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewSendGridSender("key", "shop@example.com", "Shop")
	s.baseURL = srv.URL

	err := s.Send(context.Background(), Message{To: "ana@example.com", Subject: "Hi", Text: "plain", HTML: "<b>html</b>"})
	require.NoError(t, err)
	assert.Equal(t, "Hi", body["subject"])
}

func TestSendGridSender_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	s := NewSendGridSender("key", "shop@example.com", "Shop")
	s.baseURL = srv.URL

	err := s.Send(context.Background(), Message{To: "ana@example.com", Subject: "Hi", Text: "t", HTML: "h"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=401")
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(logging.NewLoggerTo(&buf, true))

	require.NoError(t, s.Send(context.Background(), Message{To: "ana@example.com", Subject: "Hi", Text: "code 123456"}))
	assert.Contains(t, buf.String(), "ana@example.com")
	assert.Contains(t, buf.String(), "123456")
}

func TestNewSender(t *testing.T) {
	logger := logging.Discard()

	s, err := NewSender(config.EmailConfig{Provider: config.EmailProviderLog}, logger)
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	s, err = NewSender(config.EmailConfig{Provider: config.EmailProviderSMTP, SMTPHost: "h", SMTPPort: "25"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)

	s, err = NewSender(config.EmailConfig{Provider: config.EmailProviderSendGrid, SendGridAPIKey: "k"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &SendGridSender{}, s)

	_, err = NewSender(config.EmailConfig{Provider: "pigeon"}, logger)
	assert.Error(t, err)
}
