package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/evida/coaching-pipeline/pkg/logging"
)

func TestMeetingWebhookEchoesPayload(t *testing.T) {
	h := NewMeetingWebhookHandler("", logging.Default())

	body := `{"conversation_id":"conv-1","transcript":[{"role":"agent","message":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/meeting-provider", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status   string          `json:"status"`
		Received json.RawMessage `json:"received"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "stub", resp.Status)
	require.JSONEq(t, body, string(resp.Received))
}

func TestMeetingWebhookRejectsInvalidJSON(t *testing.T) {
	h := NewMeetingWebhookHandler("", logging.Default())

	req := httptest.NewRequest(http.MethodPost, "/webhook/meeting-provider", strings.NewReader(`{"broken":`))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func signFor(secret, payload string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v0=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestMeetingWebhookSignatureVerification(t *testing.T) {
	now := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)
	h := NewMeetingWebhookHandler("topsecret", logging.Default())
	h.now = func() time.Time { return now }

	body := `{"ping":true}`

	t.Run("valid signature accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhook/meeting-provider", strings.NewReader(body))
		req.Header.Set("Elevenlabs-Signature", signFor("topsecret", body, now.Unix()))
		rec := httptest.NewRecorder()
		h.Handle(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing signature rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhook/meeting-provider", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Handle(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhook/meeting-provider", strings.NewReader(body))
		req.Header.Set("Elevenlabs-Signature", signFor("othersecret", body, now.Unix()))
		rec := httptest.NewRecorder()
		h.Handle(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("stale timestamp rejected", func(t *testing.T) {
		stale := now.Add(-31 * time.Minute).Unix()
		req := httptest.NewRequest(http.MethodPost, "/webhook/meeting-provider", strings.NewReader(body))
		req.Header.Set("Elevenlabs-Signature", signFor("topsecret", body, stale))
		rec := httptest.NewRecorder()
		h.Handle(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("alternate header name accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhook/meeting-provider", strings.NewReader(body))
		req.Header.Set("X-Elevenlabs-Signature", signFor("topsecret", body, now.Unix()))
		rec := httptest.NewRecorder()
		h.Handle(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestParseSignatureHeader(t *testing.T) {
	ts, sig, err := parseSignatureHeader("t=1739537297,v0=abcdef")
	require.NoError(t, err)
	require.Equal(t, int64(1739537297), ts)
	require.Equal(t, "abcdef", sig)

	ts, sig, err = parseSignatureHeader("t=1739537297, v1=fedcba")
	require.NoError(t, err)
	require.Equal(t, int64(1739537297), ts)
	require.Equal(t, "fedcba", sig)

	_, _, err = parseSignatureHeader("v0=abcdef")
	require.Error(t, err)

	_, _, err = parseSignatureHeader("t=notanumber,v0=abcdef")
	require.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	h := NewMeetingWebhookHandler("", logging.Default())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
