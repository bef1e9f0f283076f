package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/evida/coaching-pipeline/pkg/logging"
)

// MeetingWebhookHandler is the placeholder inbound endpoint reserved for a
// future meeting-provider integration. It echoes the payload back tagged
// as a stub response and never invokes the pipeline.
type MeetingWebhookHandler struct {
	secret string
	logger *logging.Logger
	now    func() time.Time
}

// NewMeetingWebhookHandler returns the stub handler. When secret is
// non-empty, inbound requests must carry a valid signature header.
func NewMeetingWebhookHandler(secret string, logger *logging.Logger) *MeetingWebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &MeetingWebhookHandler{secret: strings.TrimSpace(secret), logger: logger, now: time.Now}
}

type stubResponse struct {
	Status   string          `json:"status"`
	Received json.RawMessage `json:"received"`
}

// Handle handles POST /webhook/meeting-provider requests.
func (h *MeetingWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if h.secret != "" {
		header := signatureHeader(r)
		if !verifySignature(h.secret, payload, header, h.now()) {
			h.logger.Warn("invalid or missing webhook signature")
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	if !json.Valid(payload) {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	h.logger.Info("meeting-provider webhook received (stub, not processed)", "bytes", len(payload))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(stubResponse{Status: "stub", Received: payload}); err != nil {
		h.logger.Error("failed to write stub response", "error", err)
	}
}

// HealthCheck handles GET /health requests.
func (h *MeetingWebhookHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// signatureHeader accepts the header-name variants seen in the wild.
func signatureHeader(r *http.Request) string {
	for _, name := range []string{
		"Elevenlabs-Signature",
		"X-Elevenlabs-Signature",
	} {
		if v := r.Header.Get(name); v != "" {
			return v
		}
	}
	return ""
}
