package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// signatureTolerance rejects webhook signatures older than this.
const signatureTolerance = 30 * time.Minute

// parseSignatureHeader splits a header of the form "t=1739537297,v0=abcdef"
// (v1 is also accepted) into its timestamp and signature parts.
func parseSignatureHeader(header string) (int64, string, error) {
	var tsPart, sigPart string
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "t="):
			tsPart = strings.TrimPrefix(part, "t=")
		case strings.HasPrefix(part, "v1="):
			sigPart = strings.TrimPrefix(part, "v1=")
		case strings.HasPrefix(part, "v0="):
			if sigPart == "" {
				sigPart = strings.TrimPrefix(part, "v0=")
			}
		}
	}
	if tsPart == "" || sigPart == "" {
		return 0, "", fmt.Errorf("handlers: signature header missing t= or v0=/v1= parts")
	}
	ts, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("handlers: invalid signature timestamp: %w", err)
	}
	return ts, sigPart, nil
}

// verifySignature checks an ElevenLabs-style HMAC-SHA256 signature over
// "<timestamp>.<payload>" and rejects stale timestamps.
func verifySignature(secret string, payload []byte, header string, now time.Time) bool {
	if header == "" {
		return false
	}
	ts, sig, err := parseSignatureHeader(header)
	if err != nil {
		return false
	}
	if ts < now.Add(-signatureTolerance).Unix() {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sig))
}
