package httpapi

import (
	"context"
	"io"
	"net/http"

	"github.com/mzalewsk/paynow_gateway-go/internal/gateway/paynow"
	"github.com/mzalewsk/paynow_gateway-go/internal/infra/logging"
	"github.com/mzalewsk/paynow_gateway-go/internal/infra/metrics"
)

const maxNotificationSize = 1 << 20 // 1MB

type NotificationProcessor interface {
	Process(ctx context.Context, n paynow.Notification) error
}

type WebhookHandler struct {
	SignatureKey []byte
	Processor    NotificationProcessor
	Logger       logging.Logger
	Metrics      *metrics.Counters
}

// HandleNotification verifies the signature over the raw body before any
// decoding, then hands the parsed notification to the engine. Benign no-ops
// answer 200 so the processor stops redelivering; only a store failure gets
// a 500, which is safe to redeliver because nothing was committed.
func (h *WebhookHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxNotificationSize))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusInternalServerError)
		return
	}

	if !paynow.VerifySignature(h.SignatureKey, body, r.Header.Get("Signature")) {
		h.Metrics.IncRejected()
		h.Logger.Error("invalid notification signature", map[string]any{
			"signature": r.Header.Get("Signature"),
		})
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	n, err := paynow.ParseNotification(body)
	if err != nil {
		h.Metrics.IncRejected()
		h.Logger.Error("failed to parse notification", map[string]any{
			"error": err.Error(),
		})
		http.Error(w, "failed to parse notification", http.StatusInternalServerError)
		return
	}

	if err := h.Processor.Process(r.Context(), n); err != nil {
		h.Logger.Error("failed to process notification", map[string]any{
			"payment-id": n.PaymentID,
			"error":      err.Error(),
		})
		http.Error(w, "failed to process notification", http.StatusInternalServerError)
		return
	}

	h.Metrics.IncAccepted()
	w.WriteHeader(http.StatusOK)
}
