package donations

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
	"go.uber.org/zap"
)

// HandleWebhook processes payment-provider events. A completed checkout
// flips the referenced donation to verified; an expired one rejects it.
func (s *Service) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error("webhook: reading body failed", zap.Error(err))
		http.Error(w, "error reading request body", http.StatusServiceUnavailable)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sigHeader, s.config.WebhookSecret)
	if err != nil {
		s.logger.Warn("webhook: signature verification failed", zap.Error(err))
		http.Error(w, "webhook signature verification failed", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			http.Error(w, "error parsing webhook JSON", http.StatusBadRequest)
			return
		}
		donationID := sess.Metadata["donation_id"]
		if donationID == "" {
			break
		}
		if err := s.UpdateStatus(ctx, donationID, StatusVerified); err != nil {
			// Acknowledge anyway so the provider does not retry forever.
			s.logger.Error("webhook: verify donation failed",
				zap.String("donationId", donationID), zap.Error(err))
		}

	case "checkout.session.expired":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			http.Error(w, "error parsing webhook JSON", http.StatusBadRequest)
			return
		}
		donationID := sess.Metadata["donation_id"]
		if donationID == "" {
			break
		}
		if err := s.UpdateStatus(ctx, donationID, StatusRejected); err != nil {
			s.logger.Error("webhook: reject donation failed",
				zap.String("donationId", donationID), zap.Error(err))
		}

	default:
		s.logger.Debug("webhook: ignoring event", zap.String("type", string(event.Type)))
	}

	w.WriteHeader(http.StatusOK)
}
