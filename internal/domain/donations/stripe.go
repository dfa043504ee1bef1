package donations

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"go.uber.org/zap"
)

func (s *Service) initStripe() {
	if s.config.SecretKey == "" {
		return
	}
	stripe.Key = s.config.SecretKey
}

// CardEnabled reports whether the payment provider is configured.
func (s *Service) CardEnabled() bool {
	return s.config.SecretKey != ""
}

// CreateCheckoutSession records a pending card donation and opens a hosted
// checkout for it. The webhook marks the donation verified on completion.
func (s *Service) CreateCheckoutSession(ctx context.Context, in AddDonationInput) (string, error) {
	if !s.CardEnabled() {
		return "", fmt.Errorf("%w: card donations are not configured", ErrBadRequest)
	}

	in.Method = MethodCard
	donation, err := s.Add(ctx, in)
	if err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(donation.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(s.config.Currency),
					UnitAmount: stripe.Int64(donation.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Donation"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.config.SuccessURL),
		CancelURL:  stripe.String(s.config.CancelURL),
		Metadata: map[string]string{
			"donation_id": donation.ID,
		},
	}

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	s.logger.Info("checkout session created",
		zap.String("donationId", donation.ID),
		zap.String("sessionId", sess.ID))
	return sess.URL, nil
}
