package donations

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"association-portal/backend/internal/resource"
)

const resourceDonations = "donations"

// Config carries the payment-provider settings. Card donations are
// disabled when SecretKey is empty.
type Config struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
}

type Service struct {
	client resource.Client
	config Config
	logger *zap.Logger
}

func NewService(client resource.Client, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	s := &Service{client: client, config: cfg, logger: logger}
	s.initStripe()
	return s
}

// Add records a new donation with status pending. Donations are not
// mirrored in the shared content store; reads always go to the remote.
func (s *Service) Add(ctx context.Context, in AddDonationInput) (*Donation, error) {
	in.Trim()

	if in.DonorName == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: donor_name and email are required", ErrBadRequest)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrBadRequest)
	}
	if !IsValidMethod(in.Method) {
		return nil, fmt.Errorf("%w: method must be one of: bank_transfer, cash, card", ErrBadRequest)
	}

	row, err := s.client.Insert(ctx, resourceDonations, resource.Row{
		"donor_name": in.DonorName,
		"email":      in.Email,
		"amount":     in.Amount,
		"currency":   s.config.Currency,
		"method":     in.Method,
		"status":     StatusPending,
		"proof_url":  in.ProofURL,
		"created_at": time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("add donation: %w", err)
	}

	d := fromRow(row)
	s.logger.Info("donation recorded",
		zap.String("id", d.ID),
		zap.String("method", d.Method),
		zap.Int64("amount", d.Amount))
	return &d, nil
}

// ListAll returns every donation, newest first. Admin only.
func (s *Service) ListAll(ctx context.Context) ([]Donation, error) {
	rows, err := s.client.Select(ctx, resourceDonations, nil,
		resource.Order{Field: "created_at", Desc: true})
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	out := make([]Donation, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

// UpdateStatus moves a donation between pending/verified/rejected.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrBadRequest)
	}
	if !IsValidStatus(status) {
		return fmt.Errorf("%w: status must be one of: pending, verified, rejected", ErrBadRequest)
	}
	if _, err := s.client.Update(ctx, resourceDonations, id, resource.Row{"status": status}); err != nil {
		return fmt.Errorf("update donation status: %w", err)
	}
	return nil
}

// Delete removes a donation record entirely.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrBadRequest)
	}
	if err := s.client.Delete(ctx, resourceDonations, id); err != nil {
		return fmt.Errorf("delete donation: %w", err)
	}
	return nil
}
