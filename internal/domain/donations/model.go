package donations

import (
	"strings"
	"time"

	"association-portal/backend/internal/resource"
	"association-portal/backend/internal/utils"
)

const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"

	MethodBankTransfer = "bank_transfer"
	MethodCash         = "cash"
	MethodCard         = "card"
)

func IsValidStatus(s string) bool {
	return s == StatusPending || s == StatusVerified || s == StatusRejected
}

func IsValidMethod(m string) bool {
	return m == MethodBankTransfer || m == MethodCash || m == MethodCard
}

// Donation is a single gift. Bank transfers carry a proof upload; card
// donations are verified through the payment provider's webhook instead.
// Status transitions are admin-driven, there is no automatic state machine.
type Donation struct {
	ID        string    `json:"id"`
	DonorName string    `json:"donor_name"`
	Email     string    `json:"email"`
	Amount    int64     `json:"amount"` // minor units (cents)
	Currency  string    `json:"currency"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	ProofURL  string    `json:"proof_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AddDonationInput struct {
	DonorName string `json:"donor_name"`
	Email     string `json:"email"`
	Amount    int64  `json:"amount"`
	Method    string `json:"method"`
	ProofURL  string `json:"proof_url,omitempty"`
}

func (in *AddDonationInput) Trim() {
	in.DonorName = strings.TrimSpace(in.DonorName)
	in.Email = utils.NormalizeEmail(in.Email)
	in.Method = strings.TrimSpace(in.Method)
	in.ProofURL = strings.TrimSpace(in.ProofURL)
}

func fromRow(row resource.Row) Donation {
	d := Donation{
		ID:        row.ID(),
		DonorName: rowString(row, "donor_name"),
		Email:     rowString(row, "email"),
		Currency:  rowString(row, "currency"),
		Method:    rowString(row, "method"),
		Status:    rowString(row, "status"),
		ProofURL:  rowString(row, "proof_url"),
	}
	switch v := row["amount"].(type) {
	case int64:
		d.Amount = v
	case int:
		d.Amount = int64(v)
	case float64:
		d.Amount = int64(v)
	}
	if t, ok := row["created_at"].(time.Time); ok {
		d.CreatedAt = t
	}
	return d
}

func rowString(row resource.Row, field string) string {
	s, _ := row[field].(string)
	return s
}
