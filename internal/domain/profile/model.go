package profile

import (
	"strings"
	"time"

	"association-portal/backend/internal/resource"
)

const (
	RoleVolunteer = "volunteer"
	RoleMember    = "member"
	RoleAdmin     = "admin"

	MembershipNone     = "none"
	MembershipPending  = "pending"
	MembershipActive   = "active"
	MembershipRejected = "rejected"
)

// Profile is the application-owned record merged onto the auth identity.
// The auth provider owns the identity itself; the profile row is lazily
// created on first sign-in.
type Profile struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	FullNameAr       string    `json:"full_name_ar,omitempty"`
	Role             string    `json:"role"`
	MembershipStatus string    `json:"membership_status"`
	Points           int       `json:"points"`
	Badges           []string  `json:"badges"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// UpdateProfileInput carries the owner-editable fields. Role, membership
// status, points and badges are application-managed and cannot be set here.
type UpdateProfileInput struct {
	FullName   *string `json:"full_name,omitempty"`
	FullNameAr *string `json:"full_name_ar,omitempty"`
}

func (in *UpdateProfileInput) Trim() {
	if in.FullName != nil {
		*in.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.FullNameAr != nil {
		*in.FullNameAr = strings.TrimSpace(*in.FullNameAr)
	}
}

func fromRow(row resource.Row) Profile {
	p := Profile{
		ID:               row.ID(),
		UserID:           rowString(row, "user_id"),
		Email:            rowString(row, "email"),
		FullName:         rowString(row, "full_name"),
		FullNameAr:       rowString(row, "full_name_ar"),
		Role:             rowString(row, "role"),
		MembershipStatus: rowString(row, "membership_status"),
		Badges:           []string{},
	}
	if p.Role == "" {
		p.Role = RoleVolunteer
	}
	if p.MembershipStatus == "" {
		p.MembershipStatus = MembershipNone
	}
	switch v := row["points"].(type) {
	case int:
		p.Points = v
	case int64:
		p.Points = int(v)
	case float64:
		p.Points = int(v)
	}
	switch v := row["badges"].(type) {
	case []string:
		p.Badges = append(p.Badges, v...)
	case []any:
		for _, b := range v {
			if s, ok := b.(string); ok {
				p.Badges = append(p.Badges, s)
			}
		}
	}
	if t, ok := row["created_at"].(time.Time); ok {
		p.CreatedAt = t
	}
	if t, ok := row["updated_at"].(time.Time); ok {
		p.UpdatedAt = t
	}
	return p
}

func rowString(row resource.Row, field string) string {
	s, _ := row[field].(string)
	return s
}
