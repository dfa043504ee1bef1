package profile

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"association-portal/backend/internal/resource"
)

const resourceProfiles = "profiles"

type Service struct {
	client resource.Client
	logger *zap.Logger
}

func NewService(client resource.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, logger: logger}
}

// Ensure returns the profile for the given auth identity, creating it on
// first sign-in. After Ensure resolves, the merged identity+profile view
// the rest of the app depends on is available.
func (s *Service) Ensure(ctx context.Context, uid, email, displayName string) (*Profile, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}

	existing, err := s.find(ctx, uid)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	row, err := s.client.Insert(ctx, resourceProfiles, resource.Row{
		"user_id":           uid,
		"email":             email,
		"full_name":         displayName,
		"role":              RoleVolunteer,
		"membership_status": MembershipNone,
		"points":            0,
		"badges":            []string{},
		"created_at":        now,
		"updated_at":        now,
	})
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	s.logger.Info("profile created", zap.String("uid", uid))

	p := fromRow(row)
	return &p, nil
}

// Get returns the profile for uid, or ErrNotFound.
func (s *Service) Get(ctx context.Context, uid string) (*Profile, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	p, err := s.find(ctx, uid)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: profile for %s", ErrNotFound, uid)
	}
	return p, nil
}

func (s *Service) find(ctx context.Context, uid string) (*Profile, error) {
	rows, err := s.client.Select(ctx, resourceProfiles, []resource.Filter{resource.Eq("user_id", uid)})
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	p := fromRow(rows[0])
	return &p, nil
}

// Update patches the owner-editable fields only.
func (s *Service) Update(ctx context.Context, uid string, in UpdateProfileInput) (*Profile, error) {
	in.Trim()

	current, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	patch := resource.Row{"updated_at": time.Now().UTC()}
	if in.FullName != nil {
		patch["full_name"] = *in.FullName
	}
	if in.FullNameAr != nil {
		patch["full_name_ar"] = *in.FullNameAr
	}

	row, err := s.client.Update(ctx, resourceProfiles, current.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	p := fromRow(row)
	return &p, nil
}

// ApplyForMembership moves a none/rejected membership to pending.
func (s *Service) ApplyForMembership(ctx context.Context, uid string) (*Profile, error) {
	current, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	switch current.MembershipStatus {
	case MembershipPending:
		return nil, ErrAlreadyApplied
	case MembershipActive:
		return nil, ErrAlreadyActive
	}

	row, err := s.client.Update(ctx, resourceProfiles, current.ID, resource.Row{
		"membership_status": MembershipPending,
		"updated_at":        time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("apply for membership: %w", err)
	}
	p := fromRow(row)
	return &p, nil
}

// ReviewMembership settles a pending application. Approval also promotes
// the volunteer role to member.
func (s *Service) ReviewMembership(ctx context.Context, uid string, approve bool) (*Profile, error) {
	current, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if current.MembershipStatus != MembershipPending {
		return nil, ErrNotPending
	}

	patch := resource.Row{"updated_at": time.Now().UTC()}
	if approve {
		patch["membership_status"] = MembershipActive
		if current.Role == RoleVolunteer {
			patch["role"] = RoleMember
		}
	} else {
		patch["membership_status"] = MembershipRejected
	}

	row, err := s.client.Update(ctx, resourceProfiles, current.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("review membership: %w", err)
	}
	p := fromRow(row)
	return &p, nil
}

// PendingMemberships lists profiles awaiting membership review.
func (s *Service) PendingMemberships(ctx context.Context) ([]Profile, error) {
	rows, err := s.client.Select(ctx, resourceProfiles,
		[]resource.Filter{resource.Eq("membership_status", MembershipPending)})
	if err != nil {
		return nil, fmt.Errorf("list pending memberships: %w", err)
	}
	out := make([]Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

// AwardPoints adds points to a profile. Used when attendance is confirmed.
func (s *Service) AwardPoints(ctx context.Context, uid string, points int) (*Profile, error) {
	if points <= 0 {
		return nil, fmt.Errorf("%w: points must be positive", ErrBadRequest)
	}
	current, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	row, err := s.client.Update(ctx, resourceProfiles, current.ID, resource.Row{
		"points":     current.Points + points,
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("award points: %w", err)
	}
	p := fromRow(row)
	return &p, nil
}

// AwardBadge adds a badge once; awarding an already-held badge is a no-op.
func (s *Service) AwardBadge(ctx context.Context, uid, badge string) (*Profile, error) {
	if badge == "" {
		return nil, fmt.Errorf("%w: badge is required", ErrBadRequest)
	}
	current, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	for _, b := range current.Badges {
		if b == badge {
			return current, nil
		}
	}
	row, err := s.client.Update(ctx, resourceProfiles, current.ID, resource.Row{
		"badges":     append(current.Badges, badge),
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("award badge: %w", err)
	}
	p := fromRow(row)
	return &p, nil
}
