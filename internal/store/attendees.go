package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"association-portal/backend/internal/models"
	"association-portal/backend/internal/resource"
	"association-portal/backend/internal/utils"
)

// RegistrationInput identifies the person registering for an event-like
// item. UserID is set for signed-in members, empty for guests.
type RegistrationInput struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	UserID string `json:"user_id,omitempty"`
}

// RegisterForEvent upserts a registration keyed on (event_id, email),
// (re)setting its status to pending. Registering again with the same email
// never duplicates the attendee. The mirror is updated with the server's
// row id when one comes back, otherwise with a generated placeholder that
// the next full load replaces.
func (s *Store) RegisterForEvent(ctx context.Context, kind Kind, eventID string, in RegistrationInput) (models.Attendee, error) {
	in.Name = utils.TrimMax(in.Name, 200)
	in.Email = utils.NormalizeEmail(in.Email)
	if eventID == "" || in.Name == "" || in.Email == "" {
		return models.Attendee{}, fmt.Errorf("%w: eventId, name and email are required", ErrBadRequest)
	}

	row := resource.Row{
		"event_id": eventID,
		"name":     in.Name,
		"email":    in.Email,
		"status":   string(models.AttendeePending),
	}
	if in.UserID != "" {
		row["user_id"] = in.UserID
	}

	returned, err := s.client.Upsert(ctx, resourceAttendees, row, "event_id", "email")
	if err != nil {
		return models.Attendee{}, err
	}

	att := models.Attendee{
		ID:     returned.ID(),
		Name:   in.Name,
		Email:  in.Email,
		UserID: in.UserID,
		Status: models.AttendeePending,
	}
	if att.ID == "" {
		att.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.events[eventID]; ok {
		kept := it.Attendees[:0]
		for _, a := range it.Attendees {
			if a.Email != in.Email {
				kept = append(kept, a)
			}
		}
		it.Attendees = append(kept, att)
	}
	return att, nil
}

// CancelRegistration deletes the (event_id, email) registration remotely
// and drops that email from the owning item's attendee list.
func (s *Store) CancelRegistration(ctx context.Context, kind Kind, eventID, email string) error {
	email = utils.NormalizeEmail(email)
	if eventID == "" || email == "" {
		return fmt.Errorf("%w: eventId and email are required", ErrBadRequest)
	}

	err := s.client.DeleteWhere(ctx, resourceAttendees,
		resource.Eq("event_id", eventID),
		resource.Eq("email", email))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.events[eventID]; ok {
		kept := it.Attendees[:0]
		for _, a := range it.Attendees {
			if a.Email != email {
				kept = append(kept, a)
			}
		}
		it.Attendees = kept
	}
	return nil
}

// FindAttendee locates a registration by id together with its owning item.
func (s *Store) FindAttendee(attendeeID string) (models.Attendee, models.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.events {
		for _, a := range it.Attendees {
			if a.ID == attendeeID {
				return a, *it, true
			}
		}
	}
	return models.Attendee{}, models.Item{}, false
}

// UpdateAttendanceStatus patches a single attendee's status by id,
// wherever its owning item currently lives.
func (s *Store) UpdateAttendanceStatus(ctx context.Context, attendeeID, status string) error {
	if attendeeID == "" {
		return fmt.Errorf("%w: attendeeId is required", ErrBadRequest)
	}
	if !models.IsValidAttendeeStatus(status) {
		return fmt.Errorf("%w: status must be one of: pending, confirmed, rejected", ErrBadRequest)
	}

	if _, err := s.client.Update(ctx, resourceAttendees, attendeeID, resource.Row{"status": status}); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.events {
		for i := range it.Attendees {
			if it.Attendees[i].ID == attendeeID {
				it.Attendees[i].Status = models.AttendeeStatus(status)
				return nil
			}
		}
	}
	return nil
}
