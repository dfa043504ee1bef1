package store_test

import (
	"context"
	"errors"
	"testing"

	"association-portal/backend/internal/models"
	"association-portal/backend/internal/resource"
	"association-portal/backend/internal/store"
)

func TestRegisterForEvent_AddsPendingAttendee(t *testing.T) {
	s, mc := newTestStore(t)
	seedEvent(mc, "e1", "event")
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	att, err := s.RegisterForEvent(context.Background(), store.KindEvents, "e1",
		store.RegistrationInput{Name: "A", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if att.Status != models.AttendeePending {
		t.Fatalf("status = %s, want pending", att.Status)
	}
	if att.ID == "" {
		t.Fatal("attendee has no id")
	}

	it, _ := s.EventItem("e1")
	if len(it.Attendees) != 1 || it.Attendees[0].Email != "a@x.com" {
		t.Fatalf("attendees = %v", it.Attendees)
	}
}

func TestRegisterForEvent_IdempotentUpsert(t *testing.T) {
	s, mc := newTestStore(t)
	seedEvent(mc, "e1", "event")
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, err := s.RegisterForEvent(context.Background(), store.KindEvents, "e1",
		store.RegistrationInput{Name: "A", Email: "a@x.com"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	// Simulate an admin decision, then a re-registration.
	it, _ := s.EventItem("e1")
	if err := s.UpdateAttendanceStatus(context.Background(), it.Attendees[0].ID, "rejected"); err != nil {
		t.Fatalf("update status: %v", err)
	}

	if _, err := s.RegisterForEvent(context.Background(), store.KindEvents, "e1",
		store.RegistrationInput{Name: "A", Email: "a@x.com"}); err != nil {
		t.Fatalf("re-register: %v", err)
	}

	it, _ = s.EventItem("e1")
	if len(it.Attendees) != 1 {
		t.Fatalf("attendees = %d, want 1 (no duplicate)", len(it.Attendees))
	}
	if it.Attendees[0].Status != models.AttendeePending {
		t.Fatalf("status = %s, want reset to pending", it.Attendees[0].Status)
	}

	rows, _ := mc.Select(context.Background(), "attendees", nil)
	if len(rows) != 1 {
		t.Fatalf("remote rows = %d, want 1", len(rows))
	}
}

func TestRegisterForEvent_FindsItemInAnyCategory(t *testing.T) {
	// The caller says "events" but the item lives under programs.
	s, mc := newTestStore(t)
	seedEvent(mc, "p1", "program")
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, err := s.RegisterForEvent(context.Background(), store.KindEvents, "p1",
		store.RegistrationInput{Name: "A", Email: "a@x.com"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	progs := s.Programs()
	if len(progs) != 1 || len(progs[0].Attendees) != 1 {
		t.Fatalf("programs = %v, want the registration visible there", progs)
	}
}

func TestRegisterForEvent_Validation(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.RegisterForEvent(context.Background(), store.KindEvents, "e1",
		store.RegistrationInput{Name: "", Email: ""})
	if !errors.Is(err, store.ErrBadRequest) {
		t.Fatalf("err = %v, want ErrBadRequest", err)
	}
}

func TestCancelRegistration_RemovesEmailEverywhere(t *testing.T) {
	s, mc := newTestStore(t)
	seedEvent(mc, "e1", "event")
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := s.RegisterForEvent(context.Background(), store.KindEvents, "e1",
		store.RegistrationInput{Name: "A", Email: "A@X.com"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Email matching is case-insensitive via normalization.
	if err := s.CancelRegistration(context.Background(), store.KindEvents, "e1", "a@x.com"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	it, _ := s.EventItem("e1")
	if len(it.Attendees) != 0 {
		t.Fatalf("attendees = %v, want none", it.Attendees)
	}
	rows, _ := mc.Select(context.Background(), "attendees", nil)
	if len(rows) != 0 {
		t.Fatalf("remote rows = %d, want 0", len(rows))
	}
}

func TestUpdateAttendanceStatus_PatchesOnlyThatAttendee(t *testing.T) {
	s, mc := newTestStore(t)
	seedEvent(mc, "e1", "event")
	mc.Seed("attendees",
		resource.Row{"id": "a1", "event_id": "e1", "name": "A", "email": "a@x.com", "status": "pending"},
		resource.Row{"id": "a2", "event_id": "e1", "name": "B", "email": "b@x.com", "status": "confirmed"},
	)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	before, _ := s.EventItem("e1")
	if got := before.ActiveAttendeeCount(); got != 2 {
		t.Fatalf("active count = %d, want 2", got)
	}

	if err := s.UpdateAttendanceStatus(context.Background(), "a1", "rejected"); err != nil {
		t.Fatalf("update status: %v", err)
	}

	after, _ := s.EventItem("e1")
	if got := after.ActiveAttendeeCount(); got != 1 {
		t.Fatalf("active count = %d, want exactly one fewer", got)
	}
	for _, a := range after.Attendees {
		switch a.ID {
		case "a1":
			if a.Status != models.AttendeeRejected {
				t.Fatalf("a1 status = %s", a.Status)
			}
		case "a2":
			if a.Status != models.AttendeeConfirmed {
				t.Fatalf("a2 status changed to %s", a.Status)
			}
		}
	}
	// Rejected attendees no longer count as joined but stay addressable.
	if after.HasActiveAttendee("a@x.com") {
		t.Fatal("rejected attendee still counts as joined")
	}
	if _, _, ok := s.FindAttendee("a1"); !ok {
		t.Fatal("rejected attendee no longer addressable")
	}
}

func TestUpdateAttendanceStatus_RejectsUnknownStatus(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.UpdateAttendanceStatus(context.Background(), "a1", "maybe")
	if !errors.Is(err, store.ErrBadRequest) {
		t.Fatalf("err = %v, want ErrBadRequest", err)
	}
}

func TestRegisterThenCancel_EndToEnd(t *testing.T) {
	s, mc := newTestStore(t)
	seedEvent(mc, "e1", "event")
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, err := s.RegisterForEvent(context.Background(), store.KindEvents, "e1",
		store.RegistrationInput{Name: "A", Email: "a@x.com"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	it, _ := s.EventItem("e1")
	if len(it.Attendees) != 1 {
		t.Fatalf("attendees = %d, want 1", len(it.Attendees))
	}

	if err := s.CancelRegistration(context.Background(), store.KindEvents, "e1", "a@x.com"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	it, _ = s.EventItem("e1")
	if len(it.Attendees) != 0 {
		t.Fatalf("attendees = %d, want 0", len(it.Attendees))
	}
}
