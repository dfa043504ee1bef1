package models_test

import (
	"testing"
	"time"

	"association-portal/backend/internal/models"
	"association-portal/backend/internal/resource"
)

func TestParseCategory_UnknownDefaultsToProgram(t *testing.T) {
	cases := map[string]models.Category{
		"event":   models.CategoryEvent,
		"project": models.CategoryProject,
		"program": models.CategoryProgram,
		"":        models.CategoryProgram,
		"EVENT":   models.CategoryProgram,
		"weird":   models.CategoryProgram,
	}
	for in, want := range cases {
		if got := models.ParseCategory(in); got != want {
			t.Errorf("ParseCategory(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestItemFromRow(t *testing.T) {
	it := models.ItemFromRow(resource.Row{
		"id":        "e1",
		"title":     map[string]any{"en": "Open day", "ar": "يوم مفتوح"},
		"date":      "2026-03-01T10:00:00Z",
		"end_date":  "2026-03-01T14:00:00Z",
		"is_pinned": true,
		"category":  "event",
	})
	if it.ID != "e1" {
		t.Fatalf("id = %q", it.ID)
	}
	if got := it.Title.Resolve("ar"); got != "يوم مفتوح" {
		t.Fatalf("title(ar) = %q", got)
	}
	if it.Date.IsZero() || it.EndDate == nil {
		t.Fatalf("dates not decoded: %v / %v", it.Date, it.EndDate)
	}
	if !it.IsPinned || it.Category != models.CategoryEvent {
		t.Fatalf("flags = pinned %v, category %s", it.IsPinned, it.Category)
	}
	if it.Attendees == nil {
		t.Fatal("attendees should decode to an empty slice, not nil")
	}
}

func TestItemFromRow_NoCategoryField(t *testing.T) {
	it := models.ItemFromRow(resource.Row{"id": "n1", "title": "Plain news"})
	if it.Category != "" {
		t.Fatalf("category = %q, news rows carry none", it.Category)
	}
	if got := it.Title.Resolve("fr"); got != "Plain news" {
		t.Fatalf("plain title = %q", got)
	}
}

func TestAttendeeFromRow_InvalidStatusFallsBackToPending(t *testing.T) {
	a := models.AttendeeFromRow(resource.Row{
		"id": "a1", "name": "A", "email": "a@x.com", "status": "approved",
	})
	if a.Status != models.AttendeePending {
		t.Fatalf("status = %s, want pending", a.Status)
	}
}

func TestActiveAttendeeCount(t *testing.T) {
	it := models.Item{Attendees: []models.Attendee{
		{Email: "a@x.com", Status: models.AttendeePending},
		{Email: "b@x.com", Status: models.AttendeeConfirmed},
		{Email: "c@x.com", Status: models.AttendeeRejected},
	}}
	if got := it.ActiveAttendeeCount(); got != 2 {
		t.Fatalf("count = %d, want 2", got)
	}
	if !it.HasActiveAttendee("a@x.com") {
		t.Fatal("pending attendee should count as active")
	}
	if it.HasActiveAttendee("c@x.com") {
		t.Fatal("rejected attendee should not count as active")
	}
	if it.HasActiveAttendee("missing@x.com") {
		t.Fatal("unknown email reported active")
	}
}

func TestRowTimeAcceptsTimeAndString(t *testing.T) {
	want := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	fromTime := models.ItemFromRow(resource.Row{"id": "x", "date": want})
	fromString := models.ItemFromRow(resource.Row{"id": "x", "date": "2026-03-01T10:00:00Z"})
	if !fromTime.Date.Equal(want) || !fromString.Date.Equal(want) {
		t.Fatalf("dates = %v / %v, want %v", fromTime.Date, fromString.Date, want)
	}
}
