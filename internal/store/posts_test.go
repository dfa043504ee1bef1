package store_test

import (
	"context"
	"errors"
	"testing"

	"association-portal/backend/internal/resource"
	"association-portal/backend/internal/store"
)

func TestAddPost_NewEventAtHeadWithEmptyAttendees(t *testing.T) {
	s, mc := newTestStore(t)
	seedEvent(mc, "old", "event")
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	row, err := s.AddPost(context.Background(), store.KindEvents, resource.Row{
		"title": map[string]any{"en": "New event"},
		"date":  "2026-07-01",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if row["category"] != "event" {
		t.Fatalf("category = %v, want derived from kind", row["category"])
	}

	events := s.Events()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].ID != row.ID() {
		t.Fatalf("new item at index %v, want 0", events[0].ID)
	}
	if events[0].Attendees == nil || len(events[0].Attendees) != 0 {
		t.Fatalf("attendees = %v, want empty slice", events[0].Attendees)
	}
}

func TestAddPost_KindMapsToSharedResource(t *testing.T) {
	s, mc := newTestStore(t)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, err := s.AddPost(context.Background(), store.KindProjects, resource.Row{
		"title": "A project",
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	rows, _ := mc.Select(context.Background(), "events", nil)
	if len(rows) != 1 {
		t.Fatalf("projects should insert into the events resource, got %d rows", len(rows))
	}
	if len(s.Projects()) != 1 {
		t.Fatalf("projects view = %d, want 1", len(s.Projects()))
	}
}

func TestAddPost_RemoteFailureLeavesMirrorUntouched(t *testing.T) {
	s, mc := newTestStore(t)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	mc.FailNext("news", errors.New("insert refused"))

	if _, err := s.AddPost(context.Background(), store.KindNews, resource.Row{"title": "x"}); err == nil {
		t.Fatal("add should propagate the remote error")
	}
	if len(s.News()) != 0 {
		t.Fatal("failed add touched local state")
	}
}

func TestUpdatePost_PreservesAttendees(t *testing.T) {
	s, mc := newTestStore(t)
	seedEvent(mc, "e1", "event")
	mc.Seed("attendees",
		resource.Row{"id": "a1", "event_id": "e1", "name": "A", "email": "a@x.com", "status": "pending"})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, err := s.UpdatePost(context.Background(), store.KindEvents, "e1", resource.Row{
		"title": map[string]any{"en": "Renamed"},
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	it, _ := s.EventItem("e1")
	if got := it.Title.Resolve("en"); got != "Renamed" {
		t.Fatalf("title = %q", got)
	}
	if len(it.Attendees) != 1 {
		t.Fatalf("attendees = %d, update must not drop them", len(it.Attendees))
	}
}

func TestDeletePost_NewsOnlyTouchesNews(t *testing.T) {
	s, mc := newTestStore(t)
	mc.Seed("news", resource.Row{"id": "n1", "title": "headline"})
	seedEvent(mc, "e1", "event")
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := s.DeletePost(context.Background(), store.KindNews, "n1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(s.News()) != 0 {
		t.Fatal("news item survived delete")
	}
	if len(s.Events()) != 1 {
		t.Fatal("delete of a news id touched the events collection")
	}
}

func TestDeletePost_EventsKindsRemoveAcrossCategories(t *testing.T) {
	// The caller's kind may be stale: deleting as "events" must remove the
	// item even when it currently lives under programs.
	s, mc := newTestStore(t)
	seedEvent(mc, "p1", "program")
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := s.DeletePost(context.Background(), store.KindEvents, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(s.Programs())+len(s.Events())+len(s.Projects()) != 0 {
		t.Fatal("stale-kind delete left an orphaned entry")
	}
}

func TestTogglePin_Optimistic(t *testing.T) {
	s, mc := newTestStore(t)
	seedEvent(mc, "e1", "event")
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := s.TogglePin(context.Background(), store.KindEvents, "e1", false); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	it, _ := s.EventItem("e1")
	if !it.IsPinned {
		t.Fatal("pin flag not flipped")
	}

	rows, _ := mc.Select(context.Background(), "events", nil)
	if rows[0]["is_pinned"] != true {
		t.Fatal("remote row not updated")
	}
}

func TestTogglePin_RollsBackOnRemoteFailure(t *testing.T) {
	s, mc := newTestStore(t)
	seedEvent(mc, "e1", "event")
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	mc.FailNext("events", errors.New("update refused"))

	if err := s.TogglePin(context.Background(), store.KindEvents, "e1", false); err == nil {
		t.Fatal("toggle should report the remote error")
	}
	it, _ := s.EventItem("e1")
	if it.IsPinned {
		t.Fatal("optimistic flip not rolled back after remote failure")
	}
}

func TestParseKind(t *testing.T) {
	if _, err := store.ParseKind("events"); err != nil {
		t.Fatalf("events: %v", err)
	}
	if _, err := store.ParseKind("bogus"); err == nil {
		t.Fatal("bogus kind accepted")
	}
}
