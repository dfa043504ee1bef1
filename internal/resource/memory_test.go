package resource_test

import (
	"context"
	"errors"
	"testing"

	"association-portal/backend/internal/resource"
)

func TestMemoryClient_InsertSelect(t *testing.T) {
	mc := resource.NewMemoryClient()
	ctx := context.Background()

	row, err := mc.Insert(ctx, "news", resource.Row{"title": "hello"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if row.ID() == "" {
		t.Fatal("insert did not assign an id")
	}

	rows, err := mc.Select(ctx, "news", nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 1 || rows[0]["title"] != "hello" {
		t.Fatalf("select = %v", rows)
	}
}

func TestMemoryClient_SelectFilterAndOrder(t *testing.T) {
	mc := resource.NewMemoryClient()
	ctx := context.Background()
	mc.Seed("events",
		resource.Row{"id": "a", "category": "event", "date": "2026-01-01"},
		resource.Row{"id": "b", "category": "program", "date": "2026-03-01"},
		resource.Row{"id": "c", "category": "event", "date": "2026-02-01"},
	)

	rows, err := mc.Select(ctx, "events",
		[]resource.Filter{resource.Eq("category", "event")},
		resource.Order{Field: "date", Desc: true})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].ID() != "c" || rows[1].ID() != "a" {
		t.Fatalf("order = %s,%s, want c,a", rows[0].ID(), rows[1].ID())
	}
}

func TestMemoryClient_UpsertConflictKeys(t *testing.T) {
	mc := resource.NewMemoryClient()
	ctx := context.Background()

	first, err := mc.Upsert(ctx, "attendees",
		resource.Row{"event_id": "e1", "email": "a@x.com", "status": "pending"},
		"event_id", "email")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	second, err := mc.Upsert(ctx, "attendees",
		resource.Row{"event_id": "e1", "email": "a@x.com", "status": "confirmed"},
		"event_id", "email")
	if err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if first.ID() != second.ID() {
		t.Fatalf("upsert created a duplicate: %s vs %s", first.ID(), second.ID())
	}

	rows, _ := mc.Select(ctx, "attendees", nil)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0]["status"] != "confirmed" {
		t.Fatalf("status = %v, want confirmed", rows[0]["status"])
	}

	// Different conflict-key values insert a new row.
	if _, err := mc.Upsert(ctx, "attendees",
		resource.Row{"event_id": "e1", "email": "b@x.com", "status": "pending"},
		"event_id", "email"); err != nil {
		t.Fatalf("upsert other email: %v", err)
	}
	rows, _ = mc.Select(ctx, "attendees", nil)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
}

func TestMemoryClient_DeleteWhere(t *testing.T) {
	mc := resource.NewMemoryClient()
	ctx := context.Background()
	mc.Seed("attendees",
		resource.Row{"id": "1", "event_id": "e1", "email": "a@x.com"},
		resource.Row{"id": "2", "event_id": "e1", "email": "b@x.com"},
		resource.Row{"id": "3", "event_id": "e2", "email": "a@x.com"},
	)

	err := mc.DeleteWhere(ctx, "attendees",
		resource.Eq("event_id", "e1"), resource.Eq("email", "a@x.com"))
	if err != nil {
		t.Fatalf("delete where: %v", err)
	}

	rows, _ := mc.Select(ctx, "attendees", nil)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	for _, row := range rows {
		if row.ID() == "1" {
			t.Fatal("matched row survived DeleteWhere")
		}
	}
}

func TestMemoryClient_UpdateMissing(t *testing.T) {
	mc := resource.NewMemoryClient()
	_, err := mc.Update(context.Background(), "news", "nope", resource.Row{"title": "x"})
	if !errors.Is(err, resource.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryClient_Subscribe(t *testing.T) {
	mc := resource.NewMemoryClient()
	ctx := context.Background()

	var got []resource.Row
	stop, err := mc.Subscribe(ctx, "notifications",
		[]resource.Filter{resource.Eq("user_id", "u1")},
		func(row resource.Row) { got = append(got, row) })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	_, _ = mc.Insert(ctx, "notifications", resource.Row{"user_id": "u1", "title": "hi"})
	_, _ = mc.Insert(ctx, "notifications", resource.Row{"user_id": "u2", "title": "other"})

	if len(got) != 1 || got[0]["title"] != "hi" {
		t.Fatalf("subscriber saw %v, want one matching row", got)
	}

	stop()
	_, _ = mc.Insert(ctx, "notifications", resource.Row{"user_id": "u1", "title": "late"})
	if len(got) != 1 {
		t.Fatal("subscriber invoked after stop")
	}
}

func TestMemoryClient_FailNext(t *testing.T) {
	mc := resource.NewMemoryClient()
	boom := errors.New("boom")
	mc.FailNext("news", boom)

	if _, err := mc.Select(context.Background(), "news", nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want injected failure", err)
	}
	// Failure is one-shot.
	if _, err := mc.Select(context.Background(), "news", nil); err != nil {
		t.Fatalf("second select: %v", err)
	}
}
