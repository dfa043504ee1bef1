package resource

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryClient is an in-memory Client used by tests and local development.
// Rows keep insertion order per resource.
type MemoryClient struct {
	mu     sync.Mutex
	tables map[string][]Row
	subs   []*memorySub

	// FailNext, when set, makes the next call touching that resource fail
	// with the given error. Test hook.
	failures map[string]error
}

type memorySub struct {
	resource string
	filters  []Filter
	onInsert func(Row)
	stopped  bool
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		tables:   make(map[string][]Row),
		failures: make(map[string]error),
	}
}

// FailNext makes the next operation on resource return err.
func (c *MemoryClient) FailNext(resource string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[resource] = err
}

// Seed inserts rows directly, bypassing failure hooks and subscriptions.
func (c *MemoryClient) Seed(resource string, rows ...Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, row := range rows {
		c.tables[resource] = append(c.tables[resource], cloneRow(row))
	}
}

func (c *MemoryClient) takeFailure(resource string) error {
	if err, ok := c.failures[resource]; ok {
		delete(c.failures, resource)
		return err
	}
	return nil
}

func cloneRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

func (c *MemoryClient) Select(ctx context.Context, resource string, filters []Filter, orders ...Order) ([]Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.takeFailure(resource); err != nil {
		return nil, err
	}

	var rows []Row
	for _, row := range c.tables[resource] {
		if Matches(row, filters) {
			rows = append(rows, cloneRow(row))
		}
	}
	for i := len(orders) - 1; i >= 0; i-- {
		o := orders[i]
		sort.SliceStable(rows, func(a, b int) bool {
			less := lessValue(rows[a][o.Field], rows[b][o.Field])
			if o.Desc {
				return !less && !equalValue(rows[a][o.Field], rows[b][o.Field])
			}
			return less
		})
	}
	return rows, nil
}

func (c *MemoryClient) Insert(ctx context.Context, resource string, row Row) (Row, error) {
	c.mu.Lock()
	if err := c.takeFailure(resource); err != nil {
		c.mu.Unlock()
		return nil, err
	}

	stored := cloneRow(row)
	if stored.ID() == "" {
		stored["id"] = uuid.NewString()
	}
	c.tables[resource] = append(c.tables[resource], stored)

	var notify []*memorySub
	for _, sub := range c.subs {
		if !sub.stopped && sub.resource == resource && Matches(stored, sub.filters) {
			notify = append(notify, sub)
		}
	}
	out := cloneRow(stored)
	c.mu.Unlock()

	for _, sub := range notify {
		sub.onInsert(cloneRow(stored))
	}
	return out, nil
}

func (c *MemoryClient) Update(ctx context.Context, resource string, id string, patch Row) (Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.takeFailure(resource); err != nil {
		return nil, err
	}

	for _, row := range c.tables[resource] {
		if row.ID() != id {
			continue
		}
		for k, v := range patch {
			if k == "id" {
				continue
			}
			row[k] = v
		}
		return cloneRow(row), nil
	}
	return nil, ErrNotFound
}

func (c *MemoryClient) Delete(ctx context.Context, resource string, id string) error {
	return c.DeleteWhere(ctx, resource, Eq("id", id))
}

func (c *MemoryClient) DeleteWhere(ctx context.Context, resource string, filters ...Filter) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.takeFailure(resource); err != nil {
		return err
	}

	kept := c.tables[resource][:0]
	for _, row := range c.tables[resource] {
		if !Matches(row, filters) {
			kept = append(kept, row)
		}
	}
	c.tables[resource] = kept
	return nil
}

func (c *MemoryClient) Upsert(ctx context.Context, resource string, row Row, conflictKeys ...string) (Row, error) {
	c.mu.Lock()
	if err := c.takeFailure(resource); err != nil {
		c.mu.Unlock()
		return nil, err
	}

	if len(conflictKeys) > 0 {
		filters := make([]Filter, 0, len(conflictKeys))
		for _, k := range conflictKeys {
			filters = append(filters, Eq(k, row[k]))
		}
		for _, existing := range c.tables[resource] {
			if !Matches(existing, filters) {
				continue
			}
			for k, v := range row {
				if k == "id" {
					continue
				}
				existing[k] = v
			}
			out := cloneRow(existing)
			c.mu.Unlock()
			return out, nil
		}
	}
	c.mu.Unlock()
	return c.Insert(ctx, resource, row)
}

func (c *MemoryClient) Subscribe(ctx context.Context, resource string, filters []Filter, onInsert func(Row)) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub := &memorySub{resource: resource, filters: filters, onInsert: onInsert}
	c.subs = append(c.subs, sub)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		sub.stopped = true
	}, nil
}

func lessValue(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, _ := b.(string)
		return av < bv
	case int:
		bv, _ := b.(int)
		return av < bv
	case int64:
		bv, _ := b.(int64)
		return av < bv
	case float64:
		bv, _ := b.(float64)
		return av < bv
	case bool:
		bv, _ := b.(bool)
		return !av && bv
	case time.Time:
		bv, _ := b.(time.Time)
		return av.Before(bv)
	}
	return false
}

func equalValue(a, b any) bool {
	return !lessValue(a, b) && !lessValue(b, a)
}
