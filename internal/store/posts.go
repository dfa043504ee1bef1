package store

import (
	"context"
	"fmt"

	"association-portal/backend/internal/models"
	"association-portal/backend/internal/resource"
)

// Kind names a logical list the site works with. The three events-table
// kinds all map to the same physical resource, tagged by category.
type Kind string

const (
	KindNews         Kind = "news"
	KindPrograms     Kind = "programs"
	KindEvents       Kind = "events"
	KindProjects     Kind = "projects"
	KindTestimonials Kind = "testimonials"
	KindPartners     Kind = "partners"
	KindBranches     Kind = "branches"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindNews, KindPrograms, KindEvents, KindProjects, KindTestimonials, KindPartners, KindBranches:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrBadRequest, s)
}

// EventsTable reports whether the kind lives in the shared events resource.
func (k Kind) EventsTable() bool {
	return k == KindPrograms || k == KindEvents || k == KindProjects
}

func (k Kind) Resource() string {
	if k.EventsTable() {
		return resourceEvents
	}
	return string(k)
}

// Category is the discriminant tag derived from the logical kind.
func (k Kind) Category() models.Category {
	switch k {
	case KindEvents:
		return models.CategoryEvent
	case KindProjects:
		return models.CategoryProject
	}
	return models.CategoryProgram
}

// AddPost inserts a row into the kind's resource and, on success, prepends
// the returned record to the mirrored list. Events-table inserts carry the
// category tag derived from the kind and start with an empty attendee list.
func (s *Store) AddPost(ctx context.Context, kind Kind, data resource.Row) (resource.Row, error) {
	row := make(resource.Row, len(data)+1)
	for k, v := range data {
		row[k] = v
	}
	if kind.EventsTable() {
		row["category"] = string(kind.Category())
	}

	inserted, err := s.client.Insert(ctx, kind.Resource(), row)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case kind == KindNews:
		s.news = append([]models.Item{models.ItemFromRow(inserted)}, s.news...)
	case kind.EventsTable():
		it := models.ItemFromRow(inserted)
		it.Category = models.ParseCategory(rowCategory(inserted))
		s.events[it.ID] = &it
		s.eventOrder = append([]string{it.ID}, s.eventOrder...)
	case kind == KindTestimonials:
		s.testimonials = append([]models.Testimonial{models.TestimonialFromRow(inserted)}, s.testimonials...)
	case kind == KindPartners:
		s.partners = append([]models.Partner{models.PartnerFromRow(inserted)}, s.partners...)
	case kind == KindBranches:
		s.branches = append([]models.Branch{models.BranchFromRow(inserted)}, s.branches...)
	}
	return inserted, nil
}

// UpdatePost patches the remote row by id and merges the returned record
// over the mirrored one, preserving fields the patch did not carry
// (notably attendees).
func (s *Store) UpdatePost(ctx context.Context, kind Kind, id string, patch resource.Row) (resource.Row, error) {
	updated, err := s.client.Update(ctx, kind.Resource(), id, patch)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case kind == KindNews:
		for i := range s.news {
			if s.news[i].ID == id {
				s.news[i] = models.ItemFromRow(updated)
				break
			}
		}
	case kind.EventsTable():
		if old, ok := s.events[id]; ok {
			it := models.ItemFromRow(updated)
			it.Category = models.ParseCategory(rowCategory(updated))
			it.Attendees = old.Attendees
			s.events[id] = &it
		}
	case kind == KindTestimonials:
		for i := range s.testimonials {
			if s.testimonials[i].ID == id {
				s.testimonials[i] = models.TestimonialFromRow(updated)
				break
			}
		}
	case kind == KindPartners:
		for i := range s.partners {
			if s.partners[i].ID == id {
				s.partners[i] = models.PartnerFromRow(updated)
				break
			}
		}
	case kind == KindBranches:
		for i := range s.branches {
			if s.branches[i].ID == id {
				s.branches[i] = models.BranchFromRow(updated)
				break
			}
		}
	}
	return updated, nil
}

// DeletePost removes the row remotely and drops it from the mirror. For
// events-table kinds the id is removed whatever category currently holds
// it; the caller's kind may be stale.
func (s *Store) DeletePost(ctx context.Context, kind Kind, id string) error {
	if err := s.client.Delete(ctx, kind.Resource(), id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case kind == KindNews:
		s.news = dropItem(s.news, id)
	case kind.EventsTable():
		delete(s.events, id)
		for i, eid := range s.eventOrder {
			if eid == id {
				s.eventOrder = append(s.eventOrder[:i], s.eventOrder[i+1:]...)
				break
			}
		}
	case kind == KindTestimonials:
		kept := s.testimonials[:0]
		for _, t := range s.testimonials {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		s.testimonials = kept
	case kind == KindPartners:
		kept := s.partners[:0]
		for _, p := range s.partners {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		s.partners = kept
	case kind == KindBranches:
		kept := s.branches[:0]
		for _, b := range s.branches {
			if b.ID != id {
				kept = append(kept, b)
			}
		}
		s.branches = kept
	}
	return nil
}

// TogglePin optimistically flips the pin flag in the mirror, then confirms
// remotely. A remote failure rolls the flip back before returning.
func (s *Store) TogglePin(ctx context.Context, kind Kind, id string, current bool) error {
	if kind != KindNews && !kind.EventsTable() {
		return fmt.Errorf("%w: kind %q is not pinnable", ErrBadRequest, kind)
	}

	if !s.setPinned(kind, id, !current) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}

	if _, err := s.client.Update(ctx, kind.Resource(), id, resource.Row{"is_pinned": !current}); err != nil {
		s.setPinned(kind, id, current)
		return err
	}
	return nil
}

func (s *Store) setPinned(kind Kind, id string, pinned bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == KindNews {
		for i := range s.news {
			if s.news[i].ID == id {
				s.news[i].IsPinned = pinned
				return true
			}
		}
		return false
	}
	if it, ok := s.events[id]; ok {
		it.IsPinned = pinned
		return true
	}
	return false
}

func dropItem(items []models.Item, id string) []models.Item {
	kept := items[:0]
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	return kept
}
