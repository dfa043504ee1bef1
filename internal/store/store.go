// Package store holds the synchronized in-memory mirror of the remote
// public collections. One Store is constructed at startup and shared by
// reference; every mutation talks to the remote resource first and commits
// the mirror only once the remote call has succeeded, so a failed operation
// leaves local state untouched.
package store

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"association-portal/backend/internal/models"
	"association-portal/backend/internal/resource"
)

const (
	resourceNews         = "news"
	resourceEvents       = "events"
	resourceAttendees    = "attendees"
	resourceTestimonials = "testimonials"
	resourcePartners     = "partners"
	resourceBranches     = "branches"
)

// Store mirrors the remote collections. Events-table rows are kept as one
// normalized collection keyed by id; the program/event/project views are
// derived on read from the category field, so operations never have to
// guess which partition currently holds an item.
type Store struct {
	client resource.Client
	logger *zap.Logger

	mu           sync.RWMutex
	news         []models.Item
	events       map[string]*models.Item
	eventOrder   []string
	testimonials []models.Testimonial
	partners     []models.Partner
	branches     []models.Branch
}

func New(client resource.Client, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		client: client,
		logger: logger,
		events: make(map[string]*models.Item),
	}
}

// Load fetches news, events (with their attendee join), testimonials,
// partners and branches concurrently. Fetches that succeed are committed
// even when a sibling fails; the joined error reports every failure.
func (s *Store) Load(ctx context.Context) error {
	var (
		wg sync.WaitGroup

		news       []models.Item
		items      []models.Item
		quotes     []models.Testimonial
		partners   []models.Partner
		branches   []models.Branch
		newsErr    error
		eventsErr  error
		quotesErr  error
		partnerErr error
		branchErr  error
	)

	wg.Add(5)
	go func() {
		defer wg.Done()
		news, newsErr = s.fetchNews(ctx)
	}()
	go func() {
		defer wg.Done()
		items, eventsErr = s.fetchEvents(ctx)
	}()
	go func() {
		defer wg.Done()
		quotes, quotesErr = s.fetchTestimonials(ctx)
	}()
	go func() {
		defer wg.Done()
		partners, partnerErr = s.fetchPartners(ctx)
	}()
	go func() {
		defer wg.Done()
		branches, branchErr = s.fetchBranches(ctx)
	}()
	wg.Wait()

	s.mu.Lock()
	if newsErr == nil {
		s.news = news
	}
	if eventsErr == nil {
		s.events = make(map[string]*models.Item, len(items))
		s.eventOrder = s.eventOrder[:0]
		for i := range items {
			it := items[i]
			s.events[it.ID] = &it
			s.eventOrder = append(s.eventOrder, it.ID)
		}
	}
	if quotesErr == nil {
		s.testimonials = quotes
	}
	if partnerErr == nil {
		s.partners = partners
	}
	if branchErr == nil {
		s.branches = branches
	}
	s.mu.Unlock()

	return errors.Join(newsErr, eventsErr, quotesErr, partnerErr, branchErr)
}

func (s *Store) fetchNews(ctx context.Context) ([]models.Item, error) {
	rows, err := s.client.Select(ctx, resourceNews, nil, resource.Order{Field: "date", Desc: true})
	if err != nil {
		return nil, err
	}
	out := make([]models.Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.ItemFromRow(row))
	}
	return out, nil
}

// fetchEvents reads the events table and joins attendee rows onto each
// item. If the attendee query fails the events are still returned with
// empty attendee lists, mirroring the join-free fallback query.
func (s *Store) fetchEvents(ctx context.Context) ([]models.Item, error) {
	rows, err := s.client.Select(ctx, resourceEvents, nil, resource.Order{Field: "date", Desc: true})
	if err != nil {
		return nil, err
	}

	out := make([]models.Item, 0, len(rows))
	for _, row := range rows {
		it := models.ItemFromRow(row)
		it.Category = models.ParseCategory(rowCategory(row))
		out = append(out, it)
	}

	attRows, err := s.client.Select(ctx, resourceAttendees, nil)
	if err != nil {
		s.logger.Warn("attendee join failed, loading events without attendees", zap.Error(err))
		return out, nil
	}

	byEvent := make(map[string][]models.Attendee)
	for _, row := range attRows {
		eventID, _ := row["event_id"].(string)
		if eventID == "" {
			continue
		}
		byEvent[eventID] = append(byEvent[eventID], models.AttendeeFromRow(row))
	}
	for i := range out {
		if atts, ok := byEvent[out[i].ID]; ok {
			out[i].Attendees = atts
		}
	}
	return out, nil
}

func rowCategory(row resource.Row) string {
	c, _ := row["category"].(string)
	return c
}

func (s *Store) fetchTestimonials(ctx context.Context) ([]models.Testimonial, error) {
	rows, err := s.client.Select(ctx, resourceTestimonials,
		[]resource.Filter{resource.Eq("is_approved", true)},
		resource.Order{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}
	out := make([]models.Testimonial, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.TestimonialFromRow(row))
	}
	return out, nil
}

func (s *Store) fetchPartners(ctx context.Context) ([]models.Partner, error) {
	rows, err := s.client.Select(ctx, resourcePartners, nil)
	if err != nil {
		return nil, err
	}
	out := make([]models.Partner, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.PartnerFromRow(row))
	}
	return out, nil
}

// News returns the mirrored news list, newest first.
func (s *Store) News() []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Item, len(s.news))
	for i := range s.news {
		out[i] = copyItem(s.news[i])
	}
	return out
}

// Programs, Events and Projects are category-filtered views over the one
// normalized events-table collection.
func (s *Store) Programs() []models.Item { return s.eventsView(models.CategoryProgram) }
func (s *Store) Events() []models.Item   { return s.eventsView(models.CategoryEvent) }
func (s *Store) Projects() []models.Item { return s.eventsView(models.CategoryProject) }

func (s *Store) eventsView(cat models.Category) []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Item
	for _, id := range s.eventOrder {
		it := s.events[id]
		if it != nil && it.Category == cat {
			out = append(out, copyItem(*it))
		}
	}
	return out
}

// EventItem looks up an events-table item by id, whichever category it
// currently carries.
func (s *Store) EventItem(id string) (models.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.events[id]
	if !ok {
		return models.Item{}, false
	}
	return copyItem(*it), true
}

func (s *Store) fetchBranches(ctx context.Context) ([]models.Branch, error) {
	rows, err := s.client.Select(ctx, resourceBranches, nil)
	if err != nil {
		return nil, err
	}
	out := make([]models.Branch, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.BranchFromRow(row))
	}
	return out, nil
}

func (s *Store) Testimonials() []models.Testimonial {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Testimonial, len(s.testimonials))
	copy(out, s.testimonials)
	return out
}

func (s *Store) Partners() []models.Partner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Partner, len(s.partners))
	copy(out, s.partners)
	return out
}

func (s *Store) Branches() []models.Branch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Branch, len(s.branches))
	copy(out, s.branches)
	return out
}

func copyItem(it models.Item) models.Item {
	atts := make([]models.Attendee, len(it.Attendees))
	copy(atts, it.Attendees)
	it.Attendees = atts
	return it
}
