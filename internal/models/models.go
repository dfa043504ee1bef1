package models

import (
	"time"

	"association-portal/backend/internal/localized"
	"association-portal/backend/internal/resource"
	"association-portal/backend/internal/utils"
)

// Category partitions the events table into the three logical groups the
// site presents. Rows with an unset or unknown category default to program.
type Category string

const (
	CategoryProgram Category = "program"
	CategoryEvent   Category = "event"
	CategoryProject Category = "project"
)

func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryEvent:
		return CategoryEvent
	case CategoryProject:
		return CategoryProject
	}
	return CategoryProgram
}

// AttendeeStatus is the approval state of a registration.
type AttendeeStatus string

const (
	AttendeePending   AttendeeStatus = "pending"
	AttendeeConfirmed AttendeeStatus = "confirmed"
	AttendeeRejected  AttendeeStatus = "rejected"
)

func IsValidAttendeeStatus(s string) bool {
	switch AttendeeStatus(s) {
	case AttendeePending, AttendeeConfirmed, AttendeeRejected:
		return true
	}
	return false
}

// Attendee is a registration record against an events-table item, unique
// per (event_id, email).
type Attendee struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Email  string         `json:"email"`
	UserID string         `json:"user_id,omitempty"`
	Status AttendeeStatus `json:"status"`
}

// Item is a news row or an events-table row (program/event/project).
// Attendees is always non-nil on loaded events-table items.
type Item struct {
	ID          string         `json:"id"`
	Title       localized.Text `json:"title"`
	Description localized.Text `json:"description"`
	Date        time.Time      `json:"date"`
	EndDate     *time.Time     `json:"end_date,omitempty"`
	ImageURL    string         `json:"image_url,omitempty"`
	Location    localized.Text `json:"location"`
	IsPinned    bool           `json:"is_pinned"`
	Category    Category       `json:"category,omitempty"`
	Attendees   []Attendee     `json:"attendees"`
}

// ActiveAttendeeCount counts participants, excluding rejected registrations.
func (it Item) ActiveAttendeeCount() int {
	n := 0
	for _, a := range it.Attendees {
		if a.Status != AttendeeRejected {
			n++
		}
	}
	return n
}

// HasActiveAttendee reports whether email holds a non-rejected registration.
func (it Item) HasActiveAttendee(email string) bool {
	for _, a := range it.Attendees {
		if a.Email == email && a.Status != AttendeeRejected {
			return true
		}
	}
	return false
}

type Testimonial struct {
	ID         string         `json:"id"`
	Author     string         `json:"author"`
	Quote      localized.Text `json:"quote"`
	IsApproved bool           `json:"is_approved"`
	CreatedAt  time.Time      `json:"created_at"`
}

type Partner struct {
	ID      string         `json:"id"`
	Name    localized.Text `json:"name"`
	LogoURL string         `json:"logo_url,omitempty"`
	Website string         `json:"website,omitempty"`
}

type Branch struct {
	ID      string         `json:"id"`
	Name    localized.Text `json:"name"`
	Address localized.Text `json:"address"`
	City    localized.Text `json:"city"`
	Phone   string         `json:"phone,omitempty"`
}

func rowString(row resource.Row, field string) string {
	s, _ := row[field].(string)
	return s
}

func rowBool(row resource.Row, field string) bool {
	b, _ := row[field].(bool)
	return b
}

func rowTime(row resource.Row, field string) time.Time {
	switch v := row[field].(type) {
	case time.Time:
		return v
	case string:
		if t, err := utils.ParseTime(v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ItemFromRow decodes an events-table or news row. Attendees start as an
// empty slice; the store joins them in.
func ItemFromRow(row resource.Row) Item {
	it := Item{
		ID:          row.ID(),
		Title:       localized.FromAny(row["title"]),
		Description: localized.FromAny(row["description"]),
		Date:        rowTime(row, "date"),
		ImageURL:    rowString(row, "image_url"),
		Location:    localized.FromAny(row["location"]),
		IsPinned:    rowBool(row, "is_pinned"),
		Attendees:   []Attendee{},
	}
	if _, ok := row["category"]; ok {
		it.Category = ParseCategory(rowString(row, "category"))
	}
	if end := rowTime(row, "end_date"); !end.IsZero() {
		it.EndDate = &end
	}
	return it
}

func AttendeeFromRow(row resource.Row) Attendee {
	status := AttendeeStatus(rowString(row, "status"))
	if !IsValidAttendeeStatus(string(status)) {
		status = AttendeePending
	}
	return Attendee{
		ID:     row.ID(),
		Name:   rowString(row, "name"),
		Email:  rowString(row, "email"),
		UserID: rowString(row, "user_id"),
		Status: status,
	}
}

func TestimonialFromRow(row resource.Row) Testimonial {
	return Testimonial{
		ID:         row.ID(),
		Author:     rowString(row, "author"),
		Quote:      localized.FromAny(row["quote"]),
		IsApproved: rowBool(row, "is_approved"),
		CreatedAt:  rowTime(row, "created_at"),
	}
}

func PartnerFromRow(row resource.Row) Partner {
	return Partner{
		ID:      row.ID(),
		Name:    localized.FromAny(row["name"]),
		LogoURL: rowString(row, "logo_url"),
		Website: rowString(row, "website"),
	}
}

func BranchFromRow(row resource.Row) Branch {
	return Branch{
		ID:      row.ID(),
		Name:    localized.FromAny(row["name"]),
		Address: localized.FromAny(row["address"]),
		City:    localized.FromAny(row["city"]),
		Phone:   rowString(row, "phone"),
	}
}
