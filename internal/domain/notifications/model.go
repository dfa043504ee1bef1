package notifications

import (
	"strings"
	"time"

	"association-portal/backend/internal/resource"
)

// Notification is a per-user message (attendance decision, membership
// review, admin notice).
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Type      string    `json:"type,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateInput struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body,omitempty"`
	Type   string `json:"type,omitempty"`
}

func (in *CreateInput) Trim() {
	in.UserID = strings.TrimSpace(in.UserID)
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	in.Type = strings.TrimSpace(in.Type)
}

type ListResult struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}

func fromRow(row resource.Row) Notification {
	n := Notification{
		ID:     row.ID(),
		UserID: rowString(row, "user_id"),
		Title:  rowString(row, "title"),
		Body:   rowString(row, "body"),
		Type:   rowString(row, "type"),
	}
	n.Read, _ = row["read"].(bool)
	if t, ok := row["created_at"].(time.Time); ok {
		n.CreatedAt = t
	}
	return n
}

func rowString(row resource.Row, field string) string {
	s, _ := row[field].(string)
	return s
}
