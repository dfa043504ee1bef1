package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"

	"association-portal/backend/internal/resource"
)

const resourceNotifications = "notifications"

// recentBuffer caps how many realtime notifications are kept in memory per
// user between full list fetches.
const recentBuffer = 100

var ErrBadRequest = errors.New("bad request")

type Service struct {
	client    resource.Client
	messaging *messaging.Client // optional, best-effort push
	logger    *zap.Logger

	mu     sync.Mutex
	recent map[string][]Notification
	stop   func()
}

func NewService(client resource.Client, msg *messaging.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:    client,
		messaging: msg,
		logger:    logger,
		recent:    make(map[string][]Notification),
	}
}

// Start subscribes to realtime inserts on the notifications resource and
// appends them to the in-memory per-user buffer. There is no backpressure
// policy beyond the buffer cap; consumers render what is in memory.
func (s *Service) Start(ctx context.Context) error {
	stop, err := s.client.Subscribe(ctx, resourceNotifications, nil, func(row resource.Row) {
		n := fromRow(row)
		if n.UserID == "" {
			return
		}
		s.mu.Lock()
		buf := append(s.recent[n.UserID], n)
		if len(buf) > recentBuffer {
			buf = buf[len(buf)-recentBuffer:]
		}
		s.recent[n.UserID] = buf
		s.mu.Unlock()
	})
	if err != nil {
		return fmt.Errorf("subscribe notifications: %w", err)
	}
	s.stop = stop
	return nil
}

// Stop cancels the realtime subscription.
func (s *Service) Stop() {
	if s.stop != nil {
		s.stop()
	}
}

// Recent returns realtime notifications buffered for uid since startup.
func (s *Service) Recent(uid string) []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.recent[uid]))
	copy(out, s.recent[uid])
	return out
}

// List fetches the user's notifications, newest first, with unread count.
func (s *Service) List(ctx context.Context, uid string, limit int) (*ListResult, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := s.client.Select(ctx, resourceNotifications,
		[]resource.Filter{resource.Eq("user_id", uid)},
		resource.Order{Field: "created_at", Desc: true})
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	res := &ListResult{Notifications: []Notification{}}
	for _, row := range rows {
		n := fromRow(row)
		if !n.Read {
			res.UnreadCount++
		}
		if len(res.Notifications) < limit {
			res.Notifications = append(res.Notifications, n)
		}
	}
	return res, nil
}

// MarkRead flags the given notifications as read. An empty id list marks
// everything unread for the user.
func (s *Service) MarkRead(ctx context.Context, uid string, ids []string) (int, error) {
	if uid == "" {
		return 0, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}

	if len(ids) == 0 {
		rows, err := s.client.Select(ctx, resourceNotifications, []resource.Filter{
			resource.Eq("user_id", uid),
			resource.Eq("read", false),
		})
		if err != nil {
			return 0, fmt.Errorf("mark read: %w", err)
		}
		for _, row := range rows {
			ids = append(ids, row.ID())
		}
	}

	count := 0
	for _, id := range ids {
		if _, err := s.client.Update(ctx, resourceNotifications, id, resource.Row{"read": true}); err != nil {
			s.logger.Warn("mark read failed", zap.String("id", id), zap.Error(err))
			continue
		}
		count++
	}
	return count, nil
}

// Create stores a notification and sends a best-effort push when a device
// token is supplied. Push failures never fail the operation.
func (s *Service) Create(ctx context.Context, in CreateInput, deviceToken string) (*Notification, error) {
	in.Trim()
	if in.UserID == "" || in.Title == "" {
		return nil, fmt.Errorf("%w: user_id and title are required", ErrBadRequest)
	}

	row, err := s.client.Insert(ctx, resourceNotifications, resource.Row{
		"user_id":    in.UserID,
		"title":      in.Title,
		"body":       in.Body,
		"type":       in.Type,
		"read":       false,
		"created_at": time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	if s.messaging != nil && deviceToken != "" {
		_, pushErr := s.messaging.Send(ctx, &messaging.Message{
			Token: deviceToken,
			Notification: &messaging.Notification{
				Title: in.Title,
				Body:  in.Body,
			},
		})
		if pushErr != nil {
			s.logger.Warn("push send failed", zap.String("uid", in.UserID), zap.Error(pushErr))
		}
	}

	n := fromRow(row)
	return &n, nil
}
