package inapp

import (
	"context"
	"strings"

	"crm_backend/internal/notification/sse"
	"crm_backend/platform/apperr"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Feed categories.
const (
	CategoryInfo    = "info"
	CategorySuccess = "success"
	CategoryWarning = "warning"
	CategoryError   = "error"
)

type Service struct {
	repo Store
	sse  *sse.Service
	log  *logger.Logger
}

// NewService creates the feed service. sseSvc may be nil, in which case new
// entries are only persisted.
func NewService(repo Store, sseSvc *sse.Service, log *logger.Logger) *Service {
	return &Service{
		repo: repo,
		sse:  sseSvc,
		log:  log,
	}
}

type SendParams struct {
	Title        string
	Content      string
	ResourceID   *uuid.UUID
	ResourceType string
	Category     string // "info", "success", "warning", "error"
}

// Send persists the notification and pushes it to connected stream clients.
func (s *Service) Send(ctx context.Context, p SendParams) error {
	if s == nil || s.repo == nil {
		return apperr.Internal("in-app notification service not configured")
	}

	if p.Category == "" {
		p.Category = CategoryInfo
	}

	var resourceType *string
	if p.ResourceType != "" {
		resourceType = &p.ResourceType
	}

	notif, err := s.repo.Create(ctx, CreateParams{
		Title:        p.Title,
		Content:      p.Content,
		ResourceID:   p.ResourceID,
		ResourceType: resourceType,
		Category:     p.Category,
	})
	if err != nil {
		if s.log != nil {
			s.log.Error("failed to persist in-app notification", "error", err, "title", p.Title)
		}
		return err
	}

	if s.log != nil {
		s.log.Info("notification persisted", "id", notif.ID, "category", notif.Category)
	}

	if s.sse != nil {
		s.sse.Publish(sse.Event{
			Type:    sse.EventNotificationCreated,
			Message: notif.Title,
			Data:    notif,
		})
	}

	return nil
}

func (s *Service) List(ctx context.Context, page, pageSize int) ([]Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	offset := (page - 1) * pageSize
	return s.repo.List(ctx, pageSize, offset)
}

func (s *Service) CountUnread(ctx context.Context, resourceTypes []string) (int, error) {
	normalized := make([]string, 0, len(resourceTypes))
	for _, item := range resourceTypes {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		normalized = append(normalized, trimmed)
	}
	return s.repo.CountUnread(ctx, normalized)
}

func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return err
	}
	s.publishRead(1)
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.publishRead(n)
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) publishRead(count int64) {
	if s.sse == nil {
		return
	}
	s.sse.Publish(sse.Event{Type: sse.EventNotificationsRead, Data: map[string]int64{"count": count}})
}
