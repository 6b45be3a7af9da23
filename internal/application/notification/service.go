package notification

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/go-social-nosql/internal/domain"
	"github.com/go-social-nosql/internal/pkg/id"
)

// Service is the append-only notification log.
type Service interface {
	Create(ctx context.Context, recipientID, senderID string, typ domain.NotificationType, message string) (string, error)
	ListForUser(ctx context.Context, userID string) ([]domain.NotificationView, error)
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type summaryResolver interface {
	Summaries(ctx context.Context, userIDs []string) (map[string]domain.UserSummary, error)
}

type service struct {
	repo      notificationStore
	users     userStore
	summaries summaryResolver
	now       func() time.Time
}

type ServiceDeps struct {
	NotificationRepo notificationStore
	UserRepo         userStore
	Summaries        summaryResolver
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:      deps.NotificationRepo,
		users:     deps.UserRepo,
		summaries: deps.Summaries,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Create(ctx context.Context, recipientID, senderID string, typ domain.NotificationType, message string) (string, error) {
	n := &domain.Notification{
		NotificationID: id.New(),
		UserID:         recipientID,
		SenderID:       senderID,
		Type:           typ,
		Message:        message,
		CreatedAt:      s.now(),
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return "", domain.StorageError("create notification", err)
	}
	return n.NotificationID, nil
}

// ListForUser returns the user's notifications newest first, each with its
// sender summary resolved.
func (s *service) ListForUser(ctx context.Context, userID string) ([]domain.NotificationView, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, domain.StorageError("load user", err)
	}
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.StorageError("list notifications", err)
	}
	slices.SortStableFunc(list, func(a, b domain.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.NotificationID, a.NotificationID)
	})

	senderIDs := make([]string, 0, len(list))
	for _, n := range list {
		senderIDs = append(senderIDs, n.SenderID)
	}
	senders, err := s.summaries.Summaries(ctx, senderIDs)
	if err != nil {
		return nil, domain.StorageError("resolve senders", err)
	}

	views := make([]domain.NotificationView, 0, len(list))
	for _, n := range list {
		views = append(views, domain.NotificationView{
			NotificationID: n.NotificationID,
			Sender:         senders[n.SenderID],
			Type:           n.Type,
			Message:        n.Message,
			IsRead:         n.IsRead,
			CreatedAt:      n.CreatedAt,
		})
	}
	return views, nil
}
