package http

import (
	"context"
	"io"

	"github.com/go-social-nosql/internal/domain"
)

// UserRepository is the minimal interface the router requires from a user store.
// Both the DynamoDB and MongoDB repos satisfy it.
type UserRepository interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	// PushNotification appends to the notification list without reading the document.
	PushNotification(ctx context.Context, userID, notificationID string) error
	Search(ctx context.Context, query, excludeID string) ([]domain.User, error)
}

// PostRepository is the minimal interface the router requires from a post store.
type PostRepository interface {
	Put(ctx context.Context, p *domain.Post) error
	Get(ctx context.Context, postID string) (*domain.Post, error)
	Delete(ctx context.Context, postID string) error
	ListByAuthor(ctx context.Context, authorID string) ([]domain.Post, error)
	AppendComment(ctx context.Context, postID string, c domain.Comment) error
}

// NotificationRepository is the minimal interface the router requires from a notification store.
type NotificationRepository interface {
	Put(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
}

// ObjectStore is the minimal interface the router requires from an object storage backend.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}
