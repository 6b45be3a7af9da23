package engagement

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/go-social-nosql/internal/domain"
)

// memStore is an in-memory document store. Every read and write copies, so
// services only see state they explicitly persisted.
type memStore struct {
	mu            sync.Mutex
	users         map[string]domain.User
	posts         map[string]domain.Post
	notifications []domain.Notification
	failPut       map[string]error
	puts          []string
}

func newMemStore(users ...domain.User) *memStore {
	s := &memStore{
		users:   map[string]domain.User{},
		posts:   map[string]domain.Post{},
		failPut: map[string]error{},
	}
	for _, u := range users {
		s.users[u.UserID] = cloneUser(u)
	}
	return s
}

func cloneUser(u domain.User) domain.User {
	u.Following = slices.Clone(u.Following)
	u.Followers = slices.Clone(u.Followers)
	u.Notifications = slices.Clone(u.Notifications)
	return u
}

func clonePost(p domain.Post) domain.Post {
	p.Likes = slices.Clone(p.Likes)
	p.Comments = slices.Clone(p.Comments)
	return p
}

func (s *memStore) user(id string) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneUser(s.users[id])
}

func (s *memStore) post(id string) domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePost(s.posts[id])
}

func (s *memStore) notificationsFor(userID string) []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// userStore

func (s *memStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	c := cloneUser(u)
	return &c, nil
}

func (s *memStore) Put(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failPut[u.UserID]; err != nil {
		return err
	}
	s.puts = append(s.puts, u.UserID)
	s.users[u.UserID] = cloneUser(*u)
	return nil
}

func (s *memStore) PushNotification(ctx context.Context, userID, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	u.Notifications = append(slices.Clone(u.Notifications), notificationID)
	s.users[userID] = u
	return nil
}

// postStore

type memPosts struct{ *memStore }

func (s memPosts) Get(ctx context.Context, postID string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return nil, fmt.Errorf("post not found: %w", domain.ErrNotFound)
	}
	c := clonePost(p)
	return &c, nil
}

func (s memPosts) Put(ctx context.Context, p *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failPut[p.PostID]; err != nil {
		return err
	}
	s.posts[p.PostID] = clonePost(*p)
	return nil
}

// notifier

type memNotifier struct{ *memStore }

func (s memNotifier) Create(ctx context.Context, recipientID, senderID string, typ domain.NotificationType, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nid := fmt.Sprintf("n%d", len(s.notifications)+1)
	s.notifications = append(s.notifications, domain.Notification{
		NotificationID: nid, UserID: recipientID, SenderID: senderID, Type: typ, Message: message,
	})
	return nid, nil
}

func newFakeService(s *memStore) Service {
	return NewService(ServiceDeps{UserRepo: s, PostRepo: memPosts{s}, Notifications: memNotifier{s}})
}
