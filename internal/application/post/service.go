package post

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-social-nosql/internal/domain"
	s3infra "github.com/go-social-nosql/internal/infrastructure/s3"
	"github.com/go-social-nosql/internal/pkg/id"
	"golang.org/x/sync/errgroup"
)

// feedFanOut caps concurrent per-author queries when building a feed.
const feedFanOut = 8

// Image is an optional upload attached to a new post.
type Image struct {
	Body        io.Reader
	ContentType string
}

type Service interface {
	Create(ctx context.Context, authorID string, req domain.CreatePostRequest, img *Image) (*domain.Post, error)
	Delete(ctx context.Context, actorID, postID string) error
	ListByAuthor(ctx context.Context, authorID string) ([]domain.PostView, error)
	Feed(ctx context.Context, userID string) ([]domain.PostView, error)
	AddComment(ctx context.Context, actorID, postID string, req domain.CommentRequest) (*domain.Comment, error)
}

type postStore interface {
	Put(ctx context.Context, p *domain.Post) error
	Get(ctx context.Context, postID string) (*domain.Post, error)
	Delete(ctx context.Context, postID string) error
	ListByAuthor(ctx context.Context, authorID string) ([]domain.Post, error)
	AppendComment(ctx context.Context, postID string, c domain.Comment) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	PushNotification(ctx context.Context, userID, notificationID string) error
}

type mediaStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type summaryResolver interface {
	Summaries(ctx context.Context, userIDs []string) (map[string]domain.UserSummary, error)
}

type notifier interface {
	Create(ctx context.Context, recipientID, senderID string, typ domain.NotificationType, message string) (string, error)
}

type service struct {
	repo      postStore
	users     userStore
	media     mediaStore
	summaries summaryResolver
	notifier  notifier
}

type ServiceDeps struct {
	PostRepo      postStore
	UserRepo      userStore
	Media         mediaStore
	Summaries     summaryResolver
	Notifications notifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:      deps.PostRepo,
		users:     deps.UserRepo,
		media:     deps.Media,
		summaries: deps.Summaries,
		notifier:  deps.Notifications,
	}
}

func (s *service) Create(ctx context.Context, authorID string, req domain.CreatePostRequest, img *Image) (*domain.Post, error) {
	visibility := domain.Visibility(req.Visibility)
	if visibility == "" {
		visibility = domain.VisibilityPublic
	}
	now := time.Now().UTC()
	p := &domain.Post{
		PostID:     id.New(),
		AuthorID:   authorID,
		Text:       req.Text,
		Visibility: visibility,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if img != nil {
		key := fmt.Sprintf("posts/%s/%s%s", authorID, p.PostID, s3infra.ExtensionFor(img.ContentType))
		url, err := s.media.Upload(ctx, key, img.Body, img.ContentType)
		if err != nil {
			return nil, domain.StorageError("upload post image", err)
		}
		p.Image = &url
		p.ImageKey = key
	}
	if err := s.repo.Put(ctx, p); err != nil {
		return nil, domain.StorageError("save post", err)
	}
	return p, nil
}

// Delete removes a post owned by actorID. Its image is removed afterwards on
// a best-effort basis.
func (s *service) Delete(ctx context.Context, actorID, postID string) error {
	p, err := s.repo.Get(ctx, postID)
	if err != nil {
		return domain.StorageError("load post", err)
	}
	if p.AuthorID != actorID {
		return fmt.Errorf("only the author may delete a post: %w", domain.ErrForbidden)
	}
	if err := s.repo.Delete(ctx, postID); err != nil {
		return domain.StorageError("delete post", err)
	}
	if p.ImageKey != "" {
		if err := s.media.Delete(ctx, p.ImageKey); err != nil {
			slog.Warn("post image not deleted", "post_id", postID, "key", p.ImageKey, "err", err)
		}
	}
	return nil
}

func (s *service) ListByAuthor(ctx context.Context, authorID string) ([]domain.PostView, error) {
	if _, err := s.users.Get(ctx, authorID); err != nil {
		return nil, domain.StorageError("load user", err)
	}
	posts, err := s.repo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, domain.StorageError("list posts", err)
	}
	// Stored timestamps do not sort reliably as strings, so order here.
	sortNewestFirst(posts)
	return s.views(ctx, posts)
}

// sortNewestFirst orders posts by creation time descending, ties broken by
// id descending.
func sortNewestFirst(posts []domain.Post) {
	slices.SortStableFunc(posts, func(a, b domain.Post) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.PostID, a.PostID)
	})
}

// Feed returns the posts of everyone userID follows, newest first.
func (s *service) Feed(ctx context.Context, userID string) ([]domain.PostView, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, domain.StorageError("load user", err)
	}

	var (
		mu    sync.Mutex
		posts []domain.Post
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(feedFanOut)
	for _, followed := range u.Following {
		g.Go(func() error {
			batch, err := s.repo.ListByAuthor(gctx, followed)
			if err != nil {
				return err
			}
			mu.Lock()
			posts = append(posts, batch...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.StorageError("load feed", err)
	}
	sortNewestFirst(posts)
	return s.views(ctx, posts)
}

func (s *service) views(ctx context.Context, posts []domain.Post) ([]domain.PostView, error) {
	authorIDs := make([]string, 0, len(posts))
	for i := range posts {
		authorIDs = append(authorIDs, posts[i].AuthorID)
	}
	authors, err := s.summaries.Summaries(ctx, authorIDs)
	if err != nil {
		return nil, domain.StorageError("resolve authors", err)
	}
	out := make([]domain.PostView, 0, len(posts))
	for i := range posts {
		out = append(out, domain.PostView{Post: &posts[i], Author: authors[posts[i].AuthorID]})
	}
	return out, nil
}

// AddComment appends a comment without rewriting the rest of the post and
// notifies the author when someone else commented.
func (s *service) AddComment(ctx context.Context, actorID, postID string, req domain.CommentRequest) (*domain.Comment, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("comment text is required: %w", domain.ErrBadRequest)
	}
	p, err := s.repo.Get(ctx, postID)
	if err != nil {
		return nil, domain.StorageError("load post", err)
	}
	actor, err := s.users.Get(ctx, actorID)
	if err != nil {
		return nil, domain.StorageError("load actor", err)
	}
	c := domain.Comment{UserID: actorID, Text: text, CreatedAt: time.Now().UTC()}
	if err := s.repo.AppendComment(ctx, postID, c); err != nil {
		return nil, domain.StorageError("append comment", err)
	}
	if p.AuthorID == actorID {
		return &c, nil
	}

	nid, err := s.notifier.Create(ctx, p.AuthorID, actorID, domain.NotificationComment,
		fmt.Sprintf("%s commented on your post.", actor.Username))
	if err != nil {
		return nil, err
	}
	if err := s.users.PushNotification(ctx, p.AuthorID, nid); err != nil {
		slog.Warn("comment notification not referenced", "author_id", p.AuthorID, "notification_id", nid, "err", err)
	}
	return &c, nil
}
