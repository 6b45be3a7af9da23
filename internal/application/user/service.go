package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-social-nosql/internal/domain"
	s3infra "github.com/go-social-nosql/internal/infrastructure/s3"
	"github.com/go-social-nosql/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

// Attribute names used in partial update maps. They are the same in both
// document backends.
const (
	fieldAvatar        = "avatar"
	fieldUsername      = "username"
	fieldUsernameLower = "username_lower"
	fieldEmail         = "email"
	fieldNationality   = "nationality"
	fieldLastEditAt    = "last_edit_at"
)

// editInterval is the minimum time between two profile edits.
const editInterval = 24 * time.Hour

// summaryFanOut caps concurrent user lookups when resolving summaries.
const summaryFanOut = 8

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.PublicUser, error)
	GetByUsername(ctx context.Context, username string) (*domain.PublicUser, error)
	Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.PublicUser, error)
	Search(ctx context.Context, query, callerID string) ([]domain.UserSummary, error)
	Summaries(ctx context.Context, userIDs []string) (map[string]domain.UserSummary, error)
	UploadAvatar(ctx context.Context, userID string, r io.Reader, contentType string) (string, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	Search(ctx context.Context, query, excludeID string) ([]domain.User, error)
}

type mediaStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

type service struct {
	repo          userStore
	media         mediaStore
	defaultAvatar string
	defaultBio    string
	now           func() time.Time
}

type ServiceDeps struct {
	UserRepo      userStore
	Media         mediaStore
	DefaultAvatar string
	DefaultBio    string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:          deps.UserRepo,
		media:         deps.Media,
		defaultAvatar: deps.DefaultAvatar,
		defaultBio:    deps.DefaultBio,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if err := s.ensureFree(ctx, s.repo.GetByUsername, req.Username, "username already taken"); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, s.repo.GetByEmail, req.Email, "email already registered"); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := s.now()
	u := &domain.User{
		UserID:       id.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Avatar:       s.defaultAvatar,
		Bio:          s.defaultBio,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, domain.StorageError("save user", err)
	}
	return u, nil
}

func (s *service) ensureFree(ctx context.Context, lookup func(context.Context, string) (*domain.User, error), value, msg string) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return fmt.Errorf("%s: %w", msg, domain.ErrConflict)
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return domain.StorageError("check uniqueness", err)
	}
}

func (s *service) Get(ctx context.Context, userID string) (*domain.PublicUser, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, domain.StorageError("load user", err)
	}
	return u.Public(), nil
}

func (s *service) GetByUsername(ctx context.Context, username string) (*domain.PublicUser, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, domain.StorageError("load user", err)
	}
	return u.Public(), nil
}

// Update applies a partial profile edit. Edits are limited to one per
// editInterval, and a request that changes nothing is rejected.
func (s *service) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.PublicUser, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, domain.StorageError("load user", err)
	}
	now := s.now()
	if wait := editInterval - now.Sub(u.LastEditAt); wait > 0 {
		return nil, fmt.Errorf("profile can be edited again in %.2f hours: %w", wait.Hours(), domain.ErrBadRequest)
	}

	usernameChanged := req.Username != nil && *req.Username != u.Username
	emailChanged := req.Email != nil && *req.Email != u.Email
	nationalityChanged := req.Nationality != nil && *req.Nationality != u.Nationality
	if !usernameChanged && !emailChanged && !nationalityChanged {
		return nil, fmt.Errorf("profile already has this data: %w", domain.ErrBadRequest)
	}

	updates := map[string]interface{}{fieldLastEditAt: now}
	if usernameChanged {
		if err := s.ensureFree(ctx, s.repo.GetByUsername, *req.Username, "username already taken"); err != nil {
			return nil, err
		}
		u.Username = *req.Username
		updates[fieldUsername] = u.Username
		updates[fieldUsernameLower] = strings.ToLower(u.Username)
	}
	if emailChanged {
		if err := s.ensureFree(ctx, s.repo.GetByEmail, *req.Email, "email already in use"); err != nil {
			return nil, err
		}
		u.Email = *req.Email
		updates[fieldEmail] = u.Email
	}
	if nationalityChanged {
		u.Nationality = *req.Nationality
		updates[fieldNationality] = u.Nationality
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, domain.StorageError("update user", err)
	}
	u.LastEditAt = now
	return u.Public(), nil
}

// Search returns summaries of users whose username contains query, ignoring
// case. The caller never appears in the result.
func (s *service) Search(ctx context.Context, query, callerID string) ([]domain.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is required: %w", domain.ErrBadRequest)
	}
	users, err := s.repo.Search(ctx, query, callerID)
	if err != nil {
		return nil, domain.StorageError("search users", err)
	}
	out := make([]domain.UserSummary, 0, len(users))
	for i := range users {
		if users[i].UserID == callerID {
			continue
		}
		out = append(out, users[i].Summary())
	}
	return out, nil
}

// Summaries resolves each distinct id to its summary. Users that no longer
// exist resolve to a summary carrying only the id.
func (s *service) Summaries(ctx context.Context, userIDs []string) (map[string]domain.UserSummary, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]domain.UserSummary, len(userIDs))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryFanOut)
	seen := make(map[string]struct{}, len(userIDs))
	for _, uid := range userIDs {
		if _, ok := seen[uid]; ok {
			continue
		}
		seen[uid] = struct{}{}
		g.Go(func() error {
			sum := domain.UserSummary{UserID: uid}
			u, err := s.repo.Get(gctx, uid)
			switch {
			case err == nil:
				sum = u.Summary()
			case !errors.Is(err, domain.ErrNotFound):
				return err
			}
			mu.Lock()
			out[uid] = sum
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.StorageError("resolve users", err)
	}
	return out, nil
}

// UploadAvatar stores a new avatar and points the profile at it. The
// previous avatar is removed afterwards when this store owns it; failure to
// remove it is only logged.
func (s *service) UploadAvatar(ctx context.Context, userID string, r io.Reader, contentType string) (string, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return "", domain.StorageError("load user", err)
	}
	key := fmt.Sprintf("avatars/%s/%s%s", userID, id.New(), s3infra.ExtensionFor(contentType))
	url, err := s.media.Upload(ctx, key, r, contentType)
	if err != nil {
		return "", domain.StorageError("upload avatar", err)
	}
	if err := s.repo.Update(ctx, userID, map[string]interface{}{fieldAvatar: url}); err != nil {
		return "", domain.StorageError("update avatar", err)
	}
	if oldKey, ok := s.media.KeyFromURL(u.Avatar); ok {
		if err := s.media.Delete(ctx, oldKey); err != nil {
			slog.Warn("previous avatar not deleted", "user_id", userID, "key", oldKey, "err", err)
		}
	}
	return url, nil
}
