package engagement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-social-nosql/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Service toggles follow and like relations and records the notifications
// they trigger.
type Service interface {
	ToggleFollow(ctx context.Context, actorID, targetID string) (*domain.FollowResult, error)
	ToggleLike(ctx context.Context, actorID, postID string) (*domain.LikeResult, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	PushNotification(ctx context.Context, userID, notificationID string) error
}

type postStore interface {
	Get(ctx context.Context, postID string) (*domain.Post, error)
	Put(ctx context.Context, p *domain.Post) error
}

type notifier interface {
	Create(ctx context.Context, recipientID, senderID string, typ domain.NotificationType, message string) (string, error)
}

type service struct {
	users    userStore
	posts    postStore
	notifier notifier
	now      func() time.Time
}

type ServiceDeps struct {
	UserRepo      userStore
	PostRepo      postStore
	Notifications notifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:    deps.UserRepo,
		posts:    deps.PostRepo,
		notifier: deps.Notifications,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ToggleFollow follows targetID when the actor does not follow it yet and
// unfollows it otherwise. Both adjacency lists change together; only a new
// follow notifies the target.
//
// The actor is saved before the target. If the second save fails the graph
// stays asymmetric until the next toggle; this is logged and reported as a
// storage error.
func (s *service) ToggleFollow(ctx context.Context, actorID, targetID string) (*domain.FollowResult, error) {
	if strings.TrimSpace(targetID) == "" {
		return nil, fmt.Errorf("target user id is required: %w", domain.ErrBadRequest)
	}
	if actorID == targetID {
		return nil, fmt.Errorf("users cannot follow themselves: %w", domain.ErrBadRequest)
	}

	var actor, target *domain.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		actor, err = s.users.Get(gctx, actorID)
		return err
	})
	g.Go(func() (err error) {
		target, err = s.users.Get(gctx, targetID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, domain.StorageError("load users", err)
	}

	now := s.now()
	following := !actor.IsFollowing(targetID)
	if following {
		actor.Follow(targetID)
		target.AddFollower(actorID)
		nid, err := s.notifier.Create(ctx, targetID, actorID, domain.NotificationFollow,
			fmt.Sprintf("%s started following you.", actor.Username))
		if err != nil {
			return nil, err
		}
		target.Notifications = append(target.Notifications, nid)
	} else {
		actor.Unfollow(targetID)
		target.RemoveFollower(actorID)
	}
	actor.UpdatedAt = now
	target.UpdatedAt = now

	if err := s.users.Put(ctx, actor); err != nil {
		return nil, domain.StorageError("save actor", err)
	}
	if err := s.users.Put(ctx, target); err != nil {
		slog.Error("follow graph left asymmetric",
			"actor_id", actorID, "target_id", targetID, "following", following, "err", err)
		return nil, domain.StorageError("save target", err)
	}

	return &domain.FollowResult{Following: following, FollowingList: actor.Following}, nil
}

// ToggleLike likes postID when the actor has not liked it yet and unlikes it
// otherwise. Liking someone else's post notifies the author; the
// notification is stored and referenced before the post is saved.
func (s *service) ToggleLike(ctx context.Context, actorID, postID string) (*domain.LikeResult, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, domain.StorageError("load post", err)
	}

	liked := !post.LikedBy(actorID)
	if liked {
		post.Like(actorID)
		if post.AuthorID != actorID {
			// The author is not loaded up front. If the account is gone the
			// like still stands and the stored notification stays unreferenced.
			if err := s.notifyLike(ctx, actorID, post.AuthorID); err != nil {
				return nil, err
			}
		}
	} else {
		post.Unlike(actorID)
	}
	post.UpdatedAt = s.now()

	if err := s.posts.Put(ctx, post); err != nil {
		return nil, domain.StorageError("save post", err)
	}
	return &domain.LikeResult{Liked: liked}, nil
}

func (s *service) notifyLike(ctx context.Context, actorID, authorID string) error {
	actor, err := s.users.Get(ctx, actorID)
	if err != nil {
		return domain.StorageError("load actor", err)
	}
	nid, err := s.notifier.Create(ctx, authorID, actorID, domain.NotificationLike,
		fmt.Sprintf("%s liked your post.", actor.Username))
	if err != nil {
		return err
	}
	if err := s.users.PushNotification(ctx, authorID, nid); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			slog.Warn("like notification not referenced, author missing",
				"author_id", authorID, "notification_id", nid)
			return nil
		}
		return domain.StorageError("reference notification", err)
	}
	return nil
}
