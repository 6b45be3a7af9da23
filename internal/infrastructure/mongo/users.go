package mongoinfra

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/go-social-nosql/internal/domain"
)

// UserRepo stores users in the users collection.
type UserRepo struct {
	coll collection
}

func NewUserRepo(db *mongo.Database, timeout time.Duration) *UserRepo {
	return &UserRepo{coll: collection{c: db.Collection(collUsers), timeout: timeout}}
}

func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	u.UsernameLower = strings.ToLower(u.Username)
	return r.coll.replace(ctx, u.UserID, u)
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": userID})
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range updates {
		set[k] = v
	}
	return r.update(ctx, userID, bson.M{"$set": set})
}

// PushNotification appends notificationID with $push; the document is not read first.
func (r *UserRepo) PushNotification(ctx context.Context, userID, notificationID string) error {
	return r.update(ctx, userID, bson.M{
		"$push": bson.M{"notifications": notificationID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// Search matches usernames containing query case-insensitively. The query is
// matched literally, never as a pattern.
func (r *UserRepo) Search(ctx context.Context, query, excludeID string) ([]domain.User, error) {
	filter := bson.M{
		"username": primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"},
		"_id":      bson.M{"$ne": excludeID},
	}
	opts := options.Find().SetProjection(bson.M{"username": 1, "avatar": 1})
	var users []domain.User
	if err := r.coll.findAll(ctx, filter, opts, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepo) update(ctx context.Context, userID string, update bson.M) error {
	matched, err := r.coll.updateOne(ctx, userID, update)
	if err != nil {
		return err
	}
	if !matched {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var u domain.User
	found, err := r.coll.findOne(ctx, filter, &u)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return &u, nil
}
