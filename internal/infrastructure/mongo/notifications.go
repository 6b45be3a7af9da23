package mongoinfra

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/go-social-nosql/internal/domain"
)

// NotificationRepo is the append-only notifications collection.
type NotificationRepo struct {
	coll collection
}

func NewNotificationRepo(db *mongo.Database, timeout time.Duration) *NotificationRepo {
	return &NotificationRepo{coll: collection{c: db.Collection(collNotifications), timeout: timeout}}
}

func (r *NotificationRepo) Put(ctx context.Context, n *domain.Notification) error {
	ctx, cancel := r.coll.bound(ctx)
	defer cancel()
	_, err := r.coll.c.InsertOne(ctx, n)
	return err
}

func (r *NotificationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	var out []domain.Notification
	err := r.coll.findAll(ctx, bson.M{"user_id": userID}, options.Find().SetSort(newestFirst), &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
