// Package mongoinfra implements the document-store repos on MongoDB. The method
// sets mirror the DynamoDB repos so the application services accept either.
package mongoinfra

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/go-social-nosql/internal/config"
	"github.com/go-social-nosql/internal/pkg/deadline"
)

// Collection names.
const (
	collUsers         = "users"
	collPosts         = "posts"
	collNotifications = "notifications"
)

// Connect opens a client against cfg.MongoURI and verifies it with a ping.
func Connect(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.MongoURI).
		SetTimeout(cfg.StorageTimeout))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := deadline.Bound(ctx, cfg.StorageTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the repos query by. Safe to call on
// every startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) {
	specs := map[string][]mongo.IndexModel{
		collUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collPosts: {
			{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		collNotifications: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			slog.Warn("could not create indexes", "collection", coll, "err", err)
		}
	}
}

// collection bundles a collection handle with the per-call timeout.
type collection struct {
	c       *mongo.Collection
	timeout time.Duration
}

func (c collection) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return deadline.Bound(ctx, c.timeout)
}

// replace upserts doc under id.
func (c collection) replace(ctx context.Context, id string, doc interface{}) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	_, err := c.c.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return err
}

// findOne decodes the first document matching filter into out and reports whether it existed.
func (c collection) findOne(ctx context.Context, filter bson.M, out interface{}) (bool, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	err := c.c.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return err == nil, err
}

// updateOne applies update to the document with _id and reports whether it matched.
func (c collection) updateOne(ctx context.Context, id string, update bson.M) (bool, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	res, err := c.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (c collection) findAll(ctx context.Context, filter bson.M, opts *options.FindOptions, out interface{}) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	cur, err := c.c.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}}
