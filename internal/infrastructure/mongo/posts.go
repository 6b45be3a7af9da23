package mongoinfra

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/go-social-nosql/internal/domain"
)

// PostRepo stores posts with their embedded likes and comments.
type PostRepo struct {
	coll collection
}

func NewPostRepo(db *mongo.Database, timeout time.Duration) *PostRepo {
	return &PostRepo{coll: collection{c: db.Collection(collPosts), timeout: timeout}}
}

func (r *PostRepo) Put(ctx context.Context, p *domain.Post) error {
	return r.coll.replace(ctx, p.PostID, p)
}

func (r *PostRepo) Get(ctx context.Context, postID string) (*domain.Post, error) {
	var p domain.Post
	found, err := r.coll.findOne(ctx, bson.M{"_id": postID}, &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("post not found: %w", domain.ErrNotFound)
	}
	return &p, nil
}

func (r *PostRepo) Delete(ctx context.Context, postID string) error {
	ctx, cancel := r.coll.bound(ctx)
	defer cancel()
	_, err := r.coll.c.DeleteOne(ctx, bson.M{"_id": postID})
	return err
}

func (r *PostRepo) ListByAuthor(ctx context.Context, authorID string) ([]domain.Post, error) {
	var posts []domain.Post
	err := r.coll.findAll(ctx, bson.M{"author_id": authorID}, options.Find().SetSort(newestFirst), &posts)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepo) AppendComment(ctx context.Context, postID string, c domain.Comment) error {
	matched, err := r.coll.updateOne(ctx, postID, bson.M{
		"$push": bson.M{"comments": c},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if !matched {
		return fmt.Errorf("post not found: %w", domain.ErrNotFound)
	}
	return nil
}
