package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/go-social-nosql/internal/domain"
)

// PostRepo provides typed DynamoDB operations for the posts table.
type PostRepo struct {
	t table
}

func NewPostRepo(client *dynamodb.Client, tableName string, timeout time.Duration) *PostRepo {
	return &PostRepo{t: table{client: client, name: tableName, timeout: timeout}}
}

func (r *PostRepo) Put(ctx context.Context, p *domain.Post) error {
	return r.t.put(ctx, "post", p)
}

func (r *PostRepo) Get(ctx context.Context, postID string) (*domain.Post, error) {
	var p domain.Post
	found, err := r.t.get(ctx, strKey(fieldPostID, postID), &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("post not found: %w", domain.ErrNotFound)
	}
	return &p, nil
}

func (r *PostRepo) Delete(ctx context.Context, postID string) error {
	ctx, cancel := r.t.bound(ctx)
	defer cancel()
	_, err := r.t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.t.name),
		Key:       strKey(fieldPostID, postID),
	})
	return err
}

// ListByAuthor returns the author's posts newest first via the author GSI.
func (r *PostRepo) ListByAuthor(ctx context.Context, authorID string) ([]domain.Post, error) {
	items, err := r.t.queryAll(ctx, &dynamodb.QueryInput{
		IndexName:                aws.String(indexAuthorCreatedAt),
		KeyConditionExpression:   aws.String("#a = :a"),
		ExpressionAttributeNames: map[string]string{"#a": fieldAuthorID},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":a": &types.AttributeValueMemberS{Value: authorID},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	var posts []domain.Post
	if err := attributevalue.UnmarshalListOfMaps(items, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// AppendComment atomically appends c to the post's comment list.
func (r *PostRepo) AppendComment(ctx context.Context, postID string, c domain.Comment) error {
	ue, err := buildAppendExpr(fieldComments, []domain.Comment{c})
	if err != nil {
		return err
	}
	ue.Names["#pk"] = fieldPostID
	ctx, cancel := r.t.bound(ctx)
	defer cancel()
	_, err = r.t.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.t.name),
		Key:                       strKey(fieldPostID, postID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("post not found: %w", domain.ErrNotFound)
	}
	return err
}
