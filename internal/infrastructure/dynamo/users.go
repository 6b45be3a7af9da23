package dynamo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/go-social-nosql/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
type UserRepo struct {
	t table
}

func NewUserRepo(client *dynamodb.Client, tableName string, timeout time.Duration) *UserRepo {
	return &UserRepo{t: table{client: client, name: tableName, timeout: timeout}}
}

// Put saves the whole user document, replacing any previous version.
func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	u.UsernameLower = strings.ToLower(u.Username)
	return r.t.put(ctx, "user", u)
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	var u domain.User
	found, err := r.t.get(ctx, strKey(fieldUserID, userID), &u)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.queryGSI(ctx, indexUsername, fieldUsername, username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.queryGSI(ctx, indexEmail, fieldEmail, email)
}

// Update applies a partial SET to an existing user.
func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339Nano)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	ue.Names["#pk"] = fieldUserID
	return r.update(ctx, userID, ue)
}

// PushNotification appends notificationID to the user's notification list
// with a single atomic update; the rest of the document is not read.
func (r *UserRepo) PushNotification(ctx context.Context, userID, notificationID string) error {
	ue, err := buildAppendExpr(fieldNotifications, []string{notificationID})
	if err != nil {
		return err
	}
	ue.Names["#pk"] = fieldUserID
	return r.update(ctx, userID, ue)
}

func (r *UserRepo) update(ctx context.Context, userID string, ue *updateExpr) error {
	ctx, cancel := r.t.bound(ctx)
	defer cancel()
	_, err := r.t.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.t.name),
		Key:                       strKey(fieldUserID, userID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return err
}

// Search scans for users whose lower-cased username contains query, skipping
// excludeID. Only the summary attributes are projected.
func (r *UserRepo) Search(ctx context.Context, query, excludeID string) ([]domain.User, error) {
	ctx, cancel := r.t.bound(ctx)
	defer cancel()
	p := dynamodb.NewScanPaginator(r.t.client, &dynamodb.ScanInput{
		TableName:            aws.String(r.t.name),
		FilterExpression:     aws.String("contains(#ul, :q) AND #id <> :me"),
		ProjectionExpression: aws.String("#id, #un, #av"),
		ExpressionAttributeNames: map[string]string{
			"#ul": fieldUsernameLower,
			"#id": fieldUserID,
			"#un": fieldUsername,
			"#av": fieldAvatar,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q":  &types.AttributeValueMemberS{Value: strings.ToLower(query)},
			":me": &types.AttributeValueMemberS{Value: excludeID},
		},
	})
	var users []domain.User
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.User
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		users = append(users, batch...)
	}
	return users, nil
}

func (r *UserRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.User, error) {
	ctx, cancel := r.t.bound(ctx)
	defer cancel()
	out, err := r.t.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.t.name),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}
