package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/go-social-nosql/internal/domain"
)

// NotificationRepo provides typed DynamoDB operations for the notifications table.
// Notifications are append-only: there is no update or delete.
type NotificationRepo struct {
	t table
}

func NewNotificationRepo(client *dynamodb.Client, tableName string, timeout time.Duration) *NotificationRepo {
	return &NotificationRepo{t: table{client: client, name: tableName, timeout: timeout}}
}

func (r *NotificationRepo) Put(ctx context.Context, n *domain.Notification) error {
	return r.t.put(ctx, "notification", n)
}

// ListByUser queries the user_id-created_at GSI newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	items, err := r.t.queryAll(ctx, &dynamodb.QueryInput{
		IndexName:              aws.String(indexUserCreatedAt),
		KeyConditionExpression: aws.String("#u = :uid"),
		ExpressionAttributeNames: map[string]string{
			"#u": fieldUserID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	var notifications []domain.Notification
	if err := attributevalue.UnmarshalListOfMaps(items, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}
