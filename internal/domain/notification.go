package domain

import "time"

type NotificationType string

const (
	NotificationFollow  NotificationType = "follow"
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
)

// Notification is immutable once stored. UserID is the recipient.
type Notification struct {
	NotificationID string           `json:"id" dynamodbav:"notification_id" bson:"_id"`
	UserID         string           `json:"user_id" dynamodbav:"user_id" bson:"user_id"`
	SenderID       string           `json:"sender_id" dynamodbav:"sender_id" bson:"sender_id"`
	Type           NotificationType `json:"type" dynamodbav:"type" bson:"type"`
	Message        string           `json:"message" dynamodbav:"message" bson:"message"`
	IsRead         bool             `json:"is_read" dynamodbav:"is_read" bson:"is_read"`
	CreatedAt      time.Time        `json:"created" dynamodbav:"created_at" bson:"created_at"`
}

// NotificationView is a notification as listed to its recipient.
type NotificationView struct {
	NotificationID string           `json:"id"`
	Sender         UserSummary      `json:"sender"`
	Type           NotificationType `json:"type"`
	Message        string           `json:"message"`
	IsRead         bool             `json:"is_read"`
	CreatedAt      time.Time        `json:"created"`
}
