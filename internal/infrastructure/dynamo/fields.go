package dynamo

// DynamoDB attribute names used in key, filter and update expressions across
// all repos. Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldUserID         = "user_id"
	fieldPostID         = "post_id"
	fieldNotificationID = "notification_id"
	fieldAuthorID       = "author_id"
	fieldUsername       = "username"
	fieldUsernameLower  = "username_lower"
	fieldEmail          = "email"
	fieldAvatar         = "avatar"
	fieldCreatedAt      = "created_at"
	fieldUpdatedAt      = "updated_at"
	fieldNotifications  = "notifications"
	fieldComments       = "comments"
)

// Global secondary index names.
const (
	indexUsername        = "username-index"
	indexEmail           = "email-index"
	indexAuthorCreatedAt = "author_id-created_at-index"
	indexUserCreatedAt   = "user_id-created_at-index"
)
