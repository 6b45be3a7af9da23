package domain

import "time"

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityFriends Visibility = "friends"
	VisibilityPrivate Visibility = "private"
)

type Comment struct {
	UserID    string    `json:"user_id" dynamodbav:"user_id" bson:"user_id"`
	Text      string    `json:"text" dynamodbav:"text" bson:"text"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at" bson:"created_at"`
}

type Post struct {
	PostID     string     `json:"id" dynamodbav:"post_id" bson:"_id"`
	AuthorID   string     `json:"author_id" dynamodbav:"author_id" bson:"author_id"`
	Text       string     `json:"text" dynamodbav:"text" bson:"text"`
	Image      *string    `json:"image,omitempty" dynamodbav:"image,omitempty" bson:"image,omitempty"`
	ImageKey   string     `json:"-" dynamodbav:"image_key,omitempty" bson:"image_key,omitempty"`
	Likes      []string   `json:"likes" dynamodbav:"likes,omitempty" bson:"likes,omitempty"`
	Comments   []Comment  `json:"comments" dynamodbav:"comments,omitempty" bson:"comments,omitempty"`
	Visibility Visibility `json:"visibility" dynamodbav:"visibility" bson:"visibility"`
	CreatedAt  time.Time  `json:"created" dynamodbav:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `json:"updated" dynamodbav:"updated_at" bson:"updated_at"`
}

// LikedBy reports whether userID is in the post's likes.
func (p *Post) LikedBy(userID string) bool {
	return contains(p.Likes, userID)
}

// Like appends userID to the likes unless already present.
func (p *Post) Like(userID string) {
	if !contains(p.Likes, userID) {
		p.Likes = append(p.Likes, userID)
	}
}

// Unlike removes every occurrence of userID from the likes.
func (p *Post) Unlike(userID string) { p.Likes = without(p.Likes, userID) }

// PostView is a post with its author resolved.
type PostView struct {
	*Post
	Author UserSummary `json:"author"`
}

type CreatePostRequest struct {
	Text       string `json:"text" validate:"max=500"`
	Visibility string `json:"visibility" validate:"omitempty,oneof=public friends private"`
}

type CommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=300"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked bool `json:"liked"`
}
