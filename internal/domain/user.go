package domain

import "time"

// User is the stored identity document. Following and Followers are kept as
// mutual inverses by the engagement service; Notifications holds notification
// ids in insertion order.
type User struct {
	UserID        string    `json:"id" dynamodbav:"user_id" bson:"_id"`
	Username      string    `json:"username" dynamodbav:"username" bson:"username"`
	UsernameLower string    `json:"-" dynamodbav:"username_lower" bson:"username_lower"`
	Email         string    `json:"-" dynamodbav:"email" bson:"email"`
	PasswordHash  string    `json:"-" dynamodbav:"password_hash" bson:"password_hash"`
	Avatar        string    `json:"avatar" dynamodbav:"avatar" bson:"avatar"`
	Bio           string    `json:"bio" dynamodbav:"bio" bson:"bio"`
	Nationality   string    `json:"nationality" dynamodbav:"nationality" bson:"nationality"`
	Following     []string  `json:"following" dynamodbav:"following,omitempty" bson:"following,omitempty"`
	Followers     []string  `json:"followers" dynamodbav:"followers,omitempty" bson:"followers,omitempty"`
	Notifications []string  `json:"-" dynamodbav:"notifications,omitempty" bson:"notifications,omitempty"`
	LastEditAt    time.Time `json:"-" dynamodbav:"last_edit_at" bson:"last_edit_at"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at" bson:"updated_at"`
}

// IsFollowing reports whether u follows userID.
func (u *User) IsFollowing(userID string) bool {
	return contains(u.Following, userID)
}

// Follow adds userID to u.Following unless already present.
func (u *User) Follow(userID string) {
	if !contains(u.Following, userID) {
		u.Following = append(u.Following, userID)
	}
}

func (u *User) Unfollow(userID string) { u.Following = without(u.Following, userID) }

// AddFollower adds userID to u.Followers unless already present.
func (u *User) AddFollower(userID string) {
	if !contains(u.Followers, userID) {
		u.Followers = append(u.Followers, userID)
	}
}

func (u *User) RemoveFollower(userID string) { u.Followers = without(u.Followers, userID) }

// UserSummary is the minimal public projection used in search results and
// notification senders.
type UserSummary struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// PublicUser is what other users may see of a profile.
type PublicUser struct {
	UserID         string    `json:"id"`
	Username       string    `json:"username"`
	Avatar         string    `json:"avatar"`
	Bio            string    `json:"bio"`
	Nationality    string    `json:"nationality"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	CreatedAt      time.Time `json:"created"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{UserID: u.UserID, Username: u.Username, Avatar: u.Avatar}
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		UserID:         u.UserID,
		Username:       u.Username,
		Avatar:         u.Avatar,
		Bio:            u.Bio,
		Nationality:    u.Nationality,
		FollowersCount: len(u.Followers),
		FollowingCount: len(u.Following),
		CreatedAt:      u.CreatedAt,
	}
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// UpdateUserRequest is a partial profile edit; nil fields are left as they are.
type UpdateUserRequest struct {
	Username    *string `json:"username" validate:"omitempty,min=3,max=30"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Nationality *string `json:"nationality" validate:"omitempty,min=1,max=56"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// FollowResult is the outcome of a follow toggle.
type FollowResult struct {
	Following     bool     `json:"following"`
	FollowingList []string `json:"following_list"`
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// without returns ids with every occurrence of id removed.
func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
