// Package models defines server-side data models persisted in the database.
package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           int64
	Email        string
	UserName     string
	FirstName    string
	LastName     string
	PasswordHash []byte
	Role         string
	AvatarKey    string
	CreatedAt    time.Time
}

// UserUpdate is a partial profile change. Nil means unchanged; an empty
// AvatarKey removes the avatar.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	AvatarKey *string
}

// UserProfile is a user as seen by viewer: IsSubscribed tells whether the
// viewer follows them.
type UserProfile struct {
	User         *User
	IsSubscribed bool
}

// AuthorCard is one entry of a subscriptions listing.
type AuthorCard struct {
	User         *User
	IsSubscribed bool
	Recipes      []*RecipeSummary
	RecipesCount int64
}
