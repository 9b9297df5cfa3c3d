package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role tags stored in User.Roles.
const (
	RoleAdmin     = "admin"
	RolePublisher = "publisher"
)

// User is keyed by email; the generated _id is never used for lookups.
// Profile keeps arbitrary fields sent by the client at the top level of the document.
type User struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty" json:"_id,omitempty"`
	Email        string                 `bson:"email" json:"email"`
	Name         string                 `bson:"name,omitempty" json:"name,omitempty"`
	Photo        string                 `bson:"photo,omitempty" json:"photo,omitempty"`
	Roles        []string               `bson:"roles,omitempty" json:"roles,omitempty"`
	PremiumTaken *time.Time             `bson:"premiumTaken,omitempty" json:"premiumTaken,omitempty"`
	CreatedAt    time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time              `bson:"updatedAt" json:"updatedAt"`
	Profile      map[string]interface{} `bson:",inline" json:"-"`
}

// Fields a profile upsert may never touch.
var ProtectedUserFields = []string{"_id", "email", "roles", "premiumTaken", "createdAt", "updatedAt"}

func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsPremium reports an unexpired premium entitlement at now.
func (u *User) IsPremium(now time.Time) bool {
	return u != nil && u.PremiumTaken != nil && u.PremiumTaken.After(now)
}

func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	return marshalWithExtra(plain(u), u.Profile)
}

// Stats is the dashboard summary served by GET /stats.
type Stats struct {
	Total           int64 `json:"total"`
	Normal          int64 `json:"normal"`
	Premium         int64 `json:"premium"`
	Publishers      int64 `json:"publishers"`
	Articles        int64 `json:"articles"`
	PendingArticles int64 `json:"pendingArticles"`
}
