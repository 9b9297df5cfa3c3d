package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDeclined = "declined"
)

// Article is authored by AuthorEmail. Extra holds any free-form content fields.
type Article struct {
	ID            primitive.ObjectID     `bson:"_id,omitempty" json:"_id,omitempty"`
	AuthorEmail   string                 `bson:"authorEmail" json:"authorEmail"`
	Title         string                 `bson:"title" json:"title"`
	Description   string                 `bson:"description,omitempty" json:"description,omitempty"`
	Image         string                 `bson:"image,omitempty" json:"image,omitempty"`
	Publisher     string                 `bson:"publisher,omitempty" json:"publisher,omitempty"`
	Tags          []string               `bson:"tags,omitempty" json:"tags,omitempty"`
	Status        string                 `bson:"status" json:"status"`
	IsPremium     bool                   `bson:"isPremium" json:"isPremium"`
	ViewCount     int64                  `bson:"viewCount" json:"viewCount"`
	PostedAt      time.Time              `bson:"postedAt" json:"postedAt"`
	DeclineReason string                 `bson:"declineReason,omitempty" json:"declineReason,omitempty"`
	Extra         map[string]interface{} `bson:",inline" json:"-"`
}

// Fields an author edit may never touch; moderation owns them.
var ProtectedArticleFields = []string{"_id", "authorEmail", "status", "viewCount", "postedAt", "declineReason", "isPremium"}

func (a Article) MarshalJSON() ([]byte, error) {
	type plain Article
	return marshalWithExtra(plain(a), a.Extra)
}

// ArticleQuery is the public listing filter. Limit 0 means unlimited.
type ArticleQuery struct {
	Publisher string
	Tag       string
	Search    string
	Sort      string
	Limit     int64
}
