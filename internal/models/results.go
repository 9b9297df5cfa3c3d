package models

import (
	"strings"

	"github.com/newsdesk/newsdesk-server/internal/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store acknowledgments echoed back to clients, shaped like the Mongo driver results.

type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

type UpdateResult struct {
	Acknowledged  bool   `json:"acknowledged"`
	MatchedCount  int64  `json:"matchedCount"`
	ModifiedCount int64  `json:"modifiedCount"`
	UpsertedCount int64  `json:"upsertedCount"`
	UpsertedID    string `json:"upsertedId,omitempty"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// ParseID converts a hex id from a path parameter.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, apperr.Wrap(apperr.BadRequest, "invalid id", err)
	}
	return oid, nil
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive.
func NormalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
