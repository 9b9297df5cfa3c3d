package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Publisher struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Logo      string             `bson:"logo" json:"logo"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// PublisherListing adds the number of approved articles filed under the publisher's name.
type PublisherListing struct {
	Publisher
	ArticleCount int64 `json:"articleCount"`
}

// PublisherRequest is a pending application to become a publisher.
// Resolved requests are deleted, so Status is always StatusPending while stored.
type PublisherRequest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email       string             `bson:"email" json:"email"`
	Name        string             `bson:"name" json:"name"`
	Logo        string             `bson:"logo" json:"logo"`
	Reason      string             `bson:"reason" json:"reason"`
	Status      string             `bson:"status" json:"status"`
	RequestedAt time.Time          `bson:"requestedAt" json:"requestedAt"`
}

// RequestStatus answers GET /publisher-request/check.
type RequestStatus struct {
	Exists      bool    `json:"exists"`
	Status      *string `json:"status"`
	IsPublisher bool    `json:"isPublisher"`
}

const (
	EventSubmitted = "submitted"
	EventApproved  = "approved"
	EventDeclined  = "declined"
)

// PublisherRequestEvent is one entry of the append-only workflow log.
type PublisherRequestEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	RequestID primitive.ObjectID `bson:"requestId" json:"requestId"`
	Email     string             `bson:"email" json:"email"`
	Action    string             `bson:"action" json:"action"`
	Actor     string             `bson:"actor,omitempty" json:"actor,omitempty"`
	At        time.Time          `bson:"at" json:"at"`
}
