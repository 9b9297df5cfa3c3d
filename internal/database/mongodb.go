package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	UsersCollection             = "users"
	ArticlesCollection          = "articles"
	PublishersCollection        = "publishers"
	PublisherRequestsCollection = "publisherRequests"
	RequestEventsCollection     = "publisherRequestEvents"
)

// ConnectMongo opens a connection and returns the client. Caller should call client.Disconnect(ctx).
// Nested documents decode as bson.M so free-form fields render as plain JSON objects.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	clientOpts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the lookup indexes and the uniqueness constraints backing
// one publisher per email and one pending request per email. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
		},
		ArticlesCollection: {
			{Keys: bson.D{{Key: "authorEmail", Value: 1}}, Options: options.Index().SetName("author")},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "postedAt", Value: -1}}, Options: options.Index().SetName("status_posted")},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "viewCount", Value: -1}}, Options: options.Index().SetName("status_views")},
		},
		PublishersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
		},
		PublisherRequestsCollection: {
			{
				Keys: bson.D{{Key: "email", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetName("pending_email_unique").
					SetPartialFilterExpression(bson.M{"status": "pending"}),
			},
		},
		RequestEventsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}, {Key: "at", Value: -1}}, Options: options.Index().SetName("email_at")},
		},
	}
	for col, models := range specs {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", col, err)
		}
	}
	return nil
}
