// Package audit keeps the append-only history of publisher request transitions.
// Requests are deleted once resolved, so this log is the only record of outcomes.
package audit

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/newsdesk/newsdesk-server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store appends events and lists them newest first. An empty email lists everything.
type Store interface {
	Record(ctx context.Context, ev *models.PublisherRequestEvent) error
	List(ctx context.Context, email string, limit int64) ([]models.PublisherRequestEvent, error)
}

// MongoStore writes events with insert only; nothing updates or deletes them.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(col *mongo.Collection) *MongoStore {
	return &MongoStore{col: col}
}

func (s *MongoStore) Record(ctx context.Context, ev *models.PublisherRequestEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	res, err := s.col.InsertOne(ctx, ev)
	if err != nil {
		return fmt.Errorf("record %s event for %s: %w", ev.Action, ev.Email, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		ev.ID = oid
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, email string, limit int64) ([]models.PublisherRequestEvent, error) {
	filter := bson.M{}
	if email != "" {
		filter["email"] = email
	}
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := []models.PublisherRequestEvent{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type MemoryStore struct {
	mu     sync.RWMutex
	events []models.PublisherRequestEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Record(_ context.Context, ev *models.PublisherRequestEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	ev.ID = primitive.NewObjectID()
	s.events = append(s.events, *ev)
	return nil
}

func (s *MemoryStore) List(_ context.Context, email string, limit int64) ([]models.PublisherRequestEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.PublisherRequestEvent{}
	for i := len(s.events) - 1; i >= 0; i-- {
		if email == "" || s.events[i].Email == email {
			out = append(out, s.events[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
