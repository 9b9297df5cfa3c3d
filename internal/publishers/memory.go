package publishers

import (
	"context"
	"sync"

	"github.com/newsdesk/newsdesk-server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryPublisherRepository enforces the same one-publisher-per-email rule as the unique index.
type MemoryPublisherRepository struct {
	mu   sync.RWMutex
	list []models.Publisher
}

func NewMemoryPublisherRepository() *MemoryPublisherRepository {
	return &MemoryPublisherRepository{}
}

func (r *MemoryPublisherRepository) Insert(_ context.Context, p *models.Publisher) (models.InsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.list {
		if e.Email == p.Email {
			return models.InsertResult{}, ErrDuplicateEmail
		}
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.list = append(r.list, *p)
	return models.InsertResult{Acknowledged: true, InsertedID: p.ID.Hex()}, nil
}

func (r *MemoryPublisherRepository) GetByEmail(_ context.Context, email string) (*models.Publisher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.list {
		if e.Email == email {
			p := e
			return &p, nil
		}
	}
	return nil, nil
}

func (r *MemoryPublisherRepository) List(_ context.Context) ([]models.Publisher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Publisher{}, r.list...), nil
}

func (r *MemoryPublisherRepository) Delete(_ context.Context, id primitive.ObjectID) (models.DeleteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.list {
		if e.ID == id {
			r.list = append(r.list[:i], r.list[i+1:]...)
			return models.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
		}
	}
	return models.DeleteResult{Acknowledged: true}, nil
}

func (r *MemoryPublisherRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.list)), nil
}
