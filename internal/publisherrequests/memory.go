package publisherrequests

import (
	"context"
	"sync"

	"github.com/newsdesk/newsdesk-server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRequestRepository mirrors the partial unique index: one pending request per email.
type MemoryRequestRepository struct {
	mu   sync.RWMutex
	list []models.PublisherRequest
}

func NewMemoryRequestRepository() *MemoryRequestRepository {
	return &MemoryRequestRepository{}
}

func (r *MemoryRequestRepository) Insert(_ context.Context, req *models.PublisherRequest) (models.InsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.Status == models.StatusPending {
		for _, e := range r.list {
			if e.Email == req.Email && e.Status == models.StatusPending {
				return models.InsertResult{}, ErrDuplicatePending
			}
		}
	}
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	r.list = append(r.list, *req)
	return models.InsertResult{Acknowledged: true, InsertedID: req.ID.Hex()}, nil
}

func (r *MemoryRequestRepository) find(match func(*models.PublisherRequest) bool) *models.PublisherRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.list {
		if match(&r.list[i]) {
			c := r.list[i]
			return &c
		}
	}
	return nil
}

func (r *MemoryRequestRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.PublisherRequest, error) {
	return r.find(func(e *models.PublisherRequest) bool { return e.ID == id }), nil
}

func (r *MemoryRequestRepository) FindByEmail(_ context.Context, email string) (*models.PublisherRequest, error) {
	return r.find(func(e *models.PublisherRequest) bool { return e.Email == email }), nil
}

func (r *MemoryRequestRepository) FindPendingByEmail(_ context.Context, email string) (*models.PublisherRequest, error) {
	return r.find(func(e *models.PublisherRequest) bool {
		return e.Email == email && e.Status == models.StatusPending
	}), nil
}

func (r *MemoryRequestRepository) List(_ context.Context) ([]models.PublisherRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.PublisherRequest{}, r.list...), nil
}

func (r *MemoryRequestRepository) Delete(_ context.Context, id primitive.ObjectID) (models.DeleteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.list {
		if r.list[i].ID == id {
			r.list = append(r.list[:i], r.list[i+1:]...)
			return models.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
		}
	}
	return models.DeleteResult{Acknowledged: true}, nil
}

func (r *MemoryRequestRepository) CountPending(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, e := range r.list {
		if e.Status == models.StatusPending {
			n++
		}
	}
	return n, nil
}
