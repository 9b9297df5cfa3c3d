package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/newsdesk/newsdesk-server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUserRepository keeps users in process; used when MongoDB is not configured and in tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[string]*models.User{}}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	if u.PremiumTaken != nil {
		t := *u.PremiumTaken
		c.PremiumTaken = &t
	}
	if u.Profile != nil {
		c.Profile = make(map[string]interface{}, len(u.Profile))
		for k, v := range u.Profile {
			c.Profile[k] = v
		}
	}
	return &c
}

func (r *MemoryUserRepository) Upsert(_ context.Context, email string, fields map[string]interface{}) (models.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	res := models.UpdateResult{Acknowledged: true}
	u, ok := r.users[email]
	if ok {
		res.MatchedCount, res.ModifiedCount = 1, 1
	} else {
		u = &models.User{ID: primitive.NewObjectID(), Email: email, CreatedAt: now}
		r.users[email] = u
		res.UpsertedCount, res.UpsertedID = 1, u.ID.Hex()
	}
	for k, v := range fields {
		switch k {
		case "name":
			if s, ok := v.(string); ok {
				u.Name = s
				continue
			}
		case "photo":
			if s, ok := v.(string); ok {
				u.Photo = s
				continue
			}
		}
		if u.Profile == nil {
			u.Profile = map[string]interface{}{}
		}
		u.Profile[k] = v
	}
	u.UpdatedAt = now
	return res, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryUserRepository) AddRole(_ context.Context, email, role string) (models.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := models.UpdateResult{Acknowledged: true}
	u, ok := r.users[email]
	if !ok {
		return res, nil
	}
	res.MatchedCount = 1
	if !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
		res.ModifiedCount = 1
	}
	return res, nil
}

func (r *MemoryUserRepository) SetPremium(_ context.Context, email string, until time.Time) (models.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := models.UpdateResult{Acknowledged: true}
	u, ok := r.users[email]
	if !ok {
		return res, nil
	}
	until = until.UTC()
	u.PremiumTaken = &until
	u.UpdatedAt = time.Now().UTC()
	res.MatchedCount, res.ModifiedCount = 1, 1
	return res, nil
}
