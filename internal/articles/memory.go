package articles

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/newsdesk/newsdesk-server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryArticleRepository is the in-process store used without MongoDB and in tests.
type MemoryArticleRepository struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	byID  map[primitive.ObjectID]*models.Article
}

func NewMemoryArticleRepository() *MemoryArticleRepository {
	return &MemoryArticleRepository{byID: map[primitive.ObjectID]*models.Article{}}
}

func cloneArticle(a *models.Article) models.Article {
	c := *a
	c.Tags = append([]string(nil), a.Tags...)
	if a.Extra != nil {
		c.Extra = make(map[string]interface{}, len(a.Extra))
		for k, v := range a.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

func (r *MemoryArticleRepository) Insert(_ context.Context, a *models.Article) (models.InsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	c := cloneArticle(a)
	r.byID[a.ID] = &c
	r.order = append(r.order, a.ID)
	return models.InsertResult{Acknowledged: true, InsertedID: a.ID.Hex()}, nil
}

func (r *MemoryArticleRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	c := cloneArticle(a)
	return &c, nil
}

func (r *MemoryArticleRepository) IncrementViews(_ context.Context, id primitive.ObjectID) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	a.ViewCount++
	c := cloneArticle(a)
	return &c, nil
}

func (f Filter) matches(a *models.Article) bool {
	switch {
	case f.Status != "" && a.Status != f.Status:
		return false
	case f.AuthorEmail != "" && a.AuthorEmail != f.AuthorEmail:
		return false
	case f.Publisher != "" && a.Publisher != f.Publisher:
		return false
	case f.PremiumOnly && !a.IsPremium:
		return false
	case f.Search != "" && !strings.Contains(strings.ToLower(a.Title), strings.ToLower(f.Search)):
		return false
	}
	if f.Tag != "" {
		for _, t := range a.Tags {
			if t == f.Tag {
				return true
			}
		}
		return false
	}
	return true
}

// less orders descending by field; unknown fields fall back to Extra values.
func less(a, b *models.Article, field string) bool {
	switch field {
	case "postedAt":
		return a.PostedAt.After(b.PostedAt)
	case "viewCount":
		return a.ViewCount > b.ViewCount
	case "title":
		return a.Title > b.Title
	}
	switch av := a.Extra[field].(type) {
	case float64:
		bv, _ := b.Extra[field].(float64)
		return av > bv
	case string:
		bv, _ := b.Extra[field].(string)
		return av > bv
	case time.Time:
		bv, _ := b.Extra[field].(time.Time)
		return av.After(bv)
	}
	return false
}

func (r *MemoryArticleRepository) Find(_ context.Context, f Filter) ([]models.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Article{}
	for _, id := range r.order {
		if a := r.byID[id]; f.matches(a) {
			out = append(out, cloneArticle(a))
		}
	}
	if f.SortField != "" {
		sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j], f.SortField) })
	}
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *MemoryArticleRepository) HasAuthor(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.byID {
		if a.AuthorEmail == email {
			return true, nil
		}
	}
	return false, nil
}

func toStrings(v interface{}) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, x := range t {
			s, ok := x.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func applySet(a *models.Article, set map[string]interface{}) {
	for k, v := range set {
		s, isStr := v.(string)
		switch {
		case k == "title" && isStr:
			a.Title = s
		case k == "description" && isStr:
			a.Description = s
		case k == "image" && isStr:
			a.Image = s
		case k == "publisher" && isStr:
			a.Publisher = s
		case k == "status" && isStr:
			a.Status = s
		case k == "declineReason" && isStr:
			a.DeclineReason = s
		case k == "isPremium":
			a.IsPremium, _ = v.(bool)
		case k == "tags":
			if tags, ok := toStrings(v); ok {
				a.Tags = tags
				continue
			}
			fallthrough
		default:
			if a.Extra == nil {
				a.Extra = map[string]interface{}{}
			}
			a.Extra[k] = v
		}
	}
}

func (r *MemoryArticleRepository) Update(_ context.Context, id primitive.ObjectID, set map[string]interface{}) (models.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := models.UpdateResult{Acknowledged: true}
	a, ok := r.byID[id]
	if !ok {
		return res, nil
	}
	applySet(a, set)
	res.MatchedCount, res.ModifiedCount = 1, 1
	return res, nil
}

func (r *MemoryArticleRepository) Delete(_ context.Context, id primitive.ObjectID) (models.DeleteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := models.DeleteResult{Acknowledged: true}
	if _, ok := r.byID[id]; !ok {
		return res, nil
	}
	delete(r.byID, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	res.DeletedCount = 1
	return res, nil
}

func (r *MemoryArticleRepository) CountByStatus(_ context.Context, status string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, a := range r.byID {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *MemoryArticleRepository) CountApprovedByPublisher(_ context.Context, publisher string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, a := range r.byID {
		if a.Publisher == publisher && a.Status == models.StatusApproved {
			n++
		}
	}
	return n, nil
}
