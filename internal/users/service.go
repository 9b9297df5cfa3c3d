package users

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/newsdesk/newsdesk-server/internal/apperr"
	"github.com/newsdesk/newsdesk-server/internal/models"
)

// ArticleCounter and PublisherCounter feed the dashboard stats.
type ArticleCounter interface {
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type PublisherCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Subscription is the response of a premium grant.
type Subscription struct {
	Success      bool         `json:"success"`
	User         *models.User `json:"user"`
	PremiumUntil time.Time    `json:"premiumUntil"`
}

// Service encapsulates user-related business logic
type Service struct {
	repo   UserRepository
	admins map[string]bool
	now    func() time.Time
}

// NewService builds the service. adminEmails are treated as admins even without a stored role.
func NewService(r UserRepository, adminEmails []string) *Service {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[models.NormalizeEmail(e)] = true
	}
	return &Service{repo: r, admins: admins, now: time.Now}
}

func (s *Service) UpsertProfile(ctx context.Context, email string, fields map[string]interface{}) (models.UpdateResult, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return models.UpdateResult{}, apperr.NewBadRequest("email is required")
	}
	for _, p := range models.ProtectedUserFields {
		delete(fields, p)
	}
	res, err := s.repo.Upsert(ctx, email, fields)
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("upsert user %s: %w", email, err)
	}
	return res, nil
}

func (s *Service) Get(ctx context.Context, email string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, apperr.NewNotFound("User not found")
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) MakeAdmin(ctx context.Context, email string) (models.UpdateResult, error) {
	return s.repo.AddRole(ctx, models.NormalizeEmail(email), models.RoleAdmin)
}

// HasRole implements middleware.RoleChecker.
func (s *Service) HasRole(ctx context.Context, email, role string) (bool, error) {
	email = models.NormalizeEmail(email)
	if role == models.RoleAdmin && s.admins[email] {
		return true, nil
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return u.HasRole(role), nil
}

// DurationFromJSON accepts only a positive, finite JSON number.
func DurationFromJSON(v interface{}) (float64, error) {
	d, ok := v.(float64)
	if !ok || d <= 0 || math.IsInf(d, 0) || math.IsNaN(d) {
		return 0, apperr.NewBadRequest("Invalid duration")
	}
	return d, nil
}

// Subscribe sets premiumTaken to now+minutes. A later grant replaces an earlier one.
func (s *Service) Subscribe(ctx context.Context, email string, minutes float64) (*Subscription, error) {
	if _, err := DurationFromJSON(minutes); err != nil {
		return nil, err
	}
	email = models.NormalizeEmail(email)
	if _, err := s.Get(ctx, email); err != nil {
		return nil, err
	}
	until := s.now().UTC().Add(time.Duration(minutes * float64(time.Minute)))
	res, err := s.repo.SetPremium(ctx, email, until)
	if err != nil {
		return nil, fmt.Errorf("set premium for %s: %w", email, err)
	}
	if res.MatchedCount == 0 {
		return nil, apperr.New(apperr.Internal, "Subscription update failed")
	}
	u, err := s.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	return &Subscription{Success: true, User: u, PremiumUntil: until}, nil
}

// Stats counts premium users as those with an unexpired entitlement.
func (s *Service) Stats(ctx context.Context, articles ArticleCounter, publishers PublisherCounter) (*models.Stats, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	now := s.now()
	st := &models.Stats{Total: int64(len(all))}
	for i := range all {
		if all[i].IsPremium(now) {
			st.Premium++
		}
	}
	st.Normal = st.Total - st.Premium

	if st.Publishers, err = publishers.Count(ctx); err != nil {
		return nil, fmt.Errorf("count publishers: %w", err)
	}
	if st.Articles, err = articles.CountByStatus(ctx, models.StatusApproved); err != nil {
		return nil, fmt.Errorf("count approved articles: %w", err)
	}
	if st.PendingArticles, err = articles.CountByStatus(ctx, models.StatusPending); err != nil {
		return nil, fmt.Errorf("count pending articles: %w", err)
	}
	return st, nil
}
