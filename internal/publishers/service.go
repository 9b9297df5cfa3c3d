package publishers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newsdesk/newsdesk-server/internal/apperr"
	"github.com/newsdesk/newsdesk-server/internal/models"
)

var errAlreadyPublisher = apperr.NewConflict("This person is already a publisher")

// ArticleCounter reports approved articles filed under a publisher name.
type ArticleCounter interface {
	CountApprovedByPublisher(ctx context.Context, publisher string) (int64, error)
}

type Service struct {
	repo     PublisherRepository
	articles ArticleCounter
	now      func() time.Time
}

func NewService(repo PublisherRepository, articles ArticleCounter) *Service {
	return &Service{repo: repo, articles: articles, now: time.Now}
}

// Create adds a publisher directly, bypassing the request workflow.
func (s *Service) Create(ctx context.Context, name, email, logo string) (models.InsertResult, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return models.InsertResult{}, apperr.NewBadRequest("email is required")
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("lookup publisher: %w", err)
	}
	if existing != nil {
		return models.InsertResult{}, errAlreadyPublisher
	}
	res, err := s.repo.Insert(ctx, &models.Publisher{Name: name, Email: email, Logo: logo, CreatedAt: s.now().UTC()})
	if errors.Is(err, ErrDuplicateEmail) {
		return models.InsertResult{}, errAlreadyPublisher
	}
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert publisher: %w", err)
	}
	return res, nil
}

// List returns every publisher with its approved article count.
func (s *Service) List(ctx context.Context) ([]models.PublisherListing, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list publishers: %w", err)
	}
	out := make([]models.PublisherListing, 0, len(all))
	for _, p := range all {
		n, err := s.articles.CountApprovedByPublisher(ctx, p.Name)
		if err != nil {
			return nil, fmt.Errorf("count articles for %s: %w", p.Name, err)
		}
		out = append(out, models.PublisherListing{Publisher: p, ArticleCount: n})
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id string) (models.DeleteResult, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return models.DeleteResult{}, err
	}
	return s.repo.Delete(ctx, oid)
}

func (s *Service) CheckEmail(ctx context.Context, email string) (bool, error) {
	p, err := s.repo.GetByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return false, err
	}
	return p != nil, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
