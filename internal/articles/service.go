package articles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/newsdesk/newsdesk-server/internal/apperr"
	"github.com/newsdesk/newsdesk-server/internal/locks"
	"github.com/newsdesk/newsdesk-server/internal/models"
	"github.com/newsdesk/newsdesk-server/pkg/logger"
	"github.com/newsdesk/newsdesk-server/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultSort   = "postedAt"
	TrendingLimit = 6
	LatestLimit   = 2
)

var sortFieldRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.]*$`)

// ErrPostLimit is the posting gate rejection for non-premium authors.
var ErrPostLimit = apperr.NewForbidden("Normal user can post only 1 article.")

// UserLookup is the slice of the user store the posting gate needs.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type Service struct {
	repo    ArticleRepository
	users   UserLookup
	locker  locks.Locker
	lockTTL time.Duration
	now     func() time.Time
}

func NewService(repo ArticleRepository, users UserLookup, locker locks.Locker, lockTTL time.Duration) *Service {
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &Service{repo: repo, users: users, locker: locker, lockTTL: lockTTL, now: time.Now}
}

// DecodeDraft parses a client article body. Moderation and counter fields are dropped;
// isPremium is honoured only when it is the JSON boolean true.
func DecodeDraft(body []byte) (*models.Article, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, apperr.NewBadRequest("Invalid article")
	}
	premium := raw["isPremium"] == true
	for _, k := range models.ProtectedArticleFields {
		delete(raw, k)
	}
	clean, err := json.Marshal(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.BadRequest, "Invalid article", err)
	}
	var a models.Article
	extra, err := models.DecodeWithExtra(clean, &a)
	if err != nil {
		return nil, apperr.Wrap(apperr.BadRequest, "Invalid article", err)
	}
	if len(extra) > 0 {
		a.Extra = extra
	}
	a.IsPremium = premium
	return &a, nil
}

// Post inserts a pending article for author. A non-premium author who already has an
// article is refused. The check and insert run under a per-author lock.
func (s *Service) Post(ctx context.Context, author string, a *models.Article) (models.InsertResult, error) {
	author = models.NormalizeEmail(author)
	if author == "" {
		return models.InsertResult{}, apperr.New(apperr.Unauthorized, "Unauthorized: No token")
	}

	release, err := s.locker.Acquire(ctx, "article:"+author, s.lockTTL)
	if err != nil {
		if errors.Is(err, locks.ErrLocked) {
			return models.InsertResult{}, apperr.NewConflict("Another post for this account is in progress")
		}
		return models.InsertResult{}, fmt.Errorf("acquire post lock: %w", err)
	}
	defer release()

	user, err := s.users.GetByEmail(ctx, author)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("load author: %w", err)
	}
	posted, err := s.repo.HasAuthor(ctx, author)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("check prior articles: %w", err)
	}
	if posted && !user.IsPremium(s.now()) {
		metrics.ArticlePosts.WithLabelValues("forbidden").Inc()
		return models.InsertResult{}, ErrPostLimit
	}

	a.ID = primitive.NilObjectID
	a.AuthorEmail = author
	a.Status = models.StatusPending
	a.ViewCount = 0
	a.DeclineReason = ""
	a.PostedAt = s.now().UTC()
	res, err := s.repo.Insert(ctx, a)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert article: %w", err)
	}
	metrics.ArticlePosts.WithLabelValues("created").Inc()
	logger.Infof("article %s posted by %s", res.InsertedID, author)
	return res, nil
}

// List is the public query over approved articles.
func (s *Service) List(ctx context.Context, q models.ArticleQuery) ([]models.Article, error) {
	sortField := q.Sort
	if sortField == "" {
		sortField = DefaultSort
	}
	if !sortFieldRe.MatchString(sortField) {
		return nil, apperr.NewBadRequest("Invalid sort field")
	}
	if q.Limit < 0 {
		q.Limit = 0
	}
	return s.repo.Find(ctx, Filter{
		Status:    models.StatusApproved,
		Publisher: q.Publisher,
		Tag:       q.Tag,
		Search:    q.Search,
		SortField: sortField,
		Limit:     q.Limit,
	})
}

// View returns the article with its view count already incremented.
func (s *Service) View(ctx context.Context, id string) (*models.Article, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.IncrementViews(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("view article %s: %w", id, err)
	}
	if a == nil {
		return nil, apperr.NewNotFound("Article not found")
	}
	return a, nil
}

func (s *Service) Trending(ctx context.Context) ([]models.Article, error) {
	return s.repo.Find(ctx, Filter{Status: models.StatusApproved, SortField: "viewCount", Limit: TrendingLimit})
}

// Latest returns the newest approved articles; limit <= 0 means LatestLimit.
func (s *Service) Latest(ctx context.Context, limit int64) ([]models.Article, error) {
	if limit <= 0 {
		limit = LatestLimit
	}
	return s.repo.Find(ctx, Filter{Status: models.StatusApproved, SortField: DefaultSort, Limit: limit})
}

func (s *Service) Premium(ctx context.Context) ([]models.Article, error) {
	return s.repo.Find(ctx, Filter{Status: models.StatusApproved, PremiumOnly: true, SortField: DefaultSort})
}

func (s *Service) ByAuthor(ctx context.Context, email string) ([]models.Article, error) {
	return s.repo.Find(ctx, Filter{AuthorEmail: models.NormalizeEmail(email), SortField: DefaultSort})
}

// All is the moderation listing, every status.
func (s *Service) All(ctx context.Context) ([]models.Article, error) {
	return s.repo.Find(ctx, Filter{SortField: DefaultSort})
}

// owned loads the article and checks that editor may change it.
func (s *Service) owned(ctx context.Context, editor string, admin bool, id string) (*models.Article, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("load article %s: %w", id, err)
	}
	if a == nil {
		return nil, apperr.NewNotFound("Article not found")
	}
	if !admin && a.AuthorEmail != models.NormalizeEmail(editor) {
		return nil, apperr.NewForbidden("Forbidden: not the author")
	}
	return a, nil
}

// Update applies an author edit. Protected fields are ignored.
func (s *Service) Update(ctx context.Context, editor string, admin bool, id string, fields map[string]interface{}) (models.UpdateResult, error) {
	a, err := s.owned(ctx, editor, admin, id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	for _, p := range models.ProtectedArticleFields {
		delete(fields, p)
	}
	if len(fields) == 0 {
		return models.UpdateResult{Acknowledged: true, MatchedCount: 1}, nil
	}
	return s.repo.Update(ctx, a.ID, fields)
}

func (s *Service) Delete(ctx context.Context, editor string, admin bool, id string) (models.DeleteResult, error) {
	a, err := s.owned(ctx, editor, admin, id)
	if err != nil {
		return models.DeleteResult{}, err
	}
	return s.repo.Delete(ctx, a.ID)
}

func (s *Service) moderate(ctx context.Context, id string, set map[string]interface{}) (models.UpdateResult, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	return s.repo.Update(ctx, oid, set)
}

func (s *Service) Approve(ctx context.Context, id string) (models.UpdateResult, error) {
	return s.moderate(ctx, id, map[string]interface{}{"status": models.StatusApproved})
}

func (s *Service) Decline(ctx context.Context, id, reason string) (models.UpdateResult, error) {
	return s.moderate(ctx, id, map[string]interface{}{"status": models.StatusDeclined, "declineReason": reason})
}

func (s *Service) MarkPremium(ctx context.Context, id string) (models.UpdateResult, error) {
	return s.moderate(ctx, id, map[string]interface{}{"isPremium": true})
}

// Remove is the admin delete; zero matches is not an error.
func (s *Service) Remove(ctx context.Context, id string) (models.DeleteResult, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return models.DeleteResult{}, err
	}
	return s.repo.Delete(ctx, oid)
}

func (s *Service) CountByStatus(ctx context.Context, status string) (int64, error) {
	return s.repo.CountByStatus(ctx, status)
}

func (s *Service) CountApprovedByPublisher(ctx context.Context, publisher string) (int64, error) {
	return s.repo.CountApprovedByPublisher(ctx, publisher)
}
