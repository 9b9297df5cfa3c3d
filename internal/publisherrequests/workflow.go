// Package publisherrequests implements the publisher onboarding workflow:
// a user submits a request, an admin approves or declines it.
//
// Per email the state moves NONE -> PENDING -> APPROVED | DECLINED. Resolved
// requests are deleted; the audit store keeps the history. Approve performs
// several independent writes, each idempotent, so a failed approval leaves the
// request in place and can simply be retried.
package publisherrequests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newsdesk/newsdesk-server/internal/apperr"
	"github.com/newsdesk/newsdesk-server/internal/audit"
	"github.com/newsdesk/newsdesk-server/internal/locks"
	"github.com/newsdesk/newsdesk-server/internal/models"
	"github.com/newsdesk/newsdesk-server/internal/publishers"
	"github.com/newsdesk/newsdesk-server/pkg/logger"
	"github.com/newsdesk/newsdesk-server/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrAlreadyPublisher = apperr.NewConflict("Already a publisher")
	ErrAlreadyRequested = apperr.NewConflict("Already requested")
	ErrRequestNotFound  = apperr.NewNotFound("Request not found")
	errInProgress       = apperr.NewConflict("Request is being processed")
)

// UserStore is the part of the user store the workflow writes to.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	AddRole(ctx context.Context, email, role string) (models.UpdateResult, error)
}

// PublisherStore must report a second insert for the same email as publishers.ErrDuplicateEmail.
type PublisherStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Publisher, error)
	Insert(ctx context.Context, p *models.Publisher) (models.InsertResult, error)
}

type Workflow struct {
	requests   RequestRepository
	users      UserStore
	publishers PublisherStore
	events     audit.Store
	locker     locks.Locker
	lockTTL    time.Duration
	// lockWait bounds how long a transition waits for another holder of the same email.
	lockWait time.Duration
	now      func() time.Time
}

func NewWorkflow(requests RequestRepository, users UserStore, pubs PublisherStore, events audit.Store, locker locks.Locker, lockTTL time.Duration) *Workflow {
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &Workflow{
		requests:   requests,
		users:      users,
		publishers: pubs,
		events:     events,
		locker:     locker,
		lockTTL:    lockTTL,
		lockWait:   lockTTL,
		now:        time.Now,
	}
}

func lockKey(email string) string { return "publisher:" + email }

// lock waits for the per-email lock, polling with backoff. It gives up with
// errInProgress after lockWait or when ctx ends; a crashed holder's lock expires
// after lockTTL, so waiting lockTTL is enough to outlast it.
func (w *Workflow) lock(ctx context.Context, email string) (func(), error) {
	deadline := time.Now().Add(w.lockWait)
	backoff := 5 * time.Millisecond
	for {
		release, err := w.locker.Acquire(ctx, lockKey(email), w.lockTTL)
		if err == nil {
			return release, nil
		}
		if !errors.Is(err, locks.ErrLocked) {
			return nil, fmt.Errorf("acquire lock for %s: %w", email, err)
		}
		if time.Now().Add(backoff).After(deadline) {
			return nil, errInProgress
		}
		select {
		case <-ctx.Done():
			return nil, errInProgress
		case <-time.After(backoff):
		}
		if backoff < 100*time.Millisecond {
			backoff *= 2
		}
	}
}

// record never fails the transition it describes.
func (w *Workflow) record(ctx context.Context, req *models.PublisherRequest, action, actor string) {
	ev := &models.PublisherRequestEvent{
		RequestID: req.ID,
		Email:     req.Email,
		Action:    action,
		Actor:     actor,
		At:        w.now().UTC(),
	}
	if err := w.events.Record(ctx, ev); err != nil {
		logger.Errorf("audit: %v", err)
	}
}

// Submit files a pending request for email, the authenticated caller.
func (w *Workflow) Submit(ctx context.Context, email, name, logo, reason string) (models.InsertResult, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return models.InsertResult{}, apperr.New(apperr.Unauthorized, "Unauthorized: No token")
	}
	release, err := w.lock(ctx, email)
	if errors.Is(err, errInProgress) {
		metrics.PublisherRequests.WithLabelValues("conflict").Inc()
		return models.InsertResult{}, ErrAlreadyRequested
	}
	if err != nil {
		return models.InsertResult{}, err
	}
	defer release()

	pub, err := w.publishers.GetByEmail(ctx, email)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("lookup publisher: %w", err)
	}
	if pub != nil {
		metrics.PublisherRequests.WithLabelValues("conflict").Inc()
		return models.InsertResult{}, ErrAlreadyPublisher
	}
	pending, err := w.requests.FindPendingByEmail(ctx, email)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("lookup pending request: %w", err)
	}
	if pending != nil {
		metrics.PublisherRequests.WithLabelValues("conflict").Inc()
		return models.InsertResult{}, ErrAlreadyRequested
	}

	req := &models.PublisherRequest{
		Email:       email,
		Name:        name,
		Logo:        logo,
		Reason:      reason,
		Status:      models.StatusPending,
		RequestedAt: w.now().UTC(),
	}
	res, err := w.requests.Insert(ctx, req)
	if errors.Is(err, ErrDuplicatePending) {
		metrics.PublisherRequests.WithLabelValues("conflict").Inc()
		return models.InsertResult{}, ErrAlreadyRequested
	}
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert request: %w", err)
	}
	w.record(ctx, req, models.EventSubmitted, email)
	metrics.PublisherRequests.WithLabelValues("submitted").Inc()
	logger.With("publisher request submitted", "id", res.InsertedID, "email", email)
	return res, nil
}

// CheckStatus reports the caller's request and whether they are fully a publisher:
// both the role and the publisher record must be present.
func (w *Workflow) CheckStatus(ctx context.Context, email string) (*models.RequestStatus, error) {
	email = models.NormalizeEmail(email)
	user, err := w.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	req, err := w.requests.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup request: %w", err)
	}
	pub, err := w.publishers.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup publisher: %w", err)
	}
	st := &models.RequestStatus{
		Exists:      req != nil,
		IsPublisher: user.HasRole(models.RolePublisher) && pub != nil,
	}
	if req != nil && req.Status != "" {
		s := req.Status
		st.Status = &s
	}
	return st, nil
}

func (w *Workflow) load(ctx context.Context, id primitive.ObjectID) (*models.PublisherRequest, error) {
	req, err := w.requests.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load request %s: %w", id.Hex(), err)
	}
	return req, nil
}

// Approve grants the publisher role, creates the publisher record when missing and
// deletes the request, in that order.
func (w *Workflow) Approve(ctx context.Context, actor, id string) error {
	oid, err := models.ParseID(id)
	if err != nil {
		return err
	}
	req, err := w.load(ctx, oid)
	if err != nil {
		return err
	}
	if req == nil {
		metrics.PublisherRequests.WithLabelValues("not_found").Inc()
		return ErrRequestNotFound
	}

	release, err := w.lock(ctx, req.Email)
	if err != nil {
		return err
	}
	defer release()

	// a concurrent approve or decline may have resolved it while we waited for the lock
	if req, err = w.load(ctx, oid); err != nil {
		return err
	}
	if req == nil {
		metrics.PublisherRequests.WithLabelValues("not_found").Inc()
		return ErrRequestNotFound
	}

	if _, err := w.users.AddRole(ctx, req.Email, models.RolePublisher); err != nil {
		return fmt.Errorf("grant publisher role to %s: %w", req.Email, err)
	}

	pub, err := w.publishers.GetByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("lookup publisher: %w", err)
	}
	if pub == nil {
		_, err := w.publishers.Insert(ctx, &models.Publisher{
			Name:      req.Name,
			Email:     req.Email,
			Logo:      req.Logo,
			CreatedAt: w.now().UTC(),
		})
		if err != nil && !errors.Is(err, publishers.ErrDuplicateEmail) {
			return fmt.Errorf("create publisher for %s: %w", req.Email, err)
		}
	}

	if _, err := w.requests.Delete(ctx, req.ID); err != nil {
		return fmt.Errorf("delete request %s: %w", id, err)
	}
	w.record(ctx, req, models.EventApproved, actor)
	metrics.PublisherRequests.WithLabelValues("approved").Inc()
	logger.With("publisher request approved", "id", id, "email", req.Email, "actor", actor)
	return nil
}

// Decline deletes the request. Deleting nothing is not an error. It takes no lock:
// the delete is a single atomic write and must succeed even while an approval for
// the same email is in flight.
func (w *Workflow) Decline(ctx context.Context, actor, id string) (models.DeleteResult, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return models.DeleteResult{}, err
	}
	// loaded only to describe the request in the audit log
	req, err := w.load(ctx, oid)
	if err != nil {
		return models.DeleteResult{}, err
	}

	res, err := w.requests.Delete(ctx, oid)
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("delete request %s: %w", id, err)
	}
	if res.DeletedCount > 0 && req != nil {
		w.record(ctx, req, models.EventDeclined, actor)
		metrics.PublisherRequests.WithLabelValues("declined").Inc()
		logger.With("publisher request declined", "id", id, "email", req.Email, "actor", actor)
	}
	return res, nil
}

func (w *Workflow) List(ctx context.Context) ([]models.PublisherRequest, error) {
	return w.requests.List(ctx)
}

func (w *Workflow) CountPending(ctx context.Context) (int64, error) {
	return w.requests.CountPending(ctx)
}

// Events returns the audit trail, newest first. An empty email lists all.
func (w *Workflow) Events(ctx context.Context, email string, limit int64) ([]models.PublisherRequestEvent, error) {
	return w.events.List(ctx, models.NormalizeEmail(email), limit)
}
