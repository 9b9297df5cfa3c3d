package publisherrequests

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/newsdesk/newsdesk-server/internal/apperr"
	"github.com/newsdesk/newsdesk-server/internal/audit"
	"github.com/newsdesk/newsdesk-server/internal/locks"
	"github.com/newsdesk/newsdesk-server/internal/models"
	"github.com/newsdesk/newsdesk-server/internal/publishers"
	"github.com/newsdesk/newsdesk-server/internal/users"
	"github.com/newsdesk/newsdesk-server/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	wf       *Workflow
	requests *MemoryRequestRepository
	users    *users.MemoryUserRepository
	pubs     *publishers.MemoryPublisherRepository
	events   *audit.MemoryStore
}

func newHarness(t *testing.T, locker locks.Locker) *harness {
	t.Helper()
	h := &harness{
		requests: NewMemoryRequestRepository(),
		users:    users.NewMemoryUserRepository(),
		pubs:     publishers.NewMemoryPublisherRepository(),
		events:   audit.NewMemoryStore(),
	}
	if locker == nil {
		locker = locks.NewMemoryLocker()
	}
	h.wf = NewWorkflow(h.requests, h.users, h.pubs, h.events, locker, time.Second)
	return h
}

// flakyPublishers fails the first Insert.
type flakyPublishers struct {
	*publishers.MemoryPublisherRepository
	failed bool
}

func (f *flakyPublishers) Insert(ctx context.Context, p *models.Publisher) (models.InsertResult, error) {
	if !f.failed {
		f.failed = true
		return models.InsertResult{}, errors.New("connection reset")
	}
	return f.MemoryPublisherRepository.Insert(ctx, p)
}

func TestSubmit_OnePendingPerEmail(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	res, err := h.wf.Submit(ctx, "Writer@Example.com", "Daily", "logo.png", "I write")
	require.NoError(t, err)
	assert.True(t, res.Acknowledged)
	assert.NotEmpty(t, res.InsertedID)

	_, err = h.wf.Submit(ctx, "writer@example.com", "Daily", "", "")
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Already requested", apperr.Message(err, ""))

	n, err := h.wf.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSubmit_ConcurrentSubmissionsYieldOneRequest(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	h := newHarness(t, locks.NewRedisLocker(redis.NewClient(&redis.Options{Addr: m.Addr()}), ""))

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.wf.Submit(context.Background(), "racer@example.com", "R", "", "")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, "Already requested", apperr.Message(err, ""))
	}
	assert.Equal(t, 1, ok)
	list, err := h.wf.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSubmit_RejectsExistingPublisher(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, err := h.pubs.Insert(ctx, &models.Publisher{Name: "Daily", Email: "desk@daily.com"})
	require.NoError(t, err)

	_, err = h.wf.Submit(ctx, "desk@daily.com", "Daily", "", "")
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Already a publisher", apperr.Message(err, ""))
}

func TestApprove_GrantsRoleCreatesPublisherDeletesRequest(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, _ = h.users.Upsert(ctx, "writer@example.com", map[string]interface{}{"name": "W"})
	res, err := h.wf.Submit(ctx, "writer@example.com", "Daily", "logo.png", "reason")
	require.NoError(t, err)

	require.NoError(t, h.wf.Approve(ctx, "admin@example.com", res.InsertedID))

	u, _ := h.users.GetByEmail(ctx, "writer@example.com")
	assert.True(t, u.HasRole(models.RolePublisher))
	p, _ := h.pubs.GetByEmail(ctx, "writer@example.com")
	require.NotNil(t, p)
	assert.Equal(t, "Daily", p.Name)
	assert.Equal(t, "logo.png", p.Logo)
	left, _ := h.requests.List(ctx)
	assert.Empty(t, left)

	// resolved requests are gone
	err = h.wf.Approve(ctx, "admin@example.com", res.InsertedID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "Request not found", apperr.Message(err, ""))

	events, err := h.wf.Events(ctx, "writer@example.com", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventApproved, events[0].Action)
	assert.Equal(t, "admin@example.com", events[0].Actor)
}

func TestApprove_ExistingPublisherIsNotDuplicated(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	res, err := h.wf.Submit(ctx, "writer@example.com", "Daily", "", "")
	require.NoError(t, err)
	// created directly by an admin while the request was pending
	_, err = h.pubs.Insert(ctx, &models.Publisher{Name: "Daily", Email: "writer@example.com"})
	require.NoError(t, err)

	require.NoError(t, h.wf.Approve(ctx, "admin@example.com", res.InsertedID))
	n, _ := h.pubs.Count(ctx)
	assert.Equal(t, int64(1), n)
}

func TestApprove_FailureLeavesRequestForRetry(t *testing.T) {
	h := newHarness(t, nil)
	flaky := &flakyPublishers{MemoryPublisherRepository: h.pubs}
	h.wf = NewWorkflow(h.requests, h.users, flaky, h.events, locks.NewMemoryLocker(), time.Second)
	ctx := context.Background()
	_, _ = h.users.Upsert(ctx, "writer@example.com", nil)

	res, err := h.wf.Submit(ctx, "writer@example.com", "Daily", "", "")
	require.NoError(t, err)

	err = h.wf.Approve(ctx, "admin@example.com", res.InsertedID)
	require.Error(t, err)
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
	pending, _ := h.requests.FindPendingByEmail(ctx, "writer@example.com")
	require.NotNil(t, pending)

	require.NoError(t, h.wf.Approve(ctx, "admin@example.com", res.InsertedID))
	u, _ := h.users.GetByEmail(ctx, "writer@example.com")
	assert.Equal(t, []string{models.RolePublisher}, u.Roles)
	n, _ := h.pubs.Count(ctx)
	assert.Equal(t, int64(1), n)
}

func TestApprove_MalformedID(t *testing.T) {
	h := newHarness(t, nil)
	err := h.wf.Approve(context.Background(), "admin@example.com", "not-an-id")
	require.ErrorIs(t, err, apperr.ErrBadRequest)
}

func TestDecline_IsIdempotent(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	res, err := h.wf.Submit(ctx, "writer@example.com", "Daily", "", "")
	require.NoError(t, err)

	del, err := h.wf.Decline(ctx, "admin@example.com", res.InsertedID)
	require.NoError(t, err)
	assert.Equal(t, models.DeleteResult{Acknowledged: true, DeletedCount: 1}, del)

	del, err = h.wf.Decline(ctx, "admin@example.com", res.InsertedID)
	require.NoError(t, err)
	assert.Equal(t, models.DeleteResult{Acknowledged: true, DeletedCount: 0}, del)

	del, err = h.wf.Decline(ctx, "admin@example.com", "64b7f0c2a1b2c3d4e5f60718")
	require.NoError(t, err)
	assert.Equal(t, int64(0), del.DeletedCount)

	// declined users may ask again
	_, err = h.wf.Submit(ctx, "writer@example.com", "Daily", "", "second try")
	require.NoError(t, err)

	events, _ := h.wf.Events(ctx, "writer@example.com", 0)
	actions := []string{}
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	assert.ElementsMatch(t, []string{models.EventSubmitted, models.EventDeclined, models.EventSubmitted}, actions)
}

func TestCheckStatus_PublisherNeedsRoleAndRecord(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, _ = h.users.Upsert(ctx, "half@example.com", nil)
	_, _ = h.users.AddRole(ctx, "half@example.com", models.RolePublisher)

	st, err := h.wf.CheckStatus(ctx, "half@example.com")
	require.NoError(t, err)
	assert.False(t, st.IsPublisher)

	_, _ = h.pubs.Insert(ctx, &models.Publisher{Email: "half@example.com"})
	st, err = h.wf.CheckStatus(ctx, "half@example.com")
	require.NoError(t, err)
	assert.True(t, st.IsPublisher)

	// record without role
	_, _ = h.pubs.Insert(ctx, &models.Publisher{Email: "norole@example.com"})
	st, err = h.wf.CheckStatus(ctx, "norole@example.com")
	require.NoError(t, err)
	assert.False(t, st.IsPublisher)
}

func TestRequestLifecycle(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	const email = "reporter@example.com"
	_, _ = h.users.Upsert(ctx, email, map[string]interface{}{"name": "Reporter"})

	res, err := h.wf.Submit(ctx, email, "Gazette", "g.png", "local news")
	require.NoError(t, err)

	st, err := h.wf.CheckStatus(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, st.Status)
	assert.True(t, st.Exists)
	assert.Equal(t, models.StatusPending, *st.Status)
	assert.False(t, st.IsPublisher)

	_, err = h.wf.Submit(ctx, email, "Gazette", "", "")
	require.ErrorIs(t, err, ErrAlreadyRequested)

	require.NoError(t, h.wf.Approve(ctx, "admin@example.com", res.InsertedID))

	st, err = h.wf.CheckStatus(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, &models.RequestStatus{Exists: false, Status: nil, IsPublisher: true}, st)

	_, err = h.wf.Submit(ctx, email, "Gazette", "", "")
	require.ErrorIs(t, err, ErrAlreadyPublisher)
}

func TestDecline_SucceedsWhileEmailIsLocked(t *testing.T) {
	locker := locks.NewMemoryLocker()
	h := newHarness(t, locker)
	ctx := context.Background()
	res, err := h.wf.Submit(ctx, "writer@example.com", "Daily", "", "")
	require.NoError(t, err)

	// an approval for the same email is in flight
	release, err := locker.Acquire(ctx, lockKey("writer@example.com"), time.Minute)
	require.NoError(t, err)
	defer release()

	del, err := h.wf.Decline(ctx, "admin@example.com", res.InsertedID)
	require.NoError(t, err)
	assert.Equal(t, models.DeleteResult{Acknowledged: true, DeletedCount: 1}, del)
	left, _ := h.requests.List(ctx)
	assert.Empty(t, left)
}

func TestApprove_WaitsForLockHolder(t *testing.T) {
	locker := locks.NewMemoryLocker()
	h := newHarness(t, locker)
	ctx := context.Background()
	_, _ = h.users.Upsert(ctx, "writer@example.com", nil)
	res, err := h.wf.Submit(ctx, "writer@example.com", "Daily", "", "")
	require.NoError(t, err)

	release, err := locker.Acquire(ctx, lockKey("writer@example.com"), time.Minute)
	require.NoError(t, err)
	time.AfterFunc(50*time.Millisecond, release)

	require.NoError(t, h.wf.Approve(ctx, "admin@example.com", res.InsertedID))
	p, _ := h.pubs.GetByEmail(ctx, "writer@example.com")
	assert.NotNil(t, p)
}

func TestApprove_GivesUpOnStuckLock(t *testing.T) {
	locker := locks.NewMemoryLocker()
	h := newHarness(t, locker)
	h.wf.lockWait = 30 * time.Millisecond
	ctx := context.Background()
	res, err := h.wf.Submit(ctx, "writer@example.com", "Daily", "", "")
	require.NoError(t, err)

	release, err := locker.Acquire(ctx, lockKey("writer@example.com"), time.Minute)
	require.NoError(t, err)
	defer release()

	err = h.wf.Approve(ctx, "admin@example.com", res.InsertedID)
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Request is being processed", apperr.Message(err, ""))
	pending, _ := h.requests.FindPendingByEmail(ctx, "writer@example.com")
	assert.NotNil(t, pending)
}

func TestApprove_ConcurrentApprovalsCreateOnePublisher(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	h := newHarness(t, locks.NewRedisLocker(redis.NewClient(&redis.Options{Addr: m.Addr()}), ""))
	ctx := context.Background()
	_, _ = h.users.Upsert(ctx, "racer@example.com", nil)
	res, err := h.wf.Submit(ctx, "racer@example.com", "R", "", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = h.wf.Approve(ctx, "admin@example.com", res.InsertedID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	}
	assert.Equal(t, 1, ok)
	n, err := h.pubs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	u, _ := h.users.GetByEmail(ctx, "racer@example.com")
	assert.Equal(t, []string{models.RolePublisher}, u.Roles)
}

func TestApprove_LogsStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	h := newHarness(t, nil)
	ctx := context.Background()
	res, err := h.wf.Submit(ctx, "writer@example.com", "Daily", "", "")
	require.NoError(t, err)
	require.NoError(t, h.wf.Approve(ctx, "admin@example.com", res.InsertedID))

	out := buf.String()
	assert.Contains(t, out, `msg="publisher request approved"`)
	assert.Contains(t, out, "email=writer@example.com")
	assert.Contains(t, out, "actor=admin@example.com")
}
