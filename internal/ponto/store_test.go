// internal/ponto/store_test.go
//
// Store behaviour against the in-memory repository plus two failing stubs.
//
// Run: go test ./internal/ponto -v

package ponto_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/ecoponto/internal/ponto"
	"github.com/yanizio/ecoponto/internal/storage/memory"
)

func f64(v float64) *float64 { return &v }

func centro() ponto.Candidate {
	return ponto.Candidate{
		Name:              "Ecoponto Centro",
		Description:       "Local para descarte de recicláveis",
		AcceptedMaterials: "Papel, Plástico",
		Latitude:          f64(-23.55),
		Longitude:         f64(-46.63),
	}
}

// fixedClock returns a clock that advances one second per call.
func fixedClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newStore(t *testing.T) (*ponto.Store, *memory.Repo) {
	t.Helper()
	repo := memory.New()
	return ponto.NewStore(repo, ponto.WithClock(fixedClock())), repo
}

func ids(ps []ponto.DisposalPoint) []int64 {
	out := make([]int64, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestSubmitStoresPending(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	p, err := s.Submit(ctx, centro())
	require.NoError(t, err)
	assert.Positive(t, p.ID)
	assert.False(t, p.Approved)
	assert.Equal(t, ponto.StatePending, p.State())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	got, found, err := s.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Ecoponto Centro", got.Name)
	assert.Equal(t, -23.55, got.Latitude)
	assert.Equal(t, -46.63, got.Longitude)
	assert.False(t, got.Approved)
}

func TestSubmitRejectsInvalidAndPersistsNothing(t *testing.T) {
	ctx := context.Background()

	cases := map[string]func(*ponto.Candidate){
		"short name":    func(c *ponto.Candidate) { c.Name = " ab " },
		"latitude 91":   func(c *ponto.Candidate) { c.Latitude = f64(91) },
		"longitude 181": func(c *ponto.Candidate) { c.Longitude = f64(-181) },
		"sanitized below minimum": func(c *ponto.Candidate) {
			c.Name = "<<>>"
		},
	}
	for name, edit := range cases {
		t.Run(name, func(t *testing.T) {
			s, repo := newStore(t)
			c := centro()
			edit(&c)

			_, err := s.Submit(ctx, c)
			assert.True(t, ponto.IsValidationError(err), "got %v", err)
			assert.Equal(t, 0, repo.Len())
		})
	}
}

func TestSubmitSanitizesMarkup(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	c := centro()
	c.Name = "<script>alert(1)</script>Ecoponto"
	c.Description = `Aceita "tudo" & mais <b>coisas</b>`

	p, err := s.Submit(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "scriptalert(1)/scriptEcoponto", p.Name)
	assert.NotContains(t, p.Description, "<")
	assert.NotContains(t, p.Description, "&")
	assert.NotContains(t, p.Description, `"`)
}

func TestModerationLifecycle(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	p, err := s.Submit(ctx, centro())
	require.NoError(t, err)

	pending, err := s.ListPending(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids(pending), p.ID)
	approved, err := s.ListApproved(ctx)
	require.NoError(t, err)
	assert.NotContains(t, ids(approved), p.ID)

	ap, err := s.Approve(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ap.Approved)
	assert.True(t, ap.UpdatedAt.After(ap.CreatedAt))

	approved, _ = s.ListApproved(ctx)
	assert.Contains(t, ids(approved), p.ID)
	pending, _ = s.ListPending(ctx)
	assert.NotContains(t, ids(pending), p.ID)

	removed, err := s.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	approved, _ = s.ListApproved(ctx)
	pending, _ = s.ListPending(ctx)
	assert.NotContains(t, ids(approved), p.ID)
	assert.NotContains(t, ids(pending), p.ID)

	removed, err = s.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, found, err := s.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestApproveTwiceIsNoop(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	p, err := s.Submit(ctx, centro())
	require.NoError(t, err)

	first, err := s.Approve(ctx, p.ID)
	require.NoError(t, err)
	second, err := s.Approve(ctx, p.ID)
	require.NoError(t, err)

	assert.True(t, second.Approved)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
}

func TestApproveMissing(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Approve(context.Background(), 999)
	assert.ErrorIs(t, err, ponto.ErrNotFound)
}

func TestDeletePendingDirectly(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	p, err := s.Submit(ctx, centro())
	require.NoError(t, err)
	removed, err := s.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	pending, _ := s.ListPending(ctx)
	assert.Empty(t, pending)
}

func TestListsAreNewestFirstAndNeverNil(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	empty, err := s.ListApproved(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Len(t, empty, 0)

	a, _ := s.Submit(ctx, centro())
	b, _ := s.Submit(ctx, centro())
	c, _ := s.Submit(ctx, centro())

	pending, err := s.ListPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{c.ID, b.ID, a.ID}, ids(pending))
}

func TestConcurrentSubmitsGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	s := ponto.NewStore(memory.New())

	const n = 50
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		got = map[int64]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := s.Submit(ctx, centro())
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			got[p.ID] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, got, n)
}

func TestIDsNotReusedAfterDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	a, err := s.Submit(ctx, centro())
	require.NoError(t, err)
	_, err = s.Delete(ctx, a.ID)
	require.NoError(t, err)

	b, err := s.Submit(ctx, centro())
	require.NoError(t, err)
	assert.Greater(t, b.ID, a.ID)
}

func TestApproveDeleteRace(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		s, _ := newStore(t)
		p, err := s.Submit(ctx, centro())
		require.NoError(t, err)

		var (
			wg         sync.WaitGroup
			approveErr error
			removed    bool
		)
		wg.Add(2)
		go func() { defer wg.Done(); _, approveErr = s.Approve(ctx, p.ID) }()
		go func() { defer wg.Done(); removed, _ = s.Delete(ctx, p.ID) }()
		wg.Wait()

		// Delete always wins eventually; approve either landed first or
		// observed the removal.
		assert.True(t, removed)
		if approveErr != nil {
			assert.ErrorIs(t, approveErr, ponto.ErrNotFound)
		}
		_, found, err := s.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, found)
	}
}

/*──────────────────────────── failure paths ────────────────────────────────*/

var errBackend = errors.New("backend unavailable")

// brokenRepo fails every call.
type brokenRepo struct{}

func (brokenRepo) Insert(context.Context, ponto.DisposalPoint) (int64, error) { return 0, errBackend }
func (brokenRepo) ByID(context.Context, int64) (ponto.DisposalPoint, error) {
	return ponto.DisposalPoint{}, errBackend
}
func (brokenRepo) ListByApproval(context.Context, bool) ([]ponto.DisposalPoint, error) {
	return nil, errBackend
}
func (brokenRepo) MarkApproved(context.Context, int64, time.Time) (bool, error) {
	return false, errBackend
}
func (brokenRepo) Delete(context.Context, int64) (bool, error) { return false, errBackend }

func TestStorageFailuresAreWrapped(t *testing.T) {
	ctx := context.Background()
	s := ponto.NewStore(brokenRepo{})

	checks := map[string]error{}
	_, checks["list approved"] = s.ListApproved(ctx)
	_, checks["list pending"] = s.ListPending(ctx)
	_, checks["insert"] = s.Submit(ctx, centro())
	_, checks["approve"] = s.Approve(ctx, 1)
	_, checks["delete"] = s.Delete(ctx, 1)
	_, _, checks["find"] = s.FindByID(ctx, 1)

	for op, err := range checks {
		var se *ponto.StorageError
		if assert.ErrorAs(t, err, &se, op) {
			assert.Equal(t, op, se.Op)
			assert.ErrorIs(t, err, errBackend)
		}
	}
}

// slowRepo blocks until the context ends.
type slowRepo struct{ brokenRepo }

func (slowRepo) ListByApproval(ctx context.Context, _ bool) ([]ponto.DisposalPoint, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestQueryTimeout(t *testing.T) {
	s := ponto.NewStore(slowRepo{}, ponto.WithQueryTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := s.ListApproved(context.Background())
	var se *ponto.StorageError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}
