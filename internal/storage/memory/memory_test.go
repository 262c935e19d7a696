package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/ecoponto/internal/ponto"
)

func point(name string, at time.Time) ponto.DisposalPoint {
	return ponto.DisposalPoint{
		Name: name, Description: "descrição longa", AcceptedMaterials: "vidro",
		Latitude: 1, Longitude: 2, CreatedAt: at, UpdatedAt: at,
	}
}

func TestRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := New()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	id, err := r.Insert(ctx, point("Ponto A", at))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, err := r.ByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ponto A", got.Name)
	assert.Equal(t, id, got.ID)

	_, err = r.ByID(ctx, 42)
	assert.ErrorIs(t, err, ponto.ErrNotFound)
}

func TestRepoMarkApprovedOnlyOnce(t *testing.T) {
	ctx := context.Background()
	r := New()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	id, _ := r.Insert(ctx, point("Ponto A", at))

	changed, err := r.MarkApproved(ctx, id, at.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = r.MarkApproved(ctx, id, at.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	got, _ := r.ByID(ctx, id)
	assert.Equal(t, at.Add(time.Hour), got.UpdatedAt)

	changed, err = r.MarkApproved(ctx, 99, at)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRepoListOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	r := New()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a, _ := r.Insert(ctx, point("A", at))
	b, _ := r.Insert(ctx, point("B", at)) // same instant: id breaks the tie
	c, _ := r.Insert(ctx, point("C", at.Add(time.Minute)))
	_, _ = r.MarkApproved(ctx, b, at)

	pending, err := r.ListByApproval(ctx, false)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, c, pending[0].ID)
	assert.Equal(t, a, pending[1].ID)

	approved, err := r.ListByApproval(ctx, true)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, b, approved[0].ID)
}

func TestRepoDeleteRetiresID(t *testing.T) {
	ctx := context.Background()
	r := New()
	id, _ := r.Insert(ctx, point("A", time.Now()))

	ok, err := r.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	next, _ := r.Insert(ctx, point("B", time.Now()))
	assert.Equal(t, id+1, next)
	assert.Equal(t, 1, r.Len())
}

func TestRepoHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := New()

	_, err := r.Insert(ctx, point("A", time.Now()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, r.Len())
}
