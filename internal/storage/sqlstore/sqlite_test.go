// internal/storage/sqlstore/sqlite_test.go
//
// Runs the SQLite repository against a real in-memory database.

package sqlstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/yanizio/ecoponto/internal/ponto"
)

func newSQLite(t *testing.T) *SQLite {
	t.Helper()
	// A named shared-cache database keeps one schema per test even if the
	// pool reconnects.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := sqlx.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo := NewSQLite(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func sample(name string, at time.Time) ponto.DisposalPoint {
	return ponto.DisposalPoint{
		Name: name, Description: "Local para descarte", AcceptedMaterials: "Papel",
		Latitude: -23.55, Longitude: -46.63, CreatedAt: at, UpdatedAt: at,
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newSQLite(t)
	at := time.Date(2024, 5, 1, 12, 0, 0, 123456000, time.UTC)

	id, err := repo.Insert(ctx, sample("Ecoponto Centro", at))
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := repo.ByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ecoponto Centro", got.Name)
	assert.Equal(t, -23.55, got.Latitude)
	assert.False(t, got.Approved)
	assert.True(t, got.CreatedAt.Equal(at), "created_at %v != %v", got.CreatedAt, at)

	_, err = repo.ByID(ctx, id+100)
	assert.ErrorIs(t, err, ponto.ErrNotFound)
}

func TestSQLiteApproveAndList(t *testing.T) {
	ctx := context.Background()
	repo := newSQLite(t)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	a, _ := repo.Insert(ctx, sample("A", at))
	b, _ := repo.Insert(ctx, sample("B", at.Add(time.Second)))

	changed, err := repo.MarkApproved(ctx, a, at.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = repo.MarkApproved(ctx, a, at.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	approved, err := repo.ListByApproval(ctx, true)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, a, approved[0].ID)
	assert.True(t, approved[0].UpdatedAt.Equal(at.Add(time.Hour)))

	pending, err := repo.ListByApproval(ctx, false)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b, pending[0].ID)
}

func TestSQLiteIDsNotReused(t *testing.T) {
	ctx := context.Background()
	repo := newSQLite(t)
	at := time.Now().UTC()

	a, _ := repo.Insert(ctx, sample("A", at))
	b, _ := repo.Insert(ctx, sample("B", at))
	ok, err := repo.Delete(ctx, b)
	require.NoError(t, err)
	assert.True(t, ok)

	c, err := repo.Insert(ctx, sample("C", at))
	require.NoError(t, err)
	assert.Greater(t, c, b)
	assert.Greater(t, b, a)

	ok, err = repo.Delete(ctx, b)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteMigrateIsIdempotent(t *testing.T) {
	repo := newSQLite(t)
	assert.NoError(t, repo.Migrate(context.Background()))
}

func TestSQLiteWorksThroughStore(t *testing.T) {
	ctx := context.Background()
	s := ponto.NewStore(newSQLite(t))
	lat, lng := -23.55, -46.63

	p, err := s.Submit(ctx, ponto.Candidate{
		Name: "Ecoponto Centro", Description: "Local para descarte de recicláveis",
		AcceptedMaterials: "Papel, Plástico", Latitude: &lat, Longitude: &lng,
	})
	require.NoError(t, err)

	ap, err := s.Approve(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ap.Approved)

	list, err := s.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
}
