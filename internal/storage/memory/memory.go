// Package memory is an in-process ponto.Repository for development and
// tests.  Rows vanish on restart.  Ids come from a monotonic counter, so a
// deleted id is never handed out again.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanizio/ecoponto/internal/ponto"
)

// Repo is safe for concurrent use.  Zero value is unusable; call New.
type Repo struct {
	mu     sync.RWMutex
	rows   map[int64]ponto.DisposalPoint
	nextID int64
}

var _ ponto.Repository = (*Repo)(nil)

// New returns an empty repository.
func New() *Repo {
	return &Repo{rows: make(map[int64]ponto.DisposalPoint)}
}

func (r *Repo) Insert(ctx context.Context, p ponto.DisposalPoint) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	p.ID = r.nextID
	r.rows[p.ID] = p
	return p.ID, nil
}

func (r *Repo) ByID(ctx context.Context, id int64) (ponto.DisposalPoint, error) {
	if err := ctx.Err(); err != nil {
		return ponto.DisposalPoint{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.rows[id]
	if !ok {
		return ponto.DisposalPoint{}, ponto.ErrNotFound
	}
	return p, nil
}

func (r *Repo) ListByApproval(ctx context.Context, approved bool) ([]ponto.DisposalPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]ponto.DisposalPoint, 0, len(r.rows))
	for _, p := range r.rows {
		if p.Approved == approved {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *Repo) MarkApproved(ctx context.Context, id int64, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.rows[id]
	if !ok || p.Approved {
		return false, nil
	}
	p.Approved = true
	p.UpdatedAt = at
	r.rows[id] = p
	return true, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

// Len reports the number of stored rows.
func (r *Repo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}
