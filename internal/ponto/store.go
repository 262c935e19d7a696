// internal/ponto/store.go
//
// Moderation Store: the single writer of disposal-point state.
//
// Context
// -------
// The Store enforces the moderation state machine on top of a Repository:
//
//	Submit            → Pending
//	Pending  Approve  → Approved
//	Pending  Delete   → Deleted (row removed)
//	Approved Delete   → Deleted (row removed)
//
// Nothing re-enters Pending and nothing leaves Deleted.  Re-approving an
// approved record is a no-op success that returns the current record.
//
// Privileged operations (ListPending, Approve, Delete) carry no credential
// check here.  The HTTP layer runs the admin guard before calling them.
//
// Notes
// -----
//   - No record cache.  Every read goes to the Repository.
//   - Each Repository call runs under its own timeout; deadline and
//     cancellation errors come back as *StorageError.
//   - Oxford commas, two spaces after periods.
package ponto

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/ecoponto/internal/metrics"
)

// DefaultQueryTimeout bounds a single Repository call when no timeout is
// configured.
const DefaultQueryTimeout = 5 * time.Second

// Store is safe for concurrent use.  Construct with NewStore.
type Store struct {
	repo    Repository
	log     *zap.Logger
	now     func() time.Time
	timeout time.Duration
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger used for mutation events.
func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.log = l } }

// WithClock overrides the time source.  Tests use it to get stable stamps.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithQueryTimeout sets the per-call Repository deadline.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewStore wires a Store to repo.
func NewStore(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:    repo,
		log:     zap.NewNop(),
		now:     time.Now,
		timeout: DefaultQueryTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

/*──────────────────────────── public reads ─────────────────────────────────*/

// ListApproved returns approved records, newest first.
func (s *Store) ListApproved(ctx context.Context) ([]DisposalPoint, error) {
	return s.list(ctx, true)
}

// ListPending returns records awaiting review, newest first.
func (s *Store) ListPending(ctx context.Context) ([]DisposalPoint, error) {
	return s.list(ctx, false)
}

func (s *Store) list(ctx context.Context, approved bool) ([]DisposalPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.repo.ListByApproval(ctx, approved)
	if err != nil {
		op := "list pending"
		if approved {
			op = "list approved"
		}
		return nil, &StorageError{Op: op, Err: err}
	}
	if rows == nil {
		rows = []DisposalPoint{}
	}
	return rows, nil
}

// FindByID looks up a record without mutating it.  found is false when no
// record exists; err is reserved for storage failures.
func (s *Store) FindByID(ctx context.Context, id int64) (p DisposalPoint, found bool, err error) {
	p, err = s.byID(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		return DisposalPoint{}, false, nil
	case err != nil:
		return DisposalPoint{}, false, err
	}
	return p, true, nil
}

/*──────────────────────────── public write ─────────────────────────────────*/

// Submit validates and sanitizes c, stores it as pending, and returns the
// stored record.
func (s *Store) Submit(ctx context.Context, c Candidate) (DisposalPoint, error) {
	if err := Validate(c); err != nil {
		return DisposalPoint{}, err
	}
	clean := SanitizeCandidate(Normalize(c))
	if err := Validate(clean); err != nil {
		return DisposalPoint{}, err
	}

	now := s.stamp()
	p := DisposalPoint{
		Name:              clean.Name,
		Description:       clean.Description,
		AcceptedMaterials: clean.AcceptedMaterials,
		Latitude:          *clean.Latitude,
		Longitude:         *clean.Longitude,
		Approved:          false,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	id, err := s.insert(ctx, p)
	if err != nil {
		return DisposalPoint{}, err
	}
	p.ID = id

	metrics.SubmissionsTotal.Inc()
	s.log.Info("disposal point submitted",
		zap.Int64("id", id),
		zap.Float64("latitude", p.Latitude),
		zap.Float64("longitude", p.Longitude))

	stored, err := s.byID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		// Deleted between insert and re-read; report what was written.
		return p, nil
	}
	if err != nil {
		return DisposalPoint{}, err
	}
	return stored, nil
}

/*──────────────────────────── privileged ───────────────────────────────────*/

// Approve moves a pending record to approved.  Approving an approved record
// returns it unchanged.  A missing id yields ErrNotFound.
func (s *Store) Approve(ctx context.Context, id int64) (DisposalPoint, error) {
	changed, err := s.markApproved(ctx, id)
	if err != nil {
		return DisposalPoint{}, err
	}

	// Re-read decides the outcome: a concurrent Delete that won the race
	// shows up here as ErrNotFound.
	p, err := s.byID(ctx, id)
	if err != nil {
		return DisposalPoint{}, err
	}

	if changed {
		metrics.ApprovalsTotal.Inc()
		s.log.Info("disposal point approved", zap.Int64("id", id))
	} else {
		s.log.Debug("disposal point already approved", zap.Int64("id", id))
	}
	return p, nil
}

// Delete permanently removes a record in either state.  It returns false,
// nil when no record existed.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, &StorageError{Op: "delete", Err: err}
	}
	if removed {
		metrics.DeletionsTotal.Inc()
		s.log.Info("disposal point deleted", zap.Int64("id", id))
	}
	return removed, nil
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

// stamp returns the current time in UTC at microsecond precision, the finest
// resolution every backend keeps.
func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Store) insert(ctx context.Context, p DisposalPoint) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	id, err := s.repo.Insert(ctx, p)
	if err != nil {
		return 0, &StorageError{Op: "insert", Err: err}
	}
	return id, nil
}

func (s *Store) byID(ctx context.Context, id int64) (DisposalPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, err := s.repo.ByID(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		return DisposalPoint{}, ErrNotFound
	case err != nil:
		return DisposalPoint{}, &StorageError{Op: "find", Err: err}
	}
	return p, nil
}

func (s *Store) markApproved(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	changed, err := s.repo.MarkApproved(ctx, id, s.stamp())
	if err != nil {
		return false, &StorageError{Op: "approve", Err: err}
	}
	return changed, nil
}
