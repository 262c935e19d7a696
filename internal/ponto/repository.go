package ponto

import (
	"context"
	"time"
)

// Repository is the persistence contract behind Store.  Implementations live
// under internal/storage and are chosen once at startup.
//
//   - Insert stores p (ID ignored) and returns the id assigned by storage.
//     Ids come from the backend's atomic auto-increment and are never reused.
//   - ByID returns ErrNotFound when no row matches.
//   - ListByApproval orders rows by created_at DESC, id DESC.
//   - MarkApproved sets approved and updated_at only on a pending row and
//     reports whether a row changed.
//   - Delete reports whether a row was removed.
type Repository interface {
	Insert(ctx context.Context, p DisposalPoint) (int64, error)
	ByID(ctx context.Context, id int64) (DisposalPoint, error)
	ListByApproval(ctx context.Context, approved bool) ([]DisposalPoint, error)
	MarkApproved(ctx context.Context, id int64, at time.Time) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
