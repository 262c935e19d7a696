// internal/storage/sqlstore/sqlstore.go
//
// SQL-backed ponto.Repository implementations.
//
// Context
// -------
// Two backends share one table layout:
//
//	pontos_descarte (id PK auto-increment, nome_do_ponto, descricao,
//	                 materiais_aceitos, latitude, longitude,
//	                 aprovado 0/1, created_at, updated_at)
//
//   - MySQL   (go-sql-driver/mysql) for production.
//   - SQLite  (modernc.org/sqlite) for single-node installs.
//
// main.go picks one from `database.driver` at startup.  Reads, the
// conditional approve, and delete are identical SQL on both engines and live
// on the shared base type.  DDL and id assignment differ and live in
// mysql.go and sqlite.go.
//
// Notes
// -----
//   - Timestamps come from the Store, not from SQL `NOW()`, so both engines
//     stamp rows the same way.
//   - `aprovado` is written as 0/1 to match the existing schema.
//   - Oxford commas, two spaces after periods.  Max line length 100 columns.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/ecoponto/internal/ponto"
)

const columns = `id, nome_do_ponto, descricao, materiais_aceitos,
                 latitude, longitude, aprovado, created_at, updated_at`

// base holds the queries both dialects share.
type base struct {
	db *sqlx.DB
}

func (b base) ByID(ctx context.Context, id int64) (ponto.DisposalPoint, error) {
	const q = `SELECT ` + columns + `
                 FROM pontos_descarte
                WHERE id = ?`

	var p ponto.DisposalPoint
	if err := b.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ponto.DisposalPoint{}, ponto.ErrNotFound
		}
		return ponto.DisposalPoint{}, err
	}
	return normalize(p), nil
}

func (b base) ListByApproval(ctx context.Context, approved bool) ([]ponto.DisposalPoint, error) {
	const q = `SELECT ` + columns + `
                 FROM pontos_descarte
                WHERE aprovado = ?
             ORDER BY created_at DESC, id DESC`

	rows := make([]ponto.DisposalPoint, 0, 16)
	if err := b.db.SelectContext(ctx, &rows, q, boolToInt(approved)); err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i] = normalize(rows[i])
	}
	return rows, nil
}

// MarkApproved only touches pending rows, so a repeated approve changes
// nothing and reports false.
func (b base) MarkApproved(ctx context.Context, id int64, at time.Time) (bool, error) {
	const q = `UPDATE pontos_descarte
                  SET aprovado = 1, updated_at = ?
                WHERE id = ? AND aprovado = 0`

	res, err := b.db.ExecContext(ctx, q, at, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b base) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM pontos_descarte WHERE id = ?`

	res, err := b.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// migrate runs each statement in order inside one transaction.
func (b base) migrate(ctx context.Context, stmts []string) error {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// normalize reports stored timestamps in UTC regardless of driver location
// settings.
func normalize(p ponto.DisposalPoint) ponto.DisposalPoint {
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
