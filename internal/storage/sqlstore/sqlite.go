package sqlstore

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/ecoponto/internal/ponto"
)

// SQLite stores disposal points in a SQLite file through modernc.org/sqlite.
type SQLite struct {
	base
}

var _ ponto.Repository = (*SQLite)(nil)

// NewSQLite wraps an open SQLite handle.
func NewSQLite(db *sqlx.DB) *SQLite {
	return &SQLite{base{db: db}}
}

// AUTOINCREMENT (not plain ROWID reuse) keeps deleted ids retired.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS pontos_descarte (
        id                INTEGER PRIMARY KEY AUTOINCREMENT,
        nome_do_ponto     TEXT     NOT NULL,
        descricao         TEXT     NOT NULL,
        materiais_aceitos TEXT     NOT NULL,
        latitude          REAL     NOT NULL,
        longitude         REAL     NOT NULL,
        aprovado          INTEGER  NOT NULL DEFAULT 0 CHECK (aprovado IN (0, 1)),
        created_at        DATETIME NOT NULL,
        updated_at        DATETIME NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_pontos_aprovado_created
        ON pontos_descarte (aprovado, created_at)`,
}

// Migrate creates the table and index when missing.
func (s *SQLite) Migrate(ctx context.Context) error {
	return s.migrate(ctx, sqliteSchema)
}

// Insert uses RETURNING so the id comes back in the same statement.
func (s *SQLite) Insert(ctx context.Context, p ponto.DisposalPoint) (int64, error) {
	const q = `INSERT INTO pontos_descarte
                   (nome_do_ponto, descricao, materiais_aceitos,
                    latitude, longitude, aprovado, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         RETURNING id`

	var id int64
	err := s.db.QueryRowxContext(ctx, q,
		p.Name, p.Description, p.AcceptedMaterials,
		p.Latitude, p.Longitude, boolToInt(p.Approved), p.CreatedAt, p.UpdatedAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}
