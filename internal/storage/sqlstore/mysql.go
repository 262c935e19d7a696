package sqlstore

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/ecoponto/internal/ponto"
)

// MySQL stores disposal points in MySQL or MariaDB.  The connection must be
// opened with parseTime=true (database.Open enforces it).
type MySQL struct {
	base
}

var _ ponto.Repository = (*MySQL)(nil)

// NewMySQL wraps an open MySQL pool.
func NewMySQL(db *sqlx.DB) *MySQL {
	return &MySQL{base{db: db}}
}

// InnoDB keeps AUTO_INCREMENT monotonic, so deleted ids are not reissued.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS pontos_descarte (
        id                BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        nome_do_ponto     VARCHAR(200)    NOT NULL,
        descricao         TEXT            NOT NULL,
        materiais_aceitos VARCHAR(500)    NOT NULL,
        latitude          DOUBLE          NOT NULL,
        longitude         DOUBLE          NOT NULL,
        aprovado          TINYINT(1)      NOT NULL DEFAULT 0,
        created_at        DATETIME(6)     NOT NULL,
        updated_at        DATETIME(6)     NOT NULL,
        PRIMARY KEY (id),
        KEY idx_pontos_aprovado_created (aprovado, created_at)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the table when missing.
func (m *MySQL) Migrate(ctx context.Context) error {
	return m.migrate(ctx, mysqlSchema)
}

// Insert relies on AUTO_INCREMENT and LAST_INSERT_ID for id assignment.
func (m *MySQL) Insert(ctx context.Context, p ponto.DisposalPoint) (int64, error) {
	const q = `INSERT INTO pontos_descarte
                   (nome_do_ponto, descricao, materiais_aceitos,
                    latitude, longitude, aprovado, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := m.db.ExecContext(ctx, q,
		p.Name, p.Description, p.AcceptedMaterials,
		p.Latitude, p.Longitude, boolToInt(p.Approved), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
