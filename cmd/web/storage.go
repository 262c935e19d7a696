// cmd/web/storage.go
//
// Repository selection by `database.driver`.

package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yanizio/ecoponto/internal/config"
	"github.com/yanizio/ecoponto/internal/database"
	"github.com/yanizio/ecoponto/internal/ponto"
	"github.com/yanizio/ecoponto/internal/storage/memory"
	"github.com/yanizio/ecoponto/internal/storage/sqlstore"
)

// migrator is implemented by the SQL repositories.
type migrator interface {
	Migrate(ctx context.Context) error
}

// openRepository returns the configured Repository and a close func.
func openRepository(ctx context.Context, dbc config.Database, log *zap.Logger) (ponto.Repository, func(), error) {
	if dbc.Driver == database.DriverMemory {
		log.Warn("using in-memory storage; data is lost on restart")
		return memory.New(), func() {}, nil
	}

	opts := database.DefaultOptions()
	if dbc.MaxOpen > 0 {
		opts.MaxOpenConns = dbc.MaxOpen
	}
	if dbc.MaxIdle > 0 {
		opts.MaxIdleConns = dbc.MaxIdle
	}

	db, err := database.OpenWithOptions(ctx, dbc.Driver, dbc.ConnString(), opts)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", dbc.Driver, err)
	}
	closeDB := func() { _ = db.Close() }

	var repo interface {
		ponto.Repository
		migrator
	}
	switch dbc.Driver {
	case database.DriverMySQL:
		repo = sqlstore.NewMySQL(db)
	default:
		repo = sqlstore.NewSQLite(db)
	}

	if err := repo.Migrate(ctx); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("migrate %s: %w", dbc.Driver, err)
	}
	log.Info("storage online", zap.String("driver", dbc.Driver))
	return repo, closeDB, nil
}
