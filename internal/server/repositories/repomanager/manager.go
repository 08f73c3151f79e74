package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/viewstore/internal/dbx"
	"github.com/dmitrijs2005/viewstore/internal/server/repositories/views"
)

// RepositoryManager hands out repositories bound to either the pool or an
// open transaction, so a service can run several of them in one envelope.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Views(db dbx.DBTX) views.Repository
}
