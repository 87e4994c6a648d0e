package repomanager

import (
	"context"

	"github.com/dmitrijs2005/matthias/internal/dbx"
	"github.com/dmitrijs2005/matthias/internal/server/repositories/blobs"
	"github.com/dmitrijs2005/matthias/internal/server/repositories/messages"
)

// RepositoryManager vends repositories bound to a DBTX, so callers can pass
// either the pool or a transaction.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Messages(db dbx.DBTX) messages.Repository
	Blobs(db dbx.DBTX) blobs.Repository
	Close() error
}
