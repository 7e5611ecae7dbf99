package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/securedoc/internal/dbx"
	"github.com/dmitrijs2005/securedoc/internal/server/repositories/categories"
	"github.com/dmitrijs2005/securedoc/internal/server/repositories/documents"
	"github.com/dmitrijs2005/securedoc/internal/server/repositories/grants"
	"github.com/dmitrijs2005/securedoc/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/securedoc/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX so services can use the
// same repositories inside and outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Categories(db dbx.DBTX) categories.Repository
	Documents(db dbx.DBTX) documents.Repository
	Grants(db dbx.DBTX) grants.Repository
}
