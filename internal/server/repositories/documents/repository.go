// Package documents persists document descriptors and the per-reader listing
// view joined from grants, owners and categories.
package documents

import (
	"context"

	"github.com/dmitrijs2005/securedoc/internal/server/models"
)

type Repository interface {
	// Create inserts d and fills in ID and CreatedAt.
	Create(ctx context.Context, d *models.Document) (*models.Document, error)
	GetByID(ctx context.Context, id string) (*models.Document, error)
	// GetForShare reads the row under FOR SHARE so a concurrent delete waits
	// for the caller's transaction. Only meaningful inside a transaction.
	GetForShare(ctx context.Context, id string) (*models.Document, error)
	Delete(ctx context.Context, id string) error
	CountByCategory(ctx context.Context, categoryID string) (int, error)
	// ListAccessibleTo returns every document userID holds a grant for,
	// newest first.
	ListAccessibleTo(ctx context.Context, userID string) ([]*models.AccessibleDocument, error)
}
