// Package categories persists the flat category list documents are filed under.
package categories

import (
	"context"

	"github.com/dmitrijs2005/securedoc/internal/server/models"
)

type Repository interface {
	// Create inserts c. A name equal to an existing one ignoring case yields
	// common.ErrDuplicateCategory.
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	// Delete fails with common.ErrCategoryInUse while documents reference id.
	Delete(ctx context.Context, id string) error
}
