// Package grants persists access grants: one row per (document, user) pair
// carrying that user's encrypted key envelope.
package grants

import (
	"context"

	"github.com/dmitrijs2005/securedoc/internal/server/models"
)

type Repository interface {
	// Create inserts g unless a grant for the same pair already exists, in
	// which case the stored grant is kept and created is false.
	Create(ctx context.Context, g *models.AccessGrant) (created bool, err error)
	// Get returns common.ErrNoGrant when userID holds no grant for documentID.
	Get(ctx context.Context, documentID, userID string) (*models.AccessGrant, error)
	ListByDocument(ctx context.Context, documentID string) ([]*models.GrantHolder, error)
	DeleteByDocument(ctx context.Context, documentID string) (int64, error)
}
