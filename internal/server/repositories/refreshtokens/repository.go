// Package refreshtokens declares the repository contract for the opaque
// refresh tokens issued at login.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/securedoc/internal/server/models"
)

// Repository issues and consumes refresh tokens.
type Repository interface {
	// Create stores token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Consume deletes token and returns what it was bound to. A token can be
	// consumed once; unknown tokens yield common.ErrorNotFound.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)
}
