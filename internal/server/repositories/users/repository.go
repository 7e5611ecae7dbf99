// Package users declares and implements persistence of registered accounts
// and their public keys.
package users

import (
	"context"

	"github.com/dmitrijs2005/securedoc/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// ListExcept returns every user but excludeID, ordered by email.
	ListExcept(ctx context.Context, excludeID string) ([]*models.User, error)
	SetPublicKey(ctx context.Context, id string, publicKey string) error
}
