package services

import (
	"context"

	"github.com/dmitrijs2005/securedoc/internal/server/models"
)

// Transports depend on these interfaces rather than on the concrete services.

type Users interface {
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	RegisterPublicKey(ctx context.Context, userID, publicKey string) error
	Profile(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, callerID string) ([]*models.User, error)
}

type Categories interface {
	Create(ctx context.Context, callerID, name, description string) (*models.Category, error)
	Delete(ctx context.Context, callerID, id string) error
	List(ctx context.Context) ([]*models.Category, error)
}

type Documents interface {
	Get(ctx context.Context, id string) (*models.Document, error)
	ListAccessibleTo(ctx context.Context, userID string) ([]*models.AccessibleDocument, error)
	Delete(ctx context.Context, id, requesterID string) error
}

type Ledger interface {
	Share(ctx context.Context, documentID, requesterID string, recipients []models.Recipient) (int, error)
	ListGrants(ctx context.Context, documentID, requesterID string) ([]*models.GrantHolder, error)
	HasGrant(ctx context.Context, documentID, userID string) (bool, error)
}

type Uploads interface {
	Prepare(ctx context.Context, filename string) (*UploadIntent, error)
	Confirm(ctx context.Context, ownerID string, req *ConfirmRequest) (*models.Document, error)
}

type Downloads interface {
	Issue(ctx context.Context, documentID, requesterID string) (*DownloadTicket, error)
}

// Set bundles the services a transport serves.
type Set struct {
	Users      Users
	Categories Categories
	Documents  Documents
	Ledger     Ledger
	Uploads    Uploads
	Downloads  Downloads
}
