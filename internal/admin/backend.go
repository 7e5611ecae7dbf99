package admin

import (
	"context"
	"io"

	"github.com/dmitrijs2005/securedoc/internal/logging"
	"github.com/dmitrijs2005/securedoc/internal/server"
	"github.com/dmitrijs2005/securedoc/internal/server/config"
	"github.com/dmitrijs2005/securedoc/internal/server/models"
	"github.com/dmitrijs2005/securedoc/internal/server/services"
)

// Backend is what the admin commands operate on.
type Backend interface {
	Migrate(ctx context.Context) error
	Provision(ctx context.Context, email string, staff bool) (*models.User, error)
	CreateWithPassword(ctx context.Context, email, password string, staff bool) (*models.User, error)
	CreateCategory(ctx context.Context, name, description string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	Close() error
}

// Opener builds a Backend from cfg. Provisioning notices go to out.
type Opener func(ctx context.Context, cfg *config.Config, out io.Writer) (Backend, error)

type componentsBackend struct {
	*server.Components
}

// OpenComponents is the production Opener.
func OpenComponents(ctx context.Context, cfg *config.Config, out io.Writer) (Backend, error) {
	logger := logging.NewJSONLogger(io.Discard, cfg.LogLevel)
	c, err := server.Build(ctx, cfg, logger, services.NewWriterNotifier(out))
	if err != nil {
		return nil, err
	}
	return &componentsBackend{Components: c}, nil
}

func (b *componentsBackend) Provision(ctx context.Context, email string, staff bool) (*models.User, error) {
	return b.Users.Provision(ctx, email, staff)
}

func (b *componentsBackend) CreateWithPassword(ctx context.Context, email, password string, staff bool) (*models.User, error) {
	return b.Users.CreateWithPassword(ctx, email, password, staff)
}

func (b *componentsBackend) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	return b.Categories.CreateUnchecked(ctx, name, description)
}

func (b *componentsBackend) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return b.Categories.List(ctx)
}

func (b *componentsBackend) DeleteCategory(ctx context.Context, id string) error {
	return b.Categories.DeleteUnchecked(ctx, id)
}
