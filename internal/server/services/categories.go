package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/securedoc/internal/common"
	"github.com/dmitrijs2005/securedoc/internal/dbx"
	"github.com/dmitrijs2005/securedoc/internal/logging"
	"github.com/dmitrijs2005/securedoc/internal/server/models"
	"github.com/dmitrijs2005/securedoc/internal/server/repositories/repomanager"
)

// CategoryService is the registry of document categories. Only staff may
// change it; everyone may list it.
type CategoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

// NewCategoryService builds the registry. The list is read from the table on
// every call since the admin CLI changes it from another process.
func NewCategoryService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *CategoryService {
	return &CategoryService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "categories"),
	}
}

func (s *CategoryService) requireStaff(ctx context.Context, callerID string) error {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("error getting user: %w", err)
	}
	if !u.IsStaff {
		return common.ErrNotStaff
	}
	return nil
}

// Create adds a category. Names are trimmed and compared case-insensitively.
func (s *CategoryService) Create(ctx context.Context, callerID, name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ErrMissingField
	}
	if err := s.requireStaff(ctx, callerID); err != nil {
		return nil, err
	}

	c, err := s.CreateUnchecked(ctx, name, strings.TrimSpace(description))
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "category created", "category_id", c.ID, "by", callerID)
	return c, nil
}

// CreateUnchecked adds a category without a caller; used by the admin CLI.
func (s *CategoryService) CreateUnchecked(ctx context.Context, name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ErrMissingField
	}

	var created *models.Category
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Categories(tx)

		_, err := repo.GetByName(ctx, name)
		switch {
		case err == nil:
			return common.ErrDuplicateCategory
		case !errors.Is(err, common.ErrCategoryNotFound):
			return fmt.Errorf("error checking category: %w", err)
		}

		created, err = repo.Create(ctx, &models.Category{Name: name, Description: description})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Delete removes a category no document references.
func (s *CategoryService) Delete(ctx context.Context, callerID, id string) error {
	if err := s.requireStaff(ctx, callerID); err != nil {
		return err
	}
	if err := s.DeleteUnchecked(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "category deleted", "category_id", id, "by", callerID)
	return nil
}

// DeleteUnchecked removes a category without a caller; used by the admin CLI.
func (s *CategoryService) DeleteUnchecked(ctx context.Context, id string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Documents(tx).CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return common.ErrCategoryInUse
		}
		// the foreign key still guards a document inserted concurrently
		return s.repomanager.Categories(tx).Delete(ctx, id)
	})
	return err
}

// List returns all categories ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]*models.Category, error) {
	list, err := s.repomanager.Categories(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	return list, nil
}
