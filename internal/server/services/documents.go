package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/securedoc/internal/common"
	"github.com/dmitrijs2005/securedoc/internal/dbx"
	"github.com/dmitrijs2005/securedoc/internal/logging"
	"github.com/dmitrijs2005/securedoc/internal/server/models"
	"github.com/dmitrijs2005/securedoc/internal/server/repositories/repomanager"
)

// DocumentService is the document registry: lookup, per-reader listing and
// owner-initiated deletion.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *DocumentService {
	return &DocumentService{db: db, repomanager: m, log: log.With("module", "documents")}
}

func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.repomanager.Documents(s.db).GetByID(ctx, id)
}

// ListAccessibleTo returns every document userID holds a grant for, each
// paired with that user's own grant.
func (s *DocumentService) ListAccessibleTo(ctx context.Context, userID string) ([]*models.AccessibleDocument, error) {
	docs, err := s.repomanager.Documents(s.db).ListAccessibleTo(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	return docs, nil
}

// Delete removes the document and all of its grants in one transaction. The
// blob is left in place and becomes an orphan.
func (s *DocumentService) Delete(ctx context.Context, id, requesterID string) error {
	var revoked int64

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		docs := s.repomanager.Documents(tx)

		doc, err := docs.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if doc.OwnerID != requesterID {
			return common.ErrNotOwner
		}

		revoked, err = s.repomanager.Grants(tx).DeleteByDocument(ctx, id)
		if err != nil {
			return fmt.Errorf("error deleting grants: %w", err)
		}
		return docs.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "document deleted", "document_id", id, "grants", revoked)
	return nil
}
