package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securedoc/internal/common"
	"github.com/dmitrijs2005/securedoc/internal/dbx"
	"github.com/dmitrijs2005/securedoc/internal/logging"
	"github.com/dmitrijs2005/securedoc/internal/server/models"
	"github.com/dmitrijs2005/securedoc/internal/server/repositories/repomanager"
)

// LedgerService owns access grants. At most one grant exists per
// (document, user); the primary key on access_grants is the authoritative
// guard and a repeated grant is a silent no-op that keeps the first envelope.
type LedgerService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewLedgerService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *LedgerService {
	return &LedgerService{db: db, repomanager: m, log: log.With("module", "ledger")}
}

func validateRecipients(recipients []models.Recipient) error {
	for _, r := range recipients {
		if r.UserID == "" {
			return common.ErrMissingField
		}
	}
	return nil
}

// resolveRecipients checks every recipient exists before anything is written.
func (s *LedgerService) resolveRecipients(ctx context.Context, tx dbx.DBTX, recipients []models.Recipient) error {
	users := s.repomanager.Users(tx)
	seen := make(map[string]struct{}, len(recipients))
	for _, r := range recipients {
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}

		if _, err := users.GetByID(ctx, r.UserID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrUserNotFound
			}
			return fmt.Errorf("error resolving recipient: %w", err)
		}
	}
	return nil
}

// grant inserts one grant per recipient in order and returns how many were new.
func (s *LedgerService) grant(ctx context.Context, tx dbx.DBTX, documentID string, recipients []models.Recipient) (int, error) {
	repo := s.repomanager.Grants(tx)
	created := 0
	for _, r := range recipients {
		ok, err := repo.Create(ctx, &models.AccessGrant{
			DocumentID:           documentID,
			UserID:               r.UserID,
			EncryptedKeyEnvelope: r.EncryptedKeyEnvelope,
		})
		if err != nil {
			return 0, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// Share grants access to recipients on behalf of the document owner and
// returns the number of grants actually created. Either every recipient
// resolves or nothing is written.
func (s *LedgerService) Share(ctx context.Context, documentID, requesterID string, recipients []models.Recipient) (int, error) {
	if err := validateRecipients(recipients); err != nil {
		return 0, err
	}

	var created int
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		// row lock orders this share against a concurrent delete
		doc, err := s.repomanager.Documents(tx).GetForShare(ctx, documentID)
		if err != nil {
			return err
		}
		if doc.OwnerID != requesterID {
			return common.ErrNotOwner
		}

		if err := s.resolveRecipients(ctx, tx, recipients); err != nil {
			return err
		}

		created, err = s.grant(ctx, tx, documentID, recipients)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.log.Info(ctx, "document shared", "document_id", documentID, "requested", len(recipients), "created", created)
	return created, nil
}

// ListGrants shows the owner who can read the document. Envelopes are not
// included.
func (s *LedgerService) ListGrants(ctx context.Context, documentID, requesterID string) ([]*models.GrantHolder, error) {
	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != requesterID {
		return nil, common.ErrNotOwner
	}

	holders, err := s.repomanager.Grants(s.db).ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("error listing grants: %w", err)
	}
	return holders, nil
}

func (s *LedgerService) HasGrant(ctx context.Context, documentID, userID string) (bool, error) {
	_, err := s.repomanager.Grants(s.db).Get(ctx, documentID, userID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, common.ErrNoGrant):
		return false, nil
	default:
		return false, err
	}
}
