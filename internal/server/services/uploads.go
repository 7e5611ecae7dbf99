package services

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/securedoc/internal/common"
	"github.com/dmitrijs2005/securedoc/internal/dbx"
	"github.com/dmitrijs2005/securedoc/internal/logging"
	"github.com/dmitrijs2005/securedoc/internal/server/blobstore"
	"github.com/dmitrijs2005/securedoc/internal/server/config"
	"github.com/dmitrijs2005/securedoc/internal/server/models"
	"github.com/dmitrijs2005/securedoc/internal/server/repositories/repomanager"
)

const (
	locatorTokenBytes = 16
	maxFilenameLength = 255
)

var locatorPattern = regexp.MustCompile(`^[0-9a-f]{32}_(.+)$`)

// UploadIntent pairs a fresh storage locator with a write capability for it.
// Nothing is persisted when it is issued.
type UploadIntent struct {
	StorageLocator string
	UploadURL      string
	ExpiresAt      time.Time
}

// ConfirmRequest describes an uploaded ciphertext and its initial share set.
type ConfirmRequest struct {
	StorageLocator string
	Filename       string
	ContentHash    string
	Signature      string
	MimeType       string
	CategoryID     *string
	Recipients     []models.Recipient
	OwnerEnvelope  string
}

// UploadService runs the two-phase upload: Prepare issues a write URL for a
// server-chosen locator, Confirm records the document once the blob exists.
type UploadService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	store         blobstore.Store
	ledger        *LedgerService
	log           logging.Logger
	blobTimeout   time.Duration
	writeValidity time.Duration
}

func NewUploadService(db *sql.DB, m repomanager.RepositoryManager, store blobstore.Store,
	ledger *LedgerService, cfg *config.Config, log logging.Logger) *UploadService {
	return &UploadService{
		db:            db,
		repomanager:   m,
		store:         store,
		ledger:        ledger,
		log:           log.With("module", "uploads"),
		blobTimeout:   cfg.BlobTimeout,
		writeValidity: cfg.UploadURLValidity,
	}
}

// ValidateFilename rejects empty names, invalid UTF-8, path separators,
// hidden-file names and control characters.
func ValidateFilename(name string) error {
	if name == "" || len(name) > maxFilenameLength || !utf8.ValidString(name) {
		return common.ErrInvalidFilename
	}
	if strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return common.ErrInvalidFilename
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return common.ErrInvalidFilename
	}
	return nil
}

func validateLocator(locator string) error {
	m := locatorPattern.FindStringSubmatch(locator)
	if m == nil || ValidateFilename(m[1]) != nil {
		return common.ErrInvalidLocator
	}
	return nil
}

// Prepare validates filename and issues a write capability for a new
// locator. Issuance failures are not retried.
func (s *UploadService) Prepare(ctx context.Context, filename string) (*UploadIntent, error) {
	if err := ValidateFilename(filename); err != nil {
		return nil, err
	}

	token, err := common.MakeRandHexString(locatorTokenBytes)
	if err != nil {
		return nil, common.ErrorInternal
	}
	locator := token + "_" + filename

	bctx, cancel := context.WithTimeout(ctx, s.blobTimeout)
	defer cancel()

	url, err := s.store.PresignPut(bctx, locator, s.writeValidity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	return &UploadIntent{
		StorageLocator: locator,
		UploadURL:      url,
		ExpiresAt:      time.Now().Add(s.writeValidity),
	}, nil
}

func (r *ConfirmRequest) validate() error {
	if err := validateLocator(r.StorageLocator); err != nil {
		return err
	}
	if err := ValidateFilename(r.Filename); err != nil {
		return err
	}
	if r.ContentHash == "" || r.Signature == "" {
		return common.ErrMissingField
	}
	if r.CategoryID != nil && *r.CategoryID == "" {
		r.CategoryID = nil
	}
	return validateRecipients(r.Recipients)
}

// Confirm checks the blob at req.StorageLocator exists, then creates the
// document together with the owner's grant and one grant per recipient in
// a single transaction. Calling it twice with one locator creates two
// documents.
func (s *UploadService) Confirm(ctx context.Context, ownerID string, req *ConfirmRequest) (*models.Document, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	bctx, cancel := context.WithTimeout(ctx, s.blobTimeout)
	exists, err := s.store.Exists(bctx, req.StorageLocator)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	if !exists {
		return nil, common.ErrObjectNotFound
	}

	// owner first so a recipient entry naming the owner cannot replace the
	// owner envelope
	grants := make([]models.Recipient, 0, len(req.Recipients)+1)
	grants = append(grants, models.Recipient{UserID: ownerID, EncryptedKeyEnvelope: req.OwnerEnvelope})
	grants = append(grants, req.Recipients...)

	var doc *models.Document
	var created int
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if req.CategoryID != nil {
			if _, err := s.repomanager.Categories(tx).GetByID(ctx, *req.CategoryID); err != nil {
				return err
			}
		}
		if err := s.ledger.resolveRecipients(ctx, tx, req.Recipients); err != nil {
			return err
		}

		var err error
		doc, err = s.repomanager.Documents(tx).Create(ctx, &models.Document{
			Filename:       req.Filename,
			StorageLocator: req.StorageLocator,
			ContentHash:    req.ContentHash,
			Signature:      req.Signature,
			MimeType:       req.MimeType,
			OwnerID:        ownerID,
			CategoryID:     req.CategoryID,
		})
		if err != nil {
			return err
		}

		created, err = s.ledger.grant(ctx, tx, doc.ID, grants)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "upload confirmed", "document_id", doc.ID, "owner", ownerID, "grants", created)
	s.log.Debug(ctx, "upload locator", "document_id", doc.ID, "locator", doc.StorageLocator)
	return doc, nil
}
