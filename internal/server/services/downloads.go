package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securedoc/internal/common"
	"github.com/dmitrijs2005/securedoc/internal/logging"
	"github.com/dmitrijs2005/securedoc/internal/server/blobstore"
	"github.com/dmitrijs2005/securedoc/internal/server/config"
	"github.com/dmitrijs2005/securedoc/internal/server/repositories/repomanager"
	"github.com/sethvargo/go-retry"
)

var errBlobMissing = errors.New("blob missing for document")

// downloadBackoff bounds retries of the read-only blob calls.
var downloadBackoff = func() retry.Backoff {
	return retry.WithMaxRetries(2, retry.NewExponential(50*time.Millisecond))
}

// DownloadTicket is everything a grantee needs to fetch and decrypt a
// document: a read URL, the integrity data, and their own key envelope.
type DownloadTicket struct {
	DocumentID           string
	Filename             string
	MimeType             string
	DownloadURL          string
	ExpiresAt            time.Time
	ContentHash          string
	Signature            string
	EncryptedKeyEnvelope string
	OwnerEmail           string
	OwnerPublicKey       string
	CreatedAt            time.Time
}

// DownloadService issues read capabilities to grant holders.
type DownloadService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	store        blobstore.Store
	directory    *Directory
	log          logging.Logger
	blobTimeout  time.Duration
	readValidity time.Duration
}

func NewDownloadService(db *sql.DB, m repomanager.RepositoryManager, store blobstore.Store,
	dir *Directory, cfg *config.Config, log logging.Logger) *DownloadService {
	return &DownloadService{
		db:           db,
		repomanager:  m,
		store:        store,
		directory:    dir,
		log:          log.With("module", "downloads"),
		blobTimeout:  cfg.BlobTimeout,
		readValidity: cfg.DownloadURLValidity,
	}
}

// Issue returns a ticket for documentID if requesterID holds a grant. The
// envelope in the ticket is always the requester's own.
func (s *DownloadService) Issue(ctx context.Context, documentID, requesterID string) (*DownloadTicket, error) {
	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	grant, err := s.repomanager.Grants(s.db).Get(ctx, documentID, requesterID)
	if err != nil {
		return nil, err
	}

	owner, err := s.directory.Lookup(ctx, doc.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("error resolving owner: %w", err)
	}

	url, err := s.presign(ctx, doc.StorageLocator)
	if err != nil {
		if errors.Is(err, errBlobMissing) {
			s.log.Error(ctx, "document has no blob", "document_id", doc.ID)
		} else {
			s.log.Warn(ctx, "read capability not issued", "document_id", doc.ID, "error", err)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	return &DownloadTicket{
		DocumentID:           doc.ID,
		Filename:             doc.Filename,
		MimeType:             doc.MimeType,
		DownloadURL:          url,
		ExpiresAt:            time.Now().Add(s.readValidity),
		ContentHash:          doc.ContentHash,
		Signature:            doc.Signature,
		EncryptedKeyEnvelope: grant.EncryptedKeyEnvelope,
		OwnerEmail:           owner.Email,
		OwnerPublicKey:       owner.PublicKey,
		CreatedAt:            doc.CreatedAt,
	}, nil
}

// presign checks the blob and issues a GET URL. Both calls are read-only and
// are retried within a single overall timeout.
func (s *DownloadService) presign(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.blobTimeout)
	defer cancel()

	var url string
	err := retry.Do(ctx, downloadBackoff(), func(ctx context.Context) error {
		ok, err := s.store.Exists(ctx, key)
		if err != nil {
			return retry.RetryableError(err)
		}
		if !ok {
			return errBlobMissing
		}

		url, err = s.store.PresignGet(ctx, key, s.readValidity)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	return url, err
}
