package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securedoc/internal/common"
	"github.com/dmitrijs2005/securedoc/internal/server/models"
	"github.com/dmitrijs2005/securedoc/internal/server/repositories/repomanager"
	"github.com/patrickmn/go-cache"
)

// Directory resolves user ids to email and public key. Entries are cached for
// the configured TTL and dropped when a user registers a new key. Forget only
// reaches this process, so other instances may serve the old key until their
// entry expires.
type Directory struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       *cache.Cache
}

// DirectoryEntry is the public part of a user record.
type DirectoryEntry struct {
	UserID    string
	Email     string
	PublicKey string
}

func NewDirectory(db *sql.DB, m repomanager.RepositoryManager, ttl time.Duration) *Directory {
	return &Directory{
		db:          db,
		repomanager: m,
		cache:       cache.New(ttl, 2*ttl),
	}
}

// Lookup returns the directory entry for userID or common.ErrUserNotFound.
func (d *Directory) Lookup(ctx context.Context, userID string) (*DirectoryEntry, error) {
	if v, ok := d.cache.Get(userID); ok {
		e := v.(DirectoryEntry)
		return &e, nil
	}

	u, err := d.repomanager.Users(d.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	e := entryOf(u)
	d.cache.SetDefault(userID, e)
	return &e, nil
}

// Forget drops a cached entry.
func (d *Directory) Forget(userID string) {
	d.cache.Delete(userID)
}

func entryOf(u *models.User) DirectoryEntry {
	return DirectoryEntry{UserID: u.ID, Email: u.Email, PublicKey: u.PublicKey}
}
