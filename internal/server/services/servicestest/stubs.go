// Package servicestest provides function-field stubs of the service
// contracts for transport tests. A nil field makes the call fail with
// common.ErrorInternal.
package servicestest

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/securedoc/internal/common"
	"github.com/dmitrijs2005/securedoc/internal/server/models"
	"github.com/dmitrijs2005/securedoc/internal/server/services"
)

func notStubbed(name string) error {
	return fmt.Errorf("%s not stubbed: %w", name, common.ErrorInternal)
}

type Users struct {
	LoginFn             func(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshTokenFn      func(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	RegisterPublicKeyFn func(ctx context.Context, userID, publicKey string) error
	ProfileFn           func(ctx context.Context, userID string) (*models.User, error)
	GetByEmailFn        func(ctx context.Context, email string) (*models.User, error)
	ListFn              func(ctx context.Context, callerID string) ([]*models.User, error)
}

func (u *Users) Login(ctx context.Context, email, password string) (*services.TokenPair, error) {
	if u.LoginFn == nil {
		return nil, notStubbed("Login")
	}
	return u.LoginFn(ctx, email, password)
}

func (u *Users) RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	if u.RefreshTokenFn == nil {
		return nil, notStubbed("RefreshToken")
	}
	return u.RefreshTokenFn(ctx, refreshToken)
}

func (u *Users) RegisterPublicKey(ctx context.Context, userID, publicKey string) error {
	if u.RegisterPublicKeyFn == nil {
		return notStubbed("RegisterPublicKey")
	}
	return u.RegisterPublicKeyFn(ctx, userID, publicKey)
}

func (u *Users) Profile(ctx context.Context, userID string) (*models.User, error) {
	if u.ProfileFn == nil {
		return nil, notStubbed("Profile")
	}
	return u.ProfileFn(ctx, userID)
}

func (u *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u.GetByEmailFn == nil {
		return nil, notStubbed("GetByEmail")
	}
	return u.GetByEmailFn(ctx, email)
}

func (u *Users) List(ctx context.Context, callerID string) ([]*models.User, error) {
	if u.ListFn == nil {
		return nil, notStubbed("List")
	}
	return u.ListFn(ctx, callerID)
}

type Categories struct {
	CreateFn func(ctx context.Context, callerID, name, description string) (*models.Category, error)
	DeleteFn func(ctx context.Context, callerID, id string) error
	ListFn   func(ctx context.Context) ([]*models.Category, error)
}

func (c *Categories) Create(ctx context.Context, callerID, name, description string) (*models.Category, error) {
	if c.CreateFn == nil {
		return nil, notStubbed("Create")
	}
	return c.CreateFn(ctx, callerID, name, description)
}

func (c *Categories) Delete(ctx context.Context, callerID, id string) error {
	if c.DeleteFn == nil {
		return notStubbed("Delete")
	}
	return c.DeleteFn(ctx, callerID, id)
}

func (c *Categories) List(ctx context.Context) ([]*models.Category, error) {
	if c.ListFn == nil {
		return nil, notStubbed("List")
	}
	return c.ListFn(ctx)
}

type Documents struct {
	GetFn              func(ctx context.Context, id string) (*models.Document, error)
	ListAccessibleToFn func(ctx context.Context, userID string) ([]*models.AccessibleDocument, error)
	DeleteFn           func(ctx context.Context, id, requesterID string) error
}

func (d *Documents) Get(ctx context.Context, id string) (*models.Document, error) {
	if d.GetFn == nil {
		return nil, notStubbed("Get")
	}
	return d.GetFn(ctx, id)
}

func (d *Documents) ListAccessibleTo(ctx context.Context, userID string) ([]*models.AccessibleDocument, error) {
	if d.ListAccessibleToFn == nil {
		return nil, notStubbed("ListAccessibleTo")
	}
	return d.ListAccessibleToFn(ctx, userID)
}

func (d *Documents) Delete(ctx context.Context, id, requesterID string) error {
	if d.DeleteFn == nil {
		return notStubbed("Delete")
	}
	return d.DeleteFn(ctx, id, requesterID)
}

type Ledger struct {
	ShareFn      func(ctx context.Context, documentID, requesterID string, recipients []models.Recipient) (int, error)
	ListGrantsFn func(ctx context.Context, documentID, requesterID string) ([]*models.GrantHolder, error)
	HasGrantFn   func(ctx context.Context, documentID, userID string) (bool, error)
}

func (l *Ledger) Share(ctx context.Context, documentID, requesterID string, recipients []models.Recipient) (int, error) {
	if l.ShareFn == nil {
		return 0, notStubbed("Share")
	}
	return l.ShareFn(ctx, documentID, requesterID, recipients)
}

func (l *Ledger) ListGrants(ctx context.Context, documentID, requesterID string) ([]*models.GrantHolder, error) {
	if l.ListGrantsFn == nil {
		return nil, notStubbed("ListGrants")
	}
	return l.ListGrantsFn(ctx, documentID, requesterID)
}

func (l *Ledger) HasGrant(ctx context.Context, documentID, userID string) (bool, error) {
	if l.HasGrantFn == nil {
		return false, notStubbed("HasGrant")
	}
	return l.HasGrantFn(ctx, documentID, userID)
}

type Uploads struct {
	PrepareFn func(ctx context.Context, filename string) (*services.UploadIntent, error)
	ConfirmFn func(ctx context.Context, ownerID string, req *services.ConfirmRequest) (*models.Document, error)
}

func (u *Uploads) Prepare(ctx context.Context, filename string) (*services.UploadIntent, error) {
	if u.PrepareFn == nil {
		return nil, notStubbed("Prepare")
	}
	return u.PrepareFn(ctx, filename)
}

func (u *Uploads) Confirm(ctx context.Context, ownerID string, req *services.ConfirmRequest) (*models.Document, error) {
	if u.ConfirmFn == nil {
		return nil, notStubbed("Confirm")
	}
	return u.ConfirmFn(ctx, ownerID, req)
}

type Downloads struct {
	IssueFn func(ctx context.Context, documentID, requesterID string) (*services.DownloadTicket, error)
}

func (d *Downloads) Issue(ctx context.Context, documentID, requesterID string) (*services.DownloadTicket, error) {
	if d.IssueFn == nil {
		return nil, notStubbed("Issue")
	}
	return d.IssueFn(ctx, documentID, requesterID)
}

// Stubs holds one stub per contract.
type Stubs struct {
	Users      *Users
	Categories *Categories
	Documents  *Documents
	Ledger     *Ledger
	Uploads    *Uploads
	Downloads  *Downloads
}

func New() *Stubs {
	return &Stubs{
		Users:      &Users{},
		Categories: &Categories{},
		Documents:  &Documents{},
		Ledger:     &Ledger{},
		Uploads:    &Uploads{},
		Downloads:  &Downloads{},
	}
}

// Set returns the stubs as a services.Set.
func (s *Stubs) Set() services.Set {
	return services.Set{
		Users:      s.Users,
		Categories: s.Categories,
		Documents:  s.Documents,
		Ledger:     s.Ledger,
		Uploads:    s.Uploads,
		Downloads:  s.Downloads,
	}
}
