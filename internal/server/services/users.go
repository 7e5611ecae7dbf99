// Package services contains server-side business logic: the category and
// document registries, the access control ledger, the two-phase upload
// coordinator, the download broker, and the user directory they rely on.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/securedoc/internal/common"
	"github.com/dmitrijs2005/securedoc/internal/dbx"
	"github.com/dmitrijs2005/securedoc/internal/logging"
	"github.com/dmitrijs2005/securedoc/internal/server/auth"
	"github.com/dmitrijs2005/securedoc/internal/server/config"
	"github.com/dmitrijs2005/securedoc/internal/server/models"
	"github.com/dmitrijs2005/securedoc/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is a seam so tests can hash cheaply.
var bcryptCost = bcrypt.DefaultCost

const tempCredentialLength = 12

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService authenticates users, provisions accounts and serves the
// public-key directory.
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	directory                    *Directory
	notifier                     Notifier
	log                          logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration

	pending sync.WaitGroup
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config,
	dir *Directory, notifier Notifier, log logging.Logger) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		directory:                    dir,
		notifier:                     notifier,
		log:                          log.With("module", "users"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Login verifies email and password and returns a new TokenPair. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrorUnauthorized
	}

	return s.generateTokenPair(ctx, user.ID, s.db)
}

// RefreshToken consumes refreshToken and issues a new pair in one transaction.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair *TokenPair

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		token, err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("error consuming refresh token: %w", err)
		}
		if token.Expires.Before(time.Now()) {
			return common.ErrRefreshTokenExpired
		}

		pair, err = s.generateTokenPair(ctx, token.UserID, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// Provision creates an account with a random temporary password and hands
// the credential to the notifier in the background.
func (s *UserService) Provision(ctx context.Context, email string, staff bool) (*models.User, error) {
	temp, err := common.MakeRandPassword(tempCredentialLength)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user, err := s.create(ctx, email, temp, staff)
	if err != nil {
		return nil, err
	}

	ev := UserProvisioned{Email: user.Email, TempCredential: temp}
	nctx := context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.notifier.UserProvisioned(nctx, ev); err != nil {
			s.log.Error(nctx, "provisioning notification failed", "email", ev.Email, "error", err)
		}
	}()

	return user, nil
}

// CreateWithPassword creates an account with an operator-chosen password.
func (s *UserService) CreateWithPassword(ctx context.Context, email, password string, staff bool) (*models.User, error) {
	if password == "" {
		return nil, common.ErrMissingField
	}
	return s.create(ctx, email, password, staff)
}

// Wait blocks until every pending provisioning notification has been handled.
func (s *UserService) Wait() {
	s.pending.Wait()
}

func (s *UserService) create(ctx context.Context, email, password string, staff bool) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{Email: email, PasswordHash: hash, IsStaff: staff})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", common.ErrMissingField
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("invalid email %q: %w", email, common.ErrorValidation)
	}
	return email, nil
}

// RegisterPublicKey stores the caller's public key and invalidates the
// cached directory entry.
func (s *UserService) RegisterPublicKey(ctx context.Context, userID, publicKey string) error {
	publicKey = strings.TrimSpace(publicKey)
	if publicKey == "" {
		return common.ErrMissingField
	}

	if err := s.repomanager.Users(s.db).SetPublicKey(ctx, userID, publicKey); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("error updating public key: %w", err)
	}

	s.directory.Forget(userID)
	return nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return u, nil
}

// GetByEmail returns a share target. Users that never registered a public
// key cannot receive envelopes and yield common.ErrNoPublicKey.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if !u.HasPublicKey() {
		return nil, common.ErrNoPublicKey
	}
	return u, nil
}

// List returns every user except the caller.
func (s *UserService) List(ctx context.Context, callerID string) ([]*models.User, error) {
	users, err := s.repomanager.Users(s.db).ListExcept(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, db dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(db).Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
