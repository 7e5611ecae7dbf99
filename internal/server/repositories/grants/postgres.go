package grants

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securedoc/internal/common"
	"github.com/dmitrijs2005/securedoc/internal/dbx"
	"github.com/dmitrijs2005/securedoc/internal/server/models"
)

const documentFK = "access_grants_document_id_fkey"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, g *models.AccessGrant) (bool, error) {
	query := `
		INSERT INTO access_grants (document_id, user_id, encrypted_key_envelope)
		VALUES ($1, $2, $3)
		ON CONFLICT (document_id, user_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, g.DocumentID, g.UserID, g.EncryptedKeyEnvelope)
	if err != nil {
		switch {
		case dbx.IsForeignKeyViolation(err) && dbx.ConstraintName(err) == documentFK:
			return false, common.ErrDocumentNotFound
		case dbx.IsForeignKeyViolation(err), dbx.IsInvalidInput(err):
			return false, common.ErrUserNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) Get(ctx context.Context, documentID, userID string) (*models.AccessGrant, error) {
	query := `
		SELECT document_id, user_id, encrypted_key_envelope, created_at
		FROM access_grants
		WHERE document_id = $1 AND user_id = $2
	`
	g := &models.AccessGrant{}
	err := r.db.QueryRowContext(ctx, query, documentID, userID).
		Scan(&g.DocumentID, &g.UserID, &g.EncryptedKeyEnvelope, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidInput(err) {
			return nil, common.ErrNoGrant
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}

func (r *PostgresRepository) ListByDocument(ctx context.Context, documentID string) ([]*models.GrantHolder, error) {
	query := `
		SELECT g.user_id, u.email, g.created_at
		FROM access_grants g
		JOIN users u ON u.id = g.user_id
		WHERE g.document_id = $1
		ORDER BY g.created_at, u.email
	`
	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to select grants: %w", err)
	}
	defer rows.Close()

	var result []*models.GrantHolder
	for rows.Next() {
		h := &models.GrantHolder{}
		if err := rows.Scan(&h.UserID, &h.Email, &h.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByDocument(ctx context.Context, documentID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM access_grants WHERE document_id = $1`, documentID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
