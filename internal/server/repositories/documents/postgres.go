package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securedoc/internal/common"
	"github.com/dmitrijs2005/securedoc/internal/dbx"
	"github.com/dmitrijs2005/securedoc/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func (r *PostgresRepository) Create(ctx context.Context, d *models.Document) (*models.Document, error) {
	query := `
		INSERT INTO documents (filename, storage_locator, content_hash, signature, mime_type, owner_id, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		d.Filename, d.StorageLocator, d.ContentHash, d.Signature, d.MimeType, d.OwnerID, nullable(d.CategoryID),
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) || dbx.IsInvalidInput(err) {
			if d.CategoryID != nil && dbx.ConstraintName(err) != "documents_owner_id_fkey" {
				return nil, common.ErrCategoryNotFound
			}
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

const selectDocument = `
	SELECT id, filename, storage_locator, content_hash, signature, mime_type, owner_id, category_id, created_at
	FROM documents
	WHERE id = $1`

func (r *PostgresRepository) getOne(ctx context.Context, query string, id string) (*models.Document, error) {
	d := &models.Document{}
	var category sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.Filename, &d.StorageLocator, &d.ContentHash, &d.Signature, &d.MimeType, &d.OwnerID, &category, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidInput(err) {
			return nil, common.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	d.CategoryID = fromNullable(category)
	return d, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	return r.getOne(ctx, selectDocument, id)
}

func (r *PostgresRepository) GetForShare(ctx context.Context, id string) (*models.Document, error) {
	return r.getOne(ctx, selectDocument+` FOR SHARE`, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		if dbx.IsInvalidInput(err) {
			return common.ErrDocumentNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrDocumentNotFound
	}
	return nil
}

func (r *PostgresRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM documents WHERE category_id = $1`, categoryID).Scan(&n)
	if err != nil {
		if dbx.IsInvalidInput(err) {
			return 0, common.ErrCategoryNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) ListAccessibleTo(ctx context.Context, userID string) ([]*models.AccessibleDocument, error) {
	query := `
		SELECT d.id, d.filename, d.storage_locator, d.content_hash, d.signature, d.mime_type,
		       d.owner_id, d.category_id, d.created_at,
		       COALESCE(c.name, ''), u.email, u.public_key,
		       g.encrypted_key_envelope, g.created_at
		FROM access_grants g
		JOIN documents d ON d.id = g.document_id
		JOIN users u ON u.id = d.owner_id
		LEFT JOIN categories c ON c.id = d.category_id
		WHERE g.user_id = $1
		ORDER BY d.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	var result []*models.AccessibleDocument
	for rows.Next() {
		ad := &models.AccessibleDocument{}
		var category sql.NullString
		if err := rows.Scan(
			&ad.ID, &ad.Filename, &ad.StorageLocator, &ad.ContentHash, &ad.Signature, &ad.MimeType,
			&ad.OwnerID, &category, &ad.CreatedAt,
			&ad.CategoryName, &ad.OwnerEmail, &ad.OwnerPublicKey,
			&ad.Grant.EncryptedKeyEnvelope, &ad.Grant.CreatedAt,
		); err != nil {
			return nil, err
		}
		ad.CategoryID = fromNullable(category)
		ad.Grant.DocumentID = ad.ID
		ad.Grant.UserID = userID
		result = append(result, ad)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
