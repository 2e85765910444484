package sqlite

import (
	"context"

	"github.com/aussiebroadwan/docchat/internal/docchat/domain"
)

type documentsRepo struct {
	db dbtx
}

func (r *documentsRepo) CreateDocument(ctx context.Context, d domain.Document) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, owner_id, name, type, size, storage_path, file_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.OwnerID, d.Name, d.Type, d.Size, d.StoragePath, d.FileURL, d.CreatedAt.UTC(),
	)
	return mapUniqueViolation(err)
}

func (r *documentsRepo) ListDocumentsByOwner(ctx context.Context, ownerID string) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, type, size, storage_path, file_url, created_at
		 FROM documents WHERE owner_id = ?
		 ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	docs := []domain.Document{}
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.Name, &d.Type, &d.Size, &d.StoragePath, &d.FileURL, &d.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
