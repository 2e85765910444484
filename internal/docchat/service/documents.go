package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/aussiebroadwan/docchat/internal/docchat/docsvc"
	"github.com/aussiebroadwan/docchat/internal/docchat/domain"
	"github.com/aussiebroadwan/docchat/internal/docchat/storage"
	"github.com/aussiebroadwan/docchat/internal/docchat/store"
	"github.com/aussiebroadwan/docchat/pkg/idx"
	"github.com/aussiebroadwan/docchat/pkg/slogx"
)

// DocumentIndex is the external document service. *docsvc.Client
// implements it.
type DocumentIndex interface {
	Ingest(ctx context.Context, in docsvc.IngestRequest) error
	Query(ctx context.Context, userID, question string) (docsvc.Answer, error)
	Ping(ctx context.Context) error
}

type DocumentService struct {
	Store   store.Store
	Storage storage.Storage
	// Index may be nil, in which case uploads are stored but not indexed.
	Index DocumentIndex
	Now   func() time.Time
}

// Upload stores fh for ownerID, hands it to the document service and records
// its metadata. When the document service rejects the file the stored copy is
// removed and no record is written.
func (s *DocumentService) Upload(ctx context.Context, ownerID string, fh *multipart.FileHeader) (domain.Document, error) {
	l := slogx.FromContext(ctx)

	if fh == nil {
		return domain.Document{}, invalid("No file uploaded")
	}
	if ownerID == "" {
		return domain.Document{}, ErrUnauthorized
	}

	docID := idx.New().String()
	name := storage.SanitizeFilename(fh.Filename)
	key := ownerID + "/" + docID + "-" + name

	file, err := s.Storage.Save(ctx, fh, key)
	if err != nil {
		l.Error("upload: save failed", "document_id", docID, "error", err)
		return domain.Document{}, fmt.Errorf("%w: save upload: %v", ErrUpstreamFailure, err)
	}

	discard := func() {
		if err := s.Storage.Delete(context.WithoutCancel(ctx), file.Path); err != nil {
			l.Warn("upload: failed to remove stored file", "path", file.Path, "error", err)
		}
	}

	if s.Index != nil {
		if err := s.ingest(ctx, ownerID, docID, file, fh); err != nil {
			l.Error("upload: document service rejected file", "document_id", docID, "error", err)
			discard()
			return domain.Document{}, fmt.Errorf("%w: %v", ErrDocumentService, err)
		}
	} else {
		l.Warn("upload: document service not configured, file stored without indexing", "document_id", docID)
	}

	doc := domain.Document{
		ID:          docID,
		OwnerID:     ownerID,
		Name:        file.Filename,
		Type:        file.MIMEType,
		Size:        file.Size,
		StoragePath: file.Path,
		FileURL:     s.Storage.URL(file.Path),
		CreatedAt:   s.now().Truncate(time.Millisecond),
	}

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Documents().CreateDocument(ctx, doc)
	}); err != nil {
		l.Error("upload: create record failed", "document_id", docID, "error", err)
		discard()
		return domain.Document{}, fmt.Errorf("%w: create document: %v", ErrUpstreamFailure, err)
	}

	l.Info("document uploaded", "document_id", docID, "size", doc.Size, "type", doc.Type)
	return doc, nil
}

func (s *DocumentService) ingest(ctx context.Context, ownerID, docID string, file *storage.File, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	return s.Index.Ingest(ctx, docsvc.IngestRequest{
		UserID:      ownerID,
		DocumentID:  docID,
		Filename:    file.Filename,
		ContentType: file.MIMEType,
		Body:        f,
	})
}

// List returns ownerID's documents, newest first.
func (s *DocumentService) List(ctx context.Context, ownerID string) ([]domain.Document, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}
	docs, err := s.Store.Documents().ListDocumentsByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []domain.Document{}, nil
		}
		slogx.FromContext(ctx).Error("list documents failed", "error", err)
		return nil, fmt.Errorf("%w: list documents: %v", ErrUpstreamFailure, err)
	}
	return docs, nil
}

func (s *DocumentService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
