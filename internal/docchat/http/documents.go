package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/docchat/internal/docchat/domain"
	"github.com/aussiebroadwan/docchat/internal/docchat/service"
	"github.com/aussiebroadwan/docchat/pkg/chatsdk"
	"github.com/aussiebroadwan/docchat/pkg/httpx"
	"github.com/aussiebroadwan/docchat/pkg/slogx"
)

// DefaultMaxUploadBytes caps an upload when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

type DocumentsHandler struct {
	DocumentService *service.DocumentService
	MaxUploadBytes  int64
}

// HandleUpload godoc
//
//	@Summary		Upload a document
//	@Description	Stores the file, hands it to the document service with the caller's id, and records its metadata.
//	@Tags			Documents
//	@Security		BearerAuth
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file					true	"document to upload"
//	@Success		201		{object}	chatsdk.UploadResponse	"message, document"
//	@Failure		400		{object}	chatsdk.APIError		"No file uploaded"
//	@Failure		401		{object}	chatsdk.APIError		"No token, authorization denied, or Token is not valid"
//	@Failure		413		{object}	chatsdk.APIError		"File too large"
//	@Failure		502		{object}	chatsdk.APIError		"Document service error"
//	@Failure		500		{object}	chatsdk.APIError		"Server error"
//	@Router			/api/documents/upload [post].
func (h *DocumentsHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := httpx.SubjectFromContext(ctx)

	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	// room for the multipart envelope around the file
	r.Body = http.MaxBytesReader(w, r.Body, limit+64<<10)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			chatsdk.ErrFileTooLarge.WriteError(w)
			return
		}
		chatsdk.ErrNoFileUploaded.WriteError(w)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	_, fh, err := r.FormFile("file")
	if err != nil {
		chatsdk.ErrNoFileUploaded.WriteError(w)
		return
	}
	if fh.Size > limit {
		chatsdk.ErrFileTooLarge.WriteError(w)
		return
	}

	doc, err := h.DocumentService.Upload(ctx, userID, fh)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Debug("upload stored", "document_id", doc.ID)
	httpx.WriteJSON(w, http.StatusCreated, chatsdk.UploadResponse{
		Message:  "Document uploaded successfully",
		Document: toDocument(doc),
	})
}

// HandleList godoc
//
//	@Summary		List documents
//	@Description	Returns the caller's documents, newest first.
//	@Tags			Documents
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		chatsdk.Document
//	@Failure		401	{object}	chatsdk.APIError	"No token, authorization denied, or Token is not valid"
//	@Failure		500	{object}	chatsdk.APIError	"Server error"
//	@Router			/api/documents [get].
func (h *DocumentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	docs, err := h.DocumentService.List(r.Context(), httpx.SubjectFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]chatsdk.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocument(d))
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, out)
}

func toDocument(d domain.Document) chatsdk.Document {
	return chatsdk.Document{
		ID:        d.ID,
		Name:      d.Name,
		Type:      d.Type,
		Size:      d.SizeLabel(),
		SizeBytes: d.Size,
		FileURL:   d.FileURL,
		CreatedAt: d.CreatedAt,
	}
}
