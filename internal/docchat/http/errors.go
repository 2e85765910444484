package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/docchat/internal/docchat/service"
	"github.com/aussiebroadwan/docchat/pkg/chatsdk"
	"github.com/aussiebroadwan/docchat/pkg/slogx"
)

// writeServiceError maps a service error to its HTTP response. Anything
// unrecognised is logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		chatsdk.NewAPIError(http.StatusBadRequest, ve.Reason).WriteError(w)
	case errors.Is(err, service.ErrDuplicateCredential):
		chatsdk.ErrUserExists.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		chatsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrUnauthorized):
		chatsdk.ErrNoTokenProvided.WriteError(w)
	case errors.Is(err, service.ErrInvalidToken):
		chatsdk.ErrTokenNotValid.WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		chatsdk.ErrUserNotFound.WriteError(w)
	case errors.Is(err, service.ErrDocumentService):
		chatsdk.ErrDocumentService.WriteError(w)
	case errors.Is(err, service.ErrDocumentServiceUnavailable):
		chatsdk.ErrDocumentServiceDown.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		chatsdk.ErrServerError.WriteError(w)
	}
}
