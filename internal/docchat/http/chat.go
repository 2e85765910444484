package http

import (
	"net/http"

	"github.com/aussiebroadwan/docchat/internal/docchat/service"
	"github.com/aussiebroadwan/docchat/pkg/chatsdk"
	"github.com/aussiebroadwan/docchat/pkg/httpx"
)

type ChatHandler struct {
	ChatService *service.ChatService
}

// ServeHTTP godoc
//
//	@Summary		Ask a question
//	@Description	Forwards the question, with the caller's id, to the document service.
//	@Tags			Chat
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		chatsdk.QueryRequest	true	"question"
//	@Success		200		{object}	chatsdk.QueryResponse	"answer, source"
//	@Failure		400		{object}	chatsdk.APIError		"validation message"
//	@Failure		401		{object}	chatsdk.APIError		"No token, authorization denied, or Token is not valid"
//	@Failure		502		{object}	chatsdk.APIError		"Document service error"
//	@Failure		503		{object}	chatsdk.APIError		"Document service unavailable"
//	@Router			/api/chat/query [post].
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req chatsdk.QueryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ans, err := h.ChatService.Ask(r.Context(), httpx.SubjectFromContext(r.Context()), req.Question)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, chatsdk.QueryResponse{Answer: ans.Answer, Source: ans.Source})
}
