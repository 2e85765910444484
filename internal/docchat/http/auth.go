package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/docchat/internal/docchat/domain"
	"github.com/aussiebroadwan/docchat/internal/docchat/service"
	"github.com/aussiebroadwan/docchat/pkg/chatsdk"
	"github.com/aussiebroadwan/docchat/pkg/httpx"
)

// maxAuthBody bounds register and login bodies.
const maxAuthBody = 16 << 10

type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleRegister godoc
//
//	@Summary		Register a new user
//	@Description	Creates an account and returns a session token valid for 7 days.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		chatsdk.RegisterRequest	true	"name, email, password (6+ characters)"
//	@Success		201		{object}	chatsdk.AuthResponse	"token, user"
//	@Failure		400		{object}	chatsdk.APIError		"User already exists, or a validation message"
//	@Failure		429		{object}	chatsdk.APIError		"Too many requests"
//	@Failure		500		{object}	chatsdk.APIError		"Server error"
//	@Router			/api/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req chatsdk.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.AuthService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, chatsdk.AuthResponse{Token: res.Token, User: toUser(res.User)})
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchanges email and password for a fresh session token. Unknown emails and wrong passwords get the same answer.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		chatsdk.LoginRequest	true	"email, password"
//	@Success		200		{object}	chatsdk.AuthResponse	"token, user"
//	@Failure		400		{object}	chatsdk.APIError		"Invalid credentials"
//	@Failure		429		{object}	chatsdk.APIError		"Too many requests"
//	@Failure		500		{object}	chatsdk.APIError		"Server error"
//	@Router			/api/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req chatsdk.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, chatsdk.AuthResponse{Token: res.Token, User: toUser(res.User)})
}

// HandleMe godoc
//
//	@Summary		Current user
//	@Description	Resolves the bearer token to the user it was issued for. The password hash is never read.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	chatsdk.MeResponse	"user"
//	@Failure		401	{object}	chatsdk.APIError	"Unauthorized: No token provided, or Token is not valid"
//	@Failure		404	{object}	chatsdk.APIError	"User not found"
//	@Failure		500	{object}	chatsdk.APIError	"Server error"
//	@Router			/api/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	profile, err := h.AuthService.CurrentUser(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, chatsdk.MeResponse{User: toUser(profile)})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAuthBody))
	if err := dec.Decode(v); err != nil {
		chatsdk.ErrInvalidRequest.WriteError(w)
		return false
	}
	return true
}

func toUser(p domain.Profile) chatsdk.User {
	return chatsdk.User{
		ID:           p.ID,
		Name:         p.Name,
		Email:        p.Email,
		ProfileImage: p.ProfileImage,
		CreatedAt:    p.CreatedAt,
	}
}
