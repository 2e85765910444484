package chatsdk_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/docchat/pkg/chatsdk"
	"github.com/aussiebroadwan/docchat/pkg/httpx"
)

// fakeAPI is an in-memory stand-in for the DocChat server.
type fakeAPI struct {
	mu        sync.Mutex
	passwords map[string]string // email -> password
	users     map[string]chatsdk.User
	tokens    map[string]string // token -> email
	uploads   []string

	// when set, login blocks until it is closed
	loginStarted chan struct{}
	releaseLogin chan struct{}
}

func newFakeAPI(t *testing.T) (*fakeAPI, *chatsdk.Client) {
	t.Helper()
	api := &fakeAPI{
		passwords: map[string]string{},
		users:     map[string]chatsdk.User{},
		tokens:    map[string]string{},
	}
	srv := httptest.NewServer(api.routes())
	t.Cleanup(srv.Close)
	return api, chatsdk.NewClient(srv.URL + "/")
}

func (a *fakeAPI) addUser(name, email, password string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.passwords[email] = password
	a.users[email] = chatsdk.User{ID: "id-" + email, Name: name, Email: email, CreatedAt: time.Unix(0, 0).UTC()}
	token := "token-" + email
	a.tokens[token] = email
	return token
}

// blockLogin makes the next login wait. It returns a channel closed when the
// login arrives and one to close to let it proceed.
func (a *fakeAPI) blockLogin() (started <-chan struct{}, release chan<- struct{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loginStarted = make(chan struct{})
	a.releaseLogin = make(chan struct{})
	return a.loginStarted, a.releaseLogin
}

func (a *fakeAPI) uploaded() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.uploads...)
}

func (a *fakeAPI) revoke(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.tokens, token)
}

func (a *fakeAPI) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req chatsdk.RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		a.mu.Lock()
		_, exists := a.users[req.Email]
		a.mu.Unlock()
		if exists {
			chatsdk.ErrUserExists.WriteError(w)
			return
		}
		token := a.addUser(req.Name, req.Email, req.Password)
		a.mu.Lock()
		u := a.users[req.Email]
		a.mu.Unlock()
		httpx.WriteJSON(w, http.StatusCreated, chatsdk.AuthResponse{Token: token, User: u})
	})

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		started, release := a.loginStarted, a.releaseLogin
		a.mu.Unlock()
		if started != nil {
			close(started)
			<-release
		}
		var req chatsdk.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		a.mu.Lock()
		defer a.mu.Unlock()
		if pw, ok := a.passwords[req.Email]; !ok || pw != req.Password {
			chatsdk.ErrInvalidCredentials.WriteError(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, chatsdk.AuthResponse{Token: "token-" + req.Email, User: a.users[req.Email]})
	})

	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		u, ok := a.authorize(w, r)
		if !ok {
			return
		}
		httpx.WriteJSON(w, http.StatusOK, chatsdk.MeResponse{User: u})
	})

	mux.HandleFunc("POST /api/documents/upload", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := a.authorize(w, r); !ok {
			return
		}
		f, fh, err := r.FormFile("file")
		if err != nil {
			chatsdk.ErrNoFileUploaded.WriteError(w)
			return
		}
		b, _ := io.ReadAll(f)
		a.mu.Lock()
		a.uploads = append(a.uploads, fh.Filename+":"+string(b))
		a.mu.Unlock()
		httpx.WriteJSON(w, http.StatusCreated, chatsdk.UploadResponse{
			Message:  "Document uploaded successfully",
			Document: chatsdk.Document{ID: "doc-1", Name: fh.Filename, Type: fh.Header.Get("Content-Type"), SizeBytes: int64(len(b))},
		})
	})

	mux.HandleFunc("GET /api/documents", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := a.authorize(w, r); !ok {
			return
		}
		httpx.WriteJSON(w, http.StatusOK, []chatsdk.Document{{ID: "doc-1", Name: "a.txt"}})
	})

	mux.HandleFunc("POST /api/chat/query", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := a.authorize(w, r); !ok {
			return
		}
		var req chatsdk.QueryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		httpx.WriteJSON(w, http.StatusOK, chatsdk.QueryResponse{Answer: "re: " + req.Question, Source: "documents"})
	})

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, chatsdk.HealthResponse{Status: "ok", Message: "Server is running"})
	})

	return mux
}

func (a *fakeAPI) authorize(w http.ResponseWriter, r *http.Request) (chatsdk.User, bool) {
	token, ok := httpx.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		chatsdk.ErrNoTokenAuthDenied.WriteError(w)
		return chatsdk.User{}, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	email, ok := a.tokens[token]
	if !ok {
		chatsdk.ErrTokenNotValid.WriteError(w)
		return chatsdk.User{}, false
	}
	return a.users[email], true
}

// recorder collects notices.
type recorder struct {
	mu      sync.Mutex
	notices []chatsdk.Notice
}

func (r *recorder) Notify(n chatsdk.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) messages() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var parts []string
	for _, n := range r.notices {
		parts = append(parts, string(n.Kind)+":"+n.Message)
	}
	return strings.Join(parts, "|")
}
