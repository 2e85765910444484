package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/docchat/internal/docchat/service"
	"github.com/aussiebroadwan/docchat/internal/docchat/store"
	"github.com/aussiebroadwan/docchat/pkg/httpx"
	"github.com/aussiebroadwan/docchat/pkg/jwtx"
	"github.com/aussiebroadwan/docchat/pkg/slogx"

	_ "github.com/aussiebroadwan/docchat/api/docchat" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	// RateLimits picks the limiter backend. The zero value limits in memory.
	RateLimits httpx.RateLimits
	// UploadDir, when set, is served read-only under /uploads/.
	UploadDir      string
	MaxUploadBytes int64

	AuthService     *service.AuthService
	DocumentService *service.DocumentService
	ChatService     *service.ChatService
	Monitor         *service.UpstreamMonitor // optional
}

func NewRouter(verifier jwtx.Verifier, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerDocuments()
	r.registerChat()
	r.registerSystem()
	r.registerUploads()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			DocChat API
//	@version		0.1.0
//	@description	Accounts, sessions and document chat. Session tokens are HS256 JWTs valid for 7 days.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/docchat
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:5001
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Register - strict rate limit by IP
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			r.RateLimits.ByIP(httpx.StrictLimit),
		),
	)

	// Login - strict rate limit by IP + email to slow down guessing
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			r.RateLimits.ByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	// Me parses the Authorization header itself so it can tell a missing
	// token from a bad one
	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			r.RateLimits.ByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerDocuments() {
	h := &DocumentsHandler{
		DocumentService: r.DocumentService,
		MaxUploadBytes:  r.MaxUploadBytes,
	}

	securedUpload := httpx.Chain(http.HandlerFunc(h.HandleUpload),
		httpx.AuthnMiddleware(r.verifier),
		r.RateLimits.ByUser(httpx.ModerateLimit),
	)

	securedList := httpx.Chain(http.HandlerFunc(h.HandleList),
		httpx.AuthnMiddleware(r.verifier),
		r.RateLimits.ByUser(httpx.LenientLimit),
	)

	r.Mux.Handle("POST /api/documents/upload", securedUpload)
	r.Mux.Handle("GET /api/documents", securedList)
}

func (r *Router) registerChat() {
	h := &ChatHandler{ChatService: r.ChatService}

	r.Mux.Handle("POST /api/chat/query",
		httpx.Chain(h,
			httpx.AuthnMiddleware(r.verifier),
			r.RateLimits.ByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /api/health",
		httpx.Chain(HealthHandler(),
			r.RateLimits.ByIP(httpx.PublicLimit),
		),
	)

	// Probes - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			r.RateLimits.ByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.Monitor),
			r.RateLimits.ByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerUploads() {
	if r.UploadDir == "" {
		return
	}

	files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(r.UploadDir)))
	r.Mux.Handle("GET /uploads/",
		httpx.Chain(noDirListing(files),
			r.RateLimits.ByIP(httpx.PublicLimit),
		),
	)
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
