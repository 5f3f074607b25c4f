package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gestaozabele/ouvidoria/internal/ai"
	"github.com/gestaozabele/ouvidoria/internal/catalog"
	"github.com/gestaozabele/ouvidoria/internal/config"
	"github.com/gestaozabele/ouvidoria/internal/geo"
	httpmiddleware "github.com/gestaozabele/ouvidoria/internal/http/middleware"
	"github.com/gestaozabele/ouvidoria/internal/identity"
	"github.com/gestaozabele/ouvidoria/internal/report"
	"github.com/gestaozabele/ouvidoria/internal/service"
)

type Handler struct {
	cfg           *config.Config
	catalog       *catalog.Store
	users         *identity.Service
	reports       *report.Service
	authService   *service.AuthService
	analyzer      *ai.Client
	geocoder      *geo.Client
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
	devCookies    bool
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, catalogStore *catalog.Store, users *identity.Service, reports *report.Service, authService *service.AuthService, analyzer *ai.Client, geocoder *geo.Client) http.Handler {
	devCookies := false
	for _, origin := range cfg.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			devCookies = true
			break
		}
	}

	h := &Handler{
		cfg:           cfg,
		catalog:       catalogStore,
		users:         users,
		reports:       reports,
		authService:   authService,
		analyzer:      analyzer,
		geocoder:      geocoder,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
		devCookies:    devCookies,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)

		public.Route("/catalog", func(c chi.Router) {
			c.Get("/sectors", h.ListPublicSectors)
			c.Get("/sectors/{id}/services", h.ListPublicServices)
		})

		public.Post("/reports", h.CreatePublicReport)
		public.Get("/reports/{id}", h.GetPublicReport)

		public.Route("/auth", func(a chi.Router) {
			a.Post("/login", h.Login)
			a.Post("/refresh", h.Refresh)
			a.Post("/logout", h.Logout)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(authService.JWT()))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/me", h.Me)

		private.Route("/admin", func(admin chi.Router) {
			admin.Get("/sectors", h.ListAdminSectors)
			admin.Get("/reports", h.ListAdminReports)
			admin.Post("/reports", h.CreateInternalReport)
			admin.Post("/reports/{id}/transition", h.TransitionReport)

			admin.Group(func(super chi.Router) {
				super.Use(httpmiddleware.RequireRoles(string(identity.RoleSuperAdmin)))

				super.Post("/sectors", h.CreateSector)
				super.Put("/sectors/{id}", h.UpdateSector)
				super.Delete("/sectors/{id}", h.DeleteSector)

				super.Get("/services", h.ListAdminServices)
				super.Post("/services", h.CreateService)
				super.Put("/services/{id}", h.UpdateService)
				super.Delete("/services/{id}", h.DeleteService)
				super.Post("/services/{id}/toggle", h.ToggleService)

				super.Route("/users", func(u chi.Router) {
					u.Get("/", h.ListUsers)
					u.Post("/", h.CreateUser)
					u.Put("/{id}", h.UpdateUser)
					u.Delete("/{id}", h.DeleteUser)
					u.Post("/{id}/toggle", h.ToggleUser)
				})
			})
		})
	})

	return r
}

// Health responde liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready responde readiness.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// actingUser recarrega o usuário da sessão pelo subject do token. As regras de
// autorização usam sempre o estado atual do usuário, nunca claims antigas.
func (h *Handler) actingUser(r *http.Request) (identity.User, error) {
	subject := strings.TrimSpace(httpmiddleware.GetSubject(r.Context()))
	if subject == "" {
		return identity.User{}, identity.ErrNotFound
	}
	return h.users.GetUser(r.Context(), subject)
}

// writeDomainError traduz erros sentinela de domínio para o envelope HTTP.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrValidation),
		errors.Is(err, identity.ErrValidation),
		errors.Is(err, report.ErrValidation):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, identity.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "AUTH", err.Error(), nil)
	case errors.Is(err, identity.ErrAccountDisabled):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, report.ErrForbidden):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, report.ErrInvalidTransition):
		WriteError(w, http.StatusUnprocessableEntity, "INVALID_TRANSITION", err.Error(), nil)
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, identity.ErrNotFound),
		errors.Is(err, report.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}
