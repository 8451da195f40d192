package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/refriproject/refri-backend/api/controllers"
	"github.com/refriproject/refri-backend/api/middleware"
	"github.com/refriproject/refri-backend/internal/auth"
	"github.com/refriproject/refri-backend/internal/inventory"
	"github.com/refriproject/refri-backend/internal/suggest"
	"github.com/refriproject/refri-backend/pkg/auth/session"
	"github.com/refriproject/refri-backend/pkg/config"
	"github.com/refriproject/refri-backend/pkg/logger"
)

// NewRouter wires middleware and controllers into the API surface.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	healthDeps map[string]controllers.Pinger,
	sessionChecker session.AccessSessionChecker,
	authService auth.Service,
	inventoryService inventory.Service,
	suggestService suggest.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, healthDeps))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.With(middleware.Auth(cfg.JWT, sessionChecker, logg)).Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/items", func(r chi.Router) {
			r.Get("/", controllers.ItemsList(inventoryService, logg))
			r.Post("/", controllers.ItemsCreate(inventoryService, logg))
			r.Get("/stats", controllers.ItemsStats(inventoryService, logg))
			r.Get("/expiring", controllers.ItemsExpiring(inventoryService, logg))
			r.Patch("/{itemId}", controllers.ItemsUpdate(inventoryService, logg))
			r.Delete("/{itemId}", controllers.ItemsDelete(inventoryService, logg))
			r.Post("/{itemId}/consume", controllers.ItemsConsume(inventoryService, logg))
			r.Post("/{itemId}/restore", controllers.ItemsRestore(inventoryService, logg))
		})

		r.Post("/v1/suggestions", controllers.SuggestionsCreate(suggestService, logg))
	})

	return r
}
