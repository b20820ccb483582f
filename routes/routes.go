package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"

	"github.com/Dosada05/league-stats/handlers"
	"github.com/Dosada05/league-stats/middleware"
	"github.com/Dosada05/league-stats/services"
)

type Options struct {
	JWTSecret          string
	CORSAllowedOrigins []string
	// MCPHandler is mounted at /mcp when set.
	MCPHandler http.Handler
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	statsHandler *handlers.StatsHandler,
	snapshotHandler *handlers.SnapshotHandler,
	authHandler *handlers.AuthHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Mcp-Session-Id"},
		ExposedHeaders:   []string{"Mcp-Session-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", handlers.Health)

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		r.Route("/weeks", func(r chi.Router) {
			r.Get("/current", statsHandler.CurrentWeek)
			r.Get("/{week}", statsHandler.WeekView)
			r.Get("/{week}/matchups", statsHandler.Matchups)
			r.Get("/{week}/ranks", statsHandler.RankBonuses)
		})

		r.Route("/season", func(r chi.Router) {
			r.Get("/summary", statsHandler.Summary)
			r.Get("/standings", statsHandler.Standings)
			r.Get("/scores", statsHandler.Scores)
		})

		r.Get("/schedule/issues", statsHandler.ScheduleIssues)

		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/latest", snapshotHandler.Latest)
			r.Get("/{snapshotID}", snapshotHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(commissionerOnly(opts.JWTSecret)...)
				r.Post("/", snapshotHandler.Publish)
				r.Delete("/weeks/{week}", snapshotHandler.DeleteWeek)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(commissionerOnly(opts.JWTSecret)...)
			r.Post("/refresh", statsHandler.Refresh)
		})
	})

	router.Get("/ws/season", webSocketHandler.ServeSeason)

	if opts.MCPHandler != nil {
		router.Handle("/mcp", opts.MCPHandler)
		router.Handle("/mcp/*", opts.MCPHandler)
	}
}

func commissionerOnly(secret string) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.Authenticate(secret),
		middleware.Authorize(services.RoleCommissioner),
	}
}
