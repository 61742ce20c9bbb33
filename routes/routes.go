package routes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/league-system/docs" // регистрирует swagger-документ
	"github.com/Dosada05/league-system/handlers"
	"github.com/Dosada05/league-system/metrics"
	"github.com/Dosada05/league-system/middleware"
	"github.com/Dosada05/league-system/models"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Category  *handlers.CategoryHandler
	Player    *handlers.PlayerHandler
	Fixture   *handlers.FixtureHandler
	Round     *handlers.RoundHandler
	Match     *handlers.MatchHandler
	Cron      *handlers.CronHandler
	WebSocket *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      string
	CronSecret     string
	AllowedOrigins []string
	LoginLimiter   *middleware.RateLimiter
	Logger         *slog.Logger
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(metrics.InstrumentHandler)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.JWTSecret, opts.Logger)
	adminOnly := middleware.Authorize(models.RoleAdmin)

	router.Handle("/metrics", metrics.Handler())
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/auth", func(r chi.Router) {
		if opts.LoginLimiter != nil {
			r.Use(opts.LoginLimiter.Handler)
		}
		r.Post("/login", h.Auth.Login)
	})

	router.Get("/ws/categories/{categoryID}", h.WebSocket.ServeWs)

	router.Route("/categories", func(r chi.Router) {
		r.Get("/", h.Category.ListCategories)
		r.Get("/{categoryID}", h.Category.GetCategory)
		r.Get("/{categoryID}/players", h.Category.ListCategoryPlayers)
		r.Get("/{categoryID}/rounds", h.Round.ListRounds)
		r.Get("/{categoryID}/fixture", h.Fixture.GetFixture)
		r.Get("/{categoryID}/standings", h.Fixture.GetStandings)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, adminOnly)
			r.Post("/", h.Category.CreateCategory)
			r.Put("/{categoryID}", h.Category.UpdateCategory)
			r.Delete("/{categoryID}", h.Category.DeleteCategory)
			r.Post("/{categoryID}/move-up", h.Category.MoveCategoryUp)
			r.Post("/{categoryID}/move-down", h.Category.MoveCategoryDown)
			r.Post("/{categoryID}/fixture", h.Fixture.GenerateFixture)
			r.Delete("/{categoryID}/fixture", h.Fixture.DeleteFixture)
		})
	})

	router.Route("/players", func(r chi.Router) {
		r.Use(authenticate, adminOnly)
		r.Post("/", h.Player.CreatePlayer)
		r.Get("/{playerID}", h.Player.GetPlayer)
		r.Put("/{playerID}", h.Player.UpdatePlayer)
		r.Post("/{playerID}/deactivate", h.Player.DeactivatePlayer)
		r.Post("/{playerID}/reactivate", h.Player.ReactivatePlayer)
		r.Post("/{playerID}/credentials", h.Player.CreatePlayerCredentials)
	})

	router.Route("/rounds", func(r chi.Router) {
		r.Get("/{roundID}", h.Round.GetRound)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, adminOnly)
			r.Post("/{roundID}/activate", h.Round.ActivateRound)
			r.Post("/{roundID}/close", h.Round.CloseRound)
			r.Post("/{roundID}/reopen", h.Round.ReopenRound)
			r.Patch("/{roundID}/dates", h.Round.UpdateRoundDates)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", h.Match.GetMatch)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, adminOnly)
			r.Put("/{matchID}/result", h.Match.RecordResult)
			r.Post("/{matchID}/unreported", h.Match.MarkUnreported)
		})
	})

	router.Route("/me", func(r chi.Router) {
		r.Use(authenticate, middleware.Authorize(models.RolePlayer))
		r.Get("/matches", h.Match.ListMyMatches)
		r.Post("/matches/{matchID}/result", h.Match.SubmitMyResult)
	})

	router.Route("/cron", func(r chi.Router) {
		r.Use(middleware.CronSecret(opts.CronSecret))
		r.Get("/close-rounds", h.Cron.CloseElapsedRounds)
		r.Post("/close-rounds", h.Cron.CloseElapsedRounds)
	})
}
