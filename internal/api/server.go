// Package api assembles the HTTP surface: repositories, services,
// feature routers, and the middleware chain.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/example/streamflix/internal/accounts"
	"github.com/example/streamflix/internal/auth"
	"github.com/example/streamflix/internal/cache"
	"github.com/example/streamflix/internal/catalog"
	"github.com/example/streamflix/internal/config"
	"github.com/example/streamflix/internal/db"
	"github.com/example/streamflix/internal/events"
	"github.com/example/streamflix/internal/httputil"
	"github.com/example/streamflix/internal/profiles"
	"github.com/example/streamflix/internal/recommend"
	"github.com/example/streamflix/internal/watch"
)

type Server struct {
	cfg    *config.Config
	router chi.Router
	http   *http.Server

	hub *events.Hub

	accountsRepo *accounts.Repository
	profilesRepo *profiles.Repository
	catalogRepo  *catalog.Repository
	watchSvc     *watch.Service
}

func NewServer(cfg *config.Config, database *db.DB, jobQueue catalog.Jobs, hub *events.Hub) *Server {
	accountsRepo := accounts.NewRepository(database.DB)
	profilesRepo := profiles.NewRepository(database.DB)
	catalogRepo := catalog.NewRepository(database.DB)
	watchStore := watch.NewPostgresStore(database.DB)
	watchSvc := watch.NewService(watchStore, catalogRepo)

	tokens := auth.Tokens{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL}
	mw := auth.NewMiddleware(tokens, profilesRepo)

	var resultCache *cache.Cache
	if cfg.RedisAddr != "" {
		resultCache = cache.New(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	engine := recommend.NewEngine(watchSvc, profilesRepo, catalogRepo)

	authHandler := auth.NewHandler(cfg, accountsRepo, profilesRepo, tokens, mw)
	profilesHandler := profiles.NewHandler(profilesRepo, mw)
	catalogHandler := catalog.NewHandler(catalogRepo, jobQueue, hub, mw)
	watchHandler := watch.NewHandler(watchSvc)
	recommendHandler := recommend.NewHandler(engine, resultCache, cfg.RecommendCacheTTL)

	s := &Server{
		cfg:          cfg,
		hub:          hub,
		accountsRepo: accountsRepo,
		profilesRepo: profilesRepo,
		catalogRepo:  catalogRepo,
		watchSvc:     watchSvc,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.health(database))

	r.Mount("/api/auth", authHandler.Router())

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth)

		r.Mount("/api/profiles", profilesHandler.Router())
		r.Mount("/api/content", catalogHandler.Router())
		r.Get("/ws", hub.HandleWS)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireProfile)
			r.Mount("/api/watch", watchHandler.Router())
			r.Mount("/api/recommendations", recommendHandler.Router())
		})
	})

	s.router = r
	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) health(database *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			httputil.WriteError(w, http.StatusServiceUnavailable, httputil.CodeInternal, "database unreachable")
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) Router() chi.Router { return s.router }

func (s *Server) CatalogRepo() *catalog.Repository   { return s.catalogRepo }
func (s *Server) ProfilesRepo() *profiles.Repository { return s.profilesRepo }
func (s *Server) WatchService() *watch.Service       { return s.watchSvc }

func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
