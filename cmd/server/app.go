package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/kfz-werkstatt/httpx"
	"github.com/diewo77/kfz-werkstatt/internal/config"
	"github.com/diewo77/kfz-werkstatt/internal/handlers"
	"github.com/diewo77/kfz-werkstatt/internal/logging"
	"github.com/diewo77/kfz-werkstatt/internal/render"
	"github.com/diewo77/kfz-werkstatt/internal/settings"
	"github.com/diewo77/kfz-werkstatt/internal/store"
)

// App is the main application handler that sets up all routes.
type App struct {
	router   chi.Router
	store    *store.Store
	settings *settings.Registry
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, cfg *config.Config, log *zap.Logger) (*App, error) {
	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		return nil, fmt.Errorf("load document templates: %w", err)
	}
	st := store.New(db)
	reg := settings.New(st, log)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(log))
	r.Use(handlers.Recoverer)
	r.Use(middleware.Timeout(config.Timeout(cfg.Server.RequestTimeout)))
	r.Use(handlers.CORS(cfg.Server.CORSOrigin))

	handlers.NewRouterConfig(st, reg, renderer).Mount(r)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "route not found", nil)
	})

	return &App{router: r, store: st, settings: reg}, nil
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}
