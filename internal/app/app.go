// Package app assembles the session, API client and controllers from configuration.
package app

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/voltmarket/internal/api"
	"github.com/tair/voltmarket/internal/config"
	"github.com/tair/voltmarket/internal/session"
	"github.com/tair/voltmarket/internal/viewmodel"
)

// App holds the process-wide singletons. Controllers are created per screen.
type App struct {
	Config   *config.Config
	Sessions *session.Manager
	Client   *api.Client
	Registry *prometheus.Registry
	Timing   viewmodel.Timing
}

// NewApp bundles the singletons
func NewApp(cfg *config.Config, sessions *session.Manager, client *api.Client, reg *prometheus.Registry, timing viewmodel.Timing) *App {
	return &App{
		Config:   cfg,
		Sessions: sessions,
		Client:   client,
		Registry: reg,
		Timing:   timing,
	}
}

// New builds the App; the cleanup releases the session backend
func New(cfg *config.Config) (*App, func(), error) {
	return InitializeApp(cfg)
}

// Login creates the login screen controller
func (a *App) Login() *viewmodel.LoginController {
	return viewmodel.NewLoginController(a.Client, a.Sessions)
}

// Register creates the registration screen controller
func (a *App) Register() *viewmodel.RegisterController {
	return viewmodel.NewRegisterController(a.Client, a.Sessions)
}

// Catalog creates the catalog screen controller
func (a *App) Catalog() *viewmodel.CatalogController {
	return viewmodel.NewCatalogController(a.Client, a.Sessions, a.Timing)
}

// Favorites creates the favorites screen controller
func (a *App) Favorites() *viewmodel.FavoritesController {
	return viewmodel.NewFavoritesController(a.Client, a.Sessions, a.Timing)
}

// MyProducts creates the "my products" screen controller
func (a *App) MyProducts() *viewmodel.MyProductsController {
	return viewmodel.NewMyProductsController(a.Client, a.Sessions, a.Timing)
}

// Profile creates the profile screen controller
func (a *App) Profile() *viewmodel.ProfileController {
	return viewmodel.NewProfileController(a.Client, a.Sessions)
}
