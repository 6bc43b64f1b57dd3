//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/tair/voltmarket/internal/api"
	"github.com/tair/voltmarket/internal/config"
	"github.com/tair/voltmarket/internal/session"
)

// Wire sets
var SessionSet = wire.NewSet(
	ProvideSessionStore,
	ProvideSessionManager,
	wire.Bind(new(api.CredentialProvider), new(*session.Manager)),
)

var ClientSet = wire.NewSet(
	ProvideRegistry,
	ProvideMetrics,
	ProvideAPIClient,
)

// InitializeApp wires the App from configuration
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		SessionSet,
		ClientSet,
		ProvideTiming,
		NewApp,
	)
	return nil, nil, nil
}
