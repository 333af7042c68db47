package fx

import (
	"esports-scoreboard/internal/api"
	"esports-scoreboard/internal/config"
	"esports-scoreboard/internal/database"
	"esports-scoreboard/internal/logger"
	"esports-scoreboard/internal/notify"
	"esports-scoreboard/internal/repository"
	"esports-scoreboard/internal/server"
	"esports-scoreboard/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ProvideHub builds the event hub. The archive always receives events; the
// webhook sink is attached only when targets are configured.
func ProvideHub(cfg *config.Config, webhook *api.WebhookClient, events *repository.EventRepository, logger zerolog.Logger) *notify.Hub {
	sinks := []notify.Sink{events}
	if webhook.Enabled() {
		sinks = append(sinks, webhook)
	}
	return notify.NewHub(cfg.SubscriberBuffer, sinks, logger)
}

func ProvidePublisher(hub *notify.Hub) service.Publisher {
	return hub
}

var Module = fx.Options(
	logger.Module,
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewEventRepository),
	fx.Provide(repository.NewExportRepository),
	// outbound
	fx.Provide(api.NewWebhookClient),
	fx.Provide(ProvideHub),
	fx.Provide(ProvidePublisher),
	// svc
	fx.Provide(service.NewTournamentService),
	fx.Provide(service.NewExportService),
	// server
	fx.Provide(server.NewScoreboardServer),
	fx.Provide(server.NewHTTPServer),
)
