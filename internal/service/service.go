package service

import (
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mounirchebbi/beach-safety-app/internal/alerts"
	"github.com/mounirchebbi/beach-safety-app/internal/config"
	"github.com/mounirchebbi/beach-safety-app/internal/geo"
	"github.com/mounirchebbi/beach-safety-app/internal/hub"
	"github.com/mounirchebbi/beach-safety-app/internal/ingest"
	"github.com/mounirchebbi/beach-safety-app/internal/metrics"
	"github.com/mounirchebbi/beach-safety-app/internal/repository"
	"github.com/mounirchebbi/beach-safety-app/internal/safety"
	"github.com/mounirchebbi/beach-safety-app/internal/weather"
)

// Services wires every component of the engine behind one handle.
type Services struct {
	Repos     *repository.Repos
	Resolver  *geo.Resolver
	Weather   *weather.Service
	Engine    *safety.Engine
	Alerts    *alerts.Manager
	Hub       *hub.Hub
	Scheduler *ingest.Scheduler
	Metrics   *metrics.Metrics
	Registry  *prometheus.Registry

	archiver *hub.KafkaArchiver
}

func New(db *sqlx.DB) *Services {
	repos := repository.New(db)
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	var sink hub.Sink
	var archiver *hub.KafkaArchiver
	if brokers := config.KafkaBrokers(); len(brokers) > 0 {
		archiver = hub.NewKafkaArchiver(brokers, config.KafkaEventsTopic())
		sink = archiver
	}
	h := hub.New(sink, m)

	clock := clockwork.NewRealClock()
	resolver := geo.NewResolver(repos)
	client := weather.NewClient(config.OpenWeatherBaseURL(), config.OpenWeatherAPIKey(), config.WeatherTimeout())
	wsvc := weather.NewService(client, repos, repos)
	engine := safety.NewEngine(repos, h, clock, m, config.SystemPrincipalID(), config.FlagExpiry())
	manager := alerts.NewManager(repos, resolver, h)
	scheduler := ingest.NewScheduler(repos, wsvc, engine, h, clock, m, config.UpdateInterval())

	return &Services{
		Repos:     repos,
		Resolver:  resolver,
		Weather:   wsvc,
		Engine:    engine,
		Alerts:    manager,
		Hub:       h,
		Scheduler: scheduler,
		Metrics:   m,
		Registry:  registry,
		archiver:  archiver,
	}
}

// Close releases background resources. Safe to call once at shutdown.
func (s *Services) Close() {
	s.Hub.Close()
	if s.archiver != nil {
		_ = s.archiver.Close()
	}
}
