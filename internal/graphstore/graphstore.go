// Package graphstore wires the external graph/thread store client into the
// application container.
package graphstore

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/worldloom/worldloom/domain/worldupdate"
	"github.com/worldloom/worldloom/internal/config"
	"github.com/worldloom/worldloom/pkg/logger"
	"github.com/worldloom/worldloom/pkg/zep"
)

var Module = fx.Module("graphstore",
	fx.Provide(
		NewZepClient,
		NewOntologyRegistrar,
	),
)

// NewZepClient creates the store client, or nil when no credential is
// configured. Consumers treat a nil client as "run model-only".
func NewZepClient(cfg *config.Config, log *slog.Logger) (*zep.Client, error) {
	if !cfg.Zep.IsEnabled() {
		log.Warn("ZEP_API_KEY not set, graph features disabled",
			logger.Scope("graphstore"),
		)
		return nil, nil
	}

	return zep.NewClient(zep.Config{
		APIKey:            cfg.Zep.APIKey,
		BaseURL:           cfg.Zep.BaseURL,
		Timeout:           cfg.Zep.Timeout,
		RequestsPerMinute: cfg.Zep.RequestsPerMinute,
	}, zep.WithLogger(log))
}

// NewOntologyRegistrar creates the process-wide ontology registration cache
// for the world ontology. Nil when the store is disabled.
func NewOntologyRegistrar(client *zep.Client, log *slog.Logger) *zep.OntologyRegistrar {
	if client == nil {
		return nil
	}
	return zep.NewOntologyRegistrar(client, worldupdate.WorldOntology(), log)
}
