// Package main provides the entry point for the WorldLoom API server, a
// chat service backed by a persistent knowledge graph.
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/worldloom/worldloom/domain/chat"
	"github.com/worldloom/worldloom/domain/graph"
	"github.com/worldloom/worldloom/domain/health"
	"github.com/worldloom/worldloom/domain/ingest"
	"github.com/worldloom/worldloom/internal/config"
	"github.com/worldloom/worldloom/internal/graphstore"
	"github.com/worldloom/worldloom/internal/server"
	"github.com/worldloom/worldloom/pkg/logger"
)

func main() {
	// Load .env files if present (for local development)
	// Note: Load() won't overwrite existing vars, Overload() will
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	fx.New(
		// Logging
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure modules
		logger.Module,
		config.Module,
		server.Module,
		graphstore.Module,

		// Domain modules
		health.Module,
		chat.Module,
		graph.Module,
		ingest.Module,
	).Run()
}
