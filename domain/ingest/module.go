package ingest

import (
	"go.uber.org/fx"
)

// Module provides document ingestion
var Module = fx.Module("ingest",
	fx.Provide(
		NewService,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)
