package graph

import (
	"go.uber.org/fx"
)

// Module provides graph read and admin functionality
var Module = fx.Module("graph",
	fx.Provide(
		NewService,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)
