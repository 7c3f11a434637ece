package users

import (
	"go.uber.org/fx"
)

// Module provides the users domain
var Module = fx.Module("users",
	fx.Provide(
		fx.Annotate(NewRepository, fx.As(new(Store))),
		NewService,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)
