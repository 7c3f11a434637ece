package health

import (
	"go.uber.org/fx"
)

var Module = fx.Module("health",
	fx.Provide(
		fx.Annotate(NewHandler, fx.ParamTags(`group:"health_checks"`)),
	),
	fx.Invoke(RegisterRoutes),
)
