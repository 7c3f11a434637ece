package session

import (
	"go.uber.org/fx"

	"github.com/jobber-dev/jobber/domain/users"
)

// Module provides login and session token issuance
var Module = fx.Module("session",
	fx.Provide(
		NewTokenManager,
		func(s *users.Service) UserLookup { return s },
		NewService,
		NewLoginLimiter,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes, RegisterLimiterLifecycle),
)
