package di

import (
	"github.com/google/wire"

	"github.com/m3dev4/essenz/internal/config"
	"github.com/m3dev4/essenz/internal/observability"
	"github.com/m3dev4/essenz/internal/service"
)

// appSet is the provider graph behind InitializeApp.
var appSet = wire.NewSet(
	config.Load,
	ProvideTelemetry,
	ProvideLogger,
	ProvideDB,
	ProvideRedis,
	ProvideUserRepository,
	ProvideSessionRepository,
	ProvideCategoryRepository,
	ProvidePasswordHasher,
	ProvideJWTManager,
	ProvideCookieManager,
	ProvideNotifier,
	ProvideStorage,
	observability.NewAuthMetrics,
	ProvideSessionService,
	ProvideAuthService,
	service.NewUserService,
	service.NewOnboardingService,
	service.NewCategoryService,
	ProvideHealthChecker,
	ProvideRouter,
	ProvideServer,
	ProvideApp,
)
