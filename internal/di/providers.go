package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/m3dev4/essenz/internal/app"
	"github.com/m3dev4/essenz/internal/config"
	"github.com/m3dev4/essenz/internal/database"
	"github.com/m3dev4/essenz/internal/health"
	"github.com/m3dev4/essenz/internal/http/handler"
	"github.com/m3dev4/essenz/internal/http/middleware"
	"github.com/m3dev4/essenz/internal/http/router"
	"github.com/m3dev4/essenz/internal/observability"
	"github.com/m3dev4/essenz/internal/repository"
	"github.com/m3dev4/essenz/internal/security"
	"github.com/m3dev4/essenz/internal/service"
)

// Telemetry aggregates the exporter lifecycles so the app can flush
// them in one call.
type Telemetry struct {
	shutdowns []func(context.Context) error
}

func (t *Telemetry) Shutdown(ctx context.Context) error {
	var firstErr error
	for _, fn := range t.shutdowns {
		if err := fn(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ProvideTelemetry wires log export, tracing and metrics. Log export
// runs first so the slog bridge has a provider to hand records to.
func ProvideTelemetry(ctx context.Context, cfg *config.Config) (*Telemetry, error) {
	t := &Telemetry{}

	logShutdown, err := observability.InitLogExport(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init log export: %w", err)
	}
	t.shutdowns = append(t.shutdowns, logShutdown)

	traceShutdown, err := observability.InitTracing(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	t.shutdowns = append(t.shutdowns, traceShutdown)

	metricShutdown, err := observability.InitMetrics(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	t.shutdowns = append(t.shutdowns, metricShutdown)

	if cfg.OTELMetricsEnabled {
		if err := observability.RegisterRuntimeMetrics(); err != nil {
			return nil, fmt.Errorf("register runtime metrics: %w", err)
		}
	}
	return t, nil
}

func ProvideLogger(cfg *config.Config) *slog.Logger {
	log := observability.NewLogger(cfg)
	slog.SetDefault(log)
	return log
}

func ProvideDB(ctx context.Context, cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, log); err != nil {
		return nil, err
	}
	if err := database.BootstrapAdmin(ctx, db, cfg.BootstrapAdminEmail, log); err != nil {
		return nil, err
	}
	return db, nil
}

func ProvideRedis(cfg *config.Config) redis.UniversalClient {
	if !cfg.RateLimitRedisEnabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func ProvideNotifier(cfg *config.Config, log *slog.Logger) service.VerificationNotifier {
	if cfg.MailEnabled() {
		return service.NewResendNotifier(cfg.ResendAPIKey, cfg.MailFrom)
	}
	log.Warn("no mail key configured, verification codes will be logged")
	return service.NewDevNotifier(log)
}

func ProvideStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (service.ObjectStorage, error) {
	return service.NewMinioStorage(ctx, service.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	}, log)
}

func ProvideHealthChecker(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient) *health.Checker {
	probes := []health.Probe{health.NewDatabaseProbe(db)}
	if redisClient != nil {
		probes = append(probes, health.NewRedisProbe(redisClient))
	}
	return health.NewChecker(cfg.ReadinessProbeTimeout, cfg.ServerStartGracePeriod, probes...)
}

func ProvideRouter(
	cfg *config.Config,
	log *slog.Logger,
	authSvc *service.AuthService,
	userSvc *service.UserService,
	sessionSvc *service.SessionService,
	onboardingSvc *service.OnboardingService,
	categorySvc *service.CategoryService,
	cookies *security.CookieManager,
	checker *health.Checker,
	redisClient redis.UniversalClient,
) http.Handler {
	authLimiter, apiLimiter := provideLimiters(cfg, log, redisClient)

	return router.New(router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc, cookies),
		User:       handler.NewUserHandler(userSvc, sessionSvc, cookies),
		Admin:      handler.NewAdminHandler(userSvc),
		Onboarding: handler.NewOnboardingHandler(onboardingSvc),
		Category:   handler.NewCategoryHandler(categorySvc),
		Health:     handler.NewHealthHandler(checker),
	}, router.Middleware{
		Auth:        middleware.NewAuthenticator(authSvc),
		AuthLimiter: authLimiter,
		APILimiter:  apiLimiter,
		CORSOrigins: cfg.CORSAllowedOrigins,
		Log:         log,
	})
}

// provideLimiters picks the shared Redis limiter when configured. The
// tighter auth limiter fails closed: a broken limiter must not turn
// into an unthrottled credential-stuffing window.
func provideLimiters(cfg *config.Config, log *slog.Logger, redisClient redis.UniversalClient) (func(http.Handler) http.Handler, func(http.Handler) http.Handler) {
	if redisClient != nil {
		auth := middleware.NewRedisRateLimiter(redisClient, cfg.RateLimitRedisPrefix+":auth",
			cfg.AuthRateLimitPerMin, time.Minute, middleware.FailClosed, log)
		api := middleware.NewRedisRateLimiter(redisClient, cfg.RateLimitRedisPrefix+":api",
			cfg.APIRateLimitPerMin, time.Minute, middleware.FailOpen, log)
		return auth.Middleware, api.Middleware
	}
	auth := middleware.NewLocalRateLimiter(cfg.AuthRateLimitPerMin, time.Minute)
	api := middleware.NewLocalRateLimiter(cfg.APIRateLimitPerMin, time.Minute)
	return auth.Middleware, api.Middleware
}

func ProvideApp(cfg *config.Config, log *slog.Logger, db *gorm.DB, server *http.Server, telemetry *Telemetry) *app.App {
	return app.New(cfg, log, db, server, telemetry.Shutdown)
}

func ProvideServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func ProvideUserRepository(db *gorm.DB) repository.UserRepository {
	return repository.NewGormUserRepository(db)
}

func ProvideSessionRepository(db *gorm.DB) repository.SessionRepository {
	return repository.NewGormSessionRepository(db)
}

func ProvideCategoryRepository(db *gorm.DB) repository.CategoryRepository {
	return repository.NewGormCategoryRepository(db)
}

func ProvidePasswordHasher(cfg *config.Config) *security.PasswordHasher {
	return security.NewPasswordHasher(cfg.BcryptCost)
}

func ProvideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
}

func ProvideCookieManager(cfg *config.Config) *security.CookieManager {
	return security.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure, cfg.CookieSameSite, cfg.JWTTTL)
}

func ProvideSessionService(sessions repository.SessionRepository, cfg *config.Config, metrics *observability.AuthMetrics, log *slog.Logger) *service.SessionService {
	return service.NewSessionService(sessions, cfg.SessionTTL, metrics, log)
}

func ProvideAuthService(
	users repository.UserRepository,
	sessions *service.SessionService,
	hasher *security.PasswordHasher,
	jwt *security.JWTManager,
	notifier service.VerificationNotifier,
	metrics *observability.AuthMetrics,
	cfg *config.Config,
	log *slog.Logger,
) *service.AuthService {
	return service.NewAuthService(users, sessions, hasher, jwt, notifier, metrics, cfg.VerificationCodeTTL, log)
}
