package router

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/m3dev4/essenz/internal/domain"
	"github.com/m3dev4/essenz/internal/health"
	"github.com/m3dev4/essenz/internal/http/handler"
	"github.com/m3dev4/essenz/internal/http/middleware"
	"github.com/m3dev4/essenz/internal/repository"
	"github.com/m3dev4/essenz/internal/security"
	"github.com/m3dev4/essenz/internal/service"
)

type memNotifier struct {
	codes map[string]string
}

func (n *memNotifier) SendVerificationCode(_ context.Context, to, _, code string) error {
	n.codes[to] = code
	return nil
}

type memStorage struct{}

func (memStorage) UploadAvatar(_ context.Context, userID string, body io.Reader, _ int64) (string, error) {
	io.Copy(io.Discard, body)
	return "http://storage.local/avatars/" + userID, nil
}

type testEnv struct {
	server   *httptest.Server
	notifier *memNotifier
	db       *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Session{}, &domain.Category{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := slog.New(slog.DiscardHandler)
	userRepo := repository.NewGormUserRepository(db)
	sessionRepo := repository.NewGormSessionRepository(db)
	categoryRepo := repository.NewGormCategoryRepository(db)

	hasher := security.NewPasswordHasher(10)
	jwt := security.NewJWTManager("0123456789abcdef0123456789abcdef", "essenz", 24*time.Hour)
	cookies := security.NewCookieManager("", false, "lax", 24*time.Hour)
	notifier := &memNotifier{codes: map[string]string{}}

	sessionSvc := service.NewSessionService(sessionRepo, 24*time.Hour, nil, log)
	authSvc := service.NewAuthService(userRepo, sessionSvc, hasher, jwt, notifier, nil, time.Hour, log)
	userSvc := service.NewUserService(userRepo, sessionSvc, hasher, log)
	onboardingSvc := service.NewOnboardingService(userRepo, memStorage{}, log)
	categorySvc := service.NewCategoryService(categoryRepo)

	checker := health.NewChecker(time.Second, 0, health.NewDatabaseProbe(db))

	passthrough := func(next http.Handler) http.Handler { return next }
	h := New(Handlers{
		Auth:       handler.NewAuthHandler(authSvc, cookies),
		User:       handler.NewUserHandler(userSvc, sessionSvc, cookies),
		Admin:      handler.NewAdminHandler(userSvc),
		Onboarding: handler.NewOnboardingHandler(onboardingSvc),
		Category:   handler.NewCategoryHandler(categorySvc),
		Health:     handler.NewHealthHandler(checker),
	}, Middleware{
		Auth:        middleware.NewAuthenticator(authSvc),
		AuthLimiter: passthrough,
		APILimiter:  passthrough,
		CORSOrigins: []string{"http://localhost:3000"},
		Log:         log,
	})

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return &testEnv{server: server, notifier: notifier, db: db}
}
