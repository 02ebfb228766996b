package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m3dev4/essenz/internal/repository"
	"github.com/m3dev4/essenz/internal/security"
)

type authFixture struct {
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	notifier *recordingNotifier
	auth     *AuthService
	sessSvc  *SessionService
}

func newAuthFixture(t *testing.T, codeTTL time.Duration) *authFixture {
	t.Helper()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	notifier := &recordingNotifier{}
	log := discardLogger()

	sessSvc := NewSessionService(sessions, 24*time.Hour, nil, log)
	hasher := security.NewPasswordHasher(10)
	jwt := security.NewJWTManager("0123456789abcdef0123456789abcdef", "essenz", time.Hour)
	auth := NewAuthService(users, sessSvc, hasher, jwt, notifier, nil, codeTTL, log)

	return &authFixture{users: users, sessions: sessions, notifier: notifier, auth: auth, sessSvc: sessSvc}
}

func TestAuthService_Register(t *testing.T) {
	fx := newAuthFixture(t, time.Hour)
	ctx := context.Background()

	user, err := fx.auth.Register(ctx, RegisterInput{
		Email:    "  Alice@Example.COM ",
		Username: "alice",
		Password: "s3cret-password",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.IsVerified {
		t.Fatal("new account must start unverified")
	}
	if user.VerificationToken == nil || len(*user.VerificationToken) != 6 {
		t.Fatalf("expected 6-digit verification code, got %v", user.VerificationToken)
	}
	if user.PasswordHash == "s3cret-password" {
		t.Fatal("password stored in plaintext")
	}
	if fx.notifier.lastCode() != *user.VerificationToken {
		t.Fatal("emailed code does not match stored code")
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	fx := newAuthFixture(t, time.Hour)
	ctx := context.Background()

	if _, err := fx.auth.Register(ctx, RegisterInput{Email: "bob@example.com", Username: "bob", Password: "pw123456"}); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	_, err := fx.auth.Register(ctx, RegisterInput{Email: "BOB@example.com", Username: "bob2", Password: "pw123456"})
	if !errors.Is(err, repository.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken for case-variant email, got %v", err)
	}
}

func TestAuthService_Register_MailFailureFailsCall(t *testing.T) {
	fx := newAuthFixture(t, time.Hour)
	dispatchErr := errors.New("smtp down")
	fx.notifier.failWith = dispatchErr
	ctx := context.Background()

	_, err := fx.auth.Register(ctx, RegisterInput{Email: "carol@example.com", Username: "carol", Password: "pw123456"})
	if !errors.Is(err, dispatchErr) {
		t.Fatalf("expected the dispatch error to surface, got %v", err)
	}

	// The row is not rolled back, so the address stays claimed.
	if _, err := fx.users.FindByEmail(ctx, "carol@example.com"); err != nil {
		t.Fatalf("account missing after mail failure: %v", err)
	}
	_, err = fx.auth.Register(ctx, RegisterInput{Email: "carol@example.com", Username: "carol2", Password: "pw123456"})
	if !errors.Is(err, repository.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken on re-register, got %v", err)
	}
}

func TestAuthService_VerifyEmail(t *testing.T) {
	fx := newAuthFixture(t, time.Hour)
	ctx := context.Background()

	user, err := fx.auth.Register(ctx, RegisterInput{Email: "dave@example.com", Username: "dave", Password: "pw123456"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	code := *user.VerificationToken

	verified, session, err := fx.auth.VerifyEmail(ctx, VerifyEmailInput{Email: "DAVE@example.com", Code: code, IP: "10.0.0.1", UserAgent: "curl/8.0"})
	if err != nil {
		t.Fatalf("VerifyEmail returned error: %v", err)
	}
	if !verified.IsVerified {
		t.Fatal("account not marked verified")
	}
	if verified.VerificationToken != nil {
		t.Fatal("verification code not cleared")
	}
	if session == nil || session.UserID != verified.ID {
		t.Fatalf("expected a session for %s, got %+v", verified.ID, session)
	}
	if got, err := fx.sessSvc.Validate(ctx, session.ID); err != nil || got.IP != "10.0.0.1" {
		t.Fatalf("first session not resolvable: %v %+v", err, got)
	}

	// A replayed verification answers like a code mismatch; the caller
	// cannot tell a verified account from a wrong code.
	if _, _, err := fx.auth.VerifyEmail(ctx, VerifyEmailInput{Email: "dave@example.com", Code: code}); !errors.Is(err, ErrInvalidVerificationCode) {
		t.Fatalf("expected ErrInvalidVerificationCode on replay, got %v", err)
	}
}

func TestAuthService_VerifyEmail_WrongCode(t *testing.T) {
	fx := newAuthFixture(t, time.Hour)
	ctx := context.Background()

	if _, err := fx.auth.Register(ctx, RegisterInput{Email: "erin@example.com", Username: "erin", Password: "pw123456"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, _, err := fx.auth.VerifyEmail(ctx, VerifyEmailInput{Email: "erin@example.com", Code: "000000"}); !errors.Is(err, ErrInvalidVerificationCode) {
		t.Fatalf("expected ErrInvalidVerificationCode, got %v", err)
	}
	if _, _, err := fx.auth.VerifyEmail(ctx, VerifyEmailInput{Email: "ghost@example.com", Code: "123456"}); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_VerifyEmail_Expired(t *testing.T) {
	fx := newAuthFixture(t, -time.Minute)
	ctx := context.Background()

	user, err := fx.auth.Register(ctx, RegisterInput{Email: "frank@example.com", Username: "frank", Password: "pw123456"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	_, _, err = fx.auth.VerifyEmail(ctx, VerifyEmailInput{Email: "frank@example.com", Code: *user.VerificationToken})
	if !errors.Is(err, ErrVerificationExpired) {
		t.Fatalf("expected ErrVerificationExpired, got %v", err)
	}
}

func TestAuthService_LoginLogout(t *testing.T) {
	fx := newAuthFixture(t, time.Hour)
	ctx := context.Background()

	if _, err := fx.auth.Register(ctx, RegisterInput{Email: "gina@example.com", Username: "gina", Password: "pw123456"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	result, err := fx.auth.Login(ctx, LoginInput{
		Email:     "Gina@Example.com",
		Password:  "pw123456",
		IP:        "203.0.113.5",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected signed token")
	}
	if result.Session.DeviceType != "desktop" || result.Session.Browser != "chrome" {
		t.Fatalf("device metadata not captured: %+v", result.Session)
	}
	if !result.Session.IsOnline {
		t.Fatal("fresh session must be online")
	}

	authed, err := fx.auth.Authenticate(ctx, result.Token)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if authed.ID != result.User.ID {
		t.Fatal("token resolves to wrong account")
	}

	if err := fx.auth.Logout(ctx, result.Session.ID); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if err := fx.auth.Logout(ctx, result.Session.ID); !errors.Is(err, repository.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on replayed logout, got %v", err)
	}

	// Logging in again after logout issues a brand new session.
	again, err := fx.auth.Login(ctx, LoginInput{Email: "gina@example.com", Password: "pw123456"})
	if err != nil {
		t.Fatalf("second Login returned error: %v", err)
	}
	if again.Session.ID == result.Session.ID {
		t.Fatal("session id reused across logins")
	}
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	fx := newAuthFixture(t, time.Hour)
	ctx := context.Background()

	if _, err := fx.auth.Register(ctx, RegisterInput{Email: "hank@example.com", Username: "hank", Password: "pw123456"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if _, err := fx.auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "pw123456"}); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := fx.auth.Login(ctx, LoginInput{Email: "hank@example.com", Password: "wrong-password"}); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestAuthService_MultipleDeviceSessions(t *testing.T) {
	fx := newAuthFixture(t, time.Hour)
	ctx := context.Background()

	user, err := fx.auth.Register(ctx, RegisterInput{Email: "iris@example.com", Username: "iris", Password: "pw123456"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	agents := []string{
		"Mozilla/5.0 (Windows NT 10.0) Chrome/120.0",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0) Mobile Safari/604.1",
	}
	for _, ua := range agents {
		if _, err := fx.auth.Login(ctx, LoginInput{Email: "iris@example.com", Password: "pw123456", UserAgent: ua}); err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
	}

	sessions, err := fx.sessSvc.List(ctx, user.ID)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 concurrent sessions, got %d", len(sessions))
	}
}
