package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/m3dev4/essenz/internal/domain"
)

func newUser(email, username string) *domain.User {
	return &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: "$2a$12$notarealhash",
		Role:         domain.RoleUser,
	}
}

func TestGormUserRepository_CreateUnique(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.CreateUnique(ctx, newUser("a@example.com", "alice")); err != nil {
		t.Fatalf("CreateUnique returned error: %v", err)
	}

	if err := repo.CreateUnique(ctx, newUser("a@example.com", "other")); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if err := repo.CreateUnique(ctx, newUser("other@example.com", "alice")); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 user after failed inserts, got %d", count)
	}
}

func TestGormUserRepository_FindBy(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	ctx := context.Background()

	user := newUser("b@example.com", "bob")
	if err := repo.CreateUnique(ctx, user); err != nil {
		t.Fatalf("CreateUnique returned error: %v", err)
	}

	byID, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if byID.Email != "b@example.com" {
		t.Fatalf("unexpected email %q", byID.Email)
	}

	byEmail, err := repo.FindByEmail(ctx, "b@example.com")
	if err != nil {
		t.Fatalf("FindByEmail returned error: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Fatalf("FindByEmail returned wrong user %q", byEmail.ID)
	}

	byUsername, err := repo.FindByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("FindByUsername returned error: %v", err)
	}
	if byUsername.ID != user.ID {
		t.Fatalf("FindByUsername returned wrong user %q", byUsername.ID)
	}

	if _, err := repo.FindByEmail(ctx, "missing@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGormUserRepository_UpdateFields(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	ctx := context.Background()

	user := newUser("c@example.com", "carol")
	if err := repo.CreateUnique(ctx, user); err != nil {
		t.Fatalf("CreateUnique returned error: %v", err)
	}

	err := repo.UpdateFields(ctx, user.ID, map[string]any{
		"first_name": "Carol",
		"bio":        "hello",
	})
	if err != nil {
		t.Fatalf("UpdateFields returned error: %v", err)
	}

	got, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if got.FirstName != "Carol" || got.Bio != "hello" {
		t.Fatalf("partial update not applied: %+v", got)
	}
	if got.Username != "carol" {
		t.Fatalf("untouched field changed: %q", got.Username)
	}

	err = repo.UpdateFields(ctx, "missing-id", map[string]any{"bio": "x"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGormUserRepository_DeleteCascade(t *testing.T) {
	db := newTestDB(t)
	users := NewGormUserRepository(db)
	sessions := NewGormSessionRepository(db)
	ctx := context.Background()

	user := newUser("d@example.com", "dave")
	if err := users.CreateUnique(ctx, user); err != nil {
		t.Fatalf("CreateUnique returned error: %v", err)
	}
	for i := 0; i < 2; i++ {
		s := &domain.Session{
			ID:           uuid.NewString(),
			UserID:       user.ID,
			ExpiresAt:    time.Now().Add(time.Hour),
			LastActiveAt: time.Now(),
		}
		if err := sessions.Create(ctx, s); err != nil {
			t.Fatalf("Create session returned error: %v", err)
		}
	}

	if err := users.DeleteCascade(ctx, user.ID); err != nil {
		t.Fatalf("DeleteCascade returned error: %v", err)
	}

	if _, err := users.FindByID(ctx, user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}
	left, err := sessions.ListByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUserID returned error: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("expected no sessions after cascade, got %d", len(left))
	}

	if err := users.DeleteCascade(ctx, user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on second delete, got %v", err)
	}
}

func TestGormUserRepository_List(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	ctx := context.Background()

	for _, u := range []*domain.User{
		newUser("e1@example.com", "erin1"),
		newUser("e2@example.com", "erin2"),
		newUser("e3@example.com", "erin3"),
	} {
		if err := repo.CreateUnique(ctx, u); err != nil {
			t.Fatalf("CreateUnique returned error: %v", err)
		}
	}

	page, err := repo.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 users, got %d", len(page))
	}

	rest, err := repo.List(ctx, 2, 2)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(rest) != 1 {
		t.Fatalf("expected 1 user on second page, got %d", len(rest))
	}
}
