package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gatherly/gatherly/internal/models"
)

func userRow(id uuid.UUID, email, name string, onboarded bool) Row {
	now := time.Now()
	return rowFromValues(id, email, "hash", name, "", "", onboarded, now, now)
}

func TestUserService_Create_EmailExists(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			if !strings.Contains(sql, "SELECT EXISTS") {
				t.Fatalf("unexpected sql: %q", sql)
			}
			return rowFromValues(true)
		},
	}
	svc := NewUserService(db)
	_, err := svc.Create(context.Background(), models.CreateUserParams{Email: "a@b.c"})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestUserService_Create_Success(t *testing.T) {
	userID := uuid.New()
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			switch {
			case strings.Contains(sql, "SELECT EXISTS"):
				return rowFromValues(false)
			case strings.Contains(sql, "INSERT INTO users"):
				return userRow(userID, args[0].(string), args[2].(string), false)
			default:
				t.Fatalf("unexpected sql: %q", sql)
				return nil
			}
		},
	}

	svc := NewUserService(db)
	user, err := svc.Create(context.Background(), models.CreateUserParams{
		Email:        "ada@example.com",
		PasswordHash: "hash",
		FullName:     "Ada",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != userID || user.Email != "ada@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.IsOnboarded {
		t.Fatal("new users start un-onboarded")
	}
}

func TestUserService_Create_InsertRace(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			if strings.Contains(sql, "SELECT EXISTS") {
				return rowFromValues(false)
			}
			return fakeRow{scanFunc: func(dest ...any) error {
				return uniqueViolation()
			}}
		},
	}
	svc := NewUserService(db)
	_, err := svc.Create(context.Background(), models.CreateUserParams{Email: "a@b.c"})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues()
		},
	}
	svc := NewUserService(db)
	if _, err := svc.GetByID(context.Background(), uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_GetByEmail_Success(t *testing.T) {
	userID := uuid.New()
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			if !strings.Contains(sql, "WHERE email = $1") {
				t.Fatalf("unexpected sql: %q", sql)
			}
			return userRow(userID, "ada@example.com", "Ada", true)
		},
	}
	svc := NewUserService(db)
	user, err := svc.GetByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != userID || !user.IsOnboarded {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestUserService_CompleteOnboarding(t *testing.T) {
	userID := uuid.New()
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			if !strings.Contains(sql, "is_onboarded = TRUE") {
				t.Fatalf("unexpected sql: %q", sql)
			}
			if args[0] != userID || args[1] != "Ada L" {
				t.Fatalf("unexpected args: %v", args)
			}
			return userRow(userID, "ada@example.com", "Ada L", true)
		},
	}
	svc := NewUserService(db)
	user, err := svc.CompleteOnboarding(context.Background(), userID, models.OnboardingParams{
		FullName: "Ada L",
		Bio:      "likes boats",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !user.IsOnboarded || user.FullName != "Ada L" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestUserService_CompleteOnboarding_NotFound(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues()
		},
	}
	svc := NewUserService(db)
	if _, err := svc.CompleteOnboarding(context.Background(), uuid.New(), models.OnboardingParams{}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
