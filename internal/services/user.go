package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gatherly/gatherly/internal/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

const userColumns = "id, email, password_hash, full_name, profile_pic, bio, is_onboarded, created_at, updated_at"

type UserService struct {
	db DB
}

func NewUserService(db DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	var exists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", params.Email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking email existence: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	user := &models.User{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, full_name)
		 VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		params.Email, params.PasswordHash, params.FullName,
	).Scan(scanUserDest(user)...)
	if isUniqueViolation(err) {
		return nil, ErrEmailAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1",
		id,
	).Scan(scanUserDest(user)...)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by id: %w", err)
	}

	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1",
		email,
	).Scan(scanUserDest(user)...)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}

	return user, nil
}

// CompleteOnboarding fills in the profile fields and marks the user as
// onboarded, which makes them visible in friend recommendations.
func (s *UserService) CompleteOnboarding(ctx context.Context, userID uuid.UUID, params models.OnboardingParams) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		`UPDATE users
		 SET full_name = $2, bio = $3, profile_pic = $4, is_onboarded = TRUE, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		userID, params.FullName, params.Bio, params.ProfilePic,
	).Scan(scanUserDest(user)...)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("completing onboarding: %w", err)
	}

	return user, nil
}

func scanUserDest(u *models.User) []any {
	return []any{&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.ProfilePic, &u.Bio, &u.IsOnboarded, &u.CreatedAt, &u.UpdatedAt}
}
