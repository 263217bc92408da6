package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	ProfilePic   string    `json:"profile_pic"`
	Bio          string    `json:"bio"`
	IsOnboarded  bool      `json:"is_onboarded"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateUserParams struct {
	Email        string
	PasswordHash string
	FullName     string
}

type OnboardingParams struct {
	FullName   string
	Bio        string
	ProfilePic string
}

// UserProfile is the subset of user fields exposed when resolving
// friends, request senders, and group members.
type UserProfile struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"full_name"`
	ProfilePic string    `json:"profile_pic"`
	Bio        string    `json:"bio"`
}
