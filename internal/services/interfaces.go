package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/gatherly/gatherly/internal/models"
)

// UserServiceInterface defines the contract for user operations.
type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	CompleteOnboarding(ctx context.Context, userID uuid.UUID, params models.OnboardingParams) (*models.User, error)
}

// AuthServiceInterface defines the contract for authentication operations.
type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	CreateSession(ctx context.Context, userID uuid.UUID) (token string, err error)
	ValidateSession(ctx context.Context, token string) (*models.User, error)
	DeleteSession(ctx context.Context, token string) error
}

// FriendServiceInterface defines the contract for the friend request
// workflow and the friendship ledger.
type FriendServiceInterface interface {
	SendRequest(ctx context.Context, senderID, recipientID uuid.UUID) (*models.FriendRequest, error)
	AcceptRequest(ctx context.Context, actorID, requestID uuid.UUID) (*models.FriendRequest, error)
	DeclineRequest(ctx context.Context, actorID, requestID uuid.UUID) error
	CancelRequest(ctx context.Context, actorID, requestID uuid.UUID) error
	Unfriend(ctx context.Context, actorID, otherID uuid.UUID) error
	ListFriends(ctx context.Context, userID uuid.UUID) ([]models.UserProfile, error)
	ListRecommended(ctx context.Context, userID uuid.UUID) ([]models.UserProfile, error)
	ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithProfile, error)
	ListAcceptedRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithProfile, error)
	ListOutgoingRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithProfile, error)
}

// GroupServiceInterface defines the contract for group membership operations.
type GroupServiceInterface interface {
	Create(ctx context.Context, creator *models.User, name, image string) (*models.Group, error)
	Join(ctx context.Context, actor *models.User, code string) (*models.Group, error)
	Leave(ctx context.Context, actorID, groupID uuid.UUID) error
	GetDetails(ctx context.Context, groupID uuid.UUID) (*models.GroupDetails, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]models.Group, error)
}

// ChatServiceInterface defines the contract for keeping the hosted chat
// provider in sync with application state.
type ChatServiceInterface interface {
	SyncUser(ctx context.Context, user *models.User) error
	SyncProfiles(ctx context.Context, actor *models.User, profiles []models.UserProfile) (int, error)
	IssueToken(ctx context.Context, user *models.User) (string, error)
	EnsureGroupChannel(ctx context.Context, group *models.Group, creator *models.User) error
	AddGroupMember(ctx context.Context, groupID uuid.UUID, user *models.User) error
	RemoveGroupMember(ctx context.Context, groupID, userID uuid.UUID) error
	EnsureDirectChannel(ctx context.Context, participantIDs []uuid.UUID) (string, error)
}
