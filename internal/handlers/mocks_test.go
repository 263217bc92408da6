package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/gatherly/gatherly/internal/models"
)

type mockUserService struct {
	CreateFunc             func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmailFunc         func(ctx context.Context, email string) (*models.User, error)
	CompleteOnboardingFunc func(ctx context.Context, userID uuid.UUID, params models.OnboardingParams) (*models.User, error)
}

func (m *mockUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockUserService) CompleteOnboarding(ctx context.Context, userID uuid.UUID, params models.OnboardingParams) (*models.User, error) {
	if m.CompleteOnboardingFunc != nil {
		return m.CompleteOnboardingFunc(ctx, userID, params)
	}
	return nil, nil
}

type mockAuthService struct {
	HashPasswordFunc    func(password string) (string, error)
	VerifyPasswordFunc  func(hash, password string) bool
	CreateSessionFunc   func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateSessionFunc func(ctx context.Context, token string) (*models.User, error)
	DeleteSessionFunc   func(ctx context.Context, token string) error
}

func (m *mockAuthService) HashPassword(password string) (string, error) {
	if m.HashPasswordFunc != nil {
		return m.HashPasswordFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockAuthService) VerifyPassword(hash, password string) bool {
	if m.VerifyPasswordFunc != nil {
		return m.VerifyPasswordFunc(hash, password)
	}
	return true
}

func (m *mockAuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, userID)
	}
	return "session-token", nil
}

func (m *mockAuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	if m.ValidateSessionFunc != nil {
		return m.ValidateSessionFunc(ctx, token)
	}
	return nil, nil
}

func (m *mockAuthService) DeleteSession(ctx context.Context, token string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, token)
	}
	return nil
}

type mockFriendService struct {
	SendRequestFunc          func(ctx context.Context, senderID, recipientID uuid.UUID) (*models.FriendRequest, error)
	AcceptRequestFunc        func(ctx context.Context, actorID, requestID uuid.UUID) (*models.FriendRequest, error)
	DeclineRequestFunc       func(ctx context.Context, actorID, requestID uuid.UUID) error
	CancelRequestFunc        func(ctx context.Context, actorID, requestID uuid.UUID) error
	UnfriendFunc             func(ctx context.Context, actorID, otherID uuid.UUID) error
	ListFriendsFunc          func(ctx context.Context, userID uuid.UUID) ([]models.UserProfile, error)
	ListRecommendedFunc      func(ctx context.Context, userID uuid.UUID) ([]models.UserProfile, error)
	ListIncomingRequestsFunc func(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithProfile, error)
	ListAcceptedRequestsFunc func(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithProfile, error)
	ListOutgoingRequestsFunc func(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithProfile, error)
}

func (m *mockFriendService) SendRequest(ctx context.Context, senderID, recipientID uuid.UUID) (*models.FriendRequest, error) {
	if m.SendRequestFunc != nil {
		return m.SendRequestFunc(ctx, senderID, recipientID)
	}
	return &models.FriendRequest{}, nil
}

func (m *mockFriendService) AcceptRequest(ctx context.Context, actorID, requestID uuid.UUID) (*models.FriendRequest, error) {
	if m.AcceptRequestFunc != nil {
		return m.AcceptRequestFunc(ctx, actorID, requestID)
	}
	return &models.FriendRequest{}, nil
}

func (m *mockFriendService) DeclineRequest(ctx context.Context, actorID, requestID uuid.UUID) error {
	if m.DeclineRequestFunc != nil {
		return m.DeclineRequestFunc(ctx, actorID, requestID)
	}
	return nil
}

func (m *mockFriendService) CancelRequest(ctx context.Context, actorID, requestID uuid.UUID) error {
	if m.CancelRequestFunc != nil {
		return m.CancelRequestFunc(ctx, actorID, requestID)
	}
	return nil
}

func (m *mockFriendService) Unfriend(ctx context.Context, actorID, otherID uuid.UUID) error {
	if m.UnfriendFunc != nil {
		return m.UnfriendFunc(ctx, actorID, otherID)
	}
	return nil
}

func (m *mockFriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.UserProfile, error) {
	if m.ListFriendsFunc != nil {
		return m.ListFriendsFunc(ctx, userID)
	}
	return []models.UserProfile{}, nil
}

func (m *mockFriendService) ListRecommended(ctx context.Context, userID uuid.UUID) ([]models.UserProfile, error) {
	if m.ListRecommendedFunc != nil {
		return m.ListRecommendedFunc(ctx, userID)
	}
	return []models.UserProfile{}, nil
}

func (m *mockFriendService) ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithProfile, error) {
	if m.ListIncomingRequestsFunc != nil {
		return m.ListIncomingRequestsFunc(ctx, userID)
	}
	return []models.FriendRequestWithProfile{}, nil
}

func (m *mockFriendService) ListAcceptedRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithProfile, error) {
	if m.ListAcceptedRequestsFunc != nil {
		return m.ListAcceptedRequestsFunc(ctx, userID)
	}
	return []models.FriendRequestWithProfile{}, nil
}

func (m *mockFriendService) ListOutgoingRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithProfile, error) {
	if m.ListOutgoingRequestsFunc != nil {
		return m.ListOutgoingRequestsFunc(ctx, userID)
	}
	return []models.FriendRequestWithProfile{}, nil
}

type mockGroupService struct {
	CreateFunc     func(ctx context.Context, creator *models.User, name, image string) (*models.Group, error)
	JoinFunc       func(ctx context.Context, actor *models.User, code string) (*models.Group, error)
	LeaveFunc      func(ctx context.Context, actorID, groupID uuid.UUID) error
	GetDetailsFunc func(ctx context.Context, groupID uuid.UUID) (*models.GroupDetails, error)
	ListMineFunc   func(ctx context.Context, userID uuid.UUID) ([]models.Group, error)
}

func (m *mockGroupService) Create(ctx context.Context, creator *models.User, name, image string) (*models.Group, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, creator, name, image)
	}
	return &models.Group{}, nil
}

func (m *mockGroupService) Join(ctx context.Context, actor *models.User, code string) (*models.Group, error) {
	if m.JoinFunc != nil {
		return m.JoinFunc(ctx, actor, code)
	}
	return &models.Group{}, nil
}

func (m *mockGroupService) Leave(ctx context.Context, actorID, groupID uuid.UUID) error {
	if m.LeaveFunc != nil {
		return m.LeaveFunc(ctx, actorID, groupID)
	}
	return nil
}

func (m *mockGroupService) GetDetails(ctx context.Context, groupID uuid.UUID) (*models.GroupDetails, error) {
	if m.GetDetailsFunc != nil {
		return m.GetDetailsFunc(ctx, groupID)
	}
	return &models.GroupDetails{}, nil
}

func (m *mockGroupService) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	if m.ListMineFunc != nil {
		return m.ListMineFunc(ctx, userID)
	}
	return []models.Group{}, nil
}

type mockChatService struct {
	SyncUserFunc            func(ctx context.Context, user *models.User) error
	SyncProfilesFunc        func(ctx context.Context, actor *models.User, profiles []models.UserProfile) (int, error)
	IssueTokenFunc          func(ctx context.Context, user *models.User) (string, error)
	EnsureGroupChannelFunc  func(ctx context.Context, group *models.Group, creator *models.User) error
	AddGroupMemberFunc      func(ctx context.Context, groupID uuid.UUID, user *models.User) error
	RemoveGroupMemberFunc   func(ctx context.Context, groupID, userID uuid.UUID) error
	EnsureDirectChannelFunc func(ctx context.Context, participantIDs []uuid.UUID) (string, error)
}

func (m *mockChatService) SyncUser(ctx context.Context, user *models.User) error {
	if m.SyncUserFunc != nil {
		return m.SyncUserFunc(ctx, user)
	}
	return nil
}

func (m *mockChatService) SyncProfiles(ctx context.Context, actor *models.User, profiles []models.UserProfile) (int, error) {
	if m.SyncProfilesFunc != nil {
		return m.SyncProfilesFunc(ctx, actor, profiles)
	}
	return 0, nil
}

func (m *mockChatService) IssueToken(ctx context.Context, user *models.User) (string, error) {
	if m.IssueTokenFunc != nil {
		return m.IssueTokenFunc(ctx, user)
	}
	return "chat-token", nil
}

func (m *mockChatService) EnsureGroupChannel(ctx context.Context, group *models.Group, creator *models.User) error {
	if m.EnsureGroupChannelFunc != nil {
		return m.EnsureGroupChannelFunc(ctx, group, creator)
	}
	return nil
}

func (m *mockChatService) AddGroupMember(ctx context.Context, groupID uuid.UUID, user *models.User) error {
	if m.AddGroupMemberFunc != nil {
		return m.AddGroupMemberFunc(ctx, groupID, user)
	}
	return nil
}

func (m *mockChatService) RemoveGroupMember(ctx context.Context, groupID, userID uuid.UUID) error {
	if m.RemoveGroupMemberFunc != nil {
		return m.RemoveGroupMemberFunc(ctx, groupID, userID)
	}
	return nil
}

func (m *mockChatService) EnsureDirectChannel(ctx context.Context, participantIDs []uuid.UUID) (string, error) {
	if m.EnsureDirectChannelFunc != nil {
		return m.EnsureDirectChannelFunc(ctx, participantIDs)
	}
	return "pm_channel", nil
}
