package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/gatherly/gatherly/internal/logging"
	"github.com/gatherly/gatherly/internal/models"
)

var ErrNotEnoughParticipants = errors.New("a direct channel needs at least two distinct participants")

// chatChannelType is the provider channel type used for every channel the
// application provisions.
const chatChannelType = "messaging"

// ChatUser is the identity payload pushed to the chat provider.
type ChatUser struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

// ChannelOptions describes a channel at creation time.
type ChannelOptions struct {
	Name        string
	Image       string
	Members     []string
	CreatedByID string
	Private     bool
}

// ChatProvider is the capability interface over the hosted chat service.
// All calls must be idempotent from the caller's perspective: an
// already-exists or already-a-member response is success, not an error.
type ChatProvider interface {
	UpsertUsers(ctx context.Context, users []ChatUser) error
	EnsureChannel(ctx context.Context, channelID string, opts ChannelOptions) error
	AddMembers(ctx context.Context, channelID string, userIDs []string) error
	RemoveMembers(ctx context.Context, channelID string, userIDs []string) error
	CreateUserToken(userID string) (string, error)
}

// GroupChannelID maps a group to its provider channel. Groups reuse their
// own identifier, so the binding needs no storage.
func GroupChannelID(groupID uuid.UUID) string {
	return groupID.String()
}

// DirectChannelID derives the canonical private-channel id for a set of
// participants: "pm_" plus the sorted, underscore-joined member ids. The
// same set always yields the same channel regardless of who initiates.
func DirectChannelID(participantIDs []uuid.UUID) string {
	seen := make(map[string]struct{}, len(participantIDs))
	ids := make([]string, 0, len(participantIDs))
	for _, id := range participantIDs {
		s := id.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		ids = append(ids, s)
	}
	sort.Strings(ids)

	channelID := "pm_"
	for i, id := range ids {
		if i > 0 {
			channelID += "_"
		}
		channelID += id
	}
	return channelID
}

// ChatService keeps the provider's user and channel state consistent with
// the application's membership state.
type ChatService struct {
	provider ChatProvider
}

func NewChatService(provider ChatProvider) *ChatService {
	return &ChatService{provider: provider}
}

// SyncUser upserts a single user's identity with the provider so channel
// member lists carry display metadata.
func (s *ChatService) SyncUser(ctx context.Context, user *models.User) error {
	err := s.provider.UpsertUsers(ctx, []ChatUser{chatIdentity(user)})
	if err != nil {
		return fmt.Errorf("upserting chat user: %w", err)
	}
	return nil
}

// SyncProfiles bulk-upserts member identities, always including the actor.
func (s *ChatService) SyncProfiles(ctx context.Context, actor *models.User, profiles []models.UserProfile) (int, error) {
	users := make([]ChatUser, 0, len(profiles)+1)
	for _, p := range profiles {
		if p.ID == actor.ID {
			continue
		}
		users = append(users, ChatUser{
			ID:    p.ID.String(),
			Name:  p.FullName,
			Image: p.ProfilePic,
		})
	}
	users = append(users, chatIdentity(actor))

	if err := s.provider.UpsertUsers(ctx, users); err != nil {
		return 0, fmt.Errorf("upserting chat members: %w", err)
	}
	return len(users), nil
}

// IssueToken syncs the user's identity and returns a provider auth token
// for the client-side chat SDK.
func (s *ChatService) IssueToken(ctx context.Context, user *models.User) (string, error) {
	if err := s.SyncUser(ctx, user); err != nil {
		return "", err
	}

	token, err := s.provider.CreateUserToken(user.ID.String())
	if err != nil {
		return "", fmt.Errorf("creating chat token: %w", err)
	}
	return token, nil
}

// EnsureGroupChannel provisions the channel bound to a freshly created
// group, with the creator as its initial member.
func (s *ChatService) EnsureGroupChannel(ctx context.Context, group *models.Group, creator *models.User) error {
	if err := s.SyncUser(ctx, creator); err != nil {
		return err
	}

	err := s.provider.EnsureChannel(ctx, GroupChannelID(group.ID), ChannelOptions{
		Name:        group.Name,
		Image:       group.Image,
		Members:     []string{creator.ID.String()},
		CreatedByID: creator.ID.String(),
	})
	if err != nil {
		return fmt.Errorf("creating group channel: %w", err)
	}
	return nil
}

func (s *ChatService) AddGroupMember(ctx context.Context, groupID uuid.UUID, user *models.User) error {
	if err := s.SyncUser(ctx, user); err != nil {
		return err
	}
	if err := s.provider.AddMembers(ctx, GroupChannelID(groupID), []string{user.ID.String()}); err != nil {
		return fmt.Errorf("adding group channel member: %w", err)
	}
	return nil
}

func (s *ChatService) RemoveGroupMember(ctx context.Context, groupID, userID uuid.UUID) error {
	if err := s.provider.RemoveMembers(ctx, GroupChannelID(groupID), []string{userID.String()}); err != nil {
		return fmt.Errorf("removing group channel member: %w", err)
	}
	return nil
}

// EnsureDirectChannel upserts all participants and creates (or reuses) the
// canonical private channel for the set. Returns the channel id.
func (s *ChatService) EnsureDirectChannel(ctx context.Context, participantIDs []uuid.UUID) (string, error) {
	seen := make(map[uuid.UUID]struct{}, len(participantIDs))
	users := make([]ChatUser, 0, len(participantIDs))
	members := make([]string, 0, len(participantIDs))
	for _, id := range participantIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		users = append(users, ChatUser{ID: id.String()})
		members = append(members, id.String())
	}
	if len(members) < 2 {
		return "", ErrNotEnoughParticipants
	}

	if err := s.provider.UpsertUsers(ctx, users); err != nil {
		return "", fmt.Errorf("upserting channel participants: %w", err)
	}

	channelID := DirectChannelID(participantIDs)
	err := s.provider.EnsureChannel(ctx, channelID, ChannelOptions{
		Name:    "Private chat",
		Members: members,
		Private: true,
	})
	if err != nil {
		return "", fmt.Errorf("creating private channel: %w", err)
	}

	return channelID, nil
}

func chatIdentity(user *models.User) ChatUser {
	return ChatUser{
		ID:    user.ID.String(),
		Name:  user.FullName,
		Image: user.ProfilePic,
	}
}

// ConsoleProvider logs provisioning calls instead of contacting a real
// provider. Used in development and as a handler-level test double.
type ConsoleProvider struct {
	logger *logging.Logger
}

func NewConsoleProvider(logger *logging.Logger) *ConsoleProvider {
	if logger == nil {
		logger = logging.Default
	}
	return &ConsoleProvider{logger: logger}
}

func (p *ConsoleProvider) UpsertUsers(ctx context.Context, users []ChatUser) error {
	p.logger.Info("chat: upsert users", map[string]interface{}{"count": len(users)})
	return nil
}

func (p *ConsoleProvider) EnsureChannel(ctx context.Context, channelID string, opts ChannelOptions) error {
	p.logger.Info("chat: ensure channel", map[string]interface{}{
		"channel_id": channelID,
		"members":    len(opts.Members),
	})
	return nil
}

func (p *ConsoleProvider) AddMembers(ctx context.Context, channelID string, userIDs []string) error {
	p.logger.Info("chat: add members", map[string]interface{}{
		"channel_id": channelID,
		"members":    userIDs,
	})
	return nil
}

func (p *ConsoleProvider) RemoveMembers(ctx context.Context, channelID string, userIDs []string) error {
	p.logger.Info("chat: remove members", map[string]interface{}{
		"channel_id": channelID,
		"members":    userIDs,
	})
	return nil
}

func (p *ConsoleProvider) CreateUserToken(userID string) (string, error) {
	return "console-token-" + userID, nil
}
