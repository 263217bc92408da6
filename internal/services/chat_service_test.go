package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/gatherly/gatherly/internal/models"
)

type fakeProvider struct {
	UpsertUsersFunc     func(ctx context.Context, users []ChatUser) error
	EnsureChannelFunc   func(ctx context.Context, channelID string, opts ChannelOptions) error
	AddMembersFunc      func(ctx context.Context, channelID string, userIDs []string) error
	RemoveMembersFunc   func(ctx context.Context, channelID string, userIDs []string) error
	CreateUserTokenFunc func(userID string) (string, error)
}

func (f *fakeProvider) UpsertUsers(ctx context.Context, users []ChatUser) error {
	if f.UpsertUsersFunc == nil {
		return nil
	}
	return f.UpsertUsersFunc(ctx, users)
}

func (f *fakeProvider) EnsureChannel(ctx context.Context, channelID string, opts ChannelOptions) error {
	if f.EnsureChannelFunc == nil {
		return nil
	}
	return f.EnsureChannelFunc(ctx, channelID, opts)
}

func (f *fakeProvider) AddMembers(ctx context.Context, channelID string, userIDs []string) error {
	if f.AddMembersFunc == nil {
		return nil
	}
	return f.AddMembersFunc(ctx, channelID, userIDs)
}

func (f *fakeProvider) RemoveMembers(ctx context.Context, channelID string, userIDs []string) error {
	if f.RemoveMembersFunc == nil {
		return nil
	}
	return f.RemoveMembersFunc(ctx, channelID, userIDs)
}

func (f *fakeProvider) CreateUserToken(userID string) (string, error) {
	if f.CreateUserTokenFunc == nil {
		return "token-" + userID, nil
	}
	return f.CreateUserTokenFunc(userID)
}

func TestDirectChannelID_OrderIndependent(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	id1 := DirectChannelID([]uuid.UUID{a, b})
	id2 := DirectChannelID([]uuid.UUID{b, a})
	if id1 != id2 {
		t.Fatalf("channel id depends on order: %q vs %q", id1, id2)
	}
	if !strings.HasPrefix(id1, "pm_") {
		t.Fatalf("expected pm_ prefix, got %q", id1)
	}
}

func TestDirectChannelID_Dedupes(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	if DirectChannelID([]uuid.UUID{a, b, a}) != DirectChannelID([]uuid.UUID{a, b}) {
		t.Fatal("duplicate participants should not change the channel id")
	}
}

func TestDirectChannelID_SortedParts(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	id := DirectChannelID([]uuid.UUID{a, b})
	parts := strings.Split(strings.TrimPrefix(id, "pm_"), "_")
	if len(parts) != 2 {
		t.Fatalf("expected two id segments, got %v", parts)
	}
	if parts[0] >= parts[1] {
		t.Fatalf("segments not sorted: %v", parts)
	}
}

func TestChatService_IssueToken_SyncsFirst(t *testing.T) {
	userID := uuid.New()
	var upserted bool

	provider := &fakeProvider{
		UpsertUsersFunc: func(ctx context.Context, users []ChatUser) error {
			if len(users) != 1 || users[0].ID != userID.String() || users[0].Name != "Ada" {
				t.Fatalf("unexpected upsert: %+v", users)
			}
			upserted = true
			return nil
		},
		CreateUserTokenFunc: func(id string) (string, error) {
			if !upserted {
				t.Fatal("token issued before the identity sync")
			}
			return "tok", nil
		},
	}

	svc := NewChatService(provider)
	token, err := svc.IssueToken(context.Background(), testUser(userID, "Ada"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "tok" {
		t.Fatalf("unexpected token: %q", token)
	}
}

func TestChatService_IssueToken_SyncFailure(t *testing.T) {
	provider := &fakeProvider{
		UpsertUsersFunc: func(ctx context.Context, users []ChatUser) error {
			return errors.New("provider down")
		},
	}
	svc := NewChatService(provider)
	if _, err := svc.IssueToken(context.Background(), testUser(uuid.New(), "Ada")); err == nil {
		t.Fatal("expected error")
	}
}

func TestChatService_SyncProfiles_IncludesActor(t *testing.T) {
	actorID := uuid.New()
	friendID := uuid.New()

	var upserted []ChatUser
	provider := &fakeProvider{
		UpsertUsersFunc: func(ctx context.Context, users []ChatUser) error {
			upserted = users
			return nil
		},
	}

	svc := NewChatService(provider)
	count, err := svc.SyncProfiles(context.Background(), testUser(actorID, "Ada"), []models.UserProfile{
		{ID: friendID, FullName: "Sam"},
		{ID: actorID, FullName: "stale name"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 synced users, got %d", count)
	}
	var actorName string
	for _, u := range upserted {
		if u.ID == actorID.String() {
			actorName = u.Name
		}
	}
	if actorName != "Ada" {
		t.Fatalf("actor identity should win over the submitted profile, got %q", actorName)
	}
}

func TestChatService_EnsureGroupChannel(t *testing.T) {
	groupID := uuid.New()
	creatorID := uuid.New()

	var opts ChannelOptions
	var channelID string
	provider := &fakeProvider{
		EnsureChannelFunc: func(ctx context.Context, id string, o ChannelOptions) error {
			channelID = id
			opts = o
			return nil
		},
	}

	svc := NewChatService(provider)
	group := &models.Group{ID: groupID, Name: "Book club", Image: "img.png"}
	if err := svc.EnsureGroupChannel(context.Background(), group, testUser(creatorID, "Ada")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channelID != groupID.String() {
		t.Fatalf("group channel should reuse the group id, got %q", channelID)
	}
	if opts.Name != "Book club" || opts.CreatedByID != creatorID.String() {
		t.Fatalf("unexpected channel options: %+v", opts)
	}
	if len(opts.Members) != 1 || opts.Members[0] != creatorID.String() {
		t.Fatalf("expected creator as initial member, got %v", opts.Members)
	}
}

func TestChatService_EnsureDirectChannel(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	var opts ChannelOptions
	provider := &fakeProvider{
		EnsureChannelFunc: func(ctx context.Context, id string, o ChannelOptions) error {
			if id != DirectChannelID([]uuid.UUID{a, b}) {
				t.Fatalf("unexpected channel id: %q", id)
			}
			opts = o
			return nil
		},
	}

	svc := NewChatService(provider)
	channelID, err := svc.EnsureDirectChannel(context.Background(), []uuid.UUID{b, a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channelID != DirectChannelID([]uuid.UUID{a, b}) {
		t.Fatalf("unexpected channel id: %q", channelID)
	}
	if !opts.Private {
		t.Fatal("direct channels must be private")
	}
	if len(opts.Members) != 2 {
		t.Fatalf("expected two members after dedupe, got %v", opts.Members)
	}
}

func TestChatService_EnsureDirectChannel_TooFewParticipants(t *testing.T) {
	svc := NewChatService(&fakeProvider{})
	a := uuid.New()
	if _, err := svc.EnsureDirectChannel(context.Background(), []uuid.UUID{a, a}); !errors.Is(err, ErrNotEnoughParticipants) {
		t.Fatalf("expected ErrNotEnoughParticipants, got %v", err)
	}
}

func TestChatService_RemoveGroupMember(t *testing.T) {
	groupID := uuid.New()
	userID := uuid.New()

	var removed []string
	provider := &fakeProvider{
		RemoveMembersFunc: func(ctx context.Context, channelID string, userIDs []string) error {
			if channelID != groupID.String() {
				t.Fatalf("unexpected channel: %q", channelID)
			}
			removed = userIDs
			return nil
		},
	}

	svc := NewChatService(provider)
	if err := svc.RemoveGroupMember(context.Background(), groupID, userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(removed) != 1 || removed[0] != userID.String() {
		t.Fatalf("unexpected removal: %v", removed)
	}
}
