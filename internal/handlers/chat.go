package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/gatherly/gatherly/internal/logging"
	"github.com/gatherly/gatherly/internal/models"
	"github.com/gatherly/gatherly/internal/services"
)

// ChatHandler exposes the provisioning bridge to the chat frontend: user
// tokens, member mirroring, and direct channel creation. These endpoints
// mutate no local state, so provider failures surface as 502s.
type ChatHandler struct {
	chatService services.ChatServiceInterface
	apiKey      string
}

func NewChatHandler(chatService services.ChatServiceInterface, apiKey string) *ChatHandler {
	return &ChatHandler{chatService: chatService, apiKey: apiKey}
}

type ChatTokenResponse struct {
	Token  string `json:"token"`
	APIKey string `json:"api_key"`
	UserID string `json:"user_id"`
}

type UpsertMembersRequest struct {
	Members []models.UserProfile `json:"members"`
}

type UpsertMembersResponse struct {
	Synced int `json:"synced"`
}

type EnsurePMChannelRequest struct {
	MemberIDs []uuid.UUID `json:"member_ids"`
}

type EnsurePMChannelResponse struct {
	ChannelID string `json:"channel_id"`
}

// Token handles POST /api/chat/token. The caller's chat identity is synced
// first so a token is never issued for an unknown provider-side user.
func (h *ChatHandler) Token(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	token, err := h.chatService.IssueToken(r.Context(), user)
	if err != nil {
		logging.Error("Issuing chat token", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusBadGateway, "Chat provider unavailable")
		return
	}

	writeJSON(w, http.StatusOK, ChatTokenResponse{
		Token:  token,
		APIKey: h.apiKey,
		UserID: user.ID.String(),
	})
}

// UpsertMembers handles POST /api/chat/upsert-members, mirroring the given
// profiles (plus the caller) into the chat provider.
func (h *ChatHandler) UpsertMembers(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UpsertMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	synced, err := h.chatService.SyncProfiles(r.Context(), user, req.Members)
	if err != nil {
		logging.Error("Syncing chat members", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusBadGateway, "Chat provider unavailable")
		return
	}

	writeJSON(w, http.StatusOK, UpsertMembersResponse{Synced: synced})
}

// EnsurePMChannel handles POST /api/chat/ensure-pm-channel. The caller is always
// a participant; the channel id is derived from the sorted member ids so
// repeated calls land on the same channel.
func (h *ChatHandler) EnsurePMChannel(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req EnsurePMChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.MemberIDs) == 0 {
		writeError(w, http.StatusBadRequest, "At least one member is required")
		return
	}

	participants := append([]uuid.UUID{user.ID}, req.MemberIDs...)
	channelID, err := h.chatService.EnsureDirectChannel(r.Context(), participants)
	if err != nil {
		if errors.Is(err, services.ErrNotEnoughParticipants) {
			writeError(w, http.StatusBadRequest, "A direct channel needs at least two distinct members")
			return
		}
		logging.Error("Ensuring direct channel", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusBadGateway, "Chat provider unavailable")
		return
	}

	writeJSON(w, http.StatusOK, EnsurePMChannelResponse{ChannelID: channelID})
}
