package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/gatherly/gatherly/internal/logging"
	"github.com/gatherly/gatherly/internal/models"
	"github.com/gatherly/gatherly/internal/services"
)

type FriendHandler struct {
	friendService services.FriendServiceInterface
	chatService   services.ChatServiceInterface
}

func NewFriendHandler(friendService services.FriendServiceInterface, chatService services.ChatServiceInterface) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
		chatService:   chatService,
	}
}

type FriendRequestResponse struct {
	Request *models.FriendRequest `json:"request"`
}

type FriendListResponse struct {
	Friends []models.UserProfile `json:"friends"`
}

type RecommendedResponse struct {
	Recommended []models.UserProfile `json:"recommended"`
}

type FriendRequestsResponse struct {
	Incoming []models.FriendRequestWithProfile `json:"incoming"`
	Accepted []models.FriendRequestWithProfile `json:"accepted"`
}

type OutgoingRequestsResponse struct {
	Outgoing []models.FriendRequestWithProfile `json:"outgoing"`
}

// SendRequest handles POST /api/friend-requests/send/{userId}.
func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	recipientID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	request, err := h.friendService.SendRequest(r.Context(), user.ID, recipientID)
	switch {
	case errors.Is(err, services.ErrCannotFriendSelf):
		writeError(w, http.StatusBadRequest, "You can't send a friend request to yourself")
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrAlreadyFriends):
		writeError(w, http.StatusBadRequest, "You are already friends with this user")
	case errors.Is(err, services.ErrRequestExists):
		writeError(w, http.StatusBadRequest, "A friend request already exists between you and this user")
	case err != nil:
		logging.Error("Sending friend request", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusCreated, FriendRequestResponse{Request: request})
	}
}

// AcceptRequest handles POST /api/friend-requests/accept/{id}. Once the
// friendship is recorded, the pair's direct channel is provisioned so the
// chat page works without an extra round trip.
func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request id")
		return
	}

	request, err := h.friendService.AcceptRequest(r.Context(), user.ID, requestID)
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		writeError(w, http.StatusNotFound, "Friend request not found")
		return
	case errors.Is(err, services.ErrNotRequestRecipient):
		writeError(w, http.StatusForbidden, "You are not the recipient of this request")
		return
	case errors.Is(err, services.ErrRequestNotPending):
		writeError(w, http.StatusBadRequest, "This request has already been handled")
		return
	case errors.Is(err, services.ErrAlreadyFriends):
		writeError(w, http.StatusBadRequest, "You are already friends with this user")
		return
	case err != nil:
		logging.Error("Accepting friend request", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if _, err := h.chatService.EnsureDirectChannel(r.Context(), []uuid.UUID{request.SenderID, request.RecipientID}); err != nil {
		// Friendship is committed; the channel can still be created
		// lazily when either side opens the chat.
		logging.Error("Provisioning direct channel", map[string]interface{}{
			"error":      err.Error(),
			"request_id": requestID.String(),
		})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, FriendRequestResponse{Request: request})
}

// DeclineRequest handles POST /api/friend-requests/decline/{id}.
func (h *FriendHandler) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request id")
		return
	}

	err = h.friendService.DeclineRequest(r.Context(), user.ID, requestID)
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		writeError(w, http.StatusNotFound, "Friend request not found")
	case errors.Is(err, services.ErrNotRequestRecipient):
		writeError(w, http.StatusForbidden, "You are not the recipient of this request")
	case errors.Is(err, services.ErrRequestNotPending):
		writeError(w, http.StatusBadRequest, "This request has already been handled")
	case err != nil:
		logging.Error("Declining friend request", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Friend request declined"})
	}
}

// CancelRequest handles DELETE /api/friend-requests/cancel/{id}. Only the sender
// may cancel, and only while the request is still pending.
func (h *FriendHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request id")
		return
	}

	err = h.friendService.CancelRequest(r.Context(), user.ID, requestID)
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		writeError(w, http.StatusNotFound, "Friend request not found")
	case errors.Is(err, services.ErrNotRequestSender):
		writeError(w, http.StatusForbidden, "You are not the sender of this request")
	case errors.Is(err, services.ErrRequestNotPending):
		writeError(w, http.StatusBadRequest, "This request has already been handled")
	case err != nil:
		logging.Error("Canceling friend request", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Friend request canceled"})
	}
}

// Unfriend handles DELETE /api/friends/unfriend/{friendId}.
func (h *FriendHandler) Unfriend(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	otherID, err := uuid.Parse(r.PathValue("friendId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	err = h.friendService.Unfriend(r.Context(), user.ID, otherID)
	switch {
	case errors.Is(err, services.ErrFriendshipNotFound):
		writeError(w, http.StatusNotFound, "You are not friends with this user")
	case err != nil:
		logging.Error("Removing friend", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Friend removed"})
	}
}

// ListFriends handles GET /api/friends/my-friends.
func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	friends, err := h.friendService.ListFriends(r.Context(), user.ID)
	if err != nil {
		logging.Error("Listing friends", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, FriendListResponse{Friends: friends})
}

// ListRecommended handles GET /api/friends/recommended: onboarded users the
// caller is not yet friends with.
func (h *FriendHandler) ListRecommended(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	recommended, err := h.friendService.ListRecommended(r.Context(), user.ID)
	if err != nil {
		logging.Error("Listing recommended users", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, RecommendedResponse{Recommended: recommended})
}

// ListRequests handles GET /api/friend-requests/requests: pending requests addressed
// to the caller plus the caller's requests that were recently accepted.
func (h *FriendHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	incoming, err := h.friendService.ListIncomingRequests(r.Context(), user.ID)
	if err != nil {
		logging.Error("Listing incoming requests", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	accepted, err := h.friendService.ListAcceptedRequests(r.Context(), user.ID)
	if err != nil {
		logging.Error("Listing accepted requests", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, FriendRequestsResponse{Incoming: incoming, Accepted: accepted})
}

// ListOutgoingRequests handles GET /api/friend-requests/requests/outgoing.
func (h *FriendHandler) ListOutgoingRequests(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	outgoing, err := h.friendService.ListOutgoingRequests(r.Context(), user.ID)
	if err != nil {
		logging.Error("Listing outgoing requests", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, OutgoingRequestsResponse{Outgoing: outgoing})
}
