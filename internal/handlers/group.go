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

type GroupHandler struct {
	groupService services.GroupServiceInterface
}

func NewGroupHandler(groupService services.GroupServiceInterface) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

type CreateGroupRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type JoinGroupRequest struct {
	Code string `json:"code"`
}

type GroupResponse struct {
	Group *models.Group `json:"group"`
}

type GroupDetailsResponse struct {
	Group *models.GroupDetails `json:"group"`
}

type GroupListResponse struct {
	Groups []models.Group `json:"groups"`
}

// Create handles POST /api/groups. The creator becomes the first member
// and the group's chat channel is provisioned before responding.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	group, err := h.groupService.Create(r.Context(), user, req.Name, req.Image)
	switch {
	case errors.Is(err, services.ErrGroupNameRequired):
		writeError(w, http.StatusBadRequest, "Group name is required")
	case err != nil:
		logging.Error("Creating group", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusCreated, GroupResponse{Group: group})
	}
}

// Join handles POST /api/groups/join, looking the group up by join code.
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req JoinGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "Join code is required")
		return
	}

	group, err := h.groupService.Join(r.Context(), user, req.Code)
	switch {
	case errors.Is(err, services.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, "No group found with that code")
	case errors.Is(err, services.ErrAlreadyMember):
		writeError(w, http.StatusBadRequest, "You are already a member of this group")
	case err != nil:
		logging.Error("Joining group", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusOK, GroupResponse{Group: group})
	}
}

// Leave handles DELETE /api/groups/{id}/leave.
func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	groupID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid group id")
		return
	}

	err = h.groupService.Leave(r.Context(), user.ID, groupID)
	switch {
	case errors.Is(err, services.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, "Group not found")
	case err != nil:
		logging.Error("Leaving group", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Left group"})
	}
}

// Details handles GET /api/groups/{id}.
func (h *GroupHandler) Details(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	groupID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid group id")
		return
	}

	details, err := h.groupService.GetDetails(r.Context(), groupID)
	switch {
	case errors.Is(err, services.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, "Group not found")
	case err != nil:
		logging.Error("Getting group details", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusOK, GroupDetailsResponse{Group: details})
	}
}

// MyGroups handles GET /api/groups/my-groups.
func (h *GroupHandler) MyGroups(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	groups, err := h.groupService.ListMine(r.Context(), user.ID)
	if err != nil {
		logging.Error("Listing groups", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, GroupListResponse{Groups: groups})
}
