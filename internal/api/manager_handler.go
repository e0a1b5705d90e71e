package api

import (
	"net/http"

	"alcyxob/gym-manager/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ManagerHandler struct {
	managerService service.ManagerService
}

func NewManagerHandler(managerService service.ManagerService) *ManagerHandler {
	return &ManagerHandler{managerService: managerService}
}

type CreateManagerRequest struct {
	Name        string   `json:"name" binding:"required"`
	Email       string   `json:"email" binding:"required,email"`
	Password    string   `json:"password" binding:"required"`
	DialCode    string   `json:"dialCode"`
	PhoneNumber string   `json:"phoneNumber"`
	GymIDs      []string `json:"gymIds" binding:"required,min=1"`
}

type UpdateManagerRequest struct {
	ManagerID   string   `json:"managerId" binding:"required"`
	Name        *string  `json:"name"`
	PhoneNumber *string  `json:"phoneNumber"`
	Password    *string  `json:"password"`
	IsActive    *bool    `json:"isActive"`
	GymIDs      []string `json:"gymIds"`
}

func parseObjectIDs(c *gin.Context, name string, raw []string) ([]primitive.ObjectID, bool) {
	if raw == nil {
		return nil, true
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, r := range raw {
		id, ok := parseObjectID(c, name, r)
		if !ok {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// CreateManager godoc
// @Summary Create a manager account for some of the owner's gyms
// @Tags Manager
// @Security BearerAuth
// @Failure 403 {object} gin.H "Not an owner, gym not owned or staff limit reached"
// @Failure 409 {object} gin.H "Email already registered"
// @Router /manager [post]
func (h *ManagerHandler) CreateManager(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req CreateManagerRequest
	if !bindJSON(c, &req) {
		return
	}
	gymIDs, ok := parseObjectIDs(c, "gymIds", req.GymIDs)
	if !ok {
		return
	}

	manager, err := h.managerService.CreateManager(c.Request.Context(), actor, service.CreateManagerInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		DialCode:    req.DialCode,
		PhoneNumber: req.PhoneNumber,
		GymIDs:      gymIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Manager created", gin.H{"manager": MapUserToResponse(manager)})
}

func (h *ManagerHandler) ListManagers(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	managers, err := h.managerService.ListManagers(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]UserResponse, len(managers))
	for i := range managers {
		out[i] = MapUserToResponse(&managers[i])
	}
	respond(c, http.StatusOK, "", gin.H{"managers": out})
}

func (h *ManagerHandler) UpdateManager(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req UpdateManagerRequest
	if !bindJSON(c, &req) {
		return
	}
	managerID, ok := parseObjectID(c, "managerId", req.ManagerID)
	if !ok {
		return
	}
	gymIDs, ok := parseObjectIDs(c, "gymIds", req.GymIDs)
	if !ok {
		return
	}

	manager, err := h.managerService.UpdateManager(c.Request.Context(), actor, service.UpdateManagerInput{
		ManagerID:   managerID,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		IsActive:    req.IsActive,
		GymIDs:      gymIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Manager updated", gin.H{"manager": MapUserToResponse(manager)})
}

// DeleteManager deactivates the manager and removes them from every gym.
func (h *ManagerHandler) DeleteManager(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	managerID, ok := objectIDQuery(c, "managerId")
	if !ok {
		return
	}
	if err := h.managerService.DeleteManager(c.Request.Context(), actor, managerID); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Manager deleted", nil)
}
