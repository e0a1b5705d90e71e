package api

import (
	"net/http"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

type CreatePlanRequest struct {
	GymID       string              `json:"gymId" binding:"required"`
	Name        string              `json:"name" binding:"required"`
	Duration    domain.PlanDuration `json:"duration"`
	Price       domain.Money        `json:"price"`
	Description string              `json:"description"`
}

type UpdatePlanRequest struct {
	PlanID      string               `json:"planId" binding:"required"`
	Name        *string              `json:"name"`
	Duration    *domain.PlanDuration `json:"duration"`
	Price       *domain.Money        `json:"price"`
	Description *string              `json:"description"`
}

// CreatePlan godoc
// @Summary Create a membership plan
// @Tags Plan
// @Security BearerAuth
// @Param plan body CreatePlanRequest true "Plan"
// @Failure 403 {object} gin.H "Only the gym owner can create plans"
// @Router /plan [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req CreatePlanRequest
	if !bindJSON(c, &req) {
		return
	}
	gymID, ok := parseObjectID(c, "gymId", req.GymID)
	if !ok {
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), actor, service.CreatePlanInput{
		GymID:       gymID,
		Name:        req.Name,
		Duration:    req.Duration,
		Price:       req.Price,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Plan created", gin.H{"plan": plan})
}

// ListPlans godoc
// @Summary Active plans of a gym, cheapest first
// @Tags Plan
// @Security BearerAuth
// @Param gymId query string true "Gym ID"
// @Router /plan [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	gymID, ok := objectIDQuery(c, "gymId")
	if !ok {
		return
	}
	plans, err := h.planService.ListPlans(c.Request.Context(), actor, gymID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"plans": plans})
}

func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req UpdatePlanRequest
	if !bindJSON(c, &req) {
		return
	}
	planID, ok := parseObjectID(c, "planId", req.PlanID)
	if !ok {
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), actor, service.UpdatePlanInput{
		PlanID:      planID,
		Name:        req.Name,
		Duration:    req.Duration,
		Price:       req.Price,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Plan updated", gin.H{"plan": plan})
}

func (h *PlanHandler) DeletePlan(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	planID, ok := objectIDQuery(c, "planId")
	if !ok {
		return
	}
	if err := h.planService.DeletePlan(c.Request.Context(), actor, planID); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Plan deleted", nil)
}
