package api

import (
	"net/http"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"

	"github.com/gin-gonic/gin"
)

type GymHandler struct {
	gymService          service.GymService
	subscriptionService service.SubscriptionService
}

func NewGymHandler(gymService service.GymService, subscriptionService service.SubscriptionService) *GymHandler {
	return &GymHandler{gymService: gymService, subscriptionService: subscriptionService}
}

type CreateGymRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
	Language string `json:"language"`
}

// CreateGym godoc
// @Summary Create a gym for the authenticated owner
// @Tags Gym
// @Security BearerAuth
// @Router /gym [post]
func (h *GymHandler) CreateGym(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req CreateGymRequest
	if !bindJSON(c, &req) {
		return
	}

	gym, err := h.gymService.CreateGym(c.Request.Context(), actor, service.CreateGymInput{
		Name:     req.Name,
		Location: req.Location,
		Currency: req.Currency,
		Timezone: req.Timezone,
		Language: req.Language,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Gym created", gin.H{"gym": gym})
}

// ListGyms returns the gyms the caller owns or manages.
func (h *GymHandler) ListGyms(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	gyms, err := h.gymService.ListGyms(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"gyms": gyms})
}

// --- Subscription ---

type ActivateSubscriptionRequest struct {
	GymID        string `json:"gymId" binding:"required"`
	Plan         string `json:"plan" binding:"required"`
	BillingCycle string `json:"billingCycle" binding:"required"`
	OrderID      string `json:"orderId" binding:"required"`
	PaymentID    string `json:"paymentId" binding:"required"`
	Signature    string `json:"signature" binding:"required"`
	AutoRenew    bool   `json:"autoRenew"`
}

// GetSubscription godoc
// @Summary Subscription status, limits and usage of a gym
// @Tags Subscription
// @Security BearerAuth
// @Param gymId query string true "Gym ID"
// @Router /subscription [get]
func (h *GymHandler) GetSubscription(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	gymID, ok := objectIDQuery(c, "gymId")
	if !ok {
		return
	}
	overview, err := h.subscriptionService.GetSubscription(c.Request.Context(), actor, gymID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"subscription": overview})
}

// ActivateSubscription godoc
// @Summary Activate a paid subscription after the gateway confirmed payment
// @Tags Subscription
// @Security BearerAuth
// @Router /subscription [post]
func (h *GymHandler) ActivateSubscription(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req ActivateSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	gymID, ok := parseObjectID(c, "gymId", req.GymID)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.ActivateSubscription(c.Request.Context(), actor, service.ActivateSubscriptionInput{
		GymID:        gymID,
		Plan:         domain.SaaSPlan(req.Plan),
		BillingCycle: domain.BillingCycle(req.BillingCycle),
		OrderID:      req.OrderID,
		PaymentID:    req.PaymentID,
		Signature:    req.Signature,
		AutoRenew:    req.AutoRenew,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Subscription activated", gin.H{"subscription": sub})
}
