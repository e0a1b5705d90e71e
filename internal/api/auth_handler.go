package api

import (
	"net/http"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type SignupRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	DialCode    string `json:"dialCode"`
	PhoneNumber string `json:"phoneNumber"`
}

type SigninRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name            *string `json:"name"`
	DialCode        *string `json:"dialCode"`
	PhoneNumber     *string `json:"phoneNumber"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// GymSummary is the short form of a gym shown on a user's profile.
type GymSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type ProfileResponse struct {
	UserResponse
	OwnedGyms   []GymSummary `json:"ownedGyms"`
	ManagedGyms []GymSummary `json:"managedGyms"`
}

func mapProfile(p *service.Profile) ProfileResponse {
	summarize := func(gyms []domain.Gym) []GymSummary {
		out := make([]GymSummary, len(gyms))
		for i, g := range gyms {
			out[i] = GymSummary{ID: g.ID.Hex(), Name: g.Name, Location: g.Location}
		}
		return out
	}
	return ProfileResponse{
		UserResponse: MapUserToResponse(p.User),
		OwnedGyms:    summarize(p.OwnedGyms),
		ManagedGyms:  summarize(p.ManagedGyms),
	}
}

// --- Handler Methods ---

// Signup godoc
// @Summary Register a gym owner
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body SignupRequest true "Registration details"
// @Success 201 {object} gin.H "Token and user"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "Conflict (email already exists)"
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	token, user, err := h.authService.Signup(c.Request.Context(), service.SignupInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		DialCode:    req.DialCode,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Account created", gin.H{"token": token, "user": MapUserToResponse(user)})
}

// Signin godoc
// @Summary Log in a user
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body SigninRequest true "Login credentials"
// @Success 200 {object} gin.H "Token and user"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Router /auth/signin [post]
func (h *AuthHandler) Signin(c *gin.Context) {
	var req SigninRequest
	if !bindJSON(c, &req) {
		return
	}

	token, user, err := h.authService.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"token": token, "user": MapUserToResponse(user)})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, "", gin.H{"user": MapUserToResponse(actor)})
}

// Profile returns the caller's account with its gyms.
func (h *AuthHandler) Profile(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	profile, err := h.authService.Profile(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"user": mapProfile(profile)})
}

// UpdateProfile godoc
// @Summary Update the caller's name and phone, optionally changing the password
// @Tags User
// @Accept json
// @Produce json
// @Param profile body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} gin.H "Updated profile"
// @Failure 400 {object} gin.H "Invalid input or wrong current password"
// @Router /user/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	if req.CurrentPassword != "" && req.NewPassword != "" {
		err := h.authService.ChangePassword(ctx, actor, service.ChangePasswordInput{
			CurrentPassword: req.CurrentPassword,
			NewPassword:     req.NewPassword,
		})
		if err != nil {
			respondError(c, err)
			return
		}
	}

	profile, err := h.authService.UpdateProfile(ctx, actor, service.UpdateProfileInput{
		Name:        req.Name,
		DialCode:    req.DialCode,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated successfully", gin.H{"user": mapProfile(profile)})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.authService.ChangePassword(c.Request.Context(), actor, service.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Password changed", nil)
}

// DeleteAccount deactivates the caller's account. Requires ?confirm=true.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if c.Query("confirm") != "true" {
		abortWithError(c, http.StatusBadRequest, "Please confirm account deletion")
		return
	}
	if err := h.authService.DeleteAccount(c.Request.Context(), actor); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Account deleted successfully", nil)
}
