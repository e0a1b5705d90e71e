package api

import (
	"net/http"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"

	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	memberService service.MemberService
}

func NewMemberHandler(memberService service.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// --- DTOs ---

type EnrollMemberRequest struct {
	GymID       string        `json:"gymId" binding:"required"`
	MemberID    string        `json:"memberId" binding:"required"`
	Name        string        `json:"name" binding:"required"`
	PhoneNumber string        `json:"phoneNumber" binding:"required"`
	Gender      domain.Gender `json:"gender" binding:"required"`
	Batch       domain.Batch  `json:"batch" binding:"required"`

	Email       string  `json:"email"`
	Height      float64 `json:"height"`
	Weight      float64 `json:"weight"`
	Address     string  `json:"address"`
	Notes       string  `json:"notes"`
	DateOfBirth *Date   `json:"dateOfBirth"`
	JoiningDate *Date   `json:"joiningDate"`

	PlanID              string             `json:"planId"`
	MembershipStartDate *Date              `json:"membershipStartDate"`
	Discount            domain.Money       `json:"discount"`
	AmountCollected     domain.Money       `json:"amountCollected"`
	PaymentMode         domain.PaymentMode `json:"paymentMode"`
}

type UpdateMemberRequest struct {
	MemberID    string         `json:"memberId" binding:"required"`
	Name        *string        `json:"name"`
	PhoneNumber *string        `json:"phoneNumber"`
	Gender      *domain.Gender `json:"gender"`
	Batch       *domain.Batch  `json:"batch"`
	Email       *string        `json:"email"`
	Height      *float64       `json:"height"`
	Weight      *float64       `json:"weight"`
	Address     *string        `json:"address"`
	Notes       *string        `json:"notes"`
	DateOfBirth *Date          `json:"dateOfBirth"`
	Image       *string        `json:"image"`
	Discount    *domain.Money  `json:"discount"`
	IsFrozen    *bool          `json:"isFrozen"`
}

type RenewMemberRequest struct {
	MemberID        string             `json:"memberId" binding:"required"`
	PlanID          string             `json:"planId" binding:"required"`
	StartDate       *Date              `json:"startDate"`
	Discount        domain.Money       `json:"discount"`
	AmountCollected domain.Money       `json:"amountCollected"`
	PaymentMode     domain.PaymentMode `json:"paymentMode"`
}

type DuePaymentRequest struct {
	MemberID    string             `json:"memberId" binding:"required"`
	Amount      domain.Money       `json:"amount" binding:"required"`
	PaymentMode domain.PaymentMode `json:"paymentMode"`
	Description string             `json:"description"`
}

type PhotoUploadRequest struct {
	MemberID    string `json:"memberId" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// --- Handler Methods ---

// EnrollMember godoc
// @Summary Enroll a member, optionally on a plan
// @Tags Member
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param member body EnrollMemberRequest true "Member details"
// @Success 201 {object} gin.H "Member created with plan populated"
// @Success 207 {object} gin.H "Member saved, payment or history record missing"
// @Failure 400 {object} gin.H "Validation error or duplicate memberId"
// @Failure 403 {object} gin.H "No access to the gym or member limit reached"
// @Failure 404 {object} gin.H "Gym or plan not found"
// @Router /member [post]
func (h *MemberHandler) EnrollMember(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req EnrollMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	gymID, ok := parseObjectID(c, "gymId", req.GymID)
	if !ok {
		return
	}
	planID, ok := optionalObjectID(c, "planId", req.PlanID)
	if !ok {
		return
	}

	member, err := h.memberService.EnrollMember(c.Request.Context(), actor, service.EnrollMemberInput{
		GymID:               gymID,
		MemberID:            req.MemberID,
		Name:                req.Name,
		PhoneNumber:         req.PhoneNumber,
		Gender:              req.Gender,
		Batch:               req.Batch,
		Email:               req.Email,
		Height:              req.Height,
		Weight:              req.Weight,
		Address:             req.Address,
		Notes:               req.Notes,
		DateOfBirth:         req.DateOfBirth.Ptr(),
		JoiningDate:         req.JoiningDate.Ptr(),
		PlanID:              planID,
		MembershipStartDate: req.MembershipStartDate.Ptr(),
		Discount:            req.Discount,
		AmountCollected:     req.AmountCollected,
		PaymentMode:         req.PaymentMode,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Member enrolled", gin.H{"member": mapMember(member)})
}

// ListMembers godoc
// @Summary List a gym's members
// @Tags Member
// @Produce json
// @Security BearerAuth
// @Param gymId query string true "Gym ID"
// @Param status query string false "active, expired or frozen"
// @Param batch query string false "Morning, Noon, Evening or Night"
// @Param search query string false "Name, phone or member id"
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size, at most 100"
// @Router /member [get]
func (h *MemberHandler) ListMembers(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	gymID, ok := objectIDQuery(c, "gymId")
	if !ok {
		return
	}
	page, ok := intQuery(c, "page")
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}

	result, err := h.memberService.ListMembers(c.Request.Context(), actor, service.ListMembersInput{
		GymID:  gymID,
		Status: domain.MembershipStatus(c.Query("status")),
		Batch:  domain.Batch(c.Query("batch")),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{
		"members":    mapMembers(result.Members),
		"pagination": result.Pagination,
	})
}

// GetMember returns one member by record id.
func (h *MemberHandler) GetMember(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := objectIDQuery(c, "memberId")
	if !ok {
		return
	}
	member, err := h.memberService.GetMember(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"member": mapMember(member)})
}

// UpdateMember godoc
// @Summary Patch a member's profile, discount or freeze state
// @Tags Member
// @Security BearerAuth
// @Param member body UpdateMemberRequest true "memberId plus fields to change"
// @Failure 404 {object} gin.H "Member not found"
// @Router /member [put]
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req UpdateMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	id, ok := parseObjectID(c, "memberId", req.MemberID)
	if !ok {
		return
	}

	member, err := h.memberService.UpdateMember(c.Request.Context(), actor, service.UpdateMemberInput{
		MemberRecordID: id,
		Name:           req.Name,
		PhoneNumber:    req.PhoneNumber,
		Gender:         req.Gender,
		Batch:          req.Batch,
		Email:          req.Email,
		Height:         req.Height,
		Weight:         req.Weight,
		Address:        req.Address,
		Notes:          req.Notes,
		DateOfBirth:    req.DateOfBirth.Ptr(),
		Image:          req.Image,
		Discount:       req.Discount,
		IsFrozen:       req.IsFrozen,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Member updated", gin.H{"member": mapMember(member)})
}

// DeleteMember godoc
// @Summary Soft-delete a member
// @Tags Member
// @Security BearerAuth
// @Param memberId query string true "Member record ID"
// @Router /member [delete]
func (h *MemberHandler) DeleteMember(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := objectIDQuery(c, "memberId")
	if !ok {
		return
	}
	if err := h.memberService.DeleteMember(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Member deleted", nil)
}

// RenewMember godoc
// @Summary Start a new membership term
// @Tags Member
// @Security BearerAuth
// @Failure 409 {object} gin.H "Outstanding due must be cleared first"
// @Router /member/renew [post]
func (h *MemberHandler) RenewMember(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req RenewMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	memberID, ok := parseObjectID(c, "memberId", req.MemberID)
	if !ok {
		return
	}
	planID, ok := parseObjectID(c, "planId", req.PlanID)
	if !ok {
		return
	}

	result, err := h.memberService.RenewMember(c.Request.Context(), actor, service.RenewMemberInput{
		MemberRecordID:  memberID,
		PlanID:          planID,
		StartDate:       req.StartDate.Ptr(),
		Discount:        req.Discount,
		AmountCollected: req.AmountCollected,
		PaymentMode:     req.PaymentMode,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Membership renewed", gin.H{
		"member":      mapMember(&result.MemberWithPlan),
		"renewalType": result.RenewalType,
		"history":     result.History,
	})
}

// RecordDuePayment godoc
// @Summary Collect part or all of a member's due
// @Tags Member
// @Security BearerAuth
// @Router /member/payment [post]
func (h *MemberHandler) RecordDuePayment(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req DuePaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	id, ok := parseObjectID(c, "memberId", req.MemberID)
	if !ok {
		return
	}

	member, err := h.memberService.RecordDuePayment(c.Request.Context(), actor, service.DuePaymentInput{
		MemberRecordID: id,
		Amount:         req.Amount,
		PaymentMode:    req.PaymentMode,
		Description:    req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Payment recorded", gin.H{"member": mapMember(member)})
}

// MembershipHistory lists the member's terms, newest first.
func (h *MemberHandler) MembershipHistory(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := objectIDQuery(c, "memberId")
	if !ok {
		return
	}
	history, err := h.memberService.MembershipHistory(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"history": history})
}

// PhotoUploadURL godoc
// @Summary Presigned URL to upload a member photo
// @Description The returned objectKey is saved on the member with PUT /member {image}.
// @Tags Member
// @Security BearerAuth
// @Router /member/photo [post]
func (h *MemberHandler) PhotoUploadURL(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req PhotoUploadRequest
	if !bindJSON(c, &req) {
		return
	}
	id, ok := parseObjectID(c, "memberId", req.MemberID)
	if !ok {
		return
	}
	upload, err := h.memberService.PhotoUploadURL(c.Request.Context(), actor, id, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"upload": upload})
}
