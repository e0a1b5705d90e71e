package api

import (
	"net/http"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsService   service.AnalyticsService
	transactionService service.TransactionService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService, transactionService service.TransactionService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, transactionService: transactionService}
}

// Dashboard godoc
// @Summary Gym dashboard: member stats, today's revenue, recent transactions
// @Tags Analytics
// @Security BearerAuth
// @Param gymId query string true "Gym ID"
// @Router /analytics [get]
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	gymID, ok := objectIDQuery(c, "gymId")
	if !ok {
		return
	}
	d, err := h.analyticsService.ComputeDashboard(c.Request.Context(), actor, gymID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{
		"stats":              d.Stats,
		"revenue":            d.Revenue,
		"recentTransactions": d.RecentTransactions,
		"generatedAt":        d.GeneratedAt,
	})
}

// ListTransactions godoc
// @Summary Ledger entries of a gym, newest first
// @Tags Analytics
// @Security BearerAuth
// @Param gymId query string true "Gym ID"
// @Param from query string false "YYYY-MM-DD, inclusive"
// @Param to query string false "YYYY-MM-DD, inclusive"
// @Param type query string false "admission, renewal, due_payment or refund"
// @Router /transaction [get]
func (h *AnalyticsHandler) ListTransactions(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	gymID, ok := objectIDQuery(c, "gymId")
	if !ok {
		return
	}
	from, ok := dateQuery(c, "from", false)
	if !ok {
		return
	}
	to, ok := dateQuery(c, "to", true)
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

	result, err := h.transactionService.ListTransactions(c.Request.Context(), actor, service.ListTransactionsInput{
		GymID: gymID,
		From:  from,
		To:    to,
		Type:  domain.TransactionType(c.Query("type")),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"transactions": result.Transactions, "pagination": result.Pagination})
}
