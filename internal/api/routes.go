package api

import (
	"net/http"

	"alcyxob/gym-manager/internal/config"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Services groups everything the HTTP layer calls into.
type Services struct {
	Auth         service.AuthService
	Gym          service.GymService
	Plan         service.PlanService
	Member       service.MemberService
	Analytics    service.AnalyticsService
	Transaction  service.TransactionService
	Manager      service.ManagerService
	Subscription service.SubscriptionService
}

func SetupRoutes(router *gin.Engine, svc Services, rateLimit config.RateLimitConfig, logger *zerolog.Logger) {
	authHandler := NewAuthHandler(svc.Auth)
	gymHandler := NewGymHandler(svc.Gym, svc.Subscription)
	planHandler := NewPlanHandler(svc.Plan)
	memberHandler := NewMemberHandler(svc.Member)
	analyticsHandler := NewAnalyticsHandler(svc.Analytics, svc.Transaction)
	managerHandler := NewManagerHandler(svc.Manager)

	router.Use(Recovery(), RequestLogger(logger), RateLimitMiddleware(rateLimit))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/signup", authHandler.Signup)
			authGroup.POST("/signin", authHandler.Signin)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(svc.Auth))
	{
		protected.GET("/auth/me", authHandler.Me)

		userGroup := protected.Group("/user")
		{
			userGroup.GET("/profile", authHandler.Profile)
			userGroup.PUT("/profile", authHandler.UpdateProfile)
			userGroup.DELETE("/profile", authHandler.DeleteAccount)
			userGroup.PUT("/password", authHandler.ChangePassword)
		}

		protected.POST("/gym", RoleMiddleware(domain.RoleOwner), gymHandler.CreateGym)
		protected.GET("/gym", gymHandler.ListGyms)

		protected.GET("/subscription", gymHandler.GetSubscription)
		protected.POST("/subscription", RoleMiddleware(domain.RoleOwner), gymHandler.ActivateSubscription)

		memberGroup := protected.Group("/member")
		{
			memberGroup.POST("", memberHandler.EnrollMember)
			memberGroup.GET("", memberHandler.ListMembers)
			memberGroup.PUT("", memberHandler.UpdateMember)
			memberGroup.DELETE("", memberHandler.DeleteMember)
			memberGroup.GET("/detail", memberHandler.GetMember)
			memberGroup.POST("/renew", memberHandler.RenewMember)
			memberGroup.POST("/payment", memberHandler.RecordDuePayment)
			memberGroup.GET("/history", memberHandler.MembershipHistory)
			memberGroup.POST("/photo", memberHandler.PhotoUploadURL)
		}

		protected.GET("/analytics", analyticsHandler.Dashboard)
		protected.GET("/transaction", analyticsHandler.ListTransactions)

		// Plans: owner-only writes are enforced per gym by the service.
		planGroup := protected.Group("/plan")
		{
			planGroup.POST("", planHandler.CreatePlan)
			planGroup.GET("", planHandler.ListPlans)
			planGroup.PUT("", planHandler.UpdatePlan)
			planGroup.DELETE("", planHandler.DeletePlan)
		}

		managerGroup := protected.Group("/manager")
		managerGroup.Use(RoleMiddleware(domain.RoleOwner))
		{
			managerGroup.POST("", managerHandler.CreateManager)
			managerGroup.GET("", managerHandler.ListManagers)
			managerGroup.PUT("", managerHandler.UpdateManager)
			managerGroup.DELETE("", managerHandler.DeleteManager)
		}
	}
}
