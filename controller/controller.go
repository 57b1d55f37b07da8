package controller

import (
	"net/http"
	"voluntariado-backend/middelware"
	"voluntariado-backend/models"
	"voluntariado-backend/services"
	"voluntariado-backend/utils/logger"
	"voluntariado-backend/utils/swagger"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	User           *UserController
	Organization   *OrganizationController
	Opportunity    *OpportunityController
	Application    *ApplicationController
	Notification   *NotificationController
	Message        *MessageController
	Donation       *DonationController
	Catalog        *CatalogController
	Admin          *AdminController
	Infrastructure *InfrastructureController
	Realtime       *RealtimeController

	jwt        *middelware.JWTManager
	config     *models.Config
	uploadsDir string
}

func NewController(svc services.ServiceContainerInterface, jwt *middelware.JWTManager, hub Subscriber, cfg *models.Config, log logger.Logger) *Controller {
	return &Controller{
		User:           NewUserController(svc, jwt, log),
		Organization:   NewOrganizationController(svc, log),
		Opportunity:    NewOpportunityController(svc, log),
		Application:    NewApplicationController(svc, log),
		Notification:   NewNotificationController(svc, log),
		Message:        NewMessageController(svc, log),
		Donation:       NewDonationController(svc, log),
		Catalog:        NewCatalogController(svc, log),
		Admin:          NewAdminController(svc, log),
		Infrastructure: NewInfrastructureController(svc, log),
		Realtime:       NewRealtimeController(hub, log),
		jwt:            jwt,
		config:         cfg,
	}
}

// ServeUploads exposes locally stored images under /uploads
func (c *Controller) ServeUploads(dir string) {
	c.uploadsDir = dir
}

func (c *Controller) RegisterRoutes(r *gin.Engine) {
	api := r.Group(c.config.BasePath)
	auth := c.jwt.AuthMiddleware()

	// Health check endpoint (no auth required)
	api.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": c.config.AppVersion,
			"service": c.config.AppName,
		})
	})

	// Swagger UI with login form
	swaggerConfig := swagger.SwaggerConfig{
		Title:         c.config.AppName + " API",
		SwaggerDocURL: "/swagger/doc.json",
		AuthURL:       c.config.BasePath + "/auth/login",
	}
	r.GET("/swagger", swagger.ServeSwaggerUI(swaggerConfig))
	r.GET("/swagger/index.html", swagger.ServeSwaggerUI(swaggerConfig))
	r.GET("/swagger/doc.json", swagger.ServeDoc())

	if c.uploadsDir != "" {
		r.Static("/uploads", c.uploadsDir)
	}

	authGroup := api.Group("/auth")
	authGroup.POST("/register", c.User.Register)
	authGroup.POST("/login", c.User.Login)
	authGroup.POST("/logout", auth, c.User.Logout)
	authGroup.GET("/me", auth, c.User.Me)

	users := api.Group("/users")
	users.GET("/me", auth, c.User.GetProfile)
	users.PUT("/me", auth, c.User.UpdateProfile)
	users.POST("/me/avatar", auth, c.User.UploadAvatar)
	users.POST("/me/skills", auth, c.User.AddSkill)
	users.DELETE("/me/skills/:skillId", auth, c.User.RemoveSkill)
	users.GET("/:id", c.User.GetUser)
	users.GET("/:id/activities", c.User.GetUserActivities)
	users.GET("/:id/badges", c.User.GetUserBadges)
	users.GET("/:id/skills", c.User.GetUserSkills)

	orgs := api.Group("/organizations")
	orgs.GET("", c.Organization.GetOrganizations)
	orgs.GET("/:id", c.Organization.GetOrganization)
	orgs.GET("/:id/transparency", c.Organization.GetTransparency)
	myOrg := orgs.Group("/me", auth, c.jwt.OrganizacionOnly())
	myOrg.GET("", c.Organization.GetMyOrganization)
	myOrg.PUT("", c.Organization.UpdateOrganization)
	myOrg.POST("/logo", c.Organization.UploadLogo)
	myOrg.GET("/opportunities", c.Organization.GetMyOpportunities)
	myOrg.POST("/expenses", c.Organization.CreateExpense)
	myOrg.GET("/expenses", c.Organization.GetExpenses)
	myOrg.DELETE("/expenses/:id", c.Organization.DeleteExpense)
	myOrg.POST("/reports", c.Organization.GenerateReport)
	myOrg.GET("/reports", c.Organization.GetReports)
	myOrg.GET("/donations", c.Organization.GetMyDonations)

	opportunities := api.Group("/opportunities")
	opportunities.GET("", c.Opportunity.GetOpportunities)
	opportunities.GET("/:id", c.jwt.OptionalAuth(), c.Opportunity.GetOpportunity)
	opportunities.POST("", auth, c.jwt.OrganizacionOnly(), c.Opportunity.CreateOpportunity)
	opportunities.PUT("/:id", auth, c.jwt.OrganizacionOnly(), c.Opportunity.UpdateOpportunity)
	opportunities.DELETE("/:id", auth, c.jwt.OrganizacionOnly(), c.Opportunity.DeleteOpportunity)
	opportunities.POST("/:id/image", auth, c.jwt.OrganizacionOnly(), c.Opportunity.UploadImage)

	// Application workflow
	api.POST("/apply/:opportunityId", auth, c.jwt.VoluntarioOnly(), c.Application.Apply)
	api.GET("/my-applications", auth, c.jwt.VoluntarioOnly(), c.Application.GetMyApplications)
	applications := api.Group("/applications")
	applications.GET("", auth, c.jwt.OrganizacionOnly(), c.Application.GetApplications)
	applications.GET("/:id", auth, c.Application.GetApplication)
	applications.PUT("/:id/status", auth, c.jwt.OrganizacionOnly(), c.Application.UpdateStatus)
	applications.POST("/:id/withdraw", auth, c.jwt.VoluntarioOnly(), c.Application.Withdraw)

	notifications := api.Group("/notifications", auth)
	notifications.GET("", c.Notification.GetNotifications)
	notifications.GET("/unread-count", c.Notification.GetUnreadCount)
	notifications.PUT("/read-all", c.Notification.MarkAllAsRead)
	notifications.PUT("/:id/read", c.Notification.MarkAsRead)
	notifications.DELETE("/:id", c.Notification.DeleteNotification)

	messages := api.Group("/messages", auth)
	messages.POST("", c.Message.SendMessage)
	messages.GET("/conversations", c.Message.GetConversations)
	messages.GET("/conversations/:conversationId", c.Message.GetMessages)
	messages.PUT("/conversations/:conversationId/read", c.Message.MarkAsRead)
	messages.GET("/search", c.Message.SearchMessages)
	messages.PUT("/:id", c.Message.EditMessage)
	messages.DELETE("/:id", c.Message.DeleteMessage)

	donations := api.Group("/donations")
	donations.POST("/orders", c.jwt.OptionalAuth(), c.Donation.CreateOrder)
	donations.POST("/orders/:orderId/capture", c.Donation.CaptureOrder)
	donations.POST("/webhook", c.Donation.Webhook)
	donations.GET("/mine", auth, c.Donation.GetMyDonations)

	api.GET("/badges", c.Catalog.GetBadges)
	api.GET("/skills", c.Catalog.GetSkills)

	admin := api.Group("/admin", auth, c.jwt.AdminOnly())
	admin.GET("/stats", c.Admin.GetStats)
	admin.GET("/users", c.Admin.GetUsers)
	admin.PUT("/users/:id/status", c.Admin.UpdateUserStatus)
	admin.PUT("/organizations/:id/verify", c.Admin.VerifyOrganization)
	admin.DELETE("/opportunities/:id", c.Admin.DeleteOpportunity)
	admin.POST("/badges", c.Catalog.CreateBadge)
	admin.DELETE("/badges/:id", c.Catalog.DeleteBadge)
	admin.POST("/badges/:id/award", c.Catalog.AwardBadge)
	admin.POST("/skills", c.Catalog.CreateSkill)
	admin.DELETE("/skills/:id", c.Catalog.DeleteSkill)
	admin.GET("/worker/status", c.Infrastructure.GetWorkerStatus)
	admin.POST("/worker/restart", c.Infrastructure.RestartWorker)
	admin.GET("/worker/health", c.Infrastructure.CheckWorkerHealth)

	api.GET("/realtime/stream", auth, c.Realtime.Stream)
}
