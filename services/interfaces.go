package services

import (
	"context"
	"io"
	"net/http"
	"voluntariado-backend/models"
)

// AuthServiceInterface defines the contract for account registration and login
type AuthServiceInterface interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Me(ctx context.Context, userID int64) (*models.UserDto, error)
}

// UserServiceInterface defines the contract for profiles and admin user management
type UserServiceInterface interface {
	GetProfile(ctx context.Context, userID int64) (*models.UserDto, error)
	UpdateProfile(ctx context.Context, userID int64, req *models.UpdateProfileRequest) (*models.UserDto, error)
	GetPublicProfile(ctx context.Context, userID int64) (*models.PublicProfile, error)
	UploadAvatar(ctx context.Context, userID int64, file *models.ImageFile) (*models.UserDto, error)
	GetUsers(ctx context.Context, filter models.UserFilter) (models.PagedResult[*models.UserDto], error)
	UpdateUserStatus(ctx context.Context, userID int64, status models.UserStatus) (*models.UserDto, error)
}

// OrganizationServiceInterface defines the contract for organization profiles
type OrganizationServiceInterface interface {
	GetOrganizations(ctx context.Context, page models.Pagination) (models.PagedResult[*models.Organization], error)
	GetOrganizationByID(ctx context.Context, id int64) (*models.Organization, error)
	GetOrganizationByUserID(ctx context.Context, userID int64) (*models.Organization, error)
	UpdateOrganization(ctx context.Context, orgID int64, req *models.UpdateOrganizationRequest) (*models.Organization, error)
	VerifyOrganization(ctx context.Context, orgID int64, verified bool) (*models.Organization, error)
	UploadLogo(ctx context.Context, orgID int64, file *models.ImageFile) (*models.Organization, error)
}

// OpportunityServiceInterface defines the contract for opportunity postings
type OpportunityServiceInterface interface {
	GetAll(ctx context.Context, filter models.OpportunityFilter) (models.PagedResult[models.OpportunityListDto], error)
	GetByID(ctx context.Context, id int64, viewerID int64) (*models.OpportunityDetailDto, error)
	Create(ctx context.Context, req *models.CreateOpportunityRequest, orgID int64) (*models.Opportunity, error)
	Update(ctx context.Context, id int64, req *models.UpdateOpportunityRequest, orgID int64) (*models.Opportunity, error)
	Delete(ctx context.Context, id int64, orgID int64) error
	AdminDelete(ctx context.Context, id int64) error
	ListByOrganization(ctx context.Context, orgID int64) ([]models.OpportunityListDto, error)
	UploadImage(ctx context.Context, id int64, orgID int64, file *models.ImageFile) (*models.Opportunity, error)
}

// ApplicationServiceInterface defines the contract for the application workflow
type ApplicationServiceInterface interface {
	Apply(ctx context.Context, opportunityID, userID int64, req *models.ApplyRequest) (*models.Application, error)
	UpdateStatus(ctx context.Context, applicationID int64, req *models.UpdateApplicationStatusRequest, orgID int64) (*models.Application, error)
	Withdraw(ctx context.Context, applicationID, userID int64) (*models.Application, error)
	GetByID(ctx context.Context, applicationID int64, claims *models.JWTClaims) (*models.ApplicationDto, error)
	GetMyApplications(ctx context.Context, userID int64, filter models.ApplicationFilter) (models.PagedResult[*models.ApplicationDto], error)
	GetOrganizationApplications(ctx context.Context, orgID int64, filter models.ApplicationFilter) (models.PagedResult[*models.ApplicationDto], error)
}

// BadgeServiceInterface defines the contract for activities, the badge catalog and awards
type BadgeServiceInterface interface {
	CheckAndAwardAutomaticBadges(ctx context.Context, userID int64) ([]*models.Badge, error)
	AwardBadge(ctx context.Context, userID, badgeID int64, reason string, awardedBy int64) (bool, error)
	SweepAutomaticBadges(ctx context.Context) (int, error)
	SeedDefaultBadges(ctx context.Context) error
	GetUserActivities(ctx context.Context, userID int64) ([]*models.ActivityDto, error)
	GetUserBadges(ctx context.Context, userID int64) ([]*models.UsuarioBadgeDto, error)
	GetBadges(ctx context.Context) ([]*models.Badge, error)
	CreateBadge(ctx context.Context, req *models.CreateBadgeRequest) (*models.Badge, error)
	DeleteBadge(ctx context.Context, id int64) error
}

// SkillServiceInterface defines the contract for the skill catalog and user skills
type SkillServiceInterface interface {
	GetSkills(ctx context.Context) ([]*models.Skill, error)
	CreateSkill(ctx context.Context, req *models.CreateSkillRequest) (*models.Skill, error)
	DeleteSkill(ctx context.Context, id int64) error
	AddUserSkill(ctx context.Context, userID int64, req *models.AddUserSkillRequest) (*models.UsuarioSkillDto, error)
	RemoveUserSkill(ctx context.Context, userID, skillID int64) error
	GetUserSkills(ctx context.Context, userID int64) ([]*models.UsuarioSkillDto, error)
}

// NotificationServiceInterface defines the contract for notifications
type NotificationServiceInterface interface {
	CreateNotification(ctx context.Context, req *models.CreateNotificationRequest) (*models.Notification, error)
	CreateBulkNotifications(ctx context.Context, reqs []*models.CreateNotificationRequest) ([]*models.Notification, error)
	GetNotifications(ctx context.Context, userID int64, filter models.NotificationFilter) (models.PagedResult[*models.Notification], error)
	GetUnreadCount(ctx context.Context, userID int64) (*models.UnreadCount, error)
	MarkAsRead(ctx context.Context, userID, id int64) error
	MarkAllAsRead(ctx context.Context, userID int64) (int, error)
	Delete(ctx context.Context, userID, id int64) error
}

// MessageServiceInterface defines the contract for direct messaging
type MessageServiceInterface interface {
	SendMessage(ctx context.Context, senderID int64, req *models.SendMessageRequest) (*models.Message, error)
	GetConversations(ctx context.Context, userID int64) ([]*models.ConversationDto, error)
	GetMessages(ctx context.Context, userID int64, conversationID string, page models.Pagination) (models.PagedResult[*models.Message], error)
	MarkMessagesAsRead(ctx context.Context, userID int64, conversationID string) (int, error)
	EditMessage(ctx context.Context, userID, messageID int64, req *models.EditMessageRequest) (*models.Message, error)
	DeleteMessage(ctx context.Context, userID, messageID int64) (*models.Message, error)
	SearchMessages(ctx context.Context, userID int64, term string) ([]*models.Message, error)
}

// FinanceServiceInterface defines the contract for expenses and transparency reports
type FinanceServiceInterface interface {
	CreateExpense(ctx context.Context, orgID int64, req *models.CreateExpenseRequest) (*models.Expense, error)
	GetExpenses(ctx context.Context, orgID int64) ([]*models.Expense, error)
	DeleteExpense(ctx context.Context, orgID, expenseID int64) error
	GenerateReport(ctx context.Context, orgID int64, year, quarter int) (*models.FinancialReport, error)
	GetReports(ctx context.Context, orgID int64) ([]*models.FinancialReport, error)
	GetTransparency(ctx context.Context, orgID int64) (*models.TransparencyView, error)
	GeneratePreviousQuarterReports(ctx context.Context) (int, error)
}

// DonationServiceInterface defines the contract for PayPal donations
type DonationServiceInterface interface {
	CreateOrder(ctx context.Context, donorID int64, req *models.CreateDonationRequest) (*models.DonationOrder, error)
	CaptureOrder(ctx context.Context, orderID string) (*models.Donation, error)
	HandleWebhook(ctx context.Context, headers http.Header, body []byte) error
	GetOrganizationDonations(ctx context.Context, orgID int64) ([]*models.Donation, error)
	GetMyDonations(ctx context.Context, donorID int64) ([]*models.Donation, error)
}

// AdminServiceInterface defines the contract for platform statistics
type AdminServiceInterface interface {
	GetStats(ctx context.Context) (*models.AdminStats, error)
}

// InfrastructureServiceInterface defines the contract for worker health endpoints
type InfrastructureServiceInterface interface {
	GetWorkerStatus(ctx context.Context) (*models.ExecutionResult, error)
	RestartWorker(ctx context.Context, force bool) (*models.ServiceRestartResult, error)
	IsWorkerHealthy() (bool, string, error)
}

// ServiceContainerInterface defines the main service container contract
type ServiceContainerInterface interface {
	GetAuthService() AuthServiceInterface
	GetUserService() UserServiceInterface
	GetOrganizationService() OrganizationServiceInterface
	GetOpportunityService() OpportunityServiceInterface
	GetApplicationService() ApplicationServiceInterface
	GetBadgeService() BadgeServiceInterface
	GetSkillService() SkillServiceInterface
	GetNotificationService() NotificationServiceInterface
	GetMessageService() MessageServiceInterface
	GetFinanceService() FinanceServiceInterface
	GetDonationService() DonationServiceInterface
	GetAdminService() AdminServiceInterface
	GetInfrastructureService() InfrastructureServiceInterface
}

// TokenIssuer signs access tokens for authenticated users
type TokenIssuer interface {
	GenerateToken(user *models.User, orgID int64) (string, error)
}

// RealtimePublisher pushes events to users with an open stream
type RealtimePublisher interface {
	Publish(userID int64, event string, payload interface{}) bool
	IsOnline(userID int64) bool
}

// Mailer sends transactional e-mail
type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, body string) error
}

// ImageStorage stores validated images and returns their public URL
type ImageStorage interface {
	Upload(ctx context.Context, folder, publicID string, content io.Reader) (string, error)
}

// PaymentGateway is the PayPal checkout collaborator
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount models.Money, currency, description, requestID string) (*models.PaymentOrder, error)
	CaptureOrder(ctx context.Context, orderID, requestID string) (*models.PaymentCapture, error)
	VerifyWebhook(ctx context.Context, headers http.Header, body []byte) (*models.WebhookEvent, error)
}
