package repository

import (
	"context"
	"time"
	"voluntariado-backend/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	CreateOrganizationAccount(ctx context.Context, user *models.User, org *models.Organization) (*models.User, *models.Organization, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context) ([]*models.User, error)
	GetUsersByRole(ctx context.Context, role models.UserRole) ([]*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) (*models.User, error)
	UpdateStatus(ctx context.Context, id int64, status models.UserStatus, at time.Time) (*models.User, error)
	SetProfilePhoto(ctx context.Context, id int64, url string, at time.Time) (*models.User, error)
	RecordLogin(ctx context.Context, id int64, at time.Time) error
}

// OrganizationRepositoryInterface defines the contract for the organization repository
type OrganizationRepositoryInterface interface {
	GetOrganizationByID(ctx context.Context, id int64) (*models.Organization, error)
	GetOrganizationByUserID(ctx context.Context, userID int64) (*models.Organization, error)
	GetOrganizations(ctx context.Context) ([]*models.Organization, error)
	UpdateOrganization(ctx context.Context, org *models.Organization) (*models.Organization, error)
	SetVerified(ctx context.Context, id int64, verified bool, at time.Time) (*models.Organization, error)
	SetLogo(ctx context.Context, id int64, url string, at time.Time) (*models.Organization, error)
}

// OpportunityRepositoryInterface defines the contract for opportunity repository operations
type OpportunityRepositoryInterface interface {
	CreateOpportunity(ctx context.Context, opp *models.Opportunity) (*models.Opportunity, error)
	GetOpportunityByID(ctx context.Context, id int64) (*models.Opportunity, error)
	GetOpportunities(ctx context.Context) ([]*models.Opportunity, error)
	GetOpportunitiesByOrganization(ctx context.Context, orgID int64) ([]*models.Opportunity, error)
	UpdateOpportunity(ctx context.Context, opp *models.Opportunity) (*models.Opportunity, error)
	SetImage(ctx context.Context, id int64, url string, at time.Time) (*models.Opportunity, error)
	DeleteOpportunity(ctx context.Context, id int64) error
}

// ApplicationRepositoryInterface defines the contract for the application workflow store
type ApplicationRepositoryInterface interface {
	Apply(ctx context.Context, app *models.Application) (*models.Application, error)
	GetApplicationByID(ctx context.Context, id int64) (*models.Application, error)
	HasApplied(ctx context.Context, userID, opportunityID int64) (bool, error)
	GetApplicationsByUser(ctx context.Context, userID int64) ([]*models.Application, error)
	GetApplicationsByOpportunity(ctx context.Context, opportunityID int64) ([]*models.Application, error)
	GetApplicationsByOrganization(ctx context.Context, orgID int64) ([]*models.Application, error)
	GetApplications(ctx context.Context) ([]*models.Application, error)
	Accept(ctx context.Context, app *models.Application, activity *models.VolunteerActivity) error
	Reject(ctx context.Context, app *models.Application) error
	Withdraw(ctx context.Context, app *models.Application, from models.ApplicationStatus, activity *models.VolunteerActivity) error
	Complete(ctx context.Context, app *models.Application, activity *models.VolunteerActivity, createActivity bool) error
}

// ActivityRepositoryInterface defines the contract for volunteer activity reads
type ActivityRepositoryInterface interface {
	GetActivityByID(ctx context.Context, id int64) (*models.VolunteerActivity, error)
	GetActivityByApplication(ctx context.Context, applicationID int64) (*models.VolunteerActivity, error)
	GetActivitiesByUser(ctx context.Context, userID int64) ([]*models.VolunteerActivity, error)
	NextActivityID(ctx context.Context) (int64, error)
}

// BadgeRepositoryInterface defines the contract for the badge catalog and awards
type BadgeRepositoryInterface interface {
	CreateBadge(ctx context.Context, badge *models.Badge) (*models.Badge, error)
	GetBadgeByID(ctx context.Context, id int64) (*models.Badge, error)
	GetBadges(ctx context.Context) ([]*models.Badge, error)
	DeleteBadge(ctx context.Context, id int64) error
	AwardBadge(ctx context.Context, award *models.UsuarioBadge) error
	GetUserBadges(ctx context.Context, userID int64) ([]*models.UsuarioBadge, error)
	GetAllAwards(ctx context.Context) ([]*models.UsuarioBadge, error)
}

// SkillRepositoryInterface defines the contract for the skill catalog and user skills
type SkillRepositoryInterface interface {
	CreateSkill(ctx context.Context, skill *models.Skill) (*models.Skill, error)
	GetSkillByID(ctx context.Context, id int64) (*models.Skill, error)
	GetSkills(ctx context.Context) ([]*models.Skill, error)
	DeleteSkill(ctx context.Context, id int64) error
	SaveUserSkill(ctx context.Context, us *models.UsuarioSkill) error
	DeleteUserSkill(ctx context.Context, userID, skillID int64) error
	GetUserSkills(ctx context.Context, userID int64) ([]*models.UsuarioSkill, error)
}

// NotificationRepositoryInterface defines the contract for notification storage
type NotificationRepositoryInterface interface {
	CreateNotification(ctx context.Context, n *models.Notification) (*models.Notification, error)
	CreateNotifications(ctx context.Context, ns []*models.Notification) ([]*models.Notification, error)
	GetNotificationsByUser(ctx context.Context, userID int64) ([]*models.Notification, error)
	MarkAsRead(ctx context.Context, userID, id int64, at time.Time) error
	MarkManyAsRead(ctx context.Context, userID int64, ids []int64, at time.Time) error
	DeleteNotification(ctx context.Context, userID, id int64) error
}

// MessageRepositoryInterface defines the contract for conversations and messages
type MessageRepositoryInterface interface {
	SendMessage(ctx context.Context, msg *models.Message, conv *models.Conversation, newConversation bool) (*models.Message, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	GetConversationsByUser(ctx context.Context, userID int64) ([]*models.Conversation, error)
	GetMessageByID(ctx context.Context, id int64) (*models.Message, error)
	GetMessagesByConversation(ctx context.Context, conversationID string) ([]*models.Message, error)
	EditMessage(ctx context.Context, msg *models.Message, content string, at time.Time) (*models.Message, error)
	SoftDeleteMessage(ctx context.Context, msg *models.Message, at time.Time) (*models.Message, error)
	MarkConversationRead(ctx context.Context, conv *models.Conversation, userID int64, messageIDs []int64, at time.Time) error
}

// FinanceRepositoryInterface defines the contract for donations, expenses and reports
type FinanceRepositoryInterface interface {
	CreateDonation(ctx context.Context, d *models.Donation) (*models.Donation, error)
	GetDonationByID(ctx context.Context, id int64) (*models.Donation, error)
	GetDonationByOrderID(ctx context.Context, orderID string) (*models.Donation, error)
	GetDonationsByOrganization(ctx context.Context, orgID int64) ([]*models.Donation, error)
	GetDonationsByDonor(ctx context.Context, donorID int64) ([]*models.Donation, error)
	GetDonations(ctx context.Context) ([]*models.Donation, error)
	SettleDonation(ctx context.Context, d *models.Donation, captureID string, at time.Time) error
	FailDonation(ctx context.Context, d *models.Donation) error
	RefundDonation(ctx context.Context, d *models.Donation) error

	CreateExpense(ctx context.Context, e *models.Expense) (*models.Expense, error)
	GetExpenseByID(ctx context.Context, id int64) (*models.Expense, error)
	GetExpensesByOrganization(ctx context.Context, orgID int64) ([]*models.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error

	SaveReport(ctx context.Context, report *models.FinancialReport) (*models.FinancialReport, error)
	GetReportsByOrganization(ctx context.Context, orgID int64) ([]*models.FinancialReport, error)
}

// RepositoryContainerInterface defines the contract for the repository container
type RepositoryContainerInterface interface {
	GetUserRepository() UserRepositoryInterface
	GetOrganizationRepository() OrganizationRepositoryInterface
	GetOpportunityRepository() OpportunityRepositoryInterface
	GetApplicationRepository() ApplicationRepositoryInterface
	GetActivityRepository() ActivityRepositoryInterface
	GetBadgeRepository() BadgeRepositoryInterface
	GetSkillRepository() SkillRepositoryInterface
	GetNotificationRepository() NotificationRepositoryInterface
	GetMessageRepository() MessageRepositoryInterface
	GetFinanceRepository() FinanceRepositoryInterface
}
