package services

import (
	"time"
	"voluntariado-backend/models"
	"voluntariado-backend/repository"
	"voluntariado-backend/utils/logger"
)

// Collaborators are the external adapters the services depend on
type Collaborators struct {
	Tokens   TokenIssuer
	Realtime RealtimePublisher
	Mailer   Mailer
	Storage  ImageStorage
	Payments PaymentGateway
	Worker   WorkerControl
	Now      func() time.Time
}

// Service implements ServiceContainerInterface
type Service struct {
	authService           *AuthService
	userService           *UserService
	organizationService   *OrganizationService
	opportunityService    *OpportunityService
	applicationService    *ApplicationService
	badgeService          *BadgeService
	skillService          *SkillService
	notificationService   *NotificationService
	messageService        *MessageService
	financeService        *FinanceService
	donationService       *DonationService
	adminService          *AdminService
	infrastructureService *InfrastructureService
}

// NewService creates a new service container with all dependencies injected
func NewService(
	repoContainer repository.RepositoryContainerInterface,
	collab Collaborators,
	logger logger.Logger,
	config *models.Config,
) *Service {
	now := collab.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	notifications := NewNotificationService(repoContainer.GetNotificationRepository(), collab.Realtime, logger, now)
	skills := NewSkillService(repoContainer.GetSkillRepository(), logger, now)
	badges := NewBadgeService(
		repoContainer.GetBadgeRepository(),
		repoContainer.GetActivityRepository(),
		repoContainer.GetOpportunityRepository(),
		repoContainer.GetUserRepository(),
		notifications, logger, now)

	return &Service{
		authService: NewAuthService(repoContainer.GetUserRepository(), repoContainer.GetOrganizationRepository(),
			collab.Tokens, collab.Mailer, config, logger, now),
		userService: NewUserService(repoContainer.GetUserRepository(), badges, skills, collab.Storage, config, logger, now),
		organizationService: NewOrganizationService(repoContainer.GetOrganizationRepository(), notifications,
			collab.Storage, config, logger, now),
		opportunityService: NewOpportunityService(repoContainer.GetOpportunityRepository(), repoContainer.GetOrganizationRepository(),
			repoContainer.GetApplicationRepository(), notifications, collab.Storage, config, logger, now),
		applicationService:  NewApplicationService(repoContainer, badges, notifications, collab.Mailer, logger, now),
		badgeService:        badges,
		skillService:        skills,
		notificationService: notifications,
		messageService: NewMessageService(repoContainer.GetMessageRepository(), repoContainer.GetUserRepository(),
			notifications, collab.Realtime, config, logger, now),
		financeService: NewFinanceService(repoContainer.GetFinanceRepository(), repoContainer.GetOrganizationRepository(), logger, now),
		donationService: NewDonationService(repoContainer.GetFinanceRepository(), repoContainer.GetOrganizationRepository(),
			repoContainer.GetUserRepository(), collab.Payments, notifications, logger, now),
		adminService:          NewAdminService(repoContainer, logger),
		infrastructureService: NewInfrastructureService(collab.Worker, logger, now),
	}
}

// AttachWorker sets the worker once it has been built from this container's jobs
func (s *Service) AttachWorker(w WorkerControl) {
	s.infrastructureService.worker = w
}

func (s *Service) GetAuthService() AuthServiceInterface { return s.authService }

func (s *Service) GetUserService() UserServiceInterface { return s.userService }

func (s *Service) GetOrganizationService() OrganizationServiceInterface {
	return s.organizationService
}

func (s *Service) GetOpportunityService() OpportunityServiceInterface {
	return s.opportunityService
}

func (s *Service) GetApplicationService() ApplicationServiceInterface {
	return s.applicationService
}

func (s *Service) GetBadgeService() BadgeServiceInterface { return s.badgeService }

func (s *Service) GetSkillService() SkillServiceInterface { return s.skillService }

func (s *Service) GetNotificationService() NotificationServiceInterface {
	return s.notificationService
}

func (s *Service) GetMessageService() MessageServiceInterface { return s.messageService }

func (s *Service) GetFinanceService() FinanceServiceInterface { return s.financeService }

func (s *Service) GetDonationService() DonationServiceInterface { return s.donationService }

func (s *Service) GetAdminService() AdminServiceInterface { return s.adminService }

// GetInfrastructureService returns the infrastructure service interface
func (s *Service) GetInfrastructureService() InfrastructureServiceInterface {
	return s.infrastructureService
}
