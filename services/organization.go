package services

import (
	"context"
	"strings"
	"time"
	"voluntariado-backend/models"
	"voluntariado-backend/repository"
	"voluntariado-backend/utils/logger"
)

type OrganizationService struct {
	organizationRepo repository.OrganizationRepositoryInterface
	notifications    *NotificationService
	storage          ImageStorage
	config           *models.Config
	logger           logger.Logger
	now              func() time.Time
}

func NewOrganizationService(organizationRepo repository.OrganizationRepositoryInterface, notifications *NotificationService, storage ImageStorage, config *models.Config, logger logger.Logger, now func() time.Time) *OrganizationService {
	return &OrganizationService{
		organizationRepo: organizationRepo,
		notifications:    notifications,
		storage:          storage,
		config:           config,
		logger:           logger,
		now:              now,
	}
}

func (s *OrganizationService) GetOrganizations(ctx context.Context, page models.Pagination) (models.PagedResult[*models.Organization], error) {
	orgs, err := s.organizationRepo.GetOrganizations(ctx)
	if err != nil {
		return models.PagedResult[*models.Organization]{}, err
	}
	return models.Paginate(orgs, page), nil
}

func (s *OrganizationService) GetOrganizationByID(ctx context.Context, id int64) (*models.Organization, error) {
	return s.organizationRepo.GetOrganizationByID(ctx, id)
}

func (s *OrganizationService) GetOrganizationByUserID(ctx context.Context, userID int64) (*models.Organization, error) {
	return s.organizationRepo.GetOrganizationByUserID(ctx, userID)
}

func (s *OrganizationService) UpdateOrganization(ctx context.Context, orgID int64, req *models.UpdateOrganizationRequest) (*models.Organization, error) {
	org, err := s.organizationRepo.GetOrganizationByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if req.Nombre != nil {
		org.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Descripcion != nil {
		org.Descripcion = *req.Descripcion
	}
	if req.Telefono != nil {
		org.Telefono = strings.TrimSpace(*req.Telefono)
	}
	if req.Direccion != nil {
		org.Direccion = strings.TrimSpace(*req.Direccion)
	}
	if req.SitioWeb != nil {
		org.SitioWeb = strings.TrimSpace(*req.SitioWeb)
	}
	if org.Nombre == "" {
		return nil, models.NewValidationError("invalid organization", models.FieldError{Field: "nombre", Error: "cannot be empty"})
	}
	org.FechaActualizacion = s.now()

	return s.organizationRepo.UpdateOrganization(ctx, org)
}

// VerifyOrganization sets the verification flag and tells the owner when it is granted
func (s *OrganizationService) VerifyOrganization(ctx context.Context, orgID int64, verified bool) (*models.Organization, error) {
	org, err := s.organizationRepo.SetVerified(ctx, orgID, verified, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Infof("Organization %d verified=%t", orgID, verified)
	if verified {
		s.notifications.notify(ctx, org.UsuarioID, models.NotificationOrganizacionVerificada,
			"Organización verificada", "Tu organización "+org.Nombre+" fue verificada.", "/organizations/me", nil)
	}
	return org, nil
}

func (s *OrganizationService) UploadLogo(ctx context.Context, orgID int64, file *models.ImageFile) (*models.Organization, error) {
	url, err := storeImage(ctx, s.storage, file, s.config.UploadMaxBytes, "logos")
	if err != nil {
		return nil, err
	}
	return s.organizationRepo.SetLogo(ctx, orgID, url, s.now())
}
