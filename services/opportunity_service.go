package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"voluntariado-backend/models"
	"voluntariado-backend/repository"
	"voluntariado-backend/utils/logger"
)

type OpportunityService struct {
	opportunityRepo  repository.OpportunityRepositoryInterface
	organizationRepo repository.OrganizationRepositoryInterface
	applicationRepo  repository.ApplicationRepositoryInterface
	notifications    *NotificationService
	storage          ImageStorage
	config           *models.Config
	logger           logger.Logger
	now              func() time.Time
}

func NewOpportunityService(
	opportunityRepo repository.OpportunityRepositoryInterface,
	organizationRepo repository.OrganizationRepositoryInterface,
	applicationRepo repository.ApplicationRepositoryInterface,
	notifications *NotificationService,
	storage ImageStorage,
	config *models.Config,
	logger logger.Logger,
	now func() time.Time,
) *OpportunityService {
	return &OpportunityService{
		opportunityRepo:  opportunityRepo,
		organizationRepo: organizationRepo,
		applicationRepo:  applicationRepo,
		notifications:    notifications,
		storage:          storage,
		config:           config,
		logger:           logger,
		now:              now,
	}
}

// GetAll filters opportunities, newest first, and returns one page of list rows
func (s *OpportunityService) GetAll(ctx context.Context, filter models.OpportunityFilter) (models.PagedResult[models.OpportunityListDto], error) {
	opps, err := s.opportunityRepo.GetOpportunities(ctx)
	if err != nil {
		return models.PagedResult[models.OpportunityListDto]{}, fmt.Errorf("failed to list opportunities: %w", err)
	}

	term := strings.ToLower(strings.TrimSpace(filter.SearchTerm))
	area := strings.TrimSpace(filter.AreaInteres)
	place := strings.ToLower(strings.TrimSpace(filter.Ubicacion))

	matched := make([]*models.Opportunity, 0, len(opps))
	for _, o := range opps {
		if term != "" && !strings.Contains(strings.ToLower(o.Titulo), term) &&
			!strings.Contains(strings.ToLower(o.Descripcion), term) {
			continue
		}
		if area != "" && !strings.EqualFold(o.AreaInteres, area) {
			continue
		}
		if place != "" && !strings.Contains(strings.ToLower(o.Ubicacion), place) {
			continue
		}
		if filter.Status != "" && o.Estado != filter.Status {
			continue
		}
		matched = append(matched, o)
	}
	sortNewestFirst(matched)

	rows := make([]models.OpportunityListDto, 0, len(matched))
	for _, o := range matched {
		rows = append(rows, o.ToListDto())
	}
	return models.Paginate(rows, filter.Pagination), nil
}

// GetByID returns the detail view. viewerID is 0 for anonymous callers.
func (s *OpportunityService) GetByID(ctx context.Context, id int64, viewerID int64) (*models.OpportunityDetailDto, error) {
	opp, err := s.opportunityRepo.GetOpportunityByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.OpportunityDetailDto{
		OpportunityListDto: opp.ToListDto(),
		Descripcion:        opp.Descripcion,
		Requisitos:         opp.Requisitos,
		Habilidades:        opp.Habilidades,
		CuposDisponibles:   opp.CuposDisponibles(),
	}
	if org, err := s.organizationRepo.GetOrganizationByID(ctx, opp.OrganizacionID); err == nil {
		detail.OrganizacionNombre = org.Nombre
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	if viewerID > 0 {
		applied, err := s.applicationRepo.HasApplied(ctx, viewerID, opp.ID)
		if err != nil {
			return nil, err
		}
		detail.YaAplico = applied
	}
	return detail, nil
}

func (s *OpportunityService) Create(ctx context.Context, req *models.CreateOpportunityRequest, orgID int64) (*models.Opportunity, error) {
	if err := validateSchedule(req.FechaInicio, req.FechaFin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Titulo) == "" || strings.TrimSpace(req.Descripcion) == "" {
		return nil, models.NewValidationError("titulo and descripcion are required")
	}
	if req.VoluntariosRequeridos <= 0 {
		return nil, models.NewValidationError("invalid capacity",
			models.FieldError{Field: "voluntariosRequeridos", Error: "must be greater than zero"})
	}
	if req.DuracionHoras < 0 {
		return nil, models.NewValidationError("invalid duration",
			models.FieldError{Field: "duracionHoras", Error: "cannot be negative"})
	}
	if _, err := s.organizationRepo.GetOrganizationByID(ctx, orgID); err != nil {
		return nil, err
	}

	now := s.now()
	opp := &models.Opportunity{
		OrganizacionID:        orgID,
		Titulo:                strings.TrimSpace(req.Titulo),
		Descripcion:           strings.TrimSpace(req.Descripcion),
		Requisitos:            req.Requisitos,
		Habilidades:           req.Habilidades,
		AreaInteres:           strings.TrimSpace(req.AreaInteres),
		Ubicacion:             strings.TrimSpace(req.Ubicacion),
		FechaInicio:           req.FechaInicio,
		FechaFin:              req.FechaFin,
		DuracionHoras:         req.DuracionHoras,
		VoluntariosRequeridos: req.VoluntariosRequeridos,
		Estado:                models.OpportunityStatusActive,
		FechaCreacion:         now,
		FechaActualizacion:    now,
	}
	return s.opportunityRepo.CreateOpportunity(ctx, opp)
}

func (s *OpportunityService) Update(ctx context.Context, id int64, req *models.UpdateOpportunityRequest, orgID int64) (*models.Opportunity, error) {
	opp, err := s.owned(ctx, id, orgID)
	if err != nil {
		return nil, err
	}
	previous := opp.Estado

	if req.Titulo != nil {
		opp.Titulo = strings.TrimSpace(*req.Titulo)
	}
	if req.Descripcion != nil {
		opp.Descripcion = strings.TrimSpace(*req.Descripcion)
	}
	if req.Requisitos != nil {
		opp.Requisitos = *req.Requisitos
	}
	if req.Habilidades != nil {
		opp.Habilidades = req.Habilidades
	}
	if req.AreaInteres != nil {
		opp.AreaInteres = strings.TrimSpace(*req.AreaInteres)
	}
	if req.Ubicacion != nil {
		opp.Ubicacion = strings.TrimSpace(*req.Ubicacion)
	}
	if req.FechaInicio != nil {
		opp.FechaInicio = *req.FechaInicio
	}
	if req.FechaFin != nil {
		opp.FechaFin = *req.FechaFin
	}
	if req.DuracionHoras != nil {
		opp.DuracionHoras = *req.DuracionHoras
	}
	if req.VoluntariosRequeridos != nil {
		opp.VoluntariosRequeridos = *req.VoluntariosRequeridos
	}
	if req.Estado != nil {
		if !req.Estado.IsValid() {
			return nil, models.NewValidationError("invalid status", models.FieldError{Field: "estado", Error: "is not a known status"})
		}
		if !previous.CanTransitionTo(*req.Estado) {
			return nil, fmt.Errorf("opportunity %d cannot move from %s to %s: %w", id, previous, *req.Estado, models.ErrInvalidTransition)
		}
		opp.Estado = *req.Estado
	}

	if err := validateSchedule(opp.FechaInicio, opp.FechaFin); err != nil {
		return nil, err
	}
	if opp.VoluntariosRequeridos < opp.VoluntariosInscritos {
		return nil, models.NewValidationError("voluntariosRequeridos cannot be lower than the enrolled volunteers",
			models.FieldError{Field: "voluntariosRequeridos", Error: fmt.Sprintf("must be at least %d", opp.VoluntariosInscritos)})
	}
	opp.FechaActualizacion = s.now()

	updated, err := s.opportunityRepo.UpdateOpportunity(ctx, opp)
	if err != nil {
		return nil, err
	}
	if updated.Estado != previous && updated.Estado.EndsEnrollment() {
		s.announceClosure(ctx, updated)
	}
	return updated, nil
}

// announceClosure tells every volunteer still holding a Pending or Accepted
// application that the opportunity ended. Failures are logged only.
func (s *OpportunityService) announceClosure(ctx context.Context, opp *models.Opportunity) {
	apps, err := s.applicationRepo.GetApplicationsByOpportunity(ctx, opp.ID)
	if err != nil {
		s.logger.Warnf("Failed to load applicants of opportunity %d: %v", opp.ID, err)
		return
	}

	var sender *int64
	if org, err := s.organizationRepo.GetOrganizationByID(ctx, opp.OrganizacionID); err == nil {
		sender = &org.UsuarioID
	}

	titulo, verb := "Oportunidad cerrada", "se cerró"
	if opp.Estado == models.OpportunityStatusCompleted {
		titulo, verb = "Oportunidad finalizada", "finalizó"
	}
	reqs := make([]*models.CreateNotificationRequest, 0, len(apps))
	for _, app := range apps {
		if app.Estado != models.ApplicationStatusPending && app.Estado != models.ApplicationStatusAccepted {
			continue
		}
		reqs = append(reqs, &models.CreateNotificationRequest{
			UsuarioID:   app.UsuarioID,
			RemitenteID: sender,
			Tipo:        models.NotificationSistema,
			Titulo:      titulo,
			Mensaje:     fmt.Sprintf("La oportunidad \"%s\" %s.", opp.Titulo, verb),
			Enlace:      fmt.Sprintf("/opportunities/%d", opp.ID),
		})
	}
	if len(reqs) == 0 {
		return
	}
	if _, err := s.notifications.CreateBulkNotifications(ctx, reqs); err != nil {
		s.logger.Warnf("Failed to notify applicants of opportunity %d: %v", opp.ID, err)
	}
}

func (s *OpportunityService) Delete(ctx context.Context, id int64, orgID int64) error {
	if _, err := s.owned(ctx, id, orgID); err != nil {
		return err
	}
	return s.opportunityRepo.DeleteOpportunity(ctx, id)
}

func (s *OpportunityService) AdminDelete(ctx context.Context, id int64) error {
	return s.opportunityRepo.DeleteOpportunity(ctx, id)
}

func (s *OpportunityService) ListByOrganization(ctx context.Context, orgID int64) ([]models.OpportunityListDto, error) {
	opps, err := s.opportunityRepo.GetOpportunitiesByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(opps)
	rows := make([]models.OpportunityListDto, 0, len(opps))
	for _, o := range opps {
		rows = append(rows, o.ToListDto())
	}
	return rows, nil
}

func (s *OpportunityService) UploadImage(ctx context.Context, id int64, orgID int64, file *models.ImageFile) (*models.Opportunity, error) {
	if _, err := s.owned(ctx, id, orgID); err != nil {
		return nil, err
	}
	url, err := storeImage(ctx, s.storage, file, s.config.UploadMaxBytes, "opportunities")
	if err != nil {
		return nil, err
	}
	return s.opportunityRepo.SetImage(ctx, id, url, s.now())
}

// owned loads the opportunity and checks it belongs to orgID
func (s *OpportunityService) owned(ctx context.Context, id, orgID int64) (*models.Opportunity, error) {
	opp, err := s.opportunityRepo.GetOpportunityByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if opp.OrganizacionID != orgID {
		return nil, fmt.Errorf("opportunity %d belongs to another organization: %w", id, models.ErrNotAuthorized)
	}
	return opp, nil
}

func validateSchedule(start, end time.Time) error {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return models.NewValidationError("invalid schedule",
			models.FieldError{Field: "fechaFin", Error: "must not be before fechaInicio"})
	}
	return nil
}

func sortNewestFirst(opps []*models.Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		if opps[i].FechaCreacion.Equal(opps[j].FechaCreacion) {
			return opps[i].ID > opps[j].ID
		}
		return opps[i].FechaCreacion.After(opps[j].FechaCreacion)
	})
}
