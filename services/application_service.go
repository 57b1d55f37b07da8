package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
	"voluntariado-backend/models"
	"voluntariado-backend/repository"
	"voluntariado-backend/utils/logger"
)

type ApplicationService struct {
	applicationRepo  repository.ApplicationRepositoryInterface
	opportunityRepo  repository.OpportunityRepositoryInterface
	activityRepo     repository.ActivityRepositoryInterface
	userRepo         repository.UserRepositoryInterface
	organizationRepo repository.OrganizationRepositoryInterface
	badges           BadgeServiceInterface
	notifications    *NotificationService
	mailer           Mailer
	logger           logger.Logger
	now              func() time.Time
}

func NewApplicationService(
	repos repository.RepositoryContainerInterface,
	badges BadgeServiceInterface,
	notifications *NotificationService,
	mailer Mailer,
	logger logger.Logger,
	now func() time.Time,
) *ApplicationService {
	return &ApplicationService{
		applicationRepo:  repos.GetApplicationRepository(),
		opportunityRepo:  repos.GetOpportunityRepository(),
		activityRepo:     repos.GetActivityRepository(),
		userRepo:         repos.GetUserRepository(),
		organizationRepo: repos.GetOrganizationRepository(),
		badges:           badges,
		notifications:    notifications,
		mailer:           mailer,
		logger:           logger,
		now:              now,
	}
}

// Apply submits a volunteer's application and reserves a slot on the opportunity
func (s *ApplicationService) Apply(ctx context.Context, opportunityID, userID int64, req *models.ApplyRequest) (*models.Application, error) {
	opp, err := s.opportunityRepo.GetOpportunityByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if opp.Estado != models.OpportunityStatusActive {
		return nil, fmt.Errorf("opportunity %d is %s: %w", opp.ID, opp.Estado, models.ErrOpportunityNotActive)
	}

	app := &models.Application{
		UsuarioID:       userID,
		OportunidadID:   opp.ID,
		OrganizacionID:  opp.OrganizacionID,
		FechaAplicacion: s.now(),
	}
	if req != nil {
		app.Mensaje = req.Mensaje
	}

	created, err := s.applicationRepo.Apply(ctx, app)
	if err != nil {
		return nil, err
	}

	if org, err := s.organizationRepo.GetOrganizationByID(ctx, opp.OrganizacionID); err == nil {
		s.notifications.notify(ctx, org.UsuarioID, models.NotificationNuevaAplicacion,
			"Nueva aplicación", fmt.Sprintf("Recibiste una nueva aplicación para %q", opp.Titulo),
			fmt.Sprintf("/applications/%d", created.ID), &userID)
	} else {
		s.logger.Warnf("Failed to load organization %d for application notice: %v", opp.OrganizacionID, err)
	}
	return created, nil
}

// UpdateStatus applies an organization's review decision
func (s *ApplicationService) UpdateStatus(ctx context.Context, applicationID int64, req *models.UpdateApplicationStatusRequest, orgID int64) (*models.Application, error) {
	app, err := s.applicationRepo.GetApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.OrganizacionID != orgID {
		return nil, fmt.Errorf("application %d belongs to another organization: %w", app.ID, models.ErrNotAuthorized)
	}
	if app.Estado.IsTerminal() || !models.CanOrganizationTransition(app.Estado, req.Estado) {
		return nil, fmt.Errorf("%s -> %s: %w", app.Estado, req.Estado, models.ErrInvalidTransition)
	}
	opp, err := s.opportunityRepo.GetOpportunityByID(ctx, app.OportunidadID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if app.Estado == models.ApplicationStatusPending {
		app.FechaRespuesta = &now
	}
	if req.Notas != "" {
		app.Notas = req.Notas
	}
	app.Estado = req.Estado

	switch req.Estado {
	case models.ApplicationStatusAccepted:
		err = s.accept(ctx, app, opp, now)
	case models.ApplicationStatusRejected:
		err = s.applicationRepo.Reject(ctx, app)
	case models.ApplicationStatusCompleted:
		err = s.complete(ctx, app, opp, req, now)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Application %d moved to %s by organization %d", app.ID, app.Estado, orgID)
	s.announce(ctx, app, opp)

	if app.Estado == models.ApplicationStatusCompleted {
		if awarded, err := s.badges.CheckAndAwardAutomaticBadges(ctx, app.UsuarioID); err != nil {
			s.logger.Warnf("Badge evaluation failed for user %d: %v", app.UsuarioID, err)
		} else if len(awarded) > 0 {
			s.logger.Infof("User %d earned %d badges", app.UsuarioID, len(awarded))
		}
	}
	return app, nil
}

func (s *ApplicationService) accept(ctx context.Context, app *models.Application, opp *models.Opportunity, now time.Time) error {
	activityID, err := s.activityRepo.NextActivityID(ctx)
	if err != nil {
		return err
	}
	start := opp.FechaInicio
	if start.IsZero() {
		start = now
	}
	return s.applicationRepo.Accept(ctx, app, &models.VolunteerActivity{
		ID:             activityID,
		AplicacionID:   app.ID,
		UsuarioID:      app.UsuarioID,
		OportunidadID:  app.OportunidadID,
		OrganizacionID: app.OrganizacionID,
		Estado:         models.ActivityStatusScheduled,
		FechaInicio:    start,
		FechaCreacion:  now,
	})
}

// complete finishes the activity with the reported hours, or the opportunity's duration when none are given
func (s *ApplicationService) complete(ctx context.Context, app *models.Application, opp *models.Opportunity, req *models.UpdateApplicationStatusRequest, now time.Time) error {
	create := false
	activity, err := s.activityRepo.GetActivityByApplication(ctx, app.ID)
	if errors.Is(err, models.ErrNotFound) {
		id, idErr := s.activityRepo.NextActivityID(ctx)
		if idErr != nil {
			return idErr
		}
		create = true
		activity = &models.VolunteerActivity{
			ID:             id,
			AplicacionID:   app.ID,
			UsuarioID:      app.UsuarioID,
			OportunidadID:  app.OportunidadID,
			OrganizacionID: app.OrganizacionID,
			FechaInicio:    opp.FechaInicio,
			FechaCreacion:  now,
		}
	} else if err != nil {
		return err
	}

	activity.Estado = models.ActivityStatusCompleted
	activity.HorasCompletadas = opp.DuracionHoras
	if req.HorasCompletadas != nil {
		activity.HorasCompletadas = *req.HorasCompletadas
	}
	if req.Calificacion != nil {
		if *req.Calificacion < 1 || *req.Calificacion > 5 {
			return models.NewValidationError("invalid rating", models.FieldError{Field: "calificacion", Error: "must be between 1 and 5"})
		}
		activity.Calificacion = *req.Calificacion
	}
	activity.Comentario = req.Comentario
	activity.FechaFin = &now

	return s.applicationRepo.Complete(ctx, app, activity, create)
}

// Withdraw lets the volunteer retract a Pending or Accepted application
func (s *ApplicationService) Withdraw(ctx context.Context, applicationID, userID int64) (*models.Application, error) {
	app, err := s.applicationRepo.GetApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.UsuarioID != userID {
		return nil, fmt.Errorf("application %d belongs to another user: %w", app.ID, models.ErrNotAuthorized)
	}
	from := app.Estado
	if from != models.ApplicationStatusPending && from != models.ApplicationStatusAccepted {
		return nil, fmt.Errorf("cannot withdraw a %s application: %w", from, models.ErrInvalidTransition)
	}

	var scheduled *models.VolunteerActivity
	if from == models.ApplicationStatusAccepted {
		activity, err := s.activityRepo.GetActivityByApplication(ctx, app.ID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		if activity != nil && activity.Estado == models.ActivityStatusScheduled {
			scheduled = activity
		}
	}

	app.Estado = models.ApplicationStatusWithdrawn
	if err := s.applicationRepo.Withdraw(ctx, app, from, scheduled); err != nil {
		return nil, err
	}
	s.logger.Infof("Application %d withdrawn by user %d", app.ID, userID)

	if org, err := s.organizationRepo.GetOrganizationByID(ctx, app.OrganizacionID); err == nil {
		s.notifications.notify(ctx, org.UsuarioID, models.NotificationAplicacionRetirada,
			"Aplicación retirada", fmt.Sprintf("Un voluntario retiró su aplicación #%d", app.ID),
			fmt.Sprintf("/applications/%d", app.ID), &userID)
	}
	return app, nil
}

// GetByID is visible to the applicant, the owning organization and admins
func (s *ApplicationService) GetByID(ctx context.Context, applicationID int64, claims *models.JWTClaims) (*models.ApplicationDto, error) {
	app, err := s.applicationRepo.GetApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	visible := claims.Role == models.UserRoleAdmin ||
		claims.UserID == app.UsuarioID ||
		(claims.OrganizationID != 0 && claims.OrganizationID == app.OrganizacionID)
	if !visible {
		return nil, fmt.Errorf("application %d: %w", app.ID, models.ErrNotAuthorized)
	}
	return s.enrich(ctx, []*models.Application{app})[0], nil
}

func (s *ApplicationService) GetMyApplications(ctx context.Context, userID int64, filter models.ApplicationFilter) (models.PagedResult[*models.ApplicationDto], error) {
	apps, err := s.applicationRepo.GetApplicationsByUser(ctx, userID)
	if err != nil {
		return models.PagedResult[*models.ApplicationDto]{}, err
	}
	return s.page(ctx, apps, filter), nil
}

func (s *ApplicationService) GetOrganizationApplications(ctx context.Context, orgID int64, filter models.ApplicationFilter) (models.PagedResult[*models.ApplicationDto], error) {
	var (
		apps []*models.Application
		err  error
	)
	if filter.OportunidadID > 0 {
		opp, getErr := s.opportunityRepo.GetOpportunityByID(ctx, filter.OportunidadID)
		if getErr != nil {
			return models.PagedResult[*models.ApplicationDto]{}, getErr
		}
		if opp.OrganizacionID != orgID {
			return models.PagedResult[*models.ApplicationDto]{}, fmt.Errorf("opportunity %d: %w", opp.ID, models.ErrNotAuthorized)
		}
		apps, err = s.applicationRepo.GetApplicationsByOpportunity(ctx, opp.ID)
	} else {
		apps, err = s.applicationRepo.GetApplicationsByOrganization(ctx, orgID)
	}
	if err != nil {
		return models.PagedResult[*models.ApplicationDto]{}, err
	}
	return s.page(ctx, apps, filter), nil
}

func (s *ApplicationService) page(ctx context.Context, apps []*models.Application, filter models.ApplicationFilter) models.PagedResult[*models.ApplicationDto] {
	matched := make([]*models.Application, 0, len(apps))
	for _, a := range apps {
		if filter.Estado != "" && a.Estado != filter.Estado {
			continue
		}
		if filter.OportunidadID > 0 && a.OportunidadID != filter.OportunidadID {
			continue
		}
		matched = append(matched, a)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].FechaAplicacion.After(matched[j].FechaAplicacion)
	})

	paged := models.Paginate(matched, filter.Pagination)
	return models.PagedResult[*models.ApplicationDto]{
		Items:      s.enrich(ctx, paged.Items),
		Page:       paged.Page,
		PageSize:   paged.PageSize,
		Total:      paged.Total,
		TotalPages: paged.TotalPages,
		HasNext:    paged.HasNext,
		HasPrev:    paged.HasPrev,
	}
}

// enrich joins display names; lookups that fail leave the name empty
func (s *ApplicationService) enrich(ctx context.Context, apps []*models.Application) []*models.ApplicationDto {
	titles := map[int64]string{}
	users := map[int64]*models.User{}
	orgs := map[int64]string{}

	dtos := make([]*models.ApplicationDto, 0, len(apps))
	for _, a := range apps {
		if _, ok := titles[a.OportunidadID]; !ok {
			if opp, err := s.opportunityRepo.GetOpportunityByID(ctx, a.OportunidadID); err == nil {
				titles[a.OportunidadID] = opp.Titulo
			} else {
				titles[a.OportunidadID] = ""
			}
		}
		if _, ok := users[a.UsuarioID]; !ok {
			user, err := s.userRepo.GetUserByID(ctx, a.UsuarioID)
			if err != nil {
				user = &models.User{}
			}
			users[a.UsuarioID] = user
		}
		if _, ok := orgs[a.OrganizacionID]; !ok {
			if org, err := s.organizationRepo.GetOrganizationByID(ctx, a.OrganizacionID); err == nil {
				orgs[a.OrganizacionID] = org.Nombre
			} else {
				orgs[a.OrganizacionID] = ""
			}
		}

		user := users[a.UsuarioID]
		dtos = append(dtos, &models.ApplicationDto{
			Application:        a,
			OportunidadTitulo:  titles[a.OportunidadID],
			VoluntarioNombre:   fullName(user),
			VoluntarioEmail:    user.Email,
			OrganizacionNombre: orgs[a.OrganizacionID],
		})
	}
	return dtos
}

// announce notifies the volunteer of a review decision and e-mails them best effort
func (s *ApplicationService) announce(ctx context.Context, app *models.Application, opp *models.Opportunity) {
	var (
		tipo    models.NotificationType
		titulo  string
		mensaje string
	)
	switch app.Estado {
	case models.ApplicationStatusAccepted:
		tipo, titulo = models.NotificationAplicacionAceptada, "Aplicación aceptada"
		mensaje = fmt.Sprintf("Tu aplicación para %q fue aceptada", opp.Titulo)
	case models.ApplicationStatusRejected:
		tipo, titulo = models.NotificationAplicacionRechazada, "Aplicación rechazada"
		mensaje = fmt.Sprintf("Tu aplicación para %q no fue aceptada", opp.Titulo)
	case models.ApplicationStatusCompleted:
		tipo, titulo = models.NotificationActividadCompletada, "Actividad completada"
		mensaje = fmt.Sprintf("Completaste la actividad %q. ¡Gracias!", opp.Titulo)
	default:
		return
	}
	s.notifications.notify(ctx, app.UsuarioID, tipo, titulo, mensaje, fmt.Sprintf("/applications/%d", app.ID), nil)

	if s.mailer == nil {
		return
	}
	user, err := s.userRepo.GetUserByID(ctx, app.UsuarioID)
	if err != nil {
		s.logger.Warnf("Failed to load user %d for e-mail: %v", app.UsuarioID, err)
		return
	}
	if err := s.mailer.Send(ctx, user.Email, fullName(user), titulo, mensaje); err != nil {
		s.logger.Warnf("Failed to e-mail user %d: %v", user.ID, err)
	}
}

func fullName(u *models.User) string {
	if u.Apellido == "" {
		return u.Nombre
	}
	return u.Nombre + " " + u.Apellido
}
