package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"voluntariado-backend/dal"
	"voluntariado-backend/models"
	"voluntariado-backend/utils/logger"
)

// ApplicationRepository implements ApplicationRepositoryInterface.
// Every status change is one transaction conditioned on the previous status,
// so concurrent reviewers can never both win.
type ApplicationRepository struct {
	base
}

func NewApplicationRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *ApplicationRepository {
	return &ApplicationRepository{base{db: db, config: cfg, logger: log}}
}

// Apply inserts a Pending application and reserves one enrollment slot on the opportunity
func (r *ApplicationRepository) Apply(ctx context.Context, app *models.Application) (*models.Application, error) {
	applied, err := r.HasApplied(ctx, app.UsuarioID, app.OportunidadID)
	if err != nil {
		return nil, err
	}
	if applied {
		return nil, models.ErrDuplicateApplication
	}

	id, err := r.nextID(ctx, TableApplications)
	if err != nil {
		return nil, err
	}
	app.ID = id
	app.Estado = models.ApplicationStatusPending

	slot := dal.And(
		dal.AttributeExists("id"),
		dal.Equal("estado", models.OpportunityStatusActive),
		dal.LessThanAttr("voluntariosInscritos", "voluntariosRequeridos"),
	)
	err = r.db.TransactWrite(ctx, []dal.TransactOp{
		r.guardPut(applicationGuard(app.UsuarioID, app.OportunidadID), app.ID),
		dal.PutOp(r.table(TableApplications), app, dal.Cond(dal.AttributeNotExists("id"))),
		dal.UpdateOp(r.key(TableOpportunities, app.OportunidadID), dal.Update{Add: map[string]interface{}{
			"voluntariosInscritos": 1,
			"totalAplicaciones":    1,
		}}, &slot),
	})
	if err == nil {
		r.logger.Infof("Application %d created: user %d, opportunity %d", app.ID, app.UsuarioID, app.OportunidadID)
		return app, nil
	}

	switch dal.FailedOperation(err) {
	case 0:
		return nil, models.ErrDuplicateApplication
	case 2:
		return nil, r.classifySlotFailure(ctx, app.OportunidadID)
	}
	r.logger.Errorf("Failed to create application: %v", err)
	return nil, err
}

// classifySlotFailure explains why the slot reservation condition did not hold
func (r *ApplicationRepository) classifySlotFailure(ctx context.Context, opportunityID int64) error {
	opp := &models.Opportunity{}
	if err := r.get(ctx, TableOpportunities, opportunityID, opp); err != nil {
		return err
	}
	if opp.Estado != models.OpportunityStatusActive {
		return fmt.Errorf("opportunity %d: %w", opportunityID, models.ErrOpportunityNotActive)
	}
	return fmt.Errorf("opportunity %d: %w", opportunityID, models.ErrOpportunityFull)
}

func (r *ApplicationRepository) GetApplicationByID(ctx context.Context, id int64) (*models.Application, error) {
	app := &models.Application{}
	if err := r.get(ctx, TableApplications, id, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (r *ApplicationRepository) HasApplied(ctx context.Context, userID, opportunityID int64) (bool, error) {
	ref, err := r.guardRef(ctx, applicationGuard(userID, opportunityID))
	if err != nil {
		return false, err
	}
	return ref != 0, nil
}

func (r *ApplicationRepository) GetApplicationsByUser(ctx context.Context, userID int64) ([]*models.Application, error) {
	return r.queryBy(ctx, "usuarioId", userID)
}

func (r *ApplicationRepository) GetApplicationsByOpportunity(ctx context.Context, opportunityID int64) ([]*models.Application, error) {
	return r.queryBy(ctx, "oportunidadId", opportunityID)
}

func (r *ApplicationRepository) GetApplicationsByOrganization(ctx context.Context, orgID int64) ([]*models.Application, error) {
	return r.queryBy(ctx, "organizacionId", orgID)
}

func (r *ApplicationRepository) GetApplications(ctx context.Context) ([]*models.Application, error) {
	var apps []*models.Application
	if err := r.db.Scan(ctx, r.table(TableApplications), &apps); err != nil {
		return nil, err
	}
	sortApplications(apps)
	return apps, nil
}

func (r *ApplicationRepository) queryBy(ctx context.Context, attr string, value int64) ([]*models.Application, error) {
	var apps []*models.Application
	err := r.db.QueryByIndex(ctx, models.NumberIndex(r.table(TableApplications), attr+"-index", attr, value), &apps)
	if err != nil {
		r.logger.Errorf("Failed to query applications by %s: %v", attr, err)
		return nil, err
	}
	sortApplications(apps)
	return apps, nil
}

// Accept moves a Pending application to Accepted and schedules its activity
func (r *ApplicationRepository) Accept(ctx context.Context, app *models.Application, activity *models.VolunteerActivity) error {
	err := r.db.TransactWrite(ctx, []dal.TransactOp{
		r.statusOp(app, models.ApplicationStatusPending),
		r.guardPut(activityGuard(app.ID), activity.ID),
		dal.PutOp(r.table(TableActivities), activity, dal.Cond(dal.AttributeNotExists("id"))),
	})
	return r.transitionError(err, app)
}

// Reject moves a Pending application to Rejected and releases its slot
func (r *ApplicationRepository) Reject(ctx context.Context, app *models.Application) error {
	err := r.db.TransactWrite(ctx, []dal.TransactOp{
		r.statusOp(app, models.ApplicationStatusPending),
		r.releaseSlotOp(app.OportunidadID),
	})
	return r.transitionError(err, app)
}

// Withdraw moves an application out of from, releases its slot and cancels a scheduled activity
func (r *ApplicationRepository) Withdraw(ctx context.Context, app *models.Application, from models.ApplicationStatus, activity *models.VolunteerActivity) error {
	ops := []dal.TransactOp{
		r.statusOp(app, from),
		r.releaseSlotOp(app.OportunidadID),
	}
	if activity != nil {
		ops = append(ops, dal.UpdateOp(r.key(TableActivities, activity.ID),
			dal.Update{Set: map[string]interface{}{"estado": models.ActivityStatusCancelled}},
			dal.Cond(dal.Equal("estado", models.ActivityStatusScheduled))))
	}
	return r.transitionError(r.db.TransactWrite(ctx, ops), app)
}

// Complete moves an Accepted application to Completed, stores the finished
// activity and credits the volunteer's hours in the same transaction.
func (r *ApplicationRepository) Complete(ctx context.Context, app *models.Application, activity *models.VolunteerActivity, createActivity bool) error {
	ops := []dal.TransactOp{r.statusOp(app, models.ApplicationStatusAccepted)}
	if createActivity {
		ops = append(ops,
			r.guardPut(activityGuard(app.ID), activity.ID),
			dal.PutOp(r.table(TableActivities), activity, dal.Cond(dal.AttributeNotExists("id"))))
	} else {
		ops = append(ops, dal.PutOp(r.table(TableActivities), activity, dal.Cond(dal.And(
			dal.AttributeExists("id"),
			dal.NotEqual("estado", models.ActivityStatusCompleted),
		))))
	}

	credit := dal.Update{Add: map[string]interface{}{
		"horasVoluntariado":      activity.HorasCompletadas,
		"actividadesCompletadas": 1,
	}}
	if activity.Calificacion > 0 {
		credit.Add["sumaCalificaciones"] = activity.Calificacion
		credit.Add["totalResenas"] = 1
	}
	ops = append(ops, dal.UpdateOp(r.key(TableUsers, app.UsuarioID), credit, dal.Cond(dal.AttributeExists("id"))))

	if err := r.db.TransactWrite(ctx, ops); err != nil {
		return r.transitionError(err, app)
	}
	r.logger.Infof("Application %d completed: %.2f hours credited to user %d", app.ID, activity.HorasCompletadas, app.UsuarioID)
	return nil
}

// statusOp writes app's new status, notes and response date, conditioned on the previous status
func (r *ApplicationRepository) statusOp(app *models.Application, from models.ApplicationStatus) dal.TransactOp {
	set := map[string]interface{}{
		"estado": app.Estado,
		"notas":  app.Notas,
	}
	if app.FechaRespuesta != nil {
		set["fechaRespuesta"] = *app.FechaRespuesta
	}
	return dal.UpdateOp(r.key(TableApplications, app.ID), dal.Update{Set: set},
		dal.Cond(dal.Equal("estado", from)))
}

func (r *ApplicationRepository) releaseSlotOp(opportunityID int64) dal.TransactOp {
	return dal.UpdateOp(r.key(TableOpportunities, opportunityID),
		dal.Update{Add: map[string]interface{}{"voluntariosInscritos": -1}},
		dal.Cond(dal.GreaterThan("voluntariosInscritos", 0)))
}

func (r *ApplicationRepository) transitionError(err error, app *models.Application) error {
	if err == nil {
		return nil
	}
	if dal.FailedOperation(err) == 0 {
		return fmt.Errorf("application %d changed concurrently: %w", app.ID, models.ErrInvalidTransition)
	}
	if errors.Is(err, dal.ErrConditionFailed) {
		return fmt.Errorf("application %d: %w", app.ID, models.ErrConflict)
	}
	r.logger.Errorf("Failed to update application %d: %v", app.ID, err)
	return err
}

func sortApplications(apps []*models.Application) {
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
}
