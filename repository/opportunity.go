package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
	"voluntariado-backend/dal"
	"voluntariado-backend/models"
	"voluntariado-backend/utils/logger"
)

// OpportunityRepository implements OpportunityRepositoryInterface
type OpportunityRepository struct {
	base
}

func NewOpportunityRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *OpportunityRepository {
	return &OpportunityRepository{base{db: db, config: cfg, logger: log}}
}

func (r *OpportunityRepository) CreateOpportunity(ctx context.Context, opp *models.Opportunity) (*models.Opportunity, error) {
	id, err := r.nextID(ctx, TableOpportunities)
	if err != nil {
		return nil, err
	}
	opp.ID = id
	opp.VoluntariosInscritos = 0
	opp.TotalAplicaciones = 0

	if err := r.db.PutItemWithCondition(ctx, r.table(TableOpportunities), opp, dal.AttributeNotExists("id")); err != nil {
		r.logger.Errorf("Failed to create opportunity: %v", err)
		return nil, err
	}
	r.logger.Infof("Opportunity created successfully: %d", opp.ID)
	return opp, nil
}

func (r *OpportunityRepository) GetOpportunityByID(ctx context.Context, id int64) (*models.Opportunity, error) {
	opp := &models.Opportunity{}
	if err := r.get(ctx, TableOpportunities, id, opp); err != nil {
		return nil, err
	}
	return opp, nil
}

func (r *OpportunityRepository) GetOpportunities(ctx context.Context) ([]*models.Opportunity, error) {
	var opps []*models.Opportunity
	if err := r.db.Scan(ctx, r.table(TableOpportunities), &opps); err != nil {
		r.logger.Errorf("Failed to scan opportunities: %v", err)
		return nil, err
	}
	sortOpportunities(opps)
	return opps, nil
}

func (r *OpportunityRepository) GetOpportunitiesByOrganization(ctx context.Context, orgID int64) ([]*models.Opportunity, error) {
	var opps []*models.Opportunity
	err := r.db.QueryByIndex(ctx, models.NumberIndex(r.table(TableOpportunities), "organizacionId-index", "organizacionId", orgID), &opps)
	if err != nil {
		return nil, err
	}
	sortOpportunities(opps)
	return opps, nil
}

// UpdateOpportunity rewrites the editable fields. Capacity may not drop below
// the volunteers already enrolled, checked by the store itself.
func (r *OpportunityRepository) UpdateOpportunity(ctx context.Context, opp *models.Opportunity) (*models.Opportunity, error) {
	upd := dal.Update{Set: map[string]interface{}{
		"titulo":                opp.Titulo,
		"descripcion":           opp.Descripcion,
		"requisitos":            opp.Requisitos,
		"habilidades":           opp.Habilidades,
		"areaInteres":           opp.AreaInteres,
		"ubicacion":             opp.Ubicacion,
		"fechaInicio":           opp.FechaInicio,
		"fechaFin":              opp.FechaFin,
		"duracionHoras":         opp.DuracionHoras,
		"voluntariosRequeridos": opp.VoluntariosRequeridos,
		"estado":                opp.Estado,
		"fechaActualizacion":    opp.FechaActualizacion,
	}}
	cond := dal.And(
		dal.AttributeExists("id"),
		dal.LessOrEqual("voluntariosInscritos", opp.VoluntariosRequeridos),
	)

	updated := &models.Opportunity{}
	err := r.db.UpdateItem(ctx, r.key(TableOpportunities, opp.ID), upd, &cond, updated)
	if errors.Is(err, dal.ErrConditionFailed) {
		if _, getErr := r.GetOpportunityByID(ctx, opp.ID); getErr != nil {
			return nil, getErr
		}
		return nil, models.NewValidationError("voluntariosRequeridos cannot be lower than the enrolled volunteers",
			models.FieldError{Field: "voluntariosRequeridos", Error: "below enrolled volunteers"})
	}
	if err != nil {
		r.logger.Errorf("Failed to update opportunity %d: %v", opp.ID, err)
		return nil, err
	}
	return updated, nil
}

func (r *OpportunityRepository) SetImage(ctx context.Context, id int64, url string, at time.Time) (*models.Opportunity, error) {
	updated := &models.Opportunity{}
	err := r.db.UpdateItem(ctx, r.key(TableOpportunities, id), dal.Update{Set: map[string]interface{}{
		"imagen":             url,
		"fechaActualizacion": at,
	}}, dal.Cond(dal.AttributeExists("id")), updated)
	if err != nil {
		return nil, notFoundOnCondition(err, "opportunity", id)
	}
	return updated, nil
}

// DeleteOpportunity removes an opportunity that never received an application
func (r *OpportunityRepository) DeleteOpportunity(ctx context.Context, id int64) error {
	cond := dal.And(dal.AttributeExists("id"), dal.Equal("totalAplicaciones", 0))
	err := r.db.DeleteItem(ctx, r.key(TableOpportunities, id), &cond)
	if errors.Is(err, dal.ErrConditionFailed) {
		if _, getErr := r.GetOpportunityByID(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("opportunity %d: %w", id, models.ErrHasApplications)
	}
	if err != nil {
		r.logger.Errorf("Failed to delete opportunity %d: %v", id, err)
		return err
	}
	r.logger.Infof("Opportunity deleted: %d", id)
	return nil
}

func sortOpportunities(opps []*models.Opportunity) {
	sort.Slice(opps, func(i, j int) bool { return opps[i].ID < opps[j].ID })
}
