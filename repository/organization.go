package repository

import (
	"context"
	"fmt"
	"sort"
	"time"
	"voluntariado-backend/dal"
	"voluntariado-backend/models"
	"voluntariado-backend/utils/logger"
)

// OrganizationRepository implements OrganizationRepositoryInterface
type OrganizationRepository struct {
	base
}

func NewOrganizationRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *OrganizationRepository {
	return &OrganizationRepository{base{db: db, config: cfg, logger: log}}
}

func (r *OrganizationRepository) GetOrganizationByID(ctx context.Context, id int64) (*models.Organization, error) {
	org := &models.Organization{}
	if err := r.get(ctx, TableOrganizations, id, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (r *OrganizationRepository) GetOrganizationByUserID(ctx context.Context, userID int64) (*models.Organization, error) {
	var orgs []*models.Organization
	err := r.db.QueryByIndex(ctx, models.NumberIndex(r.table(TableOrganizations), "usuarioId-index", "usuarioId", userID), &orgs)
	if err != nil {
		r.logger.Errorf("Failed to query organization for user %d: %v", userID, err)
		return nil, err
	}
	if len(orgs) == 0 {
		return nil, fmt.Errorf("organization for user %d: %w", userID, models.ErrNotFound)
	}
	return orgs[0], nil
}

func (r *OrganizationRepository) GetOrganizations(ctx context.Context) ([]*models.Organization, error) {
	var orgs []*models.Organization
	if err := r.db.Scan(ctx, r.table(TableOrganizations), &orgs); err != nil {
		r.logger.Errorf("Failed to scan organizations: %v", err)
		return nil, err
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].ID < orgs[j].ID })
	return orgs, nil
}

// UpdateOrganization writes the profile fields. The balance is owned by the donation flow
func (r *OrganizationRepository) UpdateOrganization(ctx context.Context, org *models.Organization) (*models.Organization, error) {
	return r.update(ctx, org.ID, dal.Update{Set: map[string]interface{}{
		"nombre":             org.Nombre,
		"descripcion":        org.Descripcion,
		"telefono":           org.Telefono,
		"direccion":          org.Direccion,
		"sitioWeb":           org.SitioWeb,
		"fechaActualizacion": org.FechaActualizacion,
	}})
}

func (r *OrganizationRepository) SetVerified(ctx context.Context, id int64, verified bool, at time.Time) (*models.Organization, error) {
	return r.update(ctx, id, dal.Update{Set: map[string]interface{}{
		"verificada":         verified,
		"fechaActualizacion": at,
	}})
}

func (r *OrganizationRepository) SetLogo(ctx context.Context, id int64, url string, at time.Time) (*models.Organization, error) {
	return r.update(ctx, id, dal.Update{Set: map[string]interface{}{
		"logo":               url,
		"fechaActualizacion": at,
	}})
}

func (r *OrganizationRepository) update(ctx context.Context, id int64, upd dal.Update) (*models.Organization, error) {
	org := &models.Organization{}
	err := r.db.UpdateItem(ctx, r.key(TableOrganizations, id), upd, dal.Cond(dal.AttributeExists("id")), org)
	if err != nil {
		return nil, notFoundOnCondition(err, "organization", id)
	}
	return org, nil
}
