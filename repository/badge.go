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

// BadgeRepository implements BadgeRepositoryInterface
type BadgeRepository struct {
	base
}

func NewBadgeRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *BadgeRepository {
	return &BadgeRepository{base{db: db, config: cfg, logger: log}}
}

func (r *BadgeRepository) CreateBadge(ctx context.Context, badge *models.Badge) (*models.Badge, error) {
	id, err := r.nextID(ctx, TableBadges)
	if err != nil {
		return nil, err
	}
	badge.ID = id
	if err := r.db.PutItemWithCondition(ctx, r.table(TableBadges), badge, dal.AttributeNotExists("id")); err != nil {
		r.logger.Errorf("Failed to create badge: %v", err)
		return nil, err
	}
	r.logger.Infof("Badge created: %d %s", badge.ID, badge.Nombre)
	return badge, nil
}

func (r *BadgeRepository) GetBadgeByID(ctx context.Context, id int64) (*models.Badge, error) {
	badge := &models.Badge{}
	if err := r.get(ctx, TableBadges, id, badge); err != nil {
		return nil, err
	}
	return badge, nil
}

func (r *BadgeRepository) GetBadges(ctx context.Context) ([]*models.Badge, error) {
	var badges []*models.Badge
	if err := r.db.Scan(ctx, r.table(TableBadges), &badges); err != nil {
		return nil, err
	}
	sort.Slice(badges, func(i, j int) bool { return badges[i].ID < badges[j].ID })
	return badges, nil
}

func (r *BadgeRepository) DeleteBadge(ctx context.Context, id int64) error {
	err := r.db.DeleteItem(ctx, r.key(TableBadges, id), dal.Cond(dal.AttributeExists("id")))
	return notFoundOnCondition(err, "badge", id)
}

// AwardBadge stores the award once per (user, badge); a second award fails with models.ErrBadgeAlreadyAwarded
func (r *BadgeRepository) AwardBadge(ctx context.Context, award *models.UsuarioBadge) error {
	award.PK = pairKey(award.UsuarioID, award.BadgeID)
	err := r.db.PutItemWithCondition(ctx, r.table(TableUsuarioBadges), award, dal.AttributeNotExists("pk"))
	if errors.Is(err, dal.ErrConditionFailed) {
		return fmt.Errorf("badge %d for user %d: %w", award.BadgeID, award.UsuarioID, models.ErrBadgeAlreadyAwarded)
	}
	if err != nil {
		r.logger.Errorf("Failed to award badge %d to user %d: %v", award.BadgeID, award.UsuarioID, err)
		return err
	}
	return nil
}

func (r *BadgeRepository) GetUserBadges(ctx context.Context, userID int64) ([]*models.UsuarioBadge, error) {
	var awards []*models.UsuarioBadge
	err := r.db.QueryByIndex(ctx, models.NumberIndex(r.table(TableUsuarioBadges), "usuarioId-index", "usuarioId", userID), &awards)
	if err != nil {
		return nil, err
	}
	sortAwards(awards)
	return awards, nil
}

func (r *BadgeRepository) GetAllAwards(ctx context.Context) ([]*models.UsuarioBadge, error) {
	var awards []*models.UsuarioBadge
	if err := r.db.Scan(ctx, r.table(TableUsuarioBadges), &awards); err != nil {
		return nil, err
	}
	sortAwards(awards)
	return awards, nil
}

func sortAwards(awards []*models.UsuarioBadge) {
	sort.Slice(awards, func(i, j int) bool {
		if awards[i].FechaObtencion.Equal(awards[j].FechaObtencion) {
			return awards[i].BadgeID < awards[j].BadgeID
		}
		return awards[i].FechaObtencion.Before(awards[j].FechaObtencion)
	})
}
