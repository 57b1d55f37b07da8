package repository

import (
	"context"
	"sort"
	"voluntariado-backend/dal"
	"voluntariado-backend/models"
	"voluntariado-backend/utils/logger"
)

// SkillRepository implements SkillRepositoryInterface
type SkillRepository struct {
	base
}

func NewSkillRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *SkillRepository {
	return &SkillRepository{base{db: db, config: cfg, logger: log}}
}

func (r *SkillRepository) CreateSkill(ctx context.Context, skill *models.Skill) (*models.Skill, error) {
	id, err := r.nextID(ctx, TableSkills)
	if err != nil {
		return nil, err
	}
	skill.ID = id
	if err := r.db.PutItemWithCondition(ctx, r.table(TableSkills), skill, dal.AttributeNotExists("id")); err != nil {
		r.logger.Errorf("Failed to create skill: %v", err)
		return nil, err
	}
	return skill, nil
}

func (r *SkillRepository) GetSkillByID(ctx context.Context, id int64) (*models.Skill, error) {
	skill := &models.Skill{}
	if err := r.get(ctx, TableSkills, id, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

func (r *SkillRepository) GetSkills(ctx context.Context) ([]*models.Skill, error) {
	var skills []*models.Skill
	if err := r.db.Scan(ctx, r.table(TableSkills), &skills); err != nil {
		return nil, err
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].Nombre < skills[j].Nombre })
	return skills, nil
}

func (r *SkillRepository) DeleteSkill(ctx context.Context, id int64) error {
	err := r.db.DeleteItem(ctx, r.key(TableSkills, id), dal.Cond(dal.AttributeExists("id")))
	return notFoundOnCondition(err, "skill", id)
}

// SaveUserSkill inserts or replaces the user's level for a skill
func (r *SkillRepository) SaveUserSkill(ctx context.Context, us *models.UsuarioSkill) error {
	us.PK = pairKey(us.UsuarioID, us.SkillID)
	if err := r.db.PutItem(ctx, r.table(TableUsuarioSkills), us); err != nil {
		r.logger.Errorf("Failed to save skill %d for user %d: %v", us.SkillID, us.UsuarioID, err)
		return err
	}
	return nil
}

func (r *SkillRepository) DeleteUserSkill(ctx context.Context, userID, skillID int64) error {
	key := models.StringKey(r.table(TableUsuarioSkills), "pk", pairKey(userID, skillID))
	err := r.db.DeleteItem(ctx, key, dal.Cond(dal.AttributeExists("pk")))
	return notFoundOnCondition(err, "user skill", skillID)
}

func (r *SkillRepository) GetUserSkills(ctx context.Context, userID int64) ([]*models.UsuarioSkill, error) {
	var skills []*models.UsuarioSkill
	err := r.db.QueryByIndex(ctx, models.NumberIndex(r.table(TableUsuarioSkills), "usuarioId-index", "usuarioId", userID), &skills)
	if err != nil {
		return nil, err
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].SkillID < skills[j].SkillID })
	return skills, nil
}
