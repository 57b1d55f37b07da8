package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"voluntariado-backend/models"
	"voluntariado-backend/repository"
	"voluntariado-backend/utils/logger"
)

type SkillService struct {
	skillRepo repository.SkillRepositoryInterface
	logger    logger.Logger
	now       func() time.Time
}

func NewSkillService(skillRepo repository.SkillRepositoryInterface, logger logger.Logger, now func() time.Time) *SkillService {
	return &SkillService{
		skillRepo: skillRepo,
		logger:    logger,
		now:       now,
	}
}

func (s *SkillService) GetSkills(ctx context.Context) ([]*models.Skill, error) {
	skills, err := s.skillRepo.GetSkills(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(skills, func(i, j int) bool {
		if skills[i].Categoria != skills[j].Categoria {
			return skills[i].Categoria < skills[j].Categoria
		}
		return skills[i].Nombre < skills[j].Nombre
	})
	return skills, nil
}

// CreateSkill adds a catalog entry; names are unique case-insensitively
func (s *SkillService) CreateSkill(ctx context.Context, req *models.CreateSkillRequest) (*models.Skill, error) {
	name := strings.TrimSpace(req.Nombre)
	existing, err := s.skillRepo.GetSkills(ctx)
	if err != nil {
		return nil, err
	}
	for _, sk := range existing {
		if strings.EqualFold(sk.Nombre, name) {
			return nil, models.ErrAlreadyExists
		}
	}

	return s.skillRepo.CreateSkill(ctx, &models.Skill{
		Nombre:        name,
		Descripcion:   strings.TrimSpace(req.Descripcion),
		Categoria:     req.Categoria,
		FechaCreacion: s.now(),
	})
}

func (s *SkillService) DeleteSkill(ctx context.Context, id int64) error {
	return s.skillRepo.DeleteSkill(ctx, id)
}

// AddUserSkill records or updates the caller's level for a catalog skill
func (s *SkillService) AddUserSkill(ctx context.Context, userID int64, req *models.AddUserSkillRequest) (*models.UsuarioSkillDto, error) {
	skill, err := s.skillRepo.GetSkillByID(ctx, req.SkillID)
	if err != nil {
		return nil, err
	}
	if req.Nivel < 1 || req.Nivel > 5 {
		return nil, models.NewValidationError("invalid skill level", models.FieldError{Field: "nivel", Error: "must be between 1 and 5"})
	}
	err = s.skillRepo.SaveUserSkill(ctx, &models.UsuarioSkill{
		UsuarioID:     userID,
		SkillID:       skill.ID,
		Nivel:         req.Nivel,
		FechaRegistro: s.now(),
	})
	if err != nil {
		return nil, err
	}
	return &models.UsuarioSkillDto{Skill: skill, Nivel: req.Nivel}, nil
}

func (s *SkillService) RemoveUserSkill(ctx context.Context, userID, skillID int64) error {
	return s.skillRepo.DeleteUserSkill(ctx, userID, skillID)
}

func (s *SkillService) GetUserSkills(ctx context.Context, userID int64) ([]*models.UsuarioSkillDto, error) {
	owned, err := s.skillRepo.GetUserSkills(ctx, userID)
	if err != nil {
		return nil, err
	}
	dtos := make([]*models.UsuarioSkillDto, 0, len(owned))
	for _, us := range owned {
		skill, err := s.skillRepo.GetSkillByID(ctx, us.SkillID)
		if errors.Is(err, models.ErrNotFound) {
			// catalog entry removed
			continue
		}
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, &models.UsuarioSkillDto{Skill: skill, Nivel: us.Nivel})
	}
	return dtos, nil
}
