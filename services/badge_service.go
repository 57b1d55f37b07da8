package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"voluntariado-backend/models"
	"voluntariado-backend/repository"
	"voluntariado-backend/utils/logger"
)

type BadgeService struct {
	badgeRepo       repository.BadgeRepositoryInterface
	activityRepo    repository.ActivityRepositoryInterface
	opportunityRepo repository.OpportunityRepositoryInterface
	userRepo        repository.UserRepositoryInterface
	notifications   *NotificationService
	logger          logger.Logger
	now             func() time.Time
}

func NewBadgeService(
	badgeRepo repository.BadgeRepositoryInterface,
	activityRepo repository.ActivityRepositoryInterface,
	opportunityRepo repository.OpportunityRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	notifications *NotificationService,
	logger logger.Logger,
	now func() time.Time,
) *BadgeService {
	return &BadgeService{
		badgeRepo:       badgeRepo,
		activityRepo:    activityRepo,
		opportunityRepo: opportunityRepo,
		userRepo:        userRepo,
		notifications:   notifications,
		logger:          logger,
		now:             now,
	}
}

// CheckAndAwardAutomaticBadges evaluates every active automatic badge against the
// user's aggregates and awards the ones reached. Awards lost to a concurrent
// evaluation are skipped.
func (s *BadgeService) CheckAndAwardAutomaticBadges(ctx context.Context, userID int64) ([]*models.Badge, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.badgeRepo.GetBadges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load badge catalog: %w", err)
	}
	held, err := s.heldBadges(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	stats := models.VolunteerStats{
		ActividadesCompletadas: user.ActividadesCompletadas,
		HorasVoluntariado:      user.HorasVoluntariado,
		AntiguedadDias:         user.AntiguedadDias(now),
	}

	var awarded []*models.Badge
	for _, badge := range catalog {
		if held[badge.ID] || !badge.IsMetBy(stats) {
			continue
		}
		err := s.badgeRepo.AwardBadge(ctx, &models.UsuarioBadge{
			UsuarioID:      userID,
			BadgeID:        badge.ID,
			Motivo:         automaticReason(badge),
			FechaObtencion: now,
		})
		if errors.Is(err, models.ErrBadgeAlreadyAwarded) {
			continue
		}
		if err != nil {
			return awarded, fmt.Errorf("failed to award badge %d to user %d: %w", badge.ID, userID, err)
		}
		awarded = append(awarded, badge)
		s.announce(ctx, userID, badge)
	}
	return awarded, nil
}

// AwardBadge grants a badge manually. It returns false when the user already holds it.
func (s *BadgeService) AwardBadge(ctx context.Context, userID, badgeID int64, reason string, awardedBy int64) (bool, error) {
	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		return false, err
	}
	badge, err := s.badgeRepo.GetBadgeByID(ctx, badgeID)
	if err != nil {
		return false, err
	}

	err = s.badgeRepo.AwardBadge(ctx, &models.UsuarioBadge{
		UsuarioID:      userID,
		BadgeID:        badge.ID,
		Motivo:         strings.TrimSpace(reason),
		OtorgadoPor:    awardedBy,
		FechaObtencion: s.now(),
	})
	if errors.Is(err, models.ErrBadgeAlreadyAwarded) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.logger.Infof("Badge %d awarded to user %d by %d", badge.ID, userID, awardedBy)
	s.announce(ctx, userID, badge)
	return true, nil
}

// SweepAutomaticBadges re-evaluates every active volunteer and returns how many badges were awarded
func (s *BadgeService) SweepAutomaticBadges(ctx context.Context) (int, error) {
	volunteers, err := s.userRepo.GetUsersByRole(ctx, models.UserRoleVoluntario)
	if err != nil {
		return 0, fmt.Errorf("failed to list volunteers: %w", err)
	}

	total := 0
	for _, v := range volunteers {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		if v.Estado != models.UserStatusActive {
			continue
		}
		awarded, err := s.CheckAndAwardAutomaticBadges(ctx, v.ID)
		if err != nil {
			s.logger.Warnf("Badge sweep failed for user %d: %v", v.ID, err)
			continue
		}
		total += len(awarded)
	}
	s.logger.Infof("Badge sweep evaluated %d volunteers, awarded %d badges", len(volunteers), total)
	return total, nil
}

// SeedDefaultBadges fills an empty catalog with the default badges
func (s *BadgeService) SeedDefaultBadges(ctx context.Context) error {
	existing, err := s.badgeRepo.GetBadges(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	now := s.now()
	for _, b := range models.DefaultBadges() {
		b.FechaCreacion = now
		if _, err := s.badgeRepo.CreateBadge(ctx, b); err != nil {
			return fmt.Errorf("failed to seed badge %q: %w", b.Nombre, err)
		}
	}
	s.logger.Infof("Seeded %d default badges", len(models.DefaultBadges()))
	return nil
}

func (s *BadgeService) GetUserActivities(ctx context.Context, userID int64) ([]*models.ActivityDto, error) {
	activities, err := s.activityRepo.GetActivitiesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	titles := map[int64]string{}
	dtos := make([]*models.ActivityDto, 0, len(activities))
	for _, a := range activities {
		title, ok := titles[a.OportunidadID]
		if !ok {
			if opp, err := s.opportunityRepo.GetOpportunityByID(ctx, a.OportunidadID); err == nil {
				title = opp.Titulo
			}
			titles[a.OportunidadID] = title
		}
		dtos = append(dtos, &models.ActivityDto{VolunteerActivity: a, OportunidadTitulo: title})
	}
	return dtos, nil
}

func (s *BadgeService) GetUserBadges(ctx context.Context, userID int64) ([]*models.UsuarioBadgeDto, error) {
	awards, err := s.badgeRepo.GetUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	dtos := make([]*models.UsuarioBadgeDto, 0, len(awards))
	for _, award := range awards {
		badge, err := s.badgeRepo.GetBadgeByID(ctx, award.BadgeID)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, &models.UsuarioBadgeDto{Badge: badge, Motivo: award.Motivo, FechaObtencion: award.FechaObtencion})
	}
	return dtos, nil
}

func (s *BadgeService) GetBadges(ctx context.Context) ([]*models.Badge, error) {
	return s.badgeRepo.GetBadges(ctx)
}

func (s *BadgeService) CreateBadge(ctx context.Context, req *models.CreateBadgeRequest) (*models.Badge, error) {
	if req.Tipo == models.BadgeTypeAutomatic {
		if !req.Criterio.IsValid() {
			return nil, models.NewValidationError("automatic badges need a criterion",
				models.FieldError{Field: "criterio", Error: "required for automatic badges"})
		}
		if req.Umbral <= 0 {
			return nil, models.NewValidationError("automatic badges need a threshold",
				models.FieldError{Field: "umbral", Error: "must be greater than 0"})
		}
	}

	badge := &models.Badge{
		Nombre:        strings.TrimSpace(req.Nombre),
		Descripcion:   strings.TrimSpace(req.Descripcion),
		Icono:         req.Icono,
		Tipo:          req.Tipo,
		Categoria:     req.Categoria,
		Activo:        true,
		FechaCreacion: s.now(),
	}
	if req.Tipo == models.BadgeTypeAutomatic {
		badge.Criterio = req.Criterio
		badge.Umbral = req.Umbral
	}
	return s.badgeRepo.CreateBadge(ctx, badge)
}

func (s *BadgeService) DeleteBadge(ctx context.Context, id int64) error {
	return s.badgeRepo.DeleteBadge(ctx, id)
}

func (s *BadgeService) heldBadges(ctx context.Context, userID int64) (map[int64]bool, error) {
	awards, err := s.badgeRepo.GetUserBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load badges of user %d: %w", userID, err)
	}
	held := make(map[int64]bool, len(awards))
	for _, a := range awards {
		held[a.BadgeID] = true
	}
	return held, nil
}

func (s *BadgeService) announce(ctx context.Context, userID int64, badge *models.Badge) {
	s.notifications.notify(ctx, userID, models.NotificationBadgeObtenido,
		"¡Nuevo badge!", fmt.Sprintf("Obtuviste el badge %q", badge.Nombre), "/profile/badges", nil)
}

func automaticReason(b *models.Badge) string {
	switch b.Criterio {
	case models.CriterionHorasVoluntariado:
		return fmt.Sprintf("Alcanzó %g horas de voluntariado", b.Umbral)
	case models.CriterionActividadesCompletadas:
		return fmt.Sprintf("Completó %g actividades", b.Umbral)
	case models.CriterionAntiguedadDias:
		return fmt.Sprintf("Cumplió %g días en la plataforma", b.Umbral)
	}
	return ""
}
