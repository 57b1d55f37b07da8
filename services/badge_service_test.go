package services

import (
	"sync"
	"testing"
	"time"
	"voluntariado-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BadgeServiceTestSuite struct {
	ServiceTestSuite
}

func (suite *BadgeServiceTestSuite) TestSeedDefaultBadgesOnlyOnce() {
	require.NoError(suite.T(), suite.svc.GetBadgeService().SeedDefaultBadges(suite.ctx))
	require.NoError(suite.T(), suite.svc.GetBadgeService().SeedDefaultBadges(suite.ctx))

	badges, err := suite.svc.GetBadgeService().GetBadges(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), badges, len(models.DefaultBadges()))
}

func (suite *BadgeServiceTestSuite) TestCreateBadgeValidatesAutomaticCriteria() {
	_, err := suite.svc.GetBadgeService().CreateBadge(suite.ctx, &models.CreateBadgeRequest{
		Nombre: "Maratón", Descripcion: "50 horas", Tipo: models.BadgeTypeAutomatic, Categoria: models.BadgeCategoryHoras,
	})
	assert.True(suite.T(), models.IsValidationError(err))

	_, err = suite.svc.GetBadgeService().CreateBadge(suite.ctx, &models.CreateBadgeRequest{
		Nombre: "Maratón", Descripcion: "50 horas", Tipo: models.BadgeTypeAutomatic, Categoria: models.BadgeCategoryHoras,
		Criterio: models.CriterionHorasVoluntariado,
	})
	assert.True(suite.T(), models.IsValidationError(err))

	badge, err := suite.svc.GetBadgeService().CreateBadge(suite.ctx, &models.CreateBadgeRequest{
		Nombre: "Líder", Descripcion: "Coordinó un equipo", Tipo: models.BadgeTypeManual, Categoria: models.BadgeCategoryLiderazgo,
		Criterio: models.CriterionHorasVoluntariado, Umbral: 10,
	})
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), badge.Criterio)
	assert.Zero(suite.T(), badge.Umbral)
	assert.True(suite.T(), badge.Activo)
}

func (suite *BadgeServiceTestSuite) TestManualAwardIsIdempotent() {
	volunteer := suite.registerVolunteer("ana@example.com")
	badge, err := suite.svc.GetBadgeService().CreateBadge(suite.ctx, &models.CreateBadgeRequest{
		Nombre: "Líder", Descripcion: "Coordinó un equipo", Tipo: models.BadgeTypeManual, Categoria: models.BadgeCategoryLiderazgo,
	})
	require.NoError(suite.T(), err)

	awarded, err := suite.svc.GetBadgeService().AwardBadge(suite.ctx, volunteer.ID, badge.ID, "Gran trabajo", 1)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), awarded)

	awarded, err = suite.svc.GetBadgeService().AwardBadge(suite.ctx, volunteer.ID, badge.ID, "Otra vez", 1)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), awarded)

	held, err := suite.svc.GetBadgeService().GetUserBadges(suite.ctx, volunteer.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), held, 1)
	assert.Equal(suite.T(), "Gran trabajo", held[0].Motivo)
	assert.Equal(suite.T(), 1, suite.unread(volunteer.ID))

	_, err = suite.svc.GetBadgeService().AwardBadge(suite.ctx, volunteer.ID, 9999, "", 1)
	assert.ErrorIs(suite.T(), err, models.ErrNotFound)
}

func (suite *BadgeServiceTestSuite) TestConcurrentEvaluationAwardsOnce() {
	require.NoError(suite.T(), suite.svc.GetBadgeService().SeedDefaultBadges(suite.ctx))
	volunteer := suite.registerVolunteer("ana@example.com")
	suite.advance(400 * 24 * time.Hour)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			awarded, err := suite.svc.GetBadgeService().CheckAndAwardAutomaticBadges(suite.ctx, volunteer.ID)
			assert.NoError(suite.T(), err)
			mu.Lock()
			total += len(awarded)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(suite.T(), 1, total)
	held, err := suite.svc.GetBadgeService().GetUserBadges(suite.ctx, volunteer.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), held, 1)
	assert.Equal(suite.T(), "Un Año de Servicio", held[0].Badge.Nombre)
}

func (suite *BadgeServiceTestSuite) TestSweepSkipsInactiveVolunteers() {
	require.NoError(suite.T(), suite.svc.GetBadgeService().SeedDefaultBadges(suite.ctx))
	active := suite.registerVolunteer("ana@example.com")
	suspended := suite.registerVolunteer("bruno@example.com")
	_, err := suite.svc.GetUserService().UpdateUserStatus(suite.ctx, suspended.ID, models.UserStatusSuspended)
	require.NoError(suite.T(), err)
	suite.advance(366 * 24 * time.Hour)

	awarded, err := suite.svc.GetBadgeService().SweepAutomaticBadges(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, awarded)

	held, err := suite.svc.GetBadgeService().GetUserBadges(suite.ctx, active.ID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), held, 1)

	held, err = suite.svc.GetBadgeService().GetUserBadges(suite.ctx, suspended.ID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), held)

	awarded, err = suite.svc.GetBadgeService().SweepAutomaticBadges(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), awarded)
}

func (suite *BadgeServiceTestSuite) TestDeletedBadgeDisappearsFromProfile() {
	volunteer := suite.registerVolunteer("ana@example.com")
	badge, err := suite.svc.GetBadgeService().CreateBadge(suite.ctx, &models.CreateBadgeRequest{
		Nombre: "Especial", Descripcion: "Evento 2026", Tipo: models.BadgeTypeManual, Categoria: models.BadgeCategoryEspecial,
	})
	require.NoError(suite.T(), err)
	_, err = suite.svc.GetBadgeService().AwardBadge(suite.ctx, volunteer.ID, badge.ID, "", 1)
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.svc.GetBadgeService().DeleteBadge(suite.ctx, badge.ID))

	held, err := suite.svc.GetBadgeService().GetUserBadges(suite.ctx, volunteer.ID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), held)
}

func TestBadgeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BadgeServiceTestSuite))
}

type SkillServiceTestSuite struct {
	ServiceTestSuite
}

func (suite *SkillServiceTestSuite) TestCatalogIsSortedAndUnique() {
	skills := suite.svc.GetSkillService()
	_, err := skills.CreateSkill(suite.ctx, &models.CreateSkillRequest{Nombre: "Primeros auxilios", Categoria: models.SkillCategorySalud})
	require.NoError(suite.T(), err)
	_, err = skills.CreateSkill(suite.ctx, &models.CreateSkillRequest{Nombre: "Oratoria", Categoria: models.SkillCategoryComunicacion})
	require.NoError(suite.T(), err)
	_, err = skills.CreateSkill(suite.ctx, &models.CreateSkillRequest{Nombre: "Escritura", Categoria: models.SkillCategoryComunicacion})
	require.NoError(suite.T(), err)

	_, err = skills.CreateSkill(suite.ctx, &models.CreateSkillRequest{Nombre: " ORATORIA ", Categoria: models.SkillCategoryOtra})
	assert.ErrorIs(suite.T(), err, models.ErrAlreadyExists)

	catalog, err := skills.GetSkills(suite.ctx)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), catalog, 3)
	assert.Equal(suite.T(), "Escritura", catalog[0].Nombre)
	assert.Equal(suite.T(), "Oratoria", catalog[1].Nombre)
	assert.Equal(suite.T(), "Primeros auxilios", catalog[2].Nombre)
}

func (suite *SkillServiceTestSuite) TestUserSkillUpsertAndRemoval() {
	volunteer := suite.registerVolunteer("ana@example.com")
	skills := suite.svc.GetSkillService()
	skill, err := skills.CreateSkill(suite.ctx, &models.CreateSkillRequest{Nombre: "Oratoria", Categoria: models.SkillCategoryComunicacion})
	require.NoError(suite.T(), err)

	_, err = skills.AddUserSkill(suite.ctx, volunteer.ID, &models.AddUserSkillRequest{SkillID: skill.ID, Nivel: 2})
	require.NoError(suite.T(), err)
	_, err = skills.AddUserSkill(suite.ctx, volunteer.ID, &models.AddUserSkillRequest{SkillID: skill.ID, Nivel: 4})
	require.NoError(suite.T(), err)

	owned, err := skills.GetUserSkills(suite.ctx, volunteer.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), owned, 1)
	assert.Equal(suite.T(), 4, owned[0].Nivel)

	_, err = skills.AddUserSkill(suite.ctx, volunteer.ID, &models.AddUserSkillRequest{SkillID: skill.ID, Nivel: 6})
	assert.True(suite.T(), models.IsValidationError(err))
	_, err = skills.AddUserSkill(suite.ctx, volunteer.ID, &models.AddUserSkillRequest{SkillID: 9999, Nivel: 3})
	assert.ErrorIs(suite.T(), err, models.ErrNotFound)

	require.NoError(suite.T(), skills.RemoveUserSkill(suite.ctx, volunteer.ID, skill.ID))
	owned, err = skills.GetUserSkills(suite.ctx, volunteer.ID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), owned)
}

func TestSkillServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SkillServiceTestSuite))
}
