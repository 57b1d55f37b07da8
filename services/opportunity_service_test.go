package services

import (
	"testing"
	"time"
	"voluntariado-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type OpportunityServiceTestSuite struct {
	ServiceTestSuite
}

func (suite *OpportunityServiceTestSuite) post(orgID int64, titulo, area, ubicacion string) *models.Opportunity {
	start := suite.now().Add(24 * time.Hour)
	opp, err := suite.svc.GetOpportunityService().Create(suite.ctx, &models.CreateOpportunityRequest{
		Titulo:                titulo,
		Descripcion:           "Actividad comunitaria de fin de semana",
		AreaInteres:           area,
		Ubicacion:             ubicacion,
		FechaInicio:           start,
		FechaFin:              start.Add(4 * time.Hour),
		DuracionHoras:         4,
		VoluntariosRequeridos: 5,
	}, orgID)
	require.NoError(suite.T(), err)
	suite.advance(time.Minute)
	return opp
}

func (suite *OpportunityServiceTestSuite) TestGetAllFiltersAndSortsNewestFirst() {
	_, org := suite.registerOrganization("org@example.com")
	beach := suite.post(org.ID, "Limpieza de Playa", "Medio Ambiente", "Valparaíso")
	school := suite.post(org.ID, "Apoyo escolar", "Educación", "Santiago Centro")
	park := suite.post(org.ID, "Reforestación del parque", "Medio Ambiente", "Santiago")
	svc := suite.svc.GetOpportunityService()

	all, err := svc.GetAll(suite.ctx, models.OpportunityFilter{})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 3, all.Total)
	assert.Equal(suite.T(), []int64{park.ID, school.ID, beach.ID},
		[]int64{all.Items[0].ID, all.Items[1].ID, all.Items[2].ID})

	byTerm, err := svc.GetAll(suite.ctx, models.OpportunityFilter{SearchTerm: "PLAYA"})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 1, byTerm.Total)
	assert.Equal(suite.T(), beach.ID, byTerm.Items[0].ID)

	byArea, err := svc.GetAll(suite.ctx, models.OpportunityFilter{AreaInteres: "medio ambiente"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, byArea.Total)

	byPlace, err := svc.GetAll(suite.ctx, models.OpportunityFilter{Ubicacion: "santiago"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, byPlace.Total)

	paused := models.OpportunityStatusPaused
	_, err = svc.Update(suite.ctx, school.ID, &models.UpdateOpportunityRequest{Estado: &paused}, org.ID)
	require.NoError(suite.T(), err)
	byStatus, err := svc.GetAll(suite.ctx, models.OpportunityFilter{Status: models.OpportunityStatusPaused})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 1, byStatus.Total)
	assert.Equal(suite.T(), school.ID, byStatus.Items[0].ID)

	page, err := svc.GetAll(suite.ctx, models.OpportunityFilter{Pagination: models.Pagination{Page: 1, PageSize: 2}})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), page.Items, 2)
	assert.Equal(suite.T(), 2, page.TotalPages)
	assert.True(suite.T(), page.HasNext)
}

func (suite *OpportunityServiceTestSuite) TestGetByIDDetail() {
	_, org := suite.registerOrganization("org@example.com")
	volunteer := suite.registerVolunteer("ana@example.com")
	opp := suite.createOpportunity(org.ID, 3, 4)
	svc := suite.svc.GetOpportunityService()

	detail, err := svc.GetByID(suite.ctx, opp.ID, 0)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), opp.ID, detail.ID)
	assert.Equal(suite.T(), "Fundación Verde", detail.OrganizacionNombre)
	assert.Equal(suite.T(), "Jornada de limpieza en la costa", detail.Descripcion)
	assert.Equal(suite.T(), 3, detail.CuposDisponibles)
	assert.False(suite.T(), detail.YaAplico)

	_, err = suite.svc.GetApplicationService().Apply(suite.ctx, opp.ID, volunteer.ID, nil)
	require.NoError(suite.T(), err)

	detail, err = svc.GetByID(suite.ctx, opp.ID, volunteer.ID)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), detail.YaAplico)
	assert.Equal(suite.T(), 2, detail.CuposDisponibles)
	assert.Equal(suite.T(), 1, detail.VoluntariosInscritos)

	_, err = svc.GetByID(suite.ctx, 999, 0)
	assert.ErrorIs(suite.T(), err, models.ErrNotFound)
}

func (suite *OpportunityServiceTestSuite) TestCreateValidation() {
	_, org := suite.registerOrganization("org@example.com")
	start := suite.now()
	svc := suite.svc.GetOpportunityService()

	tests := []struct {
		name string
		req  models.CreateOpportunityRequest
	}{
		{"end before start", models.CreateOpportunityRequest{Titulo: "Huerto", Descripcion: "Huerto comunitario",
			FechaInicio: start, FechaFin: start.Add(-time.Hour), VoluntariosRequeridos: 1}},
		{"no capacity", models.CreateOpportunityRequest{Titulo: "Huerto", Descripcion: "Huerto comunitario",
			FechaInicio: start, FechaFin: start.Add(time.Hour)}},
		{"negative hours", models.CreateOpportunityRequest{Titulo: "Huerto", Descripcion: "Huerto comunitario",
			FechaInicio: start, FechaFin: start.Add(time.Hour), VoluntariosRequeridos: 1, DuracionHoras: -1}},
		{"blank title", models.CreateOpportunityRequest{Titulo: "   ", Descripcion: "Huerto comunitario",
			FechaInicio: start, FechaFin: start.Add(time.Hour), VoluntariosRequeridos: 1}},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := svc.Create(suite.ctx, &tt.req, org.ID)
			assert.True(suite.T(), models.IsValidationError(err), "%v", err)
		})
	}

	created := suite.createOpportunity(org.ID, 2, 3)
	assert.Equal(suite.T(), models.OpportunityStatusActive, created.Estado)
	assert.Zero(suite.T(), created.VoluntariosInscritos)
}

func (suite *OpportunityServiceTestSuite) TestUpdateRules() {
	_, org := suite.registerOrganization("org@example.com")
	_, other := suite.registerOrganization("otra@example.com")
	opp := suite.createOpportunity(org.ID, 3, 4)
	for _, email := range []string{"ana@example.com", "luis@example.com"} {
		v := suite.registerVolunteer(email)
		_, err := suite.svc.GetApplicationService().Apply(suite.ctx, opp.ID, v.ID, nil)
		require.NoError(suite.T(), err)
	}
	svc := suite.svc.GetOpportunityService()

	title := "Limpieza de playa y dunas"
	_, err := svc.Update(suite.ctx, opp.ID, &models.UpdateOpportunityRequest{Titulo: &title}, other.ID)
	assert.ErrorIs(suite.T(), err, models.ErrNotAuthorized)

	one := 1
	_, err = svc.Update(suite.ctx, opp.ID, &models.UpdateOpportunityRequest{VoluntariosRequeridos: &one}, org.ID)
	assert.True(suite.T(), models.IsValidationError(err), "capacity below enrolled")

	unknown := models.OpportunityStatus("Archived")
	_, err = svc.Update(suite.ctx, opp.ID, &models.UpdateOpportunityRequest{Estado: &unknown}, org.ID)
	assert.True(suite.T(), models.IsValidationError(err))

	two := 2
	updated, err := svc.Update(suite.ctx, opp.ID, &models.UpdateOpportunityRequest{Titulo: &title, VoluntariosRequeridos: &two}, org.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), title, updated.Titulo)
	assert.Equal(suite.T(), 2, updated.VoluntariosRequeridos)
	assert.Equal(suite.T(), 2, updated.VoluntariosInscritos)
}

func (suite *OpportunityServiceTestSuite) TestUpdateStatusTransitions() {
	_, org := suite.registerOrganization("org@example.com")
	opp := suite.createOpportunity(org.ID, 3, 4)
	svc := suite.svc.GetOpportunityService()
	move := func(to models.OpportunityStatus) error {
		_, err := svc.Update(suite.ctx, opp.ID, &models.UpdateOpportunityRequest{Estado: &to}, org.ID)
		return err
	}

	steps := []struct {
		to      models.OpportunityStatus
		allowed bool
	}{
		{models.OpportunityStatusActive, true},
		{models.OpportunityStatusDraft, false},
		{models.OpportunityStatusPaused, true},
		{models.OpportunityStatusActive, true},
		{models.OpportunityStatusClosed, true},
		{models.OpportunityStatusActive, false},
		{models.OpportunityStatusPaused, false},
		{models.OpportunityStatusCompleted, true},
		{models.OpportunityStatusClosed, false},
		{models.OpportunityStatusActive, false},
	}
	for _, step := range steps {
		before := suite.opportunity(opp.ID).Estado
		err := move(step.to)
		if step.allowed {
			require.NoError(suite.T(), err, "%s -> %s", before, step.to)
			assert.Equal(suite.T(), step.to, suite.opportunity(opp.ID).Estado)
		} else {
			assert.ErrorIs(suite.T(), err, models.ErrInvalidTransition, "%s -> %s", before, step.to)
			assert.Equal(suite.T(), before, suite.opportunity(opp.ID).Estado)
		}
	}
}

func (suite *OpportunityServiceTestSuite) TestClosingNotifiesOpenApplicants() {
	owner, org := suite.registerOrganization("org@example.com")
	opp := suite.createOpportunity(org.ID, 5, 4)
	apply := func(email string) (*models.UserDto, int64) {
		v := suite.registerVolunteer(email)
		app, err := suite.svc.GetApplicationService().Apply(suite.ctx, opp.ID, v.ID, nil)
		require.NoError(suite.T(), err)
		return v, app.ID
	}
	pending, _ := apply("ana@example.com")
	accepted, acceptedApp := apply("luis@example.com")
	rejected, rejectedApp := apply("eva@example.com")
	_, err := suite.setStatus(acceptedApp, org.ID, models.ApplicationStatusAccepted)
	require.NoError(suite.T(), err)
	_, err = suite.setStatus(rejectedApp, org.ID, models.ApplicationStatusRejected)
	require.NoError(suite.T(), err)

	before := map[int64]int{}
	for _, v := range []*models.UserDto{pending, accepted, rejected} {
		before[v.ID] = suite.unread(v.ID)
	}

	closed := models.OpportunityStatusClosed
	_, err = suite.svc.GetOpportunityService().Update(suite.ctx, opp.ID, &models.UpdateOpportunityRequest{Estado: &closed}, org.ID)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), before[pending.ID]+1, suite.unread(pending.ID))
	assert.Equal(suite.T(), before[accepted.ID]+1, suite.unread(accepted.ID))
	assert.Equal(suite.T(), before[rejected.ID], suite.unread(rejected.ID))

	page, err := suite.svc.GetNotificationService().GetNotifications(suite.ctx, pending.ID, models.NotificationFilter{UnreadOnly: true})
	require.NoError(suite.T(), err)
	var closure *models.Notification
	for _, n := range page.Items {
		if n.Tipo == models.NotificationSistema {
			closure = n
		}
	}
	require.NotNil(suite.T(), closure)
	assert.Equal(suite.T(), "Oportunidad cerrada", closure.Titulo)
	assert.Contains(suite.T(), closure.Mensaje, opp.Titulo)
	require.NotNil(suite.T(), closure.RemitenteID)
	assert.Equal(suite.T(), owner.ID, *closure.RemitenteID)

	// editing a closed opportunity does not announce it again
	title := "Limpieza de playa 2026"
	_, err = suite.svc.GetOpportunityService().Update(suite.ctx, opp.ID, &models.UpdateOpportunityRequest{Titulo: &title}, org.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), before[pending.ID]+1, suite.unread(pending.ID))
}

func (suite *OpportunityServiceTestSuite) TestDeleteRefusesWithApplications() {
	_, org := suite.registerOrganization("org@example.com")
	_, other := suite.registerOrganization("otra@example.com")
	volunteer := suite.registerVolunteer("ana@example.com")
	taken := suite.createOpportunity(org.ID, 3, 4)
	free := suite.createOpportunity(org.ID, 3, 4)
	_, err := suite.svc.GetApplicationService().Apply(suite.ctx, taken.ID, volunteer.ID, nil)
	require.NoError(suite.T(), err)
	svc := suite.svc.GetOpportunityService()

	assert.ErrorIs(suite.T(), svc.Delete(suite.ctx, taken.ID, org.ID), models.ErrHasApplications)
	assert.ErrorIs(suite.T(), svc.AdminDelete(suite.ctx, taken.ID), models.ErrHasApplications)
	assert.ErrorIs(suite.T(), svc.Delete(suite.ctx, free.ID, other.ID), models.ErrNotAuthorized)

	require.NoError(suite.T(), svc.Delete(suite.ctx, free.ID, org.ID))
	_, err = svc.GetByID(suite.ctx, free.ID, 0)
	assert.ErrorIs(suite.T(), err, models.ErrNotFound)
}

func (suite *OpportunityServiceTestSuite) TestListByOrganization() {
	_, org := suite.registerOrganization("org@example.com")
	_, other := suite.registerOrganization("otra@example.com")
	first := suite.post(org.ID, "Banco de alimentos", "Social", "Valparaíso")
	second := suite.post(org.ID, "Colecta de invierno", "Social", "Valparaíso")
	suite.post(other.ID, "Apoyo escolar", "Educación", "Santiago")

	rows, err := suite.svc.GetOpportunityService().ListByOrganization(suite.ctx, org.ID)

	require.NoError(suite.T(), err)
	require.Len(suite.T(), rows, 2)
	assert.Equal(suite.T(), second.ID, rows[0].ID)
	assert.Equal(suite.T(), first.ID, rows[1].ID)
}

func TestOpportunityServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OpportunityServiceTestSuite))
}
