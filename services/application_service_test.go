package services

import (
	"sync"
	"testing"
	"voluntariado-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ApplicationServiceTestSuite struct {
	ServiceTestSuite
}

func (suite *ApplicationServiceTestSuite) TestApplyAcceptComplete() {
	require.NoError(suite.T(), suite.svc.GetBadgeService().SeedDefaultBadges(suite.ctx))
	owner, org := suite.registerOrganization("org@example.com")
	volunteer := suite.registerVolunteer("ana@example.com")
	opp := suite.createOpportunity(org.ID, 2, 4)

	app, err := suite.svc.GetApplicationService().Apply(suite.ctx, opp.ID, volunteer.ID, &models.ApplyRequest{Mensaje: "Quiero ayudar"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ApplicationStatusPending, app.Estado)
	assert.Equal(suite.T(), org.ID, app.OrganizacionID)
	assert.Equal(suite.T(), 1, suite.opportunity(opp.ID).VoluntariosInscritos)
	// verification notice plus the new application
	assert.Equal(suite.T(), 2, suite.unread(owner.ID))

	app, err = suite.setStatus(app.ID, org.ID, models.ApplicationStatusAccepted)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), app.FechaRespuesta)
	activity, err := suite.repos.GetActivityRepository().GetActivityByApplication(suite.ctx, app.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ActivityStatusScheduled, activity.Estado)
	assert.Equal(suite.T(), 1, suite.opportunity(opp.ID).VoluntariosInscritos)

	rating := 5
	app, err = suite.svc.GetApplicationService().UpdateStatus(suite.ctx, app.ID, &models.UpdateApplicationStatusRequest{
		Estado:       models.ApplicationStatusCompleted,
		Calificacion: &rating,
		Comentario:   "Excelente trabajo",
	}, org.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ApplicationStatusCompleted, app.Estado)

	user := suite.user(volunteer.ID)
	assert.Equal(suite.T(), 4.0, user.HorasVoluntariado)
	assert.Equal(suite.T(), 1, user.ActividadesCompletadas)
	assert.Equal(suite.T(), 5.0, user.CalificacionPromedio())

	activities, err := suite.svc.GetBadgeService().GetUserActivities(suite.ctx, volunteer.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), activities, 1)
	assert.Equal(suite.T(), models.ActivityStatusCompleted, activities[0].Estado)
	assert.Equal(suite.T(), "Limpieza de playa", activities[0].OportunidadTitulo)

	badges, err := suite.svc.GetBadgeService().GetUserBadges(suite.ctx, volunteer.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), badges, 1)
	assert.Equal(suite.T(), "Primer Voluntariado", badges[0].Badge.Nombre)

	// accepted, completed and badge notifications
	assert.Equal(suite.T(), 3, suite.unread(volunteer.ID))
	assert.GreaterOrEqual(suite.T(), suite.mailer.count(), 2)
}

func (suite *ApplicationServiceTestSuite) TestCompleteWithReportedHours() {
	_, org := suite.registerOrganization("org@example.com")
	volunteer := suite.registerVolunteer("ana@example.com")
	opp := suite.createOpportunity(org.ID, 1, 4)

	app, err := suite.svc.GetApplicationService().Apply(suite.ctx, opp.ID, volunteer.ID, nil)
	require.NoError(suite.T(), err)
	_, err = suite.setStatus(app.ID, org.ID, models.ApplicationStatusAccepted)
	require.NoError(suite.T(), err)

	hours := 2.5
	_, err = suite.svc.GetApplicationService().UpdateStatus(suite.ctx, app.ID, &models.UpdateApplicationStatusRequest{
		Estado:           models.ApplicationStatusCompleted,
		HorasCompletadas: &hours,
	}, org.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2.5, suite.user(volunteer.ID).HorasVoluntariado)

	_, err = suite.setStatus(app.ID, org.ID, models.ApplicationStatusCompleted)
	assert.ErrorIs(suite.T(), err, models.ErrInvalidTransition)
	assert.Equal(suite.T(), 2.5, suite.user(volunteer.ID).HorasVoluntariado)
}

func (suite *ApplicationServiceTestSuite) TestDuplicateApplication() {
	_, org := suite.registerOrganization("org@example.com")
	volunteer := suite.registerVolunteer("ana@example.com")
	opp := suite.createOpportunity(org.ID, 5, 2)

	_, err := suite.svc.GetApplicationService().Apply(suite.ctx, opp.ID, volunteer.ID, nil)
	require.NoError(suite.T(), err)
	_, err = suite.svc.GetApplicationService().Apply(suite.ctx, opp.ID, volunteer.ID, nil)
	assert.ErrorIs(suite.T(), err, models.ErrDuplicateApplication)
	assert.Equal(suite.T(), 1, suite.opportunity(opp.ID).VoluntariosInscritos)
}

func (suite *ApplicationServiceTestSuite) TestConcurrentApplicationsForLastSlot() {
	_, org := suite.registerOrganization("org@example.com")
	opp := suite.createOpportunity(org.ID, 1, 2)

	const volunteers = 8
	ids := make([]int64, volunteers)
	for i := range ids {
		ids[i] = suite.registerVolunteer("v" + string(rune('a'+i)) + "@example.com").ID
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		full    int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := suite.svc.GetApplicationService().Apply(suite.ctx, opp.ID, userID, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case assert.ErrorIs(suite.T(), err, models.ErrOpportunityFull):
				full++
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(suite.T(), 1, success)
	assert.Equal(suite.T(), volunteers-1, full)
	assert.Equal(suite.T(), 1, suite.opportunity(opp.ID).VoluntariosInscritos)
}

func (suite *ApplicationServiceTestSuite) TestApplyToInactiveOpportunity() {
	_, org := suite.registerOrganization("org@example.com")
	volunteer := suite.registerVolunteer("ana@example.com")
	opp := suite.createOpportunity(org.ID, 5, 2)

	paused := models.OpportunityStatusPaused
	_, err := suite.svc.GetOpportunityService().Update(suite.ctx, opp.ID, &models.UpdateOpportunityRequest{Estado: &paused}, org.ID)
	require.NoError(suite.T(), err)

	_, err = suite.svc.GetApplicationService().Apply(suite.ctx, opp.ID, volunteer.ID, nil)
	assert.ErrorIs(suite.T(), err, models.ErrOpportunityNotActive)
}

func (suite *ApplicationServiceTestSuite) TestRejectReleasesSlot() {
	_, org := suite.registerOrganization("org@example.com")
	first := suite.registerVolunteer("ana@example.com")
	second := suite.registerVolunteer("bruno@example.com")
	opp := suite.createOpportunity(org.ID, 1, 2)

	app, err := suite.svc.GetApplicationService().Apply(suite.ctx, opp.ID, first.ID, nil)
	require.NoError(suite.T(), err)
	_, err = suite.svc.GetApplicationService().Apply(suite.ctx, opp.ID, second.ID, nil)
	assert.ErrorIs(suite.T(), err, models.ErrOpportunityFull)

	_, err = suite.setStatus(app.ID, org.ID, models.ApplicationStatusRejected)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, suite.opportunity(opp.ID).VoluntariosInscritos)

	_, err = suite.svc.GetApplicationService().Apply(suite.ctx, opp.ID, second.ID, nil)
	assert.NoError(suite.T(), err)
}

func (suite *ApplicationServiceTestSuite) TestWithdrawAcceptedCancelsActivity() {
	owner, org := suite.registerOrganization("org@example.com")
	volunteer := suite.registerVolunteer("ana@example.com")
	opp := suite.createOpportunity(org.ID, 3, 2)

	app, err := suite.svc.GetApplicationService().Apply(suite.ctx, opp.ID, volunteer.ID, nil)
	require.NoError(suite.T(), err)
	_, err = suite.setStatus(app.ID, org.ID, models.ApplicationStatusAccepted)
	require.NoError(suite.T(), err)

	app, err = suite.svc.GetApplicationService().Withdraw(suite.ctx, app.ID, volunteer.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ApplicationStatusWithdrawn, app.Estado)
	assert.Equal(suite.T(), 0, suite.opportunity(opp.ID).VoluntariosInscritos)

	activity, err := suite.repos.GetActivityRepository().GetActivityByApplication(suite.ctx, app.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ActivityStatusCancelled, activity.Estado)

	// verification, new application and withdrawal
	assert.Equal(suite.T(), 3, suite.unread(owner.ID))

	_, err = suite.svc.GetApplicationService().Withdraw(suite.ctx, app.ID, volunteer.ID)
	assert.ErrorIs(suite.T(), err, models.ErrInvalidTransition)
}

func (suite *ApplicationServiceTestSuite) TestOnlyOwnersMayChangeApplications() {
	_, org := suite.registerOrganization("org@example.com")
	_, other := suite.registerOrganization("otra@example.com")
	volunteer := suite.registerVolunteer("ana@example.com")
	intruder := suite.registerVolunteer("bruno@example.com")
	opp := suite.createOpportunity(org.ID, 3, 2)

	app, err := suite.svc.GetApplicationService().Apply(suite.ctx, opp.ID, volunteer.ID, nil)
	require.NoError(suite.T(), err)

	_, err = suite.setStatus(app.ID, other.ID, models.ApplicationStatusAccepted)
	assert.ErrorIs(suite.T(), err, models.ErrNotAuthorized)

	_, err = suite.svc.GetApplicationService().Withdraw(suite.ctx, app.ID, intruder.ID)
	assert.ErrorIs(suite.T(), err, models.ErrNotAuthorized)

	_, err = suite.setStatus(app.ID, org.ID, models.ApplicationStatusCompleted)
	assert.ErrorIs(suite.T(), err, models.ErrInvalidTransition)
}

func (suite *ApplicationServiceTestSuite) TestGetByIDVisibility() {
	_, org := suite.registerOrganization("org@example.com")
	volunteer := suite.registerVolunteer("ana@example.com")
	stranger := suite.registerVolunteer("bruno@example.com")
	opp := suite.createOpportunity(org.ID, 3, 2)

	app, err := suite.svc.GetApplicationService().Apply(suite.ctx, opp.ID, volunteer.ID, nil)
	require.NoError(suite.T(), err)

	dto, err := suite.svc.GetApplicationService().GetByID(suite.ctx, app.ID, &models.JWTClaims{UserID: volunteer.ID, Role: models.UserRoleVoluntario})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Limpieza de playa", dto.OportunidadTitulo)
	assert.Equal(suite.T(), "Fundación Verde", dto.OrganizacionNombre)

	_, err = suite.svc.GetApplicationService().GetByID(suite.ctx, app.ID, &models.JWTClaims{UserID: 999, Role: models.UserRoleOrganizacion, OrganizationID: org.ID})
	assert.NoError(suite.T(), err)

	_, err = suite.svc.GetApplicationService().GetByID(suite.ctx, app.ID, &models.JWTClaims{UserID: stranger.ID, Role: models.UserRoleVoluntario})
	assert.ErrorIs(suite.T(), err, models.ErrNotAuthorized)
}

func (suite *ApplicationServiceTestSuite) TestListingsFilterByStatusAndOpportunity() {
	_, org := suite.registerOrganization("org@example.com")
	volunteer := suite.registerVolunteer("ana@example.com")
	first := suite.createOpportunity(org.ID, 3, 2)
	second := suite.createOpportunity(org.ID, 3, 2)

	app, err := suite.svc.GetApplicationService().Apply(suite.ctx, first.ID, volunteer.ID, nil)
	require.NoError(suite.T(), err)
	suite.advance(1)
	_, err = suite.svc.GetApplicationService().Apply(suite.ctx, second.ID, volunteer.ID, nil)
	require.NoError(suite.T(), err)
	_, err = suite.setStatus(app.ID, org.ID, models.ApplicationStatusAccepted)
	require.NoError(suite.T(), err)

	mine, err := suite.svc.GetApplicationService().GetMyApplications(suite.ctx, volunteer.ID, models.ApplicationFilter{})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 2, mine.Total)
	assert.Equal(suite.T(), second.ID, mine.Items[0].OportunidadID)

	accepted, err := suite.svc.GetApplicationService().GetMyApplications(suite.ctx, volunteer.ID,
		models.ApplicationFilter{Estado: models.ApplicationStatusAccepted})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, accepted.Total)

	byOpp, err := suite.svc.GetApplicationService().GetOrganizationApplications(suite.ctx, org.ID,
		models.ApplicationFilter{OportunidadID: second.ID})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 1, byOpp.Total)
	assert.Equal(suite.T(), "Ana Pérez", byOpp.Items[0].VoluntarioNombre)
}

func TestApplicationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ApplicationServiceTestSuite))
}
