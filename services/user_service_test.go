package services

import (
	"bytes"
	"testing"
	"voluntariado-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type UserServiceTestSuite struct {
	ServiceTestSuite
}

func (suite *UserServiceTestSuite) TestRegisterVolunteer() {
	resp, err := suite.svc.GetAuthService().Register(suite.ctx, &models.RegisterRequest{
		Email:    "  Ana@Example.com ",
		Password: "securePassword123",
		Nombre:   " Ana ",
		Rol:      models.UserRoleVoluntario,
	})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "ana@example.com", resp.User.Email)
	assert.Equal(suite.T(), "Ana", resp.User.Nombre)
	assert.Equal(suite.T(), models.UserStatusActive, resp.User.Estado)
	assert.Equal(suite.T(), "Bearer", resp.TokenType)
	assert.Equal(suite.T(), int64(3600), resp.ExpiresIn)
	assert.Nil(suite.T(), resp.Organization)
	assert.Equal(suite.T(), 1, suite.mailer.count())
}

func (suite *UserServiceTestSuite) TestRegisterDuplicateEmail() {
	suite.registerVolunteer("ana@example.com")

	_, err := suite.svc.GetAuthService().Register(suite.ctx, &models.RegisterRequest{
		Email:    "ANA@example.com",
		Password: "securePassword123",
		Nombre:   "Otra",
		Rol:      models.UserRoleVoluntario,
	})
	assert.ErrorIs(suite.T(), err, models.ErrEmailTaken)
}

func (suite *UserServiceTestSuite) TestRegisterRejectsAdminAndIncompleteOrganization() {
	_, err := suite.svc.GetAuthService().Register(suite.ctx, &models.RegisterRequest{
		Email: "root@example.com", Password: "securePassword123", Nombre: "Root", Rol: models.UserRoleAdmin,
	})
	assert.True(suite.T(), models.IsValidationError(err))

	_, err = suite.svc.GetAuthService().Register(suite.ctx, &models.RegisterRequest{
		Email: "org@example.com", Password: "securePassword123", Nombre: "Org", Rol: models.UserRoleOrganizacion,
	})
	assert.True(suite.T(), models.IsValidationError(err))
}

func (suite *UserServiceTestSuite) TestRegisterOrganizationCreatesProfile() {
	owner, org := suite.registerOrganization("org@example.com")

	assert.Equal(suite.T(), models.UserRoleOrganizacion, owner.Rol)
	assert.Equal(suite.T(), owner.ID, org.UsuarioID)
	assert.True(suite.T(), org.Verificada)
}

func (suite *UserServiceTestSuite) TestLogin() {
	user := suite.registerVolunteer("ana@example.com")

	resp, err := suite.svc.GetAuthService().Login(suite.ctx, &models.LoginRequest{Email: "ana@example.com", Password: "securePassword123"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.ID, resp.User.ID)
	assert.NotEmpty(suite.T(), resp.AccessToken)

	_, err = suite.svc.GetAuthService().Login(suite.ctx, &models.LoginRequest{Email: "ana@example.com", Password: "wrong-password"})
	assert.ErrorIs(suite.T(), err, models.ErrInvalidCredentials)

	_, err = suite.svc.GetAuthService().Login(suite.ctx, &models.LoginRequest{Email: "nobody@example.com", Password: "securePassword123"})
	assert.ErrorIs(suite.T(), err, models.ErrInvalidCredentials)
}

func (suite *UserServiceTestSuite) TestLoginOrganizationCarriesOrganization() {
	_, org := suite.registerOrganization("org@example.com")

	resp, err := suite.svc.GetAuthService().Login(suite.ctx, &models.LoginRequest{Email: "org@example.com", Password: "securePassword123"})
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), resp.Organization)
	assert.Equal(suite.T(), org.ID, resp.Organization.ID)
}

func (suite *UserServiceTestSuite) TestSuspendedUserCannotLogin() {
	user := suite.registerVolunteer("ana@example.com")
	_, err := suite.svc.GetUserService().UpdateUserStatus(suite.ctx, user.ID, models.UserStatusSuspended)
	require.NoError(suite.T(), err)

	_, err = suite.svc.GetAuthService().Login(suite.ctx, &models.LoginRequest{Email: "ana@example.com", Password: "securePassword123"})
	assert.ErrorIs(suite.T(), err, models.ErrAccountInactive)
}

func (suite *UserServiceTestSuite) TestUpdateUserStatusRejectsUnknownStatus() {
	user := suite.registerVolunteer("ana@example.com")
	_, err := suite.svc.GetUserService().UpdateUserStatus(suite.ctx, user.ID, models.UserStatus("Frozen"))
	assert.True(suite.T(), models.IsValidationError(err))
}

func (suite *UserServiceTestSuite) TestUpdateProfile() {
	user := suite.registerVolunteer("ana@example.com")
	nombre := "  Ana María "
	bio := "Me gusta ayudar"

	dto, err := suite.svc.GetUserService().UpdateProfile(suite.ctx, user.ID, &models.UpdateProfileRequest{
		Nombre:    &nombre,
		Biografia: &bio,
		Intereses: []string{"Educación"},
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Ana María", dto.Nombre)
	assert.Equal(suite.T(), bio, dto.Biografia)

	empty := " "
	_, err = suite.svc.GetUserService().UpdateProfile(suite.ctx, user.ID, &models.UpdateProfileRequest{Nombre: &empty})
	assert.True(suite.T(), models.IsValidationError(err))
}

func (suite *UserServiceTestSuite) TestPublicProfileHidesContactData() {
	user := suite.registerVolunteer("ana@example.com")

	profile, err := suite.svc.GetUserService().GetPublicProfile(suite.ctx, user.ID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), profile.Email)
	assert.Empty(suite.T(), profile.Badges)
	assert.Empty(suite.T(), profile.Skills)
}

func (suite *UserServiceTestSuite) TestGetUsersFiltersAndPaginates() {
	suite.registerVolunteer("ana@example.com")
	suite.advance(1)
	suite.registerVolunteer("bruno@example.com")
	suite.registerOrganization("org@example.com")

	page, err := suite.svc.GetUserService().GetUsers(suite.ctx, models.UserFilter{
		Rol:        models.UserRoleVoluntario,
		Pagination: models.Pagination{Page: 1, PageSize: 1},
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, page.Total)
	assert.Equal(suite.T(), 2, page.TotalPages)
	assert.True(suite.T(), page.HasNext)
	require.Len(suite.T(), page.Items, 1)
	assert.Equal(suite.T(), "bruno@example.com", page.Items[0].Email)

	page, err = suite.svc.GetUserService().GetUsers(suite.ctx, models.UserFilter{SearchTerm: "ANA@"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, page.Total)
}

func (suite *UserServiceTestSuite) TestUploadAvatar() {
	user := suite.registerVolunteer("ana@example.com")
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

	dto, err := suite.svc.GetUserService().UploadAvatar(suite.ctx, user.ID, &models.ImageFile{
		Filename: "me.png",
		Size:     int64(len(png)),
		Content:  bytes.NewReader(png),
	})
	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), dto.FotoPerfil, "https://cdn.example.com/avatars/")
	assert.Len(suite.T(), suite.storage.uploads, 1)
}

func (suite *UserServiceTestSuite) TestUploadAvatarRejectsNonImage() {
	user := suite.registerVolunteer("ana@example.com")
	text := []byte("just some plain text, not an image at all")

	_, err := suite.svc.GetUserService().UploadAvatar(suite.ctx, user.ID, &models.ImageFile{
		Filename: "me.png",
		Size:     int64(len(text)),
		Content:  bytes.NewReader(text),
	})
	assert.True(suite.T(), models.IsValidationError(err))
	assert.Empty(suite.T(), suite.storage.uploads)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
