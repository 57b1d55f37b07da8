package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"voluntariado-backend/dal"
	"voluntariado-backend/infrastructure"
	"voluntariado-backend/middelware"
	"voluntariado-backend/models"
	"voluntariado-backend/repository"
	"voluntariado-backend/services"
	"voluntariado-backend/utils/logger"
	"voluntariado-backend/utils/realtime"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type nopMailer struct{}

func (nopMailer) Send(ctx context.Context, toEmail, toName, subject, body string) error { return nil }

type memoryStorage struct{}

func (memoryStorage) Upload(ctx context.Context, folder, publicID string, content io.Reader) (string, error) {
	if _, err := io.ReadAll(content); err != nil {
		return "", err
	}
	return "https://cdn.example.com/" + folder + "/" + publicID, nil
}

// stubGateway approves every order and accepts webhooks carrying a transmission id
type stubGateway struct{}

func (stubGateway) CreateOrder(ctx context.Context, amount models.Money, currency, description, requestID string) (*models.PaymentOrder, error) {
	return &models.PaymentOrder{
		OrderID:     "ORDER-1",
		Status:      "CREATED",
		ApprovalURL: "https://www.sandbox.paypal.com/checkoutnow?token=ORDER-1",
	}, nil
}

func (stubGateway) CaptureOrder(ctx context.Context, orderID, requestID string) (*models.PaymentCapture, error) {
	return nil, fmt.Errorf("%w: INSTRUMENT_DECLINED", models.ErrPaymentFailed)
}

func (stubGateway) VerifyWebhook(ctx context.Context, headers http.Header, body []byte) (*models.WebhookEvent, error) {
	if headers.Get("Paypal-Transmission-Id") == "" {
		return nil, fmt.Errorf("%w: missing transmission headers", models.ErrInvalidSignature)
	}
	return &models.WebhookEvent{ID: "WH-1", EventType: models.WebhookCaptureCompleted}, nil
}

// APITestSuite serves the full route table on the in-process store
type APITestSuite struct {
	suite.Suite
	ctx    context.Context
	config *models.Config
	repos  *repository.Container
	svc    *services.Service
	jwt    *middelware.JWTManager
	hub    *realtime.Hub
	router *gin.Engine
}

func (suite *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.ctx = context.Background()
	suite.config = &models.Config{
		AppName:             "Voluntariado",
		AppVersion:          "1.0.0",
		BasePath:            "/api",
		JWTSecret:           "test-secret",
		JWTExpiresIn:        time.Hour,
		DynamoDBTablePrefix: "test",
		UploadMaxBytes:      1 << 20,
		MessageEditWindow:   15 * time.Minute,
	}

	log := logger.NewLogger("error", "text")
	db := dal.NewMemoryClient(infrastructure.HashKeys("test"))
	suite.repos = repository.NewContainer(db, suite.config, log)
	suite.jwt = middelware.NewJWTManager(suite.config, log, suite.repos.GetUserRepository())
	suite.hub = realtime.NewHub(log, realtime.DefaultBuffer)
	suite.svc = services.NewService(suite.repos, services.Collaborators{
		Tokens:   suite.jwt,
		Realtime: suite.hub,
		Mailer:   nopMailer{},
		Storage:  memoryStorage{},
		Payments: stubGateway{},
	}, log, suite.config)

	suite.router = gin.New()
	NewController(suite.svc, suite.jwt, suite.hub, suite.config, log).RegisterRoutes(suite.router)
}

func (suite *APITestSuite) TearDownTest() {
	suite.hub.Close()
}

func (suite *APITestSuite) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, models.APIResponse) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var resp models.APIResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

// decode re-reads the data member of the envelope into out
func (suite *APITestSuite) decode(resp models.APIResponse, out interface{}) {
	raw, err := json.Marshal(resp.Data)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), json.Unmarshal(raw, out))
}

func (suite *APITestSuite) register(req models.RegisterRequest) models.AuthResponse {
	if req.Password == "" {
		req.Password = "securePassword123"
	}
	w, resp := suite.do(http.MethodPost, "/api/auth/register", "", req)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	var auth models.AuthResponse
	suite.decode(resp, &auth)
	require.NotEmpty(suite.T(), auth.AccessToken)
	return auth
}

func (suite *APITestSuite) registerVolunteer(email string) models.AuthResponse {
	return suite.register(models.RegisterRequest{Email: email, Nombre: "Ana", Apellido: "García", Rol: models.UserRoleVoluntario})
}

// registerOrganization creates an organization account and verifies it
func (suite *APITestSuite) registerOrganization(email string) models.AuthResponse {
	auth := suite.register(models.RegisterRequest{
		Email:              email,
		Nombre:             "Laura",
		Rol:                models.UserRoleOrganizacion,
		OrganizacionNombre: "Fundación Verde",
		OrganizacionEmail:  "contacto+" + email,
	})
	require.NotNil(suite.T(), auth.Organization)
	_, err := suite.svc.GetOrganizationService().VerifyOrganization(suite.ctx, auth.Organization.ID, true)
	require.NoError(suite.T(), err)
	return auth
}

// adminToken stores an administrator directly, registration never grants the role
func (suite *APITestSuite) adminToken() string {
	admin, err := suite.repos.GetUserRepository().CreateUser(suite.ctx, &models.User{
		Email:  "admin@example.com",
		Nombre: "Admin",
		Rol:    models.UserRoleAdmin,
		Estado: models.UserStatusActive,
	})
	require.NoError(suite.T(), err)
	token, err := suite.jwt.GenerateToken(admin, 0)
	require.NoError(suite.T(), err)
	return token
}

func (suite *APITestSuite) createOpportunity(token string, capacity int) models.Opportunity {
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	w, resp := suite.do(http.MethodPost, "/api/opportunities", token, models.CreateOpportunityRequest{
		Titulo:                "Limpieza de playa",
		Descripcion:           "Jornada de limpieza en la costa",
		AreaInteres:           "Medio Ambiente",
		Ubicacion:             "Valparaíso",
		FechaInicio:           start,
		FechaFin:              start.Add(6 * time.Hour),
		DuracionHoras:         4,
		VoluntariosRequeridos: capacity,
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	var opp models.Opportunity
	suite.decode(resp, &opp)
	return opp
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"validation", models.NewValidationError("bad input"), http.StatusBadRequest, "ValidationError"},
		{"credentials", models.ErrInvalidCredentials, http.StatusUnauthorized, "AuthenticationError"},
		{"not authorized", fmt.Errorf("application 3: %w", models.ErrNotAuthorized), http.StatusForbidden, "AuthorizationError"},
		{"inactive", models.ErrAccountInactive, http.StatusForbidden, "AuthorizationError"},
		{"not found", fmt.Errorf("user 9: %w", models.ErrNotFound), http.StatusNotFound, "NotFoundError"},
		{"duplicate application", models.ErrDuplicateApplication, http.StatusConflict, "ConflictError"},
		{"email taken", models.ErrEmailTaken, http.StatusConflict, "ConflictError"},
		{"badge awarded", models.ErrBadgeAlreadyAwarded, http.StatusConflict, "ConflictError"},
		{"payment", models.ErrPaymentFailed, http.StatusPaymentRequired, "PaymentError"},
		{"opportunity full", models.ErrOpportunityFull, http.StatusBadRequest, "BusinessRuleError"},
		{"transition", models.ErrInvalidTransition, http.StatusBadRequest, "BusinessRuleError"},
		{"signature", models.ErrInvalidSignature, http.StatusBadRequest, "BusinessRuleError"},
		{"unverified", models.ErrOrganizationNotVerified, http.StatusBadRequest, "BusinessRuleError"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "InternalError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, errType := classifyError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantType, errType)
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	h := newHandler(logger.NewLogger("error", "text"))
	err := h.validator.Struct(&models.RegisterRequest{
		Email:    "not-an-email",
		Password: "short",
		Rol:      "Admin",
	})
	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	details := map[string]string{}
	for _, e := range formatValidationErrors(err) {
		assert.Equal(t, "ValidationError", e.Type)
		details[e.Field] = e.Details
	}
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
	assert.Contains(t, details, "nombre")
	assert.Contains(t, details, "rol")
	assert.Contains(t, details["rol"], "Voluntario, Organizacion")
}
