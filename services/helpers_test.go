package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
	"voluntariado-backend/dal"
	"voluntariado-backend/infrastructure"
	"voluntariado-backend/models"
	"voluntariado-backend/repository"
	"voluntariado-backend/utils/logger"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// MockLogger implements the logger interface for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(args ...interface{}) {
	m.Called(args...)
}

func (m *MockLogger) Debugf(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) Info(args ...interface{}) {
	m.Called(args...)
}

func (m *MockLogger) Infof(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(args ...interface{}) {
	m.Called(args...)
}

func (m *MockLogger) Warnf(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) Error(args ...interface{}) {
	m.Called(args...)
}

func (m *MockLogger) Errorf(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) Fatal(args ...interface{}) {
	m.Called(args...)
}

func (m *MockLogger) Fatalf(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return m
}

func (m *MockLogger) WithError(err error) logger.Logger {
	return m
}

// MockPaymentGateway implements PaymentGateway for testing
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateOrder(ctx context.Context, amount models.Money, currency, description, requestID string) (*models.PaymentOrder, error) {
	args := m.Called(ctx, amount, currency, description, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentOrder), args.Error(1)
}

func (m *MockPaymentGateway) CaptureOrder(ctx context.Context, orderID, requestID string) (*models.PaymentCapture, error) {
	args := m.Called(ctx, orderID, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentCapture), args.Error(1)
}

func (m *MockPaymentGateway) VerifyWebhook(ctx context.Context, headers http.Header, body []byte) (*models.WebhookEvent, error) {
	args := m.Called(ctx, headers, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WebhookEvent), args.Error(1)
}

type fakeTokens struct{}

func (fakeTokens) GenerateToken(user *models.User, orgID int64) (string, error) {
	return fmt.Sprintf("token-%d-%d", user.ID, orgID), nil
}

type sentMail struct {
	To      string
	Subject string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{To: toEmail, Subject: subject})
	return nil
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type pushedEvent struct {
	UserID int64
	Event  string
}

type fakeRealtime struct {
	mu     sync.Mutex
	online map[int64]bool
	events []pushedEvent
}

func newFakeRealtime() *fakeRealtime {
	return &fakeRealtime{online: map[int64]bool{}}
}

func (f *fakeRealtime) Publish(userID int64, event string, payload interface{}) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.online[userID] {
		return false
	}
	f.events = append(f.events, pushedEvent{UserID: userID, Event: event})
	return true
}

func (f *fakeRealtime) IsOnline(userID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online[userID]
}

func (f *fakeRealtime) setOnline(userID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online[userID] = true
}

func (f *fakeRealtime) received(userID int64, event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.UserID == userID && e.Event == event {
			n++
		}
	}
	return n
}

type fakeStorage struct {
	uploads []string
}

func (f *fakeStorage) Upload(ctx context.Context, folder, publicID string, content io.Reader) (string, error) {
	if _, err := io.ReadAll(content); err != nil {
		return "", err
	}
	f.uploads = append(f.uploads, folder+"/"+publicID)
	return "https://cdn.example.com/" + folder + "/" + publicID, nil
}

// ServiceTestSuite wires the real services onto the in-process store
type ServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	config   *models.Config
	repos    *repository.Container
	svc      *Service
	realtime *fakeRealtime
	mailer   *fakeMailer
	storage  *fakeStorage
	gateway  *MockPaymentGateway
	clockMu  sync.Mutex
	clock    time.Time
}

func (suite *ServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.config = &models.Config{
		AppName:             "Voluntariado",
		DynamoDBTablePrefix: "test",
		JWTExpiresIn:        time.Hour,
		UploadMaxBytes:      1 << 20,
		MessageEditWindow:   15 * time.Minute,
	}
	suite.clock = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	suite.realtime = newFakeRealtime()
	suite.mailer = &fakeMailer{}
	suite.storage = &fakeStorage{}
	suite.gateway = &MockPaymentGateway{}

	log := logger.NewLogger("error", "text")
	db := dal.NewMemoryClient(infrastructure.HashKeys("test"))
	suite.repos = repository.NewContainer(db, suite.config, log)
	suite.svc = NewService(suite.repos, Collaborators{
		Tokens:   fakeTokens{},
		Realtime: suite.realtime,
		Mailer:   suite.mailer,
		Storage:  suite.storage,
		Payments: suite.gateway,
		Now:      suite.now,
	}, log, suite.config)
}

func (suite *ServiceTestSuite) now() time.Time {
	suite.clockMu.Lock()
	defer suite.clockMu.Unlock()
	return suite.clock
}

func (suite *ServiceTestSuite) advance(d time.Duration) {
	suite.clockMu.Lock()
	defer suite.clockMu.Unlock()
	suite.clock = suite.clock.Add(d)
}

// registerVolunteer names the volunteer after the local part of the address
func (suite *ServiceTestSuite) registerVolunteer(email string) *models.UserDto {
	local := strings.SplitN(email, "@", 2)[0]
	resp, err := suite.svc.GetAuthService().Register(suite.ctx, &models.RegisterRequest{
		Email:    email,
		Password: "securePassword123",
		Nombre:   strings.ToUpper(local[:1]) + local[1:],
		Apellido: "Pérez",
		Rol:      models.UserRoleVoluntario,
	})
	require.NoError(suite.T(), err)
	return resp.User
}

// registerOrganization creates a verified organization and returns its owner and profile
func (suite *ServiceTestSuite) registerOrganization(email string) (*models.UserDto, *models.Organization) {
	resp, err := suite.svc.GetAuthService().Register(suite.ctx, &models.RegisterRequest{
		Email:              email,
		Password:           "securePassword123",
		Nombre:             "Laura",
		Rol:                models.UserRoleOrganizacion,
		OrganizacionNombre: "Fundación Verde",
		OrganizacionEmail:  "contacto+" + email,
	})
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), resp.Organization)

	org, err := suite.svc.GetOrganizationService().VerifyOrganization(suite.ctx, resp.Organization.ID, true)
	require.NoError(suite.T(), err)
	return resp.User, org
}

func (suite *ServiceTestSuite) createOpportunity(orgID int64, capacity int, hours float64) *models.Opportunity {
	start := suite.now().Add(48 * time.Hour)
	opp, err := suite.svc.GetOpportunityService().Create(suite.ctx, &models.CreateOpportunityRequest{
		Titulo:                "Limpieza de playa",
		Descripcion:           "Jornada de limpieza en la costa",
		AreaInteres:           "Medio Ambiente",
		Ubicacion:             "Valparaíso",
		FechaInicio:           start,
		FechaFin:              start.Add(6 * time.Hour),
		DuracionHoras:         hours,
		VoluntariosRequeridos: capacity,
	}, orgID)
	require.NoError(suite.T(), err)
	return opp
}

func (suite *ServiceTestSuite) opportunity(id int64) *models.Opportunity {
	opp, err := suite.repos.GetOpportunityRepository().GetOpportunityByID(suite.ctx, id)
	require.NoError(suite.T(), err)
	return opp
}

func (suite *ServiceTestSuite) user(id int64) *models.User {
	u, err := suite.repos.GetUserRepository().GetUserByID(suite.ctx, id)
	require.NoError(suite.T(), err)
	return u
}

func (suite *ServiceTestSuite) unread(userID int64) int {
	count, err := suite.svc.GetNotificationService().GetUnreadCount(suite.ctx, userID)
	require.NoError(suite.T(), err)
	return count.Count
}

func (suite *ServiceTestSuite) setStatus(appID, orgID int64, status models.ApplicationStatus) (*models.Application, error) {
	return suite.svc.GetApplicationService().UpdateStatus(suite.ctx, appID,
		&models.UpdateApplicationStatusRequest{Estado: status}, orgID)
}
