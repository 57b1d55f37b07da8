package services

import (
	"context"
	"errors"
	"testing"
	"time"
	"voluntariado-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// MockWorkerControl implements WorkerControl for testing
type MockWorkerControl struct {
	mock.Mock
}

func (m *MockWorkerControl) GetStatus() (*models.ExecutionResult, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExecutionResult), args.Error(1)
}

func (m *MockWorkerControl) IsRunning() bool {
	return m.Called().Bool(0)
}

func (m *MockWorkerControl) Restart(force bool) error {
	return m.Called(force).Error(0)
}

// InfrastructureServiceTestSuite defines the test suite for InfrastructureService
type InfrastructureServiceTestSuite struct {
	suite.Suite
	worker  *MockWorkerControl
	logger  *MockLogger
	service *InfrastructureService
	ctx     context.Context
	now     time.Time
}

func (suite *InfrastructureServiceTestSuite) SetupTest() {
	suite.worker = new(MockWorkerControl)
	suite.logger = new(MockLogger)
	suite.logger.On("Debug", mock.Anything).Maybe()
	suite.logger.On("Info", mock.Anything).Maybe()
	suite.ctx = context.Background()
	suite.now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	suite.service = NewInfrastructureService(suite.worker, suite.logger, func() time.Time { return suite.now })
}

func (suite *InfrastructureServiceTestSuite) TearDownTest() {
	suite.worker.AssertExpectations(suite.T())
}

func (suite *InfrastructureServiceTestSuite) TestGetWorkerStatusCompleted() {
	suite.worker.On("GetStatus").Return(&models.ExecutionResult{
		Success:   true,
		Status:    models.StatusCompleted,
		StartTime: suite.now.Add(-time.Hour),
		Jobs: map[string]models.JobRun{
			"badge_sweep": {Name: "badge_sweep", Success: true, TotalRuns: 3},
		},
	}, nil)

	result, err := suite.service.GetWorkerStatus(suite.ctx)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "healthy", result.HealthStatus)
	assert.Equal(suite.T(), "Scheduling", result.Phase)
	require.NotNil(suite.T(), result.Progress)
	assert.Equal(suite.T(), 100, result.Progress.Percentage)
}

func (suite *InfrastructureServiceTestSuite) TestGetWorkerStatusDegradedByFailingJob() {
	suite.worker.On("GetStatus").Return(&models.ExecutionResult{
		Success: true,
		Status:  models.StatusCompleted,
		Jobs: map[string]models.JobRun{
			"reports": {Name: "reports", Success: false, Error: "timeout"},
		},
	}, nil)

	result, err := suite.service.GetWorkerStatus(suite.ctx)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "degraded", result.HealthStatus)
}

func (suite *InfrastructureServiceTestSuite) TestGetWorkerStatusProvisioning() {
	suite.worker.On("GetStatus").Return(&models.ExecutionResult{
		Status:    models.StatusWaitingForTables,
		StartTime: suite.now.Add(-time.Minute),
	}, nil)

	result, err := suite.service.GetWorkerStatus(suite.ctx)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "provisioning", result.HealthStatus)
	assert.Equal(suite.T(), "Table Activation", result.Phase)
	assert.Equal(suite.T(), 3, result.Progress.CurrentStep)
	require.NotNil(suite.T(), result.EstimatedTime)
}

func (suite *InfrastructureServiceTestSuite) TestGetWorkerStatusError() {
	suite.worker.On("GetStatus").Return(nil, errors.New("status file corrupted"))

	result, err := suite.service.GetWorkerStatus(suite.ctx)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), result)
}

func (suite *InfrastructureServiceTestSuite) TestRestartWorkerNotNeeded() {
	suite.worker.On("GetStatus").Return(&models.ExecutionResult{Success: true, Status: models.StatusCompleted}, nil)

	result, err := suite.service.RestartWorker(suite.ctx, false)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "not_needed", result.Status)
	suite.worker.AssertNotCalled(suite.T(), "Restart", mock.Anything)
}

func (suite *InfrastructureServiceTestSuite) TestRestartWorkerAfterFailure() {
	suite.worker.On("GetStatus").Return(&models.ExecutionResult{Status: models.StatusFailed, ErrorMessage: "throttled"}, nil)
	suite.worker.On("Restart", true).Return(nil)

	result, err := suite.service.RestartWorker(suite.ctx, true)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "completed", result.Status)
	assert.Equal(suite.T(), "provisioning-worker", result.ServiceName)
}

func (suite *InfrastructureServiceTestSuite) TestRestartWorkerFails() {
	suite.worker.On("GetStatus").Return(&models.ExecutionResult{Status: models.StatusFailed}, nil)
	suite.worker.On("Restart", false).Return(errors.New("lock held"))

	result, err := suite.service.RestartWorker(suite.ctx, false)

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), "failed", result.Status)
	assert.Equal(suite.T(), "lock held", result.Error)
}

func (suite *InfrastructureServiceTestSuite) TestIsWorkerHealthy() {
	tests := []struct {
		name     string
		status   *models.ExecutionResult
		running  bool
		healthy  bool
		contains string
	}{
		{"completed", &models.ExecutionResult{Success: true, Status: models.StatusCompleted}, true, true, "healthy"},
		{"not running", &models.ExecutionResult{Success: true, Status: models.StatusCompleted}, false, false, "not running"},
		{"failed", &models.ExecutionResult{Status: models.StatusFailed, ErrorMessage: "boom"}, true, false, "boom"},
		{"retry loop", &models.ExecutionResult{Status: models.StatusRetrying, RetryCount: 6}, true, false, "retry loop"},
		{"slow provisioning", &models.ExecutionResult{Status: models.StatusCreatingTables, StartTime: suite.now.Add(-time.Hour)}, true, false, "too long"},
		{"job failing", &models.ExecutionResult{Success: true, Status: models.StatusCompleted,
			Jobs: map[string]models.JobRun{"reports": {Success: false, Error: "boom"}}}, true, false, "reports"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			worker := new(MockWorkerControl)
			worker.On("GetStatus").Return(tt.status, nil)
			worker.On("IsRunning").Return(tt.running)
			service := NewInfrastructureService(worker, suite.logger, func() time.Time { return suite.now })

			healthy, msg, err := service.IsWorkerHealthy()

			assert.NoError(suite.T(), err)
			assert.Equal(suite.T(), tt.healthy, healthy)
			assert.Contains(suite.T(), msg, tt.contains)
		})
	}
}

func (suite *InfrastructureServiceTestSuite) TestDetachedWorker() {
	service := NewInfrastructureService(nil, suite.logger, time.Now)

	_, err := service.GetWorkerStatus(suite.ctx)
	assert.ErrorIs(suite.T(), err, errWorkerUnavailable)

	healthy, _, err := service.IsWorkerHealthy()
	assert.False(suite.T(), healthy)
	assert.ErrorIs(suite.T(), err, errWorkerUnavailable)
}

func TestInfrastructureServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InfrastructureServiceTestSuite))
}

func TestCalculateProgress(t *testing.T) {
	tests := []struct {
		status  models.WorkerStatus
		step    int
		percent int
	}{
		{models.StatusInitializing, 1, 20},
		{models.StatusCreatingTables, 2, 40},
		{models.StatusWaitingForTables, 3, 60},
		{models.StatusValidating, 4, 80},
		{models.StatusCompleted, 5, 100},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			progress := calculateProgress(&models.ExecutionResult{Status: tt.status})
			assert.Equal(t, tt.step, progress.CurrentStep)
			assert.Equal(t, tt.percent, progress.Percentage)
			assert.Equal(t, 5, progress.TotalSteps)
		})
	}
}
