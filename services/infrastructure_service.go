package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"voluntariado-backend/models"
	"voluntariado-backend/utils/logger"
)

// WorkerControl is the background worker as seen by the admin endpoints
type WorkerControl interface {
	GetStatus() (*models.ExecutionResult, error)
	IsRunning() bool
	Restart(force bool) error
}

var errWorkerUnavailable = errors.New("background worker is not attached")

type InfrastructureService struct {
	worker WorkerControl
	logger logger.Logger
	now    func() time.Time
}

func NewInfrastructureService(worker WorkerControl, logger logger.Logger, now func() time.Time) *InfrastructureService {
	return &InfrastructureService{
		worker: worker,
		logger: logger,
		now:    now,
	}
}

// GetWorkerStatus returns the worker status enriched with progress and health
func (s *InfrastructureService) GetWorkerStatus(ctx context.Context) (*models.ExecutionResult, error) {
	s.logger.Debug("Getting detailed worker status")
	if s.worker == nil {
		return nil, errWorkerUnavailable
	}

	result, err := s.worker.GetStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to read worker status: %w", err)
	}

	s.enrichStatusWithContext(result)
	s.updateHealthIndicators(result)
	return result, nil
}

// RestartWorker re-runs a failed provisioning
func (s *InfrastructureService) RestartWorker(ctx context.Context, force bool) (*models.ServiceRestartResult, error) {
	s.logger.Info("Restarting worker provisioning")
	if s.worker == nil {
		return nil, errWorkerUnavailable
	}

	result := &models.ServiceRestartResult{
		ServiceName: "provisioning-worker",
		StartTime:   s.now(),
		Status:      "in_progress",
	}

	if status, err := s.worker.GetStatus(); err == nil && status.Status == models.StatusCompleted && status.Success {
		result.Status = "not_needed"
		result.Output = "Tables are already provisioned"
		result.EndTime = s.now()
		return result, nil
	}

	if err := s.worker.Restart(force); err != nil {
		result.Status = "failed"
		result.Error = err.Error()
		result.EndTime = s.now()
		return result, err
	}

	result.Status = "completed"
	result.Output = "Provisioning restart initiated"
	result.EndTime = s.now()
	return result, nil
}

// IsWorkerHealthy reports whether provisioning finished and the scheduled jobs are succeeding
func (s *InfrastructureService) IsWorkerHealthy() (bool, string, error) {
	if s.worker == nil {
		return false, "Worker is not attached", errWorkerUnavailable
	}
	status, err := s.worker.GetStatus()
	if err != nil {
		return false, "Cannot read worker status", err
	}
	if !s.worker.IsRunning() {
		return false, "Worker is not running", nil
	}

	switch status.Status {
	case models.StatusCompleted:
		if !status.Success {
			return false, "Provisioning completed with errors", nil
		}
		for name, job := range status.Jobs {
			if !job.Success {
				return false, fmt.Sprintf("Job %s failed: %s", name, job.Error), nil
			}
		}
		return true, "Worker is healthy", nil
	case models.StatusFailed:
		return false, fmt.Sprintf("Provisioning failed: %s", status.ErrorMessage), nil
	case models.StatusRetrying:
		if status.RetryCount > 5 {
			return false, "Provisioning stuck in retry loop", nil
		}
		return false, "Provisioning is retrying after failure", nil
	case models.StatusCreatingTables, models.StatusWaitingForTables, models.StatusValidating,
		models.StatusInitializing, models.StatusRunning:
		if s.now().Sub(status.StartTime) > 30*time.Minute {
			return false, "Provisioning running too long", nil
		}
		return true, "Provisioning in progress", nil
	default:
		return false, "Worker status unknown", nil
	}
}

// enrichStatusWithContext adds the phase and next action to the status
func (s *InfrastructureService) enrichStatusWithContext(result *models.ExecutionResult) {
	switch result.Status {
	case models.StatusInitializing:
		result.NextAction = "Initializing worker"
		result.Phase = "Initialization"
	case models.StatusCreatingTables:
		result.NextAction = "Creating DynamoDB tables - this may take a few minutes"
		result.EstimatedTime = durationPtr(5 * time.Minute)
		result.Phase = "Table Creation"
	case models.StatusWaitingForTables:
		result.NextAction = "Waiting for DynamoDB tables to become active"
		result.EstimatedTime = durationPtr(3 * time.Minute)
		result.Phase = "Table Activation"
	case models.StatusValidating:
		result.NextAction = "Validating tables and indexes"
		result.EstimatedTime = durationPtr(30 * time.Second)
		result.Phase = "Validation"
	case models.StatusFailed:
		if result.RetryCount < 3 {
			result.NextAction = "Will retry automatically after backoff period"
			result.EstimatedTime = durationPtr(time.Duration(result.RetryCount+1) * 2 * time.Minute)
		} else {
			result.NextAction = "Manual intervention required - max retries exceeded"
		}
		result.Phase = "Error Recovery"
	case models.StatusRetrying:
		result.NextAction = fmt.Sprintf("Retrying provisioning (attempt %d)", result.RetryCount+1)
		result.Phase = "Retry"
	case models.StatusCompleted:
		result.NextAction = "Running scheduled jobs"
		result.Phase = "Scheduling"
	default:
		result.NextAction = "Monitoring worker status"
		result.Phase = "Monitoring"
	}

	if result.Progress == nil {
		result.Progress = calculateProgress(result)
	}
}

// updateHealthIndicators sets the health status from the provisioning state
func (s *InfrastructureService) updateHealthIndicators(result *models.ExecutionResult) {
	switch result.Status {
	case models.StatusCompleted:
		result.HealthStatus = "healthy"
		if !result.Success {
			result.HealthStatus = "degraded"
		}
		for _, job := range result.Jobs {
			if !job.Success {
				result.HealthStatus = "degraded"
			}
		}
	case models.StatusCreatingTables, models.StatusWaitingForTables, models.StatusValidating, models.StatusInitializing:
		result.HealthStatus = "provisioning"
	case models.StatusFailed:
		result.HealthStatus = "unhealthy"
	case models.StatusRetrying:
		result.HealthStatus = "degraded"
	case models.StatusRunning:
		if s.now().Sub(result.StartTime) > 30*time.Minute {
			result.HealthStatus = "degraded"
		} else {
			result.HealthStatus = "provisioning"
		}
	default:
		result.HealthStatus = "unknown"
	}
}

// calculateProgress estimates provisioning progress from the current status
func calculateProgress(result *models.ExecutionResult) *models.ProgressInfo {
	const totalSteps = 5
	step, name := 1, string(result.Status)

	switch result.Status {
	case models.StatusInitializing:
		step, name = 1, "Initializing"
	case models.StatusCreatingTables, models.StatusRunning:
		step, name = 2, "Creating Tables"
	case models.StatusWaitingForTables:
		step, name = 3, "Waiting for Tables"
	case models.StatusValidating:
		step, name = 4, "Validating"
	case models.StatusCompleted:
		step, name = 5, "Completed"
	}

	return &models.ProgressInfo{
		CurrentStep: step,
		TotalSteps:  totalSteps,
		StepName:    name,
		Percentage:  step * 100 / totalSteps,
	}
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}
