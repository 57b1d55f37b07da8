package worker

import (
	"context"
	"fmt"
	"voluntariado-backend/dal"
	"voluntariado-backend/models"
	"voluntariado-backend/utils/logger"
)

// Service wraps the worker for the HTTP process
type Service struct {
	worker *Worker
	logger logger.Logger
}

// NewService creates a new worker service
func NewService(cfg *models.Config, log logger.Logger, db dal.DatabaseClientInterface, jobs Jobs) (*Service, error) {
	w, err := NewWorker(cfg, log, db, jobs)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker: %w", err)
	}
	return &Service{worker: w, logger: log}, nil
}

// StartInBackground starts provisioning and the job scheduler
func (s *Service) StartInBackground() error {
	s.logger.Info("Starting worker service in background")
	return s.worker.Start()
}

// Stop stops the worker service
func (s *Service) Stop() error {
	s.logger.Info("Stopping worker service")
	return s.worker.Stop()
}

// GetStatus returns the current worker status
func (s *Service) GetStatus() (*models.ExecutionResult, error) {
	return s.worker.GetStatus()
}

// IsRunning reports whether the scheduler is running
func (s *Service) IsRunning() bool {
	return s.worker.IsRunning()
}

// IsSetupCompleted checks if provisioning is completed
func (s *Service) IsSetupCompleted() (bool, error) {
	status, err := s.GetStatus()
	if err != nil {
		return false, err
	}
	return status.Status == models.StatusCompleted && status.Success, nil
}

// Restart re-runs a failed provisioning
func (s *Service) Restart(force bool) error {
	s.logger.Info("Restarting provisioning")
	return s.worker.Reprovision(force)
}

// WaitForCompletion waits until the tables are provisioned
func (s *Service) WaitForCompletion(ctx context.Context) error {
	s.logger.Info("Waiting for table provisioning")
	return s.worker.WaitForProvisioning(ctx)
}

// GetHealthStatus returns a health summary for monitoring
func (s *Service) GetHealthStatus() map[string]interface{} {
	status, err := s.GetStatus()
	if err != nil {
		return map[string]interface{}{
			"status":         "error",
			"message":        fmt.Sprintf("Failed to get status: %v", err),
			"healthy":        false,
			"worker_running": s.worker.IsRunning(),
		}
	}

	return map[string]interface{}{
		"status":         string(status.Status),
		"healthy":        status.Status == models.StatusCompleted && status.Success,
		"worker_running": s.worker.IsRunning(),
		"tables_created": len(status.TablesCreated),
		"jobs":           status.Jobs,
		"retry_count":    status.RetryCount,
		"environment":    status.Environment,
		"start_time":     status.StartTime,
		"duration":       status.Duration.String(),
		"error_message":  status.ErrorMessage,
	}
}
