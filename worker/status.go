package worker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
	"voluntariado-backend/models"
)

// StatusManager persists the worker status as a JSON file. Cron jobs and
// provisioning update it concurrently, so every read-modify-write holds mu.
type StatusManager struct {
	StatusFilePath string
	mu             sync.Mutex
}

// NewStatusManager creates a new status manager
func NewStatusManager(statusPath string) *StatusManager {
	return &StatusManager{StatusFilePath: statusPath}
}

func (sm *StatusManager) SaveStatus(result *models.ExecutionResult) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.save(result)
}

func (sm *StatusManager) save(result *models.ExecutionResult) error {
	if err := os.MkdirAll(filepath.Dir(sm.StatusFilePath), 0755); err != nil {
		return fmt.Errorf("failed to create status directory: %w", err)
	}

	if result.EndTime == nil && (result.Status == models.StatusCompleted || result.Status == models.StatusFailed) {
		now := time.Now()
		result.EndTime = &now
		result.Duration = now.Sub(result.StartTime)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	tempFile := sm.StatusFilePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp status file: %w", err)
	}
	if err := os.Rename(tempFile, sm.StatusFilePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename status file: %w", err)
	}
	return nil
}

func (sm *StatusManager) LoadStatus() (*models.ExecutionResult, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.load()
}

func (sm *StatusManager) load() (*models.ExecutionResult, error) {
	data, err := os.ReadFile(sm.StatusFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read status file: %w", err)
	}

	var result models.ExecutionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return &result, nil
}

// loadOrNew returns the stored status or a fresh one when none is readable
func (sm *StatusManager) loadOrNew() *models.ExecutionResult {
	status, err := sm.load()
	if err != nil {
		status = &models.ExecutionResult{
			StartTime:     time.Now(),
			Status:        models.StatusIdle,
			TablesCreated: make([]models.TableStatus, 0),
			Metadata:      make(map[string]interface{}),
		}
	}
	if status.Metadata == nil {
		status.Metadata = make(map[string]interface{})
	}
	return status
}

// modify applies fn to the current status and saves it
func (sm *StatusManager) modify(fn func(status *models.ExecutionResult)) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	status := sm.loadOrNew()
	fn(status)
	return sm.save(status)
}

// IsSetupCompleted checks if provisioning is completed
func (sm *StatusManager) IsSetupCompleted() (bool, error) {
	status, err := sm.LoadStatus()
	if err != nil {
		return false, err
	}
	return status.Status == models.StatusCompleted && status.Success, nil
}

// BeginRun resets the provisioning fields while keeping job history
func (sm *StatusManager) BeginRun(env string) error {
	return sm.modify(func(status *models.ExecutionResult) {
		status.Success = false
		status.Status = models.StatusInitializing
		status.StartTime = time.Now()
		status.EndTime = nil
		status.Duration = 0
		status.ErrorMessage = ""
		status.Environment = env
		status.TablesCreated = make([]models.TableStatus, 0)
	})
}

func (sm *StatusManager) UpdateProgress(status models.WorkerStatus, message string, metadata map[string]any) error {
	return sm.modify(func(current *models.ExecutionResult) {
		current.Status = status
		if message != "" {
			current.Metadata["last_message"] = message
			current.Metadata["last_update"] = time.Now()
		}
		for k, v := range metadata {
			current.Metadata[k] = v
		}
	})
}

// AddTableCreated records a provisioned table once
func (sm *StatusManager) AddTableCreated(tableName, state string, expectedIndexes int) error {
	return sm.modify(func(status *models.ExecutionResult) {
		for _, t := range status.TablesCreated {
			if t.Name == tableName {
				return
			}
		}
		status.TablesCreated = append(status.TablesCreated, models.TableStatus{
			Name:            tableName,
			Status:          state,
			CreatedAt:       time.Now(),
			ExpectedIndexes: expectedIndexes,
		})
	})
}

// MarkCompleted marks provisioning as completed
func (sm *StatusManager) MarkCompleted() error {
	return sm.modify(func(status *models.ExecutionResult) {
		status.Success = true
		status.Status = models.StatusCompleted
		status.ErrorMessage = ""
		now := time.Now()
		status.EndTime = &now
		status.Duration = now.Sub(status.StartTime)
	})
}

// MarkFailed marks provisioning as failed
func (sm *StatusManager) MarkFailed(errorMsg string) error {
	return sm.modify(func(status *models.ExecutionResult) {
		status.Success = false
		status.Status = models.StatusFailed
		status.ErrorMessage = errorMsg
		now := time.Now()
		status.EndTime = &now
		status.Duration = now.Sub(status.StartTime)
	})
}

// IncrementRetryCount increments the retry counter and returns the new value
func (sm *StatusManager) IncrementRetryCount() (int, error) {
	count := 0
	err := sm.modify(func(status *models.ExecutionResult) {
		status.RetryCount++
		status.Status = models.StatusRetrying
		count = status.RetryCount
	})
	return count, err
}

// RecordJob stores the outcome of one scheduled job run
func (sm *StatusManager) RecordJob(name string, started time.Time, affected int, jobErr error) error {
	return sm.modify(func(status *models.ExecutionResult) {
		if status.Jobs == nil {
			status.Jobs = make(map[string]models.JobRun)
		}
		run := status.Jobs[name]
		run.Name = name
		run.LastRun = started
		run.Duration = time.Since(started)
		run.Affected = affected
		run.Success = jobErr == nil
		run.Error = ""
		run.TotalRuns++
		if jobErr != nil {
			run.Error = jobErr.Error()
			run.TotalFails++
		}
		status.Jobs[name] = run
	})
}

// ResetStatus removes the status file so provisioning runs again
func (sm *StatusManager) ResetStatus() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if err := os.Remove(sm.StatusFilePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
