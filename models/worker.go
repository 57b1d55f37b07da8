package models

import "time"

// WorkerConfig holds configuration for the background worker
type WorkerConfig struct {
	// Provisioning
	LockTimeout       time.Duration `json:"lock_timeout"`
	MaxRetries        int           `json:"max_retries"`
	RetryDelay        time.Duration `json:"retry_delay"`
	BackoffMultiplier float64       `json:"backoff_multiplier"`
	Environment       string        `json:"environment"`
	RequiredTables    []string      `json:"required_tables"`

	// Paths
	LockFilePath   string `json:"lock_file_path"`
	StatusFilePath string `json:"status_file_path"`

	// Scheduled jobs (robfig/cron, seconds first)
	BadgeSweepSchedule   string `json:"badge_sweep_schedule"`
	ReportSchedule       string `json:"report_schedule"`
	TokenCleanupSchedule string `json:"token_cleanup_schedule"`
	HealthCheckSchedule  string `json:"health_check_schedule"`

	// Feature flags
	DryRun         bool `json:"dry_run"`
	SkipValidation bool `json:"skip_validation"`
	SkipProvision  bool `json:"skip_provision"`
}

// LockInfo represents the provisioning lock held by one process
type LockInfo struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	AcquiredAt  time.Time `json:"acquired_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Environment string    `json:"environment"`
}

// Expired reports whether the lease has lapsed at t
func (l *LockInfo) Expired(t time.Time) bool {
	return !t.Before(l.ExpiresAt)
}

// HeldBy reports whether owner holds the lease
func (l *LockInfo) HeldBy(owner string) bool {
	return l.Owner == owner
}

// WorkerStatus represents the provisioning state of the worker
type WorkerStatus string

const (
	StatusIdle             WorkerStatus = "idle"
	StatusInitializing     WorkerStatus = "initializing"
	StatusRunning          WorkerStatus = "running"
	StatusCreatingTables   WorkerStatus = "creating_tables"
	StatusWaitingForTables WorkerStatus = "waiting_for_tables"
	StatusValidating       WorkerStatus = "validating"
	StatusCompleted        WorkerStatus = "completed"
	StatusFailed           WorkerStatus = "failed"
	StatusRetrying         WorkerStatus = "retrying"
)

// ExecutionResult is the persisted worker status
type ExecutionResult struct {
	Success   bool          `json:"success"`
	Status    WorkerStatus  `json:"status"`
	Phase     string        `json:"phase,omitempty"`
	StartTime time.Time     `json:"start_time"`
	EndTime   *time.Time    `json:"end_time,omitempty"`
	Duration  time.Duration `json:"duration"`

	Progress *ProgressInfo `json:"progress,omitempty"`

	TablesCreated []TableStatus     `json:"tables_created"`
	Jobs          map[string]JobRun `json:"jobs,omitempty"`

	ErrorMessage string `json:"error_message,omitempty"`
	RetryCount   int    `json:"retry_count"`

	Environment string                 `json:"environment"`
	Metadata    map[string]interface{} `json:"metadata"`

	// Health indicators
	HealthStatus  string         `json:"health_status,omitempty"` // healthy, degraded, unhealthy, provisioning
	NextAction    string         `json:"next_action,omitempty"`
	EstimatedTime *time.Duration `json:"estimated_time,omitempty"`
}

// ProgressInfo tracks provisioning progress
type ProgressInfo struct {
	CurrentStep int    `json:"current_step"`
	TotalSteps  int    `json:"total_steps"`
	StepName    string `json:"step_name"`
	Percentage  int    `json:"percentage"`
}

// TableStatus records one provisioned table
type TableStatus struct {
	Name            string    `json:"name"`
	Status          string    `json:"status"` // CREATING, ACTIVE, EXISTING
	CreatedAt       time.Time `json:"created_at"`
	ExpectedIndexes int       `json:"expected_indexes"`
}

// JobRun is the outcome of the last run of a scheduled job
type JobRun struct {
	Name       string        `json:"name"`
	LastRun    time.Time     `json:"last_run"`
	Duration   time.Duration `json:"duration"`
	Affected   int           `json:"affected"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
	TotalRuns  int           `json:"total_runs"`
	TotalFails int           `json:"total_fails"`
}
