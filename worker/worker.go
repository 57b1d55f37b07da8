package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
	"voluntariado-backend/dal"
	"voluntariado-backend/models"
	"voluntariado-backend/utils/logger"

	"github.com/google/uuid"
	"github.com/robfig/cron"
)

const (
	JobBadgeSweep   = "badge_sweep"
	JobReports      = "quarterly_reports"
	JobTokenCleanup = "token_cleanup"
	JobHealthCheck  = "health_check"
)

// BadgeSweeper re-evaluates automatic badges for every volunteer
type BadgeSweeper interface {
	SweepAutomaticBadges(ctx context.Context) (int, error)
}

// ReportGenerator builds the previous quarter's financial reports
type ReportGenerator interface {
	GeneratePreviousQuarterReports(ctx context.Context) (int, error)
}

// TokenCleaner drops expired entries from the token blacklist
type TokenCleaner interface {
	CleanupExpiredTokens() int
}

// Jobs are the scheduled collaborators; nil members are not scheduled
type Jobs struct {
	Badges  BadgeSweeper
	Reports ReportGenerator
	Tokens  TokenCleaner
}

// Worker provisions the tables once and then runs the scheduled jobs
type Worker struct {
	config        *models.Config
	workerConfig  *models.WorkerConfig
	logger        logger.Logger
	cron          *cron.Cron
	locks         *ProvisionLock
	status        *StatusManager
	setup         *InfrastructureSetup
	jobs          Jobs
	ownerID       string
	jobTimeout    time.Duration
	setupTimeout  time.Duration
	provisionDone chan struct{}

	mu        sync.RWMutex
	running   bool
	ctx       context.Context
	cancel    context.CancelFunc
	stopOnce  sync.Once
	provision sync.Mutex
}

// NewWorker builds a worker for cfg on db
func NewWorker(cfg *models.Config, log logger.Logger, db dal.DatabaseClientInterface, jobs Jobs) (*Worker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if db == nil {
		return nil, fmt.Errorf("database client cannot be nil")
	}

	hostname := os.Getenv("HOSTNAME")
	if hostname == "" {
		hostname = "localhost"
	}

	workerConfig := &models.WorkerConfig{
		LockTimeout:          30 * time.Minute,
		MaxRetries:           5,
		RetryDelay:           2 * time.Second,
		BackoffMultiplier:    2.0,
		Environment:          cfg.AppEnv,
		RequiredTables:       cfg.Tables,
		LockFilePath:         fmt.Sprintf("%s/voluntariado-provision-%s.lock", os.TempDir(), cfg.AppEnv),
		StatusFilePath:       fmt.Sprintf("%s/voluntariado-status-%s.json", os.TempDir(), cfg.AppEnv),
		BadgeSweepSchedule:   cfg.BadgeSweepSchedule,
		ReportSchedule:       cfg.ReportSchedule,
		TokenCleanupSchedule: cfg.TokenCleanupSchedule,
		HealthCheckSchedule:  "0 */10 * * * *",
		DryRun:               os.Getenv("INFRASTRUCTURE_DRY_RUN") == "true",
		SkipValidation:       os.Getenv("INFRASTRUCTURE_SKIP_VALIDATION") == "true" || cfg.UsesMemoryStorage(),
		SkipProvision:        cfg.UsesMemoryStorage(),
	}
	if err := validateWorkerConfig(workerConfig); err != nil {
		return nil, fmt.Errorf("invalid worker configuration: %w", err)
	}
	log.Debugf("Worker configuration: %s", dal.PrintPrettyJSON(workerConfig))

	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		config:        cfg,
		workerConfig:  workerConfig,
		logger:        log,
		cron:          cron.New(),
		locks:         NewProvisionLock(workerConfig.LockFilePath, workerConfig.LockTimeout, workerConfig.Environment),
		status:        NewStatusManager(workerConfig.StatusFilePath),
		setup:         NewInfrastructureSetup(cfg, log, db),
		jobs:          jobs,
		ownerID:       fmt.Sprintf("worker-%s-%s", hostname, uuid.New().String()[:8]),
		jobTimeout:    10 * time.Minute,
		setupTimeout:  15 * time.Minute,
		provisionDone: make(chan struct{}),
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

// validateWorkerConfig validates the worker configuration
func validateWorkerConfig(config *models.WorkerConfig) error {
	if config.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if config.LockTimeout <= 0 {
		return fmt.Errorf("lock timeout must be positive")
	}
	if config.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if config.RetryDelay <= 0 {
		return fmt.Errorf("retry delay must be positive")
	}
	if config.BackoffMultiplier <= 1.0 {
		return fmt.Errorf("backoff multiplier must be greater than 1.0")
	}

	schedules := map[string]string{
		JobBadgeSweep:   config.BadgeSweepSchedule,
		JobReports:      config.ReportSchedule,
		JobTokenCleanup: config.TokenCleanupSchedule,
		JobHealthCheck:  config.HealthCheckSchedule,
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for job, spec := range schedules {
		if spec == "" {
			continue
		}
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("invalid cron schedule '%s' for %s: %w", spec, job, err)
		}
	}
	return nil
}

// Start provisions the tables in the background and schedules the jobs
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("worker is already running")
	}
	select {
	case <-w.ctx.Done():
		return fmt.Errorf("worker context is cancelled, cannot start")
	default:
	}

	w.logger.Infof("Starting worker %s", w.ownerID)
	if err := w.schedule(); err != nil {
		return err
	}
	w.cron.Start()
	w.running = true

	go w.provisionWithRetry()
	return nil
}

type scheduledJob struct {
	name string
	spec string
	run  func(ctx context.Context) (int, error)
}

func (w *Worker) schedule() error {
	entries := []scheduledJob{{JobHealthCheck, w.workerConfig.HealthCheckSchedule, w.healthCheck}}
	if w.jobs.Badges != nil {
		entries = append(entries, scheduledJob{JobBadgeSweep, w.workerConfig.BadgeSweepSchedule, w.jobs.Badges.SweepAutomaticBadges})
	}
	if w.jobs.Reports != nil {
		entries = append(entries, scheduledJob{JobReports, w.workerConfig.ReportSchedule, w.jobs.Reports.GeneratePreviousQuarterReports})
	}
	if w.jobs.Tokens != nil {
		tokens := w.jobs.Tokens
		entries = append(entries, scheduledJob{JobTokenCleanup, w.workerConfig.TokenCleanupSchedule, func(context.Context) (int, error) {
			return tokens.CleanupExpiredTokens(), nil
		}})
	}

	for _, e := range entries {
		if e.spec == "" {
			w.logger.Infof("Job %s has no schedule, skipping", e.name)
			continue
		}
		name, run := e.name, e.run
		if err := w.cron.AddFunc(e.spec, func() { w.RunJob(name, run) }); err != nil {
			return fmt.Errorf("failed to add %s job: %w", name, err)
		}
		w.logger.Infof("Scheduled %s with %q", name, e.spec)
	}
	return nil
}

// RunJob executes one job run with a timeout, records the outcome and never panics
func (w *Worker) RunJob(name string, run func(ctx context.Context) (int, error)) {
	if name != JobHealthCheck && name != JobTokenCleanup && !w.provisioned() {
		w.logger.Debugf("Tables not provisioned yet, skipping %s", name)
		return
	}

	ctx, cancel := context.WithTimeout(w.ctx, w.jobTimeout)
	defer cancel()

	started := time.Now()
	affected, err := func() (n int, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job %s panicked: %v", name, r)
			}
		}()
		return run(ctx)
	}()

	if err != nil {
		w.logger.Errorf("Job %s failed after %v: %v", name, time.Since(started), err)
	} else {
		w.logger.Infof("Job %s finished in %v, %d affected", name, time.Since(started), affected)
	}
	if recErr := w.status.RecordJob(name, started, affected, err); recErr != nil {
		w.logger.Warnf("Failed to record %s run: %v", name, recErr)
	}
}

func (w *Worker) provisioned() bool {
	select {
	case <-w.provisionDone:
		return true
	default:
		return false
	}
}

// provisionWithRetry runs provisioning until it succeeds, the retries are exhausted or the worker stops
func (w *Worker) provisionWithRetry() {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Errorf("Provisioning panicked: %v", r)
			w.status.MarkFailed(fmt.Sprintf("panic: %v", r))
		}
	}()

	for attempt := 0; ; attempt++ {
		err := w.Provision(w.ctx)
		if err == nil {
			return
		}
		if w.ctx.Err() != nil {
			return
		}
		if attempt >= w.workerConfig.MaxRetries {
			w.logger.Errorf("Maximum retries (%d) exceeded, giving up: %v", w.workerConfig.MaxRetries, err)
			w.status.MarkFailed(fmt.Sprintf("max retries exceeded: %v", err))
			return
		}
		if _, incErr := w.status.IncrementRetryCount(); incErr != nil {
			w.logger.Warnf("Failed to increment retry count: %v", incErr)
		}

		delay := w.calculateRetryDelay(attempt)
		w.logger.Warnf("Provisioning failed (attempt %d/%d), retrying in %v: %v", attempt+1, w.workerConfig.MaxRetries+1, delay, err)
		select {
		case <-time.After(delay):
		case <-w.ctx.Done():
			return
		}
	}
}

// Provision creates the tables under the provisioning lock
func (w *Worker) Provision(ctx context.Context) error {
	w.provision.Lock()
	defer w.provision.Unlock()

	if w.provisioned() {
		return nil
	}
	if w.workerConfig.SkipProvision {
		w.logger.Info("Storage provisioning skipped for this driver")
		w.status.BeginRun(w.workerConfig.Environment)
		w.status.MarkCompleted()
		close(w.provisionDone)
		return nil
	}

	setupCtx, cancel := context.WithTimeout(ctx, w.setupTimeout)
	defer cancel()

	lockInfo, err := w.locks.Acquire(w.ownerID)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.locks.Release(lockInfo); err != nil {
			w.logger.Errorf("Failed to release lock: %v", err)
		}
	}()

	if err := w.status.BeginRun(w.workerConfig.Environment); err != nil {
		w.logger.Warnf("Failed to save initial status: %v", err)
	}
	if w.workerConfig.DryRun {
		w.logger.Info("Running in DRY RUN mode, no tables are created")
		w.status.UpdateProgress(models.StatusCompleted, "dry run", map[string]any{"dry_run": true})
		w.status.MarkCompleted()
		close(w.provisionDone)
		return nil
	}

	if err := w.setup.Execute(setupCtx, w.status, w.workerConfig.SkipValidation); err != nil {
		w.status.UpdateProgress(models.StatusFailed, err.Error(), nil)
		return err
	}
	if err := w.status.MarkCompleted(); err != nil {
		w.logger.Warnf("Failed to mark provisioning completed: %v", err)
	}
	close(w.provisionDone)
	w.logger.Info("Table provisioning completed, all tables are ready")
	return nil
}

// healthCheck re-validates the tables once provisioning has completed
func (w *Worker) healthCheck(ctx context.Context) (int, error) {
	if !w.provisioned() || w.workerConfig.SkipProvision {
		return 0, nil
	}
	tables := w.setup.tableNames()
	if w.workerConfig.SkipValidation {
		return len(tables), w.setup.waitForTablesActive(ctx, tables)
	}
	if err := w.setup.validateInfrastructure(ctx, tables); err != nil {
		w.status.UpdateProgress(models.StatusFailed, fmt.Sprintf("Health check failed: %v", err),
			map[string]any{"health_check_failed_at": time.Now()})
		return 0, err
	}
	return len(tables), nil
}

// WaitForProvisioning blocks until the tables are ready, ctx ends or the worker stops
func (w *Worker) WaitForProvisioning(ctx context.Context) error {
	select {
	case <-w.provisionDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-w.ctx.Done():
		return errors.New("worker stopped before provisioning completed")
	}
}

// GetStatus returns the persisted worker status
func (w *Worker) GetStatus() (*models.ExecutionResult, error) {
	return w.status.LoadStatus()
}

// IsRunning returns whether the worker is currently running
func (w *Worker) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Reprovision resets a failed provisioning and runs it again in the background
func (w *Worker) Reprovision(force bool) error {
	if w.provisioned() {
		return nil
	}
	status, err := w.status.LoadStatus()
	if err == nil && !force && status.Status != models.StatusFailed && status.Status != models.StatusIdle {
		return fmt.Errorf("%w (%s), use force to restart it", models.ErrProvisioningBusy, status.Status)
	}
	if err := w.status.ResetStatus(); err != nil {
		w.logger.Warnf("Failed to reset status: %v", err)
	}
	if err := w.locks.Sweep(); err != nil {
		w.logger.Warnf("Failed to clean expired locks: %v", err)
	}
	go w.provisionWithRetry()
	return nil
}

// Stop stops the scheduler and cancels running jobs
func (w *Worker) Stop() error {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		defer w.mu.Unlock()

		w.logger.Info("Stopping worker")
		w.cancel()
		w.cron.Stop()
		w.running = false
		w.logger.Info("Worker stopped")
	})
	return nil
}

// calculateRetryDelay applies exponential backoff capped at one hour
func (w *Worker) calculateRetryDelay(retryCount int) time.Duration {
	delay := float64(w.workerConfig.RetryDelay.Nanoseconds())
	for i := 0; i < retryCount; i++ {
		delay *= w.workerConfig.BackoffMultiplier
	}
	maxDelay := float64(time.Hour.Nanoseconds())
	if delay > maxDelay {
		delay = maxDelay
	}
	return time.Duration(int64(delay))
}
