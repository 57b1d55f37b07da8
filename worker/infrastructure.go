package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"voluntariado-backend/dal"
	"voluntariado-backend/infrastructure"
	"voluntariado-backend/models"
	"voluntariado-backend/utils/logger"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// InfrastructureSetup creates the application tables from the embedded schema
type InfrastructureSetup struct {
	config *models.Config
	logger logger.Logger
	db     dal.DatabaseClientInterface

	retryDelay   time.Duration
	pollInterval time.Duration
	waitTimeout  time.Duration
}

// NewInfrastructureSetup creates a new provisioning handler on db
func NewInfrastructureSetup(cfg *models.Config, log logger.Logger, db dal.DatabaseClientInterface) *InfrastructureSetup {
	return &InfrastructureSetup{
		config:       cfg,
		logger:       log,
		db:           db,
		retryDelay:   5 * time.Second,
		pollInterval: 5 * time.Second,
		waitTimeout:  10 * time.Minute,
	}
}

// Execute creates every missing table, waits for them to become active and validates their indexes
func (is *InfrastructureSetup) Execute(ctx context.Context, statusManager *StatusManager, skipValidation bool) error {
	is.logger.Info("Starting table provisioning...")

	tables := is.tableNames()
	if err := statusManager.UpdateProgress(models.StatusCreatingTables, "Creating tables", map[string]any{
		"tables_expected": len(tables),
	}); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	for _, name := range tables {
		created, expectedIndexes, err := is.createTableWithRetry(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to create table %s: %w", name, err)
		}
		state := "EXISTING"
		if created {
			state = "CREATING"
			is.logger.Infof("Created table: %s", name)
		}
		if err := statusManager.AddTableCreated(name, state, expectedIndexes); err != nil {
			is.logger.Warnf("Failed to record table %s: %v", name, err)
		}
	}

	statusManager.UpdateProgress(models.StatusWaitingForTables, "Waiting for tables to become active", nil)
	if err := is.waitForTablesActive(ctx, tables); err != nil {
		return err
	}

	if skipValidation {
		is.logger.Info("Skipping table validation")
		return nil
	}
	statusManager.UpdateProgress(models.StatusValidating, "Validating tables", nil)
	return is.validateInfrastructure(ctx, tables)
}

// tableNames returns the prefixed names of the configured tables, or of every schema table
func (is *InfrastructureSetup) tableNames() []string {
	base := is.config.Tables
	if len(base) == 0 {
		base = infrastructure.BaseTableNames()
	}
	names := make([]string, 0, len(base))
	for _, t := range base {
		names = append(names, is.config.TableName(t))
	}
	return names
}

// createTableWithRetry creates a table unless it exists. It reports whether the
// table was created and how many indexes the schema declares.
func (is *InfrastructureSetup) createTableWithRetry(ctx context.Context, name string) (bool, int, error) {
	input, err := infrastructure.GetTables(name)
	if err != nil {
		return false, 0, err
	}
	expectedIndexes := len(input.GlobalSecondaryIndexes)

	const maxRetries = 3
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * is.retryDelay
			is.logger.Infof("Retrying table creation for %s in %v (attempt %d/%d)", name, delay, attempt+1, maxRetries+1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return false, expectedIndexes, ctx.Err()
			}
		}

		exists, err := is.tableExists(ctx, name)
		if err != nil {
			lastErr = err
			is.logger.Errorf("Failed to check if table %s exists: %v", name, err)
			continue
		}
		if exists {
			return false, expectedIndexes, nil
		}

		if err := is.db.CreateTable(ctx, input); err != nil {
			lastErr = err
			is.logger.Errorf("Attempt %d failed to create table %s: %v", attempt+1, name, err)
			continue
		}
		return true, expectedIndexes, nil
	}
	return false, expectedIndexes, fmt.Errorf("exhausted %d attempts: %w", maxRetries+1, lastErr)
}

func (is *InfrastructureSetup) tableExists(ctx context.Context, name string) (bool, error) {
	_, err := is.db.DescribeTable(ctx, name)
	if err == nil {
		return true, nil
	}
	if isTableNotFoundError(err) {
		return false, nil
	}
	return false, err
}

// isTableNotFoundError checks if err reports a missing table
func isTableNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, dal.ErrTableNotFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ResourceNotFoundException"
	}
	return strings.Contains(err.Error(), "ResourceNotFoundException")
}

func (is *InfrastructureSetup) waitForTablesActive(ctx context.Context, tables []string) error {
	waitCtx, cancel := context.WithTimeout(ctx, is.waitTimeout)
	defer cancel()

	ticker := time.NewTicker(is.pollInterval)
	defer ticker.Stop()

	for {
		pending := ""
		for _, name := range tables {
			desc, err := is.db.DescribeTable(waitCtx, name)
			if err != nil || desc.Table == nil || desc.Table.TableStatus != types.TableStatusActive {
				pending = name
				break
			}
		}
		if pending == "" {
			is.logger.Info("All tables are active")
			return nil
		}
		is.logger.Debugf("Table %s is not active yet", pending)

		select {
		case <-waitCtx.Done():
			return fmt.Errorf("timeout waiting for table %s to become active", pending)
		case <-ticker.C:
		}
	}
}

// validateInfrastructure checks every table is active with the indexes of its schema
func (is *InfrastructureSetup) validateInfrastructure(ctx context.Context, tables []string) error {
	is.logger.Info("Validating tables")

	for _, name := range tables {
		desc, err := is.db.DescribeTable(ctx, name)
		if err != nil {
			return fmt.Errorf("table %s validation failed: %w", name, err)
		}
		if desc.Table.TableStatus != types.TableStatusActive {
			return fmt.Errorf("table %s is not active: %s", name, desc.Table.TableStatus)
		}

		input, err := infrastructure.GetTables(name)
		if err != nil {
			return err
		}
		expected, actual := len(input.GlobalSecondaryIndexes), len(desc.Table.GlobalSecondaryIndexes)
		if actual != expected {
			return fmt.Errorf("table %s has %d indexes, expected %d", name, actual, expected)
		}
	}

	is.logger.Info("Table validation completed successfully")
	return nil
}
