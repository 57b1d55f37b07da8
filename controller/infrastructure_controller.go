package controller

import (
	"errors"
	"fmt"
	"net/http"
	"voluntariado-backend/models"
	"voluntariado-backend/services"
	"voluntariado-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

type InfrastructureController struct {
	handler
	service services.InfrastructureServiceInterface
}

func NewInfrastructureController(svc services.ServiceContainerInterface, logger logger.Logger) *InfrastructureController {
	return &InfrastructureController{
		handler: newHandler(logger),
		service: svc.GetInfrastructureService(),
	}
}

// workerPhase is how a provisioning state is reported over HTTP
type workerPhase struct {
	code    int
	message string
}

var workerPhases = map[models.WorkerStatus]workerPhase{
	models.StatusIdle:             {http.StatusOK, "Worker is idle"},
	models.StatusCompleted:        {http.StatusOK, "Tables are provisioned and scheduled jobs are running"},
	models.StatusFailed:           {http.StatusServiceUnavailable, "Provisioning failed, manual intervention may be required"},
	models.StatusInitializing:     {http.StatusAccepted, "Initializing worker"},
	models.StatusRunning:          {http.StatusAccepted, "Provisioning is running"},
	models.StatusCreatingTables:   {http.StatusAccepted, "Creating DynamoDB tables"},
	models.StatusWaitingForTables: {http.StatusAccepted, "Waiting for DynamoDB tables to become active"},
	models.StatusValidating:       {http.StatusAccepted, "Validating tables and indexes"},
	models.StatusRetrying:         {http.StatusAccepted, "Retrying provisioning"},
}

func workerHTTPStatus(status models.WorkerStatus) int {
	if phase, ok := workerPhases[status]; ok {
		return phase.code
	}
	return http.StatusOK
}

func workerStatusMessage(ws *models.ExecutionResult) string {
	switch {
	case ws.Status == models.StatusRetrying:
		return fmt.Sprintf("Retrying provisioning (attempt %d)", ws.RetryCount+1)
	case ws.Status == models.StatusCompleted && !ws.Success:
		return "Provisioning completed with warnings"
	}
	if phase, ok := workerPhases[ws.Status]; ok {
		return phase.message
	}
	return "Worker status retrieved successfully"
}

// GetWorkerStatus handles GET /api/admin/worker/status
// @Summary Get worker execution status
// @Description Provisioning state of the tables plus the last run of every scheduled job
// @Tags Infrastructure
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.ExecutionResult} "Worker status retrieved successfully"
// @Success 202 {object} models.APIResponse{data=models.ExecutionResult} "Provisioning in progress"
// @Failure 403 {object} models.APIResponse "Forbidden - Admin access required"
// @Failure 503 {object} models.APIResponse "Service Unavailable - Provisioning failed"
// @Router /admin/worker/status [get]
func (h *InfrastructureController) GetWorkerStatus(c *gin.Context) {
	ws, err := h.service.GetWorkerStatus(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get worker status")
		h.fail(c, http.StatusInternalServerError, "Failed to retrieve worker status", "WorkerError", internalErrorDetails)
		return
	}

	code := workerHTTPStatus(ws.Status)
	c.JSON(code, models.APIResponse{
		Success: code < http.StatusBadRequest,
		Message: workerStatusMessage(ws),
		Data:    ws,
	})
}

// RestartWorker handles POST /api/admin/worker/restart
// @Summary Restart table provisioning
// @Description Re-run a failed provisioning. force restarts even while provisioning is in progress.
// @Tags Infrastructure
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.WorkerRestartRequest false "Worker restart options"
// @Success 200 {object} models.APIResponse{data=models.ServiceRestartResult} "Worker restart initiated successfully"
// @Failure 409 {object} models.APIResponse "Conflict - Provisioning in progress and force=false"
// @Failure 500 {object} models.APIResponse "Internal Server Error - Failed to restart worker"
// @Router /admin/worker/restart [post]
func (h *InfrastructureController) RestartWorker(c *gin.Context) {
	// the body is optional
	var req models.WorkerRestartRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.service.RestartWorker(c.Request.Context(), req.Force)
	switch {
	case errors.Is(err, models.ErrProvisioningBusy):
		h.logger.Warnf("Worker restart denied: %v", err)
		h.fail(c, http.StatusConflict, "Provisioning is in progress", "ConflictError",
			"Provisioning is in progress. Use force=true to restart anyway")
		return
	case err != nil:
		h.logger.WithError(err).Error("Failed to restart worker")
		h.fail(c, http.StatusInternalServerError, "Failed to restart worker", "WorkerError", internalErrorDetails)
		return
	}

	h.logger.Infof("Worker restart result: %s", result.Status)
	h.ok(c, http.StatusOK, "Worker restart initiated successfully", result)
}

// CheckWorkerHealth handles GET /api/admin/worker/health
// @Summary Check worker health
// @Tags Infrastructure
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse "Worker health check completed"
// @Failure 500 {object} models.APIResponse "Internal Server Error - Failed to check worker health"
// @Router /admin/worker/health [get]
func (h *InfrastructureController) CheckWorkerHealth(c *gin.Context) {
	healthy, reason, err := h.service.IsWorkerHealthy()
	if err != nil {
		h.logger.WithError(err).Error("Failed to check worker health")
		h.fail(c, http.StatusInternalServerError, "Failed to check worker health", "WorkerError", reason)
		return
	}

	state := "healthy"
	if !healthy {
		state = "unhealthy"
	}
	h.ok(c, http.StatusOK, "Worker health check completed", gin.H{
		"healthy": healthy,
		"status":  state,
		"reason":  reason,
	})
}
