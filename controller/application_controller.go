package controller

import (
	"errors"
	"io"
	"net/http"
	"voluntariado-backend/models"
	"voluntariado-backend/services"
	"voluntariado-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

type ApplicationController struct {
	handler
	applicationService services.ApplicationServiceInterface
}

func NewApplicationController(svc services.ServiceContainerInterface, logger logger.Logger) *ApplicationController {
	return &ApplicationController{
		handler:            newHandler(logger),
		applicationService: svc.GetApplicationService(),
	}
}

// Apply handles POST /api/apply/{opportunityId}
// @Summary Apply to an opportunity
// @Tags Applications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param opportunityId path int true "Opportunity ID"
// @Param request body models.ApplyRequest false "Optional message to the organization"
// @Success 201 {object} models.APIResponse{data=models.Application} "Application submitted successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Opportunity not active or full"
// @Failure 403 {object} models.APIResponse "Forbidden - Volunteer access required"
// @Failure 404 {object} models.APIResponse "Not Found - Opportunity does not exist"
// @Failure 409 {object} models.APIResponse "Conflict - Already applied"
// @Router /apply/{opportunityId} [post]
func (h *ApplicationController) Apply(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	opportunityID, ok := h.pathID(c, "opportunityId")
	if !ok {
		return
	}

	// the body is optional
	var req models.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.fail(c, http.StatusBadRequest, "Invalid request", "ValidationError", err.Error())
		return
	}
	if !h.validate(c, &req) {
		return
	}

	app, err := h.applicationService.Apply(c.Request.Context(), opportunityID, claims.UserID, &req)
	if err != nil {
		h.respondError(c, "Failed to apply", err)
		return
	}
	h.logger.Infof("User %d applied to opportunity %d", claims.UserID, opportunityID)
	h.ok(c, http.StatusCreated, "Application submitted successfully", app)
}

// GetApplications handles GET /api/applications
// @Summary Applications received by the caller's organization
// @Tags Applications
// @Security BearerAuth
// @Produce json
// @Param opportunityId query int false "Only this opportunity"
// @Param status query string false "Pending, Accepted, Rejected, Withdrawn or Completed"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size (max 100)"
// @Success 200 {object} models.APIResponse "Applications retrieved successfully"
// @Failure 403 {object} models.APIResponse "Forbidden - Organization access required"
// @Router /applications [get]
func (h *ApplicationController) GetApplications(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	var filter models.ApplicationFilter
	if !h.bindFilter(c, &filter) {
		return
	}

	result, err := h.applicationService.GetOrganizationApplications(c.Request.Context(), claims.OrganizationID, filter)
	if err != nil {
		h.respondError(c, "Failed to get applications", err)
		return
	}
	h.ok(c, http.StatusOK, "Applications retrieved successfully", result)
}

// GetMyApplications handles GET /api/my-applications
// @Summary The caller's applications
// @Tags Applications
// @Security BearerAuth
// @Produce json
// @Param status query string false "Pending, Accepted, Rejected, Withdrawn or Completed"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size (max 100)"
// @Success 200 {object} models.APIResponse "Applications retrieved successfully"
// @Router /my-applications [get]
func (h *ApplicationController) GetMyApplications(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	var filter models.ApplicationFilter
	if !h.bindFilter(c, &filter) {
		return
	}

	result, err := h.applicationService.GetMyApplications(c.Request.Context(), claims.UserID, filter)
	if err != nil {
		h.respondError(c, "Failed to get applications", err)
		return
	}
	h.ok(c, http.StatusOK, "Applications retrieved successfully", result)
}

// GetApplication handles GET /api/applications/{id}
// @Summary Application detail
// @Description Visible to the applicant, the owning organization and admins
// @Tags Applications
// @Security BearerAuth
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} models.APIResponse{data=models.ApplicationDto} "Application retrieved successfully"
// @Failure 403 {object} models.APIResponse "Forbidden - Not a party to the application"
// @Failure 404 {object} models.APIResponse "Not Found - Application does not exist"
// @Router /applications/{id} [get]
func (h *ApplicationController) GetApplication(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	app, err := h.applicationService.GetByID(c.Request.Context(), id, claims)
	if err != nil {
		h.respondError(c, "Failed to get application", err)
		return
	}
	h.ok(c, http.StatusOK, "Application retrieved successfully", app)
}

// UpdateStatus handles PUT /api/applications/{id}/status
// @Summary Review an application
// @Description Accept or reject a pending application, or complete an accepted one. Completing records the volunteer activity.
// @Tags Applications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param request body models.UpdateApplicationStatusRequest true "New status"
// @Success 200 {object} models.APIResponse{data=models.Application} "Application status updated successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid transition or opportunity full"
// @Failure 403 {object} models.APIResponse "Forbidden - Not the owning organization"
// @Failure 404 {object} models.APIResponse "Not Found - Application does not exist"
// @Router /applications/{id}/status [put]
func (h *ApplicationController) UpdateStatus(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateApplicationStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	app, err := h.applicationService.UpdateStatus(c.Request.Context(), id, &req, claims.OrganizationID)
	if err != nil {
		h.respondError(c, "Failed to update application status", err)
		return
	}
	h.logger.Infof("Application %d moved to %s by organization %d", id, app.Estado, claims.OrganizationID)
	h.ok(c, http.StatusOK, "Application status updated successfully", app)
}

// Withdraw handles POST /api/applications/{id}/withdraw
// @Summary Withdraw my application
// @Tags Applications
// @Security BearerAuth
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} models.APIResponse{data=models.Application} "Application withdrawn successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Application can no longer be withdrawn"
// @Failure 403 {object} models.APIResponse "Forbidden - Not the applicant"
// @Router /applications/{id}/withdraw [post]
func (h *ApplicationController) Withdraw(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	app, err := h.applicationService.Withdraw(c.Request.Context(), id, claims.UserID)
	if err != nil {
		h.respondError(c, "Failed to withdraw application", err)
		return
	}
	h.ok(c, http.StatusOK, "Application withdrawn successfully", app)
}

func (h *ApplicationController) bindFilter(c *gin.Context, filter *models.ApplicationFilter) bool {
	if !h.bindQuery(c, filter) {
		return false
	}
	if filter.Estado != "" && !filter.Estado.IsValid() {
		h.fail(c, http.StatusBadRequest, "Invalid query parameters", "ValidationError",
			"status must be one of: Pending, Accepted, Rejected, Withdrawn, Completed")
		return false
	}
	return true
}
