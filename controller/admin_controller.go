package controller

import (
	"net/http"
	"voluntariado-backend/models"
	"voluntariado-backend/services"
	"voluntariado-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	handler
	adminService        services.AdminServiceInterface
	userService         services.UserServiceInterface
	organizationService services.OrganizationServiceInterface
	opportunityService  services.OpportunityServiceInterface
}

func NewAdminController(svc services.ServiceContainerInterface, logger logger.Logger) *AdminController {
	return &AdminController{
		handler:             newHandler(logger),
		adminService:        svc.GetAdminService(),
		userService:         svc.GetUserService(),
		organizationService: svc.GetOrganizationService(),
		opportunityService:  svc.GetOpportunityService(),
	}
}

// GetStats handles GET /api/admin/stats
// @Summary Platform statistics
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.AdminStats} "Statistics retrieved successfully"
// @Failure 403 {object} models.APIResponse "Forbidden - Admin access required"
// @Router /admin/stats [get]
func (h *AdminController) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetStats(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to get statistics", err)
		return
	}
	h.ok(c, http.StatusOK, "Statistics retrieved successfully", stats)
}

// GetUsers handles GET /api/admin/users
// @Summary List users
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param rol query string false "Voluntario, Organizacion or Admin"
// @Param estado query string false "Active, Inactive, Suspended or PendingVerification"
// @Param searchTerm query string false "Matches name or email"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size (max 100)"
// @Success 200 {object} models.APIResponse "Users retrieved successfully"
// @Router /admin/users [get]
func (h *AdminController) GetUsers(c *gin.Context) {
	var filter models.UserFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.Rol != "" && !filter.Rol.IsValid() {
		h.fail(c, http.StatusBadRequest, "Invalid query parameters", "ValidationError", "rol must be one of: Voluntario, Organizacion, Admin")
		return
	}
	if filter.Estado != "" && !filter.Estado.IsValid() {
		h.fail(c, http.StatusBadRequest, "Invalid query parameters", "ValidationError",
			"estado must be one of: Active, Inactive, Suspended, PendingVerification")
		return
	}

	result, err := h.userService.GetUsers(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, "Failed to get users", err)
		return
	}
	h.ok(c, http.StatusOK, "Users retrieved successfully", result)
}

// UpdateUserStatus handles PUT /api/admin/users/{id}/status
// @Summary Change an account status
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body models.UpdateUserStatusRequest true "New status"
// @Success 200 {object} models.APIResponse{data=models.UserDto} "User status updated successfully"
// @Failure 404 {object} models.APIResponse "Not Found - User does not exist"
// @Router /admin/users/{id}/status [put]
func (h *AdminController) UpdateUserStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateUserStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateUserStatus(c.Request.Context(), id, req.Estado)
	if err != nil {
		h.respondError(c, "Failed to update user status", err)
		return
	}
	h.logger.Infof("SECURITY EVENT: user %d status set to %s", id, req.Estado)
	h.ok(c, http.StatusOK, "User status updated successfully", user)
}

// VerifyOrganization handles PUT /api/admin/organizations/{id}/verify
// @Summary Verify or unverify an organization
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Organization ID"
// @Param request body models.VerifyOrganizationRequest true "Verification flag"
// @Success 200 {object} models.APIResponse{data=models.Organization} "Organization verification updated"
// @Failure 404 {object} models.APIResponse "Not Found - Organization does not exist"
// @Router /admin/organizations/{id}/verify [put]
func (h *AdminController) VerifyOrganization(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req models.VerifyOrganizationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	org, err := h.organizationService.VerifyOrganization(c.Request.Context(), id, req.Verificada)
	if err != nil {
		h.respondError(c, "Failed to update organization verification", err)
		return
	}
	h.ok(c, http.StatusOK, "Organization verification updated", org)
}

// DeleteOpportunity handles DELETE /api/admin/opportunities/{id}
// @Summary Remove any opportunity
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Opportunity ID"
// @Success 200 {object} models.APIResponse "Opportunity deleted successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Opportunity has applications"
// @Failure 404 {object} models.APIResponse "Not Found - Opportunity does not exist"
// @Router /admin/opportunities/{id} [delete]
func (h *AdminController) DeleteOpportunity(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.opportunityService.AdminDelete(c.Request.Context(), id); err != nil {
		h.respondError(c, "Failed to delete opportunity", err)
		return
	}
	h.ok(c, http.StatusOK, "Opportunity deleted successfully", nil)
}
