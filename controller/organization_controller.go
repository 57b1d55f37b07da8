package controller

import (
	"net/http"
	"voluntariado-backend/models"
	"voluntariado-backend/services"
	"voluntariado-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

type OrganizationController struct {
	handler
	organizationService services.OrganizationServiceInterface
	opportunityService  services.OpportunityServiceInterface
	financeService      services.FinanceServiceInterface
	donationService     services.DonationServiceInterface
}

func NewOrganizationController(svc services.ServiceContainerInterface, logger logger.Logger) *OrganizationController {
	return &OrganizationController{
		handler:             newHandler(logger),
		organizationService: svc.GetOrganizationService(),
		opportunityService:  svc.GetOpportunityService(),
		financeService:      svc.GetFinanceService(),
		donationService:     svc.GetDonationService(),
	}
}

// GetOrganizations handles GET /api/organizations
// @Summary List organizations
// @Tags Organizations
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size (max 100)"
// @Success 200 {object} models.APIResponse "Organizations retrieved successfully"
// @Router /organizations [get]
func (h *OrganizationController) GetOrganizations(c *gin.Context) {
	var page models.Pagination
	if !h.bindQuery(c, &page) {
		return
	}

	result, err := h.organizationService.GetOrganizations(c.Request.Context(), page)
	if err != nil {
		h.respondError(c, "Failed to get organizations", err)
		return
	}
	h.ok(c, http.StatusOK, "Organizations retrieved successfully", result)
}

// GetOrganization handles GET /api/organizations/{id}
// @Summary Organization profile
// @Tags Organizations
// @Produce json
// @Param id path int true "Organization ID"
// @Success 200 {object} models.APIResponse{data=models.Organization} "Organization retrieved successfully"
// @Failure 404 {object} models.APIResponse "Not Found - Organization does not exist"
// @Router /organizations/{id} [get]
func (h *OrganizationController) GetOrganization(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	org, err := h.organizationService.GetOrganizationByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to get organization", err)
		return
	}
	h.ok(c, http.StatusOK, "Organization retrieved successfully", org)
}

// GetMyOrganization handles GET /api/organizations/me
// @Summary The caller's organization
// @Tags Organizations
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.Organization} "Organization retrieved successfully"
// @Router /organizations/me [get]
func (h *OrganizationController) GetMyOrganization(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}

	org, err := h.organizationService.GetOrganizationByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		h.respondError(c, "Failed to get organization", err)
		return
	}
	h.ok(c, http.StatusOK, "Organization retrieved successfully", org)
}

// UpdateOrganization handles PUT /api/organizations/me
// @Summary Update the caller's organization
// @Tags Organizations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.UpdateOrganizationRequest true "Fields to change"
// @Success 200 {object} models.APIResponse{data=models.Organization} "Organization updated successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid organization data"
// @Router /organizations/me [put]
func (h *OrganizationController) UpdateOrganization(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	var req models.UpdateOrganizationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	org, err := h.organizationService.UpdateOrganization(c.Request.Context(), claims.OrganizationID, &req)
	if err != nil {
		h.respondError(c, "Failed to update organization", err)
		return
	}
	h.ok(c, http.StatusOK, "Organization updated successfully", org)
}

// UploadLogo handles POST /api/organizations/me/logo
// @Summary Upload the organization logo
// @Tags Organizations
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Logo image"
// @Success 200 {object} models.APIResponse{data=models.Organization} "Logo updated successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid image"
// @Router /organizations/me/logo [post]
func (h *OrganizationController) UploadLogo(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	file, closeFile, ok := h.imageUpload(c)
	if !ok {
		return
	}
	defer closeFile()

	org, err := h.organizationService.UploadLogo(c.Request.Context(), claims.OrganizationID, file)
	if err != nil {
		h.respondError(c, "Failed to upload logo", err)
		return
	}
	h.ok(c, http.StatusOK, "Logo updated successfully", org)
}

// GetMyOpportunities handles GET /api/organizations/me/opportunities
// @Summary Opportunities posted by the caller's organization
// @Tags Organizations
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.OpportunityListDto} "Opportunities retrieved successfully"
// @Router /organizations/me/opportunities [get]
func (h *OrganizationController) GetMyOpportunities(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}

	opportunities, err := h.opportunityService.ListByOrganization(c.Request.Context(), claims.OrganizationID)
	if err != nil {
		h.respondError(c, "Failed to get opportunities", err)
		return
	}
	h.ok(c, http.StatusOK, "Opportunities retrieved successfully", opportunities)
}

// CreateExpense handles POST /api/organizations/me/expenses
// @Summary Record an expense
// @Tags Finance
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CreateExpenseRequest true "Expense"
// @Success 201 {object} models.APIResponse{data=models.Expense} "Expense recorded successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid expense"
// @Router /organizations/me/expenses [post]
func (h *OrganizationController) CreateExpense(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	var req models.CreateExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	expense, err := h.financeService.CreateExpense(c.Request.Context(), claims.OrganizationID, &req)
	if err != nil {
		h.respondError(c, "Failed to record expense", err)
		return
	}
	h.ok(c, http.StatusCreated, "Expense recorded successfully", expense)
}

// GetExpenses handles GET /api/organizations/me/expenses
// @Summary Expenses of the caller's organization
// @Tags Finance
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.Expense} "Expenses retrieved successfully"
// @Router /organizations/me/expenses [get]
func (h *OrganizationController) GetExpenses(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}

	expenses, err := h.financeService.GetExpenses(c.Request.Context(), claims.OrganizationID)
	if err != nil {
		h.respondError(c, "Failed to get expenses", err)
		return
	}
	h.ok(c, http.StatusOK, "Expenses retrieved successfully", expenses)
}

// DeleteExpense handles DELETE /api/organizations/me/expenses/{id}
// @Summary Delete an expense
// @Tags Finance
// @Security BearerAuth
// @Produce json
// @Param id path int true "Expense ID"
// @Success 200 {object} models.APIResponse "Expense deleted successfully"
// @Failure 403 {object} models.APIResponse "Forbidden - Expense belongs to another organization"
// @Router /organizations/me/expenses/{id} [delete]
func (h *OrganizationController) DeleteExpense(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.financeService.DeleteExpense(c.Request.Context(), claims.OrganizationID, id); err != nil {
		h.respondError(c, "Failed to delete expense", err)
		return
	}
	h.ok(c, http.StatusOK, "Expense deleted successfully", nil)
}

// GenerateReport handles POST /api/organizations/me/reports
// @Summary Generate a quarterly report
// @Description Regenerating a quarter replaces the previous report
// @Tags Finance
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.GenerateReportRequest true "Year and quarter"
// @Success 201 {object} models.APIResponse{data=models.FinancialReport} "Report generated successfully"
// @Router /organizations/me/reports [post]
func (h *OrganizationController) GenerateReport(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	var req models.GenerateReportRequest
	if !h.bindJSON(c, &req) {
		return
	}

	report, err := h.financeService.GenerateReport(c.Request.Context(), claims.OrganizationID, req.Anio, req.Trimestre)
	if err != nil {
		h.respondError(c, "Failed to generate report", err)
		return
	}
	h.ok(c, http.StatusCreated, "Report generated successfully", report)
}

// GetReports handles GET /api/organizations/me/reports
// @Summary Reports of the caller's organization
// @Tags Finance
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.FinancialReport} "Reports retrieved successfully"
// @Router /organizations/me/reports [get]
func (h *OrganizationController) GetReports(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}

	reports, err := h.financeService.GetReports(c.Request.Context(), claims.OrganizationID)
	if err != nil {
		h.respondError(c, "Failed to get reports", err)
		return
	}
	h.ok(c, http.StatusOK, "Reports retrieved successfully", reports)
}

// GetMyDonations handles GET /api/organizations/me/donations
// @Summary Donations received by the caller's organization
// @Tags Donations
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.Donation} "Donations retrieved successfully"
// @Router /organizations/me/donations [get]
func (h *OrganizationController) GetMyDonations(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}

	donations, err := h.donationService.GetOrganizationDonations(c.Request.Context(), claims.OrganizationID)
	if err != nil {
		h.respondError(c, "Failed to get donations", err)
		return
	}
	h.ok(c, http.StatusOK, "Donations retrieved successfully", donations)
}

// GetTransparency handles GET /api/organizations/{id}/transparency
// @Summary Public financial transparency
// @Description Only verified organizations publish their reports
// @Tags Finance
// @Produce json
// @Param id path int true "Organization ID"
// @Success 200 {object} models.APIResponse{data=models.TransparencyView} "Transparency data retrieved successfully"
// @Failure 404 {object} models.APIResponse "Not Found - Organization missing or not verified"
// @Router /organizations/{id}/transparency [get]
func (h *OrganizationController) GetTransparency(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.financeService.GetTransparency(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to get transparency data", err)
		return
	}
	h.ok(c, http.StatusOK, "Transparency data retrieved successfully", view)
}
