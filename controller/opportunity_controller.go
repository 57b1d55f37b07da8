package controller

import (
	"net/http"
	"voluntariado-backend/middelware"
	"voluntariado-backend/models"
	"voluntariado-backend/services"
	"voluntariado-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

type OpportunityController struct {
	handler
	opportunityService services.OpportunityServiceInterface
}

func NewOpportunityController(svc services.ServiceContainerInterface, logger logger.Logger) *OpportunityController {
	return &OpportunityController{
		handler:            newHandler(logger),
		opportunityService: svc.GetOpportunityService(),
	}
}

// GetOpportunities handles GET /api/opportunities
// @Summary Browse opportunities
// @Description Without a status filter only Active opportunities are listed
// @Tags Opportunities
// @Produce json
// @Param searchTerm query string false "Matches title or description"
// @Param areaInteres query string false "Area of interest"
// @Param ubicacion query string false "Location"
// @Param status query string false "Draft, Active, Paused, Closed or Completed"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size (max 100)"
// @Success 200 {object} models.APIResponse "Opportunities retrieved successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid filters"
// @Router /opportunities [get]
func (h *OpportunityController) GetOpportunities(c *gin.Context) {
	var filter models.OpportunityFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		h.fail(c, http.StatusBadRequest, "Invalid query parameters", "ValidationError", "status must be one of: Draft, Active, Paused, Closed, Completed")
		return
	}

	result, err := h.opportunityService.GetAll(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, "Failed to get opportunities", err)
		return
	}
	h.ok(c, http.StatusOK, "Opportunities retrieved successfully", result)
}

// GetOpportunity handles GET /api/opportunities/{id}
// @Summary Opportunity detail
// @Description Authenticated callers also learn whether they already applied
// @Tags Opportunities
// @Produce json
// @Param id path int true "Opportunity ID"
// @Success 200 {object} models.APIResponse{data=models.OpportunityDetailDto} "Opportunity retrieved successfully"
// @Failure 404 {object} models.APIResponse "Not Found - Opportunity does not exist"
// @Router /opportunities/{id} [get]
func (h *OpportunityController) GetOpportunity(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var viewerID int64
	if claims, ok := middelware.ClaimsFromContext(c); ok {
		viewerID = claims.UserID
	}

	detail, err := h.opportunityService.GetByID(c.Request.Context(), id, viewerID)
	if err != nil {
		h.respondError(c, "Failed to get opportunity", err)
		return
	}
	h.ok(c, http.StatusOK, "Opportunity retrieved successfully", detail)
}

// CreateOpportunity handles POST /api/opportunities
// @Summary Post an opportunity
// @Tags Opportunities
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CreateOpportunityRequest true "Opportunity"
// @Success 201 {object} models.APIResponse{data=models.Opportunity} "Opportunity created successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid opportunity data"
// @Failure 403 {object} models.APIResponse "Forbidden - Organization access required"
// @Router /opportunities [post]
func (h *OpportunityController) CreateOpportunity(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	var req models.CreateOpportunityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	opp, err := h.opportunityService.Create(c.Request.Context(), &req, claims.OrganizationID)
	if err != nil {
		h.respondError(c, "Failed to create opportunity", err)
		return
	}
	h.logger.Infof("Organization %d created opportunity %d", claims.OrganizationID, opp.ID)
	h.ok(c, http.StatusCreated, "Opportunity created successfully", opp)
}

// UpdateOpportunity handles PUT /api/opportunities/{id}
// @Summary Update an opportunity
// @Tags Opportunities
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Opportunity ID"
// @Param request body models.UpdateOpportunityRequest true "Fields to change"
// @Success 200 {object} models.APIResponse{data=models.Opportunity} "Opportunity updated successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid opportunity data"
// @Failure 403 {object} models.APIResponse "Forbidden - Not the owning organization"
// @Failure 404 {object} models.APIResponse "Not Found - Opportunity does not exist"
// @Router /opportunities/{id} [put]
func (h *OpportunityController) UpdateOpportunity(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateOpportunityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	opp, err := h.opportunityService.Update(c.Request.Context(), id, &req, claims.OrganizationID)
	if err != nil {
		h.respondError(c, "Failed to update opportunity", err)
		return
	}
	h.ok(c, http.StatusOK, "Opportunity updated successfully", opp)
}

// DeleteOpportunity handles DELETE /api/opportunities/{id}
// @Summary Delete an opportunity
// @Description Opportunities that received applications cannot be deleted
// @Tags Opportunities
// @Security BearerAuth
// @Produce json
// @Param id path int true "Opportunity ID"
// @Success 200 {object} models.APIResponse "Opportunity deleted successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Opportunity has applications"
// @Failure 403 {object} models.APIResponse "Forbidden - Not the owning organization"
// @Router /opportunities/{id} [delete]
func (h *OpportunityController) DeleteOpportunity(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.opportunityService.Delete(c.Request.Context(), id, claims.OrganizationID); err != nil {
		h.respondError(c, "Failed to delete opportunity", err)
		return
	}
	h.ok(c, http.StatusOK, "Opportunity deleted successfully", nil)
}

// UploadImage handles POST /api/opportunities/{id}/image
// @Summary Upload the opportunity image
// @Tags Opportunities
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Opportunity ID"
// @Param image formData file true "Image"
// @Success 200 {object} models.APIResponse{data=models.Opportunity} "Image updated successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid image"
// @Router /opportunities/{id}/image [post]
func (h *OpportunityController) UploadImage(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	file, closeFile, ok := h.imageUpload(c)
	if !ok {
		return
	}
	defer closeFile()

	opp, err := h.opportunityService.UploadImage(c.Request.Context(), id, claims.OrganizationID, file)
	if err != nil {
		h.respondError(c, "Failed to upload image", err)
		return
	}
	h.ok(c, http.StatusOK, "Image updated successfully", opp)
}
