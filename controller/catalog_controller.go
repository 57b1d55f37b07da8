package controller

import (
	"net/http"
	"voluntariado-backend/models"
	"voluntariado-backend/services"
	"voluntariado-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

// CatalogController serves the badge and skill catalogs
type CatalogController struct {
	handler
	badgeService services.BadgeServiceInterface
	skillService services.SkillServiceInterface
}

func NewCatalogController(svc services.ServiceContainerInterface, logger logger.Logger) *CatalogController {
	return &CatalogController{
		handler:      newHandler(logger),
		badgeService: svc.GetBadgeService(),
		skillService: svc.GetSkillService(),
	}
}

// GetBadges handles GET /api/badges
// @Summary Badge catalog
// @Tags Badges
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.Badge} "Badges retrieved successfully"
// @Router /badges [get]
func (h *CatalogController) GetBadges(c *gin.Context) {
	badges, err := h.badgeService.GetBadges(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to get badges", err)
		return
	}
	h.ok(c, http.StatusOK, "Badges retrieved successfully", badges)
}

// CreateBadge handles POST /api/admin/badges
// @Summary Add a badge to the catalog
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CreateBadgeRequest true "Badge"
// @Success 201 {object} models.APIResponse{data=models.Badge} "Badge created successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid badge"
// @Failure 409 {object} models.APIResponse "Conflict - Badge name taken"
// @Router /admin/badges [post]
func (h *CatalogController) CreateBadge(c *gin.Context) {
	var req models.CreateBadgeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	badge, err := h.badgeService.CreateBadge(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to create badge", err)
		return
	}
	h.ok(c, http.StatusCreated, "Badge created successfully", badge)
}

// DeleteBadge handles DELETE /api/admin/badges/{id}
// @Summary Remove a badge from the catalog
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Badge ID"
// @Success 200 {object} models.APIResponse "Badge deleted successfully"
// @Failure 404 {object} models.APIResponse "Not Found - Badge does not exist"
// @Router /admin/badges/{id} [delete]
func (h *CatalogController) DeleteBadge(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.badgeService.DeleteBadge(c.Request.Context(), id); err != nil {
		h.respondError(c, "Failed to delete badge", err)
		return
	}
	h.ok(c, http.StatusOK, "Badge deleted successfully", nil)
}

// AwardBadge handles POST /api/admin/badges/{id}/award
// @Summary Award a badge manually
// @Description Awarding a badge the user already holds is a no-op
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Badge ID"
// @Param request body models.AwardBadgeRequest true "Recipient and reason"
// @Success 200 {object} models.APIResponse "Badge award processed"
// @Failure 404 {object} models.APIResponse "Not Found - Badge or user does not exist"
// @Router /admin/badges/{id}/award [post]
func (h *CatalogController) AwardBadge(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req models.AwardBadgeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	awarded, err := h.badgeService.AwardBadge(c.Request.Context(), req.UsuarioID, id, req.Motivo, claims.UserID)
	if err != nil {
		h.respondError(c, "Failed to award badge", err)
		return
	}
	message := "Badge awarded successfully"
	if !awarded {
		message = "User already holds this badge"
	}
	h.ok(c, http.StatusOK, message, gin.H{"awarded": awarded})
}

// GetSkills handles GET /api/skills
// @Summary Skill catalog
// @Tags Skills
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.Skill} "Skills retrieved successfully"
// @Router /skills [get]
func (h *CatalogController) GetSkills(c *gin.Context) {
	skills, err := h.skillService.GetSkills(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to get skills", err)
		return
	}
	h.ok(c, http.StatusOK, "Skills retrieved successfully", skills)
}

// CreateSkill handles POST /api/admin/skills
// @Summary Add a skill to the catalog
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CreateSkillRequest true "Skill"
// @Success 201 {object} models.APIResponse{data=models.Skill} "Skill created successfully"
// @Failure 409 {object} models.APIResponse "Conflict - Skill name taken"
// @Router /admin/skills [post]
func (h *CatalogController) CreateSkill(c *gin.Context) {
	var req models.CreateSkillRequest
	if !h.bindJSON(c, &req) {
		return
	}

	skill, err := h.skillService.CreateSkill(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to create skill", err)
		return
	}
	h.ok(c, http.StatusCreated, "Skill created successfully", skill)
}

// DeleteSkill handles DELETE /api/admin/skills/{id}
// @Summary Remove a skill from the catalog
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Skill ID"
// @Success 200 {object} models.APIResponse "Skill deleted successfully"
// @Failure 404 {object} models.APIResponse "Not Found - Skill does not exist"
// @Router /admin/skills/{id} [delete]
func (h *CatalogController) DeleteSkill(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.skillService.DeleteSkill(c.Request.Context(), id); err != nil {
		h.respondError(c, "Failed to delete skill", err)
		return
	}
	h.ok(c, http.StatusOK, "Skill deleted successfully", nil)
}
