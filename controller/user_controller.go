package controller

import (
	"net/http"
	"voluntariado-backend/models"
	"voluntariado-backend/services"
	"voluntariado-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

// TokenRevoker blacklists a token on logout
type TokenRevoker interface {
	RevokeToken(claims *models.JWTClaims)
}

type UserController struct {
	handler
	authService  services.AuthServiceInterface
	userService  services.UserServiceInterface
	badgeService services.BadgeServiceInterface
	skillService services.SkillServiceInterface
	tokens       TokenRevoker
}

func NewUserController(svc services.ServiceContainerInterface, tokens TokenRevoker, logger logger.Logger) *UserController {
	return &UserController{
		handler:      newHandler(logger),
		authService:  svc.GetAuthService(),
		userService:  svc.GetUserService(),
		badgeService: svc.GetBadgeService(),
		skillService: svc.GetSkillService(),
		tokens:       tokens,
	}
}

// Register handles POST /api/auth/register
// @Summary Register a new account
// @Description Create a volunteer or organization account. Organization accounts also create the organization profile.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration request"
// @Success 201 {object} models.APIResponse{data=models.AuthResponse} "User registered successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid registration data"
// @Failure 409 {object} models.APIResponse "Conflict - Email already registered"
// @Failure 500 {object} models.APIResponse "Internal Server Error - Registration failed"
// @Router /auth/register [post]
func (h *UserController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to register user", err)
		return
	}

	h.logger.Infof("User %d registered as %s", resp.User.ID, resp.User.Rol)
	h.ok(c, http.StatusCreated, "User registered successfully", resp)
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Exchange email and password for a bearer token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.APIResponse{data=models.AuthResponse} "Login successful"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid login data"
// @Failure 401 {object} models.APIResponse "Unauthorized - Invalid credentials"
// @Failure 403 {object} models.APIResponse "Forbidden - Account is not active"
// @Router /auth/login [post]
func (h *UserController) Login(c *gin.Context) {
	var req models.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Login failed", err)
		return
	}

	h.ok(c, http.StatusOK, "Login successful", resp)
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Description Revoke the current bearer token
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse "Logout successful"
// @Failure 401 {object} models.APIResponse "Unauthorized - Authentication required"
// @Router /auth/logout [post]
func (h *UserController) Logout(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}

	h.tokens.RevokeToken(claims)
	h.logger.Infof("User %d logged out", claims.UserID)
	h.ok(c, http.StatusOK, "Logout successful", nil)
}

// Me handles GET /api/auth/me
// @Summary Current account
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.UserDto} "Current user"
// @Failure 401 {object} models.APIResponse "Unauthorized - Authentication required"
// @Router /auth/me [get]
func (h *UserController) Me(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		h.respondError(c, "Failed to get current user", err)
		return
	}
	h.ok(c, http.StatusOK, "Current user retrieved successfully", user)
}

// GetProfile handles GET /api/users/me
// @Summary Get my profile
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.UserDto} "Profile retrieved successfully"
// @Failure 401 {object} models.APIResponse "Unauthorized - Authentication required"
// @Router /users/me [get]
func (h *UserController) GetProfile(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		h.respondError(c, "Failed to get profile", err)
		return
	}
	h.ok(c, http.StatusOK, "Profile retrieved successfully", profile)
}

// UpdateProfile handles PUT /api/users/me
// @Summary Update my profile
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.UpdateProfileRequest true "Profile fields to change"
// @Success 200 {object} models.APIResponse{data=models.UserDto} "Profile updated successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid profile data"
// @Router /users/me [put]
func (h *UserController) UpdateProfile(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		h.respondError(c, "Failed to update profile", err)
		return
	}
	h.ok(c, http.StatusOK, "Profile updated successfully", profile)
}

// UploadAvatar handles POST /api/users/me/avatar
// @Summary Upload my avatar
// @Description Accepts a jpeg, png, webp or gif image in the multipart field "image"
// @Tags Users
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Avatar image"
// @Success 200 {object} models.APIResponse{data=models.UserDto} "Avatar updated successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid image"
// @Router /users/me/avatar [post]
func (h *UserController) UploadAvatar(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	file, closeFile, ok := h.imageUpload(c)
	if !ok {
		return
	}
	defer closeFile()

	profile, err := h.userService.UploadAvatar(c.Request.Context(), claims.UserID, file)
	if err != nil {
		h.respondError(c, "Failed to upload avatar", err)
		return
	}
	h.ok(c, http.StatusOK, "Avatar updated successfully", profile)
}

// GetUser handles GET /api/users/{id}
// @Summary Public profile
// @Description Profile with volunteer aggregates, badges and skills
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.APIResponse{data=models.PublicProfile} "User retrieved successfully"
// @Failure 404 {object} models.APIResponse "Not Found - User does not exist"
// @Router /users/{id} [get]
func (h *UserController) GetUser(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	profile, err := h.userService.GetPublicProfile(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to get user", err)
		return
	}
	h.ok(c, http.StatusOK, "User retrieved successfully", profile)
}

// GetUserActivities handles GET /api/users/{id}/activities
// @Summary Volunteer activity history
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.APIResponse{data=[]models.ActivityDto} "Activities retrieved successfully"
// @Router /users/{id}/activities [get]
func (h *UserController) GetUserActivities(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	activities, err := h.badgeService.GetUserActivities(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to get activities", err)
		return
	}
	h.ok(c, http.StatusOK, "Activities retrieved successfully", activities)
}

// GetUserBadges handles GET /api/users/{id}/badges
// @Summary Badges earned by a user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.APIResponse{data=[]models.UsuarioBadgeDto} "Badges retrieved successfully"
// @Router /users/{id}/badges [get]
func (h *UserController) GetUserBadges(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	badges, err := h.badgeService.GetUserBadges(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to get badges", err)
		return
	}
	h.ok(c, http.StatusOK, "Badges retrieved successfully", badges)
}

// GetUserSkills handles GET /api/users/{id}/skills
// @Summary Skills declared by a user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.APIResponse{data=[]models.UsuarioSkillDto} "Skills retrieved successfully"
// @Router /users/{id}/skills [get]
func (h *UserController) GetUserSkills(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	skills, err := h.skillService.GetUserSkills(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to get skills", err)
		return
	}
	h.ok(c, http.StatusOK, "Skills retrieved successfully", skills)
}

// AddSkill handles POST /api/users/me/skills
// @Summary Add or update one of my skills
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.AddUserSkillRequest true "Skill and level"
// @Success 200 {object} models.APIResponse{data=models.UsuarioSkillDto} "Skill saved successfully"
// @Failure 404 {object} models.APIResponse "Not Found - Skill does not exist"
// @Router /users/me/skills [post]
func (h *UserController) AddSkill(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	var req models.AddUserSkillRequest
	if !h.bindJSON(c, &req) {
		return
	}

	skill, err := h.skillService.AddUserSkill(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		h.respondError(c, "Failed to save skill", err)
		return
	}
	h.ok(c, http.StatusOK, "Skill saved successfully", skill)
}

// RemoveSkill handles DELETE /api/users/me/skills/{skillId}
// @Summary Remove one of my skills
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param skillId path int true "Skill ID"
// @Success 200 {object} models.APIResponse "Skill removed successfully"
// @Failure 404 {object} models.APIResponse "Not Found - Skill not on profile"
// @Router /users/me/skills/{skillId} [delete]
func (h *UserController) RemoveSkill(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	skillID, ok := h.pathID(c, "skillId")
	if !ok {
		return
	}

	if err := h.skillService.RemoveUserSkill(c.Request.Context(), claims.UserID, skillID); err != nil {
		h.respondError(c, "Failed to remove skill", err)
		return
	}
	h.ok(c, http.StatusOK, "Skill removed successfully", nil)
}
