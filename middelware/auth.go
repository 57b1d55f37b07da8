package middelware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"voluntariado-backend/models"
	"voluntariado-backend/repository"
	"voluntariado-backend/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Context keys set by AuthMiddleware
const (
	ContextUserID = "user_id"
	ContextClaims = "jwt_claims"
)

// JWTManager handles JWT token operations
type JWTManager struct {
	Config            *models.Config
	Logger            logger.Logger
	UserRepo          repository.UserRepositoryInterface
	BlacklistedTokens map[string]time.Time // token id -> expiry, for logout
	TokenMutex        sync.RWMutex
	now               func() time.Time
}

// NewJWTManager creates a new JWT manager. userRepo may be nil, in which case
// tokens are trusted without checking the account status.
func NewJWTManager(cfg *models.Config, log logger.Logger, userRepo repository.UserRepositoryInterface) *JWTManager {
	return &JWTManager{
		Config:            cfg,
		Logger:            log,
		UserRepo:          userRepo,
		BlacklistedTokens: make(map[string]time.Time),
		now:               time.Now,
	}
}

// GenerateToken generates a JWT token for a user. orgID is the organization
// owned by the account, 0 for volunteers and admins.
func (j *JWTManager) GenerateToken(user *models.User, orgID int64) (string, error) {
	now := j.now()
	claims := models.JWTClaims{
		UserID:         user.ID,
		Email:          user.Email,
		Role:           user.Rol,
		Status:         user.Estado,
		OrganizationID: orgID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   fmt.Sprintf("%d", user.ID),
			Issuer:    j.Config.AppName,
			Audience:  jwt.ClaimStrings{j.Config.AppName},
			ExpiresAt: jwt.NewNumericDate(now.Add(j.Config.JWTExpiresIn)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.Config.JWTSecret))
	if err != nil {
		j.Logger.Errorf("Failed to sign JWT token: %v", err)
		return "", err
	}

	j.Logger.Debugf("Generated JWT token for user: %d", user.ID)
	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims after checking
// the blacklist and the stored account status
func (j *JWTManager) ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Prevent algorithm confusion attacks
		if method, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		} else if method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("invalid signing algorithm: %v", method.Alg())
		}
		return []byte(j.Config.JWTSecret), nil
	}, jwt.WithTimeFunc(j.now), jwt.WithAudience(j.Config.AppName))
	if err != nil {
		j.Logger.Debugf("Failed to parse JWT token: %v", err)
		return nil, err
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid claims")
	}

	j.TokenMutex.RLock()
	expiry, revoked := j.BlacklistedTokens[claims.ID]
	j.TokenMutex.RUnlock()
	if revoked && expiry.After(j.now()) {
		return nil, fmt.Errorf("token has been revoked")
	}

	if j.UserRepo != nil {
		user, err := j.UserRepo.GetUserByID(ctx, claims.UserID)
		if err != nil {
			j.Logger.Warnf("Failed to verify user %d: %v", claims.UserID, err)
			return nil, fmt.Errorf("user verification failed")
		}
		if !user.Estado.CanLogin() {
			return nil, fmt.Errorf("user account is %s", user.Estado)
		}
		// the stored status is authoritative for later role checks
		claims.Status = user.Estado
	}

	return claims, nil
}

// RevokeToken blacklists the token until it would have expired anyway
func (j *JWTManager) RevokeToken(claims *models.JWTClaims) {
	expiry := j.now().Add(j.Config.JWTExpiresIn)
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}

	j.TokenMutex.Lock()
	defer j.TokenMutex.Unlock()
	j.BlacklistedTokens[claims.ID] = expiry
	j.Logger.Debugf("Revoked token %s for user %d", claims.ID, claims.UserID)
}

// CleanupExpiredTokens removes expired tokens from the blacklist and returns how many were dropped
func (j *JWTManager) CleanupExpiredTokens() int {
	j.TokenMutex.Lock()
	defer j.TokenMutex.Unlock()

	now := j.now()
	removed := 0
	for tokenID, expiry := range j.BlacklistedTokens {
		if !expiry.After(now) {
			delete(j.BlacklistedTokens, tokenID)
			removed++
		}
	}
	j.Logger.Debugf("Cleaned up %d expired blacklisted tokens", removed)
	return removed
}

// bearerToken reads the token from the Authorization header, falling back to
// the access_token query parameter used by EventSource clients
func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := strings.TrimSpace(c.Query("access_token")); token != "" {
			return token, nil
		}
		return "", fmt.Errorf("authorization header is required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", fmt.Errorf("authorization header must be in format: Bearer <token>")
	}
	return strings.TrimSpace(parts[1]), nil
}

func abortWith(c *gin.Context, status int, message, errType, details string) {
	c.AbortWithStatusJSON(status, models.APIResponse{
		Success: false,
		Message: message,
		Errors:  []models.APIError{{Type: errType, Details: details}},
	})
}

// AuthMiddleware requires a valid token and stores its claims in the context
func (j *JWTManager) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c)
		if err != nil {
			abortWith(c, http.StatusUnauthorized, "Authentication required", "AuthenticationError", err.Error())
			return
		}

		claims, err := j.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			abortWith(c, http.StatusUnauthorized, "Invalid or expired token", "AuthenticationError", err.Error())
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// OptionalAuth stores the claims when a valid token is present and lets anonymous requests through
func (j *JWTManager) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, err := bearerToken(c); err == nil {
			if claims, err := j.ValidateToken(c.Request.Context(), tokenString); err == nil {
				c.Set(ContextUserID, claims.UserID)
				c.Set(ContextClaims, claims)
			}
		}
		c.Next()
	}
}

// RequireRoles admits authenticated users holding one of roles
func (j *JWTManager) RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if j.checkRoles(c, roles...) {
			c.Next()
		}
	}
}

// checkRoles aborts the request unless the caller holds one of roles
func (j *JWTManager) checkRoles(c *gin.Context, roles ...models.UserRole) bool {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		abortWith(c, http.StatusUnauthorized, "Authentication required", "AuthenticationError", "User not authenticated")
		return false
	}
	for _, role := range roles {
		if claims.Role == role {
			return true
		}
	}
	j.Logger.Warnf("User %d with role %s denied, requires %v", claims.UserID, claims.Role, roles)
	abortWith(c, http.StatusForbidden, "Insufficient permissions", "AuthorizationError",
		fmt.Sprintf("Required role: %v", roles))
	return false
}

// VoluntarioOnly admits volunteers
func (j *JWTManager) VoluntarioOnly() gin.HandlerFunc {
	return j.RequireRoles(models.UserRoleVoluntario)
}

// OrganizacionOnly admits organization accounts that own an organization
func (j *JWTManager) OrganizacionOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !j.checkRoles(c, models.UserRoleOrganizacion) {
			return
		}
		if claims, _ := ClaimsFromContext(c); claims.OrganizationID == 0 {
			abortWith(c, http.StatusForbidden, "Insufficient permissions", "AuthorizationError", "Account has no organization")
			return
		}
		c.Next()
	}
}

// AdminOnly admits administrators
func (j *JWTManager) AdminOnly() gin.HandlerFunc {
	return j.RequireRoles(models.UserRoleAdmin)
}

// ClaimsFromContext returns the claims stored by AuthMiddleware
func ClaimsFromContext(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(ContextClaims)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok
}
