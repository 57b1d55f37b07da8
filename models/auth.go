package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims represents the JWT claims
type JWTClaims struct {
	UserID         int64      `json:"user_id"`
	Email          string     `json:"email"`
	Role           UserRole   `json:"role"`
	Status         UserStatus `json:"status"`
	OrganizationID int64      `json:"organization_id,omitempty"`

	jwt.RegisteredClaims
}

// RegisterRequest creates a volunteer or an organization account.
// Organization fields are required when Rol is Organizacion.
type RegisterRequest struct {
	Email     string   `json:"email" validate:"required,email" example:"ana@example.com"`
	Password  string   `json:"password" validate:"required,min=8" example:"securePassword123"`
	Nombre    string   `json:"nombre" validate:"required,min=2,max=100" example:"Ana"`
	Apellido  string   `json:"apellido" validate:"omitempty,max=100" example:"García"`
	Telefono  string   `json:"telefono,omitempty" validate:"omitempty,max=20"`
	Rol       UserRole `json:"rol" validate:"required,oneof=Voluntario Organizacion" example:"Voluntario"`
	Ubicacion string   `json:"ubicacion,omitempty" validate:"omitempty,max=200"`

	OrganizacionNombre      string `json:"organizacionNombre,omitempty" validate:"omitempty,min=2,max=150"`
	OrganizacionDescripcion string `json:"organizacionDescripcion,omitempty" validate:"omitempty,max=2000"`
	OrganizacionEmail       string `json:"organizacionEmail,omitempty" validate:"omitempty,email"`
	OrganizacionTelefono    string `json:"organizacionTelefono,omitempty" validate:"omitempty,max=20"`
	OrganizacionDireccion   string `json:"organizacionDireccion,omitempty" validate:"omitempty,max=300"`
	OrganizacionSitioWeb    string `json:"organizacionSitioWeb,omitempty" validate:"omitempty,url"`
}

// LoginRequest is the credential pair for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	AccessToken  string        `json:"accessToken"`
	TokenType    string        `json:"tokenType"`
	ExpiresIn    int64         `json:"expiresIn"`
	User         *UserDto      `json:"user"`
	Organization *Organization `json:"organization,omitempty"`
}
