package models

import "time"

// UserRole represents the role of a user. It is fixed at creation.
type UserRole string

const (
	UserRoleVoluntario   UserRole = "Voluntario"
	UserRoleOrganizacion UserRole = "Organizacion"
	UserRoleAdmin        UserRole = "Admin"
)

// IsValid reports whether r is a known role
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleVoluntario, UserRoleOrganizacion, UserRoleAdmin:
		return true
	}
	return false
}

// UserStatus represents the status of a user account
type UserStatus string

const (
	UserStatusActive              UserStatus = "Active"
	UserStatusInactive            UserStatus = "Inactive"
	UserStatusSuspended           UserStatus = "Suspended"
	UserStatusPendingVerification UserStatus = "PendingVerification"
)

// IsValid reports whether s is a known account status
func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusSuspended, UserStatusPendingVerification:
		return true
	}
	return false
}

// CanLogin reports whether an account in this status may authenticate
func (s UserStatus) CanLogin() bool {
	return s == UserStatusActive || s == UserStatusPendingVerification
}

// User represents a platform account
type User struct {
	ID           int64      `json:"id" dynamodbav:"id"`
	Email        string     `json:"email" dynamodbav:"email"`
	PasswordHash string     `json:"-" dynamodbav:"passwordHash"`
	Nombre       string     `json:"nombre" dynamodbav:"nombre"`
	Apellido     string     `json:"apellido" dynamodbav:"apellido"`
	Telefono     string     `json:"telefono,omitempty" dynamodbav:"telefono,omitempty"`
	Ubicacion    string     `json:"ubicacion,omitempty" dynamodbav:"ubicacion,omitempty"`
	Biografia    string     `json:"biografia,omitempty" dynamodbav:"biografia,omitempty"`
	Intereses    []string   `json:"intereses,omitempty" dynamodbav:"intereses,omitempty"`
	FotoPerfil   string     `json:"fotoPerfil,omitempty" dynamodbav:"fotoPerfil,omitempty"`
	Rol          UserRole   `json:"rol" dynamodbav:"rol"`
	Estado       UserStatus `json:"estado" dynamodbav:"estado"`

	// Aggregates, only mutated with atomic ADD
	HorasVoluntariado      float64 `json:"horasVoluntariado" dynamodbav:"horasVoluntariado"`
	ActividadesCompletadas int     `json:"actividadesCompletadas" dynamodbav:"actividadesCompletadas"`
	SumaCalificaciones     float64 `json:"-" dynamodbav:"sumaCalificaciones"`
	TotalResenas           int     `json:"totalResenas" dynamodbav:"totalResenas"`

	FechaCreacion   time.Time  `json:"fechaCreacion" dynamodbav:"fechaCreacion"`
	FechaActualizar time.Time  `json:"fechaActualizacion" dynamodbav:"fechaActualizacion"`
	UltimoAcceso    *time.Time `json:"ultimoAcceso,omitempty" dynamodbav:"ultimoAcceso,omitempty"`
}

// CalificacionPromedio derives the average rating from the stored aggregates
func (u *User) CalificacionPromedio() float64 {
	if u.TotalResenas == 0 {
		return 0
	}
	return u.SumaCalificaciones / float64(u.TotalResenas)
}

// AntiguedadDias returns whole days since the account was created
func (u *User) AntiguedadDias(now time.Time) int {
	if now.Before(u.FechaCreacion) {
		return 0
	}
	return int(now.Sub(u.FechaCreacion).Hours() / 24)
}

// ToDto converts the persisted user into its API representation
func (u *User) ToDto() *UserDto {
	return &UserDto{
		ID:                     u.ID,
		Email:                  u.Email,
		Nombre:                 u.Nombre,
		Apellido:               u.Apellido,
		Telefono:               u.Telefono,
		Ubicacion:              u.Ubicacion,
		Biografia:              u.Biografia,
		Intereses:              u.Intereses,
		FotoPerfil:             u.FotoPerfil,
		Rol:                    u.Rol,
		Estado:                 u.Estado,
		HorasVoluntariado:      u.HorasVoluntariado,
		ActividadesCompletadas: u.ActividadesCompletadas,
		CalificacionPromedio:   u.CalificacionPromedio(),
		TotalResenas:           u.TotalResenas,
		FechaCreacion:          u.FechaCreacion,
	}
}

// UserDto is the public shape of a user
type UserDto struct {
	ID                     int64      `json:"id"`
	Email                  string     `json:"email"`
	Nombre                 string     `json:"nombre"`
	Apellido               string     `json:"apellido"`
	Telefono               string     `json:"telefono,omitempty"`
	Ubicacion              string     `json:"ubicacion,omitempty"`
	Biografia              string     `json:"biografia,omitempty"`
	Intereses              []string   `json:"intereses,omitempty"`
	FotoPerfil             string     `json:"fotoPerfil,omitempty"`
	Rol                    UserRole   `json:"rol"`
	Estado                 UserStatus `json:"estado"`
	HorasVoluntariado      float64    `json:"horasVoluntariado"`
	ActividadesCompletadas int        `json:"actividadesCompletadas"`
	CalificacionPromedio   float64    `json:"calificacionPromedio"`
	TotalResenas           int        `json:"totalResenas"`
	FechaCreacion          time.Time  `json:"fechaCreacion"`
}

// PublicProfile is returned by GET /users/{id}
type PublicProfile struct {
	*UserDto
	Badges []*UsuarioBadgeDto `json:"badges"`
	Skills []*UsuarioSkillDto `json:"skills"`
}

// UpdateProfileRequest updates mutable profile fields
type UpdateProfileRequest struct {
	Nombre    *string  `json:"nombre,omitempty" validate:"omitempty,min=2,max=100"`
	Apellido  *string  `json:"apellido,omitempty" validate:"omitempty,max=100"`
	Telefono  *string  `json:"telefono,omitempty" validate:"omitempty,max=20"`
	Ubicacion *string  `json:"ubicacion,omitempty" validate:"omitempty,max=200"`
	Biografia *string  `json:"biografia,omitempty" validate:"omitempty,max=2000"`
	Intereses []string `json:"intereses,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
}

// UpdateUserStatusRequest is used by admins to change account status
type UpdateUserStatusRequest struct {
	Estado UserStatus `json:"estado" validate:"required,oneof=Active Inactive Suspended PendingVerification"`
}

// UserFilter narrows the admin user listing
type UserFilter struct {
	Rol        UserRole   `form:"rol"`
	Estado     UserStatus `form:"estado"`
	SearchTerm string     `form:"searchTerm"`
	Pagination
}
