package models

import "time"

// BadgeType distinguishes automatically earned badges from manual awards
type BadgeType string

const (
	BadgeTypeManual    BadgeType = "Manual"
	BadgeTypeAutomatic BadgeType = "Automatic"
)

// IsValid reports whether t is a known badge type
func (t BadgeType) IsValid() bool {
	return t == BadgeTypeManual || t == BadgeTypeAutomatic
}

// BadgeCategory groups badges in the catalog
type BadgeCategory string

const (
	BadgeCategoryParticipacion BadgeCategory = "Participacion"
	BadgeCategoryHoras         BadgeCategory = "Horas"
	BadgeCategoryAntiguedad    BadgeCategory = "Antiguedad"
	BadgeCategoryLiderazgo     BadgeCategory = "Liderazgo"
	BadgeCategoryEspecial      BadgeCategory = "Especial"
)

// IsValid reports whether c belongs to the closed category set
func (c BadgeCategory) IsValid() bool {
	switch c {
	case BadgeCategoryParticipacion, BadgeCategoryHoras, BadgeCategoryAntiguedad,
		BadgeCategoryLiderazgo, BadgeCategoryEspecial:
		return true
	}
	return false
}

// BadgeCriterion is the statistic an automatic badge is evaluated against
type BadgeCriterion string

const (
	CriterionActividadesCompletadas BadgeCriterion = "ActividadesCompletadas"
	CriterionHorasVoluntariado      BadgeCriterion = "HorasVoluntariado"
	CriterionAntiguedadDias         BadgeCriterion = "AntiguedadDias"
)

// IsValid reports whether c is a known criterion
func (c BadgeCriterion) IsValid() bool {
	switch c {
	case CriterionActividadesCompletadas, CriterionHorasVoluntariado, CriterionAntiguedadDias:
		return true
	}
	return false
}

// Badge is a catalog entry
type Badge struct {
	ID            int64          `json:"id" dynamodbav:"id"`
	Nombre        string         `json:"nombre" dynamodbav:"nombre"`
	Descripcion   string         `json:"descripcion" dynamodbav:"descripcion"`
	Icono         string         `json:"icono,omitempty" dynamodbav:"icono,omitempty"`
	Tipo          BadgeType      `json:"tipo" dynamodbav:"tipo"`
	Categoria     BadgeCategory  `json:"categoria" dynamodbav:"categoria"`
	Criterio      BadgeCriterion `json:"criterio,omitempty" dynamodbav:"criterio,omitempty"`
	Umbral        float64        `json:"umbral,omitempty" dynamodbav:"umbral,omitempty"`
	Activo        bool           `json:"activo" dynamodbav:"activo"`
	FechaCreacion time.Time      `json:"fechaCreacion" dynamodbav:"fechaCreacion"`
}

// VolunteerStats is the input to automatic badge evaluation
type VolunteerStats struct {
	ActividadesCompletadas int
	HorasVoluntariado      float64
	AntiguedadDias         int
}

// IsMetBy reports whether an automatic badge's threshold is reached
func (b *Badge) IsMetBy(stats VolunteerStats) bool {
	if b.Tipo != BadgeTypeAutomatic || !b.Activo {
		return false
	}
	switch b.Criterio {
	case CriterionActividadesCompletadas:
		return float64(stats.ActividadesCompletadas) >= b.Umbral
	case CriterionHorasVoluntariado:
		return stats.HorasVoluntariado >= b.Umbral
	case CriterionAntiguedadDias:
		return float64(stats.AntiguedadDias) >= b.Umbral
	}
	return false
}

// UsuarioBadge records that a user holds a badge. PK is "<userId>#<badgeId>".
type UsuarioBadge struct {
	PK             string    `json:"-" dynamodbav:"pk"`
	UsuarioID      int64     `json:"usuarioId" dynamodbav:"usuarioId"`
	BadgeID        int64     `json:"badgeId" dynamodbav:"badgeId"`
	Motivo         string    `json:"motivo,omitempty" dynamodbav:"motivo,omitempty"`
	OtorgadoPor    int64     `json:"otorgadoPor,omitempty" dynamodbav:"otorgadoPor,omitempty"`
	FechaObtencion time.Time `json:"fechaObtencion" dynamodbav:"fechaObtencion"`
}

// UsuarioBadgeDto joins the award with its catalog entry
type UsuarioBadgeDto struct {
	Badge          *Badge    `json:"badge"`
	Motivo         string    `json:"motivo,omitempty"`
	FechaObtencion time.Time `json:"fechaObtencion"`
}

// CreateBadgeRequest adds a badge to the catalog
type CreateBadgeRequest struct {
	Nombre      string         `json:"nombre" validate:"required,min=2,max=100"`
	Descripcion string         `json:"descripcion" validate:"required,max=500"`
	Icono       string         `json:"icono,omitempty" validate:"omitempty,max=300"`
	Tipo        BadgeType      `json:"tipo" validate:"required,oneof=Manual Automatic"`
	Categoria   BadgeCategory  `json:"categoria" validate:"required,oneof=Participacion Horas Antiguedad Liderazgo Especial"`
	Criterio    BadgeCriterion `json:"criterio,omitempty" validate:"omitempty,oneof=ActividadesCompletadas HorasVoluntariado AntiguedadDias"`
	Umbral      float64        `json:"umbral,omitempty" validate:"gte=0"`
}

// AwardBadgeRequest is the body of a manual award
type AwardBadgeRequest struct {
	UsuarioID int64  `json:"usuarioId" validate:"required,gt=0"`
	Motivo    string `json:"motivo,omitempty" validate:"omitempty,max=500"`
}

// DefaultBadges is the catalog seeded on first start
func DefaultBadges() []*Badge {
	return []*Badge{
		{Nombre: "Primer Voluntariado", Descripcion: "Completaste tu primera hora de voluntariado", Tipo: BadgeTypeAutomatic, Categoria: BadgeCategoryParticipacion, Criterio: CriterionHorasVoluntariado, Umbral: 1, Activo: true},
		{Nombre: "Voluntario Comprometido", Descripcion: "Completaste 5 actividades de voluntariado", Tipo: BadgeTypeAutomatic, Categoria: BadgeCategoryParticipacion, Criterio: CriterionActividadesCompletadas, Umbral: 5, Activo: true},
		{Nombre: "Cien Horas", Descripcion: "Acumulaste 100 horas de voluntariado", Tipo: BadgeTypeAutomatic, Categoria: BadgeCategoryHoras, Criterio: CriterionHorasVoluntariado, Umbral: 100, Activo: true},
		{Nombre: "Un Año de Servicio", Descripcion: "Llevas un año en la plataforma", Tipo: BadgeTypeAutomatic, Categoria: BadgeCategoryAntiguedad, Criterio: CriterionAntiguedadDias, Umbral: 365, Activo: true},
	}
}
