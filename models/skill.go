package models

import "time"

// SkillCategory groups skills in the catalog
type SkillCategory string

const (
	SkillCategoryTecnica       SkillCategory = "Tecnica"
	SkillCategoryComunicacion  SkillCategory = "Comunicacion"
	SkillCategoryLiderazgo     SkillCategory = "Liderazgo"
	SkillCategoryEducacion     SkillCategory = "Educacion"
	SkillCategorySalud         SkillCategory = "Salud"
	SkillCategoryMedioAmbiente SkillCategory = "MedioAmbiente"
	SkillCategoryOtra          SkillCategory = "Otra"
)

// IsValid reports whether c belongs to the closed category set
func (c SkillCategory) IsValid() bool {
	switch c {
	case SkillCategoryTecnica, SkillCategoryComunicacion, SkillCategoryLiderazgo,
		SkillCategoryEducacion, SkillCategorySalud, SkillCategoryMedioAmbiente, SkillCategoryOtra:
		return true
	}
	return false
}

// Skill is a catalog entry
type Skill struct {
	ID            int64         `json:"id" dynamodbav:"id"`
	Nombre        string        `json:"nombre" dynamodbav:"nombre"`
	Descripcion   string        `json:"descripcion,omitempty" dynamodbav:"descripcion,omitempty"`
	Categoria     SkillCategory `json:"categoria" dynamodbav:"categoria"`
	FechaCreacion time.Time     `json:"fechaCreacion" dynamodbav:"fechaCreacion"`
}

// UsuarioSkill records a user's level in a skill. PK is "<userId>#<skillId>".
type UsuarioSkill struct {
	PK            string    `json:"-" dynamodbav:"pk"`
	UsuarioID     int64     `json:"usuarioId" dynamodbav:"usuarioId"`
	SkillID       int64     `json:"skillId" dynamodbav:"skillId"`
	Nivel         int       `json:"nivel" dynamodbav:"nivel"`
	FechaRegistro time.Time `json:"fechaRegistro" dynamodbav:"fechaRegistro"`
}

// UsuarioSkillDto joins the user skill with its catalog entry
type UsuarioSkillDto struct {
	Skill *Skill `json:"skill"`
	Nivel int    `json:"nivel"`
}

// CreateSkillRequest adds a skill to the catalog
type CreateSkillRequest struct {
	Nombre      string        `json:"nombre" validate:"required,min=2,max=100"`
	Descripcion string        `json:"descripcion,omitempty" validate:"omitempty,max=500"`
	Categoria   SkillCategory `json:"categoria" validate:"required,oneof=Tecnica Comunicacion Liderazgo Educacion Salud MedioAmbiente Otra"`
}

// AddUserSkillRequest adds or updates a skill on the caller's profile
type AddUserSkillRequest struct {
	SkillID int64 `json:"skillId" validate:"required,gt=0"`
	Nivel   int   `json:"nivel" validate:"required,min=1,max=5"`
}
