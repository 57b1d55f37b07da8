package models

import "time"

// Organization is the one-to-one profile of an Organizacion account
type Organization struct {
	ID          int64  `json:"id" dynamodbav:"id"`
	UsuarioID   int64  `json:"usuarioId" dynamodbav:"usuarioId"`
	Nombre      string `json:"nombre" dynamodbav:"nombre"`
	Descripcion string `json:"descripcion,omitempty" dynamodbav:"descripcion,omitempty"`
	Email       string `json:"email" dynamodbav:"email"`
	Telefono    string `json:"telefono,omitempty" dynamodbav:"telefono,omitempty"`
	Direccion   string `json:"direccion,omitempty" dynamodbav:"direccion,omitempty"`
	SitioWeb    string `json:"sitioWeb,omitempty" dynamodbav:"sitioWeb,omitempty"`
	Logo        string `json:"logo,omitempty" dynamodbav:"logo,omitempty"`
	Verificada  bool   `json:"verificada" dynamodbav:"verificada"`
	SaldoActual Money  `json:"saldoActual" dynamodbav:"saldoActual"`

	FechaCreacion      time.Time `json:"fechaCreacion" dynamodbav:"fechaCreacion"`
	FechaActualizacion time.Time `json:"fechaActualizacion" dynamodbav:"fechaActualizacion"`
}

// UpdateOrganizationRequest updates the caller's organization profile
type UpdateOrganizationRequest struct {
	Nombre      *string `json:"nombre,omitempty" validate:"omitempty,min=2,max=150"`
	Descripcion *string `json:"descripcion,omitempty" validate:"omitempty,max=2000"`
	Telefono    *string `json:"telefono,omitempty" validate:"omitempty,max=20"`
	Direccion   *string `json:"direccion,omitempty" validate:"omitempty,max=300"`
	SitioWeb    *string `json:"sitioWeb,omitempty" validate:"omitempty,url"`
}

// VerifyOrganizationRequest toggles the transparency gate
type VerifyOrganizationRequest struct {
	Verificada bool `json:"verificada"`
}
