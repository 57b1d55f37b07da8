package models

import "time"

// ApplicationStatus is the review state of an application
type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "Pending"
	ApplicationStatusAccepted  ApplicationStatus = "Accepted"
	ApplicationStatusRejected  ApplicationStatus = "Rejected"
	ApplicationStatusWithdrawn ApplicationStatus = "Withdrawn"
	ApplicationStatusCompleted ApplicationStatus = "Completed"
)

// IsValid reports whether s belongs to the closed status set
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusAccepted, ApplicationStatusRejected,
		ApplicationStatusWithdrawn, ApplicationStatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusRejected || s == ApplicationStatusWithdrawn || s == ApplicationStatusCompleted
}

// HoldsSlot reports whether an application in this status occupies an enrollment slot
func (s ApplicationStatus) HoldsSlot() bool {
	return s == ApplicationStatusPending || s == ApplicationStatusAccepted || s == ApplicationStatusCompleted
}

var organizationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusPending:  {ApplicationStatusAccepted, ApplicationStatusRejected},
	ApplicationStatusAccepted: {ApplicationStatusCompleted},
}

// CanOrganizationTransition reports whether an organization may move an
// application from one status to another
func CanOrganizationTransition(from, to ApplicationStatus) bool {
	for _, allowed := range organizationTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Application links a volunteer to an opportunity
type Application struct {
	ID              int64             `json:"id" dynamodbav:"id"`
	UsuarioID       int64             `json:"usuarioId" dynamodbav:"usuarioId"`
	OportunidadID   int64             `json:"oportunidadId" dynamodbav:"oportunidadId"`
	OrganizacionID  int64             `json:"organizacionId" dynamodbav:"organizacionId"`
	Mensaje         string            `json:"mensaje,omitempty" dynamodbav:"mensaje,omitempty"`
	Estado          ApplicationStatus `json:"estado" dynamodbav:"estado"`
	Notas           string            `json:"notas,omitempty" dynamodbav:"notas,omitempty"`
	FechaAplicacion time.Time         `json:"fechaAplicacion" dynamodbav:"fechaAplicacion"`
	FechaRespuesta  *time.Time        `json:"fechaRespuesta,omitempty" dynamodbav:"fechaRespuesta,omitempty"`
}

// ApplicationDto enriches an application with display names
type ApplicationDto struct {
	*Application
	OportunidadTitulo  string `json:"oportunidadTitulo"`
	VoluntarioNombre   string `json:"voluntarioNombre"`
	VoluntarioEmail    string `json:"voluntarioEmail,omitempty"`
	OrganizacionNombre string `json:"organizacionNombre,omitempty"`
}

// ApplyRequest is the optional body of POST /apply/{opportunityId}
type ApplyRequest struct {
	Mensaje string `json:"mensaje,omitempty" validate:"omitempty,max=2000"`
}

// UpdateApplicationStatusRequest is sent by organizations
type UpdateApplicationStatusRequest struct {
	Estado           ApplicationStatus `json:"estado" validate:"required,oneof=Pending Accepted Rejected Withdrawn Completed"`
	Notas            string            `json:"notas,omitempty" validate:"omitempty,max=2000"`
	HorasCompletadas *float64          `json:"horasCompletadas,omitempty" validate:"omitempty,gte=0,lte=10000"`
	Calificacion     *int              `json:"calificacion,omitempty" validate:"omitempty,min=1,max=5"`
	Comentario       string            `json:"comentario,omitempty" validate:"omitempty,max=2000"`
}

// ApplicationFilter narrows application listings
type ApplicationFilter struct {
	OportunidadID int64             `form:"opportunityId"`
	Estado        ApplicationStatus `form:"status"`
	Pagination
}
