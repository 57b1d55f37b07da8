package models

import "time"

// ActivityStatus is the state of a volunteer activity
type ActivityStatus string

const (
	ActivityStatusScheduled    ActivityStatus = "Scheduled"
	ActivityStatusInProgress   ActivityStatus = "InProgress"
	ActivityStatusCompleted    ActivityStatus = "Completed"
	ActivityStatusCancelled    ActivityStatus = "Cancelled"
	ActivityStatusNotCompleted ActivityStatus = "NotCompleted"
)

// IsValid reports whether s belongs to the closed status set
func (s ActivityStatus) IsValid() bool {
	switch s {
	case ActivityStatusScheduled, ActivityStatusInProgress, ActivityStatusCompleted,
		ActivityStatusCancelled, ActivityStatusNotCompleted:
		return true
	}
	return false
}

// VolunteerActivity records the work done for one accepted application
type VolunteerActivity struct {
	ID               int64          `json:"id" dynamodbav:"id"`
	AplicacionID     int64          `json:"aplicacionId" dynamodbav:"aplicacionId"`
	UsuarioID        int64          `json:"usuarioId" dynamodbav:"usuarioId"`
	OportunidadID    int64          `json:"oportunidadId" dynamodbav:"oportunidadId"`
	OrganizacionID   int64          `json:"organizacionId" dynamodbav:"organizacionId"`
	Estado           ActivityStatus `json:"estado" dynamodbav:"estado"`
	FechaInicio      time.Time      `json:"fechaInicio" dynamodbav:"fechaInicio"`
	FechaFin         *time.Time     `json:"fechaFin,omitempty" dynamodbav:"fechaFin,omitempty"`
	HorasCompletadas float64        `json:"horasCompletadas" dynamodbav:"horasCompletadas"`
	Calificacion     int            `json:"calificacion,omitempty" dynamodbav:"calificacion,omitempty"`
	Comentario       string         `json:"comentario,omitempty" dynamodbav:"comentario,omitempty"`
	FechaCreacion    time.Time      `json:"fechaCreacion" dynamodbav:"fechaCreacion"`
}

// ActivityDto adds the opportunity title for profile pages
type ActivityDto struct {
	*VolunteerActivity
	OportunidadTitulo string `json:"oportunidadTitulo"`
}
