package models

import "time"

// NotificationType is the closed set of notification kinds
type NotificationType string

const (
	NotificationNuevaAplicacion        NotificationType = "NuevaAplicacion"
	NotificationAplicacionAceptada     NotificationType = "AplicacionAceptada"
	NotificationAplicacionRechazada    NotificationType = "AplicacionRechazada"
	NotificationAplicacionRetirada     NotificationType = "AplicacionRetirada"
	NotificationActividadCompletada    NotificationType = "ActividadCompletada"
	NotificationBadgeObtenido          NotificationType = "BadgeObtenido"
	NotificationNuevoMensaje           NotificationType = "NuevoMensaje"
	NotificationDonacionRecibida       NotificationType = "DonacionRecibida"
	NotificationOrganizacionVerificada NotificationType = "OrganizacionVerificada"
	NotificationSistema                NotificationType = "Sistema"
)

// IsValid reports whether t belongs to the closed set
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationNuevaAplicacion, NotificationAplicacionAceptada, NotificationAplicacionRechazada,
		NotificationAplicacionRetirada, NotificationActividadCompletada, NotificationBadgeObtenido,
		NotificationNuevoMensaje, NotificationDonacionRecibida, NotificationOrganizacionVerificada,
		NotificationSistema:
		return true
	}
	return false
}

// Notification is an in-app message addressed to one user
type Notification struct {
	ID            int64            `json:"id" dynamodbav:"id"`
	UsuarioID     int64            `json:"usuarioId" dynamodbav:"usuarioId"`
	RemitenteID   *int64           `json:"remitenteId,omitempty" dynamodbav:"remitenteId,omitempty"`
	Tipo          NotificationType `json:"tipo" dynamodbav:"tipo"`
	Titulo        string           `json:"titulo" dynamodbav:"titulo"`
	Mensaje       string           `json:"mensaje" dynamodbav:"mensaje"`
	Enlace        string           `json:"enlace,omitempty" dynamodbav:"enlace,omitempty"`
	Leida         bool             `json:"leida" dynamodbav:"leida"`
	FechaCreacion time.Time        `json:"fechaCreacion" dynamodbav:"fechaCreacion"`
	FechaLectura  *time.Time       `json:"fechaLectura,omitempty" dynamodbav:"fechaLectura,omitempty"`
}

// CreateNotificationRequest is the input of CreateNotification
type CreateNotificationRequest struct {
	UsuarioID   int64            `json:"usuarioId" validate:"required,gt=0"`
	RemitenteID *int64           `json:"remitenteId,omitempty"`
	Tipo        NotificationType `json:"tipo" validate:"required"`
	Titulo      string           `json:"titulo" validate:"required,max=200"`
	Mensaje     string           `json:"mensaje" validate:"required,max=2000"`
	Enlace      string           `json:"enlace,omitempty" validate:"omitempty,max=500"`
}

// NotificationFilter narrows the notification listing
type NotificationFilter struct {
	UnreadOnly bool `form:"unreadOnly"`
	Pagination
}

// UnreadCount is the body of GET /notifications/unread-count
type UnreadCount struct {
	Count int `json:"count"`
}
