package models

import "time"

// DeletedMessagePlaceholder replaces the content of soft-deleted messages
const DeletedMessagePlaceholder = "Este mensaje fue eliminado"

// DefaultMessageEditWindow is how long a sender may edit a message
const DefaultMessageEditWindow = 15 * time.Minute

// Conversation is keyed by the canonical pair key of its two participants
type Conversation struct {
	ID                 string    `json:"id" dynamodbav:"id"`
	Participante1ID    int64     `json:"participante1Id" dynamodbav:"participante1Id"`
	Participante2ID    int64     `json:"participante2Id" dynamodbav:"participante2Id"`
	UltimoMensaje      string    `json:"ultimoMensaje" dynamodbav:"ultimoMensaje"`
	UltimoMensajeFecha time.Time `json:"ultimoMensajeFecha" dynamodbav:"ultimoMensajeFecha"`
	NoLeido1           bool      `json:"-" dynamodbav:"noLeido1"`
	NoLeido2           bool      `json:"-" dynamodbav:"noLeido2"`
	FechaCreacion      time.Time `json:"fechaCreacion" dynamodbav:"fechaCreacion"`
}

// HasParticipant reports whether userID belongs to the conversation
func (c *Conversation) HasParticipant(userID int64) bool {
	return c.Participante1ID == userID || c.Participante2ID == userID
}

// OtherParticipant returns the id of the participant that is not userID
func (c *Conversation) OtherParticipant(userID int64) int64 {
	if c.Participante1ID == userID {
		return c.Participante2ID
	}
	return c.Participante1ID
}

// UnreadFor returns the unread flag of the given participant
func (c *Conversation) UnreadFor(userID int64) bool {
	if c.Participante1ID == userID {
		return c.NoLeido1
	}
	return c.NoLeido2
}

// ConversationDto is a conversation as seen by one participant
type ConversationDto struct {
	ID                 string    `json:"id"`
	OtroUsuarioID      int64     `json:"otroUsuarioId"`
	OtroUsuarioNombre  string    `json:"otroUsuarioNombre"`
	OtroUsuarioFoto    string    `json:"otroUsuarioFoto,omitempty"`
	EnLinea            bool      `json:"enLinea"`
	UltimoMensaje      string    `json:"ultimoMensaje"`
	UltimoMensajeFecha time.Time `json:"ultimoMensajeFecha"`
	NoLeido            bool      `json:"noLeido"`
}

// Message is one entry of a conversation
type Message struct {
	ID             int64      `json:"id" dynamodbav:"id"`
	ConversacionID string     `json:"conversacionId" dynamodbav:"conversacionId"`
	RemitenteID    int64      `json:"remitenteId" dynamodbav:"remitenteId"`
	DestinatarioID int64      `json:"destinatarioId" dynamodbav:"destinatarioId"`
	Contenido      string     `json:"contenido" dynamodbav:"contenido"`
	FechaEnvio     time.Time  `json:"fechaEnvio" dynamodbav:"fechaEnvio"`
	Leido          bool       `json:"leido" dynamodbav:"leido"`
	FechaLectura   *time.Time `json:"fechaLectura,omitempty" dynamodbav:"fechaLectura,omitempty"`
	FechaEdicion   *time.Time `json:"fechaEdicion,omitempty" dynamodbav:"fechaEdicion,omitempty"`
	Eliminado      bool       `json:"eliminado" dynamodbav:"eliminado"`
	FechaEliminado *time.Time `json:"fechaEliminado,omitempty" dynamodbav:"fechaEliminado,omitempty"`
}

// SendMessageRequest is the body of POST /messages
type SendMessageRequest struct {
	DestinatarioID int64  `json:"destinatarioId" validate:"required,gt=0"`
	Contenido      string `json:"contenido" validate:"required,min=1,max=4000"`
}

// EditMessageRequest is the body of PUT /messages/{id}
type EditMessageRequest struct {
	Contenido string `json:"contenido" validate:"required,min=1,max=4000"`
}
