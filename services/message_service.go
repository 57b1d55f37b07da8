package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"voluntariado-backend/models"
	"voluntariado-backend/repository"
	"voluntariado-backend/utils"
	"voluntariado-backend/utils/logger"
)

const previewLength = 100

type MessageService struct {
	messageRepo   repository.MessageRepositoryInterface
	userRepo      repository.UserRepositoryInterface
	notifications *NotificationService
	realtime      RealtimePublisher
	config        *models.Config
	logger        logger.Logger
	now           func() time.Time
}

func NewMessageService(
	messageRepo repository.MessageRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	notifications *NotificationService,
	realtime RealtimePublisher,
	config *models.Config,
	logger logger.Logger,
	now func() time.Time,
) *MessageService {
	return &MessageService{
		messageRepo:   messageRepo,
		userRepo:      userRepo,
		notifications: notifications,
		realtime:      realtime,
		config:        config,
		logger:        logger,
		now:           now,
	}
}

// SendMessage delivers a direct message, creating the conversation on first contact
func (s *MessageService) SendMessage(ctx context.Context, senderID int64, req *models.SendMessageRequest) (*models.Message, error) {
	if req.DestinatarioID == senderID {
		return nil, models.NewValidationError("cannot message yourself",
			models.FieldError{Field: "destinatarioId", Error: "must be another user"})
	}
	content := strings.TrimSpace(req.Contenido)
	if content == "" {
		return nil, models.NewValidationError("empty message", models.FieldError{Field: "contenido", Error: "required"})
	}
	sender, err := s.userRepo.GetUserByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetUserByID(ctx, req.DestinatarioID); err != nil {
		return nil, fmt.Errorf("recipient %d: %w", req.DestinatarioID, err)
	}

	now := s.now()
	convID := utils.CanonicalPairKey(senderID, req.DestinatarioID)
	conv, err := s.messageRepo.GetConversation(ctx, convID)
	newConversation := errors.Is(err, models.ErrNotFound)
	if err != nil && !newConversation {
		return nil, err
	}
	if newConversation {
		low, high := senderID, req.DestinatarioID
		if high < low {
			low, high = high, low
		}
		conv = &models.Conversation{ID: convID, Participante1ID: low, Participante2ID: high, FechaCreacion: now}
	}

	msg, err := s.messageRepo.SendMessage(ctx, &models.Message{
		RemitenteID:    senderID,
		DestinatarioID: req.DestinatarioID,
		Contenido:      content,
		FechaEnvio:     now,
	}, conv, newConversation)
	if err != nil {
		return nil, err
	}

	s.publish(msg.DestinatarioID, EventMessage, msg)
	s.notifications.notify(ctx, msg.DestinatarioID, models.NotificationNuevoMensaje,
		"Nuevo mensaje", fmt.Sprintf("%s: %s", fullName(sender), preview(content)),
		fmt.Sprintf("/messages/%s", convID), &senderID)
	return msg, nil
}

// GetConversations lists the user's conversations with the other participant's presence
func (s *MessageService) GetConversations(ctx context.Context, userID int64) ([]*models.ConversationDto, error) {
	convs, err := s.messageRepo.GetConversationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	dtos := make([]*models.ConversationDto, 0, len(convs))
	for _, c := range convs {
		otherID := c.OtherParticipant(userID)
		dto := &models.ConversationDto{
			ID:                 c.ID,
			OtroUsuarioID:      otherID,
			UltimoMensaje:      c.UltimoMensaje,
			UltimoMensajeFecha: c.UltimoMensajeFecha,
			NoLeido:            c.UnreadFor(userID),
		}
		if other, err := s.userRepo.GetUserByID(ctx, otherID); err == nil {
			dto.OtroUsuarioNombre = fullName(other)
			dto.OtroUsuarioFoto = other.FotoPerfil
		}
		if s.realtime != nil {
			dto.EnLinea = s.realtime.IsOnline(otherID)
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

// GetMessages returns one page of the thread, oldest first. Deleted messages keep their slot.
func (s *MessageService) GetMessages(ctx context.Context, userID int64, conversationID string, page models.Pagination) (models.PagedResult[*models.Message], error) {
	if _, err := s.participantConversation(ctx, userID, conversationID); err != nil {
		return models.PagedResult[*models.Message]{}, err
	}
	msgs, err := s.messageRepo.GetMessagesByConversation(ctx, conversationID)
	if err != nil {
		return models.PagedResult[*models.Message]{}, err
	}
	return models.Paginate(msgs, page), nil
}

// MarkMessagesAsRead marks the unread messages addressed to userID and returns how many changed
func (s *MessageService) MarkMessagesAsRead(ctx context.Context, userID int64, conversationID string) (int, error) {
	conv, err := s.participantConversation(ctx, userID, conversationID)
	if err != nil {
		return 0, err
	}
	msgs, err := s.messageRepo.GetMessagesByConversation(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	var ids []int64
	for _, m := range msgs {
		if m.DestinatarioID == userID && !m.Leido {
			ids = append(ids, m.ID)
		}
	}
	if len(ids) == 0 && !conv.UnreadFor(userID) {
		return 0, nil
	}
	if err := s.messageRepo.MarkConversationRead(ctx, conv, userID, ids, s.now()); err != nil {
		return 0, err
	}
	if len(ids) > 0 {
		s.publish(conv.OtherParticipant(userID), EventMessageRead, map[string]interface{}{
			"conversacionId": conv.ID,
			"lectorId":       userID,
			"mensajes":       ids,
		})
	}
	return len(ids), nil
}

// EditMessage replaces the content of the sender's own message inside the edit window
func (s *MessageService) EditMessage(ctx context.Context, userID, messageID int64, req *models.EditMessageRequest) (*models.Message, error) {
	msg, err := s.messageRepo.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.RemitenteID != userID {
		return nil, fmt.Errorf("message %d: %w", msg.ID, models.ErrNotAuthorized)
	}
	if msg.Eliminado {
		return nil, fmt.Errorf("message %d: %w", msg.ID, models.ErrMessageDeleted)
	}
	now := s.now()
	if now.Sub(msg.FechaEnvio) > s.editWindow() {
		return nil, fmt.Errorf("message %d sent at %s: %w", msg.ID, msg.FechaEnvio.Format(time.RFC3339), models.ErrEditWindowExpired)
	}
	content := strings.TrimSpace(req.Contenido)
	if content == "" {
		return nil, models.NewValidationError("empty message", models.FieldError{Field: "contenido", Error: "required"})
	}

	updated, err := s.messageRepo.EditMessage(ctx, msg, content, now)
	if err != nil {
		return nil, err
	}
	s.publish(updated.DestinatarioID, EventMessageEdited, updated)
	return updated, nil
}

// DeleteMessage soft-deletes the sender's own message. Deleting twice returns the deleted message.
func (s *MessageService) DeleteMessage(ctx context.Context, userID, messageID int64) (*models.Message, error) {
	msg, err := s.messageRepo.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.RemitenteID != userID {
		return nil, fmt.Errorf("message %d: %w", msg.ID, models.ErrNotAuthorized)
	}
	if msg.Eliminado {
		return msg, nil
	}

	deleted, err := s.messageRepo.SoftDeleteMessage(ctx, msg, s.now())
	if errors.Is(err, models.ErrMessageDeleted) {
		return s.messageRepo.GetMessageByID(ctx, messageID)
	}
	if err != nil {
		return nil, err
	}
	s.publish(deleted.DestinatarioID, EventMessageDeleted, deleted)
	return deleted, nil
}

// SearchMessages finds non-deleted messages containing term across the user's conversations
func (s *MessageService) SearchMessages(ctx context.Context, userID int64, term string) ([]*models.Message, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []*models.Message{}, nil
	}
	convs, err := s.messageRepo.GetConversationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := []*models.Message{}
	for _, c := range convs {
		msgs, err := s.messageRepo.GetMessagesByConversation(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		for _, m := range msgs {
			if !m.Eliminado && strings.Contains(strings.ToLower(m.Contenido), term) {
				found = append(found, m)
			}
		}
	}
	return found, nil
}

func (s *MessageService) participantConversation(ctx context.Context, userID int64, conversationID string) (*models.Conversation, error) {
	conv, err := s.messageRepo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, models.ErrNotAuthorized)
	}
	return conv, nil
}

func (s *MessageService) editWindow() time.Duration {
	if s.config == nil || s.config.MessageEditWindow <= 0 {
		return models.DefaultMessageEditWindow
	}
	return s.config.MessageEditWindow
}

func (s *MessageService) publish(userID int64, event string, payload interface{}) {
	if s.realtime == nil {
		return
	}
	if !s.realtime.Publish(userID, event, payload) {
		s.logger.Debugf("User %d offline, %s event not pushed", userID, event)
	}
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "..."
}
