package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
	"voluntariado-backend/dal"
	"voluntariado-backend/models"
	"voluntariado-backend/utils/logger"
)

// MessageRepository implements MessageRepositoryInterface
type MessageRepository struct {
	base
}

func NewMessageRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *MessageRepository {
	return &MessageRepository{base{db: db, config: cfg, logger: log}}
}

// SendMessage stores the message and refreshes the conversation preview in one
// transaction. When two first messages race, the loser falls back to updating
// the conversation the winner created.
func (r *MessageRepository) SendMessage(ctx context.Context, msg *models.Message, conv *models.Conversation, newConversation bool) (*models.Message, error) {
	id, err := r.nextID(ctx, TableMessages)
	if err != nil {
		return nil, err
	}
	msg.ID = id
	msg.ConversacionID = conv.ID
	msgOp := dal.PutOp(r.table(TableMessages), msg, dal.Cond(dal.AttributeNotExists("id")))

	if newConversation {
		conv.UltimoMensaje = msg.Contenido
		conv.UltimoMensajeFecha = msg.FechaEnvio
		conv.NoLeido1 = conv.Participante1ID == msg.DestinatarioID
		conv.NoLeido2 = conv.Participante2ID == msg.DestinatarioID
		err = r.db.TransactWrite(ctx, []dal.TransactOp{
			dal.PutOp(r.table(TableConversations), conv, dal.Cond(dal.AttributeNotExists("id"))),
			msgOp,
		})
		if err == nil {
			r.logger.Infof("Conversation %s started", conv.ID)
			return msg, nil
		}
		if dal.FailedOperation(err) != 0 {
			r.logger.Errorf("Failed to start conversation %s: %v", conv.ID, err)
			return nil, err
		}
	}

	unread := "noLeido1"
	if conv.Participante2ID == msg.DestinatarioID {
		unread = "noLeido2"
	}
	preview := dal.Update{Set: map[string]interface{}{
		"ultimoMensaje":      msg.Contenido,
		"ultimoMensajeFecha": msg.FechaEnvio,
		unread:               true,
	}}
	err = r.db.TransactWrite(ctx, []dal.TransactOp{
		dal.UpdateOp(r.conversationKey(conv.ID), preview, dal.Cond(dal.AttributeExists("id"))),
		msgOp,
	})
	if err != nil {
		r.logger.Errorf("Failed to send message in conversation %s: %v", conv.ID, err)
		return nil, err
	}
	return msg, nil
}

func (r *MessageRepository) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	conv := &models.Conversation{}
	err := r.db.GetItem(ctx, r.conversationKey(id), conv)
	if errors.Is(err, dal.ErrItemNotFound) {
		return nil, fmt.Errorf("conversation %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// GetConversationsByUser merges both participant indexes, most recent activity first
func (r *MessageRepository) GetConversationsByUser(ctx context.Context, userID int64) ([]*models.Conversation, error) {
	var asFirst, asSecond []*models.Conversation
	table := r.table(TableConversations)
	if err := r.db.QueryByIndex(ctx, models.NumberIndex(table, "participante1Id-index", "participante1Id", userID), &asFirst); err != nil {
		return nil, err
	}
	if err := r.db.QueryByIndex(ctx, models.NumberIndex(table, "participante2Id-index", "participante2Id", userID), &asSecond); err != nil {
		return nil, err
	}

	convs := append(asFirst, asSecond...)
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UltimoMensajeFecha.After(convs[j].UltimoMensajeFecha)
	})
	return convs, nil
}

func (r *MessageRepository) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	msg := &models.Message{}
	if err := r.get(ctx, TableMessages, id, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// GetMessagesByConversation returns the thread oldest first
func (r *MessageRepository) GetMessagesByConversation(ctx context.Context, conversationID string) ([]*models.Message, error) {
	var msgs []*models.Message
	err := r.db.QueryByIndex(ctx, models.StringIndex(r.table(TableMessages), "conversacionId-index", "conversacionId", conversationID), &msgs)
	if err != nil {
		return nil, err
	}
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].FechaEnvio.Equal(msgs[j].FechaEnvio) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].FechaEnvio.Before(msgs[j].FechaEnvio)
	})
	return msgs, nil
}

func (r *MessageRepository) EditMessage(ctx context.Context, msg *models.Message, content string, at time.Time) (*models.Message, error) {
	updated := &models.Message{}
	err := r.db.UpdateItem(ctx, r.key(TableMessages, msg.ID), dal.Update{Set: map[string]interface{}{
		"contenido":    content,
		"fechaEdicion": at,
	}}, dal.Cond(dal.Equal("eliminado", false)), updated)
	if errors.Is(err, dal.ErrConditionFailed) {
		return nil, fmt.Errorf("message %d: %w", msg.ID, models.ErrMessageDeleted)
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SoftDeleteMessage replaces the content with the deletion placeholder and keeps the row
func (r *MessageRepository) SoftDeleteMessage(ctx context.Context, msg *models.Message, at time.Time) (*models.Message, error) {
	updated := &models.Message{}
	err := r.db.UpdateItem(ctx, r.key(TableMessages, msg.ID), dal.Update{Set: map[string]interface{}{
		"contenido":      models.DeletedMessagePlaceholder,
		"eliminado":      true,
		"fechaEliminado": at,
	}}, dal.Cond(dal.Equal("eliminado", false)), updated)
	if errors.Is(err, dal.ErrConditionFailed) {
		return nil, fmt.Errorf("message %d: %w", msg.ID, models.ErrMessageDeleted)
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkConversationRead clears the user's unread flag and marks the given messages read
func (r *MessageRepository) MarkConversationRead(ctx context.Context, conv *models.Conversation, userID int64, messageIDs []int64, at time.Time) error {
	flag := "noLeido1"
	if conv.Participante2ID == userID {
		flag = "noLeido2"
	}
	ops := []dal.TransactOp{dal.UpdateOp(r.conversationKey(conv.ID),
		dal.Update{Set: map[string]interface{}{flag: false}}, dal.Cond(dal.AttributeExists("id")))}
	for _, id := range messageIDs {
		ops = append(ops, dal.UpdateOp(r.key(TableMessages, id), dal.Update{Set: map[string]interface{}{
			"leido":        true,
			"fechaLectura": at,
		}}, dal.Cond(dal.Equal("destinatarioId", userID))))
	}

	for start := 0; start < len(ops); start += dal.MaxTransactItems {
		end := start + dal.MaxTransactItems
		if end > len(ops) {
			end = len(ops)
		}
		if err := r.db.TransactWrite(ctx, ops[start:end]); err != nil {
			r.logger.Errorf("Failed to mark conversation %s read: %v", conv.ID, err)
			return err
		}
	}
	return nil
}

func (r *MessageRepository) conversationKey(id string) models.QueryConfig {
	return models.StringKey(r.table(TableConversations), "id", id)
}
