package repository

import (
	"time"
	"voluntariado-backend/models"
	"voluntariado-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *RepositoryTestSuite) send(conv *models.Conversation, from, to int64, content string, isNew bool) *models.Message {
	msg, err := suite.container.GetMessageRepository().SendMessage(suite.ctx, &models.Message{
		RemitenteID:    from,
		DestinatarioID: to,
		Contenido:      content,
		FechaEnvio:     suite.now,
	}, conv, isNew)
	require.NoError(suite.T(), err)
	suite.now = suite.now.Add(time.Minute)
	return msg
}

func (suite *RepositoryTestSuite) TestConversationLifecycle() {
	messages := suite.container.GetMessageRepository()
	conv := &models.Conversation{ID: utils.CanonicalPairKey(2, 1), Participante1ID: 1, Participante2ID: 2, FechaCreacion: suite.now}

	first := suite.send(conv, 1, 2, "Hola", true)
	// a second "first message" finds the conversation already created
	suite.send(&models.Conversation{ID: conv.ID, Participante1ID: 1, Participante2ID: 2}, 2, 1, "Hola, ¿cómo estás?", true)

	stored, err := messages.GetConversation(suite.ctx, conv.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Hola, ¿cómo estás?", stored.UltimoMensaje)
	assert.True(suite.T(), stored.NoLeido1)
	assert.True(suite.T(), stored.NoLeido2)

	thread, err := messages.GetMessagesByConversation(suite.ctx, conv.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), thread, 2)
	assert.Equal(suite.T(), first.ID, thread[0].ID)

	require.NoError(suite.T(), messages.MarkConversationRead(suite.ctx, stored, 2, []int64{first.ID}, suite.now))
	stored, err = messages.GetConversation(suite.ctx, conv.ID)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), stored.NoLeido2)
	read, err := messages.GetMessageByID(suite.ctx, first.ID)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), read.Leido)

	forFirst, err := messages.GetConversationsByUser(suite.ctx, 1)
	require.NoError(suite.T(), err)
	forSecond, err := messages.GetConversationsByUser(suite.ctx, 2)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), forFirst, 1)
	assert.Len(suite.T(), forSecond, 1)
}

func (suite *RepositoryTestSuite) TestEditAndSoftDelete() {
	messages := suite.container.GetMessageRepository()
	conv := &models.Conversation{ID: utils.CanonicalPairKey(1, 2), Participante1ID: 1, Participante2ID: 2}
	msg := suite.send(conv, 1, 2, "Hola", true)

	edited, err := messages.EditMessage(suite.ctx, msg, "Hola!", suite.now)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Hola!", edited.Contenido)
	assert.NotNil(suite.T(), edited.FechaEdicion)

	deleted, err := messages.SoftDeleteMessage(suite.ctx, msg, suite.now)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), deleted.Eliminado)
	assert.Equal(suite.T(), models.DeletedMessagePlaceholder, deleted.Contenido)

	_, err = messages.EditMessage(suite.ctx, msg, "otra vez", suite.now)
	assert.ErrorIs(suite.T(), err, models.ErrMessageDeleted)
	_, err = messages.SoftDeleteMessage(suite.ctx, msg, suite.now)
	assert.ErrorIs(suite.T(), err, models.ErrMessageDeleted)
}

func (suite *RepositoryTestSuite) TestNotifications() {
	notifications := suite.container.GetNotificationRepository()
	batch := make([]*models.Notification, 0, 150)
	for i := 0; i < 150; i++ {
		batch = append(batch, &models.Notification{
			UsuarioID: int64(1 + i%2), Tipo: models.NotificationSistema, Titulo: "Aviso", Mensaje: "Mantenimiento",
			FechaCreacion: suite.now.Add(time.Duration(i) * time.Second),
		})
	}
	_, err := notifications.CreateNotifications(suite.ctx, batch)
	require.NoError(suite.T(), err)

	mine, err := notifications.GetNotificationsByUser(suite.ctx, 1)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), mine, 75)
	assert.True(suite.T(), mine[0].FechaCreacion.After(mine[74].FechaCreacion))

	assert.ErrorIs(suite.T(), notifications.MarkAsRead(suite.ctx, 2, mine[0].ID, suite.now), models.ErrNotAuthorized)
	require.NoError(suite.T(), notifications.MarkAsRead(suite.ctx, 1, mine[0].ID, suite.now))
	require.NoError(suite.T(), notifications.MarkAsRead(suite.ctx, 1, mine[0].ID, suite.now.Add(time.Hour)))

	ids := make([]int64, 0, len(mine))
	for _, n := range mine {
		ids = append(ids, n.ID)
	}
	require.NoError(suite.T(), notifications.MarkManyAsRead(suite.ctx, 1, ids, suite.now))
	mine, err = notifications.GetNotificationsByUser(suite.ctx, 1)
	require.NoError(suite.T(), err)
	for _, n := range mine {
		assert.True(suite.T(), n.Leida)
	}

	require.NoError(suite.T(), notifications.DeleteNotification(suite.ctx, 1, ids[0]))
	assert.ErrorIs(suite.T(), notifications.DeleteNotification(suite.ctx, 1, ids[0]), models.ErrNotFound)
}
