package controller

import (
	"net/http"
	"strings"
	"voluntariado-backend/models"
	"voluntariado-backend/services"
	"voluntariado-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

type MessageController struct {
	handler
	messageService services.MessageServiceInterface
}

func NewMessageController(svc services.ServiceContainerInterface, logger logger.Logger) *MessageController {
	return &MessageController{
		handler:        newHandler(logger),
		messageService: svc.GetMessageService(),
	}
}

// SendMessage handles POST /api/messages
// @Summary Send a direct message
// @Tags Messages
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.SendMessageRequest true "Recipient and content"
// @Success 201 {object} models.APIResponse{data=models.Message} "Message sent successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid message"
// @Failure 404 {object} models.APIResponse "Not Found - Recipient does not exist"
// @Router /messages [post]
func (h *MessageController) SendMessage(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	var req models.SendMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	msg, err := h.messageService.SendMessage(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		h.respondError(c, "Failed to send message", err)
		return
	}
	h.ok(c, http.StatusCreated, "Message sent successfully", msg)
}

// GetConversations handles GET /api/messages/conversations
// @Summary My conversations
// @Description Most recent first, with the other participant's presence
// @Tags Messages
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.ConversationDto} "Conversations retrieved successfully"
// @Router /messages/conversations [get]
func (h *MessageController) GetConversations(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}

	conversations, err := h.messageService.GetConversations(c.Request.Context(), claims.UserID)
	if err != nil {
		h.respondError(c, "Failed to get conversations", err)
		return
	}
	h.ok(c, http.StatusOK, "Conversations retrieved successfully", conversations)
}

// GetMessages handles GET /api/messages/conversations/{conversationId}
// @Summary Messages of a conversation
// @Description Chronological. Deleted messages keep their position with a placeholder.
// @Tags Messages
// @Security BearerAuth
// @Produce json
// @Param conversationId path string true "Conversation ID"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size (max 100)"
// @Success 200 {object} models.APIResponse "Messages retrieved successfully"
// @Failure 403 {object} models.APIResponse "Forbidden - Not a participant"
// @Router /messages/conversations/{conversationId} [get]
func (h *MessageController) GetMessages(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	var page models.Pagination
	if !h.bindQuery(c, &page) {
		return
	}

	result, err := h.messageService.GetMessages(c.Request.Context(), claims.UserID, c.Param("conversationId"), page)
	if err != nil {
		h.respondError(c, "Failed to get messages", err)
		return
	}
	h.ok(c, http.StatusOK, "Messages retrieved successfully", result)
}

// MarkAsRead handles PUT /api/messages/conversations/{conversationId}/read
// @Summary Mark a conversation as read
// @Tags Messages
// @Security BearerAuth
// @Produce json
// @Param conversationId path string true "Conversation ID"
// @Success 200 {object} models.APIResponse "Messages marked as read"
// @Failure 403 {object} models.APIResponse "Forbidden - Not a participant"
// @Router /messages/conversations/{conversationId}/read [put]
func (h *MessageController) MarkAsRead(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}

	updated, err := h.messageService.MarkMessagesAsRead(c.Request.Context(), claims.UserID, c.Param("conversationId"))
	if err != nil {
		h.respondError(c, "Failed to mark messages as read", err)
		return
	}
	h.ok(c, http.StatusOK, "Messages marked as read", gin.H{"updated": updated})
}

// EditMessage handles PUT /api/messages/{id}
// @Summary Edit one of my messages
// @Description Allowed within the edit window after sending
// @Tags Messages
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Message ID"
// @Param request body models.EditMessageRequest true "New content"
// @Success 200 {object} models.APIResponse{data=models.Message} "Message edited successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Edit window expired or message deleted"
// @Failure 403 {object} models.APIResponse "Forbidden - Not the sender"
// @Router /messages/{id} [put]
func (h *MessageController) EditMessage(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req models.EditMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	msg, err := h.messageService.EditMessage(c.Request.Context(), claims.UserID, id, &req)
	if err != nil {
		h.respondError(c, "Failed to edit message", err)
		return
	}
	h.ok(c, http.StatusOK, "Message edited successfully", msg)
}

// DeleteMessage handles DELETE /api/messages/{id}
// @Summary Delete one of my messages
// @Tags Messages
// @Security BearerAuth
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} models.APIResponse{data=models.Message} "Message deleted successfully"
// @Failure 403 {object} models.APIResponse "Forbidden - Not the sender"
// @Router /messages/{id} [delete]
func (h *MessageController) DeleteMessage(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	msg, err := h.messageService.DeleteMessage(c.Request.Context(), claims.UserID, id)
	if err != nil {
		h.respondError(c, "Failed to delete message", err)
		return
	}
	h.ok(c, http.StatusOK, "Message deleted successfully", msg)
}

// SearchMessages handles GET /api/messages/search
// @Summary Search my messages
// @Tags Messages
// @Security BearerAuth
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {object} models.APIResponse{data=[]models.Message} "Messages retrieved successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Missing search term"
// @Router /messages/search [get]
func (h *MessageController) SearchMessages(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		h.fail(c, http.StatusBadRequest, "Invalid query parameters", "ValidationError", "q is required")
		return
	}

	messages, err := h.messageService.SearchMessages(c.Request.Context(), claims.UserID, term)
	if err != nil {
		h.respondError(c, "Failed to search messages", err)
		return
	}
	h.ok(c, http.StatusOK, "Messages retrieved successfully", messages)
}
