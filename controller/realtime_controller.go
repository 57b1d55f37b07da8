package controller

import (
	"io"
	"time"
	"voluntariado-backend/utils/logger"
	"voluntariado-backend/utils/realtime"

	"github.com/gin-gonic/gin"
)

const defaultHeartbeat = 25 * time.Second

// Subscriber opens and closes realtime streams
type Subscriber interface {
	Subscribe(userID int64) *realtime.Client
	Unsubscribe(c *realtime.Client)
}

type RealtimeController struct {
	handler
	hub       Subscriber
	heartbeat time.Duration
}

func NewRealtimeController(hub Subscriber, logger logger.Logger) *RealtimeController {
	return &RealtimeController{
		handler:   newHandler(logger),
		hub:       hub,
		heartbeat: defaultHeartbeat,
	}
}

// Stream handles GET /api/realtime/stream
// @Summary Realtime event stream
// @Description Server-sent events: notification, message, message_read, message_edited and message_deleted. EventSource clients may pass the token as access_token.
// @Tags Realtime
// @Security BearerAuth
// @Produce text/event-stream
// @Param access_token query string false "Bearer token for clients that cannot set headers"
// @Success 200 {string} string "Event stream"
// @Failure 401 {object} models.APIResponse "Unauthorized - Authentication required"
// @Router /realtime/stream [get]
func (h *RealtimeController) Stream(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}

	client := h.hub.Subscribe(claims.UserID)
	defer h.hub.Unsubscribe(client)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("connected", gin.H{"userId": claims.UserID})
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, open := <-client.Events:
			if !open {
				h.logger.Debugf("Realtime stream of user %d dropped by the hub", claims.UserID)
				return false
			}
			c.SSEvent(event.Name, event.Data)
			return true
		case t := <-heartbeat.C:
			c.SSEvent("ping", t.UTC().Unix())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
