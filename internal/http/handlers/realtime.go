package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pictures2pages-backend/internal/http/response"
	"github.com/yungbote/pictures2pages-backend/internal/observability"
	"github.com/yungbote/pictures2pages-backend/internal/platform/ctxutil"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
	"github.com/yungbote/pictures2pages-backend/internal/realtime"
	"github.com/yungbote/pictures2pages-backend/internal/services"
)

type RealtimeHandler struct {
	log     *logger.Logger
	hub     *realtime.SSEHub
	metrics *observability.Metrics
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub, metrics *observability.Metrics) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub, metrics: metrics}
}

// GET /api/events/stream
// Every stream joins the caller's private channel and nothing else.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	userID := ctxutil.CallerID(c.Request.Context())
	if userID == 0 {
		response.RespondError(c, &services.AuthenticationError{Reason: "not logged in"})
		return
	}
	client := h.hub.NewSSEClient(userID)
	h.hub.AddChannel(client, realtime.UserChannel(userID))
	h.metrics.SSEClientConnected()
	h.log.Debug("SSE stream open", "user_id", userID, "client_id", client.ID)

	defer func() {
		h.hub.CloseClient(client)
		h.metrics.SSEClientDisconnected()
		h.log.Debug("SSE stream closed", "user_id", userID, "client_id", client.ID)
	}()
	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
