package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmap-agent/internal/logger"
	"github.com/yungbote/roadmap-agent/internal/sse"
)

type SSEHandler struct {
	log *logger.Logger
	hub *sse.Hub
}

func NewSSEHandler(log *logger.Logger, hub *sse.Hub) *SSEHandler {
	return &SSEHandler{
		log: log.With("handler", "SSEHandler"),
		hub: hub,
	}
}

// Stream pushes progress updates for one trace id as server-sent events
// until the client disconnects.
func (h *SSEHandler) Stream(c *gin.Context) {
	traceID := strings.TrimSpace(c.Query("traceId"))
	if traceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "traceId query param required"})
		return
	}

	client := h.hub.Subscribe(traceID)
	defer h.hub.Unsubscribe(client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-client.Done():
			return false
		case update, ok := <-client.Outbound:
			if !ok {
				return false
			}
			raw, err := json.Marshal(update)
			if err != nil {
				h.log.Warn("Could not marshal progress frame", "error", err)
				return true
			}
			c.SSEvent("progress", string(raw))
			return true
		}
	})
}
