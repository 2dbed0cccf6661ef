package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/roadmap-agent/internal/logger"
	"github.com/yungbote/roadmap-agent/internal/repos"
	"github.com/yungbote/roadmap-agent/internal/types"
)

// EventPublisher is the outbound half of the bus the intake endpoint needs.
type EventPublisher interface {
	Publish(ctx context.Context, event types.Event) error
}

// ProgressReader reads the latest progress snapshot for a trace.
type ProgressReader interface {
	Get(ctx context.Context, traceID string) (types.ProgressUpdate, bool, error)
}

type LearningPathHandler struct {
	log      *logger.Logger
	bus      EventPublisher
	progress ProgressReader
	repo     repos.LearningPathRepo
}

func NewLearningPathHandler(log *logger.Logger, bus EventPublisher, progress ProgressReader, repo repos.LearningPathRepo) *LearningPathHandler {
	return &LearningPathHandler{
		log:      log.With("handler", "LearningPathHandler"),
		bus:      bus,
		progress: progress,
		repo:     repo,
	}
}

type createPathRequest struct {
	UserID      string            `json:"userId"`
	Topic       string            `json:"topic"`
	Background  string            `json:"background"`
	GoalLevel   string            `json:"goalLevel"`
	Preferences types.Preferences `json:"preferences"`
}

// Create accepts a generation request, mints a trace id and hands the work
// to the pipeline through the event bus. The response only acknowledges
// intake; progress and the finished path flow through the sink and events.
func (h *LearningPathHandler) Create(c *gin.Context) {
	var body createPathRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(body.UserID) == "" || strings.TrimSpace(body.Topic) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and topic are required"})
		return
	}

	traceID := uuid.NewString()
	req := types.PathRequest{
		UserID:      body.UserID,
		Topic:       body.Topic,
		Background:  body.Background,
		GoalLevel:   body.GoalLevel,
		Preferences: body.Preferences,
		TraceID:     traceID,
	}

	event := types.Event{Topic: types.TopicPathRequested, Data: toEventData(req)}
	if err := h.bus.Publish(c.Request.Context(), event); err != nil {
		h.log.Error("Failed to publish path request", "trace_id", traceID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not queue request"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"traceId": traceID})
}

// Progress returns the last progress record written for a trace.
func (h *LearningPathHandler) Progress(c *gin.Context) {
	traceID := c.Param("traceId")
	update, ok, err := h.progress.Get(c.Request.Context(), traceID)
	if err != nil {
		h.log.Error("Progress lookup failed", "trace_id", traceID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "progress lookup failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no progress for trace"})
		return
	}
	c.JSON(http.StatusOK, update)
}

// Get returns the stored learning path for a trace.
func (h *LearningPathHandler) Get(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence not configured"})
		return
	}
	record, err := h.repo.GetByTraceID(c.Request.Context(), c.Param("traceId"))
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "learning path not found"})
			return
		}
		h.log.Error("Learning path lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// ListByUser returns stored learning paths for one user, newest first.
func (h *LearningPathHandler) ListByUser(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence not configured"})
		return
	}
	records, err := h.repo.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.log.Error("Learning path list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"learningPaths": records})
}

func toEventData(req types.PathRequest) map[string]any {
	raw, _ := json.Marshal(req)
	var data map[string]any
	_ = json.Unmarshal(raw, &data)
	return data
}
