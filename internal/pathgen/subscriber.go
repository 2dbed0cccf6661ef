package pathgen

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/yungbote/roadmap-agent/internal/logger"
	"github.com/yungbote/roadmap-agent/internal/types"
)

// EventSource is the inbound side of the event bus.
type EventSource interface {
	Subscribe(ctx context.Context, topic string, onEvent func(event types.Event)) error
}

// Subscriber consumes learning.path.requested events and dispatches each to
// the handler on its own goroutine. Requests are independent; there is no
// cross-request coordination or rate limiting here.
type Subscriber struct {
	log     *logger.Logger
	source  EventSource
	handler *Handler
}

func NewSubscriber(log *logger.Logger, source EventSource, handler *Handler) *Subscriber {
	return &Subscriber{
		log:     log.With("component", "PathRequestSubscriber"),
		source:  source,
		handler: handler,
	}
}

func (s *Subscriber) Start(ctx context.Context) error {
	return s.source.Subscribe(ctx, types.TopicPathRequested, func(event types.Event) {
		req, ok := s.decode(event)
		if !ok {
			return
		}
		go s.handler.Handle(ctx, req)
	})
}

func (s *Subscriber) decode(event types.Event) (types.PathRequest, bool) {
	var req types.PathRequest
	raw, err := json.Marshal(event.Data)
	if err != nil {
		s.log.Warn("Undecodable request event, skipping", "error", err)
		return req, false
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		s.log.Warn("Malformed request payload, skipping", "error", err)
		return req, false
	}
	if strings.TrimSpace(req.Topic) == "" {
		s.log.Warn("Request event without a topic field, skipping", "trace_id", req.TraceID)
		return req, false
	}
	return req, true
}
