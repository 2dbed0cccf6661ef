package services

import (
	"context"

	"github.com/yungbote/roadmap-agent/internal/types"
)

// EventEmitter publishes outbound events. Delivery is at-most-once and no
// acknowledgement is awaited; failures are the emitter's to log.
type EventEmitter interface {
	Emit(ctx context.Context, event types.Event)
}
