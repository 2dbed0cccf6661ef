package types

// Event topics this service subscribes to and emits.
const (
	TopicPathRequested = "learning.path.requested"
	TopicPathGenerated = "learning.path.generated"
	TopicPathFailed    = "learning.path.failed"
)

// Event is the envelope exchanged on the event bus.
type Event struct {
	Topic string         `json:"topic"`
	Data  map[string]any `json:"data"`
}

// ProgressMessage is the envelope published on the progress channel so SSE
// forwarders can fan updates out to connected clients.
type ProgressMessage struct {
	TraceID string         `json:"traceId"`
	Update  ProgressUpdate `json:"update"`
}
