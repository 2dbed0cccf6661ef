package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LearningPathRecord is the persisted form of a finished learning path. The
// full artifact is stored as a JSON column; the indexed columns exist only
// for lookup.
type LearningPathRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string         `gorm:"index" json:"userId"`
	Topic     string         `json:"topic"`
	GoalLevel string         `json:"goalLevel"`
	TraceID   string         `gorm:"uniqueIndex" json:"traceId"`
	Path      datatypes.JSON `json:"path"`
	CreatedAt time.Time      `json:"createdAt"`
}
