package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/roadmap-agent/internal/logger"
	"github.com/yungbote/roadmap-agent/internal/types"
)

var ErrNotFound = errors.New("learning path not found")

type LearningPathRepo interface {
	Create(ctx context.Context, path *types.LearningPath) error
	GetByTraceID(ctx context.Context, traceID string) (*types.LearningPathRecord, error)
	ListByUser(ctx context.Context, userID string) ([]*types.LearningPathRecord, error)
}

type learningPathRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningPathRepo(db *gorm.DB, log *logger.Logger) LearningPathRepo {
	return &learningPathRepo{
		db:  db,
		log: log.With("repo", "LearningPathRepo"),
	}
}

func (r *learningPathRepo) Create(ctx context.Context, path *types.LearningPath) error {
	if path == nil {
		return fmt.Errorf("nil learning path")
	}
	raw, err := json.Marshal(path)
	if err != nil {
		return fmt.Errorf("marshal learning path: %w", err)
	}
	record := &types.LearningPathRecord{
		ID:        uuid.New(),
		UserID:    path.UserID,
		Topic:     path.Topic,
		GoalLevel: path.GoalLevel,
		TraceID:   path.TraceID,
		Path:      raw,
		CreatedAt: path.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *learningPathRepo) GetByTraceID(ctx context.Context, traceID string) (*types.LearningPathRecord, error) {
	var record types.LearningPathRecord
	err := r.db.WithContext(ctx).Where("trace_id = ?", traceID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *learningPathRepo) ListByUser(ctx context.Context, userID string) ([]*types.LearningPathRecord, error) {
	var records []*types.LearningPathRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
