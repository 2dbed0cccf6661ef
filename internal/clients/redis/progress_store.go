package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/roadmap-agent/internal/logger"
	"github.com/yungbote/roadmap-agent/internal/types"
)

// ProgressChannel carries every sink upsert so SSE forwarders can push live
// updates without polling the keys.
const ProgressChannel = "learning.path.progress"

const progressKeyPrefix = "learningpath:progress:"

// ProgressStore keeps the latest progress record per trace id. Set is an
// upsert (last write wins) with a TTL so abandoned traces age out.
type ProgressStore interface {
	Set(ctx context.Context, traceID string, update types.ProgressUpdate) error
	Get(ctx context.Context, traceID string) (types.ProgressUpdate, bool, error)
	StartForwarder(ctx context.Context, onMsg func(m types.ProgressMessage)) error
	Close() error
}

type progressStore struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewProgressStore(log *logger.Logger, ttl time.Duration) (ProgressStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	rdb, err := connect()
	if err != nil {
		return nil, err
	}
	return &progressStore{
		log: log.With("service", "RedisProgressStore"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func (s *progressStore) Set(ctx context.Context, traceID string, update types.ProgressUpdate) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis progress store not initialized")
	}
	if traceID == "" {
		return fmt.Errorf("trace id required")
	}
	raw, err := json.Marshal(update)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, progressKeyPrefix+traceID, raw, s.ttl).Err(); err != nil {
		return err
	}

	// Best effort: a dropped live notification only costs a client one
	// intermediate frame, the snapshot key stays authoritative.
	msg, err := json.Marshal(types.ProgressMessage{TraceID: traceID, Update: update})
	if err == nil {
		if err := s.rdb.Publish(ctx, ProgressChannel, msg).Err(); err != nil {
			s.log.Warn("Progress publish failed", "trace_id", traceID, "error", err)
		}
	}
	return nil
}

func (s *progressStore) Get(ctx context.Context, traceID string) (types.ProgressUpdate, bool, error) {
	var update types.ProgressUpdate
	if s == nil || s.rdb == nil {
		return update, false, fmt.Errorf("redis progress store not initialized")
	}
	raw, err := s.rdb.Get(ctx, progressKeyPrefix+traceID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return update, false, nil
		}
		return update, false, err
	}
	if err := json.Unmarshal(raw, &update); err != nil {
		return update, false, fmt.Errorf("decode progress record: %w", err)
	}
	return update, true, nil
}

// StartForwarder subscribes to the progress channel and hands every update
// to onMsg on a background goroutine, until ctx is canceled.
func (s *progressStore) StartForwarder(ctx context.Context, onMsg func(m types.ProgressMessage)) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis progress store not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := s.rdb.Subscribe(ctx, ProgressChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe %s: %w", ProgressChannel, err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var msg types.ProgressMessage
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					s.log.Warn("Bad progress payload, skipping", "error", err)
					continue
				}
				onMsg(msg)
			}
		}
	}()

	return nil
}

func (s *progressStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
