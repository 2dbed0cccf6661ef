package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/roadmap-agent/internal/logger"
	"github.com/yungbote/roadmap-agent/internal/types"
)

// EventBus is the pub/sub transport for learning-path events. One redis
// channel per event topic.
type EventBus interface {
	Publish(ctx context.Context, event types.Event) error
	Subscribe(ctx context.Context, topic string, onEvent func(event types.Event)) error
	Close() error
}

type eventBus struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewEventBus(log *logger.Logger) (EventBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	rdb, err := connect()
	if err != nil {
		return nil, err
	}
	return &eventBus{
		log: log.With("service", "RedisEventBus"),
		rdb: rdb,
	}, nil
}

func connect() (*goredis.Client, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (b *eventBus) Publish(ctx context.Context, event types.Event) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis event bus not initialized")
	}
	if strings.TrimSpace(event.Topic) == "" {
		return fmt.Errorf("event topic required")
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, event.Topic, raw).Err()
}

// Subscribe starts a background consumer for one topic. It returns after the
// subscription is confirmed; onEvent runs on the consumer goroutine.
func (b *eventBus) Subscribe(ctx context.Context, topic string, onEvent func(event types.Event)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis event bus not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, topic)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe %s: %w", topic, err)
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
				var event types.Event
				if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
					b.log.Warn("Bad event payload, skipping", "topic", topic, "error", err)
					continue
				}
				onEvent(event)
			}
		}
	}()

	return nil
}

func (b *eventBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

// BusEmitter adapts the bus to the fire-and-forget emitter contract the
// request handler uses.
type BusEmitter struct {
	Log *logger.Logger
	Bus EventBus
}

func (e *BusEmitter) Emit(ctx context.Context, event types.Event) {
	if e == nil || e.Bus == nil {
		return
	}
	if err := e.Bus.Publish(ctx, event); err != nil && e.Log != nil {
		e.Log.Error("Event publish failed", "topic", event.Topic, "error", err)
	}
}
