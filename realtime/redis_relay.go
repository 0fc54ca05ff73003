package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const publishTimeout = 2 * time.Second

// RedisRelay lets several backend instances share one set of viewers. Emit
// publishes to a Redis channel; Run subscribes to the same channel and hands
// every event, including this instance's own, to the local broadcaster.
type RedisRelay struct {
	rdb     *redis.Client
	channel string
	local   Broadcaster
	log     *slog.Logger

	readyOnce sync.Once
	ready     chan struct{}
}

var _ Broadcaster = (*RedisRelay)(nil)

type relayFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func NewRedisRelay(rdb *redis.Client, channel string, local Broadcaster, log *slog.Logger) *RedisRelay {
	return &RedisRelay{
		rdb:     rdb,
		channel: channel,
		local:   local,
		log:     log,
		ready:   make(chan struct{}),
	}
}

// Emit publishes the event. When Redis is unreachable the event is delivered
// to local viewers only.
func (r *RedisRelay) Emit(event string, payload any) {
	data, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		r.log.Error("encode relay event", "event", event, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := r.rdb.Publish(ctx, r.channel, data).Err(); err != nil {
		r.log.Warn("relay publish failed, delivering locally", "event", event, "error", err)
		r.local.Emit(event, payload)
	}
}

// Ready is closed once Run's subscription is confirmed.
func (r *RedisRelay) Ready() <-chan struct{} {
	return r.ready
}

// Run forwards relayed events to the local broadcaster until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.readyOnce.Do(func() { close(r.ready) })
	r.log.Info("relay subscribed", "channel", r.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var frame relayFrame
			if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
				r.log.Warn("drop malformed relay frame", "error", err)
				continue
			}
			r.local.Emit(frame.Event, frame.Data)
		}
	}
}
