package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel shared by all instances.
const DefaultChannel = "binroute:events"

// RedisPublisher publishes events over Redis Pub/Sub so every instance's
// dashboards see them.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisClient parses REDIS_URL style addresses and checks connectivity.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("❌ Failed to marshal event %s: %v", evt.Type, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		log.Printf("⚠️  Redis publish failed for %s: %v", evt.Type, err)
	}
}

// Relay subscribes to the shared channel and forwards every event into a
// local publisher (normally the websocket hub) until ctx is cancelled.
type Relay struct {
	rdb     *redis.Client
	channel string
	local   Publisher
}

func NewRelay(rdb *redis.Client, channel string, local Publisher) *Relay {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Relay{rdb: rdb, channel: channel, local: local}
}

// Run blocks until ctx is done or the subscription closes.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	// Wait for the subscription confirmation so no early message is lost
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	log.Printf("✅ Redis relay subscribed to %s", r.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				log.Printf("⚠️  Dropping malformed event on %s: %v", r.channel, err)
				continue
			}
			r.local.Publish(ctx, evt)
		}
	}
}
