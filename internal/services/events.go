package services

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// EventPublisher fans session messages out to observers (dashboards, other
// instances). Subscribers never feed anything back into a session.
type EventPublisher interface {
	Publish(ctx context.Context, sessionID string, event any) error
}

type redisEventPublisher struct {
	rdb *redis.Client
}

func NewRedisEventPublisher(rdb *redis.Client) EventPublisher {
	return &redisEventPublisher{rdb: rdb}
}

// EventChannel is the pub/sub channel of one session.
func EventChannel(sessionID string) string {
	return "session:" + sessionID + ":events"
}

func (p *redisEventPublisher) Publish(ctx context.Context, sessionID string, event any) error {
	b, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, EventChannel(sessionID), b).Err()
}
