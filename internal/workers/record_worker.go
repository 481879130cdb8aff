package workers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/voiceintake/internal/models"
	"github.com/yoockh/voiceintake/internal/services"
)

const (
	DefaultRecordStream = "record:stream"
	DefaultRecordGroup  = "record-writers"

	defaultClaimMinIdle  = 30 * time.Second
	defaultClaimInterval = 15 * time.Second
)

// pendingClaimer is the part of the Redis client the reclaim pass needs.
type pendingClaimer interface {
	XAutoClaim(ctx context.Context, a *redis.XAutoClaimArgs) *redis.XAutoClaimCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

// RecordStreamSink queues completed records on a Redis stream so the socket
// never waits on Postgres.
type RecordStreamSink struct {
	Redis  *redis.Client
	Stream string
}

func (s *RecordStreamSink) Submit(ctx context.Context, rec *models.VoiceRecord) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	stream := s.Stream
	if stream == "" {
		stream = DefaultRecordStream
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.Redis.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"session_id": rec.SessionID,
			"record":     string(b),
			"ts_unix":    strconv.FormatInt(time.Now().UTC().Unix(), 10),
		},
	}).Err()
}

// RecordWorkerPool drains the record stream into the record store.
type RecordWorkerPool struct {
	Redis      *redis.Client
	Records    services.RecordService
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string

	// Messages left unacked for ClaimMinIdle are retried every ClaimInterval.
	ClaimMinIdle  time.Duration
	ClaimInterval time.Duration
}

func (p *RecordWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Records == nil {
		return errors.New("RecordWorkerPool missing dependency: Redis/Records must be set")
	}
	if p.Stream == "" {
		p.Stream = DefaultRecordStream
	}
	if p.Group == "" {
		p.Group = DefaultRecordGroup
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
	if p.ClaimMinIdle <= 0 {
		p.ClaimMinIdle = defaultClaimMinIdle
	}
	if p.ClaimInterval <= 0 {
		p.ClaimInterval = defaultClaimInterval
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	go p.runReclaimer(ctx, p.ConsumerPrefix+"-reclaim")
	return nil
}

func (p *RecordWorkerPool) runReclaimer(ctx context.Context, consumer string) {
	t := time.NewTicker(p.ClaimInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		if _, err := p.reclaim(ctx, p.Redis, consumer); err != nil && ctx.Err() == nil {
			p.Logger.WithError(err).Warn("record reclaim failed")
		}
	}
}

// reclaim takes over messages that stayed pending for ClaimMinIdle and runs
// them again. It returns how many were acked.
func (p *RecordWorkerPool) reclaim(ctx context.Context, rc pendingClaimer, consumer string) (int, error) {
	acked := 0
	start := "0-0"
	for {
		msgs, next, err := rc.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   p.Stream,
			Group:    p.Group,
			Consumer: consumer,
			MinIdle:  p.ClaimMinIdle,
			Start:    start,
			Count:    10,
		}).Result()
		if err != nil {
			return acked, err
		}

		for _, msg := range msgs {
			if !p.handleMsg(ctx, msg) {
				continue
			}
			if err := rc.XAck(ctx, p.Stream, p.Group, msg.ID).Err(); err != nil {
				return acked, err
			}
			acked++
		}

		if next == "" || next == "0-0" {
			return acked, nil
		}
		start = next
	}
}

func (p *RecordWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			p.Logger.WithError(err).WithField("consumer", consumer).Warn("record stream read failed")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				if p.handleMsg(ctx, msg) {
					_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
				}
			}
		}
	}
}

// handleMsg reports whether the message can be acknowledged. Malformed
// messages are acked and dropped. Store failures stay pending until the
// reclaim pass retries them.
func (p *RecordWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) bool {
	log := p.Logger.WithField("redis_id", msg.ID)

	rec, err := DecodeRecord(msg.Values)
	if err != nil {
		log.WithError(err).Warn("dropping malformed record message")
		return true
	}
	log = log.WithField("session_id", rec.SessionID)

	if err := p.Records.Save(ctx, rec); err != nil {
		log.WithError(err).Error("record save failed")
		return false
	}
	log.Info("record saved")
	return true
}

// DecodeRecord reads a record written by RecordStreamSink.
func DecodeRecord(values map[string]any) (*models.VoiceRecord, error) {
	raw, _ := values["record"].(string)
	if raw == "" {
		return nil, errors.New("message has no record")
	}
	var rec models.VoiceRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	if rec.SessionID == "" {
		return nil, errors.New("record has no session_id")
	}
	return &rec, nil
}
