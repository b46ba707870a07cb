package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-gin-invitation/internal/model"
	"go-gin-invitation/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	StreamKey = "invitations:dispatch"
	// DeadLetterStreamKey 放棄投遞的邀請，保留原始任務與原因供人工補發
	DeadLetterStreamKey = "invitations:dispatch:dead"
	ConsumerGroupName   = "dispatch-workers"
	ConsumerNamePrefix  = "worker"

	jobField    = "job"
	reasonField = "reason"
	sourceField = "source_id"
	readCount   = 10
)

var errMissingJob = errors.New("missing job field")

// RedisStreamConfig 可注入的逾時與重試設定；零值欄位使用預設。
type RedisStreamConfig struct {
	ClaimMinIdleTime   time.Duration // 失敗的邀請在 PEL 中等這麼久才會重送
	ReadGroupBlockTime time.Duration // XReadGroup 阻塞時間
	Retry              RetryPolicy
	DeadLetterMaxLen   int64
}

func (c *RedisStreamConfig) withDefaults() RedisStreamConfig {
	cfg := RedisStreamConfig{
		ClaimMinIdleTime:   5 * time.Second,
		ReadGroupBlockTime: 2 * time.Second,
		DeadLetterMaxLen:   10000,
	}
	if c == nil {
		return cfg
	}
	if c.ClaimMinIdleTime > 0 {
		cfg.ClaimMinIdleTime = c.ClaimMinIdleTime
	}
	if c.ReadGroupBlockTime > 0 {
		cfg.ReadGroupBlockTime = c.ReadGroupBlockTime
	}
	if c.DeadLetterMaxLen > 0 {
		cfg.DeadLetterMaxLen = c.DeadLetterMaxLen
	}
	cfg.Retry = c.Retry
	return cfg
}

type RedisStreamDispatchQueueImpl struct {
	client   *redis.Client
	consumer string
	cfg      RedisStreamConfig
}

// NewRedisStreamDispatchQueue 建立 Redis Stream 版 DispatchQueue。config 可為 nil。
func NewRedisStreamDispatchQueue(ctx context.Context, client *redis.Client, consumerID string, config *RedisStreamConfig) (DispatchQueue, error) {
	if consumerID == "" {
		consumerID = uuid.New().String()
	}
	q := &RedisStreamDispatchQueueImpl{
		client:   client,
		consumer: fmt.Sprintf("%s:%s", ConsumerNamePrefix, consumerID),
		cfg:      config.withDefaults(),
	}
	err := client.XGroupCreateMkStream(ctx, StreamKey, ConsumerGroupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("ensure consumer group: %w", err)
	}
	return q, nil
}

func (q *RedisStreamDispatchQueueImpl) Publish(ctx context.Context, job *model.DispatchJob) error {
	jobJSON, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		Values: map[string]interface{}{jobField: string(jobJSON)},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd: %w", err)
	}
	return nil
}

// Subscribe 新邀請由 XREADGROUP 取得；Nack(true) 的邀請留在 PEL，
// 閒置超過 ClaimMinIdleTime 後由 XAUTOCLAIM 領回重送。
func (q *RedisStreamDispatchQueueImpl) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)
	go func() {
		defer close(out)
		done := make(chan struct{})
		go func() {
			defer close(done)
			q.redeliverStale(ctx, out)
		}()
		q.consumeNew(ctx, out)
		<-done
	}()
	return out, nil
}

func (q *RedisStreamDispatchQueueImpl) consumeNew(ctx context.Context, out chan<- Delivery) {
	log := logger.WithComponent("mq")
	for ctx.Err() == nil {
		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    ConsumerGroupName,
			Consumer: q.consumer,
			Streams:  []string{StreamKey, ">"},
			Count:    readCount,
			Block:    q.cfg.ReadGroupBlockTime,
		}).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("XReadGroup failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		for _, stream := range streams {
			for _, msg := range stream.Messages {
				if !q.deliver(ctx, out, msg, 1) {
					return
				}
			}
		}
	}
}

func (q *RedisStreamDispatchQueueImpl) redeliverStale(ctx context.Context, out chan<- Delivery) {
	log := logger.WithComponent("mq")
	ticker := time.NewTicker(q.cfg.ClaimMinIdleTime)
	defer ticker.Stop()
	start := "0-0"

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		claimed, next, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   StreamKey,
			Group:    ConsumerGroupName,
			Consumer: q.consumer,
			MinIdle:  q.cfg.ClaimMinIdleTime,
			Count:    readCount,
			Start:    start,
		}).Result()
		if err != nil && err != redis.Nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("XAutoClaim failed", zap.Error(err))
			continue
		}
		start = next
		if start == "" {
			start = "0-0"
		}
		for _, msg := range claimed {
			if !q.deliver(ctx, out, msg, q.deliveryCount(ctx, msg.ID)) {
				return
			}
		}
	}
}

// deliveryCount XAUTOCLAIM 已把本次領取算進 delivery count
func (q *RedisStreamDispatchQueueImpl) deliveryCount(ctx context.Context, messageID string) int {
	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: StreamKey,
		Group:  ConsumerGroupName,
		Start:  messageID,
		End:    messageID,
		Count:  1,
	}).Result()
	if err != nil || len(pending) == 0 {
		if err != nil && err != redis.Nil {
			logger.WithComponent("mq").Warn("XPending failed", zap.String("message_id", messageID), zap.Error(err))
		}
		return 1
	}
	return int(pending[0].RetryCount)
}

// deliver 解出邀請任務後交給 worker；回傳 false 代表 ctx 已結束。
// 無法解析或已超過該管道投遞上限的訊息會移到死信 stream。
func (q *RedisStreamDispatchQueueImpl) deliver(ctx context.Context, out chan<- Delivery, msg redis.XMessage, attempt int) bool {
	log := logger.WithComponent("mq")

	raw, _ := msg.Values[jobField].(string)
	job, err := decodeJob(raw)
	if err != nil {
		log.Warn("malformed dispatch message", zap.String("message_id", msg.ID), zap.Error(err))
		q.deadLetter(ctx, msg.ID, raw, "malformed: "+err.Error())
		return true
	}

	limit := q.cfg.Retry.Limit(job.Channel)
	if attempt > limit {
		log.Warn("dispatch retries exhausted, job dead-lettered",
			append(jobFields(job, attempt-1), zap.String("message_id", msg.ID), zap.Int("max_attempts", limit))...,
		)
		q.deadLetter(ctx, msg.ID, raw, fmt.Sprintf("%s: %d attempts exhausted", job.Channel, limit))
		return true
	}

	select {
	case out <- q.newDelivery(ctx, msg.ID, raw, job, attempt):
		return true
	case <-ctx.Done():
		return false
	}
}

func decodeJob(raw string) (*model.DispatchJob, error) {
	if raw == "" {
		return nil, errMissingJob
	}
	var job model.DispatchJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// deadLetter 同一個 MULTI 內寫入死信並 ack 原訊息，避免重複寫入或遺失
func (q *RedisStreamDispatchQueueImpl) deadLetter(ctx context.Context, messageID, raw, reason string) {
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: DeadLetterStreamKey,
			MaxLen: q.cfg.DeadLetterMaxLen,
			Approx: true,
			Values: map[string]interface{}{
				jobField:    raw,
				reasonField: reason,
				sourceField: messageID,
			},
		})
		pipe.XAck(ctx, StreamKey, ConsumerGroupName, messageID)
		return nil
	})
	if err != nil {
		logger.WithComponent("mq").Error("dead-letter failed", zap.String("message_id", messageID), zap.Error(err))
	}
}

func (q *RedisStreamDispatchQueueImpl) newDelivery(ctx context.Context, messageID, raw string, job *model.DispatchJob, attempt int) Delivery {
	log := logger.WithComponent("mq")
	return Delivery{
		Job:     job,
		Attempt: attempt,
		Ack: func() {
			if err := q.client.XAck(ctx, StreamKey, ConsumerGroupName, messageID).Err(); err != nil {
				log.Error("XAck failed", zap.String("message_id", messageID), zap.Error(err))
			}
		},
		Nack: func(requeue bool) {
			if !requeue {
				q.deadLetter(ctx, messageID, raw, fmt.Sprintf("%s: rejected by worker", job.Channel))
				return
			}
			if attempt >= q.cfg.Retry.Limit(job.Channel) {
				// 下一次被領回時才會移到死信，這裡只記錄
				log.Info("dispatch failed on last attempt", jobFields(job, attempt)...)
				return
			}
			log.Info("dispatch will retry",
				append(jobFields(job, attempt), zap.Duration("retry_after", q.cfg.ClaimMinIdleTime))...,
			)
		},
	}
}
