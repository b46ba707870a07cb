package queue

import (
	"context"

	"go-gin-invitation/internal/model"
	"go-gin-invitation/pkg/logger"

	"go.uber.org/zap"
)

type Delivery struct {
	Job *model.DispatchJob
	// 第幾次投遞，從 1 開始
	Attempt int
	Ack     func()
	Nack    func(requeue bool)
}

type DispatchQueue interface {
	// 發送邀請任務到隊列
	Publish(ctx context.Context, job *model.DispatchJob) error
	// 訂閱邀請任務
	Subscribe(ctx context.Context) (<-chan Delivery, error)
}

type envelope struct {
	job     *model.DispatchJob
	attempt int
}

type DispatchQueueImpl struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch     chan envelope
	policy RetryPolicy
}

func NewDispatchQueue(bufferSize int, policy RetryPolicy) DispatchQueue {
	return &DispatchQueueImpl{
		ch:     make(chan envelope, bufferSize),
		policy: policy,
	}
}

func (q *DispatchQueueImpl) Publish(ctx context.Context, job *model.DispatchJob) error {
	select {
	case q.ch <- envelope{job: job, attempt: 1}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *DispatchQueueImpl) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case env := <-q.ch:
				select {
				case out <- q.newDelivery(ctx, env):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (q *DispatchQueueImpl) newDelivery(ctx context.Context, env envelope) Delivery {
	return Delivery{
		Job:     env.job,
		Attempt: env.attempt,
		Ack:     func() { /* 記憶體版不用做特別動作 */ },
		Nack: func(requeue bool) {
			log := logger.WithComponent("mq")
			if !requeue {
				log.Warn("dispatch job rejected", jobFields(env.job, env.attempt)...)
				return
			}
			if q.policy.Exhausted(env.job, env.attempt) {
				log.Warn("dispatch retries exhausted, job discarded",
					append(jobFields(env.job, env.attempt), zap.Int("max_attempts", q.policy.Limit(env.job.Channel)))...,
				)
				return
			}
			// 重新排隊不能阻塞 worker
			go func() {
				select {
				case q.ch <- envelope{job: env.job, attempt: env.attempt + 1}:
				case <-ctx.Done():
				}
			}()
		},
	}
}
