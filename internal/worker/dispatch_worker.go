package worker

import (
	"context"
	"time"

	"go-gin-invitation/internal/notify"
	"go-gin-invitation/internal/queue"
	"go-gin-invitation/pkg/logger"

	"go.uber.org/zap"
)

type DispatchWorker interface {
	// 訂閱發送隊列；ctx 結束時停止
	Start(ctx context.Context) error
	// 等待處理中的任務結束
	Wait()
}

type DispatchWorkerImpl struct {
	sender      notify.Sender
	queue       queue.DispatchQueue
	sendTimeout time.Duration
	done        chan struct{}
}

func NewDispatchWorker(sender notify.Sender, queue queue.DispatchQueue, sendTimeout time.Duration) DispatchWorker {
	if sendTimeout <= 0 {
		sendTimeout = 30 * time.Second
	}
	return &DispatchWorkerImpl{
		sender:      sender,
		queue:       queue,
		sendTimeout: sendTimeout,
		done:        make(chan struct{}),
	}
}

func (w *DispatchWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.Subscribe(ctx)
	if err != nil {
		close(w.done)
		return err
	}

	go func() {
		defer close(w.done)
		log := logger.WithComponent("worker")

		for msg := range msgs {
			sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
			err := w.sender.Send(sendCtx, msg.Job)
			cancel()

			if err != nil {
				// 對方暫時無法送達，交給隊列延遲重試
				log.Warn("dispatch failed",
					zap.String("request_id", msg.Job.RequestID),
					zap.String("channel", string(msg.Job.Channel)),
					zap.Int("attempt", msg.Attempt),
					zap.Error(err),
				)
				msg.Nack(true)
				continue
			}
			msg.Ack()
		}
	}()
	return nil
}

func (w *DispatchWorkerImpl) Wait() {
	<-w.done
}
