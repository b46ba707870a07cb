package queue

import (
	"go-gin-invitation/internal/model"

	"go.uber.org/zap"
)

const defaultMaxAttempts = 5

// RetryPolicy 每個發送管道最多投遞幾次；PerChannel 沒設定的管道使用 MaxAttempts。
type RetryPolicy struct {
	MaxAttempts int
	PerChannel  map[model.DispatchChannel]int
}

// Limit 回傳該管道允許的投遞次數（含第一次）
func (p RetryPolicy) Limit(channel model.DispatchChannel) int {
	if n, ok := p.PerChannel[channel]; ok && n > 0 {
		return n
	}
	if p.MaxAttempts > 0 {
		return p.MaxAttempts
	}
	return defaultMaxAttempts
}

// Exhausted 第 attempt 次投遞失敗後是否已無重試額度
func (p RetryPolicy) Exhausted(job *model.DispatchJob, attempt int) bool {
	return attempt >= p.Limit(job.Channel)
}

// jobFields 丟棄或重試時帶上的任務欄位，方便追查是哪位賓客的邀請沒送出
func jobFields(job *model.DispatchJob, attempt int) []zap.Field {
	return []zap.Field{
		zap.String("request_id", job.RequestID),
		zap.String("event_id", job.EventID),
		zap.String("guest_id", job.GuestID),
		zap.String("channel", string(job.Channel)),
		zap.String("recipient", job.Recipient),
		zap.Int("attempt", attempt),
	}
}
