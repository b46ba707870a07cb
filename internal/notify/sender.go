package notify

import (
	"context"
	"errors"

	"go-gin-invitation/internal/model"
	"go-gin-invitation/pkg/logger"

	"go.uber.org/zap"
)

var ErrNoSender = errors.New("no sender for channel")

// Sender delivers one dispatch job over its channel.
type Sender interface {
	Send(ctx context.Context, job *model.DispatchJob) error
}

// LinkSender does not deliver anything itself: it logs the prefilled deep link
// so the host (or an operator) can open it. Used for Instagram, which has no
// sending API, and for WhatsApp when no device is linked.
type LinkSender struct{}

func NewLinkSender() *LinkSender {
	return &LinkSender{}
}

func (s *LinkSender) Send(ctx context.Context, job *model.DispatchJob) error {
	var link string
	switch job.Channel {
	case model.ChannelWhatsApp:
		link = WhatsAppLink(job.Recipient, job.Message)
	case model.ChannelInstagram:
		link = InstagramLink(job.Recipient)
	default:
		return ErrNoSender
	}

	logger.WithComponent("notify").Info("invitation link ready",
		zap.String("request_id", job.RequestID),
		zap.String("guest_id", job.GuestID),
		zap.String("channel", string(job.Channel)),
		zap.String("share_link", link),
	)
	return nil
}

// Router picks the sender registered for a job's channel.
type Router struct {
	senders map[model.DispatchChannel]Sender
}

func NewRouter(senders map[model.DispatchChannel]Sender) *Router {
	return &Router{senders: senders}
}

func (r *Router) Send(ctx context.Context, job *model.DispatchJob) error {
	sender, ok := r.senders[job.Channel]
	if !ok {
		return ErrNoSender
	}
	return sender.Send(ctx, job)
}
