package notify

import (
	"context"
	"fmt"
	"sync"

	"go-gin-invitation/config"
	"go-gin-invitation/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

// Mailer sends transactional mail (email verification).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// NewMailer picks the provider from config: "ses" or "noop". Unknown
// providers fall back to noop.
func NewMailer(cfg config.MailConfig) Mailer {
	switch cfg.Provider {
	case "ses":
		awsCfg := aws.Config{
			Region: cfg.SESRegion,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(cfg.SESAccessKeyID, cfg.SESSecretAccessKey, ""),
			),
		}
		return &SESMailer{
			client:      ses.NewFromConfig(awsCfg),
			fromAddress: cfg.FromAddress,
			fromName:    cfg.FromName,
		}
	case "noop":
		return &NoopMailer{}
	default:
		logger.WithComponent("mailer").Warn("unknown mail provider, using noop", zap.String("provider", cfg.Provider))
		return &NoopMailer{}
	}
}

type SESMailer struct {
	client      *ses.Client
	fromAddress string
	fromName    string
}

func (m *SESMailer) Send(ctx context.Context, to, subject, html, text string) error {
	source := m.fromAddress
	if m.fromName != "" {
		source = fmt.Sprintf("%s <%s>", m.fromName, m.fromAddress)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(source),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body:    &types.Body{},
		},
	}
	if html != "" {
		input.Message.Body.Html = &types.Content{Data: aws.String(html), Charset: aws.String("UTF-8")}
	}
	if text != "" {
		input.Message.Body.Text = &types.Content{Data: aws.String(text), Charset: aws.String("UTF-8")}
	}

	result, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	logger.WithComponent("mailer").Info("email sent", zap.String("message_id", aws.ToString(result.MessageId)))
	return nil
}

// NoopMailer only logs and keeps what it would have sent.
type NoopMailer struct {
	mu   sync.Mutex
	sent []MailMessage
}

type MailMessage struct {
	To, Subject, HTML, Text string
}

func (m *NoopMailer) Send(ctx context.Context, to, subject, html, text string) error {
	m.mu.Lock()
	m.sent = append(m.sent, MailMessage{To: to, Subject: subject, HTML: html, Text: text})
	m.mu.Unlock()
	logger.WithComponent("mailer").Info("email would be sent (noop)", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func (m *NoopMailer) Sent() []MailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MailMessage(nil), m.sent...)
}
