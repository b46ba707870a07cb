package notify

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go-gin-invitation/internal/model"
	"go-gin-invitation/pkg/logger"

	_ "github.com/mattn/go-sqlite3"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.uber.org/zap"
)

var ErrNotOnWhatsApp = errors.New("number is not registered on whatsapp")

// WhatsAppSender sends invitations from a linked WhatsApp device. The device
// session lives in a sqlite database under dataDir.
type WhatsAppSender struct {
	client *whatsmeow.Client
	log    *zap.Logger
}

func NewWhatsAppSender(ctx context.Context, dataDir string) (*WhatsAppSender, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	container, err := sqlstore.New(ctx, "sqlite3", fmt.Sprintf("file:%s/whatsmeow.db?_foreign_keys=on", dataDir), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create device store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return &WhatsAppSender{
		client: whatsmeow.NewClient(deviceStore, nil),
		log:    logger.WithComponent("whatsapp"),
	}, nil
}

// Connect links the device on first run (QR code printed to the terminal)
// and connects the client. It blocks until pairing finishes or fails.
func (s *WhatsAppSender) Connect(ctx context.Context) error {
	if s.client.Store.ID != nil {
		return s.client.Connect()
	}

	qrChan, err := s.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get qr channel: %w", err)
	}
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	for evt := range qrChan {
		if evt.Event != "code" {
			s.log.Info("login event", zap.String("event", evt.Event))
			continue
		}
		q, err := qrcode.New(evt.Code, qrcode.Medium)
		if err != nil {
			s.log.Warn("render qr failed", zap.Error(err))
			continue
		}
		fmt.Println("\n" + q.ToSmallString(false))
		s.log.Info("scan the qr code above with WhatsApp > Linked Devices")
	}
	return nil
}

func (s *WhatsAppSender) Disconnect() {
	s.client.Disconnect()
}

func (s *WhatsAppSender) Send(ctx context.Context, job *model.DispatchJob) error {
	phone := NormalizePhone(job.Recipient)

	resp, err := s.client.IsOnWhatsApp(ctx, []string{"+" + phone})
	if err != nil {
		return fmt.Errorf("failed to verify number on whatsapp: %w", err)
	}
	if len(resp) == 0 || !resp[0].IsIn {
		return fmt.Errorf("%w: %s", ErrNotOnWhatsApp, phone)
	}

	message := job.Message
	sent, err := s.client.SendMessage(ctx, resp[0].JID, &waE2E.Message{
		Conversation: &message,
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	s.log.Info("invitation sent",
		zap.String("request_id", job.RequestID),
		zap.String("guest_id", job.GuestID),
		zap.String("message_id", sent.ID),
	)
	return nil
}
