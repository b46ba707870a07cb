package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-gin-invitation/internal/cache"
	"go-gin-invitation/internal/model"
	"go-gin-invitation/internal/repository"
	apperrors "go-gin-invitation/pkg/app_errors"
	"go-gin-invitation/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxSlugAttempts 產生 slug 遇到碰撞時最多嘗試的次數
const MaxSlugAttempts = 5

// GuestInput 新增賓客；電話與 Instagram 為選填
type GuestInput struct {
	GuestName   string `json:"guest_name"`
	PhoneNumber string `json:"phone_number"`
	Instagram   string `json:"instagram"`
}

type GuestService interface {
	Create(ctx context.Context, eventID uuid.UUID, input GuestInput) (*model.Guest, error)
	// Import 逐行建立賓客；遇到第一個錯誤就停止，已建立的賓客保留並一併回傳
	Import(ctx context.Context, eventID uuid.UUID, lines []string) ([]*model.Guest, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.Guest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Guest, error)
	// GetBySlug 解析邀請函；活動已補上預設禮金帳戶
	GetBySlug(ctx context.Context, slug string) (*model.Invitation, error)
	UpdateRSVP(ctx context.Context, slug string, status string) (*model.Guest, error)
	// Delete 連同留言一起刪除
	Delete(ctx context.Context, id uuid.UUID) error
	ExportCSV(ctx context.Context, eventID uuid.UUID, origin string) ([]byte, error)
}

type GuestServiceImpl struct {
	repo         repository.GuestRepository
	eventRepo    repository.EventRepository
	cache        cache.InvitationCache
	giftDefaults model.GiftAccounts
}

func NewGuestService(repo repository.GuestRepository, eventRepo repository.EventRepository, invitationCache cache.InvitationCache, giftDefaults model.GiftAccounts) GuestService {
	return &GuestServiceImpl{
		repo:         repo,
		eventRepo:    eventRepo,
		cache:        invitationCache,
		giftDefaults: giftDefaults,
	}
}

func (s *GuestServiceImpl) Create(ctx context.Context, eventID uuid.UUID, input GuestInput) (*model.Guest, error) {
	name := strings.TrimSpace(input.GuestName)
	if name == "" {
		return nil, apperrors.Validation("guest_name is required")
	}

	var lastErr error
	for attempt := 0; attempt < MaxSlugAttempts; attempt++ {
		slug, err := model.NewGuestSlug(name)
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}

		guest := &model.Guest{
			EventID:     eventID,
			GuestName:   name,
			UniqueSlug:  slug,
			StatusRSVP:  model.RSVPPending,
			PhoneNumber: trimmedOrNil(&input.PhoneNumber),
			Instagram:   trimmedOrNil(&input.Instagram),
		}
		created, err := s.repo.Create(ctx, guest)
		if errors.Is(err, apperrors.ErrSlugTaken) {
			lastErr = err
			continue
		}
		return created, err
	}
	return nil, lastErr
}

// ParseImportLine splits "Name, Phone, Instagram". Missing trailing fields
// stay empty; extra fields are ignored.
func ParseImportLine(line string) GuestInput {
	parts := strings.Split(line, ",")
	field := func(i int) string {
		if i < len(parts) {
			return strings.TrimSpace(parts[i])
		}
		return ""
	}
	return GuestInput{
		GuestName:   field(0),
		PhoneNumber: field(1),
		Instagram:   field(2),
	}
}

func (s *GuestServiceImpl) Import(ctx context.Context, eventID uuid.UUID, lines []string) ([]*model.Guest, error) {
	created := make([]*model.Guest, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		guest, err := s.Create(ctx, eventID, ParseImportLine(line))
		if err != nil {
			return created, fmt.Errorf("line %d: %w", i+1, err)
		}
		created = append(created, guest)
	}
	return created, nil
}

func (s *GuestServiceImpl) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.Guest, error) {
	return s.repo.ListByEventID(ctx, eventID)
}

func (s *GuestServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*model.Guest, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *GuestServiceImpl) GetBySlug(ctx context.Context, slug string) (*model.Invitation, error) {
	log := logger.WithComponent("service")

	inv, err := s.cache.Get(ctx, slug)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn("read invitation cache failed", zap.String("slug", slug), zap.Error(err))
		}

		// 在讀資料庫之前記下時間，讀取期間若被失效，快取就不會寫回舊資料
		readAt := time.Now()
		guest, err := s.repo.FindBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		event, err := s.eventRepo.FindByID(ctx, guest.EventID)
		if err != nil {
			return nil, err
		}
		inv = &model.Invitation{Event: event, Guest: guest}

		if err := s.cache.Set(ctx, inv, readAt); err != nil {
			log.Warn("write invitation cache failed", zap.String("slug", slug), zap.Error(err))
		}
	}

	return &model.Invitation{
		Event: inv.Event.WithGiftDefaults(s.giftDefaults),
		Guest: inv.Guest,
	}, nil
}

func (s *GuestServiceImpl) UpdateRSVP(ctx context.Context, slug string, status string) (*model.Guest, error) {
	target, err := model.ParseRSVPStatus(status)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !current.StatusRSVP.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidRSVPTransition, current.StatusRSVP, target)
	}
	// 重送相同答案：不寫入也不清快取
	if current.StatusRSVP == target {
		return current, nil
	}

	guest, err := s.repo.UpdateRSVP(ctx, slug, target)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, slug)
	return guest, nil
}

func (s *GuestServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	guest, err := s.repo.DeleteCascade(ctx, id)
	if err != nil {
		return err
	}
	s.invalidate(ctx, guest.UniqueSlug)
	return nil
}

func (s *GuestServiceImpl) ExportCSV(ctx context.Context, eventID uuid.UUID, origin string) ([]byte, error) {
	guests, err := s.repo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Nama", "Status", "Link Undangan"}); err != nil {
		return nil, err
	}
	for _, g := range guests {
		row := []string{g.GuestName, string(g.StatusRSVP), model.InvitationLink(origin, g.UniqueSlug)}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *GuestServiceImpl) invalidate(ctx context.Context, slug string) {
	if err := s.cache.InvalidateSlug(ctx, slug); err != nil {
		logger.WithComponent("service").Warn("invalidate invitation cache failed",
			zap.String("slug", slug),
			zap.Error(err),
		)
	}
}
