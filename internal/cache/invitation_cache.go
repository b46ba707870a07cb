package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-gin-invitation/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// InvitationCache 以 slug 快取解析後的 (活動, 賓客)；存的是原始資料，不含禮金預設值
type InvitationCache interface {
	// 讀取：未命中回傳 ErrCacheMiss
	Get(ctx context.Context, slug string) (*model.Invitation, error)
	// 寫入：同時把 slug 記到活動的 slug 集合。readAt 是讀取資料庫前的時間，
	// 若之後 slug 或活動已被失效，代表資料可能已過期，直接略過不寫
	Set(ctx context.Context, inv *model.Invitation, readAt time.Time) error
	// 失效：單一賓客 (RSVP 變更、刪除賓客)
	InvalidateSlug(ctx context.Context, slug string) error
	// 失效：整個活動 (活動更新、刪除) 使用Lua腳本確保原子性
	InvalidateEvent(ctx context.Context, eventID uuid.UUID) error
}

type RedisInvitationCacheImpl struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisInvitationCache(client *redis.Client, ttl time.Duration) InvitationCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisInvitationCacheImpl{
		client: client,
		ttl:    ttl,
	}
}

const slugKeyPrefix = "invitation:slug:"

// 邀請函 key
func (c *RedisInvitationCacheImpl) getSlugKey(slug string) string {
	return slugKeyPrefix + slug
}

// 活動底下所有已快取 slug 的集合
func (c *RedisInvitationCacheImpl) getEventKey(eventID uuid.UUID) string {
	return fmt.Sprintf("invitation:event:%s:slugs", eventID)
}

// 最後一次失效的時間 (unix 微秒)
func (c *RedisInvitationCacheImpl) getSlugInvalidatedKey(slug string) string {
	return "invitation:invalidated:slug:" + slug
}

func (c *RedisInvitationCacheImpl) getEventInvalidatedKey(eventID uuid.UUID) string {
	return fmt.Sprintf("invitation:invalidated:event:%s", eventID)
}

func (c *RedisInvitationCacheImpl) Get(ctx context.Context, slug string) (*model.Invitation, error) {
	data, err := c.client.Get(ctx, c.getSlugKey(slug)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var inv model.Invitation
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("invalid cached invitation: %w", err)
	}
	if inv.Event == nil || inv.Guest == nil {
		return nil, ErrCacheMiss
	}
	return &inv, nil
}

var setScript = redis.NewScript(`
	-- KEYS[1]: slug key, KEYS[2]: 活動 slug 集合, KEYS[3]: slug 失效時間, KEYS[4]: 活動失效時間
	-- ARGV[1]: 資料, ARGV[2]: TTL (ms), ARGV[3]: 讀取開始時間 (微秒), ARGV[4]: slug
	local readAt = tonumber(ARGV[3])
	for i = 3, 4 do
		local invalidatedAt = redis.call('GET', KEYS[i])
		if invalidatedAt and tonumber(invalidatedAt) >= readAt then
			return 0
		end
	end
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
	redis.call('SADD', KEYS[2], ARGV[4])
	redis.call('PEXPIRE', KEYS[2], ARGV[2])
	return 1
`)

func (c *RedisInvitationCacheImpl) Set(ctx context.Context, inv *model.Invitation, readAt time.Time) error {
	data, err := json.Marshal(inv)
	if err != nil {
		return err
	}

	slug := inv.Guest.UniqueSlug
	keys := []string{
		c.getSlugKey(slug),
		c.getEventKey(inv.Event.ID),
		c.getSlugInvalidatedKey(slug),
		c.getEventInvalidatedKey(inv.Event.ID),
	}
	return setScript.Run(ctx, c.client, keys, data, c.ttl.Milliseconds(), readAt.UnixMicro(), slug).Err()
}

func (c *RedisInvitationCacheImpl) InvalidateSlug(ctx context.Context, slug string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.getSlugKey(slug))
		pipe.Set(ctx, c.getSlugInvalidatedKey(slug), time.Now().UnixMicro(), c.ttl)
		return nil
	})
	return err
}

var invalidateEventScript = redis.NewScript(`
	-- KEYS[1]: 活動 slug 集合, KEYS[2]: 活動失效時間
	-- ARGV[1]: slug key 前綴, ARGV[2]: 現在時間 (微秒), ARGV[3]: TTL (ms)
	local slugs = redis.call('SMEMBERS', KEYS[1])
	for _, slug in ipairs(slugs) do
		redis.call('DEL', ARGV[1] .. slug)
	end
	redis.call('DEL', KEYS[1])
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
	return #slugs
`)

func (c *RedisInvitationCacheImpl) InvalidateEvent(ctx context.Context, eventID uuid.UUID) error {
	keys := []string{c.getEventKey(eventID), c.getEventInvalidatedKey(eventID)}
	return invalidateEventScript.Run(ctx, c.client, keys, slugKeyPrefix, time.Now().UnixMicro(), c.ttl.Milliseconds()).Err()
}

// NoopInvitationCache is used when Redis is not configured; every read misses.
type NoopInvitationCache struct{}

func NewNoopInvitationCache() InvitationCache {
	return NoopInvitationCache{}
}

func (NoopInvitationCache) Get(context.Context, string) (*model.Invitation, error) {
	return nil, ErrCacheMiss
}

func (NoopInvitationCache) Set(context.Context, *model.Invitation, time.Time) error { return nil }

func (NoopInvitationCache) InvalidateSlug(context.Context, string) error { return nil }

func (NoopInvitationCache) InvalidateEvent(context.Context, uuid.UUID) error { return nil }
