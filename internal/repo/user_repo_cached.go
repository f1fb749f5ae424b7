package repo

import (
	"context"
	"time"

	"go.uber.org/zap"

	"user-resource-service/internal/core/cache"
	"user-resource-service/internal/domain"
)

// CachedUserRepo FindByID 走 redis 读穿透，写操作前后删 key；其余方法直接透传。
// 删除失败只记日志，旧值最多存活一个 TTL（redis.ttlSec）
type CachedUserRepo struct {
	next  domain.UserRepository
	cache *cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedUserRepo(next domain.UserRepository, c *cache.Cache, ttl time.Duration, l *zap.Logger) *CachedUserRepo {
	return &CachedUserRepo{next: next, cache: c, ttl: ttl, log: l}
}

func (r *CachedUserRepo) idKey(id string) string { return r.cache.Key("id", id) }

func (r *CachedUserRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	return r.next.FindAll(ctx)
}

func (r *CachedUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return cache.GetOrLoadJSON(r.cache, ctx, r.idKey(id), r.ttl, func(ctx context.Context) (*domain.User, error) {
		return r.next.FindByID(ctx, id)
	})
}

func (r *CachedUserRepo) FindOne(ctx context.Context, f domain.UserFilter) (*domain.User, error) {
	return r.next.FindOne(ctx, f)
}

func (r *CachedUserRepo) Create(ctx context.Context, f domain.UserFields) (*domain.User, error) {
	u, err := r.next.Create(ctx, f)
	if err != nil {
		return nil, err
	}
	// 清掉可能存在的负缓存
	r.invalidate(ctx, u.ID)
	return u, nil
}

// UpdateByID 写前写后各删一次 key：写前删除保证写失败也不会留下旧值，
// 写后删除覆盖写入期间被并发读回填的旧记录
func (r *CachedUserRepo) UpdateByID(ctx context.Context, id string, f domain.UserFields) (bool, error) {
	r.invalidate(ctx, id)
	ok, err := r.next.UpdateByID(ctx, id, f)
	if ok {
		r.invalidate(ctx, id)
	}
	return ok, err
}

func (r *CachedUserRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	r.invalidate(ctx, id)
	ok, err := r.next.DeleteByID(ctx, id)
	if ok {
		r.invalidate(ctx, id)
	}
	return ok, err
}

func (r *CachedUserRepo) invalidate(ctx context.Context, id string) {
	if err := r.cache.Invalidate(ctx, r.idKey(id)); err != nil {
		r.log.Warn("cache invalidate failed", zap.String("id", id), zap.Error(err))
	}
}
