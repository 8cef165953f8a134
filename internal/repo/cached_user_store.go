package repo

import (
	"context"
	"time"

	"user-role-admin/internal/core/cache"
	"user-role-admin/internal/domain"
)

const usersListKey = "users:list"

// CachedUserStore 给 List 加读穿缓存，写操作成功后失效
type CachedUserStore struct {
	next  domain.UserStore
	cache *cache.Cache
	ttl   time.Duration
}

func NewCachedUserStore(next domain.UserStore, c *cache.Cache, ttl time.Duration) *CachedUserStore {
	return &CachedUserStore{next: next, cache: c, ttl: ttl}
}

func (s *CachedUserStore) List(ctx context.Context) ([]domain.User, error) {
	users, err := cache.LoadJSON(ctx, s.cache, usersListKey, s.ttl, s.next.List)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *CachedUserStore) Create(ctx context.Context, d domain.UserDraft) (domain.User, error) {
	u, err := s.next.Create(ctx, d)
	if err == nil {
		s.invalidate(ctx)
	}
	return u, err
}

func (s *CachedUserStore) Remove(ctx context.Context, id int64) (int64, error) {
	out, err := s.next.Remove(ctx, id)
	if err == nil {
		s.invalidate(ctx)
	}
	return out, err
}

func (s *CachedUserStore) Update(ctx context.Context, id int64, p domain.UserPatch) (domain.User, error) {
	u, err := s.next.Update(ctx, id, p)
	if err == nil {
		s.invalidate(ctx)
	}
	return u, err
}

func (s *CachedUserStore) invalidate(ctx context.Context) {
	// 缓存删除失败只影响新鲜度，TTL 兜底
	_ = s.cache.Invalidate(ctx, usersListKey)
}
