package repo

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"user-role-admin/internal/domain"
)

// MemUserStore 内存版用户存储：每次调用先模拟网络延迟，写操作串行
type MemUserStore struct {
	mu    sync.RWMutex
	users []domain.User
	delay time.Duration
}

func NewMemUserStore(seed []domain.User, delay time.Duration) *MemUserStore {
	return &MemUserStore{users: slices.Clone(seed), delay: delay}
}

func (s *MemUserStore) List(ctx context.Context) ([]domain.User, error) {
	if err := simulateDelay(ctx, s.delay); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *MemUserStore) Create(ctx context.Context, d domain.UserDraft) (domain.User, error) {
	if err := simulateDelay(ctx, s.delay); err != nil {
		return domain.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.users))
	for _, u := range s.users {
		if u.Name == d.Name {
			return domain.User{}, fmt.Errorf("user %q: %w", d.Name, domain.ErrDuplicateName)
		}
		ids = append(ids, u.ID)
	}
	u := d.Build(domain.NextID(ids...))
	s.users = append(s.users, u)
	return u, nil
}

// Remove 不存在也算成功（幂等）
func (s *MemUserStore) Remove(ctx context.Context, id int64) (int64, error) {
	if err := simulateDelay(ctx, s.delay); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = slices.DeleteFunc(s.users, func(u domain.User) bool { return u.ID == id })
	return id, nil
}

func (s *MemUserStore) Update(ctx context.Context, id int64, p domain.UserPatch) (domain.User, error) {
	if err := simulateDelay(ctx, s.delay); err != nil {
		return domain.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.users, func(u domain.User) bool { return u.ID == id })
	if i < 0 {
		return domain.User{}, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	s.users[i] = p.Apply(s.users[i])
	return s.users[i], nil
}

// simulateDelay 模拟网络耗时；ctx 先结束则视为存储不可用
func simulateDelay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, ctx.Err())
	case <-t.C:
		return nil
	}
}
