package repo

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"user-role-admin/internal/domain"
)

type MemRoleStore struct {
	mu    sync.RWMutex
	roles []domain.Role
	delay time.Duration
}

func NewMemRoleStore(seed []domain.Role, delay time.Duration) *MemRoleStore {
	roles := make([]domain.Role, 0, len(seed))
	for _, r := range seed {
		roles = append(roles, r.Clone())
	}
	return &MemRoleStore{roles: roles, delay: delay}
}

func (s *MemRoleStore) List(ctx context.Context) ([]domain.Role, error) {
	if err := simulateDelay(ctx, s.delay); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r.Clone())
	}
	return out, nil
}

// Create 角色名大小写不敏感唯一
func (s *MemRoleStore) Create(ctx context.Context, d domain.RoleDraft) (domain.Role, error) {
	if err := simulateDelay(ctx, s.delay); err != nil {
		return domain.Role{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.roles))
	for _, r := range s.roles {
		if domain.SameRoleName(r.Name, d.Name) {
			return domain.Role{}, fmt.Errorf("role %q: %w", d.Name, domain.ErrDuplicateName)
		}
		ids = append(ids, r.ID)
	}
	r := domain.Role{
		ID:          domain.NextID(ids...),
		Name:        d.Name,
		Permissions: domain.NormalizePermissions(d.Permissions),
	}
	s.roles = append(s.roles, r)
	return r.Clone(), nil
}

// Update 整体替换权限集合
func (s *MemRoleStore) Update(ctx context.Context, id int64, perms []domain.Permission) (domain.Role, error) {
	if err := simulateDelay(ctx, s.delay); err != nil {
		return domain.Role{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.roles, func(r domain.Role) bool { return r.ID == id })
	if i < 0 {
		return domain.Role{}, fmt.Errorf("role %d: %w", id, domain.ErrNotFound)
	}
	s.roles[i].Permissions = domain.NormalizePermissions(perms)
	return s.roles[i].Clone(), nil
}

func (s *MemRoleStore) Remove(ctx context.Context, id int64) (int64, error) {
	if err := simulateDelay(ctx, s.delay); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles = slices.DeleteFunc(s.roles, func(r domain.Role) bool { return r.ID == id })
	return id, nil
}
