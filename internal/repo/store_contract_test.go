package repo

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-role-admin/internal/domain"
)

type (
	newUserStore func(t *testing.T, seed []domain.User) domain.UserStore
	newRoleStore func(t *testing.T, seed []domain.Role) domain.RoleStore
)

func intp(n int) *int { return &n }

func threeUsers() []domain.User {
	return []domain.User{
		{ID: 1, Name: "alice", Projects: 1, Role: domain.RoleAdmin, Status: domain.StatusActive, Expiration: domain.NewDate(2030, 1, 1)},
		{ID: 2, Name: "bob", Projects: 2, Role: domain.RoleEditor, Status: domain.StatusActive, Expiration: domain.NewDate(2030, 2, 1)},
		{ID: 3, Name: "carol", Projects: 3, Role: domain.RoleViewer, Status: domain.StatusInactive, Expiration: domain.NewDate(2030, 3, 1)},
	}
}

func draft(name string) domain.UserDraft {
	return domain.UserDraft{Name: name, Role: domain.RoleViewer, Projects: intp(0), Expiration: domain.NewDate(2099, 1, 1)}
}

// userStoreSuite MemUserStore 与 GormUserStore 共用的行为约定
func userStoreSuite(t *testing.T, open newUserStore) {
	ctx := context.Background()

	t.Run("list returns seed in id order", func(t *testing.T) {
		s := open(t, threeUsers())
		all, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, threeUsers(), all)
	})

	t.Run("create assigns next id", func(t *testing.T) {
		s := open(t, threeUsers())
		d := draft("dana")
		d.Projects = intp(2)
		u, err := s.Create(ctx, d)
		require.NoError(t, err)
		assert.Equal(t, int64(4), u.ID)
		assert.Equal(t, domain.StatusActive, u.Status)

		all, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 4)
		assert.Contains(t, all, u)
	})

	t.Run("ids strictly increasing", func(t *testing.T) {
		s := open(t, nil)
		var last int64
		for _, name := range []string{"a", "b", "c", "d", "e"} {
			u, err := s.Create(ctx, draft(name))
			require.NoError(t, err)
			assert.Greater(t, u.ID, last)
			last = u.ID
		}
		assert.Equal(t, int64(5), last)
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		s := open(t, threeUsers())
		_, err := s.Create(ctx, draft("bob"))
		assert.ErrorIs(t, err, domain.ErrDuplicateName)

		all, _ := s.List(ctx)
		assert.Len(t, all, 3)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		s := open(t, threeUsers())
		for i := 0; i < 2; i++ {
			id, err := s.Remove(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, int64(2), id)
		}
		all, _ := s.List(ctx)
		assert.Equal(t, []domain.User{threeUsers()[0], threeUsers()[2]}, all)
	})

	t.Run("update changes only given field", func(t *testing.T) {
		s := open(t, threeUsers())
		st := domain.StatusInactive
		u, err := s.Update(ctx, 1, domain.UserPatch{Status: &st})
		require.NoError(t, err)

		want := threeUsers()[0]
		want.Status = domain.StatusInactive
		assert.Equal(t, want, u)

		all, _ := s.List(ctx)
		assert.Equal(t, want, all[0])
		assert.Equal(t, threeUsers()[1:], all[1:])
	})

	t.Run("update writes zero projects", func(t *testing.T) {
		s := open(t, threeUsers())
		u, err := s.Update(ctx, 1, domain.UserPatch{Projects: intp(0)})
		require.NoError(t, err)
		assert.Equal(t, 0, u.Projects)

		all, _ := s.List(ctx)
		assert.Equal(t, 0, all[0].Projects)
	})

	t.Run("update missing is not found", func(t *testing.T) {
		s := open(t, threeUsers())
		role := domain.RoleAdmin
		_, err := s.Update(ctx, 42, domain.UserPatch{Role: &role})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("list is a copy", func(t *testing.T) {
		s := open(t, threeUsers())
		all, _ := s.List(ctx)
		all[0].Name = "mutated"

		again, _ := s.List(ctx)
		assert.Equal(t, "alice", again[0].Name)
	})

	t.Run("cancelled context is unavailable", func(t *testing.T) {
		s := open(t, threeUsers())
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.List(cctx)
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})

	t.Run("concurrent updates last write wins", func(t *testing.T) {
		s := open(t, threeUsers())
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_, _ = s.Update(ctx, 1, domain.UserPatch{Projects: intp(n)})
			}(i)
		}
		wg.Wait()

		u, err := s.Update(ctx, 1, domain.UserPatch{Projects: intp(99)})
		require.NoError(t, err)
		assert.Equal(t, 99, u.Projects)
		all, _ := s.List(ctx)
		assert.Equal(t, 99, all[0].Projects)
	})
}

func roleStoreSuite(t *testing.T, open newRoleStore) {
	ctx := context.Background()

	t.Run("list returns seed", func(t *testing.T) {
		s := open(t, domain.DefaultRoles())
		roles, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultRoles(), roles)
	})

	t.Run("create is case-insensitive unique", func(t *testing.T) {
		s := open(t, []domain.Role{{ID: 1, Name: "Admin", Permissions: []domain.Permission{domain.PermRead}}})

		_, err := s.Create(ctx, domain.RoleDraft{Name: "admin", Permissions: []domain.Permission{domain.PermRead}})
		assert.ErrorIs(t, err, domain.ErrDuplicateName)

		r, err := s.Create(ctx, domain.RoleDraft{
			Name:        "Auditor",
			Permissions: []domain.Permission{domain.PermViewLogs, domain.PermRead, domain.PermViewLogs},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), r.ID)
		assert.Equal(t, []domain.Permission{domain.PermRead, domain.PermViewLogs}, r.Permissions)

		roles, _ := s.List(ctx)
		assert.Equal(t, r, roles[1])
	})

	t.Run("update replaces permissions", func(t *testing.T) {
		s := open(t, domain.DefaultRoles())
		r, err := s.Update(ctx, 3, []domain.Permission{domain.PermExportData, domain.PermRead})
		require.NoError(t, err)
		assert.Equal(t, []domain.Permission{domain.PermRead, domain.PermExportData}, r.Permissions)

		roles, _ := s.List(ctx)
		assert.Equal(t, r, roles[2])

		_, err = s.Update(ctx, 99, nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("update accepts empty set", func(t *testing.T) {
		s := open(t, domain.DefaultRoles())
		r, err := s.Update(ctx, 2, nil)
		require.NoError(t, err)
		assert.Empty(t, r.Permissions)

		roles, _ := s.List(ctx)
		assert.Empty(t, roles[1].Permissions)
		assert.NotNil(t, roles[1].Permissions)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		s := open(t, domain.DefaultRoles())
		for i := 0; i < 2; i++ {
			_, err := s.Remove(ctx, 2)
			require.NoError(t, err)
		}
		roles, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, roles, 2)
		assert.Equal(t, []int64{1, 3}, []int64{roles[0].ID, roles[1].ID})
	})

	t.Run("list is a copy", func(t *testing.T) {
		s := open(t, domain.DefaultRoles())
		roles, _ := s.List(ctx)
		roles[0].Permissions[0] = domain.PermExecute

		again, _ := s.List(ctx)
		assert.Equal(t, domain.PermRead, again[0].Permissions[0])
	})
}
