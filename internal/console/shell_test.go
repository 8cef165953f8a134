package console

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-role-admin/internal/dashboard"
	"user-role-admin/internal/domain"
	"user-role-admin/internal/repo"
	"user-role-admin/internal/service"
)

func newShell(n int) (*Shell, *bytes.Buffer) {
	users := make([]domain.User, 0, n)
	for i := 1; i <= n; i++ {
		users = append(users, domain.User{
			ID: int64(i), Name: fmt.Sprintf("user%02d", i), Role: domain.RoleViewer,
			Status: domain.StatusActive, Expiration: domain.NewDate(2030, 1, 1),
		})
	}
	us := repo.NewMemUserStore(users, 0)
	rs := repo.NewMemRoleStore(domain.DefaultRoles(), 0)
	now := func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	opts := dashboard.Options{NoticeTTL: time.Hour}

	uv := dashboard.NewUsersView(service.NewUserEditor(us, nil).WithClock(now), opts)
	rv := dashboard.NewRolesView(service.NewRoleEditor(rs, us, nil), opts)
	out := &bytes.Buffer{}
	return New(uv, rv, out), out
}

func TestShell_RunRoutesBetweenViews(t *testing.T) {
	sh, out := newShell(20)
	in := strings.NewReader("next\nroles\nusers\nquit\nnext\n")
	require.NoError(t, sh.Run(context.Background(), in))

	s := out.String()
	assert.Contains(t, s, "page 1/2  total 20")
	assert.Contains(t, s, "page 2/2  total 20")
	assert.Contains(t, s, "Manage Users")
	assert.Contains(t, s, "roles> ")
	// next 一次，切回 users 重新渲染一次；quit 之后的 next 不执行
	assert.Equal(t, 2, strings.Count(s, "page 2/2"))
}

func TestShell_UserCommands(t *testing.T) {
	sh, out := newShell(3)
	ctx := context.Background()
	require.NoError(t, sh.mount(ctx, viewUsers))

	_, err := sh.Exec(ctx, "add dana 2 Viewer 2099-01-01")
	require.NoError(t, err)
	assert.Contains(t, out.String(), `[success] User "dana" added successfully.`)
	assert.Len(t, sh.users.Users(), 4)

	_, err = sh.Exec(ctx, "role 4 Admin")
	assert.ErrorContains(t, err, "edit mode")

	_, err = sh.Exec(ctx, "edit")
	require.NoError(t, err)
	_, err = sh.Exec(ctx, "role 4 Admin")
	require.NoError(t, err)
	assert.Contains(t, out.String(), `Role updated to "Admin" successfully.`)

	_, err = sh.Exec(ctx, "expire 4 2001-01-01")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Contains(t, out.String(), "[error] Expiration date cannot be in the past.")

	out.Reset()
	_, err = sh.Exec(ctx, "filter Admin")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "dana")
	assert.NotContains(t, out.String(), "user01")

	_, err = sh.Exec(ctx, "delete 4")
	require.NoError(t, err)
	assert.Len(t, sh.users.Users(), 3)

	_, err = sh.Exec(ctx, "sort bogus")
	assert.Error(t, err)
	_, err = sh.Exec(ctx, "fly")
	assert.ErrorContains(t, err, "unknown command")
}

func TestShell_RoleCommands(t *testing.T) {
	sh, out := newShell(0)
	ctx := context.Background()
	require.NoError(t, sh.mount(ctx, viewRoles))

	_, err := sh.Exec(ctx, "add Auditor view logs, Read")
	require.NoError(t, err)
	assert.Contains(t, out.String(), `Role "Auditor" created successfully.`)

	_, err = sh.Exec(ctx, "manage 4")
	require.NoError(t, err)
	_, err = sh.Exec(ctx, "toggle Export Data")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "managing role 4: [Read, View Logs, Export Data]")

	_, err = sh.Exec(ctx, "save")
	require.NoError(t, err)
	assert.Contains(t, out.String(), `Role "Auditor" updated successfully.`)

	_, err = sh.Exec(ctx, "manage 4")
	require.NoError(t, err)
	_, err = sh.Exec(ctx, "delete")
	require.NoError(t, err)
	assert.Len(t, sh.roles.Roles(), 3)

	_, err = sh.Exec(ctx, "save")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSplitPerms(t *testing.T) {
	got := splitPerms("manage users, READ ,, Fly")
	assert.Equal(t, []domain.Permission{domain.PermManageUsers, domain.PermRead, "Fly"}, got)
}

func TestParseUserDraft(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   string
		status domain.Status
		err    bool
	}{
		{"single word", "dana 2 Viewer 2099-01-01", "dana", "", false},
		{"name with spaces", "Dana Scully 2 Viewer 2099-01-01", "Dana Scully", "", false},
		{"quoted name with status", `"Fox Mulder" 1 Editor 2099-01-01 Inactive`, "Fox Mulder", domain.StatusInactive, false},
		{"too few fields", "dana 2 Viewer", "", "", true},
		{"bad projects", "dana x Viewer 2099-01-01", "", "", true},
		{"bad date", "dana 2 Viewer tomorrow", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := parseUserDraft(strings.Fields(tt.line))
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name)
			assert.Equal(t, tt.status, d.Status)
			assert.Equal(t, domain.NewDate(2099, 1, 1), d.Expiration)
		})
	}
}

func TestShell_AddUserWithSpacedName(t *testing.T) {
	sh, out := newShell(3)
	ctx := context.Background()
	require.NoError(t, sh.mount(ctx, viewUsers))

	_, err := sh.Exec(ctx, "add Dana Scully 2 Viewer 2099-01-01")
	require.NoError(t, err)
	assert.Contains(t, out.String(), `[success] User "Dana Scully" added successfully.`)
	users := sh.users.Users()
	require.Len(t, users, 4)
	assert.Equal(t, "Dana Scully", users[3].Name)
}
