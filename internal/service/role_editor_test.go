package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-role-admin/internal/domain"
	"user-role-admin/internal/repo"
)

func newRoleEditor(users []domain.User) (*RoleEditor, *repo.MemRoleStore) {
	roles := repo.NewMemRoleStore(domain.DefaultRoles(), 0)
	return NewRoleEditor(roles, repo.NewMemUserStore(users, 0), nil), roles
}

func TestRoleEditor_Create(t *testing.T) {
	e, _ := newRoleEditor(nil)
	r, n, err := e.Create(context.Background(), domain.RoleDraft{
		Name:        " Auditor ",
		Permissions: []domain.Permission{domain.PermViewLogs, domain.PermRead, domain.PermRead},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), r.ID)
	assert.Equal(t, "Auditor", r.Name)
	assert.Equal(t, []domain.Permission{domain.PermRead, domain.PermViewLogs}, r.Permissions)
	assert.Equal(t, `Role "Auditor" created successfully.`, n.Message)
}

func TestRoleEditor_CreateDuplicateIgnoresCase(t *testing.T) {
	e, roles := newRoleEditor(nil)
	_, n, err := e.Create(context.Background(), domain.RoleDraft{Name: "admin", Permissions: []domain.Permission{domain.PermRead}})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
	assert.True(t, n.IsError())

	all, _ := roles.List(context.Background())
	assert.Len(t, all, 3)
}

func TestRoleEditor_CreateValidation(t *testing.T) {
	e, _ := newRoleEditor(nil)
	ctx := context.Background()

	_, _, err := e.Create(ctx, domain.RoleDraft{Name: "", Permissions: []domain.Permission{domain.PermRead}})
	require.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Contains(t, FieldErrors(err), "role")

	_, _, err = e.Create(ctx, domain.RoleDraft{Name: "Empty"})
	require.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Contains(t, FieldErrors(err), "permissions")

	_, _, err = e.Create(ctx, domain.RoleDraft{Name: "Odd", Permissions: []domain.Permission{"Fly"}})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestRoleEditor_SetPermissionsAndToggle(t *testing.T) {
	e, _ := newRoleEditor(nil)
	ctx := context.Background()

	r, n, err := e.SetPermissions(ctx, 3, []domain.Permission{domain.PermExportData, domain.PermRead})
	require.NoError(t, err)
	assert.Equal(t, []domain.Permission{domain.PermRead, domain.PermExportData}, r.Permissions)
	assert.Equal(t, `Role "Viewer" updated successfully.`, n.Message)

	r, _, err = e.Toggle(ctx, 3, domain.PermRead)
	require.NoError(t, err)
	assert.Equal(t, []domain.Permission{domain.PermExportData}, r.Permissions)

	r, _, err = e.Toggle(ctx, 3, domain.PermRead)
	require.NoError(t, err)
	assert.Equal(t, []domain.Permission{domain.PermRead, domain.PermExportData}, r.Permissions)

	_, _, err = e.Toggle(ctx, 3, "Fly")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	_, _, err = e.SetPermissions(ctx, 42, []domain.Permission{domain.PermRead})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRoleEditor_DeleteBlockedWhileAssigned(t *testing.T) {
	e, roles := newRoleEditor(seedThree())
	ctx := context.Background()

	_, n, err := e.Delete(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrRoleInUse)
	assert.Contains(t, n.Message, "Editor")

	all, _ := roles.List(ctx)
	assert.Len(t, all, 3)
}

func TestRoleEditor_Delete(t *testing.T) {
	e, roles := newRoleEditor(nil)
	ctx := context.Background()

	id, n, err := e.Delete(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
	assert.Equal(t, `Role "Editor" deleted successfully.`, n.Message)

	_, _, err = e.Delete(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, _ := roles.List(ctx)
	assert.Len(t, all, 2)
}

type downRoleStore struct{ domain.RoleStore }

func (downRoleStore) List(context.Context) ([]domain.Role, error) {
	return nil, domain.ErrStoreUnavailable
}

func TestRoleEditor_ToggleLookupFailures(t *testing.T) {
	ctx := context.Background()

	e, _ := newRoleEditor(nil)
	_, n, err := e.Toggle(ctx, 99, domain.PermRead)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Role not found.", n.Message)

	down := NewRoleEditor(downRoleStore{repo.NewMemRoleStore(domain.DefaultRoles(), 0)}, nil, nil)
	_, n, err = down.Toggle(ctx, 1, domain.PermRead)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Failed to update role. Please try again.", n.Message)
	assert.True(t, n.IsError())
}

func TestRoleEditor_CustomRoleCannotGainHolders(t *testing.T) {
	ctx := context.Background()
	users := repo.NewMemUserStore(seedThree(), 0)
	roles := NewRoleEditor(repo.NewMemRoleStore(domain.DefaultRoles(), 0), users, nil)
	editor := NewUserEditor(users, nil).WithClock(func() time.Time { return fixedNow })

	r, _, err := roles.Create(ctx, domain.RoleDraft{Name: "Auditor", Permissions: []domain.Permission{domain.PermViewLogs}})
	require.NoError(t, err)

	_, _, err = editor.ChangeRole(ctx, 1, domain.RoleName(r.Name))
	require.ErrorIs(t, err, domain.ErrValidationFailed)

	_, _, err = roles.Delete(ctx, r.ID)
	assert.NoError(t, err)
}
