package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"user-role-admin/internal/domain"
)

// RoleEditor 角色与权限管理；users 用于删除前检查是否仍有人持有
type RoleEditor struct {
	roles domain.RoleStore
	users domain.UserStore
	log   *zap.Logger
}

func NewRoleEditor(roles domain.RoleStore, users domain.UserStore, l *zap.Logger) *RoleEditor {
	if l == nil {
		l = zap.NewNop()
	}
	return &RoleEditor{roles: roles, users: users, log: l}
}

func (e *RoleEditor) List(ctx context.Context) ([]domain.Role, error) {
	return e.roles.List(ctx)
}

func (e *RoleEditor) Create(ctx context.Context, d domain.RoleDraft) (domain.Role, Notice, error) {
	existing, err := e.roles.List(ctx)
	if err != nil {
		return domain.Role{}, Failure("Failed to create role. Please try again."), err
	}
	d, err = ValidateRoleDraft(d, existing)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateName) {
			return domain.Role{}, Failure("Role name must be unique."), err
		}
		return domain.Role{}, Failure(firstFieldError(err, "Please fix the highlighted fields.")), err
	}
	r, err := e.roles.Create(ctx, d)
	if err != nil {
		e.log.Warn("create role failed", zap.String("name", d.Name), zap.Error(err))
		if errors.Is(err, domain.ErrDuplicateName) {
			return domain.Role{}, Failure("Role name must be unique."), err
		}
		return domain.Role{}, Failure("Failed to create role. Please try again."), err
	}
	e.log.Info("role created", zap.Int64("id", r.ID), zap.String("name", r.Name))
	return r, Success(fmt.Sprintf("Role %q created successfully.", r.Name)), nil
}

// SetPermissions 整体替换权限集合（管理弹窗里的 Save）
func (e *RoleEditor) SetPermissions(ctx context.Context, id int64, perms []domain.Permission) (domain.Role, Notice, error) {
	if err := ValidatePermissions(perms); err != nil {
		return domain.Role{}, Failure(firstFieldError(err, "Unknown permission.")), err
	}
	r, err := e.roles.Update(ctx, id, domain.NormalizePermissions(perms))
	if err != nil {
		e.log.Warn("update role failed", zap.Int64("id", id), zap.Error(err))
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Role{}, Failure("Role not found."), err
		}
		return domain.Role{}, Failure("Failed to update role. Please try again."), err
	}
	e.log.Info("role updated", zap.Int64("id", id), zap.Int("permissions", len(r.Permissions)))
	return r, Success(fmt.Sprintf("Role %q updated successfully.", r.Name)), nil
}

// Toggle 对已保存的角色切换单个权限
func (e *RoleEditor) Toggle(ctx context.Context, id int64, p domain.Permission) (domain.Role, Notice, error) {
	if !p.Valid() {
		err := invalid(fmt.Errorf("unknown permission %q", p))
		return domain.Role{}, Failure("Unknown permission."), err
	}
	r, err := e.find(ctx, id)
	if err != nil {
		e.log.Warn("toggle permission failed", zap.Int64("id", id), zap.Error(err))
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Role{}, Failure("Role not found."), err
		}
		return domain.Role{}, Failure("Failed to update role. Please try again."), err
	}
	return e.SetPermissions(ctx, id, domain.TogglePermission(r.Permissions, p))
}

// Delete 还有用户持有该角色时返回 ErrRoleInUse。
// 检查与删除不在同一事务里：用户角色只能取 Admin/Editor/Viewer，
// 新建的角色在两步之间不会被分配；若以后放开用户角色取值，需要把两步放进存储层事务。
func (e *RoleEditor) Delete(ctx context.Context, id int64) (int64, Notice, error) {
	r, err := e.find(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, Failure("Role not found."), err
		}
		return 0, Failure("Failed to delete role. Please try again."), err
	}
	if e.users != nil {
		users, err := e.users.List(ctx)
		if err != nil {
			return 0, Failure("Failed to delete role. Please try again."), err
		}
		n := 0
		for _, u := range users {
			if domain.SameRoleName(string(u.Role), r.Name) {
				n++
			}
		}
		if n > 0 {
			err := fmt.Errorf("role %q held by %d users: %w", r.Name, n, domain.ErrRoleInUse)
			return 0, Failure(fmt.Sprintf("Role %q is still assigned to %d user(s).", r.Name, n)), err
		}
	}
	out, err := e.roles.Remove(ctx, id)
	if err != nil {
		e.log.Warn("delete role failed", zap.Int64("id", id), zap.Error(err))
		return 0, Failure("Failed to delete role. Please try again."), err
	}
	e.log.Info("role deleted", zap.Int64("id", id), zap.String("name", r.Name))
	return out, Success(fmt.Sprintf("Role %q deleted successfully.", r.Name)), nil
}

func (e *RoleEditor) find(ctx context.Context, id int64) (domain.Role, error) {
	roles, err := e.roles.List(ctx)
	if err != nil {
		return domain.Role{}, err
	}
	i := slices.IndexFunc(roles, func(r domain.Role) bool { return r.ID == id })
	if i < 0 {
		return domain.Role{}, fmt.Errorf("role %d: %w", id, domain.ErrNotFound)
	}
	return roles[i], nil
}
