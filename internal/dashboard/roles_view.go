package dashboard

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"user-role-admin/internal/domain"
	"user-role-admin/internal/service"
)

// RolesView 角色页：角色列表 + 新建弹窗 + 管理弹窗（勾选权限、保存、删除）
type RolesView struct {
	editor *service.RoleEditor

	mu      sync.Mutex
	roles   []domain.Role
	loaded  bool
	addOpen bool
	draft   domain.RoleDraft
	// 管理弹窗：managed == 0 表示未打开
	managed    int64
	draftPerms []domain.Permission

	notice   *notifier
	inflight *guard
}

func NewRolesView(editor *service.RoleEditor, opts Options) *RolesView {
	opts = opts.withDefaults()
	return &RolesView{editor: editor, notice: newNotifier(opts.NoticeTTL), inflight: newGuard()}
}

func (v *RolesView) Load(ctx context.Context, force bool) error {
	v.mu.Lock()
	if v.loaded && !force {
		v.mu.Unlock()
		return nil
	}
	v.mu.Unlock()

	roles, err := v.editor.List(ctx)
	if err != nil {
		v.notice.show(service.Failure("Failed to load roles. Please try again."))
		return err
	}
	v.mu.Lock()
	v.roles, v.loaded = roles, true
	v.mu.Unlock()
	return nil
}

func (v *RolesView) Roles() []domain.Role {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]domain.Role, 0, len(v.roles))
	for _, r := range v.roles {
		out = append(out, r.Clone())
	}
	return out
}

func (v *RolesView) OpenAdd() {
	v.mu.Lock()
	v.addOpen, v.draft = true, domain.RoleDraft{}
	v.mu.Unlock()
}

func (v *RolesView) CloseAdd() {
	v.mu.Lock()
	v.addOpen, v.draft = false, domain.RoleDraft{}
	v.mu.Unlock()
}

func (v *RolesView) AddOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.addOpen
}

func (v *RolesView) SetDraftName(name string) {
	v.mu.Lock()
	v.draft.Name = name
	v.mu.Unlock()
}

// ToggleDraftPermission 新建弹窗里的勾选
func (v *RolesView) ToggleDraftPermission(p domain.Permission) []domain.Permission {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.draft.Permissions = domain.TogglePermission(v.draft.Permissions, p)
	return slices.Clone(v.draft.Permissions)
}

func (v *RolesView) Draft() domain.RoleDraft {
	v.mu.Lock()
	defer v.mu.Unlock()
	d := v.draft
	d.Permissions = slices.Clone(d.Permissions)
	return d
}

func (v *RolesView) SubmitAdd(ctx context.Context) (domain.Role, error) {
	if !v.inflight.acquire() {
		return domain.Role{}, domain.ErrBusy
	}
	defer v.inflight.release()

	r, n, err := v.editor.Create(ctx, v.Draft())
	v.notice.show(n)
	if err != nil {
		return domain.Role{}, err
	}
	v.mu.Lock()
	v.roles = append(v.roles, r.Clone())
	v.addOpen, v.draft = false, domain.RoleDraft{}
	v.mu.Unlock()
	return r, nil
}

// OpenManage 以角色当前权限为草稿打开管理弹窗
func (v *RolesView) OpenManage(id int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := slices.IndexFunc(v.roles, func(r domain.Role) bool { return r.ID == id })
	if i < 0 {
		return fmt.Errorf("role %d: %w", id, domain.ErrNotFound)
	}
	v.managed = id
	v.draftPerms = slices.Clone(v.roles[i].Permissions)
	return nil
}

func (v *RolesView) CloseManage() {
	v.mu.Lock()
	v.managed, v.draftPerms = 0, nil
	v.mu.Unlock()
}

// Managed 当前管理中的角色 id 和草稿权限
func (v *RolesView) Managed() (int64, []domain.Permission) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.managed, slices.Clone(v.draftPerms)
}

// TogglePermission 只改草稿，Save 前不影响本地集合
func (v *RolesView) TogglePermission(p domain.Permission) ([]domain.Permission, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.managed == 0 {
		return nil, fmt.Errorf("no role selected: %w", domain.ErrNotFound)
	}
	v.draftPerms = domain.NormalizePermissions(domain.TogglePermission(v.draftPerms, p))
	return slices.Clone(v.draftPerms), nil
}

func (v *RolesView) SaveManage(ctx context.Context) (domain.Role, error) {
	if !v.inflight.acquire() {
		return domain.Role{}, domain.ErrBusy
	}
	defer v.inflight.release()

	id, perms := v.Managed()
	if id == 0 {
		return domain.Role{}, fmt.Errorf("no role selected: %w", domain.ErrNotFound)
	}
	r, n, err := v.editor.SetPermissions(ctx, id, perms)
	v.notice.show(n)
	if err != nil {
		return domain.Role{}, err
	}
	v.mu.Lock()
	if i := slices.IndexFunc(v.roles, func(x domain.Role) bool { return x.ID == r.ID }); i >= 0 {
		v.roles[i] = r.Clone()
	}
	v.managed, v.draftPerms = 0, nil
	v.mu.Unlock()
	return r, nil
}

// DeleteManaged 删除管理中的角色；被占用时弹窗保持打开
func (v *RolesView) DeleteManaged(ctx context.Context) error {
	if !v.inflight.acquire() {
		return domain.ErrBusy
	}
	defer v.inflight.release()

	id, _ := v.Managed()
	if id == 0 {
		return fmt.Errorf("no role selected: %w", domain.ErrNotFound)
	}
	removed, n, err := v.editor.Delete(ctx, id)
	v.notice.show(n)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.roles = slices.DeleteFunc(v.roles, func(r domain.Role) bool { return r.ID == removed })
	v.managed, v.draftPerms = 0, nil
	v.mu.Unlock()
	return nil
}

func (v *RolesView) Notification() Notification { return v.notice.current() }
func (v *RolesView) DismissNotification()       { v.notice.dismiss() }
func (v *RolesView) Busy() bool                 { return v.inflight.Busy() }
