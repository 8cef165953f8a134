package domain

import (
	"context"
	"slices"
	"strings"
)

type Permission string

const (
	PermRead              Permission = "Read"
	PermWrite             Permission = "Write"
	PermDelete            Permission = "Delete"
	PermExecute           Permission = "Execute"
	PermManageUsers       Permission = "Manage Users"
	PermConfigureSettings Permission = "Configure Settings"
	PermViewLogs          Permission = "View Logs"
	PermExportData        Permission = "Export Data"
)

// PermissionCatalog 可分配权限全集，也是展示顺序
var PermissionCatalog = []Permission{
	PermRead, PermWrite, PermDelete, PermExecute,
	PermManageUsers, PermConfigureSettings, PermViewLogs, PermExportData,
}

func (p Permission) Valid() bool { return slices.Contains(PermissionCatalog, p) }

// NormalizePermissions 去重并按目录顺序排列；目录外的值原样排在最后
func NormalizePermissions(ps []Permission) []Permission {
	seen := make(map[Permission]struct{}, len(ps))
	for _, p := range ps {
		seen[p] = struct{}{}
	}
	out := make([]Permission, 0, len(seen))
	for _, p := range PermissionCatalog {
		if _, ok := seen[p]; ok {
			out = append(out, p)
			delete(seen, p)
		}
	}
	for _, p := range ps {
		if _, ok := seen[p]; ok {
			out = append(out, p)
			delete(seen, p)
		}
	}
	return out
}

// TogglePermission 有则删、无则加，不改原切片
func TogglePermission(ps []Permission, p Permission) []Permission {
	if slices.Contains(ps, p) {
		out := make([]Permission, 0, len(ps))
		for _, v := range ps {
			if v != p {
				out = append(out, v)
			}
		}
		return out
	}
	return NormalizePermissions(append(slices.Clone(ps), p))
}

type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"role"`
	Permissions []Permission `json:"permissions"`
}

func (r Role) Clone() Role {
	r.Permissions = slices.Clone(r.Permissions)
	if r.Permissions == nil {
		r.Permissions = []Permission{}
	}
	return r
}

func (r Role) Has(p Permission) bool { return slices.Contains(r.Permissions, p) }

type RoleDraft struct {
	Name        string       `json:"role"`
	Permissions []Permission `json:"permissions"`
}

// SameRoleName 角色名比较不区分大小写
func SameRoleName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// RoleStore 角色数据源，契约同 UserStore
type RoleStore interface {
	List(ctx context.Context) ([]Role, error)
	Create(ctx context.Context, d RoleDraft) (Role, error)
	Update(ctx context.Context, id int64, perms []Permission) (Role, error)
	Remove(ctx context.Context, id int64) (int64, error)
}

// DefaultRoles 初始角色
func DefaultRoles() []Role {
	return []Role{
		{ID: 1, Name: string(RoleAdmin), Permissions: []Permission{PermRead, PermWrite, PermDelete, PermManageUsers}},
		{ID: 2, Name: string(RoleEditor), Permissions: []Permission{PermRead, PermWrite}},
		{ID: 3, Name: string(RoleViewer), Permissions: []Permission{PermRead}},
	}
}
