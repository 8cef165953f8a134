package domain

import "context"

// RoleName 用户可选角色（固定枚举）
type RoleName string

const (
	RoleAdmin  RoleName = "Admin"
	RoleEditor RoleName = "Editor"
	RoleViewer RoleName = "Viewer"
)

// RoleNames 下拉顺序
var RoleNames = []RoleName{RoleAdmin, RoleEditor, RoleViewer}

func (r RoleName) Valid() bool {
	for _, v := range RoleNames {
		if v == r {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

var Statuses = []Status{StatusActive, StatusInactive}

func (s Status) Valid() bool { return s == StatusActive || s == StatusInactive }

type User struct {
	ID         int64    `json:"id"`
	Name       string   `json:"user"`
	Projects   int      `json:"projects"`
	Role       RoleName `json:"role"`
	Status     Status   `json:"status"`
	Expiration Date     `json:"expiration"`
}

// UserDraft 新建表单里的草稿，尚未分配 ID
type UserDraft struct {
	Name       string   `json:"user"`
	Projects   *int     `json:"projects"`
	Role       RoleName `json:"role"`
	Status     Status   `json:"status"`
	Expiration Date     `json:"expiration"`
}

// UserPatch 部分字段更新，nil 表示不改
type UserPatch struct {
	Name       *string   `json:"user,omitempty"`
	Projects   *int      `json:"projects,omitempty"`
	Role       *RoleName `json:"role,omitempty"`
	Status     *Status   `json:"status,omitempty"`
	Expiration *Date     `json:"expiration,omitempty"`
}

func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Projects == nil && p.Role == nil && p.Status == nil && p.Expiration == nil
}

// Apply 把非空字段合并进 u，ID 不变
func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Projects != nil {
		u.Projects = *p.Projects
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	if p.Expiration != nil {
		u.Expiration = *p.Expiration
	}
	return u
}

// Build 草稿转记录（ID 由存储层填）
func (d UserDraft) Build(id int64) User {
	u := User{
		ID:         id,
		Name:       d.Name,
		Role:       d.Role,
		Status:     d.Status,
		Expiration: d.Expiration,
	}
	if d.Projects != nil {
		u.Projects = *d.Projects
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	return u
}

// UserStore 用户数据源。List 返回副本，调用方改结果不影响存储。
type UserStore interface {
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, d UserDraft) (User, error)
	Remove(ctx context.Context, id int64) (int64, error)
	Update(ctx context.Context, id int64, p UserPatch) (User, error)
}

// NextID max(ids, 0) + 1
func NextID(ids ...int64) int64 {
	var m int64
	for _, id := range ids {
		if id > m {
			m = id
		}
	}
	return m + 1
}
