package repo

import (
	"time"

	"user-role-admin/internal/domain"
)

type UserModel struct {
	ID         int64     `gorm:"primaryKey;autoIncrement:false"`
	Name       string    `gorm:"size:64;not null;index"`
	Projects   int       `gorm:"not null;default:0"`
	Role       string    `gorm:"size:16;not null"`
	Status     string    `gorm:"size:16;not null;default:Active"`
	Expiration time.Time `gorm:"type:date"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }

func (m UserModel) toDomain() domain.User {
	return domain.User{
		ID:         m.ID,
		Name:       m.Name,
		Projects:   m.Projects,
		Role:       domain.RoleName(m.Role),
		Status:     domain.Status(m.Status),
		Expiration: domain.DateOf(m.Expiration),
	}
}

func userModelOf(u domain.User) UserModel {
	return UserModel{
		ID:         u.ID,
		Name:       u.Name,
		Projects:   u.Projects,
		Role:       string(u.Role),
		Status:     string(u.Status),
		Expiration: u.Expiration.Time(),
	}
}

type RoleModel struct {
	ID          int64    `gorm:"primaryKey;autoIncrement:false"`
	Name        string   `gorm:"size:64;not null;uniqueIndex"`
	Permissions []string `gorm:"type:text;serializer:json"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (RoleModel) TableName() string { return "roles" }

func (m RoleModel) toDomain() domain.Role {
	perms := make([]domain.Permission, 0, len(m.Permissions))
	for _, p := range m.Permissions {
		perms = append(perms, domain.Permission(p))
	}
	return domain.Role{ID: m.ID, Name: m.Name, Permissions: perms}
}

func permStrings(ps []domain.Permission) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, string(p))
	}
	return out
}

// Models 需要自动迁移的表
func Models() []any { return []any{&UserModel{}, &RoleModel{}} }
