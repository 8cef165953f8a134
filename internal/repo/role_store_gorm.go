package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"user-role-admin/internal/domain"
)

type GormRoleStore struct{ db *gorm.DB }

func NewGormRoleStore(db *gorm.DB) *GormRoleStore { return &GormRoleStore{db: db} }

func (r *GormRoleStore) List(ctx context.Context) ([]domain.Role, error) {
	var ms []RoleModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&ms).Error; err != nil {
		return nil, unavailable(err)
	}
	out := make([]domain.Role, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *GormRoleStore) Create(ctx context.Context, d domain.RoleDraft) (domain.Role, error) {
	var out domain.Role
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dup int64
		if err := tx.Model(&RoleModel{}).Where("LOWER(name) = LOWER(?)", d.Name).Count(&dup).Error; err != nil {
			return unavailable(err)
		}
		if dup > 0 {
			return fmt.Errorf("role %q: %w", d.Name, domain.ErrDuplicateName)
		}
		var maxID int64
		if err := tx.Model(&RoleModel{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
			return unavailable(err)
		}
		perms := domain.NormalizePermissions(d.Permissions)
		m := RoleModel{ID: domain.NextID(maxID), Name: d.Name, Permissions: permStrings(perms)}
		if err := tx.Create(&m).Error; err != nil {
			return unavailable(err)
		}
		out = m.toDomain()
		return nil
	})
	if err != nil {
		return domain.Role{}, err
	}
	return out, nil
}

func (r *GormRoleStore) Update(ctx context.Context, id int64, perms []domain.Permission) (domain.Role, error) {
	var out domain.Role
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m RoleModel
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("role %d: %w", id, domain.ErrNotFound)
			}
			return unavailable(err)
		}
		m.Permissions = permStrings(domain.NormalizePermissions(perms))
		if err := tx.Model(&m).Select("permissions").Updates(&m).Error; err != nil {
			return unavailable(err)
		}
		out = m.toDomain()
		return nil
	})
	if err != nil {
		return domain.Role{}, err
	}
	return out, nil
}

func (r *GormRoleStore) Remove(ctx context.Context, id int64) (int64, error) {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&RoleModel{}).Error; err != nil {
		return 0, unavailable(err)
	}
	return id, nil
}

// SeedRoles 空表时写入默认角色
func SeedRoles(ctx context.Context, db *gorm.DB, roles []domain.Role) error {
	var n int64
	if err := db.WithContext(ctx).Model(&RoleModel{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 || len(roles) == 0 {
		return nil
	}
	ms := make([]RoleModel, 0, len(roles))
	for _, r := range roles {
		ms = append(ms, RoleModel{ID: r.ID, Name: r.Name, Permissions: permStrings(r.Permissions)})
	}
	return db.WithContext(ctx).Create(&ms).Error
}

// SeedUsers 空表时写入初始用户
func SeedUsers(ctx context.Context, db *gorm.DB, users []domain.User) error {
	var n int64
	if err := db.WithContext(ctx).Model(&UserModel{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 || len(users) == 0 {
		return nil
	}
	ms := make([]UserModel, 0, len(users))
	for _, u := range users {
		ms = append(ms, userModelOf(u))
	}
	return db.WithContext(ctx).Create(&ms).Error
}
