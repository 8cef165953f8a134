package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"user-role-admin/internal/domain"
)

// GormUserStore 落库版本，契约与 MemUserStore 一致（ID 仍由存储层按 max+1 分配）
type GormUserStore struct{ db *gorm.DB }

func NewGormUserStore(db *gorm.DB) *GormUserStore { return &GormUserStore{db: db} }

func (r *GormUserStore) List(ctx context.Context) ([]domain.User, error) {
	var ms []UserModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&ms).Error; err != nil {
		return nil, unavailable(err)
	}
	out := make([]domain.User, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *GormUserStore) Create(ctx context.Context, d domain.UserDraft) (domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dup int64
		if err := tx.Model(&UserModel{}).Where("name = ?", d.Name).Count(&dup).Error; err != nil {
			return unavailable(err)
		}
		if dup > 0 {
			return fmt.Errorf("user %q: %w", d.Name, domain.ErrDuplicateName)
		}
		var maxID int64
		if err := tx.Model(&UserModel{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
			return unavailable(err)
		}
		u = d.Build(domain.NextID(maxID))
		m := userModelOf(u)
		if err := tx.Create(&m).Error; err != nil {
			return unavailable(err)
		}
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *GormUserStore) Remove(ctx context.Context, id int64) (int64, error) {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserModel{}).Error; err != nil {
		return 0, unavailable(err)
	}
	return id, nil
}

func (r *GormUserStore) Update(ctx context.Context, id int64, p domain.UserPatch) (domain.User, error) {
	var out domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m UserModel
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
			}
			return unavailable(err)
		}
		out = p.Apply(m.toDomain())
		next := userModelOf(out)
		// 显式 Select，零值字段（如 projects=0）也会写回
		if err := tx.Model(&m).Select("name", "projects", "role", "status", "expiration").Updates(&next).Error; err != nil {
			return unavailable(err)
		}
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return out, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
