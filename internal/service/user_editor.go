package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"user-role-admin/internal/domain"
)

// UserEditor 用户表单流程：校验 -> 存储 -> 提示
type UserEditor struct {
	store domain.UserStore
	log   *zap.Logger
	now   func() time.Time
}

func NewUserEditor(store domain.UserStore, l *zap.Logger) *UserEditor {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserEditor{store: store, log: l, now: time.Now}
}

// WithClock 测试里固定“今天”
func (e *UserEditor) WithClock(now func() time.Time) *UserEditor {
	e.now = now
	return e
}

func (e *UserEditor) Today() domain.Date { return domain.DateOf(e.now()) }

func (e *UserEditor) List(ctx context.Context) ([]domain.User, error) {
	users, err := e.store.List(ctx)
	if err != nil {
		e.log.Warn("list users failed", zap.Error(err))
		return nil, err
	}
	return users, nil
}

// Create 同名并发提交由存储串行判重，后到者得到 ErrDuplicateName
func (e *UserEditor) Create(ctx context.Context, d domain.UserDraft) (domain.User, Notice, error) {
	d, err := ValidateUserDraft(d, e.Today())
	if err != nil {
		return domain.User{}, Failure(firstFieldError(err, "Please fix the highlighted fields.")), err
	}

	u, err := e.store.Create(ctx, d)
	if err != nil {
		e.log.Warn("create user failed", zap.String("name", d.Name), zap.Error(err))
		if errors.Is(err, domain.ErrDuplicateName) {
			return domain.User{}, Failure(fmt.Sprintf("User %q already exists.", d.Name)), err
		}
		return domain.User{}, Failure("Failed to add user. Please try again."), err
	}
	e.log.Info("user created", zap.Int64("id", u.ID), zap.String("name", u.Name))
	return u, Success(fmt.Sprintf("User %q added successfully.", u.Name)), nil
}

func (e *UserEditor) Update(ctx context.Context, id int64, p domain.UserPatch) (domain.User, Notice, error) {
	p, err := ValidateUserPatch(p, e.Today())
	if err != nil {
		return domain.User{}, Failure(firstFieldError(err, "Please fix the highlighted fields.")), err
	}
	u, err := e.store.Update(ctx, id, p)
	if err != nil {
		e.log.Warn("update user failed", zap.Int64("id", id), zap.Error(err))
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, Failure("User not found."), err
		}
		return domain.User{}, Failure("Failed to update user. Please try again."), err
	}
	e.log.Info("user updated", zap.Int64("id", id))
	return u, Success(updateMessage(u, p)), nil
}

func (e *UserEditor) ChangeRole(ctx context.Context, id int64, role domain.RoleName) (domain.User, Notice, error) {
	return e.Update(ctx, id, domain.UserPatch{Role: &role})
}

func (e *UserEditor) ChangeStatus(ctx context.Context, id int64, st domain.Status) (domain.User, Notice, error) {
	return e.Update(ctx, id, domain.UserPatch{Status: &st})
}

// ChangeExpiration 过去的日期直接拒绝，不调存储
func (e *UserEditor) ChangeExpiration(ctx context.Context, id int64, d domain.Date) (domain.User, Notice, error) {
	if !d.IsZero() && d.Before(e.Today()) {
		err := invalid(errors.New("expiration date is in the past"))
		return domain.User{}, Failure("Expiration date cannot be in the past."), err
	}
	return e.Update(ctx, id, domain.UserPatch{Expiration: &d})
}

// Delete 先确认存在，缺失返回 ErrNotFound；存储层 Remove 本身幂等
func (e *UserEditor) Delete(ctx context.Context, id int64) (int64, Notice, error) {
	users, err := e.store.List(ctx)
	if err != nil {
		return 0, Failure("Failed to delete user. Please try again."), err
	}
	if !slices.ContainsFunc(users, func(u domain.User) bool { return u.ID == id }) {
		err := fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
		return 0, Failure("User not found."), err
	}
	return e.Remove(ctx, id)
}

// Remove 不做存在性检查（界面上本地集合已经确认过）
func (e *UserEditor) Remove(ctx context.Context, id int64) (int64, Notice, error) {
	out, err := e.store.Remove(ctx, id)
	if err != nil {
		e.log.Warn("delete user failed", zap.Int64("id", id), zap.Error(err))
		return 0, Failure("Failed to delete user. Please try again."), err
	}
	e.log.Info("user deleted", zap.Int64("id", id))
	return out, Success("User deleted successfully."), nil
}

func updateMessage(u domain.User, p domain.UserPatch) string {
	switch {
	case p.Role != nil && p.Status == nil && p.Expiration == nil && p.Name == nil && p.Projects == nil:
		return fmt.Sprintf("Role updated to %q successfully.", string(u.Role))
	case p.Status != nil && p.Role == nil && p.Expiration == nil && p.Name == nil && p.Projects == nil:
		return fmt.Sprintf("Status updated to %q successfully.", string(u.Status))
	case p.Expiration != nil && p.Role == nil && p.Status == nil && p.Name == nil && p.Projects == nil:
		return fmt.Sprintf("Expiration date updated to %q successfully.", u.Expiration.String())
	}
	return fmt.Sprintf("User %q updated successfully.", u.Name)
}

// firstFieldError 取一个字段错误做提示（按字段名排序，保证稳定）
func firstFieldError(err error, fallback string) string {
	fields := FieldErrors(err)
	if len(fields) == 0 {
		return fallback
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return fields[keys[0]]
}
