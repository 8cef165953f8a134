package domain

import "errors"

var (
	ErrValidationFailed = errors.New("validation failed")
	ErrDuplicateName    = errors.New("duplicate name")
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrRoleInUse 仍有用户持有该角色，禁止删除
	ErrRoleInUse = errors.New("role in use")
	// ErrBusy 同一操作还在进行中
	ErrBusy = errors.New("operation in flight")
)
