package service

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"user-role-admin/internal/domain"
)

var (
	roleValues   = []any{domain.RoleAdmin, domain.RoleEditor, domain.RoleViewer}
	statusValues = []any{domain.StatusActive, domain.StatusInactive}
)

func permissionValues() []any {
	out := make([]any, 0, len(domain.PermissionCatalog))
	for _, p := range domain.PermissionCatalog {
		out = append(out, p)
	}
	return out
}

// expirationRule 到期日必填且不早于 today
func expirationRule(today domain.Date) validation.RuleFunc {
	return func(value any) error {
		var d domain.Date
		switch v := value.(type) {
		case domain.Date:
			d = v
		case *domain.Date:
			if v == nil {
				return nil
			}
			d = *v
		}
		if d.IsZero() {
			return validation.NewError("expiration_required", "Expiration Date is required")
		}
		if d.Before(today) {
			return validation.NewError("expiration_in_past", "Expiration Date cannot be in the past")
		}
		return nil
	}
}

// ValidateUserDraft 先去掉首尾空格再校验
func ValidateUserDraft(d domain.UserDraft, today domain.Date) (domain.UserDraft, error) {
	d.Name = strings.TrimSpace(d.Name)
	err := validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required.Error("User Name is required")),
		validation.Field(&d.Projects,
			validation.NotNil.Error("Projects is required"),
			validation.Min(0).Error("Projects must be a non-negative number"),
		),
		validation.Field(&d.Role,
			validation.Required.Error("Role is required"),
			validation.In(roleValues...).Error("Role must be one of Admin, Editor, Viewer"),
		),
		validation.Field(&d.Status, validation.In(statusValues...).Error("Status must be Active or Inactive")),
		validation.Field(&d.Expiration, validation.By(expirationRule(today))),
	)
	if err != nil {
		return d, invalid(err)
	}
	if d.Status == "" {
		d.Status = domain.StatusActive
	}
	return d, nil
}

func ValidateUserPatch(p domain.UserPatch, today domain.Date) (domain.UserPatch, error) {
	if p.Empty() {
		return p, invalid(validation.Errors{"patch": validation.NewError("patch_empty", "nothing to update")})
	}
	if p.Name != nil {
		n := strings.TrimSpace(*p.Name)
		p.Name = &n
	}
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.NilOrNotEmpty.Error("User Name is required")),
		validation.Field(&p.Projects, validation.Min(0).Error("Projects must be a non-negative number")),
		validation.Field(&p.Role, validation.NilOrNotEmpty.Error("Role is required"), validation.In(roleValues...).Error("Role must be one of Admin, Editor, Viewer")),
		validation.Field(&p.Status, validation.NilOrNotEmpty.Error("Status is required"), validation.In(statusValues...).Error("Status must be Active or Inactive")),
		validation.Field(&p.Expiration, validation.By(expirationRule(today))),
	)
	if err != nil {
		return p, invalid(err)
	}
	return p, nil
}

func ValidateRoleDraft(d domain.RoleDraft, existing []domain.Role) (domain.RoleDraft, error) {
	d.Name = strings.TrimSpace(d.Name)
	err := validation.ValidateStruct(&d,
		validation.Field(&d.Name,
			validation.Required.Error("Role name is required"),
			validation.By(func(any) error {
				for _, r := range existing {
					if domain.SameRoleName(r.Name, d.Name) {
						return validation.NewError("role_not_unique", "Role name must be unique")
					}
				}
				return nil
			}),
		),
		validation.Field(&d.Permissions,
			validation.Required.Error("Select at least one permission"),
			validation.Each(validation.In(permissionValues()...).Error("unknown permission")),
		),
	)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			if fe, ok := verrs["role"].(validation.Error); ok && fe.Code() == "role_not_unique" {
				return d, fmt.Errorf("%w: %w", domain.ErrDuplicateName, err)
			}
		}
		return d, invalid(err)
	}
	d.Permissions = domain.NormalizePermissions(d.Permissions)
	return d, nil
}

func ValidatePermissions(ps []domain.Permission) error {
	err := validation.Validate(ps, validation.Each(validation.In(permissionValues()...).Error("unknown permission")))
	if err != nil {
		return invalid(validation.Errors{"permissions": err})
	}
	return nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrValidationFailed, err)
}

// FieldErrors 取出字段级错误信息
func FieldErrors(err error) map[string]string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for k, v := range verrs {
		if v != nil {
			out[k] = v.Error()
		}
	}
	return out
}
