package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"user-role-admin/internal/domain"
	"user-role-admin/internal/service"
	httpez "user-role-admin/internal/transport/http/ez"
)

// OptionsHandler 前端下拉框与勾选项
type OptionsHandler struct {
	PageSize int
}

type optionsOut struct {
	Roles       []domain.RoleName   `json:"roles"`
	Statuses    []domain.Status     `json:"statuses"`
	SortKeys    []service.SortKey   `json:"sortKeys"`
	Permissions []domain.Permission `json:"permissions"`
	PageSize    int                 `json:"pageSize"`
}

func (h OptionsHandler) MountAdmin(g *gin.RouterGroup) {
	httpez.RegisterAction(httpez.New(g), httpez.Action[struct{}, optionsOut]{
		Method: http.MethodGet,
		Path:   "/options",
		Binder: httpez.BindNone,
		Handler: func(*gin.Context, *struct{}) (optionsOut, error) {
			size := h.PageSize
			if size < 1 {
				size = service.DefaultPageSize
			}
			return optionsOut{
				Roles:       domain.RoleNames,
				Statuses:    domain.Statuses,
				SortKeys:    service.SortKeys,
				Permissions: domain.PermissionCatalog,
				PageSize:    size,
			}, nil
		},
	})
}
