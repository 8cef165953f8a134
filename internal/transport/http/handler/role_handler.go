package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"user-role-admin/internal/domain"
	"user-role-admin/internal/service"
	httpez "user-role-admin/internal/transport/http/ez"
)

type RoleHandler struct {
	editor *service.RoleEditor
}

func NewRoleHandler(editor *service.RoleEditor) *RoleHandler {
	return &RoleHandler{editor: editor}
}

func (h *RoleHandler) Priority() int { return 20 }

type permissionsIn struct {
	Permissions []domain.Permission `json:"permissions"`
}

type toggleIn struct {
	Permission domain.Permission `json:"permission" binding:"required"`
}

func (h *RoleHandler) MountAdmin(g *gin.RouterGroup) {
	ez := httpez.New(g)

	httpez.RegisterAction(ez, httpez.Action[struct{}, []domain.Role]{
		Method: http.MethodGet,
		Path:   "/roles",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Role, error) {
			roles, err := h.editor.List(c.Request.Context())
			if err != nil {
				return nil, httpez.Fail("Failed to load roles. Please try again.", err)
			}
			return roles, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[domain.RoleDraft, domain.Role]{
		Method:  http.MethodPost,
		Path:    "/roles",
		Binder:  httpez.BindJSON,
		Created: true,
		Handler: func(c *gin.Context, in *domain.RoleDraft) (domain.Role, error) {
			r, n, err := h.editor.Create(c.Request.Context(), *in)
			if err != nil {
				return domain.Role{}, httpez.Fail(n.Message, err)
			}
			httpez.Notify(c, n.Message)
			return r, nil
		},
	})

	// --- PUT /roles/:id/permissions  整体替换 ---
	httpez.RegisterAction(ez, httpez.Action[permissionsIn, domain.Role]{
		Method: http.MethodPut,
		Path:   "/roles/:id/permissions",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *permissionsIn) (domain.Role, error) {
			id, err := paramID(c)
			if err != nil {
				return domain.Role{}, err
			}
			r, n, err := h.editor.SetPermissions(c.Request.Context(), id, in.Permissions)
			if err != nil {
				return domain.Role{}, httpez.Fail(n.Message, err)
			}
			httpez.Notify(c, n.Message)
			return r, nil
		},
	})

	// --- POST /roles/:id/permissions/toggle  单个勾选 ---
	httpez.RegisterAction(ez, httpez.Action[toggleIn, domain.Role]{
		Method: http.MethodPost,
		Path:   "/roles/:id/permissions/toggle",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *toggleIn) (domain.Role, error) {
			id, err := paramID(c)
			if err != nil {
				return domain.Role{}, err
			}
			r, n, err := h.editor.Toggle(c.Request.Context(), id, in.Permission)
			if err != nil {
				return domain.Role{}, httpez.Fail(n.Message, err)
			}
			httpez.Notify(c, n.Message)
			return r, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/roles/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, err
			}
			removed, n, err := h.editor.Delete(c.Request.Context(), id)
			if err != nil {
				return nil, httpez.Fail(n.Message, err)
			}
			httpez.Notify(c, n.Message)
			return gin.H{"id": removed}, nil
		},
	})
}
