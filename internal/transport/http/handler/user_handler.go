package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"user-role-admin/internal/domain"
	"user-role-admin/internal/service"
	httpez "user-role-admin/internal/transport/http/ez"
)

// UserHandler /admin/v1/users 与列表视图
type UserHandler struct {
	editor   *service.UserEditor
	pageSize int
}

func NewUserHandler(editor *service.UserEditor, pageSize int) *UserHandler {
	if pageSize < 1 {
		pageSize = service.DefaultPageSize
	}
	return &UserHandler{editor: editor, pageSize: pageSize}
}

func (h *UserHandler) Priority() int { return 10 }

type viewQ struct {
	Search string `form:"search"`
	Role   string `form:"role"`
	Sort   string `form:"sort"`
	Page   int    `form:"page,default=1"`
	Size   int    `form:"size"`
}

func (h *UserHandler) MountAdmin(g *gin.RouterGroup) {
	ez := httpez.New(g)

	// --- GET /users  全量 ---
	httpez.RegisterAction(ez, httpez.Action[struct{}, []domain.User]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.User, error) {
			users, err := h.editor.List(c.Request.Context())
			if err != nil {
				return nil, httpez.Fail("Failed to load users. Please try again.", err)
			}
			return users, nil
		},
	})

	// --- GET /views/users  搜索/过滤/排序/分页 ---
	httpez.RegisterAction(ez, httpez.Action[viewQ, service.ViewPage]{
		Method: http.MethodGet,
		Path:   "/views/users",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *viewQ) (service.ViewPage, error) {
			sortKey, err := service.ParseSortKey(in.Sort)
			if err != nil {
				return service.ViewPage{}, httpez.BadRequest(err.Error())
			}
			role := domain.RoleName(in.Role)
			if role != "" && !role.Valid() {
				return service.ViewPage{}, httpez.BadRequest("unknown role filter " + strconv.Quote(in.Role))
			}
			size := in.Size
			if size < 1 || size > 100 {
				size = h.pageSize
			}
			users, err := h.editor.List(c.Request.Context())
			if err != nil {
				return service.ViewPage{}, httpez.Fail("Failed to load users. Please try again.", err)
			}
			return service.ApplyView(users, service.ViewQuery{
				Search: in.Search, Role: role, Sort: sortKey, Page: in.Page, PageSize: size,
			}), nil
		},
	})

	// --- POST /users  新建 ---
	httpez.RegisterAction(ez, httpez.Action[domain.UserDraft, domain.User]{
		Method:  http.MethodPost,
		Path:    "/users",
		Binder:  httpez.BindJSON,
		Created: true,
		Handler: func(c *gin.Context, in *domain.UserDraft) (domain.User, error) {
			u, n, err := h.editor.Create(c.Request.Context(), *in)
			if err != nil {
				return domain.User{}, httpez.Fail(n.Message, err)
			}
			httpez.Notify(c, n.Message)
			return u, nil
		},
	})

	// --- PATCH /users/:id  部分字段 ---
	httpez.RegisterAction(ez, httpez.Action[domain.UserPatch, domain.User]{
		Method: http.MethodPatch,
		Path:   "/users/:id",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *domain.UserPatch) (domain.User, error) {
			id, err := paramID(c)
			if err != nil {
				return domain.User{}, err
			}
			var (
				u domain.User
				n service.Notice
			)
			// 过期日单独走，保留“不能早于今天”的专用提示
			if in.Expiration != nil && in.Name == nil && in.Projects == nil && in.Role == nil && in.Status == nil {
				u, n, err = h.editor.ChangeExpiration(c.Request.Context(), id, *in.Expiration)
			} else {
				u, n, err = h.editor.Update(c.Request.Context(), id, *in)
			}
			if err != nil {
				return domain.User{}, httpez.Fail(n.Message, err)
			}
			httpez.Notify(c, n.Message)
			return u, nil
		},
	})

	// --- DELETE /users/:id ---
	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
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

func paramID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, httpez.BadRequest("invalid id")
	}
	return id, nil
}
