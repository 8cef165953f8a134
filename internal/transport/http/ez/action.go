package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"user-role-admin/internal/domain"
	"user-role-admin/internal/service"
	resp "user-role-admin/internal/transport/http/response"
)

// EZ 路由组的轻封装
type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// 统一错误对象（配合 resp.ErrorWith）
type AErr struct {
	Code int
	Msg  string
	Data any
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func NotFound(msg string) error   { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// Fail 领域错误 + 提示文案 -> AErr；校验错误把字段信息放进 data
func Fail(msg string, err error) error {
	ae := &AErr{Code: CodeOf(err), Msg: msg, Err: err}
	if fields := service.FieldErrors(err); len(fields) > 0 {
		ae.Data = gin.H{"fields": fields}
	}
	return ae
}

// CodeOf 领域错误映射到业务码
func CodeOf(err error) int {
	var ae *AErr
	switch {
	case err == nil:
		return resp.CodeOK
	case errors.As(err, &ae):
		return ae.Code
	case errors.Is(err, domain.ErrValidationFailed):
		return resp.CodeBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return resp.CodeNotFound
	case errors.Is(err, domain.ErrDuplicateName),
		errors.Is(err, domain.ErrRoleInUse),
		errors.Is(err, domain.ErrBusy):
		return resp.CodeConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		return resp.CodeServiceUnavailable
	}
	return resp.CodeServerError
}

const keyNotice = "ez.notice"

// Notify 设置成功响应里的 msg
func Notify(c *gin.Context, msg string) { c.Set(keyNotice, msg) }

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "PATCH" | "DELETE"
	Path    string // 例："/users/:id"
	Binder  Binder
	Created bool // 成功时回 201
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			code := resp.CodeBadRequest
			var mbe *http.MaxBytesError
			if errors.As(bindErr, &mbe) {
				code = resp.CodeTooLarge
			}
			c.JSON(resp.HTTPStatus(code), resp.Error(code, bindErr.Error()))
			return
		}

		// 2) 执行
		out, err := a.Handler(c, &in)

		// 3) 统一错误映射
		if err != nil {
			code, msg, data := CodeOf(err), err.Error(), any(nil)
			var ae *AErr
			if errors.As(err, &ae) {
				data = ae.Data
			}
			if code == resp.CodeServerError {
				_ = c.Error(err)
			}
			c.JSON(resp.HTTPStatus(code), resp.ErrorWith(code, msg, data))
			return
		}
		status := http.StatusOK
		if a.Created {
			status = http.StatusCreated
		}
		c.JSON(status, resp.OK(out, c.GetString(keyNotice)))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}
