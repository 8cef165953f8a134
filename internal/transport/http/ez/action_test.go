package ez

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-role-admin/internal/domain"
	resp "user-role-admin/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (int, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestCodeOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, resp.CodeOK},
		{fmt.Errorf("x: %w", domain.ErrValidationFailed), resp.CodeBadRequest},
		{fmt.Errorf("x: %w", domain.ErrNotFound), resp.CodeNotFound},
		{fmt.Errorf("x: %w", domain.ErrDuplicateName), resp.CodeConflict},
		{domain.ErrRoleInUse, resp.CodeConflict},
		{domain.ErrBusy, resp.CodeConflict},
		{domain.ErrStoreUnavailable, resp.CodeServiceUnavailable},
		{errors.New("boom"), resp.CodeServerError},
		{NotFound("gone"), resp.CodeNotFound},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CodeOf(tc.err), "%v", tc.err)
	}
}

func TestFailCarriesFieldErrors(t *testing.T) {
	verr := fmt.Errorf("%w: %w", domain.ErrValidationFailed, validation.Errors{"user": errors.New("required")})
	err := Fail("Please fix", verr)

	var ae *AErr
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, resp.CodeBadRequest, ae.Code)
	assert.Equal(t, "Please fix", ae.Error())
	assert.Equal(t, gin.H{"fields": map[string]string{"user": "required"}}, ae.Data)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

type echoIn struct {
	Name string `json:"name" form:"name" binding:"required"`
}

func TestRegisterAction(t *testing.T) {
	r := gin.New()
	e := New(r.Group("/v1"))

	RegisterAction(e, Action[echoIn, gin.H]{
		Method:  http.MethodPost,
		Path:    "/echo",
		Binder:  BindJSON,
		Created: true,
		Handler: func(c *gin.Context, in *echoIn) (gin.H, error) {
			Notify(c, "created "+in.Name)
			return gin.H{"name": in.Name}, nil
		},
	})
	RegisterAction(e, Action[echoIn, string]{
		Method: http.MethodGet,
		Path:   "/echo",
		Binder: BindQuery,
		Handler: func(_ *gin.Context, in *echoIn) (string, error) {
			return in.Name, nil
		},
	})
	RegisterAction(e, Action[struct{}, string]{
		Method: http.MethodPatch,
		Path:   "/fail",
		Binder: BindNone,
		Handler: func(*gin.Context, *struct{}) (string, error) {
			return "", Fail("Role is busy", domain.ErrRoleInUse)
		},
	})
	RegisterAction(e, Action[struct{}, string]{
		Method: http.MethodDelete,
		Path:   "/boom",
		Binder: BindNone,
		Handler: func(*gin.Context, *struct{}) (string, error) {
			return "", errors.New("boom")
		},
	})

	status, env := do(t, r, http.MethodPost, "/v1/echo", `{"name":"x"}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, resp.CodeOK, env.Code)
	assert.Equal(t, "created x", env.Msg)
	assert.JSONEq(t, `{"name":"x"}`, string(env.Data))

	status, env = do(t, r, http.MethodPost, "/v1/echo", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, resp.CodeBadRequest, env.Code)

	status, env = do(t, r, http.MethodGet, "/v1/echo?name=q", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", env.Msg)
	assert.JSONEq(t, `"q"`, string(env.Data))

	status, env = do(t, r, http.MethodPatch, "/v1/fail", "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Role is busy", env.Msg)
	assert.JSONEq(t, `{}`, string(env.Data))

	status, env = do(t, r, http.MethodDelete, "/v1/boom", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "boom", env.Msg)
}
