package response

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNeverNullData(t *testing.T) {
	r := New(CodeOK, "OK", nil)
	assert.Equal(t, struct{}{}, r.Data)
}

func TestOKMessage(t *testing.T) {
	assert.Equal(t, "OK", OK(1).Msg)
	assert.Equal(t, "saved", OK(1, "saved").Msg)
	assert.Equal(t, "OK", OK(1, "").Msg)
}

func TestErrorDefaultsToCodeText(t *testing.T) {
	assert.Equal(t, "Conflict", Error(CodeConflict, "").Msg)
	assert.Equal(t, "dup", Error(CodeConflict, "dup").Msg)

	r := ErrorWith(CodeBadRequest, "", map[string]string{"user": "required"})
	assert.Equal(t, map[string]string{"user": "required"}, r.Data)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(CodeOK))
	assert.Equal(t, http.StatusConflict, HTTPStatus(CodeConflict))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(CodeTimeout))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(999))
}
