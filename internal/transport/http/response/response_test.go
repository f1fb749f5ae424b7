package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-resource-service/internal/feature/user"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		o    user.Outcome
		ok   int
		want int
	}{
		{"ok get", user.Ok(nil, ""), http.StatusOK, http.StatusOK},
		{"ok create", user.Ok(nil, "User created"), http.StatusCreated, http.StatusCreated},
		{"not found", user.NotFound("x"), http.StatusOK, http.StatusNoContent},
		{"invalid", user.Invalid("x"), http.StatusCreated, http.StatusBadRequest},
		{"unauthorized", user.Unauthorized("x"), http.StatusOK, http.StatusUnauthorized},
		{"unknown kind", user.Outcome{Kind: user.Kind(9)}, http.StatusOK, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.o, tt.ok))
		})
	}
}

func TestFrom_Envelope(t *testing.T) {
	b, err := json.Marshal(From(user.Ok(nil, "User created")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"User created"}`, string(b))

	b, err = json.Marshal(From(user.Invalid("username already in use")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"message":"username already in use"}`, string(b))

	b, err = json.Marshal(From(user.Ok([]string{}, "")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"datas":[]}`, string(b))

	// 失败结果即使带了 Data 也不输出
	b, err = json.Marshal(From(user.Outcome{Kind: user.KindNotFound, Data: "leak"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false}`, string(b))
}

func TestWrite_NoContentHasEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Write(c, http.StatusOK, user.NotFound("User not found"))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestAbort(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Abort(c, http.StatusTooManyRequests, "too many requests")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"too many requests"}`, rec.Body.String())
}
