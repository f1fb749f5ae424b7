package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"user-resource-service/internal/feature/user"
)

// Body 统一响应体；datas 为空时不输出（不是 null）
type Body struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Datas   any    `json:"datas,omitempty"`
}

func OK(data any, msg string) Body { return Body{Success: true, Message: msg, Datas: data} }

// Fail 失败响应（不带 datas）
func Fail(msg string) Body { return Body{Success: false, Message: msg} }

// Status Outcome → HTTP 状态码；okStatus 由路由决定（200 / 201）
func Status(o user.Outcome, okStatus int) int {
	switch o.Kind {
	case user.KindOK:
		return okStatus
	case user.KindNotFound:
		return http.StatusNoContent
	case user.KindInvalid:
		return http.StatusBadRequest
	case user.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// From Outcome → 响应体
func From(o user.Outcome) Body {
	if !o.Success() {
		return Fail(o.Message)
	}
	return OK(o.Data, o.Message)
}

// Write 所有用户路由共用的唯一出口
func Write(c *gin.Context, okStatus int, o user.Outcome) {
	c.JSON(Status(o, okStatus), From(o))
}

// Abort 中间件直接中断请求时使用
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Fail(msg))
}
