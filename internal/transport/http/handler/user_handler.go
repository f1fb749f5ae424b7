package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-resource-service/internal/feature/user"
	mdw "user-resource-service/internal/transport/http/middleware"
	resp "user-resource-service/internal/transport/http/response"
)

// UserController handler 依赖的控制器能力
type UserController interface {
	List(ctx context.Context) (user.Outcome, error)
	Get(ctx context.Context, id string) (user.Outcome, error)
	Create(ctx context.Context, in user.Credentials) (user.Outcome, error)
	Update(ctx context.Context, id string, in user.Credentials) (user.Outcome, error)
	Delete(ctx context.Context, id string, in user.Credentials) (user.Outcome, error)
}

type UserHandler struct {
	ctrl UserController
	log  *zap.Logger
}

func NewUserHandler(ctrl UserController, l *zap.Logger) *UserHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserHandler{ctrl: ctrl, log: l}
}

// Mount 挂到 /users 分组；update 同时接受 POST 和 PUT
func (h *UserHandler) Mount(g *gin.RouterGroup) {
	g.GET("/all", h.list)
	g.GET("/get/:id", h.get)
	g.POST("/add", h.create)
	g.POST("/update/:id", h.update)
	g.PUT("/update/:id", h.update)
	g.DELETE("/delete/:id", h.delete)
}

func (h *UserHandler) list(c *gin.Context) {
	o, err := h.ctrl.List(c.Request.Context())
	h.write(c, http.StatusOK, o, err)
}

func (h *UserHandler) get(c *gin.Context) {
	o, err := h.ctrl.Get(c.Request.Context(), c.Param("id"))
	h.write(c, http.StatusOK, o, err)
}

func (h *UserHandler) create(c *gin.Context) {
	in, ok := h.bind(c)
	if !ok {
		return
	}
	o, err := h.ctrl.Create(c.Request.Context(), in)
	h.write(c, http.StatusCreated, o, err)
}

func (h *UserHandler) update(c *gin.Context) {
	in, ok := h.bind(c)
	if !ok {
		return
	}
	o, err := h.ctrl.Update(c.Request.Context(), c.Param("id"), in)
	h.write(c, http.StatusCreated, o, err)
}

func (h *UserHandler) delete(c *gin.Context) {
	in, ok := h.bind(c)
	if !ok {
		return
	}
	o, err := h.ctrl.Delete(c.Request.Context(), c.Param("id"), in)
	h.write(c, http.StatusOK, o, err)
}

// bind 解析 {username, password}；空 body 视为空凭据，交给校验逻辑处理
func (h *UserHandler) bind(c *gin.Context) (user.Credentials, bool) {
	var in user.Credentials
	if c.Request.ContentLength == 0 {
		return in, true
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		// chunked 空 body：ContentLength 为 -1，读到 EOF
		if errors.Is(err, io.EOF) {
			return user.Credentials{}, true
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			resp.Abort(c, http.StatusRequestEntityTooLarge, "request body too large")
			return in, false
		}
		resp.Abort(c, http.StatusBadRequest, "invalid request body")
		return in, false
	}
	return in, true
}

func (h *UserHandler) write(c *gin.Context, okStatus int, o user.Outcome, err error) {
	if err != nil {
		_ = c.Error(err)
		h.log.Error("user operation failed",
			zap.String("rid", mdw.RequestIDFrom(c)),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		resp.Abort(c, http.StatusInternalServerError, "internal error")
		return
	}
	resp.Write(c, okStatus, o)
}
