// Package user 用户资源的校验 / 授权策略与 CRUD 编排
package user

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"user-resource-service/internal/domain"
	"user-resource-service/pkg/utils"
)

const (
	MsgCreated      = "User created"
	MsgUpdated      = "User updated"
	MsgDeleted      = "User deleted"
	MsgNotFound     = "User not found"
	MsgDuplicate    = "username already in use"
	MsgInvalidCreds = "invalid credentials"
)

// PasswordHasher 单向 hash + 校验；默认实现见 pkg/utils.Hasher
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(pw, hashed string) bool
}

type Controller struct {
	repo   domain.UserRepository
	hasher PasswordHasher
	limits Limits
	log    *zap.Logger
}

func NewController(repo domain.UserRepository, hasher PasswordHasher, limits Limits, l *zap.Logger) *Controller {
	if l == nil {
		l = zap.NewNop()
	}
	return &Controller{repo: repo, hasher: hasher, limits: limits, log: l}
}

func (c *Controller) List(ctx context.Context) (o Outcome, err error) {
	defer func() { observe("list", o, err) }()

	users, err := c.repo.FindAll(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return Ok(users, ""), nil
}

func (c *Controller) Get(ctx context.Context, id string) (o Outcome, err error) {
	defer func() { observe("get", o, err) }()

	u, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return Outcome{}, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return NotFound(MsgNotFound), nil
	}
	return Ok(u, ""), nil
}

func (c *Controller) Create(ctx context.Context, in Credentials) (o Outcome, err error) {
	defer func() { observe("create", o, err) }()

	if err := Validate(in, c.limits); err != nil {
		return c.rejectInput("create", err), nil
	}

	existing, err := c.repo.FindOne(ctx, domain.UserFilter{Username: in.Username})
	if err != nil {
		return Outcome{}, fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		return Invalid(MsgDuplicate), nil
	}

	hashed, err := c.hasher.Hash(in.Password)
	if err != nil {
		return c.hashFailure(err)
	}

	u, err := c.repo.Create(ctx, domain.UserFields{Username: in.Username, Password: hashed})
	if errors.Is(err, domain.ErrDuplicateUsername) {
		// 并发创建同名用户，由存储层唯一索引兜底
		return Invalid(MsgDuplicate), nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("create user: %w", err)
	}
	c.log.Info("user created", zap.String("id", u.ID), zap.String("username", u.Username))
	return Ok(nil, MsgCreated), nil
}

// Update 先按 id 查找（不存在时一律 NotFound），再校验入参；
// username 冲突检查排除目标记录本身（大小写敏感，精确匹配）
func (c *Controller) Update(ctx context.Context, id string, in Credentials) (o Outcome, err error) {
	defer func() { observe("update", o, err) }()

	target, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return Outcome{}, fmt.Errorf("find user: %w", err)
	}
	if target == nil {
		return NotFound(MsgNotFound), nil
	}

	if err := Validate(in, c.limits); err != nil {
		return c.rejectInput("update", err), nil
	}

	other, err := c.repo.FindOne(ctx, domain.UserFilter{Username: in.Username})
	if err != nil {
		return Outcome{}, fmt.Errorf("check username: %w", err)
	}
	if other != nil && other.ID != target.ID {
		return Invalid(MsgDuplicate), nil
	}

	// 每次都重新 hash，即使明文没变
	hashed, err := c.hasher.Hash(in.Password)
	if err != nil {
		return c.hashFailure(err)
	}

	ok, err := c.repo.UpdateByID(ctx, id, domain.UserFields{Username: in.Username, Password: hashed})
	if errors.Is(err, domain.ErrDuplicateUsername) {
		return Invalid(MsgDuplicate), nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("update user: %w", err)
	}
	if !ok {
		// 查到之后、写入之前被删除
		return NotFound(MsgNotFound), nil
	}
	c.log.Info("user updated", zap.String("id", id))
	return Ok(nil, MsgUpdated), nil
}

// Delete 只有提供与记录一致的 username + 明文密码才允许删除
func (c *Controller) Delete(ctx context.Context, id string, in Credentials) (o Outcome, err error) {
	defer func() { observe("delete", o, err) }()

	target, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return Outcome{}, fmt.Errorf("find user: %w", err)
	}
	if target == nil {
		return NotFound(MsgNotFound), nil
	}

	sameName := subtle.ConstantTimeCompare([]byte(in.Username), []byte(target.Username)) == 1
	samePass := c.hasher.Verify(in.Password, target.Password)
	if !sameName || !samePass {
		c.log.Debug("delete rejected", zap.String("id", id))
		return Unauthorized(MsgInvalidCreds), nil
	}

	ok, err := c.repo.DeleteByID(ctx, id)
	if err != nil {
		return Outcome{}, fmt.Errorf("delete user: %w", err)
	}
	if !ok {
		return NotFound(MsgNotFound), nil
	}
	c.log.Info("user deleted", zap.String("id", id))
	return Ok(nil, MsgDeleted), nil
}

// Seed 集合为空时通过 Create 写入初始用户（密码同样会被 hash）
func (c *Controller) Seed(ctx context.Context, users []Credentials) (int, error) {
	all, err := c.repo.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	if len(all) > 0 {
		return 0, nil
	}
	n := 0
	for _, in := range users {
		o, err := c.Create(ctx, in)
		if err != nil {
			return n, fmt.Errorf("seed %q: %w", in.Username, err)
		}
		if !o.Success() {
			c.log.Warn("seed user skipped", zap.String("username", in.Username), zap.String("reason", o.Message))
			continue
		}
		n++
	}
	return n, nil
}

func (c *Controller) rejectInput(op string, err error) Outcome {
	if ve, ok := AsValidationError(err); ok {
		c.log.Debug("input rejected", zap.String("op", op), zap.String("field", ve.Field), zap.Bool("empty", ve.Empty))
	}
	return Invalid(err.Error())
}

func (c *Controller) hashFailure(err error) (Outcome, error) {
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return Invalid("password is too long"), nil
	}
	return Outcome{}, fmt.Errorf("hash password: %w", err)
}
