package domain

import (
	"context"
	"errors"
	"time"
)

// UsernameColumnSize 与 User.Username 的 gorm size 保持一致
const UsernameColumnSize = 191

// User 存储的 password 永远是 hash，不保存明文
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:191;not null" json:"username"`
	Password  string    `gorm:"size:100;not null" json:"password"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// UserFilter FindOne 的过滤条件（目前只支持 username 精确匹配）
type UserFilter struct {
	Username string
}

// UserFields Create / UpdateByID 写入的字段
type UserFields struct {
	Username string
	Password string
}

// ErrDuplicateUsername 存储层唯一约束冲突
var ErrDuplicateUsername = errors.New("username already in use")

// UserRepository 查不到时返回 (nil, nil)；UpdateByID / DeleteByID 用 bool 表示是否命中
type UserRepository interface {
	FindAll(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindOne(ctx context.Context, f UserFilter) (*User, error)
	Create(ctx context.Context, f UserFields) (*User, error)
	UpdateByID(ctx context.Context, id string, f UserFields) (bool, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
}
