package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"user-resource-service/internal/domain"
	"user-resource-service/pkg/utils"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0)
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.take(ctx, "id = ?", id)
}

// FindOne 库的排序规则可能忽略大小写或尾部空格，结果再做一次精确比较
func (r *UserRepo) FindOne(ctx context.Context, f domain.UserFilter) (*domain.User, error) {
	u, err := r.take(ctx, "username = ?", f.Username)
	if err != nil || u == nil || u.Username != f.Username {
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) take(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where(query, arg).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, f domain.UserFields) (*domain.User, error) {
	u := &domain.User{
		ID:       utils.NewID(),
		Username: f.Username,
		Password: f.Password,
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDupKey(err) {
			return nil, domain.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) UpdateByID(ctx context.Context, id string, f domain.UserFields) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"username": f.Username, "password": f.Password})
	if res.Error != nil {
		if isDupKey(res.Error) {
			return false, domain.ErrDuplicateUsername
		}
		return false, fmt.Errorf("update user: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *UserRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return false, fmt.Errorf("delete user: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 驱动未开启 TranslateError 时按错误文本兜底
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "23505")
}
