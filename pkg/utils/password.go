package utils

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong bcrypt 只处理前 72 字节，超出直接拒绝
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// Hasher bcrypt 实现；Cost 为 0 时使用 bcrypt.DefaultCost
type Hasher struct {
	Cost int
}

func NewHasher(cost int) Hasher { return Hasher{Cost: cost} }

func (h Hasher) Hash(pw string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h Hasher) Verify(pw, hashed string) bool {
	return CheckPassword(pw, hashed)
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}

// NewID 生成用户主键（UUIDv4 字符串）
func NewID() string { return uuid.NewString() }
