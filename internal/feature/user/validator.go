package user

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"user-resource-service/internal/domain"
)

// FieldLimits 长度闭区间 [MinLength, MaxLength]，按字符（rune）计
type FieldLimits struct {
	MinLength int `mapstructure:"minlength"`
	MaxLength int `mapstructure:"maxlength"`
}

type Limits struct {
	Username FieldLimits `mapstructure:"username"`
	Password FieldLimits `mapstructure:"password"`
}

// Check 配置加载时校验边界本身是否合理
func (l Limits) Check() error {
	if err := l.Username.check("username"); err != nil {
		return err
	}
	if l.Username.MaxLength > domain.UsernameColumnSize {
		return fmt.Errorf("username.maxlength must be <= %d, got %d", domain.UsernameColumnSize, l.Username.MaxLength)
	}
	return l.Password.check("password")
}

func (f FieldLimits) check(name string) error {
	if f.MinLength < 1 {
		return fmt.Errorf("%s.minlength must be >= 1, got %d", name, f.MinLength)
	}
	if f.MinLength > f.MaxLength {
		return fmt.Errorf("%s.minlength (%d) > maxlength (%d)", name, f.MinLength, f.MaxLength)
	}
	return nil
}

// Credentials 请求体 {username, password}
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ValidationError struct {
	Field string
	Min   int
	Max   int
	Empty bool
}

func (e *ValidationError) Error() string {
	if e.Empty {
		return e.Field + " is required"
	}
	return fmt.Sprintf("%s must be between %d and %d characters", e.Field, e.Min, e.Max)
}

func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// validator.Validate 并发安全，全局复用
var validate = validator.New()

// Validate 纯函数：只看入参和边界，不访问存储，也不区分 create / update
func Validate(in Credentials, l Limits) error {
	if err := validateField("username", in.Username, l.Username); err != nil {
		return err
	}
	return validateField("password", in.Password, l.Password)
}

func validateField(name, value string, f FieldLimits) error {
	tag := fmt.Sprintf("required,min=%d,max=%d", f.MinLength, f.MaxLength)
	if err := validate.Var(value, tag); err != nil {
		return &ValidationError{Field: name, Min: f.MinLength, Max: f.MaxLength, Empty: value == ""}
	}
	return nil
}
