// Package validation — общий экземпляр go-playground/validator с правилами сервиса.
package validation

import (
	"errors"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

// EmailTag — правило для логинов в виде адреса почты.
const EmailTag = "cartify_email"

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Get возвращает потокобезопасный singleton валидатора.
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation(EmailTag, func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// FailedTags проверяет структуру и возвращает множество нарушенных правил.
// Пустое множество означает, что структура корректна.
func FailedTags(s any) (map[string]bool, error) {
	err := Get().Struct(s)
	if err == nil {
		return map[string]bool{}, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	tags := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		tags[fe.Tag()] = true
	}
	return tags, nil
}

// IsEmail проверяет строку по правилу EmailTag.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}
