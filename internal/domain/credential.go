package domain

import (
	"strings"
	"time"
)

// Role — закрытое перечисление ролей пользователей.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
)

// ParseRole разбирает роль без учёта регистра. Возвращает false для неизвестных значений.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(s)) {
	case RoleCustomer:
		return RoleCustomer, true
	case RoleSeller:
		return RoleSeller, true
	default:
		return "", false
	}
}

func (r Role) String() string {
	return string(r)
}

// Credential описывает учётную запись пользователя внутри раздела своей роли.
type Credential struct {
	ID           string // email-подобный логин
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

func NewCredential(id string, passwordHash string, role Role) *Credential {
	return &Credential{
		ID:           id,
		PasswordHash: passwordHash,
		Role:         role,
	}
}
