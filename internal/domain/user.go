package domain

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleManager      Role = "manager"
	RoleReceptionist Role = "receptionist"
	RoleHousekeeping Role = "housekeeping"
	RoleMaintenance  Role = "maintenance"
	RoleGuest        Role = "guest"
)

var roles = map[Role]struct{}{
	RoleAdmin:        {},
	RoleManager:      {},
	RoleReceptionist: {},
	RoleHousekeeping: {},
	RoleMaintenance:  {},
	RoleGuest:        {},
}

// ParseRole is the single place where role strings coming from tokens,
// requests or storage are canonicalized.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roles[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) IsStaff() bool {
	return r != RoleGuest && r != ""
}

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null" validate:"required,email"`
	Phone        string    `json:"phone,omitempty" gorm:"size:64"`
	Role         Role      `json:"role" gorm:"size:32;not null"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
