package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
	RoleGuest     Role = "guest"
)

// ParseRole accepts only the four known roles. Anything else is rejected
// rather than mapped to guest, so a corrupted or mistyped role value in a
// token or a user row surfaces as an error instead of silently downgrading.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleModerator, RoleUser, RoleGuest:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusPending   Status = "pending"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusInactive, StatusSuspended, StatusPending:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

type User struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"     json:"id"`
	Email         string         `gorm:"uniqueIndex;not null"     json:"email"`
	Username      string         `gorm:"uniqueIndex;not null"     json:"username"`
	PasswordHash  string         `gorm:"not null"                 json:"-"`
	Role          Role           `gorm:"not null;default:user"    json:"role"`
	Status        Status         `gorm:"not null;default:pending" json:"status"`
	EmailVerified bool           `gorm:"default:false"            json:"email_verified"`
	LastLoginAt   *time.Time     `json:"last_login_at,omitempty"`
	LastLoginIP   string         `json:"last_login_ip,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index"                   json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
