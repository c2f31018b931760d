package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role drives every mutation permission decision.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

type User struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Username    string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email       string    `gorm:"uniqueIndex;size:254;not null" json:"email"`
	Role        Role      `gorm:"size:20;default:'user';not null" json:"role"`
	Bio         string    `gorm:"type:text" json:"bio"`
	FirstName   string    `gorm:"size:150" json:"first_name"`
	LastName    string    `gorm:"size:150" json:"last_name"`
	IsSuperuser bool      `gorm:"default:false;not null" json:"-"` // superuser counts as admin
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

// RoleOf resolves the effective role. Superusers are admins regardless of the
// stored role value.
func RoleOf(user *User) Role {
	if user.IsSuperuser {
		return RoleAdmin
	}
	return user.Role
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

func (User) TableName() string {
	return "users"
}
