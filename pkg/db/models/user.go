package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/littlethreads/backend/pkg/enums"
)

// User is a registered shopper. Credentials are written by the auth
// collaborator; this service only reads identity and the new-user flag.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name         string         `gorm:"column:name;not null"`
	Email        string         `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;not null;default:'user'"`
	IsNewUser    bool           `gorm:"column:is_new_user;not null;default:true"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
