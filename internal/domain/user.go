package domain

import "time"

type UserRole string

const (
	RoleGuest UserRole = "guest"
	RoleHost  UserRole = "host"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID           int64    `json:"id" gorm:"primaryKey"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string   `json:"-" gorm:"not null"`
	Name         string   `json:"name"`
	Phone        string   `json:"phone,omitempty"`
	Role         UserRole `json:"role" gorm:"type:varchar(16);not null;default:'guest'"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
