package user

import "time"

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Username     string    `gorm:"column:username;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role;not null;default:User"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string { return "users" }

// PermissionGrant holds the per-module capability flags for one user. One
// row per (user, module); a missing row means no access to that module.
type PermissionGrant struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_user_module"`
	Module    string    `gorm:"column:module;not null;uniqueIndex:idx_user_module"`
	CanRead   bool      `gorm:"column:can_read;not null;default:false"`
	CanWrite  bool      `gorm:"column:can_write;not null;default:false"`
	CanDelete bool      `gorm:"column:can_delete;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (PermissionGrant) TableName() string { return "permission_grants" }
