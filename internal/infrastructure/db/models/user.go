package models

import "time"

type User struct {
	ID        string     `gorm:"type:uuid;primaryKey"`
	Username  string     `gorm:"size:255;not null;uniqueIndex:users_username_key"`
	FirstName string     `gorm:"size:255;not null"`
	LastName  string     `gorm:"size:255;not null"`
	Email     string     `gorm:"size:320;not null;index:users_email_idx"`
	InitEmail string     `gorm:"size:320;not null"`
	Enabled   bool       `gorm:"not null;default:true"`
	Roles     []UserRole `gorm:"foreignKey:UserID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

type UserRole struct {
	UserID string `gorm:"type:uuid;primaryKey"`
	Role   string `gorm:"size:64;primaryKey"`
}

func (UserRole) TableName() string {
	return "user_roles"
}
