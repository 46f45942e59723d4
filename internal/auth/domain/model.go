package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type User struct {
	ID           snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	FirstName    string       `gorm:"type:varchar(100);not null"`
	LastName     string       `gorm:"type:varchar(100);not null"`
	Email        string       `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string       `gorm:"type:varchar(255);not null"`
	Role         string       `gorm:"type:varchar(32);not null"`
	Active       bool         `gorm:"not null;default:true"`
	CreatedAt    time.Time    `gorm:"not null"`
	UpdatedAt    time.Time    `gorm:"not null"`
}

func (User) TableName() string { return "users" }

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
