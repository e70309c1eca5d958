package models

import "time"

// Profile holds the public, user-editable part of an account.
type Profile struct {
	UserID    string    `gorm:"column:user_id;type:uuid;primaryKey"`
	Username  string    `gorm:"column:username;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (Profile) TableName() string { return "profiles" }
