package models

import "time"

type User struct {
	ID       string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email    string `gorm:"column:email;type:text;uniqueIndex" json:"email"`
	Password string `gorm:"column:password;type:text" json:"-"`
	Name     string `gorm:"column:name;type:text" json:"name"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
	Status    string    `gorm:"column:status;type:text;default:active;index" json:"-"`
}

func (User) TableName() string { return "users" }
