package models

import "time"

// MasterConstant is an operational config value editable without a deploy
// (AI keys, token secrets). Reads go through ConstantService's cache.
type MasterConstant struct {
	ID            string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ConstantKey   string `gorm:"column:constant_key;type:text;uniqueIndex" json:"constant_key"`
	ConstantValue string `gorm:"column:constant_value;type:text" json:"constant_value"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
	Status    string    `gorm:"column:status;type:text;default:active;index" json:"-"`
}

func (MasterConstant) TableName() string { return "master_constants" }
