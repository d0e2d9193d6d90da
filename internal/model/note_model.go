package model

import (
	"time"

	"gorm.io/gorm"
)

type Note struct {
	Id        int64          `gorm:"primaryKey;autoIncrement"`
	Title     string         `gorm:"type:varchar(255);not null"`
	Content   string         `gorm:"type:text"`
	Tags      string         `gorm:"type:varchar(512)"`
	Category  string         `gorm:"type:varchar(128)"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Note) TableName() string {
	return "notes"
}
