package models

import "time"

// Library partitions the local catalog. A single-user install typically has
// one row, but copies and loans are always scoped to a library.
type Library struct {
	ID        int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string     `json:"name" gorm:"not null"`
	CreatedAt *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
}

func (Library) TableName() string {
	return "libraries"
}
