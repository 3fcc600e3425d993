package model

import "time"

// 顧客は伝票から参照されるだけで、伝票からは変更されない
type Customer struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Name string `gorm:"type:varchar(255);not null" json:"name"`

	//SearchKey(Name)
	NameLower string `gorm:"type:varchar(255);not null;default:'';index" json:"-"`

	//身分証番号（8桁）
	DNI string `gorm:"type:varchar(8);not null;uniqueIndex" json:"dni"`

	Address string `gorm:"type:varchar(255)" json:"address"`
	Phone   string `gorm:"type:varchar(30)" json:"phone"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
