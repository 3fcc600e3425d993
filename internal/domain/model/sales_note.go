package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type NoteStatus string

const (
	NoteStatusPending NoteStatus = "PENDING"
	// 売上確定・在庫消費済み。古い行は"Cancelado"で保存されている
	NoteStatusConfirmed NoteStatus = "CONFIRMED"
)

// legacyConfirmedは旧システムでの確定の表記
const legacyConfirmed = "cancelado"

// IsConfirmedは旧表記も確定とみなす
func (s NoteStatus) IsConfirmed() bool {
	v := strings.ToLower(string(s))
	return strings.Contains(v, "confirmed") || strings.Contains(v, legacyConfirmed)
}

// 保存上で確定済みを表すパターン（小文字のLIKE）
func ConfirmedStatusPatterns() []string {
	return []string{"%confirmed%", "%" + legacyConfirmed + "%"}
}

type OrderState string

const (
	OrderStateOpen OrderState = "OPEN"
)

type SalesNote struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID int64 `gorm:"not null;index" json:"customer_id"`

	//作成日
	Date time.Time `gorm:"type:date;not null" json:"date"`

	//売上確定で一度だけセット
	SaleDate *time.Time `gorm:"type:date;index" json:"sale_date"`

	Total      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Status     NoteStatus      `gorm:"type:varchar(20);not null;index" json:"status"`
	OrderState OrderState      `gorm:"type:varchar(20);not null" json:"order_state"`
	Notes      *string         `gorm:"type:text" json:"notes"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
