package model

import "time"

type AdjustmentReason string

const (
	AdjustmentSaleConfirmation AdjustmentReason = "sale confirmation"
)

// 在庫の調整履歴。deltaがマイナスなら出庫
type InventoryAdjustment struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64 `gorm:"not null;index" json:"product_id"`

	//売上確定による移動のときだけセット
	NoteID *int64 `gorm:"index" json:"note_id"`

	Delta     int64     `gorm:"not null" json:"delta"`
	Reason    string    `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
