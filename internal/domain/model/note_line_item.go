package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 伝票の明細1行。単価は作成時に送られた値で、カタログ価格ではない
type NoteLineItem struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	NoteID    int64           `gorm:"not null;index" json:"note_id"`
	ProductID int64           `gorm:"not null;index" json:"product_id"`
	Quantity  int64           `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,4);not null" json:"unit_price"`
	Size      string          `gorm:"type:varchar(50)" json:"size"`
	Color     string          `gorm:"type:varchar(50)" json:"color"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`

	Note    *SalesNote `gorm:"foreignKey:NoteID" json:"-"`
	Product *Product   `gorm:"foreignKey:ProductID" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
