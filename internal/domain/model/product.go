package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID    int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string          `gorm:"type:varchar(255);not null" json:"name"`
	Stock int64           `gorm:"not null;check:stock >= 0" json:"stock"`
	Cost  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"cost"`
	Price decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`

	//SearchKey(Name)
	NameLower string `gorm:"type:varchar(255);not null;default:'';index" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 原価での在庫金額
func (p Product) InventoryCost() decimal.Decimal {
	return p.Cost.Mul(decimal.NewFromInt(p.Stock))
}

func (p Product) Profit() decimal.Decimal {
	return p.Price.Sub(p.Cost)
}

// 原価に対する利益率（%、小数2桁）。原価0なら0
func (p Product) ProfitMargin() decimal.Decimal {
	if p.Cost.IsZero() {
		return decimal.Zero
	}
	return RoundMoney(p.Profit().Div(p.Cost).Mul(decimal.NewFromInt(100)))
}
