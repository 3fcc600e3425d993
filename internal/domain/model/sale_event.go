package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleConfirmedは売上確定のcommit後に発行する
type SaleConfirmed struct {
	EventID    string
	NoteID     int64
	CustomerID int64
	SaleDate   time.Time
	Total      decimal.Decimal
	Lines      []SaleConfirmedLine
	OccurredAt time.Time
}

type SaleConfirmedLine struct {
	ProductID int64
	Quantity  int64
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}
