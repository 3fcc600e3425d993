package repository

import (
	"context"

	"salesnotes/internal/domain/model"
)

type InventoryRepository interface {
	// 在庫の現在値を設定
	SetStock(ctx context.Context, productID int64, newStock int64) error

	// 在庫が足りるときだけ減算（falseなら何も変えていない）
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
