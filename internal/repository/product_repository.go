package repository

import (
	"context"
	"errors"

	"salesnotes/internal/domain/model"
)

var (
	ErrNotFound = errors.New("not found")

	// 一意キーの重複、または別トランザクションがロック/更新中
	ErrConflict = errors.New("conflict")
)

// 一覧検索（Nameが空なら全件）
type ProductListQuery struct {
	Name string
}

// 商品の永続化（保存・取得）だけを約束。一覧は常にid順
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	// FindByIDと同じだが、Tx終了まで行ロックを持つ
	FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error

	// 明細から参照されていればErrConflict
	Delete(ctx context.Context, id int64) error

	ListLowStock(ctx context.Context, threshold int64) ([]model.Product, error)
	Count(ctx context.Context) (int64, error)
}
