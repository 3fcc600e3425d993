package repository

import (
	"context"

	"salesnotes/internal/domain/model"
)

// Qは名前かDNIに部分一致（大文字小文字は区別しない）
type CustomerListQuery struct {
	Q string
}

type CustomerRepository interface {
	List(ctx context.Context, q CustomerListQuery) ([]model.Customer, error)
	FindByID(ctx context.Context, id int64) (model.Customer, error)

	// DNIが登録済みならErrConflict
	Create(ctx context.Context, c model.Customer) (model.Customer, error)
	Update(ctx context.Context, c model.Customer) error

	// 伝票から参照されていればErrConflict
	Delete(ctx context.Context, id int64) error

	Count(ctx context.Context) (int64, error)
}
