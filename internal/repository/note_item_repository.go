package repository

import (
	"context"

	"salesnotes/internal/domain/model"
)

type NoteItemRepository interface {
	CreateBulk(ctx context.Context, noteID int64, items []model.NoteLineItem) error
	ListByNoteID(ctx context.Context, noteID int64) ([]model.NoteLineItem, error)

	// その商品を使っている明細の件数
	CountByProductID(ctx context.Context, productID int64) (int64, error)
}
