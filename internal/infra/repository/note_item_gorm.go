package repository

import (
	"context"

	"salesnotes/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NoteItemGormRepository struct {
	db *gorm.DB
}

func NewNoteItemGormRepository(db *gorm.DB) *NoteItemGormRepository {
	return &NoteItemGormRepository{db: db}
}

func (r *NoteItemGormRepository) CreateBulk(ctx context.Context, noteID int64, items []model.NoteLineItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].NoteID = noteID
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error; err != nil {
		return translate(err)
	}
	return nil
}

// 登録順
func (r *NoteItemGormRepository) ListByNoteID(ctx context.Context, noteID int64) ([]model.NoteLineItem, error) {
	var items []model.NoteLineItem
	err := r.db.WithContext(ctx).Where("note_id = ?", noteID).Order("id asc").Find(&items).Error
	if err != nil {
		return []model.NoteLineItem{}, err
	}
	return items, nil
}

func (r *NoteItemGormRepository) CountByProductID(ctx context.Context, productID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.NoteLineItem{}).Where("product_id = ?", productID).Count(&n).Error
	return n, err
}
