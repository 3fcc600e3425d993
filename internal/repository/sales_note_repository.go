package repository

import (
	"context"
	"time"

	"salesnotes/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 確定済み伝票の絞り込み条件。nilや空の項目は絞り込まない
type NoteFilter struct {
	NoteID    string
	Customer  string
	StartDate *time.Time
	EndDate   *time.Time
}

// 全伝票のページング。Searchは顧客名か伝票IDに一致
type NoteListQuery struct {
	Page   int
	Limit  int
	Search string
}

// 伝票＋顧客名
type NoteSummary struct {
	NoteID       int64            `gorm:"column:note_id"`
	Date         time.Time        `gorm:"column:date"`
	SaleDate     *time.Time       `gorm:"column:sale_date"`
	Total        decimal.Decimal  `gorm:"column:total"`
	Status       model.NoteStatus `gorm:"column:status"`
	CustomerID   int64            `gorm:"column:customer_id"`
	CustomerName string           `gorm:"column:customer_name"`
}

type SalesNoteRepository interface {
	FindByID(ctx context.Context, id int64) (model.SalesNote, error)

	// Tx終了まで行ロック
	FindByIDForUpdate(ctx context.Context, id int64) (model.SalesNote, error)

	Create(ctx context.Context, note model.SalesNote) (int64, error)
	UpdateTotal(ctx context.Context, id int64, total decimal.Decimal) error

	// PENDING -> CONFIRMED（売上日付き）。PENDINGでなければfalse
	MarkConfirmed(ctx context.Context, id int64, saleDate time.Time) (bool, error)

	// 確定済み伝票を売上日、id順で返す
	ListConfirmed(ctx context.Context, f NoteFilter) ([]NoteSummary, error)

	List(ctx context.Context, q NoteListQuery) ([]NoteSummary, int64, error)
	Count(ctx context.Context) (int64, error)
	CountByCustomerID(ctx context.Context, customerID int64) (int64, error)
}
