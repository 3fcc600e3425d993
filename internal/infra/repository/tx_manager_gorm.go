package repository

import (
	"context"

	repo "salesnotes/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	products  repo.ProductRepository
	customers repo.CustomerRepository
	notes     repo.SalesNoteRepository
	noteItems repo.NoteItemRepository
	inventory repo.InventoryRepository
	auditLogs repo.AuditLogRepository
}

func (r *txReposGorm) Products() repo.ProductRepository    { return r.products }
func (r *txReposGorm) Customers() repo.CustomerRepository  { return r.customers }
func (r *txReposGorm) Notes() repo.SalesNoteRepository     { return r.notes }
func (r *txReposGorm) NoteItems() repo.NoteItemRepository  { return r.noteItems }
func (r *txReposGorm) Inventory() repo.InventoryRepository { return r.inventory }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository  { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//全repoが同じtxを使う
		r := &txReposGorm{
			products:  NewProductGormRepository(tx),
			customers: NewCustomerGormRepository(tx),
			notes:     NewSalesNoteGormRepository(tx),
			noteItems: NewNoteItemGormRepository(tx),
			inventory: NewInventoryGormRepository(tx),
			auditLogs: NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}
