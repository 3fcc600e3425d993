package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Products() ProductRepository
	Customers() CustomerRepository
	Notes() SalesNoteRepository
	NoteItems() NoteItemRepository
	Inventory() InventoryRepository
	AuditLogs() AuditLogRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnがエラーを返したら全部rollback
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
