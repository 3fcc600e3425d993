package usecase

import (
	"context"

	"salesnotes/internal/domain/model"
	repo "salesnotes/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type DashboardUsecase struct {
	tx  repo.TransactionManager
	log *zap.Logger

	lowStockThreshold int64
}

func NewDashboardUsecase(tx repo.TransactionManager, log *zap.Logger, lowStockThreshold int64) *DashboardUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &DashboardUsecase{tx: tx, log: log, lowStockThreshold: lowStockThreshold}
}

type DashboardStats struct {
	TotalCustomers  int64           `json:"total_customers"`
	TotalProducts   int64           `json:"total_products"`
	TotalSalesNotes int64           `json:"total_sales_notes"`
	LowStockCount   int             `json:"low_stock_count"`
	InventoryCost   decimal.Decimal `json:"inventory_cost"`
}

// Statsは件数と原価での在庫金額を返す。
// 数字が同じ時点になるよう、読み取りは1つのTxで行う
func (u *DashboardUsecase) Stats(ctx context.Context) (DashboardStats, error) {
	var (
		customers, notes, productCount int64
		products                       []model.Product
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		if customers, err = r.Customers().Count(ctx); err != nil {
			return dbError(u.log, "stats: customers", err)
		}
		if notes, err = r.Notes().Count(ctx); err != nil {
			return dbError(u.log, "stats: notes", err)
		}
		if productCount, err = r.Products().Count(ctx); err != nil {
			return dbError(u.log, "stats: products", err)
		}
		if products, err = r.Products().List(ctx, repo.ProductListQuery{}); err != nil {
			return dbError(u.log, "stats: products", err)
		}
		return nil
	})
	if err != nil {
		return DashboardStats{}, txResult(u.log, "stats", err)
	}

	costs := make([]decimal.Decimal, 0, len(products))
	low := 0
	for _, p := range products {
		costs = append(costs, p.InventoryCost())
		// 閾値以下は在庫少
		if p.Stock <= u.lowStockThreshold {
			low++
		}
	}

	return DashboardStats{
		TotalCustomers:  customers,
		TotalProducts:   productCount,
		TotalSalesNotes: notes,
		LowStockCount:   low,
		InventoryCost:   model.SumMoney(costs...),
	}, nil
}
