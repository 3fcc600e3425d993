package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"salesnotes/internal/domain/model"
	repo "salesnotes/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 商品・顧客の書き込み時の項目チェック
type CatalogValidator interface {
	ValidateProduct(in ProductInput) error
	ValidateCustomer(in CustomerInput) error
}

type ProductUsecase struct {
	products  repo.ProductRepository
	tx        repo.TransactionManager
	validator CatalogValidator
	log       *zap.Logger

	lowStockThreshold int64
}

// DIコンストラクタ
func NewProductUsecase(
	products repo.ProductRepository,
	tx repo.TransactionManager,
	validator CatalogValidator,
	log *zap.Logger,
	lowStockThreshold int64,
) *ProductUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductUsecase{
		products:          products,
		tx:                tx,
		validator:         validator,
		log:               log,
		lowStockThreshold: lowStockThreshold,
	}
}

type ProductInput struct {
	Name  string
	Stock int64
	Cost  decimal.Decimal
	Price decimal.Decimal
}

// 商品＋原価と価格から出す数字
type ProductOutput struct {
	model.Product
	Profit        decimal.Decimal `json:"profit"`
	ProfitMargin  decimal.Decimal `json:"profit_margin"`
	InventoryCost decimal.Decimal `json:"inventory_cost"`
}

func toProductOutput(p model.Product) ProductOutput {
	return ProductOutput{
		Product:       p,
		Profit:        p.Profit(),
		ProfitMargin:  p.ProfitMargin(),
		InventoryCost: model.RoundMoney(p.InventoryCost()),
	}
}

func toProductOutputs(ps []model.Product) []ProductOutput {
	outs := make([]ProductOutput, 0, len(ps))
	for _, p := range ps {
		outs = append(outs, toProductOutput(p))
	}
	return outs
}

// ListProductsはid順の商品一覧。nameがあれば大文字小文字を区別せず部分一致
func (u *ProductUsecase) ListProducts(ctx context.Context, name string) ([]ProductOutput, error) {
	if len(name) > 100 {
		return []ProductOutput{}, invalidf("name too long")
	}

	ps, err := u.products.List(ctx, repo.ProductListQuery{Name: strings.TrimSpace(name)})
	if err != nil {
		return []ProductOutput{}, dbError(u.log, "list products", err)
	}
	return toProductOutputs(ps), nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, invalidf("invalid product id")
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductOutput{}, notFoundf("product %d not found", productID)
	}
	if err != nil {
		return ProductOutput{}, dbError(u.log, "get product", err, zap.Int64("product_id", productID))
	}
	return toProductOutput(p), nil
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, in ProductInput) (int64, error) {
	if err := u.validator.ValidateProduct(in); err != nil {
		return 0, err
	}

	p, err := u.products.Create(ctx, model.Product{
		Name:  strings.TrimSpace(in.Name),
		Stock: in.Stock,
		Cost:  model.RoundMoney(in.Cost),
		Price: model.RoundMoney(in.Price),
	})
	if err != nil {
		return 0, dbError(u.log, "create product", err)
	}
	return p.ID, nil
}

// UpdateProductは名前・原価・価格を更新する。in.Stockは無視
// （在庫はAdjustStockか売上確定でのみ動く）
func (u *ProductUsecase) UpdateProduct(ctx context.Context, productID int64, in ProductInput) error {
	if productID <= 0 {
		return invalidf("invalid product id")
	}
	in.Stock = 0
	if err := u.validator.ValidateProduct(in); err != nil {
		return err
	}

	err := u.products.Update(ctx, model.Product{
		ID:    productID,
		Name:  strings.TrimSpace(in.Name),
		Cost:  model.RoundMoney(in.Cost),
		Price: model.RoundMoney(in.Price),
	})
	if errors.Is(err, repo.ErrNotFound) {
		return notFoundf("product %d not found", productID)
	}
	if err != nil {
		return dbError(u.log, "update product", err, zap.Int64("product_id", productID))
	}
	return nil
}

// AdjustStockは在庫を手動で設定し、調整履歴と監査ログを同じTxで残す
func (u *ProductUsecase) AdjustStock(ctx context.Context, productID int64, newStock int64, reason string) error {
	if productID <= 0 {
		return invalidf("invalid product id")
	}
	if newStock < 0 {
		return invalidf("stock must be >= 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return invalidf("reason required")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫
		p, err := r.Products().FindByIDForUpdate(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundf("product %d not found", productID)
		}
		if err != nil {
			return dbError(u.log, "adjust stock: find product", err, zap.Int64("product_id", productID))
		}

		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			return dbError(u.log, "adjust stock", err, zap.Int64("product_id", productID))
		}

		now := time.Now()
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID: productID,
			Delta:     newStock - p.Stock,
			Reason:    reason,
			CreatedAt: now,
		}); err != nil {
			return dbError(u.log, "adjust stock: adjustment", err, zap.Int64("product_id", productID))
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   toJSON(map[string]any{"stock": p.Stock}),
			AfterJSON:    toJSON(map[string]any{"stock": newStock, "reason": reason}),
			CreatedAt:    now,
		}); err != nil {
			return dbError(u.log, "adjust stock: audit", err, zap.Int64("product_id", productID))
		}
		return nil
	})

	return txResult(u.log, "adjust stock", err, zap.Int64("product_id", productID))
}

// DeleteProductは明細から一度も参照されていない商品を削除する。
// 売れた商品は古い伝票の明細のために残す
func (u *ProductUsecase) DeleteProduct(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return invalidf("invalid product id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByIDForUpdate(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundf("product %d not found", productID)
		}
		if err != nil {
			return dbError(u.log, "delete product: find", err, zap.Int64("product_id", productID))
		}

		// 明細に残っている商品は消さない
		n, err := r.NoteItems().CountByProductID(ctx, productID)
		if err != nil {
			return dbError(u.log, "delete product: count lines", err, zap.Int64("product_id", productID))
		}
		if n > 0 {
			return productInUse(productID)
		}

		err = r.Products().Delete(ctx, productID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return notFoundf("product %d not found", productID)
		case errors.Is(err, repo.ErrConflict):
			// 並行して明細が追加された
			return productInUse(productID)
		case err != nil:
			return dbError(u.log, "delete product", err, zap.Int64("product_id", productID))
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			Action:       model.AuditActionDeleteProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   toJSON(map[string]any{"name": p.Name, "stock": p.Stock}),
			AfterJSON:    "{}",
			CreatedAt:    time.Now(),
		}); err != nil {
			return dbError(u.log, "delete product: audit", err, zap.Int64("product_id", productID))
		}
		return nil
	})

	return txResult(u.log, "delete product", err, zap.Int64("product_id", productID))
}

func productInUse(productID int64) error {
	return NewError(KindConflict, fmt.Sprintf("product %d is referenced by sales notes", productID))
}

// LowStockは在庫がthreshold以下の商品を少ない順に返す。nilなら設定値
func (u *ProductUsecase) LowStock(ctx context.Context, threshold *int64) ([]ProductOutput, error) {
	t := u.lowStockThreshold
	if threshold != nil {
		t = *threshold
	}
	if t < 0 {
		return []ProductOutput{}, invalidf("threshold must be >= 0")
	}

	ps, err := u.products.ListLowStock(ctx, t)
	if err != nil {
		return []ProductOutput{}, dbError(u.log, "low stock", err)
	}
	return toProductOutputs(ps), nil
}
