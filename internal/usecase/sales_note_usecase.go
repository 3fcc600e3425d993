package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"salesnotes/internal/domain/model"
	repo "salesnotes/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// デコード済みの明細タプル1件
type LineItemInput struct {
	ProductID int64
	Quantity  int64
	UnitPrice decimal.Decimal
	Size      string
	Color     string
}

// usecaseが使う入力チェック（実装はinternal/validator）
type NoteValidator interface {
	// [product_id, quantity, unit_price, size, color]のタプルをデコード。
	// 全タプルの形をチェックしてから返す
	DecodeLineItems(raw []json.RawMessage) ([]LineItemInput, error)

	// 日付はYYYY-MM-DD。空の項目は絞り込まない
	ParseFilter(in FilterNotesInput) (repo.NoteFilter, error)
}

// SalePublisherはcommit済みの売上を通知する。
// Txの外で呼ぶので、失敗しても確定は戻らない
type SalePublisher interface {
	PublishSaleConfirmed(ctx context.Context, ev model.SaleConfirmed) error
}

// ブローカー未設定のとき
type NopSalePublisher struct{}

func (NopSalePublisher) PublishSaleConfirmed(context.Context, model.SaleConfirmed) error {
	return nil
}

type SalesNoteUsecase struct {
	tx        repo.TransactionManager
	validator NoteValidator
	publisher SalePublisher
	log       *zap.Logger
	now       func() time.Time
}

func NewSalesNoteUsecase(
	tx repo.TransactionManager,
	validator NoteValidator,
	publisher SalePublisher,
	log *zap.Logger,
) *SalesNoteUsecase {
	if publisher == nil {
		publisher = NopSalePublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SalesNoteUsecase{
		tx:        tx,
		validator: validator,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// WithClockは「今日」の取得元を差し替える
func (u *SalesNoteUsecase) WithClock(now func() time.Time) *SalesNoteUsecase {
	u.now = now
	return u
}

type CreateNoteInput struct {
	CustomerID int64
	Items      []json.RawMessage
	Notes      *string
}

type CreateNoteOutput struct {
	NoteID int64           `json:"note_id"`
	Total  decimal.Decimal `json:"total"`
}

// CreateNoteはPENDINGの伝票を明細付きで保存する。在庫は確認だけで減らさない
func (u *SalesNoteUsecase) CreateNote(ctx context.Context, in CreateNoteInput) (CreateNoteOutput, error) {
	if in.CustomerID <= 0 {
		return CreateNoteOutput{}, invalidf("customer_id is required")
	}
	if len(in.Items) == 0 {
		return CreateNoteOutput{}, invalidf("items is required")
	}

	var out CreateNoteOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Customers().FindByID(ctx, in.CustomerID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFoundf("customer %d not found", in.CustomerID)
			}
			return dbError(u.log, "create note: find customer", err, zap.Int64("customer_id", in.CustomerID))
		}

		//商品を引く前に全タプルの形をチェック
		items, err := u.validator.DecodeLineItems(in.Items)
		if err != nil {
			return err
		}

		today := model.DateOf(u.now())
		noteID, err := r.Notes().Create(ctx, model.SalesNote{
			CustomerID: in.CustomerID,
			Date:       today,
			Total:      decimal.Zero,
			Status:     model.NoteStatusPending,
			OrderState: model.OrderStateOpen,
			Notes:      trimmedOrNil(in.Notes),
		})
		if err != nil {
			return dbError(u.log, "create note", err, zap.Int64("customer_id", in.CustomerID))
		}

		lines := make([]model.NoteLineItem, 0, len(items))
		subtotals := make([]decimal.Decimal, 0, len(items))

		for _, it := range items {
			p, err := r.Products().FindByID(ctx, it.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return notFoundf("product %d not found", it.ProductID)
			}
			if err != nil {
				return dbError(u.log, "create note: find product", err, zap.Int64("product_id", it.ProductID))
			}
			if p.Stock < it.Quantity {
				return insufficientStock(p, it.Quantity)
			}

			sub := model.Subtotal(it.UnitPrice, it.Quantity)
			subtotals = append(subtotals, sub)
			lines = append(lines, model.NoteLineItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
				Size:      it.Size,
				Color:     it.Color,
				Subtotal:  sub,
			})
		}

		if err := r.NoteItems().CreateBulk(ctx, noteID, lines); err != nil {
			return dbError(u.log, "create note: items", err, zap.Int64("note_id", noteID))
		}

		total := model.SumMoney(subtotals...)
		if err := r.Notes().UpdateTotal(ctx, noteID, total); err != nil {
			return dbError(u.log, "create note: total", err, zap.Int64("note_id", noteID))
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			Action:       model.AuditActionCreateNote,
			ResourceType: model.AuditResourceNote,
			ResourceID:   noteID,
			AfterJSON: toJSON(map[string]any{
				"customer_id": in.CustomerID,
				"items":       len(lines),
				"total":       total.StringFixed(model.MoneyPlaces),
			}),
			CreatedAt: u.now(),
		}); err != nil {
			return dbError(u.log, "create note: audit", err, zap.Int64("note_id", noteID))
		}

		out = CreateNoteOutput{NoteID: noteID, Total: total}
		return nil
	})

	if err != nil {
		return CreateNoteOutput{}, txResult(u.log, "create note", err)
	}
	return out, nil
}

type ConfirmSaleOutput struct {
	NoteID   int64            `json:"note_id"`
	Status   model.NoteStatus `json:"status"`
	SaleDate string           `json:"sale_date"`
}

// ConfirmSaleはPENDINGの伝票の全明細分の在庫を減らしてCONFIRMEDにする。
// 1行でも減らす前に全行の在庫を確認する
func (u *SalesNoteUsecase) ConfirmSale(ctx context.Context, noteID int64) (ConfirmSaleOutput, error) {
	if noteID <= 0 {
		return ConfirmSaleOutput{}, invalidf("invalid note id")
	}

	var (
		out   ConfirmSaleOutput
		event model.SaleConfirmed
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		note, err := r.Notes().FindByIDForUpdate(ctx, noteID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundf("sales note %d not found", noteID)
		}
		if err != nil {
			return dbError(u.log, "confirm sale: find note", err, zap.Int64("note_id", noteID))
		}
		if note.Status.IsConfirmed() {
			return NewError(KindConflict, fmt.Sprintf("sales note %d already confirmed", noteID))
		}

		items, err := r.NoteItems().ListByNoteID(ctx, noteID)
		if err != nil {
			return dbError(u.log, "confirm sale: items", err, zap.Int64("note_id", noteID))
		}

		//確認フェーズ（全行OKになるまで何も書かない）
		if err := u.checkStock(ctx, r, items); err != nil {
			return err
		}

		//更新フェーズ
		for _, it := range items {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return dbError(u.log, "confirm sale: decrease stock", err,
					zap.Int64("note_id", noteID), zap.Int64("product_id", it.ProductID))
			}
			if !ok {
				return NewError(KindInsufficientStock, fmt.Sprintf("insufficient stock for product %d", it.ProductID))
			}

			nid := noteID
			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				ProductID: it.ProductID,
				NoteID:    &nid,
				Delta:     -it.Quantity,
				Reason:    string(model.AdjustmentSaleConfirmation),
				CreatedAt: u.now(),
			}); err != nil {
				return dbError(u.log, "confirm sale: adjustment", err, zap.Int64("note_id", noteID))
			}
		}

		saleDate := model.DateOf(u.now())
		ok, err := r.Notes().MarkConfirmed(ctx, noteID, saleDate)
		if err != nil {
			return dbError(u.log, "confirm sale: mark confirmed", err, zap.Int64("note_id", noteID))
		}
		if !ok {
			return NewError(KindConflict, fmt.Sprintf("sales note %d already confirmed", noteID))
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			Action:       model.AuditActionConfirmSale,
			ResourceType: model.AuditResourceNote,
			ResourceID:   noteID,
			BeforeJSON:   toJSON(map[string]any{"status": note.Status}),
			AfterJSON: toJSON(map[string]any{
				"status":    model.NoteStatusConfirmed,
				"sale_date": model.FormatDate(saleDate),
			}),
			CreatedAt: u.now(),
		}); err != nil {
			return dbError(u.log, "confirm sale: audit", err, zap.Int64("note_id", noteID))
		}

		out = ConfirmSaleOutput{
			NoteID:   noteID,
			Status:   model.NoteStatusConfirmed,
			SaleDate: model.FormatDate(saleDate),
		}
		event = saleConfirmedEvent(note, saleDate, items, u.now())
		return nil
	})

	if err != nil {
		return ConfirmSaleOutput{}, txResult(u.log, "confirm sale", err, zap.Int64("note_id", noteID))
	}

	//commit後。送信に失敗しても売上は戻さない
	if err := u.publisher.PublishSaleConfirmed(ctx, event); err != nil {
		u.log.Warn("publish sale confirmed failed",
			zap.Int64("note_id", noteID),
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
	}

	return out, nil
}

// checkStockは伝票の全商品をid昇順でロックし（確定同士が逆順で待ち合わない）、
// 商品ごとの数量合計を在庫と比べる
func (u *SalesNoteUsecase) checkStock(ctx context.Context, r repo.TxRepos, items []model.NoteLineItem) error {
	need := make(map[int64]int64, len(items))
	for _, it := range items {
		need[it.ProductID] += it.Quantity
	}

	ids := make([]int64, 0, len(need))
	for id := range need {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	locked := make(map[int64]model.Product, len(ids))
	for _, id := range ids {
		p, err := r.Products().FindByIDForUpdate(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundf("product %d not found", id)
		}
		if err != nil {
			return dbError(u.log, "confirm sale: lock product", err, zap.Int64("product_id", id))
		}
		locked[id] = p
	}

	//明細の順で報告
	for _, it := range items {
		p := locked[it.ProductID]
		if p.Stock < need[it.ProductID] {
			return insufficientStock(p, need[it.ProductID])
		}
	}
	return nil
}

type FilterNotesInput struct {
	NoteID    string
	Customer  string
	StartDate string
	EndDate   string
}

type NoteSummaryOutput struct {
	NoteID       int64            `json:"note_id"`
	Date         string           `json:"date"`
	SaleDate     *string          `json:"sale_date"`
	Total        decimal.Decimal  `json:"total"`
	Status       model.NoteStatus `json:"status"`
	CustomerID   int64            `json:"customer_id"`
	CustomerName string           `json:"customer_name"`
}

// FilterNotesは確定済み伝票を売上日の古い順に返す
func (u *SalesNoteUsecase) FilterNotes(ctx context.Context, in FilterNotesInput) ([]NoteSummaryOutput, error) {
	f, err := u.validator.ParseFilter(in)
	if err != nil {
		return []NoteSummaryOutput{}, err
	}

	var rows []repo.NoteSummary
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		rows, err = r.Notes().ListConfirmed(ctx, f)
		if err != nil {
			return dbError(u.log, "filter notes", err)
		}
		return nil
	})
	if err != nil {
		return []NoteSummaryOutput{}, txResult(u.log, "filter notes", err)
	}

	return toSummaryOutputs(rows), nil
}

type NoteItemOutput struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type NoteDetailOutput struct {
	NoteSummaryOutput
	OrderState model.OrderState `json:"order_state"`
	Notes      *string          `json:"notes"`
	Items      []NoteItemOutput `json:"items"`
}

func (u *SalesNoteUsecase) GetNote(ctx context.Context, noteID int64) (NoteDetailOutput, error) {
	if noteID <= 0 {
		return NoteDetailOutput{}, invalidf("invalid note id")
	}

	var out NoteDetailOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		n, err := r.Notes().FindByID(ctx, noteID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundf("sales note %d not found", noteID)
		}
		if err != nil {
			return dbError(u.log, "get note", err, zap.Int64("note_id", noteID))
		}

		customerName := ""
		c, err := r.Customers().FindByID(ctx, n.CustomerID)
		switch {
		case err == nil:
			customerName = c.Name
		case !errors.Is(err, repo.ErrNotFound):
			return dbError(u.log, "get note: customer", err, zap.Int64("note_id", noteID))
		}

		items, err := r.NoteItems().ListByNoteID(ctx, noteID)
		if err != nil {
			return dbError(u.log, "get note: items", err, zap.Int64("note_id", noteID))
		}

		names := make(map[int64]string, len(items))
		outItems := make([]NoteItemOutput, 0, len(items))
		for _, it := range items {
			name, seen := names[it.ProductID]
			if !seen {
				p, err := r.Products().FindByID(ctx, it.ProductID)
				if err != nil && !errors.Is(err, repo.ErrNotFound) {
					return dbError(u.log, "get note: product", err, zap.Int64("product_id", it.ProductID))
				}
				name = p.Name
				names[it.ProductID] = name
			}
			outItems = append(outItems, NoteItemOutput{
				ID:          it.ID,
				ProductID:   it.ProductID,
				ProductName: name,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				Size:        it.Size,
				Color:       it.Color,
				Subtotal:    it.Subtotal,
			})
		}

		out = NoteDetailOutput{
			NoteSummaryOutput: toSummaryOutput(repo.NoteSummary{
				NoteID:       n.ID,
				Date:         n.Date,
				SaleDate:     n.SaleDate,
				Total:        n.Total,
				Status:       n.Status,
				CustomerID:   n.CustomerID,
				CustomerName: customerName,
			}),
			OrderState: n.OrderState,
			Notes:      n.Notes,
			Items:      outItems,
		}
		return nil
	})

	if err != nil {
		return NoteDetailOutput{}, txResult(u.log, "get note", err)
	}
	return out, nil
}

type ListNotesInput struct {
	Page   int
	Limit  int
	Search string
}

type NoteListOutput struct {
	Items      []NoteSummaryOutput `json:"items"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
}

// ListNotesは全伝票を新しい順にページングする
func (u *SalesNoteUsecase) ListNotes(ctx context.Context, in ListNotesInput) (NoteListOutput, error) {
	if in.Page < 1 {
		return NoteListOutput{}, invalidf("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return NoteListOutput{}, invalidf("invalid limit")
	}
	if len(in.Search) > 100 {
		return NoteListOutput{}, invalidf("search too long")
	}

	var (
		rows  []repo.NoteSummary
		total int64
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		rows, total, err = r.Notes().List(ctx, repo.NoteListQuery{
			Page:   in.Page,
			Limit:  in.Limit,
			Search: strings.TrimSpace(in.Search),
		})
		if err != nil {
			return dbError(u.log, "list notes", err)
		}
		return nil
	})
	if err != nil {
		return NoteListOutput{}, txResult(u.log, "list notes", err)
	}

	return NoteListOutput{
		Items:      toSummaryOutputs(rows),
		Total:      total,
		Page:       in.Page,
		Limit:      in.Limit,
		TotalPages: int((total + int64(in.Limit) - 1) / int64(in.Limit)),
	}, nil
}

func insufficientStock(p model.Product, requested int64) error {
	return NewError(KindInsufficientStock, fmt.Sprintf(
		"insufficient stock for product %d (%s): available %d, requested %d",
		p.ID, p.Name, p.Stock, requested,
	))
}

func saleConfirmedEvent(n model.SalesNote, saleDate time.Time, items []model.NoteLineItem, at time.Time) model.SaleConfirmed {
	lines := make([]model.SaleConfirmedLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, model.SaleConfirmedLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		})
	}
	return model.SaleConfirmed{
		EventID:    uuid.NewString(),
		NoteID:     n.ID,
		CustomerID: n.CustomerID,
		SaleDate:   saleDate,
		Total:      n.Total,
		Lines:      lines,
		OccurredAt: at.UTC(),
	}
}

func toSummaryOutput(s repo.NoteSummary) NoteSummaryOutput {
	var saleDate *string
	if s.SaleDate != nil {
		d := model.FormatDate(*s.SaleDate)
		saleDate = &d
	}
	return NoteSummaryOutput{
		NoteID:       s.NoteID,
		Date:         model.FormatDate(s.Date),
		SaleDate:     saleDate,
		Total:        s.Total,
		Status:       s.Status,
		CustomerID:   s.CustomerID,
		CustomerName: s.CustomerName,
	}
}

func toSummaryOutputs(rows []repo.NoteSummary) []NoteSummaryOutput {
	outs := make([]NoteSummaryOutput, 0, len(rows))
	for _, row := range rows {
		outs = append(outs, toSummaryOutput(row))
	}
	return outs
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// 監査用の小さなmapなのでmarshalは失敗しない
func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
