package usecase_test

import (
	"context"
	"testing"
	"time"

	"salesnotes/internal/domain/model"
	"salesnotes/internal/infra/db"
	infrarepo "salesnotes/internal/infra/repository"
	"salesnotes/internal/usecase"
	"salesnotes/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// sqliteEnvは本物のgorm repositoryでusecaseを動かす
type sqliteEnv struct {
	db  *gorm.DB
	now time.Time
	uc  *usecase.SalesNoteUsecase
}

func newSQLiteEnv(t *testing.T) *sqliteEnv {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	env := &sqliteEnv{db: gdb, now: fixedNow}
	env.uc = usecase.NewSalesNoteUsecase(
		infrarepo.NewTxManagerGorm(gdb),
		validator.NewNoteValidator(),
		nil,
		zap.NewNop(),
	).WithClock(func() time.Time { return env.now })
	return env
}

func (e *sqliteEnv) customer(t *testing.T, name string, dni string) int64 {
	t.Helper()
	c := model.Customer{Name: name, DNI: dni}
	require.NoError(t, e.db.Create(&c).Error)
	return c.ID
}

func (e *sqliteEnv) product(t *testing.T, name string, stock int64) int64 {
	t.Helper()
	p := model.Product{Name: name, Stock: stock, Cost: dec("10"), Price: dec("20")}
	require.NoError(t, e.db.Create(&p).Error)
	return p.ID
}

func (e *sqliteEnv) stock(t *testing.T, id int64) int64 {
	t.Helper()
	var p model.Product
	require.NoError(t, e.db.First(&p, id).Error)
	return p.Stock
}

func (e *sqliteEnv) setStock(t *testing.T, id int64, stock int64) {
	t.Helper()
	require.NoError(t, e.db.Model(&model.Product{}).Where("id = ?", id).Update("stock", stock).Error)
}

func (e *sqliteEnv) note(t *testing.T, id int64) model.SalesNote {
	t.Helper()
	var n model.SalesNote
	require.NoError(t, e.db.First(&n, id).Error)
	return n
}

func (e *sqliteEnv) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Count(&n).Error)
	return n
}

func (e *sqliteEnv) createNote(t *testing.T, customerID int64, tuples ...[]any) usecase.CreateNoteOutput {
	t.Helper()
	out, err := e.uc.CreateNote(context.Background(), usecase.CreateNoteInput{
		CustomerID: customerID,
		Items:      rawItems(t, tuples...),
	})
	require.NoError(t, err)
	return out
}

func TestSQLite_ScenarioCreateThenConfirm(t *testing.T) {
	env := newSQLiteEnv(t)
	ctx := context.Background()
	cid := env.customer(t, "Ana Lopez", "12345678")
	pid := env.product(t, "Shirt", 5)

	created := env.createNote(t, cid, []any{pid, 3, 50.0, "M", "Red"})
	assert.True(t, created.Total.Equal(dec("150")), "total=%s", created.Total)
	assert.Equal(t, int64(5), env.stock(t, pid), "creation must not consume stock")

	n := env.note(t, created.NoteID)
	assert.Equal(t, model.NoteStatusPending, n.Status)
	assert.Equal(t, model.OrderStateOpen, n.OrderState)
	assert.Nil(t, n.SaleDate)

	out, err := env.uc.ConfirmSale(ctx, created.NoteID)
	require.NoError(t, err)
	assert.Equal(t, model.NoteStatusConfirmed, out.Status)
	assert.Equal(t, "2024-05-10", out.SaleDate)
	assert.Equal(t, int64(2), env.stock(t, pid))

	n = env.note(t, created.NoteID)
	assert.Equal(t, model.NoteStatusConfirmed, n.Status)
	require.NotNil(t, n.SaleDate)
	assert.Equal(t, "2024-05-10", model.FormatDate(*n.SaleDate))

	var adjs []model.InventoryAdjustment
	require.NoError(t, env.db.Find(&adjs).Error)
	require.Len(t, adjs, 1)
	assert.Equal(t, int64(-3), adjs[0].Delta)
	require.NotNil(t, adjs[0].NoteID)
	assert.Equal(t, created.NoteID, *adjs[0].NoteID)

	assert.Equal(t, int64(2), env.count(t, &model.AuditLog{}))
}

func TestSQLite_ScenarioStockDroppedBeforeConfirm(t *testing.T) {
	env := newSQLiteEnv(t)
	cid := env.customer(t, "Ana Lopez", "12345678")
	pid := env.product(t, "Shirt", 5)

	created := env.createNote(t, cid, []any{pid, 3, 50.0, "M", "Red"})
	env.setStock(t, pid, 2)

	_, err := env.uc.ConfirmSale(context.Background(), created.NoteID)
	assertKind(t, err, usecase.KindInsufficientStock)

	assert.Equal(t, int64(2), env.stock(t, pid))
	assert.Equal(t, model.NoteStatusPending, env.note(t, created.NoteID).Status)
	assert.Equal(t, int64(0), env.count(t, &model.InventoryAdjustment{}))
}

func TestSQLite_CreateRejectsQuantityAboveStock(t *testing.T) {
	env := newSQLiteEnv(t)
	cid := env.customer(t, "Ana Lopez", "12345678")
	pid := env.product(t, "Shirt", 2)

	_, err := env.uc.CreateNote(context.Background(), usecase.CreateNoteInput{
		CustomerID: cid,
		Items:      rawItems(t, []any{pid, 3, 50.0, "M", "Red"}),
	})
	assertKind(t, err, usecase.KindInsufficientStock)
}

func TestSQLite_ConfirmFailureLeavesEveryStockUnchanged(t *testing.T) {
	env := newSQLiteEnv(t)
	cid := env.customer(t, "Ana Lopez", "12345678")
	p1 := env.product(t, "Shirt", 10)
	p2 := env.product(t, "Cap", 10)
	p3 := env.product(t, "Sock", 10)

	created := env.createNote(t, cid,
		[]any{p1, 3, 10, "M", "Red"},
		[]any{p2, 2, 10, "M", "Red"},
		[]any{p3, 4, 10, "M", "Red"},
	)
	env.setStock(t, p2, 1)

	_, err := env.uc.ConfirmSale(context.Background(), created.NoteID)
	assertKind(t, err, usecase.KindInsufficientStock)

	assert.Equal(t, int64(10), env.stock(t, p1))
	assert.Equal(t, int64(1), env.stock(t, p2))
	assert.Equal(t, int64(10), env.stock(t, p3))
	assert.Equal(t, model.NoteStatusPending, env.note(t, created.NoteID).Status)
}

func TestSQLite_ConfirmDecrementsExactlyOnce(t *testing.T) {
	env := newSQLiteEnv(t)
	ctx := context.Background()
	cid := env.customer(t, "Ana Lopez", "12345678")
	p1 := env.product(t, "Shirt", 10)
	p2 := env.product(t, "Cap", 10)

	created := env.createNote(t, cid,
		[]any{p1, 3, 10, "M", "Red"},
		[]any{p2, 2, 10, "M", "Red"},
	)

	_, err := env.uc.ConfirmSale(ctx, created.NoteID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), env.stock(t, p1))
	assert.Equal(t, int64(8), env.stock(t, p2))

	_, err = env.uc.ConfirmSale(ctx, created.NoteID)
	assertKind(t, err, usecase.KindConflict)
	assert.Equal(t, int64(7), env.stock(t, p1))
	assert.Equal(t, int64(8), env.stock(t, p2))
	assert.Equal(t, int64(2), env.count(t, &model.InventoryAdjustment{}))
}

func TestSQLite_CreateIsAtomic(t *testing.T) {
	tests := []struct {
		name  string
		items func(p int64) [][]any
		kind  usecase.ErrorKind
	}{
		{
			name:  "missing product",
			items: func(p int64) [][]any { return [][]any{{p, 1, 10, "M", "Red"}, {p + 100, 1, 10, "M", "Red"}} },
			kind:  usecase.KindNotFound,
		},
		{
			name:  "insufficient stock on second line",
			items: func(p int64) [][]any { return [][]any{{p, 1, 10, "M", "Red"}, {p, 50, 10, "M", "Red"}} },
			kind:  usecase.KindInsufficientStock,
		},
		{
			name:  "short tuple",
			items: func(p int64) [][]any { return [][]any{{p, 1, 10, "M", "Red"}, {p, 1, 10}} },
			kind:  usecase.KindInvalidRequest,
		},
		{
			name:  "zero quantity",
			items: func(p int64) [][]any { return [][]any{{p, 0, 10, "M", "Red"}} },
			kind:  usecase.KindInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newSQLiteEnv(t)
			cid := env.customer(t, "Ana Lopez", "12345678")
			pid := env.product(t, "Shirt", 10)

			_, err := env.uc.CreateNote(context.Background(), usecase.CreateNoteInput{
				CustomerID: cid,
				Items:      rawItems(t, tt.items(pid)...),
			})
			assertKind(t, err, tt.kind)

			assert.Equal(t, int64(0), env.count(t, &model.SalesNote{}))
			assert.Equal(t, int64(0), env.count(t, &model.NoteLineItem{}))
			assert.Equal(t, int64(0), env.count(t, &model.AuditLog{}))
		})
	}
}

func TestSQLite_TotalRoundingIsOrderIndependent(t *testing.T) {
	env := newSQLiteEnv(t)
	cid := env.customer(t, "Ana Lopez", "12345678")
	p := env.product(t, "Button", 100)

	lines := [][]any{
		{p, 3, "0.10", "S", "White"},
		{p, 1, 0.125, "S", "White"},
		{p, 1, 1.005, "S", "White"},
	}
	reversed := [][]any{lines[2], lines[1], lines[0]}

	a := env.createNote(t, cid, lines...)
	b := env.createNote(t, cid, reversed...)

	// 0.30 + 0.13 + 1.01
	assert.True(t, a.Total.Equal(dec("1.44")), "total=%s", a.Total)
	assert.True(t, a.Total.Equal(b.Total))

	stored := env.note(t, a.NoteID)
	assert.True(t, stored.Total.Equal(dec("1.44")), "stored=%s", stored.Total)

	var items []model.NoteLineItem
	require.NoError(t, env.db.Where("note_id = ?", a.NoteID).Order("id asc").Find(&items).Error)
	require.Len(t, items, 3)
	assert.True(t, items[0].Subtotal.Equal(dec("0.3")))
	assert.True(t, items[1].Subtotal.Equal(dec("0.13")))
	assert.True(t, items[2].Subtotal.Equal(dec("1.01")))
}

func TestSQLite_UnknownCustomerCreatesNothing(t *testing.T) {
	env := newSQLiteEnv(t)
	pid := env.product(t, "Shirt", 10)

	_, err := env.uc.CreateNote(context.Background(), usecase.CreateNoteInput{
		CustomerID: 999,
		Items:      rawItems(t, []any{pid, 1, 10, "M", "Red"}),
	})
	assertKind(t, err, usecase.KindNotFound)
	assert.Equal(t, int64(0), env.count(t, &model.SalesNote{}))
}

func TestSQLite_FilterNotes(t *testing.T) {
	env := newSQLiteEnv(t)
	ctx := context.Background()
	ana := env.customer(t, "Ana Lopez", "12345678")
	juan := env.customer(t, "Juan Lopez", "87654321")
	pid := env.product(t, "Shirt", 100)

	first := env.createNote(t, ana, []any{pid, 1, 10, "M", "Red"})
	second := env.createNote(t, juan, []any{pid, 2, 10, "M", "Red"})
	pending := env.createNote(t, ana, []any{pid, 1, 10, "M", "Red"})

	//secondはfirstより1日前に売れる
	env.now = time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	_, err := env.uc.ConfirmSale(ctx, second.NoteID)
	require.NoError(t, err)
	env.now = time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC)
	_, err = env.uc.ConfirmSale(ctx, first.NoteID)
	require.NoError(t, err)

	//旧表記の確定
	legacyDate := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	legacy := model.SalesNote{
		CustomerID: juan,
		Date:       legacyDate,
		SaleDate:   &legacyDate,
		Total:      dec("5"),
		Status:     "Cancelado",
		OrderState: model.OrderStateOpen,
	}
	require.NoError(t, env.db.Create(&legacy).Error)

	ids := func(rows []usecase.NoteSummaryOutput) []int64 {
		out := make([]int64, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.NoteID)
		}
		return out
	}

	all, err := env.uc.FilterNotes(ctx, usecase.FilterNotesInput{})
	require.NoError(t, err)
	assert.Equal(t, []int64{second.NoteID, first.NoteID, legacy.ID}, ids(all))
	assert.NotContains(t, ids(all), pending.NoteID)
	assert.Equal(t, "Juan Lopez", all[0].CustomerName)

	matchingEverything, err := env.uc.FilterNotes(ctx, usecase.FilterNotesInput{
		Customer:  "LOPEZ",
		StartDate: "2024-01-01",
		EndDate:   "2024-12-31",
	})
	require.NoError(t, err)
	assert.Equal(t, ids(all), ids(matchingEverything))

	byCustomer, err := env.uc.FilterNotes(ctx, usecase.FilterNotesInput{Customer: "ana"})
	require.NoError(t, err)
	assert.Equal(t, []int64{first.NoteID}, ids(byCustomer))

	inclusive, err := env.uc.FilterNotes(ctx, usecase.FilterNotesInput{StartDate: "2024-03-03", EndDate: "2024-03-03"})
	require.NoError(t, err)
	assert.Equal(t, []int64{first.NoteID}, ids(inclusive))

	byID, err := env.uc.FilterNotes(ctx, usecase.FilterNotesInput{NoteID: "2"})
	require.NoError(t, err)
	assert.Equal(t, []int64{second.NoteID}, ids(byID))
}

func TestSQLite_GetAndListNotes(t *testing.T) {
	env := newSQLiteEnv(t)
	ctx := context.Background()
	ana := env.customer(t, "Ana Lopez", "12345678")
	juan := env.customer(t, "Juan Perez", "87654321")
	shirt := env.product(t, "Shirt", 100)
	hat := env.product(t, "Cap", 100)

	a := env.createNote(t, ana, []any{shirt, 1, 10, "M", "Red"}, []any{hat, 2, 5.5, "L", "Blue"})
	env.createNote(t, juan, []any{shirt, 1, 10, "M", "Red"})

	detail, err := env.uc.GetNote(ctx, a.NoteID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Lopez", detail.CustomerName)
	assert.Equal(t, model.NoteStatusPending, detail.Status)
	assert.Equal(t, "2024-05-10", detail.Date)
	require.Len(t, detail.Items, 2)
	assert.Equal(t, "Shirt", detail.Items[0].ProductName)
	assert.Equal(t, "Cap", detail.Items[1].ProductName)
	assert.True(t, detail.Items[1].Subtotal.Equal(dec("11")))

	page, err := env.uc.ListNotes(ctx, usecase.ListNotesInput{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, a.NoteID+1, page.Items[0].NoteID, "newest first")

	search, err := env.uc.ListNotes(ctx, usecase.ListNotesInput{Page: 1, Limit: 10, Search: "perez"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), search.Total)
	require.Len(t, search.Items, 1)
	assert.Equal(t, "Juan Perez", search.Items[0].CustomerName)
}

func TestSQLite_FilterNotes_AccentedCustomer(t *testing.T) {
	env := newSQLiteEnv(t)
	ctx := context.Background()
	jose := env.customer(t, "José Ñuñez", "12345678")
	other := env.customer(t, "Jose Nunez", "87654321")
	pid := env.product(t, "Shirt", 10)

	mine := env.createNote(t, jose, []any{pid, 1, 10, "M", "Red"})
	theirs := env.createNote(t, other, []any{pid, 1, 10, "M", "Red"})
	_, err := env.uc.ConfirmSale(ctx, mine.NoteID)
	require.NoError(t, err)
	_, err = env.uc.ConfirmSale(ctx, theirs.NoteID)
	require.NoError(t, err)

	for _, q := range []string{"ñuñez", "ÑUÑEZ", "JOSÉ ñ"} {
		rows, err := env.uc.FilterNotes(ctx, usecase.FilterNotesInput{Customer: q})
		require.NoError(t, err)
		require.Len(t, rows, 1, q)
		assert.Equal(t, mine.NoteID, rows[0].NoteID)
	}

	// % は文字として扱う
	rows, err := env.uc.FilterNotes(ctx, usecase.FilterNotesInput{Customer: "%"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}
