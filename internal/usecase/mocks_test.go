package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"salesnotes/internal/domain/model"
	repo "salesnotes/internal/repository"
	"salesnotes/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMockは固定のreposでfnを実行する
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	products  repo.ProductRepository
	customers repo.CustomerRepository
	notes     repo.SalesNoteRepository
	noteItems repo.NoteItemRepository
	inventory repo.InventoryRepository
	auditLogs repo.AuditLogRepository
}

func (r *TxReposMock) Products() repo.ProductRepository    { return r.products }
func (r *TxReposMock) Customers() repo.CustomerRepository  { return r.customers }
func (r *TxReposMock) Notes() repo.SalesNoteRepository     { return r.notes }
func (r *TxReposMock) NoteItems() repo.NoteItemRepository  { return r.noteItems }
func (r *TxReposMock) Inventory() repo.InventoryRepository { return r.inventory }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository  { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProductRepoMock) ListLowStock(ctx context.Context, threshold int64) ([]model.Product, error) {
	args := m.Called(ctx, threshold)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type CustomerRepoMock struct{ mock.Mock }

func (m *CustomerRepoMock) List(ctx context.Context, q repo.CustomerListQuery) ([]model.Customer, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Customer)
	return items, args.Error(1)
}

func (m *CustomerRepoMock) FindByID(ctx context.Context, id int64) (model.Customer, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Customer)
	return c, args.Error(1)
}

func (m *CustomerRepoMock) Create(ctx context.Context, c model.Customer) (model.Customer, error) {
	args := m.Called(ctx, c)
	created, _ := args.Get(0).(model.Customer)
	return created, args.Error(1)
}

func (m *CustomerRepoMock) Update(ctx context.Context, c model.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CustomerRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *CustomerRepoMock) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type NoteRepoMock struct{ mock.Mock }

func (m *NoteRepoMock) FindByID(ctx context.Context, id int64) (model.SalesNote, error) {
	args := m.Called(ctx, id)
	n, _ := args.Get(0).(model.SalesNote)
	return n, args.Error(1)
}

func (m *NoteRepoMock) FindByIDForUpdate(ctx context.Context, id int64) (model.SalesNote, error) {
	args := m.Called(ctx, id)
	n, _ := args.Get(0).(model.SalesNote)
	return n, args.Error(1)
}

func (m *NoteRepoMock) Create(ctx context.Context, n model.SalesNote) (int64, error) {
	args := m.Called(ctx, n)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NoteRepoMock) UpdateTotal(ctx context.Context, id int64, total decimal.Decimal) error {
	args := m.Called(ctx, id, total)
	return args.Error(0)
}

func (m *NoteRepoMock) MarkConfirmed(ctx context.Context, id int64, saleDate time.Time) (bool, error) {
	args := m.Called(ctx, id, saleDate)
	return args.Bool(0), args.Error(1)
}

func (m *NoteRepoMock) ListConfirmed(ctx context.Context, f repo.NoteFilter) ([]repo.NoteSummary, error) {
	args := m.Called(ctx, f)
	rows, _ := args.Get(0).([]repo.NoteSummary)
	return rows, args.Error(1)
}

func (m *NoteRepoMock) List(ctx context.Context, q repo.NoteListQuery) ([]repo.NoteSummary, int64, error) {
	args := m.Called(ctx, q)
	rows, _ := args.Get(0).([]repo.NoteSummary)
	return rows, args.Get(1).(int64), args.Error(2)
}

func (m *NoteRepoMock) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NoteRepoMock) CountByCustomerID(ctx context.Context, customerID int64) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

type NoteItemRepoMock struct{ mock.Mock }

func (m *NoteItemRepoMock) CreateBulk(ctx context.Context, noteID int64, items []model.NoteLineItem) error {
	args := m.Called(ctx, noteID, items)
	return args.Error(0)
}

func (m *NoteItemRepoMock) ListByNoteID(ctx context.Context, noteID int64) ([]model.NoteLineItem, error) {
	args := m.Called(ctx, noteID)
	items, _ := args.Get(0).([]model.NoteLineItem)
	return items, args.Error(1)
}

func (m *NoteItemRepoMock) CountByProductID(ctx context.Context, productID int64) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	args := m.Called(ctx, productID, newStock)
	return args.Error(0)
}

func (m *InventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	args := m.Called(ctx, adj)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

func (m *AuditRepoMock) Count(ctx context.Context, filter repo.AuditLogFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) PublishSaleConfirmed(ctx context.Context, ev model.SaleConfirmed) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

// =====================
// helpers
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func assertKind(t *testing.T, err error, want usecase.ErrorKind) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Equal(t, want, usecase.KindOf(err), "err=%q", err.Error())
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
