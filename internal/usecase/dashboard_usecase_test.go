package usecase_test

import (
	"context"
	"errors"
	"testing"

	"salesnotes/internal/domain/model"
	repo "salesnotes/internal/repository"
	"salesnotes/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDashboardUsecase_Stats(t *testing.T) {
	pRepo := new(ProductRepoMock)
	cRepo := new(CustomerRepoMock)
	nRepo := new(NoteRepoMock)
	tx := &TxManagerMock{Repos: &TxReposMock{products: pRepo, customers: cRepo, notes: nRepo}}
	tx.On("WithinTx", mock.Anything).Return(nil)
	uc := usecase.NewDashboardUsecase(tx, zap.NewNop(), 5)

	cRepo.On("Count", mock.Anything).Return(int64(3), nil)
	nRepo.On("Count", mock.Anything).Return(int64(7), nil)
	pRepo.On("Count", mock.Anything).Return(int64(2), nil)
	pRepo.On("List", mock.Anything, repo.ProductListQuery{}).Return([]model.Product{
		{ID: 1, Stock: 4, Cost: dec("2.505")},
		{ID: 2, Stock: 10, Cost: dec("1.5")},
	}, nil)

	s, err := uc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.TotalCustomers)
	assert.Equal(t, int64(2), s.TotalProducts)
	assert.Equal(t, int64(7), s.TotalSalesNotes)
	assert.Equal(t, 1, s.LowStockCount)
	// 4*2.505 + 10*1.5 = 10.02 + 15
	assert.True(t, s.InventoryCost.Equal(dec("25.02")), "cost=%s", s.InventoryCost)

	// 4回の読み取りは1トランザクション
	tx.AssertNumberOfCalls(t, "WithinTx", 1)
}

func TestDashboardUsecase_Stats_DBError(t *testing.T) {
	cRepo := new(CustomerRepoMock)
	pRepo := new(ProductRepoMock)
	tx := &TxManagerMock{Repos: &TxReposMock{products: pRepo, customers: cRepo, notes: new(NoteRepoMock)}}
	tx.On("WithinTx", mock.Anything).Return(nil)
	uc := usecase.NewDashboardUsecase(tx, zap.NewNop(), 5)
	cRepo.On("Count", mock.Anything).Return(int64(0), errors.New("boom"))

	_, err := uc.Stats(context.Background())
	assertKind(t, err, usecase.KindInternal)
	pRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestAuditLogUsecase_List(t *testing.T) {
	aRepo := new(AuditRepoMock)
	uc := usecase.NewAuditLogUsecase(aRepo, zap.NewNop())

	_, err := uc.List(context.Background(), usecase.AuditLogListInput{Action: "DROP_TABLE"})
	assertKind(t, err, usecase.KindInvalidRequest)

	_, err = uc.List(context.Background(), usecase.AuditLogListInput{Limit: 500})
	assertErrContains(t, err, "invalid limit")

	id := int64(4)
	match := mock.MatchedBy(func(f repo.AuditLogFilter) bool {
		return f.Action != nil && *f.Action == model.AuditActionConfirmSale &&
			f.ResourceType != nil && *f.ResourceType == model.AuditResourceNote &&
			f.ResourceID != nil && *f.ResourceID == 4 &&
			f.Limit == 20 && f.Offset == 20
	})
	aRepo.On("Count", mock.Anything, match).Return(int64(21), nil)
	aRepo.On("List", mock.Anything, match).Return([]model.AuditLog{{ID: 1}}, nil)

	page, err := uc.List(context.Background(), usecase.AuditLogListInput{
		Action:       "CONFIRM_SALE",
		ResourceType: "sales_note",
		ResourceID:   &id,
		Limit:        20,
		Offset:       20,
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(21), page.Total)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, 20, page.Offset)
	aRepo.AssertExpectations(t)
}

func TestAuditLogUsecase_List_DefaultsAndDeleteActions(t *testing.T) {
	aRepo := new(AuditRepoMock)
	uc := usecase.NewAuditLogUsecase(aRepo, zap.NewNop())

	match := mock.MatchedBy(func(f repo.AuditLogFilter) bool {
		return f.Action != nil && *f.Action == model.AuditActionDeleteCustomer &&
			f.ResourceType != nil && *f.ResourceType == model.AuditResourceCustomer &&
			f.Limit == 50
	})
	aRepo.On("Count", mock.Anything, match).Return(int64(0), nil)
	aRepo.On("List", mock.Anything, match).Return([]model.AuditLog{}, nil)

	page, err := uc.List(context.Background(), usecase.AuditLogListInput{
		Action:       "DELETE_CUSTOMER",
		ResourceType: "customer",
	})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 50, page.Limit)
	aRepo.AssertExpectations(t)
}

func TestAuditLogUsecase_List_CountError(t *testing.T) {
	aRepo := new(AuditRepoMock)
	uc := usecase.NewAuditLogUsecase(aRepo, zap.NewNop())
	aRepo.On("Count", mock.Anything, mock.Anything).Return(int64(0), errors.New("boom"))

	page, err := uc.List(context.Background(), usecase.AuditLogListInput{})
	assertKind(t, err, usecase.KindInternal)
	assert.NotNil(t, page.Items)
	aRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}
