package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"salesnotes/internal/domain/model"
	repo "salesnotes/internal/repository"

	"go.uber.org/zap"
)

type CustomerUsecase struct {
	customers repo.CustomerRepository
	tx        repo.TransactionManager
	validator CatalogValidator
	log       *zap.Logger
}

func NewCustomerUsecase(
	customers repo.CustomerRepository,
	tx repo.TransactionManager,
	validator CatalogValidator,
	log *zap.Logger,
) *CustomerUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &CustomerUsecase{customers: customers, tx: tx, validator: validator, log: log}
}

type CustomerInput struct {
	Name    string
	DNI     string
	Address string
	Phone   string
}

func (in CustomerInput) trimmed() CustomerInput {
	return CustomerInput{
		Name:    strings.TrimSpace(in.Name),
		DNI:     strings.TrimSpace(in.DNI),
		Address: strings.TrimSpace(in.Address),
		Phone:   strings.TrimSpace(in.Phone),
	}
}

// qは名前かDNIに一致
func (u *CustomerUsecase) List(ctx context.Context, q string) ([]model.Customer, error) {
	if len(q) > 100 {
		return []model.Customer{}, invalidf("q too long")
	}

	cs, err := u.customers.List(ctx, repo.CustomerListQuery{Q: strings.TrimSpace(q)})
	if err != nil {
		return []model.Customer{}, dbError(u.log, "list customers", err)
	}
	return cs, nil
}

func (u *CustomerUsecase) Get(ctx context.Context, customerID int64) (model.Customer, error) {
	if customerID <= 0 {
		return model.Customer{}, invalidf("invalid customer id")
	}

	c, err := u.customers.FindByID(ctx, customerID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Customer{}, notFoundf("customer %d not found", customerID)
	}
	if err != nil {
		return model.Customer{}, dbError(u.log, "get customer", err, zap.Int64("customer_id", customerID))
	}
	return c, nil
}

func (u *CustomerUsecase) Create(ctx context.Context, in CustomerInput) (int64, error) {
	in = in.trimmed()
	if err := u.validator.ValidateCustomer(in); err != nil {
		return 0, err
	}

	c, err := u.customers.Create(ctx, model.Customer{
		Name:    in.Name,
		DNI:     in.DNI,
		Address: in.Address,
		Phone:   in.Phone,
	})
	if errors.Is(err, repo.ErrConflict) {
		return 0, NewError(KindConflict, "dni already registered")
	}
	if err != nil {
		return 0, dbError(u.log, "create customer", err)
	}
	return c.ID, nil
}

func (u *CustomerUsecase) Update(ctx context.Context, customerID int64, in CustomerInput) error {
	if customerID <= 0 {
		return invalidf("invalid customer id")
	}
	in = in.trimmed()
	if err := u.validator.ValidateCustomer(in); err != nil {
		return err
	}

	err := u.customers.Update(ctx, model.Customer{
		ID:      customerID,
		Name:    in.Name,
		DNI:     in.DNI,
		Address: in.Address,
		Phone:   in.Phone,
	})
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return notFoundf("customer %d not found", customerID)
	case errors.Is(err, repo.ErrConflict):
		return NewError(KindConflict, "dni already registered")
	case err != nil:
		return dbError(u.log, "update customer", err, zap.Int64("customer_id", customerID))
	}
	return nil
}

// Deleteは伝票のない顧客を削除する
func (u *CustomerUsecase) Delete(ctx context.Context, customerID int64) error {
	if customerID <= 0 {
		return invalidf("invalid customer id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Customers().FindByID(ctx, customerID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundf("customer %d not found", customerID)
		}
		if err != nil {
			return dbError(u.log, "delete customer: find", err, zap.Int64("customer_id", customerID))
		}

		// 伝票のある顧客は消さない
		n, err := r.Notes().CountByCustomerID(ctx, customerID)
		if err != nil {
			return dbError(u.log, "delete customer: count notes", err, zap.Int64("customer_id", customerID))
		}
		if n > 0 {
			return customerInUse(customerID)
		}

		err = r.Customers().Delete(ctx, customerID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return notFoundf("customer %d not found", customerID)
		case errors.Is(err, repo.ErrConflict):
			return customerInUse(customerID)
		case err != nil:
			return dbError(u.log, "delete customer", err, zap.Int64("customer_id", customerID))
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			Action:       model.AuditActionDeleteCustomer,
			ResourceType: model.AuditResourceCustomer,
			ResourceID:   customerID,
			BeforeJSON:   toJSON(map[string]any{"name": c.Name, "dni": c.DNI}),
			AfterJSON:    "{}",
			CreatedAt:    time.Now(),
		}); err != nil {
			return dbError(u.log, "delete customer: audit", err, zap.Int64("customer_id", customerID))
		}
		return nil
	})

	return txResult(u.log, "delete customer", err, zap.Int64("customer_id", customerID))
}

func customerInUse(customerID int64) error {
	return NewError(KindConflict, fmt.Sprintf("customer %d has sales notes", customerID))
}
