package repository

import (
	"context"
	"strings"

	"salesnotes/internal/domain/model"
	repo "salesnotes/internal/repository"

	"gorm.io/gorm"
)

type CustomerGormRepository struct {
	db *gorm.DB
}

func NewCustomerGormRepository(db *gorm.DB) *CustomerGormRepository {
	return &CustomerGormRepository{db: db}
}

func (r *CustomerGormRepository) List(ctx context.Context, q repo.CustomerListQuery) ([]model.Customer, error) {
	tx := r.db.WithContext(ctx).Model(&model.Customer{})

	if s := strings.TrimSpace(q.Q); s != "" {
		like := likePattern(s)
		tx = tx.Where("(name_lower LIKE ? ESCAPE '\\' OR dni LIKE ? ESCAPE '\\')", like, like)
	}

	var customers []model.Customer
	if err := tx.Order("id asc").Find(&customers).Error; err != nil {
		return []model.Customer{}, err
	}
	return customers, nil
}

func (r *CustomerGormRepository) FindByID(ctx context.Context, id int64) (model.Customer, error) {
	var c model.Customer
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return model.Customer{}, translate(err)
	}
	return c, nil
}

func (r *CustomerGormRepository) Create(ctx context.Context, c model.Customer) (model.Customer, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Customer{}, translate(err)
	}
	return c, nil
}

func (r *CustomerGormRepository) Update(ctx context.Context, c model.Customer) error {
	res := r.db.WithContext(ctx).Model(&model.Customer{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"name":       c.Name,
		"name_lower": model.SearchKey(c.Name),
		"dni":        c.DNI,
		"address":    c.Address,
		"phone":      c.Phone,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 顧客を削除。伝票から参照されていれば ErrConflict
func (r *CustomerGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Customer{})
	if res.Error != nil {
		return translateDelete(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CustomerGormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Customer{}).Count(&n).Error
	return n, err
}
