package repository

import (
	"context"
	"strings"
	"time"

	"salesnotes/internal/domain/model"
	repo "salesnotes/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const noteSummaryColumns = "sales_notes.id AS note_id, sales_notes.date AS date, " +
	"sales_notes.sale_date AS sale_date, sales_notes.total AS total, sales_notes.status AS status, " +
	"sales_notes.customer_id AS customer_id, COALESCE(customers.name, '') AS customer_name"

type SalesNoteGormRepository struct {
	db *gorm.DB
}

func NewSalesNoteGormRepository(db *gorm.DB) *SalesNoteGormRepository {
	return &SalesNoteGormRepository{db: db}
}

func (r *SalesNoteGormRepository) FindByID(ctx context.Context, id int64) (model.SalesNote, error) {
	var n model.SalesNote
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		return model.SalesNote{}, translate(err)
	}
	return n, nil
}

func (r *SalesNoteGormRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.SalesNote, error) {
	var n model.SalesNote
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&n).Error
	if err != nil {
		return model.SalesNote{}, translate(err)
	}
	return n, nil
}

func (r *SalesNoteGormRepository) Create(ctx context.Context, note model.SalesNote) (int64, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&note).Error; err != nil {
		return 0, translate(err)
	}
	return note.ID, nil
}

func (r *SalesNoteGormRepository) UpdateTotal(ctx context.Context, id int64, total decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&model.SalesNote{}).
		Where("id = ?", id).
		Update("total", total)

	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// PENDINGのときだけ更新（2回目の確定はどの行にも当たらない）
func (r *SalesNoteGormRepository) MarkConfirmed(ctx context.Context, id int64, saleDate time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.SalesNote{}).
		Where("id = ? AND status = ?", id, model.NoteStatusPending).
		Updates(map[string]interface{}{
			"status":    model.NoteStatusConfirmed,
			"sale_date": saleDate,
		})

	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *SalesNoteGormRepository) ListConfirmed(ctx context.Context, f repo.NoteFilter) ([]repo.NoteSummary, error) {
	patterns := model.ConfirmedStatusPatterns()
	q := r.joined(ctx).
		Where("(LOWER(sales_notes.status) LIKE ? OR LOWER(sales_notes.status) LIKE ?)", patterns[0], patterns[1])

	if s := strings.TrimSpace(f.NoteID); s != "" {
		q = q.Where("CAST(sales_notes.id AS TEXT) LIKE ? ESCAPE '\\'", likePattern(s))
	}
	if s := strings.TrimSpace(f.Customer); s != "" {
		q = q.Where("customers.name_lower LIKE ? ESCAPE '\\'", likePattern(s))
	}

	//両端を含む
	if f.StartDate != nil {
		q = q.Where("sales_notes.sale_date >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("sales_notes.sale_date <= ?", *f.EndDate)
	}

	var rows []repo.NoteSummary
	err := q.Select(noteSummaryColumns).
		Order("sales_notes.sale_date asc").
		Order("sales_notes.id asc").
		Scan(&rows).Error
	if err != nil {
		return []repo.NoteSummary{}, err
	}
	if rows == nil {
		rows = []repo.NoteSummary{}
	}
	return rows, nil
}

func (r *SalesNoteGormRepository) List(ctx context.Context, q repo.NoteListQuery) ([]repo.NoteSummary, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 10
	}

	search := strings.TrimSpace(q.Search)
	base := func() *gorm.DB {
		tx := r.joined(ctx)
		if search != "" {
			like := likePattern(search)
			tx = tx.Where("(customers.name_lower LIKE ? ESCAPE '\\' OR CAST(sales_notes.id AS TEXT) LIKE ? ESCAPE '\\')", like, like)
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return []repo.NoteSummary{}, 0, err
	}

	var rows []repo.NoteSummary
	offset := (q.Page - 1) * q.Limit
	err := base().Select(noteSummaryColumns).
		Order("sales_notes.id desc").
		Limit(q.Limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return []repo.NoteSummary{}, 0, err
	}
	if rows == nil {
		rows = []repo.NoteSummary{}
	}
	return rows, total, nil
}

func (r *SalesNoteGormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.SalesNote{}).Count(&n).Error
	return n, err
}

// 伝票に顧客をLEFT JOIN
func (r *SalesNoteGormRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("sales_notes").
		Joins("LEFT JOIN customers ON customers.id = sales_notes.customer_id")
}

func (r *SalesNoteGormRepository) CountByCustomerID(ctx context.Context, customerID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.SalesNote{}).Where("customer_id = ?", customerID).Count(&n).Error
	return n, err
}
