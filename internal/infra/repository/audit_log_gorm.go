package repository

import (
	"context"

	"salesnotes/internal/domain/model"
	repo "salesnotes/internal/repository"

	"gorm.io/gorm"
)

const (
	auditDefaultLimit = 50
	auditMaxLimit     = 200
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

// 監査ログは追記のみ
func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(&log).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *auditLogGormRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	limit := filter.Limit
	if limit <= 0 || limit > auditMaxLimit {
		limit = auditDefaultLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	logs := []model.AuditLog{}
	err := r.db.WithContext(ctx).
		Scopes(auditFilterScope(filter)).
		Order("id DESC"). //新しい順
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return []model.AuditLog{}, translate(err)
	}
	return logs, nil
}

func (r *auditLogGormRepository) Count(ctx context.Context, filter repo.AuditLogFilter) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.AuditLog{}).
		Scopes(auditFilterScope(filter)).
		Count(&n).Error
	if err != nil {
		return 0, translate(err)
	}
	return n, nil
}

// List と Count で同じ絞り込みを使う
func auditFilterScope(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Action != nil {
			q = q.Where("action = ?", *f.Action)
		}
		if f.ResourceType != nil {
			q = q.Where("resource_type = ?", *f.ResourceType)
		}
		if f.ResourceID != nil {
			q = q.Where("resource_id = ?", *f.ResourceID)
		}
		return q
	}
}
