package repository

import (
	"context"

	"salesnotes/internal/domain/model"
)

//監査ログの絞り込み条件。
type AuditLogFilter struct {
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *int64
	Limit        int
	Offset       int
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error

	//新しい順。Limit/Offsetを適用
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)

	//条件に合う件数（Limit/Offsetは無視）
	Count(ctx context.Context, filter AuditLogFilter) (int64, error)
}
