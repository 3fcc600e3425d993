package usecase

import (
	"context"

	"salesnotes/internal/domain/model"
	repo "salesnotes/internal/repository"

	"go.uber.org/zap"
)

type AuditLogUsecase struct {
	logs repo.AuditLogRepository
	log  *zap.Logger
}

func NewAuditLogUsecase(logs repo.AuditLogRepository, log *zap.Logger) *AuditLogUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditLogUsecase{logs: logs, log: log}
}

type AuditLogListInput struct {
	Action       string
	ResourceType string
	ResourceID   *int64
	Limit        int
	Offset       int
}

type AuditLogPage struct {
	Items  []model.AuditLog `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// Listは監査ログを新しい順に1ページ分返す。Totalは条件に合う全件数
func (u *AuditLogUsecase) List(ctx context.Context, in AuditLogListInput) (AuditLogPage, error) {
	empty := AuditLogPage{Items: []model.AuditLog{}}
	if in.Limit < 0 || in.Limit > 200 {
		return empty, invalidf("invalid limit")
	}
	if in.Offset < 0 {
		return empty, invalidf("invalid offset")
	}
	if in.ResourceID != nil && *in.ResourceID <= 0 {
		return empty, invalidf("invalid resource_id")
	}
	if in.Limit == 0 {
		in.Limit = 50
	}

	f := repo.AuditLogFilter{
		ResourceID: in.ResourceID,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}

	if in.Action != "" {
		a := model.AuditAction(in.Action)
		switch a {
		case model.AuditActionCreateNote, model.AuditActionConfirmSale, model.AuditActionUpdateStock,
			model.AuditActionDeleteProduct, model.AuditActionDeleteCustomer:
		default:
			return empty, invalidf("invalid action %q", in.Action)
		}
		f.Action = &a
	}
	if in.ResourceType != "" {
		rt := model.AuditResourceType(in.ResourceType)
		switch rt {
		case model.AuditResourceProduct, model.AuditResourceNote, model.AuditResourceCustomer:
		default:
			return empty, invalidf("invalid resource_type %q", in.ResourceType)
		}
		f.ResourceType = &rt
	}

	total, err := u.logs.Count(ctx, f)
	if err != nil {
		return empty, dbError(u.log, "count audit logs", err)
	}
	logs, err := u.logs.List(ctx, f)
	if err != nil {
		return empty, dbError(u.log, "list audit logs", err)
	}
	return AuditLogPage{Items: logs, Total: total, Limit: in.Limit, Offset: in.Offset}, nil
}
