package usecase

import (
	"errors"
	"fmt"

	repo "salesnotes/internal/repository"

	"go.uber.org/zap"
)

// ErrorKindはusecaseの失敗の種類。handlerでHTTPステータスに変換する
type ErrorKind string

const (
	KindInvalidRequest    ErrorKind = "INVALID_REQUEST"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindInsufficientStock ErrorKind = "INSUFFICIENT_STOCK"
	KindConflict          ErrorKind = "CONFLICT"
	KindInternal          ErrorKind = "INTERNAL"
)

// DB失敗時の共通メッセージ（原因はログに出し、返さない）
const msgDBError = "db error"

type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewError(kind ErrorKind, message string) error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

func AsError(err error) (*Error, bool) {
	var ue *Error
	ok := errors.As(err, &ue)
	return ue, ok
}

// KindOfは*Error以外ならKindInternal
func KindOf(err error) ErrorKind {
	if ue, ok := AsError(err); ok {
		return ue.Kind
	}
	return KindInternal
}

func invalidf(format string, args ...any) error {
	return NewError(KindInvalidRequest, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return NewError(KindNotFound, fmt.Sprintf(format, args...))
}

// dbErrorは原因をログに出して呼び出し側には隠す。
// ロック・直列化の失敗はConflictにしてリトライさせる
func dbError(log *zap.Logger, op string, err error, fields ...zap.Field) error {
	if errors.Is(err, repo.ErrConflict) {
		return NewError(KindConflict, "resource busy, retry")
	}
	log.Error(op, append(fields, zap.Error(err))...)
	return NewError(KindInternal, msgDBError)
}

// txResultはWithinTxからの*Errorはそのまま返し、commit失敗などはdbErrorへ
func txResult(log *zap.Logger, op string, err error, fields ...zap.Field) error {
	if err == nil {
		return nil
	}
	if _, ok := AsError(err); ok {
		return err
	}
	return dbError(log, op, err, fields...)
}
