package repository

import (
	"errors"
	"strings"

	repo "salesnotes/internal/repository"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// translateはドライバのエラーをrepositoryのエラーに寄せる。
// 知らないエラーはそのまま返す
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return repo.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repo.ErrConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ForeignKeyViolation:
			return repo.ErrNotFound
		case pgerrcode.UniqueViolation,
			pgerrcode.LockNotAvailable,
			pgerrcode.SerializationFailure,
			pgerrcode.DeadlockDetected:
			return repo.ErrConflict
		}
		return err
	}

	// sqliteは制約違反を文字列でしか返さない
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return repo.ErrConflict
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return repo.ErrNotFound
	}
	return err
}

// translateDeleteはDELETE用。ここでのFK違反は「参照先がない」ではなく
// 「まだ参照されている」なのでErrConflictにする
func translateDelete(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return repo.ErrConflict
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return repo.ErrConflict
	}
	if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
		return repo.ErrConflict
	}
	return translate(err)
}
