package repository

import (
	"strings"

	"salesnotes/internal/domain/model"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePatternは`col LIKE ? ESCAPE '\'`用の部分一致パターンを作る。
// 入力された % と _ は文字として一致させる
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(model.SearchKey(s)) + "%"
}
