package model

import (
	"strings"

	"gorm.io/gorm"
)

// SearchKeyは名前の保存・検索用の形。小文字化はSQLではなくここで行う
// （SQLiteのLOWER()はÑやÉを変換しない）
func SearchKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// 検索用の小文字名をセット
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	p.NameLower = SearchKey(p.Name)
	return nil
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	c.NameLower = SearchKey(c.Name)
	return nil
}
