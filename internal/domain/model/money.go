package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyPlacesは保存する金額の小数桁数
const MoneyPlaces = 2

// RoundMoneyは0から遠い方へ四捨五入: 0.125 -> 0.13, -0.125 -> -0.13
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Subtotalはround(unitPrice * qty)
func Subtotal(unitPrice decimal.Decimal, qty int64) decimal.Decimal {
	return RoundMoney(unitPrice.Mul(decimal.NewFromInt(qty)))
}

// SumMoneyはround(sum(amounts))
func SumMoney(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return RoundMoney(total)
}

// DateLayoutは日付のやり取りの形式
const DateLayout = "2006-01-02"

// DateOfは時刻を落とす。日付はUTCの0時で持つ
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
