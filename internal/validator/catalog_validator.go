package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"salesnotes/internal/usecase"
)

var dniPattern = regexp.MustCompile(`^\d{8}$`)

type catalogValidator struct{}

func NewCatalogValidator() usecase.CatalogValidator {
	return &catalogValidator{}
}

func (v *catalogValidator) ValidateProduct(in usecase.ProductInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return invalid("name required")
	}
	if utf8.RuneCountInString(name) > 255 {
		return invalid("name too long")
	}
	if in.Stock < 0 {
		return invalid("stock must be >= 0")
	}
	if in.Cost.IsNegative() {
		return invalid("cost must be >= 0")
	}
	if in.Price.IsNegative() {
		return invalid("price must be >= 0")
	}
	return nil
}

func (v *catalogValidator) ValidateCustomer(in usecase.CustomerInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return invalid("name required")
	}
	if utf8.RuneCountInString(name) > 255 {
		return invalid("name too long")
	}
	// 8桁の数字、区切りなし
	if !dniPattern.MatchString(strings.TrimSpace(in.DNI)) {
		return invalid("dni must be 8 digits")
	}
	if utf8.RuneCountInString(in.Address) > 255 {
		return invalid("address too long")
	}
	if utf8.RuneCountInString(in.Phone) > 30 {
		return invalid("phone too long")
	}
	return nil
}
