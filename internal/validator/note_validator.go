package validator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"salesnotes/internal/domain/model"
	"salesnotes/internal/repository"
	"salesnotes/internal/usecase"

	"github.com/shopspring/decimal"
)

// 明細タプル1件分の項目
const tupleLen = 5

const tupleShape = "[product_id, quantity, unit_price, size, color]"

type noteValidator struct{}

// usecaseからはinterfaceだけが見える
func NewNoteValidator() usecase.NoteValidator {
	return &noteValidator{}
}

func (v *noteValidator) DecodeLineItems(raw []json.RawMessage) ([]usecase.LineItemInput, error) {
	items := make([]usecase.LineItemInput, 0, len(raw))
	for i, r := range raw {
		it, err := decodeTuple(i, r)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func decodeTuple(i int, raw json.RawMessage) (usecase.LineItemInput, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) != tupleLen {
		return usecase.LineItemInput{}, invalid("items[%d] must be %s", i, tupleShape)
	}

	productID, ok := decodeInt(fields[0])
	if !ok || productID <= 0 {
		return usecase.LineItemInput{}, invalid("items[%d]: product_id must be a positive integer", i)
	}
	qty, ok := decodeInt(fields[1])
	if !ok || qty <= 0 {
		return usecase.LineItemInput{}, invalid("items[%d]: quantity must be a positive integer", i)
	}
	price, ok := decodeDecimal(fields[2])
	if !ok || price.IsNegative() {
		return usecase.LineItemInput{}, invalid("items[%d]: unit_price must be a number >= 0", i)
	}

	var size, color string
	if err := json.Unmarshal(fields[3], &size); err != nil {
		return usecase.LineItemInput{}, invalid("items[%d]: size must be a string", i)
	}
	if err := json.Unmarshal(fields[4], &color); err != nil {
		return usecase.LineItemInput{}, invalid("items[%d]: color must be a string", i)
	}

	return usecase.LineItemInput{
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: price,
		Size:      strings.TrimSpace(size),
		Color:     strings.TrimSpace(color),
	}, nil
}

func (v *noteValidator) ParseFilter(in usecase.FilterNotesInput) (repository.NoteFilter, error) {
	f := repository.NoteFilter{
		NoteID:   strings.TrimSpace(in.NoteID),
		Customer: strings.TrimSpace(in.Customer),
	}

	start, err := parseDate("start_date", in.StartDate)
	if err != nil {
		return repository.NoteFilter{}, err
	}
	end, err := parseDate("end_date", in.EndDate)
	if err != nil {
		return repository.NoteFilter{}, err
	}
	f.StartDate = start
	f.EndDate = end
	return f, nil
}

// 空なら未指定
func parseDate(field string, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return nil, invalid("%s must be YYYY-MM-DD", field)
	}
	d := model.DateOf(t)
	return &d, nil
}

// 整数のみ（2はOK、2.5や"x"はNG）
func decodeInt(raw json.RawMessage) (int64, bool) {
	if isNull(raw) {
		return 0, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return i, true
}

func decodeDecimal(raw json.RawMessage) (decimal.Decimal, bool) {
	if isNull(raw) {
		return decimal.Zero, false
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func invalid(format string, args ...any) error {
	return usecase.NewError(usecase.KindInvalidRequest, fmt.Sprintf(format, args...))
}
