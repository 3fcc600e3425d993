package avro

import (
	"fmt"
	"time"

	"salesnotes/internal/domain/model"

	"github.com/linkedin/goavro/v2"
	"github.com/shopspring/decimal"
)

// Encoder wraps a goavro codec. Codecs are safe for concurrent use.
type Encoder struct {
	codec *goavro.Codec
}

func NewEncoder(schema string) (*Encoder, error) {
	codec, err := goavro.NewCodec(schema)
	if err != nil {
		return nil, fmt.Errorf("create avro codec: %w", err)
	}
	return &Encoder{codec: codec}, nil
}

func NewSaleConfirmedEncoder() (*Encoder, error) {
	return NewEncoder(SaleConfirmedSchema)
}

// EncodeNative converts a goavro native value to Avro binary.
func (e *Encoder) EncodeNative(native any) ([]byte, error) {
	b, err := e.codec.BinaryFromNative(nil, native)
	if err != nil {
		return nil, fmt.Errorf("encode avro binary: %w", err)
	}
	return b, nil
}

func (e *Encoder) EncodeSaleConfirmed(ev model.SaleConfirmed) ([]byte, error) {
	return e.EncodeNative(saleConfirmedNative(ev))
}

func (e *Encoder) DecodeSaleConfirmed(b []byte) (model.SaleConfirmed, error) {
	native, rest, err := e.codec.NativeFromBinary(b)
	if err != nil {
		return model.SaleConfirmed{}, fmt.Errorf("decode avro binary: %w", err)
	}
	if len(rest) != 0 {
		return model.SaleConfirmed{}, fmt.Errorf("decode avro binary: %d trailing bytes", len(rest))
	}
	m, ok := native.(map[string]any)
	if !ok {
		return model.SaleConfirmed{}, fmt.Errorf("decode avro binary: unexpected %T", native)
	}
	return saleConfirmedFromNative(m)
}

func saleConfirmedNative(ev model.SaleConfirmed) map[string]any {
	lines := make([]any, 0, len(ev.Lines))
	for _, l := range ev.Lines {
		lines = append(lines, map[string]any{
			"product_id": l.ProductID,
			"quantity":   l.Quantity,
			"unit_price": l.UnitPrice.String(),
			"subtotal":   model.RoundMoney(l.Subtotal).StringFixed(model.MoneyPlaces),
		})
	}

	return map[string]any{
		"event_id":    ev.EventID,
		"note_id":     ev.NoteID,
		"customer_id": ev.CustomerID,
		"sale_date":   model.FormatDate(ev.SaleDate),
		"total":       model.RoundMoney(ev.Total).StringFixed(model.MoneyPlaces),
		"lines":       lines,
		"occurred_at": ev.OccurredAt.UTC(),
	}
}

func saleConfirmedFromNative(m map[string]any) (model.SaleConfirmed, error) {
	var ev model.SaleConfirmed
	var err error

	ev.EventID, _ = m["event_id"].(string)
	ev.NoteID, _ = m["note_id"].(int64)
	ev.CustomerID, _ = m["customer_id"].(int64)

	saleDate, _ := m["sale_date"].(string)
	if ev.SaleDate, err = time.Parse(model.DateLayout, saleDate); err != nil {
		return model.SaleConfirmed{}, fmt.Errorf("sale_date: %w", err)
	}
	if ev.Total, err = decimalField(m, "total"); err != nil {
		return model.SaleConfirmed{}, err
	}
	ev.OccurredAt, _ = m["occurred_at"].(time.Time)

	raw, _ := m["lines"].([]any)
	ev.Lines = make([]model.SaleConfirmedLine, 0, len(raw))
	for i, r := range raw {
		lm, ok := r.(map[string]any)
		if !ok {
			return model.SaleConfirmed{}, fmt.Errorf("lines[%d]: unexpected %T", i, r)
		}
		var line model.SaleConfirmedLine
		line.ProductID, _ = lm["product_id"].(int64)
		line.Quantity, _ = lm["quantity"].(int64)
		if line.UnitPrice, err = decimalField(lm, "unit_price"); err != nil {
			return model.SaleConfirmed{}, fmt.Errorf("lines[%d]: %w", i, err)
		}
		if line.Subtotal, err = decimalField(lm, "subtotal"); err != nil {
			return model.SaleConfirmed{}, fmt.Errorf("lines[%d]: %w", i, err)
		}
		ev.Lines = append(ev.Lines, line)
	}
	return ev, nil
}

func decimalField(m map[string]any, key string) (decimal.Decimal, error) {
	s, _ := m[key].(string)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
