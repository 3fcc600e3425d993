package avro

// SaleConfirmedSchema is the value schema of the sales topic.
// Money travels as decimal strings with two places.
const SaleConfirmedSchema = `{
  "type": "record",
  "name": "SaleConfirmed",
  "namespace": "salesnotes.events",
  "fields": [
    {"name": "event_id", "type": "string"},
    {"name": "note_id", "type": "long"},
    {"name": "customer_id", "type": "long"},
    {"name": "sale_date", "type": "string"},
    {"name": "total", "type": "string"},
    {"name": "lines", "type": {"type": "array", "items": {
      "type": "record",
      "name": "SaleConfirmedLine",
      "fields": [
        {"name": "product_id", "type": "long"},
        {"name": "quantity", "type": "long"},
        {"name": "unit_price", "type": "string"},
        {"name": "subtotal", "type": "string"}
      ]
    }}},
    {"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
  ]
}`
