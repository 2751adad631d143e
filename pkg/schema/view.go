package schema

import "time"

const CatalogViewSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "catalog_view",
	"fields" : [
		{"name": "run_id", "type": "string"},
		{"name": "outcome", "type": "string"},
		{"name": "products", "type": "long"},
		{"name": "duration_ms", "type": "long"},
		{"name": "error", "type": "string"},
		{"name": "viewed_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

type CatalogViewV1 struct {
	RunID      string    `avro:"run_id"`
	Outcome    string    `avro:"outcome"`
	Products   int64     `avro:"products"`
	DurationMs int64     `avro:"duration_ms"`
	Error      string    `avro:"error"`
	ViewedAt   time.Time `avro:"viewed_at"`
}
