package flight

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/airport-ga4/report"
)

// Field metadata keys describing where an output column comes from.
const (
	MetadataSourceKey = "ga4.source"
	MetadataKindKey   = "ga4.kind"
)

// RecordSchema returns the Arrow schema of a query result: one nullable
// utf8 field per selected column, in the order given.
// The Data API returns every value as a string, metrics included.
func RecordSchema(cols []report.Column) *arrow.Schema {
	fields := make([]arrow.Field, 0, len(cols))
	for _, c := range cols {
		fields = append(fields, arrow.Field{
			Name:     c.Field,
			Type:     arrow.BinaryTypes.String,
			Nullable: true,
			Metadata: arrow.NewMetadata(
				[]string{MetadataSourceKey, MetadataKindKey},
				[]string{c.Source, c.Kind.String()},
			),
		})
	}
	return arrow.NewSchema(fields, nil)
}

// BuildRecord builds a record batch from rows. Missing or nil values are nulls.
// The caller must release the returned record.
func BuildRecord(alloc memory.Allocator, schema *arrow.Schema, rows report.RowSet) arrow.RecordBatch {
	builder := array.NewRecordBuilder(alloc, schema)
	defer builder.Release()

	for i, field := range schema.Fields() {
		sb := builder.Field(i).(*array.StringBuilder)
		sb.Reserve(len(rows))
		for _, row := range rows {
			if v, ok := row[field.Name].(string); ok {
				sb.Append(v)
			} else {
				sb.AppendNull()
			}
		}
	}

	return builder.NewRecordBatch()
}
