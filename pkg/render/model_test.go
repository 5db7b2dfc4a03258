package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlward/sqlward/pkg/gateway"
)

func TestGoModel(t *testing.T) {
	src := GoModel(&gateway.TableDescription{
		Schema: "dbo",
		Table:  "customer_orders",
		Columns: []gateway.ColumnDescriptor{
			{Name: "id", DataType: "bigint", IsIdentity: true},
			{Name: "customer_id", DataType: "bigint"},
			{Name: "order_guid", DataType: "uniqueidentifier"},
			{Name: "status", DataType: "nvarchar"},
			{Name: "total", DataType: "decimal"},
			{Name: "placed_at", DataType: "datetime2"},
			{Name: "shipped_at", DataType: "datetime2", Nullable: true},
			{Name: "payload", DataType: "varbinary", Nullable: true},
			{Name: "is_priority", DataType: "bit"},
		},
	})

	// Singularized, exported type name.
	assert.Contains(t, src, "type CustomerOrder struct {")
	assert.Contains(t, src, "// CustomerOrder maps the dbo.customer_orders table.")

	assert.Contains(t, src, "ID int64 `db:\"id\" json:\"id\"`")
	assert.Contains(t, src, "CustomerID int64 `db:\"customer_id\" json:\"customer_id\"`")
	assert.Contains(t, src, "OrderGUID uuid.UUID")
	assert.Contains(t, src, "Status string")
	assert.Contains(t, src, "Total string")
	assert.Contains(t, src, "PlacedAt time.Time")
	assert.Contains(t, src, "ShippedAt *time.Time")
	assert.Contains(t, src, "IsPriority bool")

	// Nullable byte slices stay slices; nil already models absence.
	assert.Contains(t, src, "Payload []byte")
	assert.NotContains(t, src, "*[]byte")

	assert.True(t, strings.HasSuffix(src, "}\n"))
}

func TestGoType(t *testing.T) {
	tests := []struct {
		dataType string
		nullable bool
		want     string
	}{
		{"tinyint", false, "uint8"},
		{"smallint", false, "int16"},
		{"int", false, "int32"},
		{"bigint", false, "int64"},
		{"bit", false, "bool"},
		{"real", false, "float32"},
		{"float", false, "float64"},
		{"decimal", false, "string"},
		{"money", false, "string"},
		{"datetime", false, "time.Time"},
		{"date", false, "time.Time"},
		{"uniqueidentifier", false, "uuid.UUID"},
		{"varbinary", false, "[]byte"},
		{"nvarchar", false, "string"},
		{"sql_variant", false, "string"},
		{"int", true, "*int32"},
		{"nvarchar", true, "*string"},
		{"varbinary", true, "[]byte"},
	}

	for _, tt := range tests {
		t.Run(tt.dataType, func(t *testing.T) {
			got := goType(gateway.ColumnDescriptor{DataType: tt.dataType, Nullable: tt.nullable})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExportedName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"id", "ID"},
		{"customer_id", "CustomerID"},
		{"api_key", "APIKey"},
		{"order_url", "OrderURL"},
		{"ip_address", "IPAddress"},
		{"Status", "Status"},
		{"placed-at", "PlacedAt"},
		{"two words", "TwoWords"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, exportedName(tt.in))
		})
	}
}
