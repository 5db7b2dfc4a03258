package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlward/sqlward/pkg/gateway"
)

func int64Ptr(v int64) *int64 { return &v }
func strPtr(s string) *string { return &s }

func ordersDescription() *gateway.TableDescription {
	return &gateway.TableDescription{
		Schema: "dbo",
		Table:  "Orders",
		Columns: []gateway.ColumnDescriptor{
			{Name: "ID", DataType: "bigint", IsIdentity: true},
			{Name: "CustomerID", DataType: "bigint"},
			{Name: "Status", DataType: "nvarchar", MaxLength: int64Ptr(20), DefaultExpression: strPtr("('open')")},
			{Name: "Total", DataType: "decimal", Precision: int64Ptr(18), Scale: int64Ptr(2)},
			{Name: "Notes", DataType: "nvarchar", MaxLength: int64Ptr(-1), Nullable: true},
		},
		PrimaryKeyColumns: []string{"ID"},
		Indexes: []gateway.IndexDescriptor{
			{Name: "PK_Orders", Kind: "CLUSTERED", IsUnique: true, IsPrimaryKey: true, KeyColumns: []string{"ID"}},
			{Name: "IX_Orders_Customer", Kind: "NONCLUSTERED", KeyColumns: []string{"CustomerID"}, IncludedColumns: []string{"Status"}},
		},
		OutboundForeignKeys: []gateway.ForeignKeyDescriptor{
			{
				Name:        "FK_Orders_Customers",
				OwnerSchema: "dbo", OwnerTable: "Orders", OwnerColumns: []string{"CustomerID"},
				TargetSchema: "dbo", TargetTable: "Customers", TargetColumns: []string{"ID"},
				OnDelete: "NO_ACTION", OnUpdate: "NO_ACTION",
			},
		},
		InboundForeignKeys: []gateway.ForeignKeyDescriptor{
			{
				Name:        "FK_OrderLines_Orders",
				OwnerSchema: "dbo", OwnerTable: "OrderLines", OwnerColumns: []string{"OrderID"},
				TargetSchema: "dbo", TargetTable: "Orders", TargetColumns: []string{"ID"},
			},
		},
		Triggers: []string{"trg_Orders_Audit"},
	}
}

func TestTableMarkdown(t *testing.T) {
	md := TableMarkdown(ordersDescription())

	assert.True(t, strings.HasPrefix(md, "# dbo.Orders\n"))

	// Every section present for a fully populated description.
	for _, heading := range []string{
		"## Columns", "## Primary Key", "## Indexes",
		"## References", "## Referenced By", "## Triggers",
	} {
		assert.Contains(t, md, heading)
	}

	assert.Contains(t, md, "| ID | bigint | no | yes |")
	assert.Contains(t, md, "nvarchar(20)")
	assert.Contains(t, md, "decimal(18,2)")
	assert.Contains(t, md, "nvarchar(max)")
	assert.Contains(t, md, "`('open')`")
	assert.Contains(t, md, "FK_Orders_Customers")
	assert.Contains(t, md, "dbo.Customers")
	assert.Contains(t, md, "on delete no_action")
	assert.Contains(t, md, "- trg_Orders_Audit")
}

func TestTableMarkdown_MinimalTable(t *testing.T) {
	md := TableMarkdown(&gateway.TableDescription{
		Schema:  "dbo",
		Table:   "Heap",
		Columns: []gateway.ColumnDescriptor{{Name: "Value", DataType: "int"}},
	})

	assert.Contains(t, md, "## Columns")
	assert.NotContains(t, md, "## Primary Key")
	assert.NotContains(t, md, "## Indexes")
	assert.NotContains(t, md, "## References")
	assert.NotContains(t, md, "## Triggers")
}

func TestFormatColumnType(t *testing.T) {
	tests := []struct {
		name string
		col  gateway.ColumnDescriptor
		want string
	}{
		{"plain", gateway.ColumnDescriptor{DataType: "int"}, "int"},
		{"sized", gateway.ColumnDescriptor{DataType: "varchar", MaxLength: int64Ptr(50)}, "varchar(50)"},
		{"max", gateway.ColumnDescriptor{DataType: "nvarchar", MaxLength: int64Ptr(-1)}, "nvarchar(max)"},
		{"decimal", gateway.ColumnDescriptor{DataType: "decimal", Precision: int64Ptr(10), Scale: int64Ptr(4)}, "decimal(10,4)"},
		{"scaled time", gateway.ColumnDescriptor{DataType: "datetime2", Scale: int64Ptr(7)}, "datetime2(7)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatColumnType(tt.col))
		})
	}
}
