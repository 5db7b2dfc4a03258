package gateway

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewColumnDescriptor(t *testing.T) {
	tests := []struct {
		name  string
		row   columnRow
		check func(t *testing.T, col ColumnDescriptor)
	}{
		{
			name: "int carries no length metadata",
			row:  columnRow{Name: "ID", TypeName: "int", MaxLength: 4, Precision: 10},
			check: func(t *testing.T, col ColumnDescriptor) {
				assert.Nil(t, col.MaxLength)
				assert.Nil(t, col.Precision)
				assert.Nil(t, col.Scale)
			},
		},
		{
			name: "varchar keeps byte length",
			row:  columnRow{Name: "Code", TypeName: "varchar", MaxLength: 50},
			check: func(t *testing.T, col ColumnDescriptor) {
				require.NotNil(t, col.MaxLength)
				assert.Equal(t, int64(50), *col.MaxLength)
			},
		},
		{
			name: "nvarchar halves byte length to characters",
			row:  columnRow{Name: "Title", TypeName: "nvarchar", MaxLength: 100},
			check: func(t *testing.T, col ColumnDescriptor) {
				require.NotNil(t, col.MaxLength)
				assert.Equal(t, int64(50), *col.MaxLength)
			},
		},
		{
			name: "nvarchar max stays negative sentinel",
			row:  columnRow{Name: "Body", TypeName: "nvarchar", MaxLength: -1},
			check: func(t *testing.T, col ColumnDescriptor) {
				require.NotNil(t, col.MaxLength)
				assert.Equal(t, int64(-1), *col.MaxLength)
			},
		},
		{
			name: "decimal carries precision and scale",
			row:  columnRow{Name: "Amount", TypeName: "decimal", Precision: 18, Scale: 2},
			check: func(t *testing.T, col ColumnDescriptor) {
				require.NotNil(t, col.Precision)
				require.NotNil(t, col.Scale)
				assert.Equal(t, int64(18), *col.Precision)
				assert.Equal(t, int64(2), *col.Scale)
			},
		},
		{
			name: "datetime2 carries scale only",
			row:  columnRow{Name: "CreatedAt", TypeName: "datetime2", Scale: 7},
			check: func(t *testing.T, col ColumnDescriptor) {
				assert.Nil(t, col.Precision)
				require.NotNil(t, col.Scale)
				assert.Equal(t, int64(7), *col.Scale)
			},
		},
		{
			name: "identity and default flow through",
			row: columnRow{
				Name:       "ID",
				TypeName:   "bigint",
				IsIdentity: true,
				Default:    sql.NullString{String: "((0))", Valid: true},
			},
			check: func(t *testing.T, col ColumnDescriptor) {
				assert.True(t, col.IsIdentity)
				require.NotNil(t, col.DefaultExpression)
				assert.Equal(t, "((0))", *col.DefaultExpression)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := newColumnDescriptor(tt.row)
			assert.Equal(t, tt.row.Name, col.Name)
			assert.Equal(t, tt.row.TypeName, col.DataType)
			tt.check(t, col)
		})
	}
}

func TestMergeIndexRows(t *testing.T) {
	rows := []indexRow{
		{IndexName: "PK_Orders", Kind: "CLUSTERED", IsUnique: true, IsPrimaryKey: true, ColumnName: "ID", KeyOrdinal: 1},
		{IndexName: "IX_Orders_Customer", Kind: "NONCLUSTERED", ColumnName: "CustomerID", KeyOrdinal: 1},
		{IndexName: "IX_Orders_Customer", Kind: "NONCLUSTERED", ColumnName: "PlacedAt", KeyOrdinal: 2},
		{IndexName: "IX_Orders_Customer", Kind: "NONCLUSTERED", ColumnName: "Status", IsIncluded: true},
	}

	indexes := mergeIndexRows(rows)
	require.Len(t, indexes, 2)

	// First-seen order is preserved.
	assert.Equal(t, "PK_Orders", indexes[0].Name)
	assert.True(t, indexes[0].IsPrimaryKey)
	assert.Equal(t, []string{"ID"}, indexes[0].KeyColumns)

	ix := indexes[1]
	assert.Equal(t, "IX_Orders_Customer", ix.Name)
	assert.Equal(t, []string{"CustomerID", "PlacedAt"}, ix.KeyColumns)
	assert.Equal(t, []string{"Status"}, ix.IncludedColumns)
	assert.False(t, ix.IsPrimaryKey)
}

func TestMergeIndexRows_FilteredIndex(t *testing.T) {
	rows := []indexRow{
		{
			IndexName:  "IX_Orders_Open",
			Kind:       "NONCLUSTERED",
			Filter:     sql.NullString{String: "([Status]='open')", Valid: true},
			ColumnName: "PlacedAt",
			KeyOrdinal: 1,
		},
	}

	indexes := mergeIndexRows(rows)
	require.Len(t, indexes, 1)
	require.NotNil(t, indexes[0].FilterExpression)
	assert.Equal(t, "([Status]='open')", *indexes[0].FilterExpression)
}

func TestMergeIndexRows_Empty(t *testing.T) {
	assert.Empty(t, mergeIndexRows(nil))
}

func TestMergeForeignKeyRows(t *testing.T) {
	rows := []foreignKeyRow{
		{
			Name:        "FK_OrderLines_Orders",
			OwnerSchema: "dbo", OwnerTable: "OrderLines", OwnerColumn: "OrderID",
			TargetSchema: "dbo", TargetTable: "Orders", TargetColumn: "ID",
			OnDelete: "CASCADE", OnUpdate: "NO_ACTION",
		},
		{
			Name:        "FK_OrderLines_Products",
			OwnerSchema: "dbo", OwnerTable: "OrderLines", OwnerColumn: "ProductSchema",
			TargetSchema: "catalog", TargetTable: "Products", TargetColumn: "Schema",
			OnDelete: "NO_ACTION", OnUpdate: "NO_ACTION",
		},
		{
			Name:        "FK_OrderLines_Products",
			OwnerSchema: "dbo", OwnerTable: "OrderLines", OwnerColumn: "ProductCode",
			TargetSchema: "catalog", TargetTable: "Products", TargetColumn: "Code",
			OnDelete: "NO_ACTION", OnUpdate: "NO_ACTION",
		},
	}

	fks := mergeForeignKeyRows(rows)
	require.Len(t, fks, 2)

	assert.Equal(t, "FK_OrderLines_Orders", fks[0].Name)
	assert.Equal(t, []string{"OrderID"}, fks[0].OwnerColumns)
	assert.Equal(t, []string{"ID"}, fks[0].TargetColumns)
	assert.Equal(t, "CASCADE", fks[0].OnDelete)

	composite := fks[1]
	assert.Equal(t, []string{"ProductSchema", "ProductCode"}, composite.OwnerColumns)
	assert.Equal(t, []string{"Schema", "Code"}, composite.TargetColumns)
}

func TestValidateDescription(t *testing.T) {
	base := func() *TableDescription {
		return &TableDescription{
			Schema: "dbo",
			Table:  "Orders",
			Columns: []ColumnDescriptor{
				{Name: "ID"},
				{Name: "CustomerID"},
				{Name: "PlacedAt"},
			},
			PrimaryKeyColumns: []string{"ID"},
			Indexes: []IndexDescriptor{
				{Name: "IX_Orders_Customer", KeyColumns: []string{"CustomerID"}, IncludedColumns: []string{"PlacedAt"}},
			},
			OutboundForeignKeys: []ForeignKeyDescriptor{
				{Name: "FK_Orders_Customers", OwnerColumns: []string{"CustomerID"}, TargetColumns: []string{"ID"}},
			},
		}
	}

	t.Run("consistent description passes", func(t *testing.T) {
		assert.NoError(t, validateDescription(base()))
	})

	t.Run("dangling primary key column", func(t *testing.T) {
		desc := base()
		desc.PrimaryKeyColumns = []string{"LegacyID"}
		err := validateDescription(desc)
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInconsistency))
	})

	t.Run("dangling index key column", func(t *testing.T) {
		desc := base()
		desc.Indexes[0].KeyColumns = []string{"DroppedColumn"}
		err := validateDescription(desc)
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInconsistency))
	})

	t.Run("dangling included column", func(t *testing.T) {
		desc := base()
		desc.Indexes[0].IncludedColumns = []string{"DroppedColumn"}
		err := validateDescription(desc)
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInconsistency))
	})

	t.Run("foreign key column count mismatch", func(t *testing.T) {
		desc := base()
		desc.OutboundForeignKeys[0].TargetColumns = []string{"ID", "Extra"}
		err := validateDescription(desc)
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInconsistency))
	})

	t.Run("inbound foreign key mismatch", func(t *testing.T) {
		desc := base()
		desc.InboundForeignKeys = []ForeignKeyDescriptor{
			{Name: "FK_X", OwnerColumns: []string{"A", "B"}, TargetColumns: []string{"ID"}},
		}
		err := validateDescription(desc)
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInconsistency))
	})
}
