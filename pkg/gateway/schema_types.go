package gateway

// ColumnDescriptor describes one column of a table.
type ColumnDescriptor struct {
	Name              string  `json:"name"`
	DataType          string  `json:"data_type"`
	MaxLength         *int64  `json:"max_length,omitempty"`
	Precision         *int64  `json:"precision,omitempty"`
	Scale             *int64  `json:"scale,omitempty"`
	Nullable          bool    `json:"nullable"`
	IsIdentity        bool    `json:"is_identity"`
	DefaultExpression *string `json:"default_expression,omitempty"`
}

// IndexDescriptor describes one index with its ordered key columns and any
// included columns.
type IndexDescriptor struct {
	Name             string   `json:"name"`
	Kind             string   `json:"kind"`
	IsUnique         bool     `json:"is_unique"`
	IsPrimaryKey     bool     `json:"is_primary_key"`
	KeyColumns       []string `json:"key_columns"`
	IncludedColumns  []string `json:"included_columns,omitempty"`
	FilterExpression *string  `json:"filter_expression,omitempty"`
}

// ForeignKeyDescriptor describes one foreign key constraint. OwnerColumns and
// TargetColumns are parallel ordered lists and always have equal length.
type ForeignKeyDescriptor struct {
	Name          string   `json:"name"`
	OwnerSchema   string   `json:"owner_schema"`
	OwnerTable    string   `json:"owner_table"`
	OwnerColumns  []string `json:"owner_columns"`
	TargetSchema  string   `json:"target_schema"`
	TargetTable   string   `json:"target_table"`
	TargetColumns []string `json:"target_columns"`
	OnDelete      string   `json:"on_delete"`
	OnUpdate      string   `json:"on_update"`
}

// TableDescription is the aggregate assembled from the catalog sub-queries.
// It is constructed fresh on every call and never cached. Consumers treat it
// as read-only.
type TableDescription struct {
	Schema              string                 `json:"schema"`
	Table               string                 `json:"table"`
	Columns             []ColumnDescriptor     `json:"columns"`
	PrimaryKeyColumns   []string               `json:"primary_key_columns"`
	Indexes             []IndexDescriptor      `json:"indexes,omitempty"`
	OutboundForeignKeys []ForeignKeyDescriptor `json:"outbound_foreign_keys,omitempty"`
	InboundForeignKeys  []ForeignKeyDescriptor `json:"inbound_foreign_keys,omitempty"`
	Triggers            []string               `json:"triggers,omitempty"`
}

// ColumnNames returns the set of column names present in the description.
func (t *TableDescription) ColumnNames() map[string]struct{} {
	names := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		names[c.Name] = struct{}{}
	}
	return names
}
