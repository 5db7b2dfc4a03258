package gateway

import (
	"strings"
)

// newColumnDescriptor normalizes raw sys.columns metadata into a descriptor.
// max_length, precision, and scale are populated only for types where they
// carry meaning; nchar/nvarchar lengths are reported by the catalog in bytes
// and halved to character counts.
func newColumnDescriptor(row columnRow) ColumnDescriptor {
	col := ColumnDescriptor{
		Name:       row.Name,
		DataType:   row.TypeName,
		Nullable:   row.Nullable,
		IsIdentity: row.IsIdentity,
	}
	if row.Default.Valid {
		def := row.Default.String
		col.DefaultExpression = &def
	}

	switch strings.ToLower(row.TypeName) {
	case "char", "varchar", "binary", "varbinary":
		length := row.MaxLength // -1 means MAX
		col.MaxLength = &length
	case "nchar", "nvarchar":
		length := row.MaxLength
		if length > 0 {
			length /= 2
		}
		col.MaxLength = &length
	case "decimal", "numeric":
		precision, scale := row.Precision, row.Scale
		col.Precision = &precision
		col.Scale = &scale
	case "time", "datetime2", "datetimeoffset":
		scale := row.Scale
		col.Scale = &scale
	}

	return col
}

// mergeIndexRows folds per-column index rows into one descriptor per index,
// keyed by index name rather than row position: the catalog gives no ordering
// guarantee across sub-queries, only within one (key_ordinal).
func mergeIndexRows(rows []indexRow) []IndexDescriptor {
	var order []string
	byName := make(map[string]*IndexDescriptor)

	for _, row := range rows {
		idx, seen := byName[row.IndexName]
		if !seen {
			idx = &IndexDescriptor{
				Name:         row.IndexName,
				Kind:         row.Kind,
				IsUnique:     row.IsUnique,
				IsPrimaryKey: row.IsPrimaryKey,
			}
			if row.Filter.Valid {
				filter := row.Filter.String
				idx.FilterExpression = &filter
			}
			byName[row.IndexName] = idx
			order = append(order, row.IndexName)
		}
		if row.IsIncluded {
			idx.IncludedColumns = append(idx.IncludedColumns, row.ColumnName)
		} else {
			idx.KeyColumns = append(idx.KeyColumns, row.ColumnName)
		}
	}

	result := make([]IndexDescriptor, 0, len(order))
	for _, name := range order {
		result = append(result, *byName[name])
	}
	return result
}

// mergeForeignKeyRows folds per-column constraint rows into one descriptor
// per constraint, keyed by constraint name. Owner and target column lists
// stay parallel because every row carries exactly one pairing.
func mergeForeignKeyRows(rows []foreignKeyRow) []ForeignKeyDescriptor {
	var order []string
	byName := make(map[string]*ForeignKeyDescriptor)

	for _, row := range rows {
		fk, seen := byName[row.Name]
		if !seen {
			fk = &ForeignKeyDescriptor{
				Name:         row.Name,
				OwnerSchema:  row.OwnerSchema,
				OwnerTable:   row.OwnerTable,
				TargetSchema: row.TargetSchema,
				TargetTable:  row.TargetTable,
				OnDelete:     row.OnDelete,
				OnUpdate:     row.OnUpdate,
			}
			byName[row.Name] = fk
			order = append(order, row.Name)
		}
		fk.OwnerColumns = append(fk.OwnerColumns, row.OwnerColumn)
		fk.TargetColumns = append(fk.TargetColumns, row.TargetColumn)
	}

	result := make([]ForeignKeyDescriptor, 0, len(order))
	for _, name := range order {
		result = append(result, *byName[name])
	}
	return result
}

// validateDescription checks the cross-sub-query invariants: every primary
// key column and every index key/included column must name a column present
// in the columns result. A violation means the catalog changed between
// sub-queries and is surfaced rather than silently dropped.
func validateDescription(desc *TableDescription) error {
	names := desc.ColumnNames()

	for _, pk := range desc.PrimaryKeyColumns {
		if _, ok := names[pk]; !ok {
			return NewError(KindInconsistency,
				"primary key references column %q which is not in the columns result for %s.%s",
				pk, desc.Schema, desc.Table)
		}
	}

	for _, idx := range desc.Indexes {
		for _, col := range idx.KeyColumns {
			if _, ok := names[col]; !ok {
				return NewError(KindInconsistency,
					"index %q references key column %q which is not in the columns result for %s.%s",
					idx.Name, col, desc.Schema, desc.Table)
			}
		}
		for _, col := range idx.IncludedColumns {
			if _, ok := names[col]; !ok {
				return NewError(KindInconsistency,
					"index %q references included column %q which is not in the columns result for %s.%s",
					idx.Name, col, desc.Schema, desc.Table)
			}
		}
	}

	for _, fk := range desc.OutboundForeignKeys {
		if len(fk.OwnerColumns) != len(fk.TargetColumns) {
			return NewError(KindInconsistency,
				"foreign key %q has %d owner columns but %d target columns",
				fk.Name, len(fk.OwnerColumns), len(fk.TargetColumns))
		}
	}
	for _, fk := range desc.InboundForeignKeys {
		if len(fk.OwnerColumns) != len(fk.TargetColumns) {
			return NewError(KindInconsistency,
				"foreign key %q has %d owner columns but %d target columns",
				fk.Name, len(fk.OwnerColumns), len(fk.TargetColumns))
		}
	}

	return nil
}
