package gateway

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// SchemaAssembler derives a TableDescription from the live system catalog.
// It holds no state beyond the logger; every call re-reads the catalog.
//
// The six sub-queries are not wrapped in one snapshot, so a concurrent schema
// change can produce cross-references that no longer line up. The assembly is
// a best-effort consistent read: a mismatch is surfaced as a metadata
// inconsistency error instead of silently dropping the dangling reference.
type SchemaAssembler struct {
	logger *zap.Logger
}

// NewSchemaAssembler creates an assembler. If logger is nil, a no-op logger
// is used.
func NewSchemaAssembler(logger *zap.Logger) *SchemaAssembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchemaAssembler{logger: logger}
}

// DescribeTable issues the ordered catalog sub-queries for one table and
// merges them into a single description. A table whose columns query returns
// zero rows is reported as not found, so callers can distinguish "exists but
// has no indexes" from "does not exist".
func (a *SchemaAssembler) DescribeTable(ctx context.Context, pool *Pool, schema, table string) (*TableDescription, error) {
	columns, err := a.queryColumns(ctx, pool, schema, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, NewError(KindNotFound, "table %s.%s does not exist", schema, table)
	}

	pkColumns, err := a.queryPrimaryKey(ctx, pool, schema, table)
	if err != nil {
		return nil, err
	}

	indexRows, err := a.queryIndexes(ctx, pool, schema, table)
	if err != nil {
		return nil, err
	}

	outbound, err := a.queryForeignKeys(ctx, pool, schema, table, false)
	if err != nil {
		return nil, err
	}

	inbound, err := a.queryForeignKeys(ctx, pool, schema, table, true)
	if err != nil {
		return nil, err
	}

	triggers, err := a.queryTriggers(ctx, pool, schema, table)
	if err != nil {
		return nil, err
	}

	desc := &TableDescription{
		Schema:              schema,
		Table:               table,
		Columns:             columns,
		PrimaryKeyColumns:   pkColumns,
		Indexes:             mergeIndexRows(indexRows),
		OutboundForeignKeys: mergeForeignKeyRows(outbound),
		InboundForeignKeys:  mergeForeignKeyRows(inbound),
		Triggers:            triggers,
	}

	if err := validateDescription(desc); err != nil {
		a.logger.Warn("catalog sub-queries observed conflicting states",
			zap.String("schema", schema),
			zap.String("table", table),
			zap.Error(err),
		)
		return nil, err
	}

	return desc, nil
}

// columnRow is the raw shape of one sys.columns result row.
type columnRow struct {
	Name       string
	TypeName   string
	MaxLength  int64
	Precision  int64
	Scale      int64
	Nullable   bool
	IsIdentity bool
	Default    sql.NullString
}

func (a *SchemaAssembler) queryColumns(ctx context.Context, pool *Pool, schema, table string) ([]ColumnDescriptor, error) {
	query := `
	SET NOCOUNT ON;
	SELECT
	    c.name AS column_name,
	    tp.name AS type_name,
	    c.max_length,
	    c.precision,
	    c.scale,
	    c.is_nullable,
	    c.is_identity,
	    dc.definition AS default_definition
	FROM sys.columns c
	INNER JOIN sys.types tp ON c.user_type_id = tp.user_type_id
	LEFT JOIN sys.default_constraints dc ON dc.object_id = c.default_object_id
	WHERE c.object_id = OBJECT_ID(QUOTENAME(@schema) + N'.' + QUOTENAME(@table))
	ORDER BY c.column_id
	`

	rows, err := pool.db.QueryContext(ctx, query,
		sql.Named("schema", schema),
		sql.Named("table", table),
	)
	if err != nil {
		return nil, classifyExecError(err, "columns catalog query")
	}
	defer rows.Close()

	var columns []ColumnDescriptor
	for rows.Next() {
		var row columnRow
		if err := rows.Scan(
			&row.Name,
			&row.TypeName,
			&row.MaxLength,
			&row.Precision,
			&row.Scale,
			&row.Nullable,
			&row.IsIdentity,
			&row.Default,
		); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		columns = append(columns, newColumnDescriptor(row))
	}
	if err := rows.Err(); err != nil {
		return nil, classifyExecError(err, "columns catalog query")
	}

	return columns, nil
}

func (a *SchemaAssembler) queryPrimaryKey(ctx context.Context, pool *Pool, schema, table string) ([]string, error) {
	query := `
	SET NOCOUNT ON;
	SELECT c.name
	FROM sys.indexes i
	INNER JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
	INNER JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
	WHERE i.object_id = OBJECT_ID(QUOTENAME(@schema) + N'.' + QUOTENAME(@table))
	  AND i.is_primary_key = 1
	ORDER BY ic.key_ordinal
	`

	rows, err := pool.db.QueryContext(ctx, query,
		sql.Named("schema", schema),
		sql.Named("table", table),
	)
	if err != nil {
		return nil, classifyExecError(err, "primary key catalog query")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan primary key row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyExecError(err, "primary key catalog query")
	}

	return names, nil
}

// indexRow is the raw shape of one index column row; one index produces one
// row per participating column.
type indexRow struct {
	IndexName    string
	Kind         string
	IsUnique     bool
	IsPrimaryKey bool
	Filter       sql.NullString
	ColumnName   string
	KeyOrdinal   int64
	IsIncluded   bool
}

func (a *SchemaAssembler) queryIndexes(ctx context.Context, pool *Pool, schema, table string) ([]indexRow, error) {
	query := `
	SET NOCOUNT ON;
	SELECT
	    i.name AS index_name,
	    i.type_desc AS index_kind,
	    i.is_unique,
	    i.is_primary_key,
	    i.filter_definition,
	    c.name AS column_name,
	    ic.key_ordinal,
	    ic.is_included_column
	FROM sys.indexes i
	INNER JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
	INNER JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
	WHERE i.object_id = OBJECT_ID(QUOTENAME(@schema) + N'.' + QUOTENAME(@table))
	  AND i.type > 0
	ORDER BY i.name, ic.is_included_column, ic.key_ordinal
	`

	rows, err := pool.db.QueryContext(ctx, query,
		sql.Named("schema", schema),
		sql.Named("table", table),
	)
	if err != nil {
		return nil, classifyExecError(err, "indexes catalog query")
	}
	defer rows.Close()

	var result []indexRow
	for rows.Next() {
		var row indexRow
		if err := rows.Scan(
			&row.IndexName,
			&row.Kind,
			&row.IsUnique,
			&row.IsPrimaryKey,
			&row.Filter,
			&row.ColumnName,
			&row.KeyOrdinal,
			&row.IsIncluded,
		); err != nil {
			return nil, fmt.Errorf("scan index row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyExecError(err, "indexes catalog query")
	}

	return result, nil
}

// foreignKeyRow is the raw shape of one foreign key column pairing; one
// constraint produces one row per column pair, ordered by constraint column.
type foreignKeyRow struct {
	Name         string
	OwnerSchema  string
	OwnerTable   string
	OwnerColumn  string
	TargetSchema string
	TargetTable  string
	TargetColumn string
	OnDelete     string
	OnUpdate     string
}

func (a *SchemaAssembler) queryForeignKeys(ctx context.Context, pool *Pool, schema, table string, inbound bool) ([]foreignKeyRow, error) {
	scope := "fk.parent_object_id"
	if inbound {
		scope = "fk.referenced_object_id"
	}

	query := fmt.Sprintf(`
	SET NOCOUNT ON;
	SELECT
	    fk.name AS constraint_name,
	    SCHEMA_NAME(pt.schema_id) AS owner_schema,
	    pt.name AS owner_table,
	    pc.name AS owner_column,
	    SCHEMA_NAME(rt.schema_id) AS target_schema,
	    rt.name AS target_table,
	    rc.name AS target_column,
	    fk.delete_referential_action_desc,
	    fk.update_referential_action_desc
	FROM sys.foreign_keys fk
	INNER JOIN sys.foreign_key_columns fkc ON fkc.constraint_object_id = fk.object_id
	INNER JOIN sys.tables pt ON pt.object_id = fk.parent_object_id
	INNER JOIN sys.columns pc ON pc.object_id = fkc.parent_object_id AND pc.column_id = fkc.parent_column_id
	INNER JOIN sys.tables rt ON rt.object_id = fk.referenced_object_id
	INNER JOIN sys.columns rc ON rc.object_id = fkc.referenced_object_id AND rc.column_id = fkc.referenced_column_id
	WHERE %s = OBJECT_ID(QUOTENAME(@schema) + N'.' + QUOTENAME(@table))
	ORDER BY fk.name, fkc.constraint_column_id
	`, scope)

	rows, err := pool.db.QueryContext(ctx, query,
		sql.Named("schema", schema),
		sql.Named("table", table),
	)
	if err != nil {
		return nil, classifyExecError(err, "foreign key catalog query")
	}
	defer rows.Close()

	var result []foreignKeyRow
	for rows.Next() {
		var row foreignKeyRow
		if err := rows.Scan(
			&row.Name,
			&row.OwnerSchema,
			&row.OwnerTable,
			&row.OwnerColumn,
			&row.TargetSchema,
			&row.TargetTable,
			&row.TargetColumn,
			&row.OnDelete,
			&row.OnUpdate,
		); err != nil {
			return nil, fmt.Errorf("scan foreign key row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyExecError(err, "foreign key catalog query")
	}

	return result, nil
}

func (a *SchemaAssembler) queryTriggers(ctx context.Context, pool *Pool, schema, table string) ([]string, error) {
	query := `
	SET NOCOUNT ON;
	SELECT tr.name
	FROM sys.triggers tr
	WHERE tr.parent_id = OBJECT_ID(QUOTENAME(@schema) + N'.' + QUOTENAME(@table))
	ORDER BY tr.name
	`

	rows, err := pool.db.QueryContext(ctx, query,
		sql.Named("schema", schema),
		sql.Named("table", table),
	)
	if err != nil {
		return nil, classifyExecError(err, "triggers catalog query")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan trigger row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyExecError(err, "triggers catalog query")
	}

	return names, nil
}
