package gateway

import (
	"context"
	"database/sql"
	"fmt"
)

// TableSummary is one row of a table or view listing.
type TableSummary struct {
	Schema   string `json:"schema"`
	Name     string `json:"name"`
	RowCount int64  `json:"row_count,omitempty"`
}

// ListSchemas returns the user schemas in the connected database.
func (a *SchemaAssembler) ListSchemas(ctx context.Context, pool *Pool) ([]string, error) {
	query := `
	SET NOCOUNT ON;
	SELECT s.name
	FROM sys.schemas s
	INNER JOIN sys.database_principals p ON s.principal_id = p.principal_id
	WHERE p.is_fixed_role = 0 AND s.name NOT IN (N'sys', N'INFORMATION_SCHEMA', N'guest')
	ORDER BY s.name
	`

	rows, err := pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classifyExecError(err, "schemas catalog query")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan schema row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyExecError(err, "schemas catalog query")
	}

	return names, nil
}

// ListTables returns all user tables with approximate row counts. An empty
// schema lists every schema.
func (a *SchemaAssembler) ListTables(ctx context.Context, pool *Pool, schema string) ([]TableSummary, error) {
	query := `
	SET NOCOUNT ON;
	SELECT
	    SCHEMA_NAME(t.schema_id) AS table_schema,
	    t.name AS table_name,
	    SUM(p.rows) AS row_count
	FROM sys.tables t
	INNER JOIN sys.partitions p ON t.object_id = p.object_id
	WHERE p.index_id IN (0, 1)
	  AND t.is_ms_shipped = 0
	  AND (@schema = N'' OR SCHEMA_NAME(t.schema_id) = @schema)
	GROUP BY t.schema_id, t.name
	ORDER BY table_schema, table_name
	`

	rows, err := pool.db.QueryContext(ctx, query, sql.Named("schema", schema))
	if err != nil {
		return nil, classifyExecError(err, "tables catalog query")
	}
	defer rows.Close()

	var tables []TableSummary
	for rows.Next() {
		var t TableSummary
		if err := rows.Scan(&t.Schema, &t.Name, &t.RowCount); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyExecError(err, "tables catalog query")
	}

	return tables, nil
}

// ListViews returns all user views. An empty schema lists every schema.
func (a *SchemaAssembler) ListViews(ctx context.Context, pool *Pool, schema string) ([]TableSummary, error) {
	query := `
	SET NOCOUNT ON;
	SELECT
	    SCHEMA_NAME(v.schema_id) AS view_schema,
	    v.name AS view_name
	FROM sys.views v
	WHERE v.is_ms_shipped = 0
	  AND (@schema = N'' OR SCHEMA_NAME(v.schema_id) = @schema)
	ORDER BY view_schema, view_name
	`

	rows, err := pool.db.QueryContext(ctx, query, sql.Named("schema", schema))
	if err != nil {
		return nil, classifyExecError(err, "views catalog query")
	}
	defer rows.Close()

	var views []TableSummary
	for rows.Next() {
		var v TableSummary
		if err := rows.Scan(&v.Schema, &v.Name); err != nil {
			return nil, fmt.Errorf("scan view row: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyExecError(err, "views catalog query")
	}

	return views, nil
}
