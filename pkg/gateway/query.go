package gateway

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sqlward/sqlward/pkg/logging"
	"github.com/sqlward/sqlward/pkg/sqlguard"
)

// MaxQueryRows is the hard ceiling on rows any query may return, applied when
// the caller asks for more or does not say.
const MaxQueryRows = 1000

// QueryOptions bound one query execution.
type QueryOptions struct {
	// MaxRows caps the result set via an injected TOP qualifier. Values
	// outside (0, MaxQueryRows] fall back to MaxQueryRows.
	MaxRows int
	// TimeoutSeconds is the execution deadline applied to the request.
	TimeoutSeconds int
	// Params are named parameters referenced as @name in the statement.
	Params map[string]any
}

// ColumnInfo names and types one result column.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// QueryResult holds the bounded result of one guarded query.
type QueryResult struct {
	Columns  []ColumnInfo     `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// QueryRunner executes free-form SQL through the guard. Every statement is
// classified and row-limited before it reaches the server; a rejected
// statement never executes.
type QueryRunner struct {
	logger *zap.Logger
}

// NewQueryRunner creates a runner. If logger is nil, a no-op logger is used.
func NewQueryRunner(logger *zap.Logger) *QueryRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryRunner{logger: logger}
}

// Run classifies, rewrites, and executes one statement against the pool.
func (r *QueryRunner) Run(ctx context.Context, pool *Pool, sqlText string, opts QueryOptions) (*QueryResult, error) {
	cls := sqlguard.Classify(sqlText)
	if !cls.Allowed {
		r.logger.Info("statement rejected",
			zap.String("reason", cls.Reason),
			zap.String("query", logging.SanitizeQuery(sqlText)),
		)
		return nil, NewError(KindRejected, "%s", cls.Reason)
	}

	maxRows := opts.MaxRows
	if maxRows <= 0 || maxRows > MaxQueryRows {
		maxRows = MaxQueryRows
	}
	limited := sqlguard.ApplyRowLimit(sqlText, maxRows)

	queryCtx, cancel := sqlguard.ApplyTimeout(ctx, opts.TimeoutSeconds)
	defer cancel()

	args := make([]any, 0, len(opts.Params))
	for name, value := range opts.Params {
		args = append(args, sql.Named(name, value))
	}

	rows, err := pool.db.QueryContext(queryCtx, limited, args...)
	if err != nil {
		return nil, classifyExecError(err, "query execution")
	}
	defer rows.Close()

	columnNames, err := rows.Columns()
	if err != nil {
		return nil, classifyExecError(err, "reading result columns")
	}
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, classifyExecError(err, "reading result column types")
	}

	columns := make([]ColumnInfo, len(columnNames))
	for i, name := range columnNames {
		columns[i] = ColumnInfo{
			Name: name,
			Type: columnTypes[i].DatabaseTypeName(),
		}
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columnNames))
		valuePtrs := make([]any, len(columnNames))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, classifyExecError(err, "scanning result row")
		}

		rowMap := make(map[string]any, len(columnNames))
		for i, name := range columnNames {
			val := values[i]
			// The driver hands text columns back as []byte.
			if b, ok := val.([]byte); ok && isStringType(columnTypes[i].DatabaseTypeName()) {
				val = string(b)
			}
			rowMap[name] = val
		}
		resultRows = append(resultRows, rowMap)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyExecError(err, "iterating result rows")
	}

	return &QueryResult{
		Columns:  columns,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}

// ExplainResult is the server-provided plan text for one statement.
type ExplainResult struct {
	Plan string `json:"plan"`
}

// Explain returns the estimated execution plan without running the query.
// The statement still goes through classification first. SHOWPLAN_TEXT is
// session-scoped, so the round-trip is pinned to a single connection.
func (r *QueryRunner) Explain(ctx context.Context, pool *Pool, sqlText string, opts QueryOptions) (*ExplainResult, error) {
	cls := sqlguard.Classify(sqlText)
	if !cls.Allowed {
		return nil, NewError(KindRejected, "%s", cls.Reason)
	}

	queryCtx, cancel := sqlguard.ApplyTimeout(ctx, opts.TimeoutSeconds)
	defer cancel()

	conn, err := pool.Conn(queryCtx)
	if err != nil {
		return nil, classifyExecError(err, "acquiring connection for plan inspection")
	}
	defer conn.Close()

	if _, err := conn.ExecContext(queryCtx, "SET SHOWPLAN_TEXT ON"); err != nil {
		return nil, classifyExecError(err, "enabling showplan")
	}
	defer r.resetShowplan(ctx, conn)

	rows, err := conn.QueryContext(queryCtx, sqlText)
	if err != nil {
		return nil, classifyExecError(err, "plan inspection")
	}
	defer rows.Close()

	var planLines []string
	for {
		for rows.Next() {
			var stmtText string
			if err := rows.Scan(&stmtText); err != nil {
				continue
			}
			if stmtText != "" {
				planLines = append(planLines, stmtText)
			}
		}
		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, classifyExecError(err, "reading execution plan")
	}

	return &ExplainResult{Plan: strings.Join(planLines, "\n")}, nil
}

// showplanResetTimeout bounds the SET SHOWPLAN_TEXT OFF round-trip, which
// must run even after the query's own deadline has expired.
const showplanResetTimeout = 5 * time.Second

// resetShowplan turns the session option back off before the connection is
// returned to the pool. It runs on its own context because the query's
// deadline may already be expired, and the driver keeps the connection alive
// across a cancelled query. A session whose reset fails would hand plan text
// to the next query that lands on it, so it is discarded instead of reused.
func (r *QueryRunner) resetShowplan(ctx context.Context, conn *sql.Conn) {
	resetCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), showplanResetTimeout)
	defer cancel()

	_, err := conn.ExecContext(resetCtx, "SET SHOWPLAN_TEXT OFF")
	if err == nil {
		return
	}

	r.logger.Warn("disabling showplan failed, discarding session",
		zap.String("error", logging.SanitizeError(err)),
	)
	// Reporting ErrBadConn from Raw marks the underlying connection bad so
	// the pool closes it rather than reusing it.
	_ = conn.Raw(func(any) error { return driver.ErrBadConn })
}

// isStringType reports whether a SQL Server type name holds text.
func isStringType(sqlType string) bool {
	switch strings.ToUpper(sqlType) {
	case "CHAR", "NCHAR", "VARCHAR", "NVARCHAR", "TEXT", "NTEXT", "XML":
		return true
	}
	return false
}
