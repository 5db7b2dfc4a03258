// Package render turns table descriptions into human-facing artifacts:
// Markdown documentation and Go model source text. Renderers consume the
// description read-only.
package render

import (
	"fmt"
	"strings"

	"github.com/sqlward/sqlward/pkg/gateway"
)

// TableMarkdown builds a Markdown document describing one table.
func TableMarkdown(desc *gateway.TableDescription) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s.%s\n\n", desc.Schema, desc.Table)

	b.WriteString("## Columns\n\n")
	b.WriteString("| Name | Type | Nullable | Identity | Default |\n")
	b.WriteString("|------|------|----------|----------|---------|\n")
	for _, col := range desc.Columns {
		defaultExpr := ""
		if col.DefaultExpression != nil {
			defaultExpr = "`" + *col.DefaultExpression + "`"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			col.Name,
			formatColumnType(col),
			yesNo(col.Nullable),
			yesNo(col.IsIdentity),
			defaultExpr,
		)
	}

	if len(desc.PrimaryKeyColumns) > 0 {
		b.WriteString("\n## Primary Key\n\n")
		fmt.Fprintf(&b, "- %s\n", strings.Join(desc.PrimaryKeyColumns, ", "))
	}

	if len(desc.Indexes) > 0 {
		b.WriteString("\n## Indexes\n\n")
		b.WriteString("| Name | Kind | Unique | Key Columns | Included |\n")
		b.WriteString("|------|------|--------|-------------|----------|\n")
		for _, idx := range desc.Indexes {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				idx.Name,
				idx.Kind,
				yesNo(idx.IsUnique),
				strings.Join(idx.KeyColumns, ", "),
				strings.Join(idx.IncludedColumns, ", "),
			)
		}
	}

	if len(desc.OutboundForeignKeys) > 0 {
		b.WriteString("\n## References\n\n")
		for _, fk := range desc.OutboundForeignKeys {
			fmt.Fprintf(&b, "- `%s`: (%s) -> %s.%s (%s), on delete %s\n",
				fk.Name,
				strings.Join(fk.OwnerColumns, ", "),
				fk.TargetSchema, fk.TargetTable,
				strings.Join(fk.TargetColumns, ", "),
				strings.ToLower(fk.OnDelete),
			)
		}
	}

	if len(desc.InboundForeignKeys) > 0 {
		b.WriteString("\n## Referenced By\n\n")
		for _, fk := range desc.InboundForeignKeys {
			fmt.Fprintf(&b, "- `%s`: %s.%s (%s)\n",
				fk.Name,
				fk.OwnerSchema, fk.OwnerTable,
				strings.Join(fk.OwnerColumns, ", "),
			)
		}
	}

	if len(desc.Triggers) > 0 {
		b.WriteString("\n## Triggers\n\n")
		for _, trigger := range desc.Triggers {
			fmt.Fprintf(&b, "- %s\n", trigger)
		}
	}

	return b.String()
}

func formatColumnType(col gateway.ColumnDescriptor) string {
	switch {
	case col.MaxLength != nil && *col.MaxLength < 0:
		return col.DataType + "(max)"
	case col.MaxLength != nil:
		return fmt.Sprintf("%s(%d)", col.DataType, *col.MaxLength)
	case col.Precision != nil && col.Scale != nil:
		return fmt.Sprintf("%s(%d,%d)", col.DataType, *col.Precision, *col.Scale)
	case col.Scale != nil:
		return fmt.Sprintf("%s(%d)", col.DataType, *col.Scale)
	}
	return col.DataType
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
