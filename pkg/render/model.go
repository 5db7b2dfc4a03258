package render

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"

	"github.com/sqlward/sqlward/pkg/gateway"
)

// GoModel renders a Go struct mapping the table's columns. The type name is
// the singularized, exported form of the table name; nullable columns map to
// pointer types.
func GoModel(desc *gateway.TableDescription) string {
	typeName := exportedName(inflection.Singular(desc.Table))

	var b strings.Builder
	fmt.Fprintf(&b, "// %s maps the %s.%s table.\n", typeName, desc.Schema, desc.Table)
	fmt.Fprintf(&b, "type %s struct {\n", typeName)
	for _, col := range desc.Columns {
		fmt.Fprintf(&b, "\t%s %s `db:%q json:%q`\n",
			exportedName(col.Name),
			goType(col),
			col.Name,
			jsonName(col.Name),
		)
	}
	b.WriteString("}\n")
	return b.String()
}

// goType maps a SQL Server column type to a Go field type.
func goType(col gateway.ColumnDescriptor) string {
	var t string
	switch strings.ToLower(col.DataType) {
	case "tinyint":
		t = "uint8"
	case "smallint":
		t = "int16"
	case "int":
		t = "int32"
	case "bigint":
		t = "int64"
	case "bit":
		t = "bool"
	case "real":
		t = "float32"
	case "float":
		t = "float64"
	case "decimal", "numeric", "money", "smallmoney":
		t = "string" // exact decimals round-trip as text
	case "date", "time", "datetime", "datetime2", "smalldatetime", "datetimeoffset":
		t = "time.Time"
	case "uniqueidentifier":
		t = "uuid.UUID"
	case "binary", "varbinary", "image", "rowversion", "timestamp":
		t = "[]byte"
	default:
		t = "string"
	}

	if col.Nullable && t != "[]byte" {
		t = "*" + t
	}
	return t
}

// exportedName converts a snake_case or lowercase identifier to an exported
// Go name, keeping common initialisms upper-cased.
func exportedName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == ' ' || r == '-'
	})
	if len(parts) == 0 {
		return name
	}

	var b strings.Builder
	for _, part := range parts {
		if upper := strings.ToUpper(part); commonInitialisms[upper] {
			b.WriteString(upper)
			continue
		}
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

func jsonName(name string) string {
	return strings.ToLower(name)
}

var commonInitialisms = map[string]bool{
	"ID":   true,
	"URL":  true,
	"URI":  true,
	"API":  true,
	"GUID": true,
	"UUID": true,
	"SKU":  true,
	"IP":   true,
}
