package migration

import (
	"fmt"
	"strings"

	"schema-generator/internal/schema"
)

// CreateStatements renders one CREATE TABLE statement per table, in schema order
func CreateStatements(s *schema.Schema) []string {
	return renderTables(s.Tables)
}

// CreateScript renders all CREATE TABLE statements separated by blank lines
func CreateScript(s *schema.Schema) string {
	return strings.Join(CreateStatements(s), "\n\n")
}

func renderTables(tables []schema.Table) []string {
	statements := make([]string, 0, len(tables))
	for _, table := range tables {
		statements = append(statements, CreateTable(table))
	}
	return statements
}

// CreateTable renders the CREATE TABLE statement for one table. Field
// definitions come first, followed by one FOREIGN KEY clause per
// referencing field.
func CreateTable(table schema.Table) string {
	var lines []string

	for _, field := range table.Fields {
		line := field.Name + " " + field.DataType
		if len(field.Constraints) > 0 {
			line += " " + strings.Join(field.Constraints, " ")
		}
		if field.IsPrimaryKey {
			line += " PRIMARY KEY"
		}
		lines = append(lines, strings.TrimSpace(line))
	}

	for _, field := range table.Fields {
		if field.IsForeignKey && field.References != "" {
			lines = append(lines, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s", field.Name, referenceTarget(field.References)))
		}
	}

	return fmt.Sprintf("CREATE TABLE %s (\n    %s\n);", table.Name, strings.Join(lines, ",\n    "))
}

// referenceTarget turns "table.field" into "table(field)"
func referenceTarget(reference string) string {
	table, field, ok := strings.Cut(reference, ".")
	if !ok || field == "" {
		return reference
	}
	return fmt.Sprintf("%s(%s)", table, field)
}

// SuggestIndexes proposes one index per foreign key field
func SuggestIndexes(s *schema.Schema) []string {
	var suggestions []string
	for _, table := range s.Tables {
		for _, field := range table.Fields {
			if field.IsForeignKey {
				suggestions = append(suggestions, fmt.Sprintf("CREATE INDEX idx_%s_%s ON %s(%s);", table.Name, field.Name, table.Name, field.Name))
			}
		}
	}
	return suggestions
}

// OrderTables returns the tables so that referenced tables come before the
// tables referencing them. Ties keep schema order; tables caught in a
// reference cycle are appended in schema order.
func OrderTables(s *schema.Schema) []schema.Table {
	known := s.TableNames()
	placed := make(map[string]bool, len(s.Tables))
	ordered := make([]schema.Table, 0, len(s.Tables))
	remaining := append([]schema.Table(nil), s.Tables...)

	for len(remaining) > 0 {
		var next []schema.Table
		progressed := false

		for _, table := range remaining {
			if dependenciesPlaced(table, known, placed) {
				ordered = append(ordered, table)
				placed[table.Name] = true
				progressed = true
				continue
			}
			next = append(next, table)
		}

		if !progressed {
			ordered = append(ordered, next...)
			break
		}
		remaining = next
	}

	return ordered
}

func dependenciesPlaced(table schema.Table, known, placed map[string]bool) bool {
	for _, field := range table.Fields {
		if !field.IsForeignKey {
			continue
		}
		ref, ok := field.ReferencedTable()
		if !ok || ref == table.Name || !known[ref] {
			continue
		}
		if !placed[ref] {
			return false
		}
	}
	return true
}
