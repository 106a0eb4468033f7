package schema

import "fmt"

// NoTablesIssue is reported for a schema without tables
const NoTablesIssue = "No tables found in schema"

// Validate checks the schema for common design problems and returns one
// human-readable issue per finding, in table and field order. An empty
// result means the schema is clean.
func Validate(s *Schema) []string {
	issues := []string{}

	if s == nil || len(s.Tables) == 0 {
		return append(issues, NoTablesIssue)
	}

	tableNames := s.TableNames()

	for _, table := range s.Tables {
		if !table.HasPrimaryKey() {
			issues = append(issues, fmt.Sprintf("Table '%s' has no primary key", table.Name))
		}

		for _, field := range table.Fields {
			if !field.IsForeignKey {
				continue
			}
			refTable, ok := field.ReferencedTable()
			if !ok {
				continue
			}
			if !tableNames[refTable] {
				issues = append(issues, fmt.Sprintf(
					"Foreign key in '%s.%s' references non-existent table '%s'",
					table.Name, field.Name, refTable))
			}
		}
	}

	return issues
}
