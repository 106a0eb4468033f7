package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"schema-generator/internal/generator"
	"schema-generator/internal/schema"
)

const libraryJSON = `{
  "tables": [
    {"name": "authors", "description": "Book authors", "fields": [
      {"name": "id", "data_type": "SERIAL", "is_primary_key": true, "constraints": ["NOT NULL"]}
    ]},
    {"name": "books", "fields": [
      {"name": "id", "data_type": "SERIAL", "is_primary_key": true},
      {"name": "author_id", "data_type": "INT", "is_foreign_key": true, "references": "authors.id"}
    ]}
  ],
  "relationships": [
    {"from_table": "books", "to_table": "authors", "relationship_type": "many-to-one", "explanation": "Each book has one author"}
  ],
  "design_decisions": ["Authors are stored separately"]
}`

func TestPrintResults(t *testing.T) {
	var out bytes.Buffer
	PrintResults(&out, &generator.Result{
		Requirement:   "Manage a library",
		Schema:        schema.ParseText(libraryJSON),
		Issues:        []string{"Table 'loans' has no primary key"},
		Queries:       "SELECT * FROM books;",
		Optimizations: "Index author_id",
	})

	report := out.String()
	assert.Contains(t, report, "🎯 BUSINESS REQUIREMENT: Manage a library")
	assert.Contains(t, report, "🗂️  Table: AUTHORS")
	assert.Contains(t, report, "   Description: Book authors")
	assert.Contains(t, report, "   • id (SERIAL) [PRIMARY KEY] [NOT NULL]")
	assert.Contains(t, report, "   • author_id (INT) [FK → authors.id]")
	assert.Contains(t, report, "   • books → authors (many-to-one)")
	assert.Contains(t, report, "   1. Authors are stored separately")
	assert.Contains(t, report, "   • Table 'loans' has no primary key")
	assert.Contains(t, report, "SELECT * FROM books;")
	assert.Contains(t, report, "Index author_id")
}

func TestPrintResultsFailedParse(t *testing.T) {
	var out bytes.Buffer
	PrintResults(&out, &generator.Result{
		Requirement: "Manage a library",
		Schema:      schema.ParseText("I cannot help with that"),
	})

	report := out.String()
	assert.Contains(t, report, "❌ SCHEMA GENERATION FAILED")
	assert.Contains(t, report, "I cannot help with that")
	assert.NotContains(t, report, "GENERATED DATABASE SCHEMA")
}

func TestPrintIssuesSkipsEmpty(t *testing.T) {
	var out bytes.Buffer
	PrintIssues(&out, []string{})
	assert.Empty(t, out.String())
}
