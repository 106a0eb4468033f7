package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"schema-generator/internal/generator"
	"schema-generator/internal/schema"
)

const (
	wideRule   = 100
	narrowRule = 60
)

var (
	heading = color.New(color.FgCyan, color.Bold).SprintFunc()
	failure = color.New(color.FgRed, color.Bold).SprintFunc()
	warning = color.New(color.FgYellow).SprintFunc()
)

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", heading(title))
	fmt.Fprintln(w, strings.Repeat("-", narrowRule))
}

// PrintResults writes the console report for a generation result
func PrintResults(w io.Writer, result *generator.Result) {
	fmt.Fprintln(w, strings.Repeat("=", wideRule))
	fmt.Fprintln(w, heading("🎯 BUSINESS REQUIREMENT: "+result.Requirement))
	fmt.Fprintln(w, strings.Repeat("=", wideRule))

	s := result.Schema
	if s == nil || !s.ParsedSuccessfully {
		fmt.Fprintln(w, failure("❌ SCHEMA GENERATION FAILED"))
		fmt.Fprintln(w, "Raw Response:")
		if s == nil || s.RawResponse == "" {
			fmt.Fprintln(w, "No response")
		} else {
			fmt.Fprintln(w, s.RawResponse)
		}
		return
	}

	PrintSchema(w, s)
	PrintIssues(w, result.Issues)

	if result.Queries != "" {
		section(w, "📝 EXAMPLE SQL QUERIES:")
		fmt.Fprintln(w, result.Queries)
	}

	if result.Optimizations != "" {
		section(w, "🚀 OPTIMIZATION SUGGESTIONS:")
		fmt.Fprintln(w, result.Optimizations)
	}
}

// PrintSchema writes tables, relationships and design decisions
func PrintSchema(w io.Writer, s *schema.Schema) {
	section(w, "📋 GENERATED DATABASE SCHEMA:")

	for _, table := range s.Tables {
		fmt.Fprintf(w, "\n🗂️  Table: %s\n", strings.ToUpper(table.Name))
		if table.Description != "" {
			fmt.Fprintf(w, "   Description: %s\n", table.Description)
		}

		for _, field := range table.Fields {
			fmt.Fprintln(w, describeField(field))
		}
	}

	if len(s.Relationships) > 0 {
		section(w, "🔗 TABLE RELATIONSHIPS:")
		for _, rel := range s.Relationships {
			fmt.Fprintf(w, "   • %s → %s (%s)\n", rel.FromTable, rel.ToTable, rel.RelationshipType)
			fmt.Fprintf(w, "     %s\n", rel.Explanation)
		}
	}

	if len(s.DesignDecisions) > 0 {
		section(w, "💡 DESIGN DECISIONS:")
		for i, decision := range s.DesignDecisions {
			fmt.Fprintf(w, "   %d. %s\n", i+1, decision)
		}
	}
}

// PrintIssues writes validation issues, if any
func PrintIssues(w io.Writer, issues []string) {
	if len(issues) == 0 {
		return
	}
	section(w, "⚠️  VALIDATION ISSUES:")
	for _, issue := range issues {
		fmt.Fprintf(w, "   • %s\n", warning(issue))
	}
}

func describeField(field schema.Field) string {
	desc := fmt.Sprintf("   • %s (%s)", field.Name, field.DataType)

	if field.IsPrimaryKey {
		desc += " [PRIMARY KEY]"
	}
	if field.IsForeignKey && field.References != "" {
		desc += fmt.Sprintf(" [FK → %s]", field.References)
	}
	if len(field.Constraints) > 0 {
		desc += fmt.Sprintf(" [%s]", strings.Join(field.Constraints, ", "))
	}
	return desc
}

// printExtensibility writes the closing banner of the demo
func printExtensibility(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", wideRule))
	section(w, "🔧 EXTENSIBILITY FEATURES:")
	fmt.Fprintln(w, "✅ Schema Validation - Checks for common database design issues")
	fmt.Fprintln(w, "✅ Optimization Suggestions - Performance and security recommendations")
	fmt.Fprintln(w, "✅ Custom Prompts - Modifiable templates for different use cases")
	fmt.Fprintln(w, "✅ JSON Output - Structured data for integration with other tools")
	fmt.Fprintln(w, "✅ Migration Scripts - 'ddl' prints CREATE TABLE statements, 'generate --apply' runs them")
	fmt.Fprintln(w, "✅ Index Suggestions - One index per foreign key")
	fmt.Fprintln(w, "✅ HTTP API - 'serve' exposes generation over REST")

	section(w, "🎯 POSSIBLE EXTENSIONS:")
	fmt.Fprintln(w, "• Visual Schema Diagrams - Generate ERD diagrams")
	fmt.Fprintln(w, "• Performance Benchmarking - Simulate query performance")
	fmt.Fprintln(w, "• Multi-database Support - Generate schemas for MySQL, SQLite, etc.")
	fmt.Fprintln(w, "• Business Rule Validation - Check against domain-specific constraints")
}
