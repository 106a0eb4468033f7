package prompts

import (
	"fmt"
	"strings"
)

// Prompt names
const (
	SchemaDesign  = "schema_design"
	QueryExamples = "query_examples"
	Optimization  = "optimization"
)

// Prompt is a system/user message pair sent to the language model
type Prompt struct {
	Name   string
	System string
	User   string
}

// Schema builds the prompt asking for a normalized schema for a business requirement
func Schema(requirement string) Prompt {
	return Prompt{
		Name: SchemaDesign,
		System: `You are a senior database architect with expertise in relational database design and normalization.
Your task is to convert business requirements into well-normalized relational database schemas.`,
		User: fmt.Sprintf(`Business Requirement: %s

Please design a normalized relational database schema following these guidelines:
1. Follow 3NF (Third Normal Form) principles
2. Use appropriate data types for each field
3. Define primary keys and foreign keys correctly
4. Create proper relationships between tables
5. Use meaningful table and column names

Provide your response in the following JSON format:
{
  "tables": [
    {
      "name": "table_name",
      "description": "Brief description of what this table stores",
      "fields": [
        {
          "name": "field_name",
          "data_type": "VARCHAR(100) | INT | DATE | etc.",
          "is_primary_key": true/false,
          "is_foreign_key": true/false,
          "references": "referenced_table.field_name (if foreign key)",
          "constraints": ["NOT NULL", "UNIQUE", etc.]
        }
      ]
    }
  ],
  "relationships": [
    {
      "from_table": "table1",
      "to_table": "table2",
      "relationship_type": "one-to-many | many-to-one | many-to-many",
      "explanation": "Why this relationship exists"
    }
  ],
  "design_decisions": [
    "Explanation for each major design decision"
  ]
}`, strings.TrimSpace(requirement)),
	}
}

// Queries builds the prompt asking for example SQL queries against a schema
func Queries(schemaJSON string) Prompt {
	return Prompt{
		Name: QueryExamples,
		System: `You are a SQL expert. Generate practical, well-commented SQL queries
that demonstrate how to use the provided database schema effectively.`,
		User: fmt.Sprintf(`Given this database schema:
%s

Generate 3-4 example SQL queries with the following types:
1. INSERT queries to add realistic sample data (at least 2-3 records per table)
2. SELECT query with JOINs to retrieve related data
3. UPDATE query to modify existing data
4. DELETE query (optional, with proper constraints)

Make the queries realistic for the business domain and include comments explaining what each query does.
Format as:

-- Query 1: Insert sample data
INSERT INTO table_name (field1, field2) VALUES (value1, value2);

-- Query 2: Retrieve related data
SELECT ... FROM ... JOIN ... WHERE ...;

etc.`, schemaJSON),
	}
}

// Optimizations builds the prompt asking for performance and security advice
func Optimizations(schemaJSON string) Prompt {
	return Prompt{
		Name: Optimization,
		System: `You are a database performance expert. Analyze database schemas
and provide optimization recommendations.`,
		User: fmt.Sprintf(`Database Schema: %s

Provide optimization suggestions including:
1. Recommended indexes for better query performance
2. Potential normalization improvements
3. Suggestions for handling large datasets
4. Security considerations

Format as a bulleted list with explanations.`, schemaJSON),
	}
}
