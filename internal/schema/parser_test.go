package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const libraryResponse = `Sure! Here is the normalized schema:

{
  "tables": [
    {
      "name": "authors",
      "description": "People who write books",
      "fields": [
        {"name": "id", "data_type": "INT", "is_primary_key": true, "is_foreign_key": false, "constraints": ["NOT NULL"]},
        {"name": "name", "data_type": "VARCHAR(100)", "is_primary_key": false, "is_foreign_key": false, "constraints": ["NOT NULL"]}
      ]
    },
    {
      "name": "books",
      "fields": [
        {"name": "id", "data_type": "INT", "is_primary_key": true, "is_foreign_key": false},
        {"name": "author_id", "data_type": "INT", "is_primary_key": false, "is_foreign_key": true, "references": "authors.id", "constraints": []}
      ]
    }
  ],
  "relationships": [
    {"from_table": "authors", "to_table": "books", "relationship_type": "one-to-many", "explanation": "An author writes many books"}
  ],
  "design_decisions": ["Authors are split out to satisfy 3NF"]
}

Let me know if you need anything else.`

func TestParseExtractedJSON(t *testing.T) {
	result := ParseWithStrategy(RawText(libraryResponse))
	s := result.Schema

	assert.Equal(t, "extracted", result.Strategy)
	assert.True(t, s.ParsedSuccessfully)
	assert.Equal(t, libraryResponse, s.RawResponse)

	require.Len(t, s.Tables, 2)
	assert.Equal(t, Table{
		Name:        "authors",
		Description: "People who write books",
		Fields: []Field{
			{Name: "id", DataType: "INT", IsPrimaryKey: true, Constraints: []string{"NOT NULL"}},
			{Name: "name", DataType: "VARCHAR(100)", Constraints: []string{"NOT NULL"}},
		},
	}, s.Tables[0])
	assert.Equal(t, Table{
		Name: "books",
		Fields: []Field{
			{Name: "id", DataType: "INT", IsPrimaryKey: true, Constraints: []string{}},
			{Name: "author_id", DataType: "INT", IsForeignKey: true, References: "authors.id", Constraints: []string{}},
		},
	}, s.Tables[1])
	assert.Equal(t, []Relationship{{
		FromTable:        "authors",
		ToTable:          "books",
		RelationshipType: "one-to-many",
		Explanation:      "An author writes many books",
	}}, s.Relationships)
	assert.Equal(t, []string{"Authors are split out to satisfy 3NF"}, s.DesignDecisions)
}

func TestParseStructuredResponse(t *testing.T) {
	s := Parse(StructuredResponse{Text: `{"tables": [{"name": "t", "fields": []}]}`})

	assert.True(t, s.ParsedSuccessfully)
	require.Len(t, s.Tables, 1)
	assert.Equal(t, "t", s.Tables[0].Name)
}

func TestParseMissingKeysDefaultToEmpty(t *testing.T) {
	s := ParseText(`{}`)

	assert.True(t, s.ParsedSuccessfully)
	assert.NotNil(t, s.Tables)
	assert.Empty(t, s.Tables)
	assert.NotNil(t, s.Relationships)
	assert.Empty(t, s.Relationships)
	assert.NotNil(t, s.DesignDecisions)
	assert.Empty(t, s.DesignDecisions)
}

func TestParseFallsBackToBalancedObject(t *testing.T) {
	text := `Example of a placeholder: {name}. Schema: {"tables": [{"name": "users", "fields": []}]}`

	result := ParseWithStrategy(RawText(text))

	assert.Equal(t, "balanced", result.Strategy)
	assert.True(t, result.Schema.ParsedSuccessfully)
	require.Len(t, result.Schema.Tables, 1)
	assert.Equal(t, "users", result.Schema.Tables[0].Name)
}

func TestParseTruncatedResponseFallsBack(t *testing.T) {
	truncated := `{"tables": [{"name": "users", "fields": [` +
		`{"name": "id", "data_type": "SERIAL", "is_primary_key": true}, ` +
		`{"name": "email", "data_ty`

	result := ParseWithStrategy(RawText(truncated))

	assert.Equal(t, "fallback", result.Strategy)
	assert.False(t, result.Schema.ParsedSuccessfully)
	assert.Equal(t, truncated, result.Schema.RawResponse)
	require.Len(t, result.Schema.Tables, 1)
	assert.Equal(t, "parsing_error", result.Schema.Tables[0].Name)
}

func TestBalancedObjectsWithoutTablesAreSkipped(t *testing.T) {
	text := `Relationship {"from_table": "a", "to_table": "b"} then {"tables": [{"name": "b", "fields": []}]} trailing }`

	result := ParseWithStrategy(RawText(text))

	assert.Equal(t, "balanced", result.Strategy)
	require.Len(t, result.Schema.Tables, 1)
	assert.Equal(t, "b", result.Schema.Tables[0].Name)
}

func TestParseAcceptsLooseFieldTypes(t *testing.T) {
	text := `{"tables": [{"name": "users", "fields": [
		{"name": "id", "data_type": "SERIAL", "is_primary_key": "true", "is_foreign_key": "false", "constraints": "NOT NULL"},
		{"name": "team_id", "data_type": "INT", "is_foreign_key": true, "references": "teams.id", "constraints": null},
		{"name": "note", "data_type": "TEXT", "is_primary_key": null, "constraints": ""}
	]}]}`

	s := ParseText(text)
	require.True(t, s.ParsedSuccessfully)
	require.Len(t, s.Tables, 1)

	assert.Equal(t, []Field{
		{Name: "id", DataType: "SERIAL", IsPrimaryKey: true, Constraints: []string{"NOT NULL"}},
		{Name: "team_id", DataType: "INT", IsForeignKey: true, References: "teams.id", Constraints: []string{}},
		{Name: "note", DataType: "TEXT", Constraints: []string{}},
	}, s.Tables[0].Fields)
}

func TestParseRejectsUnusableFieldValues(t *testing.T) {
	inputs := map[string]string{
		"flag word":        `{"tables": [{"name": "t", "fields": [{"name": "id", "is_primary_key": "yes please"}]}]}`,
		"flag object":      `{"tables": [{"name": "t", "fields": [{"name": "id", "is_foreign_key": {}}]}]}`,
		"constraint count": `{"tables": [{"name": "t", "fields": [{"name": "id", "constraints": 3}]}]}`,
	}

	for name, text := range inputs {
		t.Run(name, func(t *testing.T) {
			s := ParseText(text)
			assert.False(t, s.ParsedSuccessfully)
			assert.Equal(t, FallbackTableName, s.Tables[0].Name)
		})
	}
}

func TestParseFailureFallback(t *testing.T) {
	inputs := map[string]Response{
		"plain text":        RawText("not json at all"),
		"empty":             RawText(""),
		"broken object":     RawText(`{"tables": [`),
		"json array":        RawText(`[1, 2, 3]`),
		"json null":         RawText(`null`),
		"nil response":      nil,
		"structured text":   StructuredResponse{Text: "I cannot help with that."},
		"wrong field types": RawText(`{"tables": "none"}`),
	}

	for name, resp := range inputs {
		t.Run(name, func(t *testing.T) {
			result := ParseWithStrategy(resp)
			s := result.Schema

			assert.Equal(t, "fallback", result.Strategy)
			assert.False(t, s.ParsedSuccessfully)
			assert.Equal(t, TextOf(resp), s.RawResponse)
			assert.Equal(t, []Table{{
				Name:        "parsing_error",
				Description: "Could not parse response",
				Fields:      []Field{},
			}}, s.Tables)
			assert.Empty(t, s.Relationships)
			assert.Equal(t, []string{"Response parsing failed - please check the raw response"}, s.DesignDecisions)
		})
	}
}

func TestDesignJSONOmitsRawResponse(t *testing.T) {
	s := ParseText(libraryResponse)

	out, err := s.DesignJSON()
	require.NoError(t, err)

	assert.Contains(t, out, `"tables"`)
	assert.Contains(t, out, `"design_decisions"`)
	assert.NotContains(t, out, "raw_response")
	assert.NotContains(t, out, "Let me know")

	again := ParseText(out)
	assert.True(t, again.ParsedSuccessfully)
	assert.Equal(t, s.Tables, again.Tables)
	assert.Equal(t, s.Relationships, again.Relationships)
	assert.Equal(t, s.DesignDecisions, again.DesignDecisions)
}
