package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Field represents a single column of a generated table
type Field struct {
	Name         string   `json:"name"`
	DataType     string   `json:"data_type"`
	IsPrimaryKey bool     `json:"is_primary_key"`
	IsForeignKey bool     `json:"is_foreign_key"`
	References   string   `json:"references,omitempty"` // "table.field" when foreign key
	Constraints  []string `json:"constraints"`
}

// UnmarshalJSON accepts the loose value types models tend to emit: flags as
// "true"/"false" strings and a single constraint as a bare string.
func (f *Field) UnmarshalJSON(data []byte) error {
	type plain Field
	var raw struct {
		plain
		IsPrimaryKey json.RawMessage `json:"is_primary_key"`
		IsForeignKey json.RawMessage `json:"is_foreign_key"`
		Constraints  json.RawMessage `json:"constraints"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*f = Field(raw.plain)

	var err error
	if f.IsPrimaryKey, err = looseBool(raw.IsPrimaryKey); err != nil {
		return fmt.Errorf("field %q is_primary_key: %w", f.Name, err)
	}
	if f.IsForeignKey, err = looseBool(raw.IsForeignKey); err != nil {
		return fmt.Errorf("field %q is_foreign_key: %w", f.Name, err)
	}
	if f.Constraints, err = looseStrings(raw.Constraints); err != nil {
		return fmt.Errorf("field %q constraints: %w", f.Name, err)
	}
	return nil
}

func isNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func looseBool(data json.RawMessage) (bool, error) {
	if isNull(data) {
		return false, nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		return b, nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return false, fmt.Errorf("expected a boolean, got %s", data)
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}

func looseStrings(data json.RawMessage) ([]string, error) {
	if isNull(data) {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("expected a list of strings, got %s", data)
	}
	if s = strings.TrimSpace(s); s == "" {
		return []string{}, nil
	}
	return []string{s}, nil
}

// Table represents a generated table
type Table struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields"`
}

// Relationship describes how two tables relate
type Relationship struct {
	FromTable        string `json:"from_table"`
	ToTable          string `json:"to_table"`
	RelationshipType string `json:"relationship_type"` // "one-to-many", "many-to-one", "many-to-many"
	Explanation      string `json:"explanation"`
}

// Schema is the structured result of one schema design request
type Schema struct {
	Tables             []Table        `json:"tables"`
	Relationships      []Relationship `json:"relationships"`
	DesignDecisions    []string       `json:"design_decisions"`
	RawResponse        string         `json:"raw_response"`
	ParsedSuccessfully bool           `json:"parsed_successfully"`
}

// document is the JSON shape the model is asked to produce
type document struct {
	Tables          []Table        `json:"tables"`
	Relationships   []Relationship `json:"relationships"`
	DesignDecisions []string       `json:"design_decisions"`
}

// ReferencedTable returns the table part of a "table.field" reference.
func (f Field) ReferencedTable() (string, bool) {
	table, _, ok := strings.Cut(f.References, ".")
	if !ok {
		return "", false
	}
	return table, true
}

// HasPrimaryKey reports whether any field of the table is a primary key
func (t Table) HasPrimaryKey() bool {
	for _, field := range t.Fields {
		if field.IsPrimaryKey {
			return true
		}
	}
	return false
}

// TableNames returns the set of table names present in the schema
func (s *Schema) TableNames() map[string]bool {
	names := make(map[string]bool, len(s.Tables))
	for _, table := range s.Tables {
		names[table.Name] = true
	}
	return names
}

// DesignJSON serializes the design part of the schema (without the raw
// response) for feeding it back into follow-up prompts.
func (s *Schema) DesignJSON() (string, error) {
	doc := document{
		Tables:          s.Tables,
		Relationships:   s.Relationships,
		DesignDecisions: s.DesignDecisions,
	}
	doc.normalize()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize schema: %w", err)
	}
	return string(data), nil
}

func (d *document) normalize() {
	if d.Tables == nil {
		d.Tables = []Table{}
	}
	if d.Relationships == nil {
		d.Relationships = []Relationship{}
	}
	if d.DesignDecisions == nil {
		d.DesignDecisions = []string{}
	}
	for i := range d.Tables {
		if d.Tables[i].Fields == nil {
			d.Tables[i].Fields = []Field{}
		}
		for j := range d.Tables[i].Fields {
			if d.Tables[i].Fields[j].Constraints == nil {
				d.Tables[i].Fields[j].Constraints = []string{}
			}
		}
	}
}
