package schema

import (
	"encoding/json"
	"strings"
)

const (
	// FallbackTableName names the placeholder table of an unparsable response
	FallbackTableName = "parsing_error"
	// FallbackTableDescription describes the placeholder table
	FallbackTableDescription = "Could not parse response"
	// FallbackDecision is the only design decision of an unparsable response
	FallbackDecision = "Response parsing failed - please check the raw response"
)

// decodeStrategy turns response text into a document, reporting whether it
// succeeded.
type decodeStrategy struct {
	name   string
	decode func(text string) (document, bool)
}

// strategies are tried in order; the first success wins. When all of them
// fail the fallback schema is used.
var strategies = []decodeStrategy{
	{name: "extracted", decode: func(text string) (document, bool) {
		return decodeDocument(ExtractJSON(text))
	}},
	{name: "whole", decode: decodeDocument},
	{name: "balanced", decode: func(text string) (document, bool) {
		for _, candidate := range BalancedObjects(text) {
			if !hasTablesKey(candidate) {
				continue
			}
			if doc, ok := decodeDocument(candidate); ok {
				return doc, true
			}
		}
		return document{}, false
	}},
}

// ParseResult is the outcome of Parse together with the name of the
// strategy that produced it.
type ParseResult struct {
	Schema   *Schema
	Strategy string
}

// Parse turns a model response into a Schema. It never fails: a response
// that cannot be decoded yields the fallback schema with
// ParsedSuccessfully set to false.
func Parse(resp Response) *Schema {
	return ParseWithStrategy(resp).Schema
}

// ParseText is Parse for a plain string response
func ParseText(text string) *Schema {
	return Parse(RawText(text))
}

// ParseWithStrategy is Parse, also reporting which decode strategy matched
// ("fallback" when none did).
func ParseWithStrategy(resp Response) ParseResult {
	text := TextOf(resp)

	for _, strategy := range strategies {
		doc, ok := strategy.decode(text)
		if !ok {
			continue
		}
		doc.normalize()
		return ParseResult{
			Schema: &Schema{
				Tables:             doc.Tables,
				Relationships:      doc.Relationships,
				DesignDecisions:    doc.DesignDecisions,
				RawResponse:        text,
				ParsedSuccessfully: true,
			},
			Strategy: strategy.name,
		}
	}

	return ParseResult{Schema: Fallback(text), Strategy: "fallback"}
}

// Fallback builds the placeholder schema used when a response cannot be parsed
func Fallback(rawResponse string) *Schema {
	return &Schema{
		Tables: []Table{
			{
				Name:        FallbackTableName,
				Description: FallbackTableDescription,
				Fields:      []Field{},
			},
		},
		Relationships:      []Relationship{},
		DesignDecisions:    []string{FallbackDecision},
		RawResponse:        rawResponse,
		ParsedSuccessfully: false,
	}
}

// decodeDocument strictly decodes a JSON object. Other JSON values
// (null, arrays, scalars) are not documents.
func decodeDocument(candidate string) (document, bool) {
	if !strings.HasPrefix(strings.TrimSpace(candidate), "{") {
		return document{}, false
	}
	var doc document
	if err := json.Unmarshal([]byte(candidate), &doc); err != nil {
		return document{}, false
	}
	return doc, true
}

// hasTablesKey reports whether candidate is an object with a top-level
// "tables" key. Inner objects of a truncated reply (a single field, a
// relationship) never have one.
func hasTablesKey(candidate string) bool {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &keys); err != nil {
		return false
	}
	_, ok := keys["tables"]
	return ok
}
