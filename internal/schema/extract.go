package schema

import "strings"

// Response is the text produced by the language model. It is either a
// RawText or a StructuredResponse.
type Response interface {
	text() string
}

// RawText is a response that is already a plain string
type RawText string

func (r RawText) text() string { return string(r) }

// StructuredResponse is a response object carrying its text payload
type StructuredResponse struct {
	Text string `json:"text"`
}

func (r StructuredResponse) text() string { return r.Text }

// TextOf collapses a response into its text. A nil response has no text.
func TextOf(resp Response) string {
	if resp == nil {
		return ""
	}
	return resp.text()
}

// ExtractJSON returns the substring between the first '{' and the last '}'
// inclusive. When either brace is missing the text is returned unchanged.
//
// Braces inside JSON string values or several objects in one response make
// this slice too wide; BalancedObjects handles those cases.
func ExtractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < 0 || end < start {
		return text
	}
	return text[start : end+1]
}

// BalancedObjects returns every top-level brace-balanced object in text, in
// order, ignoring braces that appear inside string literals.
func BalancedObjects(text string) []string {
	var objects []string
	start := strings.Index(text, "{")
	for start >= 0 {
		next := start + 1
		if end, ok := matchObject(text, start); ok {
			objects = append(objects, text[start:end+1])
			next = end + 1
		}
		offset := strings.Index(text[next:], "{")
		if offset < 0 {
			break
		}
		start = next + offset
	}
	return objects
}

// matchObject finds the index of the '}' closing the '{' at start
func matchObject(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
