package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"schema-generator/internal/generator"
	"schema-generator/internal/migration"
)

const noResult = "No schema yet. Describe a business requirement first."

// Session holds the state the follow-up commands work on
type Session struct {
	Result    *generator.Result
	OutputDir string
}

// CommandHandler defines the interface for command handling
type CommandHandler interface {
	Handle(session *Session, args []string) string
	Help() string
}

// DDLCommand handles the "/ddl" command
type DDLCommand struct{}

func (d *DDLCommand) Handle(session *Session, args []string) string {
	if !hasSchema(session) {
		return noResult
	}
	return migration.CreateScript(session.Result.Schema)
}

func (d *DDLCommand) Help() string { return "print CREATE TABLE statements" }

// IndexesCommand handles the "/indexes" command
type IndexesCommand struct{}

func (i *IndexesCommand) Handle(session *Session, args []string) string {
	if !hasSchema(session) {
		return noResult
	}
	indexes := migration.SuggestIndexes(session.Result.Schema)
	if len(indexes) == 0 {
		return "No foreign keys to index"
	}
	return strings.Join(indexes, "\n")
}

func (i *IndexesCommand) Help() string { return "suggest one index per foreign key" }

// IssuesCommand handles the "/issues" command
type IssuesCommand struct{}

func (i *IssuesCommand) Handle(session *Session, args []string) string {
	if session.Result == nil {
		return noResult
	}
	if len(session.Result.Issues) == 0 {
		return "✅ No validation issues"
	}

	var b strings.Builder
	for _, issue := range session.Result.Issues {
		fmt.Fprintf(&b, "• %s\n", issue)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (i *IssuesCommand) Help() string { return "list validation issues" }

// JSONCommand handles the "/json" command
type JSONCommand struct{}

func (j *JSONCommand) Handle(session *Session, args []string) string {
	if session.Result == nil {
		return noResult
	}
	data, err := json.MarshalIndent(session.Result, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error encoding result: %v", err)
	}
	return string(data)
}

func (j *JSONCommand) Help() string { return "print the full result as JSON" }

// SaveCommand handles the "/save" command. An optional argument overrides
// the output directory.
type SaveCommand struct{}

func (s *SaveCommand) Handle(session *Session, args []string) string {
	if session.Result == nil {
		return noResult
	}

	dir := session.OutputDir
	if len(args) > 0 {
		dir = args[0]
	}

	paths, err := SaveResult(dir, session.Result)
	if err != nil {
		return fmt.Sprintf("Error saving result: %v", err)
	}
	return "💾 Saved " + strings.Join(paths, ", ")
}

func (s *SaveCommand) Help() string { return "write result JSON and DDL to the output directory" }

// NewCommand handles the "/new" command
type NewCommand struct{}

func (n *NewCommand) Handle(session *Session, args []string) string {
	session.Result = nil
	return "Describe the next business requirement:"
}

func (n *NewCommand) Help() string { return "start over with a new requirement" }

// EndCommand handles the "/end" command
type EndCommand struct{}

func (e *EndCommand) Handle(session *Session, args []string) string {
	return "Goodbye! 👋"
}

func (e *EndCommand) Help() string { return "exit" }

// HelpCommand lists the registered commands
type HelpCommand struct {
	registry *CommandRegistry
}

func (h *HelpCommand) Handle(session *Session, args []string) string {
	var b strings.Builder
	b.WriteString("Type a business requirement to design a schema, or one of:\n")
	for _, name := range h.registry.Names() {
		fmt.Fprintf(&b, "  %-9s %s\n", name, h.registry.commands[name].Help())
	}
	return strings.TrimRight(b.String(), "\n")
}

func (h *HelpCommand) Help() string { return "show this help" }

// UnsupportedCommand handles unknown commands
type UnsupportedCommand struct{}

func (u *UnsupportedCommand) Handle(session *Session, args []string) string {
	return "unsupported command, type /help"
}

func (u *UnsupportedCommand) Help() string { return "" }

// CommandRegistry manages available commands
type CommandRegistry struct {
	commands map[string]CommandHandler
}

func NewCommandRegistry() *CommandRegistry {
	registry := &CommandRegistry{
		commands: make(map[string]CommandHandler),
	}

	// Register available commands
	registry.commands["/ddl"] = &DDLCommand{}
	registry.commands["/indexes"] = &IndexesCommand{}
	registry.commands["/issues"] = &IssuesCommand{}
	registry.commands["/json"] = &JSONCommand{}
	registry.commands["/save"] = &SaveCommand{}
	registry.commands["/new"] = &NewCommand{}
	registry.commands["/end"] = &EndCommand{}
	registry.commands["/help"] = &HelpCommand{registry: registry}

	return registry
}

// Names returns the registered command names in sorted order
func (cr *CommandRegistry) Names() []string {
	names := make([]string, 0, len(cr.commands))
	for name := range cr.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsCommand reports whether input is addressed to the registry rather than
// being a requirement
func IsCommand(input string) bool {
	return strings.HasPrefix(input, "/")
}

// Execute runs a command line and reports whether the session should end
func (cr *CommandRegistry) Execute(session *Session, input string) (string, bool) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return "", false
	}

	name, args := parts[0], parts[1:]
	if handler, exists := cr.commands[name]; exists {
		return handler.Handle(session, args), name == "/end"
	}

	// Return unsupported for unknown commands
	unsupported := &UnsupportedCommand{}
	return unsupported.Handle(session, args), false
}

func hasSchema(session *Session) bool {
	return session.Result != nil && session.Result.Schema != nil && session.Result.Schema.ParsedSuccessfully
}

// SaveResult writes <id>.json and, for parsed schemas, <id>.sql into dir
func SaveResult(dir string, result *generator.Result) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}

	jsonPath := filepath.Join(dir, result.ID+".json")
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", jsonPath, err)
	}
	paths := []string{jsonPath}

	if result.Schema != nil && result.Schema.ParsedSuccessfully {
		statements := migration.Statements(result.Schema, migration.ApplyOptions{WithIndexes: true})
		sqlPath := filepath.Join(dir, result.ID+".sql")
		if err := os.WriteFile(sqlPath, []byte(strings.Join(statements, "\n\n")+"\n"), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", sqlPath, err)
		}
		paths = append(paths, sqlPath)
	}

	return paths, nil
}
