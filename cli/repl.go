package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"schema-generator/internal/generator"
)

const (
	prompt = "> "
	// maxLineBytes bounds one input line, pasted requirements can be long
	maxLineBytes = 1024 * 1024
)

// Runner runs the full generation for one requirement
type Runner interface {
	Run(ctx context.Context, requirement string, opts generator.RunOptions) (*generator.Result, error)
}

// lineReader yields one input line per call and io.EOF at the end
type lineReader interface {
	Readline() (string, error)
	Close() error
}

// scannerReader reads lines from a plain reader such as a pipe
type scannerReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (s *scannerReader) Readline() (string, error) {
	fmt.Fprint(s.out, prompt)
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (s *scannerReader) Close() error { return nil }

type REPL struct {
	lines    lineReader
	out      io.Writer
	runner   Runner
	registry *CommandRegistry
	session  *Session
	timeout  time.Duration
	running  bool
}

func newREPL(lines lineReader, out io.Writer, runner Runner, registry *CommandRegistry, outputDir string, timeout time.Duration) *REPL {
	return &REPL{
		lines:    lines,
		out:      out,
		runner:   runner,
		registry: registry,
		session:  &Session{OutputDir: outputDir},
		timeout:  timeout,
		running:  true,
	}
}

// NewREPL reads input line by line from in
func NewREPL(in io.Reader, out io.Writer, runner Runner, outputDir string, timeout time.Duration) *REPL {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lines := &scannerReader{scanner: scanner, out: out}
	return newREPL(lines, out, runner, NewCommandRegistry(), outputDir, timeout)
}

// NewTerminalREPL reads input with line editing, history and completion of
// the follow-up commands
func NewTerminalREPL(out io.Writer, runner Runner, outputDir string, timeout time.Duration) (*REPL, error) {
	registry := NewCommandRegistry()

	items := make([]readline.PrefixCompleterInterface, 0, len(registry.commands))
	for _, name := range registry.Names() {
		items = append(items, readline.PcItem(name))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile(),
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		EOFPrompt:       "/end",
		Stdout:          out,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize interactive mode: %w", err)
	}

	return newREPL(rl, out, runner, registry, outputDir, timeout), nil
}

func historyFile() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".schemagen_history")
}

// Start reads requirements and commands until /end or end of input
func (r *REPL) Start(ctx context.Context) error {
	defer r.lines.Close()

	fmt.Fprintln(r.out, "🤖 INTERACTIVE MODE - Enter Your Custom Requirement")
	fmt.Fprintln(r.out, "Describe a business requirement, or type /help for commands and /end to exit")

	for r.running {
		line, err := r.lines.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(r.out, "Type /end to exit")
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading input: %w", err)
		}

		r.processInput(ctx, strings.TrimSpace(line))
	}

	return nil
}

func (r *REPL) processInput(ctx context.Context, input string) {
	switch {
	case input == "":
		// Do nothing for empty input
	case IsCommand(input):
		output, quit := r.registry.Execute(r.session, input)
		fmt.Fprintln(r.out, output)
		if quit {
			r.running = false
		}
	default:
		r.generate(ctx, input)
	}
}

func (r *REPL) generate(ctx context.Context, requirement string) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	fmt.Fprintf(r.out, "\n🔄 Generating schema for: %s\n", requirement)
	start := time.Now()
	result, err := r.runner.Run(ctx, requirement, generator.RunOptions{})
	if err != nil {
		fmt.Fprintf(r.out, "❌ %v\n", err)
		return
	}

	fmt.Fprintf(r.out, "⏱️  Completed in %.2f seconds\n", time.Since(start).Seconds())
	PrintResults(r.out, result)
	r.session.Result = result

	fmt.Fprintln(r.out, "\nFollow up with /ddl, /indexes, /issues, /json, /save or /new")
}
