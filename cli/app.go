package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	urfave "github.com/urfave/cli/v2"
	"golang.org/x/term"
	"schema-generator/cache"
	"schema-generator/config"
	"schema-generator/internal/generator"
	"schema-generator/internal/migration"
	"schema-generator/internal/openai"
	"schema-generator/internal/schema"
)

// App is the schemagen command line
type App struct {
	*urfave.App
	in  io.Reader
	out io.Writer
	cfg *config.Config
}

// NewGenerator wires the OpenAI client and the configured cache into a
// generator. Progress lines go to progress when it is not nil.
func NewGenerator(cfg *config.Config, progress io.Writer) (*generator.Generator, error) {
	client, err := openai.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	opts := []generator.Option{generator.WithModel(client.Model())}
	if progress != nil {
		opts = append(opts, generator.WithProgress(progress))
	}

	schemaCache, err := cache.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	if schemaCache != nil {
		opts = append(opts, generator.WithCache(schemaCache))
	}

	return generator.New(client, opts...), nil
}

func NewApp(in io.Reader, out io.Writer) *App {
	a := &App{in: in, out: out}
	a.App = &urfave.App{
		Name:   "schemagen",
		Usage:  "design relational database schemas from business requirements",
		Reader: in,
		Writer: out,
		Flags: []urfave.Flag{
			&urfave.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to config.yaml"},
		},
		Before: a.loadConfig,
		Action: a.Demo,
		Commands: []*urfave.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: a.Serve,
				Flags: []urfave.Flag{
					&urfave.StringFlag{Name: "addr", Usage: "listen address, overrides server.address"},
				},
			},
			{
				Name:   "demo",
				Usage:  "generate a schema for one of the demo requirements",
				Action: a.Demo,
				Flags: []urfave.Flag{
					&urfave.IntFlag{Name: "choice", Usage: "demo requirement number, prompts when omitted"},
				},
			},
			{
				Name:   "interactive",
				Usage:  "design schemas in a read-eval-print loop",
				Action: a.Interactive,
			},
			{
				Name:      "generate",
				Usage:     "generate a schema for a requirement",
				ArgsUsage: "[requirement]",
				Action:    a.Generate,
				Flags: []urfave.Flag{
					&urfave.StringFlag{Name: "requirement", Aliases: []string{"r"}},
					&urfave.BoolFlag{Name: "json", Usage: "print the result as JSON"},
					&urfave.BoolFlag{Name: "ddl", Usage: "also print CREATE TABLE statements"},
					&urfave.BoolFlag{Name: "skip-queries"},
					&urfave.BoolFlag{Name: "skip-optimizations"},
					&urfave.BoolFlag{Name: "save", Usage: "write the result to output.directory"},
					&urfave.BoolFlag{Name: "apply", Usage: "create the tables in database.url"},
					&urfave.BoolFlag{Name: "dry-run", Usage: "with --apply, roll back after executing"},
					&urfave.BoolFlag{Name: "with-indexes", Usage: "with --apply, also create foreign key indexes"},
				},
			},
			{
				Name:   "validate",
				Usage:  "parse a model response or schema JSON and report design issues",
				Action: a.Validate,
				Flags: []urfave.Flag{
					&urfave.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "input file, - for stdin", Value: "-"},
				},
			},
			{
				Name:   "ddl",
				Usage:  "print dependency ordered DDL for a schema file",
				Action: a.DDL,
				Flags: []urfave.Flag{
					&urfave.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "input file, - for stdin", Value: "-"},
					&urfave.BoolFlag{Name: "with-indexes"},
				},
			},
			{
				Name:   "clear-cache",
				Usage:  "remove all cached schemas",
				Action: a.ClearCache,
			},
		},
	}

	return a
}

func (a *App) loadConfig(ctx *urfave.Context) error {
	cfg, err := config.Find(ctx.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg
	return nil
}

func (a *App) Serve(ctx *urfave.Context) error {
	addr := ctx.String("addr")
	if addr == "" {
		addr = a.cfg.Server.Address
	}
	return Serve(ctx.Context, a.cfg, addr)
}

func (a *App) Demo(ctx *urfave.Context) error {
	gen, err := NewGenerator(a.cfg, a.out)
	if err != nil {
		return err
	}

	requirement := demoRequirement(fmt.Sprint(ctx.Int("choice")))
	if !ctx.IsSet("choice") {
		requirement = SelectDemoRequirement(a.in, a.out)
	}

	return RunDemo(ctx.Context, a.out, gen, requirement, a.cfg.GetRunTimeout())
}

func (a *App) Interactive(ctx *urfave.Context) error {
	gen, err := NewGenerator(a.cfg, a.out)
	if err != nil {
		return err
	}

	repl := NewREPL(a.in, a.out, gen, a.cfg.Output.Directory, a.cfg.GetRunTimeout())
	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		repl, err = NewTerminalREPL(a.out, gen, a.cfg.Output.Directory, a.cfg.GetRunTimeout())
		if err != nil {
			return err
		}
	}
	return repl.Start(ctx.Context)
}

func (a *App) Generate(ctx *urfave.Context) error {
	requirement := ctx.String("requirement")
	if requirement == "" {
		requirement = strings.Join(ctx.Args().Slice(), " ")
	}
	if strings.TrimSpace(requirement) == "" {
		return generator.ErrEmptyRequirement
	}

	asJSON := ctx.Bool("json")
	var progress io.Writer = a.out
	if asJSON {
		progress = nil
	}

	gen, err := NewGenerator(a.cfg, progress)
	if err != nil {
		return err
	}

	result, err := gen.Run(ctx.Context, requirement, generator.RunOptions{
		SkipQueries:       ctx.Bool("skip-queries"),
		SkipOptimizations: ctx.Bool("skip-optimizations"),
	})
	if err != nil {
		return err
	}

	if asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, string(data))
	} else {
		PrintResults(a.out, result)
	}

	if ctx.Bool("ddl") && result.Schema.ParsedSuccessfully {
		section(a.out, "🛠️  MIGRATION SCRIPT:")
		fmt.Fprintln(a.out, migration.CreateScript(result.Schema))
	}

	if ctx.Bool("save") || a.cfg.Output.SaveResults {
		paths, err := SaveResult(a.cfg.Output.Directory, result)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "💾 Saved %s\n", strings.Join(paths, ", "))
	}

	if ctx.Bool("apply") {
		return a.apply(ctx, result.Schema, migration.ApplyOptions{
			DryRun:      ctx.Bool("dry-run"),
			WithIndexes: ctx.Bool("with-indexes"),
		})
	}

	return nil
}

func (a *App) apply(ctx *urfave.Context, s *schema.Schema, opts migration.ApplyOptions) error {
	db, err := migration.Open(ctx.Context, migration.DBConfig{
		URL:          a.cfg.Database.URL,
		MaxOpenConns: a.cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := migration.NewApplier(db).Apply(ctx.Context, s, opts)
	if err != nil {
		return err
	}

	if applied.Committed {
		fmt.Fprintf(a.out, "✅ Applied %d statements\n", len(applied.Statements))
	} else {
		fmt.Fprintf(a.out, "🔁 Dry run executed %d statements and rolled back\n", len(applied.Statements))
	}
	return nil
}

func (a *App) Validate(ctx *urfave.Context) error {
	parsed, err := a.readSchema(ctx.String("file"))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "🔍 Parsed with strategy: %s\n", parsed.Strategy)
	if !parsed.Schema.ParsedSuccessfully {
		return errors.New("input does not contain a schema object")
	}

	PrintSchema(a.out, parsed.Schema)

	issues := schema.Validate(parsed.Schema)
	if len(issues) == 0 {
		fmt.Fprintln(a.out, "\n✅ No validation issues")
		return nil
	}

	PrintIssues(a.out, issues)
	return fmt.Errorf("schema has %d validation issue(s)", len(issues))
}

func (a *App) DDL(ctx *urfave.Context) error {
	parsed, err := a.readSchema(ctx.String("file"))
	if err != nil {
		return err
	}
	if !parsed.Schema.ParsedSuccessfully || len(parsed.Schema.Tables) == 0 {
		return errors.New(schema.NoTablesIssue)
	}

	statements := migration.Statements(parsed.Schema, migration.ApplyOptions{WithIndexes: ctx.Bool("with-indexes")})
	fmt.Fprintln(a.out, strings.Join(statements, "\n\n"))
	return nil
}

func (a *App) ClearCache(ctx *urfave.Context) error {
	schemaCache, err := cache.NewFromConfig(a.cfg)
	if err != nil {
		return err
	}
	if schemaCache == nil {
		fmt.Fprintln(a.out, "Cache is disabled")
		return nil
	}

	if err := schemaCache.ClearCache(ctx.Context); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "🧹 Cache cleared")
	return nil
}

func (a *App) readSchema(path string) (schema.ParseResult, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(a.in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return schema.ParseResult{}, fmt.Errorf("failed to read input: %w", err)
	}

	return schema.ParseWithStrategy(schema.RawText(data)), nil
}
