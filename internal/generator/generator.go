package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"schema-generator/internal/metrics"
	"schema-generator/internal/prompts"
	"schema-generator/internal/schema"
)

// ErrEmptyRequirement is returned when no business requirement is given
var ErrEmptyRequirement = errors.New("requirement must not be empty")

// TextService is the language model: prompt text in, response text out
type TextService interface {
	Complete(ctx context.Context, prompt prompts.Prompt) (schema.Response, error)
}

// SchemaCache stores parsed schemas between runs
type SchemaCache interface {
	GetSchema(ctx context.Context, model, requirement string) (*schema.Schema, bool)
	SetSchema(ctx context.Context, model, requirement string, s *schema.Schema) error
}

// Generator turns business requirements into schemas, example queries and
// optimization suggestions
type Generator struct {
	service TextService
	cache   SchemaCache
	model   string
	out     io.Writer
}

// Option configures a Generator
type Option func(*Generator)

// WithCache enables schema caching
func WithCache(cache SchemaCache) Option {
	return func(g *Generator) {
		g.cache = cache
	}
}

// WithModel sets the model name used as part of the cache key
func WithModel(model string) Option {
	return func(g *Generator) {
		g.model = model
	}
}

// WithProgress writes progress lines to w
func WithProgress(w io.Writer) Option {
	return func(g *Generator) {
		g.out = w
	}
}

// Result contains everything produced for one requirement
type Result struct {
	ID            string         `json:"id"`
	Requirement   string         `json:"requirement"`
	Schema        *schema.Schema `json:"schema"`
	Issues        []string       `json:"issues"`
	Queries       string         `json:"queries,omitempty"`
	Optimizations string         `json:"optimizations,omitempty"`
	Cached        bool           `json:"cached"`
	GeneratedAt   time.Time      `json:"generated_at"`
}

// RunOptions selects the follow-up prompts of Run
type RunOptions struct {
	SkipQueries       bool
	SkipOptimizations bool
}

// New creates a generator over a text service
func New(service TextService, opts ...Option) *Generator {
	g := &Generator{
		service: service,
		out:     io.Discard,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateSchema asks the model for a schema and parses its response. Only
// a failure to reach the model is returned as an error; an unparsable
// response yields the fallback schema.
func (g *Generator) GenerateSchema(ctx context.Context, requirement string) (*schema.Schema, error) {
	s, _, err := g.generateSchema(ctx, requirement)
	return s, err
}

func (g *Generator) generateSchema(ctx context.Context, requirement string) (*schema.Schema, bool, error) {
	requirement = strings.TrimSpace(requirement)
	if requirement == "" {
		return nil, false, ErrEmptyRequirement
	}

	if g.cache != nil {
		if cached, ok := g.cache.GetSchema(ctx, g.model, requirement); ok {
			fmt.Fprintln(g.out, "💾 Using cached schema")
			metrics.RecordSchemaGeneration(metrics.OutcomeCached)
			return cached, true, nil
		}
	}

	resp, err := g.service.Complete(ctx, prompts.Schema(requirement))
	if err != nil {
		metrics.RecordSchemaGeneration(metrics.OutcomeError)
		return nil, false, fmt.Errorf("schema generation failed: %w", err)
	}

	parsed := schema.ParseWithStrategy(resp)
	metrics.RecordParseStrategy(parsed.Strategy)
	if !parsed.Schema.ParsedSuccessfully {
		fmt.Fprintln(g.out, "⚠️  Could not parse the model response as JSON")
		metrics.RecordSchemaGeneration(metrics.OutcomeFallback)
		return parsed.Schema, false, nil
	}
	metrics.RecordSchemaGeneration(metrics.OutcomeParsed)

	if g.cache != nil {
		if err := g.cache.SetSchema(ctx, g.model, requirement, parsed.Schema); err != nil {
			fmt.Fprintf(g.out, "⚠️  Failed to cache schema: %v\n", err)
		}
	}

	return parsed.Schema, false, nil
}

// GenerateQueries asks the model for example SQL queries for the schema.
// The response text is returned unchanged.
func (g *Generator) GenerateQueries(ctx context.Context, s *schema.Schema) (string, error) {
	return g.followUp(ctx, s, prompts.Queries)
}

// GenerateOptimizations asks the model for optimization suggestions for the
// schema. The response text is returned unchanged.
func (g *Generator) GenerateOptimizations(ctx context.Context, s *schema.Schema) (string, error) {
	return g.followUp(ctx, s, prompts.Optimizations)
}

func (g *Generator) followUp(ctx context.Context, s *schema.Schema, build func(string) prompts.Prompt) (string, error) {
	schemaJSON, err := s.DesignJSON()
	if err != nil {
		return "", err
	}

	resp, err := g.service.Complete(ctx, build(schemaJSON))
	if err != nil {
		return "", err
	}
	return schema.TextOf(resp), nil
}

// Run generates the schema, validates it and, unless skipped, generates
// example queries and optimization suggestions. Failures of the follow-up
// prompts are reported in their text instead of failing the run.
func (g *Generator) Run(ctx context.Context, requirement string, opts RunOptions) (*Result, error) {
	fmt.Fprintln(g.out, "🧠 Designing schema...")
	s, cached, err := g.generateSchema(ctx, requirement)
	if err != nil {
		return nil, err
	}

	issues := schema.Validate(s)
	metrics.RecordValidationIssues(len(issues))

	result := &Result{
		ID:          uuid.NewString(),
		Requirement: strings.TrimSpace(requirement),
		Schema:      s,
		Issues:      issues,
		Cached:      cached,
		GeneratedAt: time.Now().UTC(),
	}

	if !opts.SkipQueries {
		fmt.Fprintln(g.out, "📝 Generating example queries...")
		queries, err := g.GenerateQueries(ctx, s)
		if err != nil {
			queries = fmt.Sprintf("Error generating queries: %v", err)
		}
		result.Queries = queries
	}

	if !opts.SkipOptimizations {
		fmt.Fprintln(g.out, "🚀 Generating optimization suggestions...")
		optimizations, err := g.GenerateOptimizations(ctx, s)
		if err != nil {
			optimizations = fmt.Sprintf("Error generating optimizations: %v", err)
		}
		result.Optimizations = optimizations
	}

	return result, nil
}
