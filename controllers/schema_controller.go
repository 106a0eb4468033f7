package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"schema-generator/internal/generator"
	"schema-generator/internal/migration"
	"schema-generator/internal/schema"
)

// SchemaRunner runs the full generation for one requirement
type SchemaRunner interface {
	Run(ctx context.Context, requirement string, opts generator.RunOptions) (*generator.Result, error)
}

type SchemaController struct {
	runner  SchemaRunner
	timeout time.Duration
}

type GenerateRequest struct {
	Requirement       string `json:"requirement"`
	SkipQueries       bool   `json:"skip_queries"`
	SkipOptimizations bool   `json:"skip_optimizations"`
}

type ParseRequest struct {
	Response string `json:"response"`
}

type ParseResponse struct {
	Schema   *schema.Schema `json:"schema"`
	Strategy string         `json:"strategy"`
	Issues   []string       `json:"issues"`
}

type ValidateResponse struct {
	Issues []string `json:"issues"`
	Valid  bool     `json:"valid"`
}

type DDLResponse struct {
	Statements []string `json:"statements"`
	Ordered    []string `json:"ordered"`
	Indexes    []string `json:"indexes"`
}

// NewSchemaController creates the schema endpoints. runner may be nil when
// no language model is configured; generation then answers 503 while the
// offline endpoints keep working.
func NewSchemaController(runner SchemaRunner, timeout time.Duration) *SchemaController {
	return &SchemaController{runner: runner, timeout: timeout}
}

// Generate designs a schema for a business requirement
func (sc *SchemaController) Generate(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, err, "Invalid request format")
	}

	if strings.TrimSpace(req.Requirement) == "" {
		return fail(c, http.StatusBadRequest, generator.ErrEmptyRequirement, "Requirement is required")
	}

	if sc.runner == nil {
		return fail(c, http.StatusServiceUnavailable, nil, "Language model is not configured")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), sc.timeout)
	defer cancel()

	c.Logger().Infof("Generating schema for requirement %q", req.Requirement)
	result, err := sc.runner.Run(ctx, req.Requirement, generator.RunOptions{
		SkipQueries:       req.SkipQueries,
		SkipOptimizations: req.SkipOptimizations,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.Logger().Warnf("Schema generation timed out after %s", sc.timeout)
			return fail(c, http.StatusGatewayTimeout, err, fmt.Sprintf("Schema generation timed out after %s", sc.timeout))
		}
		c.Logger().Errorf("Schema generation failed: %v", err)
		return fail(c, http.StatusBadGateway, err, "Schema generation failed")
	}

	if !result.Schema.ParsedSuccessfully {
		c.Logger().Warnf("Model response for %s could not be parsed", result.ID)
		return success(c, http.StatusOK, result, "Schema generation failed to parse the model response")
	}

	return success(c, http.StatusOK, result, "Schema generated successfully")
}

// Parse turns a raw model response into a schema
func (sc *SchemaController) Parse(c echo.Context) error {
	var req ParseRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, err, "Invalid request format")
	}

	parsed := schema.ParseWithStrategy(schema.RawText(req.Response))
	return success(c, http.StatusOK, ParseResponse{
		Schema:   parsed.Schema,
		Strategy: parsed.Strategy,
		Issues:   schema.Validate(parsed.Schema),
	}, "")
}

// Validate checks a schema for design issues
func (sc *SchemaController) Validate(c echo.Context) error {
	var s schema.Schema
	if err := c.Bind(&s); err != nil {
		return fail(c, http.StatusBadRequest, err, "Invalid schema")
	}

	issues := schema.Validate(&s)
	return success(c, http.StatusOK, ValidateResponse{Issues: issues, Valid: len(issues) == 0}, "")
}

// DDL renders CREATE TABLE and CREATE INDEX statements for a schema
func (sc *SchemaController) DDL(c echo.Context) error {
	var s schema.Schema
	if err := c.Bind(&s); err != nil {
		return fail(c, http.StatusBadRequest, err, "Invalid schema")
	}

	if len(s.Tables) == 0 {
		return fail(c, http.StatusUnprocessableEntity, nil, schema.NoTablesIssue)
	}

	return success(c, http.StatusOK, DDLResponse{
		Statements: migration.CreateStatements(&s),
		Ordered:    migration.Statements(&s, migration.ApplyOptions{}),
		Indexes:    migration.SuggestIndexes(&s),
	}, "")
}
