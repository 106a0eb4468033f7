package generator

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"schema-generator/internal/prompts"
	"schema-generator/internal/schema"
)

const clinicSchema = `Here you go:
{"tables": [
  {"name": "patients", "fields": [{"name": "id", "data_type": "INT", "is_primary_key": true}]},
  {"name": "appointments", "fields": [
    {"name": "id", "data_type": "INT", "is_primary_key": true},
    {"name": "patient_id", "data_type": "INT", "is_foreign_key": true, "references": "patients.id"},
    {"name": "doctor_id", "data_type": "INT", "is_foreign_key": true, "references": "doctors.id"}
  ]}
], "relationships": [], "design_decisions": ["Appointments link patients"]}`

// fakeService answers each prompt by name
type fakeService struct {
	responses map[string]schema.Response
	errs      map[string]error
	calls     []prompts.Prompt
}

func (f *fakeService) Complete(_ context.Context, prompt prompts.Prompt) (schema.Response, error) {
	f.calls = append(f.calls, prompt)
	if err := f.errs[prompt.Name]; err != nil {
		return nil, err
	}
	return f.responses[prompt.Name], nil
}

type memoryCache struct {
	schemas map[string]*schema.Schema
}

func (m *memoryCache) GetSchema(_ context.Context, model, requirement string) (*schema.Schema, bool) {
	s, ok := m.schemas[model+"|"+requirement]
	return s, ok
}

func (m *memoryCache) SetSchema(_ context.Context, model, requirement string, s *schema.Schema) error {
	m.schemas[model+"|"+requirement] = s
	return nil
}

func newFakeService() *fakeService {
	return &fakeService{
		responses: map[string]schema.Response{
			prompts.SchemaDesign:  schema.StructuredResponse{Text: clinicSchema},
			prompts.QueryExamples: schema.RawText("-- Query 1\nSELECT 1;"),
			prompts.Optimization:  schema.RawText("- Index appointments.patient_id"),
		},
		errs: map[string]error{},
	}
}

func TestRun(t *testing.T) {
	service := newFakeService()
	var progress bytes.Buffer
	g := New(service, WithProgress(&progress))

	result, err := g.Run(context.Background(), "  Track patients and appointments ", RunOptions{})
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "Track patients and appointments", result.Requirement)
	assert.True(t, result.Schema.ParsedSuccessfully)
	assert.Len(t, result.Schema.Tables, 2)
	assert.Equal(t, []string{"Foreign key in 'appointments.doctor_id' references non-existent table 'doctors'"}, result.Issues)
	assert.Equal(t, "-- Query 1\nSELECT 1;", result.Queries)
	assert.Equal(t, "- Index appointments.patient_id", result.Optimizations)
	assert.False(t, result.Cached)
	assert.Contains(t, progress.String(), "Designing schema")

	require.Len(t, service.calls, 3)
	assert.Equal(t, prompts.SchemaDesign, service.calls[0].Name)
	assert.Contains(t, service.calls[0].User, "Business Requirement: Track patients and appointments")
	assert.Contains(t, service.calls[1].User, `"patients"`)
	assert.NotContains(t, service.calls[1].User, "Here you go")
	assert.Contains(t, service.calls[2].User, `"appointments"`)
}

func TestRunSkipsFollowUps(t *testing.T) {
	service := newFakeService()
	g := New(service)

	result, err := g.Run(context.Background(), "Track patients", RunOptions{SkipQueries: true, SkipOptimizations: true})
	require.NoError(t, err)

	assert.Empty(t, result.Queries)
	assert.Empty(t, result.Optimizations)
	assert.Len(t, service.calls, 1)
}

func TestRunReportsFollowUpErrorsAsText(t *testing.T) {
	service := newFakeService()
	service.errs[prompts.QueryExamples] = errors.New("quota exceeded")
	service.errs[prompts.Optimization] = errors.New("timeout")

	result, err := New(service).Run(context.Background(), "Track patients", RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Error generating queries: quota exceeded", result.Queries)
	assert.Equal(t, "Error generating optimizations: timeout", result.Optimizations)
}

func TestRunFailsWhenSchemaServiceFails(t *testing.T) {
	service := newFakeService()
	service.errs[prompts.SchemaDesign] = errors.New("connection refused")

	_, err := New(service).Run(context.Background(), "Track patients", RunOptions{})

	assert.ErrorContains(t, err, "schema generation failed: connection refused")
}

func TestRunRejectsEmptyRequirement(t *testing.T) {
	service := newFakeService()

	_, err := New(service).Run(context.Background(), "   ", RunOptions{})

	assert.ErrorIs(t, err, ErrEmptyRequirement)
	assert.Empty(t, service.calls)
}

func TestGenerateSchemaFallbackIsNotAnError(t *testing.T) {
	service := newFakeService()
	service.responses[prompts.SchemaDesign] = schema.RawText("Sorry, I can't do that.")

	s, err := New(service).GenerateSchema(context.Background(), "Track patients")
	require.NoError(t, err)

	assert.False(t, s.ParsedSuccessfully)
	assert.Equal(t, "parsing_error", s.Tables[0].Name)
	assert.Equal(t, "Sorry, I can't do that.", s.RawResponse)
}

func TestGenerateSchemaUsesCache(t *testing.T) {
	service := newFakeService()
	cache := &memoryCache{schemas: map[string]*schema.Schema{}}
	g := New(service, WithCache(cache), WithModel("gpt-test"))

	first, err := g.GenerateSchema(context.Background(), "Track patients")
	require.NoError(t, err)
	assert.Contains(t, cache.schemas, "gpt-test|Track patients")

	result, err := g.Run(context.Background(), "Track patients", RunOptions{SkipQueries: true, SkipOptimizations: true})
	require.NoError(t, err)

	assert.True(t, result.Cached)
	assert.Same(t, first, result.Schema)
	assert.Len(t, service.calls, 1)
}

func TestGenerateSchemaDoesNotCacheFallback(t *testing.T) {
	service := newFakeService()
	service.responses[prompts.SchemaDesign] = schema.RawText("nope")
	cache := &memoryCache{schemas: map[string]*schema.Schema{}}

	_, err := New(service, WithCache(cache)).GenerateSchema(context.Background(), "Track patients")
	require.NoError(t, err)

	assert.Empty(t, cache.schemas)
}

func TestGenerateSchemaTruncatedResponseIsNotCached(t *testing.T) {
	service := newFakeService()
	service.responses[prompts.SchemaDesign] = schema.RawText(`{"tables": [{"name": "users", "fields": [` +
		`{"name": "id", "data_type": "SERIAL", "is_primary_key": true}, {"name": "email", "data_ty`)
	cache := &memoryCache{schemas: map[string]*schema.Schema{}}

	s, err := New(service, WithCache(cache)).GenerateSchema(context.Background(), "Track users")
	require.NoError(t, err)

	assert.False(t, s.ParsedSuccessfully)
	assert.Equal(t, schema.FallbackTableName, s.Tables[0].Name)
	assert.Empty(t, cache.schemas)
}
