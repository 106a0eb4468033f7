package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	t.Run("empty tables", func(t *testing.T) {
		assert.Equal(t, []string{"No tables found in schema"}, Validate(&Schema{Tables: []Table{}}))
		assert.Equal(t, []string{"No tables found in schema"}, Validate(&Schema{}))
		assert.Equal(t, []string{"No tables found in schema"}, Validate(nil))
	})

	t.Run("missing primary key", func(t *testing.T) {
		s := ParseText(`{"tables": [{"name": "orders", "fields": [{"name": "id", "is_primary_key": false}]}]}`)
		assert.Equal(t, []string{"Table 'orders' has no primary key"}, Validate(s))
	})

	t.Run("table without fields has no primary key", func(t *testing.T) {
		s := &Schema{Tables: []Table{{Name: "empty"}}}
		assert.Equal(t, []string{"Table 'empty' has no primary key"}, Validate(s))
	})

	t.Run("dangling foreign key", func(t *testing.T) {
		s := &Schema{Tables: []Table{{
			Name: "orders",
			Fields: []Field{
				{Name: "id", IsPrimaryKey: true},
				{Name: "customer_id", IsForeignKey: true, References: "customers.id"},
			},
		}}}
		assert.Equal(t, []string{"Foreign key in 'orders.customer_id' references non-existent table 'customers'"}, Validate(s))
	})

	t.Run("clean schema", func(t *testing.T) {
		s := &Schema{Tables: []Table{
			{Name: "customers", Fields: []Field{{Name: "id", IsPrimaryKey: true}}},
			{Name: "orders", Fields: []Field{
				{Name: "id", IsPrimaryKey: true},
				{Name: "customer_id", IsForeignKey: true, References: "customers.id"},
			}},
		}}
		assert.Empty(t, Validate(s))
		assert.NotNil(t, Validate(s))
	})

	t.Run("references without a dot are not checked", func(t *testing.T) {
		s := &Schema{Tables: []Table{{
			Name: "orders",
			Fields: []Field{
				{Name: "id", IsPrimaryKey: true},
				{Name: "customer_id", IsForeignKey: true, References: "customers"},
				{Name: "other_id", IsForeignKey: true},
			},
		}}}
		assert.Empty(t, Validate(s))
	})

	t.Run("references on non foreign keys are ignored", func(t *testing.T) {
		s := &Schema{Tables: []Table{{
			Name: "orders",
			Fields: []Field{
				{Name: "id", IsPrimaryKey: true, References: "ghosts.id"},
			},
		}}}
		assert.Empty(t, Validate(s))
	})

	t.Run("split on first dot", func(t *testing.T) {
		s := &Schema{Tables: []Table{{
			Name: "orders",
			Fields: []Field{
				{Name: "id", IsPrimaryKey: true},
				{Name: "ref", IsForeignKey: true, References: "public.customers.id"},
			},
		}}}
		assert.Equal(t, []string{"Foreign key in 'orders.ref' references non-existent table 'public'"}, Validate(s))
	})

	t.Run("issues keep table and field order", func(t *testing.T) {
		s := &Schema{Tables: []Table{
			{Name: "a", Fields: []Field{
				{Name: "x_id", IsForeignKey: true, References: "x.id"},
				{Name: "y_id", IsForeignKey: true, References: "y.id"},
			}},
			{Name: "b", Fields: []Field{{Name: "id", IsPrimaryKey: true}}},
			{Name: "c"},
		}}
		assert.Equal(t, []string{
			"Table 'a' has no primary key",
			"Foreign key in 'a.x_id' references non-existent table 'x'",
			"Foreign key in 'a.y_id' references non-existent table 'y'",
			"Table 'c' has no primary key",
		}, Validate(s))
	})

	t.Run("fallback schema", func(t *testing.T) {
		assert.Equal(t, []string{"Table 'parsing_error' has no primary key"}, Validate(Fallback("")))
	})
}

func TestValidateDoesNotModifySchema(t *testing.T) {
	s := &Schema{Tables: []Table{{Name: "orders", Fields: []Field{{Name: "customer_id", IsForeignKey: true, References: "customers.id"}}}}}
	before := *s
	before.Tables = append([]Table(nil), s.Tables...)

	first := Validate(s)
	second := Validate(s)

	assert.Equal(t, first, second)
	assert.Equal(t, before, *s)
}
