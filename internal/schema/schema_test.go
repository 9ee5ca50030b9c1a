package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *Schema {
	return New("test",
		Named("login", CharField(Policy{Required: true, Nullable: true})),
		Named("email", EmailField(Policy{Nullable: true})),
		Named("ids", ClientIDsField(Policy{Required: true})),
	)
}

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name   string
		raw    map[string]any
		errors []string
	}{
		{
			name: "valid",
			raw:  map[string]any{"login": "h&f", "ids": []any{json.Number("1")}},
		},
		{
			name: "nullable login",
			raw:  map[string]any{"login": "", "email": "", "ids": []any{json.Number("1")}},
		},
		{
			name:   "empty request",
			raw:    map[string]any{},
			errors: []string{"login:null invalid", "ids:null invalid"},
		},
		{
			name:   "nil request",
			raw:    nil,
			errors: []string{"login:null invalid", "ids:null invalid"},
		},
		{
			name:   "explicit null is absent",
			raw:    map[string]any{"login": nil, "ids": []any{json.Number("1")}},
			errors: []string{"login:null invalid"},
		},
		{
			name:   "errors in declaration order",
			raw:    map[string]any{"ids": []any{}, "email": "no-at", "login": "x"},
			errors: []string{"email:no-at invalid", "ids:[] invalid"},
		},
	}

	s := testSchema()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res := s.Validate(test.raw)
			assert.Equal(t, test.errors, res.Errors)
			assert.Equal(t, len(test.errors) == 0, res.Valid())
		})
	}
}

func TestSchemaCleanValues(t *testing.T) {
	res := testSchema().Validate(map[string]any{
		"login": "h&f",
		"ids":   []any{json.Number("3"), json.Number("4")},
	})
	require.True(t, res.Valid())

	assert.Equal(t, "h&f", res.String("login"))
	assert.Equal(t, []int{3, 4}, res.Ints("ids"))
	assert.Equal(t, "", res.String("email"))
	assert.False(t, res.Present("email"))
	assert.True(t, res.Present("ids"))
}

func TestSchemaRules(t *testing.T) {
	calls := 0
	s := testSchema().WithRules(func(s *Schema, r *Result) string {
		calls++
		if !r.Present("email") {
			return "email is required here"
		}
		return ""
	})

	res := s.Validate(map[string]any{})
	assert.False(t, res.Valid())
	assert.Equal(t, 0, calls, "rules must not run after field errors")

	res = s.Validate(map[string]any{"login": "x", "ids": []any{json.Number("1")}})
	assert.Equal(t, []string{"email is required here"}, res.Errors)
	assert.Equal(t, 1, calls)

	res = s.Validate(map[string]any{"login": "x", "email": "a@b", "ids": []any{json.Number("1")}})
	assert.True(t, res.Valid())
}

func TestSchemaConcurrentUse(t *testing.T) {
	s := testSchema()
	done := make(chan []int)
	for i := 0; i < 8; i++ {
		go func(i int) {
			res := s.Validate(map[string]any{"login": "x", "ids": []any{i}})
			done <- res.Ints("ids")
		}(i)
	}
	seen := make(map[int]bool)
	for i := 0; i < 8; i++ {
		ids := <-done
		require.Len(t, ids, 1)
		seen[ids[0]] = true
	}
	assert.Len(t, seen, 8)
}

func BenchmarkSchemaValidate(b *testing.B) {
	s := testSchema()
	raw := map[string]any{
		"login": "h&f",
		"email": "a@b.c",
		"ids":   []any{json.Number("1"), json.Number("2"), json.Number("3")},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res := s.Validate(raw); !res.Valid() {
			b.Fatal(res.Errors)
		}
	}
}
