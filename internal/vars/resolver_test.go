package vars

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	resolver := NewResolver(
		NewMapProvider("dev", map[string]string{"host": "localhost:8080"}),
		NewMapProvider("default", map[string]string{"host": "example.com", "token": "abc123"}),
	)

	tests := []struct {
		name    string
		input   string
		want    string
		missing string
	}{
		{"no references", "http://x/y", "http://x/y", ""},
		{"first provider wins", "http://{{host}}/api", "http://localhost:8080/api", ""},
		{"falls through", "Bearer {{ token }}", "Bearer abc123", ""},
		{"several", "{{host}}?t={{token}}&u={{host}}", "localhost:8080?t=abc123&u=localhost:8080", ""},
		{"undefined kept", "{{host}}/{{missing}}", "localhost:8080/{{missing}}", "missing"},
		{"empty braces kept", "{{ }}", "{{ }}", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Expand(tt.input)
			assert.Equal(t, tt.want, got)
			if tt.missing == "" {
				require.NoError(t, err)
				return
			}
			var undef *UndefinedError
			require.True(t, errors.As(err, &undef))
			assert.Equal(t, tt.missing, undef.Name)
		})
	}
}

func TestExpand_Dynamic(t *testing.T) {
	resolver := NewResolver(NewMapProvider("m", map[string]string{"$uuid": "fixed"}))

	got, err := resolver.Expand("{{$uuid}}")
	require.NoError(t, err)
	assert.Equal(t, "fixed", got, "providers win over dynamic values")

	got, err = NewResolver().Expand("{{$guid}}/{{$timestamp}}")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f-]{36}/[0-9]+$`), got)

	_, err = NewResolver().Expand("{{$nope}}")
	assert.Error(t, err)
}

func TestFuncProvider(t *testing.T) {
	p := NewFuncProvider("store", func(name string) (string, bool, error) {
		switch name {
		case "ok":
			return "v", true, nil
		case "broken":
			return "", false, errors.New("locked")
		}
		return "", false, nil
	})
	assert.Equal(t, "store", p.Label())

	v, ok := p.Resolve("ok")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	_, ok = p.Resolve("broken")
	assert.False(t, ok)
	_, ok = p.Resolve("other")
	assert.False(t, ok)
}

func TestReferences(t *testing.T) {
	assert.Equal(t, []string{"host", "id"}, References("{{host}}/users/{{ id }}?h={{host}}"))
	assert.Empty(t, References("plain"))
}

func TestCheck(t *testing.T) {
	resolver := NewResolver(NewMapProvider("default", map[string]string{"host": "example.com"}))

	tests := []struct {
		name    string
		inputs  []string
		missing []string
		message string
	}{
		{"all defined", []string{"{{host}}/a", "{{$uuid}}"}, nil, ""},
		{"one missing", []string{"{{host}}/{{id}}"}, []string{"id"}, "undefined variable: id"},
		{
			"missing across inputs",
			[]string{"{{host}}/{{id}}", "Authorization: {{token}}", "{{id}}"},
			[]string{"id", "token"},
			"undefined variables: id, token",
		},
		{"unknown dynamic", []string{"{{$nope}}"}, []string{"$nope"}, "undefined variable: $nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := resolver.Check(tt.inputs...)
			if tt.missing == nil {
				assert.NoError(t, err)
				return
			}
			var undef *UndefinedError
			require.True(t, errors.As(err, &undef))
			assert.Equal(t, tt.missing[0], undef.Name)
			assert.Equal(t, tt.missing, undef.Missing)
			assert.EqualError(t, err, tt.message)
		})
	}
}
