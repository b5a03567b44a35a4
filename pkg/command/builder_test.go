package command

import (
	"errors"
	"testing"

	"github.com/mcastorina/repost/pkg/grammar"
	"github.com/mcastorina/repost/pkg/parser"
	"github.com/mcastorina/repost/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, line string) (Command, error) {
	t.Helper()
	tokens, err := parser.Tokenize(line)
	require.NoError(t, err)
	node, rest, err := grammar.Default().Resolve(tokens)
	require.NoError(t, err)
	return Build(node, rest)
}

func builderFor(t *testing.T, line string) *Builder {
	t.Helper()
	tokens, err := parser.Tokenize(line)
	require.NoError(t, err)
	node, rest, err := grammar.Default().Resolve(tokens)
	require.NoError(t, err)
	b := NewBuilder(node)
	require.NoError(t, b.PushAll(rest))
	return b
}

func TestBuild_Commands(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"print requests", PrintRequests{}},
		{"p v", PrintVariables{}},
		{"get envs", PrintEnvironments{}},
		{"show ws", PrintWorkspaces{}},
		{
			"create req foo http://x",
			CreateRequest{Name: "foo", URL: "http://x"},
		},
		{
			`create req get-user 'http://x/{{id}}' -H 'Accept: application/json' -H X-A:1 -b '{"a": 1}' -m GET`,
			CreateRequest{
				Name: "get-user", URL: "http://x/{{id}}", Method: "GET",
				Headers: []string{"Accept: application/json", "X-A:1"},
				Body:    `{"a": 1}`,
			},
		},
		{
			"create var host dev=localhost prod=example.com",
			CreateVariable{Name: "host", Values: []EnvValue{
				{Environment: "dev", Value: "localhost"},
				{Environment: "prod", Value: "example.com"},
			}},
		},
		{
			"c v token local=a=b",
			CreateVariable{Name: "token", Values: []EnvValue{{Environment: "local", Value: "a=b"}}},
		},
		{"delete requests a b", DeleteRequests{Names: []string{"a", "b"}}},
		{"rm variables x 7d3f", DeleteVariables{Names: []string{"x", "7d3f"}}},
		{"delete options Authorization", DeleteOptions{Names: []string{"Authorization"}}},
		{"set env dev", SetEnvironment{Name: "dev"}},
		{"set environment", SetEnvironment{}},
		{"set workspace api", SetWorkspace{Name: "api"}},
		{"run", Run{}},
		{"r get-user", Run{Request: "get-user"}},
		{"extract body data.id -t id", Extract{Source: "body", Key: "data.id", Variable: "id"}},
		{"ex header --to-var tok X-Token", Extract{Source: "header", Key: "X-Token", Variable: "tok"}},
		{"info", Info{}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, err := parse(t, tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
			assert.Equal(t, tt.want.Kind(), cmd.Kind())
		})
	}
}

func TestBuild_OrderIndependence(t *testing.T) {
	want := CreateRequest{Name: "foo", URL: "bar", Method: "yay"}
	for _, line := range []string{
		"create req foo bar -m yay",
		"create req -m yay foo bar",
		"create req foo -m yay bar",
		"create req foo --method yay bar",
	} {
		t.Run(line, func(t *testing.T) {
			cmd, err := parse(t, line)
			require.NoError(t, err)
			assert.Equal(t, want, cmd)
		})
	}
}

func TestBuild_OptionBreak(t *testing.T) {
	cmd, err := parse(t, "delete requests -- -weird --also")
	require.NoError(t, err)
	assert.Equal(t, DeleteRequests{Names: []string{"-weird", "--also"}}, cmd)

	// Only the first break seals; a second one is a plain value.
	cmd, err = parse(t, "delete requests -- a --")
	require.NoError(t, err)
	assert.Equal(t, DeleteRequests{Names: []string{"a", "--"}}, cmd)

	// Flags after the break are positional.
	_, err = parse(t, "create req foo -- bar -m")
	var bErr *BuilderError
	require.True(t, errors.As(err, &bErr))
	assert.Equal(t, UnexpectedArgument, bErr.Reason)
	assert.Equal(t, "-m", bErr.Token.Text)
}

func TestBuild_PendingOptionTakesDashedValue(t *testing.T) {
	cmd, err := parse(t, "create req foo bar -m -x")
	require.NoError(t, err)
	assert.Equal(t, "-x", cmd.(CreateRequest).Method)

	cmd, err = parse(t, "create req foo bar -b --")
	require.NoError(t, err)
	assert.Equal(t, "--", cmd.(CreateRequest).Body)
}

func TestBuild_QuotedDashIsPositional(t *testing.T) {
	cmd, err := parse(t, "create req '-m' bar")
	require.NoError(t, err)
	assert.Equal(t, CreateRequest{Name: "-m", URL: "bar"}, cmd)
}

func TestBuild_EscapedValues(t *testing.T) {
	cmd, err := parse(t, `create req my\ req http://x`)
	require.NoError(t, err)
	assert.Equal(t, "my req", cmd.(CreateRequest).Name)
}

func TestBuild_BuilderErrors(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		reason BuilderReason
		token  string
		option grammar.OptKey
	}{
		{"missing option value", "create req foo bar -m", MissingOptionValue, "-m", grammar.OptMethod},
		{"missing long option value", "create req foo bar --header", MissingOptionValue, "--header", grammar.OptHeader},
		{"unknown option", "create req foo bar -x", UnknownOption, "-x", ""},
		{"unknown long option", "run --verbose", UnknownOption, "--verbose", ""},
		{"repeated single option", "create req foo bar -m GET -m POST", TooManyValues, "-m", grammar.OptMethod},
		{"repeated by other spelling", "ex body k -t a --to-var b", TooManyValues, "--to-var", grammar.OptToVar},
		{"unexpected argument", "create req foo bar baz", UnexpectedArgument, "baz", ""},
		{"argument to info", "info now", UnexpectedArgument, "now", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.line)
			require.Error(t, err)

			var bErr *BuilderError
			require.True(t, errors.As(err, &bErr))
			assert.Equal(t, tt.reason, bErr.Reason)
			assert.Equal(t, tt.token, bErr.Token.Text)
			assert.Equal(t, tt.option, bErr.Option)
			assert.Equal(t, bErr.Token.Span.Start, bErr.Offset())
			assert.NotEmpty(t, bErr.Error())
		})
	}
}

func TestBuild_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		reason ValidationReason
		field  grammar.FieldKey
		value  string
	}{
		{"missing url", "create req foo", MissingRequiredArg, grammar.ArgField(grammar.ArgURL), ""},
		{"missing name", "create req", MissingRequiredArg, grammar.ArgField(grammar.ArgName), ""},
		{"missing catch-all", "delete requests", MissingRequiredArg, grammar.ArgField(grammar.ArgUnknown), ""},
		{"missing variable values", "create var host", MissingRequiredArg, grammar.ArgField(grammar.ArgUnknown), ""},
		{"missing workspace", "set workspace", MissingRequiredArg, grammar.ArgField(grammar.ArgWorkspace), ""},
		{"missing to-var", "extract body id", MissingRequiredOption, grammar.OptField(grammar.OptToVar), ""},
		{"bad source", "extract status x -t v", InvalidValue, grammar.ArgField(grammar.ArgSource), "status"},
		{"pair without equals", "create var host dev", InvalidValue, grammar.ArgField(grammar.ArgUnknown), "dev"},
		{"pair without env", "create var host =x", InvalidValue, grammar.ArgField(grammar.ArgUnknown), "=x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.line)
			require.Error(t, err)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.reason, vErr.Reason)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, tt.value, vErr.Value)
			assert.NotEmpty(t, vErr.Error())
		})
	}
}

func TestBuilder_Expect(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		slot    Slot
		arg     grammar.ArgKey
		option  grammar.OptKey
		options []grammar.OptKey
	}{
		{
			name:    "first positional",
			line:    "create req",
			slot:    SlotPositional,
			arg:     grammar.ArgName,
			options: []grammar.OptKey{grammar.OptMethod, grammar.OptHeader, grammar.OptBody},
		},
		{
			name:    "second positional after a flag",
			line:    "create req -m GET foo",
			slot:    SlotPositional,
			arg:     grammar.ArgURL,
			options: []grammar.OptKey{grammar.OptHeader, grammar.OptBody},
		},
		{
			name:   "pending value",
			line:   "create req foo -H",
			slot:   SlotOptionValue,
			option: grammar.OptHeader,
		},
		{
			name:    "only flags remain",
			line:    "create req foo bar -H a:b",
			slot:    SlotOptionName,
			options: []grammar.OptKey{grammar.OptMethod, grammar.OptHeader, grammar.OptBody},
		},
		{
			name: "sealed with all positionals",
			line: "create req foo bar --",
			slot: SlotNone,
		},
		{
			name: "nothing left",
			line: "info",
			slot: SlotNone,
		},
		{
			name: "catch-all",
			line: "delete requests a b",
			slot: SlotPositional,
			arg:  grammar.ArgUnknown,
		},
		{
			name:    "required flag after positionals",
			line:    "extract body id",
			slot:    SlotOptionName,
			options: []grammar.OptKey{grammar.OptToVar},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := builderFor(t, tt.line)
			before := b.Snapshot()

			exp := b.Expect()
			assert.Equal(t, tt.slot, exp.Slot)
			if tt.slot == SlotPositional {
				assert.Equal(t, tt.arg, exp.Arg)
			}
			if tt.slot == SlotOptionValue {
				require.NotNil(t, exp.Option)
				assert.Equal(t, tt.option, exp.Option.Key)
			}
			var keys []grammar.OptKey
			for _, o := range exp.Options {
				keys = append(keys, o.Key)
			}
			assert.Equal(t, tt.options, keys)

			// Expect is a pure query.
			assert.Equal(t, before, b.Snapshot())
			assert.Equal(t, exp, b.Expect())
		})
	}
}

func TestBuilder_ExpectField(t *testing.T) {
	b := builderFor(t, "create req foo -m")
	field, ok := b.Expect().Field()
	require.True(t, ok)
	assert.Equal(t, grammar.OptField(grammar.OptMethod), field)

	b = builderFor(t, "info")
	_, ok = b.Expect().Field()
	assert.False(t, ok)
}

func TestBuilder_Snapshot(t *testing.T) {
	b := builderFor(t, "create req get-user http://x -H a:1 -H b:2")
	snap := b.Snapshot()

	assert.Equal(t, grammar.CreateRequest, snap.Kind)
	assert.Equal(t, "get-user", snap.Arg(grammar.ArgName))
	assert.Equal(t, []string{"a:1", "b:2"}, snap.Opt(grammar.OptHeader))
	assert.Empty(t, snap.Opt(grammar.OptMethod))

	// The snapshot is a copy.
	snap.Opts[grammar.OptHeader][0] = "changed"
	snap.Args[grammar.ArgName] = "changed"
	require.NoError(t, b.Push(token.Token{Text: "-H"}))
	require.NoError(t, b.Push(token.Token{Text: "c:3"}))

	cmd, err := b.Finish()
	require.NoError(t, err)
	req := cmd.(CreateRequest)
	assert.Equal(t, "get-user", req.Name)
	assert.Equal(t, []string{"a:1", "b:2", "c:3"}, req.Headers)
}

func TestBuilder_UnknownDashIsLiteral(t *testing.T) {
	tree, err := grammar.NewTree([]grammar.CommandSpec{{
		Name:                 "delete",
		Kind:                 grammar.DeleteRequests,
		Rest:                 &grammar.RestSpec{Name: "name", Min: 1},
		UnknownDashIsLiteral: true,
	}})
	require.NoError(t, err)

	tokens, err := parser.Tokenize("delete -old new")
	require.NoError(t, err)
	node, rest, err := tree.Resolve(tokens)
	require.NoError(t, err)

	cmd, err := Build(node, rest)
	require.NoError(t, err)
	assert.Equal(t, DeleteRequests{Names: []string{"-old", "new"}}, cmd)
}

func TestReasons_String(t *testing.T) {
	assert.Equal(t, "missing option value", MissingOptionValue.String())
	assert.Equal(t, "missing required argument", MissingRequiredArg.String())
	assert.Equal(t, "option value", SlotOptionValue.String())
}
