package grammar

import (
	"errors"
	"testing"

	"github.com/mcastorina/repost/pkg/parser"
	"github.com/mcastorina/repost/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, line string) []token.Token {
	t.Helper()
	tokens, err := parser.Tokenize(line)
	require.NoError(t, err)
	return tokens
}

func TestDefault_IsValid(t *testing.T) {
	tree := Default()
	require.NotNil(t, tree)
	assert.NoError(t, tree.Validate())
	assert.Same(t, tree, Default(), "tree is built once")
}

func TestResolve_AliasEquivalence(t *testing.T) {
	tests := []struct {
		kind  CommandKind
		lines []string
	}{
		{PrintRequests, []string{"print requests", "get reqs", "show req", "p r", "print request"}},
		{PrintVariables, []string{"print variables", "get vars", "p v", "show variable"}},
		{PrintEnvironments, []string{"print environments", "p envs", "get e"}},
		{PrintWorkspaces, []string{"print workspaces", "p ws", "show w"}},
		{CreateRequest, []string{"create request", "new req", "add r", "c r"}},
		{CreateVariable, []string{"create variable", "c var", "new v"}},
		{DeleteRequests, []string{"delete requests", "rm requests", "del requests", "remove requests"}},
		{DeleteVariables, []string{"delete variables", "rm variables"}},
		{DeleteOptions, []string{"delete options"}},
		{SetEnvironment, []string{"set environment", "set env"}},
		{SetWorkspace, []string{"set workspace"}},
		{Run, []string{"run", "r"}},
		{Extract, []string{"extract", "ex"}},
		{Info, []string{"info", "i"}},
	}

	tree := Default()
	for _, tt := range tests {
		for _, line := range tt.lines {
			t.Run(line, func(t *testing.T) {
				node, rest, err := tree.Resolve(tokenize(t, line))
				require.NoError(t, err)
				assert.Equal(t, tt.kind, node.Spec.Kind)
				assert.Empty(t, rest)
			})
		}
	}
}

func TestResolve_RemainingTokens(t *testing.T) {
	node, rest, err := Default().Resolve(tokenize(t, "create req foo http://x -m POST"))
	require.NoError(t, err)
	assert.Equal(t, CreateRequest, node.Spec.Kind)
	assert.Equal(t, "create request", node.Path())

	require.Len(t, rest, 4)
	assert.Equal(t, "foo", rest[0].Text)
	assert.Equal(t, "POST", rest[3].Text)
}

func TestResolve_LeafStopsDescent(t *testing.T) {
	// "r" is both the run alias and a subcommand alias elsewhere; under run
	// it is an argument.
	node, rest, err := Default().Resolve(tokenize(t, "run r"))
	require.NoError(t, err)
	assert.Equal(t, Run, node.Spec.Kind)
	require.Len(t, rest, 1)
	assert.Equal(t, "r", rest[0].Text)
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		reason  ResolutionReason
		token   string
		command string
		valid   []string
	}{
		{
			name:   "unknown command",
			line:   "frobnicate x",
			reason: UnknownCommand,
			token:  "frobnicate",
		},
		{
			name:    "unknown subcommand",
			line:    "print foo",
			reason:  UnknownSubcommand,
			token:   "foo",
			command: "print",
			valid: []string{
				"requests", "request", "reqs", "req", "r",
				"variables", "variable", "vars", "var", "v",
				"environments", "environment", "envs", "env", "e",
				"workspaces", "workspace", "ws", "w",
			},
		},
		{
			name:    "missing subcommand",
			line:    "delete",
			reason:  UnknownSubcommand,
			command: "delete",
			valid:   []string{"requests", "variables", "options"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Default().Resolve(tokenize(t, tt.line))
			require.Error(t, err)

			var resErr *ResolutionError
			require.True(t, errors.As(err, &resErr))
			assert.Equal(t, tt.reason, resErr.Reason)
			if tt.token == "" {
				assert.Nil(t, resErr.Token)
				assert.Equal(t, -1, resErr.Offset())
			} else {
				require.NotNil(t, resErr.Token)
				assert.Equal(t, tt.token, resErr.Token.Text)
			}
			assert.Equal(t, tt.command, resErr.Command)
			if tt.valid != nil {
				assert.Equal(t, tt.valid, resErr.Valid)
			}
			assert.NotEmpty(t, err.Error())
		})
	}
}

func TestWalk_NeverFails(t *testing.T) {
	tree := Default()

	node, n := tree.Walk(nil)
	assert.True(t, node.IsRoot())
	assert.Equal(t, 0, n)

	node, n = tree.Walk(tokenize(t, "create"))
	assert.Equal(t, "create", node.Path())
	assert.Equal(t, 1, n)

	node, n = tree.Walk(tokenize(t, "create bogus more"))
	assert.Equal(t, "create", node.Path())
	assert.Equal(t, 1, n)

	node, n = tree.Walk(tokenize(t, "c v name dev=1"))
	assert.Equal(t, CreateVariable, node.Spec.Kind)
	assert.Equal(t, 2, n)
}

func TestNewTree_Validation(t *testing.T) {
	tests := []struct {
		name     string
		commands []CommandSpec
		wantErr  string
	}{
		{
			name:     "empty",
			commands: nil,
			wantErr:  "empty",
		},
		{
			name: "alias clash",
			commands: []CommandSpec{
				{Name: "run", Aliases: []string{"r"}, Kind: Run},
				{Name: "remove", Aliases: []string{"r"}, Kind: Info},
			},
			wantErr: "spelled by both",
		},
		{
			name: "leaf without kind",
			commands: []CommandSpec{
				{Name: "run"},
			},
			wantErr: "no kind",
		},
		{
			name: "duplicate kind",
			commands: []CommandSpec{
				{Name: "run", Kind: Run},
				{Name: "go", Kind: Run},
			},
			wantErr: "share kind",
		},
		{
			name: "required after optional",
			commands: []CommandSpec{
				{Name: "x", Kind: Run, Args: []ArgSpec{{Key: ArgName}, {Key: ArgURL, Required: true}}},
			},
			wantErr: "follows an optional",
		},
		{
			name: "flag clash",
			commands: []CommandSpec{
				{Name: "x", Kind: Run, Opts: []OptSpec{
					{Key: OptMethod, Long: "method", Short: "m", RequiresValue: true},
					{Key: OptBody, Long: "mode", Short: "m", RequiresValue: true},
				}},
			},
			wantErr: "spelled by both",
		},
		{
			name: "inner command with args",
			commands: []CommandSpec{
				{Name: "x", Args: []ArgSpec{{Key: ArgName}}, Children: []CommandSpec{{Name: "y", Kind: Run}}},
			},
			wantErr: "cannot take arguments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTree(tt.commands)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTree_LeavesAndLookup(t *testing.T) {
	tree := Default()
	leaves := tree.Leaves()
	require.Len(t, leaves, 14)

	for _, leaf := range leaves {
		found, ok := tree.Leaf(leaf.Spec.Kind)
		require.True(t, ok)
		assert.Same(t, leaf, found)
	}
}

func TestUsage(t *testing.T) {
	tree := Default()

	node, ok := tree.Leaf(CreateRequest)
	require.True(t, ok)
	assert.Equal(t,
		"<name> <url> [-m|--method METHOD] [-H|--header 'K:V']... [-b|--body BODY]",
		node.Spec.Usage())

	node, ok = tree.Leaf(Extract)
	require.True(t, ok)
	assert.Equal(t, "{header|body} <key> -t|--to-var VARIABLE", node.Spec.Usage())

	node, ok = tree.Leaf(SetEnvironment)
	require.True(t, ok)
	assert.Equal(t, "[environment]", node.Spec.Usage())

	node, ok = tree.Leaf(DeleteVariables)
	require.True(t, ok)
	assert.Equal(t, "<name|id>...", node.Spec.Usage())
}

func TestOptSpec_Matches(t *testing.T) {
	spec := CommandSpec{Opts: []OptSpec{{Key: OptMethod, Long: "method", Short: "m"}}}

	for _, word := range []string{"--method", "-m"} {
		opt, ok := spec.Option(word)
		require.True(t, ok, word)
		assert.Equal(t, OptMethod, opt.Key)
	}
	for _, word := range []string{"-method", "--m", "method", "-x"} {
		_, ok := spec.Option(word)
		assert.False(t, ok, word)
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "PrintRequests", PrintRequests.String())
	assert.Equal(t, "CommandKind(99)", CommandKind(99).String())
	assert.Equal(t, "url", ArgField(ArgURL).String())
	assert.Equal(t, "--to-var", OptField(OptToVar).String())
	assert.True(t, OptField(OptHeader).IsOption())
	assert.False(t, ArgField(ArgName).IsOption())
}
