package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mcastorina/repost/internal/cli/commands"
	"github.com/mcastorina/repost/pkg/completion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command against a database in dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", filepath.Join(dir, "repost.db"), "--color", "never"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func tempHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestRoot_Subcommands(t *testing.T) {
	cmd := NewRootCmd()
	for _, name := range []string{"version", "exec", "parse", "complete", "config", "completion"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
	for _, flag := range []string{"config", "db", "workspace", "environment", "verbose", "log-level", "timeout"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRoot_ExecPersists(t *testing.T) {
	dir := tempHome(t)

	_, err := run(t, dir, "exec", "create req get-user http://localhost/users -H 'Accept: */*'")
	require.NoError(t, err)

	out, err := run(t, dir, "exec", "print", "requests")
	require.NoError(t, err)
	assert.Contains(t, out, "get-user")
	assert.Contains(t, out, "Accept: */*")

	_, err = run(t, dir, "exec", "create var id default=7")
	require.NoError(t, err)
	out, err = run(t, dir, "--workspace", "other", "exec", "print vars")
	require.NoError(t, err)
	assert.Equal(t, "(0 variables)\n", out, "workspaces are separate")
}

func TestRoot_ExecError(t *testing.T) {
	dir := tempHome(t)

	_, err := run(t, dir, "exec", "create req foo bar -x")
	var lineErr *commands.LineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, 19, lineErr.Offset)
}

func TestRoot_Parse(t *testing.T) {
	dir := tempHome(t)

	out, err := run(t, dir, "parse", "create req get-user http://x -m post")
	require.NoError(t, err)

	var got struct {
		Kind    string         `json:"kind"`
		Command map[string]any `json:"command"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "CreateRequest", got.Kind)
	assert.Equal(t, "get-user", got.Command["name"])
	assert.Equal(t, "post", got.Command["method"])
}

func TestRoot_Complete(t *testing.T) {
	dir := tempHome(t)

	out, err := run(t, dir, "complete", "create r ")
	require.NoError(t, err)
	var res completion.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, completion.NameStems, res.Texts())

	_, err = run(t, dir, "exec", "create req get-user http://x")
	require.NoError(t, err)
	out, err = run(t, dir, "complete", "run g", "--cursor", "5")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"get-user"}, res.Texts())
	assert.Equal(t, 4, res.Start)

	_, err = run(t, dir, "complete", "run", "--cursor", "10")
	assert.Error(t, err)
}

func TestRoot_Config(t *testing.T) {
	dir := tempHome(t)

	out, err := run(t, dir, "--timeout", "3s", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "db_path: "+filepath.Join(dir, "repost.db"))
	assert.Contains(t, out, "timeout: 3s")
	assert.Contains(t, out, "color: never")
}

func TestRoot_InvalidConfig(t *testing.T) {
	dir := tempHome(t)
	_, err := run(t, dir, "--log-level", "loud", "config")
	assert.ErrorContains(t, err, "log_level")
}
