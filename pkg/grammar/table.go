package grammar

import (
	"fmt"
	"sync"
)

// Methods suggested for --method.
var Methods = []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}

// Default returns the shell's command tree. It is built on first use.
var Default = sync.OnceValue(func() *Tree {
	t, err := NewTree(Commands())
	if err != nil {
		panic(fmt.Sprintf("grammar: invalid command table: %v", err))
	}
	return t
})

// Commands returns the top-level command table.
func Commands() []CommandSpec {
	return []CommandSpec{
		{
			Name:    "print",
			Aliases: []string{"get", "show", "p"},
			Help:    "Print stored objects",
			Children: []CommandSpec{
				{
					Name:    "requests",
					Aliases: []string{"request", "reqs", "req", "r"},
					Help:    "List requests in the current workspace",
					Kind:    PrintRequests,
				},
				{
					Name:    "variables",
					Aliases: []string{"variable", "vars", "var", "v"},
					Help:    "List variables and their values per environment",
					Kind:    PrintVariables,
				},
				{
					Name:    "environments",
					Aliases: []string{"environment", "envs", "env", "e"},
					Help:    "List environments",
					Kind:    PrintEnvironments,
				},
				{
					Name:    "workspaces",
					Aliases: []string{"workspace", "ws", "w"},
					Help:    "List workspaces",
					Kind:    PrintWorkspaces,
				},
			},
		},
		{
			Name:    "create",
			Aliases: []string{"new", "add", "c"},
			Help:    "Create a request or variable",
			Children: []CommandSpec{
				{
					Name:    "request",
					Aliases: []string{"req", "r"},
					Help:    "Save a request under a name",
					Kind:    CreateRequest,
					Args: []ArgSpec{
						{Key: ArgName, Required: true, Help: "request name"},
						{Key: ArgURL, Required: true, Help: "request URL, may contain {{variables}}"},
					},
					Opts: []OptSpec{
						{
							Key: OptMethod, Long: "method", Short: "m",
							RequiresValue: true, Placeholder: "METHOD", Suggest: Methods,
							Help: "HTTP method (default GET)",
						},
						{
							Key: OptHeader, Long: "header", Short: "H",
							RequiresValue: true, Repeatable: true, Placeholder: "'K:V'",
							Help: "request header, may be repeated",
						},
						{
							Key: OptBody, Long: "body", Short: "b",
							RequiresValue: true, Placeholder: "BODY",
							Help: "request body",
						},
					},
				},
				{
					Name:    "variable",
					Aliases: []string{"var", "v"},
					Help:    "Set a variable's value in one or more environments",
					Kind:    CreateVariable,
					Args: []ArgSpec{
						{Key: ArgName, Required: true, Help: "variable name"},
					},
					Rest: &RestSpec{Name: "env=value", Min: 1, Help: "value per environment"},
				},
			},
		},
		{
			Name:    "delete",
			Aliases: []string{"remove", "del", "rm"},
			Help:    "Delete stored objects",
			Children: []CommandSpec{
				{
					Name: "requests",
					Help: "Delete requests by name",
					Kind: DeleteRequests,
					Rest: &RestSpec{Name: "name", Min: 1},
				},
				{
					Name: "variables",
					Help: "Delete variables by name or ID",
					Kind: DeleteVariables,
					Rest: &RestSpec{Name: "name|id", Min: 1},
				},
				{
					Name: "options",
					Help: "Delete request headers by name",
					Kind: DeleteOptions,
					Rest: &RestSpec{Name: "name", Min: 1},
				},
			},
		},
		{
			Name: "set",
			Help: "Select the active environment or workspace",
			Children: []CommandSpec{
				{
					Name:    "environment",
					Aliases: []string{"env"},
					Help:    "Use an environment; no name clears it",
					Kind:    SetEnvironment,
					Args: []ArgSpec{
						{Key: ArgEnvironment, Help: "environment name"},
					},
				},
				{
					Name: "workspace",
					Help: "Switch to a workspace, creating it if needed",
					Kind: SetWorkspace,
					Args: []ArgSpec{
						{Key: ArgWorkspace, Required: true, Help: "workspace name"},
					},
				},
			},
		},
		{
			Name:    "run",
			Aliases: []string{"r"},
			Help:    "Send a request; no name repeats the last one",
			Kind:    Run,
			Args: []ArgSpec{
				{Key: ArgRequest, Help: "request name"},
			},
		},
		{
			Name:    "extract",
			Aliases: []string{"ex"},
			Help:    "Store part of the last response in a variable",
			Kind:    Extract,
			Args: []ArgSpec{
				{Key: ArgSource, Required: true, Choices: []string{"header", "body"}},
				{Key: ArgLookup, Required: true, Help: "header name or JSON path"},
			},
			Opts: []OptSpec{
				{
					Key: OptToVar, Long: "to-var", Short: "t",
					RequiresValue: true, Required: true, Placeholder: "VARIABLE",
					Help: "variable to store the value in",
				},
			},
		},
		{
			Name:    "info",
			Aliases: []string{"i"},
			Help:    "Show the active workspace, environment and store",
			Kind:    Info,
		},
	}
}
