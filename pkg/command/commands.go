// Package command turns the tokens following a resolved command path into a
// typed, validated Command.
//
// A Builder accepts tokens one at a time with Push and reports what it expects
// next with Expect, which never changes its state. Dispatch pushes a whole
// line and calls Finish; completion pushes the complete tokens of a prefix
// and asks Expect.
package command

import "github.com/mcastorina/repost/pkg/grammar"

// Command is a finalized command. The concrete types below are the only
// implementations.
type Command interface {
	Kind() grammar.CommandKind
}

// PrintRequests lists requests.
type PrintRequests struct{}

// PrintVariables lists variables.
type PrintVariables struct{}

// PrintEnvironments lists environments.
type PrintEnvironments struct{}

// PrintWorkspaces lists workspaces.
type PrintWorkspaces struct{}

// CreateRequest saves a request.
type CreateRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	// Method is empty when not given.
	Method  string   `json:"method,omitempty"`
	Headers []string `json:"headers,omitempty"`
	Body    string   `json:"body,omitempty"`
}

// EnvValue is a variable's value in one environment.
type EnvValue struct {
	Environment string `json:"environment"`
	Value       string `json:"value"`
}

// CreateVariable sets a variable in one or more environments.
type CreateVariable struct {
	Name   string     `json:"name"`
	Values []EnvValue `json:"values"`
}

// DeleteRequests deletes requests by name.
type DeleteRequests struct {
	Names []string `json:"names"`
}

// DeleteVariables deletes variables by name or ID.
type DeleteVariables struct {
	Names []string `json:"names"`
}

// DeleteOptions deletes request headers by header name.
type DeleteOptions struct {
	Names []string `json:"names"`
}

// SetEnvironment selects the active environment. An empty name clears it.
type SetEnvironment struct {
	Name string `json:"name"`
}

// SetWorkspace selects the active workspace.
type SetWorkspace struct {
	Name string `json:"name"`
}

// Run sends a request. An empty name repeats the last request.
type Run struct {
	Request string `json:"request,omitempty"`
}

// Extract stores part of the last response in a variable.
type Extract struct {
	Source   string `json:"source"` // "header" or "body"
	Key      string `json:"key"`
	Variable string `json:"variable"`
}

// Info shows the session state.
type Info struct{}

func (PrintRequests) Kind() grammar.CommandKind     { return grammar.PrintRequests }
func (PrintVariables) Kind() grammar.CommandKind    { return grammar.PrintVariables }
func (PrintEnvironments) Kind() grammar.CommandKind { return grammar.PrintEnvironments }
func (PrintWorkspaces) Kind() grammar.CommandKind   { return grammar.PrintWorkspaces }
func (CreateRequest) Kind() grammar.CommandKind     { return grammar.CreateRequest }
func (CreateVariable) Kind() grammar.CommandKind    { return grammar.CreateVariable }
func (DeleteRequests) Kind() grammar.CommandKind    { return grammar.DeleteRequests }
func (DeleteVariables) Kind() grammar.CommandKind   { return grammar.DeleteVariables }
func (DeleteOptions) Kind() grammar.CommandKind     { return grammar.DeleteOptions }
func (SetEnvironment) Kind() grammar.CommandKind    { return grammar.SetEnvironment }
func (SetWorkspace) Kind() grammar.CommandKind      { return grammar.SetWorkspace }
func (Run) Kind() grammar.CommandKind               { return grammar.Run }
func (Extract) Kind() grammar.CommandKind           { return grammar.Extract }
func (Info) Kind() grammar.CommandKind              { return grammar.Info }
