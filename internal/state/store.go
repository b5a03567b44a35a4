// Package state persists requests, variables, environments and workspaces in
// SQLite. Everything except workspaces themselves is scoped to the active
// workspace.
package state

import (
	"errors"
	"strings"
	"time"
)

// DefaultWorkspace exists in every store and is active until another is set.
const DefaultWorkspace = "default"

// DefaultEnvironment holds variable values that apply in every environment.
const DefaultEnvironment = "default"

// ErrNotFound is wrapped by lookups that match nothing.
var ErrNotFound = errors.New("not found")

// Request is a stored HTTP request.
type Request struct {
	ID        string
	Workspace string
	Name      string
	Method    string
	URL       string
	// Headers are "Name: value" lines in the order they were given.
	Headers   []string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Variable is one value of a variable in one environment.
type Variable struct {
	ID          string
	Workspace   string
	Name        string
	Environment string
	Value       string
	UpdatedAt   time.Time
}

// Counts summarizes the active workspace.
type Counts struct {
	Requests     int
	Variables    int
	Environments int
	Workspaces   int
}

// HeaderName returns the name part of a "Name: value" header line.
func HeaderName(header string) string {
	name, _, _ := strings.Cut(header, ":")
	return strings.TrimSpace(name)
}

// NameSuffix returns the part of a request name after the first "-", so
// "get-user" and "delete-user" share the suffix "user". Names without a dash
// are their own suffix.
func NameSuffix(name string) string {
	if _, suffix, ok := strings.Cut(name, "-"); ok {
		return suffix
	}
	return name
}
