// Package vars expands {{name}} references in request text.
package vars

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider resolves variable names. Label names the provider in messages.
type Provider interface {
	Resolve(name string) (string, bool)
	Label() string
}

// UndefinedError is returned when a reference names no known variable.
// Name is the first undefined name; Missing lists all of them when known.
type UndefinedError struct {
	Name    string
	Missing []string
}

func (e *UndefinedError) Error() string {
	if len(e.Missing) > 1 {
		return fmt.Sprintf("undefined variables: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("undefined variable: %s", e.Name)
}

// Resolver looks names up in its providers in order.
type Resolver struct {
	providers []Provider
}

// NewResolver creates a resolver. Earlier providers win.
func NewResolver(providers ...Provider) *Resolver {
	return &Resolver{providers: providers}
}

// Resolve returns the value of name from the first provider that has it.
func (r *Resolver) Resolve(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", false
	}
	for _, provider := range r.providers {
		if value, ok := provider.Resolve(trimmed); ok {
			return value, true
		}
	}
	return "", false
}

var templateVarPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Expand replaces every {{name}} in input. Names starting with "$" that no
// provider defines are dynamic values ($uuid, $timestamp, $timestampISO8601).
// Unknown names are left in place and the first one is reported as an
// *UndefinedError.
func (r *Resolver) Expand(input string) (string, error) {
	var firstErr error
	result := templateVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := templateVarPattern.FindStringSubmatch(match)
		name := strings.TrimSpace(sub[1])
		if name == "" {
			return match
		}
		if value, ok := r.Resolve(name); ok {
			return value
		}
		if strings.HasPrefix(name, "$") {
			if value, ok := resolveDynamic(name); ok {
				return value
			}
		}
		if firstErr == nil {
			firstErr = &UndefinedError{Name: name}
		}
		return match
	})
	return result, firstErr
}

// References returns the distinct names referenced by input, in order.
func References(input string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, sub := range templateVarPattern.FindAllStringSubmatch(input, -1) {
		name := strings.TrimSpace(sub[1])
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Check reports every name referenced by inputs that neither a provider nor
// a dynamic value can resolve.
func (r *Resolver) Check(inputs ...string) error {
	var missing []string
	seen := make(map[string]bool)
	for _, input := range inputs {
		for _, name := range References(input) {
			if seen[name] {
				continue
			}
			seen[name] = true
			if _, ok := r.Resolve(name); ok {
				continue
			}
			if _, ok := resolveDynamic(name); ok {
				continue
			}
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &UndefinedError{Name: missing[0], Missing: missing}
}

func resolveDynamic(name string) (string, bool) {
	switch strings.ToLower(name) {
	case "$timestamp":
		return strconv.FormatInt(time.Now().Unix(), 10), true
	case "$timestampiso8601":
		return time.Now().UTC().Format(time.RFC3339), true
	case "$uuid", "$guid":
		return uuid.NewString(), true
	default:
		return "", false
	}
}

// MapProvider serves fixed values.
type MapProvider struct {
	values map[string]string
	label  string
}

// NewMapProvider creates a provider over values.
func NewMapProvider(label string, values map[string]string) *MapProvider {
	return &MapProvider{values: values, label: label}
}

func (p *MapProvider) Resolve(name string) (string, bool) {
	value, ok := p.values[name]
	return value, ok
}

func (p *MapProvider) Label() string {
	return p.label
}

// FuncProvider adapts a lookup function. Lookup errors resolve nothing.
type FuncProvider struct {
	label  string
	lookup func(name string) (string, bool, error)
}

// NewFuncProvider creates a provider calling lookup.
func NewFuncProvider(label string, lookup func(name string) (string, bool, error)) *FuncProvider {
	return &FuncProvider{label: label, lookup: lookup}
}

func (p *FuncProvider) Resolve(name string) (string, bool) {
	value, ok, err := p.lookup(name)
	if err != nil {
		return "", false
	}
	return value, ok
}

func (p *FuncProvider) Label() string {
	return p.label
}
