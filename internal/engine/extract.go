package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcastorina/repost/pkg/command"
	"github.com/tidwall/gjson"
)

// ErrNoResponse is returned by extract before any request was sent.
var ErrNoResponse = errors.New("no response to extract from, run a request first")

// ExtractError reports a key missing from the last response.
type ExtractError struct {
	Source string
	Key    string
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s %q not found in the last response", e.Source, e.Key)
}

// Lookup reads a header (case-insensitive) or a gjson path of a JSON body.
func (r *Response) Lookup(source, key string) (string, error) {
	switch source {
	case "header":
		values := r.Header.Values(key)
		if len(values) == 0 {
			return "", &ExtractError{Source: source, Key: key}
		}
		return values[0], nil
	case "body":
		if !gjson.ValidBytes(r.Body) {
			return "", fmt.Errorf("body of %s is not JSON", r.Request)
		}
		result := gjson.GetBytes(r.Body, key)
		if !result.Exists() {
			return "", &ExtractError{Source: source, Key: key}
		}
		return result.String(), nil
	default:
		return "", fmt.Errorf("unknown extract source %q", source)
	}
}

func (e *Engine) extract(ctx context.Context, c command.Extract) error {
	if e.last == nil {
		return ErrNoResponse
	}
	value, err := e.last.Lookup(c.Source, c.Key)
	if err != nil {
		return err
	}

	envs, err := e.environments(ctx)
	if err != nil {
		return err
	}
	env := envs[0]
	if err := e.store.SetVariable(ctx, c.Variable, env, value); err != nil {
		return fmt.Errorf("failed to store %s: %w", c.Variable, err)
	}

	e.logger.Debug("extracted value", "source", c.Source, "key", c.Key, "variable", c.Variable, "environment", env)
	_, _ = fmt.Fprintf(e.out, "%s = %s (%s)\n", c.Variable, truncate(value), env)
	return nil
}
