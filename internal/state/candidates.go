package state

import (
	"context"
	"log/slog"
	"slices"

	"github.com/mcastorina/repost/pkg/command"
	"github.com/mcastorina/repost/pkg/completion"
	"github.com/mcastorina/repost/pkg/grammar"
)

var _ completion.Provider = (*SQLiteStore)(nil)

// Candidates supplies completion values from the store. Each lookup is
// bounded by the completion timeout.
func (s *SQLiteStore) Candidates(kind grammar.CommandKind, field grammar.FieldKey, snap command.Snapshot) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.completionTimeout)
	defer cancel()

	values, err := s.candidates(ctx, kind, field, snap)
	if err != nil {
		s.logger.Debug("completion lookup failed",
			slog.String("command", kind.String()),
			slog.String("field", field.String()),
			slog.String("error", err.Error()))
		return nil, err
	}
	return values, nil
}

func (s *SQLiteStore) candidates(ctx context.Context, kind grammar.CommandKind, field grammar.FieldKey, snap command.Snapshot) ([]string, error) {
	switch {
	case kind == grammar.Run && field == grammar.ArgField(grammar.ArgRequest),
		kind == grammar.CreateRequest && field == grammar.ArgField(grammar.ArgName):
		return s.RequestNames(ctx)

	case kind == grammar.DeleteRequests && field == grammar.ArgField(grammar.ArgUnknown):
		names, err := s.RequestNames(ctx)
		return without(names, snap.Rest), err

	case kind == grammar.CreateRequest && field == grammar.OptField(grammar.OptHeader):
		headers, err := s.HeadersForSuffix(ctx, NameSuffix(snap.Arg(grammar.ArgName)))
		return without(headers, snap.Opt(grammar.OptHeader)), err

	case kind == grammar.DeleteVariables && field == grammar.ArgField(grammar.ArgUnknown):
		names, err := s.VariableNames(ctx)
		if err != nil {
			return nil, err
		}
		ids, err := s.VariableIDs(ctx)
		if err != nil {
			return nil, err
		}
		return without(append(names, ids...), snap.Rest), nil

	case kind == grammar.CreateVariable && field == grammar.ArgField(grammar.ArgName),
		kind == grammar.Extract && field == grammar.OptField(grammar.OptToVar):
		return s.VariableNames(ctx)

	case kind == grammar.CreateVariable && field == grammar.ArgField(grammar.ArgUnknown):
		envs, err := s.ListEnvironments(ctx)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(envs, DefaultEnvironment) {
			envs = append(envs, DefaultEnvironment)
		}
		stems := make([]string, 0, len(envs))
		for _, env := range envs {
			stems = append(stems, env+"=")
		}
		return stems, nil

	case kind == grammar.SetEnvironment && field == grammar.ArgField(grammar.ArgEnvironment):
		return s.ListEnvironments(ctx)

	case kind == grammar.SetWorkspace && field == grammar.ArgField(grammar.ArgWorkspace):
		return s.ListWorkspaces(ctx)

	case kind == grammar.DeleteOptions && field == grammar.ArgField(grammar.ArgUnknown):
		names, err := s.OptionNames(ctx)
		return without(names, snap.Rest), err
	}
	return nil, nil
}

// without returns values minus those already given.
func without(values, given []string) []string {
	if len(given) == 0 {
		return values
	}
	out := values[:0:0]
	for _, v := range values {
		if !slices.Contains(given, v) {
			out = append(out, v)
		}
	}
	return out
}
