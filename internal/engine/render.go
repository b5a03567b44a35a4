package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// maxCellWidth truncates long URLs and bodies in tables.
const maxCellWidth = 48

func (e *Engine) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(e.out)
	t.SetStyle(table.StyleLight)
	return t
}

func (e *Engine) printRequests(ctx context.Context) error {
	reqs, err := e.store.ListRequests(ctx)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		_, _ = fmt.Fprintln(e.out, "(0 requests)")
		return nil
	}

	t := e.newTable()
	t.AppendHeader(table.Row{"Name", "Method", "URL", "Headers", "Body", "Updated"})
	for _, r := range reqs {
		t.AppendRow(table.Row{
			r.Name,
			r.Method,
			truncate(r.URL),
			strings.Join(r.Headers, "\n"),
			truncate(r.Body),
			humanize.Time(r.UpdatedAt),
		})
	}
	t.Render()
	return nil
}

func (e *Engine) printVariables(ctx context.Context) error {
	vs, err := e.store.ListVariables(ctx)
	if err != nil {
		return err
	}
	if len(vs) == 0 {
		_, _ = fmt.Fprintln(e.out, "(0 variables)")
		return nil
	}

	t := e.newTable()
	t.AppendHeader(table.Row{"ID", "Name", "Environment", "Value"})
	for _, v := range vs {
		t.AppendRow(table.Row{v.ID, v.Name, v.Environment, truncate(v.Value)})
	}
	t.Render()
	return nil
}

func (e *Engine) printEnvironments(ctx context.Context) error {
	envs, err := e.store.ListEnvironments(ctx)
	if err != nil {
		return err
	}
	active, err := e.store.ActiveEnvironment(ctx)
	if err != nil {
		return err
	}
	return e.printActiveList("Environment", envs, active)
}

func (e *Engine) printWorkspaces(ctx context.Context) error {
	wss, err := e.store.ListWorkspaces(ctx)
	if err != nil {
		return err
	}
	active, err := e.store.ActiveWorkspace(ctx)
	if err != nil {
		return err
	}
	return e.printActiveList("Workspace", wss, active)
}

func (e *Engine) printActiveList(title string, names []string, active string) error {
	if len(names) == 0 {
		_, _ = fmt.Fprintf(e.out, "(0 %ss)\n", strings.ToLower(title))
		return nil
	}
	t := e.newTable()
	t.AppendHeader(table.Row{"", title})
	for _, name := range names {
		marker := ""
		if name == active {
			marker = "*"
		}
		t.AppendRow(table.Row{marker, name})
	}
	t.Render()
	return nil
}

func (e *Engine) info(ctx context.Context) error {
	ws, err := e.store.ActiveWorkspace(ctx)
	if err != nil {
		return err
	}
	env, err := e.store.ActiveEnvironment(ctx)
	if err != nil {
		return err
	}
	counts, err := e.store.Counts(ctx)
	if err != nil {
		return err
	}
	lastReq, err := e.store.LastRequest(ctx)
	if err != nil {
		return err
	}
	if env == "" {
		env = "(none)"
	}
	if lastReq == "" {
		lastReq = "(none)"
	}

	t := e.newTable()
	t.AppendRows([]table.Row{
		{"Workspace", ws},
		{"Environment", env},
		{"Store", e.store.Path()},
		{"Requests", humanize.Comma(int64(counts.Requests))},
		{"Variables", humanize.Comma(int64(counts.Variables))},
		{"Environments", humanize.Comma(int64(counts.Environments))},
		{"Workspaces", humanize.Comma(int64(counts.Workspaces))},
		{"Last request", lastReq},
	})
	if e.last != nil {
		t.AppendRow(table.Row{"Last response", fmt.Sprintf("%s (%s)", e.last.Status, humanize.Bytes(uint64(len(e.last.Body))))})
	}
	t.Render()
	return nil
}

// formatBody pretty-prints JSON bodies and colours them when enabled. Other
// bodies are returned unchanged.
func (e *Engine) formatBody(body []byte) []byte {
	if !isJSON(body) {
		return body
	}
	out := pretty.Pretty(body)
	if e.color {
		out = pretty.Color(out, pretty.TerminalStyle)
	}
	return out
}

func isJSON(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return false
	}
	return gjson.Valid(trimmed)
}

func (e *Engine) styleStatus(code int, text string) string {
	if !e.color {
		return text
	}
	color := termenv.ANSIGreen
	switch {
	case code >= 500:
		color = termenv.ANSIRed
	case code >= 400:
		color = termenv.ANSIYellow
	case code >= 300:
		color = termenv.ANSICyan
	}
	return termenv.String(text).Foreground(color).Bold().String()
}

func truncate(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= maxCellWidth {
		return s
	}
	return string(r[:maxCellWidth-3]) + "..."
}
