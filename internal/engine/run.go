package engine

// run.go - sending stored requests

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mcastorina/repost/internal/state"
	"github.com/mcastorina/repost/internal/vars"
	"github.com/mcastorina/repost/pkg/command"
)

// ErrNoLastRequest is returned by a bare run before any request was sent.
var ErrNoLastRequest = errors.New("no request has been run yet")

// Response is a received HTTP response with its body read.
type Response struct {
	Request    string
	Method     string
	URL        string
	Status     string
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// Prepared is a stored request with every variable substituted.
type Prepared struct {
	Name    string
	Method  string
	URL     string
	Headers http.Header
	Body    string
}

func (e *Engine) run(ctx context.Context, c command.Run) error {
	name := c.Request
	if name == "" {
		last, err := e.store.LastRequest(ctx)
		if err != nil {
			return err
		}
		if last == "" {
			return ErrNoLastRequest
		}
		name = last
	}

	req, err := e.store.GetRequest(ctx, name)
	if err != nil {
		return err
	}

	prepared, err := e.Prepare(ctx, req)
	if err != nil {
		return err
	}

	resp, err := e.send(ctx, prepared)
	if err != nil {
		return err
	}

	if err := e.store.SetLastRequest(ctx, name); err != nil {
		return err
	}
	e.last = resp

	e.printResponse(resp)
	return nil
}

// Prepare substitutes variables of the active environment, falling back to
// the default environment, into the request's URL, headers and body.
func (e *Engine) Prepare(ctx context.Context, req *state.Request) (*Prepared, error) {
	envs, err := e.environments(ctx)
	if err != nil {
		return nil, err
	}
	providers := make([]vars.Provider, 0, len(envs))
	for _, env := range envs {
		providers = append(providers, vars.NewFuncProvider(env, func(name string) (string, bool, error) {
			return e.store.LookupVariable(ctx, name, env)
		}))
	}
	resolver := vars.NewResolver(providers...)

	inputs := append([]string{req.URL, req.Body}, req.Headers...)
	if err := resolver.Check(inputs...); err != nil {
		return nil, fmt.Errorf("request %s: %w", req.Name, err)
	}

	expand := func(what, input string) (string, error) {
		out, err := resolver.Expand(input)
		if err != nil {
			return "", fmt.Errorf("request %s %s: %w", req.Name, what, err)
		}
		return out, nil
	}

	p := &Prepared{Name: req.Name, Method: req.Method, Headers: make(http.Header)}
	if p.Method == "" {
		p.Method = http.MethodGet
	}
	if p.URL, err = expand("url", req.URL); err != nil {
		return nil, err
	}
	if p.Body, err = expand("body", req.Body); err != nil {
		return nil, err
	}
	for _, h := range req.Headers {
		line, err := expand("header", h)
		if err != nil {
			return nil, err
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("request %s: malformed header %q, expected Name:value", req.Name, h)
		}
		p.Headers.Add(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	return p, nil
}

func (e *Engine) send(ctx context.Context, p *Prepared) (*Response, error) {
	var body io.Reader
	if p.Body != "" {
		body = strings.NewReader(p.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, p.Method, p.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request %s: %w", p.Name, err)
	}
	httpReq.Header = p.Headers.Clone()

	e.logger.Debug("sending request", "name", p.Name, "method", p.Method, "url", p.URL)

	start := time.Now()
	httpResp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request %s failed: %w", p.Name, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response of %s: %w", p.Name, err)
	}
	elapsed := time.Since(start)

	e.logger.Debug("received response",
		"name", p.Name,
		"status", httpResp.StatusCode,
		"bytes", len(data),
		"duration", elapsed)

	return &Response{
		Request:    p.Name,
		Method:     p.Method,
		URL:        p.URL,
		Status:     httpResp.Status,
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
		Duration:   elapsed,
	}, nil
}

func (e *Engine) printResponse(resp *Response) {
	summary := fmt.Sprintf("%s  %s  %s",
		resp.Status,
		resp.Duration.Round(time.Millisecond),
		humanize.Bytes(uint64(len(resp.Body))))
	_, _ = fmt.Fprintln(e.out, e.styleStatus(resp.StatusCode, summary))

	names := make([]string, 0, len(resp.Header))
	for name := range resp.Header {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		for _, value := range resp.Header[name] {
			_, _ = fmt.Fprintf(e.out, "%s: %s\n", name, value)
		}
	}

	if len(resp.Body) == 0 {
		return
	}
	_, _ = fmt.Fprintln(e.out)
	_, _ = e.out.Write(e.formatBody(resp.Body))
	if resp.Body[len(resp.Body)-1] != '\n' && !isJSON(resp.Body) {
		_, _ = fmt.Fprintln(e.out)
	}
}
