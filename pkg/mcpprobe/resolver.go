package mcpprobe

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vikashloomba/mcp-prober-go/pkg/wstransport"
)

// Transport candidate names, used verbatim in aggregated failure messages.
const (
	candidateStreamableHTTP = "streamable-http"
	candidateLegacySSE      = "legacy-sse"
	candidateWebSocket      = "websocket"
	candidateStdio          = "stdio"
)

// TransportCandidate is a named factory for one concrete transport attempt.
// Open builds a fresh transport every call; for local-process candidates it
// also returns the StderrTail wired to the spawned child.
type TransportCandidate struct {
	Name string
	Open func() (mcp.Transport, *StderrTail, error)
}

// Resolver turns a ServerDescriptor into the ordered list of transport
// candidates a probe should try. It holds the few injected knobs the
// candidates need so nothing is read from process-wide state at open time.
type Resolver struct {
	// ScratchDir is a writable directory handed to uv/uvx package caches
	// when the descriptor does not configure its own. Empty means a
	// directory under os.TempDir().
	ScratchDir string
	// HTTPClient overrides the client used by HTTP-based transports.
	HTTPClient *http.Client
}

// Resolve produces the non-empty, ordered candidate list for desc, or
// ErrNoTarget when the descriptor names neither a command nor a URL.
func (r *Resolver) Resolve(desc ServerDescriptor) ([]TransportCandidate, error) {
	switch {
	case desc.IsRemote():
		return r.resolveRemote(desc)
	case desc.IsLocal():
		return []TransportCandidate{r.stdioCandidate(desc)}, nil
	default:
		return nil, ErrNoTarget
	}
}

func (r *Resolver) resolveRemote(desc ServerDescriptor) ([]TransportCandidate, error) {
	parsed, err := url.Parse(desc.URL)
	if err != nil {
		return nil, fmt.Errorf("mcpprobe: invalid url %q: %w", desc.URL, err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "ws", "wss":
		return []TransportCandidate{{
			Name: candidateWebSocket,
			Open: func() (mcp.Transport, *StderrTail, error) {
				return &wstransport.Transport{
					URL:        desc.URL,
					Header:     headerFromMap(desc.Headers),
					HTTPClient: r.HTTPClient,
				}, nil, nil
			},
		}}, nil
	case "http", "https":
		httpClient := decorateHTTPClient(r.HTTPClient, desc.Headers)
		streamable := TransportCandidate{
			Name: candidateStreamableHTTP,
			Open: func() (mcp.Transport, *StderrTail, error) {
				return &mcp.StreamableClientTransport{Endpoint: desc.URL, HTTPClient: httpClient}, nil, nil
			},
		}
		sse := TransportCandidate{
			Name: candidateLegacySSE,
			Open: func() (mcp.Transport, *StderrTail, error) {
				return &mcp.SSEClientTransport{Endpoint: desc.URL, HTTPClient: httpClient}, nil, nil
			},
		}
		if preferSSE(desc, parsed) {
			return []TransportCandidate{sse, streamable}, nil
		}
		return []TransportCandidate{streamable, sse}, nil
	default:
		return nil, fmt.Errorf("mcpprobe: unsupported url scheme %q", parsed.Scheme)
	}
}

// preferSSE decides which of the two HTTP transports to try first. Many
// deployed servers speak only one of them and signal it through the URL shape
// rather than anything protocol-level, so a "sse" hint or an sse-looking path
// puts the legacy transport first.
func preferSSE(desc ServerDescriptor, parsed *url.URL) bool {
	switch strings.ToLower(desc.TransportHint) {
	case "sse":
		return true
	case "":
		// No hint, fall through to the path heuristic.
	default:
		return false
	}
	return strings.Contains(strings.ToLower(parsed.Path), "sse")
}

func (r *Resolver) stdioCandidate(desc ServerDescriptor) TransportCandidate {
	return TransportCandidate{
		Name: candidateStdio,
		Open: func() (mcp.Transport, *StderrTail, error) {
			cmd := exec.Command(desc.Command, desc.Args...)
			if desc.WorkingDir != "" {
				cmd.Dir = desc.WorkingDir
			}
			cmd.Env = r.spawnEnv(desc)
			tail := NewStderrTail()
			cmd.Stderr = tail
			return &mcp.CommandTransport{Command: cmd}, tail, nil
		},
	}
}

// spawnEnv merges the descriptor's environment over the inherited one. Later
// entries win for duplicate keys on every supported platform, so overrides
// are appended rather than deduplicated. For uv-family launchers a writable
// cache location is injected unless the descriptor already sets one, since
// the default cache path is frequently unwritable in sandboxed executions.
func (r *Resolver) spawnEnv(desc ServerDescriptor) []string {
	env := os.Environ()
	keys := make([]string, 0, len(desc.Env))
	for k := range desc.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+desc.Env[k])
	}
	if isUVLauncher(desc.Command) {
		scratch := r.scratchDir()
		if _, ok := desc.Env["UV_CACHE_DIR"]; !ok {
			env = append(env, "UV_CACHE_DIR="+filepath.Join(scratch, "uv-cache"))
		}
		if _, ok := desc.Env["XDG_CACHE_HOME"]; !ok {
			env = append(env, "XDG_CACHE_HOME="+filepath.Join(scratch, "cache"))
		}
	}
	return env
}

func (r *Resolver) scratchDir() string {
	if r.ScratchDir != "" {
		return r.ScratchDir
	}
	return filepath.Join(os.TempDir(), "mcp-prober")
}

func isUVLauncher(command string) bool {
	base := strings.TrimSuffix(filepath.Base(command), ".exe")
	return base == "uv" || base == "uvx"
}

func headerFromMap(headers map[string]string) http.Header {
	if len(headers) == 0 {
		return nil
	}
	h := make(http.Header, len(headers))
	for k, v := range headers {
		h.Set(k, v)
	}
	return h
}

// decorateHTTPClient clones base (or the default client) and stacks a
// round tripper that applies the descriptor's static headers to every
// request both HTTP transports issue.
func decorateHTTPClient(base *http.Client, headers map[string]string) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	if len(headers) == 0 {
		return base
	}
	clone := *base
	clone.Transport = &headerRoundTripper{
		next:    defaultRoundTripper(base.Transport),
		headers: headerFromMap(headers),
	}
	return &clone
}

type headerRoundTripper struct {
	next    http.RoundTripper
	headers http.Header
}

func (rt *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	for k, values := range rt.headers {
		req.Header.Del(k)
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	return rt.next.RoundTrip(req)
}

func defaultRoundTripper(next http.RoundTripper) http.RoundTripper {
	if next != nil {
		return next
	}
	return http.DefaultTransport
}
