package mcpprobe

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// newTestProber builds a Prober with quiet logging and an optional scripted
// candidate resolver.
func newTestProber(resolve func(ServerDescriptor) ([]TransportCandidate, error)) *Prober {
	p := New(&Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if resolve != nil {
		p.resolve = resolve
	}
	return p
}

func staticCandidates(cands ...TransportCandidate) func(ServerDescriptor) ([]TransportCandidate, error) {
	return func(ServerDescriptor) ([]TransportCandidate, error) {
		return cands, nil
	}
}

// fakeServerConfig scripts the in-memory MCP server backing a candidate.
type fakeServerConfig struct {
	// tools are registered on the server; nil means the tools capability is
	// not advertised at all.
	tools []*mcp.Tool
	// prompts and resources toggle the respective capabilities.
	prompts   []*mcp.Prompt
	resources []*mcp.Resource
	// failPing makes the server answer ping with a method-not-found error.
	failPing bool
	// methodErrors scripts arbitrary failures per method, taking precedence
	// over the registered capabilities.
	methodErrors map[string]error
}

// inMemoryCandidate wires a scripted in-process MCP server to a fresh
// in-memory transport pair on every Open call, the way a real candidate
// spawns a fresh transport per attempt.
func inMemoryCandidate(t *testing.T, name string, cfg fakeServerConfig) TransportCandidate {
	t.Helper()
	return TransportCandidate{
		Name: name,
		Open: func() (mcp.Transport, *StderrTail, error) {
			server := mcp.NewServer(&mcp.Implementation{Name: "fake-server", Version: "0.0.1"}, nil)
			for _, tool := range cfg.tools {
				mcp.AddTool(server, tool, func(context.Context, *mcp.CallToolRequest, map[string]any) (*mcp.CallToolResult, any, error) {
					return &mcp.CallToolResult{}, nil, nil
				})
			}
			for _, prompt := range cfg.prompts {
				server.AddPrompt(prompt, func(context.Context, *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
					return &mcp.GetPromptResult{}, nil
				})
			}
			for _, resource := range cfg.resources {
				server.AddResource(resource, func(context.Context, *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
					return &mcp.ReadResourceResult{}, nil
				})
			}
			// Answer ping and unadvertised list methods the way old or minimal
			// servers do, with a method-not-found error.
			server.AddReceivingMiddleware(func(next mcp.MethodHandler) mcp.MethodHandler {
				return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
					if err, ok := cfg.methodErrors[method]; ok {
						return nil, err
					}
					switch {
					case method == "ping" && cfg.failPing,
						method == "tools/list" && cfg.tools == nil,
						method == "resources/list" && cfg.resources == nil,
						method == "prompts/list" && cfg.prompts == nil:
						return nil, &methodNotFoundError{method: method}
					}
					return next(ctx, method, req)
				}
			})

			clientTransport, serverTransport := mcp.NewInMemoryTransports()
			session, err := server.Connect(context.Background(), serverTransport, nil)
			if err != nil {
				return nil, nil, err
			}
			t.Cleanup(func() { _ = session.Close() })
			return clientTransport, nil, nil
		},
	}
}

// methodNotFoundError mimics a server that never implemented a method.
type methodNotFoundError struct{ method string }

func (e *methodNotFoundError) Error() string { return "-32601 method not found: " + e.method }

func envContains(env []string, key, value string) bool {
	// Later entries win, so scan from the back.
	prefix := key + "="
	for i := len(env) - 1; i >= 0; i-- {
		if strings.HasPrefix(env[i], prefix) {
			return env[i] == prefix+value
		}
	}
	return false
}
