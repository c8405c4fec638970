package mcpprobe

import (
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerDescriptor declares how to reach a single MCP server. Exactly one of
// the two variants is expected to be populated: the local-process variant
// (Command plus the optional Args/Env/WorkingDir) or the remote variant (URL
// plus the optional Headers). TransportHint is advisory only; the resolver
// uses it to order HTTP transport candidates but never trusts it outright.
type ServerDescriptor struct {
	// Local-process variant.
	Command    string            `json:"command,omitempty"`
	Args       []string          `json:"args,omitempty"`
	Env        map[string]string `json:"env,omitempty"`
	WorkingDir string            `json:"cwd,omitempty"`

	// Remote variant.
	URL           string            `json:"url,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"`
	TransportHint string            `json:"transport,omitempty"`
}

// IsLocal reports whether the descriptor spawns a local process.
func (d ServerDescriptor) IsLocal() bool { return d.Command != "" }

// IsRemote reports whether the descriptor targets a remote URL.
func (d ServerDescriptor) IsRemote() bool { return d.URL != "" }

// ProbeResult is the outcome of a single reachability probe. LatencyMS spans
// from the first connection attempt to the final outcome, including every
// fallback attempt in between.
type ProbeResult struct {
	OK        bool   `json:"ok"`
	LatencyMS int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

// ToolInfo is the normalized view of a tool advertised by a server. The input
// schema is kept as raw JSON so callers can forward it without binding to the
// SDK's schema types.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// SupportMatrix records which capability families the server answered for.
// A false entry means the server reported the corresponding list method as
// not implemented, not that the listing was empty.
type SupportMatrix struct {
	Tools     bool `json:"tools"`
	Resources bool `json:"resources"`
	Prompts   bool `json:"prompts"`
}

// Capabilities aggregates everything a server advertised during discovery.
// Tools are normalized; resources and prompts pass through as SDK values.
type Capabilities struct {
	Tools     []ToolInfo      `json:"tools"`
	Resources []*mcp.Resource `json:"resources"`
	Prompts   []*mcp.Prompt   `json:"prompts"`
}

// DiscoveryResult is the outcome of a single capability discovery run.
type DiscoveryResult struct {
	OK           bool          `json:"ok"`
	LatencyMS    int64         `json:"latencyMs"`
	Supported    SupportMatrix `json:"supported"`
	Capabilities Capabilities  `json:"capabilities"`
	Error        string        `json:"error,omitempty"`
}
