// Package mcpconfig loads MCP server descriptors from the de-facto standard
// "mcpServers" configuration document used by AI-tool hosts. Both JSON and
// TOML renditions are supported; the format is picked by file extension.
// Host-specific translation quirks are out of scope; this package only feeds
// descriptors to the probing engines.
package mcpconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/vikashloomba/mcp-prober-go/pkg/mcpprobe"
)

// Format identifies a supported config encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Document is the on-disk shape: a map of server id to entry under the
// "mcpServers" key.
type Document struct {
	Servers map[string]Entry `json:"mcpServers" toml:"mcpServers"`
}

// Entry mirrors the fields hosts commonly write for one server. "type" and
// "transport" are both accepted as the transport hint key; "type" wins when
// both appear.
type Entry struct {
	Command   string            `json:"command,omitempty" toml:"command,omitempty"`
	Args      []string          `json:"args,omitempty" toml:"args,omitempty"`
	Env       map[string]string `json:"env,omitempty" toml:"env,omitempty"`
	Cwd       string            `json:"cwd,omitempty" toml:"cwd,omitempty"`
	URL       string            `json:"url,omitempty" toml:"url,omitempty"`
	Headers   map[string]string `json:"headers,omitempty" toml:"headers,omitempty"`
	Type      string            `json:"type,omitempty" toml:"type,omitempty"`
	Transport string            `json:"transport,omitempty" toml:"transport,omitempty"`
}

// Descriptor converts the entry to the engine's descriptor type.
func (e Entry) Descriptor() mcpprobe.ServerDescriptor {
	hint := e.Type
	if hint == "" {
		hint = e.Transport
	}
	return mcpprobe.ServerDescriptor{
		Command:       e.Command,
		Args:          e.Args,
		Env:           e.Env,
		WorkingDir:    e.Cwd,
		URL:           e.URL,
		Headers:       e.Headers,
		TransportHint: hint,
	}
}

// Load reads the file at path and returns its descriptors keyed by server id.
func Load(path string) (map[string]mcpprobe.ServerDescriptor, error) {
	format, err := formatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mcpconfig: read %s: %w", path, err)
	}
	return Parse(data, format)
}

// Parse decodes a config document in the given format.
func Parse(data []byte, format Format) (map[string]mcpprobe.ServerDescriptor, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("mcpconfig: parse json: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("mcpconfig: parse toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("mcpconfig: unsupported format %q", format)
	}

	descriptors := make(map[string]mcpprobe.ServerDescriptor, len(doc.Servers))
	for id, entry := range doc.Servers {
		descriptors[id] = entry.Descriptor()
	}
	return descriptors, nil
}

func formatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("mcpconfig: cannot infer format from %q (want .json or .toml)", filepath.Base(path))
	}
}
