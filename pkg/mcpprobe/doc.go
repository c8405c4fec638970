// Package mcpprobe answers two questions about arbitrary Model Context
// Protocol (MCP) servers: is the server reachable and responsive, and what
// capabilities (tools, resources, prompts) does it advertise. Servers are
// described by a ServerDescriptor naming either a local process to spawn or
// a remote URL; transport ambiguity (Streamable HTTP versus legacy SSE) is
// resolved by trial, with a caller-supplied time budget sliced across the
// connect and liveness/discovery phases of each attempt.
//
// # Core entry points
//
//   - Prober runs the engines. Construct it with New, then call Probe or
//     Discover for a single server, or ProbeAll / DiscoverAll to fan out
//     over many server ids with bounded concurrency.
//   - Resolver maps a descriptor onto its ordered transport candidates and
//     carries the injected knobs (scratch directory for uv package caches,
//     HTTP client) the candidates need.
//   - ProbeResult and DiscoveryResult are plain JSON-serializable outcomes;
//     a failed target is data in the result map, never an error from the
//     batch call.
//
// Probing observes and reports only: nothing is persisted, no retries happen
// beyond the documented transport fallback chain, and every client, session,
// and child process an attempt opens is released before its outcome is
// returned. For local-process servers the tail of the child's stderr is
// captured and attached to failure reports, since such servers commonly
// explain their root cause there rather than in a protocol error.
package mcpprobe
