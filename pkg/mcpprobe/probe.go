package mcpprobe

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// maxProbeTimeout caps the caller-supplied per-target budget for
	// reachability probes.
	maxProbeTimeout = 30 * time.Second
	// maxDiscoverTimeout caps the per-target budget for capability
	// discovery, which performs more round-trips than a probe.
	maxDiscoverTimeout = 60 * time.Second
)

// Options configure a Prober. The zero value (or nil) falls back to sensible
// defaults.
type Options struct {
	// Logger receives structured diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
	// Implementation identifies this client during the MCP handshake.
	Implementation *mcp.Implementation
	// Resolver customizes transport candidate resolution; a zero Resolver
	// is used when nil.
	Resolver *Resolver
}

func (o *Options) withDefaults() Options {
	if o == nil {
		o = &Options{}
	}
	opts := *o
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Implementation == nil {
		opts.Implementation = &mcp.Implementation{
			Name:    "mcp-prober",
			Version: "1.0.0",
		}
	} else {
		impl := *opts.Implementation
		opts.Implementation = &impl
	}
	if opts.Resolver == nil {
		opts.Resolver = &Resolver{}
	}
	return opts
}

// Prober runs reachability probes and capability discovery against MCP
// servers described by ServerDescriptor values. A Prober holds no per-call
// state and is safe for concurrent use.
type Prober struct {
	opts Options

	// resolve is an indirection point so tests can script candidates
	// without standing up real transports.
	resolve func(ServerDescriptor) ([]TransportCandidate, error)
}

// New constructs a Prober.
func New(opts *Options) *Prober {
	normalized := opts.withDefaults()
	return &Prober{
		opts:    normalized,
		resolve: normalized.Resolver.Resolve,
	}
}

// Probe runs one reachability probe: resolve transport candidates, try each
// in order within its slice of the budget, and report the first success or
// the aggregated failure. The total timeout is clamped to [500ms, 30s].
func (p *Prober) Probe(ctx context.Context, desc ServerDescriptor, total time.Duration) ProbeResult {
	total = clampTimeout(total, maxProbeTimeout)

	candidates, err := p.resolve(desc)
	if err != nil {
		return ProbeResult{Error: err.Error()}
	}

	// Latency spans from the first connection attempt to the final outcome.
	start := time.Now()

	budgets := attemptBudgets(total, len(candidates))
	var failures []string
	var stderrTail string
	for i, cand := range candidates {
		failure, tail, ok := p.probeCandidate(ctx, cand, budgets[i])
		if ok {
			p.opts.Logger.Debug("probe succeeded", "transport", cand.Name, "latencyMs", sinceMS(start))
			return ProbeResult{OK: true, LatencyMS: sinceMS(start)}
		}
		p.opts.Logger.Debug("probe candidate failed", "transport", cand.Name, "error", failure)
		failures = append(failures, cand.Name+": "+failure)
		if tail != "" {
			stderrTail = tail
		}
	}
	return ProbeResult{LatencyMS: sinceMS(start), Error: aggregateFailure(failures, stderrTail)}
}

// probeCandidate runs one outer attempt: open a fresh client+transport pair,
// connect within the first half of the budget, then confirm liveness within
// the second half. Servers predating the ping method get a tools listing as
// a liveness proxy under the same deadline. Whatever happens, the session is
// torn down before returning.
func (p *Prober) probeCandidate(ctx context.Context, cand TransportCandidate, budget time.Duration) (failure, stderrTail string, ok bool) {
	phases := splitBudget(budget, 2)

	transport, tail, err := cand.Open()
	if err != nil {
		return err.Error(), "", false
	}
	tailText := func() string {
		if tail == nil {
			return ""
		}
		return tail.Tail()
	}

	client := mcp.NewClient(p.opts.Implementation, nil)
	connectCtx, cancelConnect := context.WithTimeout(ctx, phases[0])
	session, err := client.Connect(connectCtx, transport, nil)
	cancelConnect()
	if err != nil {
		return phaseFailure("connect", phases[0], err), tailText(), false
	}
	defer func() {
		// Best-effort teardown; a close failure never masks the outcome.
		_ = session.Close()
	}()

	liveCtx, cancelLive := context.WithTimeout(ctx, phases[1])
	defer cancelLive()
	err = session.Ping(liveCtx, nil)
	if err != nil && isMethodUnavailable(err) {
		_, err = session.ListTools(liveCtx, nil)
	}
	if err != nil {
		return phaseFailure("liveness check", phases[1], err), tailText(), false
	}
	return "", "", true
}

// aggregateFailure joins per-candidate failures in attempt order and appends
// the captured stderr tail when a local-process attempt produced one.
func aggregateFailure(failures []string, stderrTail string) string {
	msg := strings.Join(failures, " | ")
	if msg == "" {
		msg = unavailableFailure
	}
	if stderrTail != "" {
		msg += " | stderr: " + stderrTail
	}
	return msg
}

func sinceMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
