package mcpprobe

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Discover runs one capability discovery: connect the way Probe does, then
// enumerate tools, resources, and prompts within the remaining budget. A
// capability whose list method the server reports as unimplemented is marked
// unsupported without failing the run; any other list failure abandons the
// candidate. The total timeout is clamped to [500ms, 60s].
func (p *Prober) Discover(ctx context.Context, desc ServerDescriptor, total time.Duration) DiscoveryResult {
	total = clampTimeout(total, maxDiscoverTimeout)

	candidates, err := p.resolve(desc)
	if err != nil {
		return DiscoveryResult{Error: err.Error()}
	}

	// Latency spans from the first connection attempt to the final outcome.
	start := time.Now()

	budgets := attemptBudgets(total, len(candidates))
	var failures []string
	var stderrTail string
	for i, cand := range candidates {
		res, failure, tail, ok := p.discoverCandidate(ctx, cand, budgets[i])
		if ok {
			res.OK = true
			res.LatencyMS = sinceMS(start)
			p.opts.Logger.Debug("discovery succeeded",
				"transport", cand.Name,
				"tools", len(res.Capabilities.Tools),
				"resources", len(res.Capabilities.Resources),
				"prompts", len(res.Capabilities.Prompts),
				"latencyMs", res.LatencyMS)
			return res
		}
		p.opts.Logger.Debug("discovery candidate failed", "transport", cand.Name, "error", failure)
		failures = append(failures, cand.Name+": "+failure)
		if tail != "" {
			stderrTail = tail
		}
	}
	return DiscoveryResult{LatencyMS: sinceMS(start), Error: aggregateFailure(failures, stderrTail)}
}

func (p *Prober) discoverCandidate(ctx context.Context, cand TransportCandidate, budget time.Duration) (res DiscoveryResult, failure, stderrTail string, ok bool) {
	phases := splitBudget(budget, 2)

	transport, tail, err := cand.Open()
	if err != nil {
		return res, err.Error(), "", false
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
		return res, phaseFailure("connect", phases[0], err), tailText(), false
	}
	defer func() {
		_ = session.Close()
	}()

	// The discover phase is carved into equal slices for the three list
	// calls so a hung method cannot starve the ones after it.
	subBudgets := splitBudget(phases[1], 3)

	tools, supported, err := listToolsPhase(ctx, session, subBudgets[0])
	if err != nil {
		return res, phaseFailure("tools/list", subBudgets[0], err), tailText(), false
	}
	res.Supported.Tools = supported
	res.Capabilities.Tools = tools

	resources, supported, err := listResourcesPhase(ctx, session, subBudgets[1])
	if err != nil {
		return res, phaseFailure("resources/list", subBudgets[1], err), tailText(), false
	}
	res.Supported.Resources = supported
	res.Capabilities.Resources = resources

	prompts, supported, err := listPromptsPhase(ctx, session, subBudgets[2])
	if err != nil {
		return res, phaseFailure("prompts/list", subBudgets[2], err), tailText(), false
	}
	res.Supported.Prompts = supported
	res.Capabilities.Prompts = prompts

	return res, "", "", true
}

func listToolsPhase(ctx context.Context, session *mcp.ClientSession, budget time.Duration) ([]ToolInfo, bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()
	result, err := session.ListTools(callCtx, nil)
	if err != nil {
		if isMethodUnavailable(err) {
			return []ToolInfo{}, false, nil
		}
		return nil, false, err
	}
	return normalizeTools(result.Tools), true, nil
}

func listResourcesPhase(ctx context.Context, session *mcp.ClientSession, budget time.Duration) ([]*mcp.Resource, bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()
	result, err := session.ListResources(callCtx, nil)
	if err != nil {
		if isMethodUnavailable(err) {
			return []*mcp.Resource{}, false, nil
		}
		return nil, false, err
	}
	resources := result.Resources
	if resources == nil {
		resources = []*mcp.Resource{}
	}
	return resources, true, nil
}

func listPromptsPhase(ctx context.Context, session *mcp.ClientSession, budget time.Duration) ([]*mcp.Prompt, bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()
	result, err := session.ListPrompts(callCtx, nil)
	if err != nil {
		if isMethodUnavailable(err) {
			return []*mcp.Prompt{}, false, nil
		}
		return nil, false, err
	}
	prompts := result.Prompts
	if prompts == nil {
		prompts = []*mcp.Prompt{}
	}
	return prompts, true, nil
}

// normalizeTools projects SDK tool values onto the wire-stable ToolInfo
// shape, dropping entries without a name and serializing each input schema
// as raw JSON.
func normalizeTools(tools []*mcp.Tool) []ToolInfo {
	out := make([]ToolInfo, 0, len(tools))
	for _, tool := range tools {
		if tool == nil || tool.Name == "" {
			continue
		}
		info := ToolInfo{Name: tool.Name, Description: tool.Description}
		if tool.InputSchema != nil {
			if raw, err := json.Marshal(tool.InputSchema); err == nil {
				info.InputSchema = raw
			}
		}
		out = append(out, info)
	}
	return out
}
