package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/vikashloomba/mcp-prober-go/pkg/mcpconfig"
	"github.com/vikashloomba/mcp-prober-go/pkg/mcpprobe"
)

type rootFlags struct {
	configPath  string
	timeout     time.Duration
	concurrency int
	logLevel    string
	jsonLog     bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "mcp-prober",
		Short: "Probe MCP servers for reachability and capabilities",
		Long: `mcp-prober checks Model Context Protocol (MCP) servers.

It reads server definitions from a standard "mcpServers" config file (JSON or
TOML), then either probes each server for reachability (connect + liveness
ping) or enumerates the tools, resources, and prompts it advertises. Servers
may be local processes spawned over stdio or remote endpoints reached via
Streamable HTTP, legacy SSE, or WebSocket; ambiguous HTTP endpoints are
resolved by trying both transports within the time budget.

Results for all targets are printed as a single JSON object on stdout. A
server that fails its probe is reported in that object, not as a process
error; the exit code is non-zero only for malformed invocations.`,
		SilenceUsage: true,
	}

	persistent := cmd.PersistentFlags()
	persistent.StringVarP(&flags.configPath, "config", "c", "", "path to an mcpServers config file (.json or .toml)")
	persistent.DurationVar(&flags.timeout, "timeout", 10*time.Second, "per-target time budget")
	persistent.IntVar(&flags.concurrency, "concurrency", 4, "maximum servers checked in parallel")
	persistent.StringVar(&flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	persistent.BoolVar(&flags.jsonLog, "json-log", false, "emit logs as JSON instead of styled text")
	_ = cmd.MarkPersistentFlagRequired("config")

	cmd.AddCommand(newProbeCmd(flags), newDiscoverCmd(flags))
	return cmd
}

func newProbeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "probe [server-id...]",
		Short: "Check which configured servers are reachable and responsive",
		RunE: func(cmd *cobra.Command, args []string) error {
			prober, descriptors, ids, err := setup(flags, args)
			if err != nil {
				return err
			}
			results := prober.ProbeAll(cmd.Context(), descriptors, ids, flags.timeout, flags.concurrency)
			return printJSON(cmd, results)
		},
	}
}

func newDiscoverCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "discover [server-id...]",
		Short: "Enumerate the tools, resources, and prompts servers advertise",
		RunE: func(cmd *cobra.Command, args []string) error {
			prober, descriptors, ids, err := setup(flags, args)
			if err != nil {
				return err
			}
			results := prober.DiscoverAll(cmd.Context(), descriptors, ids, flags.timeout, flags.concurrency)
			return printJSON(cmd, results)
		},
	}
}

// setup loads the config, selects target ids (all configured servers when
// none are named), and builds the prober with logging wired up.
func setup(flags *rootFlags, args []string) (*mcpprobe.Prober, map[string]mcpprobe.ServerDescriptor, []string, error) {
	logger := slog.New(newLogHandler(flags.logLevel, flags.jsonLog, os.Stderr))

	descriptors, err := mcpconfig.Load(flags.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(descriptors) == 0 {
		return nil, nil, nil, fmt.Errorf("no servers configured in %s", flags.configPath)
	}

	ids := args
	if len(ids) == 0 {
		ids = make([]string, 0, len(descriptors))
		for id := range descriptors {
			ids = append(ids, id)
		}
		sort.Strings(ids)
	}

	prober := mcpprobe.New(&mcpprobe.Options{Logger: logger})
	return prober, descriptors, ids, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
