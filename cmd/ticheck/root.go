package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/adapter/external/threatintel"
	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/config"
	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/entity"
	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/usecase/threats"
)

type serviceFactory func(cfg *config.Config, logger *slog.Logger) *threats.Service

func newService(cfg *config.Config, logger *slog.Logger) *threats.Service {
	aggregator := threatintel.NewAggregator(threatintel.AggregatorConfig{
		VirusTotalKey: cfg.ThreatIntel.VirusTotalKey,
		AbuseIPDBKey:  cfg.ThreatIntel.AbuseIPDBKey,
		GreyNoiseKey:  cfg.ThreatIntel.GreyNoiseKey,
		URLhausKey:    cfg.ThreatIntel.URLhausKey,
		Timeout:       cfg.ThreatIntel.Timeout,
		Logger:        logger,
	})
	return threats.NewService(aggregator, logger)
}

func newRootCmd(factory serviceFactory) *cobra.Command {
	var output string
	var timeout time.Duration
	var verbose bool

	cmd := &cobra.Command{
		Use:           "ticheck INDICATOR",
		Short:         "Check an IP address or domain against threat intel providers",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "json" && output != "table" {
				return fmt.Errorf("invalid --output %q: want json or table", output)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("timeout") {
				if timeout <= 0 {
					return fmt.Errorf("invalid --timeout %s: must be positive", timeout)
				}
				cfg.ThreatIntel.Timeout = timeout
			}

			level := slog.LevelError
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			result, err := factory(cfg, logger).CheckIndicator(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if output == "json" {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printTable(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: json or table")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Per-provider request timeout")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log provider activity to stderr")

	return cmd
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printTable(w io.Writer, result *entity.AggregatedResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("%s: %s (score %d)", result.Query, result.Verdict, result.Score)
	t.AppendHeader(table.Row{"Provider", "Malicious", "Score", "Error"})

	names := make([]string, 0, len(result.Providers))
	for name := range result.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		r := result.Providers[name]
		errText, _ := r.Raw["error"].(string)
		t.AppendRow(table.Row{name, r.IsMalicious, r.Score, errText})
	}

	if len(result.Reasons) > 0 {
		t.AppendFooter(table.Row{"Reasons", strings.Join(result.Reasons, "; ")})
	}
	t.Render()
}
