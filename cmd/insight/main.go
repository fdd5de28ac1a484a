// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command insight scores one codebase snapshot.
//
// The snapshot is a JSON document of per-file measurements, import
// edges, and commit history produced by an upstream collector. The
// engine fuses them into risk, wiring, and health scores at file,
// module, and codebase level, plus the delta_h local anomaly signal.
//
// Usage:
//
//	insight analyze --snapshot snap.json
//	insight analyze --snapshot snap.json --output report.json
//	insight analyze --snapshot - < snap.json
//	insight version
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/namanag97/shannon-insight-sub002/pkg/logging"
	"github.com/namanag97/shannon-insight-sub002/services/insight/config"
	"github.com/namanag97/shannon-insight-sub002/services/insight/pipeline"
	"github.com/namanag97/shannon-insight-sub002/services/insight/report"
	"github.com/namanag97/shannon-insight-sub002/services/insight/snapshot"
	"github.com/namanag97/shannon-insight-sub002/services/insight/telemetry"
)

// version is stamped at build time via -ldflags.
var version = "dev"

var (
	snapshotPath string
	configPath   string
	outputPath   string
	logLevel     string
	logDir       string
	jsonLogs     bool
	quiet        bool

	rootCmd = &cobra.Command{
		Use:           "insight",
		Short:         "Signal-fusion scoring for codebase snapshots",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze",
		Short: "Run the fusion pipeline over a snapshot and emit the JSON report",
		RunE:  runAnalyze,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the insight version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
)

func init() {
	analyzeCmd.Flags().StringVarP(&snapshotPath, "snapshot", "s", "", `snapshot JSON file, or "-" for stdin (required)`)
	analyzeCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config overlaying the default weights and floors")
	analyzeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "report destination, stdout when empty")
	_ = analyzeCmd.MarkFlagRequired("snapshot")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn, or error")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "also write JSON logs into this directory")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "JSON log output on stderr")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress stderr logs")

	rootCmd.AddCommand(analyzeCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "insight:", err)
		os.Exit(1)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(logLevel),
		LogDir: logDir,
		JSON:   jsonLogs,
		Quiet:  quiet,
	})
	defer logger.Close()

	ctx := cmd.Context()

	telCfg := telemetry.DefaultConfig()
	telCfg.ServiceVersion = version
	shutdown, err := telemetry.Init(ctx, telCfg)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	cfg := config.Default()
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
	}

	snap, err := readSnapshot(snapshotPath)
	if err != nil {
		return err
	}

	eng, err := pipeline.New(cfg, pipeline.WithLogger(logger.Slog()))
	if err != nil {
		return err
	}

	res, err := eng.Run(ctx, snap)
	if err != nil {
		return err
	}

	rpt := report.Build(res)

	out := cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	return rpt.Write(out)
}

// readSnapshot decodes the snapshot document from a file or stdin.
func readSnapshot(path string) (*snapshot.Snapshot, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open snapshot: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var snap snapshot.Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
