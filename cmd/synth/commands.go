// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/pbesynth/pkg/logging"
	"github.com/AleutianAI/pbesynth/services/synth"
	"github.com/AleutianAI/pbesynth/services/synth/ast"
	"github.com/AleutianAI/pbesynth/services/synth/oracle"
	"github.com/AleutianAI/pbesynth/services/synth/search"
)

// app holds the state of one CLI invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// Persistent flags
	configPath  string
	logLevel    string
	jsonLogs    bool
	logDir      string
	metricsFile string

	// Command flags
	taskPath string
	strategy string
	bound    int
	output   string

	config   synth.Config
	logger   *logging.Logger
	exitCode int
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "synth",
		Short:         "Enumerative program synthesis from input/output examples",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to a YAML or JSON config file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	pf.BoolVar(&a.jsonLogs, "json-logs", false, "write logs as JSON")
	pf.StringVar(&a.logDir, "log-dir", "", "also write JSON logs to a daily file in this directory")
	pf.StringVar(&a.metricsFile, "metrics-file", "", "enable metrics and write them to this file in Prometheus text format on exit")

	root.AddCommand(a.runCmd(), a.compareCmd(), a.versionCmd())
	return root
}

func (a *app) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Search for a program that satisfies a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTask(cmd)
		},
	}
	a.addTaskFlags(cmd)
	cmd.Flags().StringVar(&a.strategy, "strategy", "", "top-down or bottom-up (default: task file, then config)")
	return cmd
}

func (a *app) compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run both strategies on a task and report whether they agree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.compareTask(cmd)
		},
	}
	a.addTaskFlags(cmd)
	return cmd
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(a.stdout, "synth %s (%s)\n", version, runtime.Version())
			return err
		},
	}
}

func (a *app) addTaskFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&a.taskPath, "task", "t", "", "path to the YAML task file")
	cmd.Flags().IntVarP(&a.bound, "bound", "b", -1, "search bound (default: task file, then config)")
	cmd.Flags().StringVarP(&a.output, "output", "o", "text", "output format: text, json, yaml")
	_ = cmd.MarkFlagRequired("task")
}

// setup checks flags, loads configuration and builds the logger. It runs
// before any search starts.
func (a *app) setup(cmd *cobra.Command) error {
	format, err := parseOutputFormat(a.output)
	if err != nil {
		return err
	}
	a.output = format

	cfg, err := synth.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Observability.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("json-logs") {
		cfg.Observability.JSONLogs = a.jsonLogs
	}
	if a.metricsFile != "" {
		cfg.Observability.MetricsEnabled = true
	}

	level, err := logging.ParseLevel(cfg.Observability.LogLevel)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Config{
		Level:   level,
		Service: cfg.Observability.ServiceName,
		JSON:    cfg.Observability.JSONLogs,
		LogDir:  a.logDir,
		Writer:  a.stderr,
	})
	if err != nil {
		return err
	}

	a.config = cfg
	a.logger = logger
	return nil
}

func (a *app) teardown() error {
	if a.metricsFile != "" {
		if err := prometheus.WriteToTextfile(a.metricsFile, prometheus.DefaultGatherer); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	if a.logger != nil {
		return a.logger.Close()
	}
	return nil
}

// loadTask reads the task file and applies the --bound override.
func (a *app) loadTask() (*synth.Task, error) {
	task, err := synth.LoadTask(a.taskPath, a.config.Search.DefaultBound)
	if err != nil {
		return nil, err
	}
	if a.bound >= 0 {
		task.Bound = a.bound
	}
	return task, nil
}

func (a *app) synthesizer() *synth.Synthesizer {
	return synth.NewFromConfig(a.config, a.logger.Slog())
}

func (a *app) runTask(cmd *cobra.Command) error {
	task, err := a.loadTask()
	if err != nil {
		return err
	}

	strategy := a.config.DefaultStrategy()
	if task.Strategy != "" {
		strategy = task.Strategy
	}
	if a.strategy != "" {
		if strategy, err = search.ParseStrategy(a.strategy); err != nil {
			return err
		}
	}

	res, err := a.synthesizer().Synthesize(cmd.Context(), task, strategy)
	if err != nil {
		return err
	}
	if res.Found {
		if err := verify(res.Program, task.Examples); err != nil {
			return err
		}
	}

	if err := writeResult(a.stdout, a.output, newRunReport(task, res)); err != nil {
		return err
	}
	if res.Found {
		a.exitCode = CLIExitSuccess
	} else {
		a.exitCode = CLIExitNotFound
	}
	return nil
}

func (a *app) compareTask(cmd *cobra.Command) error {
	task, err := a.loadTask()
	if err != nil {
		return err
	}

	cmp, err := a.synthesizer().Compare(cmd.Context(), task)
	if err != nil {
		return err
	}
	for _, res := range []*search.Result{cmp.TopDown, cmp.BottomUp} {
		if res.Found {
			if err := verify(res.Program, task.Examples); err != nil {
				return err
			}
		}
	}

	if err := writeResult(a.stdout, a.output, newCompareReport(task, cmp)); err != nil {
		return err
	}
	if cmp.Agree() {
		a.exitCode = CLIExitSuccess
	} else {
		a.exitCode = CLIExitNotFound
	}
	return nil
}

// verify re-checks a reported program independently of the search.
func verify(p ast.Expr, examples []oracle.Example) error {
	if err := ast.WellTyped(p); err != nil {
		return fmt.Errorf("reported program %s is ill-typed: %w", p, err)
	}
	ok, err := oracle.Satisfies(p, examples)
	if err != nil {
		return fmt.Errorf("reported program %s: %w", p, err)
	}
	if !ok {
		return fmt.Errorf("reported program %s does not satisfy the examples", p)
	}
	return nil
}
