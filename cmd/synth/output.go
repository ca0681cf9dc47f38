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
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/pbesynth/services/synth"
	"github.com/AleutianAI/pbesynth/services/synth/search"
)

// Exit codes for CLI commands.
const (
	CLIExitSuccess  = 0 // Program found, or strategies agree
	CLIExitNotFound = 1 // No program within the bound, or strategies disagree
	CLIExitError    = 2 // Operation failed
)

// runReport is the printable form of one search result.
type runReport struct {
	Task     string       `json:"task" yaml:"task"`
	RunID    string       `json:"run_id" yaml:"run_id"`
	Strategy string       `json:"strategy" yaml:"strategy"`
	Bound    int          `json:"bound" yaml:"bound"`
	Found    bool         `json:"found" yaml:"found"`
	Program  string       `json:"program,omitempty" yaml:"program,omitempty"`
	Stats    search.Stats `json:"stats" yaml:"stats"`
}

func newRunReport(task *synth.Task, res *search.Result) runReport {
	return runReport{
		Task:     task.Name,
		RunID:    res.RunID,
		Strategy: string(res.Strategy),
		Bound:    res.Bound,
		Found:    res.Found,
		Program:  res.ProgramText(),
		Stats:    res.Stats,
	}
}

func (r runReport) text() string {
	var b strings.Builder
	if r.Found {
		fmt.Fprintf(&b, "%s: found %s\n", r.Strategy, r.Program)
	} else {
		fmt.Fprintf(&b, "%s: no program found within bound %d\n", r.Strategy, r.Bound)
	}
	fmt.Fprintf(&b, "  generated=%d evaluated=%d pruned=%d steps=%d max_level=%d elapsed=%s\n",
		r.Stats.Generated, r.Stats.Evaluated, r.Stats.Pruned, r.Stats.Steps, r.Stats.MaxLevel, r.Stats.Elapsed)
	return b.String()
}

// compareReport is the printable form of a comparison.
type compareReport struct {
	Task     string    `json:"task" yaml:"task"`
	Agree    bool      `json:"agree" yaml:"agree"`
	TopDown  runReport `json:"top_down" yaml:"top_down"`
	BottomUp runReport `json:"bottom_up" yaml:"bottom_up"`
}

func newCompareReport(task *synth.Task, cmp *synth.Comparison) compareReport {
	return compareReport{
		Task:     task.Name,
		Agree:    cmp.Agree(),
		TopDown:  newRunReport(task, cmp.TopDown),
		BottomUp: newRunReport(task, cmp.BottomUp),
	}
}

func (r compareReport) text() string {
	verdict := "agree"
	if !r.Agree {
		verdict = "disagree"
	}
	return r.TopDown.text() + r.BottomUp.text() + "strategies " + verdict + "\n"
}

type texter interface {
	text() string
}

var outputFormats = []string{"text", "json", "yaml"}

// parseOutputFormat normalizes an --output value. Empty means text.
func parseOutputFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		return "text", nil
	}
	if !slices.Contains(outputFormats, f) {
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
	return f, nil
}

// writeResult prints a report in the requested format.
func writeResult(w io.Writer, format string, report texter) error {
	format, err := parseOutputFormat(format)
	if err != nil {
		return err
	}
	switch format {
	case "text":
		_, err := io.WriteString(w, report.text())
		return err
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(report); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
