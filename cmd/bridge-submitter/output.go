package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/chainsafe/bridge-submitter/pkg/submission"
	"github.com/chainsafe/bridge-submitter/pkg/transfer"
	"github.com/chainsafe/bridge-submitter/pkg/units"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) *printer {
	return &printer{w: w, format: format}
}

// render writes v as JSON or YAML, or calls text for the text format.
// YAML keys follow the JSON field names.
func (p *printer) render(v any, text func(io.Writer) error) error {
	switch p.format {
	case outputJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		var node yaml.Node
		if err := yaml.Unmarshal(raw, &node); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		blockStyle(&node)
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		return enc.Close()
	default:
		return text(p.w)
	}
}

// blockStyle drops the flow styling yaml.v3 keeps when decoding JSON.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func (p *printer) transfer(t *transfer.Transfer) error {
	return p.render(t, func(w io.Writer) error {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Transfer:     %s\n", t.ID)
		fmt.Fprintf(w, "  Status:       %s\n", statusColor(t.Status))
		fmt.Fprintf(w, "  Asset:        %s\n", t.Asset)
		fmt.Fprintf(w, "  Amount:       %s\n", t.Amount)
		fmt.Fprintf(w, "  Destination:  %s\n", t.Destination)
		if t.Completion != nil {
			fmt.Fprintf(w, "  Completion:   %s %s (block %d)\n", t.Completion.Event,
				color.CyanString(t.Completion.TxHash), t.Completion.BlockNumber)
		}
		if t.Error != "" {
			fmt.Fprintf(w, "  Error:        %s\n", color.RedString(t.Error))
		}
		if t.Shortfall != "" {
			fmt.Fprintf(w, "  Shortfall:    %s ETH\n", formatWei(t.Shortfall))
		}
		fmt.Fprintln(w)
		return writeSteps(w, t.Steps)
	})
}

func (p *printer) quote(q *transfer.Quote) error {
	return p.render(q, func(w io.Writer) error {
		fmt.Fprintln(w)
		if err := writeSteps(w, q.Steps); err != nil {
			return err
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Account:          %s\n", q.Account)
		fmt.Fprintf(w, "  Required:         %s ETH\n", formatWei(q.RequiredNative))
		fmt.Fprintf(w, "  Balance:          %s ETH\n", formatWei(q.NativeBalance))
		if q.Sufficient {
			fmt.Fprintf(w, "  Balance check:    %s\n", color.GreenString("ok"))
		} else {
			fmt.Fprintf(w, "  Balance check:    %s\n", color.RedString("short by %s ETH", formatWei(q.Shortfall)))
		}
		fmt.Fprintln(w)
		return nil
	})
}

func writeSteps(w io.Writer, steps []transfer.Step) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  STEP\tAMOUNT\tGAS\tGAS PRICE\tSTATUS\tTX")
	for _, s := range steps {
		gas := fmt.Sprintf("%d", s.GasUnits)
		if !s.Simulated && s.GasUnits > 0 {
			gas += " (fallback)"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n", s.Kind, s.Amount, gas, s.GasPrice, s.Status, s.TxHash)
	}
	return tw.Flush()
}

func formatWei(s string) string {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return s
	}
	return units.FormatEther(v)
}

func statusColor(s transfer.Status) string {
	switch s {
	case transfer.StatusCompleted:
		return color.GreenString(string(s))
	case transfer.StatusTimedOut, transfer.StatusCancelled:
		return color.YellowString(string(s))
	case transfer.StatusFailed:
		return color.RedString(string(s))
	default:
		return string(s)
	}
}

// progress prints run events to w, with a spinner while a step is pending
// when animate is set.
type progress struct {
	w    io.Writer
	spin *spinner.Spinner
}

func newProgress(w io.Writer, animate bool) *progress {
	p := &progress{w: w}
	if animate {
		p.spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	}
	return p
}

func (p *progress) start(msg string) {
	if p.spin == nil {
		fmt.Fprintf(p.w, "  %s\n", msg)
		return
	}
	p.spin.Stop()
	p.spin.Suffix = " " + msg
	p.spin.Start()
}

func (p *progress) stop() {
	if p.spin != nil {
		p.spin.Stop()
	}
}

func (p *progress) observe(ev submission.StepEvent) {
	switch ev.Type {
	case submission.EventPlanned:
		kinds := make([]string, len(ev.Plan))
		for i, s := range ev.Plan {
			kinds[i] = string(s.Kind)
		}
		fmt.Fprintf(p.w, "%s %s\n", color.CyanString("Plan:"), strings.Join(kinds, " -> "))
	case submission.EventStepStarted:
		p.start(fmt.Sprintf("Submitting %s...", ev.Step))
	case submission.EventStepSubmitted:
		p.stop()
		fmt.Fprintf(p.w, "%s %s %s (block %d)\n", color.GreenString("✓"), ev.Step,
			color.CyanString(ev.Tx.Hash.Hex()), ev.Tx.BlockNumber)
	case submission.EventStepFailed:
		p.stop()
		fmt.Fprintf(p.w, "%s %s: %v\n", color.RedString("✗"), ev.Step, ev.Err)
	case submission.EventStepSkipped:
		fmt.Fprintf(p.w, "%s %s skipped\n", color.YellowString("-"), ev.Step)
	case submission.EventWatching:
		p.start("Waiting for the bridge to confirm...")
	case submission.EventCompleted:
		p.stop()
		fmt.Fprintf(p.w, "%s bridge confirmed\n", color.GreenString("✓"))
	case submission.EventFailed:
		p.stop()
	}
}
