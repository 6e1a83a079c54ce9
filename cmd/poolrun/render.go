package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
)

var (
	bold  = color.New(color.Bold)
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
)

func newProgressBar(cfg config, out io.Writer) *progressbar.ProgressBar {
	if cfg.ci || cfg.tasks == 0 {
		return nil
	}

	return progressbar.NewOptions(cfg.tasks,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("Running tasks"),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
	)
}

func renderReport(out io.Writer, cfg config, rep report) {
	printSectionHeader(out, "POOL RUN",
		fmt.Sprintf("%d workers, %d submitters, %d tasks", cfg.workers, cfg.submitters, cfg.tasks))

	table := tablewriter.NewWriter(out)
	table.Header("Metric", "Value")

	rows := [][]string{
		{"Accepted", formatNumber(rep.Accepted)},
		{"Rejected (queue full)", formatNumber(rep.Rejected)},
		{"Executed", formatNumber(rep.Executed)},
		{"Succeeded", strconv.Itoa(rep.Succeeded)},
		{"Failed", strconv.Itoa(rep.Failed)},
		{"Panicked", strconv.Itoa(rep.Panicked)},
		{"Retries", formatNumber(int64(rep.Stats.Retries))},
		{"Elapsed", rep.Elapsed.Round(time.Millisecond).String()},
		{"Tasks/sec", formatNumber(throughput(rep))},
	}
	for _, row := range rows {
		_ = table.Append(row[0], row[1])
	}

	if err := table.Render(); err != nil {
		_, _ = red.Fprintln(out, "Error in rendering results table")
	}

	_, _ = fmt.Fprintln(out)
	if rep.consistent() {
		_, _ = green.Fprintf(out, "OK: every accepted task ran exactly once (%d)\n", rep.Accepted)
	} else {
		_, _ = red.Fprintf(out, "MISMATCH: %d tasks ran, %d were accepted\n", rep.Executed, rep.Accepted)
	}
}

func printSectionHeader(out io.Writer, title string, descriptions ...string) {
	_, _ = fmt.Fprintln(out)
	_, _ = bold.Fprintln(out, "═══════════════════════════════════════════════════════════")
	_, _ = bold.Fprintln(out, title)
	_, _ = bold.Fprintln(out, "═══════════════════════════════════════════════════════════")
	for _, desc := range descriptions {
		_, _ = fmt.Fprintln(out, desc)
	}
	_, _ = fmt.Fprintln(out)
}

func throughput(rep report) int64 {
	if rep.Elapsed <= 0 {
		return 0
	}
	return int64(float64(rep.Accepted) / rep.Elapsed.Seconds())
}

// formatNumber adds thousands separators: 1234567 -> 1,234,567.
func formatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if len(s) <= 3 {
		return s
	}

	var out []byte
	pre := len(s) % 3
	if pre > 0 {
		out = append(out, s[:pre]...)
	}
	for i := pre; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
