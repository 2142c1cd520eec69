package cli

import (
	"fmt"
	"io"
	"strings"

	"planbench/internal/model"
	"planbench/internal/service"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

var (
	headerColor  = color.New(color.Bold)
	solvedColor  = color.New(color.FgGreen)
	failedColor  = color.New(color.FgRed)
	timeoutColor = color.New(color.FgYellow)
)

// printTable 按显示宽度对齐（表头含中文）
func printTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && runewidth.StringWidth(cell) > widths[i] {
				widths[i] = runewidth.StringWidth(cell)
			}
		}
	}

	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = runewidth.FillRight(h, widths[i])
	}
	headerColor.Fprintln(w, "  "+strings.Join(cells, "  "))

	for _, row := range rows {
		cells = cells[:0]
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells = append(cells, runewidth.FillRight(cell, widths[i]))
		}
		fmt.Fprintln(w, "  "+strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func printStatus(w io.Writer, report service.StatusReport) {
	fmt.Fprintln(w, "\nOverall Status:")
	fmt.Fprintf(w, "  Total experiments: %d\n", report.Total)
	fmt.Fprintf(w, "  Blacklisted: %d\n", report.Blacklisted)
	fmt.Fprintf(w, "  Completed: %d\n", report.Completed)
	fmt.Fprintf(w, "  Missing: %d\n", report.Missing)

	fmt.Fprintln(w, "\nBy Planner:")
	rows := make([][]string, 0, len(report.ByPlanner))
	for _, ps := range report.ByPlanner {
		rows = append(rows, []string{
			ps.Planner,
			fmt.Sprintf("%d/%d", ps.Solved, ps.Effective),
			fmt.Sprintf("%.1f%%", ps.Rate),
			fmt.Sprintf("%d", ps.Blacklisted),
		})
	}
	printTable(w, []string{"planner", "已求解", "求解率", "黑名单"}, rows)
}

func printBlacklist(w io.Writer, entries []model.ExperimentKey) {
	fmt.Fprintf(w, "\nBlacklisted experiments (%d):\n", len(entries))
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Planner, e.Domain, e.Problem})
	}
	printTable(w, []string{"planner", "domain", "problem"}, rows)
}

func printSummary(w io.Writer, sum *model.RunSummary) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 70))
	headerColor.Fprintln(w, "SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Total experiments: %d\n", sum.TotalPossible)
	fmt.Fprintf(w, "Blacklisted: %d\n", sum.Blacklisted)
	fmt.Fprintf(w, "Already solved: %d\n", sum.ExistingSuccessful)
	fmt.Fprintf(w, "Experiments run: %d\n", sum.ExperimentsRun)
	solvedColor.Fprintf(w, "Newly solved: %d\n", sum.Stats.Solved)
	failedColor.Fprintf(w, "Failed: %d\n", sum.Stats.Failed)
	timeoutColor.Fprintf(w, "Timeout: %d\n", sum.Stats.Timeout)
	fmt.Fprintf(w, "Total solved: %d\n", sum.TotalSolved)
	fmt.Fprintf(w, "Success rate: %.1f%% (excluding blacklisted)\n", sum.SuccessRate)
	fmt.Fprintf(w, "\nSuccessful results saved to: %s/\n", sum.ResultsDirectory)
	fmt.Fprintf(w, "Debug/failed results saved to: %s/\n", sum.DebugDirectory)
}
