package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/pjournal/internal/constants"
	"github.com/julianstephens/pjournal/internal/models"
)

var (
	axisStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	TitleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	weightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8884d8")).Bold(true)
	repsStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#82ca9d"))
)

const (
	minWidth  = 10
	minHeight = 4
	gutter    = 8
)

// Render draws average weight per session as a terminal line chart with
// total reps listed under it. Points with a non-finite average are left out.
func Render(points []Point, width, height int) string {
	points = finitePoints(points)
	if len(points) == 0 {
		return axisStyle.Render("No data to chart.")
	}
	width = max(width-gutter, minWidth)
	height = max(height, minHeight)

	cols := len(points)
	if cols > width {
		cols = width
	}
	plotted := resample(points, cols)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range plotted {
		lo = math.Min(lo, p.AvgWeight)
		hi = math.Max(hi, p.AvgWeight)
	}
	span := hi - lo
	if span <= 0 || !finite(span) {
		span = 0
	}

	grid := make([][]string, height)
	for r := range grid {
		grid[r] = make([]string, cols)
		for c := range grid[r] {
			grid[r][c] = " "
		}
	}
	for c, p := range plotted {
		frac := 0.0
		if span > 0 {
			frac = (p.AvgWeight - lo) / span
		}
		row := height - 1 - int(math.Round(frac*float64(height-1)))
		row = min(max(row, 0), height-1)
		grid[row][c] = weightStyle.Render("●")
	}

	var b strings.Builder
	for r := range grid {
		label := ""
		switch r {
		case 0:
			label = models.FormatNumber(hi)
		case height - 1:
			label = models.FormatNumber(lo)
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s │", gutter-2, label)))
		b.WriteString(strings.Join(grid[r], ""))
		b.WriteString("\n")
	}
	b.WriteString(axisStyle.Render(strings.Repeat(" ", gutter-1) + "└" + strings.Repeat("─", cols)))
	b.WriteString("\n")

	first := plotted[0].Date.Format(constants.DateFormat)
	last := plotted[len(plotted)-1].Date.Format(constants.DateFormat)
	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s%s  ..  %s", gutter, "", first, last)))
	b.WriteString("\n\n")

	for _, p := range points {
		b.WriteString(fmt.Sprintf("%s  %s  %s\n",
			p.Date.Format(constants.DateFormat),
			weightStyle.Render(fmt.Sprintf("avg %s", models.FormatNumber(p.AvgWeight))),
			repsStyle.Render(fmt.Sprintf("reps %s", models.FormatNumber(p.TotalReps))),
		))
	}
	return b.String()
}

func finitePoints(points []Point) []Point {
	out := points[:0:0]
	for _, p := range points {
		if finite(p.AvgWeight, p.TotalReps) {
			out = append(out, p)
		}
	}
	return out
}

// resample picks n evenly spaced points, keeping the first and last.
func resample(points []Point, n int) []Point {
	if n >= len(points) {
		return points
	}
	if n == 1 {
		return points[len(points)-1:]
	}
	out := make([]Point, n)
	step := float64(len(points)-1) / float64(n-1)
	for i := range out {
		out[i] = points[int(math.Round(float64(i)*step))]
	}
	return out
}
