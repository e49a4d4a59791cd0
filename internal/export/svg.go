// Package export renders run traces to standalone SVG documents.
package export

import (
	"fmt"
	"os"
	"strings"
)

// Series is one named polyline in a trace plot.
type Series struct {
	Name   string
	Values []float64
	Color  string
}

// TraceSVG plots one or more series over a shared time axis. Each series
// is scaled to its own vertical range so conserved quantities with very
// different magnitudes stay readable on one plot.
func TraceSVG(times []float64, series []Series, width, height int) string {
	if len(times) < 2 || len(series) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	tMin, tMax := times[0], times[len(times)-1]
	tRange := tMax - tMin
	if tRange == 0 {
		tRange = 1
	}

	for si, s := range series {
		if len(s.Values) < 2 {
			continue
		}

		vMin, vMax := s.Values[0], s.Values[0]
		for _, v := range s.Values {
			if v < vMin {
				vMin = v
			}
			if v > vMax {
				vMax = v
			}
		}
		vRange := vMax - vMin
		if vRange == 0 {
			vRange = 1
		}
		vMin -= vRange * 0.1
		vRange *= 1.2

		color := s.Color
		if color == "" {
			color = "#00ff88"
		}

		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		n := len(s.Values)
		if n > len(times) {
			n = len(times)
		}
		for i := 0; i < n; i++ {
			x := (times[i] - tMin) / tRange * float64(width)
			y := float64(height) - (s.Values[i]-vMin)/vRange*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")

		sb.WriteString(fmt.Sprintf(
			`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>`+"\n",
			16+si*16, color, s.Name))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// WriteTraceSVG renders and writes the plot in one call.
func WriteTraceSVG(path string, times []float64, series []Series, width, height int) error {
	doc := TraceSVG(times, series, width, height)
	if doc == "" {
		return fmt.Errorf("export: not enough data to plot")
	}
	return os.WriteFile(path, []byte(doc), 0644)
}
