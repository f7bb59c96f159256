package export

import (
	"fmt"
	"html"
	"math"
	"strings"
)

// Palette is cycled through for series without an explicit color.
var Palette = []string{"#00ccff", "#ff4444", "#00ff88", "#ffaa00", "#ff00ff", "#ffffff"}

type Series struct {
	Name   string
	Color  string
	Values []float64
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (b *bounds) pad() {
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minY -= rangeY * 0.05
	b.maxY += rangeY * 0.05
	if b.maxX == b.minX {
		b.maxX = b.minX + rangeX
	}
}

func (b bounds) project(x, y float64, width, height int) (float64, float64) {
	px := (x - b.minX) / (b.maxX - b.minX) * float64(width)
	py := float64(height) - (y-b.minY)/(b.maxY-b.minY)*float64(height)
	return px, py
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

// SeriesToSVG draws each series against the shared x axis as a polyline,
// with a legend in the top right corner. Non-finite samples are skipped.
func SeriesToSVG(x []float64, series []Series, width, height int) (string, error) {
	if len(x) < 2 {
		return "", fmt.Errorf("export: need at least 2 points, got %d", len(x))
	}
	if len(series) == 0 {
		return "", fmt.Errorf("export: no series")
	}

	b := bounds{minX: x[0], maxX: x[0], minY: math.Inf(1), maxY: math.Inf(-1)}
	for _, v := range x {
		b.minX = math.Min(b.minX, v)
		b.maxX = math.Max(b.maxX, v)
	}
	for _, s := range series {
		if len(s.Values) != len(x) {
			return "", fmt.Errorf("export: series %q has %d points, x has %d", s.Name, len(s.Values), len(x))
		}
		for _, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			b.minY = math.Min(b.minY, v)
			b.maxY = math.Max(b.maxY, v)
		}
	}
	if math.IsInf(b.minY, 1) {
		return "", fmt.Errorf("export: no finite values")
	}
	b.pad()

	var sb strings.Builder
	header(&sb, width, height)

	for i, s := range series {
		color := s.Color
		if color == "" {
			color = Palette[i%len(Palette)]
		}

		fmt.Fprintf(&sb, `<polyline fill="none" stroke="%s" stroke-width="1.5" points="`, color)
		first := true
		for j, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			px, py := b.project(x[j], v, width, height)
			if !first {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%.1f,%.1f", px, py)
			first = false
		}
		sb.WriteString("\"/>\n")

		fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, width-80, 20+i*16, color, html.EscapeString(s.Name))
	}

	sb.WriteString("</svg>\n")
	return sb.String(), nil
}

// TrajectoryToSVG draws a phase portrait of ys against xs.
func TrajectoryToSVG(xs, ys []float64, width, height int, strokeColor string) string {
	if len(xs) < 2 || len(xs) != len(ys) {
		return ""
	}

	b := bounds{minX: xs[0], maxX: xs[0], minY: ys[0], maxY: ys[0]}
	for i := range xs {
		b.minX = math.Min(b.minX, xs[i])
		b.maxX = math.Max(b.maxX, xs[i])
		b.minY = math.Min(b.minY, ys[i])
		b.maxY = math.Max(b.maxY, ys[i])
	}
	rangeX := b.maxX - b.minX
	if rangeX == 0 {
		rangeX = 1
	}
	b.minX -= rangeX * 0.05
	b.maxX += rangeX * 0.05
	b.pad()

	var sb strings.Builder
	header(&sb, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	for i := range xs {
		px, py := b.project(xs[i], ys[i], width, height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", px, py)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", px, py)
		}
	}

	sb.WriteString(`"/>
</svg>
`)
	return sb.String()
}
