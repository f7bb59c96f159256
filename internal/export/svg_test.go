package export

import (
	"math"
	"strings"
	"testing"
)

func TestSeriesToSVG(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	series := []Series{
		{Name: "S", Values: []float64{1, 0.8, 0.5, 0.4}},
		{Name: "I", Values: []float64{0, 0.15, 0.3, 0.2}},
		{Name: "R<1>", Color: "#123456", Values: []float64{0, 0.05, 0.2, 0.4}},
	}

	svg, err := SeriesToSVG(x, series, 400, 200)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("expected a complete SVG document")
	}
	if n := strings.Count(svg, "<polyline"); n != 3 {
		t.Errorf("expected 3 polylines, got %d", n)
	}
	if !strings.Contains(svg, Palette[0]) || !strings.Contains(svg, "#123456") {
		t.Error("expected palette and explicit colors")
	}
	if !strings.Contains(svg, "R&lt;1&gt;") {
		t.Error("expected escaped legend text")
	}
}

func TestSeriesToSVGSkipsNonFinite(t *testing.T) {
	x := []float64{0, 1, 2}
	svg, err := SeriesToSVG(x, []Series{{Name: "y", Values: []float64{0, math.NaN(), 1}}}, 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(svg, "NaN") {
		t.Error("NaN leaked into output")
	}
}

func TestSeriesToSVGErrors(t *testing.T) {
	tests := []struct {
		name   string
		x      []float64
		series []Series
	}{
		{"too few points", []float64{0}, []Series{{Name: "y", Values: []float64{1}}}},
		{"no series", []float64{0, 1}, nil},
		{"length mismatch", []float64{0, 1}, []Series{{Name: "y", Values: []float64{1}}}},
		{"all nan", []float64{0, 1}, []Series{{Name: "y", Values: []float64{math.NaN(), math.NaN()}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SeriesToSVG(tt.x, tt.series, 100, 100); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	svg := TrajectoryToSVG([]float64{0, 1, 0}, []float64{1, 0, -1}, 100, 100, "#00ff00")
	if !strings.Contains(svg, `d="M`) || strings.Count(svg, " L") != 2 {
		t.Errorf("unexpected path: %s", svg)
	}
	if TrajectoryToSVG([]float64{0}, []float64{0}, 100, 100, "#fff") != "" {
		t.Error("expected empty output for a single point")
	}
}
