package export

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/san-kum/photonrlc/internal/dynamo"
)

// Series is one curve of an overlay plot.
type Series struct {
	Name   string
	Color  string
	Points []struct{ X, Y float64 }
}

// CurrentSeries takes (time, current) pairs from a trajectory, keeping at most
// maxPoints evenly strided samples plus the last one. maxPoints < 2 keeps all.
func CurrentSeries(name, color string, tr dynamo.Trajectory, maxPoints int) Series {
	s := Series{Name: name, Color: color}
	n := tr.Len()
	if n == 0 {
		return s
	}

	stride := 1
	if maxPoints >= 2 && n > maxPoints {
		stride = (n + maxPoints - 2) / (maxPoints - 1)
	}
	for i := 0; i < n; i += stride {
		s.Points = append(s.Points, struct{ X, Y float64 }{tr.Times[i], tr.States[i][0]})
	}
	if (n-1)%stride != 0 {
		s.Points = append(s.Points, struct{ X, Y float64 }{tr.Times[n-1], tr.States[n-1][0]})
	}
	return s
}

type bounds struct{ minX, maxX, minY, maxY float64 }

func seriesBounds(series []Series) (bounds, bool) {
	var b bounds
	found := false
	for _, s := range series {
		for _, p := range s.Points {
			if !found {
				b = bounds{p.X, p.X, p.Y, p.Y}
				found = true
				continue
			}
			b.minX, b.maxX = min(b.minX, p.X), max(b.maxX, p.X)
			b.minY, b.maxY = min(b.minY, p.Y), max(b.maxY, p.Y)
		}
	}
	if !found {
		return b, false
	}

	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.05
	b.maxX += rangeX * 0.05
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
	return b, true
}

// OverlaySVG draws every series on shared axes with a legend in the top
// left corner. Series with fewer than two points are skipped.
func OverlaySVG(w io.Writer, series []Series, width, height int, title string) error {
	b, ok := seriesBounds(series)
	if !ok {
		return fmt.Errorf("%w: nothing to plot", dynamo.ErrEmptyInput)
	}
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#ffffff"/>
`, width, height, width, height))

	if b.minY <= 0 && b.maxY >= 0 {
		y := float64(height) - (0-b.minY)/rangeY*float64(height)
		sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#cccccc" stroke-width="1"/>
`, y, width, y))
	}

	for _, s := range series {
		if len(s.Points) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, html.EscapeString(s.Color)))
		for i, p := range s.Points {
			x := (p.X - b.minX) / rangeX * float64(width)
			y := float64(height) - (p.Y-b.minY)/rangeY*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString(`"/>
`)
	}

	if title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-family="monospace" font-size="14" text-anchor="middle">%s</text>
`, width/2, html.EscapeString(title)))
	}
	for i, s := range series {
		y := 40 + 18*i
		sb.WriteString(fmt.Sprintf(`<line x1="10" y1="%d" x2="30" y2="%d" stroke="%s" stroke-width="3"/>
<text x="36" y="%d" font-family="monospace" font-size="12">%s</text>
`, y, y, html.EscapeString(s.Color), y+4, html.EscapeString(s.Name)))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// TrialSVG overlays a perturbed run (blue) on its baseline (red).
func TrialSVG(w io.Writer, perturbed, baseline dynamo.Trajectory, width, height int, title string) error {
	return OverlaySVG(w, []Series{
		CurrentSeries("perturbed", "#1f4fd8", perturbed, 4000),
		CurrentSeries("baseline", "#d62728", baseline, 4000),
	}, width, height, title)
}
