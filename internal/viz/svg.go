package viz

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/dynint/internal/analysis"
)

var errTooFewPoints = errors.New("viz: need at least two finite points")

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// CanvasToSVG draws every lit dot of c as a circle of diameter scale.
func CanvasToSVG(c *Canvas, scale float64) string {
	if c == nil {
		return ""
	}
	w, h := c.Dots()
	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, int(float64(w)*scale), int(float64(h)*scale), int(float64(w)*scale), int(float64(h)*scale))
	sb.WriteString("<g fill=\"#00ff00\">\n")
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if c.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, scale*0.4)
			}
		}
	}
	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// WriteTrajectorySVG writes points as one polyline scaled into a
// width x height image with 10% padding. Non-finite points are skipped.
func WriteTrajectorySVG(w io.Writer, points []analysis.Point, width, height int, stroke string) error {
	pts := make([]analysis.Point, 0, len(points))
	for _, p := range points {
		if finite(p.X) && finite(p.Y) {
			pts = append(pts, p)
		}
	}
	if len(pts) < 2 {
		return errTooFewPoints
	}

	minX, maxX, minY, maxY := pts[0].X, pts[0].X, pts[0].Y, pts[0].Y
	for _, p := range pts {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	padX, padY := nonZero(maxX-minX)*0.1, nonZero(maxY-minY)*0.1
	minX, maxX = minX-padX, maxX+padX
	minY, maxY = minY-padY, maxY+padY

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"", stroke)
	for i, p := range pts {
		x := (p.X - minX) / (maxX - minX) * float64(width)
		y := float64(height) - (p.Y-minY)/(maxY-minY)*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
