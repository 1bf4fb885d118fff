package analysis

import (
	"github.com/san-kum/dynint/internal/sim"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds two components of a recorded run.
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
}

// NewPhasePortrait extracts components xIdx and yIdx of every recorded
// state, or returns nil when the state is too short.
func NewPhasePortrait(result *sim.Result, xIdx, yIdx int) *PhasePortrait2D {
	if len(result.States) == 0 {
		return nil
	}
	if n := result.States[0].Len(); xIdx >= n || yIdx >= n {
		return nil
	}

	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, len(result.States)),
	}
	for _, s := range result.States {
		portrait.Points = append(portrait.Points, Point{X: s.At(xIdx), Y: s.At(yIdx)})
	}
	return portrait
}

// PoincareSection records (recordX, recordY) each time component crossIdx
// crosses threshold upwards.
func PoincareSection(result *sim.Result, crossIdx int, threshold float64, recordX, recordY int) []Point {
	var points []Point
	for i := 1; i < len(result.States); i++ {
		prev, curr := result.States[i-1].At(crossIdx), result.States[i].At(crossIdx)
		if prev < threshold && curr >= threshold {
			s := result.States[i]
			points = append(points, Point{X: s.At(recordX), Y: s.At(recordY)})
		}
	}
	return points
}

// PhasePortraitToASCII plots the points with 10% padding and draws the axes
// when they are in view.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 1 || height <= 1 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := newCanvas(width, height)
	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}
	return canvasString(canvas)
}
