package analysis

import (
	"context"
	"strings"

	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/sim"
)

// BifurcationPoint holds the distinct long-run values of a component for
// one argument value.
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

// ArgSweep replaces argument argIndex by each of params, discards the
// first transient time units of the run and records the distinct values
// (to 1e-3) of component over the following record time units.
func ArgSweep(
	stepper sim.Stepper,
	args []dynamo.Value,
	argIndex int,
	params []float64,
	component int,
	y0 dynamo.Value,
	transient, record float64,
) ([]BifurcationPoint, error) {
	results := make([]BifurcationPoint, 0, len(params))
	skip := sim.Steps(transient, stepper.Dt())

	for _, param := range params {
		swept := append([]dynamo.Value(nil), args...)
		swept[argIndex] = dynamo.Scalar(param)

		res, err := sim.New(stepper).Run(context.Background(), y0, sim.Config{
			Duration: transient + record,
			Args:     swept,
		})
		if err != nil {
			return nil, err
		}

		values := make([]float64, 0, 16)
		seen := make(map[int]bool)
		for i := skip; i < len(res.States); i++ {
			val := res.States[i].At(component)
			key := int(val * 1000)
			if !seen[key] {
				seen[key] = true
				values = append(values, val)
			}
		}
		results = append(results, BifurcationPoint{Param: param, Values: values})
	}
	return results, nil
}

// BifurcationToASCII plots the sweep with one column band per parameter.
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	foundFirst := false
	for _, p := range data {
		for _, v := range p.Values {
			if !foundFirst {
				minVal, maxVal = v, v
				foundFirst = true
				continue
			}
			minVal = min(minVal, v)
			maxVal = max(maxVal, v)
		}
	}
	if !foundFirst {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := newCanvas(width, height)
	for i, p := range data {
		col := min(i*width/len(data), width-1)
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}
	return canvasString(canvas)
}

func newCanvas(width, height int) [][]rune {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	return canvas
}

func canvasString(canvas [][]rune) string {
	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
