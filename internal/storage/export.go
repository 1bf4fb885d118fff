package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/sim"
)

type ExportData struct {
	Equation string             `json:"equation"`
	Method   string             `json:"method"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Steps    int                `json:"steps"`
	Times    []float64          `json:"times"`
	States   [][]float64        `json:"states"`
	Aux      [][][]float64      `json:"aux,omitempty"`
	Metrics  map[string]float64 `json:"metrics"`
}

// ExportJSON writes the whole trajectory as one indented JSON document.
func ExportJSON(w io.Writer, equation string, dt, duration float64, result *sim.Result) error {
	data := ExportData{
		Equation: equation,
		Method:   result.Method,
		Dt:       dt,
		Duration: duration,
		Steps:    result.StepsTaken,
		Times:    result.Times,
		States:   make([][]float64, len(result.States)),
		Metrics:  result.Metrics,
	}
	for i, s := range result.States {
		data.States[i] = dynamo.Float64s(s)
	}
	for _, aux := range result.Aux {
		if len(aux) == 0 {
			continue
		}
		row := make([][]float64, len(aux))
		for j, a := range aux {
			row[j] = dynamo.Float64s(a)
		}
		data.Aux = append(data.Aux, row)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteCSV writes one row per recorded state: the time, the state
// components x0..xn and the flattened auxiliary returns a0..am of the step
// taken from that state. The final row has no auxiliary values.
func WriteCSV(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)
	if len(result.States) == 0 {
		cw.Flush()
		return cw.Error()
	}

	header := []string{"time"}
	for i := 0; i < result.States[0].Len(); i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	numAux := 0
	if len(result.Aux) > 0 {
		numAux = len(flatten(result.Aux[0]))
		for i := 0; i < numAux; i++ {
			header = append(header, fmt.Sprintf("a%d", i))
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, s := range result.States {
		row := []string{formatFloat(result.Times[i])}
		for _, val := range dynamo.Float64s(s) {
			row = append(row, formatFloat(val))
		}
		if numAux > 0 {
			var aux []float64
			if i < len(result.Aux) {
				aux = flatten(result.Aux[i])
			}
			for j := 0; j < numAux; j++ {
				if j < len(aux) {
					row = append(row, formatFloat(aux[j]))
				} else {
					row = append(row, "")
				}
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func flatten(vs []dynamo.Value) []float64 {
	var out []float64
	for _, v := range vs {
		out = append(out, dynamo.Float64s(v)...)
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
