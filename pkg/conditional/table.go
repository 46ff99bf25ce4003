// Package conditional evaluates piecewise-linear conditional tables: sparse
// mappings from an input vector to an output vector where each segment
// contributes slope*x+cut to one output while its input lies in [from, to].
package conditional

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch is returned when the segment arrays differ in length.
var ErrLengthMismatch = errors.New("conditional: segment arrays differ in length")

// Data holds the segments of a table as parallel arrays.
type Data struct {
	InputIndices  []uint16
	OutputIndices []uint16
	FromValues    []float32
	ToValues      []float32
	SlopeValues   []float32
	CutValues     []float32
	InputCount    uint16
	OutputCount   uint16
}

// Table is an immutable, precomputed conditional table. It is safe for
// concurrent use.
type Table struct {
	data Data
	// skip[i] is the number of following segments sharing segment i's
	// input and output. Once a segment of such a run matches, the rest of
	// the run is skipped.
	skip []uint16
}

// New validates data and precomputes the skip array. The table keeps
// references to data's slices.
func New(data Data) (*Table, error) {
	n := len(data.InputIndices)
	lengths := [...]int{
		len(data.OutputIndices),
		len(data.FromValues),
		len(data.ToValues),
		len(data.SlopeValues),
		len(data.CutValues),
	}
	for _, l := range lengths {
		if l != n {
			return nil, fmt.Errorf("%w: %d inputs, lengths %v", ErrLengthMismatch, n, lengths)
		}
	}
	return &Table{data: data, skip: buildSkip(data.InputIndices, data.OutputIndices)}, nil
}

// buildSkip computes run countdowns in one pass: a maximal run of k
// segments with the same (input, output) gets k-1, k-2, ..., 0.
func buildSkip(inputs, outputs []uint16) []uint16 {
	skip := make([]uint16, len(inputs))
	start := 0
	for i := 1; i <= len(inputs); i++ {
		if i < len(inputs) && inputs[i] == inputs[start] && outputs[i] == outputs[start] {
			continue
		}
		for j := start; j < i; j++ {
			skip[j] = uint16(i - 1 - j)
		}
		start = i
	}
	return skip
}

// Len returns the number of segments.
func (t *Table) Len() int {
	return len(t.data.InputIndices)
}

// InputCount returns the declared input vector length.
func (t *Table) InputCount() int {
	return int(t.data.InputCount)
}

// OutputCount returns the declared output vector length.
func (t *Table) OutputCount() int {
	return int(t.data.OutputCount)
}

// Calculate evaluates every segment.
func (t *Table) Calculate(inputs, outputs []float32) {
	t.CalculateChunk(inputs, outputs, t.Len())
}

// CalculateChunk evaluates the first chunkSize segments. The first
// OutputCount outputs are zeroed, accumulated and clamped to [0, 1].
// Segments whose input or output index falls outside the given slices are
// ignored.
func (t *Table) CalculateChunk(inputs, outputs []float32, chunkSize int) {
	declared := min(int(t.data.OutputCount), len(outputs))
	clear(outputs[:declared])

	d := &t.data
	n := min(chunkSize, t.Len())
	for i := 0; i < n; i++ {
		in, out := int(d.InputIndices[i]), int(d.OutputIndices[i])
		if in >= len(inputs) || out >= len(outputs) {
			continue
		}
		v := inputs[in]
		if d.FromValues[i] <= v && v <= d.ToValues[i] {
			outputs[out] += d.SlopeValues[i]*v + d.CutValues[i]
			i += int(t.skip[i])
		}
	}

	for i := range outputs[:declared] {
		outputs[i] = clamp01(outputs[i])
	}
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
