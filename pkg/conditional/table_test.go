package conditional

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoSegment() Data {
	return Data{
		InputIndices:  []uint16{0, 0},
		OutputIndices: []uint16{0, 0},
		FromValues:    []float32{0.0, 0.5},
		ToValues:      []float32{0.5, 1.0},
		SlopeValues:   []float32{1.0, 1.0},
		CutValues:     []float32{0.0, -0.5},
		InputCount:    1,
		OutputCount:   1,
	}
}

func TestCalculate_PiecewiseSegments(t *testing.T) {
	table, err := New(twoSegment())
	require.NoError(t, err)

	tests := []struct {
		input float32
		want  float32
	}{
		{0.3, 0.3},
		{0.8, 0.3},
		{0.5, 0.5}, // boundary matches the first segment only
		{0.0, 0.0},
		{1.0, 0.5},
	}

	for _, tt := range tests {
		out := []float32{0.9}
		table.Calculate([]float32{tt.input}, out)
		assert.InDelta(t, tt.want, out[0], 1e-6, "input %v", tt.input)
	}
}

func TestNew_LengthMismatch(t *testing.T) {
	d := twoSegment()
	d.CutValues = d.CutValues[:1]
	_, err := New(d)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestBuildSkip(t *testing.T) {
	tests := []struct {
		name    string
		inputs  []uint16
		outputs []uint16
		want    []uint16
	}{
		{"empty", nil, nil, []uint16{}},
		{"single", []uint16{0}, []uint16{0}, []uint16{0}},
		{"one run", []uint16{1, 1, 1}, []uint16{2, 2, 2}, []uint16{2, 1, 0}},
		{"mixed", []uint16{0, 0, 1, 0, 0}, []uint16{0, 0, 0, 0, 1}, []uint16{1, 0, 0, 0, 0}},
		{"same input other output", []uint16{0, 0}, []uint16{0, 1}, []uint16{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildSkip(tt.inputs, tt.outputs))
		})
	}
}

func TestCalculate_ClampsAndZeroes(t *testing.T) {
	table, err := New(Data{
		InputIndices:  []uint16{0, 1},
		OutputIndices: []uint16{0, 1},
		FromValues:    []float32{-10, -10},
		ToValues:      []float32{10, 10},
		SlopeValues:   []float32{3, -3},
		CutValues:     []float32{0, 0},
		InputCount:    2,
		OutputCount:   3,
	})
	require.NoError(t, err)

	out := []float32{7, 7, 7, 7}
	table.Calculate([]float32{1, 1}, out)
	assert.Equal(t, []float32{1, 0, 0, 7}, out, "declared outputs are cleared and clamped, the rest untouched")
}

func TestCalculate_OutOfRangeIndices(t *testing.T) {
	table, err := New(Data{
		InputIndices:  []uint16{5, 0},
		OutputIndices: []uint16{0, 9},
		FromValues:    []float32{0, 0},
		ToValues:      []float32{1, 1},
		SlopeValues:   []float32{1, 1},
		CutValues:     []float32{0, 0},
		OutputCount:   1,
	})
	require.NoError(t, err)

	out := []float32{0.4}
	assert.NotPanics(t, func() { table.Calculate([]float32{0.5}, out) })
	assert.Equal(t, float32(0), out[0])
}

func TestCalculateChunk(t *testing.T) {
	table, err := New(Data{
		InputIndices:  []uint16{0, 0},
		OutputIndices: []uint16{0, 1},
		FromValues:    []float32{0, 0},
		ToValues:      []float32{1, 1},
		SlopeValues:   []float32{1, 1},
		CutValues:     []float32{0, 0},
		OutputCount:   2,
	})
	require.NoError(t, err)

	out := make([]float32, 2)
	table.CalculateChunk([]float32{0.25}, out, 1)
	assert.Equal(t, []float32{0.25, 0}, out)

	table.CalculateChunk([]float32{0.25}, out, 100)
	assert.Equal(t, []float32{0.25, 0.25}, out)
}

// naive checks every segment and accumulates every match.
func naive(d Data, inputs []float32) []float32 {
	out := make([]float32, d.OutputCount)
	for i := range d.InputIndices {
		v := inputs[d.InputIndices[i]]
		if d.FromValues[i] <= v && v <= d.ToValues[i] {
			out[d.OutputIndices[i]] += d.SlopeValues[i]*v + d.CutValues[i]
		}
	}
	for i := range out {
		out[i] = clamp01(out[i])
	}
	return out
}

// partitionedRuns builds runs of segments sharing (input, output) whose
// ranges split [-1, 1] into disjoint pieces of random length. Adjacent runs
// never share a pair, so a run is exactly one partition.
func partitionedRuns(rng *rand.Rand, inputs, outputs int) Data {
	d := Data{InputCount: uint16(inputs), OutputCount: uint16(outputs)}
	in, out := -1, -1
	for range rng.IntN(6) {
		for {
			i, o := rng.IntN(inputs), rng.IntN(outputs)
			if i != in || o != out {
				in, out = i, o
				break
			}
		}

		cuts := []float32{-1, 1}
		for range rng.IntN(5) {
			cuts = append(cuts, rng.Float32()*2-1)
		}
		slices.Sort(cuts)
		cuts = slices.Compact(cuts)
		for k := 0; k+1 < len(cuts); k++ {
			to := cuts[k+1]
			if k+2 < len(cuts) {
				to = math.Nextafter32(to, float32(math.Inf(-1)))
			}
			d.InputIndices = append(d.InputIndices, uint16(in))
			d.OutputIndices = append(d.OutputIndices, uint16(out))
			d.FromValues = append(d.FromValues, cuts[k])
			d.ToValues = append(d.ToValues, to)
			d.SlopeValues = append(d.SlopeValues, rng.Float32()*4-2)
			d.CutValues = append(d.CutValues, rng.Float32()-0.5)
		}
	}
	return d
}

func TestCalculate_MatchesNaive(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for iter := range 200 {
		const inputs, outputs = 4, 3
		d := partitionedRuns(rng, inputs, outputs)

		table, err := New(d)
		require.NoError(t, err)

		x := make([]float32, inputs)
		for i := range x {
			x[i] = rng.Float32()*2 - 1
		}
		got := make([]float32, outputs)
		table.Calculate(x, got)

		want := naive(d, x)
		for i := range want {
			assert.InDelta(t, want[i], got[i], 1e-6, "iteration %d output %d", iter, i)
			assert.GreaterOrEqual(t, got[i], float32(0))
			assert.LessOrEqual(t, got[i], float32(1))
		}

		again := make([]float32, outputs)
		table.Calculate(x, again)
		assert.Equal(t, got, again, "evaluation is deterministic")
	}
}
