package conditional

import "fmt"

// PSD evaluates pose-space-deformation outputs: each output is the product
// of value*input over the matrix entries sharing its row.
type PSD struct {
	rows    []uint16
	columns []uint16
	values  []float32
	base    int // first PSD row, equal to the raw control count
	count   int
}

// NewPSD creates a PSD evaluator. Rows are absolute indices into the
// control vector, starting at base; count is the number of PSD outputs.
func NewPSD(rows, columns []uint16, values []float32, base, count int) (*PSD, error) {
	if len(columns) != len(rows) || len(values) != len(rows) {
		return nil, fmt.Errorf("%w: %d rows, %d columns, %d values",
			ErrLengthMismatch, len(rows), len(columns), len(values))
	}
	return &PSD{rows: rows, columns: columns, values: values, base: base, count: count}, nil
}

// Count returns the number of PSD outputs.
func (p *PSD) Count() int {
	return p.count
}

// Calculate writes the PSD outputs into controls[base:base+count], reading
// inputs from the same vector. Outputs are clamped to [0, 1]; outputs with
// no entries are 0.
func (p *PSD) Calculate(controls []float32) {
	end := min(p.base+p.count, len(controls))
	if p.base >= end {
		return
	}
	out := controls[p.base:end]
	touched := make([]bool, len(out))
	acc := make([]float32, len(out))

	for k, row := range p.rows {
		r := int(row) - p.base
		col := int(p.columns[k])
		if r < 0 || r >= len(out) || col >= len(controls) {
			continue
		}
		term := p.values[k] * controls[col]
		if !touched[r] {
			acc[r], touched[r] = term, true
		} else {
			acc[r] *= term
		}
	}
	for i := range out {
		out[i] = clamp01(acc[i])
	}
}
