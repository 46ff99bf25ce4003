package conditional

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPSD_Calculate(t *testing.T) {
	// Controls: three raw values followed by two PSD outputs.
	psd, err := NewPSD(
		[]uint16{3, 3, 4},
		[]uint16{0, 1, 2},
		[]float32{1, 2, 4},
		3, 2,
	)
	require.NoError(t, err)
	assert.Equal(t, 2, psd.Count())

	controls := []float32{0.5, 0.25, 0.5, 9, 9}
	psd.Calculate(controls)
	assert.InDelta(t, 0.25, controls[3], 1e-6) // 0.5 * (2*0.25)
	assert.InDelta(t, 1.0, controls[4], 1e-6)  // 4*0.5 clamped
}

func TestPSD_RowWithoutEntries(t *testing.T) {
	psd, err := NewPSD([]uint16{1}, []uint16{0}, []float32{1}, 1, 2)
	require.NoError(t, err)

	controls := []float32{0.5, 7, 7}
	psd.Calculate(controls)
	assert.Equal(t, []float32{0.5, 0.5, 0}, controls)
}

func TestPSD_LengthMismatch(t *testing.T) {
	_, err := NewPSD([]uint16{1, 2}, []uint16{0}, []float32{1, 1}, 1, 2)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestPSD_ShortControls(t *testing.T) {
	psd, err := NewPSD([]uint16{3}, []uint16{9}, []float32{1}, 3, 1)
	require.NoError(t, err)
	assert.NotPanics(t, func() { psd.Calculate([]float32{1, 1, 1}) })
	assert.NotPanics(t, func() { psd.Calculate([]float32{1, 1, 1, 1}) })
}
