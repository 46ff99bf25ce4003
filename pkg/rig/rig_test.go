package rig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/rigdna/pkg/dna"
	"github.com/Faultbox/rigdna/pkg/dna/dnatest"
)

func loadAsset(t *testing.T, layer dna.DataLayer) *dna.RigAsset {
	t.Helper()
	s, err := dnatest.Open()
	require.NoError(t, err)
	r := dna.NewReader(s, layer, 0)
	require.NoError(t, r.Read())
	t.Cleanup(func() { r.Close() })
	return r.Asset()
}

func TestEvaluate(t *testing.T) {
	inst, err := New(loadAsset(t, dna.LayerBehavior), 0)
	require.NoError(t, err)

	inst.SetGUIControl(0, 0.8)
	inst.SetGUIControl(1, 0.5)
	inst.Evaluate()

	assert.InDeltaSlice(t, []float32{0.8, 0.5, 0.5, 0.25}, inst.RawControls(), 1e-6)
	assert.InDeltaSlice(t, []float32{0.8, 0.5}, inst.BlendShapeWeights(), 1e-6)
	assert.InDeltaSlice(t, []float32{0.6}, inst.AnimatedMapOutputs(), 1e-6)

	joints := inst.JointOutputs()
	require.Len(t, joints, 36)
	assert.InDelta(t, -16, joints[12], 1e-5)
	assert.InDelta(t, 0.4625, joints[13], 1e-6)
	assert.InDelta(t, 0.375, joints[18], 1e-6)
	assert.InDelta(t, 0.375, joints[27], 1e-6)
	assert.Zero(t, joints[0])
}

func TestEvaluateAtLowerLOD(t *testing.T) {
	inst, err := New(loadAsset(t, dna.LayerBehavior), 2)
	require.NoError(t, err)
	assert.Equal(t, uint16(2), inst.LOD())

	inst.SetGUIControl(0, 0.8)
	inst.SetGUIControl(1, 0.5)
	inst.Evaluate()

	assert.InDeltaSlice(t, []float32{0.8, 0}, inst.BlendShapeWeights(), 1e-6)
	joints := inst.JointOutputs()
	assert.InDelta(t, -16, joints[12], 1e-5)
	assert.Zero(t, joints[13])
	assert.Zero(t, joints[18])
}

func TestRawControlOverride(t *testing.T) {
	inst, err := New(loadAsset(t, dna.LayerBehavior), 0)
	require.NoError(t, err)

	inst.SetGUIControl(0, 0.8)
	inst.Evaluate()

	inst.SetRawControl(0, 0.2)
	inst.Evaluate()
	assert.InDelta(t, 0.2, inst.BlendShapeWeights()[0], 1e-6)
	assert.Zero(t, inst.AnimatedMapOutputs()[0], "0.2 is below the animated map segment")

	// A new GUI value maps over the raw override.
	inst.SetGUIControl(0, 1)
	inst.Evaluate()
	assert.InDelta(t, 1, inst.RawControls()[0], 1e-6)
}

func TestIgnoresOutOfRangeControls(t *testing.T) {
	inst, err := New(loadAsset(t, dna.LayerBehavior), 0)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		inst.SetGUIControl(-1, 1)
		inst.SetGUIControl(99, 1)
		inst.SetRawControl(3, 1) // PSD outputs are not settable
		inst.Evaluate()
	})
	assert.Zero(t, inst.RawControls()[3])
}

func TestNew_LODOutOfRange(t *testing.T) {
	_, err := New(loadAsset(t, dna.LayerBehavior), 3)
	assert.ErrorIs(t, err, ErrLODOutOfRange)
}

func TestNew_WithoutBehavior(t *testing.T) {
	inst, err := New(loadAsset(t, dna.LayerDefinition), 0)
	require.NoError(t, err)
	inst.SetGUIControl(0, 1)
	inst.Evaluate()
	assert.InDeltaSlice(t, []float32{0, 0}, inst.BlendShapeWeights(), 1e-6)
}

func TestNew_MalformedTable(t *testing.T) {
	a := loadAsset(t, dna.LayerBehavior)
	var broken dna.RigAsset
	broken.Descriptor = a.Descriptor
	broken.Behavior.BlendShapeChannels.Table = dna.ConditionalTableData{
		InputIndices: []uint16{0, 1},
		FromValues:   []float32{0},
	}
	_, err := New(&broken, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blend shape table")
}
