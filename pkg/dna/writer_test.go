package dna_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/rigdna/pkg/dna"
	"github.com/Faultbox/rigdna/pkg/dna/dnatest"
)

func TestWriterGrowsIndexedFields(t *testing.T) {
	w := dna.NewWriter(dnatest.NewStream())
	w.SetJointName(2, "lip_r")
	w.SetJointName(0, "root")

	a := w.Asset()
	assert.Equal(t, []string{"root", "", "lip_r"}, a.Definition.JointNames)
	assert.Equal(t, 3, a.JointCount())

	w.SetSkinWeights(1, 2, []float32{1}, []uint16{0})
	assert.True(t, a.HasGeometry)
	assert.Len(t, a.Geometry.Meshes, 2)
	assert.Equal(t, 3, a.SkinWeightsCount(1))
	assert.Equal(t, []float32{1}, a.SkinWeightsValues(1, 2))

	w.ClearMeshes()
	assert.False(t, a.HasGeometry)
	assert.Zero(t, a.SkinWeightsCount(1))
}

func TestWriterMetaData(t *testing.T) {
	w := dna.NewWriter(dnatest.NewStream())
	w.SetMetaData("a", "1")
	w.SetMetaData("b", "2")
	w.SetMetaData("a", "3")

	a := w.Asset()
	require.Equal(t, 2, a.MetaDataCount())
	v, ok := a.MetaDataValue("a")
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	w.RemoveMetaData("a")
	assert.Equal(t, 1, a.MetaDataCount())
	assert.Equal(t, "b", a.MetaDataKey(0))

	w.ClearMetaData()
	assert.Zero(t, a.MetaDataCount())
}

func TestWriterCopiesInput(t *testing.T) {
	w := dna.NewWriter(dnatest.NewStream())
	parents := []uint16{dna.JointRootParent, 0}
	w.SetJointHierarchy(parents)
	parents[1] = 7

	assert.Equal(t, uint16(0), w.Asset().JointParentIndex(1))
}

func TestWriterSetFrom(t *testing.T) {
	_, s := source(t)
	r := dna.NewReader(s, dna.LayerAll, 0)
	require.NoError(t, r.Read())

	out := dnatest.NewStream()
	w := dna.NewWriter(out)
	w.SetFrom(r.Asset())
	want := *w.Asset()

	// The copy must outlive the reader's arena.
	require.NoError(t, r.Close())
	assert.Equal(t, "Ada", w.Asset().Name())
	assert.Equal(t, []uint16{0, 1, 2, 3}, w.Asset().JointIndicesForLOD(0))

	require.NoError(t, w.Write())
	require.NoError(t, out.Seek(0))
	again := dna.NewReader(out, dna.LayerAll, 0)
	require.NoError(t, again.Read())
	defer again.Close()

	assert.Equal(t, want.Descriptor, again.Descriptor)
	assert.Equal(t, want.Definition, again.Definition)
	assert.Equal(t, want.Behavior, again.Behavior)
	assert.Equal(t, want.Geometry, again.Geometry)
}

func TestWriterWithoutGeometry(t *testing.T) {
	s := dnatest.NewStream()
	w := dna.NewWriter(s)
	w.SetName("bare")
	w.SetLODCount(1)
	require.NoError(t, w.Write())

	require.NoError(t, s.Seek(0))
	r := dna.NewReader(s, dna.LayerAll, 0)
	require.NoError(t, r.Read())
	defer r.Close()

	assert.Equal(t, "bare", r.Name())
	assert.False(t, r.HasGeometry)
	assert.Zero(t, r.MeshCount())
}
