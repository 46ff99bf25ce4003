// Package dnatest builds small synthetic rigs for tests.
//
// The rig has three LODs, two GUI controls driving three raw controls, one
// PSD output, four joints in two joint groups, two blend-shape channels, one
// animated map and one triangle mesh per LOD.
package dnatest

import (
	"github.com/Faultbox/rigdna/pkg/dna"
	"github.com/Faultbox/rigdna/pkg/stream"
)

// Populate fills w with the synthetic rig.
func Populate(w *dna.Writer) {
	w.SetName("Ada")
	w.SetArchetype(dna.ArchetypeOther)
	w.SetGender(dna.GenderFemale)
	w.SetAge(42)
	w.SetMetaData("origin", "synthetic")
	w.SetMetaData("rig", "face")
	w.SetTranslationUnit(dna.TranslationUnitCM)
	w.SetRotationUnit(dna.RotationUnitDegrees)
	w.SetCoordinateSystem(dna.CoordinateSystem{X: dna.DirectionRight, Y: dna.DirectionUp, Z: dna.DirectionFront})
	w.SetLODCount(3)
	w.SetDBMaxLOD(3)
	w.SetDBComplexity("Rig")
	w.SetDBName("SyntheticDB")

	for i, n := range []string{"gui_jaw", "gui_smile"} {
		w.SetGUIControlName(i, n)
	}
	for i, n := range []string{"jaw_open", "smile_l", "smile_r"} {
		w.SetRawControlName(i, n)
	}
	for i, n := range []string{"root", "jaw", "lip_l", "lip_r"} {
		w.SetJointName(i, n)
	}
	for i, n := range []string{"jaw_open_bs", "smile_bs"} {
		w.SetBlendShapeChannelName(i, n)
	}
	w.SetAnimatedMapName(0, "wrinkle_forehead")
	for i, n := range []string{"head_lod0", "head_lod1", "head_lod2"} {
		w.SetMeshName(i, n)
	}

	w.SetJointIndices(0, []uint16{0, 1, 2, 3})
	w.SetJointIndices(1, []uint16{0, 1})
	for lod, list := range []uint16{0, 1, 1} {
		w.SetLODJointMapping(uint16(lod), list)
	}
	w.SetBlendShapeChannelIndices(0, []uint16{0, 1})
	w.SetBlendShapeChannelIndices(1, []uint16{0})
	for lod, list := range []uint16{0, 0, 1} {
		w.SetLODBlendShapeChannelMapping(uint16(lod), list)
	}
	w.SetAnimatedMapIndices(0, []uint16{0})
	for lod := range 3 {
		w.SetLODAnimatedMapMapping(uint16(lod), 0)
	}
	for lod := range 3 {
		w.SetMeshIndices(lod, []uint16{uint16(lod)})
		w.SetLODMeshMapping(uint16(lod), uint16(lod))
	}
	w.SetMeshBlendShapeChannelMapping(0, 0, 0)
	w.SetMeshBlendShapeChannelMapping(1, 0, 1)
	w.SetMeshBlendShapeChannelMapping(2, 1, 0)

	w.SetJointHierarchy([]uint16{dna.JointRootParent, 0, 1, 1})
	w.SetNeutralJointTranslations(dna.Vector3s{
		Xs: []float32{0, 0, 1.5, -1.5},
		Ys: []float32{150, -4, -6, -6},
		Zs: []float32{0, 2, 8, 8},
	})
	w.SetNeutralJointRotations(dna.Vector3s{
		Xs: []float32{0, 10, 0, 0},
		Ys: []float32{0, 0, 5, -5},
		Zs: []float32{0, 0, 0, 0},
	})

	// gui_jaw drives jaw_open; gui_smile drives both smile corners.
	w.SetGUIToRawTable(dna.ConditionalTableData{
		InputIndices:  []uint16{0, 1, 1},
		OutputIndices: []uint16{0, 1, 2},
		FromValues:    []float32{0, 0, 0},
		ToValues:      []float32{1, 1, 1},
		SlopeValues:   []float32{1, 1, 1},
		CutValues:     []float32{0, 0, 0},
		InputCount:    2,
		OutputCount:   3,
	})
	// PSD output 3 = smile_l * smile_r.
	w.SetPSD(1, []uint16{3, 3}, []uint16{1, 2}, []float32{1, 1})

	w.SetJointRowCount(36)
	w.SetJointColumnCount(4)
	w.SetJointGroup(0, dna.JointGroup{
		LODs:          []uint16{2, 1, 1},
		InputIndices:  []uint16{0, 3},
		OutputIndices: []uint16{12, 13},
		JointIndices:  []uint16{1},
		Values:        []float32{-20, 0, 0.5, 0.25},
	})
	w.SetJointGroup(1, dna.JointGroup{
		LODs:          []uint16{2, 2, 0},
		InputIndices:  []uint16{1},
		OutputIndices: []uint16{18, 27},
		JointIndices:  []uint16{2, 3},
		Values:        []float32{0.75, 0.75},
	})

	w.SetBlendShapeChannelLODs([]uint16{2, 2, 1})
	w.SetBlendShapeChannelTable(dna.ConditionalTableData{
		InputIndices:  []uint16{0, 3},
		OutputIndices: []uint16{0, 1},
		FromValues:    []float32{0, 0},
		ToValues:      []float32{1, 1},
		SlopeValues:   []float32{1, 2},
		CutValues:     []float32{0, 0},
		InputCount:    4,
		OutputCount:   2,
	})
	w.SetAnimatedMapLODs([]uint16{1, 1, 1})
	w.SetAnimatedMapTable(dna.ConditionalTableData{
		InputIndices:  []uint16{0},
		OutputIndices: []uint16{0},
		FromValues:    []float32{0.5},
		ToValues:      []float32{1},
		SlopeValues:   []float32{2},
		CutValues:     []float32{-1},
		InputCount:    4,
		OutputCount:   1,
	})

	for mesh := range 3 {
		scale := float32(mesh + 1)
		w.SetVertexPositions(mesh, dna.Vector3s{
			Xs: []float32{0, scale, 0},
			Ys: []float32{0, 0, scale},
			Zs: []float32{0, 0, 0},
		})
		w.SetVertexTextureCoordinates(mesh, dna.TextureCoordinates{
			Us: []float32{0, 1, 0},
			Vs: []float32{0, 0, 1},
		})
		w.SetVertexNormals(mesh, dna.Vector3s{
			Xs: []float32{0, 0, 0},
			Ys: []float32{0, 0, 0},
			Zs: []float32{1, 1, 1},
		})
		w.SetVertexLayouts(mesh, dna.VertexLayouts{
			Positions:          []uint32{0, 1, 2},
			TextureCoordinates: []uint32{0, 1, 2},
			Normals:            []uint32{0, 1, 2},
		})
		w.SetFaceVertexLayoutIndices(mesh, 0, []uint32{0, 1, 2})
		w.SetMaximumInfluencePerVertex(mesh, 2)
		for v := range 3 {
			w.SetSkinWeights(mesh, v, []float32{0.5, 0.5}, []uint16{0, 1})
		}
	}
	w.SetBlendShapeTarget(0, 0, dna.BlendShapeTarget{
		ChannelIndex:  0,
		VertexIndices: []uint32{1},
		Deltas:        dna.Vector3s{Xs: []float32{0}, Ys: []float32{-1}, Zs: []float32{0}},
	})
	w.SetBlendShapeTarget(0, 1, dna.BlendShapeTarget{
		ChannelIndex:  1,
		VertexIndices: []uint32{1, 2},
		Deltas:        dna.Vector3s{Xs: []float32{0.5, 0.5}, Ys: []float32{0, 0}, Zs: []float32{0.1, 0.1}},
	})
	w.SetBlendShapeTarget(1, 0, dna.BlendShapeTarget{
		ChannelIndex:  0,
		VertexIndices: []uint32{2},
		Deltas:        dna.Vector3s{Xs: []float32{0}, Ys: []float32{-2}, Zs: []float32{0}},
	})
}

// Bytes returns the synthetic rig encoded as a DNA container.
func Bytes() ([]byte, error) {
	s := NewStream()
	w := dna.NewWriter(s)
	Populate(w)
	if err := w.Write(); err != nil {
		return nil, err
	}
	return s.Bytes(), nil
}

// NewStream returns an open, empty memory stream.
func NewStream() *stream.MemoryStream {
	s := stream.NewMemoryStream(4 << 10)
	_ = s.Open()
	return s
}

// Open returns an open memory stream over the encoded synthetic rig.
func Open() (*stream.MemoryStream, error) {
	data, err := Bytes()
	if err != nil {
		return nil, err
	}
	s := stream.NewMemoryStreamFrom(data)
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s, nil
}
