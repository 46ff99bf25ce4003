package dna

import (
	"slices"

	"github.com/Faultbox/rigdna/pkg/stream"
)

// Writer builds a rig asset field by field and serializes it. Setters copy
// their arguments and grow indexed collections as needed. No cross-field
// validation is performed.
type Writer struct {
	s       stream.Stream
	asset   RigAsset
	version Version
}

// NewWriter creates a writer targeting s.
func NewWriter(s stream.Stream) *Writer {
	return &Writer{s: s, version: CurrentVersion}
}

// Asset returns the asset being built.
func (w *Writer) Asset() *RigAsset {
	return &w.asset
}

// setAt stores v at index i, growing s with zero values.
func setAt[T any](s []T, i int, v T) []T {
	if i >= len(s) {
		s = append(s, make([]T, i+1-len(s))...)
	}
	s[i] = v
	return s
}

func cloneVector3s(v Vector3s) Vector3s {
	return Vector3s{Xs: slices.Clone(v.Xs), Ys: slices.Clone(v.Ys), Zs: slices.Clone(v.Zs)}
}

func cloneTable(t ConditionalTableData) ConditionalTableData {
	return ConditionalTableData{
		InputIndices:  slices.Clone(t.InputIndices),
		OutputIndices: slices.Clone(t.OutputIndices),
		FromValues:    slices.Clone(t.FromValues),
		ToValues:      slices.Clone(t.ToValues),
		SlopeValues:   slices.Clone(t.SlopeValues),
		CutValues:     slices.Clone(t.CutValues),
		InputCount:    t.InputCount,
		OutputCount:   t.OutputCount,
	}
}

func cloneLODMapping(m LODMapping) LODMapping {
	out := LODMapping{LODs: slices.Clone(m.LODs)}
	for _, l := range m.Indices {
		out.Indices = append(out.Indices, slices.Clone(l))
	}
	return out
}

func cloneJointGroup(g JointGroup) JointGroup {
	return JointGroup{
		LODs:          slices.Clone(g.LODs),
		InputIndices:  slices.Clone(g.InputIndices),
		OutputIndices: slices.Clone(g.OutputIndices),
		JointIndices:  slices.Clone(g.JointIndices),
		Values:        slices.Clone(g.Values),
	}
}

func cloneBlendShapeTarget(t BlendShapeTarget) BlendShapeTarget {
	return BlendShapeTarget{
		ChannelIndex:  t.ChannelIndex,
		VertexIndices: slices.Clone(t.VertexIndices),
		Deltas:        cloneVector3s(t.Deltas),
	}
}

func cloneMesh(m *Mesh) Mesh {
	out := Mesh{
		Positions: cloneVector3s(m.Positions),
		TextureCoordinates: TextureCoordinates{
			Us: slices.Clone(m.TextureCoordinates.Us),
			Vs: slices.Clone(m.TextureCoordinates.Vs),
		},
		Normals: cloneVector3s(m.Normals),
		Layouts: VertexLayouts{
			Positions:          slices.Clone(m.Layouts.Positions),
			TextureCoordinates: slices.Clone(m.Layouts.TextureCoordinates),
			Normals:            slices.Clone(m.Layouts.Normals),
		},
		MaxInfluencePerVertex: m.MaxInfluencePerVertex,
	}
	for _, f := range m.Faces {
		out.Faces = append(out.Faces, slices.Clone(f))
	}
	for _, sw := range m.SkinWeights {
		out.SkinWeights = append(out.SkinWeights, SkinWeights{
			Weights:      slices.Clone(sw.Weights),
			JointIndices: slices.Clone(sw.JointIndices),
		})
	}
	for _, t := range m.BlendShapeTargets {
		out.BlendShapeTargets = append(out.BlendShapeTargets, cloneBlendShapeTarget(t))
	}
	return out
}

// SetFrom replaces the asset being built with a deep copy of src.
func (w *Writer) SetFrom(src *RigAsset) {
	d := src.Descriptor
	d.Metadata = slices.Clone(d.Metadata)

	def := Definition{
		GUIControlNames:        slices.Clone(src.Definition.GUIControlNames),
		RawControlNames:        slices.Clone(src.Definition.RawControlNames),
		JointNames:             slices.Clone(src.Definition.JointNames),
		BlendShapeChannelNames: slices.Clone(src.Definition.BlendShapeChannelNames),
		AnimatedMapNames:       slices.Clone(src.Definition.AnimatedMapNames),
		MeshNames:              slices.Clone(src.Definition.MeshNames),
		JointLODs:              cloneLODMapping(src.Definition.JointLODs),
		BlendShapeChannelLODs:  cloneLODMapping(src.Definition.BlendShapeChannelLODs),
		AnimatedMapLODs:        cloneLODMapping(src.Definition.AnimatedMapLODs),
		MeshLODs:               cloneLODMapping(src.Definition.MeshLODs),
		MeshBlendShapeChannelMapping: MeshBlendShapeChannelMapping{
			MeshIndices:              slices.Clone(src.Definition.MeshBlendShapeChannelMapping.MeshIndices),
			BlendShapeChannelIndices: slices.Clone(src.Definition.MeshBlendShapeChannelMapping.BlendShapeChannelIndices),
		},
		JointHierarchy:           slices.Clone(src.Definition.JointHierarchy),
		NeutralJointTranslations: cloneVector3s(src.Definition.NeutralJointTranslations),
		NeutralJointRotations:    cloneVector3s(src.Definition.NeutralJointRotations),
	}

	b := Behavior{
		Controls: Controls{
			GUIToRaw: cloneTable(src.Behavior.Controls.GUIToRaw),
			PSD: PSDMatrix{
				Count:   src.Behavior.Controls.PSD.Count,
				Rows:    slices.Clone(src.Behavior.Controls.PSD.Rows),
				Columns: slices.Clone(src.Behavior.Controls.PSD.Columns),
				Values:  slices.Clone(src.Behavior.Controls.PSD.Values),
			},
		},
		Joints: Joints{
			RowCount:    src.Behavior.Joints.RowCount,
			ColumnCount: src.Behavior.Joints.ColumnCount,
		},
		BlendShapeChannels: LODTable{
			LODs:  slices.Clone(src.Behavior.BlendShapeChannels.LODs),
			Table: cloneTable(src.Behavior.BlendShapeChannels.Table),
		},
		AnimatedMaps: LODTable{
			LODs:  slices.Clone(src.Behavior.AnimatedMaps.LODs),
			Table: cloneTable(src.Behavior.AnimatedMaps.Table),
		},
	}
	for _, g := range src.Behavior.Joints.Groups {
		b.Joints.Groups = append(b.Joints.Groups, cloneJointGroup(g))
	}

	var g Geometry
	for i := range src.Geometry.Meshes {
		g.Meshes = append(g.Meshes, cloneMesh(&src.Geometry.Meshes[i]))
	}

	w.asset = RigAsset{
		Version:     CurrentVersion,
		Descriptor:  d,
		Definition:  def,
		Behavior:    b,
		Geometry:    g,
		HasGeometry: src.HasGeometry,
	}
}

// Descriptor setters

func (w *Writer) SetName(name string)                  { w.asset.Descriptor.Name = name }
func (w *Writer) SetArchetype(a Archetype)             { w.asset.Descriptor.Archetype = a }
func (w *Writer) SetGender(g Gender)                   { w.asset.Descriptor.Gender = g }
func (w *Writer) SetAge(age uint16)                    { w.asset.Descriptor.Age = age }
func (w *Writer) SetTranslationUnit(u TranslationUnit) { w.asset.Descriptor.TranslationUnit = u }
func (w *Writer) SetRotationUnit(u RotationUnit)       { w.asset.Descriptor.RotationUnit = u }
func (w *Writer) SetCoordinateSystem(c CoordinateSystem) {
	w.asset.Descriptor.CoordinateSystem = c
}
func (w *Writer) SetLODCount(n uint16)        { w.asset.Descriptor.LODCount = n }
func (w *Writer) SetDBMaxLOD(lod uint16)      { w.asset.Descriptor.DBMaxLOD = lod }
func (w *Writer) SetDBComplexity(name string) { w.asset.Descriptor.DBComplexity = name }
func (w *Writer) SetDBName(name string)       { w.asset.Descriptor.DBName = name }
func (w *Writer) ClearMetaData()              { w.asset.Descriptor.Metadata = nil }

// SetMetaData sets the value of key, appending it if new.
func (w *Writer) SetMetaData(key, value string) {
	for i, m := range w.asset.Descriptor.Metadata {
		if m.Key == key {
			w.asset.Descriptor.Metadata[i].Value = value
			return
		}
	}
	w.asset.Descriptor.Metadata = append(w.asset.Descriptor.Metadata, MetadataEntry{Key: key, Value: value})
}

// RemoveMetaData deletes key if present.
func (w *Writer) RemoveMetaData(key string) {
	w.asset.Descriptor.Metadata = slices.DeleteFunc(w.asset.Descriptor.Metadata, func(m MetadataEntry) bool {
		return m.Key == key
	})
}

// Definition setters

func (w *Writer) SetGUIControlName(i int, name string) {
	w.asset.Definition.GUIControlNames = setAt(w.asset.Definition.GUIControlNames, i, name)
}

func (w *Writer) SetRawControlName(i int, name string) {
	w.asset.Definition.RawControlNames = setAt(w.asset.Definition.RawControlNames, i, name)
}

func (w *Writer) SetJointName(i int, name string) {
	w.asset.Definition.JointNames = setAt(w.asset.Definition.JointNames, i, name)
}

func (w *Writer) SetBlendShapeChannelName(i int, name string) {
	w.asset.Definition.BlendShapeChannelNames = setAt(w.asset.Definition.BlendShapeChannelNames, i, name)
}

func (w *Writer) SetAnimatedMapName(i int, name string) {
	w.asset.Definition.AnimatedMapNames = setAt(w.asset.Definition.AnimatedMapNames, i, name)
}

func (w *Writer) SetMeshName(i int, name string) {
	w.asset.Definition.MeshNames = setAt(w.asset.Definition.MeshNames, i, name)
}

func setMappingIndices(m *LODMapping, list int, indices []uint16) {
	m.Indices = setAt(m.Indices, list, slices.Clone(indices))
}

func setMappingLOD(m *LODMapping, lod uint16, list uint16) {
	m.LODs = setAt(m.LODs, int(lod), list)
}

// SetJointIndices stores a shared joint index list.
func (w *Writer) SetJointIndices(list int, indices []uint16) {
	setMappingIndices(&w.asset.Definition.JointLODs, list, indices)
}

// SetLODJointMapping points lod at a joint index list.
func (w *Writer) SetLODJointMapping(lod, list uint16) {
	setMappingLOD(&w.asset.Definition.JointLODs, lod, list)
}

func (w *Writer) SetBlendShapeChannelIndices(list int, indices []uint16) {
	setMappingIndices(&w.asset.Definition.BlendShapeChannelLODs, list, indices)
}

func (w *Writer) SetLODBlendShapeChannelMapping(lod, list uint16) {
	setMappingLOD(&w.asset.Definition.BlendShapeChannelLODs, lod, list)
}

func (w *Writer) SetAnimatedMapIndices(list int, indices []uint16) {
	setMappingIndices(&w.asset.Definition.AnimatedMapLODs, list, indices)
}

func (w *Writer) SetLODAnimatedMapMapping(lod, list uint16) {
	setMappingLOD(&w.asset.Definition.AnimatedMapLODs, lod, list)
}

func (w *Writer) SetMeshIndices(list int, indices []uint16) {
	setMappingIndices(&w.asset.Definition.MeshLODs, list, indices)
}

func (w *Writer) SetLODMeshMapping(lod, list uint16) {
	setMappingLOD(&w.asset.Definition.MeshLODs, lod, list)
}

// SetMeshBlendShapeChannelMapping stores mapping entry i.
func (w *Writer) SetMeshBlendShapeChannelMapping(i int, mesh, channel uint16) {
	m := &w.asset.Definition.MeshBlendShapeChannelMapping
	m.MeshIndices = setAt(m.MeshIndices, i, mesh)
	m.BlendShapeChannelIndices = setAt(m.BlendShapeChannelIndices, i, channel)
}

func (w *Writer) SetJointHierarchy(parents []uint16) {
	w.asset.Definition.JointHierarchy = slices.Clone(parents)
}

func (w *Writer) SetNeutralJointTranslations(v Vector3s) {
	w.asset.Definition.NeutralJointTranslations = cloneVector3s(v)
}

func (w *Writer) SetNeutralJointRotations(v Vector3s) {
	w.asset.Definition.NeutralJointRotations = cloneVector3s(v)
}

// Behavior setters

func (w *Writer) SetGUIToRawTable(t ConditionalTableData) {
	w.asset.Behavior.Controls.GUIToRaw = cloneTable(t)
}

// SetPSD stores the PSD matrix: count outputs and one (row, column, value)
// triple per entry.
func (w *Writer) SetPSD(count uint16, rows, columns []uint16, values []float32) {
	w.asset.Behavior.Controls.PSD = PSDMatrix{
		Count:   count,
		Rows:    slices.Clone(rows),
		Columns: slices.Clone(columns),
		Values:  slices.Clone(values),
	}
}

func (w *Writer) SetJointRowCount(n uint16)    { w.asset.Behavior.Joints.RowCount = n }
func (w *Writer) SetJointColumnCount(n uint16) { w.asset.Behavior.Joints.ColumnCount = n }

// SetJointGroup stores joint group i.
func (w *Writer) SetJointGroup(i int, g JointGroup) {
	w.asset.Behavior.Joints.Groups = setAt(w.asset.Behavior.Joints.Groups, i, cloneJointGroup(g))
}

func (w *Writer) ClearJointGroups() { w.asset.Behavior.Joints.Groups = nil }

func (w *Writer) SetBlendShapeChannelLODs(rows []uint16) {
	w.asset.Behavior.BlendShapeChannels.LODs = slices.Clone(rows)
}

func (w *Writer) SetBlendShapeChannelTable(t ConditionalTableData) {
	w.asset.Behavior.BlendShapeChannels.Table = cloneTable(t)
}

func (w *Writer) SetAnimatedMapLODs(rows []uint16) {
	w.asset.Behavior.AnimatedMaps.LODs = slices.Clone(rows)
}

func (w *Writer) SetAnimatedMapTable(t ConditionalTableData) {
	w.asset.Behavior.AnimatedMaps.Table = cloneTable(t)
}

// Geometry setters. Any of them marks the geometry section present.

func (w *Writer) mesh(i int) *Mesh {
	w.asset.HasGeometry = true
	if i >= len(w.asset.Geometry.Meshes) {
		w.asset.Geometry.Meshes = setAt(w.asset.Geometry.Meshes, i, Mesh{})
	}
	return &w.asset.Geometry.Meshes[i]
}

func (w *Writer) SetVertexPositions(mesh int, v Vector3s) {
	w.mesh(mesh).Positions = cloneVector3s(v)
}

func (w *Writer) SetVertexTextureCoordinates(mesh int, tc TextureCoordinates) {
	w.mesh(mesh).TextureCoordinates = TextureCoordinates{Us: slices.Clone(tc.Us), Vs: slices.Clone(tc.Vs)}
}

func (w *Writer) SetVertexNormals(mesh int, v Vector3s) {
	w.mesh(mesh).Normals = cloneVector3s(v)
}

func (w *Writer) SetVertexLayouts(mesh int, l VertexLayouts) {
	w.mesh(mesh).Layouts = VertexLayouts{
		Positions:          slices.Clone(l.Positions),
		TextureCoordinates: slices.Clone(l.TextureCoordinates),
		Normals:            slices.Clone(l.Normals),
	}
}

// SetFaceVertexLayoutIndices stores face i of mesh.
func (w *Writer) SetFaceVertexLayoutIndices(mesh, face int, layouts []uint32) {
	m := w.mesh(mesh)
	m.Faces = setAt(m.Faces, face, slices.Clone(layouts))
}

func (w *Writer) SetMaximumInfluencePerVertex(mesh int, n uint16) {
	w.mesh(mesh).MaxInfluencePerVertex = n
}

// SetSkinWeights stores the influences of vertex v of mesh.
func (w *Writer) SetSkinWeights(mesh, v int, weights []float32, joints []uint16) {
	m := w.mesh(mesh)
	m.SkinWeights = setAt(m.SkinWeights, v, SkinWeights{
		Weights:      slices.Clone(weights),
		JointIndices: slices.Clone(joints),
	})
}

// SetBlendShapeTarget stores target t of mesh.
func (w *Writer) SetBlendShapeTarget(mesh, t int, target BlendShapeTarget) {
	m := w.mesh(mesh)
	m.BlendShapeTargets = setAt(m.BlendShapeTargets, t, cloneBlendShapeTarget(target))
}

func (w *Writer) ClearBlendShapeTargets(mesh int) { w.mesh(mesh).BlendShapeTargets = nil }

// ClearMeshes removes every mesh and the geometry section.
func (w *Writer) ClearMeshes() {
	w.asset.Geometry.Meshes = nil
	w.asset.HasGeometry = false
}

// Write serializes the asset at the current stream position.
func (w *Writer) Write() error {
	e := newEncoder(w.s)
	sv := sectionVersionCurrent
	if !w.version.AtLeast(CurrentVersion.Generation, CurrentVersion.Version) {
		sv = sectionVersionLegacy
	}

	e.write(Signature[:])
	e.u16(w.version.Generation)
	e.u16(w.version.Version)
	indexAt := e.offset()
	var index sectionIndex
	index.encode(e)

	index.descriptor = e.offset()
	encodeDescriptor(e, &w.asset.Descriptor, sv)
	index.definition = e.offset()
	encodeDefinition(e, &w.asset.Definition, sv)
	index.behavior = e.offset()
	encodeBehavior(e, &w.asset.Behavior, sv)
	index.geometry = e.offset()
	encodeGeometry(e, &w.asset.Geometry, w.asset.HasGeometry, sv)
	index.end = e.offset()
	e.write(Terminator[:])

	e.patchU32(indexAt, index.descriptor)
	e.patchU32(indexAt+4, index.definition)
	e.patchU32(indexAt+8, index.behavior)
	e.patchU32(indexAt+12, index.geometry)
	e.patchU32(indexAt+16, index.end)
	return e.err
}
