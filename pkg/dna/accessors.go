package dna

import "github.com/flywave/go3d/vec3"

// Accessors return views into the asset. Out-of-range indices yield empty
// slices, zero values or sentinels instead of panicking.

func at[T any](s []T, i int) T {
	var zero T
	if i < 0 || i >= len(s) {
		return zero
	}
	return s[i]
}

func vectorAt(v *Vector3s, i int) vec3.T {
	if i < 0 || i >= v.Len() {
		return vec3.T{}
	}
	return vec3.T{v.Xs[i], v.Ys[i], v.Zs[i]}
}

// Descriptor

func (a *RigAsset) Name() string                       { return a.Descriptor.Name }
func (a *RigAsset) Archetype() Archetype               { return a.Descriptor.Archetype }
func (a *RigAsset) Gender() Gender                     { return a.Descriptor.Gender }
func (a *RigAsset) Age() uint16                        { return a.Descriptor.Age }
func (a *RigAsset) TranslationUnit() TranslationUnit   { return a.Descriptor.TranslationUnit }
func (a *RigAsset) RotationUnit() RotationUnit         { return a.Descriptor.RotationUnit }
func (a *RigAsset) CoordinateSystem() CoordinateSystem { return a.Descriptor.CoordinateSystem }
func (a *RigAsset) LODCount() uint16                   { return a.Descriptor.LODCount }
func (a *RigAsset) DBMaxLOD() uint16                   { return a.Descriptor.DBMaxLOD }
func (a *RigAsset) DBComplexity() string               { return a.Descriptor.DBComplexity }
func (a *RigAsset) DBName() string                     { return a.Descriptor.DBName }

// MetaDataCount returns the number of metadata entries.
func (a *RigAsset) MetaDataCount() int { return len(a.Descriptor.Metadata) }

// MetaDataKey returns the key of entry i.
func (a *RigAsset) MetaDataKey(i int) string { return at(a.Descriptor.Metadata, i).Key }

// MetaDataValue looks up a metadata value by key.
func (a *RigAsset) MetaDataValue(key string) (string, bool) {
	for _, m := range a.Descriptor.Metadata {
		if m.Key == key {
			return m.Value, true
		}
	}
	return "", false
}

// Definition

func (a *RigAsset) GUIControlCount() int        { return len(a.Definition.GUIControlNames) }
func (a *RigAsset) GUIControlName(i int) string { return at(a.Definition.GUIControlNames, i) }
func (a *RigAsset) RawControlCount() int        { return len(a.Definition.RawControlNames) }
func (a *RigAsset) RawControlName(i int) string { return at(a.Definition.RawControlNames, i) }
func (a *RigAsset) JointCount() int             { return len(a.Definition.JointNames) }
func (a *RigAsset) JointName(i int) string      { return at(a.Definition.JointNames, i) }
func (a *RigAsset) BlendShapeChannelCount() int { return len(a.Definition.BlendShapeChannelNames) }
func (a *RigAsset) BlendShapeChannelName(i int) string {
	return at(a.Definition.BlendShapeChannelNames, i)
}
func (a *RigAsset) AnimatedMapCount() int        { return len(a.Definition.AnimatedMapNames) }
func (a *RigAsset) AnimatedMapName(i int) string { return at(a.Definition.AnimatedMapNames, i) }
func (a *RigAsset) MeshCount() int               { return len(a.Definition.MeshNames) }
func (a *RigAsset) MeshName(i int) string        { return at(a.Definition.MeshNames, i) }

// JointIndicesForLOD returns the joints used at lod.
func (a *RigAsset) JointIndicesForLOD(lod uint16) []uint16 {
	return a.Definition.JointLODs.indicesFor(lod)
}

// BlendShapeChannelIndicesForLOD returns the blend-shape channels used at lod.
func (a *RigAsset) BlendShapeChannelIndicesForLOD(lod uint16) []uint16 {
	return a.Definition.BlendShapeChannelLODs.indicesFor(lod)
}

// AnimatedMapIndicesForLOD returns the animated maps used at lod.
func (a *RigAsset) AnimatedMapIndicesForLOD(lod uint16) []uint16 {
	return a.Definition.AnimatedMapLODs.indicesFor(lod)
}

// MeshIndicesForLOD returns the meshes used at lod.
func (a *RigAsset) MeshIndicesForLOD(lod uint16) []uint16 {
	return a.Definition.MeshLODs.indicesFor(lod)
}

// JointParentIndex returns the parent of joint i, or JointRootParent.
func (a *RigAsset) JointParentIndex(i int) uint16 {
	if i < 0 || i >= len(a.Definition.JointHierarchy) {
		return JointRootParent
	}
	return a.Definition.JointHierarchy[i]
}

func (a *RigAsset) NeutralJointTranslation(i int) vec3.T {
	return vectorAt(&a.Definition.NeutralJointTranslations, i)
}

func (a *RigAsset) NeutralJointRotation(i int) vec3.T {
	return vectorAt(&a.Definition.NeutralJointRotations, i)
}

func (a *RigAsset) MeshBlendShapeChannelMappingCount() int {
	return len(a.Definition.MeshBlendShapeChannelMapping.MeshIndices)
}

// MeshBlendShapeChannelMapping returns the mesh and channel of entry i.
func (a *RigAsset) MeshBlendShapeChannelMapping(i int) (mesh, channel uint16) {
	m := &a.Definition.MeshBlendShapeChannelMapping
	return at(m.MeshIndices, i), at(m.BlendShapeChannelIndices, i)
}

// Behavior

// GUIToRawTable returns the GUI to raw control mapping.
func (a *RigAsset) GUIToRawTable() *ConditionalTableData { return &a.Behavior.Controls.GUIToRaw }

func (a *RigAsset) PSDCount() uint16           { return a.Behavior.Controls.PSD.Count }
func (a *RigAsset) PSDRowIndices() []uint16    { return a.Behavior.Controls.PSD.Rows }
func (a *RigAsset) PSDColumnIndices() []uint16 { return a.Behavior.Controls.PSD.Columns }
func (a *RigAsset) PSDValues() []float32       { return a.Behavior.Controls.PSD.Values }

func (a *RigAsset) JointRowCount() uint16    { return a.Behavior.Joints.RowCount }
func (a *RigAsset) JointColumnCount() uint16 { return a.Behavior.Joints.ColumnCount }
func (a *RigAsset) JointGroupCount() int     { return len(a.Behavior.Joints.Groups) }

// JointGroup returns group i, or an empty group.
func (a *RigAsset) JointGroup(i int) *JointGroup {
	if i < 0 || i >= len(a.Behavior.Joints.Groups) {
		return &JointGroup{}
	}
	return &a.Behavior.Joints.Groups[i]
}

func (a *RigAsset) BlendShapeChannelLODs() []uint16 { return a.Behavior.BlendShapeChannels.LODs }
func (a *RigAsset) BlendShapeChannelTable() *ConditionalTableData {
	return &a.Behavior.BlendShapeChannels.Table
}
func (a *RigAsset) AnimatedMapLODs() []uint16 { return a.Behavior.AnimatedMaps.LODs }
func (a *RigAsset) AnimatedMapTable() *ConditionalTableData {
	return &a.Behavior.AnimatedMaps.Table
}

// Geometry

// Mesh returns mesh i, or an empty mesh.
func (a *RigAsset) Mesh(i int) *Mesh {
	if i < 0 || i >= len(a.Geometry.Meshes) {
		return &Mesh{}
	}
	return &a.Geometry.Meshes[i]
}

func (a *RigAsset) VertexPositionCount(mesh int) int { return a.Mesh(mesh).Positions.Len() }
func (a *RigAsset) VertexPosition(mesh, v int) vec3.T {
	return vectorAt(&a.Mesh(mesh).Positions, v)
}
func (a *RigAsset) VertexNormalCount(mesh int) int { return a.Mesh(mesh).Normals.Len() }
func (a *RigAsset) VertexNormal(mesh, v int) vec3.T {
	return vectorAt(&a.Mesh(mesh).Normals, v)
}
func (a *RigAsset) VertexTextureCoordinateCount(mesh int) int {
	return a.Mesh(mesh).TextureCoordinates.Len()
}

// VertexTextureCoordinate returns the UV of texture coordinate v.
func (a *RigAsset) VertexTextureCoordinate(mesh, v int) (u, w float32) {
	tc := &a.Mesh(mesh).TextureCoordinates
	if v < 0 || v >= tc.Len() {
		return 0, 0
	}
	return tc.Us[v], tc.Vs[v]
}

func (a *RigAsset) VertexLayoutCount(mesh int) int { return a.Mesh(mesh).Layouts.Len() }
func (a *RigAsset) VertexLayouts(mesh int) *VertexLayouts {
	return &a.Mesh(mesh).Layouts
}
func (a *RigAsset) FaceCount(mesh int) int { return len(a.Mesh(mesh).Faces) }
func (a *RigAsset) FaceVertexLayoutIndices(mesh, face int) []uint32 {
	return at(a.Mesh(mesh).Faces, face)
}
func (a *RigAsset) MaximumInfluencePerVertex(mesh int) uint16 {
	return a.Mesh(mesh).MaxInfluencePerVertex
}
func (a *RigAsset) SkinWeightsCount(mesh int) int { return len(a.Mesh(mesh).SkinWeights) }
func (a *RigAsset) SkinWeightsValues(mesh, v int) []float32 {
	return at(a.Mesh(mesh).SkinWeights, v).Weights
}
func (a *RigAsset) SkinWeightsJointIndices(mesh, v int) []uint16 {
	return at(a.Mesh(mesh).SkinWeights, v).JointIndices
}
func (a *RigAsset) BlendShapeTargetCount(mesh int) int {
	return len(a.Mesh(mesh).BlendShapeTargets)
}

// BlendShapeTarget returns target t of mesh, or an empty target.
func (a *RigAsset) BlendShapeTarget(mesh, t int) *BlendShapeTarget {
	targets := a.Mesh(mesh).BlendShapeTargets
	if t < 0 || t >= len(targets) {
		return &BlendShapeTarget{}
	}
	return &targets[t]
}

func (a *RigAsset) BlendShapeTargetDelta(mesh, t, d int) vec3.T {
	return vectorAt(&a.BlendShapeTarget(mesh, t).Deltas, d)
}
