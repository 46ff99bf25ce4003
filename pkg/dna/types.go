package dna

import "fmt"

// Archetype is the ethnic archetype of the rigged character.
type Archetype uint16

// Archetypes.
const (
	ArchetypeAsian Archetype = iota
	ArchetypeBlack
	ArchetypeCaucasian
	ArchetypeHispanic
	ArchetypeAlien
	ArchetypeOther
)

// String returns a human-readable archetype name.
func (a Archetype) String() string {
	switch a {
	case ArchetypeAsian:
		return "Asian"
	case ArchetypeBlack:
		return "Black"
	case ArchetypeCaucasian:
		return "Caucasian"
	case ArchetypeHispanic:
		return "Hispanic"
	case ArchetypeAlien:
		return "Alien"
	case ArchetypeOther:
		return "Other"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// Gender of the rigged character.
type Gender uint16

// Genders.
const (
	GenderMale Gender = iota
	GenderFemale
	GenderOther
)

// String returns a human-readable gender name.
func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	case GenderOther:
		return "Other"
	default:
		return fmt.Sprintf("Unknown(%d)", g)
	}
}

// TranslationUnit of joint translations and vertex positions.
type TranslationUnit uint16

// Translation units.
const (
	TranslationUnitCM TranslationUnit = iota
	TranslationUnitM
)

// String returns the unit symbol.
func (u TranslationUnit) String() string {
	switch u {
	case TranslationUnitCM:
		return "cm"
	case TranslationUnitM:
		return "m"
	default:
		return fmt.Sprintf("Unknown(%d)", u)
	}
}

// RotationUnit of joint rotations.
type RotationUnit uint16

// Rotation units.
const (
	RotationUnitDegrees RotationUnit = iota
	RotationUnitRadians
)

// String returns the unit name.
func (u RotationUnit) String() string {
	switch u {
	case RotationUnitDegrees:
		return "degrees"
	case RotationUnitRadians:
		return "radians"
	default:
		return fmt.Sprintf("Unknown(%d)", u)
	}
}

// Direction of a coordinate system axis.
type Direction uint16

// Axis directions.
const (
	DirectionLeft Direction = iota
	DirectionRight
	DirectionUp
	DirectionDown
	DirectionFront
	DirectionBack
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	case DirectionFront:
		return "front"
	case DirectionBack:
		return "back"
	default:
		return fmt.Sprintf("Unknown(%d)", d)
	}
}

// CoordinateSystem gives the direction of each positive axis.
type CoordinateSystem struct {
	X, Y, Z Direction
}

// MetadataEntry is one descriptor key/value pair.
type MetadataEntry struct {
	Key   string
	Value string
}

// Descriptor holds identifying information about the rig.
type Descriptor struct {
	Name             string
	Archetype        Archetype
	Gender           Gender
	Age              uint16
	Metadata         []MetadataEntry // unique keys, insertion order
	TranslationUnit  TranslationUnit
	RotationUnit     RotationUnit
	CoordinateSystem CoordinateSystem
	LODCount         uint16
	DBMaxLOD         uint16
	DBComplexity     string
	DBName           string
}

// Vector3s stores 3D vectors as parallel per-axis slices.
type Vector3s struct {
	Xs, Ys, Zs []float32
}

// Len returns the vector count, or 0 when the axes disagree.
func (v Vector3s) Len() int {
	if len(v.Xs) != len(v.Ys) || len(v.Xs) != len(v.Zs) {
		return 0
	}
	return len(v.Xs)
}

// TextureCoordinates stores UVs as parallel slices.
type TextureCoordinates struct {
	Us, Vs []float32
}

// Len returns the coordinate count, or 0 when the slices disagree.
func (t TextureCoordinates) Len() int {
	if len(t.Us) != len(t.Vs) {
		return 0
	}
	return len(t.Us)
}

// LODMapping maps each LOD to one of several shared index lists.
type LODMapping struct {
	LODs    []uint16   // LOD -> index into Indices
	Indices [][]uint16 // shared index lists
}

// indicesFor returns the index list of lod, or nil.
func (m *LODMapping) indicesFor(lod uint16) []uint16 {
	if int(lod) >= len(m.LODs) {
		return nil
	}
	list := m.LODs[lod]
	if int(list) >= len(m.Indices) {
		return nil
	}
	return m.Indices[list]
}

// MeshBlendShapeChannelMapping pairs meshes with blend-shape channels.
type MeshBlendShapeChannelMapping struct {
	MeshIndices              []uint16
	BlendShapeChannelIndices []uint16
}

// Definition holds the static structure of the rig.
type Definition struct {
	GUIControlNames        []string
	RawControlNames        []string
	JointNames             []string
	BlendShapeChannelNames []string
	AnimatedMapNames       []string
	MeshNames              []string

	JointLODs             LODMapping
	BlendShapeChannelLODs LODMapping
	AnimatedMapLODs       LODMapping
	MeshLODs              LODMapping

	MeshBlendShapeChannelMapping MeshBlendShapeChannelMapping

	JointHierarchy           []uint16 // parent joint index, JointRootParent for roots
	NeutralJointTranslations Vector3s
	NeutralJointRotations    Vector3s
}

// ConditionalTableData holds the parallel arrays of a piecewise-linear
// conditional table.
type ConditionalTableData struct {
	InputIndices  []uint16
	OutputIndices []uint16
	FromValues    []float32
	ToValues      []float32
	SlopeValues   []float32
	CutValues     []float32
	InputCount    uint16
	OutputCount   uint16
}

// Len returns the segment count.
func (t *ConditionalTableData) Len() int {
	return len(t.InputIndices)
}

// truncate keeps the first n segments.
func (t *ConditionalTableData) truncate(n int) {
	if n >= t.Len() {
		return
	}
	t.InputIndices = t.InputIndices[:n]
	t.OutputIndices = t.OutputIndices[:min(n, len(t.OutputIndices))]
	t.FromValues = t.FromValues[:min(n, len(t.FromValues))]
	t.ToValues = t.ToValues[:min(n, len(t.ToValues))]
	t.SlopeValues = t.SlopeValues[:min(n, len(t.SlopeValues))]
	t.CutValues = t.CutValues[:min(n, len(t.CutValues))]
}

// PSDMatrix is the sparse pose-space-deformation matrix. Rows are PSD
// output indices (following the raw controls), columns are input indices.
type PSDMatrix struct {
	Count   uint16
	Rows    []uint16
	Columns []uint16
	Values  []float32
}

// Controls holds the control-level behavior.
type Controls struct {
	GUIToRaw ConditionalTableData
	PSD      PSDMatrix
}

// JointGroup is one block of the joint matrix. Values is row-major with one
// row per output index and one column per input index.
type JointGroup struct {
	LODs          []uint16 // row count per LOD
	InputIndices  []uint16
	OutputIndices []uint16
	JointIndices  []uint16
	Values        []float32
}

// Joints holds the joint behavior.
type Joints struct {
	RowCount    uint16
	ColumnCount uint16
	Groups      []JointGroup
}

// LODTable is a conditional table whose rows are ordered by LOD, LODs[l]
// being the number of rows used at LOD l.
type LODTable struct {
	LODs  []uint16
	Table ConditionalTableData
}

// Behavior holds the runtime evaluation data.
type Behavior struct {
	Controls           Controls
	Joints             Joints
	BlendShapeChannels LODTable
	AnimatedMaps       LODTable
}

// VertexLayouts pairs position, texture coordinate and normal indices.
type VertexLayouts struct {
	Positions          []uint32
	TextureCoordinates []uint32
	Normals            []uint32
}

// Len returns the layout count.
func (l VertexLayouts) Len() int {
	return len(l.Positions)
}

// SkinWeights holds the joint influences of one vertex.
type SkinWeights struct {
	Weights      []float32
	JointIndices []uint16
}

// BlendShapeTarget is a sparse set of vertex deltas driven by one channel.
type BlendShapeTarget struct {
	ChannelIndex  uint16
	VertexIndices []uint32
	Deltas        Vector3s
}

// Mesh holds one mesh's geometry.
type Mesh struct {
	Positions             Vector3s
	TextureCoordinates    TextureCoordinates
	Normals               Vector3s
	Layouts               VertexLayouts
	Faces                 [][]uint32 // vertex layout indices per face
	MaxInfluencePerVertex uint16
	SkinWeights           []SkinWeights
	BlendShapeTargets     []BlendShapeTarget
}

// Geometry holds every mesh, indexed like the definition's mesh names.
type Geometry struct {
	Meshes []Mesh
}

// RigAsset is a decoded (or to-be-encoded) DNA rig.
type RigAsset struct {
	Version     Version
	Descriptor  Descriptor
	Definition  Definition
	Behavior    Behavior
	Geometry    Geometry
	HasGeometry bool
}
