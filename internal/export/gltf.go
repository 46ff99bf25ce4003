// Package export converts decoded rig geometry to glTF 2.0.
//
// Each mesh used at the requested LOD becomes one node with one triangle
// primitive. Vertices are emitted per vertex layout, so a position shared by
// layouts with different UVs or normals is duplicated. Blend-shape targets
// become morph targets.
package export

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/flywave/go3d/vec3"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/rigdna/pkg/dna"
	rmath "github.com/Faultbox/rigdna/pkg/math"
)

const gltfVersion = "2.0"

// Errors returned by the exporter.
var (
	ErrNoGeometry  = errors.New("rig has no geometry")
	ErrInvalidMesh = errors.New("invalid mesh")
)

// Options control an export.
type Options struct {
	LOD      uint16
	Binary   bool
	Skeleton bool // add the joints used at LOD as a node hierarchy
}

// Stats summarizes an export.
type Stats struct {
	Meshes       int
	Vertices     int
	Triangles    int
	MorphTargets int
	Joints       int
}

// Exporter builds glTF documents from rigs.
type Exporter struct {
	log *zap.Logger
}

// New creates an exporter. log may be nil.
func New(log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{log: log}
}

// Document builds a glTF document holding the meshes used at opts.LOD.
func (e *Exporter) Document(a *dna.RigAsset, opts Options) (*gltf.Document, Stats, error) {
	var stats Stats
	lod := opts.LOD
	if !a.HasGeometry {
		return nil, stats, ErrNoGeometry
	}
	if lod >= a.LODCount() {
		return nil, stats, fmt.Errorf("%w: lod %d of %d", dna.ErrLODOutOfRange, lod, a.LODCount())
	}

	doc := &gltf.Document{}
	doc.Asset.Version = gltfVersion
	doc.Asset.Generator = "rigdna"
	scene := uint32(0)
	doc.Scene = &scene
	doc.Scenes = append(doc.Scenes, &gltf.Scene{Name: a.Name()})
	doc.Buffers = append(doc.Buffers, &gltf.Buffer{})

	b := &builder{doc: doc}
	for _, mi := range a.MeshIndicesForLOD(lod) {
		m := a.Mesh(int(mi))
		name := a.MeshName(int(mi))
		ms, err := b.addMesh(name, m)
		if err != nil {
			return nil, stats, fmt.Errorf("mesh %q: %w", name, err)
		}
		stats.Meshes++
		stats.Vertices += ms.Vertices
		stats.Triangles += ms.Triangles
		stats.MorphTargets += ms.MorphTargets
	}
	if opts.Skeleton {
		stats.Joints = b.addSkeleton(a, lod)
	}
	b.finish()

	e.log.Debug("built gltf document",
		zap.String("rig", a.Name()),
		zap.Uint16("lod", lod),
		zap.Int("meshes", stats.Meshes),
		zap.Int("vertices", stats.Vertices),
		zap.Int("triangles", stats.Triangles),
		zap.Int("joints", stats.Joints))
	return doc, stats, nil
}

// Write encodes the meshes used at opts.LOD to w, as GLB when opts.Binary
// is set and as JSON with an embedded buffer otherwise.
func (e *Exporter) Write(w io.Writer, a *dna.RigAsset, opts Options) (Stats, error) {
	doc, stats, err := e.Document(a, opts)
	if err != nil {
		return stats, err
	}
	if !opts.Binary {
		doc.Buffers[0].EmbeddedResource()
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = opts.Binary
	if err := enc.Encode(doc); err != nil {
		return stats, fmt.Errorf("encoding gltf: %w", err)
	}
	return stats, nil
}

// WriteFile exports to path.
func (e *Exporter) WriteFile(path string, a *dna.RigAsset, opts Options) (stats Stats, err error) {
	f, err := os.Create(path)
	if err != nil {
		return stats, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	stats, err = e.Write(f, a, opts)
	if err != nil {
		return stats, err
	}
	e.log.Info("exported gltf",
		zap.String("path", path),
		zap.Uint16("lod", opts.LOD),
		zap.Bool("binary", opts.Binary),
		zap.Int("meshes", stats.Meshes))
	return stats, nil
}

type builder struct {
	doc *gltf.Document
	buf bytes.Buffer
}

// view appends data to the buffer and returns the new buffer view.
func (b *builder) view(data any) uint32 {
	offset := uint32(b.buf.Len())
	// Writes to a bytes.Buffer do not fail.
	_ = binary.Write(&b.buf, binary.LittleEndian, data)
	b.doc.BufferViews = append(b.doc.BufferViews, &gltf.BufferView{
		Buffer:     0,
		ByteOffset: offset,
		ByteLength: uint32(b.buf.Len()) - offset,
	})
	return uint32(len(b.doc.BufferViews) - 1)
}

func (b *builder) accessor(view uint32, count int, ct gltf.ComponentType, at gltf.AccessorType) *gltf.Accessor {
	acc := &gltf.Accessor{
		BufferView:    &view,
		ComponentType: ct,
		Type:          at,
		Count:         uint32(count),
	}
	b.doc.Accessors = append(b.doc.Accessors, acc)
	return acc
}

func (b *builder) accessorIndex() uint32 {
	return uint32(len(b.doc.Accessors) - 1)
}

func (b *builder) finish() {
	buffer := b.doc.Buffers[0]
	buffer.Data = b.buf.Bytes()
	buffer.ByteLength = uint32(len(buffer.Data))
}

type meshStats struct {
	Vertices     int
	Triangles    int
	MorphTargets int
}

func (b *builder) addMesh(name string, m *dna.Mesh) (meshStats, error) {
	var ms meshStats
	layouts := m.Layouts
	n := layouts.Len()
	if len(layouts.TextureCoordinates) != n || len(layouts.Normals) != n {
		return ms, fmt.Errorf("%w: vertex layout attributes disagree in length", ErrInvalidMesh)
	}

	positions := make([][3]float32, n)
	for k, p := range layouts.Positions {
		if int(p) >= m.Positions.Len() {
			return ms, fmt.Errorf("%w: layout %d references position %d of %d", ErrInvalidMesh, k, p, m.Positions.Len())
		}
		positions[k] = [3]float32{m.Positions.Xs[p], m.Positions.Ys[p], m.Positions.Zs[p]}
	}

	var uvs [][2]float32
	if m.TextureCoordinates.Len() > 0 {
		uvs = make([][2]float32, n)
		for k, t := range layouts.TextureCoordinates {
			if int(t) >= m.TextureCoordinates.Len() {
				return ms, fmt.Errorf("%w: layout %d references uv %d of %d", ErrInvalidMesh, k, t, m.TextureCoordinates.Len())
			}
			// glTF puts the UV origin at the top left.
			uvs[k] = [2]float32{m.TextureCoordinates.Us[t], 1 - m.TextureCoordinates.Vs[t]}
		}
	}

	var normals [][3]float32
	if m.Normals.Len() > 0 {
		normals = make([][3]float32, n)
		for k, nm := range layouts.Normals {
			if int(nm) >= m.Normals.Len() {
				return ms, fmt.Errorf("%w: layout %d references normal %d of %d", ErrInvalidMesh, k, nm, m.Normals.Len())
			}
			normals[k] = [3]float32{m.Normals.Xs[nm], m.Normals.Ys[nm], m.Normals.Zs[nm]}
		}
	}

	indices, err := triangulate(m.Faces, n)
	if err != nil {
		return ms, err
	}

	prim := &gltf.Primitive{
		Attributes: make(gltf.Attribute),
		Mode:       gltf.PrimitiveTriangles,
	}

	if len(indices) > 0 {
		b.accessor(b.view(indices), len(indices), gltf.ComponentUint, gltf.AccessorScalar)
		idx := b.accessorIndex()
		prim.Indices = &idx
	}

	acc := b.accessor(b.view(positions), n, gltf.ComponentFloat, gltf.AccessorVec3)
	if n > 0 {
		box := bounds(positions)
		acc.Min = []float32{box.Min[0], box.Min[1], box.Min[2]}
		acc.Max = []float32{box.Max[0], box.Max[1], box.Max[2]}
	}
	prim.Attributes["POSITION"] = b.accessorIndex()

	if uvs != nil {
		b.accessor(b.view(uvs), n, gltf.ComponentFloat, gltf.AccessorVec2)
		prim.Attributes["TEXCOORD_0"] = b.accessorIndex()
	}
	if normals != nil {
		b.accessor(b.view(normals), n, gltf.ComponentFloat, gltf.AccessorVec3)
		prim.Attributes["NORMAL"] = b.accessorIndex()
	}

	mesh := &gltf.Mesh{Name: name}
	for _, t := range m.BlendShapeTargets {
		deltas := targetDeltas(&t, layouts.Positions)
		acc := b.accessor(b.view(deltas), n, gltf.ComponentFloat, gltf.AccessorVec3)
		if n > 0 {
			box := bounds(deltas)
			acc.Min = []float32{box.Min[0], box.Min[1], box.Min[2]}
			acc.Max = []float32{box.Max[0], box.Max[1], box.Max[2]}
		}
		prim.Targets = append(prim.Targets, gltf.Attribute{"POSITION": b.accessorIndex()})
		mesh.Weights = append(mesh.Weights, 0)
	}
	mesh.Primitives = append(mesh.Primitives, prim)

	meshIndex := uint32(len(b.doc.Meshes))
	b.doc.Meshes = append(b.doc.Meshes, mesh)
	b.doc.Nodes = append(b.doc.Nodes, &gltf.Node{Name: name, Mesh: &meshIndex})
	b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, uint32(len(b.doc.Nodes)-1))

	ms.Vertices = n
	ms.Triangles = len(indices) / 3
	ms.MorphTargets = len(m.BlendShapeTargets)
	return ms, nil
}

// addSkeleton adds one node per joint used at lod, placed at its neutral
// transform relative to its parent. Joints whose parent is not used become
// scene roots.
func (b *builder) addSkeleton(a *dna.RigAsset, lod uint16) int {
	joints := a.JointIndicesForLOD(lod)
	nodes := make(map[uint16]uint32, len(joints))
	for _, j := range joints {
		t := a.NeutralJointTranslation(int(j))
		r := a.NeutralJointRotation(int(j))
		if a.RotationUnit() == dna.RotationUnitDegrees {
			r = vec3.T{rmath.Radians(r[0]), rmath.Radians(r[1]), rmath.Radians(r[2])}
		}
		b.doc.Nodes = append(b.doc.Nodes, &gltf.Node{
			Name:        a.JointName(int(j)),
			Translation: [3]float32(t),
			Rotation:    rmath.QuatFromEuler(r[0], r[1], r[2]).Array(),
		})
		nodes[j] = uint32(len(b.doc.Nodes) - 1)
	}

	for _, j := range joints {
		node := nodes[j]
		if parent, ok := nodes[a.JointParentIndex(int(j))]; ok && parent != node {
			b.doc.Nodes[parent].Children = append(b.doc.Nodes[parent].Children, node)
			continue
		}
		b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, node)
	}
	return len(joints)
}

// triangulate fans each face around its first vertex. Faces with fewer than
// three vertices are dropped.
func triangulate(faces [][]uint32, layoutCount int) ([]uint32, error) {
	var out []uint32
	for f, face := range faces {
		for _, l := range face {
			if int(l) >= layoutCount {
				return nil, fmt.Errorf("%w: face %d references layout %d of %d", ErrInvalidMesh, f, l, layoutCount)
			}
		}
		for i := 2; i < len(face); i++ {
			out = append(out, face[0], face[i-1], face[i])
		}
	}
	return out, nil
}

// targetDeltas expands a sparse blend-shape target to one delta per layout.
func targetDeltas(t *dna.BlendShapeTarget, layoutPositions []uint32) [][3]float32 {
	byPosition := make(map[uint32][3]float32, len(t.VertexIndices))
	for i, v := range t.VertexIndices {
		if i >= t.Deltas.Len() {
			break
		}
		byPosition[v] = [3]float32{t.Deltas.Xs[i], t.Deltas.Ys[i], t.Deltas.Zs[i]}
	}
	out := make([][3]float32, len(layoutPositions))
	for k, p := range layoutPositions {
		out[k] = byPosition[p]
	}
	return out
}

func bounds(points [][3]float32) vec3.Box {
	box := vec3.Box{Min: vec3.T(points[0]), Max: vec3.T(points[0])}
	for _, p := range points[1:] {
		pb := vec3.Box{Min: vec3.T(p), Max: vec3.T(p)}
		box.Join(&pb)
	}
	return box
}
