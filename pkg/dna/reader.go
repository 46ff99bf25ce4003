package dna

import (
	"bytes"
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/rigdna/pkg/arena"
	"github.com/Faultbox/rigdna/pkg/stream"
)

// headerSize is the signature, version and section index.
const headerSize = 3 + 2 + 2 + 5*4

// Reader decodes a DNA container from a stream. The decoded RigAsset is
// embedded so its accessors are available directly on the Reader; every
// slice it exposes lives in the Reader's arena and stays valid until the
// next Read or Close.
type Reader struct {
	RigAsset

	s           stream.Stream
	layer       DataLayer
	constraint  LODConstraint
	heuristic   bool // arena sized from the stream
	regionSize  int
	log         *zap.Logger
	arena       *arena.Arena
	lods        []uint16
	constrained bool
	cache       denormalizedCache
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithLogger sets the logger used for debug output.
func WithLogger(log *zap.Logger) ReaderOption {
	return func(r *Reader) {
		if log != nil {
			r.log = log
		}
	}
}

// WithRegionSize sets the arena region size in bytes.
func WithRegionSize(n int) ReaderOption {
	return func(r *Reader) {
		if n > 0 {
			r.regionSize = n
		}
	}
}

func newReader(s stream.Stream, layer DataLayer, c LODConstraint, opts []ReaderOption) *Reader {
	r := &Reader{
		s:          s,
		layer:      layer,
		constraint: c,
		regionSize: arena.DefaultRegionSize,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewReader creates a reader loading layer for LODs maxLOD through the last
// stored LOD. With maxLOD 0 the load is unconstrained.
func NewReader(s stream.Stream, layer DataLayer, maxLOD uint16, opts ...ReaderOption) *Reader {
	r := newReader(s, layer, LODRange(maxLOD, 0xFFFF), opts)
	r.heuristic = maxLOD == 0
	return r
}

// NewReaderRange creates a reader loading layer for the LODs between maxLOD
// (most detailed) and minLOD (least detailed), inclusive.
func NewReaderRange(s stream.Stream, layer DataLayer, maxLOD, minLOD uint16, opts ...ReaderOption) *Reader {
	return newReader(s, layer, LODRange(maxLOD, minLOD), opts)
}

// NewReaderLODs creates a reader loading layer for an explicit set of LODs.
func NewReaderLODs(s stream.Stream, layer DataLayer, lods []uint16, opts ...ReaderOption) *Reader {
	return newReader(s, layer, LODSet(lods...), opts)
}

// Layer returns the configured data layer.
func (r *Reader) Layer() DataLayer {
	return r.layer
}

// LODs returns the container LOD numbers selected by the last Read, in
// order. LOD i of the decoded asset is LODs()[i] of the container.
func (r *Reader) LODs() []uint16 {
	return r.lods
}

// ArenaStats reports the arena backing the decoded asset.
func (r *Reader) ArenaStats() arena.Stats {
	if r.arena == nil {
		return arena.Stats{}
	}
	return r.arena.Stats()
}

// Asset returns the decoded asset.
func (r *Reader) Asset() *RigAsset {
	return &r.RigAsset
}

// Read decodes the container starting at the current stream position,
// replacing any previously decoded asset.
func (r *Reader) Read() error {
	r.release()

	streamSize := r.s.Size() - min(r.s.Tell(), r.s.Size())
	size := ArenaSize(r.layer, streamSize, !r.heuristic)
	r.arena = arena.New(size, r.regionSize)
	r.log.Debug("reading DNA",
		zap.Stringer("layer", r.layer),
		zap.Stringer("lods", r.constraint),
		zap.Uint64("stream_size", streamSize),
		zap.Int("arena_size", size),
		zap.Bool("arena_heuristic", r.heuristic))

	if err := r.read(newDecoder(r.s, r.arena)); err != nil {
		r.RigAsset = RigAsset{}
		r.lods = nil
		return err
	}

	stats := r.arena.Stats()
	r.log.Debug("read DNA",
		zap.String("name", r.Descriptor.Name),
		zap.Stringer("version", r.Version),
		zap.Uint16s("lods", r.lods),
		zap.Int("arena_regions", stats.Regions),
		zap.Int64("arena_used", stats.UsedBytes))
	return nil
}

func (r *Reader) read(d *decoder) error {
	sig := d.read(3)
	if sig == nil {
		if d.err != nil && !errors.Is(d.err, ErrInvalidData) {
			return d.err
		}
		var actual [3]byte
		return &SignatureMismatchError{Expected: Signature, Actual: actual}
	}
	if !bytes.Equal(sig, Signature[:]) {
		actual := [3]byte(sig)
		return &SignatureMismatchError{Expected: Signature, Actual: actual}
	}

	v := Version{Generation: d.u16(), Version: d.u16()}
	if d.err != nil {
		return d.err
	}
	if !v.Supported() {
		return &VersionMismatchError{Expected: CurrentVersion, Actual: v}
	}
	r.Version = v

	var index sectionIndex
	index.decode(d)
	if d.err != nil {
		return d.err
	}
	if err := index.validate(headerSize, d.size-d.base); err != nil {
		return err
	}

	d.seek(index.descriptor)
	decodeDescriptor(d, &r.Descriptor)
	if d.err != nil {
		return d.err
	}

	stored := r.Descriptor.LODCount
	lods, err := r.constraint.Resolve(stored)
	if err != nil {
		return err
	}
	r.lods = lods
	r.constrained = !isIdentity(lods, stored)
	r.Descriptor.LODCount = uint16(len(lods))

	var meshes map[int]bool
	if r.layer.IncludesDefinition() {
		d.seek(index.definition)
		decodeDefinition(d, &r.Definition)
		if d.err != nil {
			return d.err
		}
		if err := validateDefinition(&r.Definition); err != nil {
			return err
		}
		if r.constrained {
			meshes = meshesForLODs(&r.Definition.MeshLODs, lods)
			if err := filterDefinition(&r.Definition, lods); err != nil {
				return err
			}
		}
	} else {
		r.log.Debug("skipping section", zap.String("section", "definition"))
	}

	if r.layer.IncludesBehavior() {
		d.seek(index.behavior)
		decodeBehavior(d, &r.Behavior)
		if d.err != nil {
			return d.err
		}
		if err := validateBehavior(&r.Behavior); err != nil {
			return err
		}
		if r.constrained {
			if err := filterBehavior(&r.Behavior, lods); err != nil {
				return err
			}
		}
	} else {
		r.log.Debug("skipping section", zap.String("section", "behavior"))
	}

	if r.layer.IncludesGeometry() {
		d.seek(index.geometry)
		f := geometryFilter{meshes: meshes, blendShapes: r.layer.IncludesBlendShapeTargets()}
		r.HasGeometry = decodeGeometry(d, &r.Geometry, &f)
		if d.err != nil {
			return d.err
		}
		if f.skippedMesh > 0 || f.skippedBlend > 0 {
			r.log.Debug("skipped geometry payloads",
				zap.Int("meshes", f.skippedMesh),
				zap.Int("blend_shape_blocks", f.skippedBlend))
		}
	} else {
		r.log.Debug("skipping section", zap.String("section", "geometry"))
	}

	d.seek(index.end)
	term := d.read(3)
	if d.err != nil {
		return d.err
	}
	if !bytes.Equal(term, Terminator[:]) {
		return invalidData("terminator %q", term)
	}
	return nil
}

// MeshBlendShapeChannelMappingIndicesForLOD returns the mesh/channel mapping
// entries whose mesh and channel are both active at lod.
func (r *Reader) MeshBlendShapeChannelMappingIndicesForLOD(lod uint16) []uint32 {
	r.populateCache()
	if int(lod) >= len(r.cache.meshBlendShapes) {
		return nil
	}
	return r.cache.meshBlendShapes[lod]
}

// JointVariableAttributeIndices returns the sorted joint attribute indices
// driven at lod.
func (r *Reader) JointVariableAttributeIndices(lod uint16) []uint16 {
	r.populateCache()
	if int(lod) >= len(r.cache.variableAttributes) {
		return nil
	}
	return r.cache.variableAttributes[lod]
}

func (r *Reader) populateCache() {
	if r.cache.populated {
		return
	}
	r.cache.populate(&r.RigAsset)
	r.log.Debug("populated denormalized cache", zap.Uint16("lods", r.Descriptor.LODCount))
}

// Close drops the decoded asset and its cache, then releases the arena.
// The stream is left open.
func (r *Reader) Close() error {
	return r.release()
}

func (r *Reader) release() error {
	r.RigAsset = RigAsset{}
	r.lods = nil
	r.constrained = false
	r.cache.reset()
	if r.arena == nil {
		return nil
	}
	err := r.arena.Release()
	r.arena = nil
	if errors.Is(err, arena.ErrReleased) {
		return nil
	}
	return err
}
