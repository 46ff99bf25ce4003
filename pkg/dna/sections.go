package dna

// sectionIndex holds the container-relative offset of each section.
type sectionIndex struct {
	descriptor uint32
	definition uint32
	behavior   uint32
	geometry   uint32
	end        uint32
}

func (x *sectionIndex) decode(d *decoder) {
	x.descriptor = d.u32()
	x.definition = d.u32()
	x.behavior = d.u32()
	x.geometry = d.u32()
	x.end = d.u32()
}

func (x *sectionIndex) encode(e *encoder) {
	e.u32(x.descriptor)
	e.u32(x.definition)
	e.u32(x.behavior)
	e.u32(x.geometry)
	e.u32(x.end)
}

// validate checks that the sections are ordered and inside the stream.
func (x *sectionIndex) validate(headerEnd, size uint64) error {
	offsets := [...]uint32{x.descriptor, x.definition, x.behavior, x.geometry, x.end}
	prev := headerEnd
	for _, off := range offsets {
		if uint64(off) < prev || uint64(off) > size {
			return invalidData("section index %v out of order or past %d bytes", offsets, size)
		}
		prev = uint64(off)
	}
	return nil
}

// sectionVersion reads and checks a section version tag.
func sectionVersion(d *decoder, section string) uint16 {
	v := d.u16()
	if d.err == nil && (v < sectionVersionLegacy || v > sectionVersionCurrent) {
		d.fail(invalidData("%s section version %d", section, v))
	}
	return v
}

func decodeDescriptor(d *decoder, desc *Descriptor) {
	sv := sectionVersion(d, "descriptor")
	desc.Name = d.str()
	desc.Archetype = Archetype(d.u16())
	desc.Gender = Gender(d.u16())
	desc.Age = d.u16()
	if sv >= sectionVersionCurrent && d.flag() {
		n := d.count(8)
		desc.Metadata = make([]MetadataEntry, n)
		for i := range desc.Metadata {
			desc.Metadata[i] = MetadataEntry{Key: d.str(), Value: d.str()}
		}
	}
	desc.TranslationUnit = TranslationUnit(d.u16())
	desc.RotationUnit = RotationUnit(d.u16())
	desc.CoordinateSystem = CoordinateSystem{X: Direction(d.u16()), Y: Direction(d.u16()), Z: Direction(d.u16())}
	desc.LODCount = d.u16()
	desc.DBMaxLOD = d.u16()
	desc.DBComplexity = d.str()
	desc.DBName = d.str()
}

func encodeDescriptor(e *encoder, desc *Descriptor, sv uint16) {
	e.u16(sv)
	e.str(desc.Name)
	e.u16(uint16(desc.Archetype))
	e.u16(uint16(desc.Gender))
	e.u16(desc.Age)
	if sv >= sectionVersionCurrent {
		e.flag(len(desc.Metadata) > 0)
		if len(desc.Metadata) > 0 {
			e.u32(uint32(len(desc.Metadata)))
			for _, m := range desc.Metadata {
				e.str(m.Key)
				e.str(m.Value)
			}
		}
	}
	e.u16(uint16(desc.TranslationUnit))
	e.u16(uint16(desc.RotationUnit))
	e.u16(uint16(desc.CoordinateSystem.X))
	e.u16(uint16(desc.CoordinateSystem.Y))
	e.u16(uint16(desc.CoordinateSystem.Z))
	e.u16(desc.LODCount)
	e.u16(desc.DBMaxLOD)
	e.str(desc.DBComplexity)
	e.str(desc.DBName)
}

func decodeLODMapping(d *decoder) LODMapping {
	return LODMapping{LODs: d.u16s(), Indices: d.u16Lists()}
}

func encodeLODMapping(e *encoder, m *LODMapping) {
	e.u16s(m.LODs)
	e.u16Lists(m.Indices)
}

func decodeDefinition(d *decoder, def *Definition) {
	sectionVersion(d, "definition")
	def.JointLODs = decodeLODMapping(d)
	def.BlendShapeChannelLODs = decodeLODMapping(d)
	def.AnimatedMapLODs = decodeLODMapping(d)
	def.MeshLODs = decodeLODMapping(d)
	def.GUIControlNames = d.strs()
	def.RawControlNames = d.strs()
	def.JointNames = d.strs()
	def.BlendShapeChannelNames = d.strs()
	def.AnimatedMapNames = d.strs()
	def.MeshNames = d.strs()
	def.MeshBlendShapeChannelMapping = MeshBlendShapeChannelMapping{
		MeshIndices:              d.u16s(),
		BlendShapeChannelIndices: d.u16s(),
	}
	def.JointHierarchy = d.u16s()
	def.NeutralJointTranslations = d.vector3s()
	def.NeutralJointRotations = d.vector3s()
}

func encodeDefinition(e *encoder, def *Definition, sv uint16) {
	e.u16(sv)
	encodeLODMapping(e, &def.JointLODs)
	encodeLODMapping(e, &def.BlendShapeChannelLODs)
	encodeLODMapping(e, &def.AnimatedMapLODs)
	encodeLODMapping(e, &def.MeshLODs)
	e.strs(def.GUIControlNames)
	e.strs(def.RawControlNames)
	e.strs(def.JointNames)
	e.strs(def.BlendShapeChannelNames)
	e.strs(def.AnimatedMapNames)
	e.strs(def.MeshNames)
	e.u16s(def.MeshBlendShapeChannelMapping.MeshIndices)
	e.u16s(def.MeshBlendShapeChannelMapping.BlendShapeChannelIndices)
	e.u16s(def.JointHierarchy)
	e.vector3s(def.NeutralJointTranslations)
	e.vector3s(def.NeutralJointRotations)
}

func decodeTable(d *decoder) ConditionalTableData {
	return ConditionalTableData{
		InputCount:    d.u16(),
		OutputCount:   d.u16(),
		InputIndices:  d.u16s(),
		OutputIndices: d.u16s(),
		FromValues:    d.f32s(),
		ToValues:      d.f32s(),
		SlopeValues:   d.f32s(),
		CutValues:     d.f32s(),
	}
}

func encodeTable(e *encoder, t *ConditionalTableData) {
	e.u16(t.InputCount)
	e.u16(t.OutputCount)
	e.u16s(t.InputIndices)
	e.u16s(t.OutputIndices)
	e.f32s(t.FromValues)
	e.f32s(t.ToValues)
	e.f32s(t.SlopeValues)
	e.f32s(t.CutValues)
}

func decodeBehavior(d *decoder, b *Behavior) {
	sv := sectionVersion(d, "behavior")
	b.Controls.GUIToRaw = decodeTable(d)
	if sv >= sectionVersionCurrent && d.flag() {
		b.Controls.PSD = PSDMatrix{
			Count:   d.u16(),
			Rows:    d.u16s(),
			Columns: d.u16s(),
			Values:  d.f32s(),
		}
	}

	b.Joints.RowCount = d.u16()
	b.Joints.ColumnCount = d.u16()
	n := d.count(20)
	if n > 0 {
		b.Joints.Groups = make([]JointGroup, n)
	}
	for i := range b.Joints.Groups {
		g := &b.Joints.Groups[i]
		g.LODs = d.u16s()
		g.InputIndices = d.u16s()
		g.OutputIndices = d.u16s()
		g.Values = d.f32s()
		g.JointIndices = d.u16s()
	}

	b.BlendShapeChannels = LODTable{LODs: d.u16s(), Table: decodeTable(d)}
	b.AnimatedMaps = LODTable{LODs: d.u16s(), Table: decodeTable(d)}
}

func encodeBehavior(e *encoder, b *Behavior, sv uint16) {
	e.u16(sv)
	encodeTable(e, &b.Controls.GUIToRaw)
	if sv >= sectionVersionCurrent {
		psd := &b.Controls.PSD
		present := psd.Count > 0 || len(psd.Rows) > 0
		e.flag(present)
		if present {
			e.u16(psd.Count)
			e.u16s(psd.Rows)
			e.u16s(psd.Columns)
			e.f32s(psd.Values)
		}
	}

	e.u16(b.Joints.RowCount)
	e.u16(b.Joints.ColumnCount)
	e.u32(uint32(len(b.Joints.Groups)))
	for i := range b.Joints.Groups {
		g := &b.Joints.Groups[i]
		e.u16s(g.LODs)
		e.u16s(g.InputIndices)
		e.u16s(g.OutputIndices)
		e.f32s(g.Values)
		e.u16s(g.JointIndices)
	}

	e.u16s(b.BlendShapeChannels.LODs)
	encodeTable(e, &b.BlendShapeChannels.Table)
	e.u16s(b.AnimatedMaps.LODs)
	encodeTable(e, &b.AnimatedMaps.Table)
}

// geometryFilter decides which mesh payloads are materialized.
type geometryFilter struct {
	meshes       map[int]bool // nil keeps every mesh
	blendShapes  bool
	skippedMesh  int
	skippedBlend int
}

func (f *geometryFilter) keep(mesh int) bool {
	return f.meshes == nil || f.meshes[mesh]
}

func decodeGeometry(d *decoder, g *Geometry, f *geometryFilter) bool {
	sectionVersion(d, "geometry")
	if !d.flag() {
		return false
	}
	n := d.count(4)
	if n > 0 {
		g.Meshes = make([]Mesh, n)
	}
	for i := range g.Meshes {
		length := d.u32()
		if !f.keep(i) {
			d.skip(length)
			f.skippedMesh++
			continue
		}
		start := d.offset()
		decodeMesh(d, &g.Meshes[i], f)
		if d.err == nil && d.offset()-start != uint64(length) {
			d.fail(invalidData("mesh %d declares %d bytes, decoded %d", i, length, d.offset()-start))
		}
	}
	return true
}

func decodeMesh(d *decoder, m *Mesh, f *geometryFilter) {
	m.Positions = d.vector3s()
	m.TextureCoordinates = TextureCoordinates{Us: d.f32s(), Vs: d.f32s()}
	m.Normals = d.vector3s()
	m.Layouts = VertexLayouts{Positions: d.u32s(), TextureCoordinates: d.u32s(), Normals: d.u32s()}
	if n := d.count(4); n > 0 {
		m.Faces = make([][]uint32, n)
		for i := range m.Faces {
			m.Faces[i] = d.u32s()
		}
	}
	m.MaxInfluencePerVertex = d.u16()
	if d.flag() {
		if n := d.count(8); n > 0 {
			m.SkinWeights = make([]SkinWeights, n)
			for i := range m.SkinWeights {
				m.SkinWeights[i] = SkinWeights{Weights: d.f32s(), JointIndices: d.u16s()}
			}
		}
	}
	if !d.flag() {
		return
	}
	length := d.u32()
	if !f.blendShapes {
		d.skip(length)
		f.skippedBlend++
		return
	}
	if n := d.count(18); n > 0 {
		m.BlendShapeTargets = make([]BlendShapeTarget, n)
		for i := range m.BlendShapeTargets {
			t := &m.BlendShapeTargets[i]
			t.ChannelIndex = d.u16()
			t.VertexIndices = d.u32s()
			t.Deltas = d.vector3s()
		}
	}
}

func encodeGeometry(e *encoder, g *Geometry, present bool, sv uint16) {
	e.u16(sv)
	e.flag(present)
	if !present {
		return
	}
	e.u32(uint32(len(g.Meshes)))
	for i := range g.Meshes {
		at := e.reserveU32()
		encodeMesh(e, &g.Meshes[i])
		e.patchU32(at, e.offset()-at-4)
	}
}

func encodeMesh(e *encoder, m *Mesh) {
	e.vector3s(m.Positions)
	e.f32s(m.TextureCoordinates.Us)
	e.f32s(m.TextureCoordinates.Vs)
	e.vector3s(m.Normals)
	e.u32s(m.Layouts.Positions)
	e.u32s(m.Layouts.TextureCoordinates)
	e.u32s(m.Layouts.Normals)
	e.u32(uint32(len(m.Faces)))
	for _, f := range m.Faces {
		e.u32s(f)
	}
	e.u16(m.MaxInfluencePerVertex)
	e.flag(len(m.SkinWeights) > 0)
	if len(m.SkinWeights) > 0 {
		e.u32(uint32(len(m.SkinWeights)))
		for _, sw := range m.SkinWeights {
			e.f32s(sw.Weights)
			e.u16s(sw.JointIndices)
		}
	}
	e.flag(len(m.BlendShapeTargets) > 0)
	if len(m.BlendShapeTargets) == 0 {
		return
	}
	at := e.reserveU32()
	e.u32(uint32(len(m.BlendShapeTargets)))
	for i := range m.BlendShapeTargets {
		t := &m.BlendShapeTargets[i]
		e.u16(t.ChannelIndex)
		e.u32s(t.VertexIndices)
		e.vector3s(t.Deltas)
	}
	e.patchU32(at, e.offset()-at-4)
}
