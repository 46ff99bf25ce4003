package dna

import "slices"

// denormalizedCache holds per-LOD lookups derived from a decoded asset.
// It is filled on first use and dropped whenever the asset changes.
type denormalizedCache struct {
	populated          bool
	meshBlendShapes    [][]uint32 // LOD -> mesh/channel mapping entries
	variableAttributes [][]uint16 // LOD -> joint attribute indices
}

func (c *denormalizedCache) reset() {
	*c = denormalizedCache{}
}

func (c *denormalizedCache) populate(a *RigAsset) {
	lodCount := int(a.Descriptor.LODCount)
	c.meshBlendShapes = make([][]uint32, lodCount)
	c.variableAttributes = make([][]uint16, lodCount)

	mapping := &a.Definition.MeshBlendShapeChannelMapping
	for lod := range lodCount {
		meshes := a.Definition.MeshLODs.indicesFor(uint16(lod))
		channels := a.Definition.BlendShapeChannelLODs.indicesFor(uint16(lod))
		var entries []uint32
		for i, mesh := range mapping.MeshIndices {
			if i >= len(mapping.BlendShapeChannelIndices) {
				break
			}
			if slices.Contains(meshes, mesh) && slices.Contains(channels, mapping.BlendShapeChannelIndices[i]) {
				entries = append(entries, uint32(i))
			}
		}
		c.meshBlendShapes[lod] = entries

		var attrs []uint16
		for _, g := range a.Behavior.Joints.Groups {
			if lod >= len(g.LODs) {
				continue
			}
			rows := min(int(g.LODs[lod]), len(g.OutputIndices))
			attrs = append(attrs, g.OutputIndices[:rows]...)
		}
		slices.Sort(attrs)
		c.variableAttributes[lod] = slices.Compact(attrs)
	}
	c.populated = true
}
