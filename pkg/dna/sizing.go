package dna

// MinArenaSize is the smallest initial arena size handed to a Reader.
const MinArenaSize = 16 << 10

// layerBudget estimates the decoded footprint of a layer from the stream
// size: fraction of the stream holding the layer, times the in-memory
// overhead of its decoded form.
type layerBudget struct {
	fraction float64
	overhead float64
}

var streamBudgets = [...]layerBudget{
	LayerDescriptor:                 {fraction: 0.01, overhead: 1.0},
	LayerDefinition:                 {fraction: 0.10, overhead: 1.2},
	LayerBehavior:                   {fraction: 0.45, overhead: 1.5},
	LayerGeometry:                   {fraction: 0.55, overhead: 1.5},
	LayerGeometryWithoutBlendShapes: {fraction: 0.25, overhead: 1.5},
	LayerAllWithoutBlendShapes:      {fraction: 0.70, overhead: 1.75},
	LayerAll:                        {fraction: 1.00, overhead: 2.0},
}

// Initial arena sizes of LOD-constrained loads, where the stream size says
// little about what will be decoded.
var constrainedSizes = [...]int{
	LayerDescriptor:                 256 << 10,
	LayerDefinition:                 4 << 20,
	LayerBehavior:                   32 << 20,
	LayerGeometry:                   128 << 20,
	LayerGeometryWithoutBlendShapes: 64 << 20,
	LayerAllWithoutBlendShapes:      96 << 20,
	LayerAll:                        160 << 20,
}

// ArenaSize returns the initial arena size for loading layer out of a
// container of streamSize bytes.
func ArenaSize(layer DataLayer, streamSize uint64, constrained bool) int {
	if int(layer) >= len(streamBudgets) {
		layer = LayerAll
	}
	if constrained {
		return constrainedSizes[layer]
	}
	b := streamBudgets[layer]
	return max(int(float64(streamSize)*b.fraction*b.overhead), MinArenaSize)
}
