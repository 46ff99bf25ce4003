package dna

import "fmt"

// DataLayer selects which sections a Reader materializes.
type DataLayer uint8

// Data layers. Every layer except Descriptor includes the definition.
const (
	LayerDescriptor DataLayer = iota
	LayerDefinition
	LayerBehavior
	LayerGeometry
	LayerGeometryWithoutBlendShapes
	LayerAllWithoutBlendShapes
	LayerAll
)

var layerNames = [...]string{
	LayerDescriptor:                 "descriptor",
	LayerDefinition:                 "definition",
	LayerBehavior:                   "behavior",
	LayerGeometry:                   "geometry",
	LayerGeometryWithoutBlendShapes: "geometry-without-blend-shapes",
	LayerAllWithoutBlendShapes:      "all-without-blend-shapes",
	LayerAll:                        "all",
}

// String returns the layer name.
func (l DataLayer) String() string {
	if int(l) < len(layerNames) {
		return layerNames[l]
	}
	return fmt.Sprintf("Unknown(%d)", l)
}

// ParseDataLayer parses a layer name as returned by String.
func ParseDataLayer(name string) (DataLayer, error) {
	for i, n := range layerNames {
		if n == name {
			return DataLayer(i), nil
		}
	}
	return 0, fmt.Errorf("unknown data layer: %q", name)
}

// IncludesDefinition reports whether the definition section is loaded.
func (l DataLayer) IncludesDefinition() bool {
	return l != LayerDescriptor
}

// IncludesBehavior reports whether the behavior section is loaded.
func (l DataLayer) IncludesBehavior() bool {
	return l == LayerBehavior || l == LayerAllWithoutBlendShapes || l == LayerAll
}

// IncludesGeometry reports whether the geometry section is loaded.
func (l DataLayer) IncludesGeometry() bool {
	switch l {
	case LayerGeometry, LayerGeometryWithoutBlendShapes, LayerAllWithoutBlendShapes, LayerAll:
		return true
	default:
		return false
	}
}

// IncludesBlendShapeTargets reports whether mesh blend-shape targets are loaded.
func (l DataLayer) IncludesBlendShapeTargets() bool {
	return l == LayerGeometry || l == LayerAll
}
