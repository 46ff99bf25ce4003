package dna

import (
	"fmt"
	"slices"
)

// LODConstraint restricts which levels of detail are materialized.
// LOD 0 is the most detailed level.
type LODConstraint struct {
	explicit bool
	maxLOD   uint16 // most detailed LOD of a range
	minLOD   uint16 // least detailed LOD of a range
	lods     []uint16
}

// AllLODs returns a constraint covering every stored LOD.
func AllLODs() LODConstraint {
	return LODConstraint{maxLOD: 0, minLOD: 0xFFFF}
}

// LODRange returns a closed range constraint. maxLOD is the most detailed
// LOD to load and minLOD the least detailed; arguments in either order are
// accepted. Bounds past the last stored LOD are clamped to it.
func LODRange(maxLOD, minLOD uint16) LODConstraint {
	if maxLOD > minLOD {
		maxLOD, minLOD = minLOD, maxLOD
	}
	return LODConstraint{maxLOD: maxLOD, minLOD: minLOD}
}

// LODSet returns a constraint selecting an explicit, unordered set of LODs.
func LODSet(lods ...uint16) LODConstraint {
	return LODConstraint{explicit: true, lods: slices.Clone(lods)}
}

// String describes the constraint.
func (c LODConstraint) String() string {
	if c.explicit {
		return fmt.Sprintf("lods%v", c.lods)
	}
	return fmt.Sprintf("lods[%d..%d]", c.maxLOD, c.minLOD)
}

// Resolve returns the sorted, unique LODs selected out of lodCount stored LODs.
func (c LODConstraint) Resolve(lodCount uint16) ([]uint16, error) {
	if lodCount == 0 {
		return nil, nil
	}
	last := lodCount - 1

	if !c.explicit {
		lo, hi := min(c.maxLOD, last), min(c.minLOD, last)
		out := make([]uint16, 0, hi-lo+1)
		for l := lo; l <= hi; l++ {
			out = append(out, l)
		}
		return out, nil
	}

	out := make([]uint16, 0, len(c.lods))
	for _, l := range c.lods {
		if l <= last {
			out = append(out, l)
		}
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %v of %d stored", ErrLODOutOfRange, c.lods, lodCount)
	}
	return out, nil
}

// isIdentity reports whether lods selects every one of lodCount LODs.
func isIdentity(lods []uint16, lodCount uint16) bool {
	return len(lods) == int(lodCount)
}
