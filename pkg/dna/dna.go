// Package dna reads and writes DNA rig assets: the versioned binary container
// describing a procedural facial rig (descriptor, definition, behavior and
// optional geometry).
//
// A Reader can decode a subset of the container, restricted to a DataLayer
// and to a range or set of levels of detail, so consumers that only need
// controls or joints never decode geometry. A Writer serializes an asset
// built field by field.
package dna

import "fmt"

// Signature opens every DNA container; Terminator closes it.
var (
	Signature  = [3]byte{'D', 'N', 'A'}
	Terminator = [3]byte{'A', 'N', 'D'}
)

// JointRootParent is the parent index stored for root joints.
const JointRootParent uint16 = 0xFFFF

// Version is a container format version.
type Version struct {
	Generation uint16
	Version    uint16
}

// Supported container versions. Version 1 predates descriptor metadata
// and the PSD block.
var (
	Version21      = Version{Generation: 2, Version: 1}
	Version22      = Version{Generation: 2, Version: 2}
	CurrentVersion = Version22
)

// String returns the version as "Generation.Version".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Generation, v.Version)
}

// AtLeast returns true if v is >= generation.version.
func (v Version) AtLeast(generation, version uint16) bool {
	if v.Generation != generation {
		return v.Generation > generation
	}
	return v.Version >= version
}

// Supported reports whether the reader understands v.
func (v Version) Supported() bool {
	return v.Generation == CurrentVersion.Generation &&
		v.Version >= Version21.Version && v.Version <= CurrentVersion.Version
}

// Section version tags. Each section records the tag it was written with.
const (
	sectionVersionLegacy  uint16 = 1
	sectionVersionCurrent uint16 = 2
)
