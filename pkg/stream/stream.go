// Package stream provides bounded, seekable byte streams used to read and
// write DNA rig assets.
//
// Three backends share one contract: FileStream (plain file), MappedFileStream
// (memory-mapped file) and MemoryStream (in-memory buffer). Every stream has an
// explicit Open/Close lifecycle. Calling Read, Write or Seek on a stream that is
// not open is a caller error: the call does nothing and reports no error.
package stream

import "os"

// AccessMode selects how a stream's underlying resource is opened.
type AccessMode uint8

// Access modes.
const (
	AccessRead      AccessMode = 1
	AccessWrite     AccessMode = 2
	AccessReadWrite AccessMode = AccessRead | AccessWrite
)

// String returns a human-readable access mode name.
func (a AccessMode) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessReadWrite:
		return "read-write"
	default:
		return "unknown"
	}
}

// CanRead reports whether the mode permits reading.
func (a AccessMode) CanRead() bool { return a&AccessRead != 0 }

// CanWrite reports whether the mode permits writing.
func (a AccessMode) CanWrite() bool { return a&AccessWrite != 0 }

// fileFlags returns os.OpenFile flags for plain file access.
// Write-only streams truncate, read-write streams keep existing content.
func (a AccessMode) fileFlags() int {
	switch a {
	case AccessWrite:
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case AccessReadWrite:
		return os.O_RDWR | os.O_CREATE
	default:
		return os.O_RDONLY
	}
}

// mappedFlags returns os.OpenFile flags for mapped access.
// A shared writable mapping needs a read-write descriptor even for write-only streams.
func (a AccessMode) mappedFlags() int {
	switch a {
	case AccessWrite:
		return os.O_RDWR | os.O_CREATE | os.O_TRUNC
	case AccessReadWrite:
		return os.O_RDWR | os.O_CREATE
	default:
		return os.O_RDONLY
	}
}

// Stream is a finite, seekable, readable and writable byte stream.
//
// Read returns a short count without error at the end of the stream; an
// error is reported only for genuine I/O failures.
type Stream interface {
	Open() error
	Close() error
	Tell() uint64
	Seek(position uint64) error
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Size() uint64
}

// MappedStream is a Stream backed by mapped memory.
//
// Resize may relocate the mapping, and Close releases it. Slices obtained
// from the mapping must not be kept across Resize, Flush or Close.
type MappedStream interface {
	Stream
	Flush() error
	Resize(size uint64) error
}

// Compile-time interface checks.
var (
	_ Stream       = (*FileStream)(nil)
	_ Stream       = (*MemoryStream)(nil)
	_ MappedStream = (*MappedFileStream)(nil)
)
