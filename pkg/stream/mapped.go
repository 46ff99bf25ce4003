package stream

import (
	"errors"
	"fmt"
	"math"
)

// MappedFileStream is a Stream over a memory-mapped file.
//
// The mapping implementation is chosen at build time: mremap on Linux,
// unmap-truncate-map on other Unix systems, file mapping objects on Windows,
// and a buffered file on every other platform.
type MappedFileStream struct {
	path   string
	access AccessMode
	m      *mapping
	pos    uint64
}

// NewMappedFileStream creates a mapped stream. The file is not touched until Open.
func NewMappedFileStream(path string, access AccessMode) *MappedFileStream {
	return &MappedFileStream{path: path, access: access}
}

// Path returns the file path.
func (s *MappedFileStream) Path() string {
	return s.path
}

// Open opens and maps the file.
func (s *MappedFileStream) Open() error {
	if s.m != nil {
		return newError(ErrAlreadyOpen, s.path, nil)
	}
	m, err := openMapping(s.path, s.access)
	if err != nil {
		return newError(ErrOpen, s.path, err)
	}
	s.m = m
	s.pos = 0
	return nil
}

// Close flushes pending writes and releases the mapping.
func (s *MappedFileStream) Close() error {
	if s.m == nil {
		return nil
	}
	err := s.m.close()
	s.m = nil
	s.pos = 0
	if err != nil {
		return fmt.Errorf("closing %s: %w", s.path, err)
	}
	return nil
}

// Tell returns the current position.
func (s *MappedFileStream) Tell() uint64 {
	return s.pos
}

// Seek moves to an absolute position.
func (s *MappedFileStream) Seek(position uint64) error {
	if s.m == nil {
		return nil
	}
	if position > math.MaxInt64 {
		return newError(ErrSeek, s.path, fmt.Errorf("position %d out of range", position))
	}
	s.pos = position
	return nil
}

// Read copies mapped bytes from the current position into p.
func (s *MappedFileStream) Read(p []byte) (int, error) {
	if s.m == nil {
		return 0, nil
	}
	if !s.access.CanRead() {
		return 0, newError(ErrRead, s.path, errors.New("stream opened write-only"))
	}
	data := s.m.bytes()
	if s.pos >= uint64(len(data)) {
		return 0, nil
	}
	n := copy(p, data[s.pos:])
	s.pos += uint64(n)
	return n, nil
}

// Write copies p into the mapping, growing the file when writing past its end.
func (s *MappedFileStream) Write(p []byte) (int, error) {
	if s.m == nil || len(p) == 0 {
		return 0, nil
	}
	if !s.access.CanWrite() {
		return 0, newError(ErrWrite, s.path, errors.New("stream opened read-only"))
	}
	end := s.pos + uint64(len(p))
	if end > s.Size() {
		if err := s.m.resize(int64(end)); err != nil {
			return 0, newError(ErrWrite, s.path, err)
		}
	}
	n := copy(s.m.bytes()[s.pos:], p)
	s.pos += uint64(n)
	return n, nil
}

// Size returns the mapped length.
func (s *MappedFileStream) Size() uint64 {
	if s.m == nil {
		return 0
	}
	return uint64(len(s.m.bytes()))
}

// Flush forces dirty pages to storage.
func (s *MappedFileStream) Flush() error {
	if s.m == nil {
		return nil
	}
	if err := s.m.flush(); err != nil {
		return newError(ErrWrite, s.path, err)
	}
	return nil
}

// Resize changes the file length and remaps it. The mapped address may move.
func (s *MappedFileStream) Resize(size uint64) error {
	if s.m == nil {
		return nil
	}
	if !s.access.CanWrite() {
		return newError(ErrWrite, s.path, errors.New("stream opened read-only"))
	}
	if size > math.MaxInt64 {
		return newError(ErrWrite, s.path, fmt.Errorf("size %d out of range", size))
	}
	if err := s.m.resize(int64(size)); err != nil {
		return newError(ErrWrite, s.path, err)
	}
	return nil
}

// Bytes returns the mapped region. The slice is invalidated by Resize, Flush
// and Close.
func (s *MappedFileStream) Bytes() []byte {
	if s.m == nil {
		return nil
	}
	return s.m.bytes()
}
