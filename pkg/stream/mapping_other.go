//go:build !unix && !windows

package stream

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// mapping emulates a file mapping with an in-memory copy of the file that is
// written back on flush and close.
type mapping struct {
	file     *os.File
	data     []byte
	writable bool
	dirty    bool
}

func openMapping(path string, access AccessMode) (*mapping, error) {
	file, err := os.OpenFile(path, access.mappedFlags(), 0o644)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &mapping{file: file, data: data, writable: access.CanWrite()}, nil
}

func (m *mapping) bytes() []byte {
	// Callers may write through the returned slice.
	m.dirty = m.writable
	return m.data
}

func (m *mapping) resize(size int64) error {
	old := int64(len(m.data))
	if size <= int64(cap(m.data)) {
		m.data = m.data[:size]
		if size > old {
			clear(m.data[old:])
		}
	} else {
		grown := make([]byte, size)
		copy(grown, m.data)
		m.data = grown
	}
	m.dirty = true
	return nil
}

func (m *mapping) flush() error {
	if !m.writable || !m.dirty {
		return nil
	}
	if _, err := m.file.WriteAt(m.data, 0); err != nil {
		return fmt.Errorf("writing back: %w", err)
	}
	if err := m.file.Truncate(int64(len(m.data))); err != nil {
		return fmt.Errorf("truncating to %d bytes: %w", len(m.data), err)
	}
	m.dirty = false
	return m.file.Sync()
}

func (m *mapping) close() error {
	flushErr := m.flush()
	closeErr := m.file.Close()
	m.data = nil
	return errors.Join(flushErr, closeErr)
}
