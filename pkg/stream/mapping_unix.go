//go:build unix

package stream

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mapping is a shared mmap of a file. Empty files have no mapping.
type mapping struct {
	file     *os.File
	data     []byte
	writable bool
}

func openMapping(path string, access AccessMode) (*mapping, error) {
	file, err := os.OpenFile(path, access.mappedFlags(), 0o644)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	m := &mapping{file: file, writable: access.CanWrite()}
	if info.Size() > 0 {
		if err := m.mapRegion(int(info.Size())); err != nil {
			file.Close()
			return nil, err
		}
	}
	return m, nil
}

func (m *mapping) prot() int {
	if m.writable {
		return unix.PROT_READ | unix.PROT_WRITE
	}
	return unix.PROT_READ
}

func (m *mapping) mapRegion(size int) error {
	data, err := unix.Mmap(int(m.file.Fd()), 0, size, m.prot(), unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("memory-mapping %d bytes: %w", size, err)
	}
	m.data = data
	return nil
}

func (m *mapping) unmap() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	if err != nil {
		return fmt.Errorf("unmapping: %w", err)
	}
	return nil
}

func (m *mapping) bytes() []byte {
	return m.data
}

func (m *mapping) flush() error {
	if !m.writable || len(m.data) == 0 {
		return nil
	}
	if err := unix.Msync(m.data, unix.MS_SYNC); err != nil {
		return fmt.Errorf("msync: %w", err)
	}
	return nil
}

func (m *mapping) close() error {
	flushErr := m.flush()
	unmapErr := m.unmap()
	closeErr := m.file.Close()
	return errors.Join(flushErr, unmapErr, closeErr)
}
