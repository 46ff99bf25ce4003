//go:build windows

package stream

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// mapping is a file mapping object with one view over the whole file.
type mapping struct {
	file     *os.File
	handle   windows.Handle
	addr     uintptr
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
		if err := m.mapRegion(info.Size()); err != nil {
			file.Close()
			return nil, err
		}
	}
	return m, nil
}

func (m *mapping) mapRegion(size int64) error {
	prot := uint32(windows.PAGE_READONLY)
	access := uint32(windows.FILE_MAP_READ)
	if m.writable {
		prot = windows.PAGE_READWRITE
		access = windows.FILE_MAP_WRITE
	}

	handle, err := windows.CreateFileMapping(windows.Handle(m.file.Fd()), nil, prot,
		uint32(size>>32), uint32(size), nil)
	if err != nil {
		return fmt.Errorf("creating file mapping: %w", err)
	}

	addr, err := windows.MapViewOfFile(handle, access, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(handle)
		return fmt.Errorf("mapping view of file: %w", err)
	}

	m.handle = handle
	m.addr = addr
	m.data = unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size))
	return nil
}

func (m *mapping) unmap() error {
	if m.data == nil {
		return nil
	}
	unmapErr := windows.UnmapViewOfFile(m.addr)
	closeErr := windows.CloseHandle(m.handle)
	m.data = nil
	m.addr = 0
	m.handle = 0
	return errors.Join(unmapErr, closeErr)
}

func (m *mapping) bytes() []byte {
	return m.data
}

func (m *mapping) flush() error {
	if !m.writable || len(m.data) == 0 {
		return nil
	}
	if err := windows.FlushViewOfFile(m.addr, uintptr(len(m.data))); err != nil {
		return fmt.Errorf("flushing view: %w", err)
	}
	return m.file.Sync()
}

// resize unmaps the view, truncates the file and maps it again.
func (m *mapping) resize(size int64) error {
	if size == int64(len(m.data)) {
		return nil
	}
	if err := m.flush(); err != nil {
		return err
	}
	if err := m.unmap(); err != nil {
		return err
	}
	if err := m.file.Truncate(size); err != nil {
		return fmt.Errorf("truncating to %d bytes: %w", size, err)
	}
	if size == 0 {
		return nil
	}
	return m.mapRegion(size)
}

func (m *mapping) close() error {
	flushErr := m.flush()
	unmapErr := m.unmap()
	closeErr := m.file.Close()
	return errors.Join(flushErr, unmapErr, closeErr)
}
