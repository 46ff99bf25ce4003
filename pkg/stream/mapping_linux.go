//go:build linux

package stream

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// resize grows or shrinks the file and its mapping, remapping in place when
// the kernel can extend the region and moving it otherwise.
func (m *mapping) resize(size int64) error {
	if size == int64(len(m.data)) {
		return nil
	}
	if size == 0 {
		if err := m.unmap(); err != nil {
			return err
		}
		return m.file.Truncate(0)
	}

	growing := size > int64(len(m.data))
	if growing {
		if err := m.file.Truncate(size); err != nil {
			return fmt.Errorf("truncating to %d bytes: %w", size, err)
		}
	}

	if m.data == nil {
		if err := m.mapRegion(int(size)); err != nil {
			return err
		}
	} else {
		data, err := unix.Mremap(m.data, int(size), 0)
		if err != nil {
			data, err = unix.Mremap(m.data, int(size), unix.MREMAP_MAYMOVE)
		}
		if err != nil {
			return fmt.Errorf("mremap to %d bytes: %w", size, err)
		}
		m.data = data
	}

	if !growing {
		if err := m.file.Truncate(size); err != nil {
			return fmt.Errorf("truncating to %d bytes: %w", size, err)
		}
	}
	return nil
}
