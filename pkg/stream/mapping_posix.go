//go:build unix && !linux

package stream

import "fmt"

// resize unmaps, truncates and maps the file again. The mapping may move.
func (m *mapping) resize(size int64) error {
	if size == int64(len(m.data)) {
		return nil
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
	return m.mapRegion(int(size))
}
