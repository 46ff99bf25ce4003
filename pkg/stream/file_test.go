package stream

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStream_OpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.dna")
	s := NewFileStream(path, AccessRead)

	err := s.Open()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOpen)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var serr *Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, path, serr.Path)

	// Nothing is usable until a later Open succeeds.
	buf := make([]byte, 4)
	n, err := s.Read(buf)
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, s.Size())
	assert.Zero(t, s.Tell())
}

func TestFileStream_AlreadyOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.bin")
	s := NewFileStream(path, AccessWrite)
	require.NoError(t, s.Open())
	defer s.Close()

	err := s.Open()
	assert.ErrorIs(t, err, ErrAlreadyOpen)
}

func TestFileStream_WriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rw.bin")

	w := NewFileStream(path, AccessWrite)
	require.NoError(t, w.Open())
	n, err := w.Write([]byte("hello, rig"))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, uint64(10), w.Size())
	assert.Equal(t, uint64(10), w.Tell())
	require.NoError(t, w.Close())

	r := NewFileStream(path, AccessRead)
	require.NoError(t, r.Open())
	defer r.Close()
	assert.Equal(t, uint64(10), r.Size())

	require.NoError(t, r.Seek(7))
	buf := make([]byte, 8)
	n, err = r.Read(buf)
	require.NoError(t, err, "clean EOF is not an error")
	assert.Equal(t, 3, n)
	assert.Equal(t, "rig", string(buf[:n]))
	assert.Equal(t, uint64(10), r.Tell())
}

func TestFileStream_AccessViolations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	r := NewFileStream(path, AccessRead)
	require.NoError(t, r.Open())
	defer r.Close()

	_, err := r.Write([]byte{4})
	assert.ErrorIs(t, err, ErrWrite)

	w := NewFileStream(path, AccessWrite)
	require.NoError(t, w.Open())
	defer w.Close()

	_, err = w.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrRead)
}

func TestFileStream_ReadWriteKeepsContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keep.bin")
	require.NoError(t, os.WriteFile(path, []byte("abcdef"), 0o644))

	s := NewFileStream(path, AccessReadWrite)
	require.NoError(t, s.Open())
	require.NoError(t, s.Seek(2))
	_, err := s.Write([]byte("XY"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abXYef", string(data))
}

func TestAccessMode_String(t *testing.T) {
	tests := []struct {
		mode AccessMode
		want string
	}{
		{AccessRead, "read"},
		{AccessWrite, "write"},
		{AccessReadWrite, "read-write"},
		{AccessMode(0), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mode.String())
		})
	}
}

func TestFileStream_BufferedSeekPatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patch.bin")

	w := NewFileStream(path, AccessWrite)
	require.NoError(t, w.Open())
	_, err := w.Write([]byte("????body"))
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size(), "small writes stay buffered")

	require.NoError(t, w.Seek(0))
	_, err = w.Write([]byte("head"))
	require.NoError(t, err)
	assert.Equal(t, uint64(8), w.Size())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "headbody", string(data))
}

func TestFileStream_InterleavedReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.bin")
	require.NoError(t, os.WriteFile(path, []byte("abcdefgh"), 0o644))

	s := NewFileStream(path, AccessReadWrite)
	require.NoError(t, s.Open())

	buf := make([]byte, 2)
	_, err := s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(buf))

	_, err = s.Write([]byte("XY"))
	require.NoError(t, err)
	assert.Equal(t, uint64(4), s.Tell())

	_, err = s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ef", string(buf))

	require.NoError(t, s.Seek(2))
	_, err = s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "XY", string(buf))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abXYefgh", string(data))
}
