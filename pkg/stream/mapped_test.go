package stream

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappedFileStream_OpenMissingFile(t *testing.T) {
	s := NewMappedFileStream(filepath.Join(t.TempDir(), "nope.dna"), AccessRead)
	assert.ErrorIs(t, s.Open(), ErrOpen)
	assert.Zero(t, s.Size())
	assert.Nil(t, s.Bytes())
}

func TestMappedFileStream_WriteGrowsAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapped.bin")

	w := NewMappedFileStream(path, AccessWrite)
	require.NoError(t, w.Open())
	assert.ErrorIs(t, w.Open(), ErrAlreadyOpen)
	assert.Zero(t, w.Size())

	_, err := w.Write([]byte("facial"))
	require.NoError(t, err)
	_, err = w.Write([]byte(" rig"))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), w.Size())
	require.NoError(t, w.Flush())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "facial rig", string(data))

	r := NewMappedFileStream(path, AccessRead)
	require.NoError(t, r.Open())
	defer r.Close()

	assert.Equal(t, uint64(10), r.Size())
	require.NoError(t, r.Seek(7))
	buf := make([]byte, 16)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "rig", string(buf[:n]))

	_, err = r.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrWrite)
	assert.ErrorIs(t, r.Resize(1), ErrWrite)
}

func TestMappedFileStream_Resize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resize.bin")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	s := NewMappedFileStream(path, AccessReadWrite)
	require.NoError(t, s.Open())

	require.NoError(t, s.Resize(4))
	assert.Equal(t, uint64(4), s.Size())
	assert.Equal(t, "0123", string(s.Bytes()))

	require.NoError(t, s.Resize(8))
	assert.Equal(t, uint64(8), s.Size())
	assert.Equal(t, []byte{'0', '1', '2', '3', 0, 0, 0, 0}, s.Bytes())

	require.NoError(t, s.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(8), info.Size())
}
