package assets

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/rigdna/internal/config"
	"github.com/Faultbox/rigdna/pkg/dna"
	"github.com/Faultbox/rigdna/pkg/dna/dnatest"
)

func writeRig(t *testing.T, path, name string) {
	t.Helper()
	s := dnatest.NewStream()
	w := dna.NewWriter(s)
	dnatest.Populate(w)
	w.SetName(name)
	require.NoError(t, w.Write())
	require.NoError(t, os.WriteFile(path, s.Bytes(), 0o644))
}

func newManager(t *testing.T) *Manager {
	t.Helper()
	cfg := config.Default()
	cfg.Assets.Concurrency = 2
	m := NewManager(cfg, nil)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestLoad_Caches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ada.dna")
	writeRig(t, path, "Ada")
	m := newManager(t)

	a, err := m.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Ada", a.Rig().Name())
	assert.Equal(t, path, a.Path)

	b, err := m.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Same(t, a, b)

	hits, _ := m.Cache().Stats()
	assert.GreaterOrEqual(t, hits, 1)
}

func TestLoad_ReloadsChangedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.dna")
	writeRig(t, path, "Ada")
	m := newManager(t)

	first, err := m.Load(context.Background(), path)
	require.NoError(t, err)

	writeRig(t, path, "Bea")
	second, err := m.Load(context.Background(), path)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.NotEqual(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, "Bea", second.Rig().Name())
	assert.Equal(t, "Ada", first.Rig().Name(), "replaced assets stay usable")
	assert.Equal(t, 1, m.Cache().Len())
}

func TestLoad_ConcurrentSamePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ada.dna")
	writeRig(t, path, "Ada")
	m := newManager(t)

	const n = 16
	got := make([]*Asset, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := m.Load(context.Background(), path)
			assert.NoError(t, err)
			got[i] = a
		}()
	}
	wg.Wait()

	for _, a := range got[1:] {
		assert.Same(t, got[0], a)
	}
	assert.Equal(t, []uint32{0, 1}, got[0].Reader().MeshBlendShapeChannelMappingIndicesForLOD(0))
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	names := []string{"Ada", "Bea", "Cid"}
	var paths []string
	for _, name := range names {
		path := filepath.Join(dir, name+".dna")
		writeRig(t, path, name)
		paths = append(paths, path)
	}
	m := newManager(t)

	assets, err := m.LoadAll(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, assets, 3)
	for i, a := range assets {
		assert.Equal(t, names[i], a.Rig().Name())
	}
	assert.Equal(t, 3, m.Cache().Len())
}

func TestLoadAll_FailsOnBadFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.dna")
	writeRig(t, good, "Ada")
	bad := filepath.Join(dir, "bad.dna")
	require.NoError(t, os.WriteFile(bad, []byte("not a rig at all"), 0o644))

	_, err := newManager(t).LoadAll(context.Background(), []string{good, bad})
	assert.ErrorIs(t, err, dna.ErrSignatureMismatch)
}

func TestLoad_Errors(t *testing.T) {
	m := newManager(t)

	_, err := m.Load(context.Background(), filepath.Join(t.TempDir(), "missing.dna"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Load(ctx, "whatever.dna")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad_HonorsReaderConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ada.dna")
	writeRig(t, path, "Ada")

	cfg := config.Default()
	cfg.Stream.Backend = config.BackendFile
	cfg.Reader.Layer = dna.LayerDescriptor.String()
	m := NewManager(cfg, nil)
	defer m.Close()

	a, err := m.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Ada", a.Rig().Name())
	assert.Zero(t, a.Rig().JointCount())
}

func TestEvictAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ada.dna")
	writeRig(t, path, "Ada")
	m := newManager(t)

	a, err := m.Load(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, m.Evict(path))
	assert.False(t, m.Evict(path))
	assert.Equal(t, "Ada", a.Rig().Name())

	_, err = m.Load(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, m.Close())
	assert.Zero(t, m.Cache().Len())
}

func TestFingerprintFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("rig"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("rig"), 0o644))

	fa, err := FingerprintFile(a)
	require.NoError(t, err)
	fb, err := FingerprintFile(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
	assert.Len(t, fa.String(), 64)

	require.NoError(t, os.WriteFile(b, []byte("rig2"), 0o644))
	fb, err = FingerprintFile(b)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fb)
}

func TestCache_Stats(t *testing.T) {
	c := NewCache()
	fp := Fingerprint{1}
	_, ok := c.Get("x", fp)
	assert.False(t, ok)

	c.Set("x", &Asset{Path: "x", Fingerprint: fp})
	_, ok = c.Get("x", fp)
	assert.True(t, ok)
	_, ok = c.Get("x", Fingerprint{2})
	assert.False(t, ok, "stale fingerprint misses")

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 2, misses)

	assert.Len(t, c.Clear(), 1)
	hits, misses = c.Stats()
	assert.Zero(t, hits+misses)
}
