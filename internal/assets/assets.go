// Package assets loads DNA rigs from disk and caches them by path. Cached
// rigs are keyed by a content fingerprint, so a file edited on disk is
// decoded again on its next load.
package assets

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/rigdna/internal/config"
	"github.com/Faultbox/rigdna/pkg/dna"
)

// Fingerprint is the BLAKE3 hash of a file's stored bytes.
type Fingerprint [32]byte

// String returns the fingerprint in hex.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// FingerprintFile hashes the file at path.
func FingerprintFile(path string) (Fingerprint, error) {
	var fp Fingerprint
	f, err := os.Open(path)
	if err != nil {
		return fp, err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return fp, fmt.Errorf("hashing %s: %w", path, err)
	}
	copy(fp[:], h.Sum(nil))
	return fp, nil
}

// Asset is a decoded rig. Its data lives on the heap, independent of the
// file it was read from, and is immutable; it may be shared between
// goroutines.
type Asset struct {
	Path        string
	Fingerprint Fingerprint
	LoadedAt    time.Time
	reader      *dna.Reader
}

// Rig returns the decoded rig.
func (a *Asset) Rig() *dna.RigAsset {
	return a.reader.Asset()
}

// Reader returns the reader holding the rig, for the per-LOD lookups.
func (a *Asset) Reader() *dna.Reader {
	return a.reader
}

// Manager loads rigs with the configured stream backend and reader
// settings. It is safe for concurrent use.
type Manager struct {
	cfg   *config.Config
	log   *zap.Logger
	cache *Cache
	group singleflight.Group
}

// NewManager creates a new asset manager. log may be nil.
func NewManager(cfg *config.Config, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cfg:   cfg,
		log:   log,
		cache: NewCache(),
	}
}

// Cache returns the manager's cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// Load returns the rig stored at path, decoding it unless an up-to-date
// copy is cached. Concurrent loads of one path share a single decode.
func (m *Manager) Load(ctx context.Context, path string) (*Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fp, err := FingerprintFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if a, ok := m.cache.Get(path, fp); ok {
		m.log.Debug("rig cache hit", zap.String("path", path))
		return a, nil
	}

	ch := m.group.DoChan(path+"\x00"+fp.String(), func() (any, error) {
		if a, ok := m.cache.Get(path, fp); ok {
			return a, nil
		}
		a, err := m.decode(path, fp)
		if err != nil {
			return nil, err
		}
		if old := m.cache.Set(path, a); old != nil {
			m.log.Info("rig changed on disk, replaced",
				zap.String("path", path),
				zap.Stringer("old", old.Fingerprint),
				zap.Stringer("new", fp))
		}
		return a, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		a, _ := res.Val.(*Asset)
		return a, nil
	}
}

// decode reads the rig and closes the stream; the decoded data does not
// reference the stream.
func (m *Manager) decode(path string, fp Fingerprint) (a *Asset, err error) {
	start := time.Now()

	s, err := m.cfg.OpenStream(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	r := m.cfg.NewReader(s, dna.WithLogger(m.log.Named("dna")))
	if err := r.Read(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	// Fill the per-LOD lookups now so that shared readers are only read.
	r.MeshBlendShapeChannelMappingIndicesForLOD(0)

	stats := r.ArenaStats()
	m.log.Info("loaded rig",
		zap.String("path", path),
		zap.String("name", r.Name()),
		zap.Stringer("layer", r.Layer()),
		zap.Uint16s("lods", r.LODs()),
		zap.Int64("arena_bytes", stats.ReservedBytes),
		zap.Duration("took", time.Since(start)))

	return &Asset{Path: path, Fingerprint: fp, LoadedAt: time.Now(), reader: r}, nil
}

// LoadAll loads paths concurrently, at most Assets.Concurrency at a time.
// Results are in the order of paths. The first failure cancels the rest.
func (m *Manager) LoadAll(ctx context.Context, paths []string) ([]*Asset, error) {
	out := make([]*Asset, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(m.cfg.Assets.Concurrency, 1))
	for i, path := range paths {
		g.Go(func() error {
			a, err := m.Load(ctx, path)
			if err != nil {
				return err
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Evict drops path from the cache. Holders of the asset keep a valid copy.
func (m *Manager) Evict(path string) bool {
	return m.cache.Delete(path) != nil
}

// Close empties the cache and releases every cached rig's arena. Assets
// returned earlier must not be used afterwards.
func (m *Manager) Close() error {
	var errs []error
	for _, a := range m.cache.Clear() {
		if err := a.reader.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", a.Path, err))
		}
	}
	return errors.Join(errs...)
}
