// Package config handles dnatool configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/rigdna/pkg/dna"
	"github.com/Faultbox/rigdna/pkg/stream"
)

// Stream backends.
const (
	BackendFile   = "file"
	BackendMapped = "mmap"
	BackendMemory = "memory"
)

// Config holds all dnatool settings.
type Config struct {
	Stream  StreamConfig  `yaml:"stream"`
	Reader  ReaderConfig  `yaml:"reader"`
	Assets  AssetsConfig  `yaml:"assets"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// StreamConfig selects how DNA files are accessed.
type StreamConfig struct {
	Backend     string `yaml:"backend"`     // file, mmap or memory
	Compression string `yaml:"compression"` // codec used when writing: none, zstd or lz4
}

// ReaderConfig controls partial loading.
type ReaderConfig struct {
	Layer        string   `yaml:"layer"`
	MaxLOD       uint16   `yaml:"max_lod"`        // most detailed LOD
	MinLOD       int      `yaml:"min_lod"`        // least detailed LOD, -1 for the last stored
	LODs         []uint16 `yaml:"lods,omitempty"` // explicit set, overrides the range
	RegionSizeKB int      `yaml:"region_size_kb"`
}

// AssetsConfig controls the asset manager.
type AssetsConfig struct {
	Concurrency int      `yaml:"concurrency"`
	Paths       []string `yaml:"paths,omitempty"`
}

// ExportConfig controls glTF export.
type ExportConfig struct {
	Binary    bool   `yaml:"binary"`
	Skeleton  bool   `yaml:"skeleton"`
	LOD       uint16 `yaml:"lod"`
	OutputDir string `yaml:"output_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Stream: StreamConfig{
			Backend:     BackendMapped,
			Compression: stream.CodecNone.String(),
		},
		Reader: ReaderConfig{
			Layer:        dna.LayerAll.String(),
			MaxLOD:       0,
			MinLOD:       -1,
			RegionSizeKB: 4 << 10,
		},
		Assets: AssetsConfig{
			Concurrency: 4,
		},
		Export: ExportConfig{
			Binary:    true,
			OutputDir: ".",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	var errs []error
	switch c.Stream.Backend {
	case BackendFile, BackendMapped, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("stream.backend: unknown backend %q", c.Stream.Backend))
	}
	if _, err := stream.ParseCodec(c.Stream.Compression); err != nil {
		errs = append(errs, fmt.Errorf("stream.compression: %w", err))
	}
	if _, err := dna.ParseDataLayer(c.Reader.Layer); err != nil {
		errs = append(errs, fmt.Errorf("reader.layer: %w", err))
	}
	if c.Reader.MinLOD >= 0 && c.Reader.MinLOD < int(c.Reader.MaxLOD) {
		errs = append(errs, fmt.Errorf("reader: min_lod %d is more detailed than max_lod %d", c.Reader.MinLOD, c.Reader.MaxLOD))
	}
	if c.Reader.MinLOD > 0xFFFF {
		errs = append(errs, fmt.Errorf("reader.min_lod: %d out of range", c.Reader.MinLOD))
	}
	if c.Assets.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("assets.concurrency: must be at least 1, got %d", c.Assets.Concurrency))
	}
	return errors.Join(errs...)
}

// DataLayer returns the configured layer. Call Validate first.
func (c *Config) DataLayer() dna.DataLayer {
	layer, _ := dna.ParseDataLayer(c.Reader.Layer)
	return layer
}

// Codec returns the configured write codec. Call Validate first.
func (c *Config) Codec() stream.Codec {
	codec, _ := stream.ParseCodec(c.Stream.Compression)
	return codec
}

// FullRead resets the reader selection to every layer and every LOD.
func (c *Config) FullRead() {
	c.Reader.Layer = dna.LayerAll.String()
	c.Reader.MaxLOD = 0
	c.Reader.MinLOD = -1
	c.Reader.LODs = nil
}

// NewReader creates a dna.Reader over s honoring the reader settings.
func (c *Config) NewReader(s stream.Stream, opts ...dna.ReaderOption) *dna.Reader {
	if c.Reader.RegionSizeKB > 0 {
		opts = append(opts, dna.WithRegionSize(c.Reader.RegionSizeKB<<10))
	}
	layer := c.DataLayer()
	switch {
	case len(c.Reader.LODs) > 0:
		return dna.NewReaderLODs(s, layer, c.Reader.LODs, opts...)
	case c.Reader.MinLOD >= 0:
		return dna.NewReaderRange(s, layer, c.Reader.MaxLOD, uint16(c.Reader.MinLOD), opts...)
	default:
		return dna.NewReader(s, layer, c.Reader.MaxLOD, opts...)
	}
}

// OpenStream opens path with the configured backend for reading. The
// memory backend decompresses zstd and lz4 files transparently.
func (c *Config) OpenStream(path string) (stream.Stream, error) {
	var s stream.Stream
	switch c.Stream.Backend {
	case BackendMemory:
		ms, err := stream.LoadCompressed(path)
		if err != nil {
			return nil, err
		}
		return ms, nil
	case BackendFile:
		s = stream.NewFileStream(path, stream.AccessRead)
	default:
		s = stream.NewMappedFileStream(path, stream.AccessRead)
	}
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s, nil
}
