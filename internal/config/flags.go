package config

import "github.com/spf13/pflag"

// Flags holds command-line overrides registered on a flag set.
type Flags struct {
	fs          *pflag.FlagSet
	configPath  *string
	debug       *bool
	backend     *string
	compression *string
	layer       *string
	maxLOD      *uint16
	minLOD      *int
	lods        *[]uint
	regionKB    *int
	concurrency *int
	logLevel    *string
	logFormat   *string
	logFile     *string
}

// RegisterFlags registers the config overrides on fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	return &Flags{
		fs:          fs,
		configPath:  fs.StringP("config", "c", "", "Path to config file"),
		debug:       fs.Bool("debug", false, "Enable debug logging"),
		backend:     fs.String("backend", "", "Stream backend: file, mmap or memory"),
		compression: fs.String("compression", "", "Codec for written files: none, zstd or lz4"),
		layer:       fs.StringP("layer", "l", "", "Data layer to load"),
		maxLOD:      fs.Uint16("max-lod", 0, "Most detailed LOD to load"),
		minLOD:      fs.Int("min-lod", -1, "Least detailed LOD to load (-1 for the last)"),
		lods:        fs.UintSlice("lods", nil, "Explicit LOD set, overrides the range"),
		regionKB:    fs.Int("region-size-kb", 0, "Arena region size in KiB"),
		concurrency: fs.IntP("jobs", "j", 0, "Concurrent asset loads"),
		logLevel:    fs.String("log-level", "", "Log level: debug, info, warn or error"),
		logFormat:   fs.String("log-format", "", "Log format: console or json"),
		logFile:     fs.String("log-file", "", "Rotating log file path"),
	}
}

// ConfigPath returns the explicit config path if provided via --config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.configPath
}

// apply applies the flags that were set on the command line.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	changed := f.fs.Changed

	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if changed("backend") {
		cfg.Stream.Backend = *f.backend
	}
	if changed("compression") {
		cfg.Stream.Compression = *f.compression
	}
	if changed("layer") {
		cfg.Reader.Layer = *f.layer
	}
	if changed("max-lod") {
		cfg.Reader.MaxLOD = *f.maxLOD
	}
	if changed("min-lod") {
		cfg.Reader.MinLOD = *f.minLOD
	}
	if changed("lods") {
		cfg.Reader.LODs = cfg.Reader.LODs[:0]
		for _, l := range *f.lods {
			cfg.Reader.LODs = append(cfg.Reader.LODs, uint16(l))
		}
	}
	if changed("region-size-kb") {
		cfg.Reader.RegionSizeKB = *f.regionKB
	}
	if changed("jobs") {
		cfg.Assets.Concurrency = *f.concurrency
	}
	if changed("log-level") {
		cfg.Logging.Level = *f.logLevel
	}
	if changed("log-format") {
		cfg.Logging.Format = *f.logFormat
	}
	if changed("log-file") {
		cfg.Logging.LogFile = *f.logFile
	}
}
