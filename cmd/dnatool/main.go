// dnatool is a CLI utility for inspecting and converting rig DNA files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/rigdna/internal/assets"
	"github.com/Faultbox/rigdna/internal/config"
	"github.com/Faultbox/rigdna/internal/export"
	"github.com/Faultbox/rigdna/internal/logger"
	"github.com/Faultbox/rigdna/pkg/dna"
	"github.com/Faultbox/rigdna/pkg/rig"
	"github.com/Faultbox/rigdna/pkg/stream"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1], os.Args[2:], os.Stdout)
	stop()
	logger.Sync()

	switch {
	case err == nil:
	case errors.Is(err, pflag.ErrHelp):
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, out io.Writer) error {
	switch command {
	case "info":
		return cmdInfo(ctx, args, out)
	case "dump":
		return cmdDump(ctx, args, out)
	case "eval":
		return cmdEval(ctx, args, out)
	case "gltf":
		return cmdGLTF(ctx, args, out)
	case "convert":
		return cmdConvert(ctx, args, out)
	case "compress":
		return cmdCompress(args, out, true)
	case "decompress":
		return cmdCompress(args, out, false)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `dnatool - rig DNA file utility

Usage:
  dnatool <command> [options]

Commands:
  info [file.dna...]                 Show rig information (default: assets.paths)
  dump <file.dna>                    Dump the decoded rig as YAML or CBOR
  eval <file.dna>                    Evaluate the rig for a set of controls
  gltf <file.dna>                    Export neutral meshes to glTF
  convert <in.dna> <out.dna>         Rewrite a rig at the current version
  compress <in.dna> <out>            Compress a DNA file (zstd or lz4)
  decompress <in> <out.dna>          Decompress a DNA file

Common options:
  -c, --config <file>                Config file (default ./dnatool.yaml)
  -l, --layer <layer>                descriptor, definition, behavior, geometry,
                                     geometry-without-blend-shapes,
                                     all-without-blend-shapes or all
      --max-lod, --min-lod, --lods   LOD selection
      --backend <file|mmap|memory>   memory also reads compressed files

Examples:
  dnatool info ada.dna
  dnatool eval ada.dna --gui gui_jaw=0.8
  dnatool gltf --lod 1 -o head.glb ada.dna
  dnatool compress --compression lz4 ada.dna ada.dna.lz4`)
}

// command is the shared setup of every subcommand: config flags, config
// loading and logger initialization.
type command struct {
	name  string
	usage string
	fs    *pflag.FlagSet
	flags *config.Flags
	cfg   *config.Config
	log   *zap.Logger
}

func newCommand(name, usage string) *command {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	return &command{name: name, usage: usage, fs: fs, flags: config.RegisterFlags(fs)}
}

func (c *command) parse(args []string, nargs int) error {
	if err := c.fs.Parse(args); err != nil {
		return err
	}
	if c.fs.NArg() < nargs {
		return fmt.Errorf("%w: dnatool %s %s", errUsage, c.name, c.usage)
	}

	cfg, err := config.Load(c.flags)
	if err != nil {
		return err
	}
	opts := logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Console: logger.Stderr,
	}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.Init(opts); err != nil {
		return err
	}

	c.cfg = cfg
	c.log = logger.Named(c.name)
	return nil
}

func (c *command) manager() *assets.Manager {
	return assets.NewManager(c.cfg, logger.Named("assets"))
}

func cmdInfo(ctx context.Context, args []string, out io.Writer) error {
	c := newCommand("info", "[file.dna...]")
	if err := c.parse(args, 0); err != nil {
		return err
	}
	paths := c.fs.Args()
	if len(paths) == 0 {
		paths = c.cfg.Assets.Paths
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: dnatool %s %s (or set assets.paths)", errUsage, c.name, c.usage)
	}

	m := c.manager()
	defer m.Close()

	loaded, err := m.LoadAll(ctx, paths)
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	for i, a := range loaded {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := printInfo(p, out, a); err != nil {
			return err
		}
	}
	return nil
}

func printInfo(p *message.Printer, out io.Writer, a *assets.Asset) error {
	st, err := os.Stat(a.Path)
	if err != nil {
		return err
	}
	r := a.Reader()
	rg := a.Rig()
	cs := rg.CoordinateSystem()

	p.Fprintf(out, "File:        %s\n", a.Path)
	p.Fprintf(out, "Size:        %d bytes\n", st.Size())
	p.Fprintf(out, "Fingerprint: %s\n", a.Fingerprint)
	p.Fprintf(out, "Version:     %s\n", rg.Version)
	p.Fprintf(out, "Layer:       %s\n", r.Layer())
	p.Fprintf(out, "Name:        %s\n", rg.Name())
	p.Fprintf(out, "Archetype:   %s\n", rg.Archetype())
	p.Fprintf(out, "Gender:      %s\n", rg.Gender())
	p.Fprintf(out, "Age:         %d\n", rg.Age())
	p.Fprintf(out, "Units:       %s, %s\n", rg.TranslationUnit(), rg.RotationUnit())
	p.Fprintf(out, "Axes:        x=%s y=%s z=%s\n", cs.X, cs.Y, cs.Z)
	p.Fprintf(out, "Database:    %s (%s, max LOD %d)\n", rg.DBName(), rg.DBComplexity(), rg.DBMaxLOD())
	p.Fprintf(out, "LODs:        %v\n", r.LODs())

	if n := rg.MetaDataCount(); n > 0 {
		fmt.Fprintln(out, "Metadata:")
		for i := range n {
			key := rg.MetaDataKey(i)
			value, _ := rg.MetaDataValue(key)
			p.Fprintf(out, "  %-16s %s\n", key, value)
		}
	}

	fmt.Fprintln(out, "Definition:")
	p.Fprintf(out, "  GUI controls        %d\n", rg.GUIControlCount())
	p.Fprintf(out, "  Raw controls        %d\n", rg.RawControlCount())
	p.Fprintf(out, "  Joints              %d\n", rg.JointCount())
	p.Fprintf(out, "  Blend-shape channels %d\n", rg.BlendShapeChannelCount())
	p.Fprintf(out, "  Animated maps       %d\n", rg.AnimatedMapCount())
	p.Fprintf(out, "  Meshes              %d\n", rg.MeshCount())

	if r.Layer().IncludesBehavior() {
		fmt.Fprintln(out, "Behavior:")
		p.Fprintf(out, "  GUI to raw rows     %d\n", rg.GUIToRawTable().Len())
		p.Fprintf(out, "  PSD outputs         %d\n", rg.PSDCount())
		p.Fprintf(out, "  Joint groups        %d (%d x %d)\n", rg.JointGroupCount(), rg.JointRowCount(), rg.JointColumnCount())
	}

	if rg.HasGeometry {
		fmt.Fprintln(out, "Geometry:")
		for i := range rg.MeshCount() {
			if rg.VertexLayoutCount(i) == 0 {
				continue
			}
			p.Fprintf(out, "  %-16s %d vertices, %d faces, %d blend-shape targets\n",
				rg.MeshName(i), rg.VertexPositionCount(i), rg.FaceCount(i), rg.BlendShapeTargetCount(i))
		}
	}

	stats := r.ArenaStats()
	p.Fprintf(out, "Arena:       %d bytes used of %d in %d regions\n", stats.UsedBytes, stats.ReservedBytes, stats.Regions)
	return nil
}

func cmdDump(ctx context.Context, args []string, out io.Writer) error {
	c := newCommand("dump", "[--format yaml|cbor] [-o out] <file.dna>")
	format := c.fs.StringP("format", "f", "yaml", "Output format: yaml or cbor")
	output := c.fs.StringP("output", "o", "", "Output file (default stdout)")
	if err := c.parse(args, 1); err != nil {
		return err
	}

	m := c.manager()
	defer m.Close()
	a, err := m.Load(ctx, c.fs.Arg(0))
	if err != nil {
		return err
	}

	var data []byte
	switch *format {
	case "yaml":
		data, err = yaml.Marshal(a.Rig())
	case "cbor":
		var em cbor.EncMode
		if em, err = cbor.CoreDetEncOptions().EncMode(); err == nil {
			data, err = em.Marshal(a.Rig())
		}
	default:
		return fmt.Errorf("%w: unknown format %q", errUsage, *format)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", *format, err)
	}

	if *output == "" {
		_, err = out.Write(data)
		return err
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		return err
	}
	c.log.Info("dumped rig", zap.String("path", *output), zap.String("format", *format), zap.Int("bytes", len(data)))
	return nil
}

// jointAttributes names the joint output columns of one joint.
var jointAttributes = [...]string{"tx", "ty", "tz", "rx", "ry", "rz", "sx", "sy", "sz"}

func cmdEval(ctx context.Context, args []string, out io.Writer) error {
	c := newCommand("eval", "[--lod n] [--gui name=value]... [--raw name=value]... <file.dna>")
	lod := c.fs.Uint16("lod", 0, "LOD to evaluate, relative to the loaded LODs")
	gui := c.fs.StringArray("gui", nil, "GUI control value as name=value")
	raw := c.fs.StringArray("raw", nil, "Raw control value as name=value, applied when no GUI control is set")
	if err := c.parse(args, 1); err != nil {
		return err
	}
	if !c.cfg.DataLayer().IncludesBehavior() {
		return fmt.Errorf("%w: eval needs a layer that includes behavior, got %s", errUsage, c.cfg.DataLayer())
	}

	m := c.manager()
	defer m.Close()
	a, err := m.Load(ctx, c.fs.Arg(0))
	if err != nil {
		return err
	}
	rg := a.Rig()

	inst, err := rig.New(rg, *lod)
	if err != nil {
		return err
	}
	if err := applyControls(*gui, rg.GUIControlCount(), rg.GUIControlName, inst.SetGUIControl); err != nil {
		return err
	}
	if err := applyControls(*raw, rg.RawControlCount(), rg.RawControlName, inst.SetRawControl); err != nil {
		return err
	}
	inst.Evaluate()

	fmt.Fprintln(out, "Raw controls:")
	for i, v := range inst.RawControls() {
		name := rg.RawControlName(i)
		if name == "" {
			name = fmt.Sprintf("psd[%d]", i-rg.RawControlCount())
		}
		printValue(out, name, v)
	}
	fmt.Fprintln(out, "Blend shapes:")
	for i, v := range inst.BlendShapeWeights() {
		printValue(out, rg.BlendShapeChannelName(i), v)
	}
	fmt.Fprintln(out, "Animated maps:")
	for i, v := range inst.AnimatedMapOutputs() {
		printValue(out, rg.AnimatedMapName(i), v)
	}
	fmt.Fprintln(out, "Joints:")
	for i, v := range inst.JointOutputs() {
		if v == 0 {
			continue
		}
		joint := rg.JointName(i / len(jointAttributes))
		printValue(out, joint+"."+jointAttributes[i%len(jointAttributes)], v)
	}
	return nil
}

func printValue(out io.Writer, name string, v float32) {
	fmt.Fprintf(out, "  %-24s %.4f\n", name, v)
}

func applyControls(values []string, count int, name func(int) string, set func(int, float32)) error {
	for _, kv := range values {
		key, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("%w: control %q is not name=value", errUsage, kv)
		}
		v, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return fmt.Errorf("%w: control %q: %v", errUsage, key, err)
		}
		idx := -1
		for i := range count {
			if name(i) == key {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: unknown control %q", errUsage, key)
		}
		set(idx, float32(v))
	}
	return nil
}

func cmdGLTF(ctx context.Context, args []string, out io.Writer) error {
	c := newCommand("gltf", "[--lod n] [--json] [--skeleton] [-o out] <file.dna>")
	lod := c.fs.Uint16("lod", 0, "LOD to export, relative to the loaded LODs")
	asJSON := c.fs.Bool("json", false, "Write .gltf JSON instead of binary .glb")
	skeleton := c.fs.Bool("skeleton", false, "Add the joint hierarchy as nodes")
	output := c.fs.StringP("output", "o", "", "Output file")
	if err := c.parse(args, 1); err != nil {
		return err
	}

	opts := export.Options{
		LOD:      c.cfg.Export.LOD,
		Binary:   c.cfg.Export.Binary,
		Skeleton: c.cfg.Export.Skeleton,
	}
	if c.fs.Changed("lod") {
		opts.LOD = *lod
	}
	if c.fs.Changed("json") {
		opts.Binary = !*asJSON
	}
	if c.fs.Changed("skeleton") {
		opts.Skeleton = *skeleton
	}

	in := c.fs.Arg(0)
	path := *output
	if path == "" {
		ext := ".glb"
		if !opts.Binary {
			ext = ".gltf"
		}
		base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		path = filepath.Join(c.cfg.Export.OutputDir, base+ext)
	}

	m := c.manager()
	defer m.Close()
	a, err := m.Load(ctx, in)
	if err != nil {
		return err
	}

	stats, err := export.New(logger.Named("export")).WriteFile(path, a.Rig(), opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %d meshes, %d vertices, %d triangles, %d morph targets, %d joints\n",
		path, stats.Meshes, stats.Vertices, stats.Triangles, stats.MorphTargets, stats.Joints)
	return nil
}

func cmdConvert(ctx context.Context, args []string, out io.Writer) error {
	c := newCommand("convert", "<in.dna> <out.dna>")
	if err := c.parse(args, 2); err != nil {
		return err
	}
	// Layer and LOD selection would drop data from the output.
	c.cfg.FullRead()

	m := c.manager()
	defer m.Close()
	a, err := m.Load(ctx, c.fs.Arg(0))
	if err != nil {
		return err
	}

	s := stream.NewMemoryStream(0)
	if err := s.Open(); err != nil {
		return err
	}
	defer s.Close()

	w := dna.NewWriter(s)
	w.SetFrom(a.Rig())
	if err := w.Write(); err != nil {
		return err
	}
	if err := stream.SaveCompressed(s, c.fs.Arg(1), c.cfg.Codec()); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: version %s -> %s, %d bytes (%s)\n",
		c.fs.Arg(1), a.Rig().Version, dna.CurrentVersion, s.Size(), c.cfg.Codec())
	return nil
}

func cmdCompress(args []string, out io.Writer, compress bool) error {
	name, usage := "decompress", "<in> <out.dna>"
	if compress {
		name, usage = "compress", "[--compression zstd|lz4] <in.dna> <out>"
	}
	c := newCommand(name, usage)
	if err := c.parse(args, 2); err != nil {
		return err
	}

	codec := stream.CodecNone
	if compress {
		codec = c.cfg.Codec()
		if codec == stream.CodecNone {
			codec = stream.CodecZstd
		}
	}

	in, dst := c.fs.Arg(0), c.fs.Arg(1)
	s, err := stream.LoadCompressed(in)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := stream.SaveCompressed(s, dst, codec); err != nil {
		return err
	}
	st, err := os.Stat(dst)
	if err != nil {
		return err
	}
	c.log.Debug("wrote file", zap.String("path", dst), zap.Stringer("codec", codec))
	fmt.Fprintf(out, "%s: %d -> %d bytes (%s)\n", dst, s.Size(), st.Size(), codec)
	return nil
}
