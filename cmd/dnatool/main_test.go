package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/rigdna/internal/logger"
	"github.com/Faultbox/rigdna/pkg/dna"
	"github.com/Faultbox/rigdna/pkg/dna/dnatest"
)

func TestMain(m *testing.M) {
	logger.Stderr = io.Discard
	os.Exit(m.Run())
}

func writeFixture(t *testing.T) (string, []byte) {
	t.Helper()
	data, err := dnatest.Bytes()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "ada.dna")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path, data
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args[0], args[1:], &out)
	return out.String(), err
}

func TestInfo(t *testing.T) {
	path, _ := writeFixture(t)

	out, err := runCommand(t, "info", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Name:        Ada")
	assert.Contains(t, out, "LODs:        [0 1 2]")
	assert.Contains(t, out, "origin")
	assert.Contains(t, out, "head_lod2")
}

func TestInfo_LayerAndLODs(t *testing.T) {
	path, _ := writeFixture(t)

	out, err := runCommand(t, "info", "--layer", "descriptor", "--max-lod", "1", path, path)
	require.NoError(t, err)
	assert.Contains(t, out, "Layer:       descriptor")
	assert.Contains(t, out, "LODs:        [1 2]")
	assert.NotContains(t, out, "Behavior:")
	assert.NotContains(t, out, "Geometry:")
}

func TestInfo_ConfiguredPaths(t *testing.T) {
	path, _ := writeFixture(t)
	cfgPath := filepath.Join(t.TempDir(), "dnatool.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("assets:\n  paths:\n    - "+path+"\n"), 0o644))

	out, err := runCommand(t, "info", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "File:        "+path)
	assert.Contains(t, out, "Name:        Ada")
}

func TestInfo_NoPaths(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "dnatool.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("assets:\n  concurrency: 2\n"), 0o644))

	_, err := runCommand(t, "info", "--config", cfgPath)
	assert.ErrorIs(t, err, errUsage)
}

func TestDump(t *testing.T) {
	path, _ := writeFixture(t)

	t.Run("yaml", func(t *testing.T) {
		out, err := runCommand(t, "dump", path)
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
		desc, ok := doc["descriptor"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Ada", desc["name"])
	})

	t.Run("cbor", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "ada.cbor")
		_, err := runCommand(t, "dump", "--format", "cbor", "-o", dst, path)
		require.NoError(t, err)

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		var a dna.RigAsset
		require.NoError(t, cbor.Unmarshal(data, &a))
		assert.Equal(t, "Ada", a.Name())
		assert.Equal(t, []string{"root", "jaw", "lip_l", "lip_r"}, a.Definition.JointNames)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := runCommand(t, "dump", "--format", "xml", path)
		assert.ErrorIs(t, err, errUsage)
	})
}

func TestEval(t *testing.T) {
	path, _ := writeFixture(t)

	out, err := runCommand(t, "eval", "--gui", "gui_jaw=0.8", "--gui", "gui_smile=0.5", path)
	require.NoError(t, err)
	assert.Regexp(t, `jaw_open_bs\s+0\.8000`, out)
	assert.Regexp(t, `smile_bs\s+0\.5000`, out)
	assert.Regexp(t, `psd\[0\]\s+0\.2500`, out)
	assert.Regexp(t, `jaw\.rx\s+-16\.0000`, out)
	assert.Regexp(t, `wrinkle_forehead\s+0\.6000`, out)
}

func TestEval_Errors(t *testing.T) {
	path, _ := writeFixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown control", args: []string{"eval", "--gui", "gui_brow=1", path}},
		{name: "malformed control", args: []string{"eval", "--gui", "gui_jaw", path}},
		{name: "bad value", args: []string{"eval", "--raw", "jaw_open=high", path}},
		{name: "no behavior", args: []string{"eval", "--layer", "definition", path}},
		{name: "missing file argument", args: []string{"eval"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCommand(t, tt.args...)
			assert.ErrorIs(t, err, errUsage)
		})
	}
}

func TestGLTF(t *testing.T) {
	path, _ := writeFixture(t)
	dst := filepath.Join(t.TempDir(), "head.glb")

	out, err := runCommand(t, "gltf", "--lod", "1", "--skeleton", "-o", dst, path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 meshes, 3 vertices, 1 triangles, 1 morph targets, 2 joints")

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte("glTF"), data[:4])
}

func TestCompressRoundTrip(t *testing.T) {
	path, original := writeFixture(t)
	dir := t.TempDir()
	packed := filepath.Join(dir, "ada.dna.lz4")
	unpacked := filepath.Join(dir, "ada.dna")

	_, err := runCommand(t, "compress", "--compression", "lz4", path, packed)
	require.NoError(t, err)

	out, err := runCommand(t, "info", "--backend", "memory", packed)
	require.NoError(t, err)
	assert.Contains(t, out, "Name:        Ada")

	_, err = runCommand(t, "decompress", packed, unpacked)
	require.NoError(t, err)
	got, err := os.ReadFile(unpacked)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestConvert(t *testing.T) {
	path, original := writeFixture(t)
	dst := filepath.Join(t.TempDir(), "converted.dna")

	_, err := runCommand(t, "convert", path, dst)
	require.NoError(t, err)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestConvert_IgnoresSelection(t *testing.T) {
	path, original := writeFixture(t)
	dst := filepath.Join(t.TempDir(), "converted.dna")

	_, err := runCommand(t, "convert", "--layer", "behavior", "--max-lod", "1", "--lods", "2", path, dst)
	require.NoError(t, err)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestUnknownCommand(t *testing.T) {
	_, err := runCommand(t, "frobnicate")
	assert.ErrorContains(t, err, "unknown command")
}
