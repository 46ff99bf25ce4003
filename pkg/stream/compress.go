package stream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies the compression applied to a stored DNA file.
type Codec uint8

// Supported codecs.
const (
	CodecNone Codec = 0
	CodecZstd Codec = 1
	CodecLZ4  Codec = 2
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

// String returns the codec name.
func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecZstd:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// ParseCodec parses a codec name.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "none", "":
		return CodecNone, nil
	case "zstd":
		return CodecZstd, nil
	case "lz4":
		return CodecLZ4, nil
	default:
		return 0, fmt.Errorf("unknown codec: %q", name)
	}
}

// DetectCodec inspects the frame magic at the start of data.
func DetectCodec(data []byte) Codec {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return CodecZstd
	case bytes.HasPrefix(data, lz4Magic):
		return CodecLZ4
	default:
		return CodecNone
	}
}

// Decompress decodes data according to its detected codec. Uncompressed
// input is returned unchanged.
func Decompress(data []byte) ([]byte, Codec, error) {
	codec := DetectCodec(data)
	switch codec {
	case CodecZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, codec, fmt.Errorf("creating zstd decoder: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, codec, fmt.Errorf("zstd decode: %w", err)
		}
		return out, codec, nil

	case CodecLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, codec, fmt.Errorf("lz4 decode: %w", err)
		}
		return out, codec, nil

	default:
		return data, codec, nil
	}
}

// Compress encodes data with codec.
func Compress(data []byte, codec Codec) ([]byte, error) {
	switch codec {
	case CodecNone:
		return data, nil

	case CodecZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("creating zstd encoder: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil

	case CodecLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 encode: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4 encode: %w", err)
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("unsupported codec: %s", codec)
	}
}

// LoadCompressed reads a possibly compressed file into an open MemoryStream.
func LoadCompressed(path string) (*MemoryStream, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(ErrOpen, path, err)
	}
	data, _, err := Decompress(raw)
	if err != nil {
		return nil, newError(ErrRead, path, err)
	}
	s := NewMemoryStreamFrom(data)
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveCompressed writes the whole content of an open stream to path using codec.
// The source position is restored afterwards.
func SaveCompressed(src Stream, path string, codec Codec) error {
	pos := src.Tell()
	defer src.Seek(pos)

	if err := src.Seek(0); err != nil {
		return err
	}
	data := make([]byte, src.Size())
	n, err := src.Read(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return newError(ErrRead, path, errors.New("short read from source stream"))
	}

	out, err := Compress(data, codec)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return newError(ErrWrite, path, err)
	}
	return nil
}
