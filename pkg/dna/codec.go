package dna

import (
	"encoding/binary"
	"math"

	"github.com/Faultbox/rigdna/pkg/arena"
	"github.com/Faultbox/rigdna/pkg/stream"
)

// decoder reads big-endian primitives from a stream. The first failure is
// kept in err and turns every later read into a no-op returning zero values,
// so section decoders check err once at the end.
type decoder struct {
	s       stream.Stream
	arena   *arena.Arena
	base    uint64 // container start
	size    uint64 // stream size
	scratch []byte
	err     error
}

func newDecoder(s stream.Stream, a *arena.Arena) *decoder {
	return &decoder{s: s, arena: a, base: s.Tell(), size: s.Size()}
}

func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// remaining returns the bytes left between the position and the stream end.
func (d *decoder) remaining() uint64 {
	pos := d.s.Tell()
	if pos >= d.size {
		return 0
	}
	return d.size - pos
}

// read returns the next n bytes in a scratch buffer valid until the next call.
func (d *decoder) read(n int) []byte {
	if d.err != nil {
		return nil
	}
	if cap(d.scratch) < n {
		d.scratch = make([]byte, n)
	}
	buf := d.scratch[:n]
	got, err := d.s.Read(buf)
	if err != nil {
		d.fail(err)
		return nil
	}
	if got != n {
		d.fail(invalidData("unexpected end of data at offset %d", d.s.Tell()-d.base))
		return nil
	}
	return buf
}

func (d *decoder) u8() uint8 {
	if b := d.read(1); b != nil {
		return b[0]
	}
	return 0
}

func (d *decoder) u16() uint16 {
	if b := d.read(2); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

func (d *decoder) u32() uint32 {
	if b := d.read(4); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

func (d *decoder) f32() float32 {
	return math.Float32frombits(d.u32())
}

func (d *decoder) flag() bool {
	switch v := d.u8(); v {
	case 0:
		return false
	case 1:
		return true
	default:
		d.fail(invalidData("presence flag %d at offset %d", v, d.s.Tell()-1-d.base))
		return false
	}
}

// count reads an element count and rejects counts the rest of the stream
// cannot hold.
func (d *decoder) count(elemSize int) int {
	n := d.u32()
	if d.err != nil {
		return 0
	}
	if uint64(n)*uint64(elemSize) > d.remaining() {
		d.fail(invalidData("count %d exceeds remaining %d bytes", n, d.remaining()))
		return 0
	}
	return int(n)
}

func (d *decoder) str() string {
	n := d.count(1)
	if n == 0 {
		return ""
	}
	if b := d.read(n); b != nil {
		return string(b)
	}
	return ""
}

func (d *decoder) strs() []string {
	n := d.count(4)
	if n == 0 {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = d.str()
	}
	return out
}

func (d *decoder) u16s() []uint16 {
	n := d.count(2)
	if n == 0 {
		return nil
	}
	b := d.read(n * 2)
	if b == nil {
		return nil
	}
	out := d.arena.Uint16s(n)
	for i := range out {
		out[i] = binary.BigEndian.Uint16(b[i*2:])
	}
	return out
}

func (d *decoder) u32s() []uint32 {
	n := d.count(4)
	if n == 0 {
		return nil
	}
	b := d.read(n * 4)
	if b == nil {
		return nil
	}
	out := d.arena.Uint32s(n)
	for i := range out {
		out[i] = binary.BigEndian.Uint32(b[i*4:])
	}
	return out
}

func (d *decoder) f32s() []float32 {
	n := d.count(4)
	if n == 0 {
		return nil
	}
	b := d.read(n * 4)
	if b == nil {
		return nil
	}
	out := d.arena.Float32s(n)
	for i := range out {
		out[i] = math.Float32frombits(binary.BigEndian.Uint32(b[i*4:]))
	}
	return out
}

func (d *decoder) u16Lists() [][]uint16 {
	n := d.count(4)
	if n == 0 {
		return nil
	}
	out := make([][]uint16, n)
	for i := range out {
		out[i] = d.u16s()
	}
	return out
}

func (d *decoder) vector3s() Vector3s {
	return Vector3s{Xs: d.f32s(), Ys: d.f32s(), Zs: d.f32s()}
}

// seek moves to a container-relative offset.
func (d *decoder) seek(offset uint32) {
	if d.err != nil {
		return
	}
	pos := d.base + uint64(offset)
	if pos > d.size {
		d.fail(invalidData("offset %d past end of stream", offset))
		return
	}
	if err := d.s.Seek(pos); err != nil {
		d.fail(err)
	}
}

// skip advances n bytes from the current position.
func (d *decoder) skip(n uint32) {
	if d.err != nil {
		return
	}
	if uint64(n) > d.remaining() {
		d.fail(invalidData("block of %d bytes exceeds remaining %d bytes", n, d.remaining()))
		return
	}
	if err := d.s.Seek(d.s.Tell() + uint64(n)); err != nil {
		d.fail(err)
	}
}

// offset returns the container-relative position.
func (d *decoder) offset() uint64 {
	return d.s.Tell() - d.base
}

// encoder writes big-endian primitives to a stream with the same first-error
// behavior as decoder.
type encoder struct {
	s       stream.Stream
	base    uint64
	scratch []byte
	err     error
}

func newEncoder(s stream.Stream) *encoder {
	return &encoder{s: s, base: s.Tell()}
}

func (e *encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *encoder) write(b []byte) {
	if e.err != nil || len(b) == 0 {
		return
	}
	if _, err := e.s.Write(b); err != nil {
		e.fail(err)
	}
}

func (e *encoder) buffer(n int) []byte {
	if cap(e.scratch) < n {
		e.scratch = make([]byte, n)
	}
	return e.scratch[:n]
}

func (e *encoder) u8(v uint8) {
	e.write([]byte{v})
}

func (e *encoder) u16(v uint16) {
	b := e.buffer(2)
	binary.BigEndian.PutUint16(b, v)
	e.write(b)
}

func (e *encoder) u32(v uint32) {
	b := e.buffer(4)
	binary.BigEndian.PutUint32(b, v)
	e.write(b)
}

func (e *encoder) flag(v bool) {
	if v {
		e.u8(1)
	} else {
		e.u8(0)
	}
}

func (e *encoder) str(v string) {
	e.u32(uint32(len(v)))
	e.write([]byte(v))
}

func (e *encoder) strs(v []string) {
	e.u32(uint32(len(v)))
	for _, s := range v {
		e.str(s)
	}
}

func (e *encoder) u16s(v []uint16) {
	e.u32(uint32(len(v)))
	b := e.buffer(len(v) * 2)
	for i, x := range v {
		binary.BigEndian.PutUint16(b[i*2:], x)
	}
	e.write(b)
}

func (e *encoder) u32s(v []uint32) {
	e.u32(uint32(len(v)))
	b := e.buffer(len(v) * 4)
	for i, x := range v {
		binary.BigEndian.PutUint32(b[i*4:], x)
	}
	e.write(b)
}

func (e *encoder) f32s(v []float32) {
	e.u32(uint32(len(v)))
	b := e.buffer(len(v) * 4)
	for i, x := range v {
		binary.BigEndian.PutUint32(b[i*4:], math.Float32bits(x))
	}
	e.write(b)
}

func (e *encoder) u16Lists(v [][]uint16) {
	e.u32(uint32(len(v)))
	for _, l := range v {
		e.u16s(l)
	}
}

func (e *encoder) vector3s(v Vector3s) {
	e.f32s(v.Xs)
	e.f32s(v.Ys)
	e.f32s(v.Zs)
}

// offset returns the container-relative position.
func (e *encoder) offset() uint32 {
	return uint32(e.s.Tell() - e.base)
}

// reserveU32 writes a placeholder and returns its container-relative offset.
func (e *encoder) reserveU32() uint32 {
	at := e.offset()
	e.u32(0)
	return at
}

// patchU32 overwrites a reserved u32 and returns to the current position.
func (e *encoder) patchU32(at, v uint32) {
	if e.err != nil {
		return
	}
	end := e.s.Tell()
	if err := e.s.Seek(e.base + uint64(at)); err != nil {
		e.fail(err)
		return
	}
	e.u32(v)
	if err := e.s.Seek(end); err != nil {
		e.fail(err)
	}
}
