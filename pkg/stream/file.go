package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

const fileBufferSize = 64 << 10

// FileStream is a Stream over a plain file.
//
// Reads and writes go through buffers. Pending writes are flushed before
// any Read, Seek or Close, and read-ahead is dropped on Seek and before
// any Write.
type FileStream struct {
	path   string
	access AccessMode
	file   *os.File
	r      *bufio.Reader
	w      *bufio.Writer
	pos    uint64
	size   uint64
}

// NewFileStream creates a file stream. The file is not touched until Open.
func NewFileStream(path string, access AccessMode) *FileStream {
	return &FileStream{path: path, access: access}
}

// Path returns the file path.
func (s *FileStream) Path() string {
	return s.path
}

// Open opens the file. Write-only streams truncate or create the file.
func (s *FileStream) Open() error {
	if s.file != nil {
		return newError(ErrAlreadyOpen, s.path, nil)
	}

	file, err := os.OpenFile(s.path, s.access.fileFlags(), 0o644)
	if err != nil {
		return newError(ErrOpen, s.path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return newError(ErrOpen, s.path, err)
	}

	s.file = file
	s.pos = 0
	s.size = uint64(info.Size())
	if s.access.CanRead() {
		s.r = bufio.NewReaderSize(file, fileBufferSize)
	}
	if s.access.CanWrite() {
		s.w = bufio.NewWriterSize(file, fileBufferSize)
	}
	return nil
}

// Close closes the file. Closing a closed stream is a no-op.
func (s *FileStream) Close() error {
	if s.file == nil {
		return nil
	}
	flushErr := s.flush()
	err := s.file.Close()
	s.file, s.r, s.w = nil, nil, nil
	s.pos = 0
	if flushErr != nil {
		return flushErr
	}
	if err != nil {
		return fmt.Errorf("closing %s: %w", s.path, err)
	}
	return nil
}

// flush writes out buffered data.
func (s *FileStream) flush() error {
	if s.w == nil || s.w.Buffered() == 0 {
		return nil
	}
	if err := s.w.Flush(); err != nil {
		return newError(ErrWrite, s.path, err)
	}
	return nil
}

// unread drops read-ahead so the file offset matches pos again.
func (s *FileStream) unread() error {
	if s.r == nil || s.r.Buffered() == 0 {
		return nil
	}
	if _, err := s.file.Seek(int64(s.pos), io.SeekStart); err != nil {
		return newError(ErrSeek, s.path, err)
	}
	s.r.Reset(s.file)
	return nil
}

// Tell returns the current position.
func (s *FileStream) Tell() uint64 {
	return s.pos
}

// Seek moves to an absolute position.
func (s *FileStream) Seek(position uint64) error {
	if s.file == nil {
		return nil
	}
	if position > math.MaxInt64 {
		return newError(ErrSeek, s.path, fmt.Errorf("position %d out of range", position))
	}
	if err := s.flush(); err != nil {
		return err
	}
	if _, err := s.file.Seek(int64(position), io.SeekStart); err != nil {
		return newError(ErrSeek, s.path, err)
	}
	if s.r != nil {
		s.r.Reset(s.file)
	}
	s.pos = position
	return nil
}

// Read fills p from the current position.
// Reaching the end of the file yields a short count and no error.
func (s *FileStream) Read(p []byte) (int, error) {
	if s.file == nil || len(p) == 0 {
		return 0, nil
	}
	if !s.access.CanRead() {
		return 0, newError(ErrRead, s.path, errors.New("stream opened write-only"))
	}

	if err := s.flush(); err != nil {
		return 0, err
	}

	n, err := io.ReadFull(s.r, p)
	s.pos += uint64(n)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return n, newError(ErrRead, s.path, err)
	}
	return n, nil
}

// Write writes p at the current position, extending the file as needed.
func (s *FileStream) Write(p []byte) (int, error) {
	if s.file == nil || len(p) == 0 {
		return 0, nil
	}
	if !s.access.CanWrite() {
		return 0, newError(ErrWrite, s.path, errors.New("stream opened read-only"))
	}

	if err := s.unread(); err != nil {
		return 0, err
	}

	n, err := s.w.Write(p)
	s.pos += uint64(n)
	if s.pos > s.size {
		s.size = s.pos
	}
	if err != nil {
		return n, newError(ErrWrite, s.path, err)
	}
	return n, nil
}

// Size returns the file length in bytes as last observed by this stream.
func (s *FileStream) Size() uint64 {
	return s.size
}
