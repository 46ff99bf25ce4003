package stream

// MemoryStream is a Stream over a growable in-memory buffer.
type MemoryStream struct {
	data []byte
	pos  uint64
	open bool
}

// NewMemoryStream creates an empty memory stream with the given capacity hint.
func NewMemoryStream(capacity int) *MemoryStream {
	if capacity < 0 {
		capacity = 0
	}
	return &MemoryStream{data: make([]byte, 0, capacity)}
}

// NewMemoryStreamFrom creates a memory stream over existing content.
// The stream takes ownership of data.
func NewMemoryStreamFrom(data []byte) *MemoryStream {
	return &MemoryStream{data: data}
}

// Open opens the stream and rewinds it. Content survives Close/Open cycles.
func (s *MemoryStream) Open() error {
	if s.open {
		return newError(ErrAlreadyOpen, "", nil)
	}
	s.open = true
	s.pos = 0
	return nil
}

// Close closes the stream.
func (s *MemoryStream) Close() error {
	s.open = false
	s.pos = 0
	return nil
}

// Tell returns the current position.
func (s *MemoryStream) Tell() uint64 {
	return s.pos
}

// Seek moves to an absolute position. Seeking past the end is allowed;
// a later Write zero-fills the gap.
func (s *MemoryStream) Seek(position uint64) error {
	if !s.open {
		return nil
	}
	s.pos = position
	return nil
}

// Read copies from the current position into p.
func (s *MemoryStream) Read(p []byte) (int, error) {
	if !s.open || s.pos >= uint64(len(s.data)) {
		return 0, nil
	}
	n := copy(p, s.data[s.pos:])
	s.pos += uint64(n)
	return n, nil
}

// Write copies p to the current position, growing the buffer as needed.
func (s *MemoryStream) Write(p []byte) (int, error) {
	if !s.open || len(p) == 0 {
		return 0, nil
	}
	end := s.pos + uint64(len(p))
	if end > uint64(len(s.data)) {
		if end > uint64(cap(s.data)) {
			grown := make([]byte, end, max(end, uint64(cap(s.data))*2))
			copy(grown, s.data)
			s.data = grown
		} else {
			s.data = s.data[:end]
		}
	}
	n := copy(s.data[s.pos:], p)
	s.pos += uint64(n)
	return n, nil
}

// Size returns the number of bytes held.
func (s *MemoryStream) Size() uint64 {
	return uint64(len(s.data))
}

// Bytes returns the buffer content. The slice aliases the stream's storage.
func (s *MemoryStream) Bytes() []byte {
	return s.data
}
